// Package view is the finite page router of the application.
//
// The current page is a single ID. Navigation assigns it directly; there is no
// history stack, so "back" is a fixed destination per page, resolved from a
// table and the signed-in state.
package view

// ID names a page of the front end.
type ID string

const (
	Search    ID = "search"
	Profile   ID = "profile"
	Projects  ID = "projects"
	Community ID = "community"
	Insights  ID = "insights"
	Dashboard ID = "dashboard"
	Pricing   ID = "pricing"
	Guide     ID = "guide"
	Privacy   ID = "privacy"
	Terms     ID = "terms"
	AUP       ID = "aup"
	Contact   ID = "contact"
	FAQ       ID = "faq"
	Refund    ID = "refund"
)

// Default is the page a new visitor lands on.
const Default = Search

var all = []ID{
	Search, Profile, Projects, Community, Insights, Dashboard, Pricing,
	Guide, Privacy, Terms, AUP, Contact, FAQ, Refund,
}

// All returns every page ID in menu order.
func All() []ID {
	out := make([]ID, len(all))
	copy(out, all)
	return out
}

// Parse validates a raw page ID.
func Parse(s string) (ID, bool) {
	for _, id := range all {
		if string(id) == s {
			return id, true
		}
	}
	return "", false
}

// RequiresSession reports whether a page only makes sense for a signed-in user.
func RequiresSession(id ID) bool {
	switch id {
	case Profile, Projects, Dashboard, Insights:
		return true
	}
	return false
}

// BackContext is what a back target depends on.
type BackContext struct {
	SignedIn        bool
	ProfileComplete bool
}

type backRule func(BackContext) ID

func toDashboard(BackContext) ID { return Dashboard }

func toDashboardIfSignedIn(c BackContext) ID {
	if c.SignedIn {
		return Dashboard
	}
	return Search
}

func toDashboardIfProfileComplete(c BackContext) ID {
	if c.ProfileComplete {
		return Dashboard
	}
	return Search
}

var backRules = map[ID]backRule{
	Profile:   toDashboardIfProfileComplete,
	Projects:  toDashboard,
	Community: toDashboard,
	Insights:  toDashboard,
	Privacy:   toDashboardIfSignedIn,
	Terms:     toDashboardIfSignedIn,
	AUP:       toDashboardIfSignedIn,
	Contact:   toDashboardIfSignedIn,
	FAQ:       toDashboardIfSignedIn,
	Refund:    toDashboardIfSignedIn,
}

// Back returns the back destination of a page. ok is false for pages without
// a back action.
func Back(from ID, c BackContext) (to ID, ok bool) {
	rule, ok := backRules[from]
	if !ok {
		return "", false
	}
	return rule(c), true
}

// AfterLogin is the landing page after sign-in: an incomplete profile is
// filled in first.
func AfterLogin(profileComplete bool) ID {
	if profileComplete {
		return Dashboard
	}
	return Profile
}

// AfterLogout is always the search page.
func AfterLogout() ID { return Search }

// AfterProfileSaved moves to the dashboard only when the save completed a
// previously incomplete profile.
func AfterProfileSaved(current ID, wasComplete, isComplete bool) ID {
	if !wasComplete && isComplete {
		return Dashboard
	}
	return current
}

// AfterProjectAdded shows the pipeline.
func AfterProjectAdded() ID { return Projects }

// AfterSubscribed shows the dashboard.
func AfterSubscribed() ID { return Dashboard }
