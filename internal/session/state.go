// Package session holds the per-visitor application state and the pure
// transitions that move it between events.
//
// A State is a plain value. Every transition is a value-receiver method that
// returns the next State, so a handler can compute the new state, persist it
// and hand a snapshot back without anything else observing a half-applied
// change. Derived values (the results page, the unlocked feature, pipeline
// membership, dashboard figures) are computed by Snapshot and never stored.
package session

import (
	"slices"

	"github.com/sakif/frelance/internal/model"
	"github.com/sakif/frelance/internal/results"
	"github.com/sakif/frelance/internal/subscription"
	"github.com/sakif/frelance/internal/view"
)

// State is everything the front end needs for one visitor.
//
// Jobs is nil until a search succeeds and after a failed one. An empty
// non-nil slice means the finder returned nothing.
type State struct {
	UserID string  `json:"userId,omitempty"`
	View   view.ID `json:"view"`

	Profile      model.UserProfile         `json:"profile"`
	Projects     []model.Project           `json:"projects"`
	Threads      []model.ForumThread       `json:"threads"`
	Subscription model.SubscriptionState   `json:"subscription"`
	Activities   []model.Activity          `json:"activities"`
	History      []model.SearchHistoryItem `json:"history"`

	Jobs          []model.Job      `json:"jobs"`
	SelectedJobID string           `json:"selectedJobId,omitempty"`
	SortBy        results.SortMode `json:"sortBy"`
	Page          int              `json:"page"`

	Loading           bool   `json:"loading"`
	Error             string `json:"error,omitempty"`
	LoadError         string `json:"loadError,omitempty"`
	SubscriptionError string `json:"subscriptionError,omitempty"`
}

// Bundle is the result of the sign-in bulk load.
type Bundle struct {
	Profile      model.UserProfile
	Projects     []model.Project
	Threads      []model.ForumThread
	Subscription model.SubscriptionState
	Activities   []model.Activity
	History      []model.SearchHistoryItem
}

// Default is the state of a visitor nobody has seen before, and of anyone who
// just signed out.
func Default() State {
	return State{
		View:         view.Default,
		Profile:      model.DefaultProfile(),
		Projects:     []model.Project{},
		Threads:      []model.ForumThread{},
		Subscription: subscription.Default(),
		Activities:   []model.Activity{},
		History:      []model.SearchHistoryItem{},
		SortBy:       results.DefaultSort,
		Page:         1,
	}
}

// SignedIn reports whether the state belongs to an authenticated user.
func (s State) SignedIn() bool {
	return s.UserID != ""
}

// Clone copies the collections so the result can be mutated without touching s.
func (s State) Clone() State {
	s.Projects = slices.Clone(s.Projects)
	s.Threads = slices.Clone(s.Threads)
	s.Activities = slices.Clone(s.Activities)
	s.History = slices.Clone(s.History)
	s.Profile.Skills = slices.Clone(s.Profile.Skills)
	s.Profile.Portfolio = slices.Clone(s.Profile.Portfolio)
	return s
}

// Loaded replaces the state with a freshly loaded user and routes them to
// their landing page.
func Loaded(userID string, b Bundle) State {
	s := Default()
	s.UserID = userID
	s.Profile = b.Profile
	s.Projects = nonNil(b.Projects)
	s.Threads = nonNil(b.Threads)
	s.Subscription = b.Subscription
	s.Activities = nonNil(b.Activities)
	s.History = nonNil(b.History)
	s.View = view.AfterLogin(b.Profile.Complete())
	return s
}

// LoadFailed is a signed-in state whose bulk load aborted. Nothing from the
// partial load is kept.
func LoadFailed(userID, message string) State {
	s := Default()
	s.UserID = userID
	s.LoadError = message
	return s
}

// BeginSearch clears the previous result set before a query goes out.
func (s State) BeginSearch() State {
	s.Loading = true
	s.Error = ""
	s.Jobs = nil
	s.SelectedJobID = ""
	s.SortBy = results.DefaultSort
	s.Page = 1
	return s
}

// SearchSucceeded installs a new result set.
func (s State) SearchSucceeded(jobs []model.Job) State {
	s.Loading = false
	s.Jobs = nonNil(jobs)
	s.SelectedJobID = ""
	s.SortBy = results.DefaultSort
	s.Page = 1
	return s
}

// SearchFailed leaves no result set and shows message.
func (s State) SearchFailed(message string) State {
	s.Loading = false
	s.Jobs = nil
	s.Error = message
	return s
}

// QuotaBlocked shows message and changes nothing else.
func (s State) QuotaBlocked(message string) State {
	s.Error = message
	return s
}

// SelectJob toggles the expanded job.
func (s State) SelectJob(jobID string) State {
	s.SelectedJobID = results.Toggle(s.SelectedJobID, jobID)
	return s
}

// ChangePage moves to another results page and collapses the expanded job.
func (s State) ChangePage(page int) State {
	s.Page = page
	s.SelectedJobID = ""
	return s
}

// ChangeSort reorders the results and returns to the first page with nothing
// expanded.
func (s State) ChangeSort(mode results.SortMode) State {
	s.SortBy = mode
	s.Page = 1
	s.SelectedJobID = ""
	return s
}

// Navigate shows another page.
func (s State) Navigate(to view.ID) State {
	s.View = to
	s.SubscriptionError = ""
	return s
}

// Back follows the current page's back action. Pages without one are left
// where they are.
func (s State) Back() State {
	if to, ok := view.Back(s.View, s.backContext()); ok {
		return s.Navigate(to)
	}
	return s
}

// WithProfile installs a saved profile. Completing the profile for the first
// time moves on to the dashboard.
func (s State) WithProfile(p model.UserProfile) State {
	s.View = view.AfterProfileSaved(s.View, s.Profile.Complete(), p.Complete())
	s.Profile = p
	return s
}

// WithProjects replaces the pipeline.
func (s State) WithProjects(projects []model.Project) State {
	s.Projects = nonNil(projects)
	return s
}

// ProjectAdded replaces the pipeline after a promotion and shows it.
func (s State) ProjectAdded(projects []model.Project) State {
	s = s.WithProjects(projects)
	s.View = view.AfterProjectAdded()
	return s
}

// WithThreads replaces the forum threads.
func (s State) WithThreads(threads []model.ForumThread) State {
	s.Threads = nonNil(threads)
	return s
}

// WithSubscription replaces the plan without changing the page.
func (s State) WithSubscription(sub model.SubscriptionState) State {
	s.Subscription = sub
	return s
}

// Subscribed installs a new paid plan and shows the dashboard.
func (s State) Subscribed(sub model.SubscriptionState) State {
	s.Subscription = sub
	s.SubscriptionError = ""
	s.View = view.AfterSubscribed()
	return s
}

// SubscribeFailed keeps the current plan and shows message.
func (s State) SubscribeFailed(message string) State {
	s.SubscriptionError = message
	return s
}

// WithActivities replaces the activity feed.
func (s State) WithActivities(activities []model.Activity) State {
	s.Activities = nonNil(activities)
	return s
}

// WithHistory replaces the search history.
func (s State) WithHistory(history []model.SearchHistoryItem) State {
	s.History = nonNil(history)
	return s
}

// ExistingProjectIDs is the set of job IDs already in the pipeline.
func (s State) ExistingProjectIDs() map[string]bool {
	ids := make(map[string]bool, len(s.Projects))
	for _, p := range s.Projects {
		ids[p.ID] = true
	}
	return ids
}

// Dashboard derives the dashboard figures from the pipeline.
func (s State) Dashboard() model.Dashboard {
	var d model.Dashboard
	completed := 0
	for _, p := range s.Projects {
		switch p.Status {
		case model.ProjectActive:
			d.Applications++
			d.Earnings += p.ProjectValue
		case model.ProjectCompleted:
			completed++
		}
	}
	if n := len(s.Projects); n > 0 {
		d.SuccessRate = (completed*100 + n/2) / n
	}
	return d
}

func (s State) backContext() view.BackContext {
	return view.BackContext{SignedIn: s.SignedIn(), ProfileComplete: s.Profile.Complete()}
}

func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
