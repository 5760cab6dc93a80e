package session

import (
	"github.com/sakif/frelance/internal/model"
	"github.com/sakif/frelance/internal/results"
	"github.com/sakif/frelance/internal/subscription"
	"github.com/sakif/frelance/internal/view"
)

// Page is what the front end renders for the current view.
//
// Data depends on the view. Back is the destination of the page's back
// action, if it has one. When the bulk load failed, Error carries the load
// error and Data is empty for every view.
type Page struct {
	View  view.ID  `json:"view"`
	Back  *view.ID `json:"back,omitempty"`
	Error string   `json:"error,omitempty"`
	Data  any      `json:"data,omitempty"`
}

// SearchPage is the search form plus the current results.
type SearchPage struct {
	Options      model.SearchOptions     `json:"options"`
	Results      results.View            `json:"results"`
	HasResults   bool                    `json:"hasResults"`
	CanSearch    bool                    `json:"canSearch"`
	Subscription model.SubscriptionState `json:"subscription"`
	Loading      bool                    `json:"loading"`
	Error        string                  `json:"error,omitempty"`
}

type ProjectsPage struct {
	Projects  []model.Project `json:"projects"`
	Dashboard model.Dashboard `json:"dashboard"`
}

type CommunityPage struct {
	Threads    []model.ForumThread `json:"threads"`
	Categories []string            `json:"categories"`
}

type InsightsPage struct {
	History   []model.SearchHistoryItem `json:"history"`
	Dashboard model.Dashboard           `json:"dashboard"`
}

type DashboardPage struct {
	Name         string                  `json:"name"`
	Dashboard    model.Dashboard         `json:"dashboard"`
	Activities   []model.Activity        `json:"activities"`
	Subscription model.SubscriptionState `json:"subscription"`
}

type PricingPage struct {
	Plans        []subscription.Plan     `json:"plans"`
	Subscription model.SubscriptionState `json:"subscription"`
	Error        string                  `json:"error,omitempty"`
}

type renderFunc func(State) any

// renderers maps every view to the payload it shows. Static pages carry no
// data; their content lives in the front end.
var renderers = map[view.ID]renderFunc{
	view.Search:    renderSearch,
	view.Profile:   func(s State) any { return s.Profile },
	view.Projects:  renderProjects,
	view.Community: renderCommunity,
	view.Insights:  renderInsights,
	view.Dashboard: renderDashboard,
	view.Pricing:   renderPricing,
	view.Guide:     renderStatic,
	view.Privacy:   renderStatic,
	view.Terms:     renderStatic,
	view.AUP:       renderStatic,
	view.Contact:   renderStatic,
	view.FAQ:       renderStatic,
	view.Refund:    renderStatic,
}

// Render builds the page for the current view.
func Render(s State) Page {
	p := Page{View: s.View}
	if to, ok := view.Back(s.View, s.backContext()); ok {
		p.Back = &to
	}
	if s.LoadError != "" {
		p.Error = s.LoadError
		return p
	}

	render, ok := renderers[s.View]
	if !ok {
		render = renderSearch
		p.View = view.Search
		p.Back = nil
	}
	p.Data = render(s)
	return p
}

func renderSearch(s State) any {
	return SearchPage{
		Options:      model.Options(),
		Results:      s.Results(),
		HasResults:   s.Jobs != nil,
		CanSearch:    subscription.CanSearch(s.Subscription),
		Subscription: s.Subscription,
		Loading:      s.Loading,
		Error:        s.Error,
	}
}

func renderProjects(s State) any {
	return ProjectsPage{Projects: s.Projects, Dashboard: s.Dashboard()}
}

func renderCommunity(s State) any {
	return CommunityPage{Threads: s.Threads, Categories: model.Options().CommunityCategories}
}

func renderInsights(s State) any {
	return InsightsPage{History: s.History, Dashboard: s.Dashboard()}
}

func renderDashboard(s State) any {
	return DashboardPage{
		Name:         s.Profile.Name,
		Dashboard:    s.Dashboard(),
		Activities:   s.Activities,
		Subscription: s.Subscription,
	}
}

func renderPricing(s State) any {
	return PricingPage{
		Plans:        subscription.Plans(),
		Subscription: s.Subscription,
		Error:        s.SubscriptionError,
	}
}

func renderStatic(State) any { return nil }
