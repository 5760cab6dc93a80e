package results

import (
	"github.com/sakif/frelance/internal/model"
	"github.com/sakif/frelance/internal/subscription"
)

// Input is everything the results page is derived from.
type Input struct {
	Jobs               []model.Job
	SortBy             SortMode
	Page               int
	Subscription       model.SubscriptionState
	SelectedJobID      string
	ExistingProjectIDs map[string]bool
}

// Card is one job as listed on the page.
type Card struct {
	model.Job
	Selected   bool `json:"selected"`
	InPipeline bool `json:"inPipeline"`
}

// View is the derived results page.
type View struct {
	Jobs            []Card               `json:"jobs"`
	Total           int                  `json:"total"`
	SortBy          SortMode             `json:"sortBy"`
	Page            int                  `json:"page"`
	TotalPages      int                  `json:"totalPages"`
	IsLocked        bool                 `json:"isLocked"`
	SelectedJobID   string               `json:"selectedJobId,omitempty"`
	UnlockedFeature subscription.Feature `json:"unlockedFeature,omitempty"`
}

// Present derives the results page from in.
func Present(in Input) View {
	sorted := Sort(in.Jobs, in.SortBy)
	page := PageOf(sorted, in.Page)

	cards := make([]Card, len(page))
	for i, j := range page {
		cards[i] = Card{
			Job:        j,
			Selected:   j.ID != "" && j.ID == in.SelectedJobID,
			InPipeline: in.ExistingProjectIDs[j.ID],
		}
	}

	return View{
		Jobs:            cards,
		Total:           len(in.Jobs),
		SortBy:          in.SortBy,
		Page:            in.Page,
		TotalPages:      TotalPages(len(in.Jobs)),
		IsLocked:        IsLocked(in.Subscription, in.Page),
		SelectedJobID:   in.SelectedJobID,
		UnlockedFeature: subscription.UnlockedFeature(in.Subscription),
	}
}
