package session

import (
	"slices"

	"github.com/sakif/frelance/internal/model"
	"github.com/sakif/frelance/internal/results"
	"github.com/sakif/frelance/internal/subscription"
)

// Snapshot is a State together with every value derived from it. It is what
// the API returns after each event.
type Snapshot struct {
	State              State                `json:"state"`
	Page               Page                 `json:"page"`
	Results            results.View         `json:"results"`
	UnlockedFeature    subscription.Feature `json:"unlockedFeature,omitempty"`
	CanSearch          bool                 `json:"canSearch"`
	ExistingProjectIDs []string             `json:"existingProjectIds"`
	Dashboard          model.Dashboard      `json:"dashboard"`
}

// Results derives the results page from the raw result set.
func (s State) Results() results.View {
	return results.Present(results.Input{
		Jobs:               s.Jobs,
		SortBy:             s.SortBy,
		Page:               s.Page,
		Subscription:       s.Subscription,
		SelectedJobID:      s.SelectedJobID,
		ExistingProjectIDs: s.ExistingProjectIDs(),
	})
}

// Snapshot computes the derived values of s.
func (s State) Snapshot() Snapshot {
	ids := make([]string, 0, len(s.Projects))
	for id := range s.ExistingProjectIDs() {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return Snapshot{
		State:              s,
		Page:               Render(s),
		Results:            s.Results(),
		UnlockedFeature:    subscription.UnlockedFeature(s.Subscription),
		CanSearch:          subscription.CanSearch(s.Subscription),
		ExistingProjectIDs: ids,
		Dashboard:          s.Dashboard(),
	}
}
