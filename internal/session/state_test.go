package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/frelance/internal/model"
	"github.com/sakif/frelance/internal/results"
	"github.com/sakif/frelance/internal/subscription"
	"github.com/sakif/frelance/internal/view"
)

func jobs(n int) []model.Job {
	out := make([]model.Job, n)
	for i := range out {
		out[i] = model.Job{ID: fmt.Sprintf("job-%02d", i), MatchPercentage: i}
	}
	return out
}

func project(jobID string, status model.ProjectStatus, value float64) model.Project {
	return model.Project{
		Job:          model.Job{ID: jobID},
		ProjectID:    "p-" + jobID,
		Status:       status,
		ProjectValue: value,
	}
}

func TestDefault(t *testing.T) {
	s := Default()

	assert.Equal(t, view.Search, s.View)
	assert.Equal(t, subscription.Default(), s.Subscription)
	assert.Equal(t, results.SortMatch, s.SortBy)
	assert.Equal(t, 1, s.Page)
	assert.Nil(t, s.Jobs)
	assert.False(t, s.SignedIn())
	assert.Equal(t, model.AvailabilityAvailable, s.Profile.Availability)
}

func TestLoaded_RoutesByProfile(t *testing.T) {
	incomplete := Loaded("u1", Bundle{Subscription: subscription.Default()})
	assert.Equal(t, view.Profile, incomplete.View)
	assert.True(t, incomplete.SignedIn())
	assert.NotNil(t, incomplete.Projects)

	complete := Loaded("u1", Bundle{Profile: model.UserProfile{Name: "Ada"}})
	assert.Equal(t, view.Dashboard, complete.View)
}

func TestLoadFailed_KeepsNothing(t *testing.T) {
	s := LoadFailed("u1", "could not load your data")

	assert.Equal(t, "could not load your data", s.LoadError)
	assert.Empty(t, s.Projects)
	assert.Equal(t, subscription.Default(), s.Subscription)
}

func TestSearchLifecycle(t *testing.T) {
	s := Default().SearchSucceeded(jobs(3)).ChangeSort(results.SortDate).ChangePage(2).SelectJob("job-01")

	s = s.BeginSearch()
	assert.True(t, s.Loading)
	assert.Nil(t, s.Jobs)
	assert.Empty(t, s.SelectedJobID)
	assert.Equal(t, results.SortMatch, s.SortBy)
	assert.Equal(t, 1, s.Page)

	ok := s.SearchSucceeded(jobs(5))
	assert.False(t, ok.Loading)
	assert.Len(t, ok.Jobs, 5)
	assert.Empty(t, ok.Error)

	failed := s.SearchFailed("overloaded")
	assert.False(t, failed.Loading)
	assert.Nil(t, failed.Jobs)
	assert.Equal(t, "overloaded", failed.Error)
}

func TestSearchSucceeded_EmptyIsNotNil(t *testing.T) {
	s := Default().BeginSearch().SearchSucceeded(nil)

	assert.NotNil(t, s.Jobs)
	assert.Empty(t, s.Jobs)
}

func TestQuotaBlocked_OnlySetsError(t *testing.T) {
	before := Default().SearchSucceeded(jobs(2)).SelectJob("job-00")

	after := before.QuotaBlocked("no searches left")

	assert.Equal(t, "no searches left", after.Error)
	after.Error = ""
	assert.Equal(t, before, after)
}

func TestSelectJob_Toggles(t *testing.T) {
	s := Default().SearchSucceeded(jobs(3))

	s = s.SelectJob("job-01")
	assert.Equal(t, "job-01", s.SelectedJobID)

	s = s.SelectJob("job-01")
	assert.Empty(t, s.SelectedJobID)
}

func TestChangePage_ClearsSelection(t *testing.T) {
	s := Default().SearchSucceeded(jobs(25)).SelectJob("job-03")

	s = s.ChangePage(3)

	assert.Empty(t, s.SelectedJobID)
	assert.Len(t, s.Results().Jobs, 5)
	assert.Equal(t, 3, s.Results().TotalPages)
}

func TestChangeSort_ResetsPageAndSelection(t *testing.T) {
	s := Default().SearchSucceeded(jobs(25)).ChangePage(2).SelectJob("job-12").ChangeSort(results.SortPayDesc)

	assert.Equal(t, 1, s.Page)
	assert.Equal(t, results.SortPayDesc, s.SortBy)
	assert.Empty(t, s.SelectedJobID)
}

func TestBack(t *testing.T) {
	visitor := Default().Navigate(view.Terms).Back()
	assert.Equal(t, view.Search, visitor.View)

	user := Loaded("u1", Bundle{Profile: model.UserProfile{Name: "Ada"}}).Navigate(view.Terms).Back()
	assert.Equal(t, view.Dashboard, user.View)

	noBack := Default().Navigate(view.Pricing).Back()
	assert.Equal(t, view.Pricing, noBack.View)
}

func TestWithProfile_FirstCompletionGoesToDashboard(t *testing.T) {
	s := Loaded("u1", Bundle{})
	require.Equal(t, view.Profile, s.View)

	s = s.WithProfile(model.UserProfile{Name: "Ada"})
	assert.Equal(t, view.Dashboard, s.View)

	s = s.Navigate(view.Profile).WithProfile(model.UserProfile{Name: "Ada L."})
	assert.Equal(t, view.Profile, s.View)
}

func TestProjectAdded(t *testing.T) {
	s := Default().SearchSucceeded(jobs(3))

	s = s.ProjectAdded([]model.Project{project("job-01", model.ProjectActive, 100)})

	assert.Equal(t, view.Projects, s.View)
	assert.Equal(t, map[string]bool{"job-01": true}, s.ExistingProjectIDs())
	assert.True(t, s.Results().Jobs[1].InPipeline)
}

func TestSubscribe(t *testing.T) {
	s := Default().Navigate(view.Pricing).SubscribeFailed("billing is down")
	assert.Equal(t, "billing is down", s.SubscriptionError)
	assert.Equal(t, model.TierFree, s.Subscription.Status)

	s = s.Subscribed(model.SubscriptionState{Status: model.TierPro})
	assert.Empty(t, s.SubscriptionError)
	assert.Equal(t, view.Dashboard, s.View)
	assert.Equal(t, model.TierPro, s.Subscription.Status)
}

func TestDashboard(t *testing.T) {
	tests := []struct {
		name     string
		projects []model.Project
		want     model.Dashboard
	}{
		{"no projects", nil, model.Dashboard{}},
		{
			name: "mixed",
			projects: []model.Project{
				project("a", model.ProjectActive, 1000),
				project("b", model.ProjectActive, 250.5),
				project("c", model.ProjectCompleted, 5000),
			},
			want: model.Dashboard{Applications: 2, Earnings: 1250.5, SuccessRate: 33},
		},
		{
			name: "rounds half up",
			projects: []model.Project{
				project("a", model.ProjectCompleted, 0),
				project("b", model.ProjectCompleted, 0),
				project("c", model.ProjectActive, 0),
			},
			want: model.Dashboard{Applications: 1, SuccessRate: 67},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default().WithProjects(tt.projects)
			assert.Equal(t, tt.want, s.Dashboard())
		})
	}
}

func TestSnapshot(t *testing.T) {
	s := Default().
		WithSubscription(model.SubscriptionState{Status: model.TierFree, SearchesLeft: 2}).
		SearchSucceeded(jobs(12)).
		WithProjects([]model.Project{project("job-05", model.ProjectActive, 10), project("job-02", model.ProjectActive, 10)})

	snap := s.Snapshot()

	assert.Equal(t, []string{"job-02", "job-05"}, snap.ExistingProjectIDs)
	assert.Equal(t, subscription.FeatureRedFlags, snap.UnlockedFeature)
	assert.True(t, snap.CanSearch)
	assert.Equal(t, 2, snap.Results.TotalPages)
	assert.Equal(t, 2, snap.Dashboard.Applications)
	assert.Equal(t, view.Search, snap.Page.View)
}

func TestClone_Isolates(t *testing.T) {
	s := Default().WithProjects([]model.Project{project("a", model.ProjectActive, 1)})

	c := s.Clone()
	c.Projects[0].Status = model.ProjectCompleted

	assert.Equal(t, model.ProjectActive, s.Projects[0].Status)
}
