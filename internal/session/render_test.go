package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/frelance/internal/model"
	"github.com/sakif/frelance/internal/view"
)

func TestRender_EveryViewHasARenderer(t *testing.T) {
	for _, id := range view.All() {
		_, ok := renderers[id]
		assert.True(t, ok, "no renderer for %s", id)
	}
}

func TestRender_Search(t *testing.T) {
	s := Default().SearchSucceeded(jobs(3))

	p := Render(s)

	assert.Equal(t, view.Search, p.View)
	assert.Nil(t, p.Back)
	data, ok := p.Data.(SearchPage)
	require.True(t, ok)
	assert.True(t, data.HasResults)
	assert.True(t, data.CanSearch)
	assert.Len(t, data.Results.Jobs, 3)
	assert.NotEmpty(t, data.Options.Categories)
}

func TestRender_BackTarget(t *testing.T) {
	p := Render(Default().Navigate(view.FAQ))

	require.NotNil(t, p.Back)
	assert.Equal(t, view.Search, *p.Back)
	assert.Nil(t, p.Data)
}

func TestRender_Dashboard(t *testing.T) {
	s := Loaded("u1", Bundle{
		Profile:  model.UserProfile{Name: "Ada"},
		Projects: []model.Project{project("a", model.ProjectActive, 300)},
	})

	data, ok := Render(s).Data.(DashboardPage)
	require.True(t, ok)
	assert.Equal(t, "Ada", data.Name)
	assert.Equal(t, 1, data.Dashboard.Applications)
}

func TestRender_Pricing(t *testing.T) {
	s := Default().Navigate(view.Pricing).SubscribeFailed("try again")

	data, ok := Render(s).Data.(PricingPage)
	require.True(t, ok)
	assert.Equal(t, "try again", data.Error)
	assert.Len(t, data.Plans, 4)
}

func TestRender_LoadFailedShowsErrorOnEveryView(t *testing.T) {
	s := LoadFailed("u1", "something went wrong")

	for _, id := range view.All() {
		p := Render(s.Navigate(id))
		assert.Equal(t, "something went wrong", p.Error, id)
		assert.Nil(t, p.Data, id)
	}
}

func TestRender_UnknownViewFallsBackToSearch(t *testing.T) {
	s := Default()
	s.View = view.ID("removed-page")

	p := Render(s)

	assert.Equal(t, view.Search, p.View)
	assert.IsType(t, SearchPage{}, p.Data)
}
