package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	for _, id := range All() {
		got, ok := Parse(string(id))
		assert.True(t, ok, id)
		assert.Equal(t, id, got)
	}

	_, ok := Parse("settings")
	assert.False(t, ok)
	_, ok = Parse("")
	assert.False(t, ok)
}

func TestAll_HasFourteenPages(t *testing.T) {
	assert.Len(t, All(), 14)
}

func TestBack(t *testing.T) {
	signedIn := BackContext{SignedIn: true, ProfileComplete: true}
	newUser := BackContext{SignedIn: true}
	visitor := BackContext{}

	tests := []struct {
		name   string
		from   ID
		ctx    BackContext
		want   ID
		wantOK bool
	}{
		{"profile with complete profile", Profile, signedIn, Dashboard, true},
		{"profile still incomplete", Profile, newUser, Search, true},
		{"projects", Projects, signedIn, Dashboard, true},
		{"community as visitor", Community, visitor, Dashboard, true},
		{"insights", Insights, signedIn, Dashboard, true},
		{"privacy signed in", Privacy, signedIn, Dashboard, true},
		{"privacy as visitor", Privacy, visitor, Search, true},
		{"terms as visitor", Terms, visitor, Search, true},
		{"faq signed in", FAQ, newUser, Dashboard, true},
		{"refund as visitor", Refund, visitor, Search, true},
		{"contact signed in", Contact, signedIn, Dashboard, true},
		{"aup as visitor", AUP, visitor, Search, true},
		{"search has no back", Search, signedIn, "", false},
		{"dashboard has no back", Dashboard, signedIn, "", false},
		{"pricing has no back", Pricing, visitor, "", false},
		{"guide has no back", Guide, visitor, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Back(tt.from, tt.ctx)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransitions(t *testing.T) {
	assert.Equal(t, Profile, AfterLogin(false))
	assert.Equal(t, Dashboard, AfterLogin(true))
	assert.Equal(t, Search, AfterLogout())
	assert.Equal(t, Projects, AfterProjectAdded())
	assert.Equal(t, Dashboard, AfterSubscribed())
}

func TestAfterProfileSaved(t *testing.T) {
	assert.Equal(t, Dashboard, AfterProfileSaved(Profile, false, true))
	assert.Equal(t, Profile, AfterProfileSaved(Profile, true, true))
	assert.Equal(t, Profile, AfterProfileSaved(Profile, false, false))
}

func TestRequiresSession(t *testing.T) {
	assert.True(t, RequiresSession(Projects))
	assert.True(t, RequiresSession(Profile))
	assert.False(t, RequiresSession(Search))
	assert.False(t, RequiresSession(Community))
	assert.False(t, RequiresSession(Pricing))
}
