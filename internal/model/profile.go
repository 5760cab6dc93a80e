package model

// Availability values accepted on a profile.
const (
	AvailabilityAvailable    = "available"
	AvailabilitySoon         = "soon"
	AvailabilityNotAvailable = "not-available"
)

type PortfolioItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	ProjectURL  string `json:"projectUrl"`
}

// UserProfile is the freelancer's public profile. A profile with an empty Name
// is incomplete, which sends the user to the profile page after sign-in.
type UserProfile struct {
	Name         string          `json:"name"`
	Headline     string          `json:"headline"`
	Skills       []string        `json:"skills"`
	Portfolio    []PortfolioItem `json:"portfolio"`
	Rate         float64         `json:"rate"`
	Availability string          `json:"availability"`
}

// Complete reports whether the profile has been filled in.
func (p UserProfile) Complete() bool {
	return p.Name != ""
}

// DefaultProfile is the profile of a user who has never saved one.
func DefaultProfile() UserProfile {
	return UserProfile{
		Skills:       []string{},
		Portfolio:    []PortfolioItem{},
		Availability: AvailabilityAvailable,
	}
}
