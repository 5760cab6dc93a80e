// Package model defines the data structures used throughout the application.
// JSON tags follow the camelCase field names the single-page front end expects.
package model

// SearchCriteria is the immutable input of one search invocation.
type SearchCriteria struct {
	Query        string `json:"query"`
	Category     string `json:"category"`
	Subcategory  string `json:"subcategory"`
	Level        string `json:"level"`
	Industry     string `json:"industry"`
	DeliveryTime string `json:"deliveryTime"`
	SearchSource string `json:"searchSource"`
}

// Job is a listing returned by the AI job finder. Jobs are never mutated after
// the finder produces them; promoting one to the pipeline copies it into a Project.
type Job struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Company         string   `json:"company"`
	Summary         string   `json:"summary"`
	FullDescription string   `json:"fullDescription"`
	Skills          []string `json:"skills"`
	PayRange        string   `json:"payRange"`
	JobType         string   `json:"jobType"`
	PostedDate      string   `json:"postedDate"`
	SourceURL       string   `json:"sourceUrl"`
	SourceName      string   `json:"sourceName"`
	MatchPercentage int      `json:"matchPercentage"` // 0–100

	CompanyRating  string   `json:"companyRating,omitempty"`
	CompanyLogoURL *string  `json:"companyLogoUrl,omitempty"`
	PayEstimate    *string  `json:"payEstimate,omitempty"`
	RedFlags       []string `json:"redFlags,omitempty"`
}
