package model

import "time"

type ActivityType string

const (
	ActivityDocument ActivityType = "document"
	ActivityProject  ActivityType = "project"
	ActivitySearch   ActivityType = "search"
)

// Activity is an append-only audit entry shown on the dashboard.
type Activity struct {
	ID          string       `json:"id"`
	Type        ActivityType `json:"type"`
	Description string       `json:"description"`
	Timestamp   time.Time    `json:"timestamp"`
}

// SearchHistoryItem records one executed search.
type SearchHistoryItem struct {
	ID        string         `json:"id"`
	Criteria  SearchCriteria `json:"criteria"`
	Timestamp time.Time      `json:"timestamp"`
}

// DocumentType names the documents a user can generate for a job.
type DocumentType string

const (
	DocumentProposal DocumentType = "Proposal"
	DocumentEmail    DocumentType = "Cover Email"
	DocumentCV       DocumentType = "CV Highlights"
)
