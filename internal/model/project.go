package model

import "time"

// ProjectStatus is the pipeline status of a Project. The only transition is
// active → completed.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
)

// Project is a Job the user promoted into their tracked pipeline.
//
// The embedded Job keeps its original ID, which is what "already in pipeline"
// checks compare against. ProjectID is the identity of the pipeline entry itself.
type Project struct {
	Job
	ProjectID           string        `json:"projectId"`
	TotalTrackedSeconds int64         `json:"totalTrackedSeconds"`
	IsTracking          bool          `json:"isTracking"`
	StartTime           *time.Time    `json:"startTime,omitempty"`
	Status              ProjectStatus `json:"status"`
	ProjectValue        float64       `json:"projectValue"`
	CreatedAt           time.Time     `json:"createdAt"`
}

// Dashboard holds the figures shown on the dashboard page. It is always derived
// from the current projects and never stored.
type Dashboard struct {
	Applications int     `json:"applications"`
	Earnings     float64 `json:"earnings"`
	SuccessRate  int     `json:"successRate"`
}
