package model

import "time"

// User represents a registered account.
//
// Accounts come from one of two identity sources: GitHub OAuth (GitHubID set)
// or email and password (PasswordHash set). The internal ID is an xid string
// in both cases, so nothing else in the app depends on which one was used.
//
// WHY GitHubID int64 AND NOT *int64?
// GitHub user IDs start at 1, so zero is a safe "no GitHub account" marker.
// The repository stores zero as NULL to keep the UNIQUE constraint meaningful.
type User struct {
	ID           string    `json:"id"`
	GitHubID     int64     `json:"githubId,omitempty"`
	Login        string    `json:"login"`
	Email        string    `json:"email"`
	AvatarURL    string    `json:"avatarUrl"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
