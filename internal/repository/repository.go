// Package repository declares the persistence contracts the services depend on.
//
// Every method takes a context and the owning user's ID where the data is
// per-user. Implementations return apperror values (NotFound, Conflict,
// ValidationFailed) for domain failures and wrapped driver errors otherwise.
package repository

import (
	"context"
	"time"

	"github.com/sakif/frelance/internal/model"
)

type UserRepository interface {
	// Upsert creates or refreshes a GitHub-backed account, keyed by GitHubID.
	Upsert(ctx context.Context, user *model.User) error
	// CreateWithPassword registers an email/password account.
	CreateWithPassword(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// ProfileRepository returns model.DefaultProfile for users who never saved one.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (model.UserProfile, error)
	SaveProfile(ctx context.Context, userID string, p model.UserProfile) error
}

// ProjectRepository stores the pipeline. Projects are listed newest first.
type ProjectRepository interface {
	ListProjects(ctx context.Context, userID string) ([]model.Project, error)
	AddProject(ctx context.Context, userID string, p *model.Project) error
	UpdateProject(ctx context.Context, userID string, p *model.Project) error
	DeleteProject(ctx context.Context, userID, projectID string) error
	GetProject(ctx context.Context, userID, projectID string) (*model.Project, error)
}

// ForumRepository is shared by all users. Threads are listed newest first and
// posts oldest first.
type ForumRepository interface {
	ListThreads(ctx context.Context) ([]model.ForumThread, error)
	AddThread(ctx context.Context, t model.NewThread) (*model.ForumThread, error)
	AddReply(ctx context.Context, r model.NewReply) (*model.ForumPost, error)
}

type SubscriptionRepository interface {
	// GetSubscription returns the free default for users without a row and
	// reverts a lapsed paid plan to free.
	GetSubscription(ctx context.Context, userID string) (model.SubscriptionState, error)
	// DecrementSearches consumes one free search and returns the new state.
	DecrementSearches(ctx context.Context, userID string) (model.SubscriptionState, error)
	Subscribe(ctx context.Context, userID string, tier model.Tier, expiry time.Time) (model.SubscriptionState, error)
	// ExpireDue reverts every paid plan whose expiry is at or before now and
	// reports how many were reverted.
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

// ActivityRepository lists newest first, at most limit entries.
type ActivityRepository interface {
	ListActivities(ctx context.Context, userID string, limit int) ([]model.Activity, error)
	AddActivity(ctx context.Context, userID string, a *model.Activity) error
}

// HistoryRepository lists newest first, at most limit entries.
type HistoryRepository interface {
	ListHistory(ctx context.Context, userID string, limit int) ([]model.SearchHistoryItem, error)
	AddHistory(ctx context.Context, userID string, h *model.SearchHistoryItem) error
}
