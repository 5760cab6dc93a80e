// Package service holds the application's business rules.
//
// AppService turns every user event (search, sort, navigate, add a project,
// subscribe, ...) into one transition of the visitor's session.State:
//
//	Handler → AppService → repositories / finder
//	                     ↘ session.Store (per-visitor state)
//
// Each event takes the visitor's state lock, applies its rules, persists the
// new state and returns a Snapshot with every derived value. Nothing in here
// knows about HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sakif/frelance/internal/apperror"
	"github.com/sakif/frelance/internal/finder"
	"github.com/sakif/frelance/internal/model"
	"github.com/sakif/frelance/internal/repository"
	"github.com/sakif/frelance/internal/session"
	"github.com/sakif/frelance/internal/subscription"
)

// User-facing messages.
const (
	MsgQuotaExceeded      = "You've reached your search limit. Upgrade for unlimited access and deeper insights."
	MsgSearchFailed       = "The AI is working hard! It seems overloaded right now. Please try your search again in a moment."
	MsgSubscriptionFailed = "We couldn't update your subscription. You have not been charged — please try again."
	MsgLoadFailed         = "We couldn't load your account data. Please sign in again."
	MsgSignInRequired     = "Please sign in to continue."
)

// Listing sizes kept on the session.
const (
	ActivityLimit = 50
	HistoryLimit  = 20
)

// Identity says whose state an event applies to. Signed-in requests carry a
// UserID; every request carries the anonymous VisitorID cookie.
type Identity struct {
	UserID    string
	VisitorID string
}

func (id Identity) SignedIn() bool { return id.UserID != "" }

func (id Identity) key() string { return session.Key(id.UserID, id.VisitorID) }

func (id Identity) validate() error {
	if id.UserID == "" && id.VisitorID == "" {
		return apperror.Unauthorized("no session")
	}
	return nil
}

// Repositories bundles the per-user stores the service reads and writes.
type Repositories struct {
	Profiles      repository.ProfileRepository
	Projects      repository.ProjectRepository
	Forum         repository.ForumRepository
	Subscriptions repository.SubscriptionRepository
	Activities    repository.ActivityRepository
	History       repository.HistoryRepository
}

type AppService struct {
	repos  Repositories
	finder finder.Finder
	store  session.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewAppService(repos Repositories, f finder.Finder, store session.Store, logger *slog.Logger) *AppService {
	return &AppService{
		repos:  repos,
		finder: f,
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// transition computes the next state. It returns the state to persist even
// when it fails, so a failure can leave its message on the session.
type transition func(ctx context.Context, st session.State) (session.State, error)

var errLoadFailed = errors.New("bulk load failed earlier in this session")

// update runs one event for id under the state lock.
//
// Once the lock is held the event runs on a context detached from the
// request: a client that disconnects mid-search must not leave the session
// stuck with Loading set.
func (s *AppService) update(ctx context.Context, id Identity, fn transition) (session.Snapshot, error) {
	if err := id.validate(); err != nil {
		return session.Snapshot{}, err
	}

	unlock, err := s.store.Lock(ctx, id.key())
	if err != nil {
		return session.Snapshot{}, apperror.Unavailable("Your session is busy. Please try again.", err)
	}
	defer unlock()
	ctx = context.WithoutCancel(ctx)

	st, err := s.current(ctx, id)
	if err != nil {
		return st.Snapshot(), err
	}
	if st.LoadError != "" {
		return st.Snapshot(), apperror.Unavailable(st.LoadError, errLoadFailed)
	}

	next, fnErr := fn(ctx, st)
	if err := s.store.Put(ctx, id.key(), next); err != nil {
		s.logger.Error("saving session state",
			slog.String("key", id.key()),
			slog.String("error", err.Error()),
		)
		return st.Snapshot(), apperror.Unavailable("We couldn't save your changes. Please try again.", err)
	}
	return next.Snapshot(), fnErr
}

// publish stores an intermediate state, such as a search in progress, so
// readers can see it before the event finishes.
func (s *AppService) publish(ctx context.Context, id Identity, st session.State) {
	if err := s.store.Put(ctx, id.key(), st); err != nil {
		s.logger.Warn("publishing intermediate state",
			slog.String("key", id.key()),
			slog.String("error", err.Error()),
		)
	}
}

// current returns the stored state, creating it on first sight: defaults for
// a visitor, a bulk load for a signed-in user. A failed bulk load is stored so
// every page shows the error until the next sign-in.
func (s *AppService) current(ctx context.Context, id Identity) (session.State, error) {
	st, found, err := s.store.Get(ctx, id.key())
	if err != nil {
		return session.Default(), apperror.Unavailable("We couldn't read your session. Please try again.", err)
	}
	if found {
		if sub, lapsed := subscription.Expire(st.Subscription, s.now()); lapsed {
			st = st.WithSubscription(sub)
		}
		return st, nil
	}
	if !id.SignedIn() {
		return session.Default(), nil
	}
	return s.loadUser(ctx, id)
}

// loadUser bulk-loads a signed-in user and stores the result.
func (s *AppService) loadUser(ctx context.Context, id Identity) (session.State, error) {
	b, err := s.load(ctx, id.UserID)
	if err != nil {
		s.logger.Error("loading user data",
			slog.String("userID", id.UserID),
			slog.String("error", err.Error()),
		)
		st := session.LoadFailed(id.UserID, MsgLoadFailed)
		s.publish(ctx, id, st)
		return st, apperror.Unavailable(MsgLoadFailed, err)
	}

	st := session.Loaded(id.UserID, b)
	if err := s.store.Put(ctx, id.key(), st); err != nil {
		return st, apperror.Unavailable("We couldn't save your session. Please try again.", err)
	}
	return st, nil
}

// load issues all six reads concurrently. The first failure cancels the rest
// and is the only error reported; nothing partial is returned.
func (s *AppService) load(ctx context.Context, userID string) (session.Bundle, error) {
	var b session.Bundle
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		b.Profile, err = s.repos.Profiles.GetProfile(gctx, userID)
		return wrap("profile", err)
	})
	g.Go(func() (err error) {
		b.Projects, err = s.repos.Projects.ListProjects(gctx, userID)
		return wrap("projects", err)
	})
	g.Go(func() (err error) {
		b.Threads, err = s.repos.Forum.ListThreads(gctx)
		return wrap("threads", err)
	})
	g.Go(func() (err error) {
		b.Subscription, err = s.repos.Subscriptions.GetSubscription(gctx, userID)
		return wrap("subscription", err)
	})
	g.Go(func() (err error) {
		b.Activities, err = s.repos.Activities.ListActivities(gctx, userID, ActivityLimit)
		return wrap("activities", err)
	})
	g.Go(func() (err error) {
		b.History, err = s.repos.History.ListHistory(gctx, userID, HistoryLimit)
		return wrap("history", err)
	})

	if err := g.Wait(); err != nil {
		return session.Bundle{}, err
	}
	return b, nil
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("loading %s: %w", what, err)
}

// Snapshot returns the visitor's current state without taking the lock, so a
// search in progress shows up with Loading set. An unseen visitor gets the
// defaults without anything being stored; an unseen signed-in user is loaded
// under the lock.
func (s *AppService) Snapshot(ctx context.Context, id Identity) (session.Snapshot, error) {
	if err := id.validate(); err != nil {
		return session.Snapshot{}, err
	}
	st, found, err := s.store.Get(ctx, id.key())
	if err != nil {
		return session.Snapshot{}, apperror.Unavailable("We couldn't read your session. Please try again.", err)
	}
	if found {
		if st.LoadError != "" {
			return st.Snapshot(), nil
		}
		if sub, lapsed := subscription.Expire(st.Subscription, s.now()); lapsed {
			st = st.WithSubscription(sub)
		}
		return st.Snapshot(), nil
	}
	if !id.SignedIn() {
		return session.Default().Snapshot(), nil
	}
	snap, err := s.update(ctx, id, unchanged)
	if errors.Is(err, apperror.ErrUnavailable) && snap.State.LoadError != "" {
		// The load error is part of the snapshot; rendering it is not a failure.
		return snap, nil
	}
	return snap, err
}

func unchanged(_ context.Context, st session.State) (session.State, error) {
	return st, nil
}

// Login runs when a user signs in. Their data is bulk-loaded afresh and the
// anonymous visitor state is discarded.
func (s *AppService) Login(ctx context.Context, id Identity) (session.Snapshot, error) {
	if !id.SignedIn() {
		return session.Snapshot{}, apperror.Unauthorized(MsgSignInRequired)
	}

	unlock, err := s.store.Lock(ctx, id.key())
	if err != nil {
		return session.Snapshot{}, apperror.Unavailable("Your session is busy. Please try again.", err)
	}
	defer unlock()
	ctx = context.WithoutCancel(ctx)

	st, err := s.loadUser(ctx, id)
	if err == nil && id.VisitorID != "" {
		if derr := s.store.Delete(ctx, session.Key("", id.VisitorID)); derr != nil {
			s.logger.Warn("discarding visitor state", slog.String("error", derr.Error()))
		}
	}

	s.logger.Info("user session loaded",
		slog.String("userID", id.UserID),
		slog.Bool("ok", err == nil),
	)
	return st.Snapshot(), err
}

// Logout drops the user's state. The visitor starts over from defaults on the
// search page. The delete waits for any event still running for the user, so
// a search in flight cannot write the state back afterwards.
func (s *AppService) Logout(ctx context.Context, id Identity) (session.Snapshot, error) {
	if id.SignedIn() {
		if err := s.dropUser(ctx, id); err != nil {
			return session.Snapshot{}, err
		}
	}

	st := session.Default()
	if id.VisitorID != "" {
		visitor := Identity{VisitorID: id.VisitorID}
		if err := s.store.Put(ctx, visitor.key(), st); err != nil {
			return session.Snapshot{}, apperror.Unavailable("We couldn't reset your session.", err)
		}
	}
	return st.Snapshot(), nil
}

func (s *AppService) dropUser(ctx context.Context, id Identity) error {
	unlock, err := s.store.Lock(ctx, id.key())
	if err != nil {
		return apperror.Unavailable("Your session is busy. Please try again.", err)
	}
	defer unlock()

	if err := s.store.Delete(context.WithoutCancel(ctx), id.key()); err != nil {
		return apperror.Unavailable("We couldn't sign you out. Please try again.", err)
	}
	return nil
}

// requireUser rejects events that only make sense for a signed-in user.
func requireUser(st session.State) error {
	if !st.SignedIn() {
		return apperror.Unauthorized(MsgSignInRequired)
	}
	return nil
}

// logActivity appends an audit entry and reloads the feed. Failures are
// logged and otherwise ignored: the action that triggered the entry has
// already happened.
func (s *AppService) logActivity(ctx context.Context, st session.State, typ model.ActivityType, description string) session.State {
	next, err := s.recordActivity(ctx, st, typ, description)
	if err != nil {
		s.logger.Warn("recording activity",
			slog.String("userID", st.UserID),
			slog.String("type", string(typ)),
			slog.String("error", err.Error()),
		)
		return st
	}
	return next
}

func (s *AppService) recordActivity(ctx context.Context, st session.State, typ model.ActivityType, description string) (session.State, error) {
	if err := s.repos.Activities.AddActivity(ctx, st.UserID, &model.Activity{Type: typ, Description: description}); err != nil {
		return st, fmt.Errorf("adding activity: %w", err)
	}
	activities, err := s.repos.Activities.ListActivities(ctx, st.UserID, ActivityLimit)
	if err != nil {
		return st, fmt.Errorf("reloading activities: %w", err)
	}
	return st.WithActivities(activities), nil
}
