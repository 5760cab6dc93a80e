package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/sakif/frelance/internal/apperror"
	"github.com/sakif/frelance/internal/model"
	"github.com/sakif/frelance/internal/session"
	"github.com/sakif/frelance/internal/subscription"
)

// fakeRepos is an in-memory implementation of every per-user repository the
// AppService uses. fail makes a named method return an error; calls counts
// invocations per method name.
type fakeRepos struct {
	mu sync.Mutex

	profiles      map[string]model.UserProfile
	projects      map[string][]model.Project
	threads       []model.ForumThread
	subscriptions map[string]model.SubscriptionState
	activities    map[string][]model.Activity
	history       map[string][]model.SearchHistoryItem

	fail  map[string]error
	calls map[string]int
	seq   int
	now   time.Time
}

func newFakeRepos() *fakeRepos {
	return &fakeRepos{
		profiles:      map[string]model.UserProfile{},
		projects:      map[string][]model.Project{},
		subscriptions: map[string]model.SubscriptionState{},
		activities:    map[string][]model.Activity{},
		history:       map[string][]model.SearchHistoryItem{},
		fail:          map[string]error{},
		calls:         map[string]int{},
		now:           time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeRepos) repositories() Repositories {
	return Repositories{
		Profiles:      f,
		Projects:      f,
		Forum:         f,
		Subscriptions: f,
		Activities:    f,
		History:       f,
	}
}

// enter records a call and returns the injected failure, if any. Callers hold mu.
func (f *fakeRepos) enter(method string) error {
	f.calls[method]++
	return f.fail[method]
}

func (f *fakeRepos) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeRepos) setFail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[method] = err
}

func (f *fakeRepos) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

// tick returns strictly increasing timestamps so newest-first ordering is stable.
func (f *fakeRepos) tick() time.Time {
	f.now = f.now.Add(time.Second)
	return f.now
}

func (f *fakeRepos) GetProfile(_ context.Context, userID string) (model.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetProfile"); err != nil {
		return model.UserProfile{}, err
	}
	p, ok := f.profiles[userID]
	if !ok {
		return model.DefaultProfile(), nil
	}
	return p, nil
}

func (f *fakeRepos) SaveProfile(_ context.Context, userID string, p model.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("SaveProfile"); err != nil {
		return err
	}
	f.profiles[userID] = p
	return nil
}

func (f *fakeRepos) ListProjects(_ context.Context, userID string) ([]model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListProjects"); err != nil {
		return nil, err
	}
	out := slices.Clone(f.projects[userID])
	slices.Reverse(out)
	if out == nil {
		out = []model.Project{}
	}
	return out, nil
}

func (f *fakeRepos) GetProject(_ context.Context, userID, projectID string) (*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetProject"); err != nil {
		return nil, err
	}
	for _, p := range f.projects[userID] {
		if p.ProjectID == projectID {
			return &p, nil
		}
	}
	return nil, apperror.NotFound("project", projectID)
}

func (f *fakeRepos) AddProject(_ context.Context, userID string, p *model.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("AddProject"); err != nil {
		return err
	}
	for _, existing := range f.projects[userID] {
		if existing.ID == p.ID {
			return apperror.Conflict("project", p.ID)
		}
	}
	p.ProjectID = f.nextID("project")
	p.CreatedAt = f.tick()
	f.projects[userID] = append(f.projects[userID], *p)
	return nil
}

func (f *fakeRepos) UpdateProject(_ context.Context, userID string, p *model.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateProject"); err != nil {
		return err
	}
	for i, existing := range f.projects[userID] {
		if existing.ProjectID == p.ProjectID {
			f.projects[userID][i] = *p
			return nil
		}
	}
	return apperror.NotFound("project", p.ProjectID)
}

func (f *fakeRepos) DeleteProject(_ context.Context, userID, projectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DeleteProject"); err != nil {
		return err
	}
	before := len(f.projects[userID])
	f.projects[userID] = slices.DeleteFunc(f.projects[userID], func(p model.Project) bool {
		return p.ProjectID == projectID
	})
	if len(f.projects[userID]) == before {
		return apperror.NotFound("project", projectID)
	}
	return nil
}

func (f *fakeRepos) ListThreads(context.Context) ([]model.ForumThread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListThreads"); err != nil {
		return nil, err
	}
	out := slices.Clone(f.threads)
	slices.Reverse(out)
	if out == nil {
		out = []model.ForumThread{}
	}
	return out, nil
}

func (f *fakeRepos) AddThread(_ context.Context, nt model.NewThread) (*model.ForumThread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("AddThread"); err != nil {
		return nil, err
	}
	now := f.tick()
	t := model.ForumThread{
		ID:        f.nextID("thread"),
		Title:     nt.Title,
		Author:    nt.Author,
		Category:  nt.Category,
		CreatedAt: now,
		Posts:     []model.ForumPost{{ID: f.nextID("post"), Author: nt.Author, Content: nt.Content, Timestamp: now}},
	}
	f.threads = append(f.threads, t)
	return &t, nil
}

func (f *fakeRepos) AddReply(_ context.Context, r model.NewReply) (*model.ForumPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("AddReply"); err != nil {
		return nil, err
	}
	for i := range f.threads {
		if f.threads[i].ID == r.ThreadID {
			p := model.ForumPost{ID: f.nextID("post"), Author: r.Author, Content: r.Content, Timestamp: f.tick()}
			f.threads[i].Posts = append(f.threads[i].Posts, p)
			return &p, nil
		}
	}
	return nil, apperror.NotFound("thread", r.ThreadID)
}

func (f *fakeRepos) GetSubscription(_ context.Context, userID string) (model.SubscriptionState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetSubscription"); err != nil {
		return model.SubscriptionState{}, err
	}
	return f.subscription(userID), nil
}

func (f *fakeRepos) subscription(userID string) model.SubscriptionState {
	s, ok := f.subscriptions[userID]
	if !ok {
		return subscription.Default()
	}
	return s
}

func (f *fakeRepos) DecrementSearches(_ context.Context, userID string) (model.SubscriptionState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DecrementSearches"); err != nil {
		return model.SubscriptionState{}, err
	}
	s := f.subscription(userID)
	if s.Status == model.TierFree && s.SearchesLeft == 0 {
		return model.SubscriptionState{}, apperror.QuotaExceeded("no searches left")
	}
	s = subscription.Decrement(s)
	f.subscriptions[userID] = s
	return s, nil
}

func (f *fakeRepos) Subscribe(_ context.Context, userID string, tier model.Tier, expiry time.Time) (model.SubscriptionState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Subscribe"); err != nil {
		return model.SubscriptionState{}, err
	}
	s := f.subscription(userID)
	s.Status = tier
	s.Expiry = &expiry
	f.subscriptions[userID] = s
	return s, nil
}

func (f *fakeRepos) ExpireDue(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ExpireDue"); err != nil {
		return 0, err
	}
	var n int64
	for id, s := range f.subscriptions {
		if next, lapsed := subscription.Expire(s, now); lapsed {
			f.subscriptions[id] = next
			n++
		}
	}
	return n, nil
}

func (f *fakeRepos) ListActivities(_ context.Context, userID string, limit int) ([]model.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListActivities"); err != nil {
		return nil, err
	}
	return newestFirst(f.activities[userID], limit), nil
}

func (f *fakeRepos) AddActivity(_ context.Context, userID string, a *model.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("AddActivity"); err != nil {
		return err
	}
	a.ID = f.nextID("activity")
	a.Timestamp = f.tick()
	f.activities[userID] = append(f.activities[userID], *a)
	return nil
}

func (f *fakeRepos) ListHistory(_ context.Context, userID string, limit int) ([]model.SearchHistoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListHistory"); err != nil {
		return nil, err
	}
	return newestFirst(f.history[userID], limit), nil
}

func (f *fakeRepos) AddHistory(_ context.Context, userID string, h *model.SearchHistoryItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("AddHistory"); err != nil {
		return err
	}
	h.ID = f.nextID("history")
	h.Timestamp = f.tick()
	f.history[userID] = append(f.history[userID], *h)
	return nil
}

func newestFirst[T any](xs []T, limit int) []T {
	out := slices.Clone(xs)
	slices.Reverse(out)
	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []T{}
	}
	return out
}

// fakeFinder returns a fixed result. onFind, when set, runs before it
// answers, so tests can look at the state while a search is in flight.
type fakeFinder struct {
	mu     sync.Mutex
	jobs   []model.Job
	err    error
	calls  int
	last   model.SearchCriteria
	onFind func()
}

func (f *fakeFinder) Find(_ context.Context, c model.SearchCriteria, _ model.UserProfile) ([]model.Job, error) {
	f.mu.Lock()
	f.calls++
	f.last = c
	hook := f.onFind
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if f.err != nil {
		return nil, f.err
	}
	return slices.Clone(f.jobs), nil
}

func (f *fakeFinder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// failingStore wraps a MemoryStore and fails Put once armed.
type failingStore struct {
	*session.MemoryStore
	putErr error
}

func (s *failingStore) Put(ctx context.Context, key string, st session.State) error {
	if s.putErr != nil {
		return s.putErr
	}
	return s.MemoryStore.Put(ctx, key, st)
}

func testJobs(n int) []model.Job {
	jobs := make([]model.Job, n)
	for i := range jobs {
		jobs[i] = model.Job{
			ID:              fmt.Sprintf("job-%d", i+1),
			Title:           fmt.Sprintf("Job %d", i+1),
			PayRange:        "$20-$40/hr",
			MatchPercentage: 50 + i,
			Skills:          []string{},
		}
	}
	return jobs
}
