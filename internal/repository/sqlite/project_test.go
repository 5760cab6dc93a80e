package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/frelance/internal/apperror"
	"github.com/sakif/frelance/internal/model"
)

func testJob(id string) model.Job {
	estimate := "$4,000"
	return model.Job{
		ID:              id,
		Title:           "Go developer",
		Company:         "Acme",
		Skills:          []string{"Go"},
		PayRange:        "$50-$70/hr",
		MatchPercentage: 88,
		PayEstimate:     &estimate,
		RedFlags:        []string{"vague scope"},
	}
}

func addTestProject(t *testing.T, db *DB, userID, jobID string) *model.Project {
	t.Helper()
	p := &model.Project{Job: testJob(jobID), Status: model.ProjectActive, ProjectValue: 60}
	if err := db.AddProject(context.Background(), userID, p); err != nil {
		t.Fatalf("AddProject(%s) error = %v", jobID, err)
	}
	return p
}

func TestAddProject(t *testing.T) {
	db := newTestDB(t)
	u := createTestUser(t, db, 1)

	p := addTestProject(t, db, u.ID, "job-1")

	if p.ProjectID == "" || p.ProjectID == p.ID {
		t.Errorf("ProjectID = %q, want a new ID distinct from the job ID", p.ProjectID)
	}
	if p.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	got, err := db.GetProject(context.Background(), u.ID, p.ProjectID)
	if err != nil {
		t.Fatalf("GetProject() error = %v", err)
	}
	if got.ID != "job-1" || got.Title != "Go developer" || got.ProjectValue != 60 {
		t.Errorf("GetProject() = %+v", got)
	}
	if got.PayEstimate == nil || *got.PayEstimate != "$4,000" {
		t.Errorf("PayEstimate = %v", got.PayEstimate)
	}
	if len(got.RedFlags) != 1 {
		t.Errorf("RedFlags = %v", got.RedFlags)
	}
}

func TestAddProject_DuplicateJobIsConflict(t *testing.T) {
	db := newTestDB(t)
	u := createTestUser(t, db, 1)
	addTestProject(t, db, u.ID, "job-1")

	err := db.AddProject(context.Background(), u.ID, &model.Project{Job: testJob("job-1")})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}
}

func TestAddProject_SameJobForDifferentUsers(t *testing.T) {
	db := newTestDB(t)
	a := createTestUser(t, db, 1)
	b := createTestUser(t, db, 2)

	addTestProject(t, db, a.ID, "job-1")
	addTestProject(t, db, b.ID, "job-1")
}

func TestListProjects_NewestFirstAndScopedToUser(t *testing.T) {
	db := newTestDB(t)
	now := setClock(db, time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))
	a := createTestUser(t, db, 1)
	b := createTestUser(t, db, 2)

	addTestProject(t, db, a.ID, "old")
	*now = now.Add(time.Hour)
	addTestProject(t, db, a.ID, "new")
	addTestProject(t, db, b.ID, "someone-else")

	got, err := db.ListProjects(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "new" || got[1].ID != "old" {
		t.Errorf("order = [%s %s], want [new old]", got[0].ID, got[1].ID)
	}
}

func TestListProjects_Empty(t *testing.T) {
	db := newTestDB(t)
	u := createTestUser(t, db, 1)

	got, err := db.ListProjects(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("ListProjects() = %v, want empty non-nil", got)
	}
}

func TestUpdateProject(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, 1)
	p := addTestProject(t, db, u.ID, "job-1")

	start := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	p.IsTracking = true
	p.StartTime = &start
	p.TotalTrackedSeconds = 3600
	p.ProjectValue = 1500
	p.Status = model.ProjectCompleted
	p.Title = "must not be written"
	if err := db.UpdateProject(ctx, u.ID, p); err != nil {
		t.Fatalf("UpdateProject() error = %v", err)
	}

	got, err := db.GetProject(ctx, u.ID, p.ProjectID)
	if err != nil {
		t.Fatalf("GetProject() error = %v", err)
	}
	if !got.IsTracking || got.TotalTrackedSeconds != 3600 || got.ProjectValue != 1500 {
		t.Errorf("GetProject() = %+v", got)
	}
	if got.Status != model.ProjectCompleted {
		t.Errorf("Status = %s", got.Status)
	}
	if got.StartTime == nil || !got.StartTime.Equal(start) {
		t.Errorf("StartTime = %v, want %v", got.StartTime, start)
	}
	if got.Title != "Go developer" {
		t.Errorf("Title = %q, the job must stay as promoted", got.Title)
	}
}

func TestUpdateProject_OtherUsersProjectIsNotFound(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, 1)
	other := createTestUser(t, db, 2)
	p := addTestProject(t, db, owner.ID, "job-1")

	err := db.UpdateProject(context.Background(), other.ID, p)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestDeleteProject(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, 1)
	p := addTestProject(t, db, u.ID, "job-1")

	if err := db.DeleteProject(ctx, u.ID, p.ProjectID); err != nil {
		t.Fatalf("DeleteProject() error = %v", err)
	}
	if _, err := db.GetProject(ctx, u.ID, p.ProjectID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetProject() after delete error = %v, want ErrNotFound", err)
	}
	if err := db.DeleteProject(ctx, u.ID, p.ProjectID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second DeleteProject() error = %v, want ErrNotFound", err)
	}

	// The job can be promoted again once its project is gone.
	addTestProject(t, db, u.ID, "job-1")
}
