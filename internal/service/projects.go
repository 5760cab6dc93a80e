package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/frelance/internal/apperror"
	"github.com/sakif/frelance/internal/model"
	"github.com/sakif/frelance/internal/results"
	"github.com/sakif/frelance/internal/session"
)

// ProjectPatch lists the pipeline fields a user may change. Nil fields are
// left alone.
type ProjectPatch struct {
	Status       *model.ProjectStatus `json:"status,omitempty"`
	ProjectValue *float64             `json:"projectValue,omitempty"`
}

// AddProject promotes a job from the current result set into the pipeline and
// shows the projects page.
func (s *AppService) AddProject(ctx context.Context, id Identity, jobID string) (session.Snapshot, error) {
	return s.update(ctx, id, func(ctx context.Context, st session.State) (session.State, error) {
		if err := requireUser(st); err != nil {
			return st, err
		}

		job, ok := findJob(st.Jobs, jobID)
		if !ok {
			return st, apperror.NotFound("job", jobID)
		}
		if st.ExistingProjectIDs()[job.ID] {
			return st, apperror.Conflict("project", job.ID)
		}

		p := &model.Project{
			Job:          job,
			Status:       model.ProjectActive,
			ProjectValue: results.AveragePay(job.PayRange),
		}
		if err := s.repos.Projects.AddProject(ctx, st.UserID, p); err != nil {
			return st, fmt.Errorf("adding project: %w", err)
		}

		projects, err := s.repos.Projects.ListProjects(ctx, st.UserID)
		if err != nil {
			return st, fmt.Errorf("reloading projects: %w", err)
		}
		st = st.ProjectAdded(projects)
		return s.logActivity(ctx, st, model.ActivityProject, fmt.Sprintf(`Added "%s" to your pipeline.`, job.Title)), nil
	})
}

// UpdateProject applies a patch. Status only ever moves from active to
// completed; completing a project stops its timer.
func (s *AppService) UpdateProject(ctx context.Context, id Identity, projectID string, patch ProjectPatch) (session.Snapshot, error) {
	if patch.Status != nil && *patch.Status != model.ProjectActive && *patch.Status != model.ProjectCompleted {
		return session.Snapshot{}, apperror.ValidationFailed("status", fmt.Sprintf("%q is not a project status.", *patch.Status))
	}
	if patch.ProjectValue != nil && *patch.ProjectValue < 0 {
		return session.Snapshot{}, apperror.ValidationFailed("projectValue", "Project value cannot be negative.")
	}

	return s.update(ctx, id, func(ctx context.Context, st session.State) (session.State, error) {
		if err := requireUser(st); err != nil {
			return st, err
		}
		p, err := s.repos.Projects.GetProject(ctx, st.UserID, projectID)
		if err != nil {
			return st, err
		}

		completing := false
		if patch.Status != nil && *patch.Status != p.Status {
			if p.Status == model.ProjectCompleted {
				return st, apperror.ValidationFailed("status", "A completed project cannot be reopened.")
			}
			p.Status = *patch.Status
			completing = true
			stopTimer(p, s.now())
		}
		if patch.ProjectValue != nil {
			p.ProjectValue = *patch.ProjectValue
		}

		st, err = s.saveProject(ctx, st, p)
		if err != nil || !completing {
			return st, err
		}
		return s.logActivity(ctx, st, model.ActivityProject, fmt.Sprintf(`Completed project: "%s".`, p.Title)), nil
	})
}

// StartTimer begins tracking time on an active project. Starting a running
// timer changes nothing.
func (s *AppService) StartTimer(ctx context.Context, id Identity, projectID string) (session.Snapshot, error) {
	return s.update(ctx, id, func(ctx context.Context, st session.State) (session.State, error) {
		if err := requireUser(st); err != nil {
			return st, err
		}
		p, err := s.repos.Projects.GetProject(ctx, st.UserID, projectID)
		if err != nil {
			return st, err
		}
		if p.Status == model.ProjectCompleted {
			return st, apperror.ValidationFailed("status", "Time cannot be tracked on a completed project.")
		}
		if p.IsTracking {
			return st, nil
		}

		start := s.now()
		p.IsTracking = true
		p.StartTime = &start
		return s.saveProject(ctx, st, p)
	})
}

// StopTimer adds the running interval to the project's tracked time.
// Stopping a stopped timer changes nothing.
func (s *AppService) StopTimer(ctx context.Context, id Identity, projectID string) (session.Snapshot, error) {
	return s.update(ctx, id, func(ctx context.Context, st session.State) (session.State, error) {
		if err := requireUser(st); err != nil {
			return st, err
		}
		p, err := s.repos.Projects.GetProject(ctx, st.UserID, projectID)
		if err != nil {
			return st, err
		}
		if !stopTimer(p, s.now()) {
			return st, nil
		}
		return s.saveProject(ctx, st, p)
	})
}

// DeleteProject removes a project from the pipeline.
func (s *AppService) DeleteProject(ctx context.Context, id Identity, projectID string) (session.Snapshot, error) {
	return s.update(ctx, id, func(ctx context.Context, st session.State) (session.State, error) {
		if err := requireUser(st); err != nil {
			return st, err
		}
		p, err := s.repos.Projects.GetProject(ctx, st.UserID, projectID)
		if err != nil {
			return st, err
		}
		if err := s.repos.Projects.DeleteProject(ctx, st.UserID, projectID); err != nil {
			return st, fmt.Errorf("deleting project: %w", err)
		}

		projects, err := s.repos.Projects.ListProjects(ctx, st.UserID)
		if err != nil {
			return st, fmt.Errorf("reloading projects: %w", err)
		}
		st = st.WithProjects(projects)
		return s.logActivity(ctx, st, model.ActivityProject, fmt.Sprintf(`Deleted project: "%s".`, p.Title)), nil
	})
}

func (s *AppService) saveProject(ctx context.Context, st session.State, p *model.Project) (session.State, error) {
	if err := s.repos.Projects.UpdateProject(ctx, st.UserID, p); err != nil {
		return st, fmt.Errorf("updating project: %w", err)
	}
	projects, err := s.repos.Projects.ListProjects(ctx, st.UserID)
	if err != nil {
		return st, fmt.Errorf("reloading projects: %w", err)
	}
	return st.WithProjects(projects), nil
}

// stopTimer folds a running interval into the total. It reports whether the
// timer was running.
func stopTimer(p *model.Project, now time.Time) bool {
	if !p.IsTracking {
		return false
	}
	if p.StartTime != nil {
		if elapsed := now.Sub(*p.StartTime); elapsed > 0 {
			p.TotalTrackedSeconds += int64(elapsed / time.Second)
		}
	}
	p.IsTracking = false
	p.StartTime = nil
	return true
}

func findJob(jobs []model.Job, jobID string) (model.Job, bool) {
	for _, j := range jobs {
		if j.ID == jobID {
			return j, true
		}
	}
	return model.Job{}, false
}
