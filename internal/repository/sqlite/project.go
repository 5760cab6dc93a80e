package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/xid"
	"github.com/sakif/frelance/internal/apperror"
	"github.com/sakif/frelance/internal/model"
	"github.com/sakif/frelance/internal/repository"
)

var _ repository.ProjectRepository = (*DB)(nil)

const projectColumns = `id, job, total_tracked_seconds, is_tracking, start_time, status, project_value, created_at`

// ListProjects returns the user's pipeline, newest first.
func (db *DB) ListProjects(ctx context.Context, userID string) ([]model.Project, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing projects for %s: %w", userID, err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating projects: %w", err)
	}
	return projects, nil
}

// GetProject returns apperror.ErrNotFound when the project does not exist or
// belongs to someone else.
func (db *DB) GetProject(ctx context.Context, userID, projectID string) (*model.Project, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ? AND user_id = ?`, projectID, userID)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("project", projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting project %s: %w", projectID, err)
	}
	return p, nil
}

// AddProject stores a new pipeline entry and fills in ProjectID and CreatedAt.
// A second project for the same job is a conflict.
func (db *DB) AddProject(ctx context.Context, userID string, p *model.Project) error {
	job, err := json.Marshal(p.Job)
	if err != nil {
		return fmt.Errorf("sqlite: encoding job %s: %w", p.ID, err)
	}

	p.ProjectID = xid.New().String()
	p.CreatedAt = db.now()
	if p.Status == "" {
		p.Status = model.ProjectActive
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO projects (id, user_id, job_id, job, total_tracked_seconds, is_tracking,
		   start_time, status, project_value, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ProjectID, userID, p.ID, string(job), p.TotalTrackedSeconds, p.IsTracking,
		nullUnix(p.StartTime), p.Status, p.ProjectValue, p.CreatedAt,
	)
	if isUniqueViolation(err) {
		return apperror.Conflict("project", p.ID)
	}
	if err != nil {
		return fmt.Errorf("sqlite: inserting project for job %s: %w", p.ID, err)
	}
	return nil
}

// UpdateProject saves the mutable pipeline fields: tracking, status and value.
// The embedded job is never rewritten.
func (db *DB) UpdateProject(ctx context.Context, userID string, p *model.Project) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE projects SET total_tracked_seconds = ?, is_tracking = ?, start_time = ?,
		   status = ?, project_value = ?
		 WHERE id = ? AND user_id = ?`,
		p.TotalTrackedSeconds, p.IsTracking, nullUnix(p.StartTime), p.Status, p.ProjectValue,
		p.ProjectID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating project %s: %w", p.ProjectID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("project", p.ProjectID)
	}
	return nil
}

func (db *DB) DeleteProject(ctx context.Context, userID, projectID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM projects WHERE id = ? AND user_id = ?`, projectID, userID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting project %s: %w", projectID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("project", projectID)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*model.Project, error) {
	var (
		p     model.Project
		job   string
		start sql.NullInt64
	)
	err := row.Scan(&p.ProjectID, &job, &p.TotalTrackedSeconds, &p.IsTracking, &start,
		&p.Status, &p.ProjectValue, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(job), &p.Job); err != nil {
		return nil, fmt.Errorf("decoding job: %w", err)
	}
	p.StartTime = fromNullUnix(start)
	return &p, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
