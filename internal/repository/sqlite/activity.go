package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/xid"
	"github.com/sakif/frelance/internal/model"
	"github.com/sakif/frelance/internal/repository"
)

var (
	_ repository.ActivityRepository = (*DB)(nil)
	_ repository.HistoryRepository  = (*DB)(nil)
)

// ListActivities returns the newest limit entries, newest first.
func (db *DB) ListActivities(ctx context.Context, userID string, limit int) ([]model.Activity, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, type, description, created_at FROM activities WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing activities for %s: %w", userID, err)
	}
	defer rows.Close()

	activities := []model.Activity{}
	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(&a.ID, &a.Type, &a.Description, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("sqlite: scanning activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating activities: %w", err)
	}
	return activities, nil
}

// AddActivity appends an entry and fills in its ID and Timestamp.
func (db *DB) AddActivity(ctx context.Context, userID string, a *model.Activity) error {
	a.ID = xid.New().String()
	a.Timestamp = db.now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO activities (id, user_id, type, description, created_at) VALUES (?, ?, ?, ?, ?)`,
		a.ID, userID, a.Type, a.Description, a.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("sqlite: adding activity for %s: %w", userID, err)
	}
	return nil
}

// ListHistory returns the newest limit searches, newest first.
func (db *DB) ListHistory(ctx context.Context, userID string, limit int) ([]model.SearchHistoryItem, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, criteria, created_at FROM search_history WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing history for %s: %w", userID, err)
	}
	defer rows.Close()

	history := []model.SearchHistoryItem{}
	for rows.Next() {
		var (
			h        model.SearchHistoryItem
			criteria string
		)
		if err := rows.Scan(&h.ID, &criteria, &h.Timestamp); err != nil {
			return nil, fmt.Errorf("sqlite: scanning history item: %w", err)
		}
		if err := json.Unmarshal([]byte(criteria), &h.Criteria); err != nil {
			return nil, fmt.Errorf("sqlite: decoding criteria of %s: %w", h.ID, err)
		}
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating history: %w", err)
	}
	return history, nil
}

// AddHistory records an executed search and fills in its ID and Timestamp.
func (db *DB) AddHistory(ctx context.Context, userID string, h *model.SearchHistoryItem) error {
	criteria, err := json.Marshal(h.Criteria)
	if err != nil {
		return fmt.Errorf("sqlite: encoding criteria: %w", err)
	}
	h.ID = xid.New().String()
	h.Timestamp = db.now()

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO search_history (id, user_id, criteria, created_at) VALUES (?, ?, ?, ?)`,
		h.ID, userID, string(criteria), h.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("sqlite: adding history for %s: %w", userID, err)
	}
	return nil
}
