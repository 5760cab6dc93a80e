package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/xid"
	"github.com/sakif/frelance/internal/apperror"
	"github.com/sakif/frelance/internal/model"
	"github.com/sakif/frelance/internal/repository"
)

var _ repository.ForumRepository = (*DB)(nil)

// ListThreads returns every thread, newest first, each with its posts in the
// order they were written.
func (db *DB) ListThreads(ctx context.Context) ([]model.ForumThread, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, author, category, created_at FROM forum_threads
		 ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing threads: %w", err)
	}

	threads := []model.ForumThread{}
	index := map[string]int{}
	for rows.Next() {
		var t model.ForumThread
		if err := rows.Scan(&t.ID, &t.Title, &t.Author, &t.Category, &t.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlite: scanning thread: %w", err)
		}
		t.Posts = []model.ForumPost{}
		index[t.ID] = len(threads)
		threads = append(threads, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("sqlite: iterating threads: %w", err)
	}
	rows.Close()

	// Only one connection is open, so the thread cursor must be closed before
	// the posts query runs.
	posts, err := db.conn.QueryContext(ctx,
		`SELECT id, thread_id, author, content, created_at FROM forum_posts
		 ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer posts.Close()

	for posts.Next() {
		var (
			p        model.ForumPost
			threadID string
		)
		if err := posts.Scan(&p.ID, &threadID, &p.Author, &p.Content, &p.Timestamp); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post: %w", err)
		}
		if i, ok := index[threadID]; ok {
			threads[i].Posts = append(threads[i].Posts, p)
		}
	}
	if err := posts.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}
	return threads, nil
}

// AddThread creates a thread whose first post is the opening content.
func (db *DB) AddThread(ctx context.Context, nt model.NewThread) (*model.ForumThread, error) {
	now := db.now()
	t := &model.ForumThread{
		ID:        xid.New().String(),
		Title:     nt.Title,
		Author:    nt.Author,
		Category:  nt.Category,
		CreatedAt: now,
		Posts: []model.ForumPost{{
			ID:        xid.New().String(),
			Author:    nt.Author,
			Content:   nt.Content,
			Timestamp: now,
		}},
	}

	err := db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO forum_threads (id, title, author, category, created_at) VALUES (?, ?, ?, ?, ?)`,
			t.ID, t.Title, t.Author, t.Category, t.CreatedAt,
		); err != nil {
			return fmt.Errorf("inserting thread: %w", err)
		}
		return insertPost(ctx, tx, t.ID, t.Posts[0])
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite: adding thread: %w", err)
	}
	return t, nil
}

// AddReply appends a post to an existing thread.
func (db *DB) AddReply(ctx context.Context, r model.NewReply) (*model.ForumPost, error) {
	p := &model.ForumPost{
		ID:        xid.New().String(),
		Author:    r.Author,
		Content:   r.Content,
		Timestamp: db.now(),
	}

	err := db.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM forum_threads WHERE id = ?`, r.ThreadID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NotFound("thread", r.ThreadID)
		}
		if err != nil {
			return fmt.Errorf("looking up thread: %w", err)
		}
		return insertPost(ctx, tx, r.ThreadID, *p)
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite: adding reply to %s: %w", r.ThreadID, err)
	}
	return p, nil
}

func insertPost(ctx context.Context, tx *sql.Tx, threadID string, p model.ForumPost) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO forum_posts (id, thread_id, author, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, threadID, p.Author, p.Content, p.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("inserting post: %w", err)
	}
	return nil
}
