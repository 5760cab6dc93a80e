package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/frelance/internal/apperror"
	"github.com/sakif/frelance/internal/model"
	"github.com/sakif/frelance/internal/repository"
	"github.com/sakif/frelance/internal/subscription"
)

var _ repository.SubscriptionRepository = (*DB)(nil)

// GetSubscription returns the user's plan. Users without a row are on the
// free default. A paid plan whose expiry has passed is reverted to free here
// as well as by the sweeper, so a lapsed plan is never served between sweeps.
func (db *DB) GetSubscription(ctx context.Context, userID string) (model.SubscriptionState, error) {
	s, found, err := db.getSubscription(ctx, db.conn, userID)
	if err != nil {
		return model.SubscriptionState{}, err
	}
	if !found {
		return subscription.Default(), nil
	}

	now := db.now()
	if s.Status != model.TierFree && s.Expiry != nil && !s.Expiry.After(now) {
		if _, err := db.conn.ExecContext(ctx,
			`UPDATE subscriptions SET status = 'free', expiry = NULL, updated_at = ?
			 WHERE user_id = ? AND status != 'free'`,
			now, userID,
		); err != nil {
			return model.SubscriptionState{}, fmt.Errorf("sqlite: expiring subscription for %s: %w", userID, err)
		}
		s.Status = model.TierFree
		s.Expiry = nil
	}
	return s, nil
}

// DecrementSearches consumes one free search. Paid plans are returned
// unchanged. A free plan with nothing left is apperror.ErrQuotaExceeded.
func (db *DB) DecrementSearches(ctx context.Context, userID string) (model.SubscriptionState, error) {
	var out model.SubscriptionState
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		now := db.now()
		if err := ensureSubscription(ctx, tx, userID, now); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE subscriptions SET status = 'free', expiry = NULL, updated_at = ?
			 WHERE user_id = ? AND status != 'free' AND expiry IS NOT NULL AND expiry <= ?`,
			now, userID, now.Unix(),
		); err != nil {
			return fmt.Errorf("expiring lapsed plan: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE subscriptions SET searches_left = searches_left - 1, updated_at = ?
			 WHERE user_id = ? AND status = 'free' AND searches_left > 0`,
			now, userID,
		)
		if err != nil {
			return fmt.Errorf("decrementing searches: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}

		s, _, err := db.getSubscription(ctx, tx, userID)
		if err != nil {
			return err
		}
		if affected == 0 && s.Status == model.TierFree {
			return apperror.QuotaExceeded("You have used all of your free searches.")
		}
		out = s
		return nil
	})
	if err != nil {
		return model.SubscriptionState{}, fmt.Errorf("sqlite: decrementing searches for %s: %w", userID, err)
	}
	return out, nil
}

// Subscribe switches the user to a paid tier until expiry. searchesLeft is
// kept as it was so a lapsed plan falls back to the same free balance.
func (db *DB) Subscribe(ctx context.Context, userID string, tier model.Tier, expiry time.Time) (model.SubscriptionState, error) {
	if !subscription.IsPaid(tier) {
		return model.SubscriptionState{}, apperror.ValidationFailed("tier", fmt.Sprintf("%q is not a paid tier", tier))
	}

	expiry = expiry.UTC().Truncate(time.Second)
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO subscriptions (user_id, status, searches_left, expiry, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   status = excluded.status,
		   expiry = excluded.expiry,
		   updated_at = excluded.updated_at`,
		userID, tier, subscription.FreeSearchLimit, expiry.Unix(), db.now(),
	)
	if err != nil {
		return model.SubscriptionState{}, fmt.Errorf("sqlite: subscribing %s to %s: %w", userID, tier, err)
	}

	s, _, err := db.getSubscription(ctx, db.conn, userID)
	if err != nil {
		return model.SubscriptionState{}, err
	}
	return s, nil
}

// ExpireDue reverts every paid plan whose expiry is at or before now.
func (db *DB) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE subscriptions SET status = 'free', expiry = NULL, updated_at = ?
		 WHERE status != 'free' AND expiry IS NOT NULL AND expiry <= ?`,
		db.now(), now.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: expiring subscriptions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n, nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (db *DB) getSubscription(ctx context.Context, q querier, userID string) (model.SubscriptionState, bool, error) {
	var (
		s      model.SubscriptionState
		expiry sql.NullInt64
	)
	err := q.QueryRowContext(ctx,
		`SELECT status, searches_left, expiry FROM subscriptions WHERE user_id = ?`, userID,
	).Scan(&s.Status, &s.SearchesLeft, &expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SubscriptionState{}, false, nil
	}
	if err != nil {
		return model.SubscriptionState{}, false, fmt.Errorf("sqlite: getting subscription for %s: %w", userID, err)
	}
	s.Expiry = fromNullUnix(expiry)
	return s, true, nil
}

func ensureSubscription(ctx context.Context, tx *sql.Tx, userID string, now time.Time) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO subscriptions (user_id, status, searches_left, updated_at)
		 VALUES (?, 'free', ?, ?)
		 ON CONFLICT(user_id) DO NOTHING`,
		userID, subscription.FreeSearchLimit, now,
	)
	if err != nil {
		return fmt.Errorf("creating default subscription: %w", err)
	}
	return nil
}
