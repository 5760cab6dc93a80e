package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/frelance/internal/apperror"
	"github.com/sakif/frelance/internal/model"
	"github.com/sakif/frelance/internal/session"
	"github.com/sakif/frelance/internal/subscription"
)

const maxQueryLength = 500

// Search runs one AI job search for the visitor.
//
// Order matters and is pinned by tests:
//  1. invalid criteria and an exhausted quota are rejected without touching
//     anything else;
//  2. the previous result set is cleared and the loading state is published;
//  3. a free search is consumed BEFORE the finder is asked, and a signed-in
//     user's history and activity feed are appended;
//  4. the finder runs. If it fails, the quota stays consumed.
func (s *AppService) Search(ctx context.Context, id Identity, criteria model.SearchCriteria) (session.Snapshot, error) {
	criteria = normalizeCriteria(criteria)
	if err := validateCriteria(criteria); err != nil {
		return session.Snapshot{}, err
	}

	return s.update(ctx, id, func(ctx context.Context, st session.State) (session.State, error) {
		if !subscription.CanSearch(st.Subscription) {
			return st.QuotaBlocked(MsgQuotaExceeded), apperror.QuotaExceeded(MsgQuotaExceeded)
		}

		st = st.BeginSearch()
		s.publish(ctx, id, st)

		st, err := s.consume(ctx, st, criteria)
		if errors.Is(err, apperror.ErrQuotaExceeded) {
			st = st.SearchFailed(MsgQuotaExceeded)
			return st, apperror.QuotaExceeded(MsgQuotaExceeded)
		}
		if err != nil {
			s.logger.Error("preparing search",
				slog.String("userID", st.UserID),
				slog.String("error", err.Error()),
			)
			return st.SearchFailed(MsgSearchFailed), apperror.SearchUnavailable(MsgSearchFailed, err)
		}

		jobs, err := s.finder.Find(ctx, criteria, st.Profile)
		if err != nil {
			s.logger.Error("finding jobs",
				slog.String("userID", st.UserID),
				slog.String("error", err.Error()),
			)
			return st.SearchFailed(MsgSearchFailed), apperror.SearchUnavailable(MsgSearchFailed, err)
		}

		s.logger.Info("search completed",
			slog.String("userID", st.UserID),
			slog.Int("jobs", len(jobs)),
			slog.Int("searchesLeft", st.Subscription.SearchesLeft),
		)
		return st.SearchSucceeded(jobs), nil
	})
}

// consume charges the search to the visitor and, for signed-in users, records
// it. Anonymous visitors are charged on their session state only.
func (s *AppService) consume(ctx context.Context, st session.State, criteria model.SearchCriteria) (session.State, error) {
	if !st.SignedIn() {
		return st.WithSubscription(subscription.Decrement(st.Subscription)), nil
	}

	if st.Subscription.Status == model.TierFree {
		sub, err := s.repos.Subscriptions.DecrementSearches(ctx, st.UserID)
		if errors.Is(err, apperror.ErrQuotaExceeded) {
			// The stored balance ran out under a stale session; show the real one.
			return st.WithSubscription(model.SubscriptionState{Status: model.TierFree}), err
		}
		if err != nil {
			return st, fmt.Errorf("decrementing searches: %w", err)
		}
		st = st.WithSubscription(sub)
	}

	item := &model.SearchHistoryItem{Criteria: criteria}
	if err := s.repos.History.AddHistory(ctx, st.UserID, item); err != nil {
		return st, fmt.Errorf("adding history: %w", err)
	}
	history, err := s.repos.History.ListHistory(ctx, st.UserID, HistoryLimit)
	if err != nil {
		return st, fmt.Errorf("reloading history: %w", err)
	}
	st = st.WithHistory(history)

	return s.recordActivity(ctx, st, model.ActivitySearch, searchDescription(criteria))
}

func searchDescription(c model.SearchCriteria) string {
	term := c.Query
	if term == "" {
		term = c.Subcategory
	}
	if term == "" {
		term = c.Category
	}
	return fmt.Sprintf(`Searched for: "%s"`, term)
}

func normalizeCriteria(c model.SearchCriteria) model.SearchCriteria {
	c.Query = strings.TrimSpace(c.Query)
	c.Category = strings.TrimSpace(c.Category)
	c.Subcategory = strings.TrimSpace(c.Subcategory)
	return c
}

func validateCriteria(c model.SearchCriteria) error {
	if c.Query == "" && c.Category == "" && c.Subcategory == "" {
		return apperror.ValidationFailed("query", "Enter a search term or pick a category.")
	}
	if len(c.Query) > maxQueryLength {
		return apperror.ValidationFailed("query", fmt.Sprintf("Search terms are limited to %d characters.", maxQueryLength))
	}

	checks := []struct {
		field, value string
		ok           func(string) bool
	}{
		{"level", c.Level, model.IsLevel},
		{"industry", c.Industry, model.IsIndustry},
		{"deliveryTime", c.DeliveryTime, model.IsDeliveryTime},
		{"searchSource", c.SearchSource, model.IsSearchSource},
	}
	for _, chk := range checks {
		if chk.value != "" && !chk.ok(chk.value) {
			return apperror.ValidationFailed(chk.field, fmt.Sprintf("%q is not a valid %s.", chk.value, chk.field))
		}
	}
	return nil
}
