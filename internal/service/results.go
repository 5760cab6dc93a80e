package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/frelance/internal/apperror"
	"github.com/sakif/frelance/internal/results"
	"github.com/sakif/frelance/internal/session"
	"github.com/sakif/frelance/internal/view"
)

// SortResults reorders the current result set and returns to page one.
func (s *AppService) SortResults(ctx context.Context, id Identity, mode string) (session.Snapshot, error) {
	m, ok := results.ParseSortMode(mode)
	if !ok {
		return session.Snapshot{}, apperror.ValidationFailed("sortBy", fmt.Sprintf("%q is not a sort order.", mode))
	}
	return s.update(ctx, id, func(_ context.Context, st session.State) (session.State, error) {
		return st.ChangeSort(m), nil
	})
}

// ChangePage moves to another page of results. Pages past the end are empty;
// pages past the first are locked for free users but can still be selected.
func (s *AppService) ChangePage(ctx context.Context, id Identity, page int) (session.Snapshot, error) {
	if page < 1 {
		return session.Snapshot{}, apperror.ValidationFailed("page", "Pages start at 1.")
	}
	return s.update(ctx, id, func(_ context.Context, st session.State) (session.State, error) {
		return st.ChangePage(page), nil
	})
}

// SelectJob expands a job card, or collapses it when it is already expanded.
func (s *AppService) SelectJob(ctx context.Context, id Identity, jobID string) (session.Snapshot, error) {
	if jobID == "" {
		return session.Snapshot{}, apperror.ValidationFailed("jobId", "A job ID is required.")
	}
	return s.update(ctx, id, func(_ context.Context, st session.State) (session.State, error) {
		return st.SelectJob(jobID), nil
	})
}

// Navigate shows another page. Pages holding account data need a signed-in
// user. Opening the community page refreshes the threads.
func (s *AppService) Navigate(ctx context.Context, id Identity, to string) (session.Snapshot, error) {
	target, ok := view.Parse(to)
	if !ok {
		return session.Snapshot{}, apperror.ValidationFailed("view", fmt.Sprintf("%q is not a page.", to))
	}
	return s.update(ctx, id, func(ctx context.Context, st session.State) (session.State, error) {
		if view.RequiresSession(target) && !st.SignedIn() {
			return st, apperror.Unauthorized(MsgSignInRequired)
		}
		if target == view.Community {
			st = s.refreshThreads(ctx, st)
		}
		return st.Navigate(target), nil
	})
}

// Back follows the current page's back action.
func (s *AppService) Back(ctx context.Context, id Identity) (session.Snapshot, error) {
	return s.update(ctx, id, func(_ context.Context, st session.State) (session.State, error) {
		return st.Back(), nil
	})
}

func (s *AppService) refreshThreads(ctx context.Context, st session.State) session.State {
	threads, err := s.repos.Forum.ListThreads(ctx)
	if err != nil {
		s.logger.Warn("refreshing threads", slog.String("error", err.Error()))
		return st
	}
	return st.WithThreads(threads)
}
