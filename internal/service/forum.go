package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sakif/frelance/internal/apperror"
	"github.com/sakif/frelance/internal/model"
	"github.com/sakif/frelance/internal/session"
)

const anonymousAuthor = "Anonymous"

// AddThread opens a forum thread whose first post is content.
func (s *AppService) AddThread(ctx context.Context, id Identity, title, content, category string) (session.Snapshot, error) {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	switch {
	case title == "":
		return session.Snapshot{}, apperror.ValidationFailed("title", "A thread needs a title.")
	case content == "":
		return session.Snapshot{}, apperror.ValidationFailed("content", "A thread needs some content.")
	case !model.IsCommunityCategory(category):
		return session.Snapshot{}, apperror.ValidationFailed("category", fmt.Sprintf("%q is not a community category.", category))
	}

	return s.update(ctx, id, func(ctx context.Context, st session.State) (session.State, error) {
		if err := requireUser(st); err != nil {
			return st, err
		}
		_, err := s.repos.Forum.AddThread(ctx, model.NewThread{
			Title:    title,
			Content:  content,
			Category: category,
			Author:   author(st.Profile),
		})
		if err != nil {
			return st, fmt.Errorf("adding thread: %w", err)
		}
		return s.reloadThreads(ctx, st)
	})
}

// AddReply appends a post to a thread.
func (s *AppService) AddReply(ctx context.Context, id Identity, threadID, content string) (session.Snapshot, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return session.Snapshot{}, apperror.ValidationFailed("content", "A reply needs some content.")
	}

	return s.update(ctx, id, func(ctx context.Context, st session.State) (session.State, error) {
		if err := requireUser(st); err != nil {
			return st, err
		}
		_, err := s.repos.Forum.AddReply(ctx, model.NewReply{
			ThreadID: threadID,
			Content:  content,
			Author:   author(st.Profile),
		})
		if err != nil {
			return st, fmt.Errorf("adding reply: %w", err)
		}
		return s.reloadThreads(ctx, st)
	})
}

// RefreshThreads reloads the forum without changing the page.
func (s *AppService) RefreshThreads(ctx context.Context, id Identity) (session.Snapshot, error) {
	return s.update(ctx, id, s.reloadThreads)
}

func (s *AppService) reloadThreads(ctx context.Context, st session.State) (session.State, error) {
	threads, err := s.repos.Forum.ListThreads(ctx)
	if err != nil {
		return st, fmt.Errorf("reloading threads: %w", err)
	}
	return st.WithThreads(threads), nil
}

func author(p model.UserProfile) string {
	if p.Name == "" {
		return anonymousAuthor
	}
	return p.Name
}
