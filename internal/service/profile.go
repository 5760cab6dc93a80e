package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/frelance/internal/apperror"
	"github.com/sakif/frelance/internal/model"
	"github.com/sakif/frelance/internal/session"
)

// SaveProfile validates and stores the user's profile. Completing it for the
// first time moves the user on to the dashboard.
func (s *AppService) SaveProfile(ctx context.Context, id Identity, p model.UserProfile) (session.Snapshot, error) {
	p, err := normalizeProfile(p)
	if err != nil {
		return session.Snapshot{}, err
	}

	return s.update(ctx, id, func(ctx context.Context, st session.State) (session.State, error) {
		if err := requireUser(st); err != nil {
			return st, err
		}
		if err := s.repos.Profiles.SaveProfile(ctx, st.UserID, p); err != nil {
			return st, fmt.Errorf("saving profile: %w", err)
		}
		return st.WithProfile(p), nil
	})
}

func normalizeProfile(p model.UserProfile) (model.UserProfile, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Headline = strings.TrimSpace(p.Headline)

	if p.Rate < 0 {
		return p, apperror.ValidationFailed("rate", "Rate cannot be negative.")
	}
	switch p.Availability {
	case "":
		p.Availability = model.AvailabilityAvailable
	case model.AvailabilityAvailable, model.AvailabilitySoon, model.AvailabilityNotAvailable:
	default:
		return p, apperror.ValidationFailed("availability", fmt.Sprintf("%q is not an availability.", p.Availability))
	}

	skills := make([]string, 0, len(p.Skills))
	seen := make(map[string]bool, len(p.Skills))
	for _, sk := range p.Skills {
		sk = strings.TrimSpace(sk)
		key := strings.ToLower(sk)
		if sk == "" || seen[key] {
			continue
		}
		seen[key] = true
		skills = append(skills, sk)
	}
	p.Skills = skills

	portfolio := make([]model.PortfolioItem, 0, len(p.Portfolio))
	for _, item := range p.Portfolio {
		item.Title = strings.TrimSpace(item.Title)
		if item.Title == "" {
			return p, apperror.ValidationFailed("portfolio", "Every portfolio item needs a title.")
		}
		if item.ID == "" {
			item.ID = xid.New().String()
		}
		portfolio = append(portfolio, item)
	}
	p.Portfolio = portfolio
	return p, nil
}
