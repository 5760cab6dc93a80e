package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sakif/frelance/internal/model"
	"github.com/sakif/frelance/internal/repository"
)

var _ repository.ProfileRepository = (*DB)(nil)

// GetProfile returns the saved profile, or the default one if the user never
// saved a profile.
func (db *DB) GetProfile(ctx context.Context, userID string) (model.UserProfile, error) {
	var (
		p                 model.UserProfile
		skills, portfolio string
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT name, headline, skills, portfolio, rate, availability
		 FROM profiles WHERE user_id = ?`, userID,
	).Scan(&p.Name, &p.Headline, &skills, &portfolio, &p.Rate, &p.Availability)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultProfile(), nil
	}
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("sqlite: getting profile for %s: %w", userID, err)
	}

	if err := json.Unmarshal([]byte(skills), &p.Skills); err != nil {
		return model.UserProfile{}, fmt.Errorf("sqlite: decoding skills for %s: %w", userID, err)
	}
	if err := json.Unmarshal([]byte(portfolio), &p.Portfolio); err != nil {
		return model.UserProfile{}, fmt.Errorf("sqlite: decoding portfolio for %s: %w", userID, err)
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Portfolio == nil {
		p.Portfolio = []model.PortfolioItem{}
	}
	return p, nil
}

// SaveProfile replaces the user's profile.
func (db *DB) SaveProfile(ctx context.Context, userID string, p model.UserProfile) error {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Portfolio == nil {
		p.Portfolio = []model.PortfolioItem{}
	}
	skills, err := json.Marshal(p.Skills)
	if err != nil {
		return fmt.Errorf("sqlite: encoding skills: %w", err)
	}
	portfolio, err := json.Marshal(p.Portfolio)
	if err != nil {
		return fmt.Errorf("sqlite: encoding portfolio: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO profiles (user_id, name, headline, skills, portfolio, rate, availability, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   name = excluded.name,
		   headline = excluded.headline,
		   skills = excluded.skills,
		   portfolio = excluded.portfolio,
		   rate = excluded.rate,
		   availability = excluded.availability,
		   updated_at = excluded.updated_at`,
		userID, p.Name, p.Headline, string(skills), string(portfolio), p.Rate, p.Availability, db.now(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: saving profile for %s: %w", userID, err)
	}
	return nil
}
