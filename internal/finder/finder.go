// Package finder talks to the AI model that turns search criteria and a
// freelancer profile into job listings.
package finder

import (
	"context"
	"errors"

	"github.com/sakif/frelance/internal/model"
)

// Finder finds jobs for a search. Implementations must not retry: a failed
// search is reported once and the user decides whether to search again.
type Finder interface {
	Find(ctx context.Context, criteria model.SearchCriteria, profile model.UserProfile) ([]model.Job, error)
}

// ErrDisabled is returned by Disabled.
var ErrDisabled = errors.New("finder: no AI provider configured")

// Disabled is the finder used when no API key is configured. Every search
// fails, which the service reports like any other provider failure.
type Disabled struct{}

func (Disabled) Find(context.Context, model.SearchCriteria, model.UserProfile) ([]model.Job, error) {
	return nil, ErrDisabled
}
