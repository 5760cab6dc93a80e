package service

import (
	"context"
	"fmt"

	"github.com/sakif/frelance/internal/apperror"
	"github.com/sakif/frelance/internal/model"
	"github.com/sakif/frelance/internal/session"
)

// LogDocument records that the user generated a document for a job in their
// results or pipeline.
func (s *AppService) LogDocument(ctx context.Context, id Identity, jobID string, docType model.DocumentType) (session.Snapshot, error) {
	switch docType {
	case model.DocumentProposal, model.DocumentEmail, model.DocumentCV:
	default:
		return session.Snapshot{}, apperror.ValidationFailed("docType", fmt.Sprintf("%q is not a document type.", docType))
	}

	return s.update(ctx, id, func(ctx context.Context, st session.State) (session.State, error) {
		if err := requireUser(st); err != nil {
			return st, err
		}
		title, ok := jobTitle(st, jobID)
		if !ok {
			return st, apperror.NotFound("job", jobID)
		}
		return s.recordActivity(ctx, st, model.ActivityDocument, fmt.Sprintf(`Generated a %s for "%s".`, docType, title))
	})
}

func jobTitle(st session.State, jobID string) (string, bool) {
	if j, ok := findJob(st.Jobs, jobID); ok {
		return j.Title, true
	}
	for _, p := range st.Projects {
		if p.ID == jobID {
			return p.Title, true
		}
	}
	return "", false
}
