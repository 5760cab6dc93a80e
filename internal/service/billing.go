package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/frelance/internal/apperror"
	"github.com/sakif/frelance/internal/session"
	"github.com/sakif/frelance/internal/subscription"
)

// Plans is the catalogue shown on the pricing page.
func (s *AppService) Plans() []subscription.Plan {
	return subscription.Plans()
}

// Subscribe moves the user to a paid tier for one period and shows the
// dashboard. Any failure, including an unknown tier, keeps the current plan
// and leaves a message on the pricing page.
func (s *AppService) Subscribe(ctx context.Context, id Identity, tier string) (session.Snapshot, error) {
	return s.update(ctx, id, func(ctx context.Context, st session.State) (session.State, error) {
		if err := requireUser(st); err != nil {
			return st, err
		}

		t, ok := subscription.ParseTier(tier)
		if !ok || !subscription.IsPaid(t) {
			cause := fmt.Errorf("%q is not a paid tier", tier)
			return st.SubscribeFailed(MsgSubscriptionFailed), apperror.SubscriptionFailed(MsgSubscriptionFailed, cause)
		}

		sub, err := s.repos.Subscriptions.Subscribe(ctx, st.UserID, t, s.now().Add(subscription.Period))
		if err != nil {
			s.logger.Error("subscribing",
				slog.String("userID", st.UserID),
				slog.String("tier", string(t)),
				slog.String("error", err.Error()),
			)
			return st.SubscribeFailed(MsgSubscriptionFailed), apperror.SubscriptionFailed(MsgSubscriptionFailed, err)
		}

		s.logger.Info("subscribed",
			slog.String("userID", st.UserID),
			slog.String("tier", string(t)),
		)
		return st.Subscribed(sub), nil
	})
}

// ExpireSubscriptions reverts every lapsed paid plan in the store. Session
// states catch up lazily the next time they are read.
func (s *AppService) ExpireSubscriptions(ctx context.Context) (int64, error) {
	n, err := s.repos.Subscriptions.ExpireDue(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("expiring subscriptions: %w", err)
	}
	return n, nil
}
