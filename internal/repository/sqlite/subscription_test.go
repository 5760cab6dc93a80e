package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/frelance/internal/apperror"
	"github.com/sakif/frelance/internal/model"
	"github.com/sakif/frelance/internal/subscription"
)

func TestGetSubscription_DefaultForNewUser(t *testing.T) {
	db := newTestDB(t)
	u := createTestUser(t, db, 1)

	s, err := db.GetSubscription(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetSubscription() error = %v", err)
	}
	if s != subscription.Default() {
		t.Errorf("GetSubscription() = %+v, want %+v", s, subscription.Default())
	}
}

func TestDecrementSearches(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, 1)

	for want := subscription.FreeSearchLimit - 1; want >= 0; want-- {
		s, err := db.DecrementSearches(ctx, u.ID)
		if err != nil {
			t.Fatalf("DecrementSearches() error = %v", err)
		}
		if s.SearchesLeft != want {
			t.Errorf("SearchesLeft = %d, want %d", s.SearchesLeft, want)
		}
	}

	_, err := db.DecrementSearches(ctx, u.ID)
	if !errors.Is(err, apperror.ErrQuotaExceeded) {
		t.Errorf("error = %v, want ErrQuotaExceeded", err)
	}

	s, _ := db.GetSubscription(ctx, u.ID)
	if s.SearchesLeft != 0 {
		t.Errorf("SearchesLeft = %d, must never go negative", s.SearchesLeft)
	}
}

func TestDecrementSearches_PaidIsUnchanged(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	setClock(db, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	u := createTestUser(t, db, 1)

	if _, err := db.Subscribe(ctx, u.ID, model.TierPro, db.now().Add(subscription.Period)); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	s, err := db.DecrementSearches(ctx, u.ID)
	if err != nil {
		t.Fatalf("DecrementSearches() error = %v", err)
	}
	if s.Status != model.TierPro || s.SearchesLeft != subscription.FreeSearchLimit {
		t.Errorf("DecrementSearches() = %+v", s)
	}
}

func TestSubscribe(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	setClock(db, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	u := createTestUser(t, db, 1)

	if _, err := db.DecrementSearches(ctx, u.ID); err != nil {
		t.Fatalf("DecrementSearches() error = %v", err)
	}

	expiry := db.now().Add(subscription.Period)
	s, err := db.Subscribe(ctx, u.ID, model.TierStarter, expiry)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if s.Status != model.TierStarter {
		t.Errorf("Status = %s, want starter", s.Status)
	}
	if s.Expiry == nil || !s.Expiry.Equal(expiry) {
		t.Errorf("Expiry = %v, want %v", s.Expiry, expiry)
	}
	if s.SearchesLeft != subscription.FreeSearchLimit-1 {
		t.Errorf("SearchesLeft = %d, want it preserved", s.SearchesLeft)
	}
}

func TestSubscribe_RejectsFreeAndUnknownTiers(t *testing.T) {
	db := newTestDB(t)
	u := createTestUser(t, db, 1)

	for _, tier := range []model.Tier{model.TierFree, "enterprise"} {
		_, err := db.Subscribe(context.Background(), u.ID, tier, time.Now())
		if !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("Subscribe(%s) error = %v, want ErrValidation", tier, err)
		}
	}
}

func TestGetSubscription_RevertsLapsedPlan(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := setClock(db, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	u := createTestUser(t, db, 1)

	if _, err := db.Subscribe(ctx, u.ID, model.TierAgency, now.Add(time.Hour)); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	s, _ := db.GetSubscription(ctx, u.ID)
	if s.Status != model.TierAgency {
		t.Fatalf("Status before expiry = %s", s.Status)
	}

	*now = now.Add(2 * time.Hour)
	s, err := db.GetSubscription(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetSubscription() error = %v", err)
	}
	if s.Status != model.TierFree || s.Expiry != nil {
		t.Errorf("GetSubscription() = %+v, want free without expiry", s)
	}
	if s.SearchesLeft != subscription.FreeSearchLimit {
		t.Errorf("SearchesLeft = %d, want the stored balance", s.SearchesLeft)
	}
}

func TestExpireDue(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := setClock(db, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	lapsed := createTestUser(t, db, 1)
	current := createTestUser(t, db, 2)
	free := createTestUser(t, db, 3)

	if _, err := db.Subscribe(ctx, lapsed.ID, model.TierPro, now.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Subscribe(ctx, current.ID, model.TierPro, now.Add(48*time.Hour)); err != nil {
		t.Fatal(err)
	}
	if _, err := db.DecrementSearches(ctx, free.ID); err != nil {
		t.Fatal(err)
	}

	n, err := db.ExpireDue(ctx, now.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("ExpireDue() error = %v", err)
	}
	if n != 1 {
		t.Errorf("ExpireDue() = %d, want 1", n)
	}

	s, _, _ := db.getSubscription(ctx, db.conn, current.ID)
	if s.Status != model.TierPro {
		t.Errorf("current plan status = %s, want pro", s.Status)
	}
	s, _, _ = db.getSubscription(ctx, db.conn, lapsed.ID)
	if s.Status != model.TierFree {
		t.Errorf("lapsed plan status = %s, want free", s.Status)
	}
}
