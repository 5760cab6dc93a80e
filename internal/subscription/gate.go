// Package subscription holds the free-tier search gate and the unlock
// progression that teases premium job fields over a free user's first searches.
//
// Everything here is a pure function of a model.SubscriptionState. Nothing is
// stored: the unlocked feature in particular is recomputed from the current
// state every time it is needed.
package subscription

import (
	"time"

	"github.com/sakif/frelance/internal/model"
)

// FreeSearchLimit is the number of searches a free account starts with.
const FreeSearchLimit = 3

// Feature is a premium job-detail category revealed by the unlock progression.
// The zero value means no feature is flagged.
type Feature string

const (
	FeatureNone          Feature = ""
	FeaturePayEstimate   Feature = "payEstimate"
	FeatureRedFlags      Feature = "redFlags"
	FeatureSkillAnalysis Feature = "skillAnalysis"
)

// Default is the state of a new or signed-out visitor.
func Default() model.SubscriptionState {
	return model.SubscriptionState{Status: model.TierFree, SearchesLeft: FreeSearchLimit}
}

// CanSearch reports whether the gate lets a search through.
func CanSearch(s model.SubscriptionState) bool {
	return s.Status != model.TierFree || s.SearchesLeft > 0
}

// Decrement consumes one free search. Paid tiers are unlimited and come back
// unchanged, and a free state never drops below zero.
func Decrement(s model.SubscriptionState) model.SubscriptionState {
	if s.Status != model.TierFree {
		return s
	}
	if s.SearchesLeft > 0 {
		s.SearchesLeft--
	}
	return s
}

// UnlockedFeature returns the feature revealed for the current result set.
//
// searchNumber counts the searches consumed so far plus one, so a fresh free
// account (3 left) is on search 1 and an exhausted one (0 left) is on search 4.
func UnlockedFeature(s model.SubscriptionState) Feature {
	if s.Status != model.TierFree {
		return FeatureNone
	}
	switch FreeSearchLimit - s.SearchesLeft + 1 {
	case 1:
		return FeaturePayEstimate
	case 2:
		return FeatureRedFlags
	case 3:
		return FeatureSkillAnalysis
	default:
		return FeatureNone
	}
}

// ParseTier converts a raw string into a tier, rejecting unknown values.
func ParseTier(s string) (model.Tier, bool) {
	t := model.Tier(s)
	switch t {
	case model.TierFree, model.TierStarter, model.TierPro, model.TierAgency:
		return t, true
	}
	return "", false
}

// IsPaid reports whether a tier can be bought.
func IsPaid(t model.Tier) bool {
	return t == model.TierStarter || t == model.TierPro || t == model.TierAgency
}

// Expire reverts a paid plan whose expiry is at or before now. The stored
// free balance is kept. ok is false when nothing changed.
func Expire(s model.SubscriptionState, now time.Time) (model.SubscriptionState, bool) {
	if s.Status == model.TierFree || s.Expiry == nil || s.Expiry.After(now) {
		return s, false
	}
	s.Status = model.TierFree
	s.Expiry = nil
	return s, true
}
