package model

import "time"

// Tier is a subscription level.
type Tier string

const (
	TierFree    Tier = "free"
	TierStarter Tier = "starter"
	TierPro     Tier = "pro"
	TierAgency  Tier = "agency"
)

// SubscriptionState is a user's current plan. SearchesLeft only means something
// while Status is TierFree.
type SubscriptionState struct {
	Status       Tier       `json:"status"`
	SearchesLeft int        `json:"searchesLeft"`
	Expiry       *time.Time `json:"expiry,omitempty"`
}
