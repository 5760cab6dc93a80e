package subscription

import (
	"time"

	"github.com/sakif/frelance/internal/model"
)

// Period is how long a paid subscription lasts before it reverts to free.
const Period = 30 * 24 * time.Hour

// Plan describes one tier on the pricing page.
type Plan struct {
	Tier      model.Tier `json:"tier"`
	Name      string     `json:"name"`
	Searches  string     `json:"searches"`
	Unlocks   []string   `json:"unlocks"`
	Highlight bool       `json:"highlight"`
}

// Plans lists the tiers in display order.
func Plans() []Plan {
	return []Plan{
		{
			Tier:     model.TierFree,
			Name:     "Free",
			Searches: "3 searches",
			Unlocks:  []string{"One premium insight per search"},
		},
		{
			Tier:     model.TierStarter,
			Name:     "Starter",
			Searches: "Unlimited",
			Unlocks:  []string{"Pay estimates", "Red flag detection"},
		},
		{
			Tier:      model.TierPro,
			Name:      "Pro",
			Searches:  "Unlimited",
			Unlocks:   []string{"Pay estimates", "Red flag detection", "Skill gap analysis", "Market insights"},
			Highlight: true,
		},
		{
			Tier:     model.TierAgency,
			Name:     "Agency",
			Searches: "Unlimited",
			Unlocks:  []string{"Everything in Pro", "Team pipeline"},
		},
	}
}
