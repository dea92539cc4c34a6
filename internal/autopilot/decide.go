package autopilot

import (
	"fmt"
	"sort"

	"github.com/talgya/mini-kitchen/internal/economy"
)

// Actions.
const (
	ActionNone    = "none"
	ActionUpgrade = "upgrade"
	ActionOffer   = "offer"
)

// Decision is the purchase chosen for one cycle.
type Decision struct {
	Action    string     `json:"action"`
	Category  int        `json:"category,omitempty"` // Station, for upgrades
	OfferID   int        `json:"offer_id,omitempty"`
	Price     float64    `json:"price"`
	Reason    Bottleneck `json:"reason"`
	Rationale string     `json:"rationale"`
}

// Policy bounds spending.
type Policy struct {
	// SpendFraction is the share of the balance one purchase may use, in
	// (0, 1]. Below 1 the autopilot saves toward pricier items.
	SpendFraction float64
}

// DefaultPolicy spends up to the whole balance.
func DefaultPolicy() Policy {
	return Policy{SpendFraction: 1}
}

type candidate struct {
	d     Decision
	score float64 // Lower is better
}

// Decide picks at most one purchase. Items that relieve the bottleneck come
// first; among those, and otherwise, the cheapest affordable one wins.
func Decide(snap *Snapshot, h *Health, p Policy) Decision {
	frac := p.SpendFraction
	if frac <= 0 || frac > 1 {
		frac = 1
	}
	budget := snap.Status.Coins.Mul(frac)
	affordable := func(price float64) bool {
		return budget.Cmp(economy.FromFloat(price)) >= 0
	}

	var preferred, fallback []candidate
	add := func(c candidate, relieves bool) {
		if !affordable(c.d.Price) {
			return
		}
		if relieves {
			preferred = append(preferred, c)
		} else {
			fallback = append(fallback, c)
		}
	}

	for _, st := range snap.Stations {
		d := Decision{Action: ActionUpgrade, Category: st.Category, Price: st.UpgradePrice, Reason: h.Bottleneck}
		if !st.Unlocked {
			d.Rationale = fmt.Sprintf("unlock %s", st.Name)
			// Widening the menu helps when nothing is open or staff idle.
			add(candidate{d, st.UpgradePrice}, h.Bottleneck == BottleneckMenu || h.Bottleneck == BottleneckCustomer)
			continue
		}
		d.Rationale = fmt.Sprintf("upgrade %s to level %d", st.Name, st.Level+1)
		add(candidate{d, st.UpgradePrice}, (h.Bottleneck == BottleneckKitchen && st.Occupied >= st.Slots) || h.Bottleneck == BottleneckNone)
	}

	for _, o := range snap.Offers {
		if o.Purchased {
			continue
		}
		d := Decision{Action: ActionOffer, OfferID: o.ID, Price: o.Price, Reason: h.Bottleneck, Rationale: fmt.Sprintf("buy %s", o.Name)}
		var relieves bool
		switch o.Kind {
		case "hire_back", "station_speed":
			relieves = h.Bottleneck == BottleneckKitchen
		case "hire_front":
			relieves = h.Bottleneck == BottleneckWaiters
		case "add_customer":
			relieves = h.Bottleneck == BottleneckCustomer
		case "station_price":
			relieves = h.Bottleneck == BottleneckNone
		}
		add(candidate{d, o.Price}, relieves)
	}

	pick := preferred
	if len(pick) == 0 {
		pick = fallback
	}
	if len(pick) == 0 {
		return Decision{Action: ActionNone, Reason: h.Bottleneck, Rationale: "nothing affordable"}
	}
	sort.SliceStable(pick, func(i, j int) bool { return pick[i].score < pick[j].score })
	return pick[0].d
}
