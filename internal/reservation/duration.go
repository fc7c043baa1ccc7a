package reservation

import (
	"time"

	"github.com/seatflow/reservation-engine/internal/restaurant"
)

// Duration maps a party size to a reservation duration. Rules are
// scanned in ascending MaxPartySize order; the first rule with
// partySize <= rule.MaxPartySize wins. If partySize exceeds every
// threshold, the rule with the largest MaxPartySize wins. An empty rule
// set falls back to defaultMinutes. Pure and deterministic.
func Duration(partySize int, rules []restaurant.DurationRule, defaultMinutes int) time.Duration {
	if len(rules) == 0 {
		return time.Duration(defaultMinutes) * time.Minute
	}
	for _, rule := range rules {
		if partySize <= rule.MaxPartySize {
			return time.Duration(rule.DurationMinutes) * time.Minute
		}
	}
	return time.Duration(rules[len(rules)-1].DurationMinutes) * time.Minute
}
