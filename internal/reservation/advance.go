package reservation

import (
	"time"

	"github.com/seatflow/reservation-engine/internal/pkg/apperror"
	"github.com/seatflow/reservation-engine/internal/restaurant"
)

// ValidateAdvance checks that start satisfies the restaurant's
// advance-booking policy: now + MinAdvanceMinutes <= start <=
// now + MaxAdvanceDays, with each bound skipped if unset. A start strictly
// before now is always rejected, independent of the configured policy.
func ValidateAdvance(start, now time.Time, policy *restaurant.AdvancePolicy) error {
	if start.Before(now) {
		return apperror.InvalidFormat("start time is in the past")
	}
	if policy == nil {
		return nil
	}
	if policy.MinAdvanceMinutes != nil {
		earliest := now.Add(time.Duration(*policy.MinAdvanceMinutes) * time.Minute)
		if start.Before(earliest) {
			return apperror.InvalidFormat("start time violates the minimum advance-booking window")
		}
	}
	if policy.MaxAdvanceDays != nil {
		latest := now.AddDate(0, 0, *policy.MaxAdvanceDays)
		if start.After(latest) {
			return apperror.InvalidFormat("start time violates the maximum advance-booking window")
		}
	}
	return nil
}
