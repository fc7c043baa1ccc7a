package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatflow/reservation-engine/internal/table"
	"github.com/seatflow/reservation-engine/internal/timegrid"
)

func TestAvailability_FiltersPastSlotsAndReportsCombination(t *testing.T) {
	rest := buenosAiresRestaurant("r1", nil, nil, nil)
	sec, tables := twoTableSector(rest.ID)
	tz, _ := rest.Location()

	// Mid-afternoon on the test day: everything before now in the first
	// shift must be filtered out of the report.
	now := time.Date(2025, 9, 8, 14, 0, 0, 0, tz)

	svc := NewAvailabilityService(
		newFakeRestaurantRepo(rest),
		newFakeSectorRepo(sec),
		newFakeTableRepo(sec.ID, tables...),
		newMemoryReservationRepo(),
		DefaultKMax,
		func() time.Time { return now },
	)

	duration, slots, err := svc.Availability(context.Background(), rest.ID, sec.ID, timegrid.Date{Year: 2025, Month: 9, Day: 8}, 8)
	require.NoError(t, err)
	assert.Equal(t, 120, duration) // party of 8 matches the MaxPartySize:8 rule

	for _, s := range slots {
		assert.False(t, s.Start.Before(now), "slot %v must not be in the past", s.Start)
	}

	// Every reported slot in the evening shift can seat 8 via combination.
	var sawEvening bool
	for _, s := range slots {
		local := s.Start.In(tz)
		if local.Hour() >= 20 {
			sawEvening = true
			assert.True(t, s.Available)
			assert.ElementsMatch(t, []string{"t1", "t2"}, s.Tables)
		}
	}
	assert.True(t, sawEvening, "expected at least one evening slot in the report")
}

func TestAvailability_RejectsSectorFromAnotherRestaurant(t *testing.T) {
	rest := buenosAiresRestaurant("r1", nil, nil, nil)
	sec, tables := twoTableSector("different-restaurant")

	svc := NewAvailabilityService(
		newFakeRestaurantRepo(rest),
		newFakeSectorRepo(sec),
		newFakeTableRepo(sec.ID, tables...),
		newMemoryReservationRepo(),
		DefaultKMax,
		func() time.Time { return time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC) },
	)

	_, _, err := svc.Availability(context.Background(), rest.ID, sec.ID, timegrid.Date{Year: 2025, Month: 9, Day: 8}, 2)
	assert.Error(t, err)
}

func TestAvailability_RejectsOutOfRangePartySize(t *testing.T) {
	rest := buenosAiresRestaurant("r1", nil, nil, nil)
	sec, tables := twoTableSector(rest.ID)

	svc := NewAvailabilityService(
		newFakeRestaurantRepo(rest),
		newFakeSectorRepo(sec),
		newFakeTableRepo(sec.ID, tables...),
		newMemoryReservationRepo(),
		DefaultKMax,
		func() time.Time { return time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC) },
	)

	_, _, err := svc.Availability(context.Background(), rest.ID, sec.ID, timegrid.Date{Year: 2025, Month: 9, Day: 8}, 0)
	assert.Error(t, err)
}

func TestReportForSlot_NoTablesMeansUnavailable(t *testing.T) {
	start := time.Date(2025, 9, 8, 20, 0, 0, 0, time.UTC)
	r := reportForSlot(start, 90*time.Minute, 4, DefaultKMax, []*table.Table{}, nil)
	assert.False(t, r.Available)
	assert.Equal(t, "no_capacity", r.Reason)
}
