package reservation

import (
	"context"
	"time"

	"github.com/seatflow/reservation-engine/internal/pkg/apperror"
	"github.com/seatflow/reservation-engine/internal/restaurant"
	"github.com/seatflow/reservation-engine/internal/sector"
	"github.com/seatflow/reservation-engine/internal/table"
	"github.com/seatflow/reservation-engine/internal/timegrid"
)

// SlotReport is one 15-minute slot's feasibility for a given party size.
type SlotReport struct {
	Start     time.Time
	Available bool
	Tables    []string
	Reason    string
}

// AvailabilityService reports per-slot feasibility over a day, computed by
// loading the day's reservations once and reusing the assignment algorithm
// in-memory per slot.
type AvailabilityService interface {
	Availability(ctx context.Context, restaurantID, sectorID string, date timegrid.Date, partySize int) (durationMinutes int, slots []SlotReport, err error)
}

type availabilityService struct {
	restaurants restaurant.Repository
	sectors     sector.Repository
	tables      table.Repository
	reservs     Repository
	kMax        int
	clock       func() time.Time
}

func NewAvailabilityService(restaurants restaurant.Repository, sectors sector.Repository, tables table.Repository, reservs Repository, kMax int, clock func() time.Time) AvailabilityService {
	if clock == nil {
		clock = time.Now
	}
	return &availabilityService{restaurants: restaurants, sectors: sectors, tables: tables, reservs: reservs, kMax: kMax, clock: clock}
}

func (s *availabilityService) Availability(ctx context.Context, restaurantID, sectorID string, date timegrid.Date, partySize int) (int, []SlotReport, error) {
	rest, err := s.restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		return 0, nil, restaurantLookupErr(err)
	}
	sec, err := s.sectors.GetByID(ctx, sectorID)
	if err != nil {
		if err == sector.ErrNotFound {
			return 0, nil, apperror.NotFound("sector not found")
		}
		return 0, nil, err
	}
	if sec.RestaurantID != rest.ID {
		return 0, nil, apperror.NotFound("sector does not belong to restaurant")
	}
	if partySize < MinPartySize || partySize > MaxPartySize {
		return 0, nil, apperror.InvalidFormat("party size out of range")
	}

	tables, err := s.tables.BySector(ctx, sectorID)
	if err != nil {
		return 0, nil, tableListErr(err)
	}

	tz, err := rest.Location()
	if err != nil {
		return 0, nil, apperror.InvalidFormat(err.Error())
	}

	dayStartUTC, dayEndUTC := timegrid.DayBounds(date, tz)
	reservations, err := s.reservs.ByDay(ctx, restaurantID, dayStartUTC, dayEndUTC, sectorID)
	if err != nil {
		return 0, nil, err
	}

	duration := Duration(partySize, rest.DurationRules, rest.DefaultDurationMin)
	maxDuration := time.Duration(rest.MaxDurationMinutes()) * time.Minute
	slots := timegrid.Slots(date, tz, rest.Shifts, maxDuration)

	now := s.clock()
	reports := make([]SlotReport, 0, len(slots))
	for _, slotStart := range slots {
		if slotStart.Before(now) {
			continue
		}
		if _, within := timegrid.WithinShift(slotStart, tz, rest.Shifts); !within {
			continue
		}
		reports = append(reports, reportForSlot(slotStart, duration, partySize, s.kMax, tables, reservations))
	}
	return int(duration / time.Minute), reports, nil
}

// reportForSlot computes one slot's feasibility entirely in memory: no
// overlap check in this path touches the store, it scans the pre-loaded
// reservations slice instead.
func reportForSlot(start time.Time, duration time.Duration, partySize, kMax int, tables []*table.Table, reservations []*Reservation) SlotReport {
	end := start.Add(duration)
	overlapCheck := overlapCheckFromReservations(reservations, start, end)

	// Assign never errors when its OverlapCheck never errors.
	ids, _ := Assign(tables, partySize, kMax, overlapCheck)
	if ids != nil {
		return SlotReport{Start: start, Available: true, Tables: ids}
	}
	return SlotReport{Start: start, Available: false, Reason: "no_capacity"}
}

// overlapCheckFromReservations builds an OverlapCheck backed by an
// in-memory reservation slice instead of a database round trip.
func overlapCheckFromReservations(reservations []*Reservation, start, end time.Time) OverlapCheck {
	return func(tableIDs []string) (bool, error) {
		want := make(map[string]bool, len(tableIDs))
		for _, id := range tableIDs {
			want[id] = true
		}
		for _, r := range reservations {
			if !r.Active() {
				continue
			}
			if !r.Overlaps(start, end) {
				continue
			}
			for _, tid := range r.TableIDs {
				if want[tid] {
					return true, nil
				}
			}
		}
		return false, nil
	}
}
