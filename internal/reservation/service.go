package reservation

import (
	"context"
	"errors"
	"time"

	"github.com/seatflow/reservation-engine/internal/lock"
	"github.com/seatflow/reservation-engine/internal/pkg/apperror"
	"github.com/seatflow/reservation-engine/internal/restaurant"
	"github.com/seatflow/reservation-engine/internal/sector"
	"github.com/seatflow/reservation-engine/internal/table"
	"github.com/seatflow/reservation-engine/internal/timegrid"
)

// CreateRequest is the input to Service.Create.
type CreateRequest struct {
	RestaurantID string
	SectorID     string
	PartySize    int
	Start        time.Time
	Customer     Customer
	Notes        string
}

// UpdateRequest is the input to Service.Update; nil fields are left
// unchanged.
type UpdateRequest struct {
	SectorID  *string
	PartySize *int
	Start     *time.Time
	Customer  *Customer
	Notes     *string
}

// Service handles Create/Update/Cancel/Approve/Reject/Expire orchestration:
// validate, lock the affected slots, assign tables, then persist.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Reservation, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Reservation, error)
	Cancel(ctx context.Context, id string) error
	Approve(ctx context.Context, id string) (*Reservation, error)
	Reject(ctx context.Context, id string) (*Reservation, error)
	ExpirePending(ctx context.Context) (int, error)
	GetByID(ctx context.Context, id string) (*Reservation, error)
	Day(ctx context.Context, restaurantID string, date timegrid.Date, sectorID string) ([]*Reservation, error)
}

type service struct {
	repo        Repository
	restaurants restaurant.Repository
	sectors     sector.Repository
	tables      table.Repository
	locks       lock.Manager
	kMax        int
	clock       func() time.Time
}

func NewService(repo Repository, restaurants restaurant.Repository, sectors sector.Repository, tables table.Repository, locks lock.Manager, kMax int, clock func() time.Time) Service {
	if clock == nil {
		clock = time.Now
	}
	return &service{repo: repo, restaurants: restaurants, sectors: sectors, tables: tables, locks: locks, kMax: kMax, clock: clock}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Reservation, error) {
	rest, sec, err := s.resolveRestaurantSector(ctx, req.RestaurantID, req.SectorID)
	if err != nil {
		return nil, err
	}
	if req.PartySize < MinPartySize || req.PartySize > MaxPartySize {
		return nil, apperror.InvalidFormat("party size must be between 1 and 20")
	}

	tz, err := rest.Location()
	if err != nil {
		return nil, apperror.InvalidFormat(err.Error())
	}

	now := s.clock()
	shift, within := timegrid.WithinShift(req.Start, tz, rest.Shifts)
	if !within {
		return nil, apperror.OutsideServiceWindow("requested start is outside every configured shift")
	}
	if err := ValidateAdvance(req.Start, now, rest.Advance); err != nil {
		return nil, err
	}

	duration := Duration(req.PartySize, rest.DurationRules, rest.DefaultDurationMin)
	end := req.Start.Add(duration)
	if end.After(timegrid.ShiftEnd(req.Start, tz, shift)) {
		return nil, apperror.OutsideServiceWindow("reservation would extend past the end of its shift")
	}

	var restaurantHandle lock.Handle
	if rest.MaxGuestsPerSlot != nil {
		h, err := s.locks.AcquireRestaurantLocks(ctx, rest.ID, req.Start, end)
		if err != nil {
			return nil, lockErr(err)
		}
		restaurantHandle = h
		defer restaurantHandle.Release(ctx)
	}

	sectorHandle, err := s.locks.AcquireSectorLocks(ctx, sec.ID, req.Start, end)
	if err != nil {
		return nil, lockErr(err)
	}
	defer sectorHandle.Release(ctx)

	if rest.MaxGuestsPerSlot != nil {
		sum, err := s.guestSum(ctx, rest.ID, req.Start, end, "")
		if err != nil {
			return nil, err
		}
		if sum+req.PartySize > *rest.MaxGuestsPerSlot {
			return nil, apperror.NoCapacity("restaurant guest cap for this slot would be exceeded")
		}
	}

	// Opportunistic sweep so stale pending holds don't block assignment.
	if _, err := s.expirePendingLocked(ctx); err != nil {
		return nil, err
	}

	tables, err := s.tables.BySector(ctx, sec.ID)
	if err != nil {
		return nil, tableListErr(err)
	}
	tableIDs, err := Assign(tables, req.PartySize, s.kMax, s.overlapCheck(ctx, req.Start, end, ""))
	if err != nil {
		return nil, err
	}
	if tableIDs == nil {
		return nil, apperror.NoCapacity("no table or table combination is available for this party")
	}

	status := StatusConfirmed
	var expiresAt *time.Time
	if rest.LargeGroupThreshold != nil && req.PartySize >= *rest.LargeGroupThreshold && rest.PendingHoldTTLMinutes != nil {
		status = StatusPending
		t := now.Add(time.Duration(*rest.PendingHoldTTLMinutes) * time.Minute)
		expiresAt = &t
	}

	res := &Reservation{
		RestaurantID: rest.ID,
		SectorID:     sec.ID,
		TableIDs:     tableIDs,
		PartySize:    req.PartySize,
		Start:        req.Start,
		End:          end,
		Status:       status,
		ExpiresAt:    expiresAt,
		Customer:     req.Customer,
		Notes:        req.Notes,
	}
	if err := s.repo.Create(ctx, res); err != nil {
		return nil, apperror.Internal(err)
	}
	return res, nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Reservation, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if existing.Status == StatusCancelled {
		return nil, apperror.InvalidFormat("cannot update a cancelled reservation")
	}

	sectorID := existing.SectorID
	if req.SectorID != nil {
		sectorID = *req.SectorID
	}
	partySize := existing.PartySize
	if req.PartySize != nil {
		partySize = *req.PartySize
	}
	if partySize < MinPartySize || partySize > MaxPartySize {
		return nil, apperror.InvalidFormat("party size must be between 1 and 20")
	}
	start := existing.Start
	if req.Start != nil {
		start = *req.Start
	}
	timeOrPartyChanged := req.Start != nil || req.PartySize != nil || req.SectorID != nil

	rest, sec, err := s.resolveRestaurantSector(ctx, existing.RestaurantID, sectorID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	tz, err := rest.Location()
	if err != nil {
		return nil, apperror.InvalidFormat(err.Error())
	}
	duration := Duration(partySize, rest.DurationRules, rest.DefaultDurationMin)
	end := start.Add(duration)

	if timeOrPartyChanged {
		shift, within := timegrid.WithinShift(start, tz, rest.Shifts)
		if !within {
			return nil, apperror.OutsideServiceWindow("requested start is outside every configured shift")
		}
		if end.After(timegrid.ShiftEnd(start, tz, shift)) {
			return nil, apperror.OutsideServiceWindow("reservation would extend past the end of its shift")
		}
		if req.Start != nil {
			if err := ValidateAdvance(start, now, rest.Advance); err != nil {
				return nil, err
			}
		}
	}

	var restaurantHandle lock.Handle
	if rest.MaxGuestsPerSlot != nil {
		h, err := s.locks.AcquireRestaurantLocks(ctx, rest.ID, start, end)
		if err != nil {
			return nil, lockErr(err)
		}
		restaurantHandle = h
		defer restaurantHandle.Release(ctx)
	}
	sectorHandle, err := s.locks.AcquireSectorLocks(ctx, sec.ID, start, end)
	if err != nil {
		return nil, lockErr(err)
	}
	defer sectorHandle.Release(ctx)

	if rest.MaxGuestsPerSlot != nil {
		sum, err := s.guestSum(ctx, rest.ID, start, end, existing.ID)
		if err != nil {
			return nil, err
		}
		if sum+partySize > *rest.MaxGuestsPerSlot {
			return nil, apperror.NoCapacity("restaurant guest cap for this slot would be exceeded")
		}
	}

	tableIDs := existing.TableIDs
	if timeOrPartyChanged {
		tables, err := s.tables.BySector(ctx, sec.ID)
		if err != nil {
			return nil, tableListErr(err)
		}
		ids, err := Assign(tables, partySize, s.kMax, s.overlapCheck(ctx, start, end, existing.ID))
		if err != nil {
			return nil, err
		}
		if ids == nil {
			return nil, apperror.NoCapacity("no table or table combination is available for this party")
		}
		tableIDs = ids
	}

	existing.SectorID = sec.ID
	existing.TableIDs = tableIDs
	existing.PartySize = partySize
	existing.Start = start
	existing.End = end
	if req.Customer != nil {
		existing.Customer = *req.Customer
	}
	if req.Notes != nil {
		existing.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, apperror.Internal(err)
	}
	return existing, nil
}

func (s *service) Cancel(ctx context.Context, id string) error {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err)
	}
	if res.Status == StatusCancelled {
		return nil // cancelling an already-cancelled reservation is a no-op
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusCancelled, nil); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (s *service) Approve(ctx context.Context, id string) (*Reservation, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if res.Status != StatusPending {
		return nil, apperror.InvalidFormat("only a pending reservation can be approved")
	}
	if res.ExpiresAt != nil && res.ExpiresAt.Before(s.clock()) {
		return nil, apperror.Conflict("pending hold has already expired")
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusConfirmed, nil); err != nil {
		return nil, apperror.Internal(err)
	}
	res.Status = StatusConfirmed
	res.ExpiresAt = nil
	return res, nil
}

func (s *service) Reject(ctx context.Context, id string) (*Reservation, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if res.Status != StatusPending {
		return nil, apperror.InvalidFormat("only a pending reservation can be rejected")
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusCancelled, nil); err != nil {
		return nil, apperror.Internal(err)
	}
	res.Status = StatusCancelled
	res.ExpiresAt = nil
	return res, nil
}

// ExpirePending is the admin-triggered sweep; expirePendingLocked is the
// same logic run opportunistically inside Create's critical section.
func (s *service) ExpirePending(ctx context.Context) (int, error) {
	return s.expirePendingLocked(ctx)
}

func (s *service) expirePendingLocked(ctx context.Context) (int, error) {
	pending, err := s.repo.PendingAll(ctx)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	now := s.clock()
	count := 0
	for _, r := range pending {
		if r.ExpiresAt == nil || r.ExpiresAt.After(now) {
			continue
		}
		if err := s.repo.UpdateStatus(ctx, r.ID, StatusCancelled, nil); err != nil {
			return count, apperror.Internal(err)
		}
		count++
	}
	return count, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Reservation, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return res, nil
}

func (s *service) Day(ctx context.Context, restaurantID string, date timegrid.Date, sectorID string) ([]*Reservation, error) {
	rest, err := s.restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, restaurantLookupErr(err)
	}
	tz, err := rest.Location()
	if err != nil {
		return nil, apperror.InvalidFormat(err.Error())
	}
	dayStartUTC, dayEndUTC := timegrid.DayBounds(date, tz)
	reservations, err := s.repo.ByDay(ctx, restaurantID, dayStartUTC, dayEndUTC, sectorID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return reservations, nil
}

func (s *service) resolveRestaurantSector(ctx context.Context, restaurantID, sectorID string) (*restaurant.Restaurant, *sector.Sector, error) {
	rest, err := s.restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, nil, restaurantLookupErr(err)
	}
	sec, err := s.sectors.GetByID(ctx, sectorID)
	if err != nil {
		if err == sector.ErrNotFound {
			return nil, nil, apperror.NotFound("sector not found")
		}
		return nil, nil, err
	}
	if sec.RestaurantID != rest.ID {
		return nil, nil, apperror.NotFound("sector does not belong to restaurant")
	}
	return rest, sec, nil
}

func (s *service) guestSum(ctx context.Context, restaurantID string, start, end time.Time, excludeID string) (int, error) {
	overlapping, err := s.repo.OverlappingRestaurant(ctx, restaurantID, start, end, excludeID)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	sum := 0
	for _, r := range overlapping {
		sum += r.PartySize
	}
	return sum, nil
}

func (s *service) overlapCheck(ctx context.Context, start, end time.Time, excludeID string) OverlapCheck {
	return func(tableIDs []string) (bool, error) {
		overlapping, err := s.repo.Overlapping(ctx, tableIDs, start, end, excludeID)
		if err != nil {
			return false, apperror.Internal(err)
		}
		return len(overlapping) > 0, nil
	}
}

// lockErr collapses lock-busy into NoCapacity: from the caller's
// viewpoint, the slot is simply unavailable right now.
func lockErr(err error) error {
	if errors.Is(err, lock.ErrBusy) {
		return apperror.NoCapacity("this slot is being booked by another request")
	}
	return apperror.Internal(err)
}

func notFoundOr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperror.NotFound("reservation not found")
	}
	return apperror.Internal(err)
}

// restaurantLookupErr maps errors from restaurant.Repository.GetByID,
// including Restaurant.Validate's sentinels surfaced through it, to the
// reservation API's error taxonomy.
func restaurantLookupErr(err error) error {
	switch {
	case errors.Is(err, restaurant.ErrNotFound):
		return apperror.NotFound("restaurant not found")
	case errors.Is(err, restaurant.ErrInvalidShift),
		errors.Is(err, restaurant.ErrInvalidTimezone),
		errors.Is(err, restaurant.ErrInvalidDuration):
		return apperror.InvalidFormat(err.Error())
	default:
		return apperror.Internal(err)
	}
}

// tableListErr maps errors from table.Repository.BySector, including
// Table.Validate's sentinel surfaced through it, to the reservation API's
// error taxonomy.
func tableListErr(err error) error {
	if errors.Is(err, table.ErrInvalidSize) {
		return apperror.InvalidFormat(err.Error())
	}
	return apperror.Internal(err)
}
