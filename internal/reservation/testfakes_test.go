package reservation

import (
	"context"
	"sync"
	"time"

	"github.com/seatflow/reservation-engine/internal/restaurant"
	"github.com/seatflow/reservation-engine/internal/sector"
	"github.com/seatflow/reservation-engine/internal/table"
)

// fakeRestaurantRepo, fakeSectorRepo, and fakeTableRepo are minimal
// in-memory stand-ins for the real pgx-backed repositories, used to drive
// Service/AvailabilityService tests without a database.
type fakeRestaurantRepo struct {
	restaurants map[string]*restaurant.Restaurant
}

func newFakeRestaurantRepo(rs ...*restaurant.Restaurant) *fakeRestaurantRepo {
	m := make(map[string]*restaurant.Restaurant)
	for _, r := range rs {
		m[r.ID] = r
	}
	return &fakeRestaurantRepo{restaurants: m}
}

func (f *fakeRestaurantRepo) GetByID(ctx context.Context, id string) (*restaurant.Restaurant, error) {
	r, ok := f.restaurants[id]
	if !ok {
		return nil, restaurant.ErrNotFound
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

type fakeSectorRepo struct {
	sectors map[string]*sector.Sector
}

func newFakeSectorRepo(ss ...*sector.Sector) *fakeSectorRepo {
	m := make(map[string]*sector.Sector)
	for _, s := range ss {
		m[s.ID] = s
	}
	return &fakeSectorRepo{sectors: m}
}

func (f *fakeSectorRepo) GetByID(ctx context.Context, id string) (*sector.Sector, error) {
	if s, ok := f.sectors[id]; ok {
		return s, nil
	}
	return nil, sector.ErrNotFound
}

type fakeTableRepo struct {
	bySector map[string][]*table.Table
}

func newFakeTableRepo(sectorID string, tables ...*table.Table) *fakeTableRepo {
	return &fakeTableRepo{bySector: map[string][]*table.Table{sectorID: tables}}
}

func (f *fakeTableRepo) GetByID(ctx context.Context, id string) (*table.Table, error) {
	for _, ts := range f.bySector {
		for _, t := range ts {
			if t.ID == id {
				return t, nil
			}
		}
	}
	return nil, table.ErrNotFound
}

func (f *fakeTableRepo) BySector(ctx context.Context, sectorID string) ([]*table.Table, error) {
	return f.bySector[sectorID], nil
}

// memoryReservationRepo is an in-memory Repository, good enough to drive
// Service's lock -> assign -> write sequencing and concurrent-goroutine
// tests for P1/P4/S2/S3/S4/S7 without a real database.
type memoryReservationRepo struct {
	mu      sync.Mutex
	byID    map[string]*Reservation
	nextSeq int
}

func newMemoryReservationRepo() *memoryReservationRepo {
	return &memoryReservationRepo{byID: make(map[string]*Reservation)}
}

func (m *memoryReservationRepo) ByDay(ctx context.Context, restaurantID string, dayStartUTC, dayEndUTC time.Time, sectorID string) ([]*Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Reservation
	for _, r := range m.byID {
		if r.RestaurantID != restaurantID || !r.Active() {
			continue
		}
		if sectorID != "" && r.SectorID != sectorID {
			continue
		}
		start := r.Start.UTC()
		if !start.Before(dayStartUTC) && start.Before(dayEndUTC) {
			out = append(out, cloneReservation(r))
		}
	}
	return out, nil
}

func (m *memoryReservationRepo) Overlapping(ctx context.Context, tableIDs []string, start, end time.Time, excludeReservationID string) ([]*Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[string]bool, len(tableIDs))
	for _, id := range tableIDs {
		want[id] = true
	}
	var out []*Reservation
	for _, r := range m.byID {
		if !r.Active() || r.ID == excludeReservationID {
			continue
		}
		if !r.Overlaps(start, end) {
			continue
		}
		for _, tid := range r.TableIDs {
			if want[tid] {
				out = append(out, cloneReservation(r))
				break
			}
		}
	}
	return out, nil
}

func (m *memoryReservationRepo) OverlappingRestaurant(ctx context.Context, restaurantID string, start, end time.Time, excludeReservationID string) ([]*Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Reservation
	for _, r := range m.byID {
		if r.RestaurantID != restaurantID || !r.Active() || r.ID == excludeReservationID {
			continue
		}
		if r.Overlaps(start, end) {
			out = append(out, cloneReservation(r))
		}
	}
	return out, nil
}

func (m *memoryReservationRepo) Create(ctx context.Context, r *Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSeq++
	r.ID = idFromSeq(m.nextSeq)
	now := time.Now()
	r.CreatedAt, r.UpdatedAt = now, now
	m.byID[r.ID] = cloneReservation(r)
	return nil
}

func (m *memoryReservationRepo) GetByID(ctx context.Context, id string) (*Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.byID[id]; ok {
		return cloneReservation(r), nil
	}
	return nil, ErrNotFound
}

func (m *memoryReservationRepo) Update(ctx context.Context, r *Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.byID[r.ID]
	if !ok {
		return ErrNotFound
	}
	r.Status = existing.Status
	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = time.Now()
	m.byID[r.ID] = cloneReservation(r)
	return nil
}

func (m *memoryReservationRepo) UpdateStatus(ctx context.Context, id string, status Status, expiresAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	r.Status = status
	r.ExpiresAt = expiresAt
	r.UpdatedAt = time.Now()
	return nil
}

func (m *memoryReservationRepo) PendingAll(ctx context.Context) ([]*Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Reservation
	for _, r := range m.byID {
		if r.Status == StatusPending {
			out = append(out, cloneReservation(r))
		}
	}
	return out, nil
}

func cloneReservation(r *Reservation) *Reservation {
	cp := *r
	cp.TableIDs = append([]string(nil), r.TableIDs...)
	if r.ExpiresAt != nil {
		t := *r.ExpiresAt
		cp.ExpiresAt = &t
	}
	return &cp
}

func idFromSeq(n int) string {
	const digits = "0123456789abcdef"
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{digits[n%16]}, b...)
		n /= 16
	}
	return "r-" + string(b)
}
