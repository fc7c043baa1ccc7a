package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the source of truth for reservation rows. It does not
// itself enforce no-overlap: the caller's lock discipline (internal/lock)
// is what makes overlap-then-write atomic across concurrent writers.
type Repository interface {
	// ByDay returns every CONFIRMED/PENDING reservation whose start lies
	// in the local calendar day [dayStartUTC, dayEndUTC) (local midnight to
	// the next local midnight, which is 23 or 25 hours across a DST change),
	// optionally filtered to one sector.
	ByDay(ctx context.Context, restaurantID string, dayStartUTC, dayEndUTC time.Time, sectorID string) ([]*Reservation, error)

	// Overlapping returns CONFIRMED/PENDING reservations sharing any of
	// tableIDs whose interval strictly overlaps [start, end).
	// excludeReservationID, if non-empty, is excluded from the result.
	Overlapping(ctx context.Context, tableIDs []string, start, end time.Time, excludeReservationID string) ([]*Reservation, error)

	// OverlappingRestaurant is the restaurant-scoped analogue used for
	// guest-cap enforcement: it ignores table ids entirely.
	OverlappingRestaurant(ctx context.Context, restaurantID string, start, end time.Time, excludeReservationID string) ([]*Reservation, error)

	Create(ctx context.Context, r *Reservation) error
	GetByID(ctx context.Context, id string) (*Reservation, error)
	// Update persists every mutable field of r except ID/Status/CreatedAt;
	// Status transitions go through UpdateStatus so the state machine in
	// service.go is the only place that decides lifecycle moves.
	Update(ctx context.Context, r *Reservation) error
	// UpdateStatus moves a reservation to a new status, setting or
	// clearing expiresAt to match.
	UpdateStatus(ctx context.Context, id string, status Status, expiresAt *time.Time) error

	// PendingAll returns every PENDING reservation, for the TTL sweep.
	PendingAll(ctx context.Context) ([]*Reservation, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const activeStatuses = "('CONFIRMED','PENDING')"

// selectBuilder builds the reservation row shape shared by every read query;
// table ids are aggregated from the reservation_tables join table into a
// Postgres array rather than stored as a text[] column, so table
// membership stays independently indexable and foreign-keyed.
func (r *pgxRepository) selectBuilder() squirrel.SelectBuilder {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return psql.Select(
		"res.id", "res.restaurant_id", "res.sector_id",
		"array_agg(rt.table_id ORDER BY rt.table_id) as table_ids",
		"res.party_size", "res.start_time", "res.end_time", "res.status",
		"res.expires_at", "res.customer_name", "res.customer_phone", "res.customer_email",
		"res.notes", "res.created_at", "res.updated_at",
	).
		From("public.reservations res").
		Join("public.reservation_tables rt ON rt.reservation_id = res.id").
		GroupBy("res.id")
}

func scanReservation(row pgx.Row) (*Reservation, error) {
	var r Reservation
	if err := row.Scan(
		&r.ID, &r.RestaurantID, &r.SectorID, &r.TableIDs,
		&r.PartySize, &r.Start, &r.End, &r.Status,
		&r.ExpiresAt, &r.Customer.Name, &r.Customer.Phone, &r.Customer.Email,
		&r.Notes, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &r, nil
}

func scanReservations(rows pgx.Rows) ([]*Reservation, error) {
	defer rows.Close()
	var out []*Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation failed: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (r *pgxRepository) ByDay(ctx context.Context, restaurantID string, dayStartUTC, dayEndUTC time.Time, sectorID string) ([]*Reservation, error) {
	q := r.selectBuilder().
		Where(squirrel.Eq{"res.restaurant_id": restaurantID}).
		Where(squirrel.Expr("res.status IN "+activeStatuses)).
		Where(squirrel.GtOrEq{"res.start_time": dayStartUTC}).
		Where(squirrel.Lt{"res.start_time": dayEndUTC}).
		OrderBy("res.start_time ASC")
	if sectorID != "" {
		q = q.Where(squirrel.Eq{"res.sector_id": sectorID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build reservations-by-day query failed: %w", err)
	}
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("reservations-by-day failed: %w", err)
	}
	return scanReservations(rows)
}

func (r *pgxRepository) Overlapping(ctx context.Context, tableIDs []string, start, end time.Time, excludeReservationID string) ([]*Reservation, error) {
	q := r.selectBuilder().
		Where(squirrel.Expr("res.status IN "+activeStatuses)).
		Where(squirrel.Lt{"res.start_time": end}).
		Where(squirrel.Gt{"res.end_time": start}).
		Where(squirrel.Expr("res.id IN (SELECT reservation_id FROM public.reservation_tables WHERE table_id = ANY(?))", tableIDs))
	if excludeReservationID != "" {
		q = q.Where(squirrel.NotEq{"res.id": excludeReservationID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build overlapping query failed: %w", err)
	}
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("overlapping failed: %w", err)
	}
	return scanReservations(rows)
}

func (r *pgxRepository) OverlappingRestaurant(ctx context.Context, restaurantID string, start, end time.Time, excludeReservationID string) ([]*Reservation, error) {
	q := r.selectBuilder().
		Where(squirrel.Eq{"res.restaurant_id": restaurantID}).
		Where(squirrel.Expr("res.status IN "+activeStatuses)).
		Where(squirrel.Lt{"res.start_time": end}).
		Where(squirrel.Gt{"res.end_time": start})
	if excludeReservationID != "" {
		q = q.Where(squirrel.NotEq{"res.id": excludeReservationID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build overlapping-restaurant query failed: %w", err)
	}
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("overlapping-restaurant failed: %w", err)
	}
	return scanReservations(rows)
}

func (r *pgxRepository) Create(ctx context.Context, res *Reservation) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create-reservation tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.reservations").
		Columns(
			"restaurant_id", "sector_id", "party_size", "start_time", "end_time", "status",
			"expires_at", "customer_name", "customer_phone", "customer_email", "notes",
		).
		Values(
			res.RestaurantID, res.SectorID, res.PartySize, res.Start, res.End, res.Status,
			res.ExpiresAt, res.Customer.Name, res.Customer.Phone, res.Customer.Email, res.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create reservation query failed: %w", err)
	}
	if err := tx.QueryRow(ctx, query, args...).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return fmt.Errorf("create reservation failed: %w", err)
	}

	if err := insertReservationTables(ctx, tx, res.ID, res.TableIDs); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func insertReservationTables(ctx context.Context, tx pgx.Tx, reservationID string, tableIDs []string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	ins := psql.Insert("public.reservation_tables").Columns("reservation_id", "table_id")
	for _, tableID := range tableIDs {
		ins = ins.Values(reservationID, tableID)
	}
	query, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert reservation_tables query failed: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert reservation_tables failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Reservation, error) {
	q := r.selectBuilder().Where(squirrel.Eq{"res.id": id})
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get reservation query failed: %w", err)
	}
	res, err := scanReservation(r.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get reservation failed: %w", err)
	}
	return res, nil
}

func (r *pgxRepository) Update(ctx context.Context, res *Reservation) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update-reservation tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.reservations").
		Set("sector_id", res.SectorID).
		Set("party_size", res.PartySize).
		Set("start_time", res.Start).
		Set("end_time", res.End).
		Set("customer_name", res.Customer.Name).
		Set("customer_phone", res.Customer.Phone).
		Set("customer_email", res.Customer.Email).
		Set("notes", res.Notes).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": res.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update reservation query failed: %w", err)
	}
	if err := tx.QueryRow(ctx, query, args...).Scan(&res.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update reservation failed: %w", err)
	}

	delQuery, delArgs, err := psql.Delete("public.reservation_tables").
		Where(squirrel.Eq{"reservation_id": res.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build clear reservation_tables query failed: %w", err)
	}
	if _, err := tx.Exec(ctx, delQuery, delArgs...); err != nil {
		return fmt.Errorf("clear reservation_tables failed: %w", err)
	}
	if err := insertReservationTables(ctx, tx, res.ID, res.TableIDs); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, id string, status Status, expiresAt *time.Time) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.reservations").
		Set("status", status).
		Set("expires_at", expiresAt).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update-status query failed: %w", err)
	}
	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update reservation status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) PendingAll(ctx context.Context) ([]*Reservation, error) {
	q := r.selectBuilder().Where(squirrel.Eq{"res.status": StatusPending})
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build pending-reservations query failed: %w", err)
	}
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("pending-reservations failed: %w", err)
	}
	return scanReservations(rows)
}
