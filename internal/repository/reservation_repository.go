package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/model"
)

// ReservationRepo provides CRUD operations for reservations.  Writes are
// only exposed as *Tx methods: every reservation change also touches room
// availability, so the reservation engine always runs them inside a
// transaction it owns.  All timestamps are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the handle so the engine can begin transactions.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const reservationSelect = `SELECT r.id, r.user_id, r.room_id, rm.number, r.check_in, r.check_out, r.guests, r.nights,
       r.status, r.base_cost, r.service_charges, r.created_by, r.updated_by, r.created_at, r.updated_at
  FROM reservations r
  JOIN rooms rm ON rm.id = r.room_id `

const reservationCols = `r.id, r.user_id, r.room_id, rm.number, r.check_in, r.check_out, r.guests, r.nights,
       r.status, r.base_cost, r.service_charges, r.created_by, r.updated_by, r.created_at, r.updated_at`

func reservationDest(res *model.Reservation) []any {
	return []any{&res.ID, &res.UserID, &res.RoomID, &res.RoomNumber, dateInto(&res.CheckIn), dateInto(&res.CheckOut),
		&res.Guests, &res.Nights, &res.Status, &res.BaseCost, &res.ServiceCharges, &res.CreatedBy,
		nullUUIDInto(&res.UpdatedBy), timeInto(&res.CreatedAt), nullTimeInto(&res.UpdatedAt)}
}

// normalize canonicalizes legacy status spellings and fills TotalCost.
func normalizeReservation(res *model.Reservation) {
	if st, ok := model.ParseReservationStatus(string(res.Status)); ok {
		res.Status = st
	}
	res.SyncTotal()
}

// CreateTx inserts a new reservation within the scope of an existing
// transaction and reads the row back so joined and defaulted columns are
// populated.  The caller must commit or rollback.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	const q = `INSERT INTO reservations (id, user_id, room_id, check_in, check_out, guests, nights, status,
	           base_cost, service_charges, created_by, created_at)
	           VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`
	_, err := tx.ExecContext(ctx, q, res.ID, res.UserID, res.RoomID, dbDate(res.CheckIn), dbDate(res.CheckOut),
		res.Guests, res.Nights, string(res.Status), res.BaseCost, res.ServiceCharges, res.CreatedBy, dbTime(res.CreatedAt))
	if err != nil {
		return err
	}
	got, err := getReservation(ctx, tx, res.ID)
	if err != nil {
		return err
	}
	*res = *got
	return nil
}

func (r *ReservationRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	return getReservation(ctx, r.db, id)
}

func (r *ReservationRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*model.Reservation, error) {
	return getReservation(ctx, tx, id)
}

func getReservation(ctx context.Context, q dbtx, id uuid.UUID) (*model.Reservation, error) {
	var res model.Reservation
	if err := q.QueryRowContext(ctx, reservationSelect+`WHERE r.id = ? LIMIT 1`, id).Scan(reservationDest(&res)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	normalizeReservation(&res)
	return &res, nil
}

// GetWithUser loads a reservation together with its owner.
func (r *ReservationRepo) GetWithUser(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	list, err := r.queryWithUser(ctx, `WHERE r.id = ? LIMIT 1`, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrReservationNotFound
	}
	return &list[0], nil
}

// List returns a page of reservations, newest first, with their owners.
func (r *ReservationRepo) List(ctx context.Context, p model.Page) ([]model.Reservation, error) {
	limit, offset := pageArgs(p)
	return r.queryWithUser(ctx, `ORDER BY r.created_at DESC, r.id LIMIT ? OFFSET ?`, limit, offset)
}

// ListByUser returns the reservations owned by userID.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uuid.UUID, p model.Page) ([]model.Reservation, error) {
	limit, offset := pageArgs(p)
	return r.queryWithUser(ctx, `WHERE r.user_id = ? ORDER BY r.created_at DESC, r.id LIMIT ? OFFSET ?`,
		userID, limit, offset)
}

// ListByStatus returns reservations in the given state.  Legacy spellings
// are matched through LOWER so both "Active" and "activa" rows appear.
func (r *ReservationRepo) ListByStatus(ctx context.Context, st model.ReservationStatus, p model.Page) ([]model.Reservation, error) {
	limit, offset := pageArgs(p)
	names := []any{"active", "activa"}
	if st == model.StatusCancelled {
		names = []any{"cancelled", "cancelada"}
	}
	args := append(names, limit, offset)
	return r.queryWithUser(ctx, `WHERE LOWER(r.status) IN (?, ?) ORDER BY r.created_at DESC, r.id LIMIT ? OFFSET ?`, args...)
}

func (r *ReservationRepo) queryWithUser(ctx context.Context, tail string, args ...any) ([]model.Reservation, error) {
	q := `SELECT ` + reservationCols + `, ` + userCols + `
	        FROM reservations r
	        JOIN rooms rm ON rm.id = r.room_id
	        JOIN users u ON u.id = r.user_id ` + tail
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Reservation{}
	for rows.Next() {
		var (
			res model.Reservation
			u   model.User
		)
		if err := rows.Scan(append(reservationDest(&res), userDest(&u)...)...); err != nil {
			return nil, err
		}
		normalizeReservation(&res)
		res.User = &u
		out = append(out, res)
	}
	return out, rows.Err()
}

// ListByUserTx returns every reservation of a user without paging.  Used
// when the user is being deleted.
func (r *ReservationRepo) ListByUserTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID) ([]model.Reservation, error) {
	rows, err := tx.QueryContext(ctx, reservationSelect+`WHERE r.user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Reservation{}
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(reservationDest(&res)...); err != nil {
			return nil, err
		}
		normalizeReservation(&res)
		out = append(out, res)
	}
	return out, rows.Err()
}

// UpdateTx writes every mutable column of res.  Cost columns are written as
// given; the engine is responsible for keeping them consistent.
func (r *ReservationRepo) UpdateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	now := time.Now().UTC().Truncate(time.Second)
	const q = `UPDATE reservations
	              SET room_id=?, check_in=?, check_out=?, guests=?, nights=?, status=?,
	                  base_cost=?, service_charges=?, updated_by=?, updated_at=?
	            WHERE id=?`
	result, err := tx.ExecContext(ctx, q, res.RoomID, dbDate(res.CheckIn), dbDate(res.CheckOut), res.Guests,
		res.Nights, string(res.Status), res.BaseCost, res.ServiceCharges, nullUUID(res.UpdatedBy), dbTime(now), res.ID)
	if err != nil {
		return err
	}
	if ok, err := rowsAffected(result); err != nil {
		return err
	} else if !ok {
		return ErrReservationNotFound
	}
	got, err := getReservation(ctx, tx, res.ID)
	if err != nil {
		return err
	}
	*res = *got
	return nil
}

// AddServiceChargeTx increments service_charges by amount in a single
// statement so concurrent link creations cannot lose an increment.
func (r *ReservationRepo) AddServiceChargeTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, amount float64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE reservations SET service_charges = service_charges + ?, updated_at = ? WHERE id = ?`,
		amount, dbTime(time.Now()), id)
	if err != nil {
		return err
	}
	if ok, err := rowsAffected(res); err != nil {
		return err
	} else if !ok {
		return ErrReservationNotFound
	}
	return nil
}

// DeleteTx removes the reservation row.  Links must be deleted first.
func (r *ReservationRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if ok, err := rowsAffected(res); err != nil {
		return err
	} else if !ok {
		return ErrReservationNotFound
	}
	return nil
}
