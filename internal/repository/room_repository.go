package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/model"
)

const roomSelect = `SELECT rm.id, rm.number, rm.type_id, rt.name, rm.price, rm.available,
       rm.created_by, rm.updated_by, rm.created_at, rm.updated_at
  FROM rooms rm
  JOIN room_types rt ON rt.id = rm.type_id `

func roomDest(rm *model.Room) []any {
	return []any{&rm.ID, &rm.Number, &rm.TypeID, &rm.TypeName, &rm.Price, &rm.Available,
		&rm.CreatedBy, nullUUIDInto(&rm.UpdatedBy), timeInto(&rm.CreatedAt), nullTimeInto(&rm.UpdatedAt)}
}

// RoomRepo stores rooms.  The availability flag has exactly two writers:
// OccupyTx/ReleaseTx for the reservation engine and SetAvailabilityTx for
// the guarded administrative toggle.  Update never touches it.
type RoomRepo struct {
	db *sql.DB
}

func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// Create inserts rm as available.  A taken number yields ErrDuplicate.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	if rm.ID == uuid.Nil {
		rm.ID = uuid.New()
	}
	if rm.CreatedAt.IsZero() {
		rm.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	rm.Available = true
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO rooms (id, number, type_id, price, available, created_by, created_at) VALUES (?,?,?,?,?,?,?)`,
		rm.ID, rm.Number, rm.TypeID, rm.Price, true, rm.CreatedBy, dbTime(rm.CreatedAt))
	if err != nil {
		return mapWriteErr(err)
	}
	// read back to pick up the joined type name
	got, err := r.GetByID(ctx, rm.ID)
	if err != nil {
		return err
	}
	*rm = *got
	return nil
}

func (r *RoomRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	return getRoom(ctx, r.db, `WHERE rm.id = ?`, id)
}

func (r *RoomRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*model.Room, error) {
	return getRoom(ctx, tx, `WHERE rm.id = ?`, id)
}

func (r *RoomRepo) GetByNumber(ctx context.Context, number int) (*model.Room, error) {
	return getRoom(ctx, r.db, `WHERE rm.number = ?`, number)
}

func getRoom(ctx context.Context, q dbtx, where string, arg any) (*model.Room, error) {
	var rm model.Room
	if err := q.QueryRowContext(ctx, roomSelect+where+` LIMIT 1`, arg).Scan(roomDest(&rm)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &rm, nil
}

// List returns rooms ordered by number.
func (r *RoomRepo) List(ctx context.Context, p model.Page) ([]model.Room, error) {
	limit, offset := pageArgs(p)
	return r.query(ctx, `ORDER BY rm.number LIMIT ? OFFSET ?`, limit, offset)
}

// ListAvailable returns only rooms whose availability flag is set.
func (r *RoomRepo) ListAvailable(ctx context.Context, p model.Page) ([]model.Room, error) {
	limit, offset := pageArgs(p)
	return r.query(ctx, `WHERE rm.available = ? ORDER BY rm.number LIMIT ? OFFSET ?`, true, limit, offset)
}

// ListByTypeName matches rooms whose type name contains name, ignoring case.
func (r *RoomRepo) ListByTypeName(ctx context.Context, name string, p model.Page) ([]model.Room, error) {
	limit, offset := pageArgs(p)
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(name))) + "%"
	return r.query(ctx, `WHERE LOWER(rt.name) LIKE ? ESCAPE '!' ORDER BY rm.number LIMIT ? OFFSET ?`,
		pattern, limit, offset)
}

func (r *RoomRepo) query(ctx context.Context, tail string, args ...any) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx, roomSelect+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Room{}
	for rows.Next() {
		var rm model.Room
		if err := rows.Scan(roomDest(&rm)...); err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

// Update writes number, type, price and editor.  Availability is left alone.
func (r *RoomRepo) Update(ctx context.Context, rm *model.Room) error {
	return updateRoom(ctx, r.db, rm)
}

// UpdateTx is Update inside a caller-owned transaction.
func (r *RoomRepo) UpdateTx(ctx context.Context, tx *sql.Tx, rm *model.Room) error {
	return updateRoom(ctx, tx, rm)
}

func updateRoom(ctx context.Context, q dbtx, rm *model.Room) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := q.ExecContext(ctx,
		`UPDATE rooms SET number=?, type_id=?, price=?, updated_by=?, updated_at=? WHERE id=?`,
		rm.Number, rm.TypeID, rm.Price, nullUUID(rm.UpdatedBy), dbTime(now), rm.ID)
	if err != nil {
		return mapWriteErr(err)
	}
	if ok, err := rowsAffected(res); err != nil {
		return err
	} else if !ok {
		return ErrRoomNotFound
	}
	got, err := getRoom(ctx, q, "WHERE rm.id = ?", rm.ID)
	if err != nil {
		return err
	}
	*rm = *got
	return nil
}

// OccupyTx flips the room to unavailable only if it is currently available.
// Zero affected rows means another reservation holds it: ErrRoomUnavailable,
// or ErrRoomNotFound when the id does not exist at all.
func (r *RoomRepo) OccupyTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `UPDATE rooms SET available = ? WHERE id = ? AND available = ?`, false, id, true)
	if err != nil {
		return err
	}
	ok, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if _, err := getRoom(ctx, tx, `WHERE rm.id = ?`, id); err != nil {
		return err
	}
	return ErrRoomUnavailable
}

// ReleaseTx marks the room available again.  Releasing a free room is a no-op.
func (r *RoomRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `UPDATE rooms SET available = ? WHERE id = ?`, true, id)
	return err
}

// SetAvailabilityTx is the administrative override used by the toggle
// operation.  Callers must first verify no Active reservation holds the room.
func (r *RoomRepo) SetAvailabilityTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, available bool, by uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `UPDATE rooms SET available=?, updated_by=?, updated_at=? WHERE id=?`,
		available, by, dbTime(time.Now()), id)
	if err != nil {
		return err
	}
	if ok, err := rowsAffected(res); err != nil {
		return err
	} else if !ok {
		return ErrRoomNotFound
	}
	return nil
}

// HasActiveReservationTx reports whether any reservation on the room is
// Active.  Status is compared case-insensitively so rows written by older
// clients ("activa") still count.
func (r *RoomRepo) HasActiveReservationTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE room_id = ? AND LOWER(status) IN ('active', 'activa')`, id).Scan(&n)
	return n > 0, err
}

// Delete removes a room that no reservation references; otherwise ErrConflict.
func (r *RoomRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := getRoom(ctx, tx, `WHERE rm.id = ?`, id); err != nil {
		return err
	}
	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations WHERE room_id = ?`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// escapeLike neutralizes LIKE wildcards using '!' as the escape character.
func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}
