package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/model"
)

const roomTypeCols = `rt.id, rt.name, rt.description, rt.created_by, rt.updated_by, rt.created_at, rt.updated_at`

func roomTypeDest(t *model.RoomType) []any {
	return []any{&t.ID, &t.Name, &t.Description, &t.CreatedBy, nullUUIDInto(&t.UpdatedBy),
		timeInto(&t.CreatedAt), nullTimeInto(&t.UpdatedAt)}
}

// RoomTypeRepo stores room categories.  Names are unique.
type RoomTypeRepo struct {
	db *sql.DB
}

func NewRoomTypeRepo(db *sql.DB) *RoomTypeRepo { return &RoomTypeRepo{db: db} }

// Create inserts t, assigning an id and creation time when missing.
func (r *RoomTypeRepo) Create(ctx context.Context, t *model.RoomType) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO room_types (id, name, description, created_by, created_at) VALUES (?,?,?,?,?)`,
		t.ID, t.Name, t.Description, t.CreatedBy, dbTime(t.CreatedAt))
	return mapWriteErr(err)
}

func (r *RoomTypeRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.RoomType, error) {
	return r.get(ctx, `WHERE rt.id = ?`, id)
}

// GetByName performs an exact name lookup.
func (r *RoomTypeRepo) GetByName(ctx context.Context, name string) (*model.RoomType, error) {
	return r.get(ctx, `WHERE rt.name = ?`, name)
}

func (r *RoomTypeRepo) get(ctx context.Context, where string, arg any) (*model.RoomType, error) {
	var t model.RoomType
	err := r.db.QueryRowContext(ctx, `SELECT `+roomTypeCols+` FROM room_types rt `+where+` LIMIT 1`, arg).
		Scan(roomTypeDest(&t)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomTypeNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *RoomTypeRepo) List(ctx context.Context, p model.Page) ([]model.RoomType, error) {
	limit, offset := pageArgs(p)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+roomTypeCols+` FROM room_types rt ORDER BY rt.name LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.RoomType{}
	for rows.Next() {
		var t model.RoomType
		if err := rows.Scan(roomTypeDest(&t)...); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update writes name, description and the editor of t.
func (r *RoomTypeRepo) Update(ctx context.Context, t *model.RoomType) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		`UPDATE room_types SET name=?, description=?, updated_by=?, updated_at=? WHERE id=?`,
		t.Name, t.Description, nullUUID(t.UpdatedBy), dbTime(now), t.ID)
	if err != nil {
		return mapWriteErr(err)
	}
	if ok, err := rowsAffected(res); err != nil {
		return err
	} else if !ok {
		return ErrRoomTypeNotFound
	}
	t.UpdatedAt = &now
	return nil
}

// CountRooms returns how many rooms reference the type.
func (r *RoomTypeRepo) CountRooms(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms WHERE type_id = ?`, id).Scan(&n)
	return n, err
}

// Delete removes the type.  It returns ErrConflict while rooms still
// reference it; the check and the delete share one transaction.
func (r *RoomTypeRepo) Delete(ctx context.Context, id uuid.UUID) error {
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
	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms WHERE type_id = ?`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM room_types WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if ok, err := rowsAffected(res); err != nil {
		return err
	} else if !ok {
		return ErrRoomTypeNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
