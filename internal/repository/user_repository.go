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

const userCols = `u.id, u.first_name, u.last_name, u.phone, u.role, u.username, u.password_hash, u.created_at, u.updated_at`

func userDest(u *model.User) []any {
	return []any{&u.ID, &u.FirstName, &u.LastName, &u.Phone, &u.Role, &u.Username, &u.PasswordHash,
		timeInto(&u.CreatedAt), nullTimeInto(&u.UpdatedAt)}
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user.  The password must already be hashed.  A taken
// username yields ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (id, first_name, last_name, phone, role, username, password_hash, created_at)
		 VALUES (?,?,?,?,?,?,?,?)`,
		u.ID, u.FirstName, u.LastName, u.Phone, u.Role, u.Username, u.PasswordHash, dbTime(u.CreatedAt))
	return mapWriteErr(err)
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return getUser(ctx, r.DB, `WHERE u.id = ?`, id)
}

func (r *UserRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*model.User, error) {
	return getUser(ctx, tx, `WHERE u.id = ?`, id)
}

// GetByUsername matches the username exactly after trimming spaces.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return getUser(ctx, r.DB, `WHERE u.username = ?`, strings.TrimSpace(username))
}

func getUser(ctx context.Context, q dbtx, where string, arg any) (*model.User, error) {
	var u model.User
	err := q.QueryRowContext(ctx, `SELECT `+userCols+` FROM users u `+where+` LIMIT 1`, arg).Scan(userDest(&u)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// List returns a page of users, excluding the system account.
func (r *UserRepo) List(ctx context.Context, p model.Page) ([]model.User, error) {
	limit, offset := pageArgs(p)
	return r.query(ctx, `WHERE u.id <> ? ORDER BY u.created_at, u.username LIMIT ? OFFSET ?`,
		model.SystemUserID, limit, offset)
}

// ListByRole returns every user holding role, excluding the system account.
func (r *UserRepo) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	return r.query(ctx, `WHERE u.role = ? AND u.id <> ? ORDER BY u.username`, role, model.SystemUserID)
}

func (r *UserRepo) query(ctx context.Context, tail string, args ...any) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+userCols+` FROM users u `+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(userDest(&u)...); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update writes every mutable profile column of u, including the password
// hash, and stamps updated_at.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET first_name=?, last_name=?, phone=?, role=?, username=?, password_hash=?, updated_at=?
		 WHERE id=?`,
		u.FirstName, u.LastName, u.Phone, u.Role, u.Username, u.PasswordHash, dbTime(now), u.ID)
	if err != nil {
		return mapWriteErr(err)
	}
	if ok, err := rowsAffected(res); err != nil {
		return err
	} else if !ok {
		return ErrUserNotFound
	}
	u.UpdatedAt = &now
	return nil
}

// ReassignAuthorshipTx moves every created_by/updated_by reference from one
// user to another so the first can be deleted.
func (r *UserRepo) ReassignAuthorshipTx(ctx context.Context, tx *sql.Tx, from, to uuid.UUID) error {
	stmts := []string{
		`UPDATE room_types SET created_by=? WHERE created_by=?`,
		`UPDATE room_types SET updated_by=? WHERE updated_by=?`,
		`UPDATE rooms SET created_by=? WHERE created_by=?`,
		`UPDATE rooms SET updated_by=? WHERE updated_by=?`,
		`UPDATE services SET created_by=? WHERE created_by=?`,
		`UPDATE services SET updated_by=? WHERE updated_by=?`,
		`UPDATE reservations SET created_by=? WHERE created_by=?`,
		`UPDATE reservations SET updated_by=? WHERE updated_by=?`,
	}
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s, to, from); err != nil {
			return err
		}
	}
	return nil
}

// DeleteTx removes the user row.  Callers clear dependent rows first.
func (r *UserRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	if id == model.SystemUserID {
		return ErrForbidden
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id=?`, id)
	if err != nil {
		return err
	}
	if ok, err := rowsAffected(res); err != nil {
		return err
	} else if !ok {
		return ErrUserNotFound
	}
	return nil
}
