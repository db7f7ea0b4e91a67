package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/model"
)

const serviceCols = `s.id, s.name, s.price, s.description, s.created_by, s.updated_by, s.created_at, s.updated_at`

func serviceDest(s *model.AdditionalService) []any {
	return []any{&s.ID, &s.Name, &s.Price, &s.Description, &s.CreatedBy, nullUUIDInto(&s.UpdatedBy),
		timeInto(&s.CreatedAt), nullTimeInto(&s.UpdatedAt)}
}

// ServiceRepo stores the add-on catalog (`services` table).
type ServiceRepo struct {
	db *sql.DB
}

func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{db: db} }

func (r *ServiceRepo) Create(ctx context.Context, s *model.AdditionalService) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO services (id, name, description, price, created_by, created_at) VALUES (?,?,?,?,?,?)`,
		s.ID, s.Name, s.Description, s.Price, s.CreatedBy, dbTime(s.CreatedAt))
	return mapWriteErr(err)
}

func (r *ServiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.AdditionalService, error) {
	return getService(ctx, r.db, `WHERE s.id = ?`, id)
}

func (r *ServiceRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*model.AdditionalService, error) {
	return getService(ctx, tx, `WHERE s.id = ?`, id)
}

func (r *ServiceRepo) GetByName(ctx context.Context, name string) (*model.AdditionalService, error) {
	return getService(ctx, r.db, `WHERE s.name = ?`, name)
}

func getService(ctx context.Context, q dbtx, where string, arg any) (*model.AdditionalService, error) {
	var s model.AdditionalService
	err := q.QueryRowContext(ctx, `SELECT `+serviceCols+` FROM services s `+where+` LIMIT 1`, arg).Scan(serviceDest(&s)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *ServiceRepo) List(ctx context.Context, p model.Page) ([]model.AdditionalService, error) {
	limit, offset := pageArgs(p)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+serviceCols+` FROM services s ORDER BY s.name LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.AdditionalService{}
	for rows.Next() {
		var s model.AdditionalService
		if err := rows.Scan(serviceDest(&s)...); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ServiceRepo) Update(ctx context.Context, s *model.AdditionalService) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		`UPDATE services SET name=?, description=?, price=?, updated_by=?, updated_at=? WHERE id=?`,
		s.Name, s.Description, s.Price, nullUUID(s.UpdatedBy), dbTime(now), s.ID)
	if err != nil {
		return mapWriteErr(err)
	}
	if ok, err := rowsAffected(res); err != nil {
		return err
	} else if !ok {
		return ErrServiceNotFound
	}
	s.UpdatedAt = &now
	return nil
}

// Delete removes a service.  It is refused with ErrConflict while the
// service is linked to an Active reservation.  Links on cancelled
// reservations are dropped together with the service.
func (r *ServiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
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
	if _, err := getService(ctx, tx, `WHERE s.id = ?`, id); err != nil {
		return err
	}
	var n int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*)
		  FROM reservation_services rs
		  JOIN reservations r ON r.id = rs.reservation_id
		 WHERE rs.service_id = ? AND LOWER(r.status) IN ('active', 'activa')`, id).Scan(&n)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM reservation_services WHERE service_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM services WHERE id = ?`, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
