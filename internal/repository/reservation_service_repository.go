package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/model"
)

// ReservationServiceRepo stores the reservation_services junction.  Each
// row is one charge of one service on one reservation.
type ReservationServiceRepo struct {
	db *sql.DB
}

func NewReservationServiceRepo(db *sql.DB) *ReservationServiceRepo {
	return &ReservationServiceRepo{db: db}
}

const linkCols = `rs.id, rs.reservation_id, rs.service_id, rs.price, rs.created_at`

func linkDest(l *model.ReservationService) []any {
	return []any{&l.ID, &l.ReservationID, &l.ServiceID, &l.Price, timeInto(&l.CreatedAt)}
}

// CreateTx inserts link inside the caller's transaction.
func (r *ReservationServiceRepo) CreateTx(ctx context.Context, tx *sql.Tx, l *model.ReservationService) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO reservation_services (id, reservation_id, service_id, price, created_at) VALUES (?,?,?,?,?)`,
		l.ID, l.ReservationID, l.ServiceID, l.Price, dbTime(l.CreatedAt))
	return err
}

func (r *ReservationServiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.ReservationService, error) {
	list, err := r.queryDetailed(ctx, `WHERE rs.id = ? LIMIT 1`, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrLinkNotFound
	}
	return &list[0], nil
}

// FirstByReservationTx returns the oldest link of a reservation.
func (r *ReservationServiceRepo) FirstByReservationTx(ctx context.Context, tx *sql.Tx, reservationID uuid.UUID) (*model.ReservationService, error) {
	var l model.ReservationService
	err := tx.QueryRowContext(ctx,
		`SELECT `+linkCols+` FROM reservation_services rs WHERE rs.reservation_id = ?
		 ORDER BY rs.created_at, rs.id LIMIT 1`, reservationID).Scan(linkDest(&l)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return &l, nil
}

// List returns links with their reservation (and its owner) and service.
func (r *ReservationServiceRepo) List(ctx context.Context, p model.Page) ([]model.ReservationService, error) {
	limit, offset := pageArgs(p)
	return r.queryDetailed(ctx, `ORDER BY rs.created_at, rs.id LIMIT ? OFFSET ?`, limit, offset)
}

func (r *ReservationServiceRepo) ListByReservation(ctx context.Context, reservationID uuid.UUID) ([]model.ReservationService, error) {
	return r.queryDetailed(ctx, `WHERE rs.reservation_id = ? ORDER BY rs.created_at, rs.id`, reservationID)
}

func (r *ReservationServiceRepo) ListByService(ctx context.Context, serviceID uuid.UUID) ([]model.ReservationService, error) {
	return r.queryDetailed(ctx, `WHERE rs.service_id = ? ORDER BY rs.created_at, rs.id`, serviceID)
}

func (r *ReservationServiceRepo) queryDetailed(ctx context.Context, tail string, args ...any) ([]model.ReservationService, error) {
	q := `SELECT ` + linkCols + `, ` + reservationCols + `, ` + userCols + `, ` + serviceCols + `
	        FROM reservation_services rs
	        JOIN reservations r ON r.id = rs.reservation_id
	        JOIN rooms rm ON rm.id = r.room_id
	        JOIN users u ON u.id = r.user_id
	        JOIN services s ON s.id = rs.service_id ` + tail
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ReservationService{}
	for rows.Next() {
		var (
			l   model.ReservationService
			res model.Reservation
			u   model.User
			s   model.AdditionalService
		)
		dest := linkDest(&l)
		dest = append(dest, reservationDest(&res)...)
		dest = append(dest, userDest(&u)...)
		dest = append(dest, serviceDest(&s)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		normalizeReservation(&res)
		res.User = &u
		l.Reservation = &res
		l.Service = &s
		out = append(out, l)
	}
	return out, rows.Err()
}

// DeleteTx removes one link by its own id.
func (r *ReservationServiceRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM reservation_services WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if ok, err := rowsAffected(res); err != nil {
		return err
	} else if !ok {
		return ErrLinkNotFound
	}
	return nil
}

// DeleteByReservationTx removes every link of a reservation.
func (r *ReservationServiceRepo) DeleteByReservationTx(ctx context.Context, tx *sql.Tx, reservationID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM reservation_services WHERE reservation_id = ?`, reservationID)
	return err
}

// GetByIDTx loads a bare link inside a transaction.
func (r *ReservationServiceRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*model.ReservationService, error) {
	var l model.ReservationService
	err := tx.QueryRowContext(ctx, `SELECT `+linkCols+` FROM reservation_services rs WHERE rs.id = ?`, id).Scan(linkDest(&l)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return &l, nil
}
