package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/model"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/queue"
)

type CreateLinkInput struct {
	ReservationID *uuid.UUID `json:"id_reserva"`
	ServiceID     *uuid.UUID `json:"id_servicio"`
}

// Linkage attaches catalog services to reservations.  Each link charges
// the service price once; removing a link leaves the reservation's cost
// untouched.
type Linkage struct{ d Deps }

func NewLinkage(d Deps) *Linkage { return &Linkage{d: d} }

// Create links a service and adds its current price to the reservation's
// service charges in the same transaction.
func (s *Linkage) Create(ctx context.Context, in CreateLinkInput) (*model.ReservationService, error) {
	const op = "links.create"
	if in.ReservationID == nil {
		return nil, invalid(op, "La reserva es obligatoria")
	}
	if in.ServiceID == nil {
		return nil, invalid(op, "El servicio es obligatorio")
	}
	var (
		link = &model.ReservationService{ReservationID: *in.ReservationID, ServiceID: *in.ServiceID}
		res  *model.Reservation
	)
	err := withTx(ctx, s.d.DB, func(tx *sql.Tx) error {
		if _, err := s.d.Reservations.GetByIDTx(ctx, tx, link.ReservationID); err != nil {
			return err
		}
		svc, err := s.d.Services.GetByIDTx(ctx, tx, link.ServiceID)
		if err != nil {
			return err
		}
		if err := s.d.Reservations.AddServiceChargeTx(ctx, tx, link.ReservationID, svc.Price); err != nil {
			return err
		}
		link.Price = svc.Price
		if err := s.d.Links.CreateTx(ctx, tx, link); err != nil {
			return err
		}
		res, err = s.d.Reservations.GetByIDTx(ctx, tx, link.ReservationID)
		return err
	})
	if err != nil {
		return nil, fromRepo(op, err)
	}
	s.announce(ctx, queue.EventServiceAdded, link, res)

	full, err := s.d.Links.GetByID(ctx, link.ID)
	if err != nil {
		return nil, fromRepo(op, err)
	}
	return full, nil
}

func (s *Linkage) Get(ctx context.Context, id uuid.UUID) (*model.ReservationService, error) {
	l, err := s.d.Links.GetByID(ctx, id)
	return l, fromRepo("links.get", err)
}

// List returns links with their reservation, owner and service loaded.
func (s *Linkage) List(ctx context.Context, p model.Page) ([]model.ReservationService, error) {
	list, err := s.d.Links.List(ctx, p)
	return list, fromRepo("links.list", err)
}

// ListByReservation fails only when the reservation itself is missing.
func (s *Linkage) ListByReservation(ctx context.Context, reservationID uuid.UUID) ([]model.ReservationService, error) {
	const op = "links.list_by_reservation"
	if _, err := s.d.Reservations.GetByID(ctx, reservationID); err != nil {
		return nil, fromRepo(op, err)
	}
	list, err := s.d.Links.ListByReservation(ctx, reservationID)
	return list, fromRepo(op, err)
}

// ListByService fails only when the service itself is missing.
func (s *Linkage) ListByService(ctx context.Context, serviceID uuid.UUID) ([]model.ReservationService, error) {
	const op = "links.list_by_service"
	if _, err := s.d.Services.GetByID(ctx, serviceID); err != nil {
		return nil, fromRepo(op, err)
	}
	list, err := s.d.Links.ListByService(ctx, serviceID)
	return list, fromRepo(op, err)
}

// Delete removes one link by its own id.  The charge stays on the
// reservation.
func (s *Linkage) Delete(ctx context.Context, id uuid.UUID) (*model.ReservationService, error) {
	const op = "links.delete"
	var (
		link *model.ReservationService
		res  *model.Reservation
	)
	err := withTx(ctx, s.d.DB, func(tx *sql.Tx) error {
		var err error
		if link, err = s.d.Links.GetByIDTx(ctx, tx, id); err != nil {
			return err
		}
		if res, err = s.d.Reservations.GetByIDTx(ctx, tx, link.ReservationID); err != nil {
			return err
		}
		return s.d.Links.DeleteTx(ctx, tx, id)
	})
	if err != nil {
		return nil, fromRepo(op, err)
	}
	s.announce(ctx, queue.EventServiceRemoved, link, res)
	return link, nil
}

// DeleteFirstByReservation removes the oldest link of a reservation.  It
// backs the older route that addressed links by reservation id.
func (s *Linkage) DeleteFirstByReservation(ctx context.Context, reservationID uuid.UUID) (*model.ReservationService, error) {
	const op = "links.delete_by_reservation"
	var (
		link *model.ReservationService
		res  *model.Reservation
	)
	err := withTx(ctx, s.d.DB, func(tx *sql.Tx) error {
		var err error
		if res, err = s.d.Reservations.GetByIDTx(ctx, tx, reservationID); err != nil {
			return err
		}
		if link, err = s.d.Links.FirstByReservationTx(ctx, tx, reservationID); err != nil {
			return err
		}
		return s.d.Links.DeleteTx(ctx, tx, link.ID)
	})
	if err != nil {
		return nil, fromRepo(op, err)
	}
	s.announce(ctx, queue.EventServiceRemoved, link, res)
	return link, nil
}

// announce logs and publishes a committed link change.
func (s *Linkage) announce(ctx context.Context, typ string, link *model.ReservationService, res *model.Reservation) {
	s.d.Logger.Info(typ,
		slog.String("id_reserva", res.ID.String()),
		slog.String("id_servicio", link.ServiceID.String()),
		slog.Float64("precio", link.Price),
		slog.Float64("costo_total", res.TotalCost))
	ev := reservationEvent(typ, res)
	ev.ServiceID = &link.ServiceID
	publish(ctx, s.d, ev)
}
