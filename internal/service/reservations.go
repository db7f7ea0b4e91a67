package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/model"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/queue"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/repository"
)

type CreateReservationInput struct {
	CheckIn *model.Date `json:"fecha_entrada"`
	Guests  *int        `json:"numero_de_personas"`
	Nights  *int        `json:"noches"`
	Status  *string     `json:"estado_reserva"`
	UserID  *uuid.UUID  `json:"id_usuario"`
	RoomID  *uuid.UUID  `json:"id_habitacion"`
}

type UpdateReservationInput struct {
	CheckIn   *model.Date `json:"fecha_entrada"`
	Guests    *int        `json:"numero_de_personas"`
	Nights    *int        `json:"noches"`
	Status    *string     `json:"estado_reserva"`
	RoomID    *uuid.UUID  `json:"id_habitacion"`
	UpdatedBy *uuid.UUID  `json:"id_usuario_edita"`
}

// Reservations is the reservation engine.  It is the only caller of
// RoomRepo.OccupyTx and RoomRepo.ReleaseTx, and every state change runs
// in one transaction together with the matching availability write.
//
// An Active reservation always holds its room: the room is occupied when
// a reservation is created or reactivated and released when it is
// cancelled, moved to another room or deleted.
type Reservations struct {
	d   Deps
	now func() model.Date
}

func NewReservations(d Deps) *Reservations {
	return &Reservations{d: d, now: model.Today}
}

const msgRoomTaken = "La habitación no está disponible"

// Create books a room.  The reservation always starts Active; a supplied
// estado_reserva is validated and then ignored.
func (s *Reservations) Create(ctx context.Context, in CreateReservationInput) (*model.Reservation, error) {
	const op = "reservations.create"
	switch {
	case in.CheckIn == nil || in.CheckIn.IsZero():
		return nil, invalid(op, "La fecha de entrada es obligatoria")
	case in.Guests == nil || *in.Guests <= 0:
		return nil, invalid(op, "El número de personas debe ser mayor que cero")
	case in.Nights == nil || *in.Nights <= 0:
		return nil, invalid(op, "El número de noches debe ser mayor que cero")
	case in.UserID == nil:
		return nil, invalid(op, "El usuario es obligatorio")
	case in.RoomID == nil:
		return nil, invalid(op, "La habitación es obligatoria")
	}
	if in.CheckIn.Before(s.now()) {
		return nil, invalid(op, "La fecha de entrada no puede ser anterior a hoy")
	}
	if in.Status != nil {
		if _, ok := model.ParseReservationStatus(*in.Status); !ok {
			return nil, invalid(op, "El estado debe ser Active o Cancelled")
		}
	}

	res := &model.Reservation{
		UserID:    *in.UserID,
		RoomID:    *in.RoomID,
		CheckIn:   *in.CheckIn,
		CheckOut:  in.CheckIn.AddDays(*in.Nights),
		Guests:    *in.Guests,
		Nights:    *in.Nights,
		Status:    model.StatusActive,
		CreatedBy: *in.UserID,
	}
	err := withTx(ctx, s.d.DB, func(tx *sql.Tx) error {
		if _, err := s.d.Users.GetByIDTx(ctx, tx, res.UserID); err != nil {
			return err
		}
		room, err := s.d.Rooms.GetByIDTx(ctx, tx, res.RoomID)
		if err != nil {
			return err
		}
		if !room.Available {
			return conflict(op, msgRoomTaken, repository.ErrRoomUnavailable)
		}
		if err := s.d.Rooms.OccupyTx(ctx, tx, room.ID); err != nil {
			return err
		}
		res.BaseCost = model.BaseCost(room.Price, res.Nights)
		res.SyncTotal()
		return s.d.Reservations.CreateTx(ctx, tx, res)
	})
	if err != nil {
		return nil, fromRepo(op, err)
	}
	s.d.Logger.Info("reservation.created",
		slog.String("id_reserva", res.ID.String()),
		slog.Int("habitacion", res.RoomNumber),
		slog.Float64("costo_total", res.TotalCost))
	publish(ctx, s.d, reservationEvent(queue.EventReservationCreated, res))
	return res, nil
}

// Get loads a reservation with its owner.
func (s *Reservations) Get(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	res, err := s.d.Reservations.GetWithUser(ctx, id)
	return res, fromRepo("reservations.get", err)
}

func (s *Reservations) List(ctx context.Context, p model.Page) ([]model.Reservation, error) {
	list, err := s.d.Reservations.List(ctx, p)
	return list, fromRepo("reservations.list", err)
}

// ListByUser returns the user's reservations; an unknown user is not found.
func (s *Reservations) ListByUser(ctx context.Context, userID uuid.UUID, p model.Page) ([]model.Reservation, error) {
	const op = "reservations.list_by_user"
	if _, err := s.d.Users.GetByID(ctx, userID); err != nil {
		return nil, fromRepo(op, err)
	}
	list, err := s.d.Reservations.ListByUser(ctx, userID, p)
	return list, fromRepo(op, err)
}

func (s *Reservations) ListActive(ctx context.Context, p model.Page) ([]model.Reservation, error) {
	list, err := s.d.Reservations.ListByStatus(ctx, model.StatusActive, p)
	return list, fromRepo("reservations.list_active", err)
}

func (s *Reservations) ListCancelled(ctx context.Context, p model.Page) ([]model.Reservation, error) {
	list, err := s.d.Reservations.ListByStatus(ctx, model.StatusCancelled, p)
	return list, fromRepo("reservations.list_cancelled", err)
}

// Update applies a partial change.  Status transitions and room moves
// adjust availability; the base cost is recomputed when the room or the
// number of nights changes while accumulated service charges are kept.
func (s *Reservations) Update(ctx context.Context, id uuid.UUID, in UpdateReservationInput) (*model.Reservation, error) {
	const op = "reservations.update"
	if in.Guests != nil && *in.Guests <= 0 {
		return nil, invalid(op, "El número de personas debe ser mayor que cero")
	}
	if in.Nights != nil && *in.Nights <= 0 {
		return nil, invalid(op, "El número de noches debe ser mayor que cero")
	}
	if in.CheckIn != nil && in.CheckIn.IsZero() {
		return nil, invalid(op, "La fecha de entrada no es válida")
	}
	var target *model.ReservationStatus
	if in.Status != nil {
		st, ok := model.ParseReservationStatus(*in.Status)
		if !ok {
			return nil, invalid(op, "El estado debe ser Active o Cancelled")
		}
		target = &st
	}

	var (
		res     *model.Reservation
		evType  = queue.EventReservationUpdated
		oldRoom uuid.UUID
	)
	err := withTx(ctx, s.d.DB, func(tx *sql.Tx) error {
		var err error
		if res, err = s.d.Reservations.GetByIDTx(ctx, tx, id); err != nil {
			return err
		}
		if in.UpdatedBy != nil {
			if _, err := s.d.Users.GetByIDTx(ctx, tx, *in.UpdatedBy); err != nil {
				return err
			}
			res.UpdatedBy = in.UpdatedBy
		}
		oldRoom = res.RoomID

		wasActive := res.IsActive()
		willActive := wasActive
		if target != nil {
			willActive = *target == model.StatusActive
		}
		roomChanged := in.RoomID != nil && *in.RoomID != res.RoomID
		nightsChanged := in.Nights != nil && *in.Nights != res.Nights

		room, err := s.d.Rooms.GetByIDTx(ctx, tx, res.RoomID)
		if roomChanged {
			room, err = s.d.Rooms.GetByIDTx(ctx, tx, *in.RoomID)
		}
		if err != nil {
			return err
		}
		if roomChanged && !willActive && !room.Available {
			return conflict(op, msgRoomTaken, repository.ErrRoomUnavailable)
		}

		if wasActive && (roomChanged || !willActive) {
			if err := s.d.Rooms.ReleaseTx(ctx, tx, oldRoom); err != nil {
				return err
			}
		}
		if willActive && (roomChanged || !wasActive) {
			if err := s.d.Rooms.OccupyTx(ctx, tx, room.ID); err != nil {
				if errors.Is(err, repository.ErrRoomUnavailable) {
					return conflict(op, msgRoomTaken, err)
				}
				return err
			}
		}

		if in.CheckIn != nil {
			res.CheckIn = *in.CheckIn
		}
		if in.Guests != nil {
			res.Guests = *in.Guests
		}
		if in.Nights != nil {
			res.Nights = *in.Nights
		}
		res.CheckOut = res.CheckIn.AddDays(res.Nights)
		if !res.CheckIn.Before(res.CheckOut) {
			return invalid(op, "La fecha de entrada debe ser anterior a la de salida")
		}
		if roomChanged || nightsChanged {
			res.BaseCost = model.BaseCost(room.Price, res.Nights)
		}
		res.RoomID = room.ID
		res.SyncTotal()

		switch {
		case wasActive && !willActive:
			res.Status = model.StatusCancelled
			evType = queue.EventReservationCancelled
		case !wasActive && willActive:
			res.Status = model.StatusActive
			evType = queue.EventReservationReactivated
		case roomChanged:
			evType = queue.EventReservationRoomChanged
		}
		return s.d.Reservations.UpdateTx(ctx, tx, res)
	})
	if err != nil {
		return nil, fromRepo(op, err)
	}
	s.d.Logger.Info("reservation.updated",
		slog.String("id_reserva", res.ID.String()),
		slog.String("evento", evType),
		slog.String("estado", string(res.Status)))
	publish(ctx, s.d, reservationEvent(evType, res))
	return res, nil
}

// SetStatus performs a direct Active/Cancelled transition.
func (s *Reservations) SetStatus(ctx context.Context, id uuid.UUID, status string, by *uuid.UUID) (*model.Reservation, error) {
	if _, ok := model.ParseReservationStatus(status); !ok {
		return nil, invalid("reservations.set_status", "El estado debe ser Active o Cancelled")
	}
	return s.Update(ctx, id, UpdateReservationInput{Status: &status, UpdatedBy: by})
}

// Delete removes a reservation and its service links.  An Active
// reservation releases its room first.
func (s *Reservations) Delete(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	const op = "reservations.delete"
	var res *model.Reservation
	err := withTx(ctx, s.d.DB, func(tx *sql.Tx) error {
		var err error
		if res, err = s.d.Reservations.GetByIDTx(ctx, tx, id); err != nil {
			return err
		}
		return deleteReservationTx(ctx, tx, s.d, res)
	})
	if err != nil {
		return nil, fromRepo(op, err)
	}
	s.d.Logger.Info("reservation.deleted", slog.String("id_reserva", res.ID.String()))
	publish(ctx, s.d, reservationEvent(queue.EventReservationDeleted, res))
	return res, nil
}

func deleteReservationTx(ctx context.Context, tx *sql.Tx, d Deps, res *model.Reservation) error {
	if err := d.Links.DeleteByReservationTx(ctx, tx, res.ID); err != nil {
		return err
	}
	if res.IsActive() {
		if err := d.Rooms.ReleaseTx(ctx, tx, res.RoomID); err != nil {
			return err
		}
	}
	return d.Reservations.DeleteTx(ctx, tx, res.ID)
}
