package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/model"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/repository"
)

type CreateRoomInput struct {
	Number    *int       `json:"numero"`
	TypeID    *uuid.UUID `json:"id_tipo"`
	Price     *float64   `json:"precio"`
	CreatedBy *uuid.UUID `json:"id_usuario_crea"`
}

type UpdateRoomInput struct {
	Number    *int       `json:"numero"`
	TypeID    *uuid.UUID `json:"id_tipo"`
	Price     *float64   `json:"precio"`
	Available *bool      `json:"disponible"`
	UpdatedBy *uuid.UUID `json:"id_usuario_edita"`
}

// Rooms manages individual rooms.  Availability changes go through
// Toggle (or Update with disponible set), which refuses while an Active
// reservation holds the room; every other write leaves the flag alone.
type Rooms struct{ d Deps }

func NewRooms(d Deps) *Rooms { return &Rooms{d: d} }

func (s *Rooms) Create(ctx context.Context, in CreateRoomInput) (*model.Room, error) {
	const op = "rooms.create"
	if in.Number == nil || *in.Number <= 0 {
		return nil, invalid(op, "El número de habitación debe ser un entero positivo")
	}
	if in.TypeID == nil {
		return nil, invalid(op, "El tipo de habitación es obligatorio")
	}
	if _, err := s.d.RoomTypes.GetByID(ctx, *in.TypeID); err != nil {
		return nil, fromRepo(op, err)
	}
	if in.Price == nil || *in.Price <= 0 {
		return nil, invalid(op, "El precio debe ser mayor que cero")
	}
	if err := s.ensureNumberFree(ctx, op, *in.Number, uuid.Nil); err != nil {
		return nil, err
	}
	if in.CreatedBy == nil {
		return nil, invalid(op, "El usuario creador es obligatorio")
	}
	if _, err := s.d.Users.GetByID(ctx, *in.CreatedBy); err != nil {
		return nil, fromRepo(op, err)
	}
	rm := &model.Room{Number: *in.Number, TypeID: *in.TypeID, Price: model.RoundMoney(*in.Price), CreatedBy: *in.CreatedBy}
	if err := s.d.Rooms.Create(ctx, rm); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict(op, "El número de habitación ya está registrado", err)
		}
		return nil, fromRepo(op, err)
	}
	return rm, nil
}

func (s *Rooms) Get(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	rm, err := s.d.Rooms.GetByID(ctx, id)
	return rm, fromRepo("rooms.get", err)
}

func (s *Rooms) GetByNumber(ctx context.Context, number int) (*model.Room, error) {
	rm, err := s.d.Rooms.GetByNumber(ctx, number)
	return rm, fromRepo("rooms.get_by_number", err)
}

func (s *Rooms) List(ctx context.Context, p model.Page) ([]model.Room, error) {
	list, err := s.d.Rooms.List(ctx, p)
	return list, fromRepo("rooms.list", err)
}

func (s *Rooms) ListAvailable(ctx context.Context, p model.Page) ([]model.Room, error) {
	list, err := s.d.Rooms.ListAvailable(ctx, p)
	return list, fromRepo("rooms.list_available", err)
}

// ListByTypeName matches the type name as a case-insensitive substring.
func (s *Rooms) ListByTypeName(ctx context.Context, name string, p model.Page) ([]model.Room, error) {
	list, err := s.d.Rooms.ListByTypeName(ctx, name, p)
	return list, fromRepo("rooms.list_by_type", err)
}

func (s *Rooms) Update(ctx context.Context, id uuid.UUID, in UpdateRoomInput) (*model.Room, error) {
	const op = "rooms.update"
	rm, err := s.d.Rooms.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(op, err)
	}
	if in.UpdatedBy != nil {
		if _, err := s.d.Users.GetByID(ctx, *in.UpdatedBy); err != nil {
			return nil, fromRepo(op, err)
		}
		rm.UpdatedBy = in.UpdatedBy
	}
	if in.Number != nil {
		if *in.Number <= 0 {
			return nil, invalid(op, "El número de habitación debe ser un entero positivo")
		}
		if *in.Number != rm.Number {
			if err := s.ensureNumberFree(ctx, op, *in.Number, rm.ID); err != nil {
				return nil, err
			}
		}
		rm.Number = *in.Number
	}
	if in.TypeID != nil {
		if _, err := s.d.RoomTypes.GetByID(ctx, *in.TypeID); err != nil {
			return nil, fromRepo(op, err)
		}
		rm.TypeID = *in.TypeID
	}
	if in.Price != nil {
		if *in.Price <= 0 {
			return nil, invalid(op, "El precio debe ser mayor que cero")
		}
		rm.Price = model.RoundMoney(*in.Price)
	}
	flip := in.Available != nil && *in.Available != rm.Available
	by := model.SystemUserID
	if in.UpdatedBy != nil {
		by = *in.UpdatedBy
	}
	// The guard runs before any write so a refused flip leaves the row untouched.
	err = withTx(ctx, s.d.DB, func(tx *sql.Tx) error {
		if flip {
			if err := s.ensureIdle(ctx, tx, op, rm.ID); err != nil {
				return err
			}
		}
		if err := s.d.Rooms.UpdateTx(ctx, tx, rm); err != nil {
			return err
		}
		if flip {
			return s.d.Rooms.SetAvailabilityTx(ctx, tx, rm.ID, *in.Available, by)
		}
		return nil
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, conflict(op, "El número de habitación ya está registrado", err)
	}
	if err != nil {
		return nil, fromRepo(op, err)
	}
	if !flip {
		return rm, nil
	}
	rm, err = s.d.Rooms.GetByID(ctx, id)
	return rm, fromRepo(op, err)
}

// Toggle flips the availability flag of a room that no Active
// reservation holds.
func (s *Rooms) Toggle(ctx context.Context, id, by uuid.UUID) (*model.Room, error) {
	const op = "rooms.toggle"
	rm, err := s.d.Rooms.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(op, err)
	}
	return s.setAvailability(ctx, op, id, !rm.Available, by)
}

func (s *Rooms) setAvailability(ctx context.Context, op string, id uuid.UUID, available bool, by uuid.UUID) (*model.Room, error) {
	err := withTx(ctx, s.d.DB, func(tx *sql.Tx) error {
		if err := s.ensureIdle(ctx, tx, op, id); err != nil {
			return err
		}
		return s.d.Rooms.SetAvailabilityTx(ctx, tx, id, available, by)
	})
	if err != nil {
		return nil, fromRepo(op, err)
	}
	rm, err := s.d.Rooms.GetByID(ctx, id)
	return rm, fromRepo(op, err)
}

// ensureIdle refuses availability changes while an Active reservation holds the room.
func (s *Rooms) ensureIdle(ctx context.Context, tx *sql.Tx, op string, id uuid.UUID) error {
	busy, err := s.d.Rooms.HasActiveReservationTx(ctx, tx, id)
	if err != nil {
		return err
	}
	if busy {
		return conflict(op, "La habitación tiene una reserva activa; cancele o elimine la reserva primero", nil)
	}
	return nil
}

// Delete removes a room that no reservation references.
func (s *Rooms) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "rooms.delete"
	err := s.d.Rooms.Delete(ctx, id)
	if errors.Is(err, repository.ErrConflict) {
		return conflict(op, "No se puede eliminar la habitación: tiene reservas asociadas", err)
	}
	return fromRepo(op, err)
}

func (s *Rooms) ensureNumberFree(ctx context.Context, op string, number int, self uuid.UUID) error {
	other, err := s.d.Rooms.GetByNumber(ctx, number)
	switch {
	case err == nil && other.ID != self:
		return conflict(op, "El número de habitación ya está registrado", nil)
	case err != nil && !errors.Is(err, repository.ErrRoomNotFound):
		return internal(op, err)
	}
	return nil
}
