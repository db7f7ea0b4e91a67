package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/model"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/repository"
)

type CreateRoomTypeInput struct {
	Name        *string    `json:"nombre_tipo"`
	Description *string    `json:"descripcion"`
	CreatedBy   *uuid.UUID `json:"id_usuario_crea"`
}

type UpdateRoomTypeInput struct {
	Name        *string    `json:"nombre_tipo"`
	Description *string    `json:"descripcion"`
	UpdatedBy   *uuid.UUID `json:"id_usuario_edita"`
}

// RoomTypes manages room categories.
type RoomTypes struct{ d Deps }

func NewRoomTypes(d Deps) *RoomTypes { return &RoomTypes{d: d} }

func (s *RoomTypes) Create(ctx context.Context, in CreateRoomTypeInput) (*model.RoomType, error) {
	const op = "room_types.create"
	name, err := requiredText(op, in.Name, "El nombre del tipo", 0)
	if err != nil {
		return nil, err
	}
	desc, err := requiredText(op, in.Description, "La descripción", 0)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, op, name, uuid.Nil); err != nil {
		return nil, err
	}
	if in.CreatedBy == nil {
		return nil, invalid(op, "El usuario creador es obligatorio")
	}
	if _, err := s.d.Users.GetByID(ctx, *in.CreatedBy); err != nil {
		return nil, fromRepo(op, err)
	}
	t := &model.RoomType{Name: name, Description: desc, CreatedBy: *in.CreatedBy}
	if err := s.d.RoomTypes.Create(ctx, t); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict(op, "Ya existe un tipo de habitación con ese nombre", err)
		}
		return nil, internal(op, err)
	}
	return t, nil
}

func (s *RoomTypes) Get(ctx context.Context, id uuid.UUID) (*model.RoomType, error) {
	t, err := s.d.RoomTypes.GetByID(ctx, id)
	return t, fromRepo("room_types.get", err)
}

func (s *RoomTypes) List(ctx context.Context, p model.Page) ([]model.RoomType, error) {
	list, err := s.d.RoomTypes.List(ctx, p)
	return list, fromRepo("room_types.list", err)
}

// Update applies a partial edit.  The editing user is mandatory on every
// call, not only on renames.
func (s *RoomTypes) Update(ctx context.Context, id uuid.UUID, in UpdateRoomTypeInput) (*model.RoomType, error) {
	const op = "room_types.update"
	if in.UpdatedBy == nil {
		return nil, invalid(op, "El usuario que edita es obligatorio")
	}
	t, err := s.d.RoomTypes.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(op, err)
	}
	if _, err := s.d.Users.GetByID(ctx, *in.UpdatedBy); err != nil {
		return nil, fromRepo(op, err)
	}
	if in.Name != nil {
		name, err := requiredText(op, in.Name, "El nombre del tipo", 0)
		if err != nil {
			return nil, err
		}
		if name != t.Name {
			if err := s.ensureNameFree(ctx, op, name, t.ID); err != nil {
				return nil, err
			}
		}
		t.Name = name
	}
	if in.Description != nil {
		if t.Description, err = requiredText(op, in.Description, "La descripción", 0); err != nil {
			return nil, err
		}
	}
	t.UpdatedBy = in.UpdatedBy
	if err := s.d.RoomTypes.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict(op, "Ya existe un tipo de habitación con ese nombre", err)
		}
		return nil, fromRepo(op, err)
	}
	return t, nil
}

// Delete refuses while any room still belongs to the type.
func (s *RoomTypes) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "room_types.delete"
	err := s.d.RoomTypes.Delete(ctx, id)
	if errors.Is(err, repository.ErrConflict) {
		return conflict(op, "No se puede eliminar el tipo: tiene habitaciones asociadas", err)
	}
	return fromRepo(op, err)
}

func (s *RoomTypes) ensureNameFree(ctx context.Context, op, name string, self uuid.UUID) error {
	other, err := s.d.RoomTypes.GetByName(ctx, strings.TrimSpace(name))
	switch {
	case err == nil && other.ID != self:
		return conflict(op, "Ya existe un tipo de habitación con ese nombre", nil)
	case err != nil && !errors.Is(err, repository.ErrRoomTypeNotFound):
		return internal(op, err)
	}
	return nil
}
