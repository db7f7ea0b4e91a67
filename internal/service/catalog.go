package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/model"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/repository"
)

type CreateServiceInput struct {
	Name        *string    `json:"nombre_servicio"`
	Price       *float64   `json:"precio"`
	Description *string    `json:"descripcion"`
	CreatedBy   *uuid.UUID `json:"id_usuario_crea"`
}

type UpdateServiceInput struct {
	Name        *string    `json:"nombre_servicio"`
	Price       *float64   `json:"precio"`
	Description *string    `json:"descripcion"`
	UpdatedBy   *uuid.UUID `json:"id_usuario_edita"`
}

// Catalog manages the additional services offered to guests.
type Catalog struct{ d Deps }

func NewCatalog(d Deps) *Catalog { return &Catalog{d: d} }

func (s *Catalog) Create(ctx context.Context, in CreateServiceInput) (*model.AdditionalService, error) {
	const op = "services.create"
	name, err := requiredText(op, in.Name, "El nombre del servicio", 0)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, op, name, uuid.Nil); err != nil {
		return nil, err
	}
	if in.Price == nil || *in.Price <= 0 {
		return nil, invalid(op, "El precio debe ser mayor que cero")
	}
	desc, err := requiredText(op, in.Description, "La descripción", 0)
	if err != nil {
		return nil, err
	}
	if in.CreatedBy == nil {
		return nil, invalid(op, "El usuario creador es obligatorio")
	}
	if _, err := s.d.Users.GetByID(ctx, *in.CreatedBy); err != nil {
		return nil, fromRepo(op, err)
	}
	svc := &model.AdditionalService{Name: name, Price: model.RoundMoney(*in.Price), Description: desc, CreatedBy: *in.CreatedBy}
	if err := s.d.Services.Create(ctx, svc); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict(op, "Ya existe un servicio con ese nombre", err)
		}
		return nil, internal(op, err)
	}
	return svc, nil
}

func (s *Catalog) Get(ctx context.Context, id uuid.UUID) (*model.AdditionalService, error) {
	svc, err := s.d.Services.GetByID(ctx, id)
	return svc, fromRepo("services.get", err)
}

func (s *Catalog) List(ctx context.Context, p model.Page) ([]model.AdditionalService, error) {
	list, err := s.d.Services.List(ctx, p)
	return list, fromRepo("services.list", err)
}

// Update applies a partial edit; the editing user is mandatory.
func (s *Catalog) Update(ctx context.Context, id uuid.UUID, in UpdateServiceInput) (*model.AdditionalService, error) {
	const op = "services.update"
	if in.UpdatedBy == nil {
		return nil, invalid(op, "El usuario que edita es obligatorio")
	}
	svc, err := s.d.Services.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(op, err)
	}
	if _, err := s.d.Users.GetByID(ctx, *in.UpdatedBy); err != nil {
		return nil, fromRepo(op, err)
	}
	if in.Name != nil {
		name, err := requiredText(op, in.Name, "El nombre del servicio", 0)
		if err != nil {
			return nil, err
		}
		if name != svc.Name {
			if err := s.ensureNameFree(ctx, op, name, svc.ID); err != nil {
				return nil, err
			}
		}
		svc.Name = name
	}
	if in.Price != nil {
		if *in.Price <= 0 {
			return nil, invalid(op, "El precio debe ser mayor que cero")
		}
		svc.Price = model.RoundMoney(*in.Price)
	}
	if in.Description != nil {
		if svc.Description, err = requiredText(op, in.Description, "La descripción", 0); err != nil {
			return nil, err
		}
	}
	svc.UpdatedBy = in.UpdatedBy
	if err := s.d.Services.Update(ctx, svc); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict(op, "Ya existe un servicio con ese nombre", err)
		}
		return nil, fromRepo(op, err)
	}
	return svc, nil
}

// Delete refuses while the service is linked to an Active reservation.
func (s *Catalog) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "services.delete"
	err := s.d.Services.Delete(ctx, id)
	if errors.Is(err, repository.ErrConflict) {
		return conflict(op, "No se puede eliminar el servicio: está asociado a reservas activas", err)
	}
	return fromRepo(op, err)
}

func (s *Catalog) ensureNameFree(ctx context.Context, op, name string, self uuid.UUID) error {
	other, err := s.d.Services.GetByName(ctx, name)
	switch {
	case err == nil && other.ID != self:
		return conflict(op, "Ya existe un servicio con ese nombre", nil)
	case err != nil && !errors.Is(err, repository.ErrServiceNotFound):
		return internal(op, err)
	}
	return nil
}
