package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/model"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/service"
)

// ReservationHandler serves /reservas.
type ReservationHandler struct {
	Reservations *service.Reservations
	Log          *slog.Logger
}

func NewReservationHandler(res *service.Reservations, log *slog.Logger) *ReservationHandler {
	return &ReservationHandler{Reservations: res, Log: log}
}

// errNotOwner answers a client acting on another user's reservation.
var errNotOwner = &service.Error{Op: "reservations.owner", Kind: service.KindForbidden, Msg: "Solo puede gestionar sus propias reservas"}

// ownReservation loads reservation id for a caller that owns it or is an
// administrator.
func ownReservation(ctx context.Context, c echo.Context, res *service.Reservations, id uuid.UUID) (*model.Reservation, error) {
	r, err := res.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !selfOrAdmin(c, r.UserID) {
		return nil, errNotOwner
	}
	return r, nil
}

// Create books a room; id_usuario defaults to the caller and only an
// administrator may book for someone else.
func (h *ReservationHandler) Create(c echo.Context) error {
	var in service.CreateReservationInput
	if !bind(c, &in) {
		return badRequest(c, msgBadBody)
	}
	in.UserID = orCaller(in.UserID, c)
	if in.UserID != nil && !selfOrAdmin(c, *in.UserID) {
		return fail(c, h.Log, errNotOwner)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	res, err := h.Reservations.Create(ctx, in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *ReservationHandler) list(c echo.Context, fn func(p model.Page) ([]model.Reservation, error)) error {
	p, err := page(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	list, err := fn(p)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ReservationHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	return h.list(c, func(p model.Page) ([]model.Reservation, error) { return h.Reservations.List(ctx, p) })
}

func (h *ReservationHandler) ListActive(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	return h.list(c, func(p model.Page) ([]model.Reservation, error) { return h.Reservations.ListActive(ctx, p) })
}

func (h *ReservationHandler) ListCancelled(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	return h.list(c, func(p model.Page) ([]model.Reservation, error) { return h.Reservations.ListCancelled(ctx, p) })
}

func (h *ReservationHandler) ListByUser(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	if !selfOrAdmin(c, id) {
		return fail(c, h.Log, errNotOwner)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	return h.list(c, func(p model.Page) ([]model.Reservation, error) { return h.Reservations.ListByUser(ctx, id, p) })
}

func (h *ReservationHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	res, err := ownReservation(ctx, c, h.Reservations, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ReservationHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var in service.UpdateReservationInput
	if !bind(c, &in) {
		return badRequest(c, msgBadBody)
	}
	in.UpdatedBy = orCaller(in.UpdatedBy, c)
	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := ownReservation(ctx, c, h.Reservations, id); err != nil {
		return fail(c, h.Log, err)
	}
	res, err := h.Reservations.Update(ctx, id, in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, res)
}

type statusReq struct {
	Status    string     `json:"estado_reserva"`
	UpdatedBy *uuid.UUID `json:"id_usuario_edita"`
}

// SetStatus serves PATCH /reservas/:id/estado.  The new state may also be
// given as ?estado= for clients that send no body.
func (h *ReservationHandler) SetStatus(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req statusReq
	if !bind(c, &req) {
		return badRequest(c, msgBadBody)
	}
	if strings.TrimSpace(req.Status) == "" {
		req.Status = c.QueryParam("estado")
	}
	if strings.TrimSpace(req.Status) == "" {
		return badRequest(c, "estado_reserva es obligatorio")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := ownReservation(ctx, c, h.Reservations, id); err != nil {
		return fail(c, h.Log, err)
	}
	res, err := h.Reservations.SetStatus(ctx, id, req.Status, orCaller(req.UpdatedBy, c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ReservationHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := ownReservation(ctx, c, h.Reservations, id); err != nil {
		return fail(c, h.Log, err)
	}
	res, err := h.Reservations.Delete(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return deleted(c, "Reserva eliminada correctamente", res)
}

// LinkHandler serves /reserva_servicios.  Writes are limited to the owner
// of the reservation and administrators.
type LinkHandler struct {
	Links        *service.Linkage
	Reservations *service.Reservations
	Log          *slog.Logger
}

func NewLinkHandler(links *service.Linkage, res *service.Reservations, log *slog.Logger) *LinkHandler {
	return &LinkHandler{Links: links, Reservations: res, Log: log}
}

func (h *LinkHandler) Create(c echo.Context) error {
	var in service.CreateLinkInput
	if !bind(c, &in) {
		return badRequest(c, msgBadBody)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if in.ReservationID != nil {
		if _, err := ownReservation(ctx, c, h.Reservations, *in.ReservationID); err != nil {
			return fail(c, h.Log, err)
		}
	}
	l, err := h.Links.Create(ctx, in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *LinkHandler) List(c echo.Context) error {
	p, err := page(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Links.List(ctx, p)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *LinkHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	l, err := h.Links.Get(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, l)
}

func (h *LinkHandler) ListByReservation(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Links.ListByReservation(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *LinkHandler) ListByService(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Links.ListByService(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Delete removes one link by its id.
func (h *LinkHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	l, err := h.Links.Get(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	if _, err := ownReservation(ctx, c, h.Reservations, l.ReservationID); err != nil {
		return fail(c, h.Log, err)
	}
	l, err = h.Links.Delete(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return deleted(c, "Servicio retirado de la reserva", l)
}

// DeleteByReservation removes the oldest link of a reservation.
func (h *LinkHandler) DeleteByReservation(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := ownReservation(ctx, c, h.Reservations, id); err != nil {
		return fail(c, h.Log, err)
	}
	l, err := h.Links.DeleteFirstByReservation(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return deleted(c, "Servicio retirado de la reserva", l)
}
