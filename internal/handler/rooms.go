package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/model"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/service"
)

// RoomTypeHandler serves /tipos_habitacion.
type RoomTypeHandler struct {
	Types *service.RoomTypes
	Log   *slog.Logger
}

func NewRoomTypeHandler(types *service.RoomTypes, log *slog.Logger) *RoomTypeHandler {
	return &RoomTypeHandler{Types: types, Log: log}
}

func (h *RoomTypeHandler) Create(c echo.Context) error {
	var in service.CreateRoomTypeInput
	if !bind(c, &in) {
		return badRequest(c, msgBadBody)
	}
	in.CreatedBy = orCaller(in.CreatedBy, c)
	ctx, cancel := reqCtx(c)
	defer cancel()
	t, err := h.Types.Create(ctx, in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *RoomTypeHandler) List(c echo.Context) error {
	p, err := page(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Types.List(ctx, p)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *RoomTypeHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	t, err := h.Types.Get(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *RoomTypeHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var in service.UpdateRoomTypeInput
	if !bind(c, &in) {
		return badRequest(c, msgBadBody)
	}
	in.UpdatedBy = orCaller(in.UpdatedBy, c)
	ctx, cancel := reqCtx(c)
	defer cancel()
	t, err := h.Types.Update(ctx, id, in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *RoomTypeHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	t, err := h.Types.Get(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	if err := h.Types.Delete(ctx, id); err != nil {
		return fail(c, h.Log, err)
	}
	return deleted(c, "Tipo de habitación eliminado correctamente", t)
}

// RoomHandler serves /habitaciones.
type RoomHandler struct {
	Rooms *service.Rooms
	Log   *slog.Logger
}

func NewRoomHandler(rooms *service.Rooms, log *slog.Logger) *RoomHandler {
	return &RoomHandler{Rooms: rooms, Log: log}
}

func (h *RoomHandler) Create(c echo.Context) error {
	var in service.CreateRoomInput
	if !bind(c, &in) {
		return badRequest(c, msgBadBody)
	}
	in.CreatedBy = orCaller(in.CreatedBy, c)
	ctx, cancel := reqCtx(c)
	defer cancel()
	rm, err := h.Rooms.Create(ctx, in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, rm)
}

// list runs one of the paged room queries.
func (h *RoomHandler) list(c echo.Context, fn func(p model.Page) ([]model.Room, error)) error {
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

func (h *RoomHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	return h.list(c, func(p model.Page) ([]model.Room, error) { return h.Rooms.List(ctx, p) })
}

// ListAvailable serves GET /habitaciones/estado.
func (h *RoomHandler) ListAvailable(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	return h.list(c, func(p model.Page) ([]model.Room, error) { return h.Rooms.ListAvailable(ctx, p) })
}

func (h *RoomHandler) ListByType(c echo.Context) error {
	name := c.Param("tipo")
	ctx, cancel := reqCtx(c)
	defer cancel()
	return h.list(c, func(p model.Page) ([]model.Room, error) { return h.Rooms.ListByTypeName(ctx, name, p) })
}

func (h *RoomHandler) GetByNumber(c echo.Context) error {
	n, err := strconv.Atoi(c.Param("numero"))
	if err != nil || n <= 0 {
		return badRequest(c, "Número de habitación inválido")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	rm, err := h.Rooms.GetByNumber(ctx, n)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, rm)
}

func (h *RoomHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	rm, err := h.Rooms.Get(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, rm)
}

func (h *RoomHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var in service.UpdateRoomInput
	if !bind(c, &in) {
		return badRequest(c, msgBadBody)
	}
	in.UpdatedBy = orCaller(in.UpdatedBy, c)
	ctx, cancel := reqCtx(c)
	defer cancel()
	rm, err := h.Rooms.Update(ctx, id, in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, rm)
}

// ToggleAvailability serves PATCH /habitaciones/:id/cambiar-disponible.
func (h *RoomHandler) ToggleAvailability(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	by := orCaller(nil, c)
	if by == nil {
		return unauthenticated(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	rm, err := h.Rooms.Toggle(ctx, id, *by)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, rm)
}

func (h *RoomHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	rm, err := h.Rooms.Get(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	if err := h.Rooms.Delete(ctx, id); err != nil {
		return fail(c, h.Log, err)
	}
	return deleted(c, "Habitación eliminada correctamente", rm)
}

// ServiceHandler serves /servicios_adicionales.
type ServiceHandler struct {
	Catalog *service.Catalog
	Log     *slog.Logger
}

func NewServiceHandler(catalog *service.Catalog, log *slog.Logger) *ServiceHandler {
	return &ServiceHandler{Catalog: catalog, Log: log}
}

func (h *ServiceHandler) Create(c echo.Context) error {
	var in service.CreateServiceInput
	if !bind(c, &in) {
		return badRequest(c, msgBadBody)
	}
	in.CreatedBy = orCaller(in.CreatedBy, c)
	ctx, cancel := reqCtx(c)
	defer cancel()
	svc, err := h.Catalog.Create(ctx, in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, svc)
}

func (h *ServiceHandler) List(c echo.Context) error {
	p, err := page(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Catalog.List(ctx, p)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ServiceHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	svc, err := h.Catalog.Get(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, svc)
}

func (h *ServiceHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var in service.UpdateServiceInput
	if !bind(c, &in) {
		return badRequest(c, msgBadBody)
	}
	in.UpdatedBy = orCaller(in.UpdatedBy, c)
	ctx, cancel := reqCtx(c)
	defer cancel()
	svc, err := h.Catalog.Update(ctx, id, in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, svc)
}

func (h *ServiceHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	svc, err := h.Catalog.Get(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	if err := h.Catalog.Delete(ctx, id); err != nil {
		return fail(c, h.Log, err)
	}
	return deleted(c, "Servicio eliminado correctamente", svc)
}
