package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/repository"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/service"
)

// UserHandler serves /usuarios.
type UserHandler struct {
	Users  *service.Users
	Tokens *repository.TokenRepo
	Log    *slog.Logger
}

func NewUserHandler(users *service.Users, tokens *repository.TokenRepo, log *slog.Logger) *UserHandler {
	return &UserHandler{Users: users, Tokens: tokens, Log: log}
}

// Create is the public sign-up endpoint.
func (h *UserHandler) Create(c echo.Context) error {
	var in service.CreateUserInput
	if !bind(c, &in) {
		return badRequest(c, msgBadBody)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.Create(ctx, in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *UserHandler) List(c echo.Context) error {
	p, err := page(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Users.List(ctx, p)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *UserHandler) ListAdmins(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Users.ListAdmins(ctx)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *UserHandler) ListClients(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Users.ListClients(ctx)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *UserHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.Get(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHandler) GetByUsername(c echo.Context) error {
	name := strings.TrimSpace(c.Param("nombre"))
	if name == "" {
		return badRequest(c, "nombre_usuario es obligatorio")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.GetByUsername(ctx, name)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Update edits a profile.  Users may edit themselves; administrators may
// edit anyone.
func (h *UserHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	if !selfOrAdmin(c, id) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Solo puede modificar su propio usuario"})
	}
	var in service.UpdateUserInput
	if !bind(c, &in) {
		return badRequest(c, msgBadBody)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.Update(ctx, id, in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, u)
}

type passwordReq struct {
	Current string `json:"clave_actual"`
	New     string `json:"nueva_clave"`
}

// ChangePassword replaces the password and revokes every refresh token of
// the account, ending its other sessions.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	if !selfOrAdmin(c, id) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Solo puede cambiar su propia clave"})
	}
	var req passwordReq
	if !bind(c, &req) {
		return badRequest(c, msgBadBody)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Users.ChangePassword(ctx, id, req.Current, req.New); err != nil {
		return fail(c, h.Log, err)
	}
	if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
		h.Log.Warn("auth.revoke_failed", slog.String("id_usuario", id.String()), slog.Any("error", err))
	}
	return c.JSON(http.StatusOK, echo.Map{"mensaje": "Clave actualizada correctamente"})
}

func (h *UserHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.Get(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	if err := h.Users.Delete(ctx, id); err != nil {
		return fail(c, h.Log, err)
	}
	return deleted(c, "Usuario eliminado correctamente", u)
}
