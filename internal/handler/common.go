package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/middleware"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/model"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/service"
)

// requestTimeout bounds the database work of one request.
const requestTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// statusFor maps a use-case error kind to an HTTP status.
func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindInvalid:
		return http.StatusBadRequest
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// fail writes {"error": msg}.  Internal errors are logged with their cause
// and answered with a generic message.
func fail(c echo.Context, log *slog.Logger, err error) error {
	kind := service.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError || errors.Is(err, context.DeadlineExceeded) {
		log.Error("request.failed",
			slog.String("route", c.Path()),
			slog.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			slog.Any("error", err))
	}
	return c.JSON(status, echo.Map{"error": service.Message(err)})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

const msgBadBody = "Cuerpo de la solicitud inválido"

// bind decodes the request into dst and reports success.
func bind(c echo.Context, dst any) bool { return c.Bind(dst) == nil }

// paramID parses the named path parameter as a uuid.
func paramID(c echo.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	return id, err == nil
}

func invalidID(c echo.Context) error { return badRequest(c, "Identificador inválido") }

// page reads skip and limit from the query string.
func page(c echo.Context) (model.Page, error) {
	var p model.Page
	if s := c.QueryParam("skip"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return p, errors.New("skip debe ser un entero no negativo")
		}
		p.Skip = n
	}
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return p, errors.New("limit debe ser un entero positivo")
		}
		p.Limit = n
	}
	return p.Normalize(), nil
}

func unauthenticated(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "No autenticado"})
}

// selfOrAdmin reports whether the caller may act on the account id.
func selfOrAdmin(c echo.Context, id uuid.UUID) bool {
	if middleware.Role(c) == model.RoleAdmin {
		return true
	}
	sub, ok := middleware.UserID(c)
	return ok && sub == id
}

// orCaller fills an omitted author field with the token subject.
func orCaller(id *uuid.UUID, c echo.Context) *uuid.UUID {
	if id != nil {
		return id
	}
	if sub, ok := middleware.UserID(c); ok {
		return &sub
	}
	return nil
}

// deleted is the body of every successful DELETE.
func deleted(c echo.Context, msg string, data any) error {
	return c.JSON(http.StatusOK, echo.Map{"exito": true, "mensaje": msg, "datos": data})
}
