package middleware

// identity.go holds the context keys written by JWTAuth and the accessors
// handlers and the Redis middlewares use to read them back.

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserID   = "user_id"  // uuid string of the token subject
	CtxUsername = "username" // nombre_usuario claim
	CtxRole     = "role"     // tipo_usuario claim
)

// UserID returns the authenticated user's id.  ok is false on public routes
// or when the stored value is malformed.
func UserID(c echo.Context) (uuid.UUID, bool) {
	s, _ := c.Get(CtxUserID).(string)
	if s == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Role returns the tipo_usuario of the authenticated user, or "".
func Role(c echo.Context) string {
	r, _ := c.Get(CtxRole).(string)
	return r
}

// currentUserID is the identity part of cache and rate-limit keys.
func currentUserID(c echo.Context) string {
	if s, ok := c.Get(CtxUserID).(string); ok && s != "" {
		return s
	}
	return "anon"
}
