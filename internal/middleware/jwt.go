package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/utils"
)

// JWTAuth validates the Bearer access token and stores its subject, username
// and role in the context (see identity.go).  The secret must match the one
// used by the auth handler when issuing tokens.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			// the scheme is case-insensitive per RFC 6750
			if len(auth) < 7 || !strings.EqualFold(auth[:7], "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token de acceso requerido"})
			}
			claims, err := utils.ParseAccessToken(secret, strings.TrimSpace(auth[7:]))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token inválido o expirado"})
			}
			c.Set(CtxUserID, claims.Subject)
			c.Set(CtxUsername, claims.Username)
			c.Set(CtxRole, claims.Role)
			return next(c)
		}
	}
}
