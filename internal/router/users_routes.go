package router

import (
	"github.com/labstack/echo/v4"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/handler"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/middleware"
)

// RegisterUsers registers /usuarios.  Sign-up is public; everything else
// needs a token and deletion needs an administrator.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler, o Options) {
	e.POST("/usuarios", h.Create, middleware.InvalidateOnWrite(o.Cache, o.Redis, o.Log, groupUsers))

	g := protected(e, "/usuarios", groupUsers, o)
	g.GET("", h.List)
	g.GET("/admin/lista", h.ListAdmins)
	g.GET("/cliente/lista", h.ListClients)
	g.GET("/nombreusuario/:nombre", h.GetByUsername)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id", h.ChangePassword)
	// a user's reservations go with them
	g.DELETE("/:id", h.Delete, adminOnly(),
		middleware.InvalidateOnWrite(o.Cache, o.Redis, o.Log, groupReservations, groupRooms, groupLinks))
}
