package router

import (
	"github.com/labstack/echo/v4"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/handler"
)

// RegisterReservations registers /reservas and /reserva_servicios.
// Reservation writes change room availability and link writes change
// reservation cost, so both drop the dependent cache groups too.
func RegisterReservations(e *echo.Echo, res *handler.ReservationHandler, links *handler.LinkHandler, o Options) {
	g := protected(e, "/reservas", groupReservations, o)
	// hotel-wide listings; clients read their own through /usuario/:id
	g.GET("", res.List, adminOnly())
	g.GET("/reserva/activa", res.ListActive, adminOnly())
	g.GET("/reserva/cancelada", res.ListCancelled, adminOnly())
	g.GET("/usuario/:id", res.ListByUser)
	g.GET("/:id", res.Get)
	g.POST("", res.Create)
	g.PUT("/:id", res.Update)
	g.PATCH("/:id/estado", res.SetStatus)
	g.DELETE("/:id", res.Delete)

	l := protected(e, "/reserva_servicios", groupLinks, o)
	l.GET("", links.List)
	l.GET("/reserva/:id", links.ListByReservation)
	l.GET("/servicio/:id", links.ListByService)
	l.GET("/:id", links.Get)
	l.POST("", links.Create)
	l.DELETE("/reserva/:id", links.DeleteByReservation)
	l.DELETE("/:id", links.Delete)
}
