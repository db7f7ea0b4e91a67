package router

import (
	"github.com/labstack/echo/v4"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/handler"
)

// RegisterCatalog registers room types, rooms and add-on services.  Reads
// are open to any authenticated user; writes need an administrator.
func RegisterCatalog(e *echo.Echo, types *handler.RoomTypeHandler, rooms *handler.RoomHandler, services *handler.ServiceHandler, o Options) {
	t := protected(e, "/tipos_habitacion", groupRoomTypes, o)
	t.GET("", types.List)
	t.GET("/:id", types.Get)
	t.POST("", types.Create, adminOnly())
	t.PUT("/:id", types.Update, adminOnly())
	t.DELETE("/:id", types.Delete, adminOnly())

	r := protected(e, "/habitaciones", groupRooms, o)
	r.GET("", rooms.List)
	r.GET("/estado", rooms.ListAvailable)
	r.GET("/tipo/:tipo", rooms.ListByType)
	r.GET("/numero/:numero", rooms.GetByNumber)
	r.GET("/:id", rooms.Get)
	r.POST("", rooms.Create, adminOnly())
	r.PUT("/:id", rooms.Update, adminOnly())
	r.DELETE("/:id", rooms.Delete, adminOnly())
	r.PATCH("/:id/cambiar-disponible", rooms.ToggleAvailability, adminOnly())

	s := protected(e, "/servicios_adicionales", groupServices, o)
	s.GET("", services.List)
	s.GET("/:id", services.Get)
	s.POST("", services.Create, adminOnly())
	s.PUT("/:id", services.Update, adminOnly())
	s.DELETE("/:id", services.Delete, adminOnly())
}
