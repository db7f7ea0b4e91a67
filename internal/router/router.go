package router // package router registers the HTTP routes of the API

import (
	"database/sql"
	"io"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/config"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/handler"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/middleware"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/model"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/service"
)

// Cache groups.  Each resource caches under its own tag so a write only
// drops the entries it can affect.
const (
	groupUsers        = "usuarios"
	groupRoomTypes    = "tipos_habitacion"
	groupRooms        = "habitaciones"
	groupServices     = "servicios_adicionales"
	groupReservations = "reservas"
	groupLinks        = "reserva_servicios"
)

// invalidates lists, per group, the other groups a successful write there
// makes stale.
var invalidates = map[string][]string{
	// deleting a user cascades its reservations and reassigns authorship
	groupUsers:        {groupRoomTypes, groupRooms, groupServices, groupReservations, groupLinks},
	groupRoomTypes:    {groupRooms},
	groupRooms:        {groupReservations},
	groupServices:     {groupLinks},
	groupReservations: {groupRooms, groupLinks},
	groupLinks:        {groupReservations},
}

// Options carries what the route groups need besides handlers.  Redis may
// be nil, in which case caching is skipped.
type Options struct {
	JWTSecret string
	Cache     config.CacheConfig
	Redis     *redis.Client
	Log       *slog.Logger
}

// Handlers groups every resource handler.
type Handlers struct {
	Auth         *handler.AuthHandler
	Users        *handler.UserHandler
	RoomTypes    *handler.RoomTypeHandler
	Rooms        *handler.RoomHandler
	Services     *handler.ServiceHandler
	Reservations *handler.ReservationHandler
	Links        *handler.LinkHandler
}

// NewHandlers builds the handlers on top of the use cases in d.
func NewHandlers(cfg config.Config, d service.Deps) Handlers {
	log := d.Logger
	users := service.NewUsers(d)
	bookings := service.NewReservations(d)
	return Handlers{
		Auth:         handler.NewAuthHandler(cfg, users, d.Tokens, log),
		Users:        handler.NewUserHandler(users, d.Tokens, log),
		RoomTypes:    handler.NewRoomTypeHandler(service.NewRoomTypes(d), log),
		Rooms:        handler.NewRoomHandler(service.NewRooms(d), log),
		Services:     handler.NewServiceHandler(service.NewCatalog(d), log),
		Reservations: handler.NewReservationHandler(bookings, log),
		Links:        handler.NewLinkHandler(service.NewLinkage(d), bookings, log),
	}
}

// Register wires every route of the API onto e.
func Register(e *echo.Echo, db *sql.DB, h Handlers, o Options) {
	if o.Log == nil {
		o.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	RegisterRoutes(e, db)
	RegisterAuth(e, h.Auth, o.JWTSecret)
	RegisterUsers(e, h.Users, o)
	RegisterCatalog(e, h.RoomTypes, h.Rooms, h.Services, o)
	RegisterReservations(e, h.Reservations, h.Links, o)
}

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers login, refresh and logout as public routes and
// /auth/me behind the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/auth")
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// logout only needs the refresh token in the body
	g.POST("/logout", a.Logout)

	g.GET("/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// protected opens an authenticated group that caches its GETs under group
// and, after every successful write, drops group and what invalidates lists for it.
func protected(e *echo.Echo, prefix, group string, o Options) *echo.Group {
	return e.Group(prefix,
		middleware.JWTAuth(o.JWTSecret),
		middleware.InvalidateOnWrite(o.Cache, o.Redis, o.Log, writeScope(group)...),
		middleware.NewRedisCache(o.Cache, o.Redis, group),
	)
}

func writeScope(group string) []string {
	return append([]string{group}, invalidates[group]...)
}

func adminOnly() echo.MiddlewareFunc { return middleware.RequireRole(model.RoleAdmin) }
