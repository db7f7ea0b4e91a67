package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/config"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/database"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/model"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/service"
)

const testSecret = "test-secret"

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "hotel.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(context.Background(), db, config.DriverSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cfg := config.Config{JWTSecret: testSecret, AccessTTLMin: 5, RefreshTTLDays: 1, BcryptCost: bcrypt.MinCost}
	deps := service.NewDeps(db, nil, nil, bcrypt.MinCost)

	e := echo.New()
	Register(e, db, NewHandlers(cfg, deps), Options{JWTSecret: testSecret, Cache: config.CacheConfig{}})
	return e
}

func do(t *testing.T, e *echo.Echo, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func expect(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
}

// signUp registers a user and returns its access token.
func signUp(t *testing.T, e *echo.Echo, username, role string) string {
	t.Helper()
	expect(t, do(t, e, http.MethodPost, "/usuarios", "", map[string]string{
		"nombre":         "Ana",
		"apellidos":      "Pérez",
		"telefono":       "3001234567",
		"tipo_usuario":   role,
		"nombre_usuario": username,
		"clave":          "secreto1",
	}), http.StatusCreated)

	rec := do(t, e, http.MethodPost, "/auth/login", "", map[string]string{
		"nombre_usuario": username,
		"clave":          "secreto1",
	})
	expect(t, rec, http.StatusOK)
	resp := decode[struct {
		AccessToken  string `json:"access_token"`
		TokenType    string `json:"token_type"`
		RefreshToken string `json:"refresh_token"`
	}](t, rec)
	if resp.AccessToken == "" || resp.RefreshToken == "" || resp.TokenType != "bearer" {
		t.Fatalf("login response = %+v", resp)
	}
	return resp.AccessToken
}

func TestHealthz(t *testing.T) {
	e := newServer(t)
	expect(t, do(t, e, http.MethodGet, "/healthz", "", nil), http.StatusOK)
}

func TestBookingFlowOverHTTP(t *testing.T) {
	e := newServer(t)
	admin := signUp(t, e, "admin", model.RoleAdmin)

	expect(t, do(t, e, http.MethodGet, "/habitaciones", "", nil), http.StatusUnauthorized)

	rec := do(t, e, http.MethodPost, "/tipos_habitacion", admin, map[string]string{
		"nombre_tipo": "Suite",
		"descripcion": "Vista al mar",
	})
	expect(t, rec, http.StatusCreated)
	suite := decode[model.RoomType](t, rec)

	rec = do(t, e, http.MethodPost, "/habitaciones", admin, map[string]any{
		"numero":  101,
		"id_tipo": suite.ID,
		"precio":  100,
	})
	expect(t, rec, http.StatusCreated)
	room := decode[model.Room](t, rec)
	if !room.Available || room.TypeName != "Suite" {
		t.Fatalf("room = %+v", room)
	}

	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	rec = do(t, e, http.MethodPost, "/reservas", admin, map[string]any{
		"fecha_entrada":      tomorrow,
		"numero_de_personas": 2,
		"noches":             3,
		"id_habitacion":      room.ID,
	})
	expect(t, rec, http.StatusCreated)
	res := decode[model.Reservation](t, rec)
	if res.TotalCost != 300 || res.Status != model.StatusActive {
		t.Fatalf("reservation = %+v", res)
	}

	rec = do(t, e, http.MethodGet, "/habitaciones/estado", admin, nil)
	expect(t, rec, http.StatusOK)
	if got := decode[[]model.Room](t, rec); len(got) != 0 {
		t.Fatalf("available rooms = %d, want 0", len(got))
	}

	expect(t, do(t, e, http.MethodPatch, "/habitaciones/"+room.ID.String()+"/cambiar-disponible", admin, nil), http.StatusConflict)

	rec = do(t, e, http.MethodPatch, "/reservas/"+res.ID.String()+"/estado", admin, map[string]string{"estado_reserva": "Cancelada"})
	expect(t, rec, http.StatusOK)
	if got := decode[model.Reservation](t, rec); got.Status != model.StatusCancelled {
		t.Fatalf("status = %q", got.Status)
	}

	rec = do(t, e, http.MethodGet, "/habitaciones/numero/101", admin, nil)
	expect(t, rec, http.StatusOK)
	if got := decode[model.Room](t, rec); !got.Available {
		t.Fatal("cancelling should free the room")
	}

	rec = do(t, e, http.MethodDelete, "/tipos_habitacion/"+suite.ID.String(), admin, nil)
	expect(t, rec, http.StatusConflict)
	if msg := decode[map[string]string](t, rec)["error"]; msg == "" {
		t.Fatal("conflict body should carry a message")
	}

	rec = do(t, e, http.MethodDelete, "/reservas/"+res.ID.String(), admin, nil)
	expect(t, rec, http.StatusOK)
	if body := decode[map[string]any](t, rec); body["exito"] != true {
		t.Fatalf("delete body = %v", body)
	}

	rec = do(t, e, http.MethodGet, "/reservas/reserva/activa", admin, nil)
	expect(t, rec, http.StatusOK)
	if rec.Body.String() != "[]\n" {
		t.Fatalf("empty list body = %q", rec.Body.String())
	}
}

func TestErrorMapping(t *testing.T) {
	e := newServer(t)
	admin := signUp(t, e, "admin", model.RoleAdmin)
	client := signUp(t, e, "cliente", model.RoleClient)

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"bad id", http.MethodGet, "/reservas/nope", admin, nil, http.StatusBadRequest},
		{"unknown id", http.MethodGet, "/reservas/" + uuid.NewString(), admin, nil, http.StatusNotFound},
		{"client cannot create rooms", http.MethodPost, "/habitaciones", client, map[string]any{"numero": 1}, http.StatusForbidden},
		{"validation", http.MethodPost, "/servicios_adicionales", admin, map[string]any{"nombre_servicio": "Spa", "precio": 0, "descripcion": "x"}, http.StatusBadRequest},
		{"bad skip", http.MethodGet, "/usuarios?skip=-1", admin, nil, http.StatusBadRequest},
		{"bad token", http.MethodGet, "/usuarios", "garbage", nil, http.StatusUnauthorized},
		{"duplicate username", http.MethodPost, "/usuarios", "", map[string]string{
			"nombre": "Ana", "apellidos": "Pérez", "telefono": "3001234567",
			"tipo_usuario": model.RoleClient, "nombre_usuario": "cliente", "clave": "otra",
		}, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expect(t, do(t, e, tc.method, tc.path, tc.token, tc.body), tc.want)
		})
	}
}

func TestLinkChargesReservation(t *testing.T) {
	e := newServer(t)
	admin := signUp(t, e, "admin", model.RoleAdmin)

	rec := do(t, e, http.MethodPost, "/tipos_habitacion", admin, map[string]string{"nombre_tipo": "Doble", "descripcion": "Dos camas"})
	expect(t, rec, http.StatusCreated)
	typ := decode[model.RoomType](t, rec)
	rec = do(t, e, http.MethodPost, "/habitaciones", admin, map[string]any{"numero": 7, "id_tipo": typ.ID, "precio": 80})
	expect(t, rec, http.StatusCreated)
	room := decode[model.Room](t, rec)
	rec = do(t, e, http.MethodPost, "/servicios_adicionales", admin, map[string]any{"nombre_servicio": "Desayuno", "precio": 15, "descripcion": "Buffet"})
	expect(t, rec, http.StatusCreated)
	svc := decode[model.AdditionalService](t, rec)

	rec = do(t, e, http.MethodPost, "/reservas", admin, map[string]any{
		"fecha_entrada":      time.Now().AddDate(0, 0, 2).Format("2006-01-02"),
		"numero_de_personas": 1,
		"noches":             2,
		"id_habitacion":      room.ID,
	})
	expect(t, rec, http.StatusCreated)
	res := decode[model.Reservation](t, rec)

	rec = do(t, e, http.MethodPost, "/reserva_servicios", admin, map[string]any{"id_reserva": res.ID, "id_servicio": svc.ID})
	expect(t, rec, http.StatusCreated)
	link := decode[model.ReservationService](t, rec)

	rec = do(t, e, http.MethodGet, "/reservas/"+res.ID.String(), admin, nil)
	expect(t, rec, http.StatusOK)
	if got := decode[model.Reservation](t, rec); got.TotalCost != 175 {
		t.Fatalf("total = %v, want 175", got.TotalCost)
	}

	rec = do(t, e, http.MethodGet, "/reserva_servicios/reserva/"+res.ID.String(), admin, nil)
	expect(t, rec, http.StatusOK)
	if got := decode[[]model.ReservationService](t, rec); len(got) != 1 {
		t.Fatalf("links = %d, want 1", len(got))
	}

	expect(t, do(t, e, http.MethodDelete, "/servicios_adicionales/"+svc.ID.String(), admin, nil), http.StatusConflict)
	expect(t, do(t, e, http.MethodDelete, "/reserva_servicios/"+link.ID.String(), admin, nil), http.StatusOK)
	expect(t, do(t, e, http.MethodDelete, "/reserva_servicios/"+link.ID.String(), admin, nil), http.StatusNotFound)

	rec = do(t, e, http.MethodGet, "/reservas/"+res.ID.String(), admin, nil)
	expect(t, rec, http.StatusOK)
	if got := decode[model.Reservation](t, rec); got.TotalCost != 175 {
		t.Fatalf("total after unlink = %v, want 175", got.TotalCost)
	}
}

func TestPasswordChangeRequiresSelfOrAdmin(t *testing.T) {
	e := newServer(t)
	signUp(t, e, "admin", model.RoleAdmin)
	client := signUp(t, e, "cliente", model.RoleClient)
	other := signUp(t, e, "otro", model.RoleClient)

	rec := do(t, e, http.MethodGet, "/usuarios/nombreusuario/cliente", client, nil)
	expect(t, rec, http.StatusOK)
	me := decode[model.User](t, rec)

	body := map[string]string{"clave_actual": "secreto1", "nueva_clave": "nueva1"}
	expect(t, do(t, e, http.MethodPatch, "/usuarios/"+me.ID.String(), other, body), http.StatusForbidden)
	expect(t, do(t, e, http.MethodPatch, "/usuarios/"+me.ID.String(), client, body), http.StatusOK)

	expect(t, do(t, e, http.MethodPost, "/auth/login", "", map[string]string{"nombre_usuario": "cliente", "clave": "secreto1"}), http.StatusUnauthorized)
	expect(t, do(t, e, http.MethodPost, "/auth/login", "", map[string]string{"nombre_usuario": "cliente", "clave": "nueva1"}), http.StatusOK)
}

func TestRefreshRotatesToken(t *testing.T) {
	e := newServer(t)
	signUp(t, e, "cliente", model.RoleClient)

	rec := do(t, e, http.MethodPost, "/auth/login", "", map[string]string{"nombre_usuario": "cliente", "clave": "secreto1"})
	expect(t, rec, http.StatusOK)
	first := decode[map[string]any](t, rec)["refresh_token"]

	rec = do(t, e, http.MethodPost, "/auth/refresh", "", map[string]any{"refresh_token": first})
	expect(t, rec, http.StatusOK)
	second := decode[map[string]any](t, rec)["refresh_token"]
	if second == first {
		t.Fatal("refresh should issue a new token")
	}

	expect(t, do(t, e, http.MethodPost, "/auth/refresh", "", map[string]any{"refresh_token": first}), http.StatusUnauthorized)
	expect(t, do(t, e, http.MethodPost, "/auth/logout", "", map[string]any{"refresh_token": second}), http.StatusNoContent)
	expect(t, do(t, e, http.MethodPost, "/auth/refresh", "", map[string]any{"refresh_token": second}), http.StatusUnauthorized)
}

func TestWriteScopeCoversDependentGroups(t *testing.T) {
	cases := []struct {
		group string
		stale []string
	}{
		// deleting a service removes its links on cancelled reservations
		{groupServices, []string{groupServices, groupLinks}},
		{groupRoomTypes, []string{groupRoomTypes, groupRooms}},
		{groupRooms, []string{groupRooms, groupReservations}},
		{groupReservations, []string{groupReservations, groupRooms, groupLinks}},
		{groupLinks, []string{groupLinks, groupReservations}},
		{groupUsers, []string{groupUsers, groupReservations, groupRooms, groupLinks}},
	}
	for _, tc := range cases {
		got := writeScope(tc.group)
		for _, want := range tc.stale {
			if !slices.Contains(got, want) {
				t.Errorf("writeScope(%q) = %v, missing %q", tc.group, got, want)
			}
		}
	}
}

func TestClientsOnlyReachTheirOwnReservations(t *testing.T) {
	e := newServer(t)
	admin := signUp(t, e, "admin", model.RoleAdmin)
	alice := signUp(t, e, "alicia", model.RoleClient)
	bob := signUp(t, e, "roberto", model.RoleClient)

	rec := do(t, e, http.MethodGet, "/usuarios/nombreusuario/alicia", alice, nil)
	expect(t, rec, http.StatusOK)
	aliceID := decode[model.User](t, rec).ID

	rec = do(t, e, http.MethodPost, "/tipos_habitacion", admin, map[string]string{"nombre_tipo": "Doble", "descripcion": "Dos camas"})
	expect(t, rec, http.StatusCreated)
	typ := decode[model.RoomType](t, rec)
	rec = do(t, e, http.MethodPost, "/habitaciones", admin, map[string]any{"numero": 12, "id_tipo": typ.ID, "precio": 90})
	expect(t, rec, http.StatusCreated)
	room := decode[model.Room](t, rec)
	rec = do(t, e, http.MethodPost, "/habitaciones", admin, map[string]any{"numero": 13, "id_tipo": typ.ID, "precio": 90})
	expect(t, rec, http.StatusCreated)
	spare := decode[model.Room](t, rec)
	rec = do(t, e, http.MethodPost, "/servicios_adicionales", admin, map[string]any{"nombre_servicio": "Spa", "precio": 20, "descripcion": "Masaje"})
	expect(t, rec, http.StatusCreated)
	svc := decode[model.AdditionalService](t, rec)

	checkIn := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	rec = do(t, e, http.MethodPost, "/reservas", alice, map[string]any{
		"fecha_entrada":      checkIn,
		"numero_de_personas": 2,
		"noches":             1,
		"id_habitacion":      room.ID,
	})
	expect(t, rec, http.StatusCreated)
	res := decode[model.Reservation](t, rec)
	if res.UserID != aliceID {
		t.Fatalf("reservation owner = %s, want %s", res.UserID, aliceID)
	}
	path := "/reservas/" + res.ID.String()

	cases := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"read", http.MethodGet, path, nil},
		{"update", http.MethodPut, path, map[string]any{"noches": 4}},
		{"cancel", http.MethodPatch, path + "/estado", map[string]string{"estado_reserva": "Cancelled"}},
		{"delete", http.MethodDelete, path, nil},
		{"list by user", http.MethodGet, "/reservas/usuario/" + aliceID.String(), nil},
		{"list all", http.MethodGet, "/reservas", nil},
		{"book for someone else", http.MethodPost, "/reservas", map[string]any{
			"fecha_entrada": checkIn, "numero_de_personas": 1, "noches": 1,
			"id_habitacion": spare.ID, "id_usuario": aliceID,
		}},
		{"add service", http.MethodPost, "/reserva_servicios", map[string]any{"id_reserva": res.ID, "id_servicio": svc.ID}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expect(t, do(t, e, tc.method, tc.path, bob, tc.body), http.StatusForbidden)
		})
	}

	rec = do(t, e, http.MethodGet, path, alice, nil)
	expect(t, rec, http.StatusOK)
	if got := decode[model.Reservation](t, rec); got.Status != model.StatusActive || got.Nights != 1 {
		t.Fatalf("reservation changed by another client: %+v", got)
	}
	rec = do(t, e, http.MethodGet, "/habitaciones/numero/13", admin, nil)
	expect(t, rec, http.StatusOK)
	if !decode[model.Room](t, rec).Available {
		t.Fatal("refused booking must not occupy the room")
	}

	rec = do(t, e, http.MethodGet, "/reservas/usuario/"+aliceID.String(), alice, nil)
	expect(t, rec, http.StatusOK)
	if got := decode[[]model.Reservation](t, rec); len(got) != 1 {
		t.Fatalf("own reservations = %d, want 1", len(got))
	}
	expect(t, do(t, e, http.MethodPost, "/reserva_servicios", alice, map[string]any{"id_reserva": res.ID, "id_servicio": svc.ID}), http.StatusCreated)
	expect(t, do(t, e, http.MethodDelete, "/reserva_servicios/reserva/"+res.ID.String(), bob, nil), http.StatusForbidden)
	expect(t, do(t, e, http.MethodGet, path, admin, nil), http.StatusOK)
	expect(t, do(t, e, http.MethodPatch, path+"/estado", alice, map[string]string{"estado_reserva": "Cancelled"}), http.StatusOK)
}
