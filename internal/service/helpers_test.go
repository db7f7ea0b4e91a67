package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/config"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/database"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/model"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/queue"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ReservationEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type fixture struct {
	deps     Deps
	events   *recordingPublisher
	users    *Users
	types    *RoomTypes
	rooms    *Rooms
	catalog  *Catalog
	bookings *Reservations
	links    *Linkage
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "hotel.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(context.Background(), db, config.DriverSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	events := &recordingPublisher{}
	d := NewDeps(db, events, nil, bcrypt.MinCost)
	return &fixture{
		deps:     d,
		events:   events,
		users:    NewUsers(d),
		types:    NewRoomTypes(d),
		rooms:    NewRooms(d),
		catalog:  NewCatalog(d),
		bookings: NewReservations(d),
		links:    NewLinkage(d),
	}
}

func ptr[T any](v T) *T { return &v }

func (f *fixture) user(t *testing.T, username, role string) *model.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), CreateUserInput{
		FirstName: ptr("Ana"),
		LastName:  ptr("Gómez"),
		Phone:     ptr("+57 300 1234"),
		Role:      ptr(role),
		Username:  ptr(username),
		Password:  ptr("secreta1"),
	})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func (f *fixture) roomType(t *testing.T, name string, by uuid.UUID) *model.RoomType {
	t.Helper()
	rt, err := f.types.Create(context.Background(), CreateRoomTypeInput{
		Name: ptr(name), Description: ptr("Habitación " + name), CreatedBy: ptr(by),
	})
	if err != nil {
		t.Fatalf("create room type %s: %v", name, err)
	}
	return rt
}

func (f *fixture) room(t *testing.T, number int, price float64, typeID, by uuid.UUID) *model.Room {
	t.Helper()
	rm, err := f.rooms.Create(context.Background(), CreateRoomInput{
		Number: ptr(number), TypeID: ptr(typeID), Price: ptr(price), CreatedBy: ptr(by),
	})
	if err != nil {
		t.Fatalf("create room %d: %v", number, err)
	}
	return rm
}

func (f *fixture) service(t *testing.T, name string, price float64, by uuid.UUID) *model.AdditionalService {
	t.Helper()
	svc, err := f.catalog.Create(context.Background(), CreateServiceInput{
		Name: ptr(name), Price: ptr(price), Description: ptr(name + " incluido"), CreatedBy: ptr(by),
	})
	if err != nil {
		t.Fatalf("create service %s: %v", name, err)
	}
	return svc
}

func (f *fixture) book(t *testing.T, userID, roomID uuid.UUID, nights int) *model.Reservation {
	t.Helper()
	res, err := f.bookings.Create(context.Background(), CreateReservationInput{
		CheckIn: ptr(model.Today().AddDays(1)),
		Guests:  ptr(2),
		Nights:  ptr(nights),
		UserID:  ptr(userID),
		RoomID:  ptr(roomID),
	})
	if err != nil {
		t.Fatalf("book room: %v", err)
	}
	return res
}

func (f *fixture) available(t *testing.T, roomID uuid.UUID) bool {
	t.Helper()
	rm, err := f.rooms.Get(context.Background(), roomID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	return rm.Available
}

func wantKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := KindOf(err); got != kind {
		t.Fatalf("expected %s error, got %s (%v)", kind, got, err)
	}
}
