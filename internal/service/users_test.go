package service

import (
	"context"
	"testing"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/model"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/queue"
)

func TestCreateUserValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	valid := func() CreateUserInput {
		return CreateUserInput{
			FirstName: ptr("Ana"), LastName: ptr("Gómez"), Phone: ptr("300-123-4567"),
			Role: ptr(model.RoleClient), Username: ptr("ana"), Password: ptr("clave"),
		}
	}
	mutate := map[string]func(*CreateUserInput){
		"blank name":     func(in *CreateUserInput) { in.FirstName = ptr("  ") },
		"letters phone":  func(in *CreateUserInput) { in.Phone = ptr("abc1234567") },
		"long phone":     func(in *CreateUserInput) { in.Phone = ptr("12345678901234") },
		"unknown role":   func(in *CreateUserInput) { in.Role = ptr("Gerente") },
		"long password":  func(in *CreateUserInput) { in.Password = ptr("12345678901") },
		"empty password": func(in *CreateUserInput) { in.Password = ptr("") },
		"no username":    func(in *CreateUserInput) { in.Username = nil },
	}
	for name, m := range mutate {
		t.Run(name, func(t *testing.T) {
			in := valid()
			m(&in)
			_, err := f.users.Create(ctx, in)
			wantKind(t, err, KindInvalid)
		})
	}

	u, err := f.users.Create(ctx, valid())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.PasswordHash == "clave" || u.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
	_, err = f.users.Create(ctx, valid())
	wantKind(t, err, KindConflict)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "ana", model.RoleClient)

	u, err := f.users.Authenticate(ctx, "ana", "secreta1")
	if err != nil || u.Username != "ana" {
		t.Fatalf("authenticate: %v", err)
	}
	_, err = f.users.Authenticate(ctx, "ana", "otra")
	wantKind(t, err, KindUnauthorized)
	_, err = f.users.Authenticate(ctx, "nadie", "secreta1")
	wantKind(t, err, KindUnauthorized)
	_, err = f.users.Authenticate(ctx, "", "")
	wantKind(t, err, KindInvalid)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ana", model.RoleClient)

	wantKind(t, f.users.ChangePassword(ctx, u.ID, "mala", "nueva"), KindInvalid)
	wantKind(t, f.users.ChangePassword(ctx, u.ID, "secreta1", "secreta1"), KindInvalid)
	wantKind(t, f.users.ChangePassword(ctx, u.ID, "secreta1", "demasiadolarga"), KindInvalid)

	if err := f.users.ChangePassword(ctx, u.ID, "secreta1", "nueva"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if _, err := f.users.Authenticate(ctx, "ana", "nueva"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestUpdateUserUsernameUnique(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.user(t, "ana", model.RoleClient)
	f.user(t, "luis", model.RoleClient)

	_, err := f.users.Update(ctx, ana.ID, UpdateUserInput{Username: ptr("luis")})
	wantKind(t, err, KindConflict)
	got, err := f.users.Update(ctx, ana.ID, UpdateUserInput{Username: ptr("ana"), Phone: ptr("(604) 555 12")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Phone != "(604) 555 12" {
		t.Fatalf("phone not updated: %q", got.Phone)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", model.RoleAdmin)
	guest := f.user(t, "guest", model.RoleClient)
	rt := f.roomType(t, "Suite", admin.ID)
	rm := f.room(t, 101, 100, rt.ID, admin.ID)
	spa := f.service(t, "Spa", 30, admin.ID)
	res := f.book(t, guest.ID, rm.ID, 2)
	if _, err := f.links.Create(ctx, CreateLinkInput{ReservationID: &res.ID, ServiceID: &spa.ID}); err != nil {
		t.Fatalf("link: %v", err)
	}

	if err := f.users.Delete(ctx, guest.ID); err != nil {
		t.Fatalf("delete guest: %v", err)
	}
	if !f.available(t, rm.ID) {
		t.Fatal("deleting the guest should release the room")
	}
	_, err := f.bookings.Get(ctx, res.ID)
	wantKind(t, err, KindNotFound)

	if err := f.users.Delete(ctx, admin.ID); err != nil {
		t.Fatalf("delete admin: %v", err)
	}
	got, err := f.rooms.Get(ctx, rm.ID)
	if err != nil {
		t.Fatalf("room should survive its creator: %v", err)
	}
	if got.CreatedBy != model.SystemUserID {
		t.Fatalf("authorship should move to the system user, got %s", got.CreatedBy)
	}

	wantKind(t, f.users.Delete(ctx, model.SystemUserID), KindForbidden)
	wantKind(t, f.users.Delete(ctx, admin.ID), KindNotFound)

	evs := f.events.types()
	if evs[len(evs)-1] != queue.EventReservationDeleted {
		t.Fatalf("expected reservation.deleted, got %v", evs)
	}
}

func TestListUsersByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "admin", model.RoleAdmin)
	f.user(t, "ana", model.RoleClient)
	f.user(t, "luis", model.RoleClient)

	admins, err := f.users.ListAdmins(ctx)
	if err != nil || len(admins) != 1 {
		t.Fatalf("admins = %d, err %v", len(admins), err)
	}
	clients, err := f.users.ListClients(ctx)
	if err != nil || len(clients) != 2 {
		t.Fatalf("clients = %d, err %v", len(clients), err)
	}
	all, err := f.users.List(ctx, model.Page{})
	if err != nil || len(all) != 3 {
		t.Fatalf("all = %d, err %v", len(all), err)
	}
}
