package service

import (
	"context"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/model"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/queue"
)

func TestLinkChargesOnceAndDeleteKeepsCost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "admin", model.RoleAdmin)
	rt := f.roomType(t, "Suite", u.ID)
	rm := f.room(t, 101, 100, rt.ID, u.ID)
	spa := f.service(t, "Spa", 30, u.ID)
	bar := f.service(t, "Minibar", 12.25, u.ID)
	res := f.book(t, u.ID, rm.ID, 3)

	first, err := f.links.Create(ctx, CreateLinkInput{ReservationID: &res.ID, ServiceID: &spa.ID})
	if err != nil {
		t.Fatalf("link spa: %v", err)
	}
	if first.Price != 30 || first.Service == nil || first.Service.Name != "Spa" {
		t.Fatalf("unexpected link %+v", first)
	}
	if first.Reservation == nil || first.Reservation.TotalCost != 330 {
		t.Fatalf("expected total 330 after spa, got %+v", first.Reservation)
	}
	if _, err := f.links.Create(ctx, CreateLinkInput{ReservationID: &res.ID, ServiceID: &bar.ID}); err != nil {
		t.Fatalf("link bar: %v", err)
	}

	got, err := f.bookings.Get(ctx, res.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TotalCost != 342.25 {
		t.Fatalf("expected 342.25, got %v", got.TotalCost)
	}

	if _, err := f.links.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete link: %v", err)
	}
	got, _ = f.bookings.Get(ctx, res.ID)
	if got.TotalCost != 342.25 {
		t.Fatalf("deleting a link must not change the cost, got %v", got.TotalCost)
	}
	links, err := f.links.ListByReservation(ctx, res.ID)
	if err != nil || len(links) != 1 || links[0].ServiceID != bar.ID {
		t.Fatalf("remaining links = %+v, err %v", links, err)
	}

	evs := f.events.types()
	if len(evs) < 2 || evs[len(evs)-2] != queue.EventServiceAdded || evs[len(evs)-1] != queue.EventServiceRemoved {
		t.Fatalf("expected service_added then service_removed, got %v", evs)
	}
}

func TestLinkValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "admin", model.RoleAdmin)
	rt := f.roomType(t, "Suite", u.ID)
	rm := f.room(t, 101, 100, rt.ID, u.ID)
	spa := f.service(t, "Spa", 30, u.ID)
	res := f.book(t, u.ID, rm.ID, 1)

	_, err := f.links.Create(ctx, CreateLinkInput{ServiceID: &spa.ID})
	wantKind(t, err, KindInvalid)
	_, err = f.links.Create(ctx, CreateLinkInput{ReservationID: ptr(uuid.New()), ServiceID: &spa.ID})
	wantKind(t, err, KindNotFound)
	_, err = f.links.Create(ctx, CreateLinkInput{ReservationID: &res.ID, ServiceID: ptr(uuid.New())})
	wantKind(t, err, KindNotFound)

	got, _ := f.bookings.Get(ctx, res.ID)
	if got.ServiceCharges != 0 {
		t.Fatalf("failed link must not charge, got %v", got.ServiceCharges)
	}

	_, err = f.links.ListByReservation(ctx, uuid.New())
	wantKind(t, err, KindNotFound)
	_, err = f.links.ListByService(ctx, uuid.New())
	wantKind(t, err, KindNotFound)
	list, err := f.links.ListByService(ctx, spa.ID)
	if err != nil || list == nil || len(list) != 0 {
		t.Fatalf("expected empty list, got %#v, err %v", list, err)
	}
	_, err = f.links.Delete(ctx, uuid.New())
	wantKind(t, err, KindNotFound)
}

func TestDeleteFirstByReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "admin", model.RoleAdmin)
	rt := f.roomType(t, "Suite", u.ID)
	rm := f.room(t, 101, 100, rt.ID, u.ID)
	spa := f.service(t, "Spa", 30, u.ID)
	res := f.book(t, u.ID, rm.ID, 1)

	_, err := f.links.DeleteFirstByReservation(ctx, res.ID)
	wantKind(t, err, KindNotFound)

	link, err := f.links.Create(ctx, CreateLinkInput{ReservationID: &res.ID, ServiceID: &spa.ID})
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	removed, err := f.links.DeleteFirstByReservation(ctx, res.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed.ID != link.ID {
		t.Fatalf("removed %s, want %s", removed.ID, link.ID)
	}
	all, err := f.links.List(ctx, model.Page{})
	if err != nil || len(all) != 0 {
		t.Fatalf("links = %d, err %v", len(all), err)
	}
}

func TestLinkRemovalIsPublished(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "admin", model.RoleAdmin)
	rt := f.roomType(t, "Suite", u.ID)
	rm := f.room(t, 101, 100, rt.ID, u.ID)
	spa := f.service(t, "Spa", 30, u.ID)
	bar := f.service(t, "Minibar", 10, u.ID)
	res := f.book(t, u.ID, rm.ID, 1)

	first, err := f.links.Create(ctx, CreateLinkInput{ReservationID: &res.ID, ServiceID: &spa.ID})
	if err != nil {
		t.Fatalf("link spa: %v", err)
	}
	if _, err := f.links.Create(ctx, CreateLinkInput{ReservationID: &res.ID, ServiceID: &bar.ID}); err != nil {
		t.Fatalf("link bar: %v", err)
	}
	if _, err := f.links.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.links.DeleteFirstByReservation(ctx, res.ID); err != nil {
		t.Fatalf("delete by reservation: %v", err)
	}
	_, err = f.links.Delete(ctx, first.ID)
	wantKind(t, err, KindNotFound)

	want := []string{
		queue.EventReservationCreated,
		queue.EventServiceAdded, queue.EventServiceAdded,
		queue.EventServiceRemoved, queue.EventServiceRemoved,
	}
	if got := f.events.types(); !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	removed := f.events.events[3:]
	for i, svc := range []uuid.UUID{spa.ID, bar.ID} {
		ev := removed[i]
		if ev.ServiceID == nil || *ev.ServiceID != svc {
			t.Errorf("removal %d carries service %v, want %s", i, ev.ServiceID, svc)
		}
		if ev.ReservationID != res.ID || ev.TotalCost != 140 {
			t.Errorf("removal %d = %+v", i, ev)
		}
	}
}
