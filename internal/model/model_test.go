package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseReservationStatus(t *testing.T) {
	cases := []struct {
		in   string
		want ReservationStatus
		ok   bool
	}{
		{"Active", StatusActive, true},
		{" activa ", StatusActive, true},
		{"CANCELADA", StatusCancelled, true},
		{"cancelled", StatusCancelled, true},
		{"pending", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseReservationStatus(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseReservationStatus(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestDateJSON(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2030-02-27"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out := d.AddDays(3)
	bs, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(bs) != `"2030-03-02"` {
		t.Fatalf("checkout = %s", bs)
	}

	if err := json.Unmarshal([]byte(`"2030-02-27T23:30:00-05:00"`), &d); err != nil {
		t.Fatalf("unmarshal timestamp: %v", err)
	}
	if d.String() != "2030-02-27" {
		t.Fatalf("timestamp truncated to %s", d)
	}
	if err := json.Unmarshal([]byte(`"27/02/2030"`), &d); err == nil {
		t.Fatal("expected an error for a non ISO date")
	}
	if bs, _ := json.Marshal(Date{}); string(bs) != "null" {
		t.Fatalf("zero date = %s", bs)
	}
}

func TestDateOrdering(t *testing.T) {
	today := NewDate(time.Date(2030, 1, 10, 18, 0, 0, 0, time.UTC))
	if !today.Before(today.AddDays(1)) || today.Before(today) {
		t.Fatal("Before should be strict")
	}
}

func TestReservationCost(t *testing.T) {
	r := Reservation{BaseCost: BaseCost(99.99, 3), ServiceCharges: 10.5}
	r.SyncTotal()
	if r.BaseCost != 299.97 {
		t.Fatalf("base = %v", r.BaseCost)
	}
	if r.TotalCost != 310.47 {
		t.Fatalf("total = %v", r.TotalCost)
	}
}

func TestPageNormalize(t *testing.T) {
	cases := []struct{ in, want Page }{
		{Page{}, Page{Skip: 0, Limit: DefaultLimit}},
		{Page{Skip: -3, Limit: 10}, Page{Skip: 0, Limit: 10}},
		{Page{Skip: 5, Limit: 10_000}, Page{Skip: 5, Limit: MaxLimit}},
	}
	for _, tc := range cases {
		if got := tc.in.Normalize(); got != tc.want {
			t.Errorf("Normalize(%+v) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestValidRole(t *testing.T) {
	if !ValidRole(RoleAdmin) || !ValidRole(RoleClient) || ValidRole("administrador") {
		t.Fatal("roles are matched exactly")
	}
}
