package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/model"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so each query is written
// once and exposed as a plain method plus a *Tx variant.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// Timestamps are written as UTC text.  MySQL parses it into DATETIME and
// SQLite keeps it verbatim, so both round-trip through parseDBTime.
const timestampLayout = "2006-01-02 15:04:05"

func dbTime(t time.Time) string { return t.UTC().Format(timestampLayout) }

func dbDate(d model.Date) string { return d.String() }

// nullUUID turns an optional id into a query argument.
func nullUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	timestampLayout,
	model.DateLayout,
}

// parseDBTime accepts whatever either driver hands back for a DATE or
// DATETIME column.  A nil result means SQL NULL.
func parseDBTime(src any) (*time.Time, error) {
	var s string
	switch v := src.(type) {
	case nil:
		return nil, nil
	case time.Time:
		t := v.UTC()
		return &t, nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return nil, fmt.Errorf("unsupported time value %T", src)
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unparseable time %q", s)
}

type timeScanner struct{ dst *time.Time }

func (s timeScanner) Scan(src any) error {
	t, err := parseDBTime(src)
	if err != nil {
		return err
	}
	if t == nil {
		return errors.New("unexpected NULL timestamp")
	}
	*s.dst = *t
	return nil
}

type nullTimeScanner struct{ dst **time.Time }

func (s nullTimeScanner) Scan(src any) error {
	t, err := parseDBTime(src)
	if err != nil {
		return err
	}
	*s.dst = t
	return nil
}

type dateScanner struct{ dst *model.Date }

func (s dateScanner) Scan(src any) error {
	t, err := parseDBTime(src)
	if err != nil {
		return err
	}
	if t == nil {
		return errors.New("unexpected NULL date")
	}
	*s.dst = model.NewDate(*t)
	return nil
}

type nullUUIDScanner struct{ dst **uuid.UUID }

func (s nullUUIDScanner) Scan(src any) error {
	var n uuid.NullUUID
	if err := n.Scan(src); err != nil {
		return err
	}
	if !n.Valid {
		*s.dst = nil
		return nil
	}
	id := n.UUID
	*s.dst = &id
	return nil
}

func timeInto(dst *time.Time) sql.Scanner      { return timeScanner{dst} }
func nullTimeInto(dst **time.Time) sql.Scanner { return nullTimeScanner{dst} }
func dateInto(dst *model.Date) sql.Scanner     { return dateScanner{dst} }
func nullUUIDInto(dst **uuid.UUID) sql.Scanner { return nullUUIDScanner{dst} }

// pageArgs returns LIMIT/OFFSET arguments for a normalized page.
func pageArgs(p model.Page) (int, int) {
	p = p.Normalize()
	return p.Limit, p.Skip
}

// rowsAffected reports whether a write touched at least one row.
func rowsAffected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
