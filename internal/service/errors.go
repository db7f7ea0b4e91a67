// Package service implements the hotel use cases: validation chains for the
// catalog and users, and the reservation state machine that owns room
// availability and cost.  Every failure is returned as *Error so handlers
// can map it to a status code without inspecting repository details.
package service

import (
	"errors"
	"fmt"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/repository"
)

// Kind is a coarse classification of use-case failures.
type Kind string

const (
	KindInvalid      Kind = "invalid"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindInternal     Kind = "internal"
)

// Error carries the operation, its kind, a client-facing message and the
// underlying cause.
type Error struct {
	Op   string
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Msg != "" {
		base += ": " + e.Msg
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the client-facing text of err.  Internal failures get
// a generic message so driver details never reach the caller.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal && e.Msg != "" {
		return e.Msg
	}
	return "error interno"
}

func invalid(op, msg string) error { return &Error{Op: op, Kind: KindInvalid, Msg: msg} }

func notFound(op, msg string, cause error) error {
	return &Error{Op: op, Kind: KindNotFound, Msg: msg, Err: cause}
}

func conflict(op, msg string, cause error) error {
	return &Error{Op: op, Kind: KindConflict, Msg: msg, Err: cause}
}

func internal(op string, cause error) error {
	return &Error{Op: op, Kind: KindInternal, Err: cause}
}

// notFoundMessages maps repository sentinels to client text.
var notFoundMessages = map[error]string{
	repository.ErrUserNotFound:        "Usuario no encontrado",
	repository.ErrRoomTypeNotFound:    "Tipo de habitación no encontrado",
	repository.ErrRoomNotFound:        "Habitación no encontrada",
	repository.ErrServiceNotFound:     "Servicio no encontrado",
	repository.ErrReservationNotFound: "Reserva no encontrada",
	repository.ErrLinkNotFound:        "Relación reserva-servicio no encontrada",
}

// fromRepo classifies a repository error.  Errors already classified pass
// through unchanged.
func fromRepo(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	for sentinel, msg := range notFoundMessages {
		if errors.Is(err, sentinel) {
			return notFound(op, msg, err)
		}
	}
	switch {
	case errors.Is(err, repository.ErrRoomUnavailable):
		return conflict(op, "La habitación no está disponible", err)
	case errors.Is(err, repository.ErrDuplicate):
		return conflict(op, "El registro ya existe", err)
	case errors.Is(err, repository.ErrConflict):
		return conflict(op, "La operación entra en conflicto con registros existentes", err)
	case errors.Is(err, repository.ErrForbidden):
		return &Error{Op: op, Kind: KindForbidden, Msg: "Operación no permitida", Err: err}
	}
	return internal(op, err)
}
