// Package repository contains the SQL data access layer.  Every repository
// speaks plain database/sql with `?` placeholders so the same queries run on
// MySQL and SQLite.  Lookups that find nothing return one of the sentinel
// values below instead of sql.ErrNoRows.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrConflict is returned when a delete or update cannot be performed
// because of dependent records, such as deleting a room type that still has
// rooms.  Handlers translate it into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrForbidden is returned when the caller may not act on a resource that
// belongs to someone else.  Handlers translate it into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrDuplicate signals a unique-constraint violation (room number, type
// name, service name, username).
var ErrDuplicate = errors.New("duplicate key")

// ErrRoomUnavailable is returned by RoomRepo.OccupyTx when the room is
// already occupied.
var ErrRoomUnavailable = errors.New("room unavailable")

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrRoomTypeNotFound    = errors.New("room type not found")
	ErrRoomNotFound        = errors.New("room not found")
	ErrServiceNotFound     = errors.New("service not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrLinkNotFound        = errors.New("reservation service link not found")
	ErrTokenNotFound       = errors.New("refresh token not found")
)

// isDuplicateKey recognizes unique violations from both drivers.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") || strings.Contains(msg, "1062")
}

// mapWriteErr converts driver errors on INSERT/UPDATE into sentinels.
func mapWriteErr(err error) error {
	if isDuplicateKey(err) {
		return ErrDuplicate
	}
	return err
}
