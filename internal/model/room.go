package model

import (
	"time"

	"github.com/google/uuid"
)

// RoomType is a named category of rooms, e.g. "Suite".
type RoomType struct {
	ID          uuid.UUID  `json:"id_tipo"`
	Name        string     `json:"nombre_tipo"`
	Description string     `json:"descripcion"`
	CreatedBy   uuid.UUID  `json:"id_usuario_crea"`
	UpdatedBy   *uuid.UUID `json:"id_usuario_edita"`
	CreatedAt   time.Time  `json:"fecha_creacion"`
	UpdatedAt   *time.Time `json:"fecha_edicion"`
}

// Room is a bookable unit.  TypeName is joined from room_types on every
// read rather than stored, so renaming a type is reflected immediately.
//
// Available is false while an Active reservation occupies the room.  Only
// the reservation engine and the guarded toggle write it.
type Room struct {
	ID        uuid.UUID  `json:"id_habitacion"`
	Number    int        `json:"numero"`
	TypeID    uuid.UUID  `json:"id_tipo"`
	TypeName  string     `json:"tipo"`
	Price     float64    `json:"precio"`
	Available bool       `json:"disponible"`
	CreatedBy uuid.UUID  `json:"id_usuario_crea"`
	UpdatedBy *uuid.UUID `json:"id_usuario_edita"`
	CreatedAt time.Time  `json:"fecha_creacion"`
	UpdatedAt *time.Time `json:"fecha_edicion"`
}

// AdditionalService is an add-on from the service catalog (breakfast,
// spa, airport transfer) that can be attached to a reservation.
type AdditionalService struct {
	ID          uuid.UUID  `json:"id_servicio"`
	Name        string     `json:"nombre_servicio"`
	Price       float64    `json:"precio"`
	Description string     `json:"descripcion"`
	CreatedBy   uuid.UUID  `json:"id_usuario_crea"`
	UpdatedBy   *uuid.UUID `json:"id_usuario_edita"`
	CreatedAt   time.Time  `json:"fecha_creacion"`
	UpdatedAt   *time.Time `json:"fecha_edicion"`
}
