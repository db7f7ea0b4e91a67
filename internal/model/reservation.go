package model

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReservationStatus is the lifecycle state of a reservation.  There are
// exactly two states and transitions only go between them.
type ReservationStatus string

const (
	StatusActive    ReservationStatus = "Active"
	StatusCancelled ReservationStatus = "Cancelled"
)

// ParseReservationStatus accepts the canonical names and their Spanish
// spellings (Activa, Cancelada) in any letter case.
func ParseReservationStatus(s string) (ReservationStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active", "activa", "activo":
		return StatusActive, true
	case "cancelled", "canceled", "cancelada", "cancelado":
		return StatusCancelled, true
	}
	return "", false
}

// Reservation records a stay of Nights nights in one room for one user.
//
// The cost is split in two: BaseCost is room price times nights and is
// recomputed whenever either changes; ServiceCharges accumulates the price of
// every service linked to the reservation and is never reset.  TotalCost is
// always their sum.
type Reservation struct {
	ID             uuid.UUID         `json:"id_reserva"`
	UserID         uuid.UUID         `json:"id_usuario"`
	RoomID         uuid.UUID         `json:"id_habitacion"`
	RoomNumber     int               `json:"numero_habitacion,omitempty"`
	CheckIn        Date              `json:"fecha_entrada"`
	CheckOut       Date              `json:"fecha_salida"`
	Guests         int               `json:"numero_de_personas"`
	Nights         int               `json:"noches"`
	Status         ReservationStatus `json:"estado_reserva"`
	BaseCost       float64           `json:"costo_base"`
	ServiceCharges float64           `json:"cargos_servicios"`
	TotalCost      float64           `json:"costo_total"`
	CreatedBy      uuid.UUID         `json:"id_usuario_crea"`
	UpdatedBy      *uuid.UUID        `json:"id_usuario_edita"`
	CreatedAt      time.Time         `json:"fecha_creacion"`
	UpdatedAt      *time.Time        `json:"fecha_edicion"`
	User           *User             `json:"usuario,omitempty"`
}

// IsActive reports whether the reservation currently occupies its room.
func (r *Reservation) IsActive() bool { return r.Status == StatusActive }

// SyncTotal recomputes TotalCost from its parts.
func (r *Reservation) SyncTotal() {
	r.TotalCost = RoundMoney(r.BaseCost + r.ServiceCharges)
}

// ReservationService links one purchased add-on to one reservation.  Price
// is the service price at the moment the link was created.
type ReservationService struct {
	ID            uuid.UUID          `json:"id"`
	ReservationID uuid.UUID          `json:"id_reserva"`
	ServiceID     uuid.UUID          `json:"id_servicio"`
	Price         float64            `json:"precio"`
	CreatedAt     time.Time          `json:"fecha_creacion"`
	Reservation   *Reservation       `json:"reserva,omitempty"`
	Service       *AdditionalService `json:"servicio,omitempty"`
}

// BaseCost returns price * nights rounded to cents.
func BaseCost(price float64, nights int) float64 {
	return RoundMoney(price * float64(nights))
}

// RoundMoney rounds to two decimal places.
func RoundMoney(v float64) float64 { return math.Round(v*100) / 100 }
