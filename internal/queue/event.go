// Package queue defines the reservation events exchanged over RabbitMQ, the
// publisher used by the reservation engine and the audit consumer.
package queue

import "github.com/google/uuid"

// Event types published by the reservation engine.
const (
	EventReservationCreated     = "reservation.created"
	EventReservationUpdated     = "reservation.updated"
	EventReservationCancelled   = "reservation.cancelled"
	EventReservationReactivated = "reservation.reactivated"
	EventReservationRoomChanged = "reservation.room_changed"
	EventReservationDeleted     = "reservation.deleted"
	EventServiceAdded           = "reservation.service_added"
	EventServiceRemoved         = "reservation.service_removed"
)

// ReservationEvent is published after a reservation change commits.  It
// carries enough state for consumers to log or notify without querying the
// primary database.
type ReservationEvent struct {
	Type          string     `json:"type"`
	ReservationID uuid.UUID  `json:"id_reserva"`
	UserID        uuid.UUID  `json:"id_usuario"`
	RoomID        uuid.UUID  `json:"id_habitacion"`
	RoomNumber    int        `json:"numero_habitacion"`
	Status        string     `json:"estado_reserva"`
	TotalCost     float64    `json:"costo_total"`
	ServiceID     *uuid.UUID `json:"id_servicio,omitempty"`
	OccurredAt    string     `json:"ocurrido_en"`
}
