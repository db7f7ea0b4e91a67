package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"time"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/model"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/queue"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/repository"
)

// EventPublisher receives reservation lifecycle events after commit.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.ReservationEvent) error { return nil }

// Deps bundles the repositories and collaborators shared by the use cases.
type Deps struct {
	DB           *sql.DB
	Users        *repository.UserRepo
	Tokens       *repository.TokenRepo
	RoomTypes    *repository.RoomTypeRepo
	Rooms        *repository.RoomRepo
	Services     *repository.ServiceRepo
	Reservations *repository.ReservationRepo
	Links        *repository.ReservationServiceRepo
	Events       EventPublisher
	Logger       *slog.Logger
	BcryptCost   int
}

// NewDeps builds every repository on db.  A nil publisher or logger is
// replaced by a no-op.
func NewDeps(db *sql.DB, events EventPublisher, log *slog.Logger, bcryptCost int) Deps {
	if events == nil {
		events = NopPublisher{}
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return Deps{
		DB:           db,
		Users:        repository.NewUserRepo(db),
		Tokens:       repository.NewTokenRepo(db),
		RoomTypes:    repository.NewRoomTypeRepo(db),
		Rooms:        repository.NewRoomRepo(db),
		Services:     repository.NewServiceRepo(db),
		Reservations: repository.NewReservationRepo(db),
		Links:        repository.NewReservationServiceRepo(db),
		Events:       events,
		Logger:       log,
		BcryptCost:   bcryptCost,
	}
}

// withTx runs fn inside a transaction, committing only when fn succeeds.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// publish sends ev and logs, but never returns, a delivery failure.
func publish(ctx context.Context, d Deps, ev queue.ReservationEvent) {
	// detach from request cancellation; the write already committed
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := d.Events.Publish(pctx, ev); err != nil {
		d.Logger.Warn("event.publish_failed",
			slog.String("type", ev.Type),
			slog.String("reservation_id", ev.ReservationID.String()),
			slog.Any("error", err))
	}
}

func reservationEvent(typ string, res *model.Reservation) queue.ReservationEvent {
	return queue.ReservationEvent{
		Type:          typ,
		ReservationID: res.ID,
		UserID:        res.UserID,
		RoomID:        res.RoomID,
		RoomNumber:    res.RoomNumber,
		Status:        string(res.Status),
		TotalCost:     res.TotalCost,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
}
