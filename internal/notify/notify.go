// Package notify delivers schedule and absence events to interested parties.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type EventType string

const (
	EventAbsenceSubmitted     EventType = "absence.submitted"
	EventAbsenceNotesUpdated  EventType = "absence.notes_updated"
	EventAbsenceStatusChanged EventType = "absence.status_changed"
	EventAbsenceDeleted       EventType = "absence.deleted"
	EventShiftClockedIn       EventType = "shift.clocked_in"
	EventShiftClockedOut      EventType = "shift.clocked_out"
	EventShiftConfirmed       EventType = "shift.confirmed"
)

type Event struct {
	ID                  string    `json:"id"`
	Type                EventType `json:"eventType"`
	StaffID             uint      `json:"staffId"`
	HotelID             uint      `json:"hotelId"`
	Dates               []string  `json:"dates"`
	RequestOrScheduleID uint      `json:"requestOrScheduleId"`
	Status              string    `json:"status,omitempty"`
	OccurredAt          time.Time `json:"occurredAt"`
}

// NewEvent stamps an event with a fresh id.
func NewEvent(typ EventType, staffID, hotelID, recordID uint, status string, at time.Time, dates ...string) Event {
	return Event{
		ID:                  uuid.NewString(),
		Type:                typ,
		StaffID:             staffID,
		HotelID:             hotelID,
		Dates:               dates,
		RequestOrScheduleID: recordID,
		Status:              status,
		OccurredAt:          at,
	}
}

type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Nop discards events.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }

// Log writes events to a logrus logger.
type Log struct {
	Logger *logrus.Logger
}

func (n Log) Notify(_ context.Context, event Event) error {
	n.Logger.WithFields(logrus.Fields{
		"event_id":  event.ID,
		"event":     event.Type,
		"staff_id":  event.StaffID,
		"hotel_id":  event.HotelID,
		"record_id": event.RequestOrScheduleID,
		"dates":     event.Dates,
		"status":    event.Status,
	}).Info("Schedule event")
	return nil
}

// Multi fans an event out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Async delivers events on a separate goroutine. Failures are logged and never reach
// the caller. Close waits for deliveries still in flight.
type Async struct {
	next    Notifier
	timeout time.Duration
	logger  *logrus.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewAsync(next Notifier, timeout time.Duration, logger *logrus.Logger) *Async {
	return &Async{next: next, timeout: timeout, logger: logger}
}

func (a *Async) Notify(_ context.Context, event Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	entry := a.logger.WithFields(logrus.Fields{
		"event_id": event.ID,
		"event":    event.Type,
	})
	if a.closed {
		entry.Warn("Notifier closed, event dropped")
		return nil
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		ctx := context.Background()
		if a.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, a.timeout)
			defer cancel()
		}

		if err := a.next.Notify(ctx, event); err != nil {
			entry.WithError(err).Warn("Failed to deliver notification")
		}
	}()
	return nil
}

// Close stops accepting events and waits for pending deliveries.
func (a *Async) Close() error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	a.wg.Wait()
	return nil
}
