package calendar

import (
	"context"
	"time"

	"github.com/smartsched/scheduler-server-go/internal/model"
)

// Calendar is the read/write contract with the external calendar account.
type Calendar interface {
	// ListBusy returns the busy intervals inside window, earliest first,
	// excluding all-day events.
	ListBusy(ctx context.Context, window model.Interval) ([]model.Interval, error)

	// CreateEvent persists a confirmed slot and returns the durable event id.
	// This is the one external side effect the core must never swallow.
	CreateEvent(ctx context.Context, params CreateEventParams) (string, error)
}

type CreateEventParams struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
}
