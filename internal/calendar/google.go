package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/smartsched/scheduler-server-go/internal/model"
)

// GoogleCalendar implements Calendar against the Google Calendar API.
type GoogleCalendar struct {
	service    *gcal.Service
	calendarID string
	loc        *time.Location
}

func NewGoogleCalendar(ctx context.Context, credentialsFile, calendarID string, loc *time.Location) (*GoogleCalendar, error) {
	service, err := gcal.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gcal.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &GoogleCalendar{
		service:    service,
		calendarID: calendarID,
		loc:        loc,
	}, nil
}

func (g *GoogleCalendar) ListBusy(ctx context.Context, window model.Interval) ([]model.Interval, error) {
	result, err := g.service.Events.List(g.calendarID).
		TimeMin(window.Start.Format(time.RFC3339)).
		TimeMax(window.End.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	busy := make([]model.Interval, 0, len(result.Items))
	for _, item := range result.Items {
		// All-day events have a Date instead of a DateTime and do not
		// block slots.
		if item.Start == nil || item.End == nil || item.Start.DateTime == "" {
			continue
		}
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			log.Warn().Err(err).Str("eventId", item.Id).Msg("skipping event with unparseable start")
			continue
		}
		end, err := time.Parse(time.RFC3339, item.End.DateTime)
		if err != nil {
			log.Warn().Err(err).Str("eventId", item.Id).Msg("skipping event with unparseable end")
			continue
		}
		busy = append(busy, model.Interval{
			Start: start.In(g.loc),
			End:   end.In(g.loc),
		})
	}
	return busy, nil
}

func (g *GoogleCalendar) CreateEvent(ctx context.Context, params CreateEventParams) (string, error) {
	event := &gcal.Event{
		Summary:     params.Title,
		Description: params.Description,
		Start: &gcal.EventDateTime{
			DateTime: params.Start.In(g.loc).Format(time.RFC3339),
			TimeZone: g.loc.String(),
		},
		End: &gcal.EventDateTime{
			DateTime: params.End.In(g.loc).Format(time.RFC3339),
			TimeZone: g.loc.String(),
		},
		Reminders: &gcal.EventReminders{
			UseDefault: false,
			Overrides: []*gcal.EventReminder{
				{Method: "email", Minutes: 60},
				{Method: "popup", Minutes: 15},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}

	created, err := g.service.Events.Insert(g.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}
	if created.Id == "" {
		return "", fmt.Errorf("insert event: empty event id")
	}

	log.Info().
		Str("eventId", created.Id).
		Str("title", params.Title).
		Time("start", params.Start).
		Msg("calendar event created")

	return created.Id, nil
}
