package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/smartsched/scheduler-server-go/internal/calendar"
	"github.com/smartsched/scheduler-server-go/internal/model"
)

const (
	// Candidate slots start on 30-minute boundaries from the window start.
	slotStrideMinutes = 30

	// At most this many available slots are returned; the reply layer
	// truncates further for display.
	maxSlots = 10

	// No search window extends past this hour of day.
	latestWindowEndHour = 20
)

type timeBand struct {
	startHour int
	endHour   int
}

var timeBands = map[string]timeBand{
	"morning":   {9, 12},
	"afternoon": {12, 17},
	"evening":   {17, 20},
	"any":       {9, 18},
}

// SlotFinder computes open meeting slots for one calendar day. It is a pure
// function of its inputs plus a single calendar read.
type SlotFinder struct {
	calendar calendar.Calendar
	loc      *time.Location
}

func NewSlotFinder(cal calendar.Calendar, loc *time.Location) *SlotFinder {
	return &SlotFinder{calendar: cal, loc: loc}
}

// FindAvailableSlots returns up to maxSlots conflict-free intervals of
// exactly durationMinutes on date, earliest first. Zero slots is a valid
// outcome; an error means the busy-interval fetch failed.
func (f *SlotFinder) FindAvailableSlots(ctx context.Context, durationMinutes int, date time.Time, timePreference string) ([]model.Interval, error) {
	startHour, endHour := searchWindow(timePreference)

	day := date.In(f.loc)
	window := model.Interval{
		Start: time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, f.loc),
		End:   time.Date(day.Year(), day.Month(), day.Day(), endHour, 0, 0, 0, f.loc),
	}

	busy, err := f.calendar.ListBusy(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("fetch busy intervals: %w", err)
	}

	available := filterAvailable(generateSlots(window, durationMinutes), busy)
	if len(available) > maxSlots {
		available = available[:maxSlots]
	}

	log.Debug().
		Int("duration", durationMinutes).
		Str("preference", timePreference).
		Int("busy", len(busy)).
		Int("available", len(available)).
		Msg("slot search completed")

	return available, nil
}

// searchWindow maps a free-text time preference to hours of day. Unrecognized
// preferences fall back to the "any" band.
func searchWindow(preference string) (startHour, endHour int) {
	p := strings.ToLower(strings.TrimSpace(preference))
	if band, ok := timeBands[p]; ok {
		return band.startHour, band.endHour
	}
	if hour, ok := parseClockHour(p); ok {
		end := hour + 2
		if end > latestWindowEndHour {
			end = latestWindowEndHour
		}
		return hour, end
	}
	band := timeBands["any"]
	return band.startHour, band.endHour
}

var clockPattern = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(am|pm)?$`)

// parseClockHour recognizes specific clock times like "2 pm", "2:30pm", or
// "14:00" and returns the hour of day.
func parseClockHour(s string) (int, bool) {
	match := clockPattern.FindStringSubmatch(s)
	if match == nil {
		return 0, false
	}

	hour, err := strconv.Atoi(match[1])
	if err != nil || hour > 23 {
		return 0, false
	}
	if match[2] != "" {
		minute, err := strconv.Atoi(match[2])
		if err != nil || minute > 59 {
			return 0, false
		}
	}

	switch match[3] {
	case "am":
		if hour > 12 {
			return 0, false
		}
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour > 12 {
			return 0, false
		}
		if hour != 12 {
			hour += 12
		}
	}
	return hour, true
}

// generateSlots produces every candidate of exactly duration length starting
// at stride boundaries from the window start. A sliding fixed-stride window:
// partially overlapping candidates that both fit are both listed.
func generateSlots(window model.Interval, durationMinutes int) []model.Interval {
	duration := time.Duration(durationMinutes) * time.Minute
	stride := slotStrideMinutes * time.Minute

	var slots []model.Interval
	for start := window.Start; !start.Add(duration).After(window.End); start = start.Add(stride) {
		slots = append(slots, model.Interval{Start: start, End: start.Add(duration)})
	}
	return slots
}

// filterAvailable keeps candidates that overlap no busy interval. Touching
// endpoints are not conflicts.
func filterAvailable(slots, busy []model.Interval) []model.Interval {
	available := make([]model.Interval, 0, len(slots))
	for _, slot := range slots {
		conflict := false
		for _, b := range busy {
			if slot.Overlaps(b) {
				conflict = true
				break
			}
		}
		if !conflict {
			available = append(available, slot)
		}
	}
	return available
}
