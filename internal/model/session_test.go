package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int          { return &v }
func strPtr(v string) *string    { return &v }
func timePtr(v time.Time) *time.Time { return &v }

func TestSessionStage(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Kolkata")
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, loc)
	slot := Interval{
		Start: time.Date(2025, 6, 15, 12, 0, 0, 0, loc),
		End:   time.Date(2025, 6, 15, 13, 0, 0, 0, loc),
	}

	t.Run("empty session", func(t *testing.T) {
		s := NewSession("s1", time.Now())
		assert.Equal(t, StageEmpty, s.Stage())
	})

	t.Run("any collected field means collecting", func(t *testing.T) {
		s := NewSession("s1", time.Now())
		s.DurationMinutes = intPtr(60)
		assert.Equal(t, StageCollecting, s.Stage())

		s = NewSession("s2", time.Now())
		s.TimePreference = strPtr("afternoon")
		assert.Equal(t, StageCollecting, s.Stage())
	})

	t.Run("slots without selection", func(t *testing.T) {
		s := NewSession("s1", time.Now())
		s.DurationMinutes = intPtr(60)
		s.ResolvedDate = timePtr(date)
		s.TimePreference = strPtr("afternoon")
		s.AvailableSlots = []Interval{slot}
		assert.Equal(t, StageSlotsShown, s.Stage())
	})

	t.Run("selection pending title", func(t *testing.T) {
		s := NewSession("s1", time.Now())
		s.AvailableSlots = []Interval{slot}
		s.SelectedSlot = &slot
		assert.Equal(t, StageAwaitingTitle, s.Stage())
	})

	t.Run("awaiting confirmation", func(t *testing.T) {
		s := NewSession("s1", time.Now())
		s.SelectedSlot = &slot
		s.AwaitingConfirmation = true
		assert.Equal(t, StageAwaitingConfirmation, s.Stage())
	})

	t.Run("total over arbitrary combinations", func(t *testing.T) {
		// Confirmation flag without a selection must not strand the session.
		s := NewSession("s1", time.Now())
		s.AwaitingConfirmation = true
		assert.Equal(t, StageEmpty, s.Stage())
	})
}

func TestMissingField(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Kolkata")
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, loc)

	t.Run("fixed priority order", func(t *testing.T) {
		s := NewSession("s1", time.Now())
		assert.Equal(t, "duration", s.MissingField())

		s.DurationMinutes = intPtr(30)
		assert.Equal(t, "date", s.MissingField())

		s.ResolvedDate = timePtr(date)
		assert.Equal(t, "time", s.MissingField())

		s.TimePreference = strPtr("morning")
		assert.Equal(t, "", s.MissingField())
		assert.True(t, s.HasAllFields())
	})

	t.Run("duration asked first even when date is known", func(t *testing.T) {
		s := NewSession("s1", time.Now())
		s.ResolvedDate = timePtr(date)
		assert.Equal(t, "duration", s.MissingField())
	})
}

func TestClearSearch(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Kolkata")
	slot := Interval{
		Start: time.Date(2025, 6, 15, 9, 0, 0, 0, loc),
		End:   time.Date(2025, 6, 15, 10, 0, 0, 0, loc),
	}

	s := NewSession("s1", time.Now())
	s.DurationMinutes = intPtr(60)
	s.AvailableSlots = []Interval{slot}
	s.SelectedSlot = &slot
	s.AwaitingConfirmation = true

	s.ClearSearch()

	assert.Nil(t, s.AvailableSlots)
	assert.Nil(t, s.SelectedSlot)
	assert.False(t, s.AwaitingConfirmation)
	// Collected fields survive a search reset.
	assert.NotNil(t, s.DurationMinutes)
}

func TestClearScheduling(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Kolkata")
	slot := Interval{
		Start: time.Date(2025, 6, 15, 9, 0, 0, 0, loc),
		End:   time.Date(2025, 6, 15, 10, 0, 0, 0, loc),
	}

	s := NewSession("s1", time.Now())
	s.DurationMinutes = intPtr(60)
	s.DatePhrase = strPtr("tomorrow")
	s.ResolvedDate = timePtr(slot.Start)
	s.TimePreference = strPtr("morning")
	s.Title = strPtr("Standup")
	s.SelectedSlot = &slot
	s.AppendHistory("user", "book it", time.Now())

	s.ClearScheduling()

	assert.Equal(t, StageEmpty, s.Stage())
	assert.Nil(t, s.Title)
	assert.Len(t, s.History, 1, "history survives booking")
}

func TestRecentHistory(t *testing.T) {
	s := NewSession("s1", time.Now())
	for i := 0; i < 7; i++ {
		s.AppendHistory("user", "msg", time.Now())
	}
	assert.Len(t, s.History, 7)
	assert.Len(t, s.RecentHistory(), MaxHistoryContext)
}

func TestMeetingTitle(t *testing.T) {
	s := NewSession("s1", time.Now())
	assert.Equal(t, DefaultMeetingTitle, s.MeetingTitle())

	s.Title = strPtr("Client Call")
	assert.Equal(t, "Client Call", s.MeetingTitle())
}

func TestSummary(t *testing.T) {
	s := NewSession("s1", time.Now())
	s.DurationMinutes = intPtr(45)
	sum := s.Summary()
	assert.Contains(t, sum, "Duration: 45 minutes")
	assert.Contains(t, sum, "Date: not set")
	assert.Contains(t, sum, "Time: not set")
	assert.Contains(t, sum, "Title: not set")
}
