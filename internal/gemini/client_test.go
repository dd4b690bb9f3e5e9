package gemini

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartsched/scheduler-server-go/internal/model"
)

func TestParseExtraction(t *testing.T) {
	t.Run("parses a clean JSON object", func(t *testing.T) {
		raw := `{"duration_minutes": 60, "date_preference": "tomorrow",
			"time_preference": "afternoon", "meeting_title": null,
			"intent": "duration", "slot_number": null, "confirmation": null}`

		e, ok := ParseExtraction(raw)
		require.True(t, ok)
		require.NotNil(t, e.DurationMinutes)
		assert.Equal(t, 60, *e.DurationMinutes)
		assert.Equal(t, "tomorrow", *e.DatePhrase)
		assert.Equal(t, "afternoon", *e.TimePhrase)
		assert.Nil(t, e.Title)
		assert.Equal(t, model.IntentDuration, e.Intent)
		assert.Nil(t, e.SlotNumber)
		assert.Nil(t, e.Confirmation)
	})

	t.Run("ignores prose and code fences around the object", func(t *testing.T) {
		raw := "Here is the extraction:\n```json\n" +
			`{"slot_number": 3, "intent": "slot_selection"}` +
			"\n```\nLet me know if you need anything else."

		e, ok := ParseExtraction(raw)
		require.True(t, ok)
		require.NotNil(t, e.SlotNumber)
		assert.Equal(t, 3, *e.SlotNumber)
		assert.Equal(t, model.IntentSlotSelection, e.Intent)
	})

	t.Run("fails without an object", func(t *testing.T) {
		_, ok := ParseExtraction("I could not find any scheduling details.")
		assert.False(t, ok)
	})

	t.Run("fails on malformed JSON", func(t *testing.T) {
		_, ok := ParseExtraction(`{"duration_minutes": sixty}`)
		assert.False(t, ok)
	})

	t.Run("normalizes confirmation casing and drops other values", func(t *testing.T) {
		e, ok := ParseExtraction(`{"intent": "confirmation", "confirmation": "Yes"}`)
		require.True(t, ok)
		require.NotNil(t, e.Confirmation)
		assert.Equal(t, "yes", *e.Confirmation)

		e, ok = ParseExtraction(`{"intent": "confirmation", "confirmation": "maybe"}`)
		require.True(t, ok)
		assert.Nil(t, e.Confirmation)
	})

	t.Run("drops literal null strings and blanks", func(t *testing.T) {
		e, ok := ParseExtraction(`{"date_preference": "null", "meeting_title": "  ", "intent": "unclear"}`)
		require.True(t, ok)
		assert.Nil(t, e.DatePhrase)
		assert.Nil(t, e.Title)
		assert.True(t, e.IsEmpty())
	})

	t.Run("missing intent defaults to unclear", func(t *testing.T) {
		e, ok := ParseExtraction(`{"duration_minutes": 30}`)
		require.True(t, ok)
		assert.Equal(t, model.IntentUnclear, e.Intent)
	})

	t.Run("fractional durations truncate to minutes", func(t *testing.T) {
		e, ok := ParseExtraction(`{"duration_minutes": 90.0, "intent": "duration"}`)
		require.True(t, ok)
		require.NotNil(t, e.DurationMinutes)
		assert.Equal(t, 90, *e.DurationMinutes)
	})
}

func TestParseResolvedDate(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	t.Run("extracts the date and anchors midnight in loc", func(t *testing.T) {
		date, ok := ParseResolvedDate("The date is 2025-06-15.", loc)
		require.True(t, ok)
		assert.Equal(t, 2025, date.Year())
		assert.Equal(t, time.June, date.Month())
		assert.Equal(t, 15, date.Day())
		assert.Equal(t, 0, date.Hour())
		assert.Equal(t, loc, date.Location())
	})

	t.Run("INVALID anywhere means no resolution", func(t *testing.T) {
		_, ok := ParseResolvedDate("INVALID", loc)
		assert.False(t, ok)

		_, ok = ParseResolvedDate("That expression is invalid, sorry.", loc)
		assert.False(t, ok)
	})

	t.Run("no date pattern means no resolution", func(t *testing.T) {
		_, ok := ParseResolvedDate("next Tuesday sometime", loc)
		assert.False(t, ok)
	})

	t.Run("rejects impossible dates", func(t *testing.T) {
		_, ok := ParseResolvedDate("2025-13-45", loc)
		assert.False(t, ok)
	})
}

func TestFormatHistory(t *testing.T) {
	t.Run("empty history renders placeholder", func(t *testing.T) {
		assert.Equal(t, "(none)\n", formatHistory(nil))
	})

	t.Run("labels roles", func(t *testing.T) {
		out := formatHistory([]model.HistoryEntry{
			{Role: "user", Text: "1 hour tomorrow"},
			{Role: "assistant", Text: "What time do you prefer?"},
		})
		assert.Contains(t, out, "User: 1 hour tomorrow")
		assert.Contains(t, out, "Assistant: What time do you prefer?")
	})
}
