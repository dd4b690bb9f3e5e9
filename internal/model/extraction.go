package model

// Intent classifies what the user was trying to do in one message.
type Intent string

const (
	IntentGreeting      Intent = "greeting"
	IntentDuration      Intent = "duration"
	IntentDate          Intent = "date"
	IntentTime          Intent = "time"
	IntentSlotSelection Intent = "slot_selection"
	IntentTitle         Intent = "title"
	IntentConfirmation  Intent = "confirmation"
	IntentRestart       Intent = "restart"
	IntentUnclear       Intent = "unclear"
)

// Extraction is the structured record recognized from one user message.
// Every field is best-effort: the extractor may return an empty record and
// the state machine validates everything before committing it.
type Extraction struct {
	DurationMinutes *int    `json:"duration_minutes"`
	DatePhrase      *string `json:"date_preference"`
	TimePhrase      *string `json:"time_preference"`
	Title           *string `json:"meeting_title"`
	Intent          Intent  `json:"intent"`
	SlotNumber      *int    `json:"slot_number"`
	Confirmation    *string `json:"confirmation"`
}

// IsEmpty reports whether nothing usable was recognized.
func (e Extraction) IsEmpty() bool {
	return e.DurationMinutes == nil &&
		e.DatePhrase == nil &&
		e.TimePhrase == nil &&
		e.Title == nil &&
		e.SlotNumber == nil &&
		e.Confirmation == nil &&
		(e.Intent == "" || e.Intent == IntentUnclear)
}
