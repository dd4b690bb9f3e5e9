package model

import (
	"fmt"
	"strings"
	"time"
)

// Stage is the derived position in the scheduling conversation. It is never
// stored: it is recomputed from field presence every turn, which keeps the
// machine robust to out-of-order input.
type Stage string

const (
	StageEmpty                Stage = "empty"
	StageCollecting           Stage = "collecting"
	StageSlotsShown           Stage = "slots_shown"
	StageAwaitingTitle        Stage = "awaiting_title"
	StageAwaitingConfirmation Stage = "awaiting_confirmation"
)

// HistoryEntry is one message in a conversation, kept as LLM context only.
type HistoryEntry struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// MaxHistoryContext is how many trailing history entries are exposed to the
// entity extractor.
const MaxHistoryContext = 4

// DefaultMeetingTitle is used when the user skips naming the meeting.
const DefaultMeetingTitle = "Scheduled Meeting"

// Session is the per-conversation record of collected scheduling fields.
// A Session is not safe for concurrent use; the store serializes access
// per session key.
type Session struct {
	ID                   string
	DurationMinutes      *int
	DatePhrase           *string
	ResolvedDate         *time.Time
	TimePreference       *string
	Title                *string
	AvailableSlots       []Interval
	SelectedSlot         *Interval
	AwaitingConfirmation bool
	History              []HistoryEntry
	CreatedAt            time.Time
	LastActiveAt         time.Time
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:           id,
		CreatedAt:    now,
		LastActiveAt: now,
	}
}

// Stage derives the conversation stage from field presence. Pure and total:
// any combination of fields maps to exactly one stage.
func (s *Session) Stage() Stage {
	switch {
	case s.SelectedSlot != nil && s.AwaitingConfirmation:
		return StageAwaitingConfirmation
	case s.SelectedSlot != nil:
		return StageAwaitingTitle
	case len(s.AvailableSlots) > 0:
		return StageSlotsShown
	case s.DurationMinutes != nil || s.ResolvedDate != nil || s.TimePreference != nil:
		return StageCollecting
	default:
		return StageEmpty
	}
}

// HasAllFields reports whether duration, date, and time preference are all
// collected.
func (s *Session) HasAllFields() bool {
	return s.DurationMinutes != nil && s.ResolvedDate != nil && s.TimePreference != nil
}

// MissingField returns the highest-priority uncollected field in the fixed
// order duration, date, time, or "" when nothing is missing.
func (s *Session) MissingField() string {
	switch {
	case s.DurationMinutes == nil:
		return "duration"
	case s.ResolvedDate == nil:
		return "date"
	case s.TimePreference == nil:
		return "time"
	default:
		return ""
	}
}

// ClearSearch drops the slot list and any selection made from it. Called
// whenever duration, date, or time preference changes so that a selection
// is never carried across a re-search.
func (s *Session) ClearSearch() {
	s.AvailableSlots = nil
	s.SelectedSlot = nil
	s.AwaitingConfirmation = false
}

// ClearScheduling resets all collected fields after a successful booking,
// keeping the history so the same session id can start a new request.
func (s *Session) ClearScheduling() {
	s.DurationMinutes = nil
	s.DatePhrase = nil
	s.ResolvedDate = nil
	s.TimePreference = nil
	s.Title = nil
	s.ClearSearch()
}

// AppendHistory records one message. History is append-only and never
// consulted as authoritative state.
func (s *Session) AppendHistory(role, text string, now time.Time) {
	s.History = append(s.History, HistoryEntry{Role: role, Text: text, Timestamp: now})
	s.LastActiveAt = now
}

// RecentHistory returns the trailing entries exposed to the extractor.
func (s *Session) RecentHistory() []HistoryEntry {
	if len(s.History) <= MaxHistoryContext {
		return s.History
	}
	return s.History[len(s.History)-MaxHistoryContext:]
}

// Summary renders the collected-so-far fields for the extractor prompt.
func (s *Session) Summary() string {
	var b strings.Builder
	if s.DurationMinutes != nil {
		fmt.Fprintf(&b, "Duration: %d minutes\n", *s.DurationMinutes)
	} else {
		b.WriteString("Duration: not set\n")
	}
	if s.DatePhrase != nil {
		fmt.Fprintf(&b, "Date: %s\n", *s.DatePhrase)
	} else {
		b.WriteString("Date: not set\n")
	}
	if s.TimePreference != nil {
		fmt.Fprintf(&b, "Time: %s\n", *s.TimePreference)
	} else {
		b.WriteString("Time: not set\n")
	}
	if s.Title != nil {
		fmt.Fprintf(&b, "Title: %s\n", *s.Title)
	} else {
		b.WriteString("Title: not set\n")
	}
	return b.String()
}

// MeetingTitle returns the collected title or the default placeholder.
func (s *Session) MeetingTitle() string {
	if s.Title != nil {
		return *s.Title
	}
	return DefaultMeetingTitle
}
