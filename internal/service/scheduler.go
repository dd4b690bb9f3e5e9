package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/smartsched/scheduler-server-go/internal/audit"
	"github.com/smartsched/scheduler-server-go/internal/calendar"
	"github.com/smartsched/scheduler-server-go/internal/config"
	apperrors "github.com/smartsched/scheduler-server-go/internal/errors"
	"github.com/smartsched/scheduler-server-go/internal/model"
	"github.com/smartsched/scheduler-server-go/internal/repository"
	"github.com/smartsched/scheduler-server-go/internal/store"
)

const (
	MinDurationMinutes = 15
	MaxDurationMinutes = 480
)

// restartKeywords clear a session unconditionally, anywhere in the message.
var restartKeywords = []string{"start over", "restart", "reset", "new meeting", "begin again"}

// titleSkipWords let the user decline naming the meeting.
var titleSkipWords = []string{"skip", "no title", "default", "none"}

// titlePrefixes are stripped from free-text title answers.
var titlePrefixes = []string{"call it", "name it", "title is", "it's called", "meeting about"}

// EntityExtractor recognizes structured scheduling fields in free text.
// It is a fallible, best-effort oracle: its output is validated before any
// of it is committed.
type EntityExtractor interface {
	Extract(ctx context.Context, userText, summary string, history []model.HistoryEntry) (model.Extraction, error)
}

// DateResolver turns a natural-language date phrase into a calendar date.
// ok=false means the phrase did not resolve; err is a dependency failure.
type DateResolver interface {
	ResolveDate(ctx context.Context, phrase string, now time.Time) (time.Time, bool, error)
}

// SchedulerService drives one scheduling conversation per session: it merges
// extracted fields into the session, decides the next question, searches for
// slots, and books the confirmed one. Calls for the same session are
// serialized by the store's per-key lock.
type SchedulerService struct {
	store     *store.SessionStore
	extractor EntityExtractor
	resolver  DateResolver
	slots     *SlotFinder
	calendar  calendar.Calendar
	bookings  repository.BookingRepository
	loc       *time.Location
	now       func() time.Time
}

func NewSchedulerService(
	sessionStore *store.SessionStore,
	extractor EntityExtractor,
	resolver DateResolver,
	slotFinder *SlotFinder,
	cal calendar.Calendar,
	bookings repository.BookingRepository,
	loc *time.Location,
) *SchedulerService {
	return &SchedulerService{
		store:     sessionStore,
		extractor: extractor,
		resolver:  resolver,
		slots:     slotFinder,
		calendar:  cal,
		bookings:  bookings,
		loc:       loc,
		now:       time.Now,
	}
}

// ProcessMessage handles one user message and returns exactly one reply.
// Every failure is contained here: the transport never sees an error from
// the core, and a failed turn leaves the session unchanged apart from
// history so the user can retry.
func (s *SchedulerService) ProcessMessage(ctx context.Context, sessionID, text string) (reply string) {
	sess, release := s.store.Acquire(sessionID)
	defer release()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("sessionId", sessionID).Msg("recovered panic while processing message")
			reply = replyApology
			sess.AppendHistory("assistant", reply, s.now().In(s.loc))
		}
	}()

	sess.AppendHistory("user", text, s.now().In(s.loc))
	reply = s.handleTurn(ctx, sess, text)
	sess.AppendHistory("assistant", reply, s.now().In(s.loc))
	return reply
}

// Reset discards a session entirely.
func (s *SchedulerService) Reset(sessionID string) {
	s.store.Delete(sessionID)
	audit.Log(audit.Event{Type: audit.EventSessionReset, SessionID: sessionID})
	log.Info().Str("sessionId", sessionID).Msg("session reset")
}

func (s *SchedulerService) handleTurn(ctx context.Context, sess *model.Session, text string) string {
	// Restart keywords win over everything, including mid-booking.
	if isRestartRequest(text) {
		*sess = *model.NewSession(sess.ID, s.now().In(s.loc))
		audit.Log(audit.Event{Type: audit.EventSessionRestarted, SessionID: sess.ID})
		return replyRestart
	}

	extraction, err := s.extract(ctx, sess, text)
	if err != nil {
		log.Error().Err(err).Str("sessionId", sess.ID).Msg("entity extraction failed")
		return replyApology
	}

	committed, clarification, err := s.merge(ctx, sess, text, extraction)
	if err != nil {
		log.Error().Err(err).Str("sessionId", sess.ID).Msg("date resolution failed")
		return replyApology
	}

	// Explicit confirmation and slot selection short-circuit the priority
	// rules when the session is in a state where they mean something.
	if sess.Stage() == model.StageAwaitingConfirmation {
		return s.handleConfirmation(ctx, sess, extraction, committed)
	}
	if sess.Stage() == model.StageAwaitingTitle {
		return s.handleTitle(sess, text, extraction)
	}
	if extraction.SlotNumber != nil && len(sess.AvailableSlots) > 0 && sess.SelectedSlot == nil {
		return s.handleSlotSelection(sess, *extraction.SlotNumber)
	}

	// Field-level validation failures re-prompt without advancing.
	if clarification != "" {
		return clarification
	}

	switch {
	case len(sess.AvailableSlots) > 0 && sess.SelectedSlot == nil:
		// Re-render without re-searching; the merge step already cleared
		// this list if any input actually changed.
		return formatSlotList(sess)

	case sess.HasAllFields():
		return s.searchAndShowSlots(ctx, sess)

	default:
		return s.askMissingField(sess, text, committed, extraction)
	}
}

// merge applies recognized fields to the session with field-specific
// validation. It reports whether anything was committed, and a clarification
// reply when a supplied value failed validation and the field is still
// missing. Any committed change to the duration/date/preference triple
// clears the slot search so a selection is never carried across it.
func (s *SchedulerService) merge(ctx context.Context, sess *model.Session, text string, extraction model.Extraction) (committed bool, clarification string, err error) {
	collecting := sess.Stage() == model.StageEmpty || sess.Stage() == model.StageCollecting
	missing := sess.MissingField()

	// Stage everything first. Nothing touches the session until every
	// resolution has succeeded, so a dependency failure leaves it intact.
	var newDuration *int
	if extraction.DurationMinutes != nil {
		d := *extraction.DurationMinutes
		if !isValidDuration(d) {
			clarification = replyClarifyDuration
		} else if sess.DurationMinutes == nil || *sess.DurationMinutes != d {
			newDuration = &d
		}
	}

	datePhrase := extraction.DatePhrase
	if datePhrase == nil && collecting && extraction.IsEmpty() && missing == "date" {
		// The user is answering the date question directly.
		datePhrase = &text
	}
	var newDate *time.Time
	var newPhrase *string
	if datePhrase != nil {
		resolved, ok, resolveErr := s.resolveDate(ctx, *datePhrase)
		if resolveErr != nil {
			return false, "", resolveErr
		}
		if !ok {
			// Dropped silently; clarify only if the date is still missing.
			if sess.ResolvedDate == nil && clarification == "" {
				clarification = replyClarifyDate
			}
		} else {
			phrase := strings.TrimSpace(*datePhrase)
			newPhrase = &phrase
			if sess.ResolvedDate == nil || !sess.ResolvedDate.Equal(resolved) {
				newDate = &resolved
			}
		}
	}

	timePhrase := extraction.TimePhrase
	if timePhrase == nil && collecting && extraction.IsEmpty() && missing == "time" {
		// Opaque by contract: the slot search treats unknown text as "any".
		timePhrase = &text
	}
	var newPreference *string
	if timePhrase != nil {
		v := strings.ToLower(strings.TrimSpace(*timePhrase))
		if v != "" && (sess.TimePreference == nil || *sess.TimePreference != v) {
			newPreference = &v
		}
	}

	if newDuration != nil {
		sess.DurationMinutes = newDuration
		sess.ClearSearch()
		committed = true
	}
	if newPhrase != nil {
		sess.DatePhrase = newPhrase
	}
	if newDate != nil {
		sess.ResolvedDate = newDate
		sess.ClearSearch()
		committed = true
	}
	if newPreference != nil {
		sess.TimePreference = newPreference
		sess.ClearSearch()
		committed = true
	}

	if extraction.Title != nil && sess.Stage() != model.StageAwaitingTitle {
		if t := strings.TrimSpace(*extraction.Title); t != "" {
			sess.Title = &t
			committed = true
		}
	}

	return committed, clarification, nil
}

func (s *SchedulerService) handleConfirmation(ctx context.Context, sess *model.Session, extraction model.Extraction, committed bool) string {
	if extraction.Confirmation != nil {
		switch *extraction.Confirmation {
		case "yes":
			return s.book(ctx, sess)
		case "no":
			// Same slot list, redisplayed verbatim; no re-search.
			sess.SelectedSlot = nil
			sess.AwaitingConfirmation = false
			return "No problem! Here are the available slots again:\n\n" + formatSlotList(sess)
		}
	}
	if committed {
		// Something benign changed (e.g. a new title); show the updated
		// summary instead of scolding.
		return formatConfirmation(sess)
	}
	return replyClarifyConfirmation
}

func (s *SchedulerService) handleTitle(sess *model.Session, text string, extraction model.Extraction) string {
	if isTitleSkip(text) {
		sess.Title = nil
		sess.AwaitingConfirmation = true
		return formatConfirmation(sess)
	}

	title := ""
	if extraction.Title != nil {
		title = strings.TrimSpace(*extraction.Title)
	}
	if title == "" {
		title = cleanTitle(text)
	}
	if title == "" {
		return replyClarifyTitle
	}

	sess.Title = &title
	sess.AwaitingConfirmation = true
	return formatConfirmation(sess)
}

func (s *SchedulerService) handleSlotSelection(sess *model.Session, number int) string {
	if number < 1 || number > len(sess.AvailableSlots) {
		// The same re-prompt regardless of how far out of range.
		return replySlotOutOfRange(len(sess.AvailableSlots))
	}
	slot := sess.AvailableSlots[number-1]
	sess.SelectedSlot = &slot
	sess.AwaitingConfirmation = false
	return formatSlotSelected(sess)
}

func (s *SchedulerService) searchAndShowSlots(ctx context.Context, sess *model.Session) string {
	searchCtx, cancel := context.WithTimeout(ctx, config.CalendarTimeout)
	defer cancel()

	slots, err := s.slots.FindAvailableSlots(searchCtx, *sess.DurationMinutes, *sess.ResolvedDate, *sess.TimePreference)
	if err != nil {
		log.Error().Err(apperrors.Calendar("find available slots", err)).Str("sessionId", sess.ID).Msg("slot search failed")
		return "I had trouble checking your calendar. Please try again, or say 'start over'."
	}

	if len(slots) == 0 {
		return replyNoSlots(*sess.DurationMinutes, formatDate(*sess.ResolvedDate))
	}

	sess.AvailableSlots = slots
	sess.SelectedSlot = nil
	return formatSlotList(sess)
}

func (s *SchedulerService) book(ctx context.Context, sess *model.Session) string {
	slot := *sess.SelectedSlot
	title := sess.MeetingTitle()
	duration := *sess.DurationMinutes

	createCtx, cancel := context.WithTimeout(ctx, config.CalendarTimeout)
	defer cancel()

	eventID, err := s.calendar.CreateEvent(createCtx, calendar.CreateEventParams{
		Title:       title,
		Description: "Scheduled via Smart Scheduler Assistant\nDuration: " + formatMinutes(duration),
		Start:       slot.Start,
		End:         slot.End,
	})
	if err != nil {
		// The one failure that must be called out explicitly: the user
		// expects a calendar event that does not exist.
		log.Error().Err(apperrors.BookingFailed(err)).Str("sessionId", sess.ID).Msg("booking failed")
		audit.Log(audit.Event{Type: audit.EventBookingFailed, SessionID: sess.ID})
		return replyBookingFailed
	}

	if s.bookings != nil {
		recordCtx, cancelRecord := context.WithTimeout(ctx, config.DBPingTimeout)
		defer cancelRecord()
		if _, err := s.bookings.Create(recordCtx, model.CreateBookingParams{
			SessionID:       sess.ID,
			EventID:         eventID,
			Title:           title,
			StartTime:       slot.Start,
			EndTime:         slot.End,
			DurationMinutes: duration,
		}); err != nil {
			// The calendar event is the source of truth; the audit row is
			// best effort.
			log.Error().Err(apperrors.Database(err)).Str("eventId", eventID).Msg("failed to record booking")
		}
	}

	audit.Log(audit.Event{
		Type:      audit.EventBookingCreated,
		SessionID: sess.ID,
		EventID:   eventID,
		Details:   map[string]interface{}{"title": title, "durationMinutes": duration},
	})

	sess.ClearScheduling()
	return formatBooked(title, slot, duration)
}

func (s *SchedulerService) askMissingField(sess *model.Session, text string, committed bool, extraction model.Extraction) string {
	switch sess.MissingField() {
	case "duration":
		if sess.Stage() == model.StageEmpty && !committed && !wantsMeeting(text, extraction) {
			return replyGreeting
		}
		return replyAskDuration
	case "date":
		return replyAskDate(*sess.DurationMinutes)
	default:
		return replyAskTime(formatDate(*sess.ResolvedDate))
	}
}

func (s *SchedulerService) extract(ctx context.Context, sess *model.Session, text string) (model.Extraction, error) {
	extractCtx, cancel := context.WithTimeout(ctx, config.GeminiTimeout)
	defer cancel()
	extraction, err := s.extractor.Extract(extractCtx, text, sess.Summary(), sess.RecentHistory())
	if err != nil {
		return model.Extraction{}, apperrors.Extraction(err)
	}
	return extraction, nil
}

func (s *SchedulerService) resolveDate(ctx context.Context, phrase string) (time.Time, bool, error) {
	resolveCtx, cancel := context.WithTimeout(ctx, config.GeminiTimeout)
	defer cancel()
	resolved, ok, err := s.resolver.ResolveDate(resolveCtx, phrase, s.now().In(s.loc))
	if err != nil {
		return time.Time{}, false, apperrors.External("date resolver", err)
	}
	return resolved, ok, nil
}

func isValidDuration(minutes int) bool {
	return minutes >= MinDurationMinutes && minutes <= MaxDurationMinutes
}

func isRestartRequest(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range restartKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func isTitleSkip(text string) bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	for _, word := range titleSkipWords {
		if normalized == word {
			return true
		}
	}
	return false
}

// cleanTitle strips conversational prefixes from a free-text title answer.
func cleanTitle(text string) string {
	title := strings.TrimSpace(text)
	lower := strings.ToLower(title)
	for _, prefix := range titlePrefixes {
		if strings.HasPrefix(lower, prefix) {
			title = strings.TrimSpace(title[len(prefix):])
			break
		}
	}
	return title
}

func wantsMeeting(text string, extraction model.Extraction) bool {
	if extraction.Intent == model.IntentGreeting {
		return true
	}
	lower := strings.ToLower(text)
	for _, word := range []string{"meeting", "schedule", "book"} {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

func formatMinutes(minutes int) string {
	return strconv.Itoa(minutes) + " minutes"
}
