package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/smartsched/scheduler-server-go/internal/model"
)

// Replies with no dynamic content.
const (
	replyGreeting = "Hello! I can help you schedule meetings. Would you like to book a meeting?"

	replyRestart = "Let's start fresh! I'll help you schedule a new meeting. How long should the meeting be?"

	replyAskDuration = "Great! I'll help you schedule a meeting. How long should the meeting be? (e.g., 30 minutes, 1 hour)"

	replyClarifyDuration = "Please specify a meeting duration between 15 minutes and 8 hours (e.g., '30 minutes', '1 hour', '2 hours')."

	replyClarifyDate = "I couldn't understand that date. Please try formats like 'tomorrow', 'June 15', 'next Monday', or 'this Friday'."

	replyClarifyTitle = "I didn't catch that. What would you like to name the meeting? Or say 'skip' to use a default name."

	replyClarifyConfirmation = "Please reply 'yes' to confirm the booking or 'no' to see other options."

	replyApology = "I ran into a problem handling that. Please try again, or say 'start over' to begin a new request."

	replyBookingFailed = "I'm sorry - the booking did NOT go through and no event was created. Please reply 'yes' to try again, or say 'start over'."
)

// How many slots are shown to the user at once.
const displaySlotLimit = 5

func replyAskDate(durationMinutes int) string {
	return fmt.Sprintf("Perfect! A %d-minute meeting. What date would you prefer?", durationMinutes)
}

func replyAskTime(date string) string {
	return fmt.Sprintf("Got it! %s. What time do you prefer? (e.g., 'morning', 'afternoon', '2 PM', 'any time')", date)
}

func replyNoSlots(durationMinutes int, date string) string {
	return fmt.Sprintf("No available %d-minute slots found on %s. Would you like to try a different date?", durationMinutes, date)
}

func replySlotOutOfRange(count int) string {
	return fmt.Sprintf("Please choose a number between 1 and %d. Just say the number (e.g., '1' or '2').", count)
}

func formatDate(t time.Time) string {
	return t.Format("Monday, January 2")
}

func formatClock(t time.Time) string {
	return t.Format("03:04 PM")
}

func formatSlotRange(slot model.Interval) string {
	return fmt.Sprintf("%s - %s %s",
		formatClock(slot.Start), formatClock(slot.End), slot.Start.Format("MST"))
}

func formatSlotList(sess *model.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I found these available %d-minute slots on %s:\n\n",
		*sess.DurationMinutes, formatDate(*sess.ResolvedDate))

	shown := sess.AvailableSlots
	if len(shown) > displaySlotLimit {
		shown = shown[:displaySlotLimit]
	}
	for i, slot := range shown {
		fmt.Fprintf(&b, "%d. %s\n", i+1, formatSlotRange(slot))
	}

	b.WriteString("\nWhich slot would you prefer? Just say the number (e.g., '1' or '2').")
	return b.String()
}

func formatSlotSelected(sess *model.Session) string {
	slot := *sess.SelectedSlot
	return fmt.Sprintf(
		"Great choice! I've selected:\n\n"+
			"Date: %s\n"+
			"Time: %s\n"+
			"Duration: %d minutes\n\n"+
			"What would you like to name this meeting? (e.g., 'Team Standup', 'Client Call', or just say 'skip' for a default name)",
		formatDate(slot.Start), formatSlotRange(slot), *sess.DurationMinutes)
}

func formatConfirmation(sess *model.Session) string {
	slot := *sess.SelectedSlot
	return fmt.Sprintf(
		"Perfect! Let me confirm all the details:\n\n"+
			"Title: %s\n"+
			"Date: %s\n"+
			"Time: %s\n"+
			"Duration: %d minutes\n\n"+
			"Should I book this meeting? Reply 'yes' to confirm or 'no' to make changes.",
		sess.MeetingTitle(), formatDate(slot.Start), formatSlotRange(slot), *sess.DurationMinutes)
}

func formatBooked(title string, slot model.Interval, durationMinutes int) string {
	return fmt.Sprintf(
		"Meeting booked successfully!\n\n"+
			"Title: %s\n"+
			"Date: %s\n"+
			"Time: %s\n"+
			"Duration: %d minutes\n\n"+
			"The meeting has been added to your calendar. Need to schedule another meeting?",
		title, formatDate(slot.Start), formatSlotRange(slot), durationMinutes)
}
