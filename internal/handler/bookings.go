package handler

import (
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/smartsched/scheduler-server-go/internal/errors"
	"github.com/smartsched/scheduler-server-go/internal/httputil"
	"github.com/smartsched/scheduler-server-go/internal/model"
	"github.com/smartsched/scheduler-server-go/internal/repository"
)

type BookingsHandler struct {
	bookings repository.BookingRepository
}

func NewBookingsHandler(bookings repository.BookingRepository) *BookingsHandler {
	return &BookingsHandler{bookings: bookings}
}

// GET /bookings
// Lists the caller's bookings, newest first. Bookings are scoped to the
// session cookie; a caller without one has nothing to list.
func (h *BookingsHandler) Bookings(w http.ResponseWriter, r *http.Request) {
	pagination := ParsePagination(r)

	bookings := []model.Booking{}
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		found, err := h.bookings.FindBySessionID(r.Context(), cookie.Value, pagination.Limit, pagination.Offset)
		if err != nil {
			log.Error().Err(err).Str("sessionId", cookie.Value).Msg("failed to list bookings")
			httputil.WriteError(w, apperrors.Database(err))
			return
		}
		if found != nil {
			bookings = found
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"bookings": bookings,
		"limit":    pagination.Limit,
		"offset":   pagination.Offset,
	})
}
