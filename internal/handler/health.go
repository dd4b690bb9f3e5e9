package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/smartsched/scheduler-server-go/internal/config"
	"github.com/smartsched/scheduler-server-go/internal/repository"
	"github.com/smartsched/scheduler-server-go/internal/store"
)

// HealthHandler reports dependency status plus a couple of operational
// gauges. The ping functions are injected so the handler needs no live
// connections in tests.
type HealthHandler struct {
	checkDB    func(ctx context.Context) error
	checkRedis func(ctx context.Context) error
	sessions   *store.SessionStore
	bookings   repository.BookingRepository
}

func NewHealthHandler(
	checkDB func(ctx context.Context) error,
	checkRedis func(ctx context.Context) error,
	sessions *store.SessionStore,
	bookings repository.BookingRepository,
) *HealthHandler {
	return &HealthHandler{
		checkDB:    checkDB,
		checkRedis: checkRedis,
		sessions:   sessions,
		bookings:   bookings,
	}
}

// GET /health
// 503 when a dependency ping fails; the body still names which one.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	healthCtx, cancel := context.WithTimeout(r.Context(), config.DBPingTimeout)
	defer cancel()

	status := http.StatusOK
	dbStatus := "ok"
	if err := h.checkDB(healthCtx); err != nil {
		status = http.StatusServiceUnavailable
		dbStatus = "unavailable"
	}
	redisStatus := "ok"
	if err := h.checkRedis(healthCtx); err != nil {
		status = http.StatusServiceUnavailable
		redisStatus = "unavailable"
	}

	bookingsLast24h := 0
	if dbStatus == "ok" {
		count, err := h.bookings.CountSince(healthCtx, time.Now().Add(-24*time.Hour))
		if err != nil {
			log.Warn().Err(err).Msg("failed to count recent bookings")
		} else {
			bookingsLast24h = count
		}
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}

	writeJSON(w, status, map[string]any{
		"status":          overall,
		"database":        dbStatus,
		"redis":           redisStatus,
		"sessions":        h.sessions.Len(),
		"bookingsLast24h": bookingsLast24h,
		"timestamp":       time.Now().UnixMilli(),
	})
}
