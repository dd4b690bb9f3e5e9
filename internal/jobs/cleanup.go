package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/smartsched/scheduler-server-go/internal/repository"
	"github.com/smartsched/scheduler-server-go/internal/store"
)

// CleanupJob periodically prunes idle conversation sessions from memory and
// expires old booking records from the database.
type CleanupJob struct {
	sessions         *store.SessionStore
	bookings         repository.BookingRepository
	sessionTTL       time.Duration
	bookingRetention time.Duration
	interval         time.Duration
	done             chan struct{}
}

func NewCleanupJob(
	sessions *store.SessionStore,
	bookings repository.BookingRepository,
	sessionTTL time.Duration,
	bookingRetention time.Duration,
	interval time.Duration,
) *CleanupJob {
	return &CleanupJob{
		sessions:         sessions,
		bookings:         bookings,
		sessionTTL:       sessionTTL,
		bookingRetention: bookingRetention,
		interval:         interval,
		done:             make(chan struct{}),
	}
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("cleanup job started")
}

func (j *CleanupJob) Stop() {
	close(j.done)
	log.Info().Msg("cleanup job stopped")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cleanup()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.cleanup()
		}
	}
}

func (j *CleanupJob) cleanup() {
	now := time.Now()

	if pruned := j.sessions.PruneIdle(now.Add(-j.sessionTTL)); pruned > 0 {
		log.Info().Int("count", pruned).Msg("pruned idle sessions")
	}

	if j.bookings == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := j.bookings.DeleteOlderThan(ctx, now.Add(-j.bookingRetention))
	if err != nil {
		log.Error().Err(err).Msg("failed to expire old bookings")
	} else if count > 0 {
		log.Info().Int64("count", count).Msg("expired old bookings")
	}
}
