package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/smartsched/scheduler-server-go/internal/model"
	"github.com/smartsched/scheduler-server-go/internal/store"
)

type mockBookingRepo struct {
	deletedBefore time.Time
	deleteCount   int64
	deleteCalls   int
}

func (m *mockBookingRepo) Create(ctx context.Context, params model.CreateBookingParams) (*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepo) FindBySessionID(ctx context.Context, sessionID string, limit, offset int) ([]model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepo) CountSince(ctx context.Context, since time.Time) (int, error) {
	return 0, nil
}

func (m *mockBookingRepo) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	m.deleteCalls++
	m.deletedBefore = before
	return m.deleteCount, nil
}

func TestCleanupJob(t *testing.T) {
	t.Run("prunes idle sessions and expires old bookings", func(t *testing.T) {
		sessions := store.NewSessionStore()
		sess, release := sessions.Acquire("stale")
		sess.LastActiveAt = time.Now().Add(-2 * time.Hour)
		release()
		_, release = sessions.Acquire("fresh")
		release()

		bookings := &mockBookingRepo{deleteCount: 3}
		job := NewCleanupJob(sessions, bookings, time.Hour, 90*24*time.Hour, time.Minute)

		job.cleanup()

		assert.Equal(t, 1, sessions.Len())
		assert.Equal(t, 1, bookings.deleteCalls)
		assert.WithinDuration(t, time.Now().Add(-90*24*time.Hour), bookings.deletedBefore, time.Minute)
	})

	t.Run("runs without a booking repository", func(t *testing.T) {
		job := NewCleanupJob(store.NewSessionStore(), nil, time.Hour, time.Hour, time.Minute)
		assert.NotPanics(t, job.cleanup)
	})

	t.Run("start and stop are clean", func(t *testing.T) {
		job := NewCleanupJob(store.NewSessionStore(), &mockBookingRepo{}, time.Hour, time.Hour, time.Hour)
		job.Start()
		job.Stop()
	})
}
