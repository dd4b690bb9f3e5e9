package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/smartsched/scheduler-server-go/internal/model"
)

type BookingRepository interface {
	Create(ctx context.Context, params model.CreateBookingParams) (*model.Booking, error)
	FindBySessionID(ctx context.Context, sessionID string, limit, offset int) ([]model.Booking, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

type bookingRepo struct {
	db *sqlx.DB
}

func NewBookingRepository(db *sqlx.DB) BookingRepository {
	return &bookingRepo{db: db}
}

func (r *bookingRepo) Create(ctx context.Context, params model.CreateBookingParams) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.GetContext(ctx, &booking, `
		INSERT INTO bookings
			(session_id, event_id, title, start_time, end_time, duration_minutes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
	`, params.SessionID, params.EventID, params.Title,
		params.StartTime, params.EndTime, params.DurationMinutes)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepo) FindBySessionID(ctx context.Context, sessionID string, limit, offset int) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT * FROM bookings
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, sessionID, limit, offset)
	return bookings, err
}

func (r *bookingRepo) CountSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM bookings WHERE created_at >= $1
	`, since)
	return count, err
}

func (r *bookingRepo) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM bookings WHERE created_at < $1
	`, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
