package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIntervalOverlaps(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Kolkata")
	at := func(h, m int) time.Time {
		return time.Date(2025, 6, 15, h, m, 0, 0, loc)
	}

	t.Run("touching endpoints do not overlap", func(t *testing.T) {
		a := Interval{Start: at(9, 0), End: at(10, 0)}
		b := Interval{Start: at(10, 0), End: at(11, 0)}
		assert.False(t, a.Overlaps(b))
		assert.False(t, b.Overlaps(a))
	})

	t.Run("one minute of overlap conflicts", func(t *testing.T) {
		a := Interval{Start: at(9, 0), End: at(10, 1)}
		b := Interval{Start: at(10, 0), End: at(11, 0)}
		assert.True(t, a.Overlaps(b))
		assert.True(t, b.Overlaps(a))
	})

	t.Run("containment overlaps", func(t *testing.T) {
		outer := Interval{Start: at(9, 0), End: at(12, 0)}
		inner := Interval{Start: at(10, 0), End: at(10, 30)}
		assert.True(t, outer.Overlaps(inner))
		assert.True(t, inner.Overlaps(outer))
	})

	t.Run("disjoint intervals do not overlap", func(t *testing.T) {
		a := Interval{Start: at(9, 0), End: at(9, 30)}
		b := Interval{Start: at(14, 0), End: at(15, 0)}
		assert.False(t, a.Overlaps(b))
	})
}

func TestIntervalDuration(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Kolkata")
	i := Interval{
		Start: time.Date(2025, 6, 15, 9, 0, 0, 0, loc),
		End:   time.Date(2025, 6, 15, 10, 30, 0, 0, loc),
	}
	assert.Equal(t, 90*time.Minute, i.Duration())
}
