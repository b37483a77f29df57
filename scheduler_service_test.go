package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScheduleInterval(t *testing.T) {
	cases := []struct {
		interval string
		expected time.Duration
	}{
		{"30m", 30 * time.Minute},
		{"6h", 6 * time.Hour},
		{"90s", 90 * time.Second},
		{"hourly", time.Hour},
		{"daily", 24 * time.Hour},
		{"", DEFAULT_SCHEDULE_INTERVAL},
		{"garbage", DEFAULT_SCHEDULE_INTERVAL},
		{"-5m", DEFAULT_SCHEDULE_INTERVAL},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, parseScheduleInterval(tc.interval), tc.interval)
	}
}

func TestSchedulerService_IsDue(t *testing.T) {
	scheduler := NewSchedulerService(nil, nil, nil, nil, time.Minute)
	now := time.Now()

	t.Run("NeverRanIsDue", func(t *testing.T) {
		query := QueryModel{ScheduleInterval: "1h"}
		assert.True(t, scheduler.isDue(query, now))
	})

	t.Run("IntervalElapsed", func(t *testing.T) {
		past := now.Add(-2 * time.Hour)
		query := QueryModel{ScheduleInterval: "1h", LastRunAt: &past}
		assert.True(t, scheduler.isDue(query, now))
	})

	t.Run("IntervalNotElapsed", func(t *testing.T) {
		recent := now.Add(-10 * time.Minute)
		query := QueryModel{ScheduleInterval: "1h", LastRunAt: &recent}
		assert.False(t, scheduler.isDue(query, now))
	})

	t.Run("DailyShorthand", func(t *testing.T) {
		yesterday := now.Add(-25 * time.Hour)
		query := QueryModel{ScheduleInterval: "daily", LastRunAt: &yesterday}
		assert.True(t, scheduler.isDue(query, now))

		thisMorning := now.Add(-2 * time.Hour)
		query.LastRunAt = &thisMorning
		assert.False(t, scheduler.isDue(query, now))
	})
}

func TestSchedulerService_InFlightGuard(t *testing.T) {
	scheduler := NewSchedulerService(nil, nil, nil, nil, time.Minute)

	require.True(t, scheduler.tryAcquire(1))
	assert.False(t, scheduler.tryAcquire(1))
	assert.True(t, scheduler.tryAcquire(2))

	scheduler.release(1)
	assert.True(t, scheduler.tryAcquire(1))
}
