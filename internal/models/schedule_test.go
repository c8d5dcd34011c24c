package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestScheduleComputeBadge(t *testing.T) {
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		schedule Schedule
		want     Badge
	}{
		{
			name:     "start in the future",
			schedule: Schedule{StartTime: ptr(now.Add(time.Hour)), StatusBadge: BadgeCompleted},
			want:     BadgeUpcoming,
		},
		{
			name:     "inside the window",
			schedule: Schedule{StartTime: ptr(now.Add(-time.Hour)), EndTime: ptr(now.Add(time.Hour))},
			want:     BadgeOngoing,
		},
		{
			name:     "end in the past",
			schedule: Schedule{StartTime: ptr(now.Add(-2 * time.Hour)), EndTime: ptr(now.Add(-time.Hour))},
			want:     BadgeCompleted,
		},
		{
			name:     "open ended starting exactly now",
			schedule: Schedule{StartTime: ptr(now)},
			want:     BadgeOngoing,
		},
		{
			name:     "open ended already started keeps badge",
			schedule: Schedule{StartTime: ptr(now.Add(-time.Hour)), StatusBadge: BadgeCanceled},
			want:     BadgeCanceled,
		},
		{
			name:     "no start keeps badge",
			schedule: Schedule{StatusBadge: BadgeCompleted},
			want:     BadgeCompleted,
		},
		{
			name:     "no start and no badge",
			schedule: Schedule{},
			want:     BadgeUpcoming,
		},
		{
			name: "locked",
			schedule: Schedule{
				StartTime:      ptr(now.Add(time.Hour)),
				StatusBadge:    BadgeCompleted,
				StatusLockedAt: ptr(now.Add(-time.Minute)),
			},
			want: BadgeCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.schedule.ComputeBadge(now))
		})
	}
}

func TestScheduleComputedStatus(t *testing.T) {
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		schedule Schedule
		want     Badge
	}{
		{"canceled sticks", Schedule{StatusBadge: BadgeCanceled, StartTime: ptr(now.Add(time.Hour))}, BadgeCanceled},
		{"no start uses badge", Schedule{StatusBadge: BadgeOngoing}, BadgeOngoing},
		{"no start no badge", Schedule{}, BadgeUpcoming},
		{"future", Schedule{StartTime: ptr(now.Add(time.Minute))}, BadgeUpcoming},
		{"end equals now", Schedule{StartTime: ptr(now.Add(-time.Hour)), EndTime: ptr(now)}, BadgeOngoing},
		{"open ended past", Schedule{StartTime: ptr(now.Add(-time.Hour))}, BadgeCompleted},
		{"ended", Schedule{StartTime: ptr(now.Add(-2 * time.Hour)), EndTime: ptr(now.Add(-time.Hour))}, BadgeCompleted},
		{"lock ignored", Schedule{StartTime: ptr(now.Add(time.Hour)), StatusBadge: BadgeCompleted, StatusLockedAt: ptr(now)}, BadgeUpcoming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.schedule.ComputedStatus(now))
		})
	}
}

func TestBadgeColor(t *testing.T) {
	assert.Equal(t, "#10b981", BadgeOngoing.Color())
	assert.Equal(t, "#0ea5e9", BadgeCompleted.Color())
	assert.Equal(t, "#ef4444", BadgeCanceled.Color())
	assert.Equal(t, "#f97316", BadgeUpcoming.Color())
	assert.Equal(t, "#f97316", Badge("").Color())
}

func TestTrashedMode(t *testing.T) {
	deleted := ptr(time.Now())

	assert.True(t, WithoutTrashed.Match(nil))
	assert.False(t, WithoutTrashed.Match(deleted))
	assert.True(t, WithTrashed.Match(nil))
	assert.True(t, WithTrashed.Match(deleted))
	assert.False(t, OnlyTrashed.Match(nil))
	assert.True(t, OnlyTrashed.Match(deleted))
}
