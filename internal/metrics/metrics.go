package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tutor_portal"

// Reconciler actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

var (
	AttendanceReconciled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attendance_reconciled_total",
		Help:      "Attendance rows touched by roster reconciliation, by action.",
	}, []string{"action"})

	BadgeRefreshed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "schedule_badge_refresh_total",
		Help:      "Badge refresh outcomes: changed, unchanged or locked.",
	}, []string{"result"})

	AttendanceNotesSynced = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attendance_note_sync_total",
		Help:      "Mirrored attendance note writes, by action.",
	}, []string{"action"})

	LockContention = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "schedule_lock_contention_total",
		Help:      "Schedule mutations that found the lock held and had to wait.",
	})

	LockTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "schedule_lock_timeout_total",
		Help:      "Schedule mutations refused after waiting out the lock budget.",
	})
)
