package dispatch

import (
	"time"

	"ecocollect-backend/internal/models"
)

// Conflict reasons surfaced to the dispatcher.
const (
	ReasonPickupDateOverlap = "pickup date overlap"
	ReasonSameDayComplaint  = "same-day complaint overlap"
	ReasonActiveComplaint   = "active complaint overlap"
	ReasonTodayPickup       = "today's pickup overlap"
)

// CheckAssignment decides whether a driver with the given active tasks can
// take on task. Pickups are date-scoped: they conflict only with active
// pickups on the same calendar day, plus any active complaint when the
// target day is today. Complaints are treated as due today: they conflict
// with any other active complaint and with active pickups dated today.
// Rules are evaluated in that order; the first violation is reported.
//
// Returns nil when the assignment is allowed. Callers must refuse the
// assignment entirely on a non-nil result; no partial state is written.
func CheckAssignment(now time.Time, task models.Task, active []models.Task) *ConflictError {
	today := Midnight(now)

	// A pickup without a stored date is treated like a complaint: due today.
	targetDate := today
	if task.Kind == models.KindPickup && task.PickupDate != nil {
		targetDate = Midnight(time.Unix(*task.PickupDate, 0).In(now.Location()))
	}

	var pickupOnTarget, pickupToday, hasComplaint bool
	for _, other := range active {
		if other.ID == task.ID || !other.Status.IsActive() {
			continue
		}
		switch other.Kind {
		case models.KindPickup:
			day := today
			if other.PickupDate != nil {
				day = Midnight(time.Unix(*other.PickupDate, 0).In(now.Location()))
			}
			if day.Equal(targetDate) {
				pickupOnTarget = true
			}
			if day.Equal(today) {
				pickupToday = true
			}
		case models.KindComplaint:
			hasComplaint = true
		}
	}

	if task.Kind == models.KindPickup {
		if pickupOnTarget {
			return &ConflictError{Reason: ReasonPickupDateOverlap}
		}
		if targetDate.Equal(today) && hasComplaint {
			return &ConflictError{Reason: ReasonSameDayComplaint}
		}
		return nil
	}

	if hasComplaint {
		return &ConflictError{Reason: ReasonActiveComplaint}
	}
	if pickupToday {
		return &ConflictError{Reason: ReasonTodayPickup}
	}
	return nil
}
