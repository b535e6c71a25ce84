package dispatch

import "ecocollect-backend/internal/models"

// TerminalStatus returns the terminal success status for a task kind:
// Completed for pickups, Resolved for complaints.
func TerminalStatus(kind models.TaskKind) models.TaskStatus {
	if kind == models.KindComplaint {
		return models.StatusResolved
	}
	return models.StatusCompleted
}

// validateAdvance checks the driver-side status ladder:
//
//	Pending -> Assigned (self-claim)
//	Assigned -> Accepted -> On the way -> Completed/Resolved
//
// Completed applies to pickups and Resolved to complaints. Anything else
// is a StateError carrying the current status.
func validateAdvance(kind models.TaskKind, from, to models.TaskStatus) *StateError {
	allowed := false
	switch to {
	case models.StatusAssigned:
		allowed = from == models.StatusPending
	case models.StatusAccepted:
		allowed = from == models.StatusAssigned
	case models.StatusOnTheWay:
		allowed = from == models.StatusAccepted
	case models.StatusCompleted:
		allowed = from == models.StatusOnTheWay && kind == models.KindPickup
	case models.StatusResolved:
		allowed = from == models.StatusOnTheWay && kind == models.KindComplaint
	}
	if !allowed {
		return &StateError{Current: from, Message: "cannot move task to " + string(to)}
	}
	return nil
}

// canReschedule reports whether a pickup in the given status may be moved
// to a new date. On the way, Completed and Cancelled pickups are locked.
func canReschedule(status models.TaskStatus) bool {
	switch status {
	case models.StatusPending, models.StatusAssigned, models.StatusAccepted:
		return true
	}
	return false
}
