package dispatch

import (
	"fmt"

	"ecocollect-backend/internal/models"
)

// ConflictError rejects an assignment that would double-book a driver.
// Recoverable: the dispatcher picks another driver or date.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return "assignment conflict: " + e.Reason
}

// AuthError rejects a transition the acting account is not permitted to make.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// StateError rejects a transition requested from a status that disallows it.
type StateError struct {
	Current models.TaskStatus
	Message string
}

func (e *StateError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (current status: %s)", e.Message, e.Current)
	}
	return fmt.Sprintf("transition not allowed from status %s", e.Current)
}

// NotFoundError marks an absent task or driver id.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}
