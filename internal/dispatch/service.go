package dispatch

import (
	"time"

	"ecocollect-backend/internal/models"
)

// Clock abstracts "today" so the engine stays deterministic under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}

// TaskStore is the persistence surface the engine needs for tasks. All
// writes are conditional on the previously observed status so that two
// racing requests cannot both apply: the losing write reports false.
// Lookups return (nil, nil) for an absent id.
type TaskStore interface {
	TaskByID(id string) (*models.Task, error)
	// ActiveForDriver returns the driver's tasks in Assigned, Accepted or
	// On the way, both kinds.
	ActiveForDriver(driverID string) ([]models.Task, error)
	// SetAssignment writes status and assigned driver together. A nil
	// driverID clears the assignment.
	SetAssignment(id string, from, to models.TaskStatus, driverID *string) (bool, error)
	// AdvanceStatus moves the status without touching the assignment.
	AdvanceStatus(id string, from, to models.TaskStatus) (bool, error)
	// CompleteTask writes the terminal status and the collected weight.
	CompleteTask(id string, from, to models.TaskStatus, collectedKg float64) (bool, error)
	// ReschedulePickup resets the task to Pending, clears the driver and
	// moves the pickup window, all in one write.
	ReschedulePickup(id string, from models.TaskStatus, pickupDate int64, pickupTime string) (bool, error)
}

// DriverStore is the persistence surface for driver accounts.
type DriverStore interface {
	DriverByID(id string) (*models.User, error)
	ListDrivers() ([]models.User, error)
	// AddCollectedWeight applies the capacity rule atomically: the load
	// increments, or resets to zero once it reaches the driver's ceiling,
	// in a single statement. Returns the new load.
	AddCollectedWeight(driverID string, collectedKg float64) (float64, error)
}

// Actor identifies who is requesting a transition.
type Actor struct {
	ID   string
	Role string
}

// Service is the dispatch engine: availability, conflict checking, the
// task lifecycle and load accounting over injected repositories.
type Service struct {
	tasks   TaskStore
	drivers DriverStore
	clock   Clock
}

func NewService(tasks TaskStore, drivers DriverStore, clock Clock) *Service {
	if clock == nil {
		clock = SystemClock
	}
	return &Service{tasks: tasks, drivers: drivers, clock: clock}
}

// ListDriversWithAvailability returns every driver decorated with their
// busy-state, recomputed from active tasks on each call.
func (s *Service) ListDriversWithAvailability() ([]models.DriverAvailability, error) {
	drivers, err := s.drivers.ListDrivers()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	out := make([]models.DriverAvailability, 0, len(drivers))
	for _, d := range drivers {
		active, err := s.tasks.ActiveForDriver(d.ID)
		if err != nil {
			return nil, err
		}
		av := BusyState(now, active)
		dates := make([]string, len(av.BusyDates))
		for i, day := range av.BusyDates {
			dates[i] = day.Format("2006-01-02")
		}
		out = append(out, models.DriverAvailability{
			UserResponse: d.ToUserResponse(),
			IsBusy:       av.IsBusy,
			BusyDates:    dates,
		})
	}
	return out, nil
}

// AssignDriver assigns a driver to a task, or unassigns it when driverID
// is nil. Assignment runs the conflict check against the driver's active
// tasks; unassignment resets the task to Pending.
func (s *Service) AssignDriver(taskID string, driverID *string) (*models.Task, error) {
	task, err := s.tasks.TaskByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, &NotFoundError{Resource: "task", ID: taskID}
	}
	if task.Status.IsTerminal() {
		return nil, &StateError{Current: task.Status, Message: "task is already finished"}
	}

	if driverID == nil {
		ok, err := s.tasks.SetAssignment(task.ID, task.Status, models.StatusPending, nil)
		if err != nil {
			return nil, err
		}
		if !ok {
			return s.retryStateError(taskID)
		}
		return s.tasks.TaskByID(taskID)
	}

	driver, err := s.drivers.DriverByID(*driverID)
	if err != nil {
		return nil, err
	}
	if driver == nil || driver.Role != models.RoleDriver {
		return nil, &NotFoundError{Resource: "driver", ID: *driverID}
	}

	active, err := s.tasks.ActiveForDriver(driver.ID)
	if err != nil {
		return nil, err
	}
	if conflict := CheckAssignment(s.clock.Now(), *task, active); conflict != nil {
		return nil, conflict
	}

	ok, err := s.tasks.SetAssignment(task.ID, task.Status, models.StatusAssigned, driverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.retryStateError(taskID)
	}
	return s.tasks.TaskByID(taskID)
}

// UpdateTaskStatus advances a task along the lifecycle on behalf of the
// acting driver or admin. A driver may only touch tasks assigned to them,
// except for moving a Pending task to Assigned, which claims it for the
// actor. Transitions into Completed/Resolved record the collected weight
// and feed the capacity tracker.
func (s *Service) UpdateTaskStatus(taskID string, actor Actor, newStatus models.TaskStatus, collectedKg *float64) (*models.Task, error) {
	if actor.Role != models.RoleDriver && actor.Role != models.RoleAdmin {
		return nil, &AuthError{Message: "not authorized to update task status"}
	}

	task, err := s.tasks.TaskByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, &NotFoundError{Resource: "task", ID: taskID}
	}

	selfClaim := actor.Role == models.RoleDriver && newStatus == models.StatusAssigned
	if actor.Role == models.RoleDriver && !selfClaim {
		if task.AssignedDriver == nil || *task.AssignedDriver != actor.ID {
			return nil, &AuthError{Message: "not authorized to update this task"}
		}
	}

	// Only a driver claiming a task may enter Assigned here. Status and
	// assigned driver are always written together; an admin assigns
	// through AssignDriver, which runs the conflict check.
	if newStatus == models.StatusAssigned && !selfClaim {
		return nil, &StateError{Current: task.Status, Message: "use driver assignment to assign a task"}
	}

	if stateErr := validateAdvance(task.Kind, task.Status, newStatus); stateErr != nil {
		return nil, stateErr
	}

	if selfClaim {
		// Claiming counts as an assignment: the same overlap rules apply.
		active, err := s.tasks.ActiveForDriver(actor.ID)
		if err != nil {
			return nil, err
		}
		if conflict := CheckAssignment(s.clock.Now(), *task, active); conflict != nil {
			return nil, conflict
		}
		driverID := actor.ID
		ok, err := s.tasks.SetAssignment(task.ID, task.Status, models.StatusAssigned, &driverID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return s.retryStateError(taskID)
		}
		return s.tasks.TaskByID(taskID)
	}

	if newStatus.IsTerminal() {
		weight := float64(0)
		if collectedKg != nil {
			weight = *collectedKg
		} else {
			// Best-effort extraction from the free-text quantity field.
			weight = ExtractWeight(task.Quantity)
		}
		if weight < 0 {
			weight = 0
		}

		ok, err := s.tasks.CompleteTask(task.ID, task.Status, newStatus, weight)
		if err != nil {
			return nil, err
		}
		if !ok {
			return s.retryStateError(taskID)
		}

		if task.AssignedDriver != nil {
			if _, err := s.drivers.AddCollectedWeight(*task.AssignedDriver, weight); err != nil {
				return nil, err
			}
		}
		return s.tasks.TaskByID(taskID)
	}

	ok, err := s.tasks.AdvanceStatus(task.ID, task.Status, newStatus)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.retryStateError(taskID)
	}
	return s.tasks.TaskByID(taskID)
}

// RescheduleTask moves a pickup's target window on behalf of its owner.
// Rescheduling always resets the task to Pending and clears the driver.
// Only Pending, Assigned and Accepted pickups may move.
func (s *Service) RescheduleTask(taskID, actorID string, pickupDate int64, pickupTime string) (*models.Task, error) {
	task, err := s.tasks.TaskByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, &NotFoundError{Resource: "task", ID: taskID}
	}
	if task.Kind != models.KindPickup {
		return nil, &StateError{Current: task.Status, Message: "only pickups can be rescheduled"}
	}
	if task.UserID != actorID {
		return nil, &AuthError{Message: "not authorized to reschedule this pickup"}
	}
	if !canReschedule(task.Status) {
		return nil, &StateError{Current: task.Status, Message: "cannot reschedule"}
	}

	ok, err := s.tasks.ReschedulePickup(task.ID, task.Status, pickupDate, pickupTime)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.retryStateError(taskID)
	}
	return s.tasks.TaskByID(taskID)
}

// retryStateError reports a lost write race: the task's status changed
// between our read and the conditional write.
func (s *Service) retryStateError(taskID string) (*models.Task, error) {
	current, err := s.tasks.TaskByID(taskID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, &NotFoundError{Resource: "task", ID: taskID}
	}
	return nil, &StateError{Current: current.Status, Message: "task was updated concurrently"}
}
