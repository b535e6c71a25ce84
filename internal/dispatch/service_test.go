package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecocollect-backend/internal/models"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// fakeTaskStore keeps tasks in a map and honors the conditional-write
// contract: a write whose expected status no longer matches reports false.
type fakeTaskStore struct {
	tasks map[string]*models.Task
}

func newFakeTaskStore(tasks ...models.Task) *fakeTaskStore {
	s := &fakeTaskStore{tasks: make(map[string]*models.Task)}
	for i := range tasks {
		t := tasks[i]
		s.tasks[t.ID] = &t
	}
	return s
}

func (s *fakeTaskStore) TaskByID(id string) (*models.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (s *fakeTaskStore) ActiveForDriver(driverID string) ([]models.Task, error) {
	var out []models.Task
	for _, t := range s.tasks {
		if t.AssignedDriver != nil && *t.AssignedDriver == driverID && t.Status.IsActive() {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *fakeTaskStore) SetAssignment(id string, from, to models.TaskStatus, driverID *string) (bool, error) {
	t, ok := s.tasks[id]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status = to
	t.AssignedDriver = driverID
	return true, nil
}

func (s *fakeTaskStore) AdvanceStatus(id string, from, to models.TaskStatus) (bool, error) {
	t, ok := s.tasks[id]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status = to
	return true, nil
}

func (s *fakeTaskStore) CompleteTask(id string, from, to models.TaskStatus, collectedKg float64) (bool, error) {
	t, ok := s.tasks[id]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status = to
	t.CollectedWeight = collectedKg
	return true, nil
}

func (s *fakeTaskStore) ReschedulePickup(id string, from models.TaskStatus, pickupDate int64, pickupTime string) (bool, error) {
	t, ok := s.tasks[id]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status = models.StatusPending
	t.AssignedDriver = nil
	t.PickupDate = &pickupDate
	t.PickupTime = pickupTime
	return true, nil
}

type fakeDriverStore struct {
	drivers map[string]*models.User
}

func newFakeDriverStore(drivers ...models.User) *fakeDriverStore {
	s := &fakeDriverStore{drivers: make(map[string]*models.User)}
	for i := range drivers {
		d := drivers[i]
		s.drivers[d.ID] = &d
	}
	return s
}

func (s *fakeDriverStore) DriverByID(id string) (*models.User, error) {
	d, ok := s.drivers[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (s *fakeDriverStore) ListDrivers() ([]models.User, error) {
	var out []models.User
	for _, d := range s.drivers {
		out = append(out, *d)
	}
	return out, nil
}

func (s *fakeDriverStore) AddCollectedWeight(driverID string, collectedKg float64) (float64, error) {
	d := s.drivers[driverID]
	d.CurrentWeightKg = ApplyCompletion(d.CurrentWeightKg, collectedKg, d.MaxCapacityKg)
	return d.CurrentWeightKg, nil
}

func driver(id string) models.User {
	return models.User{ID: id, Role: models.RoleDriver, MaxCapacityKg: 100}
}

func pendingPickup(id, owner string, date *int64) models.Task {
	return models.Task{
		ID:         id,
		UserID:     owner,
		Kind:       models.KindPickup,
		PickupDate: date,
		PickupTime: "09:00",
		Status:     models.StatusPending,
	}
}

func pendingComplaint(id, owner string) models.Task {
	return models.Task{ID: id, UserID: owner, Kind: models.KindComplaint, Status: models.StatusPending}
}

func newService(tasks *fakeTaskStore, drivers *fakeDriverStore) *Service {
	return NewService(tasks, drivers, fixedClock{now: testNow})
}

func TestAssignDriver_Success(t *testing.T) {
	tasks := newFakeTaskStore(pendingPickup("t1", "u1", epoch(2024, time.June, 10)))
	drivers := newFakeDriverStore(driver("d1"))
	svc := newService(tasks, drivers)

	id := "d1"
	updated, err := svc.AssignDriver("t1", &id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAssigned, updated.Status)
	require.NotNil(t, updated.AssignedDriver)
	assert.Equal(t, "d1", *updated.AssignedDriver)
}

func TestAssignDriver_PickupDateOverlapRejected(t *testing.T) {
	existing := pickupOn("t1", epoch(2024, time.June, 10), models.StatusAssigned)
	tasks := newFakeTaskStore(existing, pendingPickup("t2", "u1", epoch(2024, time.June, 10)))
	drivers := newFakeDriverStore(driver("driver-1"))
	svc := newService(tasks, drivers)

	id := "driver-1"
	_, err := svc.AssignDriver("t2", &id)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, ReasonPickupDateOverlap, conflict.Reason)

	// The refused assignment must not touch the task.
	after, _ := tasks.TaskByID("t2")
	assert.Equal(t, models.StatusPending, after.Status)
	assert.Nil(t, after.AssignedDriver)
}

func TestAssignDriver_ActiveComplaintBlocksTodayOnly(t *testing.T) {
	drivers := newFakeDriverStore(driver("driver-1"))
	id := "driver-1"

	tasks := newFakeTaskStore(
		complaint("c1", models.StatusAccepted),
		pendingPickup("t1", "u1", epoch(2024, time.June, 10)),
		pendingPickup("t2", "u1", epoch(2024, time.June, 11)),
	)
	svc := newService(tasks, drivers)

	_, err := svc.AssignDriver("t1", &id)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, ReasonSameDayComplaint, conflict.Reason)

	updated, err := svc.AssignDriver("t2", &id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAssigned, updated.Status)
}

func TestAssignDriver_Unassign(t *testing.T) {
	assigned := pickupOn("t1", epoch(2024, time.June, 10), models.StatusAssigned)
	tasks := newFakeTaskStore(assigned)
	svc := newService(tasks, newFakeDriverStore(driver("driver-1")))

	updated, err := svc.AssignDriver("t1", nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, updated.Status)
	assert.Nil(t, updated.AssignedDriver)
}

func TestAssignDriver_NotFound(t *testing.T) {
	svc := newService(newFakeTaskStore(), newFakeDriverStore(driver("d1")))

	id := "d1"
	_, err := svc.AssignDriver("missing", &id)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "task", notFound.Resource)
}

func TestAssignDriver_UnknownDriver(t *testing.T) {
	tasks := newFakeTaskStore(pendingPickup("t1", "u1", epoch(2024, time.June, 10)))
	svc := newService(tasks, newFakeDriverStore())

	id := "ghost"
	_, err := svc.AssignDriver("t1", &id)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "driver", notFound.Resource)
}

func TestAssignDriver_FinishedTaskRejected(t *testing.T) {
	done := pickupOn("t1", epoch(2024, time.June, 10), models.StatusCompleted)
	svc := newService(newFakeTaskStore(done), newFakeDriverStore(driver("d1")))

	id := "d1"
	_, err := svc.AssignDriver("t1", &id)
	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, models.StatusCompleted, stateErr.Current)
}

func TestUpdateTaskStatus_DriverAdvancesOwnTask(t *testing.T) {
	task := pickupOn("t1", epoch(2024, time.June, 10), models.StatusAssigned)
	tasks := newFakeTaskStore(task)
	svc := newService(tasks, newFakeDriverStore(driver("driver-1")))
	actor := Actor{ID: "driver-1", Role: models.RoleDriver}

	updated, err := svc.UpdateTaskStatus("t1", actor, models.StatusAccepted, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, updated.Status)

	updated, err = svc.UpdateTaskStatus("t1", actor, models.StatusOnTheWay, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnTheWay, updated.Status)
}

func TestUpdateTaskStatus_OtherDriverRejected(t *testing.T) {
	task := pickupOn("t1", epoch(2024, time.June, 10), models.StatusAssigned)
	svc := newService(newFakeTaskStore(task), newFakeDriverStore(driver("driver-1"), driver("driver-2")))

	_, err := svc.UpdateTaskStatus("t1", Actor{ID: "driver-2", Role: models.RoleDriver}, models.StatusAccepted, nil)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestUpdateTaskStatus_RequesterRoleRejected(t *testing.T) {
	task := pickupOn("t1", epoch(2024, time.June, 10), models.StatusAssigned)
	svc := newService(newFakeTaskStore(task), newFakeDriverStore(driver("driver-1")))

	_, err := svc.UpdateTaskStatus("t1", Actor{ID: "u1", Role: models.RoleUser}, models.StatusAccepted, nil)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestUpdateTaskStatus_SkippingLadderRejected(t *testing.T) {
	task := pickupOn("t1", epoch(2024, time.June, 10), models.StatusAssigned)
	svc := newService(newFakeTaskStore(task), newFakeDriverStore(driver("driver-1")))

	_, err := svc.UpdateTaskStatus("t1", Actor{ID: "driver-1", Role: models.RoleDriver}, models.StatusCompleted, nil)
	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, models.StatusAssigned, stateErr.Current)
}

func TestUpdateTaskStatus_SelfClaim(t *testing.T) {
	tasks := newFakeTaskStore(pendingPickup("t1", "u1", epoch(2024, time.June, 11)))
	svc := newService(tasks, newFakeDriverStore(driver("driver-1")))

	updated, err := svc.UpdateTaskStatus("t1", Actor{ID: "driver-1", Role: models.RoleDriver}, models.StatusAssigned, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAssigned, updated.Status)
	require.NotNil(t, updated.AssignedDriver)
	assert.Equal(t, "driver-1", *updated.AssignedDriver)
}

func TestUpdateTaskStatus_SelfClaimConflictChecked(t *testing.T) {
	// A driver claiming work is still subject to the overlap rules.
	tasks := newFakeTaskStore(
		pickupOn("t1", epoch(2024, time.June, 11), models.StatusAssigned),
		pendingPickup("t2", "u1", epoch(2024, time.June, 11)),
	)
	svc := newService(tasks, newFakeDriverStore(driver("driver-1")))

	_, err := svc.UpdateTaskStatus("t2", Actor{ID: "driver-1", Role: models.RoleDriver}, models.StatusAssigned, nil)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, ReasonPickupDateOverlap, conflict.Reason)
}

func TestUpdateTaskStatus_AdminCannotAssignWithoutDriver(t *testing.T) {
	// An admin moving a Pending task to Assigned through the status
	// operation would set the status with no driver attached and skip
	// the conflict check; admins must assign through AssignDriver.
	tasks := newFakeTaskStore(pendingPickup("t1", "u1", epoch(2024, time.June, 11)))
	svc := newService(tasks, newFakeDriverStore(driver("driver-1")))

	_, err := svc.UpdateTaskStatus("t1", Actor{ID: "a1", Role: models.RoleAdmin}, models.StatusAssigned, nil)
	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, models.StatusPending, stateErr.Current)

	current, err := tasks.TaskByID("t1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, current.Status)
	assert.Nil(t, current.AssignedDriver)
}

func TestUpdateTaskStatus_CompletionFeedsCapacityTracker(t *testing.T) {
	task := pickupOn("t1", epoch(2024, time.June, 10), models.StatusOnTheWay)
	tasks := newFakeTaskStore(task)

	d := driver("driver-1")
	d.CurrentWeightKg = 80
	drivers := newFakeDriverStore(d)
	svc := newService(tasks, drivers)

	weight := 25.0
	updated, err := svc.UpdateTaskStatus("t1", Actor{ID: "driver-1", Role: models.RoleDriver}, models.StatusCompleted, &weight)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	assert.Equal(t, 25.0, updated.CollectedWeight)

	// 80 + 25 crosses the 100 kg ceiling: load resets.
	after, _ := drivers.DriverByID("driver-1")
	assert.Equal(t, 0.0, after.CurrentWeightKg)
}

func TestUpdateTaskStatus_CompletionBelowCeiling(t *testing.T) {
	task := pickupOn("t1", epoch(2024, time.June, 10), models.StatusOnTheWay)
	tasks := newFakeTaskStore(task)

	d := driver("driver-1")
	d.CurrentWeightKg = 30
	drivers := newFakeDriverStore(d)
	svc := newService(tasks, drivers)

	weight := 20.0
	_, err := svc.UpdateTaskStatus("t1", Actor{ID: "driver-1", Role: models.RoleDriver}, models.StatusCompleted, &weight)
	require.NoError(t, err)

	after, _ := drivers.DriverByID("driver-1")
	assert.Equal(t, 50.0, after.CurrentWeightKg)
}

func TestUpdateTaskStatus_ComplaintResolvedExtractsWeight(t *testing.T) {
	c := complaint("c1", models.StatusOnTheWay)
	c.Quantity = "roughly 12 kg of mixed waste"
	tasks := newFakeTaskStore(c)
	drivers := newFakeDriverStore(driver("driver-1"))
	svc := newService(tasks, drivers)

	updated, err := svc.UpdateTaskStatus("c1", Actor{ID: "driver-1", Role: models.RoleDriver}, models.StatusResolved, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, updated.Status)
	assert.Equal(t, 12.0, updated.CollectedWeight)

	after, _ := drivers.DriverByID("driver-1")
	assert.Equal(t, 12.0, after.CurrentWeightKg)
}

func TestUpdateTaskStatus_NegativeWeightClamped(t *testing.T) {
	task := pickupOn("t1", epoch(2024, time.June, 10), models.StatusOnTheWay)
	tasks := newFakeTaskStore(task)
	drivers := newFakeDriverStore(driver("driver-1"))
	svc := newService(tasks, drivers)

	weight := -7.0
	updated, err := svc.UpdateTaskStatus("t1", Actor{ID: "driver-1", Role: models.RoleDriver}, models.StatusCompleted, &weight)
	require.NoError(t, err)
	assert.Equal(t, 0.0, updated.CollectedWeight)
}

func TestRescheduleTask_ResetsToPending(t *testing.T) {
	task := pickupOn("t1", epoch(2024, time.June, 10), models.StatusAccepted)
	task.UserID = "u1"
	tasks := newFakeTaskStore(task)
	svc := newService(tasks, newFakeDriverStore(driver("driver-1")))

	newDate := time.Date(2024, time.June, 20, 0, 0, 0, 0, time.Local).Unix()
	updated, err := svc.RescheduleTask("t1", "u1", newDate, "14:00")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, updated.Status)
	assert.Nil(t, updated.AssignedDriver)
	require.NotNil(t, updated.PickupDate)
	assert.Equal(t, newDate, *updated.PickupDate)
	assert.Equal(t, "14:00", updated.PickupTime)
}

func TestRescheduleTask_OnTheWayRejected(t *testing.T) {
	task := pickupOn("t1", epoch(2024, time.June, 10), models.StatusOnTheWay)
	task.UserID = "u1"
	svc := newService(newFakeTaskStore(task), newFakeDriverStore(driver("driver-1")))

	_, err := svc.RescheduleTask("t1", "u1", time.Now().Unix(), "10:00")
	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, models.StatusOnTheWay, stateErr.Current)
}

func TestRescheduleTask_NotOwnerRejected(t *testing.T) {
	task := pendingPickup("t1", "u1", epoch(2024, time.June, 10))
	svc := newService(newFakeTaskStore(task), newFakeDriverStore(driver("driver-1")))

	_, err := svc.RescheduleTask("t1", "u2", time.Now().Unix(), "10:00")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestRescheduleTask_ComplaintRejected(t *testing.T) {
	task := pendingComplaint("c1", "u1")
	svc := newService(newFakeTaskStore(task), newFakeDriverStore(driver("driver-1")))

	_, err := svc.RescheduleTask("c1", "u1", time.Now().Unix(), "10:00")
	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
}

func TestListDriversWithAvailability(t *testing.T) {
	busy := driver("driver-1")
	free := driver("driver-2")
	tasks := newFakeTaskStore(
		complaint("c1", models.StatusAssigned), // assigned to driver-1
	)
	svc := newService(tasks, newFakeDriverStore(busy, free))

	out, err := svc.ListDriversWithAvailability()
	require.NoError(t, err)
	require.Len(t, out, 2)

	byID := make(map[string]models.DriverAvailability)
	for _, d := range out {
		byID[d.ID] = d
	}
	assert.True(t, byID["driver-1"].IsBusy)
	assert.Equal(t, []string{testNow.Format("2006-01-02")}, byID["driver-1"].BusyDates)
	assert.False(t, byID["driver-2"].IsBusy)
	assert.Empty(t, byID["driver-2"].BusyDates)
}
