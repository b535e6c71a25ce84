package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecocollect-backend/internal/models"
)

func epoch(year int, month time.Month, day int) *int64 {
	ts := time.Date(year, month, day, 9, 30, 0, 0, time.Local).Unix()
	return &ts
}

func pickupOn(id string, date *int64, status models.TaskStatus) models.Task {
	driver := "driver-1"
	return models.Task{
		ID:             id,
		Kind:           models.KindPickup,
		PickupDate:     date,
		Status:         status,
		AssignedDriver: &driver,
	}
}

func complaint(id string, status models.TaskStatus) models.Task {
	driver := "driver-1"
	return models.Task{
		ID:             id,
		Kind:           models.KindComplaint,
		Status:         status,
		AssignedDriver: &driver,
	}
}

var testNow = time.Date(2024, time.June, 10, 14, 0, 0, 0, time.Local)

func TestCheckAssignment_PickupDateOverlap(t *testing.T) {
	// Scenario: driver already holds an active pickup on 2024-06-10; a
	// second pickup on the same date must be refused.
	active := []models.Task{pickupOn("t1", epoch(2024, time.June, 10), models.StatusAssigned)}
	candidate := pickupOn("t2", epoch(2024, time.June, 10), models.StatusPending)

	conflict := CheckAssignment(testNow, candidate, active)
	require.NotNil(t, conflict)
	assert.Equal(t, ReasonPickupDateOverlap, conflict.Reason)
}

func TestCheckAssignment_PickupDifferentDateAllowed(t *testing.T) {
	active := []models.Task{pickupOn("t1", epoch(2024, time.June, 10), models.StatusAccepted)}
	candidate := pickupOn("t2", epoch(2024, time.June, 11), models.StatusPending)

	assert.Nil(t, CheckAssignment(testNow, candidate, active))
}

func TestCheckAssignment_ComplaintBlocksTodayPickupOnly(t *testing.T) {
	// An active complaint claims today, so it blocks a pickup targeted at
	// today but not one targeted at tomorrow.
	active := []models.Task{complaint("c1", models.StatusAssigned)}

	today := pickupOn("t1", epoch(2024, time.June, 10), models.StatusPending)
	conflict := CheckAssignment(testNow, today, active)
	require.NotNil(t, conflict)
	assert.Equal(t, ReasonSameDayComplaint, conflict.Reason)

	tomorrow := pickupOn("t2", epoch(2024, time.June, 11), models.StatusPending)
	assert.Nil(t, CheckAssignment(testNow, tomorrow, active))
}

func TestCheckAssignment_ComplaintVsComplaint(t *testing.T) {
	active := []models.Task{complaint("c1", models.StatusOnTheWay)}
	candidate := complaint("c2", models.StatusPending)

	conflict := CheckAssignment(testNow, candidate, active)
	require.NotNil(t, conflict)
	assert.Equal(t, ReasonActiveComplaint, conflict.Reason)
}

func TestCheckAssignment_ComplaintVsTodaysPickup(t *testing.T) {
	active := []models.Task{pickupOn("t1", epoch(2024, time.June, 10), models.StatusAssigned)}
	candidate := complaint("c1", models.StatusPending)

	conflict := CheckAssignment(testNow, candidate, active)
	require.NotNil(t, conflict)
	assert.Equal(t, ReasonTodayPickup, conflict.Reason)
}

func TestCheckAssignment_ComplaintVsFuturePickupAllowed(t *testing.T) {
	active := []models.Task{pickupOn("t1", epoch(2024, time.June, 12), models.StatusAssigned)}
	candidate := complaint("c1", models.StatusPending)

	assert.Nil(t, CheckAssignment(testNow, candidate, active))
}

func TestCheckAssignment_IgnoresSelf(t *testing.T) {
	// Re-checking a task against a read-set that still contains it must
	// not conflict with itself.
	existing := pickupOn("t1", epoch(2024, time.June, 10), models.StatusAssigned)
	assert.Nil(t, CheckAssignment(testNow, existing, []models.Task{existing}))
}

func TestCheckAssignment_IgnoresInactiveTasks(t *testing.T) {
	active := []models.Task{
		pickupOn("t1", epoch(2024, time.June, 10), models.StatusCompleted),
		complaint("c1", models.StatusResolved),
		pickupOn("t2", epoch(2024, time.June, 10), models.StatusPending),
	}
	candidate := pickupOn("t3", epoch(2024, time.June, 10), models.StatusPending)

	assert.Nil(t, CheckAssignment(testNow, candidate, active))
}

func TestCheckAssignment_PickupOverlapReportedBeforeComplaint(t *testing.T) {
	// When both rules are violated the date overlap is reported first.
	active := []models.Task{
		complaint("c1", models.StatusAssigned),
		pickupOn("t1", epoch(2024, time.June, 10), models.StatusAssigned),
	}
	candidate := pickupOn("t2", epoch(2024, time.June, 10), models.StatusPending)

	conflict := CheckAssignment(testNow, candidate, active)
	require.NotNil(t, conflict)
	assert.Equal(t, ReasonPickupDateOverlap, conflict.Reason)
}

func TestCheckAssignment_TimeOfDayIrrelevant(t *testing.T) {
	morning := time.Date(2024, time.June, 10, 6, 0, 0, 0, time.Local).Unix()
	evening := time.Date(2024, time.June, 10, 21, 0, 0, 0, time.Local).Unix()

	active := []models.Task{pickupOn("t1", &morning, models.StatusAssigned)}
	candidate := pickupOn("t2", &evening, models.StatusPending)

	conflict := CheckAssignment(testNow, candidate, active)
	require.NotNil(t, conflict)
	assert.Equal(t, ReasonPickupDateOverlap, conflict.Reason)
}
