package models

// TaskKind distinguishes scheduled pickups from ad-hoc complaints.
type TaskKind string

const (
	KindPickup    TaskKind = "pickup"
	KindComplaint TaskKind = "complaint"
)

// TaskStatus is the shared status vocabulary for both task kinds.
// Completed is the terminal success state for pickups, Resolved for
// complaints. Cancelled exists in the vocabulary but no flow currently
// produces it: unassigning a task returns it to Pending.
type TaskStatus string

const (
	StatusPending   TaskStatus = "Pending"
	StatusAssigned  TaskStatus = "Assigned"
	StatusAccepted  TaskStatus = "Accepted"
	StatusOnTheWay  TaskStatus = "On the way"
	StatusCompleted TaskStatus = "Completed"
	StatusResolved  TaskStatus = "Resolved"
	StatusCancelled TaskStatus = "Cancelled"
)

// ActiveStatuses are the statuses that claim a driver's availability.
var ActiveStatuses = []TaskStatus{StatusAssigned, StatusAccepted, StatusOnTheWay}

// IsActive reports whether the status claims a driver's availability.
func (s TaskStatus) IsActive() bool {
	return s == StatusAssigned || s == StatusAccepted || s == StatusOnTheWay
}

// IsTerminal reports whether the status is a terminal success state.
func (s TaskStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusResolved
}

// Task is one unit of work: a scheduled pickup or an ad-hoc complaint.
// Pickups carry a target date and time window; complaints are implicitly
// due the day they are actioned.
type Task struct {
	ID              string     `json:"id" db:"id"`
	UserID          string     `json:"user_id" db:"user_id"` // requesting account
	Kind            TaskKind   `json:"kind" db:"kind"`
	WasteType       string     `json:"waste_type" db:"waste_type"` // optional for complaints
	Quantity        string     `json:"quantity" db:"quantity"`     // free text, e.g. "5 kg approx"
	Description     string     `json:"description" db:"description"`
	Address         string     `json:"address" db:"address"`
	ContactName     string     `json:"contact_name" db:"contact_name"`
	ContactNumber   string     `json:"contact_number" db:"contact_number"`
	Latitude        *float64   `json:"latitude,omitempty" db:"latitude"`
	Longitude       *float64   `json:"longitude,omitempty" db:"longitude"`
	PickupDate      *int64     `json:"pickup_date,omitempty" db:"pickup_date"` // epoch seconds, pickups only
	PickupTime      string     `json:"pickup_time" db:"pickup_time"`           // "HH:MM" window, pickups only
	Status          TaskStatus `json:"status" db:"status"`
	AssignedDriver  *string    `json:"assigned_driver,omitempty" db:"assigned_driver"`
	CollectedWeight float64    `json:"collected_weight" db:"collected_weight"` // kg, set at completion
	CreatedAt       int64      `json:"created_at" db:"created_at"`
	UpdatedAt       int64      `json:"updated_at" db:"updated_at"`
}

// CreateScheduleRequest is the payload for POST /api/schedules.
type CreateScheduleRequest struct {
	WasteType     string   `json:"waste_type"`
	Quantity      string   `json:"quantity"`
	PickupDate    int64    `json:"pickup_date"`
	PickupTime    string   `json:"pickup_time"`
	Address       string   `json:"address"`
	ContactName   string   `json:"contact_name"`
	ContactNumber string   `json:"contact_number"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
}

// CreateComplaintRequest is the payload for POST /api/complaints.
type CreateComplaintRequest struct {
	Description string   `json:"description"`
	Address     string   `json:"address"`
	WasteType   string   `json:"waste_type,omitempty"`
	Quantity    string   `json:"quantity,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// AssignDriverRequest is the payload for PUT .../assign.
// A null/empty driver_id unassigns the task.
type AssignDriverRequest struct {
	DriverID *string `json:"driver_id"`
}

// UpdateStatusRequest is the payload for PUT .../status.
type UpdateStatusRequest struct {
	Status          TaskStatus `json:"status"`
	CollectedWeight *float64   `json:"collected_weight,omitempty"`
}

// RescheduleRequest is the payload for PUT /api/schedules/{id}/reschedule.
type RescheduleRequest struct {
	PickupDate int64  `json:"pickup_date"`
	PickupTime string `json:"pickup_time"`
}

// TaskAnalytics summarizes task counts for the admin dashboard.
type TaskAnalytics struct {
	Total      int          `json:"total"`
	Finished   int          `json:"finished"` // Completed or Resolved
	Pending    int          `json:"pending"`
	DailyStats []DailyCount `json:"daily_stats"`
}

// DailyCount is one day's created-task count in the 7-day analytics window.
type DailyCount struct {
	Date  string `json:"date" db:"date"` // "2006-01-02"
	Count int    `json:"count" db:"count"`
}
