package models

// Roles accepted at registration
const (
	RoleUser         = "user"
	RoleOrganization = "organization"
	RoleDriver       = "driver"
	RoleAdmin        = "admin"
)

// DefaultMaxCapacityKg is the capacity ceiling assigned to new drivers.
const DefaultMaxCapacityKg = 100

type User struct {
	ID              string  `json:"id" db:"id"`
	Email           string  `json:"email" db:"email"`
	Password        string  `json:"-" db:"password"` // Never return password in JSON
	Name            string  `json:"name" db:"name"`
	Role            string  `json:"role" db:"role"` // "user", "organization", "driver" or "admin"
	ContactNumber   string  `json:"contact_number" db:"contact_number"`
	Address         string  `json:"address" db:"address"`
	VehicleType     string  `json:"vehicle_type" db:"vehicle_type"` // empty = no vehicle assigned
	CurrentWeightKg float64 `json:"current_weight_kg" db:"current_weight_kg"`
	MaxCapacityKg   float64 `json:"max_capacity_kg" db:"max_capacity_kg"`
	CreatedAt       int64   `json:"created_at" db:"created_at"`
	UpdatedAt       int64   `json:"updated_at" db:"updated_at"`
}

type UserResponse struct {
	ID              string  `json:"id"`
	Email           string  `json:"email"`
	Name            string  `json:"name"`
	Role            string  `json:"role"`
	ContactNumber   string  `json:"contact_number,omitempty"`
	Address         string  `json:"address,omitempty"`
	VehicleType     string  `json:"vehicle_type,omitempty"`
	CurrentWeightKg float64 `json:"current_weight_kg"`
	MaxCapacityKg   float64 `json:"max_capacity_kg"`
	CreatedAt       int64   `json:"created_at"`
}

func (u *User) ToUserResponse() UserResponse {
	return UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		Role:            u.Role,
		ContactNumber:   u.ContactNumber,
		Address:         u.Address,
		VehicleType:     u.VehicleType,
		CurrentWeightKg: u.CurrentWeightKg,
		MaxCapacityKg:   u.MaxCapacityKg,
		CreatedAt:       u.CreatedAt,
	}
}

// DriverAvailability is a driver record decorated with the busy-state
// derived from the driver's active tasks. Returned by GET /api/auth/drivers.
type DriverAvailability struct {
	UserResponse
	IsBusy    bool     `json:"is_busy"`
	BusyDates []string `json:"busy_dates"` // "2006-01-02" calendar days
}
