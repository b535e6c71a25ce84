package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"ecocollect-backend/internal/models"
)

// Store wraps the database handle and implements the dispatch engine's
// TaskStore and DriverStore, plus the listing queries the handlers need.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// --- tasks -----------------------------------------------------------------

func (s *Store) CreateTask(t *models.Task) error {
	query := `
		INSERT INTO tasks (id, user_id, kind, waste_type, quantity, description, address,
			contact_name, contact_number, latitude, longitude, pickup_date, pickup_time,
			status, collected_weight, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := s.db.Exec(query,
		t.ID, t.UserID, t.Kind, t.WasteType, t.Quantity, t.Description, t.Address,
		t.ContactName, t.ContactNumber, t.Latitude, t.Longitude, t.PickupDate, t.PickupTime,
		t.Status, t.CollectedWeight, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func (s *Store) TaskByID(id string) (*models.Task, error) {
	var task models.Task
	err := s.db.Get(&task, "SELECT * FROM tasks WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task %s: %w", id, err)
	}
	return &task, nil
}

func (s *Store) ActiveForDriver(driverID string) ([]models.Task, error) {
	tasks := []models.Task{}
	query, args, err := sqlx.In(
		"SELECT * FROM tasks WHERE assigned_driver = ? AND status IN (?)",
		driverID, models.ActiveStatuses,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build active tasks query: %w", err)
	}
	if err := s.db.Select(&tasks, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to fetch active tasks for driver %s: %w", driverID, err)
	}
	return tasks, nil
}

// SetAssignment writes status and assigned driver in one statement,
// conditional on the previously observed status. Two racing assignment
// requests cannot both pass: the loser's WHERE clause no longer matches.
func (s *Store) SetAssignment(id string, from, to models.TaskStatus, driverID *string) (bool, error) {
	result, err := s.db.Exec(
		"UPDATE tasks SET status = $1, assigned_driver = $2, updated_at = $3 WHERE id = $4 AND status = $5",
		to, driverID, time.Now().Unix(), id, from,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update task assignment: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (s *Store) AdvanceStatus(id string, from, to models.TaskStatus) (bool, error) {
	result, err := s.db.Exec(
		"UPDATE tasks SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4",
		to, time.Now().Unix(), id, from,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update task status: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (s *Store) CompleteTask(id string, from, to models.TaskStatus, collectedKg float64) (bool, error) {
	result, err := s.db.Exec(
		"UPDATE tasks SET status = $1, collected_weight = $2, updated_at = $3 WHERE id = $4 AND status = $5",
		to, collectedKg, time.Now().Unix(), id, from,
	)
	if err != nil {
		return false, fmt.Errorf("failed to complete task: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (s *Store) ReschedulePickup(id string, from models.TaskStatus, pickupDate int64, pickupTime string) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE tasks
		 SET status = 'Pending', assigned_driver = NULL, pickup_date = $1, pickup_time = $2, updated_at = $3
		 WHERE id = $4 AND status = $5`,
		pickupDate, pickupTime, time.Now().Unix(), id, from,
	)
	if err != nil {
		return false, fmt.Errorf("failed to reschedule task: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (s *Store) TasksForUser(userID string, kind models.TaskKind) ([]models.Task, error) {
	tasks := []models.Task{}
	query := "SELECT * FROM tasks WHERE user_id = $1 AND kind = $2 ORDER BY created_at DESC"
	if err := s.db.Select(&tasks, query, userID, kind); err != nil {
		return nil, fmt.Errorf("failed to fetch tasks for user %s: %w", userID, err)
	}
	return tasks, nil
}

func (s *Store) AllTasks(kind models.TaskKind) ([]models.Task, error) {
	tasks := []models.Task{}
	query := "SELECT * FROM tasks WHERE kind = $1 ORDER BY created_at DESC"
	if err := s.db.Select(&tasks, query, kind); err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	return tasks, nil
}

func (s *Store) PendingTasks(kind models.TaskKind) ([]models.Task, error) {
	tasks := []models.Task{}
	query := "SELECT * FROM tasks WHERE kind = $1 AND status = 'Pending' ORDER BY created_at DESC"
	if err := s.db.Select(&tasks, query, kind); err != nil {
		return nil, fmt.Errorf("failed to fetch pending tasks: %w", err)
	}
	return tasks, nil
}

func (s *Store) DriverTasks(driverID string, kind models.TaskKind) ([]models.Task, error) {
	tasks := []models.Task{}
	query := "SELECT * FROM tasks WHERE assigned_driver = $1 AND kind = $2 ORDER BY created_at DESC"
	if err := s.db.Select(&tasks, query, driverID, kind); err != nil {
		return nil, fmt.Errorf("failed to fetch driver tasks: %w", err)
	}
	return tasks, nil
}

// TaskAnalytics returns totals plus per-day created counts for the last
// 7 days, for the admin dashboard charts.
func (s *Store) TaskAnalytics(kind models.TaskKind) (*models.TaskAnalytics, error) {
	analytics := &models.TaskAnalytics{DailyStats: []models.DailyCount{}}

	counts := struct {
		Total    int `db:"total"`
		Finished int `db:"finished"`
		Pending  int `db:"pending"`
	}{}
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(CASE WHEN status IN ('Completed', 'Resolved') THEN 1 END) AS finished,
			COUNT(CASE WHEN status = 'Pending' THEN 1 END) AS pending
		FROM tasks WHERE kind = $1
	`
	if err := s.db.Get(&counts, query, kind); err != nil {
		return nil, fmt.Errorf("failed to fetch task counts: %w", err)
	}
	analytics.Total = counts.Total
	analytics.Finished = counts.Finished
	analytics.Pending = counts.Pending

	sevenDaysAgo := time.Now().AddDate(0, 0, -7).Unix()
	dailyQuery := `
		SELECT to_char(to_timestamp(created_at), 'YYYY-MM-DD') AS date, COUNT(*) AS count
		FROM tasks
		WHERE kind = $1 AND created_at >= $2
		GROUP BY 1
		ORDER BY 1
	`
	if err := s.db.Select(&analytics.DailyStats, dailyQuery, kind, sevenDaysAgo); err != nil {
		return nil, fmt.Errorf("failed to fetch daily stats: %w", err)
	}

	return analytics, nil
}

// --- users / drivers -------------------------------------------------------

func (s *Store) CreateUser(u *models.User) error {
	query := `
		INSERT INTO users (id, email, password, name, role, contact_number, address,
			vehicle_type, current_weight_kg, max_capacity_kg, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.Exec(query,
		u.ID, u.Email, u.Password, u.Name, u.Role, u.ContactNumber, u.Address,
		u.VehicleType, u.CurrentWeightKg, u.MaxCapacityKg, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *Store) UserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.db.Get(&user, "SELECT * FROM users WHERE email = $1", email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user by email: %w", err)
	}
	return &user, nil
}

func (s *Store) UserByID(id string) (*models.User, error) {
	var user models.User
	err := s.db.Get(&user, "SELECT * FROM users WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", id, err)
	}
	return &user, nil
}

func (s *Store) DriverByID(id string) (*models.User, error) {
	var user models.User
	err := s.db.Get(&user, "SELECT * FROM users WHERE id = $1 AND role = 'driver'", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch driver %s: %w", id, err)
	}
	return &user, nil
}

func (s *Store) ListDrivers() ([]models.User, error) {
	drivers := []models.User{}
	query := "SELECT * FROM users WHERE role = 'driver' ORDER BY name"
	if err := s.db.Select(&drivers, query); err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	return drivers, nil
}

// AddCollectedWeight applies the capacity rule in a single statement so
// concurrent completions for the same driver cannot interleave a
// read-modify-write: the load increments, or resets to zero once it
// reaches the driver's ceiling.
func (s *Store) AddCollectedWeight(driverID string, collectedKg float64) (float64, error) {
	if collectedKg < 0 {
		collectedKg = 0
	}
	var newWeight float64
	query := `
		UPDATE users
		SET current_weight_kg = CASE
			WHEN current_weight_kg + $1 >= max_capacity_kg THEN 0
			ELSE current_weight_kg + $1
		END,
		updated_at = $2
		WHERE id = $3 AND role = 'driver'
		RETURNING current_weight_kg
	`
	err := s.db.Get(&newWeight, query, collectedKg, time.Now().Unix(), driverID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("driver %s not found", driverID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to update driver weight: %w", err)
	}
	return newWeight, nil
}

func (s *Store) UpdateUserProfile(id, name, contactNumber, address, vehicleType string) (*models.User, error) {
	query := `
		UPDATE users
		SET name = COALESCE(NULLIF($1, ''), name),
			contact_number = COALESCE(NULLIF($2, ''), contact_number),
			address = COALESCE(NULLIF($3, ''), address),
			vehicle_type = COALESCE(NULLIF($4, ''), vehicle_type),
			updated_at = $5
		WHERE id = $6
	`
	if _, err := s.db.Exec(query, name, contactNumber, address, vehicleType, time.Now().Unix(), id); err != nil {
		return nil, fmt.Errorf("failed to update user %s: %w", id, err)
	}
	return s.UserByID(id)
}

// --- FCM tokens ------------------------------------------------------------

func (s *Store) SaveFCMToken(userID, token, deviceType string) error {
	now := time.Now().Unix()
	query := `
		INSERT INTO fcm_tokens (user_id, token, device_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (token) DO UPDATE SET user_id = $1, device_type = $3, updated_at = $5
	`
	if _, err := s.db.Exec(query, userID, token, deviceType, now, now); err != nil {
		return fmt.Errorf("failed to save FCM token: %w", err)
	}
	return nil
}

func (s *Store) FCMTokensForUser(userID string) ([]string, error) {
	tokens := []string{}
	if err := s.db.Select(&tokens, "SELECT token FROM fcm_tokens WHERE user_id = $1", userID); err != nil {
		return nil, fmt.Errorf("failed to fetch FCM tokens: %w", err)
	}
	return tokens, nil
}
