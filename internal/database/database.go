package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func Connect(dbURL string) (*sqlx.DB, error) {
	log.Println("🔌 Connecting to Postgres...")

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Printf("❌ sqlx.Connect() failed: %v", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		log.Printf("❌ Ping() failed: %v", err)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Database connection successful")
	return db, nil
}

func Migrate(db *sqlx.DB) error {
	migrations := []string{
		// Create users table (requesters, organizations, drivers, admins)
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('user', 'organization', 'driver', 'admin')),
			contact_number TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			vehicle_type TEXT NOT NULL DEFAULT '',
			current_weight_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
			max_capacity_kg DOUBLE PRECISION NOT NULL DEFAULT 100,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			CHECK (current_weight_kg >= 0),
			CHECK (max_capacity_kg > 0)
		)`,

		// Create tasks table (pickup schedules and complaints share one shape)
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			kind TEXT NOT NULL CHECK(kind IN ('pickup', 'complaint')),
			waste_type TEXT NOT NULL DEFAULT '',
			quantity TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL,
			contact_name TEXT NOT NULL DEFAULT '',
			contact_number TEXT NOT NULL DEFAULT '',
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			pickup_date BIGINT,
			pickup_time TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'Pending'
				CHECK(status IN ('Pending', 'Assigned', 'Accepted', 'On the way', 'Completed', 'Resolved', 'Cancelled')),
			assigned_driver TEXT,
			collected_weight DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (assigned_driver) REFERENCES users(id) ON DELETE SET NULL
		)`,

		// The conflict checker reads a driver's active tasks on every
		// assignment attempt
		`CREATE INDEX IF NOT EXISTS idx_tasks_driver_status ON tasks(assigned_driver, status)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id)`,

		// Create FCM tokens table (driver push notifications)
		`CREATE TABLE IF NOT EXISTS fcm_tokens (
			id SERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			device_type TEXT NOT NULL CHECK(device_type IN ('ios', 'android')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}
