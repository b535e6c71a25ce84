package database

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// SeedUsers creates the default admin and a starter driver fleet covering
// the specialized vehicle types the dispatcher matches against.
func SeedUsers(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Users already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding admin and driver accounts...")

	adminPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	driverPassword, err := bcrypt.GenerateFromPassword([]byte("driver123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now().Unix()

	_, err = db.Exec(`
		INSERT INTO users (id, email, password, name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'admin', $5, $5)
	`, uuid.New().String(), "admin@ecocollect.com", string(adminPassword), "Dispatch Admin", now)
	if err != nil {
		return err
	}

	drivers := []struct {
		name        string
		email       string
		vehicleType string
	}{
		{"Ravi Kumar", "ravi@ecocollect.com", "Bio-degradable Waste Van"},
		{"Sita Perera", "sita@ecocollect.com", "Plastic garbage Van"},
		{"Anil Fernando", "anil@ecocollect.com", "Glass Waste Van"},
		{"Maya Silva", "maya@ecocollect.com", "Dry Waste Van"},
		{"Kasun Jayawardena", "kasun@ecocollect.com", "Mixed Waste Van"},
		{"Nimal Bandara", "nimal@ecocollect.com", "General Van"},
	}

	for _, d := range drivers {
		_, err = db.Exec(`
			INSERT INTO users (id, email, password, name, role, vehicle_type, max_capacity_kg, created_at, updated_at)
			VALUES ($1, $2, $3, $4, 'driver', $5, 100, $6, $6)
		`, uuid.New().String(), d.email, string(driverPassword), d.name, d.vehicleType, now)
		if err != nil {
			return err
		}
	}

	log.Printf("✓ Seeded 1 admin and %d drivers", len(drivers))
	return nil
}
