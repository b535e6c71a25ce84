package main

import (
	"fmt"
	"log"
	"os"

	"ecocollect-backend/internal/database"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := database.Connect(dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Running migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migration completed successfully!")

	if err := database.SeedUsers(db); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	// Query and display summary
	var result struct {
		Users    int `db:"users"`
		Drivers  int `db:"drivers"`
		Tasks    int `db:"tasks"`
		Finished int `db:"finished"`
	}

	query := `
		SELECT
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM users WHERE role = 'driver') AS drivers,
			(SELECT COUNT(*) FROM tasks) AS tasks,
			(SELECT COUNT(*) FROM tasks WHERE status IN ('Completed', 'Resolved')) AS finished
	`
	if err := db.Get(&result, query); err != nil {
		log.Fatalf("Failed to query summary: %v", err)
	}

	fmt.Println("\n============================================================")
	fmt.Println("MIGRATION SUMMARY")
	fmt.Println("============================================================")
	fmt.Printf("Total users:             %d\n", result.Users)
	fmt.Printf("Drivers:                 %d\n", result.Drivers)
	fmt.Printf("Tasks:                   %d\n", result.Tasks)
	fmt.Printf("Finished tasks:          %d\n", result.Finished)
	fmt.Println("============================================================")
}
