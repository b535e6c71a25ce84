package main

import (
	"log"
	"net/http"
	"os"

	"ecocollect-backend/internal/database"
	"ecocollect-backend/internal/dispatch"
	"ecocollect-backend/internal/handlers"
	"ecocollect-backend/internal/middleware"
	"ecocollect-backend/internal/models"
	"ecocollect-backend/internal/services"
	"ecocollect-backend/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("🚀 ECOCOLLECT BACKEND SERVER STARTING")
	log.Println("═══════════════════════════════════════════════════════════════════")

	// Load .env file
	log.Println("📂 Loading environment variables...")
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables from system")
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	// Connect to database
	db, err := database.Connect(dbURL)
	if err != nil {
		log.Println("❌ FATAL ERROR: Database connection failed")
		log.Fatal(err)
	}
	defer db.Close()

	// Run migrations
	log.Println("🔄 Running database migrations...")
	if err := database.Migrate(db); err != nil {
		log.Println("❌ FATAL ERROR: Database migrations failed")
		log.Fatal(err)
	}
	log.Println("✅ Database migrations completed")

	// Seed database
	if err := database.SeedUsers(db); err != nil {
		log.Println("❌ FATAL ERROR: User seeding failed")
		log.Fatal(err)
	}

	store := database.NewStore(db)
	engine := dispatch.NewService(store, store, nil)

	// Initialize Firebase Cloud Messaging
	// Supports both file path and base64-encoded credentials (for Railway/cloud deployments)
	var fcmService *services.FCMService
	fcmCredsBase64 := os.Getenv("FIREBASE_CREDENTIALS_BASE64")

	if fcmCredsBase64 != "" {
		fcmService, err = services.NewFCMServiceFromBase64(fcmCredsBase64)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from base64: %v (push notifications disabled)", err)
			fcmService = nil
		} else {
			log.Println("✅ Firebase Cloud Messaging initialized from base64 credentials")
		}
	} else {
		fcmCredentialsFile := os.Getenv("FIREBASE_CREDENTIALS_FILE")
		if fcmCredentialsFile == "" {
			fcmCredentialsFile = "./firebase-service-account.json"
		}

		fcmService, err = services.NewFCMService(fcmCredentialsFile)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from file: %v (push notifications disabled)", err)
			fcmService = nil
		} else {
			log.Println("✅ Firebase Cloud Messaging initialized from file")
		}
	}

	// Initialize WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()
	log.Println("✅ WebSocket hub started")

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Authentication routes (no auth required)
	r.Post("/api/auth/register", handlers.Register(store))
	r.Post("/api/auth/login", handlers.Login(store))

	// WebSocket endpoint (authentication handled in handler via query param)
	r.Get("/ws", websocket.HandleWebSocket(wsHub))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth)

			// Profile and push tokens
			r.Put("/auth/users/{id}", handlers.UpdateUser(store))
			r.Post("/driver/fcm-token", handlers.RegisterFCMToken(store))

			// Fleet with availability, for the dispatch board
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))
				r.Get("/auth/drivers", handlers.GetDrivers(engine))
			})

			// Pickup schedules
			r.Post("/schedules", handlers.CreateSchedule(store))
			r.Get("/schedules/my", handlers.GetMySchedules(store))
			r.Put("/schedules/{id}/reschedule", handlers.RescheduleSchedule(engine, store, wsHub, fcmService))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleDriver, models.RoleAdmin))
				r.Get("/schedules/pending", handlers.GetPendingSchedules(store))
				r.Get("/schedules/driver", handlers.GetDriverSchedules(store))
				r.Put("/schedules/{id}/status", handlers.UpdateScheduleStatus(engine, store, wsHub, fcmService))
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))
				r.Get("/schedules", handlers.GetAllSchedules(store))
				r.Get("/schedules/analytics", handlers.GetScheduleAnalytics(store))
				r.Put("/schedules/{id}/assign", handlers.AssignScheduleDriver(engine, store, wsHub, fcmService))
			})

			// Complaints
			r.Post("/complaints", handlers.CreateComplaint(store))
			r.Get("/complaints/my", handlers.GetMyComplaints(store))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleDriver, models.RoleAdmin))
				r.Get("/complaints/pending", handlers.GetPendingComplaints(store))
				r.Get("/complaints/driver", handlers.GetDriverComplaints(store))
				r.Put("/complaints/{id}/status", handlers.UpdateComplaintStatus(engine, store, wsHub, fcmService))
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))
				r.Get("/complaints", handlers.GetAllComplaints(store))
				r.Get("/complaints/analytics", handlers.GetComplaintAnalytics(store))
				r.Put("/complaints/{id}/assign", handlers.AssignComplaintDriver(engine, store, wsHub, fcmService))
			})
		})
	})

	// Get port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		log.Printf("⚠️  PORT not set, using default: %s", port)
	}

	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("✅ ALL INITIALIZATION COMPLETE")
	log.Printf("🚀 Server starting on http://localhost:%s", port)
	log.Println("═══════════════════════════════════════════════════════════════════")

	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal(err)
	}
}
