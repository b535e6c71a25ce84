package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"ecocollect-backend/internal/database"
	"ecocollect-backend/internal/dispatch"
	"ecocollect-backend/internal/middleware"
	"ecocollect-backend/internal/models"
	"ecocollect-backend/internal/services"
	"ecocollect-backend/internal/websocket"
	"ecocollect-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CreateSchedule creates a new pickup request for the authenticated user.
func CreateSchedule(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req models.CreateScheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		log.Printf("📥 REQUEST: Create schedule from %s (%s on %d)", user.UserID, req.WasteType, req.PickupDate)

		if req.Address == "" || req.PickupDate == 0 {
			utils.RespondError(w, http.StatusBadRequest, "address and pickup_date are required")
			return
		}

		now := time.Now().Unix()
		pickupDate := req.PickupDate
		task := &models.Task{
			ID:            uuid.New().String(),
			UserID:        user.UserID,
			Kind:          models.KindPickup,
			WasteType:     req.WasteType,
			Quantity:      req.Quantity,
			Address:       req.Address,
			ContactName:   req.ContactName,
			ContactNumber: req.ContactNumber,
			Latitude:      req.Latitude,
			Longitude:     req.Longitude,
			PickupDate:    &pickupDate,
			PickupTime:    req.PickupTime,
			Status:        models.StatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if err := store.CreateTask(task); err != nil {
			log.Printf("❌ Failed to create schedule: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create schedule")
			return
		}

		log.Printf("✅ Schedule created: %s", task.ID)
		utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
			"success":  true,
			"schedule": task,
		})
	}
}

// GetMySchedules returns the authenticated user's pickup requests.
func GetMySchedules(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		tasks, err := store.TasksForUser(user.UserID, models.KindPickup)
		if err != nil {
			log.Printf("❌ Failed to fetch schedules: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch schedules")
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"schedules": tasks,
		})
	}
}

// GetPendingSchedules returns unassigned pickups for the dispatch board.
func GetPendingSchedules(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tasks, err := store.PendingTasks(models.KindPickup)
		if err != nil {
			log.Printf("❌ Failed to fetch pending schedules: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch pending schedules")
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"schedules": tasks,
		})
	}
}

// GetAllSchedules returns every pickup, newest first.
func GetAllSchedules(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tasks, err := store.AllTasks(models.KindPickup)
		if err != nil {
			log.Printf("❌ Failed to fetch schedules: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch schedules")
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"schedules": tasks,
		})
	}
}

// GetDriverSchedules returns the authenticated driver's assigned pickups.
func GetDriverSchedules(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		tasks, err := store.DriverTasks(user.UserID, models.KindPickup)
		if err != nil {
			log.Printf("❌ Failed to fetch driver schedules: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch driver schedules")
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"schedules": tasks,
		})
	}
}

// GetScheduleAnalytics returns pickup totals for the admin dashboard.
func GetScheduleAnalytics(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		analytics, err := store.TaskAnalytics(models.KindPickup)
		if err != nil {
			log.Printf("❌ Failed to fetch schedule analytics: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch analytics")
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"analytics": analytics,
		})
	}
}

// AssignScheduleDriver assigns (or unassigns) a driver to a pickup. The
// engine rejects assignments that would double-book the driver.
func AssignScheduleDriver(svc *dispatch.Service, store *database.Store, hub *websocket.Hub, fcm *services.FCMService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID := chi.URLParam(r, "id")

		var req models.AssignDriverRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.DriverID != nil && *req.DriverID == "" {
			req.DriverID = nil
		}

		log.Printf("📥 REQUEST: Assign schedule %s -> %v", taskID, req.DriverID)

		task, err := svc.AssignDriver(taskID, req.DriverID)
		if err != nil {
			respondEngineError(w, err)
			return
		}

		if req.DriverID != nil {
			log.Printf("✅ Schedule %s assigned to %s", taskID, *req.DriverID)
			notifyAssignment(store, hub, fcm, task)
		} else {
			log.Printf("✅ Schedule %s unassigned", taskID)
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"schedule": task,
		})
	}
}

// UpdateScheduleStatus advances a pickup along its lifecycle on behalf of
// the acting driver or admin.
func UpdateScheduleStatus(svc *dispatch.Service, store *database.Store, hub *websocket.Hub, fcm *services.FCMService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		taskID := chi.URLParam(r, "id")

		var req models.UpdateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		log.Printf("📥 REQUEST: Schedule %s status -> %s (by %s)", taskID, req.Status, user.UserID)

		actor := dispatch.Actor{ID: user.UserID, Role: user.Role}
		task, err := svc.UpdateTaskStatus(taskID, actor, req.Status, req.CollectedWeight)
		if err != nil {
			respondEngineError(w, err)
			return
		}

		log.Printf("✅ Schedule %s now %s", taskID, task.Status)
		notifyStatusChange(store, hub, fcm, task)

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"schedule": task,
		})
	}
}

// RescheduleSchedule moves a pickup to a new date and time window. The
// pickup drops back to Pending and loses its driver.
func RescheduleSchedule(svc *dispatch.Service, store *database.Store, hub *websocket.Hub, fcm *services.FCMService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		taskID := chi.URLParam(r, "id")

		var req models.RescheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.PickupDate == 0 {
			utils.RespondError(w, http.StatusBadRequest, "pickup_date is required")
			return
		}

		log.Printf("📥 REQUEST: Reschedule %s -> %d %s (by %s)", taskID, req.PickupDate, req.PickupTime, user.UserID)

		task, err := svc.RescheduleTask(taskID, user.UserID, req.PickupDate, req.PickupTime)
		if err != nil {
			respondEngineError(w, err)
			return
		}

		log.Printf("✅ Schedule %s rescheduled", taskID)
		notifyStatusChange(store, hub, fcm, task)

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"schedule": task,
		})
	}
}
