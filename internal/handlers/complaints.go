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

// CreateComplaint files a new complaint for the authenticated user.
// Complaints carry no pickup date: they are due the day they are worked.
func CreateComplaint(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req models.CreateComplaintRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		log.Printf("📥 REQUEST: Create complaint from %s", user.UserID)

		if req.Address == "" || req.Description == "" {
			utils.RespondError(w, http.StatusBadRequest, "address and description are required")
			return
		}

		now := time.Now().Unix()
		task := &models.Task{
			ID:          uuid.New().String(),
			UserID:      user.UserID,
			Kind:        models.KindComplaint,
			WasteType:   req.WasteType,
			Quantity:    req.Quantity,
			Description: req.Description,
			Address:     req.Address,
			Latitude:    req.Latitude,
			Longitude:   req.Longitude,
			Status:      models.StatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := store.CreateTask(task); err != nil {
			log.Printf("❌ Failed to create complaint: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create complaint")
			return
		}

		log.Printf("✅ Complaint created: %s", task.ID)
		utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
			"success":   true,
			"complaint": task,
		})
	}
}

// GetMyComplaints returns the authenticated user's complaints.
func GetMyComplaints(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		tasks, err := store.TasksForUser(user.UserID, models.KindComplaint)
		if err != nil {
			log.Printf("❌ Failed to fetch complaints: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch complaints")
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success":    true,
			"complaints": tasks,
		})
	}
}

// GetPendingComplaints returns unassigned complaints for the dispatch board.
func GetPendingComplaints(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tasks, err := store.PendingTasks(models.KindComplaint)
		if err != nil {
			log.Printf("❌ Failed to fetch pending complaints: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch pending complaints")
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success":    true,
			"complaints": tasks,
		})
	}
}

// GetAllComplaints returns every complaint, newest first.
func GetAllComplaints(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tasks, err := store.AllTasks(models.KindComplaint)
		if err != nil {
			log.Printf("❌ Failed to fetch complaints: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch complaints")
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success":    true,
			"complaints": tasks,
		})
	}
}

// GetDriverComplaints returns the authenticated driver's assigned complaints.
func GetDriverComplaints(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		tasks, err := store.DriverTasks(user.UserID, models.KindComplaint)
		if err != nil {
			log.Printf("❌ Failed to fetch driver complaints: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch driver complaints")
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success":    true,
			"complaints": tasks,
		})
	}
}

// GetComplaintAnalytics returns complaint totals for the admin dashboard.
func GetComplaintAnalytics(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		analytics, err := store.TaskAnalytics(models.KindComplaint)
		if err != nil {
			log.Printf("❌ Failed to fetch complaint analytics: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch analytics")
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"analytics": analytics,
		})
	}
}

// AssignComplaintDriver assigns (or unassigns) a driver to a complaint.
// A driver with any active complaint, or a pickup today, is rejected.
func AssignComplaintDriver(svc *dispatch.Service, store *database.Store, hub *websocket.Hub, fcm *services.FCMService) http.HandlerFunc {
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

		log.Printf("📥 REQUEST: Assign complaint %s -> %v", taskID, req.DriverID)

		task, err := svc.AssignDriver(taskID, req.DriverID)
		if err != nil {
			respondEngineError(w, err)
			return
		}

		if req.DriverID != nil {
			log.Printf("✅ Complaint %s assigned to %s", taskID, *req.DriverID)
			notifyAssignment(store, hub, fcm, task)
		} else {
			log.Printf("✅ Complaint %s unassigned", taskID)
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"complaint": task,
		})
	}
}

// UpdateComplaintStatus advances a complaint along its lifecycle. The
// terminal transition is On the way -> Resolved.
func UpdateComplaintStatus(svc *dispatch.Service, store *database.Store, hub *websocket.Hub, fcm *services.FCMService) http.HandlerFunc {
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

		log.Printf("📥 REQUEST: Complaint %s status -> %s (by %s)", taskID, req.Status, user.UserID)

		actor := dispatch.Actor{ID: user.UserID, Role: user.Role}
		task, err := svc.UpdateTaskStatus(taskID, actor, req.Status, req.CollectedWeight)
		if err != nil {
			respondEngineError(w, err)
			return
		}

		log.Printf("✅ Complaint %s now %s", taskID, task.Status)
		notifyStatusChange(store, hub, fcm, task)

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"complaint": task,
		})
	}
}
