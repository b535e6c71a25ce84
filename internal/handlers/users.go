package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"ecocollect-backend/internal/database"
	"ecocollect-backend/internal/middleware"
	"ecocollect-backend/internal/models"
	"ecocollect-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
)

type UpdateUserRequest struct {
	Name          string `json:"name"`
	ContactNumber string `json:"contact_number"`
	Address       string `json:"address"`
	VehicleType   string `json:"vehicle_type"`
}

type FCMTokenRequest struct {
	Token      string `json:"token"`
	DeviceType string `json:"device_type"`
}

// UpdateUser updates profile fields. Users may edit themselves; admins
// may edit anyone. Empty fields are left unchanged.
func UpdateUser(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		targetID := chi.URLParam(r, "id")
		if actor.UserID != targetID && actor.Role != models.RoleAdmin {
			utils.RespondError(w, http.StatusForbidden, "Cannot edit another user")
			return
		}

		var req UpdateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		log.Printf("📥 REQUEST: Update user %s (by %s)", targetID, actor.UserID)

		target, err := store.UserByID(targetID)
		if err != nil {
			log.Printf("❌ Failed to fetch user: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update user")
			return
		}
		if target == nil {
			utils.RespondError(w, http.StatusNotFound, "User not found")
			return
		}

		// Vehicle type only makes sense on driver accounts
		if target.Role != models.RoleDriver {
			req.VehicleType = ""
		}

		updated, err := store.UpdateUserProfile(targetID, req.Name, req.ContactNumber, req.Address, req.VehicleType)
		if err != nil {
			log.Printf("❌ Failed to update user: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update user")
			return
		}

		log.Printf("✅ User %s updated", targetID)
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"user":    updated.ToUserResponse(),
		})
	}
}

// RegisterFCMToken saves a device push token for the authenticated user.
func RegisterFCMToken(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req FCMTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Token == "" {
			utils.RespondError(w, http.StatusBadRequest, "token is required")
			return
		}
		if req.DeviceType != "ios" && req.DeviceType != "android" {
			utils.RespondError(w, http.StatusBadRequest, "device_type must be ios or android")
			return
		}

		if err := store.SaveFCMToken(user.UserID, req.Token, req.DeviceType); err != nil {
			log.Printf("❌ Failed to save FCM token: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to save token")
			return
		}

		log.Printf("✅ FCM token registered for %s (%s)", user.UserID, req.DeviceType)
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
		})
	}
}
