package handlers

import (
	"log"

	"ecocollect-backend/internal/database"
	"ecocollect-backend/internal/models"
	"ecocollect-backend/internal/services"
	"ecocollect-backend/internal/websocket"
)

// notifyAssignment tells the driver about a newly assigned task over
// WebSocket and push, and mirrors the event to connected admins.
func notifyAssignment(store *database.Store, hub *websocket.Hub, fcm *services.FCMService, task *models.Task) {
	if task == nil || task.AssignedDriver == nil {
		return
	}
	driverID := *task.AssignedDriver

	event := map[string]interface{}{
		"type": "task_assigned",
		"data": task,
	}
	hub.BroadcastToUser(driverID, event)
	hub.BroadcastToRole(models.RoleAdmin, event)

	// Push only when the driver has no live socket to receive the event
	if fcm == nil || hub.IsUserConnected(driverID) {
		return
	}
	tokens, err := store.FCMTokensForUser(driverID)
	if err != nil {
		log.Printf("⚠️ Failed to fetch FCM tokens for %s: %v", driverID, err)
		return
	}
	if err := fcm.SendTaskAssignedNotification(tokens, task.ID, string(task.Kind), task.Address); err != nil {
		log.Printf("⚠️ FCM send failed: %v", err)
	}
}

// notifyStatusChange tells the requesting user that their task moved.
func notifyStatusChange(store *database.Store, hub *websocket.Hub, fcm *services.FCMService, task *models.Task) {
	if task == nil {
		return
	}

	event := map[string]interface{}{
		"type": "task_status_update",
		"data": task,
	}
	hub.BroadcastToUser(task.UserID, event)
	hub.BroadcastToRole(models.RoleAdmin, event)

	if fcm == nil || hub.IsUserConnected(task.UserID) {
		return
	}
	tokens, err := store.FCMTokensForUser(task.UserID)
	if err != nil {
		log.Printf("⚠️ Failed to fetch FCM tokens for %s: %v", task.UserID, err)
		return
	}
	if err := fcm.SendStatusUpdateNotification(tokens, task.ID, string(task.Status)); err != nil {
		log.Printf("⚠️ FCM send failed: %v", err)
	}
}
