package handlers

import (
	"errors"
	"log"
	"net/http"

	"ecocollect-backend/internal/dispatch"
	"ecocollect-backend/pkg/utils"
)

// ErrJWTNotConfigured is returned when APP_JWT_SECRET is missing.
var ErrJWTNotConfigured = errors.New("JWT secret not configured")

// respondEngineError maps dispatch engine errors onto HTTP statuses:
// conflicts are 409, authorization failures 401, invalid transitions 400
// and missing records 404. Anything else is a plain 500.
func respondEngineError(w http.ResponseWriter, err error) {
	var conflictErr *dispatch.ConflictError
	if errors.As(err, &conflictErr) {
		utils.RespondError(w, http.StatusConflict, conflictErr.Error())
		return
	}

	var authErr *dispatch.AuthError
	if errors.As(err, &authErr) {
		utils.RespondError(w, http.StatusUnauthorized, authErr.Error())
		return
	}

	var stateErr *dispatch.StateError
	if errors.As(err, &stateErr) {
		utils.RespondError(w, http.StatusBadRequest, stateErr.Error())
		return
	}

	var notFoundErr *dispatch.NotFoundError
	if errors.As(err, &notFoundErr) {
		utils.RespondError(w, http.StatusNotFound, notFoundErr.Error())
		return
	}

	log.Printf("❌ Internal error: %v", err)
	utils.RespondError(w, http.StatusInternalServerError, "Internal server error")
}
