package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"ecocollect-backend/internal/database"
	"ecocollect-backend/internal/models"
	"ecocollect-backend/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	ContactNumber string `json:"contact_number"`
	Address       string `json:"address"`
	VehicleType   string `json:"vehicle_type"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	OK    bool                 `json:"ok"`
	Token string               `json:"token,omitempty"`
	User  *models.UserResponse `json:"user,omitempty"`
}

func signToken(user *models.User) (string, error) {
	jwtSecret := os.Getenv("APP_JWT_SECRET")
	if jwtSecret == "" {
		return "", ErrJWTNotConfigured
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(7 * 24 * time.Hour).Unix(),
	})
	return token.SignedString([]byte(jwtSecret))
}

func validRole(role string) bool {
	switch role {
	case models.RoleUser, models.RoleOrganization, models.RoleDriver, models.RoleAdmin:
		return true
	}
	return false
}

// Register creates a new account. Drivers get the default capacity
// ceiling; other roles carry no vehicle.
func Register(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		log.Printf("📥 REQUEST: Register %s (%s)", req.Email, req.Role)

		if req.Email == "" || req.Password == "" || req.Name == "" {
			utils.RespondError(w, http.StatusBadRequest, "email, password and name are required")
			return
		}
		if !validRole(req.Role) {
			utils.RespondError(w, http.StatusBadRequest, "invalid role")
			return
		}

		existing, err := store.UserByEmail(req.Email)
		if err != nil {
			log.Printf("❌ Failed to check email: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to register")
			return
		}
		if existing != nil {
			utils.RespondError(w, http.StatusConflict, "email already registered")
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("❌ Failed to hash password: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to register")
			return
		}

		now := time.Now().Unix()
		user := &models.User{
			ID:            uuid.New().String(),
			Email:         req.Email,
			Password:      string(hashed),
			Name:          req.Name,
			Role:          req.Role,
			ContactNumber: req.ContactNumber,
			Address:       req.Address,
			MaxCapacityKg: models.DefaultMaxCapacityKg,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		// Only drivers carry a vehicle
		if req.Role == models.RoleDriver {
			user.VehicleType = req.VehicleType
		}

		if err := store.CreateUser(user); err != nil {
			log.Printf("❌ Failed to create user: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to register")
			return
		}

		tokenString, err := signToken(user)
		if err != nil {
			log.Printf("❌ Failed to create token: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create token")
			return
		}

		userResponse := user.ToUserResponse()
		log.Printf("✅ Registered: %s (%s)", user.Email, user.Role)

		utils.RespondJSON(w, http.StatusCreated, AuthResponse{
			OK:    true,
			Token: tokenString,
			User:  &userResponse,
		})
	}
}

func Login(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		log.Printf("🔐 Login attempt for: %s", req.Email)

		user, err := store.UserByEmail(req.Email)
		if err != nil {
			log.Printf("❌ Failed to fetch user: %v", err)
			utils.RespondJSON(w, http.StatusInternalServerError, AuthResponse{OK: false})
			return
		}
		if user == nil {
			log.Printf("❌ User not found: %s", req.Email)
			utils.RespondJSON(w, http.StatusUnauthorized, AuthResponse{OK: false})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			log.Printf("❌ Invalid password for: %s", req.Email)
			utils.RespondJSON(w, http.StatusUnauthorized, AuthResponse{OK: false})
			return
		}

		tokenString, err := signToken(user)
		if err != nil {
			log.Printf("❌ Failed to create token: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create token")
			return
		}

		userResponse := user.ToUserResponse()
		log.Printf("✅ Login successful: %s (%s)", user.Email, user.Role)

		utils.RespondJSON(w, http.StatusOK, AuthResponse{
			OK:    true,
			Token: tokenString,
			User:  &userResponse,
		})
	}
}
