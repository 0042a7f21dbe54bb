package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/allbirds/storefront/internal/security/jwtmiddleware"
	"github.com/allbirds/storefront/internal/service"
	"github.com/allbirds/storefront/internal/storage"
)

// SignupRequest is the registration payload.
type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin superadmin"`
}

// LoginRequest is the authentication payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the JWT plus the role for the client's routing.
type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// SignupHandler handles POST /api/auth/signup.
func SignupHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SignupHandler"
		logger := log.With(slog.String("op", op))

		var req SignupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			respondError(w, http.StatusBadRequest, "invalid request")
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			respondError(w, http.StatusBadRequest, "please fill all the fields")
			return
		}

		user, err := authService.Signup(r.Context(), req.Name, req.Email, req.Password, req.Role)
		if err != nil {
			if errors.Is(err, storage.ErrEmailTaken) {
				respondError(w, http.StatusBadRequest, "email already registered")
				return
			}
			logger.Error("signup failed", slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		respondJSON(w, http.StatusCreated, user)
	}
}

// LoginHandler handles POST /api/auth/login.
func LoginHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.LoginHandler"
		logger := log.With(slog.String("op", op))

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			respondError(w, http.StatusBadRequest, "invalid request")
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			respondError(w, http.StatusBadRequest, "validation error")
			return
		}

		token, role, err := authService.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				respondError(w, http.StatusUnauthorized, "invalid email or password")
				return
			}
			logger.Error("login failed", slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		respondJSON(w, http.StatusOK, LoginResponse{Token: token, Role: role})
	}
}

// ProfileHandler handles GET /api/auth/profile for any logged-in user.
func ProfileHandler(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		role, _ := jwtmiddleware.RoleFromContext(r.Context())
		respondJSON(w, http.StatusOK, map[string]any{"id": userID, "role": role})
	}
}
