package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/allbirds/storefront/internal/domain/models"
	"github.com/allbirds/storefront/internal/storage"
)

// User management is plain CRUD behind the admin role; the handlers talk to
// the repository directly.

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=user admin superadmin"`
}

type UpdateUserRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=user admin superadmin"`
}

func ListUsersHandler(log *slog.Logger, userRepo storage.UserStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListUsersHandler"
		logger := log.With(slog.String("op", op))

		users, err := userRepo.ListUsers(r.Context())
		if err != nil {
			logger.Error("failed to list users", slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, "database error")
			return
		}
		if users == nil {
			users = []*models.User{}
		}
		respondJSON(w, http.StatusOK, users)
	}
}

func CreateUserHandler(log *slog.Logger, userRepo storage.UserStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateUserHandler"
		logger := log.With(slog.String("op", op))

		var req CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(w, http.StatusBadRequest, "all fields are required")
			return
		}

		passHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			logger.Error("failed to hash password", slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		user, err := userRepo.CreateUser(r.Context(), &models.User{
			Name:     req.Name,
			Email:    req.Email,
			PassHash: passHash,
			Role:     req.Role,
		})
		if err != nil {
			if errors.Is(err, storage.ErrEmailTaken) {
				respondError(w, http.StatusBadRequest, "email already registered")
				return
			}
			logger.Error("failed to create user", slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, "database error")
			return
		}
		respondJSON(w, http.StatusCreated, user)
	}
}

func UpdateUserHandler(log *slog.Logger, userRepo storage.UserStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateUserHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "valid user ID is required")
			return
		}

		var req UpdateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(w, http.StatusBadRequest, "all fields are required")
			return
		}

		user, err := userRepo.UpdateUser(r.Context(), &models.User{
			ID:    id,
			Name:  req.Name,
			Email: req.Email,
			Role:  req.Role,
		})
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrUserNotFound):
				respondError(w, http.StatusNotFound, "user not found")
			case errors.Is(err, storage.ErrEmailTaken):
				respondError(w, http.StatusBadRequest, "email already registered")
			default:
				logger.Error("failed to update user", slog.Any("error", err))
				respondError(w, http.StatusInternalServerError, "database error")
			}
			return
		}
		respondJSON(w, http.StatusOK, user)
	}
}

func DeleteUserHandler(log *slog.Logger, userRepo storage.UserStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteUserHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "valid user ID is required")
			return
		}

		if err := userRepo.DeleteUser(r.Context(), id); err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				respondError(w, http.StatusNotFound, "user not found")
				return
			}
			logger.Error("failed to delete user", slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, "database error")
			return
		}
		respondJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
