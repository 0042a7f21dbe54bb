package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/allbirds/storefront/internal/domain/models"
	"github.com/allbirds/storefront/internal/storage"
)

type ProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Title       string  `json:"title"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
}

func ListProductsHandler(log *slog.Logger, productRepo storage.ProductStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListProductsHandler"
		logger := log.With(slog.String("op", op))

		products, err := productRepo.ListProducts(r.Context())
		if err != nil {
			logger.Error("failed to list products", slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, "database error")
			return
		}
		if products == nil {
			products = []*models.Product{}
		}
		respondJSON(w, http.StatusOK, products)
	}
}

func CreateProductHandler(log *slog.Logger, productRepo storage.ProductStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateProductHandler"
		logger := log.With(slog.String("op", op))

		var req ProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(w, http.StatusBadRequest, "name and a positive price are required")
			return
		}

		product, err := productRepo.CreateProduct(r.Context(), &models.Product{
			Name:        req.Name,
			Title:       req.Title,
			Price:       req.Price,
			Description: req.Description,
			Image:       req.Image,
		})
		if err != nil {
			logger.Error("failed to create product", slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, "database error")
			return
		}
		respondJSON(w, http.StatusCreated, product)
	}
}

func UpdateProductHandler(log *slog.Logger, productRepo storage.ProductStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "valid product ID is required")
			return
		}

		var req ProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(w, http.StatusBadRequest, "name and a positive price are required")
			return
		}

		product, err := productRepo.UpdateProduct(r.Context(), &models.Product{
			ID:          id,
			Name:        req.Name,
			Title:       req.Title,
			Price:       req.Price,
			Description: req.Description,
			Image:       req.Image,
		})
		if err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				respondError(w, http.StatusNotFound, "product not found")
				return
			}
			logger.Error("failed to update product", slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, "database error")
			return
		}
		respondJSON(w, http.StatusOK, product)
	}
}

func DeleteProductHandler(log *slog.Logger, productRepo storage.ProductStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "valid product ID is required")
			return
		}

		if err := productRepo.DeleteProduct(r.Context(), id); err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				respondError(w, http.StatusNotFound, "product not found")
				return
			}
			logger.Error("failed to delete product", slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, "database error")
			return
		}
		respondJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
