// Package rest provides HTTP handlers for catalog operations.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/catalog/internal/catalog"
	"github.com/abgdnv/catalog/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// CatalogService is the set of catalog operations exposed over HTTP.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)
	AddProduct(ctx context.Context, m catalog.Mapping) error
	AddProducts(ctx context.Context, ms []catalog.Mapping) error
	UpdateQty(ctx context.Context, id int64, qty int64) error
}

// QtyUpdateDto is the body of a quantity update.
type QtyUpdateDto struct {
	Qty *int64 `json:"qty" validate:"required"`
}

type Handler struct {
	service  CatalogService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new Handler with the provided service.
func NewHandler(service CatalogService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the catalog.
// writeMiddlewares wrap only the routes that modify the catalog.
func (h *Handler) RegisterRoutes(r chi.Router, writeMiddlewares ...func(http.Handler) http.Handler) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{id}", h.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(writeMiddlewares...)
			r.Post("/", h.AddProduct)
			r.Post("/batch", h.AddProducts)
			r.Put("/{id}/qty", h.UpdateQty)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// ListProducts retrieves every product.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received request to list products")
	list, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// GetProduct retrieves a product by its ID.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}

	h.logger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %d", id))
		return
	}
	if found == nil {
		h.logger.WarnContext(r.Context(), "Product not found", "ID", id)
		web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

// AddProduct stores the product given as a JSON object.
func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if !web.DecodeJSON(w, r, h.logger, &body) {
		return
	}
	m := toMapping(body)
	h.logger.DebugContext(r.Context(), "Received request to add product", "ID", m[catalog.KeyID])

	if err := h.service.AddProduct(r.Context(), m); err != nil {
		h.respondServiceError(w, r, err, "Failed to add product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product added successfully", "ID", m[catalog.KeyID])
	w.WriteHeader(http.StatusCreated)
}

// AddProducts stores every product of the JSON array body, or none of them.
func (h *Handler) AddProducts(w http.ResponseWriter, r *http.Request) {
	var body []map[string]any
	if !web.DecodeJSON(w, r, h.logger, &body) {
		return
	}
	ms := make([]catalog.Mapping, len(body))
	for i, item := range body {
		ms[i] = toMapping(item)
	}
	h.logger.DebugContext(r.Context(), "Received request to add products", "count", len(ms))

	if err := h.service.AddProducts(r.Context(), ms); err != nil {
		h.respondServiceError(w, r, err, "Failed to add products")
		return
	}
	h.logger.InfoContext(r.Context(), "Products added successfully", "count", len(ms))
	w.WriteHeader(http.StatusCreated)
}

// UpdateQty sets the quantity of a product.
func (h *Handler) UpdateQty(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to update quantity", "ID", id)
	var qtyUpdateDto QtyUpdateDto
	if err := json.NewDecoder(r.Body).Decode(&qtyUpdateDto); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(qtyUpdateDto); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			h.logger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, h.logger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return
		}
		h.logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.UpdateQty(r.Context(), id, *qtyUpdateDto.Qty); err != nil {
		h.respondServiceError(w, r, err, fmt.Sprintf("Failed to update quantity for product with ID %d", id))
		return
	}
	h.logger.InfoContext(r.Context(), "Quantity updated successfully", "ID", id, "qty", *qtyUpdateDto.Qty)
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// respondServiceError maps validation errors to 400, id conflicts to 409 and anything else to 500.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, failure string) {
	switch {
	case errors.Is(err, catalog.ErrValidation):
		h.logger.WarnContext(r.Context(), "Invalid product data", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrConflict):
		h.logger.WarnContext(r.Context(), "Product conflict", "error", err)
		web.RespondError(w, h.logger, http.StatusConflict, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), failure, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, failure)
	}
}

// toMapping converts a decoded JSON object into a catalog mapping,
// turning json.Number values into int64 when integral and float64 otherwise.
func toMapping(body map[string]any) catalog.Mapping {
	m := make(catalog.Mapping, len(body))
	for k, v := range body {
		if n, ok := v.(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				v = i
			} else if f, err := n.Float64(); err == nil {
				v = f
			}
		}
		m[k] = v
	}
	return m
}
