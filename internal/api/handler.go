// Package api exposes the HTTP surface: auth, sales, receipt uploads,
// commission reports, exports, and the assistant.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/retailtally/backend/internal/auth"
	"github.com/retailtally/backend/internal/service"
	"github.com/retailtally/backend/internal/store"
)

// Handler bundles the services behind the HTTP API.
type Handler struct {
	users      *service.UserService
	sales      *service.SalesService
	commission *service.CommissionService
	uploads    *service.UploadService
	exports    *service.ExportService
	assistant  *service.AssistantService
	tokens     *auth.TokenService
}

// New constructs a Handler.
func New(
	users *service.UserService,
	sales *service.SalesService,
	commission *service.CommissionService,
	uploads *service.UploadService,
	exports *service.ExportService,
	assistant *service.AssistantService,
	tokens *auth.TokenService,
) *Handler {
	return &Handler{
		users:      users,
		sales:      sales,
		commission: commission,
		uploads:    uploads,
		exports:    exports,
		assistant:  assistant,
		tokens:     tokens,
	}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.register)
			r.Post("/login", h.login)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(auth.Middleware(h.tokens))

			pr.Get("/users/me", h.me)

			pr.Route("/sales", func(r chi.Router) {
				r.Post("/", h.createSale)
				r.Get("/", h.listSales)
				r.Get("/pending", h.listPendingSales)
				r.Get("/export", h.exportSales)
				r.Post("/upload", h.uploadReceipt)
				r.Get("/upload/jobs/{id}", h.uploadJobStatus)
				r.Get("/{id}", h.getSale)
				r.Put("/{id}", h.updateSale)
				r.Delete("/{id}", h.deleteSale)
				r.Patch("/{id}/approval", h.setApproval)
			})

			pr.Get("/commission/{employeeID}", h.commissionReport)

			pr.Route("/assistant", func(r chi.Router) {
				r.Post("/", h.askAssistant)
				r.Get("/suggested-questions", h.suggestedQuestions)
			})
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helpers

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service and store sentinels onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden), errors.Is(err, auth.ErrPermissionDenied):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		respondError(w, http.StatusConflict, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
