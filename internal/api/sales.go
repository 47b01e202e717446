package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/retailtally/backend/internal/model"
)

const defaultPageSize = 50

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var sale model.Sale
	if err := decodeJSON(r, &sale); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.sales.Create(r.Context(), &sale)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	sale, err := h.sales.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sale)
}

func (h *Handler) updateSale(w http.ResponseWriter, r *http.Request) {
	var sale model.Sale
	if err := decodeJSON(r, &sale); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	sale.ID = chi.URLParam(r, "id")

	updated, err := h.sales.Update(r.Context(), &sale)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteSale(w http.ResponseWriter, r *http.Request) {
	if err := h.sales.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// salesPage is the paginated list response.
type salesPage struct {
	Sales         []*model.Sale `json:"sales"`
	NextPageToken string        `json:"nextPageToken,omitempty"`
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	filter := model.SaleFilter{
		EmployeeID: strings.TrimSpace(r.URL.Query().Get("employeeId")),
		Status:     model.ApprovalStatus(strings.TrimSpace(r.URL.Query().Get("status"))),
	}

	var err error
	if filter.StartDate, err = parseDateParam(r, "startDate"); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter.EndDate, err = parseDateParam(r, "endDate"); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	pageSize, pageToken := pageParams(r)
	sales, nextToken, err := h.sales.List(r.Context(), filter, pageSize, pageToken)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, salesPage{Sales: sales, NextPageToken: nextToken})
}

func (h *Handler) listPendingSales(w http.ResponseWriter, r *http.Request) {
	pageSize, pageToken := pageParams(r)
	sales, nextToken, err := h.sales.ListPending(r.Context(), pageSize, pageToken)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, salesPage{Sales: sales, NextPageToken: nextToken})
}

func (h *Handler) setApproval(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status model.ApprovalStatus `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sale, err := h.sales.SetApproval(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sale)
}

func pageParams(r *http.Request) (int32, string) {
	pageSize := int32(defaultPageSize)
	if raw := r.URL.Query().Get("pageSize"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			pageSize = int32(n)
		}
	}
	return pageSize, r.URL.Query().Get("pageToken")
}

func parseDateParam(r *http.Request, name string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be in YYYY-MM-DD format", name)
	}
	return &t, nil
}
