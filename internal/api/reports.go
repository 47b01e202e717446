package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/retailtally/backend/internal/auth"
)

func (h *Handler) commissionReport(w http.ResponseWriter, r *http.Request) {
	start, err := parseDateParam(r, "startDate")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := parseDateParam(r, "endDate")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if end != nil {
		// Make the window inclusive of the whole end day.
		e := end.Add(24*time.Hour - time.Second)
		end = &e
	}

	report, err := h.commission.Report(r.Context(), chi.URLParam(r, "employeeID"), start, end)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *Handler) exportSales(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	employeeID := strings.TrimSpace(r.URL.Query().Get("employeeId"))
	if employeeID == "" {
		employeeID = claims.UID
	}

	from, err := parseDateParam(r, "startDate")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseDateParam(r, "endDate")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := h.exports.SalesXLSX(r.Context(), employeeID, from, to)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("sales-%s-%s.xlsx", employeeID, time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) askAssistant(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := h.assistant.Ask(req.Prompt)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"response": reply})
}

func (h *Handler) suggestedQuestions(w http.ResponseWriter, r *http.Request) {
	customerType := strings.TrimSpace(r.URL.Query().Get("customerType"))
	respondJSON(w, http.StatusOK, map[string]any{
		"suggestedQuestions": h.assistant.SuggestedQuestions(customerType),
	})
}
