package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/retailtally/backend/internal/auth"
	"github.com/retailtally/backend/internal/service"
)

// uploadReceipt accepts a multipart receipt file and either processes it
// inline or, with ?async=true, enqueues a job and returns 202.
func (h *Handler) uploadReceipt(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, service.MaxUploadBytes)
	if err := r.ParseMultipartForm(service.MaxUploadBytes); err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "upload exceeds the 15MB limit")
		return
	}

	file, header, err := r.FormFile("receipt")
	if err != nil {
		respondError(w, http.StatusBadRequest, "multipart field 'receipt' is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unable to read upload")
		return
	}

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		job, err := h.uploads.StartJob(claims.UID, header.Filename, data)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusAccepted, job)
		return
	}

	result, err := h.uploads.Process(r.Context(), claims.UID, header.Filename, data)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) uploadJobStatus(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	job, err := h.uploads.GetJob(claims.UID, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, job)
}
