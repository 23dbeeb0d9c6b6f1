package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apimw "github.com/wrlc/alma-item-checks/internal/api/middleware"
	"github.com/wrlc/alma-item-checks/internal/domain"
	"github.com/wrlc/alma-item-checks/internal/service"
)

// CheckHandler handles check-definition CRUD endpoints.
type CheckHandler struct {
	svc    *service.CheckService
	logger *zap.Logger
}

func NewCheckHandler(svc *service.CheckService, logger *zap.Logger) *CheckHandler {
	return &CheckHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/checks
func (h *CheckHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	check, err := h.svc.Create(r.Context(), &req)
	if err != nil {
		h.logger.Warn("create check failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err))
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, check)
}

// GetByID handles GET /api/v1/checks/{id}
func (h *CheckHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	check, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, check)
}

// List handles GET /api/v1/checks
func (h *CheckHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)
	checks, total, err := h.svc.List(r.Context(), page, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list checks")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data":  checks,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// Update handles PATCH /api/v1/checks/{id}
func (h *CheckHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req domain.UpdateCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	check, err := h.svc.Update(r.Context(), id, &req)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, check)
}

// Delete handles DELETE /api/v1/checks/{id}
func (h *CheckHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func pagination(r *http.Request) (page, limit int) {
	page, limit = 1, 20
	q := r.URL.Query()
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	return page, limit
}
