package catalog

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/skillspark/hub-api/internal/common"
)

// Handler exposes public catalog endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{service: svc}
}

// Courses handles GET /api/v1/courses.
func (h *Handler) Courses(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	params, err := ParseListParams(r.URL.Query())
	if err != nil {
		common.WriteError(w, err, http.StatusBadRequest)
		return
	}
	items := h.service.List(params)
	w.Header().Set("X-Total-Count", strconv.Itoa(len(items)))
	common.JSON(w, http.StatusOK, map[string]any{"data": items})
}

// Course handles GET /api/v1/courses/{id}.
func (h *Handler) Course(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	course, err := h.service.Get(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err, http.StatusInternalServerError)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": course})
}

// Categories handles GET /api/v1/categories.
func (h *Handler) Categories(w http.ResponseWriter, _ *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.service.Categories()})
}
