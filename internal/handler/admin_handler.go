package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/marksheet-analytics/internal/model"
	"github.com/stemsi/marksheet-analytics/internal/response"
	"github.com/stemsi/marksheet-analytics/internal/validator"
)

const defaultRunsPerPage = 50

// RunLister lists analysis audit records.
type RunLister interface {
	List(ctx context.Context, q model.ListRunsQuery) ([]model.AnalysisRun, int, error)
}

// AdminHandler handles admin-only endpoints.
type AdminHandler struct {
	runs RunLister
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(runs RunLister) *AdminHandler {
	return &AdminHandler{runs: runs}
}

// ListRuns godoc
// GET /api/v1/admin/runs?page=&per_page=&dataset_id=
func (h *AdminHandler) ListRuns(c *gin.Context) {
	var q model.ListRunsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		return
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PerPage == 0 {
		q.PerPage = defaultRunsPerPage
	}

	runs, total, err := h.runs.List(c.Request.Context(), q)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if runs == nil {
		runs = []model.AnalysisRun{}
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"runs": runs}, &response.Pagination{
		Page:       q.Page,
		PerPage:    q.PerPage,
		TotalItems: total,
		TotalPages: (total + q.PerPage - 1) / q.PerPage,
	})
}
