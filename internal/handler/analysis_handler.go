package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/marksheet-analytics/internal/model"
	"github.com/stemsi/marksheet-analytics/internal/response"
	"github.com/stemsi/marksheet-analytics/internal/service"
	"github.com/stemsi/marksheet-analytics/internal/validator"
)

// AnalysisHandler serves the analysis endpoints of a cached dataset.
type AnalysisHandler struct {
	analysisService *service.AnalysisService
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

// Teachers godoc
// POST /api/v1/datasets/:id/teachers
func (h *AnalysisHandler) Teachers(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}

	var req model.SubjectsRequest
	if fields := bindOptional(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	rep, err := h.analysisService.Teachers(c.Request.Context(), id, req.Subjects)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rep)
}

// Bias godoc
// POST /api/v1/datasets/:id/bias
func (h *AnalysisHandler) Bias(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}

	var req model.BiasRequest
	if fields := bindOptional(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	out, err := h.analysisService.Bias(c.Request.Context(), id, req)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subjects": out})
}

// Subjects godoc
// POST /api/v1/datasets/:id/subjects
func (h *AnalysisHandler) Subjects(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}

	var req model.SubjectsRequest
	if fields := bindOptional(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	rep, err := h.analysisService.Subjects(c.Request.Context(), id, req.Subjects)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rep)
}

// bindOptional binds a JSON body when one was sent. An empty body leaves
// dst at its zero value.
func bindOptional(c *gin.Context, dst interface{}) map[string]string {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return validator.Bind(c, dst)
}
