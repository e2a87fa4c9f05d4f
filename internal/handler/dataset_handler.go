package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/marksheet-analytics/internal/model"
	"github.com/stemsi/marksheet-analytics/internal/response"
)

// DatasetStore is the part of service.DatasetService the handler uses.
type DatasetStore interface {
	Upload(ctx context.Context, fileName string, r io.Reader) (*model.DatasetSummary, error)
	Summary(ctx context.Context, id string) (*model.DatasetSummary, error)
	Delete(ctx context.Context, id string) error
}

// DatasetHandler handles marksheet upload endpoints.
type DatasetHandler struct {
	datasets       DatasetStore
	maxUploadBytes int64
}

// NewDatasetHandler creates a new DatasetHandler.
func NewDatasetHandler(datasets DatasetStore, maxUploadBytes int64) *DatasetHandler {
	return &DatasetHandler{datasets: datasets, maxUploadBytes: maxUploadBytes}
}

// Upload godoc
// POST /api/v1/datasets
// Validates a CSV or Excel marksheet and caches it for analysis.
func (h *DatasetHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
			return
		}
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	summary, err := h.datasets.Upload(c.Request.Context(), header.Filename, file)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"dataset": summary})
}

// Get godoc
// GET /api/v1/datasets/:id
func (h *DatasetHandler) Get(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}

	summary, err := h.datasets.Summary(c.Request.Context(), id)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"dataset": summary})
}

// Delete godoc
// DELETE /api/v1/datasets/:id
func (h *DatasetHandler) Delete(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}

	if err := h.datasets.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "dataset deleted successfully"})
}

// datasetID reads the :id path parameter, answering 400 when it is not a UUID.
func datasetID(c *gin.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return "", false
	}
	return id.String(), true
}
