package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/marksheet-analytics/internal/model"
	"github.com/stemsi/marksheet-analytics/internal/response"
	"github.com/stemsi/marksheet-analytics/internal/service"
	"github.com/stemsi/marksheet-analytics/internal/validator"
)

type ReviewHandler struct {
	reviewService *service.ReviewService
}

func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// List godoc
// GET /api/v1/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	feed, err := h.reviewService.Feed(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, feed)
}

// Create godoc
// POST /api/v1/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	var req model.CreateReviewRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	rv, err := h.reviewService.Submit(c.Request.Context(), req.Text)
	if err != nil {
		if errors.Is(err, service.ErrEmptyReview) {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"text": err.Error()})
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"review": rv})
}
