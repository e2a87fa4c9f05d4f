package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/stemsi/marksheet-analytics/internal/apperror"
	"github.com/stemsi/marksheet-analytics/internal/response"
)

// failWithError answers with the status and code classified for err.
func failWithError(c *gin.Context, err error) {
	status, code := apperror.Classify(err)
	response.FailWithDetail(c, status, code, err)
}
