package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FailWithDetail sends an error response. For client errors the error text,
// which names the offending column or row, goes into fields.detail; server
// errors are not echoed.
func FailWithDetail(c *gin.Context, statusCode int, code ErrCode, err error) {
	if statusCode >= http.StatusInternalServerError || err == nil {
		Fail(c, statusCode, code)
		return
	}
	FailWithFields(c, statusCode, code, map[string]string{"detail": err.Error()})
}
