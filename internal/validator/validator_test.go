package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type biasPayload struct {
	Category string `json:"category" binding:"omitempty,oneof=Gender Religion"`
	Text     string `json:"text" binding:"required"`
}

func bindBody(body string) map[string]string {
	gin.SetMode(gin.TestMode)
	Setup()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var p biasPayload
	return Bind(c, &p)
}

func TestBindTranslatesByJSONName(t *testing.T) {
	fields := bindBody(`{"category":"Caste"}`)

	assert.Contains(t, fields, "category")
	assert.Contains(t, fields, "text")
	assert.Contains(t, fields["text"], "required")
}

func TestBindValid(t *testing.T) {
	assert.Nil(t, bindBody(`{"category":"Gender","text":"ok"}`))
}

func TestBindSyntaxError(t *testing.T) {
	fields := bindBody(`{"category":`)
	assert.Contains(t, fields, "detail")
}
