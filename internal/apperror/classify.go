// Package apperror maps the domain sentinel errors to HTTP statuses and
// response codes. It is shared by the HTTP handlers, the services (for
// metric labels) and the CLI (for exit codes).
package apperror

import (
	"context"
	"errors"
	"net/http"

	"github.com/stemsi/marksheet-analytics/internal/bias"
	"github.com/stemsi/marksheet-analytics/internal/dataset"
	"github.com/stemsi/marksheet-analytics/internal/effectiveness"
	"github.com/stemsi/marksheet-analytics/internal/performance"
	"github.com/stemsi/marksheet-analytics/internal/response"
)

var classified = []struct {
	err    error
	status int
	code   response.ErrCode
}{
	{dataset.ErrNotFound, http.StatusNotFound, response.ErrDatasetNotFound},
	{dataset.ErrInvalidExtension, http.StatusUnsupportedMediaType, response.ErrInvalidExt},
	{dataset.ErrCorruptedFile, http.StatusUnprocessableEntity, response.ErrCorruptedFile},
	{dataset.ErrUnknownColumn, http.StatusUnprocessableEntity, response.ErrUnknownColumn},
	{dataset.ErrDuplicateKey, http.StatusUnprocessableEntity, response.ErrDuplicateKey},
	{dataset.ErrNonNumeric, http.StatusUnprocessableEntity, response.ErrNonNumeric},
	{dataset.ErrOutOfRange, http.StatusUnprocessableEntity, response.ErrOutOfRange},
	{dataset.ErrInvalidDataStructure, http.StatusUnprocessableEntity, response.ErrInvalidStruct},
	{effectiveness.ErrUnknownSubject, http.StatusNotFound, response.ErrUnknownSubject},
	{performance.ErrUnknownSubject, http.StatusNotFound, response.ErrUnknownSubject},
	{bias.ErrMissingColumns, http.StatusNotFound, response.ErrUnknownSubject},
	{effectiveness.ErrNoTeacherColumn, http.StatusUnprocessableEntity, response.ErrNoTeacherColumn},
	{bias.ErrMissingCategoricalColumn, http.StatusUnprocessableEntity, response.ErrMissingCategory},
	{bias.ErrTooManyCategories, http.StatusUnprocessableEntity, response.ErrTooManyCategories},
	{bias.ErrInsufficientSampleSize, http.StatusUnprocessableEntity, response.ErrInsufficientSamples},
}

// Classify maps a domain error to an HTTP status and error code. Unknown
// errors are internal.
func Classify(err error) (int, response.ErrCode) {
	for _, c := range classified {
		if errors.Is(err, c.err) {
			return c.status, c.code
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, response.ErrInternal
	}
	return http.StatusInternalServerError, response.ErrInternal
}
