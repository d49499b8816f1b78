package errors_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/turtacn/legajos-penal/pkg/errors"
)

func TestHTTPStatusForCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusBadRequest, errors.HTTPStatusForCode(errors.ErrCodeNoValidPDF))
	assert.Equal(t, http.StatusBadRequest, errors.HTTPStatusForCode(errors.ErrCodePathEscape))
	assert.Equal(t, http.StatusNotFound, errors.HTTPStatusForCode(errors.ErrCodePDFNotFound))
	assert.Equal(t, http.StatusUnauthorized, errors.HTTPStatusForCode(errors.ErrCodeInvalidCredentials))
	assert.Equal(t, http.StatusInternalServerError, errors.HTTPStatusForCode(errors.ErrorCode("NOPE_999")))
}

func TestEveryCodeHasMessage(t *testing.T) {
	t.Parallel()

	for code := range errors.ErrorCodeHTTPStatus {
		_, ok := errors.ErrorCodeMessage[code]
		assert.True(t, ok, "missing message for %s", code)
	}
	assert.Equal(t, "Error desconocido", errors.DefaultMessageForCode(errors.ErrorCode("NOPE_999")))
}

func TestClientServerClassification(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsClientError(errors.ErrCodeCourtFileInvalid))
	assert.False(t, errors.IsServerError(errors.ErrCodeCourtFileInvalid))
	assert.True(t, errors.IsServerError(errors.CodeDBQueryError))
}

func TestModuleForCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "CASE", errors.ModuleForCode(errors.ErrCodeCaseNotFound))
	assert.Equal(t, "FILE", errors.ModuleForCode(errors.ErrCodeNoValidPDF))
	assert.Equal(t, "COMMON", errors.ModuleForCode(errors.CodeInternal))
	assert.Equal(t, "UNKNOWN", errors.ModuleForCode(errors.CodeOK))
}
