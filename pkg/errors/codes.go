package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeStorageError       ErrorCode = "COMMON_014"
	ErrCodeNotImplemented     ErrorCode = "COMMON_016"
)

// Case Module Error Codes
const (
	ErrCodeCaseNotFound       ErrorCode = "CASE_001"
	ErrCodeCaseNumberInvalid  ErrorCode = "CASE_002"
	ErrCodeCaseFieldForbidden ErrorCode = "CASE_003"
	ErrCodeCourtFileInvalid   ErrorCode = "CASE_004"
	ErrCodeListingKindInvalid ErrorCode = "CASE_005"
)

// File Module Error Codes
const (
	ErrCodeNoValidPDF    ErrorCode = "FILE_001"
	ErrCodePathEscape    ErrorCode = "FILE_002"
	ErrCodePDFNotFound   ErrorCode = "FILE_003"
	ErrCodePDFUnreadable ErrorCode = "FILE_004"
	ErrCodePersistFailed ErrorCode = "FILE_005"
)

// Auth Module Error Codes
const (
	ErrCodeInvalidCredentials ErrorCode = "AUTH_001"
	ErrCodeSessionExpired     ErrorCode = "AUTH_002"
)

// Short aliases used at call sites.
const (
	CodeUnknown        = ErrorCode("")
	CodeOK             = ErrorCode("OK")
	CodeInternal       = ErrCodeInternal
	CodeInvalidParam   = ErrCodeBadRequest
	CodeUnauthorized   = ErrCodeUnauthorized
	CodeForbidden      = ErrCodeForbidden
	CodeNotFound       = ErrCodeNotFound
	CodeConflict       = ErrCodeConflict
	CodeNotImplemented = ErrCodeNotImplemented

	CodeDBConnectionError = ErrCodeDatabaseError
	CodeDBQueryError      = ErrCodeDatabaseError
	CodeCacheError        = ErrCodeCacheError
	CodeStorageError      = ErrCodeStorageError
)

// ErrorCodeHTTPStatus maps each code to the HTTP status returned to clients.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusBadRequest,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeStorageError:       http.StatusInternalServerError,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeCaseNotFound:       http.StatusNotFound,
	ErrCodeCaseNumberInvalid:  http.StatusBadRequest,
	ErrCodeCaseFieldForbidden: http.StatusForbidden,
	ErrCodeCourtFileInvalid:   http.StatusBadRequest,
	ErrCodeListingKindInvalid: http.StatusBadRequest,

	ErrCodeNoValidPDF:    http.StatusBadRequest,
	ErrCodePathEscape:    http.StatusBadRequest,
	ErrCodePDFNotFound:   http.StatusNotFound,
	ErrCodePDFUnreadable: http.StatusUnprocessableEntity,
	ErrCodePersistFailed: http.StatusInternalServerError,

	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeSessionExpired:     http.StatusUnauthorized,
}

// ErrorCodeMessage holds the user-facing default message per code. Messages
// are in Spanish because they are rendered verbatim by the front end.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "Error interno del servidor",
	ErrCodeBadRequest:         "Solicitud inválida",
	ErrCodeUnauthorized:       "Autenticación requerida",
	ErrCodeForbidden:          "No autorizado",
	ErrCodeNotFound:           "Recurso no encontrado",
	ErrCodeConflict:           "Conflicto con el estado actual",
	ErrCodeServiceUnavailable: "Servicio no disponible",
	ErrCodeTimeout:            "Tiempo de espera agotado",
	ErrCodeValidation:         "Datos inválidos",
	ErrCodeSerialization:      "Formato de datos inválido",
	ErrCodeDatabaseError:      "Error al conectar con la base de datos",
	ErrCodeCacheError:         "Error de caché",
	ErrCodeStorageError:       "Error de almacenamiento",
	ErrCodeNotImplemented:     "No implementado",

	ErrCodeCaseNotFound:       "Caso no encontrado",
	ErrCodeCaseNumberInvalid:  "Registro PPU inválido",
	ErrCodeCaseFieldForbidden: "Campo no editable",
	ErrCodeCourtFileInvalid:   "Expediente de juzgado inválido",
	ErrCodeListingKindInvalid: "Tipo inválido",

	ErrCodeNoValidPDF:    "No se recibieron archivos",
	ErrCodePathEscape:    "Ruta inválida",
	ErrCodePDFNotFound:   "Archivo no encontrado",
	ErrCodePDFUnreadable: "PDF ilegible",
	ErrCodePersistFailed: "No se pudo guardar el archivo",

	ErrCodeInvalidCredentials: "Credenciales inválidas",
	ErrCodeSessionExpired:     "Sesión expirada",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "Error desconocido"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode ("CASE", "FILE", ...).
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 1 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
