package handlers

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/legajos-penal/internal/domain/casefile"
	"github.com/turtacn/legajos-penal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/legajos-penal/internal/interfaces/http/middleware"
	"github.com/turtacn/legajos-penal/pkg/errors"
)

// ErrorResponse is the error body the front end reads.
type ErrorResponse struct {
	Error any `json:"error"`
}

// MessageResponse is the body of a write that returns no data.
type MessageResponse struct {
	Message string `json:"message"`
}

// DataResponse wraps a listing.
type DataResponse struct {
	Data any `json:"data"`
}

// RespondOK writes payload as JSON with status 200.
func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondError maps err to a status and a JSON body. Client errors carry the
// message of the AppError that classified them; server errors are logged and
// masked behind the default message of their code.
func RespondError(c *gin.Context, logger logging.Logger, err error) {
	var cf *casefile.CourtFileError
	if stderrors.As(err, &cf) {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: cf.Fields})
		return
	}

	code := errors.GetCode(err)
	if code == errors.CodeUnknown {
		code = errors.CodeInternal
	}
	status := errors.HTTPStatusForCode(code)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			logging.String("path", c.Request.URL.Path),
			logging.String("request_id", middleware.GetRequestID(c)),
			logging.String("code", code.String()),
			logging.Err(err))
		c.AbortWithStatusJSON(status, ErrorResponse{Error: errors.DefaultMessageForCode(code)})
		return
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: publicMessage(err, code)})
}

// publicMessage returns the message of the innermost AppError still carrying
// code. Intermediate layers wrap with CodeUnknown and an English context
// string, which is what this skips.
func publicMessage(err error, code errors.ErrorCode) string {
	msg := ""
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		if ae, ok := e.(*errors.AppError); ok && ae.Code == code {
			msg = ae.Message
		}
	}
	if msg == "" {
		return errors.DefaultMessageForCode(code)
	}
	return msg
}

// badRequest aborts with 400 and message.
func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// queryInt parses a positive integer query parameter, falling back to def.
func queryInt(c *gin.Context, key string, def int) int {
	if v := strings.TrimSpace(c.Query(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// queryBool parses a boolean query parameter the way the front end sends it
// ("true"/"false"), falling back to def.
func queryBool(c *gin.Context, key string, def bool) bool {
	v, ok := c.GetQuery(key)
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "si", "sí":
		return true
	case "false", "0", "no":
		return false
	}
	return def
}
