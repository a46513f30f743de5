package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"cashloan/internal/backend"
	"cashloan/internal/domain"
	"cashloan/internal/http/middleware"
	"cashloan/internal/validate"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the error payload: the backend's message and validation
// errors when it sent them, plus the gateway's code and request id.
type ErrorResponse struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	Errors    any    `json:"errors,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Message:   message,
		Code:      code,
		Errors:    details,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	var up domain.UpstreamError
	switch {
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
	case errors.As(err, &up):
		status := up.Status
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		respondError(c, status, "upstream_error", up.Error(), up.Details)
	case domain.IsValidation(err):
		var details any
		if fields := validate.Fields(err); len(fields) > 0 {
			details = fields
		}
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), details)
	case domain.IsMalformed(err):
		respondError(c, http.StatusBadGateway, "malformed_response", "Invalid response from the loan service", nil)
	case domain.IsNetwork(err):
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		respondError(c, status, "backend_unavailable", "Unable to reach the loan service", nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
	}
}

// relay writes a backend answer back to the browser. Success bodies pass
// through when they are JSON; errors are normalized to {message, errors}.
func relay(c *gin.Context, resp *backend.Response, successStatus int) {
	if !resp.OK() {
		RespondDomainError(c, resp.Err())
		return
	}
	if len(resp.Body) == 0 {
		c.Status(successOr(successStatus, resp.Status))
		return
	}
	if !json.Valid(resp.Body) {
		RespondDomainError(c, domain.MalformedResponseError{})
		return
	}
	c.Data(successOr(successStatus, resp.Status), "application/json; charset=utf-8", resp.Body)
}

func successOr(override, status int) int {
	if override > 0 {
		return override
	}
	return status
}
