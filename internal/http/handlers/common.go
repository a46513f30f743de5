package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"cashloan/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

const maxRequestBody = 1 << 20

// RespondError sends standard error payload with request_id included.
// Keeps backward compatibility by always providing "message".
func RespondError(c *gin.Context, status int, message string, err error) {
	payload := gin.H{
		"message":    message,
		"request_id": middleware.GetRequestID(c),
	}
	if err != nil && status < http.StatusInternalServerError {
		payload["error"] = err.Error()
	}
	c.AbortWithStatusJSON(status, payload)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		RespondError(c, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

// bindOptionalJSON is BindJSONOrError for actions whose body may be empty.
func bindOptionalJSON[T any](c *gin.Context, dst *T) bool {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRequestBody))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return true
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

// readJSONBody returns the raw body when it is well-formed JSON.
func readJSONBody(c *gin.Context) ([]byte, bool) {
	if c.Request.Body == nil {
		RespondError(c, http.StatusBadRequest, "Invalid request body", nil)
		return nil, false
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRequestBody))
	if err != nil || !json.Valid(raw) {
		RespondError(c, http.StatusBadRequest, "Invalid request body", err)
		return nil, false
	}
	return raw, true
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "Invalid id", err)
		return 0, false
	}
	return id, true
}
