package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vietcart/logistics/internal/domain/shared"
)

// envelope is the fixed response shape on every surface:
// {success, data, error}.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, envelope{Success: true, Data: data})
}

// respondError translates a domain error to its HTTP status. Customer and
// shipper surfaces localize the message to Vietnamese; partner and admin
// surfaces keep the English one.
func respondError(c *gin.Context, err error, localized bool) {
	de := shared.AsDomainError(err)
	msg := de.Message
	if localized {
		msg = de.LocalizedMessage()
	}
	c.AbortWithStatusJSON(de.HTTPStatus(), envelope{
		Success: false,
		Error:   &apiError{Code: string(de.Kind), Message: msg},
	})
}

func respondValidation(c *gin.Context, localized bool, field, reason string) {
	respondError(c, shared.ErrValidation(field, reason), localized)
}

func pagination(c *gin.Context) (offset, limit int) {
	offset = intQuery(c, "offset", 0)
	limit = intQuery(c, "limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
