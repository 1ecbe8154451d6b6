package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/service"
)

// respondError maps service layer errors to HTTP responses. Anything that is
// not a service.Error is treated as internal and kept opaque.
func respondError(c *gin.Context, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	body := gin.H{"error": svcErr.Message}
	switch svcErr.Code {
	case service.CodeNotFound:
		c.JSON(http.StatusNotFound, body)
	case service.CodeConflict:
		if svcErr.Details != "" {
			body["details"] = svcErr.Details
		}
		c.JSON(http.StatusConflict, body)
	case service.CodeValidation:
		c.JSON(http.StatusBadRequest, body)
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
