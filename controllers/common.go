package controllers

import (
	"net/http"
	"research-incentive-api/services"

	"github.com/gin-gonic/gin"
)

// getUserIDFromContext reads the authenticated user ID set by the middleware.
func getUserIDFromContext(c *gin.Context) (int, bool) {
	value, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	id, ok := value.(int)
	return id, ok
}

// handleServiceError maps the service error taxonomy onto HTTP statuses.
// Raw store errors never leak; anything unclassified becomes a 500 with a
// generic message.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	case services.IsPermission(err):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": err.Error()})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": err.Error()})
	case services.IsState(err):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
	case services.IsConfiguration(err):
		// Blocks the flow: payouts must not be computed on a broken policy.
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
	}
}

func ptr(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
