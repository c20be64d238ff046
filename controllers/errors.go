package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/robsammonsdfw/EmbraceMacro-sub000/services"
)

// respondError maps pipeline errors onto status codes so clients can
// render mode/destination-specific messaging.
func respondError(c *gin.Context, err error) {
	var (
		capErr    *services.CaptureError
		encErr    *services.EncodeError
		anaErr    *services.AnalysisError
		commitErr *services.CommitError
	)
	switch {
	case errors.As(err, &encErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": encErr.Error()})
	case errors.As(err, &capErr):
		c.JSON(http.StatusConflict, gin.H{"error": capErr.Error()})
	case errors.As(err, &anaErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": anaErr.Error(), "mode": string(anaErr.Mode)})
	case errors.As(err, &commitErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": commitErr.Error(), "destination": string(commitErr.Destination)})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
