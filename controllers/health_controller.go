package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/robsammonsdfw/EmbraceMacro-sub000/services"
)

// HealthController reads the vitals ledger fed by vitals-screenshot
// captures.
type HealthController struct {
	store services.Store
}

func NewHealthController(store services.Store) *HealthController {
	return &HealthController{store: store}
}

func (hc *HealthController) List(c *gin.Context) {
	recs, err := hc.store.ListHealthMetrics(c.GetUint("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, recs)
}
