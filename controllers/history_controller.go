package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/robsammonsdfw/EmbraceMacro-sub000/services"
)

// HistoryController reads the dated ledger. Writes happen through the
// capture submit auto-log, never here.
type HistoryController struct {
	store services.Store
}

func NewHistoryController(store services.Store) *HistoryController {
	return &HistoryController{store: store}
}

// GET /history?from=2026-01-01&to=2026-01-08
func (hc *HistoryController) List(c *gin.Context) {
	uid := c.GetUint("userID")

	fromStr, toStr := c.Query("from"), c.Query("to")
	if fromStr != "" && toStr != "" {
		from, err1 := time.Parse("2006-01-02", fromStr)
		to, err2 := time.Parse("2006-01-02", toStr)
		if err1 != nil || err2 != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be YYYY-MM-DD"})
			return
		}
		entries, err := hc.store.ListLogEntriesByDateRange(uid, from, to.Add(24*time.Hour))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, entries)
		return
	}

	entries, err := hc.store.ListLogEntries(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// CollectionsController serves the full reconcile snapshot, the same
// data the realtime hub pushes.
type CollectionsController struct {
	coordinator *services.CommitCoordinator
}

func NewCollectionsController(coordinator *services.CommitCoordinator) *CollectionsController {
	return &CollectionsController{coordinator: coordinator}
}

// GET /collections?c=history&c=plans — no params refetches everything.
func (cc *CollectionsController) Get(c *gin.Context) {
	uid := c.GetUint("userID")

	var cols []services.Collection
	for _, name := range c.QueryArray("c") {
		cols = append(cols, services.Collection(name))
	}

	snap, err := cc.coordinator.Reconcile(uid, cols...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}
