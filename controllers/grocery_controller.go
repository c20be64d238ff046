package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/robsammonsdfw/EmbraceMacro-sub000/models"
	"github.com/robsammonsdfw/EmbraceMacro-sub000/services"
)

type GroceryController struct {
	store       services.Store
	coordinator *services.CommitCoordinator
}

func NewGroceryController(store services.Store, coordinator *services.CommitCoordinator) *GroceryController {
	return &GroceryController{store: store, coordinator: coordinator}
}

func (gc *GroceryController) Create(c *gin.Context) {
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	list := &models.GroceryList{UserID: c.GetUint("userID"), Name: body.Name}
	if err := gc.store.CreateGroceryList(list); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, list)
}

func (gc *GroceryController) List(c *gin.Context) {
	lists, err := gc.store.ListGroceryLists(c.GetUint("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, lists)
}

// Activate marks one list active; any other active list is cleared.
func (gc *GroceryController) Activate(c *gin.Context) {
	listID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid list id"})
		return
	}
	if err := gc.store.SetActiveGroceryList(c.GetUint("userID"), uint(listID)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "activated"})
}

// Import aggregates ingredient names from the given plans onto a list.
func (gc *GroceryController) Import(c *gin.Context) {
	var body struct {
		PlanIDs []uint `json:"plan_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	listID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid list id"})
		return
	}

	items, err := gc.coordinator.ImportFromPlans(c.GetUint("userID"), uint(listID), body.PlanIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": len(items), "items": items})
}

func (gc *GroceryController) CheckItem(c *gin.Context) {
	var body struct {
		Checked bool `json:"checked"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	itemID, err := strconv.ParseUint(c.Param("itemId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}
	if err := gc.store.SetGroceryItemChecked(c.GetUint("userID"), uint(itemID), body.Checked); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}
