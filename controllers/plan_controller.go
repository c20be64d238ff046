package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/robsammonsdfw/EmbraceMacro-sub000/models"
	"github.com/robsammonsdfw/EmbraceMacro-sub000/services"
)

type PlanController struct {
	store       services.Store
	coordinator *services.CommitCoordinator
}

func NewPlanController(store services.Store, coordinator *services.CommitCoordinator) *PlanController {
	return &PlanController{store: store, coordinator: coordinator}
}

func (pc *PlanController) Create(c *gin.Context) {
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	plan := &models.MealPlan{UserID: c.GetUint("userID"), Name: body.Name}
	if err := pc.store.CreatePlan(plan); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (pc *PlanController) List(c *gin.Context) {
	plans, err := pc.store.ListPlans(c.GetUint("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, plans)
}

// AddItem schedules an existing SavedMeal into a (day, slot) cell.
func (pc *PlanController) AddItem(c *gin.Context) {
	var body struct {
		SavedMealID uint   `json:"saved_meal_id" binding:"required"`
		Day         string `json:"day" binding:"required"`
		Slot        string `json:"slot" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	planID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan id"})
		return
	}

	item, err := pc.coordinator.AddToPlan(c.GetUint("userID"), uint(planID), body.SavedMealID, nil, body.Day, body.Slot)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (pc *PlanController) RemoveItem(c *gin.Context) {
	itemID, err := strconv.ParseUint(c.Param("itemId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}
	if err := pc.coordinator.RemoveFromPlan(c.GetUint("userID"), uint(itemID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "removed"})
}
