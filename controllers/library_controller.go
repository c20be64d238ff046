package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/robsammonsdfw/EmbraceMacro-sub000/models"
	"github.com/robsammonsdfw/EmbraceMacro-sub000/services"
)

type LibraryController struct {
	store       services.Store
	coordinator *services.CommitCoordinator
}

func NewLibraryController(store services.Store, coordinator *services.CommitCoordinator) *LibraryController {
	return &LibraryController{store: store, coordinator: coordinator}
}

func (lc *LibraryController) List(c *gin.Context) {
	meals, err := lc.store.ListSavedMeals(c.GetUint("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, meals)
}

// Save accepts a complete NutritionInfo (e.g. a picked pantry recipe)
// and files it into the library directly.
func (lc *LibraryController) Save(c *gin.Context) {
	var info models.NutritionInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	meal, err := lc.coordinator.SaveToLibrary(c.GetUint("userID"), info)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, meal)
}

func (lc *LibraryController) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal id"})
		return
	}
	if err := lc.store.DeleteSavedMeal(c.GetUint("userID"), uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
