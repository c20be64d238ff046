package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/robsammonsdfw/EmbraceMacro-sub000/services"
)

// DraftController edits an analyzed record and commits it to the chosen
// destinations.
type DraftController struct {
	drafts      *services.DraftService
	coordinator *services.CommitCoordinator
}

func NewDraftController(drafts *services.DraftService, coordinator *services.CommitCoordinator) *DraftController {
	return &DraftController{drafts: drafts, coordinator: coordinator}
}

func (dc *DraftController) draft(c *gin.Context) (*services.Draft, bool) {
	d, ok := dc.drafts.Get(c.GetUint("userID"), c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "draft not found"})
		return nil, false
	}
	return d, true
}

func (dc *DraftController) Get(c *gin.Context) {
	d, ok := dc.draft(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft_id": d.ID, "info": d.Ledger.Info()})
}

// Rescale adjusts one ingredient's weight. Zero and negative weights
// are rejected; everything else is clamped to the accepted range before
// the proportional rescale runs.
func (dc *DraftController) Rescale(c *gin.Context) {
	var body struct {
		WeightGrams float64 `json:"weight_grams"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.WeightGrams <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "weight must be positive"})
		return
	}
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ingredient index"})
		return
	}
	d, ok := dc.draft(c)
	if !ok {
		return
	}
	if err := d.Ledger.RescaleIngredient(idx, services.ClampWeight(body.WeightGrams)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"info": d.Ledger.Info()})
}

func (dc *DraftController) RemoveIngredient(c *gin.Context) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ingredient index"})
		return
	}
	d, ok := dc.draft(c)
	if !ok {
		return
	}
	if err := d.Ledger.RemoveIngredient(idx); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"info": d.Ledger.Info()})
}

func (dc *DraftController) Rename(c *gin.Context) {
	var body struct {
		MealName string `json:"meal_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, ok := dc.draft(c)
	if !ok {
		return
	}
	d.Ledger.SetMealName(body.MealName)
	c.JSON(http.StatusOK, gin.H{"info": d.Ledger.Info()})
}

type commitRequest struct {
	SaveToLibrary bool `json:"save_to_library"`
	Plan          *struct {
		PlanID uint   `json:"plan_id" binding:"required"`
		Day    string `json:"day" binding:"required"`
		Slot   string `json:"slot" binding:"required"`
	} `json:"plan,omitempty"`
}

// Commit fans the edited record out to the requested destinations.
// Destinations fail independently: a plan-add error never rolls back a
// successful library save, and the response reports each outcome.
func (dc *DraftController) Commit(c *gin.Context) {
	var body commitRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, ok := dc.draft(c)
	if !ok {
		return
	}
	uid := c.GetUint("userID")
	info := d.Ledger.Info()

	resp := gin.H{}
	var savedID uint

	if body.SaveToLibrary {
		saved, err := dc.coordinator.SaveToLibrary(uid, info)
		if err != nil {
			resp["library_error"] = err.Error()
		} else {
			savedID = saved.ID
			resp["saved_meal_id"] = saved.ID
		}
	}

	if body.Plan != nil {
		item, err := dc.coordinator.AddToPlan(uid, body.Plan.PlanID, savedID, &info, body.Plan.Day, body.Plan.Slot)
		if err != nil {
			resp["plan_error"] = err.Error()
		} else {
			resp["plan_item_id"] = item.ID
		}
	}

	c.JSON(http.StatusOK, resp)
}
