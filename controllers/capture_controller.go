package controllers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/robsammonsdfw/EmbraceMacro-sub000/services"
	"github.com/robsammonsdfw/EmbraceMacro-sub000/utils"
)

// CaptureController exposes the capture state machine over HTTP. The
// camera itself lives on the client; frames arrive through the upload
// entry, and barcode/text modes feed AttachText.
type CaptureController struct {
	capture     *services.CaptureService
	drafts      *services.DraftService
	coordinator *services.CommitCoordinator
	uploadImage func(dataURI string, userID uint) (string, error)
}

func NewCaptureController(capture *services.CaptureService, drafts *services.DraftService, coordinator *services.CommitCoordinator) *CaptureController {
	return &CaptureController{
		capture:     capture,
		drafts:      drafts,
		coordinator: coordinator,
		uploadImage: utils.UploadCaptureImage,
	}
}

func (cc *CaptureController) CreateSession(c *gin.Context) {
	s := cc.capture.NewSession()
	c.JSON(http.StatusCreated, gin.H{"session_id": s.ID, "state": s.State()})
}

func (cc *CaptureController) session(c *gin.Context) (*services.CaptureSession, bool) {
	s, ok := cc.capture.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return s, true
}

func (cc *CaptureController) SelectMode(c *gin.Context) {
	var body struct {
		Mode string `json:"mode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, ok := cc.session(c)
	if !ok {
		return
	}
	if err := s.SelectMode(services.CaptureMode(body.Mode)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": s.State(), "mode": s.Mode()})
}

func (cc *CaptureController) AttachUpload(c *gin.Context) {
	var body struct {
		ImageBase64 string `json:"image_base64" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	s, ok := cc.session(c)
	if !ok {
		return
	}
	raw, err := services.DecodeDataURI(body.ImageBase64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.AttachUpload(raw); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": s.State()})
}

func (cc *CaptureController) AttachText(c *gin.Context) {
	var body struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	s, ok := cc.session(c)
	if !ok {
		return
	}
	if err := s.AttachText(body.Text); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": s.State()})
}

func (cc *CaptureController) Retake(c *gin.Context) {
	s, ok := cc.session(c)
	if !ok {
		return
	}
	if err := s.Retake(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": s.State()})
}

// BeginSelfLabel enters the labeling detour and returns vision hints.
func (cc *CaptureController) BeginSelfLabel(c *gin.Context) {
	s, ok := cc.session(c)
	if !ok {
		return
	}
	if err := s.BeginSelfLabel(); err != nil {
		respondError(c, err)
		return
	}
	suggestions, err := s.SuggestLabels(c.Request.Context())
	if err != nil {
		// hints are best-effort; labeling continues without them
		log.Printf("label suggestions failed: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"state": s.State(), "suggestions": suggestions})
}

func (cc *CaptureController) SetSelfLabel(c *gin.Context) {
	var body struct {
		Label string `json:"label" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	s, ok := cc.session(c)
	if !ok {
		return
	}
	if err := s.SetSelfLabel(body.Label); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": s.State()})
}

// Submit routes the payload to analysis. A NutritionInfo result is
// auto-logged to history and opened as an editable draft; recipes are
// returned for the user to pick from; vitals merge into the health
// ledger.
func (cc *CaptureController) Submit(c *gin.Context) {
	uid := c.GetUint("userID")
	s, ok := cc.session(c)
	if !ok {
		return
	}

	payload := s.Payload()
	result, err := s.Submit(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	switch {
	case result.Info != nil:
		info := *result.Info
		if strings.HasPrefix(payload, "data:") {
			url, err := cc.uploadImage(payload, uid)
			if err != nil {
				log.Printf("capture image upload failed: %v", err)
			} else {
				info.ImageURL = url
			}
		}

		resp := gin.H{}
		entry, err := cc.coordinator.LogToHistory(uid, info)
		if err != nil {
			// auto-log failure doesn't block editing the result
			resp["history_error"] = err.Error()
		} else {
			resp["log_entry_id"] = entry.ID
		}

		draft := cc.drafts.Create(uid, info)
		resp["draft_id"] = draft.ID
		resp["info"] = draft.Ledger.Info()
		c.JSON(http.StatusOK, resp)

	case result.Recipes != nil:
		c.JSON(http.StatusOK, gin.H{"recipes": result.Recipes})

	case result.Vitals != nil:
		if err := cc.coordinator.LogVitals(uid, result.Vitals); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"vitals": result.Vitals})

	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "empty analysis result"})
	}
}

func (cc *CaptureController) CloseSession(c *gin.Context) {
	cc.capture.CloseSession(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"state": services.StateClosed})
}
