package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/robsammonsdfw/EmbraceMacro-sub000/controllers"
	"github.com/robsammonsdfw/EmbraceMacro-sub000/middlewares"
)

// Controllers bundles everything SetupRouter mounts.
type Controllers struct {
	Auth        *controllers.AuthController
	Capture     *controllers.CaptureController
	Draft       *controllers.DraftController
	History     *controllers.HistoryController
	Collections *controllers.CollectionsController
	Library     *controllers.LibraryController
	Plan        *controllers.PlanController
	Grocery     *controllers.GroceryController
	Health      *controllers.HealthController
	Realtime    *controllers.RealtimeController
}

func SetupRouter(ctl Controllers) *gin.Engine {
	r := gin.Default()

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", ctl.Auth.Register)
		auth.POST("/login", ctl.Auth.Login)
	}

	api := r.Group("/")
	api.Use(middlewares.AuthMiddleware())
	{
		capture := api.Group("/capture/sessions")
		{
			capture.POST("", ctl.Capture.CreateSession)
			capture.POST("/:id/mode", ctl.Capture.SelectMode)
			capture.POST("/:id/upload", ctl.Capture.AttachUpload)
			capture.POST("/:id/input", ctl.Capture.AttachText)
			capture.POST("/:id/retake", ctl.Capture.Retake)
			capture.POST("/:id/self-label", ctl.Capture.BeginSelfLabel)
			capture.PUT("/:id/self-label", ctl.Capture.SetSelfLabel)
			capture.POST("/:id/submit", ctl.Capture.Submit)
			capture.DELETE("/:id", ctl.Capture.CloseSession)
		}

		drafts := api.Group("/drafts")
		{
			drafts.GET("/:id", ctl.Draft.Get)
			drafts.PUT("/:id", ctl.Draft.Rename)
			drafts.PUT("/:id/ingredients/:index", ctl.Draft.Rescale)
			drafts.DELETE("/:id/ingredients/:index", ctl.Draft.RemoveIngredient)
			drafts.POST("/:id/commit", ctl.Draft.Commit)
		}

		api.GET("/history", ctl.History.List)
		api.GET("/collections", ctl.Collections.Get)

		library := api.Group("/library")
		{
			library.GET("", ctl.Library.List)
			library.POST("", ctl.Library.Save)
			library.DELETE("/:id", ctl.Library.Delete)
		}

		plans := api.Group("/plans")
		{
			plans.POST("", ctl.Plan.Create)
			plans.GET("", ctl.Plan.List)
			plans.POST("/:id/items", ctl.Plan.AddItem)
			plans.DELETE("/items/:itemId", ctl.Plan.RemoveItem)
		}

		grocery := api.Group("/grocery")
		{
			grocery.POST("", ctl.Grocery.Create)
			grocery.GET("", ctl.Grocery.List)
			grocery.POST("/:id/activate", ctl.Grocery.Activate)
			grocery.POST("/:id/import", ctl.Grocery.Import)
			grocery.PUT("/items/:itemId", ctl.Grocery.CheckItem)
		}

		api.GET("/health-metrics", ctl.Health.List)
		api.GET("/ws", ctl.Realtime.UpdatesWS)
	}

	return r
}
