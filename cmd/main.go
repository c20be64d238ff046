package main

import (
	"log"

	"github.com/robsammonsdfw/EmbraceMacro-sub000/config"
	"github.com/robsammonsdfw/EmbraceMacro-sub000/controllers"
	"github.com/robsammonsdfw/EmbraceMacro-sub000/routes"
	"github.com/robsammonsdfw/EmbraceMacro-sub000/services"
	"github.com/robsammonsdfw/EmbraceMacro-sub000/utils"
)

func main() {
	db := config.InitDB()
	utils.InitS3()

	store := services.NewStore(db)
	hub := services.NewRealtimeHub()
	coordinator := services.NewCommitCoordinator(store, hub)

	analyzer := services.NewAnalysisService()
	labeler, err := services.NewRekognitionService()
	if err != nil {
		log.Printf("rekognition unavailable, label suggestions disabled: %v", err)
	}

	var suggester services.LabelSuggester
	if labeler != nil {
		suggester = labeler
	}
	capture := services.NewCaptureService(
		services.NewNoCameraSource(), // frames arrive via the upload entry
		services.NewImageNormalizer(),
		analyzer,
		suggester,
	)
	drafts := services.NewDraftService()
	auth := services.NewAuthService(db)

	r := routes.SetupRouter(routes.Controllers{
		Auth:        controllers.NewAuthController(auth),
		Capture:     controllers.NewCaptureController(capture, drafts, coordinator),
		Draft:       controllers.NewDraftController(drafts, coordinator),
		History:     controllers.NewHistoryController(store),
		Collections: controllers.NewCollectionsController(coordinator),
		Library:     controllers.NewLibraryController(store, coordinator),
		Plan:        controllers.NewPlanController(store, coordinator),
		Grocery:     controllers.NewGroceryController(store, coordinator),
		Health:      controllers.NewHealthController(store),
		Realtime:    controllers.NewRealtimeController(hub, coordinator),
	})
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
