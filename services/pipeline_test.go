package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Full capture-to-ledger run: photo capture → analysis → rescale →
// explicit save → reconciliation shows the stored meal.
func TestPipeline_CaptureToLibrary(t *testing.T) {
	analyzer := newMockedAnalysis(t)
	httpmock.RegisterResponder(http.MethodPost, "http://analysis.test/analyze",
		httpmock.NewStringResponder(http.StatusOK, `{
			"meal_name": "Grilled Chicken Salad",
			"total_calories": 420,
			"total_protein": 48.1,
			"ingredients": [
				{"name": "Chicken Breast", "weight_grams": 150, "calories": 250, "protein": 46.5},
				{"name": "Mixed Greens", "weight_grams": 80, "calories": 20, "protein": 1.6},
				{"name": "Olive Oil", "weight_grams": 15, "calories": 150}
			]
		}`))

	stream := &fakeStream{frame: makePNG(t, 800, 600)}
	session := NewCaptureSession(&fakeSource{stream: stream}, NewImageNormalizer(), analyzer, nil)

	require.NoError(t, session.SelectMode(ModeMealPhoto))
	require.NoError(t, session.StartCamera(context.Background()))
	require.NoError(t, session.CaptureFrame(context.Background()))

	result, err := session.Submit(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result.Info)
	assert.True(t, stream.released)

	store := &fakeStore{}
	coordinator := NewCommitCoordinator(store, nil)

	// auto-log on analysis success
	entry, err := coordinator.LogToHistory(1, *result.Info)
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)

	// user doubles the chicken
	ledger := NewLedger(*result.Info)
	require.NoError(t, ledger.RescaleIngredient(0, 300))

	edited := ledger.Info()
	assert.InDelta(t, 500.0, edited.Ingredients[0].Calories, 1e-9)
	assert.InDelta(t, 670.0, edited.TotalCalories, 1e-9)

	// explicit save, then reconcile-by-refetch sees it with a store id
	saved, err := coordinator.SaveToLibrary(1, edited)
	require.NoError(t, err)

	snap, err := coordinator.Reconcile(1, CollectionLibrary)
	require.NoError(t, err)
	require.Len(t, snap.Library, 1)
	assert.Equal(t, saved.ID, snap.Library[0].ID)
	assert.InDelta(t, 670.0, snap.Library[0].TotalCalories, 1e-9)
}
