package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/robsammonsdfw/EmbraceMacro-sub000/models"
)

// CaptureMode selects which analysis operation a payload is routed to.
type CaptureMode string

const (
	ModeMealPhoto        CaptureMode = "meal-photo"
	ModeBarcode          CaptureMode = "barcode"
	ModePantryPhoto      CaptureMode = "pantry-photo"
	ModeRestaurantPhoto  CaptureMode = "restaurant-photo"
	ModeTextSearch       CaptureMode = "free-text-search"
	ModeVitalsScreenshot CaptureMode = "vitals-screenshot"
)

// Valid reports whether m is one of the six capture modes.
func (m CaptureMode) Valid() bool {
	switch m {
	case ModeMealPhoto, ModeBarcode, ModePantryPhoto, ModeRestaurantPhoto, ModeTextSearch, ModeVitalsScreenshot:
		return true
	}
	return false
}

// UsesCamera reports whether the mode goes through the camera-stream
// path. Barcode and text search bypass it entirely.
func (m CaptureMode) UsesCamera() bool {
	switch m {
	case ModeBarcode, ModeTextSearch:
		return false
	}
	return true
}

// AnalysisResult is the typed union an analysis call produces. Exactly
// one field is set, according to the mode that was routed.
type AnalysisResult struct {
	Info    *models.NutritionInfo      `json:"info,omitempty"`
	Recipes []models.Recipe            `json:"recipes,omitempty"`
	Vitals  *models.HealthMetricsPatch `json:"vitals,omitempty"`
}

// AnalysisService talks to the external vision/nutrition analysis
// service and the barcode product-lookup endpoint. It routes one
// (mode, payload) pair to one asynchronous call; retries are the
// caller's business, not ours.
type AnalysisService struct {
	baseURL    string
	apiKey     string
	productURL string
	client     *http.Client
}

func NewAnalysisService() *AnalysisService {
	return &AnalysisService{
		baseURL:    os.Getenv("ANALYSIS_API_URL"),
		apiKey:     os.Getenv("ANALYSIS_API_KEY"),
		productURL: os.Getenv("PRODUCT_API_URL"),
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Route dispatches the payload to the operation for its mode and wraps
// any failure in an AnalysisError carrying the mode.
func (s *AnalysisService) Route(ctx context.Context, mode CaptureMode, payload, prompt string) (*AnalysisResult, error) {
	if !mode.Valid() {
		return nil, &AnalysisError{Mode: mode, Cause: fmt.Errorf("unknown capture mode")}
	}
	if payload == "" {
		return nil, &AnalysisError{Mode: mode, Cause: fmt.Errorf("empty payload")}
	}

	switch mode {
	case ModeMealPhoto, ModeRestaurantPhoto:
		info, err := s.analyzeInfo(ctx, mode, payload, prompt)
		if err != nil {
			return nil, &AnalysisError{Mode: mode, Cause: err}
		}
		return &AnalysisResult{Info: info}, nil

	case ModeTextSearch:
		info, err := s.analyzeInfo(ctx, mode, payload, prompt)
		if err != nil {
			return nil, &AnalysisError{Mode: mode, Cause: err}
		}
		return &AnalysisResult{Info: info}, nil

	case ModeBarcode:
		info, err := s.ProductByCode(ctx, payload)
		if err != nil {
			return nil, &AnalysisError{Mode: mode, Cause: err}
		}
		if info == nil {
			return nil, &AnalysisError{Mode: mode, Cause: fmt.Errorf("no product for code %q", payload)}
		}
		return &AnalysisResult{Info: info}, nil

	case ModePantryPhoto:
		recipes, err := s.analyzeRecipes(ctx, payload, prompt)
		if err != nil {
			return nil, &AnalysisError{Mode: mode, Cause: err}
		}
		return &AnalysisResult{Recipes: recipes}, nil

	case ModeVitalsScreenshot:
		vitals, err := s.analyzeVitals(ctx, payload)
		if err != nil {
			return nil, &AnalysisError{Mode: mode, Cause: err}
		}
		return &AnalysisResult{Vitals: vitals}, nil
	}
	// unreachable, Valid() covered the set
	return nil, &AnalysisError{Mode: mode, Cause: fmt.Errorf("unhandled mode")}
}

type analyzeRequest struct {
	Mode    string `json:"mode"`
	Payload string `json:"payload"`
	Prompt  string `json:"prompt,omitempty"`
}

func (s *AnalysisService) analyze(ctx context.Context, mode CaptureMode, payload, prompt string, out any) error {
	body, err := json.Marshal(analyzeRequest{Mode: string(mode), Payload: payload, Prompt: prompt})
	if err != nil {
		return fmt.Errorf("failed to marshal analyze payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create analyze request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call analysis API: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read analysis response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("analysis API error %d: %s", resp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse analysis JSON: %w", err)
	}
	return nil
}

func (s *AnalysisService) analyzeInfo(ctx context.Context, mode CaptureMode, payload, prompt string) (*models.NutritionInfo, error) {
	var info models.NutritionInfo
	if err := s.analyze(ctx, mode, payload, prompt, &info); err != nil {
		return nil, err
	}
	if info.MealName == "" && len(info.Ingredients) == 0 {
		return nil, fmt.Errorf("incomplete analysis result")
	}
	return &info, nil
}

func (s *AnalysisService) analyzeRecipes(ctx context.Context, payload, prompt string) ([]models.Recipe, error) {
	var out struct {
		Recipes []models.Recipe `json:"recipes"`
	}
	if err := s.analyze(ctx, ModePantryPhoto, payload, prompt, &out); err != nil {
		return nil, err
	}
	if len(out.Recipes) == 0 {
		return nil, fmt.Errorf("no recipes detected")
	}
	return out.Recipes, nil
}

func (s *AnalysisService) analyzeVitals(ctx context.Context, payload string) (*models.HealthMetricsPatch, error) {
	var patch models.HealthMetricsPatch
	if err := s.analyze(ctx, ModeVitalsScreenshot, payload, "", &patch); err != nil {
		return nil, err
	}
	return &patch, nil
}

// ProductByCode resolves a scanned barcode against the product lookup
// endpoint. A nil result with nil error means the code is unknown.
func (s *AnalysisService) ProductByCode(ctx context.Context, code string) (*models.NutritionInfo, error) {
	u := fmt.Sprintf("%s/product?code=%s", s.productURL, url.QueryEscape(code))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create product request: %w", err)
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call product API: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read product response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("product API error %d: %s", resp.StatusCode, string(raw))
	}

	var info models.NutritionInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("failed to parse product JSON: %w", err)
	}
	return &info, nil
}
