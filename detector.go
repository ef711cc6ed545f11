package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	providerSimulated = "simulated"
	providerGemini    = "gemini"
	providerOpenAI    = "openai"
)

var ErrNoAPIKey = errors.New("API key is required")

// APIError is a non-success response from a remote model
type APIError struct {
	StatusCode int
	Message    string
	Provider   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: API error %d: %s", e.Provider, e.StatusCode, e.Message)
}

type FoodItem struct {
	Name     string `json:"name"`
	Calories int    `json:"calories"`
}

// Detection is what a model reports for one image
type Detection struct {
	FoodDetected  bool       `json:"food_detected"`
	Items         []FoodItem `json:"food_items"`
	TotalCalories int        `json:"total_calories"`
}

func (d *Detection) Names() []string {
	names := make([]string, 0, len(d.Items))
	for _, item := range d.Items {
		names = append(names, item.Name)
	}
	return names
}

// Detector estimates the food content of an image file
type Detector interface {
	Name() string
	Detect(ctx context.Context, path string) (*Detection, error)
}

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Result is the outcome of analyzing one screenshot
type Result struct {
	ID         string     `json:"id"`
	Filename   string     `json:"filename"`
	Calories   int        `json:"calories"`
	FoodItems  []string   `json:"food_items"`
	Items      []FoodItem `json:"detailed_items"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	Provider   string     `json:"provider"`
	AnalyzedAt time.Time  `json:"analyzed_at"`
}

func (r *Result) HasFood() bool {
	return r.Calories > 0
}

// runs the detector on path and folds any failure into an error result
func analyzeFile(ctx context.Context, d Detector, path string) *Result {
	result := &Result{
		ID:         uuid.New().String(),
		Filename:   filepath.Base(path),
		FoodItems:  []string{},
		Items:      []FoodItem{},
		Status:     statusSuccess,
		Provider:   d.Name(),
		AnalyzedAt: time.Now(),
	}

	detection, err := d.Detect(ctx, path)
	if err != nil {
		result.Status = statusError
		result.Error = err.Error()
		return result
	}

	if detection.FoodDetected {
		result.Calories = detection.TotalCalories
		result.FoodItems = detection.Names()
		result.Items = append(result.Items, detection.Items...)
	}
	return result
}

const foodPrompt = `Analyze this image and identify any food items present.
If food is detected, provide:
1. A list of each distinct food item
2. Estimated calories for each item
3. Total calories

Output in JSON format like this:
{
    "food_detected": true/false,
    "food_items": [
        {"name": "item1", "calories": 123},
        {"name": "item2", "calories": 456}
    ],
    "total_calories": 579
}

If no food is detected, simply return:
{
    "food_detected": false,
    "food_items": [],
    "total_calories": 0
}`

// parseDetection pulls the outermost JSON object out of a model reply. A
// reply without one counts as no food.
func parseDetection(text string) (*Detection, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return &Detection{}, nil
	}

	var raw rawDetection
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("parsing model response: %w", err)
	}
	if !raw.FoodDetected {
		return &Detection{}, nil
	}

	d := &Detection{
		FoodDetected:  true,
		Items:         make([]FoodItem, 0, len(raw.Items)),
		TotalCalories: roundCalories(raw.TotalCalories),
	}
	for _, item := range raw.Items {
		d.Items = append(d.Items, FoodItem{Name: item.Name, Calories: roundCalories(item.Calories)})
	}
	return d, nil
}

// model replies may carry fractional calories
type rawDetection struct {
	FoodDetected bool `json:"food_detected"`
	Items        []struct {
		Name     string  `json:"name"`
		Calories float64 `json:"calories"`
	} `json:"food_items"`
	TotalCalories float64 `json:"total_calories"`
}

func roundCalories(c float64) int {
	return int(math.Round(c))
}

func newDetector(provider, apiKey string, seed *int64) (Detector, error) {
	switch provider {
	case providerSimulated:
		return NewSimulatedDetector(seed), nil
	case providerGemini:
		return NewGeminiDetector(apiKey)
	case providerOpenAI:
		return NewOpenAIDetector(apiKey)
	}
	return nil, fmt.Errorf("unknown provider %q (simulated, gemini, openai)", provider)
}
