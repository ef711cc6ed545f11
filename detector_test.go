package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDetection(t *testing.T) {
	reply := "Sure! Here is the analysis:\n```json\n" +
		`{"food_detected": true, "food_items": [{"name": "pizza", "calories": 285}, {"name": "soda", "calories": 150}], "total_calories": 435}` +
		"\n```"

	d, err := parseDetection(reply)
	require.NoError(t, err)
	assert.True(t, d.FoodDetected)
	assert.Equal(t, 435, d.TotalCalories)
	assert.Equal(t, []string{"pizza", "soda"}, d.Names())
}

func TestParseDetection_NoJSON(t *testing.T) {
	d, err := parseDetection("I can't see any food here.")
	require.NoError(t, err)
	assert.False(t, d.FoodDetected)
	assert.Zero(t, d.TotalCalories)
}

func TestParseDetection_NoFoodDropsItems(t *testing.T) {
	d, err := parseDetection(`{"food_detected": false, "food_items": [{"name": "x", "calories": 9}], "total_calories": 9}`)
	require.NoError(t, err)
	assert.False(t, d.FoodDetected)
	assert.Empty(t, d.Items)
	assert.Zero(t, d.TotalCalories)
}

func TestParseDetection_MissingItems(t *testing.T) {
	d, err := parseDetection(`{"food_detected": true, "total_calories": 120}`)
	require.NoError(t, err)
	assert.NotNil(t, d.Items)
	assert.Equal(t, 120, d.TotalCalories)
}

func TestParseDetection_FractionalCalories(t *testing.T) {
	d, err := parseDetection(`{"food_detected": true, "food_items": [{"name": "toast", "calories": 120.5}, {"name": "jam", "calories": 49.4}], "total_calories": 169.9}`)
	require.NoError(t, err)
	assert.Equal(t, []FoodItem{{"toast", 121}, {"jam", 49}}, d.Items)
	assert.Equal(t, 170, d.TotalCalories)
}

func TestParseDetection_Invalid(t *testing.T) {
	_, err := parseDetection(`{"food_detected": yes}`)
	assert.Error(t, err)
}

func TestAnalyzeFile(t *testing.T) {
	d := &fakeDetector{name: providerGemini, results: map[string]*Detection{
		"a.png": {FoodDetected: true, TotalCalories: 500, Items: []FoodItem{{"burger", 500}}},
	}}

	r := analyzeFile(context.Background(), d, filepath.Join("shots", "a.png"))
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "a.png", r.Filename)
	assert.Equal(t, statusSuccess, r.Status)
	assert.Equal(t, providerGemini, r.Provider)
	assert.Equal(t, 500, r.Calories)
	assert.Equal(t, []string{"burger"}, r.FoodItems)
	assert.Equal(t, []FoodItem{{"burger", 500}}, r.Items)
	assert.True(t, r.HasFood())
	assert.False(t, r.AnalyzedAt.IsZero())
}

func TestAnalyzeFile_NoFood(t *testing.T) {
	r := analyzeFile(context.Background(), &fakeDetector{}, "b.png")
	assert.Equal(t, statusSuccess, r.Status)
	assert.Zero(t, r.Calories)
	assert.NotNil(t, r.FoodItems)
	assert.Empty(t, r.FoodItems)
	assert.False(t, r.HasFood())
}

func TestAnalyzeFile_Error(t *testing.T) {
	r := analyzeFile(context.Background(), &fakeDetector{err: errFake}, "c.png")
	assert.Equal(t, statusError, r.Status)
	assert.Equal(t, "boom", r.Error)
	assert.Zero(t, r.Calories)
	assert.Empty(t, r.FoodItems)
}

func TestNewDetector(t *testing.T) {
	seed := int64(7)
	d, err := newDetector(providerSimulated, "", &seed)
	require.NoError(t, err)
	assert.Equal(t, providerSimulated, d.Name())

	_, err = newDetector(providerGemini, "", nil)
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, err = newDetector(providerOpenAI, "", nil)
	assert.ErrorIs(t, err, ErrNoAPIKey)

	d, err = newDetector(providerOpenAI, "sk-test", nil)
	require.NoError(t, err)
	assert.Equal(t, providerOpenAI, d.Name())

	_, err = newDetector("claude", "k", nil)
	assert.Error(t, err)
}

func TestAPIError(t *testing.T) {
	err := &APIError{StatusCode: 429, Message: "quota exceeded", Provider: providerGemini}
	assert.Equal(t, "gemini: API error 429: quota exceeded", err.Error())
}
