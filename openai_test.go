package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAIDetector {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = server.URL + "/v1"
	return newOpenAIDetectorWithConfig(cfg)
}

func chatReply(content string) string {
	resp := openai.ChatCompletionResponse{
		ID:     "chatcmpl-1",
		Object: "chat.completion",
		Model:  openAIVisionModel,
		Choices: []openai.ChatCompletionChoice{{
			Index:        0,
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			FinishReason: openai.FinishReasonStop,
		}},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

// wire shape of a vision request, decoded loosely
type chatRequestBody struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatContentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	ImageURL struct {
		URL string `json:"url"`
	} `json:"image_url"`
}

func TestOpenAIDetect(t *testing.T) {
	var got chatRequestBody
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatReply(`{"food_detected": true, "food_items": [{"name": "ramen", "calories": 550}], "total_calories": 550}`)))
	})

	d, err := o.Detect(context.Background(), writeTempImage(t, "bowl.png", []byte("png bytes")))
	require.NoError(t, err)
	assert.Equal(t, 550, d.TotalCalories)
	assert.Equal(t, []string{"ramen"}, d.Names())

	assert.Equal(t, openAIVisionModel, got.Model)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)

	var parts []chatContentPart
	require.NoError(t, json.Unmarshal(got.Messages[1].Content, &parts))
	require.Len(t, parts, 2)
	assert.Equal(t, foodPrompt, parts[0].Text)
	assert.Equal(t, "image_url", parts[1].Type)
	assert.True(t, strings.HasPrefix(parts[1].ImageURL.URL, "data:image/png;base64,"))
}

func TestOpenAIDetect_NoFood(t *testing.T) {
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatReply(`{"food_detected": false, "food_items": [], "total_calories": 0}`)))
	})

	d, err := o.Detect(context.Background(), writeTempImage(t, "desk.png", []byte("png")))
	require.NoError(t, err)
	assert.False(t, d.FoodDetected)
}

func TestOpenAIDetect_ServerError(t *testing.T) {
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	})

	_, err := o.Detect(context.Background(), writeTempImage(t, "a.png", []byte("png")))
	assert.ErrorContains(t, err, "invalid api key")
}

func TestOpenAIDetect_NoChoices(t *testing.T) {
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	})

	_, err := o.Detect(context.Background(), writeTempImage(t, "a.png", []byte("png")))
	assert.ErrorContains(t, err, "no choices")
}
