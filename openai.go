package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"

	"github.com/sashabaranov/go-openai"
)

const openAIVisionModel = "gpt-4o"

// OpenAIDetector sends the screenshot to an OpenAI vision model
type OpenAIDetector struct {
	client *openai.Client
	model  string
}

func NewOpenAIDetector(apiKey string) (*OpenAIDetector, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrNoAPIKey)
	}
	return newOpenAIDetectorWithConfig(openai.DefaultConfig(apiKey)), nil
}

func newOpenAIDetectorWithConfig(cfg openai.ClientConfig) *OpenAIDetector {
	return &OpenAIDetector{
		client: openai.NewClientWithConfig(cfg),
		model:  openAIVisionModel,
	}
}

func (o *OpenAIDetector) Name() string { return providerOpenAI }

func (o *OpenAIDetector) Detect(ctx context.Context, imagePath string) (*Detection, error) {
	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("reading image file: %w", err)
	}

	encodedImage := base64.StdEncoding.EncodeToString(imageData)
	imageDataURL := fmt.Sprintf("data:%s;base64,%s", mimeTypeFor(imagePath), encodedImage)

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: "You estimate the food content and calories of screenshots. Reply only with JSON.",
		},
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{
					Type: openai.ChatMessagePartTypeText,
					Text: foodPrompt,
				},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL: imageDataURL,
					},
				},
			},
		},
	}

	req := openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	slog.Debug("openai request", "model", req.Model, "image_bytes", len(imageData))

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai: sending image description request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: no choices in response")
	}

	return parseDetection(resp.Choices[0].Message.Content)
}
