// Package gemini relays prompts to Google's generative models.
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const (
	DefaultTextModel  = "gemini-2.5-flash"
	DefaultImageModel = "imagen-3.0-generate-002"
)

var ErrNoImage = errors.New("model returned no image")

// Client wraps a genai client with the models used for dreams.
type Client struct {
	client     *genai.Client
	textModel  string
	imageModel string
}

// NewClient creates a Gemini API client. An empty apiKey falls back to the
// GOOGLE_API_KEY / Vertex AI environment the SDK reads itself.
func NewClient(ctx context.Context, apiKey, textModel, imageModel string) (*Client, error) {
	var cfg *genai.ClientConfig
	if apiKey != "" {
		cfg = &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if textModel == "" {
		textModel = DefaultTextModel
	}
	if imageModel == "" {
		imageModel = DefaultImageModel
	}
	return &Client{client: client, textModel: textModel, imageModel: imageModel}, nil
}

// GenerateImage requests exactly one square image and returns it base64 encoded.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateImages(ctx, c.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    "1:1",
		OutputMIMEType: "image/png",
	})
	if err != nil {
		return "", fmt.Errorf("gemini image request failed: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return "", ErrNoImage
	}
	return base64.StdEncoding.EncodeToString(resp.GeneratedImages[0].Image.ImageBytes), nil
}

// Complete sends prompt as a single user turn under a fixed system instruction.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.textModel, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("gemini API request failed: %w", err)
	}
	return resp.Text(), nil
}
