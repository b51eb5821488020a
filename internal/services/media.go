package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anonto42/dreamscape/backend/pkg/metrics"
)

// InterpretInstruction is the fixed system instruction for dream interpretation.
const InterpretInstruction = "Given the dream story, your job is to interpret it."

// DreamModel is the external generative model behind the media relay.
type DreamModel interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// MediaService forwards prompts to a DreamModel as-is: no retries, rate
// limiting or caching.
type MediaService struct {
	model DreamModel
}

func NewMediaService(model DreamModel) *MediaService {
	return &MediaService{model: model}
}

// GenerateImage returns one base64 encoded square image for prompt.
func (s *MediaService) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}
	start := time.Now()
	photo, err := s.model.GenerateImage(ctx, prompt)
	metrics.ObserveRelay("image", start, err)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRelay, err)
	}
	return photo, nil
}

// InterpretDream returns the model's interpretation of a dream story.
func (s *MediaService) InterpretDream(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}
	start := time.Now()
	text, err := s.model.Complete(ctx, InterpretInstruction, prompt)
	metrics.ObserveRelay("interpret", start, err)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRelay, err)
	}
	return text, nil
}
