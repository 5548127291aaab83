package persona

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiGenerator 는 google.golang.org/genai 로 Gemini 모델을 호출한다.
type GeminiGenerator struct {
	client          *genai.Client
	model           string
	maxOutputTokens int32
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string, maxOutputTokens int) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("persona: create gemini client: %w", err)
	}
	return &GeminiGenerator{
		client:          client,
		model:           model,
		maxOutputTokens: int32(maxOutputTokens),
	}, nil
}

func (g *GeminiGenerator) Name() string { return "gemini:" + g.model }

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
			MaxOutputTokens:   g.maxOutputTokens,
		},
	)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", fmt.Errorf("gemini returned no result")
	}
	return result.Text(), nil
}
