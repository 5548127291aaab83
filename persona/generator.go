// Package persona turns fetched activity and a sentiment profile into a
// narrative persona, using a model-backed text generator when one is
// configured and a deterministic templated summary otherwise.
package persona

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reddit-persona/config"
)

// ErrGeneratorFailed 는 텍스트 생성기가 실패했거나 쓸 수 없는 결과를 돌려준 경우다.
// 파이프라인 밖으로 전파되지 않고 템플릿 요약으로 대체된다.
var ErrGeneratorFailed = errors.New("text generator failed")

// Generator is a pluggable text generation backend.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Provider names accepted in generator.provider.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderTemplated = "templated"
)

// NewGenerator 는 설정된 provider 의 생성기를 만든다.
// templated 이면 (nil, nil) 을 반환하며, 이 경우 Synthesizer 는 항상 템플릿 요약을 쓴다.
func NewGenerator(ctx context.Context, cfg config.GeneratorConfig) (Generator, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderTemplated:
		return nil, nil
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("persona: GEMINI_API_KEY environment variable is not set")
		}
		return NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.Model, cfg.MaxOutputTokens)
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("persona: OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.Model, cfg.MaxOutputTokens), nil
	case ProviderOllama:
		return NewOllamaGenerator(cfg.OllamaURL, cfg.Model, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("persona: unsupported generator provider: %s", cfg.Provider)
	}
}

const systemInstruction = `You are an analyst who writes concise, respectful user personas from public Reddit activity.
Base every statement on the activity summary you are given and avoid speculation about identity.
Write plain text with short section headings. Do not use markdown code blocks.`
