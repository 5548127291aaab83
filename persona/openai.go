package persona

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// personaResponse 는 OpenAI 구조화 출력 스키마다.
type personaResponse struct {
	Persona string `json:"persona" jsonschema:"required,description=The full persona text with section headings"`
}

// OpenAIGenerator calls the OpenAI Responses API with a JSON-schema output format.
type OpenAIGenerator struct {
	client          openai.Client
	model           string
	maxOutputTokens int64
	schema          map[string]any
}

func NewOpenAIGenerator(apiKey, model string, maxOutputTokens int, opts ...option.RequestOption) *OpenAIGenerator {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAIGenerator{
		client:          openai.NewClient(opts...),
		model:           model,
		maxOutputTokens: int64(maxOutputTokens),
		schema:          generateSchema[personaResponse](),
	}
}

func (g *OpenAIGenerator) Name() string { return "openai:" + g.model }

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	params := responses.ResponseNewParams{
		Model:           g.model,
		MaxOutputTokens: openai.Int(g.maxOutputTokens),
		Instructions:    openai.String(systemInstruction),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(prompt, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:        "Persona",
					Schema:      g.schema,
					Strict:      openai.Bool(true),
					Description: openai.String("Reddit user persona"),
					Type:        "json_schema",
				},
			},
		},
	}

	resp, err := g.client.Responses.New(ctx, params)
	if err != nil {
		return "", err
	}

	var out personaResponse
	raw := strings.TrimSpace(resp.OutputText())
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return "", fmt.Errorf("unmarshal persona response: %w", err)
	}
	return out.Persona, nil
}

func generateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	b, err := reflector.Reflect(v).MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	// strict 모드는 additionalProperties=false 를 요구한다.
	m["additionalProperties"] = false
	delete(m, "$schema")
	delete(m, "$id")
	return m
}
