package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/theimaginaryfoundation/convo-flatten/flatten/fileutils"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-5-mini"

// PlaceholderSummary is returned by PlaceholderSummarizer.
const PlaceholderSummary = "This is a placeholder summary as the API key is not configured."

const threadSummaryInstructions = `You are an expert in analyzing conversation histories. Provide a concise, one-paragraph summary of the chat thread given by the user. Focus on the main topic and the key information exchanged. Respond with JSON matching the schema.`

type threadSummaryResponse struct {
	Summary string `json:"summary" jsonschema:"required,description=One-paragraph summary of the thread"`
}

var threadSummarySchema = GenerateSchema[threadSummaryResponse]()

// OpenAISummarizer summarizes threads with the OpenAI Responses API.
type OpenAISummarizer struct {
	client *openai.Client
	model  string
}

// NewOpenAISummarizer builds a summarizer for apiKey. Extra request options (base URL, retries)
// are passed through to the client.
func NewOpenAISummarizer(apiKey, model string, opts ...option.RequestOption) *OpenAISummarizer {
	if model == "" {
		model = DefaultModel
	}
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &OpenAISummarizer{client: &client, model: model}
}

func (s *OpenAISummarizer) SummarizeThread(ctx context.Context, threadText string) (string, error) {
	if s == nil || s.client == nil {
		return "", errors.New("OpenAISummarizer: client is nil")
	}
	if strings.TrimSpace(threadText) == "" {
		return "", errors.New("OpenAISummarizer: thread is empty")
	}

	params := responses.ResponseNewParams{
		Model:           s.model,
		MaxOutputTokens: openai.Int(1000),
		Instructions:    openai.String(threadSummaryInstructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(threadText, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:        "ThreadSummary",
					Schema:      threadSummarySchema,
					Strict:      openai.Bool(true),
					Description: openai.String("Thread summary JSON"),
					Type:        "json_schema",
				},
			},
		},
	}

	resp, err := CallWithRetry(ctx, s.client, params)
	if err != nil {
		return "", fmt.Errorf("OpenAISummarizer: %w", err)
	}

	var out threadSummaryResponse
	if err := fileutils.DecodeModelJSON(resp.OutputText(), &out); err != nil {
		return "", fmt.Errorf("OpenAISummarizer: unmarshal summary: %w", err)
	}
	return strings.TrimSpace(out.Summary), nil
}

// PlaceholderSummarizer stands in when no API key is configured.
type PlaceholderSummarizer struct{}

func (PlaceholderSummarizer) SummarizeThread(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return PlaceholderSummary, nil
}
