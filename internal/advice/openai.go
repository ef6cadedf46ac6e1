package advice

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

const (
	maxOutputTokens = 220
	temperature     = 0.3
)

// OpenAIAdvisor calls the OpenAI Responses API.
type OpenAIAdvisor struct {
	client *openai.Client
	model  string
}

func NewOpenAIAdvisor(apiKey, model string) *OpenAIAdvisor {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIAdvisor{client: &client, model: model}
}

func (a *OpenAIAdvisor) Advise(ctx context.Context, instructions, prompt string) (string, error) {
	params := responses.ResponseNewParams{
		Model:        shared.ResponsesModel(a.model),
		Instructions: param.NewOpt(instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		MaxOutputTokens: param.NewOpt(int64(maxOutputTokens)),
		Temperature:     param.NewOpt(temperature),
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai responses: %w", err)
	}

	answer := resp.OutputText()
	if answer == "" {
		return "", errors.New("empty response content")
	}

	return answer, nil
}
