package correction

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/rs/zerolog"
	"github.com/walteh/docscrub/pkg/edits"
	"gitlab.com/tozd/go/errors"
)

// AzureOpenAIProvider asks an Azure OpenAI deployment for edits
const AzureOpenAIProvider = "azopenai"

func init() {
	Register(AzureOpenAIProvider, func(ctx context.Context, opts Options) (Corrector, error) {
		return NewAzureOpenAI(opts)
	})
}

// 🤖 chatCompleter is the slice of azopenai.Client we use
type chatCompleter interface {
	GetChatCompletions(ctx context.Context, body azopenai.ChatCompletionsOptions, options *azopenai.GetChatCompletionsOptions) (azopenai.GetChatCompletionsResponse, error)
}

// AzureOpenAI turns chat completions into offset edits
type AzureOpenAI struct {
	client       chatCompleter
	deploymentID string
}

// 🏭 NewAzureOpenAI creates a client from the endpoint, deployment and the key in APIKeyEnv
func NewAzureOpenAI(opts Options) (*AzureOpenAI, error) {
	if opts.Endpoint == "" {
		return nil, errors.Errorf("endpoint is required")
	}
	if opts.Deployment == "" {
		return nil, errors.Errorf("deployment is required")
	}
	envName := opts.APIKeyEnv
	if envName == "" {
		envName = "AZURE_OPENAI_KEY"
	}
	apiKey := os.Getenv(envName)
	if apiKey == "" {
		return nil, errors.Errorf("environment variable %s is not set", envName)
	}

	client, err := azopenai.NewClientWithKeyCredential(opts.Endpoint, azcore.NewKeyCredential(apiKey), nil)
	if err != nil {
		return nil, errors.Errorf("creating azure openai client: %w", err)
	}

	return &AzureOpenAI{client: client, deploymentID: opts.Deployment}, nil
}

func (a *AzureOpenAI) Name() string { return AzureOpenAIProvider }

const azurePrompt = `You are a proofreader. Find spelling, grammar and typography mistakes in the text below (language: %s).
Answer with a JSON array only, no prose. Each element is {"offset": int, "length": int, "replacement": string}
where offset and length count Unicode code points of the original text. Answer [] when nothing needs fixing.

TEXT:
%s`

// 🔍 SuggestEdits sends one chat completion and decodes the JSON edit list
func (a *AzureOpenAI) SuggestEdits(ctx context.Context, text, language string) ([]edits.Edit, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if language == "" {
		language = "auto"
	}

	resp, err := a.client.GetChatCompletions(
		ctx,
		azopenai.ChatCompletionsOptions{
			DeploymentName: to.Ptr(a.deploymentID),
			Messages: []azopenai.ChatRequestMessageClassification{
				&azopenai.ChatRequestUserMessage{
					Content: azopenai.NewChatRequestUserMessageContent(fmt.Sprintf(azurePrompt, language, text)),
				},
			},
		},
		nil,
	)
	if err != nil {
		return nil, errors.Errorf("getting chat completion: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil || resp.Choices[0].Message.Content == nil {
		return nil, errors.Errorf("no completion received")
	}

	out, err := decodeEditList(*resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().Int("edits", len(out)).Msg("azure openai check complete")
	return out, nil
}

// decodeEditList parses a JSON edit array, tolerating a markdown code fence
func decodeEditList(content string) ([]edits.Edit, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}

	var out []edits.Edit
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &out); err != nil {
		return nil, errors.Errorf("decoding edit list: %w", err)
	}
	return out, nil
}
