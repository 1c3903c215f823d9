package provider

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/papercomputeco/neural/pkg/llm"
)

// OpenAI is the Provider backed by the OpenAI API.
type OpenAI struct {
	client     openai.Client
	chatModel  string
	imageModel string
	logger     *zap.Logger
}

// NewOpenAI builds the client once. Retries are disabled: every inbound
// request results in exactly one upstream call.
func NewOpenAI(cfg Config, logger *zap.Logger) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	p := &OpenAI{
		client:     openai.NewClient(opts...),
		chatModel:  cfg.ChatModel,
		imageModel: cfg.ImageModel,
		logger:     logger,
	}
	if p.chatModel == "" {
		p.chatModel = DefaultChatModel
	}
	if p.imageModel == "" {
		p.imageModel = DefaultImageModel
	}
	return p
}

func (p *OpenAI) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(p.chatModel),
		Messages:    make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
		Temperature: openai.Float(Temperature),
		MaxTokens:   openai.Int(MaxTokens),
	}

	var opts []option.RequestOption
	for i, m := range messages {
		param, known := messageParam(m)
		switch {
		case m.Raw != nil:
			// Decoded messages go out exactly as the caller sent them.
			opts = append(opts, option.WithJSONSet(fmt.Sprintf("messages.%d", i), m.Raw))
		case !known:
			// Forward the role verbatim and let the provider reject it.
			opts = append(opts, option.WithJSONSet(fmt.Sprintf("messages.%d.role", i), m.Role))
		}
		params.Messages = append(params.Messages, param)
	}

	p.logger.Debug("sending chat completion",
		zap.String("model", p.chatModel),
		zap.Int("message_count", len(messages)),
	)

	completion, err := p.client.Chat.Completions.New(ctx, params, opts...)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", ErrNoChoices
	}

	return completion.Choices[0].Message.Content, nil
}

func (p *OpenAI) GenerateImage(ctx context.Context, prompt string) (string, error) {
	params := openai.ImageGenerateParams{
		Model:  openai.ImageModel(p.imageModel),
		Prompt: prompt,
		N:      openai.Int(ImageCount),
		Size:   openai.ImageGenerateParamsSize(ImageSize),
	}

	p.logger.Debug("sending image generation",
		zap.String("model", p.imageModel),
		zap.Int("prompt_length", len(prompt)),
	)

	resp, err := p.client.Images.Generate(ctx, params)
	if err != nil {
		return "", fmt.Errorf("image generation: %w", err)
	}
	if len(resp.Data) == 0 {
		return "", ErrNoImages
	}

	return resp.Data[0].URL, nil
}

// messageParam maps m onto the SDK union. For roles the SDK has no variant
// for it returns a user message and false; the caller overrides the role.
// Raw messages replace the mapped value wholesale.
func messageParam(m llm.Message) (openai.ChatCompletionMessageParamUnion, bool) {
	switch m.Role {
	case llm.RoleSystem:
		return openai.SystemMessage(m.Content), true
	case llm.RoleUser:
		return openai.UserMessage(m.Content), true
	case llm.RoleAssistant:
		return openai.AssistantMessage(m.Content), true
	case llm.RoleDeveloper:
		return openai.DeveloperMessage(m.Content), true
	default:
		return openai.UserMessage(m.Content), false
	}
}
