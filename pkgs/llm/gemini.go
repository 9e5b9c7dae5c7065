package llm

import (
	"context"
	"errors"
	"fmt"
	"moviebot/whatsapp-bot/pkgs/utils"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const GEMINI_PROVIDER_NAME string = "GEMINI"

// Gemini model enums
type GeminiModel string

const (
	Gemini25Flash GeminiModel = "gemini-2.5-flash"
	Gemini25Pro   GeminiModel = "gemini-2.5-pro"
	Gemini20Flash GeminiModel = "gemini-2.0-flash"
	Gemini15Pro   GeminiModel = "gemini-1.5-pro"
	Gemini15Flash GeminiModel = "gemini-1.5-flash"
)

// Options for client configuration
type Option func(*ClientConfig)

type ClientConfig struct {
	BaseURL    string
	HTTPClient *http.Client
}

func WithBaseURL(url string) Option {
	return func(c *ClientConfig) {
		c.BaseURL = url
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *ClientConfig) {
		c.HTTPClient = client
	}
}

// IsValidGeminiModel reports whether model is one of the supported Gemini models.
func IsValidGeminiModel(model GeminiModel) bool {
	switch model {
	case Gemini25Flash, Gemini25Pro, Gemini20Flash, Gemini15Pro, Gemini15Flash:
		return true
	}
	return false
}

type geminiClient struct {
	client *genai.Client
	model  string
	config *ClientConfig
}

// Factory function for Gemini client
func NewGeminiClient(ctx context.Context, model GeminiModel, apiKey string, opts ...Option) (Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if !IsValidGeminiModel(model) {
		return nil, fmt.Errorf("invalid Gemini model: %s", model)
	}

	config := &ClientConfig{
		BaseURL: "https://generativelanguage.googleapis.com",
	}

	for _, opt := range opts {
		opt(config)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  config.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: config.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &geminiClient{
		client: client,
		model:  string(model),
		config: config,
	}, nil
}

func (c *geminiClient) Prompt(ctx context.Context, req *Request) (*Response, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	contents, systemText := convertToGeminiContents(req.Messages)
	config := buildGenerateConfig(req.Config, systemText)

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, handleError(err)
	}

	return extractResponse(resp)
}

// convertToGeminiContents maps the conversation onto Gemini contents. System
// messages are pulled out and returned separately since Gemini takes them as
// the system instruction rather than as a turn.
func convertToGeminiContents(messages []Message) ([]*genai.Content, string) {
	var contents []*genai.Content
	var system []string

	for _, msg := range messages {
		if msg.Role == RoleSystem {
			system = append(system, msg.Text)
			continue
		}

		role := convertRole(msg.Role)
		part := &genai.Part{Text: msg.Text}

		// Gemini rejects two consecutive turns from the same role
		if len(contents) > 0 && contents[len(contents)-1].Role == role {
			contents[len(contents)-1].Parts = append(contents[len(contents)-1].Parts, part)
			continue
		}
		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{part},
			Role:  role,
		})
	}

	return contents, strings.Join(system, "\n\n")
}

func convertRole(role Role) string {
	switch role {
	case RoleAssistant:
		return string(genai.RoleModel)
	default:
		return string(genai.RoleUser)
	}
}

func buildGenerateConfig(cfg Config, extraSystem string) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}

	system := cfg.SystemInstruction
	if extraSystem != "" {
		if system != "" {
			system += "\n\n"
		}
		system += extraSystem
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	if cfg.Temperature != nil {
		temp := float32(*cfg.Temperature)
		config.Temperature = &temp
	}
	if cfg.MaxTokens != nil {
		config.MaxOutputTokens = int32(*cfg.MaxTokens)
	}
	if cfg.TopP != nil {
		topP := float32(*cfg.TopP)
		config.TopP = &topP
	}
	if cfg.TopK != nil {
		topK := float32(*cfg.TopK)
		config.TopK = &topK
	}

	for _, s := range cfg.SafetySettings {
		config.SafetySettings = append(config.SafetySettings, &genai.SafetySetting{
			Category:  genai.HarmCategory(s.Category),
			Threshold: genai.HarmBlockThreshold(s.Threshold),
		})
	}

	return config
}

func extractResponse(resp *genai.GenerateContentResponse) (*Response, error) {
	if resp == nil {
		return nil, fmt.Errorf("empty response: %w", ErrServerError)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("prompt blocked (%s): %w", resp.PromptFeedback.BlockReason, ErrBlocked)
	}

	var content string
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		content = resp.Text()
	}
	if content == "" {
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
			return nil, fmt.Errorf("candidate blocked by safety filter: %w", ErrBlocked)
		}
		return nil, fmt.Errorf("no response content: %w", ErrServerError)
	}

	usage := TokenUsage{}
	if resp.UsageMetadata != nil {
		usage = TokenUsage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	return &Response{
		Content: content,
		Usage:   usage,
	}, nil
}

func handleError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		if sentinel := sentinelForStatus(apiErr.Code); sentinel != nil {
			return fmt.Errorf("%w: %w", sentinel, err)
		}
	}

	errStr := err.Error()

	switch {
	case utils.StringContains(errStr, "unauthorized", "unauthenticated", "authentication", "api key"):
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	case utils.StringContains(errStr, "quota exceeded", "permission_denied"):
		return fmt.Errorf("%w: %w", ErrQuotaExceeded, err)
	case utils.StringContains(errStr, "rate limit", "resource_exhausted", "resource exhausted"):
		return fmt.Errorf("%w: %w", ErrRateLimit, err)
	case utils.StringContains(errStr, "bad request", "invalid"):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case utils.StringContains(errStr, "not found"):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case utils.StringContains(errStr, "server error", "internal error", "unavailable", "deadline_exceeded"):
		return fmt.Errorf("%w: %w", ErrServerError, err)
	default:
		return fmt.Errorf("request failed: %w", err)
	}
}

func sentinelForStatus(code int) error {
	switch {
	case code == http.StatusUnauthorized:
		return ErrAuthentication
	case code == http.StatusForbidden:
		return ErrQuotaExceeded
	case code == http.StatusTooManyRequests:
		return ErrRateLimit
	case code == http.StatusBadRequest:
		return ErrInvalidInput
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= http.StatusInternalServerError:
		return ErrServerError
	}
	return nil
}
