package llm

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"moviebot/whatsapp-bot/pkgs/conf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestConvertToGeminiContents(t *testing.T) {
	messages := []Message{
		{Role: RoleSystem, Text: "You are a movie expert."},
		{Role: RoleUser, Text: "Recommend a sci-fi movie"},
		{Role: RoleAssistant, Text: "Try Arrival."},
		{Role: RoleUser, Text: "Something older?"},
		{Role: RoleUser, Text: "From the 80s."},
	}

	contents, system := convertToGeminiContents(messages)

	assert.Equal(t, "You are a movie expert.", system)
	require.Len(t, contents, 3)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
	assert.Equal(t, "Try Arrival.", contents[1].Parts[0].Text)
	assert.Equal(t, "user", contents[2].Role)
	require.Len(t, contents[2].Parts, 2, "consecutive user turns are merged")
	assert.Equal(t, "From the 80s.", contents[2].Parts[1].Text)
}

func TestBuildGenerateConfig(t *testing.T) {
	cfg := Config{
		SystemInstruction: "base",
		Temperature:       Ptr(0.7),
		TopP:              Ptr(1.0),
		TopK:              Ptr(40),
		MaxTokens:         Ptr(4096),
		SafetySettings: []SafetySetting{
			{Category: HarmCategoryHarassment, Threshold: BlockMediumAndAbove},
			{Category: HarmCategoryDangerousContent, Threshold: BlockMediumAndAbove},
		},
	}

	out := buildGenerateConfig(cfg, "extra")

	require.NotNil(t, out.SystemInstruction)
	assert.Equal(t, "base\n\nextra", out.SystemInstruction.Parts[0].Text)
	require.NotNil(t, out.Temperature)
	assert.InDelta(t, 0.7, *out.Temperature, 1e-6)
	require.NotNil(t, out.TopP)
	assert.InDelta(t, 1.0, *out.TopP, 1e-6)
	require.NotNil(t, out.TopK)
	assert.InDelta(t, 40, *out.TopK, 1e-6)
	assert.Equal(t, int32(4096), out.MaxOutputTokens)
	require.Len(t, out.SafetySettings, 2)
	assert.Equal(t, genai.HarmCategoryHarassment, out.SafetySettings[0].Category)
	assert.Equal(t, genai.HarmBlockThresholdBlockMediumAndAbove, out.SafetySettings[0].Threshold)
	assert.Equal(t, genai.HarmCategoryDangerousContent, out.SafetySettings[1].Category)
}

func TestBuildGenerateConfig_Empty(t *testing.T) {
	out := buildGenerateConfig(Config{}, "")
	assert.Nil(t, out.SystemInstruction)
	assert.Nil(t, out.Temperature)
	assert.Empty(t, out.SafetySettings)
}

func TestExtractResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: "Try Arrival."}}},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     12,
			CandidatesTokenCount: 4,
			TotalTokenCount:      16,
		},
	}

	out, err := extractResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, "Try Arrival.", out.Content)
	assert.Equal(t, TokenUsage{PromptTokens: 12, CompletionTokens: 4, TotalTokens: 16}, out.Usage)
}

func TestExtractResponse_Blocked(t *testing.T) {
	_, err := extractResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
	})
	assert.ErrorIs(t, err, ErrBlocked)

	_, err = extractResponse(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, ErrServerError)

	_, err = extractResponse(nil)
	assert.ErrorIs(t, err, ErrServerError)
}

func TestHandleError(t *testing.T) {
	cases := []struct {
		msg  string
		want error
	}{
		{"API key not valid. Please pass a valid API key.", ErrAuthentication},
		{"Error 429, Status: RESOURCE_EXHAUSTED", ErrRateLimit},
		{"Error 400, Message: Invalid argument", ErrInvalidInput},
		{"models/unknown is not found", ErrNotFound},
		{"Error 503, Status: UNAVAILABLE", ErrServerError},
	}
	for _, tc := range cases {
		t.Run(tc.msg, func(t *testing.T) {
			err := handleError(errors.New(tc.msg))
			assert.ErrorIs(t, err, tc.want)
		})
	}

	assert.Nil(t, handleError(nil))
	assert.ErrorContains(t, handleError(errors.New("boom")), "request failed")
}

func TestNewGeminiClient_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := NewGeminiClient(ctx, Gemini15Flash, "")
	assert.Error(t, err)

	_, err = NewGeminiClient(ctx, GeminiModel("gpt-4"), "key")
	assert.Error(t, err)

	_, err = NewClient(ctx, "OPENAI", string(Gemini15Flash), "key")
	assert.Error(t, err)
}

// TestGeminiIntegration_Prompt talks to the real API.
//
// GEMINI_API_KEY=your_api_key_here go test -run TestGeminiIntegration_Prompt -v
func TestGeminiIntegration_Prompt(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" && conf.LoadEnvFromFile("../../.env") == nil {
		apiKey = conf.GetConfig().GeminiConfig.APIKey
	}
	if apiKey == "" {
		t.Skip("Skipping integration test: GEMINI_API_KEY environment variable not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := NewGeminiClient(ctx, Gemini15Flash, apiKey)
	require.NoError(t, err)

	resp, err := client.Prompt(ctx, &Request{
		Messages: []Message{
			{Role: RoleUser, Text: "My favourite movie is Arrival."},
			{Role: RoleAssistant, Text: "Great pick!"},
			{Role: RoleUser, Text: "What is my favourite movie? Answer with the title only."},
		},
		Config: Config{
			SystemInstruction: "You are a terse assistant.",
			Temperature:       Ptr(0.0),
			MaxTokens:         Ptr(32),
		},
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Content, "Arrival")
	t.Logf("Response: %q usage=%+v", resp.Content, resp.Usage)
}
