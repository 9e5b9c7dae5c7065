package llm

// Role represents the role of a message sender
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation
type Message struct {
	Role Role   `json:"role" validate:"required,oneof=system user assistant"`
	Text string `json:"text" validate:"required"`
}

// Request represents a request to an LLM
type Request struct {
	Messages []Message `json:"messages" validate:"required,min=1,dive"`
	Config   Config    `json:"config"`
}

// HarmCategory names a content-safety category the provider can filter on.
type HarmCategory string

const (
	HarmCategoryHarassment       HarmCategory = "HARM_CATEGORY_HARASSMENT"
	HarmCategoryHateSpeech       HarmCategory = "HARM_CATEGORY_HATE_SPEECH"
	HarmCategorySexuallyExplicit HarmCategory = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
	HarmCategoryDangerousContent HarmCategory = "HARM_CATEGORY_DANGEROUS_CONTENT"
)

// BlockThreshold is the severity at which a category starts being blocked.
type BlockThreshold string

const (
	BlockLowAndAbove    BlockThreshold = "BLOCK_LOW_AND_ABOVE"
	BlockMediumAndAbove BlockThreshold = "BLOCK_MEDIUM_AND_ABOVE"
	BlockOnlyHigh       BlockThreshold = "BLOCK_ONLY_HIGH"
	BlockNone           BlockThreshold = "BLOCK_NONE"
)

type SafetySetting struct {
	Category  HarmCategory   `json:"category" validate:"required"`
	Threshold BlockThreshold `json:"threshold" validate:"required"`
}

// Config holds configuration for LLM requests
type Config struct {
	SystemInstruction string          `json:"system_instruction,omitempty"`
	Temperature       *float64        `json:"temperature,omitempty" validate:"omitempty,min=0,max=2"`
	MaxTokens         *int            `json:"max_tokens,omitempty" validate:"omitempty,min=1"`
	TopP              *float64        `json:"top_p,omitempty" validate:"omitempty,min=0,max=1"`
	TopK              *int            `json:"top_k,omitempty" validate:"omitempty,min=1"`
	SafetySettings    []SafetySetting `json:"safety_settings,omitempty" validate:"dive"`
}

// Response represents the response from an LLM
type Response struct {
	Content string     `json:"content"`
	Usage   TokenUsage `json:"usage"`
}

// TokenUsage tracks token consumption
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Ptr returns a pointer to v, for the optional Config fields.
func Ptr[T any](v T) *T {
	return &v
}
