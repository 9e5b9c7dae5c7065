package llmactions

import "moviebot/whatsapp-bot/pkgs/llm"

const MovieExpertPrompt string = `You are a world-class Movie Expert AI Assistant. You know everything about movies including:
- Movie recommendations by genre, actor, director, or mood.
- Detailed movie summaries, trivia, cast info, and ratings.
- Hidden gems, classic films, and upcoming releases.
- Cultural context and behind-the-scenes stories.

When replying:
- Be friendly, fun, and informative.
- Provide clear and concise movie suggestions or explanations.
- Suggest related movies if a user mentions liking a specific one.

If a movie doesn't exist or you don't know, be honest and helpful.`

// Sampling parameters for the movie expert.
const (
	MovieExpertTemperature     = 0.7
	MovieExpertTopP            = 1.0
	MovieExpertTopK            = 40
	MovieExpertMaxOutputTokens = 4096
)

// MovieExpertConfig returns the generation config used for every completion.
// Callers get a fresh value, so it can be shared without copying.
func MovieExpertConfig() llm.Config {
	return llm.Config{
		SystemInstruction: MovieExpertPrompt,
		Temperature:       llm.Ptr(MovieExpertTemperature),
		TopP:              llm.Ptr(MovieExpertTopP),
		TopK:              llm.Ptr(MovieExpertTopK),
		MaxTokens:         llm.Ptr(MovieExpertMaxOutputTokens),
		SafetySettings: []llm.SafetySetting{
			{Category: llm.HarmCategoryHarassment, Threshold: llm.BlockMediumAndAbove},
			{Category: llm.HarmCategoryHateSpeech, Threshold: llm.BlockMediumAndAbove},
			{Category: llm.HarmCategorySexuallyExplicit, Threshold: llm.BlockMediumAndAbove},
			{Category: llm.HarmCategoryDangerousContent, Threshold: llm.BlockMediumAndAbove},
		},
	}
}
