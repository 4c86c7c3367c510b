package translation

import (
	"fmt"

	"github.com/leonardotrapani/voicelink/internal/language"
)

// BuildSystemPrompt generates the system prompt for translating a live
// speech transcript from source into target.
func BuildSystemPrompt(source, target string) string {
	to := language.FromCode(target).Name
	if to == language.None.Name {
		to = target
	}

	prompt := "You are a translation assistant for live speech-to-text transcripts.\n\n"
	if from := language.FromCode(language.Base(source)); from.Code != "" {
		prompt += fmt.Sprintf("Translate the text from %s to %s.\n", from.Name, to)
	} else {
		prompt += fmt.Sprintf("Translate the text to %s.\n", to)
	}

	prompt += "\nRules:\n"
	prompt += "- The text is an unpunctuated transcript and may end mid-sentence\n"
	prompt += "- Preserve the original meaning and tone\n"
	prompt += "- Do not add explanations, notes or quotes\n"
	prompt += "- Output ONLY the translated text, nothing else\n"

	return prompt
}
