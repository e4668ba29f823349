// Package prompts builds the LLM prompts used by the intent classifier.
package prompts

import (
	"fmt"
	"strings"
)

// IntentSystemMessage constrains the classifier to the four-label
// vocabulary and the line format the response parser expects.
const IntentSystemMessage = "You are an SEO analyst. You classify search keywords by searcher intent. " +
	"You answer only in the exact line format requested, with no extra commentary."

// BuildIntentClassificationPrompt creates the prompt for one batch of
// keywords. The response contract is one line per keyword of the form
// "- <keyword>: <intent>", with intent one of exactly four labels; the
// parser drops anything else.
func BuildIntentClassificationPrompt(keywords []string) string {
	var prompt strings.Builder

	prompt.WriteString("For each keyword below, classify its search intent. ")
	prompt.WriteString("You MUST choose EXACTLY ONE of these four options: Informational, Commercial, Navigational, Transactional.\n\n")
	prompt.WriteString("Answer ONLY in this format: - keyword: intent\n\n")
	prompt.WriteString("Examples:\n")
	prompt.WriteString("- how to bake a cake: Informational\n")
	prompt.WriteString("- best phones 2024 review: Commercial\n")
	prompt.WriteString("- facebook login: Navigational\n")
	prompt.WriteString("- flight ticket price jakarta bali: Transactional\n\n")
	prompt.WriteString("Here are the keywords to analyze:\n")
	for _, kw := range keywords {
		prompt.WriteString(fmt.Sprintf("- %s\n", kw))
	}

	return prompt.String()
}
