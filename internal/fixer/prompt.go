package fixer

import "fmt"

const systemPromptTemplate = `You are a conservative line editor. Improve clarity and grammar
without changing meaning, tone, or details. Do not add or remove facts,
names, or events. Output the revised TEXT only. No explanations, no
lists, no quotes, no markdown, no code, no JSON - just plain text.
Locale: %s.`

// BuildSystemPrompt mirrors fixer/prompt.py's build_system_prompt.
func BuildSystemPrompt(locale string) string {
	if locale == "" {
		locale = "en"
	}
	return fmt.Sprintf(systemPromptTemplate, locale)
}

// BuildUserPrompt mirrors fixer/prompt.py's build_user_prompt.
func BuildUserPrompt(text string) string {
	return fmt.Sprintf("TEXT:\n<<<\n%s\n>>>\nReturn only the improved text for TEXT. No additional content.", text)
}
