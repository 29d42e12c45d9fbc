package llm

import (
	"context"
	"fmt"
	"strings"
)

const (
	variableNameSystem = "You are a programming expert who writes clean, conventional code. " +
		"You always choose concise variable names in lower_snake_case with a moderate length."
	titleSystem = "You are a professional editor who writes concise, accurate and engaging titles. " +
		"A title must be 5 to 15 words long, reflect the content accurately, " +
		"use the language of the content, and contain no punctuation or special characters."
)

// Completer is anything that can answer a system/user prompt pair.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// VariableName asks for a single recommended variable name for topic.
// The answer is returned as the model produced it.
func VariableName(ctx context.Context, c Completer, topic string) (string, error) {
	user := fmt.Sprintf("Suggest one variable name for %q. Output only the name you recommend most, nothing else.", topic)
	return c.Complete(ctx, variableNameSystem, user)
}

// Title asks for a title summarizing content. Surrounding whitespace is
// trimmed from the answer.
func Title(ctx context.Context, c Completer, content string) (string, error) {
	user := "Write a title for the following content. Output only the title, nothing else:\n\n" + content
	out, err := c.Complete(ctx, titleSystem, user)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
