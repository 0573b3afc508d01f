package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"research-chatbot/internal/contextutil"
)

var templateCache sync.Map // map[string]*template.Template

// RenderPrompt fills a text/template prompt with vars. A variable referenced by the template
// but missing from vars is an error.
func RenderPrompt(tmpl string, vars map[string]string) (string, error) {
	t, err := parseTemplate(tmpl)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if err := t.Execute(&b, vars); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return b.String(), nil
}

func parseTemplate(tmpl string) (*template.Template, error) {
	if cached, ok := templateCache.Load(tmpl); ok {
		return cached.(*template.Template), nil
	}
	t, err := template.New("prompt").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt template: %w", err)
	}
	templateCache.Store(tmpl, t)
	return t, nil
}

// PromptGenerator adapts a Chatter into a Generator bound to one model and temperature.
type PromptGenerator struct {
	chat   Chatter
	params ChatParams
}

// NewPromptGenerator creates a Generator that sends rendered prompts as a single user message.
func NewPromptGenerator(chat Chatter, params ChatParams) *PromptGenerator {
	return &PromptGenerator{chat: chat, params: params}
}

// Generate renders tmpl and returns the trimmed completion.
func (g *PromptGenerator) Generate(ctx context.Context, tmpl string, vars map[string]string) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	prompt, err := RenderPrompt(tmpl, vars)
	if err != nil {
		return "", err
	}

	logger.DebugContext(ctx, "sending prompt to LLM",
		"model", g.params.Model,
		"prompt_length", len(prompt),
	)

	reply, err := g.chat.ChatWithMessages(ctx, []Message{{Role: "user", Content: prompt}}, g.params)
	if err != nil {
		return "", fmt.Errorf("failed to get LLM response: %w", err)
	}

	reply = strings.TrimSpace(reply)
	logger.DebugContext(ctx, "received LLM response", "model", g.params.Model, "reply_length", len(reply))
	return reply, nil
}
