package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm.go -package=mocks research-chatbot/internal/llm Chatter,Generator,Embedder

import "context"

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatParams holds parameters for chat completion requests.
type ChatParams struct {
	// Model specifies the model to use. If empty, the client's default model is used.
	Model string

	// MaxTokens specifies the maximum number of tokens to generate.
	// If 0, no limit is applied.
	MaxTokens int

	// Temperature controls the randomness of the output. Zero means deterministic sampling.
	Temperature float32
}

// Chatter sends a list of chat messages to a completion backend and returns the reply text.
type Chatter interface {
	ChatWithMessages(ctx context.Context, messages []Message, params ChatParams) (string, error)
}

// Generator renders a prompt template with the given variables and returns the model's completion.
type Generator interface {
	Generate(ctx context.Context, tmpl string, vars map[string]string) (string, error)
}

// Embedder produces embedding vectors for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
