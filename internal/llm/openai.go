package llm

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient talks to the hosted OpenAI API (or any compatible base URL) through go-openai.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a new OpenAI chat client. baseURL may be empty to use the public API.
func NewOpenAI(apiKey, baseURL, model string, httpClient *http.Client) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if httpClient != nil {
		config.HTTPClient = httpClient
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// ChatWithMessages sends a chat completion request and returns the first choice's content.
func (c *OpenAIClient) ChatWithMessages(ctx context.Context, messages []Message, params ChatParams) (string, error) {
	model := params.Model
	if model == "" {
		model = c.model
	}

	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: oaMsgs,
	}

	if isReasoningModel(model) {
		// Reasoning models only accept the default temperature and max_completion_tokens.
		req.MaxCompletionTokens = params.MaxTokens
	} else {
		req.MaxTokens = params.MaxTokens
		req.Temperature = params.Temperature
		if req.Temperature == 0 {
			// go-openai drops a zero temperature from the payload.
			req.Temperature = math.SmallestNonzeroFloat32
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

func isReasoningModel(model string) bool {
	return strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3")
}

// OpenAIEmbedder produces embeddings through the go-openai embeddings endpoint.
type OpenAIEmbedder struct {
	client       *openai.Client
	model        string
	expectedSize int
}

// NewOpenAIEmbedder creates an embedder. expectedSize is the vector size every returned
// embedding is validated against (QDRANT_VECTOR_SIZE).
func NewOpenAIEmbedder(apiKey, baseURL, model string, expectedSize int) *OpenAIEmbedder {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIEmbedder{
		client:       openai.NewClientWithConfig(config),
		model:        model,
		expectedSize: expectedSize,
	}
}

// Embed returns the embedding of a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch returns one embedding per input text, in input order.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	req := openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	}
	// text-embedding-3 models can be shortened to the collection's vector size.
	if strings.HasPrefix(e.model, "text-embedding-3") {
		req.Dimensions = e.expectedSize
	}

	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	result := make([][]float32, len(texts))
	for i, data := range resp.Data {
		idx := data.Index
		if idx < 0 || idx >= len(texts) || result[idx] != nil {
			idx = i
		}
		if len(data.Embedding) != e.expectedSize {
			return nil, fmt.Errorf("embedding %d has size %d, expected %d", idx, len(data.Embedding), e.expectedSize)
		}
		result[idx] = data.Embedding
	}

	return result, nil
}
