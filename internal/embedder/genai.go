//go:build genai

package embedder

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// genaiDim is the dimensionality gemini-embedding-001 produces when
// asked for OutputDimensionality 3072; matches the vector column width
// any index built against this provider must use.
const genaiDim = 3072

// GenAIEmbedder embeds text with Google's Gemini embedding API. It is
// only compiled in with -tags genai, so the default build stays
// network-free.
type GenAIEmbedder struct {
	client *genai.Client
	model  string
}

// NewGenAIEmbedder dials the GenAI client for the given API key and
// model. model defaults to "gemini-embedding-001" when empty.
func NewGenAIEmbedder(ctx context.Context, apiKey, model string) (*GenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("embedder: genai API key is required")
	}
	if model == "" {
		model = "gemini-embedding-001"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("embedder: create genai client: %w", err)
	}
	return &GenAIEmbedder{client: client, model: model}, nil
}

func (g *GenAIEmbedder) Dim() int { return genaiDim }

func (g *GenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	dim := int32(genaiDim)
	result, err := g.client.Models.EmbedContent(ctx,
		g.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.EmbedContentConfig{OutputDimensionality: &dim},
	)
	if err != nil {
		return nil, fmt.Errorf("embedder: genai embed: %w", err)
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("embedder: genai returned no embeddings")
	}
	return result.Embeddings[0].Values, nil
}
