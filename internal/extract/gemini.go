package extract

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiGenerator calls the Gemini API. When multiple provider keys are
// configured, attempts rotate round-robin across per-key clients so a
// single failing key cannot consume every retry.
type GeminiGenerator struct {
	clients []*genai.Client
	models  []*genai.GenerativeModel
	mutex   sync.Mutex
	next    int
}

// NewGeminiGenerator creates one client per provider key.
func NewGeminiGenerator(ctx context.Context, apiKeys []string, modelName string) (*GeminiGenerator, error) {
	if len(apiKeys) == 0 {
		return nil, fmt.Errorf("no gemini api keys configured")
	}

	g := &GeminiGenerator{}
	for _, key := range apiKeys {
		client, err := genai.NewClient(ctx, option.WithAPIKey(key))
		if err != nil {
			g.Close()
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		g.clients = append(g.clients, client)
		g.models = append(g.models, client.GenerativeModel(modelName))
	}
	return g, nil
}

// Generate sends the instruction and document blob to the model and
// returns the concatenated text parts of the first candidate.
func (g *GeminiGenerator) Generate(ctx context.Context, instruction string, data []byte, mimeType string) (string, error) {
	model := g.nextModel()

	resp, err := model.GenerateContent(ctx,
		genai.Text(instruction),
		genai.Blob{MIMEType: mimeType, Data: data},
	)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	return textFromResponse(resp)
}

// textFromResponse concatenates the text parts of the first candidate.
func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("gemini returned no text parts")
	}
	return sb.String(), nil
}

func (g *GeminiGenerator) nextModel() *genai.GenerativeModel {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	model := g.models[g.next]
	g.next = (g.next + 1) % len(g.models)
	return model
}

// Close releases all underlying clients.
func (g *GeminiGenerator) Close() {
	for _, client := range g.clients {
		client.Close()
	}
}
