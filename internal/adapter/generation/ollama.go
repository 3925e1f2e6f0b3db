// Package generation provides the optional answer-generation adapter. When
// it is absent or failing, the template synthesizer takes over.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"legal-rag/internal/domain"
)

const generationTemperature = 0.0

// answerFormat constrains the model to the structured answer shape.
var answerFormat = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"title":   map[string]interface{}{"type": "string"},
		"content": map[string]interface{}{"type": "string"},
		"summary": map[string]interface{}{"type": "string"},
	},
	"required": []string{"title", "content", "summary"},
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string                 `json:"model"`
	Messages []chatMessage          `json:"messages"`
	Stream   bool                   `json:"stream"`
	Format   map[string]interface{} `json:"format"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

type structuredAnswer struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Summary string `json:"summary"`
}

// OllamaGenerator produces structured answers through Ollama's chat
// endpoint.
type OllamaGenerator struct {
	BaseURL string
	Model   string
	Client  *http.Client
	logger  *slog.Logger
}

// NewOllamaGenerator constructs a generator for the given endpoint and
// model.
func NewOllamaGenerator(baseURL, model string, httpClient *http.Client, logger *slog.Logger) *OllamaGenerator {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	return &OllamaGenerator{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		Client:  httpClient,
		logger:  logger,
	}
}

func (g *OllamaGenerator) Generate(ctx context.Context, question string, sources []domain.RankedSource) (*domain.GeneratedAnswer, error) {
	start := time.Now()

	reqBody := chatRequest{
		Model:    g.Model,
		Messages: []chatMessage{{Role: "user", Content: buildPrompt(question, sources)}},
		Stream:   false,
		Format:   answerFormat,
		Options:  map[string]interface{}{"temperature": generationTemperature},
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/chat", g.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call generation provider: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generation provider returned status: %d", resp.StatusCode)
	}

	var respBody chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !respBody.Done || strings.TrimSpace(respBody.Message.Content) == "" {
		return nil, fmt.Errorf("generation incomplete")
	}

	var parsed structuredAnswer
	if err := json.Unmarshal([]byte(respBody.Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("malformed generation output: %w", err)
	}

	g.logger.Info("generation_completed",
		slog.String("model", g.Model),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))

	return &domain.GeneratedAnswer{
		Title:   parsed.Title,
		Content: parsed.Content,
		Summary: parsed.Summary,
	}, nil
}

func (g *OllamaGenerator) ModelName() string {
	return g.Model
}

func buildPrompt(question string, sources []domain.RankedSource) string {
	var sb strings.Builder
	sb.WriteString("Tu es un assistant juridique. Réponds à la question uniquement à partir des extraits fournis.\n\n")
	for i, src := range sources {
		sb.WriteString(fmt.Sprintf("Extrait %d (source: %s, score: %.2f):\n%s\n\n",
			i+1, src.SourceLabel, src.RawScore, domain.FormatDocumentText(src.Content)))
	}
	sb.WriteString("Question: ")
	sb.WriteString(question)
	return sb.String()
}

var _ domain.AnswerGenerator = (*OllamaGenerator)(nil)
