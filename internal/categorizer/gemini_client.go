package categorizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Bublikus/groshify-sub000/internal/logging"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiClient implements AIClient on top of the Google Gemini API. The
// underlying client is created on first use.
type GeminiClient struct {
	apiKey    string
	modelName string
	logger    logging.Logger

	mu     sync.Mutex
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient creates a GeminiClient. No network call happens here.
func NewGeminiClient(apiKey, modelName string, logger logging.Logger) *GeminiClient {
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	return &GeminiClient{
		apiKey:    apiKey,
		modelName: modelName,
		logger:    logging.OrDefault(logger),
	}
}

func (c *GeminiClient) ensureModel(ctx context.Context) (*genai.GenerativeModel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.model != nil {
		return c.model, nil
	}
	if c.apiKey == "" {
		return nil, errors.New("gemini API key not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	c.client = client
	c.model = client.GenerativeModel(c.modelName)
	c.logger.Debug("Gemini client initialized",
		logging.Field{Key: logging.FieldModel, Value: c.modelName})
	return c.model, nil
}

// Complete implements AIClient.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	model, err := c.ensureModel(ctx)
	if err != nil {
		return "", err
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no response from Gemini API")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("empty response from Gemini API")
	}
	return b.String(), nil
}

// Close releases the underlying client, if one was created.
func (c *GeminiClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client, c.model = nil, nil
	return err
}
