package ai

import (
	"context"
	"sort"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mlopes/apreciador/errs"
	"github.com/mlopes/apreciador/log"
)

// Client is the LLM adapter consumed by the orchestrator. Implementations
// must be safe for sequential reuse across batches.
type Client interface {
	Complete(ctx context.Context, model, systemPrompt, userContent string) (string, error)
	ListModels(ctx context.Context) (map[string]string, error)
}

const (
	openRouterBaseURL = "https://openrouter.ai/api/v1"

	completeTimeout   = 90 * time.Second
	listModelsTimeout = 15 * time.Second
	modelsCacheTTL    = 24 * time.Hour
)

// OpenRouter adapts the OpenAI-compatible OpenRouter chat API.
type OpenRouter struct {
	api    *openai.Client
	apiKey string

	mu        sync.Mutex
	models    map[string]string
	fetchedAt time.Time
}

func NewOpenRouter(apiKey string) *OpenRouter {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = openRouterBaseURL
	return &OpenRouter{
		api:    openai.NewClientWithConfig(cfg),
		apiKey: apiKey,
	}
}

func (c *OpenRouter) Complete(ctx context.Context, model, systemPrompt, userContent string) (string, error) {
	if c.apiKey == "" {
		return "", errs.LLM("ai.missing_key", "chave da API do OpenRouter não configurada", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, completeTimeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userContent},
		},
	})
	if err != nil {
		return "", errs.LLM("ai.complete", "falha na chamada ao OpenRouter", err)
	}
	if len(resp.Choices) == 0 {
		return "", errs.LLM("ai.complete", "OpenRouter não retornou conteúdo", nil)
	}
	return resp.Choices[0].Message.Content, nil
}

// ListModels returns id -> label for the available models, cached in process
// for a day.
func (c *OpenRouter) ListModels(ctx context.Context) (map[string]string, error) {
	c.mu.Lock()
	if c.models != nil && time.Since(c.fetchedAt) < modelsCacheTTL {
		cached := c.models
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, listModelsTimeout)
	defer cancel()

	list, err := c.api.ListModels(ctx)
	if err != nil {
		return nil, errs.LLM("ai.list_models", "erro ao buscar modelos do OpenRouter", err)
	}

	models := map[string]string{}
	for _, m := range list.Models {
		models[m.ID] = m.ID
	}
	log.Debugf("ai.list_models: %d models cached", len(models))

	c.mu.Lock()
	c.models = models
	c.fetchedAt = time.Now()
	c.mu.Unlock()
	return models, nil
}

// SortedModelIDs is a display helper for the admin model picker.
func SortedModelIDs(models map[string]string) []string {
	ids := make([]string, 0, len(models))
	for id := range models {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
