package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlopes/apreciador/config"
	"github.com/mlopes/apreciador/errs"
	"github.com/mlopes/apreciador/response"
	"github.com/mlopes/apreciador/store"
	"github.com/mlopes/apreciador/template"
	"github.com/mlopes/apreciador/texts"
)

type fakeCall struct {
	model        string
	systemPrompt string
	userContent  string
}

type fakeClient struct {
	calls  []fakeCall
	failAt int // 1-based call number that fails, 0 for never
}

func (f *fakeClient) Complete(_ context.Context, model, systemPrompt, userContent string) (string, error) {
	f.calls = append(f.calls, fakeCall{model, systemPrompt, userContent})
	if f.failAt == len(f.calls) {
		return "", errors.New("upstream unavailable")
	}
	return fmt.Sprintf("análise %d", len(f.calls)), nil
}

func (f *fakeClient) ListModels(context.Context) (map[string]string, error) {
	return map[string]string{"openai/gpt-4o-mini": "openai/gpt-4o-mini"}, nil
}

type fixture struct {
	mem          *store.Memory
	responses    *response.Service
	client       *fakeClient
	orchestrator *Orchestrator
}

func newFixture(t *testing.T, batchSize int) *fixture {
	t.Helper()

	settings := config.DefaultSettings()
	settings.AIBatchSize = batchSize
	settings.Methodology = "<p>Leitura em etapas.</p>"

	mem := store.NewMemory()
	responseSvc := response.NewService(mem)
	textSvc := texts.NewService(mem)
	client := &fakeClient{}

	_, err := mem.Post(context.Background(), store.TableTexts, store.Record{
		"id":    "t-1",
		"title": "Capítulo 1",
		"body":  "<p>Corpo do texto original.</p>",
	})
	require.NoError(t, err)

	return &fixture{
		mem:       mem,
		responses: responseSvc,
		client:    client,
		orchestrator: NewOrchestrator(
			responseSvc,
			textSvc,
			template.NewResolver(settings),
			NewService(mem),
			client,
			settings,
		),
	}
}

func (fx *fixture) submit(t *testing.T, userID, userName, theme string) {
	t.Helper()

	created, err := fx.responses.SaveDraft(context.Background(), response.DraftInput{
		TextID:    "t-1",
		ProjectID: "proj-1",
		UserID:    userID,
		UserName:  userName,
		Data:      map[string]any{"tema_central": theme},
	})
	require.NoError(t, err)

	_, err = fx.responses.Submit(context.Background(), created.ID)
	require.NoError(t, err)
}

func TestAnalyzeNoSubmittedResponses(t *testing.T) {
	fx := newFixture(t, 30)

	_, err := fx.orchestrator.Analyze(context.Background(), "t-1")
	assert.True(t, errs.Is(err, errs.KindNoData))
	assert.Empty(t, fx.client.calls)
}

func TestAnalyzeIgnoresDrafts(t *testing.T) {
	fx := newFixture(t, 30)

	_, err := fx.responses.SaveDraft(context.Background(), response.DraftInput{
		TextID: "t-1",
		UserID: "u-1",
		Data:   map[string]any{"tema_central": "rascunho"},
	})
	require.NoError(t, err)

	_, err = fx.orchestrator.Analyze(context.Background(), "t-1")
	assert.True(t, errs.Is(err, errs.KindNoData))
}

func TestAnalyzeSingleBatch(t *testing.T) {
	fx := newFixture(t, 30)
	fx.submit(t, "u-1", "Ana", "esperança")
	fx.submit(t, "u-2", "", "caridade")

	analysis, err := fx.orchestrator.Analyze(context.Background(), "t-1")
	require.NoError(t, err)

	require.Len(t, fx.client.calls, 1)
	call := fx.client.calls[0]
	assert.Equal(t, "openai/gpt-4o-mini", call.model)
	assert.Equal(t, DefaultSystemPrompt, call.systemPrompt)

	// readers and labeled answers reach the prompt, with markup stripped context
	assert.Contains(t, call.userContent, "Ana")
	assert.Contains(t, call.userContent, "Anônimo")
	assert.Contains(t, call.userContent, "Tema Central")
	assert.Contains(t, call.userContent, "esperança")
	assert.Contains(t, call.userContent, "Leitura em etapas.")
	assert.Contains(t, call.userContent, "Corpo do texto original.")
	assert.NotContains(t, call.userContent, "<p>")

	assert.Equal(t, "análise 1", analysis.Content)
	assert.Equal(t, "t-1", analysis.TextID)
	assert.Equal(t, "openai/gpt-4o-mini", analysis.Model)
	assert.NotEmpty(t, analysis.ID)
}

func TestAnalyzeMapReduce(t *testing.T) {
	fx := newFixture(t, 2)
	for i := 1; i <= 5; i++ {
		fx.submit(t, fmt.Sprintf("u-%d", i), fmt.Sprintf("Leitor %d", i), "tema")
	}

	analysis, err := fx.orchestrator.Analyze(context.Background(), "t-1")
	require.NoError(t, err)

	// ceil(5/2) = 3 batches plus the consolidation call
	require.Len(t, fx.client.calls, 4)

	for _, call := range fx.client.calls[:3] {
		assert.Equal(t, DefaultSystemPrompt, call.systemPrompt)
		assert.Contains(t, call.userContent, "análise parcial")
	}

	final := fx.client.calls[3]
	assert.NotEqual(t, DefaultSystemPrompt, final.systemPrompt)
	assert.Contains(t, final.userContent, "### LOTE 1:")
	assert.Contains(t, final.userContent, "### LOTE 3:")
	assert.Contains(t, final.userContent, "análise 2")

	assert.Equal(t, "análise 4", analysis.Content)
}

func TestAnalyzeBatchFailureAborts(t *testing.T) {
	fx := newFixture(t, 2)
	for i := 1; i <= 5; i++ {
		fx.submit(t, fmt.Sprintf("u-%d", i), "", "tema")
	}
	fx.client.failAt = 2

	_, err := fx.orchestrator.Analyze(context.Background(), "t-1")
	require.Error(t, err)

	assert.True(t, errs.Is(err, errs.KindBatch))
	var batchErr *errs.Error
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 2, batchErr.BatchIndex)
	assert.Equal(t, 3, batchErr.BatchTotal)

	// no further batches, no consolidation
	assert.Len(t, fx.client.calls, 2)
}

func TestAnalyzePersistsResult(t *testing.T) {
	fx := newFixture(t, 30)
	fx.submit(t, "u-1", "Ana", "esperança")

	analysis, err := fx.orchestrator.Analyze(context.Background(), "t-1")
	require.NoError(t, err)

	list, err := NewService(fx.mem).ListByText(context.Background(), "t-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, analysis.ID, list[0].ID)
	assert.Equal(t, "análise 1", list[0].Content)
}

func TestAnalyzeMissingTextStillRuns(t *testing.T) {
	fx := newFixture(t, 30)
	fx.submit(t, "u-1", "Ana", "esperança")

	// the original body is enrichment only, its absence must not fail the run
	require.NoError(t, fx.mem.Delete(context.Background(), store.TableTexts, store.ByID("t-1")))

	analysis, err := fx.orchestrator.Analyze(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Equal(t, "análise 1", analysis.Content)

	require.Len(t, fx.client.calls, 1)
	assert.NotContains(t, fx.client.calls[0].userContent, "TEXTO ORIGINAL")
}

func TestCustomSystemPromptOverride(t *testing.T) {
	fx := newFixture(t, 30)
	fx.orchestrator.settings.AISystemPrompt = "Prompt customizado."
	fx.submit(t, "u-1", "Ana", "esperança")

	_, err := fx.orchestrator.Analyze(context.Background(), "t-1")
	require.NoError(t, err)

	require.Len(t, fx.client.calls, 1)
	assert.Equal(t, "Prompt customizado.", fx.client.calls[0].systemPrompt)
}
