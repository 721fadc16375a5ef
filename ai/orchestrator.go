package ai

import (
	"context"

	"github.com/mlopes/apreciador/config"
	"github.com/mlopes/apreciador/errs"
	"github.com/mlopes/apreciador/log"
	"github.com/mlopes/apreciador/model"
	"github.com/mlopes/apreciador/paragraphs"
	"github.com/mlopes/apreciador/response"
	"github.com/mlopes/apreciador/template"
	"github.com/mlopes/apreciador/texts"
)

// analysisFetchLimit caps how many submitted responses one run considers.
const analysisFetchLimit = 200

const anonymousReader = "Anônimo"

// Orchestrator runs the response-set analysis: gather and label submitted
// responses, analyze them directly or in map-reduce batches, persist the
// result.
type Orchestrator struct {
	responses *response.Service
	texts     *texts.Service
	resolver  template.Resolver
	analyses  *Service
	client    Client
	settings  config.Settings
}

func NewOrchestrator(
	responses *response.Service,
	txt *texts.Service,
	resolver template.Resolver,
	analyses *Service,
	client Client,
	settings config.Settings,
) *Orchestrator {
	return &Orchestrator{
		responses: responses,
		texts:     txt,
		resolver:  resolver,
		analyses:  analyses,
		client:    client,
		settings:  settings,
	}
}

func (o *Orchestrator) model() string {
	return o.settings.AIModel
}

func (o *Orchestrator) systemPrompt() string {
	if o.settings.AISystemPrompt != "" {
		return o.settings.AISystemPrompt
	}
	return DefaultSystemPrompt
}

func (o *Orchestrator) batchSize() int {
	if o.settings.AIBatchSize > 0 {
		return o.settings.AIBatchSize
	}
	return 30
}

// Analyze runs the full pipeline for one text. Batches are processed
// sequentially; the first batch failure aborts the run. A persistence
// failure of the final result is logged but the generated content is still
// returned.
func (o *Orchestrator) Analyze(ctx context.Context, textID string) (model.AIAnalysis, error) {
	submitted, err := o.responses.List(ctx, response.Query{
		TextID: textID,
		Status: model.StatusSubmitted,
		Limit:  analysisFetchLimit,
	})
	if err != nil {
		return model.AIAnalysis{}, err
	}
	if len(submitted) == 0 {
		return model.AIAnalysis{}, errs.NoData("ai.analyze", "nenhuma resposta submetida encontrada para este texto")
	}

	records := o.buildRecords(submitted)
	pctx := o.buildContext(ctx, textID)

	content, err := o.run(ctx, records, pctx)
	if err != nil {
		return model.AIAnalysis{}, err
	}

	analysis := model.AIAnalysis{
		TextID:  textID,
		Content: content,
		Model:   o.model(),
	}

	saved, err := o.analyses.Save(ctx, analysis)
	if err != nil {
		log.Errorf("ai.analyze.persist: text_id=%s: %s", textID, err)
		return analysis, nil
	}
	return saved, nil
}

// buildRecords labels every answer of every response using the resolved
// template of the set's project and attaches the reader's display name.
func (o *Orchestrator) buildRecords(submitted []model.Response) []map[string]any {
	labels := o.resolver.Labels(submitted[0].ProjectID)

	records := make([]map[string]any, len(submitted))
	for i, resp := range submitted {
		reader := resp.UserName
		if reader == "" {
			reader = anonymousReader
		}

		answers := map[string]any{}
		for key, value := range resp.Data {
			answers[template.Label(labels, key)] = value
		}

		records[i] = map[string]any{
			"leitor":    reader,
			"respostas": answers,
		}
	}
	return records
}

func (o *Orchestrator) buildContext(ctx context.Context, textID string) promptContext {
	pctx := promptContext{
		methodology: paragraphs.PlainText(o.settings.Methodology),
	}

	text, err := o.texts.Get(ctx, textID)
	if err != nil {
		// the original body is enrichment, not a requirement
		log.Warnf("ai.analyze.context: text_id=%s: %s", textID, err)
		return pctx
	}
	pctx.originalText = paragraphs.PlainText(text.Body)
	return pctx
}

// run decides between direct analysis and map-reduce batching.
func (o *Orchestrator) run(ctx context.Context, records []map[string]any, pctx promptContext) (string, error) {
	size := o.batchSize()
	if len(records) <= size {
		return o.client.Complete(ctx, o.model(), o.systemPrompt(), batchContent(records, pctx))
	}

	batches := chunk(records, size)
	partials := make([]string, 0, len(batches))

	for i, batch := range batches {
		batchCtx := pctx
		batchCtx.isPartial = true

		partial, err := o.client.Complete(ctx, o.model(), o.systemPrompt(), batchContent(batch, batchCtx))
		if err != nil {
			return "", errs.Batch(i+1, len(batches), err)
		}
		partials = append(partials, partial)
	}

	return o.consolidate(ctx, partials, pctx)
}

// consolidate reduces the partial batch analyses into one final result using
// the dedicated consolidation prompt.
func (o *Orchestrator) consolidate(ctx context.Context, partials []string, pctx promptContext) (string, error) {
	return o.client.Complete(ctx, o.model(), consolidationPrompt, consolidationContent(partials, pctx))
}

func chunk(records []map[string]any, size int) [][]map[string]any {
	var out [][]map[string]any
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		out = append(out, records[start:end])
	}
	return out
}
