package ai

import (
	"context"
	"time"

	"github.com/mlopes/apreciador/errs"
	"github.com/mlopes/apreciador/model"
	"github.com/mlopes/apreciador/store"
)

// Service persists the analysis runs.
type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

func (s *Service) Save(ctx context.Context, a model.AIAnalysis) (model.AIAnalysis, error) {
	created, err := s.store.Post(ctx, store.TableAIAnalyses, store.Record{
		"text_id":    a.TextID,
		"content":    a.Content,
		"model":      a.Model,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return model.AIAnalysis{}, err
	}

	var out model.AIAnalysis
	err = store.Decode(created, &out)
	return out, err
}

func (s *Service) Get(ctx context.Context, id string) (model.AIAnalysis, error) {
	recs, err := s.store.Get(ctx, store.TableAIAnalyses, store.ByID(id))
	if err != nil {
		return model.AIAnalysis{}, err
	}
	if len(recs) == 0 {
		return model.AIAnalysis{}, errs.NotFound("analyses.get", "análise não encontrada")
	}

	var a model.AIAnalysis
	err = store.Decode(recs[0], &a)
	return a, err
}

func (s *Service) ListByText(ctx context.Context, textID string) ([]model.AIAnalysis, error) {
	recs, err := s.store.Get(ctx, store.TableAIAnalyses, store.Filters{
		Eqs:   []store.Eq{{Column: "text_id", Value: textID}},
		Order: "created_at.desc",
	})
	if err != nil {
		return nil, err
	}

	out := []model.AIAnalysis{}
	err = store.DecodeAll(recs, &out)
	return out, err
}

// Update overwrites an analysis content in place; edits are not versioned.
func (s *Service) Update(ctx context.Context, id, content string) (model.AIAnalysis, error) {
	updated, err := s.store.Patch(ctx, store.TableAIAnalyses, store.ByID(id), store.Record{
		"content": content,
	})
	if err != nil {
		return model.AIAnalysis{}, err
	}
	if len(updated) == 0 {
		return model.AIAnalysis{}, errs.NotFound("analyses.update", "análise não encontrada")
	}

	var a model.AIAnalysis
	err = store.Decode(updated[0], &a)
	return a, err
}
