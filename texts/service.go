// Package texts manages the content units eligible for reader responses,
// synced from the host CMS, and their cached paragraph extraction.
package texts

import (
	"context"

	"github.com/mlopes/apreciador/errs"
	"github.com/mlopes/apreciador/model"
	"github.com/mlopes/apreciador/paragraphs"
	"github.com/mlopes/apreciador/store"
)

type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

type Query struct {
	ProjectID string
	Order     string
	Limit     int
}

func (s *Service) All(ctx context.Context, q Query) ([]model.Text, error) {
	f := store.Filters{
		Order: q.Order,
		Limit: q.Limit,
	}
	if f.Order == "" {
		f.Order = "created_at.desc"
	}
	if f.Limit == 0 {
		f.Limit = 100
	}
	if q.ProjectID != "" {
		f.Eqs = append(f.Eqs, store.Eq{Column: "project_id", Value: q.ProjectID})
	}

	recs, err := s.store.Get(ctx, store.TableTexts, f)
	if err != nil {
		return nil, err
	}

	out := []model.Text{}
	err = store.DecodeAll(recs, &out)
	return out, err
}

func (s *Service) Get(ctx context.Context, id string) (model.Text, error) {
	recs, err := s.store.Get(ctx, store.TableTexts, store.ByID(id))
	if err != nil {
		return model.Text{}, err
	}
	if len(recs) == 0 {
		return model.Text{}, errs.NotFound("texts.get", "texto não encontrado")
	}

	var t model.Text
	err = store.Decode(recs[0], &t)
	return t, err
}

func (s *Service) GetByContentRef(ctx context.Context, ref string) (model.Text, error) {
	recs, err := s.store.Get(ctx, store.TableTexts, store.Filters{
		Eqs: []store.Eq{{Column: "content_ref", Value: ref}},
	})
	if err != nil {
		return model.Text{}, err
	}
	if len(recs) == 0 {
		return model.Text{}, errs.NotFound("texts.get_by_ref", "texto não encontrado")
	}

	var t model.Text
	err = store.Decode(recs[0], &t)
	return t, err
}

// SyncInput carries the content-unit fields pushed by the host CMS on save.
type SyncInput struct {
	ContentRef string
	Title      string
	Body       string
	ProjectID  string
}

// Sync upserts a text keyed by its external content reference. The paragraph
// cache is recomputed on every sync while paragraph questions are enabled.
func (s *Service) Sync(ctx context.Context, in SyncInput) (model.Text, error) {
	if in.ContentRef == "" {
		return model.Text{}, errs.Validation("texts.sync", "referência de conteúdo é obrigatória")
	}

	existing, err := s.GetByContentRef(ctx, in.ContentRef)
	switch {
	case errs.Is(err, errs.KindNotFound):
		rec := store.Record{
			"content_ref": in.ContentRef,
			"title":       in.Title,
			"body":        in.Body,
			"status":      model.StatusActive,
		}
		if in.ProjectID != "" {
			rec["project_id"] = in.ProjectID
		}

		created, err := s.store.Post(ctx, store.TableTexts, rec)
		if err != nil {
			return model.Text{}, err
		}
		var t model.Text
		err = store.Decode(created, &t)
		return t, err

	case err != nil:
		return model.Text{}, err
	}

	partial := store.Record{
		"title": in.Title,
		"body":  in.Body,
	}
	if in.ProjectID != "" {
		partial["project_id"] = in.ProjectID
	} else {
		partial["project_id"] = nil
	}
	if existing.ParagraphQuestions {
		partial["paragraphs"] = paragraphs.Extract(in.Body)
	}

	updated, err := s.store.Patch(ctx, store.TableTexts, store.ByID(existing.ID), partial)
	if err != nil {
		return model.Text{}, err
	}
	if len(updated) == 0 {
		return model.Text{}, errs.NotFound("texts.sync", "texto não encontrado")
	}

	var t model.Text
	err = store.Decode(updated[0], &t)
	return t, err
}

func (s *Service) DeleteByContentRef(ctx context.Context, ref string) error {
	return s.store.Delete(ctx, store.TableTexts, store.Filters{
		Eqs: []store.Eq{{Column: "content_ref", Value: ref}},
	})
}

// SetParagraphQuestions toggles the per-paragraph question step for a text.
// Enabling recomputes the paragraph cache from the stored body; disabling
// deletes the cache entirely.
func (s *Service) SetParagraphQuestions(ctx context.Context, id string, enabled bool) (model.Text, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return model.Text{}, err
	}

	partial := store.Record{"paragraph_questions": enabled}
	if enabled {
		partial["paragraphs"] = paragraphs.Extract(t.Body)
	} else {
		partial["paragraphs"] = nil
	}

	updated, err := s.store.Patch(ctx, store.TableTexts, store.ByID(id), partial)
	if err != nil {
		return model.Text{}, err
	}
	if len(updated) == 0 {
		return model.Text{}, errs.NotFound("texts.paragraph_questions", "texto não encontrado")
	}

	var out model.Text
	err = store.Decode(updated[0], &out)
	return out, err
}

func (s *Service) CountResponses(ctx context.Context, textID string) (int, error) {
	recs, err := s.store.Get(ctx, store.TableResponses, store.Filters{
		Eqs:    []store.Eq{{Column: "text_id", Value: textID}},
		Select: "id",
	})
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

// Archive and Restore flip the text status; both are idempotent.
func (s *Service) Archive(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, model.StatusArchived)
}

func (s *Service) Restore(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, model.StatusActive)
}

func (s *Service) setStatus(ctx context.Context, id, status string) error {
	updated, err := s.store.Patch(ctx, store.TableTexts, store.ByID(id), store.Record{"status": status})
	if err != nil {
		return err
	}
	if len(updated) == 0 {
		return errs.NotFound("texts.set_status", "texto não encontrado")
	}
	return nil
}
