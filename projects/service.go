// Package projects manages the project records that group texts and carry
// template assignments.
package projects

import (
	"context"
	"sync"
	"time"

	"github.com/mlopes/apreciador/errs"
	"github.com/mlopes/apreciador/model"
	"github.com/mlopes/apreciador/store"
)

const optionsCacheTTL = time.Hour

type Service struct {
	store store.Store

	mu        sync.Mutex
	options   map[string]string
	optionsAt time.Time
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

type Query struct {
	Status string
	Order  string
	Limit  int
}

func (s *Service) All(ctx context.Context, q Query) ([]model.Project, error) {
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
	if q.Status != "" {
		f.Eqs = append(f.Eqs, store.Eq{Column: "status", Value: q.Status})
	}

	recs, err := s.store.Get(ctx, store.TableProjects, f)
	if err != nil {
		return nil, err
	}

	out := []model.Project{}
	err = store.DecodeAll(recs, &out)
	return out, err
}

func (s *Service) Get(ctx context.Context, id string) (model.Project, error) {
	recs, err := s.store.Get(ctx, store.TableProjects, store.ByID(id))
	if err != nil {
		return model.Project{}, err
	}
	if len(recs) == 0 {
		return model.Project{}, errs.NotFound("projects.get", "projeto não encontrado")
	}

	var p model.Project
	err = store.Decode(recs[0], &p)
	return p, err
}

func (s *Service) Create(ctx context.Context, p model.Project) (model.Project, error) {
	if p.Name == "" {
		return model.Project{}, errs.Validation("projects.create", "nome do projeto é obrigatório")
	}
	if p.Status == "" {
		p.Status = model.StatusActive
	}
	if !validStatus(p.Status) {
		return model.Project{}, errs.Validation("projects.create", "status inválido: "+p.Status)
	}

	rec, err := store.Encode(p)
	if err != nil {
		return model.Project{}, err
	}
	// the store mints id and created_at
	delete(rec, "id")
	delete(rec, "created_at")
	delete(rec, "updated_at")

	created, err := s.store.Post(ctx, store.TableProjects, rec)
	if err != nil {
		return model.Project{}, err
	}
	s.invalidateOptions()

	var out model.Project
	err = store.Decode(created, &out)
	return out, err
}

func (s *Service) Update(ctx context.Context, id string, p model.Project) (model.Project, error) {
	if p.Status != "" && !validStatus(p.Status) {
		return model.Project{}, errs.Validation("projects.update", "status inválido: "+p.Status)
	}

	partial := store.Record{"updated_at": time.Now().UTC().Format(time.RFC3339)}
	if p.Name != "" {
		partial["name"] = p.Name
	}
	if p.Description != "" {
		partial["description"] = p.Description
	}
	if p.Status != "" {
		partial["status"] = p.Status
	}

	updated, err := s.store.Patch(ctx, store.TableProjects, store.ByID(id), partial)
	if err != nil {
		return model.Project{}, err
	}
	if len(updated) == 0 {
		return model.Project{}, errs.NotFound("projects.update", "projeto não encontrado")
	}
	s.invalidateOptions()

	var out model.Project
	err = store.Decode(updated[0], &out)
	return out, err
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, store.TableProjects, store.ByID(id))
	if err == nil {
		s.invalidateOptions()
	}
	return err
}

// Archive and Restore flip the project status; both are idempotent.
func (s *Service) Archive(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, model.StatusArchived)
}

func (s *Service) Restore(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, model.StatusActive)
}

func (s *Service) setStatus(ctx context.Context, id, status string) error {
	updated, err := s.store.Patch(ctx, store.TableProjects, store.ByID(id), store.Record{
		"status":     status,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	if len(updated) == 0 {
		return errs.NotFound("projects.set_status", "projeto não encontrado")
	}
	s.invalidateOptions()
	return nil
}

// Options returns id -> name for active projects. Results are cached for an
// hour and invalidated by any write through this service.
func (s *Service) Options(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	if s.options != nil && time.Since(s.optionsAt) < optionsCacheTTL {
		cached := s.options
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	active, err := s.All(ctx, Query{Status: model.StatusActive})
	if err != nil {
		return map[string]string{}, err
	}

	options := map[string]string{}
	for _, p := range active {
		options[p.ID] = p.Name
	}

	s.mu.Lock()
	s.options = options
	s.optionsAt = time.Now()
	s.mu.Unlock()
	return options, nil
}

func (s *Service) invalidateOptions() {
	s.mu.Lock()
	s.options = nil
	s.mu.Unlock()
}

func validStatus(status string) bool {
	return status == model.StatusActive || status == model.StatusArchived
}
