// Package response implements the draft/submit/version lifecycle of reader
// responses and their history trail.
package response

import (
	"context"
	"strings"
	"time"

	"github.com/mlopes/apreciador/errs"
	"github.com/mlopes/apreciador/log"
	"github.com/mlopes/apreciador/model"
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
	TextID    string
	UserID    string
	Status    string
	Order     string
	Limit     int
	Offset    int
}

func (q Query) filters() store.Filters {
	f := store.Filters{
		Order:  q.Order,
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	if f.Order == "" {
		f.Order = "updated_at.desc"
	}
	if f.Limit == 0 {
		f.Limit = 50
	}
	if q.ProjectID != "" {
		f.Eqs = append(f.Eqs, store.Eq{Column: "project_id", Value: q.ProjectID})
	}
	if q.TextID != "" {
		f.Eqs = append(f.Eqs, store.Eq{Column: "text_id", Value: q.TextID})
	}
	if q.UserID != "" {
		f.Eqs = append(f.Eqs, store.Eq{Column: "user_id", Value: q.UserID})
	}
	if q.Status != "" {
		f.Eqs = append(f.Eqs, store.Eq{Column: "status", Value: q.Status})
	}
	return f
}

func (s *Service) List(ctx context.Context, q Query) ([]model.Response, error) {
	recs, err := s.store.Get(ctx, store.TableResponses, q.filters())
	if err != nil {
		return nil, err
	}

	out := []model.Response{}
	err = store.DecodeAll(recs, &out)
	return out, err
}

// Count fetches only ids; the backend is not assumed to support count
// headers.
func (s *Service) Count(ctx context.Context, q Query) (int, error) {
	f := q.filters()
	f.Order = ""
	f.Limit = 0
	f.Offset = 0
	f.Select = "id"

	recs, err := s.store.Get(ctx, store.TableResponses, f)
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

func (s *Service) Get(ctx context.Context, id string) (model.Response, error) {
	recs, err := s.store.Get(ctx, store.TableResponses, store.ByID(id))
	if err != nil {
		return model.Response{}, err
	}
	if len(recs) == 0 {
		return model.Response{}, errs.NotFound("responses.get", "resposta não encontrada")
	}

	var r model.Response
	err = store.Decode(recs[0], &r)
	return r, err
}

// GetUserResponse looks a response up by its natural key (user, text).
func (s *Service) GetUserResponse(ctx context.Context, userID, textID string) (model.Response, error) {
	recs, err := s.store.Get(ctx, store.TableResponses, store.Filters{
		Eqs: []store.Eq{
			{Column: "user_id", Value: userID},
			{Column: "text_id", Value: textID},
		},
	})
	if err != nil {
		return model.Response{}, err
	}
	if len(recs) == 0 {
		return model.Response{}, errs.NotFound("responses.get_user_response", "resposta não encontrada")
	}

	var r model.Response
	err = store.Decode(recs[0], &r)
	return r, err
}

// DraftInput is one incremental draft save.
type DraftInput struct {
	TextID    string
	ProjectID string
	UserID    string
	UserEmail string
	UserName  string
	Data      map[string]any
}

// SaveDraft creates the user's response for a text or additively merges the
// incoming fields into it. Empty incoming values are dropped before the merge
// so a partial save never erases a previously filled field. When the response
// was already submitted, edits accumulate in draft_data instead of data.
func (s *Service) SaveDraft(ctx context.Context, in DraftInput) (model.Response, error) {
	if in.UserID == "" {
		return model.Response{}, errs.Validation("responses.save_draft", "usuário não informado")
	}
	if in.TextID == "" {
		return model.Response{}, errs.Validation("responses.save_draft", "texto não informado")
	}

	now := time.Now().UTC().Format(time.RFC3339)
	incoming := dropEmpty(in.Data)

	existing, err := s.GetUserResponse(ctx, in.UserID, in.TextID)
	switch {
	case errs.Is(err, errs.KindNotFound):
		rec := store.Record{
			"text_id":    in.TextID,
			"user_id":    in.UserID,
			"user_email": in.UserEmail,
			"user_name":  in.UserName,
			"status":     model.StatusDraft,
			"version":    1,
			"data":       incoming,
			"updated_at": now,
		}
		if in.ProjectID != "" {
			rec["project_id"] = in.ProjectID
		}

		created, err := s.store.Post(ctx, store.TableResponses, rec)
		if err != nil {
			return model.Response{}, err
		}
		var r model.Response
		err = store.Decode(created, &r)
		return r, err

	case err != nil:
		return model.Response{}, err
	}

	// Merge on top of the pending edit layer: draft_data when the response
	// was already submitted, data otherwise.
	target := existing.Data
	if existing.Status == model.StatusSubmitted {
		target = existing.DraftData
		if target == nil {
			target = existing.Data
		}
	}

	merged := map[string]any{}
	for k, v := range target {
		merged[k] = v
	}
	for k, v := range incoming {
		merged[k] = v
	}

	partial := store.Record{"updated_at": now}
	if existing.Status == model.StatusSubmitted {
		partial["draft_data"] = merged
	} else {
		partial["data"] = merged
	}

	updated, err := s.store.Patch(ctx, store.TableResponses, store.ByID(existing.ID), partial)
	if err != nil {
		return model.Response{}, err
	}
	if len(updated) == 0 {
		return model.Response{}, errs.NotFound("responses.save_draft", "resposta não encontrada")
	}

	var r model.Response
	err = store.Decode(updated[0], &r)
	return r, err
}

// Submit finalizes a response. A first submit takes version 1 without a
// history entry; a re-submit snapshots the previous data into history,
// increments the version and promotes any pending draft_data.
func (s *Service) Submit(ctx context.Context, id string) (model.Response, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return model.Response{}, err
	}

	partial := store.Record{
		"status":     model.StatusSubmitted,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	}

	version := 1
	if existing.Status == model.StatusSubmitted {
		// A failed history write must not block the submit.
		if err := s.snapshot(ctx, existing); err != nil {
			log.Errorf("responses.submit.history: %s", err)
		}

		version = existing.Version + 1
		if len(existing.DraftData) > 0 {
			partial["data"] = existing.DraftData
			partial["draft_data"] = nil
		}
	}
	partial["version"] = version

	updated, err := s.store.Patch(ctx, store.TableResponses, store.ByID(id), partial)
	if err != nil {
		return model.Response{}, err
	}
	if len(updated) == 0 {
		return model.Response{}, errs.NotFound("responses.submit", "resposta não encontrada")
	}

	var r model.Response
	err = store.Decode(updated[0], &r)
	return r, err
}

func (s *Service) snapshot(ctx context.Context, r model.Response) error {
	_, err := s.store.Post(ctx, store.TableResponseHistory, store.Record{
		"response_id":  r.ID,
		"version":      r.Version,
		"data":         r.Data,
		"submitted_at": time.Now().UTC().Format(time.RFC3339),
	})
	return err
}

// History lists a response's archived versions, newest first.
func (s *Service) History(ctx context.Context, responseID string) ([]model.HistoryEntry, error) {
	recs, err := s.store.Get(ctx, store.TableResponseHistory, store.Filters{
		Eqs:   []store.Eq{{Column: "response_id", Value: responseID}},
		Order: "version.desc",
	})
	if err != nil {
		return nil, err
	}

	out := []model.HistoryEntry{}
	err = store.DecodeAll(recs, &out)
	return out, err
}

// Archive and Restore flip the archived flag used by admin listings; both are
// idempotent and archiving never deletes data.
func (s *Service) Archive(ctx context.Context, id string) error {
	return s.setArchived(ctx, id, true)
}

func (s *Service) Restore(ctx context.Context, id string) error {
	return s.setArchived(ctx, id, false)
}

func (s *Service) setArchived(ctx context.Context, id string, archived bool) error {
	updated, err := s.store.Patch(ctx, store.TableResponses, store.ByID(id), store.Record{
		"archived": archived,
	})
	if err != nil {
		return err
	}
	if len(updated) == 0 {
		return errs.NotFound("responses.set_archived", "resposta não encontrada")
	}
	return nil
}

// dropEmpty filters out values that carry no content, so they never
// overwrite previously saved fields.
func dropEmpty(data map[string]any) map[string]any {
	out := map[string]any{}
	for k, v := range data {
		if isEmpty(v) {
			continue
		}
		out[k] = v
	}
	return out
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}
