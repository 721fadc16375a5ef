package store

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mlopes/apreciador/errs"
	"github.com/mlopes/apreciador/log"
)

// PostgREST talks to a remote PostgREST-compatible backend (e.g. Supabase).
// The service key is preferred when configured; row-level security is the
// backend's concern, this process acts as a trusted server-side client.
type PostgREST struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewPostgREST(baseURL, anonKey, serviceKey string) *PostgREST {
	key := serviceKey
	if key == "" {
		key = anonKey
	}
	return &PostgREST{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  key,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *PostgREST) url(table string, f Filters) string {
	u := p.baseURL + "/rest/v1/" + table
	if q := f.Encode().Encode(); q != "" {
		u += "?" + q
	}
	return u
}

func (p *PostgREST) do(ctx context.Context, method, url string, body any) ([]Record, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, errs.Store("store.encode_body", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, errs.Store("store.new_request", err)
	}
	req.Header.Set("apikey", p.apiKey)
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errs.Store("store.request", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Store("store.read_body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := backendMessage(raw)
		log.Errorf("store.postgrest: %s %s -> %d: %s", method, url, resp.StatusCode, msg)
		return nil, errs.StoreMsg("store.status", msg)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	// PostgREST returns an array for collection routes and an object for
	// single-object responses; normalize to a list.
	var recs []Record
	if err := json.Unmarshal(raw, &recs); err != nil {
		var one Record
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, errs.Store("store.decode_body", err)
		}
		recs = []Record{one}
	}
	return recs, nil
}

func (p *PostgREST) Get(ctx context.Context, table string, f Filters) ([]Record, error) {
	return p.do(ctx, http.MethodGet, p.url(table, f), nil)
}

func (p *PostgREST) Post(ctx context.Context, table string, rec Record) (Record, error) {
	recs, err := p.do(ctx, http.MethodPost, p.url(table, Filters{}), rec)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return rec, nil
	}
	return recs[0], nil
}

func (p *PostgREST) Patch(ctx context.Context, table string, f Filters, partial Record) ([]Record, error) {
	return p.do(ctx, http.MethodPatch, p.url(table, f), partial)
}

func (p *PostgREST) Delete(ctx context.Context, table string, f Filters) error {
	_, err := p.do(ctx, http.MethodDelete, p.url(table, f), nil)
	return err
}

func backendMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}
	if len(raw) > 0 {
		return string(raw)
	}
	return "backend store returned an error"
}
