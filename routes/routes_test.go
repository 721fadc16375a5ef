package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlopes/apreciador/ai"
	"github.com/mlopes/apreciador/app"
	"github.com/mlopes/apreciador/config"
	"github.com/mlopes/apreciador/httpx"
	"github.com/mlopes/apreciador/model"
	"github.com/mlopes/apreciador/projects"
	"github.com/mlopes/apreciador/response"
	"github.com/mlopes/apreciador/store"
	"github.com/mlopes/apreciador/template"
	"github.com/mlopes/apreciador/texts"
)

func newTestHandler(t *testing.T) (http.Handler, *texts.Service) {
	t.Helper()

	cfg := config.Config{TokenSecret: "test-secret-0123456789ab", TokenTTL: time.Hour}
	settings := config.DefaultSettings()

	mem := store.NewMemory()
	textSvc := texts.NewService(mem)
	responseSvc := response.NewService(mem)
	analysisSvc := ai.NewService(mem)
	resolver := template.NewResolver(settings)

	a := app.App{
		Store:    mem,
		Config:   cfg,
		Settings: settings,

		Resolver:  resolver,
		Projects:  projects.NewService(mem),
		Texts:     textSvc,
		Responses: responseSvc,
		Analyses:  analysisSvc,
		AI:        ai.NewOrchestrator(responseSvc, textSvc, resolver, analysisSvc, ai.NewOpenRouter(""), settings),
		LLM:       ai.NewOpenRouter(""),

		BearerServer: oauth.NewBearerServer(cfg.TokenSecret, cfg.TokenTTL, httpx.CredentialsVerifier(cfg), nil),
	}
	return Wire(a), textSvc
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec, out
}

func TestReaderFlow(t *testing.T) {
	h, textSvc := newTestHandler(t)

	text, err := textSvc.Sync(context.Background(), texts.SyncInput{
		ContentRef: "post-42",
		Title:      "Capítulo 1",
		Body:       "<p>Um parágrafo com conteúdo bastante.</p>",
	})
	require.NoError(t, err)

	// the form resolves to the six legacy steps
	rec, body := doJSON(t, h, http.MethodGet, "/api/texts/"+text.ID+"/steps", "")
	require.Equal(t, http.StatusOK, rec.Code)
	steps := body["steps"].([]any)
	assert.Len(t, steps, 6)
	assert.Equal(t, true, body["progressive"])

	// incremental draft saves merge
	rec, body = doJSON(t, h, http.MethodPost, "/api/texts/"+text.ID+"/draft",
		`{"user_id":"u-1","user_name":"Ana","data":{"tema_central":"esperança"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	responseID := body["id"].(string)

	rec, body = doJSON(t, h, http.MethodPost, "/api/texts/"+text.ID+"/draft",
		`{"user_id":"u-1","data":{"duvidas":"uma dúvida"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "esperança", data["tema_central"])
	assert.Equal(t, "uma dúvida", data["duvidas"])

	// submit finalizes at version 1
	rec, body = doJSON(t, h, http.MethodPost, "/api/responses/"+responseID+"/submit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.StatusSubmitted, body["status"])
	assert.Equal(t, float64(1), body["version"])

	// the reader can fetch their own response back
	rec, body = doJSON(t, h, http.MethodGet, "/api/texts/"+text.ID+"/response?user_id=u-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, responseID, body["id"])
}

func TestStepsUnknownText(t *testing.T) {
	h, _ := newTestHandler(t)

	rec, _ := doJSON(t, h, http.MethodGet, "/api/texts/missing/steps", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserResponseRequiresUserID(t *testing.T) {
	h, textSvc := newTestHandler(t)

	text, err := textSvc.Sync(context.Background(), texts.SyncInput{ContentRef: "post-1", Title: "t", Body: "x"})
	require.NoError(t, err)

	rec, _ := doJSON(t, h, http.MethodGet, "/api/texts/"+text.ID+"/response", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	h, _ := newTestHandler(t)

	rec, _ := doJSON(t, h, http.MethodGet, "/api/admin/responses", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestParagraphStepAppendedWhenEnabled(t *testing.T) {
	h, textSvc := newTestHandler(t)

	text, err := textSvc.Sync(context.Background(), texts.SyncInput{
		ContentRef: "post-42",
		Title:      "Capítulo 1",
		Body:       "<p>Um parágrafo com conteúdo bastante.</p>",
	})
	require.NoError(t, err)
	_, err = textSvc.SetParagraphQuestions(context.Background(), text.ID, true)
	require.NoError(t, err)

	rec, body := doJSON(t, h, http.MethodGet, "/api/texts/"+text.ID+"/steps", "")
	require.Equal(t, http.StatusOK, rec.Code)

	steps := body["steps"].([]any)
	require.Len(t, steps, 7)
	last := steps[6].(map[string]any)
	assert.Equal(t, template.ParagraphStepKey, last["key"])
	assert.Equal(t, float64(7), last["number"])
	assert.Equal(t, true, last["conditional"])

	paragraphs := body["paragraphs"].([]any)
	require.Len(t, paragraphs, 1)
}
