package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mlopes/apreciador/app"
	"github.com/mlopes/apreciador/httpx"
	"github.com/mlopes/apreciador/log"
	"github.com/mlopes/apreciador/response"
	"github.com/mlopes/apreciador/template"
)

// GetSteps resolves the form for a text: the project's template steps (or the
// legacy fallback), plus the conditional paragraph step when enabled.
func GetSteps(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		textID := chi.URLParam(r, "id")

		text, err := app.Texts.Get(r.Context(), textID)
		if err != nil {
			httpx.WriteError(w, "texts.get_steps", err)
			return
		}

		steps := app.Resolver.Steps(text.ProjectID)
		if text.ParagraphQuestions {
			step := template.ParagraphStep()
			step.Number = len(steps) + 1
			steps = append(steps, step)
		}

		render.JSON(w, r, map[string]any{
			"steps":             steps,
			"paragraphs":        text.Paragraphs,
			"progressive":       app.Settings.ProgressiveForm,
			"autosave_interval": app.Settings.AutosaveInterval,
		})
	}
}

type draftRequest struct {
	UserID    string         `json:"user_id"`
	UserEmail string         `json:"user_email"`
	UserName  string         `json:"user_name"`
	Data      map[string]any `json:"data"`
}

// SaveDraft creates or incrementally merges the caller's draft for a text.
// The host CMS authenticates the reader and forwards the identity fields.
func SaveDraft(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		textID := chi.URLParam(r, "id")

		req := draftRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		text, err := app.Texts.Get(r.Context(), textID)
		if err != nil {
			httpx.WriteError(w, "responses.save_draft.text", err)
			return
		}

		saved, err := app.Responses.SaveDraft(r.Context(), response.DraftInput{
			TextID:    text.ID,
			ProjectID: text.ProjectID,
			UserID:    req.UserID,
			UserEmail: req.UserEmail,
			UserName:  req.UserName,
			Data:      req.Data,
		})
		if err != nil {
			httpx.WriteError(w, "responses.save_draft", err)
			return
		}

		render.JSON(w, r, saved)
	}
}

// GetUserResponse returns the caller's own response for a text.
func GetUserResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		textID := chi.URLParam(r, "id")
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_query_param.user_id")
			return
		}

		resp, err := app.Responses.GetUserResponse(r.Context(), userID, textID)
		if err != nil {
			httpx.WriteError(w, "responses.get_user_response", err)
			return
		}

		render.JSON(w, r, resp)
	}
}

// SubmitResponse finalizes a response, versioning any previous submission.
func SubmitResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responseID := chi.URLParam(r, "id")

		submitted, err := app.Responses.Submit(r.Context(), responseID)
		if err != nil {
			httpx.WriteError(w, "responses.submit", err)
			return
		}

		render.JSON(w, r, submitted)
	}
}
