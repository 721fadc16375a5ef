package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mlopes/apreciador/ai"
	"github.com/mlopes/apreciador/app"
	"github.com/mlopes/apreciador/httpx"
	"github.com/mlopes/apreciador/log"
	"github.com/mlopes/apreciador/model"
	"github.com/mlopes/apreciador/projects"
	"github.com/mlopes/apreciador/response"
	"github.com/mlopes/apreciador/texts"
)

func intParam(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}

func CreateProject(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project := model.Project{}
		err := render.DecodeJSON(r.Body, &project)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		created, err := app.Projects.Create(r.Context(), project)
		if err != nil {
			httpx.WriteError(w, "projects.create", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, created)
	}
}

func ListProjects(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := projects.Query{
			Status: r.URL.Query().Get("status"),
			Order:  r.URL.Query().Get("order"),
			Limit:  intParam(r, "limit"),
		}

		list, err := app.Projects.All(r.Context(), q)
		if err != nil {
			httpx.WriteError(w, "projects.list", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"projects": list,
		})
	}
}

func ProjectOptions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		options, err := app.Projects.Options(r.Context())
		if err != nil {
			httpx.WriteError(w, "projects.options", err)
			return
		}

		render.JSON(w, r, options)
	}
}

func GetProject(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := app.Projects.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.WriteError(w, "projects.get", err)
			return
		}

		render.JSON(w, r, project)
	}
}

func UpdateProject(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project := model.Project{}
		err := render.DecodeJSON(r.Body, &project)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		updated, err := app.Projects.Update(r.Context(), chi.URLParam(r, "id"), project)
		if err != nil {
			httpx.WriteError(w, "projects.update", err)
			return
		}

		render.JSON(w, r, updated)
	}
}

func DeleteProject(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := app.Projects.Delete(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.WriteError(w, "projects.delete", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func ArchiveProject(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := app.Projects.Archive(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.WriteError(w, "projects.archive", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func RestoreProject(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := app.Projects.Restore(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.WriteError(w, "projects.restore", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func ListTexts(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := texts.Query{
			ProjectID: r.URL.Query().Get("project_id"),
			Order:     r.URL.Query().Get("order"),
			Limit:     intParam(r, "limit"),
		}

		list, err := app.Texts.All(r.Context(), q)
		if err != nil {
			httpx.WriteError(w, "texts.list", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"texts": list,
		})
	}
}

type syncTextRequest struct {
	ContentRef string `json:"content_ref"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	ProjectID  string `json:"project_id"`
}

// SyncText upserts a text pushed by the host CMS, keyed by content_ref.
func SyncText(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := syncTextRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		text, err := app.Texts.Sync(r.Context(), texts.SyncInput{
			ContentRef: req.ContentRef,
			Title:      req.Title,
			Body:       req.Body,
			ProjectID:  req.ProjectID,
		})
		if err != nil {
			httpx.WriteError(w, "texts.sync", err)
			return
		}

		render.JSON(w, r, text)
	}
}

func DeleteText(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := r.URL.Query().Get("content_ref")
		if ref == "" {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_query_param.content_ref")
			return
		}

		err := app.Texts.DeleteByContentRef(r.Context(), ref)
		if err != nil {
			httpx.WriteError(w, "texts.delete", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

type paragraphQuestionsRequest struct {
	Enabled bool `json:"enabled"`
}

func SetParagraphQuestions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := paragraphQuestionsRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		text, err := app.Texts.SetParagraphQuestions(r.Context(), chi.URLParam(r, "id"), req.Enabled)
		if err != nil {
			httpx.WriteError(w, "texts.set_paragraph_questions", err)
			return
		}

		render.JSON(w, r, text)
	}
}

func ArchiveText(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := app.Texts.Archive(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.WriteError(w, "texts.archive", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func RestoreText(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := app.Texts.Restore(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.WriteError(w, "texts.restore", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func responseQuery(r *http.Request) response.Query {
	return response.Query{
		ProjectID: r.URL.Query().Get("project_id"),
		TextID:    r.URL.Query().Get("text_id"),
		UserID:    r.URL.Query().Get("user_id"),
		Status:    r.URL.Query().Get("status"),
		Order:     r.URL.Query().Get("order"),
		Limit:     intParam(r, "limit"),
		Offset:    intParam(r, "offset"),
	}
}

func ListResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := app.Responses.List(r.Context(), responseQuery(r))
		if err != nil {
			httpx.WriteError(w, "responses.list", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"responses": list,
		})
	}
}

func CountResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := app.Responses.Count(r.Context(), responseQuery(r))
		if err != nil {
			httpx.WriteError(w, "responses.count", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"count": count,
		})
	}
}

func ExportResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := r.URL.Query().Get("format")

		raw, list, err := app.Responses.Export(r.Context(), responseQuery(r), format)
		if err != nil {
			httpx.WriteError(w, "responses.export", err)
			return
		}

		switch format {
		case response.FormatCSV:
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.Header().Set("Content-Disposition", `attachment; filename="respostas.csv"`)
			w.Write(raw)

		case response.FormatJSON:
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.Header().Set("Content-Disposition", `attachment; filename="respostas.json"`)
			w.Write(raw)

		default:
			render.JSON(w, r, map[string]any{
				"responses": list,
			})
		}
	}
}

func GetResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := app.Responses.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.WriteError(w, "responses.get", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"response": resp,
			"labels":   app.Resolver.Labels(resp.ProjectID),
		})
	}
}

func ResponseHistory(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		history, err := app.Responses.History(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.WriteError(w, "responses.history", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"history": history,
		})
	}
}

func ArchiveResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := app.Responses.Archive(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.WriteError(w, "responses.archive", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func RestoreResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := app.Responses.Restore(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.WriteError(w, "responses.restore", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// AnalyzeText runs the whole map-reduce pipeline synchronously. Large texts
// with many responses can take a while, the handler just waits.
func AnalyzeText(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		analysis, err := app.AI.Analyze(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.WriteError(w, "ai.analyze", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, analysis)
	}
}

func ListAnalyses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := app.Analyses.ListByText(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.WriteError(w, "ai.list_analyses", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"analyses": list,
		})
	}
}

type updateAnalysisRequest struct {
	Content string `json:"content"`
}

func UpdateAnalysis(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := updateAnalysisRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		analysis, err := app.Analyses.Update(r.Context(), chi.URLParam(r, "id"), req.Content)
		if err != nil {
			httpx.WriteError(w, "ai.update_analysis", err)
			return
		}

		render.JSON(w, r, analysis)
	}
}

func ListModels(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		models, err := app.LLM.ListModels(r.Context())
		if err != nil {
			httpx.WriteError(w, "ai.list_models", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"models":  ai.SortedModelIDs(models),
			"current": app.Settings.AIModel,
		})
	}
}

func GetSettings(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, app.Settings)
	}
}
