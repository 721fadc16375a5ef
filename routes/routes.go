package routes

import (
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"

	"github.com/mlopes/apreciador/app"
	"github.com/mlopes/apreciador/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	// reader form flow, called by the trusted host CMS frontend
	api.Get("/texts/{id}/steps", GetSteps(app))
	api.Post("/texts/{id}/draft", SaveDraft(app))
	api.Get("/texts/{id}/response", GetUserResponse(app))
	api.Post("/responses/{id}/submit", SubmitResponse(app))

	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.Admin(app.Config.TokenSecret))

		// CRUD projects
		r.Post("/projects", CreateProject(app))
		r.Get("/projects", ListProjects(app))
		r.Get("/projects/options", ProjectOptions(app))
		r.Get("/projects/{id}", GetProject(app))
		r.Put("/projects/{id}", UpdateProject(app))
		r.Delete("/projects/{id}", DeleteProject(app))
		r.Post("/projects/{id}/archive", ArchiveProject(app))
		r.Post("/projects/{id}/restore", RestoreProject(app))

		// texts synced from the host CMS
		r.Get("/texts", ListTexts(app))
		r.Post("/texts/sync", SyncText(app))
		r.Delete("/texts", DeleteText(app))
		r.Put("/texts/{id}/paragraph-questions", SetParagraphQuestions(app))
		r.Post("/texts/{id}/archive", ArchiveText(app))
		r.Post("/texts/{id}/restore", RestoreText(app))

		// responses and exports
		r.Get("/responses", ListResponses(app))
		r.Get("/responses/count", CountResponses(app))
		r.Get("/responses/export", ExportResponses(app))
		r.Get("/responses/{id}", GetResponse(app))
		r.Get("/responses/{id}/history", ResponseHistory(app))
		r.Post("/responses/{id}/archive", ArchiveResponse(app))
		r.Post("/responses/{id}/restore", RestoreResponse(app))

		// AI analysis
		r.Post("/texts/{id}/analyze", AnalyzeText(app))
		r.Get("/texts/{id}/analyses", ListAnalyses(app))
		r.Put("/analyses/{id}", UpdateAnalysis(app))
		r.Get("/ai/models", ListModels(app))

		r.Get("/settings", GetSettings(app))
	})

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}
