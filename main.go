package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/oauth"

	"github.com/mlopes/apreciador/ai"
	"github.com/mlopes/apreciador/app"
	"github.com/mlopes/apreciador/config"
	"github.com/mlopes/apreciador/httpx"
	"github.com/mlopes/apreciador/log"
	"github.com/mlopes/apreciador/projects"
	"github.com/mlopes/apreciador/response"
	"github.com/mlopes/apreciador/routes"
	"github.com/mlopes/apreciador/store"
	"github.com/mlopes/apreciador/template"
	"github.com/mlopes/apreciador/texts"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		log.Fatal("main.settings:", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		log.Fatal("main.store.open:", err)
	}
	if closer, ok := st.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	resolver := template.NewResolver(settings)
	projectSvc := projects.NewService(st)
	textSvc := texts.NewService(st)
	responseSvc := response.NewService(st)
	analysisSvc := ai.NewService(st)
	llm := ai.NewOpenRouter(cfg.OpenRouterKey)
	orchestrator := ai.NewOrchestrator(responseSvc, textSvc, resolver, analysisSvc, llm, settings)

	bearerServer := oauth.NewBearerServer(
		cfg.TokenSecret,
		cfg.TokenTTL,
		httpx.CredentialsVerifier(cfg),
		nil,
	)

	app := app.App{
		Store:    st,
		Config:   cfg,
		Settings: settings,

		Resolver:  resolver,
		Projects:  projectSvc,
		Texts:     textSvc,
		Responses: responseSvc,
		Analyses:  analysisSvc,
		AI:        orchestrator,
		LLM:       llm,

		BearerServer: bearerServer,
	}

	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func openStore(cfg config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case "sqlite":
		return store.OpenSQLite(cfg.DBPath)
	case "memory":
		return store.NewMemory(), nil
	default:
		return store.NewPostgREST(cfg.StoreURL, cfg.StoreAnonKey, cfg.StoreServiceKey), nil
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
