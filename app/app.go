package app

import (
	"github.com/go-chi/oauth"

	"github.com/mlopes/apreciador/ai"
	"github.com/mlopes/apreciador/config"
	"github.com/mlopes/apreciador/projects"
	"github.com/mlopes/apreciador/response"
	"github.com/mlopes/apreciador/store"
	"github.com/mlopes/apreciador/template"
	"github.com/mlopes/apreciador/texts"
)

// App bundles the constructed services handed to the route handlers.
type App struct {
	Store    store.Store
	Config   config.Config
	Settings config.Settings

	Resolver  template.Resolver
	Projects  *projects.Service
	Texts     *texts.Service
	Responses *response.Service
	Analyses  *ai.Service
	AI        *ai.Orchestrator
	LLM       ai.Client

	*oauth.BearerServer
}
