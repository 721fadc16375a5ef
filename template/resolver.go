// Package template resolves which form steps apply to a project: the steps of
// its assigned template when one exists, the fixed legacy set otherwise.
package template

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mlopes/apreciador/config"
	"github.com/mlopes/apreciador/model"
)

// ParagraphStepKey is the reserved key of the conditional per-paragraph
// question step. Its fields are populated at render time from the text's
// extracted paragraphs, never statically.
const ParagraphStepKey = "perguntas_paragrafos"

// ParagraphStepLabel is the fixed display label for paragraph answers.
const ParagraphStepLabel = "Perguntas por Parágrafo"

const genericPlaceholder = "Sua resposta..."

type Resolver struct {
	settings config.Settings
}

func NewResolver(settings config.Settings) Resolver {
	return Resolver{settings: settings}
}

// stepSource is the resolved origin of a project's form steps.
type stepSource struct {
	template model.Template
	legacy   bool
}

func (r Resolver) source(projectID string) stepSource {
	tpl, ok := r.settings.TemplateFor(projectID)
	if !ok || len(tpl.Steps) == 0 {
		return stepSource{legacy: true}
	}
	return stepSource{template: tpl}
}

// Steps resolves the ordered step list for a project. It never fails: any
// missing or empty template configuration falls back to the legacy set.
func (r Resolver) Steps(projectID string) []model.Step {
	src := r.source(projectID)
	if src.legacy {
		return r.legacySteps()
	}

	steps := make([]model.Step, len(src.template.Steps))
	for i, ts := range src.template.Steps {
		steps[i] = model.Step{
			Number:      i + 1,
			Key:         ts.Key,
			Title:       ts.Title,
			Description: ts.Description,
			Fields: []model.Field{
				{Name: ts.Key, Label: ts.Title, Placeholder: genericPlaceholder},
			},
		}
	}
	return steps
}

// Labels maps each field key of the project's steps to its display title,
// for labeling answers in exports and AI prompts.
func (r Resolver) Labels(projectID string) map[string]string {
	labels := map[string]string{}
	for _, step := range r.Steps(projectID) {
		if step.Key != "" {
			labels[step.Key] = step.Title
		}
	}
	return labels
}

// Label resolves one field key to a display label: the resolved step title,
// the fixed paragraph-step label, or a title-cased rendering of the key.
func Label(labels map[string]string, key string) string {
	if key == ParagraphStepKey {
		return ParagraphStepLabel
	}
	if label, ok := labels[key]; ok {
		return label
	}
	return titleCase(key)
}

// ParagraphStep is the conditional step appended when a text has paragraph
// questions enabled.
func ParagraphStep() model.Step {
	return model.Step{
		Key:         ParagraphStepKey,
		Title:       ParagraphStepLabel,
		Description: "Algum conceito ou argumento despertou questionamentos? Se sim, faça suas perguntas abaixo.",
		Fields:      []model.Field{},
		Conditional: true,
	}
}

func (r Resolver) legacySteps() []model.Step {
	steps := make([]model.Step, len(legacySteps))
	copy(steps, legacySteps)

	for i := range steps {
		override, ok := r.settings.StepTexts[fmt.Sprintf("step_%d", i+1)]
		if !ok {
			continue
		}
		if override.Title != "" {
			steps[i].Title = override.Title
			steps[i].Fields = []model.Field{steps[i].Fields[0]}
			steps[i].Fields[0].Label = override.Title
		}
		if override.Description != "" {
			steps[i].Description = override.Description
		}
	}
	return steps
}

func titleCase(key string) string {
	words := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		first, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(first)) + w[size:]
	}
	return strings.Join(words, " ")
}
