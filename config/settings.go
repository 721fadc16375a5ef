package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"github.com/mlopes/apreciador/model"
)

// Settings is the read-only application configuration snapshot, loaded once
// at startup and injected into the services. It mirrors what site editors
// configure in the host CMS settings screen.
type Settings struct {
	AutosaveInterval    int      `json:"autosave_interval"`
	ProgressiveForm     bool     `json:"progressive_form"`
	AllowedContentTypes []string `json:"allowed_content_types"`

	// Legacy per-step overrides, keyed "step_1".."step_6".
	StepTexts map[string]StepText `json:"step_texts"`

	// Templates and the project -> template id assignment map.
	Templates        []model.Template  `json:"step_templates"`
	ProjectTemplates map[string]string `json:"project_templates"`

	AIModel        string `json:"ai_model"`
	AISystemPrompt string `json:"ai_system_prompt"`
	Methodology    string `json:"methodology_explanation"`
	AIBatchSize    int    `json:"ai_batch_size"`
}

type StepText struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func DefaultSettings() Settings {
	return Settings{
		AutosaveInterval:    20,
		ProgressiveForm:     true,
		AllowedContentTypes: []string{"post", "page"},
		AIModel:             "openai/gpt-4o-mini",
		AIBatchSize:         30,
	}
}

// LoadSettings reads the settings file. A missing file is not an error:
// defaults apply until an editor saves a configuration.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return s, err
	}

	if err := json.Unmarshal(raw, &s); err != nil {
		return DefaultSettings(), err
	}

	if s.AutosaveInterval < 10 {
		s.AutosaveInterval = 20
	}
	if s.AIBatchSize <= 0 {
		s.AIBatchSize = 30
	}
	if s.AIModel == "" {
		s.AIModel = "openai/gpt-4o-mini"
	}

	return s, nil
}

// TemplateFor resolves the template assigned to a project. ok is false when
// the project has no assignment or the assigned template no longer exists.
func (s Settings) TemplateFor(projectID string) (model.Template, bool) {
	if projectID == "" {
		return model.Template{}, false
	}
	id, found := s.ProjectTemplates[projectID]
	if !found || id == "" {
		return model.Template{}, false
	}
	for _, tpl := range s.Templates {
		if tpl.ID == id {
			return tpl, true
		}
	}
	return model.Template{}, false
}
