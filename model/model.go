package model

import "time"

const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"

	StatusActive   = "active"
	StatusArchived = "archived"
)

// Template is a named, ordered set of steps attached to a project.
type Template struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Steps []TemplateStep `json:"steps"`
}

type TemplateStep struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Step is one rendered question unit of the reflection form. Template-based
// steps carry exactly one field named after the step key; legacy steps carry
// their fixed fields.
type Step struct {
	Number      int     `json:"number"`
	Key         string  `json:"key"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Fields      []Field `json:"fields"`
	Conditional bool    `json:"conditional,omitempty"`
}

type Field struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder"`
}

type Project struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// Text is one unit of content eligible for reader responses. Body holds the
// raw (possibly HTML) content synced from the host CMS; Paragraphs is the
// cached extraction used by the per-paragraph question step.
type Text struct {
	ID                 string      `json:"id,omitempty"`
	ContentRef         string      `json:"content_ref"`
	Title              string      `json:"title"`
	Body               string      `json:"body,omitempty"`
	ProjectID          string      `json:"project_id,omitempty"`
	Status             string      `json:"status,omitempty"`
	ParagraphQuestions bool        `json:"paragraph_questions,omitempty"`
	Paragraphs         []Paragraph `json:"paragraphs,omitempty"`
	CreatedAt          time.Time   `json:"created_at,omitempty"`
}

type Paragraph struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Response is one user's answer set for one text. (user_id, text_id) is the
// natural key: at most one response exists per pair. DraftData holds edits
// layered on top of an already-submitted Data and is cleared on submit.
type Response struct {
	ID        string         `json:"id,omitempty"`
	TextID    string         `json:"text_id"`
	ProjectID string         `json:"project_id,omitempty"`
	UserID    string         `json:"user_id"`
	UserEmail string         `json:"user_email,omitempty"`
	UserName  string         `json:"user_name,omitempty"`
	Status    string         `json:"status"`
	Version   int            `json:"version"`
	Data      map[string]any `json:"data"`
	DraftData map[string]any `json:"draft_data,omitempty"`
	Archived  bool           `json:"archived,omitempty"`
	CreatedAt time.Time      `json:"created_at,omitempty"`
	UpdatedAt time.Time      `json:"updated_at,omitempty"`
}

// HistoryEntry is an immutable snapshot of a response's data taken right
// before a new submitted version superseded it.
type HistoryEntry struct {
	ID          string         `json:"id,omitempty"`
	ResponseID  string         `json:"response_id"`
	Version     int            `json:"version"`
	Data        map[string]any `json:"data"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

type AIAnalysis struct {
	ID        string    `json:"id,omitempty"`
	TextID    string    `json:"text_id"`
	Content   string    `json:"content"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
