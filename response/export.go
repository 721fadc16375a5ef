package response

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mlopes/apreciador/errs"
	"github.com/mlopes/apreciador/model"
	"github.com/mlopes/apreciador/template"
)

const (
	FormatRecords = "record-list"
	FormatJSON    = "json"
	FormatCSV     = "csv"

	exportLimit = 1000
)

// legacy field columns of the CSV projection, in order.
var csvFieldColumns = []string{
	"tema_central",
	"temas_subsidiarios",
	"correlacoes_doutrinarias",
	"aspectos_positivos",
	"duvidas",
	"perguntas_autores",
}

var csvHeader = []string{
	"ID",
	"Usuario ID",
	"Usuario Email",
	"Texto ID",
	"Projeto ID",
	"Status",
	"Versao",
	"Tema Central",
	"Temas Subsidiarios",
	"Correlacao",
	"Aspectos Positivos",
	"Duvidas",
	"Perguntas",
	"Criado Em",
	"Atualizado Em",
	"Perguntas por Paragrafo",
}

// Export builds a flattened projection of up to 1000 matching responses.
// format selects the rendering: the decoded record list, pretty JSON, or the
// fixed-column CSV.
func (s *Service) Export(ctx context.Context, q Query, format string) ([]byte, []model.Response, error) {
	q.Limit = exportLimit
	responses, err := s.List(ctx, q)
	if err != nil {
		return nil, nil, err
	}

	switch format {
	case FormatRecords, "":
		return nil, responses, nil

	case FormatJSON:
		raw, err := json.MarshalIndent(responses, "", "  ")
		return raw, responses, err

	case FormatCSV:
		raw, err := toCSV(responses)
		return raw, responses, err
	}

	return nil, nil, errs.Validation("responses.export", "formato de exportação inválido: "+format)
}

func toCSV(responses []model.Response) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, r := range responses {
		row := []string{
			r.ID,
			r.UserID,
			r.UserEmail,
			r.TextID,
			r.ProjectID,
			r.Status,
			strconv.Itoa(r.Version),
		}
		for _, column := range csvFieldColumns {
			row = append(row, stringField(r.Data[column]))
		}
		row = append(row,
			formatTime(r.CreatedAt),
			formatTime(r.UpdatedAt),
			ParagraphAnswers(r.Data[template.ParagraphStepKey]),
		)

		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// ParagraphAnswers serializes per-paragraph answers for flat projections.
// The current entry shape is a map with question and paragraph_text; bare
// strings are the pre-versioning shape and still render.
func ParagraphAnswers(v any) string {
	answers, ok := v.(map[string]any)
	if !ok || len(answers) == 0 {
		return ""
	}

	var b strings.Builder
	for _, pid := range sortedParagraphIDs(answers) {
		switch entry := answers[pid].(type) {
		case map[string]any:
			question, _ := entry["question"].(string)
			text, _ := entry["paragraph_text"].(string)
			if question != "" {
				fmt.Fprintf(&b, "[%s] (Texto: %s)\nPergunta: %s\n\n", pid, text, question)
			}
		case string:
			if entry != "" {
				fmt.Fprintf(&b, "[%s]: %s\n", pid, entry)
			}
		}
	}
	return b.String()
}

// sortedParagraphIDs orders p1, p2, ... p10 numerically, falling back to
// plain string order for ids that do not match the pN shape.
func sortedParagraphIDs(answers map[string]any) []string {
	ids := make([]string, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ni, iOK := paragraphNumber(ids[i])
		nj, jOK := paragraphNumber(ids[j])
		if iOK && jOK {
			return ni < nj
		}
		return ids[i] < ids[j]
	})
	return ids
}

func paragraphNumber(id string) (int, bool) {
	if !strings.HasPrefix(id, "p") {
		return 0, false
	}
	n, err := strconv.Atoi(id[1:])
	return n, err == nil
}

func stringField(v any) string {
	s, _ := v.(string)
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
