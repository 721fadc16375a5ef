package ai

import (
	"fmt"
	"strings"

	"github.com/mlopes/apreciador/toon"
)

// DefaultSystemPrompt drives the per-batch analysis. Site editors may
// override it via settings; the consolidation prompt is fixed.
const DefaultSystemPrompt = `Você é um analista especializado na Metodologia Mateus 24.
Sua tarefa é analisar um conjunto de respostas de vários leitores sobre um texto específico.

Objetivos:
1. Agrupar Perguntas: Identifique perguntas que expressam a mesma dúvida ou ideia. Crie uma pergunta única, clara e profunda para cada grupo, fundindo as nuances. Cite o nome de todos os leitores que contribuíram para aquele grupo de ideias.
2. Perguntas Únicas: Mantenha perguntas que não possuem similares.
3. Síntese do Conteúdo: Gere um texto que sintetize e resuma as impressões, sentimentos e observações dos leitores sobre o texto original. Preserve informações valiosas e observações específicas de cada leitor, citando-os quando as ideias forem mencionadas.

Formato de Saída (Markdown):
# Análise das Respostas (IA)

## Perguntas para os Autores
(Lista de perguntas agrupadas e únicas com os nomes dos leitores)

## Síntese das Percepções
(Texto consolidado identificando as contribuições dos leitores)`

const consolidationPrompt = `Você é o Consolidador mestre da Metodologia Mateus 24.
Sua tarefa é receber várias análises parciais (feitas em lotes) e fundi-las em uma única Análise Final Coerente e Profunda.

Objetivos de Consolidação:
1. DE-DUPLICAÇÃO E RE-GRUPAMENTO: Analise todas as perguntas sugeridas em todos os lotes. Identifique temas recorrentes entre os lotes e crie grupos de perguntas ainda mais robustos e profundos. Não repita perguntas similares.
2. SÍNTESE GLOBAL: Una as sínteses de cada lote em um único texto fluido que represente a voz de todos os leitores. Evite redundâncias entre os lotes.
3. PRESERVAÇÃO DE CITAÇÕES: Mantenha as citações aos leitores originais em todo o texto final.

Formato de Saída: Mantenha rigorosamente o formato Markdown solicitado anteriormente (# Análise Final, ## Perguntas, ## Síntese).`

// promptContext is the auxiliary material appended to every batch prompt.
type promptContext struct {
	methodology  string
	originalText string
	isPartial    bool
}

// batchContent serializes one batch of reader records plus context into the
// user message. Records are TOON-encoded to keep token usage down.
func batchContent(records []map[string]any, pctx promptContext) string {
	var b strings.Builder

	if pctx.methodology != "" || pctx.originalText != "" || pctx.isPartial {
		b.WriteString("--- CONTEXTO ADICIONAL ---\n")
		if pctx.methodology != "" {
			b.WriteString("\nMETODOLOGIA:\n" + pctx.methodology + "\n")
		}
		if pctx.originalText != "" {
			b.WriteString("\nTEXTO ORIGINAL ANALISADO PELOS LEITORES:\n" + pctx.originalText + "\n")
		}
		if pctx.isPartial {
			b.WriteString("\nNOTA: Esta é uma análise parcial de um lote de respostas. Concentre-se em extrair o máximo de valor deste grupo específico.\n")
		}
		b.WriteString("\n")
	}

	rows := make([]any, len(records))
	for i, r := range records {
		rows[i] = map[string]any(r)
	}

	b.WriteString("Aqui estão as respostas dos leitores para análise (formato TOON para economia de tokens):\n\n")
	b.WriteString(toon.Encode(rows))
	return b.String()
}

// consolidationContent concatenates the partial batch outputs for the reduce
// call.
func consolidationContent(partials []string, pctx promptContext) string {
	var b strings.Builder
	b.WriteString("Aqui estão as análises parciais obtidas dos diferentes lotes de leitores:\n\n")
	for i, partial := range partials {
		fmt.Fprintf(&b, "### LOTE %d:\n%s\n\n---\n\n", i+1, partial)
	}
	if pctx.methodology != "" {
		b.WriteString("\n\nRELEMBRE A METODOLOGIA:\n" + pctx.methodology)
	}
	return b.String()
}
