package template

import "github.com/mlopes/apreciador/model"

// legacySteps is the fixed six-step reflection form used when a project has
// no template assigned.
var legacySteps = []model.Step{
	{
		Number:      1,
		Key:         "tema_central",
		Title:       "Tema Central",
		Description: "Identifique e descreva de forma concisa a ideia principal que o texto busca transmitir.",
		Fields: []model.Field{
			{Name: "tema_central", Label: "Tema Central", Placeholder: "Qual a ideia principal do texto?"},
		},
	},
	{
		Number:      2,
		Key:         "temas_subsidiarios",
		Title:       "Temas Subsidiários",
		Description: "Aponte outros assuntos ou ideias secundárias que apoiam e complementam o tema central.",
		Fields: []model.Field{
			{Name: "temas_subsidiarios", Label: "Temas Subsidiários", Placeholder: "Quais outros temas são abordados?"},
		},
	},
	{
		Number:      3,
		Key:         "correlacoes_doutrinarias",
		Title:       "Correlações Doutrinárias",
		Description: "Relacione este conteúdo com outros textos, obras ou passagens evangélicas de seu conhecimento.",
		Fields: []model.Field{
			{Name: "correlacoes_doutrinarias", Label: "Correlação", Placeholder: "Que conexões você percebe com outros textos?"},
		},
	},
	{
		Number:      4,
		Key:         "aspectos_positivos",
		Title:       "Aspectos Positivos",
		Description: "Quais ensinamentos e pontos fortes você destaca neste texto? O que foi mais valioso para você?",
		Fields: []model.Field{
			{Name: "aspectos_positivos", Label: "Aspectos Positivos", Placeholder: "O que mais te impactou?"},
		},
	},
	{
		Number:      5,
		Key:         "duvidas",
		Title:       "Dúvidas",
		Description: "Exponha os pontos que não ficaram totalmente claros ou que geraram algum tipo de estranhamento ou dúvida.",
		Fields: []model.Field{
			{Name: "duvidas", Label: "Dúvidas", Placeholder: "Quais pontos não ficaram claros?"},
		},
	},
	{
		Number:      6,
		Key:         "perguntas_autores",
		Title:       "Perguntas para os Autores",
		Description: "A partir de suas dúvidas, formule perguntas profundas baseadas fielmente no texto. ATENÇÃO: Perguntas fora de contexto ou alheias ao texto serão excluídas da análise.",
		Fields: []model.Field{
			{Name: "perguntas_autores", Label: "Perguntas para os Autores", Placeholder: "Que perguntas você faria aos autores espirituais?"},
		},
	},
}
