package paragraphs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractNumbersParagraphsWithoutGaps(t *testing.T) {
	content := `<p>Primeiro parágrafo com conteúdo real.</p>
<p>curto</p>
<p>Terceiro parágrafo igualmente relevante.</p>`

	got := Extract(content)
	require.Len(t, got, 2)

	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, "Primeiro parágrafo com conteúdo real.", got[0].Content)
	assert.Equal(t, "p2", got[1].ID)
	assert.Equal(t, "Terceiro parágrafo igualmente relevante.", got[1].Content)
}

func TestExtractDropsShortParagraphs(t *testing.T) {
	// exactly 10 runes is still too short, 11 survives
	got := Extract("<p>0123456789</p><p>0123456789a</p>")
	require.Len(t, got, 1)
	assert.Equal(t, "0123456789a", got[0].Content)
}

func TestExtractCountsRunesNotBytes(t *testing.T) {
	// 11 runes but well over 10 bytes in UTF-8
	got := Extract("<p>áéíóúãõçâê!</p>")
	assert.Len(t, got, 1)
}

func TestExtractAutoParagraphsPlainContent(t *testing.T) {
	content := "Primeiro bloco de texto corrido.\n\nSegundo bloco separado por linha em branco."

	got := Extract(content)
	require.Len(t, got, 2)
	assert.Equal(t, "Primeiro bloco de texto corrido.", got[0].Content)
	assert.Equal(t, "Segundo bloco separado por linha em branco.", got[1].Content)
}

func TestExtractToleratesMalformedHTML(t *testing.T) {
	content := `<p>Parágrafo sem fechamento adequado
<p>Outro parágrafo <b>com negrito solto</div>`

	got := Extract(content)
	require.Len(t, got, 2)
	assert.Equal(t, "Parágrafo sem fechamento adequado", got[0].Content)
	assert.Equal(t, "Outro parágrafo com negrito solto", got[1].Content)
}

func TestExtractStripsInlineMarkup(t *testing.T) {
	got := Extract(`<p>Texto com <em>ênfase</em> e <a href="#">link</a> embutidos.</p>`)
	require.Len(t, got, 1)
	assert.Equal(t, "Texto com ênfase e link embutidos.", got[0].Content)
}

func TestExtractEmptyContent(t *testing.T) {
	assert.Empty(t, Extract(""))
	assert.Empty(t, Extract("   \n\n  "))
}

func TestPlainText(t *testing.T) {
	out := PlainText("<h1>Título</h1><p>Corpo do <strong>texto</strong>.</p>")
	assert.Equal(t, "TítuloCorpo do texto.", out)
}
