package toon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeScalars(t *testing.T) {
	assert.Equal(t, "null", Encode(nil))
	assert.Equal(t, "true", Encode(true))
	assert.Equal(t, "false", Encode(false))
	assert.Equal(t, "42", Encode(42))
	assert.Equal(t, "3.14", Encode(3.14))
	assert.Equal(t, "olá", Encode("olá"))
}

func TestEncodeObjectSortsKeys(t *testing.T) {
	out := Encode(map[string]any{
		"zeta":  "z",
		"alpha": "a",
		"mid":   1,
	})
	assert.Equal(t, "alpha: a\nmid: 1\nzeta: z", out)
}

func TestEncodeUniformListBecomesTable(t *testing.T) {
	out := Encode([]any{
		map[string]any{"leitor": "Ana", "tema": "esperança"},
		map[string]any{"leitor": "Bia", "tema": "caridade"},
	})

	expected := "| leitor | tema |\n" +
		"| Ana | esperança |\n" +
		"| Bia | caridade |"
	assert.Equal(t, expected, out)
}

func TestEncodeMixedListUsesDashItems(t *testing.T) {
	out := Encode([]any{
		"primeiro",
		map[string]any{"k": "v"},
	})
	assert.Equal(t, "- primeiro\n- k: v", out)
}

func TestEncodeTableCellsCollapseNewlines(t *testing.T) {
	out := Encode([]any{
		map[string]any{"resposta": "linha um\nlinha dois"},
		map[string]any{"resposta": "só uma"},
	})
	assert.Contains(t, out, "| linha um linha dois |")
	assert.NotContains(t, out, "um\nlinha")
}

func TestEncodeTableCellsEscapePipes(t *testing.T) {
	out := Encode([]any{
		map[string]any{"nota": "ou isto | ou aquilo", "tema": "dúvida"},
		map[string]any{"nota": "simples", "tema": "fé"},
	})
	assert.Contains(t, out, `| ou isto \| ou aquilo | dúvida |`)
	// every row keeps exactly the two header columns
	for _, line := range strings.Split(out, "\n")[1:] {
		assert.Len(t, strings.Split(line, " | "), 2)
	}
}

func TestEncodeNestedUniformArrayGetsCountSuffix(t *testing.T) {
	out := Encode(map[string]any{
		"respostas": []any{
			map[string]any{"id": "p1"},
			map[string]any{"id": "p2"},
		},
	})
	assert.Contains(t, out, "respostas(2):")
	assert.Contains(t, out, "| id |")
}

func TestEncodeEmptyValues(t *testing.T) {
	assert.Equal(t, "[]", Encode([]any{}))
	assert.Equal(t, "{}", Encode(map[string]any{}))
}

func TestIsUniform(t *testing.T) {
	assert.True(t, isUniform([]any{
		map[string]any{"a": 1, "b": 2},
		map[string]any{"b": 3, "a": 4},
	}))
	assert.False(t, isUniform([]any{
		map[string]any{"a": 1},
		map[string]any{"b": 2},
	}))
	assert.False(t, isUniform([]any{"a", "b"}))
	assert.False(t, isUniform([]any{}))
}
