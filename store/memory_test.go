package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPostMintsIDAndCreatedAt(t *testing.T) {
	m := NewMemory()

	rec, err := m.Post(context.Background(), TableProjects, Record{"name": "Mateus 24"})
	require.NoError(t, err)

	assert.NotEmpty(t, rec["id"])
	assert.NotEmpty(t, rec["created_at"])

	got, err := m.Get(context.Background(), TableProjects, ByID(rec["id"].(string)))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Mateus 24", got[0]["name"])
}

func TestMemoryGetFiltersAndOrders(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for _, r := range []Record{
		{"id": "a", "text_id": "t-1", "version": float64(1)},
		{"id": "b", "text_id": "t-1", "version": float64(3)},
		{"id": "c", "text_id": "t-2", "version": float64(2)},
	} {
		_, err := m.Post(ctx, TableResponses, r)
		require.NoError(t, err)
	}

	got, err := m.Get(ctx, TableResponses, Filters{
		Eqs:   []Eq{{"text_id", "t-1"}},
		Order: "version.desc",
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0]["id"])
	assert.Equal(t, "a", got[1]["id"])
}

func TestMemoryOrdersNumbersPastSingleDigits(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for _, v := range []int{1, 2, 9, 10, 11} {
		_, err := m.Post(ctx, TableResponseHistory, Record{
			"response_id": "r-1",
			"version":     v,
		})
		require.NoError(t, err)
	}

	got, err := m.Get(ctx, TableResponseHistory, Filters{
		Eqs:   []Eq{{"response_id", "r-1"}},
		Order: "version.desc",
	})
	require.NoError(t, err)
	require.Len(t, got, 5)

	versions := make([]int, len(got))
	for i, rec := range got {
		versions[i] = rec["version"].(int)
	}
	assert.Equal(t, []int{11, 10, 9, 2, 1}, versions)
}

func TestMemoryOrdersMixedNumberShapes(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	// raw ints from Post and float64 from a JSON round trip must interleave
	for _, v := range []any{2, float64(10), 9, float64(1)} {
		_, err := m.Post(ctx, TableResponses, Record{"version": v})
		require.NoError(t, err)
	}

	got, err := m.Get(ctx, TableResponses, Filters{Order: "version.asc"})
	require.NoError(t, err)
	require.Len(t, got, 4)

	versions := make([]float64, len(got))
	for i, rec := range got {
		f, ok := numeric(rec["version"])
		require.True(t, ok)
		versions[i] = f
	}
	assert.Equal(t, []float64{1, 2, 9, 10}, versions)
}

func TestMemoryGetPagination(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d"} {
		_, err := m.Post(ctx, TableTexts, Record{"id": id})
		require.NoError(t, err)
	}

	got, err := m.Get(ctx, TableTexts, Filters{Order: "id.asc", Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0]["id"])
	assert.Equal(t, "c", got[1]["id"])

	got, err = m.Get(ctx, TableTexts, Filters{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryPatchMergesPartial(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.Post(ctx, TableResponses, Record{"id": "r-1", "status": "draft", "version": float64(1)})
	require.NoError(t, err)

	updated, err := m.Patch(ctx, TableResponses, ByID("r-1"), Record{"status": "submitted"})
	require.NoError(t, err)
	require.Len(t, updated, 1)

	assert.Equal(t, "submitted", updated[0]["status"])
	assert.Equal(t, float64(1), updated[0]["version"])
}

func TestMemoryDelete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.Post(ctx, TableTexts, Record{"id": "t-1"})
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, TableTexts, ByID("t-1")))

	got, err := m.Get(ctx, TableTexts, ByID("t-1"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryCopiesRecordsOnReadAndWrite(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	data := Record{"data": Record{"tema_central": "original"}}
	stored, err := m.Post(ctx, TableResponses, data)
	require.NoError(t, err)

	// mutating the input or the returned copy must not touch the store
	data["data"].(Record)["tema_central"] = "mutado"
	stored["data"].(Record)["tema_central"] = "mutado"

	got, err := m.Get(ctx, TableResponses, ByID(stored["id"].(string)))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "original", got[0]["data"].(Record)["tema_central"])
}
