package projects

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlopes/apreciador/errs"
	"github.com/mlopes/apreciador/model"
	"github.com/mlopes/apreciador/store"
)

func TestCreateProject(t *testing.T) {
	s := NewService(store.NewMemory())

	p, err := s.Create(context.Background(), model.Project{
		Name:        "Mateus 24",
		Description: "Estudo dirigido",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Mateus 24", p.Name)
	assert.Equal(t, model.StatusActive, p.Status)
}

func TestCreateProjectValidation(t *testing.T) {
	s := NewService(store.NewMemory())
	ctx := context.Background()

	_, err := s.Create(ctx, model.Project{})
	assert.True(t, errs.Is(err, errs.KindValidation))

	_, err = s.Create(ctx, model.Project{Name: "x", Status: "pending"})
	assert.True(t, errs.Is(err, errs.KindValidation))
}

func TestUpdateProjectPartial(t *testing.T) {
	s := NewService(store.NewMemory())
	ctx := context.Background()

	created, err := s.Create(ctx, model.Project{Name: "Mateus 24", Description: "desc"})
	require.NoError(t, err)

	updated, err := s.Update(ctx, created.ID, model.Project{Name: "Mateus 24 Revisado"})
	require.NoError(t, err)

	assert.Equal(t, "Mateus 24 Revisado", updated.Name)
	// omitted fields keep their stored value
	assert.Equal(t, "desc", updated.Description)
	assert.Equal(t, model.StatusActive, updated.Status)
}

func TestUpdateMissingProject(t *testing.T) {
	s := NewService(store.NewMemory())

	_, err := s.Update(context.Background(), "missing", model.Project{Name: "x"})
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestArchiveHidesFromOptions(t *testing.T) {
	s := NewService(store.NewMemory())
	ctx := context.Background()

	a, err := s.Create(ctx, model.Project{Name: "Ativo"})
	require.NoError(t, err)
	b, err := s.Create(ctx, model.Project{Name: "Arquivado"})
	require.NoError(t, err)

	options, err := s.Options(ctx)
	require.NoError(t, err)
	assert.Len(t, options, 2)

	require.NoError(t, s.Archive(ctx, b.ID))

	options, err = s.Options(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{a.ID: "Ativo"}, options)

	require.NoError(t, s.Restore(ctx, b.ID))

	options, err = s.Options(ctx)
	require.NoError(t, err)
	assert.Len(t, options, 2)
}

func TestOptionsCacheInvalidatedByWrites(t *testing.T) {
	s := NewService(store.NewMemory())
	ctx := context.Background()

	options, err := s.Options(ctx)
	require.NoError(t, err)
	assert.Empty(t, options)

	created, err := s.Create(ctx, model.Project{Name: "Novo"})
	require.NoError(t, err)

	options, err = s.Options(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{created.ID: "Novo"}, options)
}

func TestDeleteProject(t *testing.T) {
	s := NewService(store.NewMemory())
	ctx := context.Background()

	created, err := s.Create(ctx, model.Project{Name: "Descartável"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, created.ID))

	_, err = s.Get(ctx, created.ID)
	assert.True(t, errs.Is(err, errs.KindNotFound))
}
