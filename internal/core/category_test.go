package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"animehub/pkg/models"
)

type fakeCategoryRepo struct {
	categories map[int64]*models.Category
	// animeGenres stands in for the genre lists the real repository rewrites
	animeGenres map[int64][]string
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{
		categories:  make(map[int64]*models.Category),
		animeGenres: make(map[int64][]string),
	}
}

func (f *fakeCategoryRepo) Create(_ context.Context, c *models.Category) error {
	cp := *c
	f.categories[c.ID] = &cp
	return nil
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id int64) (*models.Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, models.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCategoryRepo) GetByName(_ context.Context, name string) (*models.Category, error) {
	for _, c := range f.categories {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, models.ErrCategoryNotFound
}

func (f *fakeCategoryRepo) List(_ context.Context) ([]models.Category, error) {
	var out []models.Category
	for _, c := range f.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCategoryRepo) SearchByName(_ context.Context, _ string) ([]models.Category, error) {
	return nil, nil
}

func (f *fakeCategoryRepo) Rename(_ context.Context, id int64, newName string) error {
	c, ok := f.categories[id]
	if !ok {
		return models.ErrCategoryNotFound
	}
	old := c.Name
	c.Name = newName
	for animeID, genres := range f.animeGenres {
		for i, g := range genres {
			if g == old {
				genres[i] = newName
			}
		}
		f.animeGenres[animeID] = genres
	}
	return nil
}

func (f *fakeCategoryRepo) Delete(_ context.Context, id int64) error {
	c, ok := f.categories[id]
	if !ok {
		return models.ErrCategoryNotFound
	}
	for animeID, genres := range f.animeGenres {
		kept := genres[:0]
		for _, g := range genres {
			if g != c.Name {
				kept = append(kept, g)
			}
		}
		f.animeGenres[animeID] = kept
	}
	delete(f.categories, id)
	return nil
}

func newCategoryFixture() (CategoryService, *fakeCategoryRepo) {
	repo := newFakeCategoryRepo()
	return NewCategoryService(repo, newFakeSequence()), repo
}

func TestCategoryCreateRejectsDuplicateName(t *testing.T) {
	svc, _ := newCategoryFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, models.CreateCategoryRequest{Name: "Action"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, models.CreateCategoryRequest{Name: "Action"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestCategoryRenamePropagatesToGenres(t *testing.T) {
	svc, repo := newCategoryFixture()
	ctx := context.Background()

	c, err := svc.Create(ctx, models.CreateCategoryRequest{Name: "Sci-Fi"})
	require.NoError(t, err)
	repo.animeGenres[1] = []string{"Action", "Sci-Fi"}
	repo.animeGenres[2] = []string{"Drama"}

	renamed, err := svc.Rename(ctx, c.ID, models.UpdateCategoryRequest{Name: "Science Fiction"})
	require.NoError(t, err)
	assert.Equal(t, "Science Fiction", renamed.Name)
	assert.Equal(t, []string{"Action", "Science Fiction"}, repo.animeGenres[1])
	assert.Equal(t, []string{"Drama"}, repo.animeGenres[2])
}

func TestCategoryRenameRejectsTakenName(t *testing.T) {
	svc, _ := newCategoryFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, models.CreateCategoryRequest{Name: "Action"})
	require.NoError(t, err)
	c, err := svc.Create(ctx, models.CreateCategoryRequest{Name: "Drama"})
	require.NoError(t, err)

	_, err = svc.Rename(ctx, c.ID, models.UpdateCategoryRequest{Name: "Action"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	// Renaming to its own current name is allowed
	_, err = svc.Rename(ctx, c.ID, models.UpdateCategoryRequest{Name: "Drama"})
	assert.NoError(t, err)
}

func TestCategoryDeleteStripsGenres(t *testing.T) {
	svc, repo := newCategoryFixture()
	ctx := context.Background()

	c, err := svc.Create(ctx, models.CreateCategoryRequest{Name: "Ecchi"})
	require.NoError(t, err)
	repo.animeGenres[1] = []string{"Ecchi", "Comedy"}

	require.NoError(t, svc.Delete(ctx, c.ID))
	assert.Equal(t, []string{"Comedy"}, repo.animeGenres[1])
	_, err = svc.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, models.ErrCategoryNotFound)
}
