package repository

import (
	"context"
	"testing"

	"bookit/internal/domains/book/model"
	"bookit/internal/infrastructure/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteRepo(t *testing.T) RepositoryInterface {
	t.Helper()
	db := database.NewSQLiteDB(":memory:")
	require.NoError(t, db.Connect(context.Background()))
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteRepository(db.DB)
}

func TestSQLiteRepository_CRUD(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	books, err := repo.ListBooks(ctx)
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)

	id, err := repo.CreateBook(ctx, &model.Book{Title: "Dune", Author: "Herbert", PubDate: "1965-08-01", NumPages: model.Pages(412)})
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	id2, err := repo.CreateBook(ctx, &model.Book{Title: "Emma", Author: "Austen", PubDate: "1815-12-23"})
	require.NoError(t, err)

	got, err := repo.GetBookByID(ctx, id2)
	require.NoError(t, err)
	assert.Nil(t, got.NumPages)
	assert.Equal(t, "Emma", got.Title)

	require.NoError(t, repo.UpdateBook(ctx, &model.Book{ID: id, Title: "Dune", Author: "Frank Herbert", PubDate: "1965-08-01", NumPages: model.Pages(0)}))
	got, err = repo.GetBookByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Frank Herbert", got.Author)
	require.NotNil(t, got.NumPages)
	assert.Zero(t, *got.NumPages)

	require.NoError(t, repo.DeleteBook(ctx, id))
	books, err = repo.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, id2, books[0].ID)
}

func TestSQLiteRepository_MissingIDs(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	_, err := repo.GetBookByID(ctx, 42)
	assert.ErrorIs(t, err, model.ErrBookNotFound)

	err = repo.UpdateBook(ctx, &model.Book{ID: 42, Title: "x", Author: "y", PubDate: "2020-01-01"})
	assert.ErrorIs(t, err, model.ErrBookNotFound)

	assert.ErrorIs(t, repo.DeleteBook(ctx, 42), model.ErrBookNotFound)
}
