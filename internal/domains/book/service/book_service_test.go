package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookit/internal/domains/book/model"
	"bookit/internal/domains/book/repository"
	"bookit/internal/infrastructure/cache"
	"bookit/internal/infrastructure/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRepo records how often the database is actually hit.
type countingRepo struct {
	repository.RepositoryInterface
	lists int
	gets  int
}

func (r *countingRepo) ListBooks(ctx context.Context) ([]model.Book, error) {
	r.lists++
	return r.RepositoryInterface.ListBooks(ctx)
}

func (r *countingRepo) GetBookByID(ctx context.Context, id int) (*model.Book, error) {
	r.gets++
	return r.RepositoryInterface.GetBookByID(ctx, id)
}

func newTestService(t *testing.T) (ServiceInterface, *countingRepo) {
	t.Helper()
	db := database.NewSQLiteDB(":memory:")
	require.NoError(t, db.Connect(context.Background()))
	t.Cleanup(func() { _ = db.Close() })

	repo := &countingRepo{RepositoryInterface: repository.NewSQLiteRepository(db.DB)}
	return NewService(repo, cache.NewMemoryCache(), time.Minute), repo
}

func validRequest(title string) model.BookRequest {
	return model.BookRequest{Title: title, Author: "Author", PubDate: "2020-01-01", NumPages: model.Pages(10)}
}

func TestBookService_PurgeCacheDropsOnlyBookKeys(t *testing.T) {
	mem := cache.NewMemoryCache()
	svc := NewService(&countingRepo{}, mem, time.Minute)
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, model.CacheKeyList, []model.Book{{ID: 1}}, time.Minute))
	require.NoError(t, mem.Set(ctx, model.DetailCacheKey(1), model.Book{ID: 1}, time.Minute))
	require.NoError(t, mem.Set(ctx, "sessions:abc", "keep", time.Minute))

	require.NoError(t, svc.PurgeCache(ctx))

	var books []model.Book
	found, _ := mem.Get(ctx, model.CacheKeyList, &books)
	assert.False(t, found)
	found, _ = mem.Get(ctx, model.DetailCacheKey(1), &model.Book{})
	assert.False(t, found)
	var other string
	found, _ = mem.Get(ctx, "sessions:abc", &other)
	assert.True(t, found)
}

func TestBookService_ListIsCachedUntilWrite(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	books, err := svc.ListBooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)
	_, _ = svc.ListBooks(ctx)
	assert.Equal(t, 1, repo.lists)

	created, err := svc.CreateBook(ctx, validRequest("A"))
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)

	books, err = svc.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, 2, repo.lists)
}

func TestBookService_DetailInvalidatedOnUpdate(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	created, err := svc.CreateBook(ctx, validRequest("A"))
	require.NoError(t, err)

	_, err = svc.GetBook(ctx, created.ID)
	require.NoError(t, err)
	_, err = svc.GetBook(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.gets)

	updated, err := svc.UpdateBook(ctx, created.ID, validRequest("B"))
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	got, err := svc.GetBook(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", got.Title)
	assert.Equal(t, 2, repo.gets)
}

func TestBookService_Errors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetBook(ctx, 0)
	assert.ErrorIs(t, err, model.ErrInvalidBookID)

	_, err = svc.GetBook(ctx, 99)
	assert.ErrorIs(t, err, model.ErrBookNotFound)

	_, err = svc.UpdateBook(ctx, 99, validRequest("x"))
	assert.ErrorIs(t, err, model.ErrBookNotFound)

	assert.ErrorIs(t, svc.DeleteBook(ctx, 99), model.ErrBookNotFound)

	_, err = svc.CreateBook(ctx, model.BookRequest{Title: "T"})
	var empty *model.EmptyFieldsError
	assert.True(t, errors.As(err, &empty))
}
