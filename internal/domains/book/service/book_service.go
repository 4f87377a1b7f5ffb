package service

import (
	"context"
	"fmt"
	"time"

	"bookit/internal/domains/book/model"
	"bookit/internal/domains/book/repository"
	"bookit/pkg/cache"

	"github.com/rs/zerolog/log"
)

// BookService implements ServiceInterface with a read-through cache in front
// of the repository. Every successful write drops the list entry and the
// detail entry of the book it touched.
type BookService struct {
	repo  repository.RepositoryInterface
	cache cache.Cache
	ttl   time.Duration
}

func NewService(repo repository.RepositoryInterface, cache cache.Cache, ttl time.Duration) ServiceInterface {
	return &BookService{repo: repo, cache: cache, ttl: ttl}
}

// ============================================
// READS
// ============================================

func (s *BookService) ListBooks(ctx context.Context) ([]model.Book, error) {
	var books []model.Book
	if s.cacheGet(ctx, model.CacheKeyList, &books) {
		return books, nil
	}

	books, err := s.repo.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books error: %w", err)
	}
	s.cacheSet(ctx, model.CacheKeyList, books)
	return books, nil
}

func (s *BookService) GetBook(ctx context.Context, id int) (*model.Book, error) {
	if id <= 0 {
		return nil, model.ErrInvalidBookID
	}

	key := model.DetailCacheKey(id)
	var b model.Book
	if s.cacheGet(ctx, key, &b) {
		return &b, nil
	}

	found, err := s.repo.GetBookByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, found)
	return found, nil
}

// ============================================
// WRITES
// ============================================

func (s *BookService) CreateBook(ctx context.Context, req model.BookRequest) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	b := req.ToBook(0)
	id, err := s.repo.CreateBook(ctx, &b)
	if err != nil {
		return nil, err
	}
	b.ID = id

	s.invalidate(ctx, id)
	log.Info().Int("book_id", id).Msg("[BOOK] created")
	return &b, nil
}

func (s *BookService) UpdateBook(ctx context.Context, id int, req model.BookRequest) (*model.Book, error) {
	if id <= 0 {
		return nil, model.ErrInvalidBookID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	b := req.ToBook(id)
	if err := s.repo.UpdateBook(ctx, &b); err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	log.Info().Int("book_id", id).Msg("[BOOK] updated")
	return &b, nil
}

func (s *BookService) DeleteBook(ctx context.Context, id int) error {
	if id <= 0 {
		return model.ErrInvalidBookID
	}
	if err := s.repo.DeleteBook(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	log.Info().Int("book_id", id).Msg("[BOOK] deleted")
	return nil
}

// ============================================
// CACHE HELPERS
// ============================================
// Cache failures never fail a request; the database stays the source of truth.

func (s *BookService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("[CACHE] get failed")
		return false
	}
	if !found {
		log.Debug().Str("key", key).Msg("[CACHE] miss")
	}
	return found
}

func (s *BookService) cacheSet(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("[CACHE] set failed")
	}
}

// PurgeCache drops every cached book entry. The server calls it at startup
// because a shared Redis may hold entries written against another database.
func (s *BookService) PurgeCache(ctx context.Context) error {
	if err := s.cache.DeletePattern(ctx, model.CacheKeyPrefix+"*"); err != nil {
		return fmt.Errorf("purge book cache: %w", err)
	}
	return nil
}

func (s *BookService) invalidate(ctx context.Context, id int) {
	if err := s.cache.Delete(ctx, model.CacheKeyList, model.DetailCacheKey(id)); err != nil {
		log.Warn().Err(err).Int("book_id", id).Msg("[CACHE] invalidate failed")
	}
}
