package repository

import (
	"context"

	"bookit/internal/domains/book/model"
)

// RepositoryInterface is the data access contract for the books table.
// Lookups and writes on a missing id return model.ErrBookNotFound.
type RepositoryInterface interface {
	ListBooks(ctx context.Context) ([]model.Book, error)
	GetBookByID(ctx context.Context, id int) (*model.Book, error)
	// CreateBook inserts b and returns the id the database assigned.
	CreateBook(ctx context.Context, b *model.Book) (int, error)
	UpdateBook(ctx context.Context, b *model.Book) error
	DeleteBook(ctx context.Context, id int) error
}
