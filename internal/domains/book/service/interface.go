package service

import (
	"context"

	"bookit/internal/domains/book/model"
)

// ServiceInterface is the business logic behind the /books endpoints.
type ServiceInterface interface {
	ListBooks(ctx context.Context) ([]model.Book, error)
	GetBook(ctx context.Context, id int) (*model.Book, error)
	CreateBook(ctx context.Context, req model.BookRequest) (*model.Book, error)
	UpdateBook(ctx context.Context, id int, req model.BookRequest) (*model.Book, error)
	DeleteBook(ctx context.Context, id int) error
	// PurgeCache drops every cached book entry.
	PurgeCache(ctx context.Context) error
}
