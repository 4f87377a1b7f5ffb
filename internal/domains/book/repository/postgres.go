package repository

import (
	"context"
	"errors"
	"fmt"

	"bookit/internal/domains/book/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const pgSelectBook = `
	SELECT book_id, title, author, to_char(pub_date, 'YYYY-MM-DD'), num_pages
	FROM books`

func (r *postgresRepository) ListBooks(ctx context.Context) ([]model.Book, error) {
	rows, err := r.pool.Query(ctx, pgSelectBook+` ORDER BY book_id`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books := make([]model.Book, 0)
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.PubDate, &b.NumPages); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return books, nil
}

func (r *postgresRepository) GetBookByID(ctx context.Context, id int) (*model.Book, error) {
	var b model.Book
	err := r.pool.QueryRow(ctx, pgSelectBook+` WHERE book_id = $1`, id).
		Scan(&b.ID, &b.Title, &b.Author, &b.PubDate, &b.NumPages)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}
	return &b, nil
}

func (r *postgresRepository) CreateBook(ctx context.Context, b *model.Book) (int, error) {
	var id int
	err := r.pool.QueryRow(ctx, `
		INSERT INTO books (title, author, pub_date, num_pages)
		VALUES ($1, $2, $3::date, $4)
		RETURNING book_id`,
		b.Title, b.Author, b.PubDate, b.NumPages,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create book: %w", err)
	}
	return id, nil
}

func (r *postgresRepository) UpdateBook(ctx context.Context, b *model.Book) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE books
		SET title = $1, author = $2, pub_date = $3::date, num_pages = $4
		WHERE book_id = $5`,
		b.Title, b.Author, b.PubDate, b.NumPages, b.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

func (r *postgresRepository) DeleteBook(ctx context.Context, id int) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM books WHERE book_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}
