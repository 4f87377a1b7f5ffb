package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bookit/internal/domains/book/model"
)

type sqliteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) RepositoryInterface {
	return &sqliteRepository{db: db}
}

const sqliteSelectBook = `SELECT book_id, title, author, pub_date, num_pages FROM books`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSQLiteBook(row rowScanner) (model.Book, error) {
	var (
		b     model.Book
		pages sql.NullInt64
	)
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &b.PubDate, &pages); err != nil {
		return model.Book{}, err
	}
	if pages.Valid {
		b.NumPages = model.Pages(int(pages.Int64))
	}
	return b, nil
}

func nullPages(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func (r *sqliteRepository) ListBooks(ctx context.Context) ([]model.Book, error) {
	rows, err := r.db.QueryContext(ctx, sqliteSelectBook+` ORDER BY book_id`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books := make([]model.Book, 0)
	for rows.Next() {
		b, err := scanSQLiteBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return books, nil
}

func (r *sqliteRepository) GetBookByID(ctx context.Context, id int) (*model.Book, error) {
	b, err := scanSQLiteBook(r.db.QueryRowContext(ctx, sqliteSelectBook+` WHERE book_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}
	return &b, nil
}

func (r *sqliteRepository) CreateBook(ctx context.Context, b *model.Book) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO books (title, author, pub_date, num_pages) VALUES (?, ?, ?, ?)`,
		b.Title, b.Author, b.PubDate, nullPages(b.NumPages),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create book: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read book id: %w", err)
	}
	return int(id), nil
}

func (r *sqliteRepository) UpdateBook(ctx context.Context, b *model.Book) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE books SET title = ?, author = ?, pub_date = ?, num_pages = ? WHERE book_id = ?`,
		b.Title, b.Author, b.PubDate, nullPages(b.NumPages), b.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	return requireAffected(result)
}

func (r *sqliteRepository) DeleteBook(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE book_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return model.ErrBookNotFound
	}
	return nil
}
