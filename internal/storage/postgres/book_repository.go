package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
)

type bookRepository struct {
	db *sql.DB
}

// NewBookRepository создаёт PostgreSQL-реализацию BookRepository.
func NewBookRepository(store *Store) domain.BookRepository {
	return &bookRepository{db: store.DB()}
}

func (r *bookRepository) Create(book domain.Book) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO books (
			id, title, author_id, isbn, publication_year, price_minor, stock, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		book.ID, book.Title, book.AuthorID, book.ISBN, book.PublicationYear,
		book.PriceMinor, book.Stock, book.CreatedAt, book.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrIDConflict
		}
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

func (r *bookRepository) Get(id int64) (domain.Book, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	book, err := scanBook(r.db.QueryRowContext(ctx, `
		SELECT id, title, author_id, isbn, publication_year, price_minor, stock, created_at, updated_at
		FROM books
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Book{}, &domain.BookNotFoundError{BookID: id}
		}
		return domain.Book{}, fmt.Errorf("select book: %w", err)
	}
	return book, nil
}

func (r *bookRepository) List() ([]domain.Book, error) {
	return r.list(`
		SELECT id, title, author_id, isbn, publication_year, price_minor, stock, created_at, updated_at
		FROM books
		ORDER BY id
	`)
}

func (r *bookRepository) ListByAuthor(authorID int64) ([]domain.Book, error) {
	return r.list(`
		SELECT id, title, author_id, isbn, publication_year, price_minor, stock, created_at, updated_at
		FROM books
		WHERE author_id = $1
		ORDER BY id
	`, authorID)
}

func (r *bookRepository) list(query string, args ...interface{}) ([]domain.Book, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books := make([]domain.Book, 0)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book row: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate book rows: %w", err)
	}
	return books, nil
}

// Update перезаписывает метаданные книги. Остаток намеренно не входит
// в UPDATE: количество меняется только через TryConsume/Restock.
func (r *bookRepository) Update(book domain.Book) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE books
		SET title = $2, author_id = $3, isbn = $4, publication_year = $5,
		    price_minor = $6, updated_at = $7
		WHERE id = $1
	`, book.ID, book.Title, book.AuthorID, book.ISBN, book.PublicationYear,
		book.PriceMinor, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	return requireAffected(res, &domain.BookNotFoundError{BookID: book.ID})
}

func (r *bookRepository) Delete(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return requireAffected(res, &domain.BookNotFoundError{BookID: id})
}

// TryConsume проверяет и списывает qty одним условным UPDATE: конкурентные
// вызовы сериализуются блокировкой строки, проверка и декремент неразделимы.
func (r *bookRepository) TryConsume(id int64, qty int32) (int32, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var remaining int32
	err := r.db.QueryRowContext(ctx, `
		UPDATE books
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
		RETURNING stock
	`, id, qty).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("consume stock: %w", err)
	}

	// UPDATE не затронул строк: книги нет либо остатка не хватает.
	var available int32
	err = r.db.QueryRowContext(ctx, `SELECT stock FROM books WHERE id = $1`, id).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &domain.BookNotFoundError{BookID: id}
	}
	if err != nil {
		return 0, fmt.Errorf("read stock after failed consume: %w", err)
	}
	return available, &domain.OutOfStockError{BookID: id, Requested: qty, Available: available}
}

func (r *bookRepository) Restock(id int64, qty int32) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE books
		SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1
	`, id, qty)
	if err != nil {
		return fmt.Errorf("restock: %w", err)
	}
	return requireAffected(res, &domain.BookNotFoundError{BookID: id})
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBook(row rowScanner) (domain.Book, error) {
	var book domain.Book
	err := row.Scan(
		&book.ID, &book.Title, &book.AuthorID, &book.ISBN, &book.PublicationYear,
		&book.PriceMinor, &book.Stock, &book.CreatedAt, &book.UpdatedAt,
	)
	return book, err
}

func requireAffected(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

var _ domain.BookRepository = (*bookRepository)(nil)
