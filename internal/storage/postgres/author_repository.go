package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
)

type authorRepository struct {
	db *sql.DB
}

// NewAuthorRepository создаёт PostgreSQL-реализацию AuthorRepository.
func NewAuthorRepository(store *Store) domain.AuthorRepository {
	return &authorRepository{db: store.DB()}
}

func (r *authorRepository) Create(author domain.Author) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO authors (id, name, biography) VALUES ($1,$2,$3)
	`, author.ID, author.Name, author.Biography)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrIDConflict
		}
		return fmt.Errorf("insert author: %w", err)
	}
	return nil
}

func (r *authorRepository) Get(id int64) (domain.Author, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var author domain.Author
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, biography FROM authors WHERE id = $1
	`, id).Scan(&author.ID, &author.Name, &author.Biography)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Author{}, domain.ErrAuthorNotFound
		}
		return domain.Author{}, fmt.Errorf("select author: %w", err)
	}
	return author, nil
}

func (r *authorRepository) List() ([]domain.Author, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, biography FROM authors ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	defer rows.Close()

	authors := make([]domain.Author, 0)
	for rows.Next() {
		var author domain.Author
		if err := rows.Scan(&author.ID, &author.Name, &author.Biography); err != nil {
			return nil, fmt.Errorf("scan author row: %w", err)
		}
		authors = append(authors, author)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate author rows: %w", err)
	}
	return authors, nil
}

func (r *authorRepository) Update(author domain.Author) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE authors SET name = $2, biography = $3 WHERE id = $1
	`, author.ID, author.Name, author.Biography)
	if err != nil {
		return fmt.Errorf("update author: %w", err)
	}
	return requireAffected(res, domain.ErrAuthorNotFound)
}

func (r *authorRepository) Delete(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete author: %w", err)
	}
	return requireAffected(res, domain.ErrAuthorNotFound)
}

var _ domain.AuthorRepository = (*authorRepository)(nil)
