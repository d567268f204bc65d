package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
)

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository создаёт PostgreSQL-реализацию CartRepository.
func NewCartRepository(store *Store) domain.CartRepository {
	return &cartRepository{db: store.DB()}
}

// AddItem увеличивает количество позиции атомарным upsert.
func (r *cartRepository) AddItem(customerID, bookID int64, qty int32) error {
	if qty <= 0 {
		return domain.ErrCartQtyInvalid
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items (customer_id, book_id, qty)
		VALUES ($1, $2, $3)
		ON CONFLICT (customer_id, book_id)
		DO UPDATE SET qty = cart_items.qty + EXCLUDED.qty
	`, customerID, bookID, qty)
	if err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	return nil
}

// SetQuantity устанавливает количество позиции; qty <= 0 удаляет её.
func (r *cartRepository) SetQuantity(customerID, bookID int64, qty int32) error {
	if qty <= 0 {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		if _, err := r.db.ExecContext(ctx, `
			DELETE FROM cart_items WHERE customer_id = $1 AND book_id = $2
		`, customerID, bookID); err != nil {
			return fmt.Errorf("remove cart item: %w", err)
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items (customer_id, book_id, qty)
		VALUES ($1, $2, $3)
		ON CONFLICT (customer_id, book_id)
		DO UPDATE SET qty = EXCLUDED.qty
	`, customerID, bookID, qty)
	if err != nil {
		return fmt.Errorf("set cart quantity: %w", err)
	}
	return nil
}

func (r *cartRepository) RemoveItem(customerID, bookID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items WHERE customer_id = $1 AND book_id = $2
	`, customerID, bookID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	return requireAffected(res, domain.ErrCartItemNotFound)
}

// Items возвращает содержимое корзины; для отсутствующей корзины — пустое
// отображение, никогда не nil.
func (r *cartRepository) Items(customerID int64) (map[int64]int32, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT book_id, qty FROM cart_items WHERE customer_id = $1
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("read cart items: %w", err)
	}
	defer rows.Close()

	items := make(map[int64]int32)
	for rows.Next() {
		var (
			bookID int64
			qty    int32
		)
		if err := rows.Scan(&bookID, &qty); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items[bookID] = qty
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}
	return items, nil
}

func (r *cartRepository) Clear(customerID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items WHERE customer_id = $1
	`, customerID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

var _ domain.CartRepository = (*cartRepository)(nil)
