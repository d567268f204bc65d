package postgres

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
)

func seedBookForIntegrationTest(t *testing.T, store *Store, id int64, stock int32) {
	t.Helper()

	authors := NewAuthorRepository(store)
	if err := authors.Create(domain.Author{ID: id, Name: "Автор"}); err != nil {
		t.Fatalf("create author: %v", err)
	}

	books := NewBookRepository(store)
	now := time.Now().UTC()
	if err := books.Create(domain.Book{
		ID:         id,
		Title:      "Книга",
		AuthorID:   id,
		PriceMinor: 1000,
		Stock:      stock,
		CreatedAt:  now,
		UpdatedAt:  now,
	}); err != nil {
		t.Fatalf("create book: %v", err)
	}
}

func TestBookRepository_TryConsumeIntegration(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedBookForIntegrationTest(t, store, 1, 5)
	books := NewBookRepository(store)

	remaining, err := books.TryConsume(1, 3)
	if err != nil {
		t.Fatalf("consume 3 of 5: %v", err)
	}
	if remaining != 2 {
		t.Fatalf("expected remaining 2, got %d", remaining)
	}

	available, err := books.TryConsume(1, 3)
	if !errors.Is(err, domain.ErrOutOfStock) {
		t.Fatalf("expected out of stock, got %v", err)
	}
	if available != 2 {
		t.Fatalf("failed consume must report actual stock 2, got %d", available)
	}

	if err := books.Restock(1, 3); err != nil {
		t.Fatalf("restock: %v", err)
	}
	book, err := books.Get(1)
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if book.Stock != 5 {
		t.Fatalf("expected stock back to 5, got %d", book.Stock)
	}
}

func TestBookRepository_TryConsumeUnknownBookIntegration(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	books := NewBookRepository(store)

	if _, err := books.TryConsume(404, 1); !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("expected book not found, got %v", err)
	}
}

func TestBookRepository_ConcurrentConsumeNeverOversellsIntegration(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedBookForIntegrationTest(t, store, 1, 50)
	books := NewBookRepository(store)

	const workers = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		consumed int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if _, err := books.TryConsume(1, 1); err == nil {
					mu.Lock()
					consumed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	book, err := books.Get(1)
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if book.Stock < 0 {
		t.Fatalf("stock went negative: %d", book.Stock)
	}
	if consumed+book.Stock != 50 {
		t.Fatalf("conservation violated: consumed %d + left %d != 50", consumed, book.Stock)
	}
}

func TestBookRepository_UpdateKeepsStockIntegration(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedBookForIntegrationTest(t, store, 1, 7)
	books := NewBookRepository(store)

	if err := books.Update(domain.Book{
		ID:         1,
		Title:      "Новое издание",
		AuthorID:   1,
		PriceMinor: 2000,
		Stock:      999,
	}); err != nil {
		t.Fatalf("update book: %v", err)
	}

	book, err := books.Get(1)
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if book.Stock != 7 {
		t.Fatalf("update must not change stock: got %d", book.Stock)
	}
	if book.Title != "Новое издание" {
		t.Fatalf("title not updated: %q", book.Title)
	}
}
