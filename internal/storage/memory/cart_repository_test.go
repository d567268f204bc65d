package memory_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
	"github.com/vladislavdragonenkov/bookstore/internal/storage/memory"
)

func TestCartRepository_AddAndItems(t *testing.T) {
	repo := memory.NewCartRepository()

	if err := repo.AddItem(1, 10, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := repo.AddItem(1, 10, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	items, err := repo.Items(1)
	if err != nil {
		t.Fatalf("items failed: %v", err)
	}
	if items[10] != 3 {
		t.Fatalf("expected qty 3, got %d", items[10])
	}
}

func TestCartRepository_AddRejectsNonPositiveQty(t *testing.T) {
	repo := memory.NewCartRepository()

	if err := repo.AddItem(1, 10, 0); !errors.Is(err, domain.ErrCartQtyInvalid) {
		t.Fatalf("expected ErrCartQtyInvalid, got %v", err)
	}
	if err := repo.AddItem(1, 10, -5); !errors.Is(err, domain.ErrCartQtyInvalid) {
		t.Fatalf("expected ErrCartQtyInvalid, got %v", err)
	}
}

func TestCartRepository_MissingCartReadsAsEmpty(t *testing.T) {
	repo := memory.NewCartRepository()

	items, err := repo.Items(404)
	if err != nil {
		t.Fatalf("items failed: %v", err)
	}
	if items == nil {
		t.Fatal("items must never be nil")
	}
	if len(items) != 0 {
		t.Fatalf("expected empty mapping, got %v", items)
	}
}

func TestCartRepository_SetQuantity(t *testing.T) {
	repo := memory.NewCartRepository()
	if err := repo.AddItem(1, 10, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if err := repo.SetQuantity(1, 10, 5); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	items, _ := repo.Items(1)
	if items[10] != 5 {
		t.Fatalf("expected qty 5, got %d", items[10])
	}

	// Неположительное количество схлопывается в удаление.
	if err := repo.SetQuantity(1, 10, 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	items, _ = repo.Items(1)
	if _, ok := items[10]; ok {
		t.Fatalf("expected item removed, got %v", items)
	}
}

func TestCartRepository_RemoveItem(t *testing.T) {
	repo := memory.NewCartRepository()

	if err := repo.RemoveItem(1, 10); !errors.Is(err, domain.ErrCartItemNotFound) {
		t.Fatalf("expected ErrCartItemNotFound, got %v", err)
	}

	if err := repo.AddItem(1, 10, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := repo.RemoveItem(1, 10); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if err := repo.RemoveItem(1, 10); !errors.Is(err, domain.ErrCartItemNotFound) {
		t.Fatalf("expected ErrCartItemNotFound after removal, got %v", err)
	}
}

func TestCartRepository_Clear(t *testing.T) {
	repo := memory.NewCartRepository()
	if err := repo.AddItem(1, 10, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := repo.Clear(1); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	items, _ := repo.Items(1)
	if len(items) != 0 {
		t.Fatalf("expected cleared cart, got %v", items)
	}
}

func TestCartRepository_ItemsReturnsCopy(t *testing.T) {
	repo := memory.NewCartRepository()
	if err := repo.AddItem(1, 10, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	items, _ := repo.Items(1)
	items[10] = 999

	fresh, _ := repo.Items(1)
	if fresh[10] != 1 {
		t.Fatalf("mutating the returned mapping must not affect the store, got %d", fresh[10])
	}
}

func TestCartRepository_ConcurrentEditsNotLost(t *testing.T) {
	repo := memory.NewCartRepository()

	const workers = 8
	const perWorker = 100

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if err := repo.AddItem(1, 10, 1); err != nil {
					t.Errorf("add failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	items, _ := repo.Items(1)
	if items[10] != workers*perWorker {
		t.Fatalf("lost updates: qty=%d, want %d", items[10], workers*perWorker)
	}
}
