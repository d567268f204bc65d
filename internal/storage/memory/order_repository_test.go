package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
	"github.com/vladislavdragonenkov/bookstore/internal/storage/memory"
)

func newOrder(id, customerID int64) domain.Order {
	return domain.Order{
		ID:         id,
		CustomerID: customerID,
		Lines: []domain.OrderLine{
			{BookID: 1, Qty: 2, PriceMinor: 500},
		},
		TotalMinor: 1000,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestOrderRepository_AppendGet(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder(1, 7)

	if err := repo.Append(order); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	stored, err := repo.Get(7, 1)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.TotalMinor != 1000 || len(stored.Lines) != 1 {
		t.Fatalf("unexpected stored order: %+v", stored)
	}

	if _, err := repo.Get(7, 42); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	if _, err := repo.Get(8, 1); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("order must not be visible under another customer, got %v", err)
	}
}

func TestOrderRepository_AppendRejectsDuplicateID(t *testing.T) {
	repo := memory.NewOrderRepository()
	if err := repo.Append(newOrder(1, 7)); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := repo.Append(newOrder(1, 7)); !errors.Is(err, domain.ErrIDConflict) {
		t.Fatalf("expected ErrIDConflict, got %v", err)
	}
}

func TestOrderRepository_ListByCustomerCommitOrder(t *testing.T) {
	repo := memory.NewOrderRepository()
	for id := int64(1); id <= 3; id++ {
		if err := repo.Append(newOrder(id, 7)); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	orders, err := repo.ListByCustomer(7)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(orders))
	}
	for i, order := range orders {
		if order.ID != int64(i+1) {
			t.Fatalf("orders out of commit order: %+v", orders)
		}
	}

	empty, err := repo.ListByCustomer(99)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no orders, got %v", empty)
	}
}

func TestOrderRepository_StoredOrderIsImmutable(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder(1, 7)
	if err := repo.Append(order); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	// Мутация у вызывающего не должна протечь в журнал.
	order.Lines[0].Qty = 99

	stored, _ := repo.Get(7, 1)
	if stored.Lines[0].Qty != 2 {
		t.Fatalf("journal entry mutated externally: %+v", stored.Lines)
	}

	stored.Lines[0].Qty = 50
	fresh, _ := repo.Get(7, 1)
	if fresh.Lines[0].Qty != 2 {
		t.Fatalf("journal entry mutated through reader copy: %+v", fresh.Lines)
	}
}
