package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
)

func TestIDAllocator_ContinuesAfterRestartIntegration(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)

	authors := NewAuthorRepository(store)
	books := NewBookRepository(store)
	if err := authors.Create(domain.Author{ID: 1, Name: "Автор"}); err != nil {
		t.Fatalf("create author: %v", err)
	}
	now := time.Now().UTC()
	for _, id := range []int64{1, 2, 3} {
		if err := books.Create(domain.Book{ID: id, Title: "Книга", AuthorID: 1, CreatedAt: now, UpdatedAt: now}); err != nil {
			t.Fatalf("create book %d: %v", id, err)
		}
	}

	ids, err := NewIDAllocator(context.Background(), store)
	if err != nil {
		t.Fatalf("new id allocator: %v", err)
	}

	if got := ids.NextID(domain.IDKindBook); got != 4 {
		t.Fatalf("expected next book id 4 after seed, got %d", got)
	}
	if got := ids.NextID(domain.IDKindOrder); got != 1 {
		t.Fatalf("expected first order id 1, got %d", got)
	}
}
