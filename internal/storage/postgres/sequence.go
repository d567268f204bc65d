package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
)

// seededAllocator выдаёт идентификаторы в памяти, стартуя с максимума,
// сохранённого в базе. Так сохраняется монотонность после рестарта без
// обращения к БД на каждый NextID; сервис работает в одном экземпляре,
// что уже заложено в сериализацию оформления.
type seededAllocator struct {
	mu      sync.Mutex
	counter map[domain.IDKind]int64
}

// NewIDAllocator читает текущие максимумы идентификаторов и возвращает
// аллокатор, продолжающий нумерацию с них.
func NewIDAllocator(ctx context.Context, store *Store) (domain.IDAllocator, error) {
	tables := map[domain.IDKind]string{
		domain.IDKindBook:     "books",
		domain.IDKindAuthor:   "authors",
		domain.IDKindCustomer: "customers",
		domain.IDKindOrder:    "orders",
	}

	counter := make(map[domain.IDKind]int64, len(tables))
	for kind, table := range tables {
		max, err := maxID(ctx, store.DB(), table)
		if err != nil {
			return nil, fmt.Errorf("seed %s id counter: %w", kind, err)
		}
		counter[kind] = max
	}

	return &seededAllocator{counter: counter}, nil
}

func maxID(ctx context.Context, db *sql.DB, table string) (int64, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var max int64
	err := db.QueryRowContext(queryCtx, fmt.Sprintf("SELECT COALESCE(MAX(id), 0) FROM %s", table)).Scan(&max)
	if err != nil {
		return 0, err
	}
	return max, nil
}

// NextID выдаёт следующий идентификатор для вида сущности.
func (a *seededAllocator) NextID(kind domain.IDKind) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.counter[kind]++
	return a.counter[kind]
}

var _ domain.IDAllocator = (*seededAllocator)(nil)
