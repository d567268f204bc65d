package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
)

// sequenceAllocator выдаёт монотонные идентификаторы по виду сущности.
// Счётчики независимы: удаление сущности не освобождает её идентификатор.
type sequenceAllocator struct {
	mu   sync.Mutex
	next map[domain.IDKind]int64
}

// NewIDAllocator возвращает in-memory реализацию IDAllocator.
// Для каждого вида сущности первый выданный идентификатор равен 1.
func NewIDAllocator() domain.IDAllocator {
	return &sequenceAllocator{
		next: make(map[domain.IDKind]int64),
	}
}

// NextID атомарно выдаёт следующий идентификатор для вида kind.
// Два конкурентных вызова для одного вида никогда не получат одно значение.
func (a *sequenceAllocator) NextID(kind domain.IDKind) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.next[kind]++
	return a.next[kind]
}

var _ domain.IDAllocator = (*sequenceAllocator)(nil)
