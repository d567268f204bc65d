package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
)

const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"
	outboxStatusFailed  = "failed"
)

type outboxEntry struct {
	msg       domain.OutboxMessage
	status    string
	attempts  int
	createdAt time.Time
	updatedAt time.Time
}

// outboxQueue — in-memory transactional outbox. Записи хранятся в порядке
// постановки, PullPending отдаёт их FIFO, как и SQL-реализация.
type outboxQueue struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*outboxEntry
}

// NewOutboxRepository создаёт in-memory реализацию outbox.
func NewOutboxRepository() domain.OutboxRepository {
	return &outboxQueue{entries: make(map[string]*outboxEntry)}
}

// Enqueue сохраняет событие со статусом `pending` и возвращает его идентификатор.
func (q *outboxQueue) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	q.entries[msg.ID] = &outboxEntry{
		msg:       msg,
		status:    outboxStatusPending,
		createdAt: now,
		updatedAt: now,
	}
	q.order = append(q.order, msg.ID)
	return msg, nil
}

// PullPending возвращает до limit pending-сообщений в порядке постановки.
func (q *outboxQueue) PullPending(limit int) ([]domain.OutboxMessage, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	batch := make([]domain.OutboxMessage, 0, limit)
	for _, id := range q.order {
		entry := q.entries[id]
		if entry.status != outboxStatusPending {
			continue
		}
		batch = append(batch, entry.msg)
		if len(batch) == limit {
			break
		}
	}
	return batch, nil
}

// Stats возвращает размер backlog и время самой старой pending-записи.
func (q *outboxQueue) Stats() (domain.OutboxStats, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	var stats domain.OutboxStats
	for _, id := range q.order {
		entry := q.entries[id]
		if entry.status != outboxStatusPending {
			continue
		}
		if stats.PendingCount == 0 {
			// первый pending в FIFO-порядке и есть самый старый
			stats.OldestPendingAt = entry.createdAt
		}
		stats.PendingCount++
	}
	return stats, nil
}

// MarkSent фиксирует успешную публикацию.
func (q *outboxQueue) MarkSent(id string) error {
	return q.transition(id, outboxStatusSent)
}

// MarkFailed фиксирует исчерпание попыток публикации.
func (q *outboxQueue) MarkFailed(id string) error {
	return q.transition(id, outboxStatusFailed)
}

func (q *outboxQueue) transition(id, status string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry, ok := q.entries[id]
	if !ok {
		return domain.ErrOutboxPublish
	}
	entry.status = status
	entry.attempts++
	entry.updatedAt = time.Now().UTC()
	return nil
}

var _ domain.OutboxRepository = (*outboxQueue)(nil)
