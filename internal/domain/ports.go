package domain

import "time"

// IDKind перечисляет виды сущностей с собственными счётчиками идентификаторов.
type IDKind string

const (
	IDKindBook     IDKind = "book"
	IDKindAuthor   IDKind = "author"
	IDKindCustomer IDKind = "customer"
	IDKindOrder    IDKind = "order"
)

// IDAllocator выдаёт уникальные, строго возрастающие идентификаторы по виду
// сущности, начиная с 1. Идентификаторы не переиспользуются даже после
// удаления сущности; выдача безопасна при конкурентных вызовах.
type IDAllocator interface {
	NextID(kind IDKind) int64
}

// CustomerDirectory — проверка существования покупателя, используемая движком
// оформления на первом шаге. На практике реализуется CustomerRepository.
type CustomerDirectory interface {
	Exists(customerID int64) bool
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
