package checkout

import (
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
	"github.com/vladislavdragonenkov/bookstore/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/bookstore/internal/metrics"
)

// Engine описывает интерфейс движка оформления заказов.
type Engine interface {
	// Checkout конвертирует корзину покупателя в зафиксированный заказ.
	// Операция атомарна: любая ошибка оставляет леджер, корзину и журнал
	// заказов ровно в том состоянии, что до вызова.
	Checkout(customerID int64) (domain.Order, error)
}

// engine реализует последовательность оформления: списание позиций в
// фиксированном порядке → запись заказа → очистка корзины, с откатом
// уже списанного при любой ошибке.
type engine struct {
	books     domain.BookRepository
	carts     domain.CartRepository
	orders    domain.OrderRepository
	customers domain.CustomerDirectory
	ids       domain.IDAllocator
	outbox    domain.OutboxRepository // опциональный transactional outbox
	logger    *log.Entry
	metrics   *metrics.CheckoutMetrics

	// mu защищает inFlight; сами пер-клиентские мьютексы сериализуют
	// оформление одной и той же корзины, не блокируя других покупателей.
	mu       sync.Mutex
	inFlight map[int64]*sync.Mutex
}

// NewEngine создаёт рабочий экземпляр движка оформления.
func NewEngine(
	books domain.BookRepository,
	carts domain.CartRepository,
	orders domain.OrderRepository,
	customers domain.CustomerDirectory,
	ids domain.IDAllocator,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) Engine {
	if logger == nil {
		logger = log.WithField("component", "checkout")
	}
	return &engine{
		books:     books,
		carts:     carts,
		orders:    orders,
		customers: customers,
		ids:       ids,
		outbox:    outbox,
		logger:    logger,
		metrics:   metrics.NewCheckoutMetrics(),
		inFlight:  make(map[int64]*sync.Mutex),
	}
}

// NewEngineWithoutMetrics создаёт движок без метрик (для тестов).
func NewEngineWithoutMetrics(
	books domain.BookRepository,
	carts domain.CartRepository,
	orders domain.OrderRepository,
	customers domain.CustomerDirectory,
	ids domain.IDAllocator,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) Engine {
	if logger == nil {
		logger = log.WithField("component", "checkout")
	}
	return &engine{
		books:     books,
		carts:     carts,
		orders:    orders,
		customers: customers,
		ids:       ids,
		outbox:    outbox,
		logger:    logger,
		inFlight:  make(map[int64]*sync.Mutex),
	}
}

// Checkout выполняет оформление заказа для покупателя.
func (e *engine) Checkout(customerID int64) (domain.Order, error) {
	start := time.Now()
	if e.metrics != nil {
		e.metrics.RecordCheckoutStarted()
	}
	defer func() {
		if e.metrics != nil {
			e.metrics.RecordCheckoutFinished()
			e.metrics.RecordCheckoutDuration(time.Since(start))
		}
	}()

	// Одновременно допускается одно оформление на покупателя: повторный
	// вызов с тем же ID не может потратить одну корзину дважды.
	lock := e.customerLock(customerID)
	lock.Lock()
	defer lock.Unlock()

	if !e.customers.Exists(customerID) {
		return domain.Order{}, e.fail(customerID, "customer_not_found", domain.ErrCustomerNotFound)
	}

	items, err := e.carts.Items(customerID)
	if err != nil {
		return domain.Order{}, e.fail(customerID, "cart_read", err)
	}
	cart := domain.Cart{CustomerID: customerID, Items: items}
	if cart.IsEmpty() {
		return domain.Order{}, e.fail(customerID, "empty_cart", domain.ErrEmptyCart)
	}
	if errs := cart.ValidateInvariants(); len(errs) > 0 {
		return domain.Order{}, e.fail(customerID, "cart_invalid", errs[0])
	}

	// Позиции обрабатываются по возрастанию ID книги: результат
	// детерминирован, а частичные состояния при сбое предсказуемы.
	bookIDs := make([]int64, 0, len(items))
	for bookID := range items {
		bookIDs = append(bookIDs, bookID)
	}
	sort.Slice(bookIDs, func(i, j int) bool { return bookIDs[i] < bookIDs[j] })

	lines := make([]domain.OrderLine, 0, len(items))
	remaining := make([]int32, 0, len(items))
	var totalMinor int64
	var unitsSold int32

	for _, bookID := range bookIDs {
		qty := items[bookID]

		book, err := e.books.Get(bookID)
		if err != nil {
			e.rollback(customerID, lines)
			return domain.Order{}, e.fail(customerID, "book_not_found", err)
		}

		left, err := e.books.TryConsume(bookID, qty)
		if err != nil {
			e.rollback(customerID, lines)
			reason := "out_of_stock"
			if errors.Is(err, domain.ErrBookNotFound) {
				reason = "book_not_found"
			}
			return domain.Order{}, e.fail(customerID, reason, err)
		}

		lines = append(lines, domain.OrderLine{
			BookID:     bookID,
			Qty:        qty,
			PriceMinor: book.PriceMinor,
		})
		remaining = append(remaining, left)
		totalMinor += int64(qty) * book.PriceMinor
		unitsSold += qty
	}

	order := domain.Order{
		ID:         e.ids.NextID(domain.IDKindOrder),
		CustomerID: customerID,
		Lines:      lines,
		TotalMinor: totalMinor,
		CreatedAt:  time.Now().UTC(),
	}

	if err := e.orders.Append(order); err != nil {
		// Конфликт ID в append-only журнале — нарушение инварианта
		// аллокатора, а не ожидаемый бизнес-случай.
		e.rollback(customerID, lines)
		e.logger.WithError(err).WithField("order_id", order.ID).Error("failed to append order")
		return domain.Order{}, e.fail(customerID, "journal_append", err)
	}

	if err := e.carts.Clear(customerID); err != nil {
		e.logger.WithError(err).WithField("customer_id", customerID).Error("failed to clear cart after commit")
	}

	e.publishOrderCreated(order)
	e.publishStockConsumed(order.Lines, remaining)

	if e.metrics != nil {
		e.metrics.RecordCheckoutCommitted(unitsSold)
	}
	e.logger.WithFields(log.Fields{
		"customer_id": customerID,
		"order_id":    order.ID,
		"lines":       len(order.Lines),
		"total_minor": order.TotalMinor,
	}).Info("checkout committed")

	return order, nil
}

// rollback возвращает на склад всё, что уже списано в этой попытке, в
// обратном порядке. Кредит остатка не может быть отклонён; отказ здесь —
// нарушение инварианта леджера.
func (e *engine) rollback(customerID int64, consumed []domain.OrderLine) {
	if len(consumed) == 0 {
		return
	}
	if e.metrics != nil {
		e.metrics.RecordRollback()
	}

	for i := len(consumed) - 1; i >= 0; i-- {
		line := consumed[i]
		if err := e.books.Restock(line.BookID, line.Qty); err != nil {
			e.logger.WithError(err).WithFields(log.Fields{
				"customer_id": customerID,
				"book_id":     line.BookID,
				"qty":         line.Qty,
			}).Error("rollback restock failed, ledger invariant violated")
		}
	}
}

func (e *engine) fail(customerID int64, reason string, err error) error {
	if e.metrics != nil {
		e.metrics.RecordCheckoutFailed(reason)
	}
	e.logger.WithError(err).WithFields(log.Fields{
		"customer_id": customerID,
		"reason":      reason,
	}).Warn("checkout failed")
	return err
}

// publishOrderCreated кладёт событие заказа в outbox; публикацию наружу
// выполняет отдельный worker.
func (e *engine) publishOrderCreated(order domain.Order) {
	if e.outbox == nil {
		return
	}

	event := kafka.NewOrderEvent(kafka.EventTypeOrderCreated, order.ID, order.CustomerID, order.TotalMinor, map[string]interface{}{
		"lines": len(order.Lines),
	})
	payload, err := json.Marshal(event)
	if err != nil {
		e.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to marshal order event")
		return
	}

	if _, err := e.outbox.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   strconv.FormatInt(order.ID, 10),
		EventType:     string(kafka.EventTypeOrderCreated),
		Payload:       payload,
	}); err != nil {
		e.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to enqueue order event")
	}
}

// publishStockConsumed кладёт по событию списания на каждую позицию заказа.
func (e *engine) publishStockConsumed(lines []domain.OrderLine, remaining []int32) {
	if e.outbox == nil {
		return
	}

	for i, line := range lines {
		event := kafka.NewStockEvent(kafka.EventTypeStockConsumed, line.BookID, line.Qty, remaining[i])
		payload, err := json.Marshal(event)
		if err != nil {
			e.logger.WithError(err).WithField("book_id", line.BookID).Warn("failed to marshal stock event")
			continue
		}

		if _, err := e.outbox.Enqueue(domain.OutboxMessage{
			AggregateType: "stock",
			AggregateID:   strconv.FormatInt(line.BookID, 10),
			EventType:     string(kafka.EventTypeStockConsumed),
			Payload:       payload,
		}); err != nil {
			e.logger.WithError(err).WithField("book_id", line.BookID).Warn("failed to enqueue stock event")
		}
	}
}

func (e *engine) customerLock(customerID int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.inFlight[customerID]
	if !ok {
		lock = &sync.Mutex{}
		e.inFlight[customerID] = lock
	}
	return lock
}
