package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
)

// orderRepositoryInMemory — append-only журнал заказов по покупателям.
type orderRepositoryInMemory struct {
	mu         sync.RWMutex
	byCustomer map[int64][]domain.Order
}

// NewOrderRepository возвращает in-memory журнал заказов.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		byCustomer: make(map[int64][]domain.Order),
	}
}

// Append дописывает заказ в журнал покупателя. Запись хранится копией,
// последующие мутации у вызывающего журнал не затрагивают.
func (r *orderRepositoryInMemory) Append(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byCustomer[order.CustomerID] {
		if existing.ID == order.ID {
			return domain.ErrIDConflict
		}
	}

	order.Lines = append([]domain.OrderLine(nil), order.Lines...)
	r.byCustomer[order.CustomerID] = append(r.byCustomer[order.CustomerID], order)
	return nil
}

// Get возвращает заказ покупателя или ErrOrderNotFound.
func (r *orderRepositoryInMemory) Get(customerID, orderID int64) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.byCustomer[customerID] {
		if order.ID == orderID {
			return cloneOrder(order), nil
		}
	}
	return domain.Order{}, domain.ErrOrderNotFound
}

// ListByCustomer возвращает заказы покупателя в порядке коммита.
func (r *orderRepositoryInMemory) ListByCustomer(customerID int64) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := r.byCustomer[customerID]
	result := make([]domain.Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, cloneOrder(order))
	}
	return result, nil
}

func cloneOrder(order domain.Order) domain.Order {
	order.Lines = append([]domain.OrderLine(nil), order.Lines...)
	return order
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
