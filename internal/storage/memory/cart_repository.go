package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
)

// cartRepositoryInMemory хранит корзины покупателей. Общий mutex делает
// редактирования корзины одного покупателя линеаризуемыми между собой:
// конкурентные правки не теряются.
type cartRepositoryInMemory struct {
	mu    sync.RWMutex
	carts map[int64]map[int64]int32
}

// NewCartRepository возвращает in-memory реализацию CartRepository.
func NewCartRepository() domain.CartRepository {
	return &cartRepositoryInMemory{
		carts: make(map[int64]map[int64]int32),
	}
}

// AddItem увеличивает количество позиции, лениво создавая корзину при первом
// добавлении. Неположительное qty отвергается до каких-либо изменений.
func (r *cartRepositoryInMemory) AddItem(customerID, bookID int64, qty int32) error {
	if qty <= 0 {
		return domain.ErrCartQtyInvalid
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[customerID]
	if !ok {
		cart = make(map[int64]int32)
		r.carts[customerID] = cart
	}
	cart[bookID] += qty
	return nil
}

// SetQuantity устанавливает количество позиции. Неположительное значение
// схлопывается в удаление позиции.
func (r *cartRepositoryInMemory) SetQuantity(customerID, bookID int64, qty int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[customerID]
	if !ok {
		if qty <= 0 {
			return nil
		}
		cart = make(map[int64]int32)
		r.carts[customerID] = cart
	}

	if qty <= 0 {
		delete(cart, bookID)
		return nil
	}
	cart[bookID] = qty
	return nil
}

// RemoveItem удаляет позицию из корзины.
func (r *cartRepositoryInMemory) RemoveItem(customerID, bookID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[customerID]
	if !ok {
		return domain.ErrCartItemNotFound
	}
	if _, ok := cart[bookID]; !ok {
		return domain.ErrCartItemNotFound
	}
	delete(cart, bookID)
	return nil
}

// Items возвращает копию корзины. Отсутствующая корзина неотличима от пустой:
// читатель всегда получает не-nil отображение.
func (r *cartRepositoryInMemory) Items(customerID int64) (map[int64]int32, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[int64]int32, len(r.carts[customerID]))
	for bookID, qty := range r.carts[customerID] {
		result[bookID] = qty
	}
	return result, nil
}

// Clear полностью очищает корзину покупателя.
func (r *cartRepositoryInMemory) Clear(customerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, customerID)
	return nil
}

var _ domain.CartRepository = (*cartRepositoryInMemory)(nil)
