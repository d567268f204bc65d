package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
)

// customerRepositoryInMemory хранит покупателей и индекс email -> ID.
type customerRepositoryInMemory struct {
	mu      sync.RWMutex
	items   map[int64]domain.Customer
	byEmail map[string]int64
}

// NewCustomerRepository возвращает in-memory репозиторий покупателей.
func NewCustomerRepository() domain.CustomerRepository {
	return &customerRepositoryInMemory{
		items:   make(map[int64]domain.Customer),
		byEmail: make(map[string]int64),
	}
}

// Create сохраняет покупателя, проверяя уникальность email.
func (r *customerRepositoryInMemory) Create(customer domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[customer.ID]; exists {
		return domain.ErrIDConflict
	}
	email := normalizeEmail(customer.Email)
	if _, taken := r.byEmail[email]; taken {
		return domain.ErrEmailTaken
	}

	r.items[customer.ID] = customer
	r.byEmail[email] = customer.ID
	return nil
}

// Get возвращает покупателя или ErrCustomerNotFound, если его нет.
func (r *customerRepositoryInMemory) Get(id int64) (domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.items[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return customer, nil
}

// List возвращает всех покупателей, отсортированных по ID.
func (r *customerRepositoryInMemory) List() ([]domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Customer, 0, len(r.items))
	for _, customer := range r.items {
		result = append(result, customer)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update перезаписывает покупателя, поддерживая индекс email.
func (r *customerRepositoryInMemory) Update(customer domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[customer.ID]
	if !ok {
		return domain.ErrCustomerNotFound
	}

	newEmail := normalizeEmail(customer.Email)
	oldEmail := normalizeEmail(current.Email)
	if newEmail != oldEmail {
		if owner, taken := r.byEmail[newEmail]; taken && owner != customer.ID {
			return domain.ErrEmailTaken
		}
		delete(r.byEmail, oldEmail)
		r.byEmail[newEmail] = customer.ID
	}

	r.items[customer.ID] = customer
	return nil
}

// Delete удаляет покупателя и его email из индекса.
func (r *customerRepositoryInMemory) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	customer, ok := r.items[id]
	if !ok {
		return domain.ErrCustomerNotFound
	}
	delete(r.byEmail, normalizeEmail(customer.Email))
	delete(r.items, id)
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ domain.CustomerRepository = (*customerRepositoryInMemory)(nil)
