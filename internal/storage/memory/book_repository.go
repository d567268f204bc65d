package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
)

// bookRepositoryInMemory — in-memory каталог книг и складской леджер.
// Единый mutex на хранилище даёт атомарность TryConsume на масштабе сервиса.
type bookRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[int64]domain.Book
}

// NewBookRepository возвращает in-memory реализацию BookRepository.
func NewBookRepository() domain.BookRepository {
	return &bookRepositoryInMemory{
		items: make(map[int64]domain.Book),
	}
}

// Create сохраняет новую книгу, если ID ещё не занят.
func (r *bookRepositoryInMemory) Create(book domain.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[book.ID]; exists {
		return domain.ErrIDConflict
	}
	r.items[book.ID] = book
	return nil
}

// Get возвращает книгу или BookNotFoundError, если её нет.
func (r *bookRepositoryInMemory) Get(id int64) (domain.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	book, ok := r.items[id]
	if !ok {
		return domain.Book{}, &domain.BookNotFoundError{BookID: id}
	}
	return book, nil
}

// List возвращает все книги каталога, отсортированные по ID.
func (r *bookRepositoryInMemory) List() ([]domain.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Book, 0, len(r.items))
	for _, book := range r.items {
		result = append(result, book)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ListByAuthor возвращает книги автора, отсортированные по ID.
func (r *bookRepositoryInMemory) ListByAuthor(authorID int64) ([]domain.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Book, 0)
	for _, book := range r.items {
		if book.AuthorID == authorID {
			result = append(result, book)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update перезаписывает метаданные книги, сохраняя текущий остаток:
// количество меняется только через TryConsume/Restock.
func (r *bookRepositoryInMemory) Update(book domain.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[book.ID]
	if !ok {
		return &domain.BookNotFoundError{BookID: book.ID}
	}
	book.Stock = current.Stock
	book.CreatedAt = current.CreatedAt
	book.UpdatedAt = time.Now().UTC()
	r.items[book.ID] = book
	return nil
}

// Delete удаляет книгу из каталога.
func (r *bookRepositoryInMemory) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return &domain.BookNotFoundError{BookID: id}
	}
	delete(r.items, id)
	return nil
}

// TryConsume атомарно проверяет и списывает qty единиц. Проверка и декремент
// видны другим вызовам либо целиком до, либо целиком после; при нехватке
// леджер остаётся нетронутым, а фактический остаток возвращается вызывающему.
func (r *bookRepositoryInMemory) TryConsume(id int64, qty int32) (int32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	book, ok := r.items[id]
	if !ok {
		return 0, &domain.BookNotFoundError{BookID: id}
	}
	if qty > book.Stock {
		return book.Stock, &domain.OutOfStockError{BookID: id, Requested: qty, Available: book.Stock}
	}

	book.Stock -= qty
	book.UpdatedAt = time.Now().UTC()
	r.items[id] = book
	return book.Stock, nil
}

// Restock возвращает qty единиц на склад. Кредит для существующей книги
// не может быть отклонён — на этом держится откат частичного оформления.
func (r *bookRepositoryInMemory) Restock(id int64, qty int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	book, ok := r.items[id]
	if !ok {
		return &domain.BookNotFoundError{BookID: id}
	}

	book.Stock += qty
	book.UpdatedAt = time.Now().UTC()
	r.items[id] = book
	return nil
}

var _ domain.BookRepository = (*bookRepositoryInMemory)(nil)
