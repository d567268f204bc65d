package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
)

// authorRepositoryInMemory — простая in-memory реализация AuthorRepository.
type authorRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[int64]domain.Author
}

// NewAuthorRepository возвращает in-memory репозиторий авторов.
func NewAuthorRepository() domain.AuthorRepository {
	return &authorRepositoryInMemory{
		items: make(map[int64]domain.Author),
	}
}

// Create сохраняет нового автора, если ID ещё не занят.
func (r *authorRepositoryInMemory) Create(author domain.Author) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[author.ID]; exists {
		return domain.ErrIDConflict
	}
	r.items[author.ID] = author
	return nil
}

// Get возвращает автора или ErrAuthorNotFound, если его нет.
func (r *authorRepositoryInMemory) Get(id int64) (domain.Author, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	author, ok := r.items[id]
	if !ok {
		return domain.Author{}, domain.ErrAuthorNotFound
	}
	return author, nil
}

// List возвращает всех авторов, отсортированных по ID.
func (r *authorRepositoryInMemory) List() ([]domain.Author, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Author, 0, len(r.items))
	for _, author := range r.items {
		result = append(result, author)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update перезаписывает автора.
func (r *authorRepositoryInMemory) Update(author domain.Author) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[author.ID]; !ok {
		return domain.ErrAuthorNotFound
	}
	r.items[author.ID] = author
	return nil
}

// Delete удаляет автора.
func (r *authorRepositoryInMemory) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.ErrAuthorNotFound
	}
	delete(r.items, id)
	return nil
}

var _ domain.AuthorRepository = (*authorRepositoryInMemory)(nil)
