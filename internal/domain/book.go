package domain

import "time"

// Book описывает книгу каталога вместе с её складскими полями.
// Stock — авторитетный остаток; мутируется только через BookRepository
// (TryConsume/Restock), у движка оформления нет собственной копии.
type Book struct {
	ID              int64
	Title           string
	AuthorID        int64
	ISBN            string
	PublicationYear int
	// PriceMinor — цена за единицу в минимальных денежных единицах.
	PriceMinor int64
	// Stock — доступное количество на складе, всегда >= 0.
	Stock     int32
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateInvariants проверяет базовые инварианты книги и возвращает список замечаний.
func (b *Book) ValidateInvariants() []error {
	var errs []error

	if b.Title == "" {
		errs = append(errs, ErrBookTitleRequired)
	}
	if b.AuthorID <= 0 {
		errs = append(errs, ErrBookAuthorRequired)
	}
	if b.PriceMinor < 0 {
		errs = append(errs, ErrBookPriceInvalid)
	}
	if b.Stock < 0 {
		errs = append(errs, ErrBookStockNegative)
	}

	return errs
}
