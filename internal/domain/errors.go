package domain

import (
	"errors"
	"fmt"
)

var (
	// Ошибка отсутствующего идентификатора клиента.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствующего имени покупателя.
	ErrCustomerNameRequired = errors.New("customer name is required")
	// Ошибка отсутствующего email покупателя.
	ErrCustomerEmailRequired = errors.New("customer email is required")
	// ErrEmailTaken возвращается при попытке создать покупателя с занятым email.
	ErrEmailTaken = errors.New("customer email already registered")
	// Ошибка отсутствующего названия книги.
	ErrBookTitleRequired = errors.New("book title is required")
	// Ошибка отсутствующего автора книги.
	ErrBookAuthorRequired = errors.New("book author_id is required")
	// Ошибка отрицательной цены книги.
	ErrBookPriceInvalid = errors.New("book price must be non-negative")
	// Ошибка отрицательного остатка книги.
	ErrBookStockNegative = errors.New("book stock must be non-negative")
	// Ошибка отсутствующего имени автора.
	ErrAuthorNameRequired = errors.New("author name is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrOrderLinesRequired = errors.New("order must contain at least one line")
	// Ошибка отрицательной суммы заказа.
	ErrAmountNegative = errors.New("order total must be non-negative")
	// Ошибка при некорректном количестве в позиции заказа (<= 0).
	ErrLineQtyInvalid = errors.New("order line qty must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrLinePriceInvalid = errors.New("order line price must be non-negative")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrAmountMismatch = errors.New("order total does not match lines sum")
	// Ошибка некорректного количества в позиции корзины.
	ErrCartQtyInvalid = errors.New("cart item qty must be greater than zero")

	// ErrCustomerNotFound возвращается, если покупатель не найден.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrAuthorNotFound возвращается, если автор не найден.
	ErrAuthorNotFound = errors.New("author not found")
	// ErrBookNotFound возвращается, если книга не найдена в каталоге.
	ErrBookNotFound = errors.New("book not found")
	// ErrOrderNotFound возвращается, если заказ не найден в журнале.
	ErrOrderNotFound = errors.New("order not found")
	// ErrCartItemNotFound возвращается, если позиция отсутствует в корзине.
	ErrCartItemNotFound = errors.New("cart item not found")
	// ErrEmptyCart — попытка оформить заказ по пустой корзине.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrOutOfStock — запрошенное количество превышает доступный остаток.
	ErrOutOfStock = errors.New("insufficient stock")
	// ErrIDConflict сигнализирует о попытке создать запись с занятым ID.
	ErrIDConflict = errors.New("identifier already in use")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// BookNotFoundError уточняет ErrBookNotFound идентификатором книги,
// чтобы вызывающая сторона могла построить точное сообщение об ошибке.
type BookNotFoundError struct {
	BookID int64
}

func (e *BookNotFoundError) Error() string {
	return fmt.Sprintf("book %d not found", e.BookID)
}

// Is сопоставляет ошибку с сентинелом ErrBookNotFound для errors.Is.
func (e *BookNotFoundError) Is(target error) bool {
	return target == ErrBookNotFound
}

// OutOfStockError уточняет ErrOutOfStock данными о запрошенном и доступном
// количестве на момент атомарной проверки в леджере.
type OutOfStockError struct {
	BookID    int64
	Requested int32
	Available int32
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("book %d out of stock: requested %d, available %d", e.BookID, e.Requested, e.Available)
}

// Is сопоставляет ошибку с сентинелом ErrOutOfStock для errors.Is.
func (e *OutOfStockError) Is(target error) bool {
	return target == ErrOutOfStock
}

// IsNotFound проверяет, относится ли ошибка к семейству "не найдено".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrAuthorNotFound) ||
		errors.Is(err, ErrBookNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrCartItemNotFound)
}
