package domain

// Cart — текущая корзина покупателя: отображение ID книги в запрошенное количество.
// Инвариант: количество в каждой позиции строго положительно; установка
// неположительного количества эквивалентна удалению позиции. Пустая корзина
// и отсутствующая корзина неразличимы для читателей.
type Cart struct {
	CustomerID int64
	Items      map[int64]int32
}

// IsEmpty сообщает, есть ли в корзине хотя бы одна позиция.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ValidateInvariants проверяет, что все позиции корзины имеют положительное количество.
func (c *Cart) ValidateInvariants() []error {
	var errs []error

	for _, qty := range c.Items {
		if qty <= 0 {
			errs = append(errs, ErrCartQtyInvalid)
		}
	}

	return errs
}
