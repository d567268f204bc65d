package domain

import "time"

// OrderLine представляет одну позицию оформленного заказа.
type OrderLine struct {
	// BookID — идентификатор книги из каталога.
	BookID int64
	// Qty — количество единиц, списанных со склада.
	Qty int32
	// PriceMinor — цена за единицу, зафиксированная в момент списания.
	PriceMinor int64
}

// Order агрегирует оформленный заказ. После записи в журнал заказ неизменяем:
// операций обновления или удаления для заказов не существует.
type Order struct {
	ID         int64
	CustomerID int64
	// Lines отсортированы по возрастанию BookID — в порядке списания со склада.
	Lines []OrderLine
	// TotalMinor — сумма qty * price по всем позициям на момент коммита.
	TotalMinor int64
	CreatedAt  time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID <= 0 {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Lines) == 0 {
		errs = append(errs, ErrOrderLinesRequired)
	}
	if o.TotalMinor < 0 {
		errs = append(errs, ErrAmountNegative)
	}

	// Сверяем сумму заказа с суммой позиций: qty * price.
	var calc int64
	for _, line := range o.Lines {
		if line.Qty <= 0 {
			errs = append(errs, ErrLineQtyInvalid)
		}
		if line.PriceMinor < 0 {
			errs = append(errs, ErrLinePriceInvalid)
		}
		calc += int64(line.Qty) * line.PriceMinor
	}
	if calc != o.TotalMinor {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}
