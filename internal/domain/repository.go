package domain

// BookRepository совмещает каталог книг и складской леджер: метаданные и
// остаток живут в одной записи, все изменения количества идут через
// единственный атомарный путь TryConsume/Restock.
type BookRepository interface {
	// Create сохраняет новую книгу. Возвращает ошибку, если ID уже занят.
	Create(book Book) error
	// Get возвращает книгу по идентификатору или ErrBookNotFound.
	Get(id int64) (Book, error)
	// List возвращает все книги каталога, отсортированные по ID.
	List() ([]Book, error)
	// ListByAuthor возвращает книги автора, отсортированные по ID.
	ListByAuthor(authorID int64) ([]Book, error)
	// Update перезаписывает метаданные книги (остаток не трогает).
	Update(book Book) error
	// Delete удаляет книгу из каталога.
	Delete(id int64) error
	// TryConsume атомарно проверяет qty <= Stock и списывает qty одной
	// неделимой операцией. При нехватке возвращает фактический остаток
	// и ErrOutOfStock, не меняя леджер; при отсутствии книги — ErrBookNotFound.
	TryConsume(id int64, qty int32) (available int32, err error)
	// Restock возвращает qty единиц на склад. Кредит остатка всегда валиден:
	// отказ невозможен для существующей книги.
	Restock(id int64, qty int32) error
}

// AuthorRepository описывает требования к хранилищу авторов.
type AuthorRepository interface {
	Create(author Author) error
	// Get возвращает автора по идентификатору или ErrAuthorNotFound.
	Get(id int64) (Author, error)
	List() ([]Author, error)
	Update(author Author) error
	Delete(id int64) error
}

// CustomerRepository описывает требования к хранилищу покупателей.
// Email уникален в пределах хранилища.
type CustomerRepository interface {
	// Create сохраняет покупателя; ErrEmailTaken при конфликте email.
	Create(customer Customer) error
	// Get возвращает покупателя по идентификатору или ErrCustomerNotFound.
	Get(id int64) (Customer, error)
	List() ([]Customer, error)
	Update(customer Customer) error
	Delete(id int64) error
}

// CartRepository хранит корзины покупателей. Все операции над корзиной одного
// покупателя линеаризуемы между собой; корзины разных покупателей независимы.
type CartRepository interface {
	// AddItem увеличивает количество позиции (создаёт корзину при первом добавлении).
	AddItem(customerID, bookID int64, qty int32) error
	// SetQuantity устанавливает количество позиции; qty <= 0 эквивалентно RemoveItem.
	SetQuantity(customerID, bookID int64, qty int32) error
	// RemoveItem удаляет позицию; ErrCartItemNotFound, если её нет.
	RemoveItem(customerID, bookID int64) error
	// Items возвращает копию корзины. Для отсутствующей корзины — пустое
	// отображение, никогда не nil.
	Items(customerID int64) (map[int64]int32, error)
	// Clear полностью очищает корзину покупателя.
	Clear(customerID int64) error
}

// OrderRepository — append-only журнал оформленных заказов.
// Записывается только движком оформления; заказы неизменяемы.
type OrderRepository interface {
	// Append дописывает заказ в журнал покупателя.
	Append(order Order) error
	// Get возвращает заказ покупателя или ErrOrderNotFound.
	Get(customerID, orderID int64) (Order, error)
	// ListByCustomer возвращает заказы покупателя в порядке коммита.
	ListByCustomer(customerID int64) ([]Order, error)
}
