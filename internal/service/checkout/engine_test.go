package checkout_test

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
	"github.com/vladislavdragonenkov/bookstore/internal/service/checkout"
	"github.com/vladislavdragonenkov/bookstore/internal/storage/memory"
)

type fixture struct {
	books     domain.BookRepository
	carts     domain.CartRepository
	orders    domain.OrderRepository
	customers domain.CustomerRepository
	ids       domain.IDAllocator
	outbox    domain.OutboxRepository
	engine    checkout.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		books:     memory.NewBookRepository(),
		carts:     memory.NewCartRepository(),
		orders:    memory.NewOrderRepository(),
		customers: memory.NewCustomerRepository(),
		ids:       memory.NewIDAllocator(),
		outbox:    memory.NewOutboxRepository(),
	}
	f.engine = checkout.NewEngineWithoutMetrics(
		f.books,
		f.carts,
		f.orders,
		checkout.RepositoryDirectory{Customers: f.customers},
		f.ids,
		f.outbox,
		nil,
	)
	return f
}

func (f *fixture) addCustomer(t *testing.T, id int64) {
	t.Helper()
	err := f.customers.Create(domain.Customer{ID: id, Name: "Customer", Email: emailFor(id)})
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
}

func emailFor(id int64) string {
	return "customer" + string(rune('a'+id%26)) + "@example.com"
}

func (f *fixture) addBook(t *testing.T, id int64, priceMinor int64, stock int32) {
	t.Helper()
	err := f.books.Create(domain.Book{
		ID:         id,
		Title:      "Book",
		AuthorID:   1,
		PriceMinor: priceMinor,
		Stock:      stock,
	})
	if err != nil {
		t.Fatalf("create book failed: %v", err)
	}
}

func (f *fixture) stockOf(t *testing.T, bookID int64) int32 {
	t.Helper()
	book, err := f.books.Get(bookID)
	if err != nil {
		t.Fatalf("get book failed: %v", err)
	}
	return book.Stock
}

func TestCheckout_Success(t *testing.T) {
	f := newFixture(t)
	f.addCustomer(t, 1)
	f.addBook(t, 10, 1000, 5)
	if err := f.carts.AddItem(1, 10, 3); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	order, err := f.engine.Checkout(1)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if order.ID != 1 {
		t.Fatalf("order id = %d, want 1", order.ID)
	}
	if order.TotalMinor != 3000 {
		t.Fatalf("total = %d, want 3000", order.TotalMinor)
	}
	if left := f.stockOf(t, 10); left != 2 {
		t.Fatalf("stock after checkout = %d, want 2", left)
	}

	items, _ := f.carts.Items(1)
	if len(items) != 0 {
		t.Fatalf("cart must be empty after checkout, got %v", items)
	}

	stored, err := f.orders.Get(1, order.ID)
	if err != nil {
		t.Fatalf("order missing from journal: %v", err)
	}
	if !reflect.DeepEqual(stored.Lines, order.Lines) {
		t.Fatalf("journal lines mismatch: %+v vs %+v", stored.Lines, order.Lines)
	}
}

func TestCheckout_CustomerNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Checkout(42)
	if !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newFixture(t)
	f.addCustomer(t, 1)

	_, err := f.engine.Checkout(1)
	if !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCheckout_OutOfStockLeavesEverythingUntouched(t *testing.T) {
	f := newFixture(t)
	f.addCustomer(t, 1)
	f.addBook(t, 1, 1000, 1) // не хватает
	f.addBook(t, 2, 500, 10)
	if err := f.carts.AddItem(1, 1, 2); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if err := f.carts.AddItem(1, 2, 1); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	_, err := f.engine.Checkout(1)
	var oos *domain.OutOfStockError
	if !errors.As(err, &oos) {
		t.Fatalf("expected OutOfStockError, got %v", err)
	}
	if oos.BookID != 1 || oos.Requested != 2 || oos.Available != 1 {
		t.Fatalf("unexpected payload: %+v", oos)
	}

	// Леджер нетронут: позиция 1 не списана, позиция 2 тоже.
	if left := f.stockOf(t, 1); left != 1 {
		t.Fatalf("book 1 stock = %d, want 1", left)
	}
	if left := f.stockOf(t, 2); left != 10 {
		t.Fatalf("book 2 stock = %d, want 10", left)
	}

	// Корзина не изменилась.
	items, _ := f.carts.Items(1)
	if items[1] != 2 || items[2] != 1 {
		t.Fatalf("cart changed after failed checkout: %v", items)
	}

	// Журнал пуст.
	orders, _ := f.orders.ListByCustomer(1)
	if len(orders) != 0 {
		t.Fatalf("journal must be empty, got %v", orders)
	}
}

func TestCheckout_RollbackOnLaterLineFailure(t *testing.T) {
	f := newFixture(t)
	f.addCustomer(t, 1)
	f.addBook(t, 1, 1000, 5) // спишется первой
	f.addBook(t, 2, 500, 0)  // провалит оформление
	if err := f.carts.AddItem(1, 1, 2); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if err := f.carts.AddItem(1, 2, 1); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	_, err := f.engine.Checkout(1)
	if !errors.Is(err, domain.ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock, got %v", err)
	}

	// Первая позиция была списана и должна вернуться откатом.
	if left := f.stockOf(t, 1); left != 5 {
		t.Fatalf("book 1 stock = %d, want 5 after rollback", left)
	}
}

func TestCheckout_BookMissingFromLedger(t *testing.T) {
	f := newFixture(t)
	f.addCustomer(t, 1)
	f.addBook(t, 1, 1000, 5)
	if err := f.carts.AddItem(1, 1, 1); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	// Книга 2 есть в корзине, но отсутствует в каталоге.
	if err := f.carts.AddItem(1, 2, 1); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	_, err := f.engine.Checkout(1)
	var bnf *domain.BookNotFoundError
	if !errors.As(err, &bnf) {
		t.Fatalf("expected BookNotFoundError, got %v", err)
	}
	if bnf.BookID != 2 {
		t.Fatalf("unexpected book id: %d", bnf.BookID)
	}

	if left := f.stockOf(t, 1); left != 5 {
		t.Fatalf("book 1 stock = %d, want 5 after rollback", left)
	}
	items, _ := f.carts.Items(1)
	if len(items) != 2 {
		t.Fatalf("cart must be unchanged, got %v", items)
	}
}

func TestCheckout_TotalAcrossLines(t *testing.T) {
	f := newFixture(t)
	f.addCustomer(t, 1)
	f.addBook(t, 3, 1250, 10)
	f.addBook(t, 1, 999, 10)
	f.addBook(t, 2, 100, 10)
	for bookID, qty := range map[int64]int32{1: 2, 2: 5, 3: 1} {
		if err := f.carts.AddItem(1, bookID, qty); err != nil {
			t.Fatalf("add item failed: %v", err)
		}
	}

	order, err := f.engine.Checkout(1)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	want := int64(2*999 + 5*100 + 1*1250)
	if order.TotalMinor != want {
		t.Fatalf("total = %d, want %d", order.TotalMinor, want)
	}

	// Позиции идут по возрастанию ID книги.
	for i := 1; i < len(order.Lines); i++ {
		if order.Lines[i-1].BookID >= order.Lines[i].BookID {
			t.Fatalf("lines not sorted by book id: %+v", order.Lines)
		}
	}
}

func TestCheckout_ConcurrentLastUnit(t *testing.T) {
	f := newFixture(t)
	f.addCustomer(t, 1)
	f.addCustomer(t, 2)
	f.addBook(t, 7, 1000, 1)
	for _, customerID := range []int64{1, 2} {
		if err := f.carts.AddItem(customerID, 7, 1); err != nil {
			t.Fatalf("add item failed: %v", err)
		}
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, customerID := range []int64{1, 2} {
		wg.Add(1)
		go func(i int, customerID int64) {
			defer wg.Done()
			_, results[i] = f.engine.Checkout(customerID)
		}(i, customerID)
	}
	wg.Wait()

	var committed, failed int
	for _, err := range results {
		if err == nil {
			committed++
			continue
		}
		failed++
		var oos *domain.OutOfStockError
		if !errors.As(err, &oos) {
			t.Fatalf("loser must fail with OutOfStockError, got %v", err)
		}
		if oos.BookID != 7 || oos.Requested != 1 || oos.Available != 0 {
			t.Fatalf("unexpected payload: %+v", oos)
		}
	}
	if committed != 1 || failed != 1 {
		t.Fatalf("expected exactly one winner, got committed=%d failed=%d", committed, failed)
	}

	if left := f.stockOf(t, 7); left != 0 {
		t.Fatalf("stock = %d, want 0", left)
	}
}

func TestCheckout_SameCustomerCannotSpendCartTwice(t *testing.T) {
	f := newFixture(t)
	f.addCustomer(t, 1)
	f.addBook(t, 7, 1000, 10)
	if err := f.carts.AddItem(1, 7, 1); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]error, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.engine.Checkout(1)
		}(i)
	}
	wg.Wait()

	var committed int
	for _, err := range results {
		if err == nil {
			committed++
		} else if !errors.Is(err, domain.ErrEmptyCart) {
			t.Fatalf("duplicate checkout must see an empty cart, got %v", err)
		}
	}
	if committed != 1 {
		t.Fatalf("cart spent %d times, want 1", committed)
	}
	if left := f.stockOf(t, 7); left != 9 {
		t.Fatalf("stock = %d, want 9", left)
	}
}

func TestCheckout_ConcurrentConservation(t *testing.T) {
	f := newFixture(t)
	const initial = 50
	f.addBook(t, 1, 100, initial)

	const customers = 20
	for id := int64(1); id <= customers; id++ {
		if err := f.customers.Create(domain.Customer{ID: id, Name: "C", Email: emailForN(id)}); err != nil {
			t.Fatalf("create customer failed: %v", err)
		}
		if err := f.carts.AddItem(id, 1, 4); err != nil {
			t.Fatalf("add item failed: %v", err)
		}
	}

	var wg sync.WaitGroup
	for id := int64(1); id <= customers; id++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, _ = f.engine.Checkout(id)
		}(id)
	}
	wg.Wait()

	// Сохранение запаса: проданное по журналу + остаток == исходный запас.
	var sold int32
	for id := int64(1); id <= customers; id++ {
		orders, _ := f.orders.ListByCustomer(id)
		for _, order := range orders {
			for _, line := range order.Lines {
				sold += line.Qty
			}
		}
	}
	left := f.stockOf(t, 1)
	if left < 0 {
		t.Fatalf("stock went negative: %d", left)
	}
	if sold+left != initial {
		t.Fatalf("conservation violated: sold=%d left=%d initial=%d", sold, left, initial)
	}
}

func emailForN(id int64) string {
	return "load" + string(rune('a'+id%26)) + string(rune('a'+(id/26)%26)) + "@example.com"
}

func TestCheckout_OrderIDsUniqueAndIncreasing(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, 1, 100, 100)

	var lastID int64
	for id := int64(1); id <= 5; id++ {
		if err := f.customers.Create(domain.Customer{ID: id, Name: "C", Email: emailForN(id + 100)}); err != nil {
			t.Fatalf("create customer failed: %v", err)
		}
		if err := f.carts.AddItem(id, 1, 1); err != nil {
			t.Fatalf("add item failed: %v", err)
		}

		order, err := f.engine.Checkout(id)
		if err != nil {
			t.Fatalf("checkout failed: %v", err)
		}
		if order.ID <= lastID {
			t.Fatalf("order id %d not increasing after %d", order.ID, lastID)
		}
		lastID = order.ID
	}
}

func TestCheckout_OutboxEventOnSuccessOnly(t *testing.T) {
	f := newFixture(t)
	f.addCustomer(t, 1)
	f.addBook(t, 1, 100, 1)
	if err := f.carts.AddItem(1, 1, 2); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	if _, err := f.engine.Checkout(1); err == nil {
		t.Fatal("expected failure")
	}
	pending, _ := f.outbox.PullPending(10)
	if len(pending) != 0 {
		t.Fatalf("failed checkout must not emit events, got %v", pending)
	}

	if err := f.carts.SetQuantity(1, 1, 1); err != nil {
		t.Fatalf("set quantity failed: %v", err)
	}
	if _, err := f.engine.Checkout(1); err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	// Успех оставляет событие заказа и по складскому событию на позицию.
	pending, _ = f.outbox.PullPending(10)
	if len(pending) != 2 {
		t.Fatalf("expected order and stock events, got %d", len(pending))
	}
	types := map[string]bool{}
	for _, msg := range pending {
		types[msg.EventType] = true
	}
	if !types["order.created"] || !types["stock.consumed"] {
		t.Fatalf("unexpected event set: %v", types)
	}
}
