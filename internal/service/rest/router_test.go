package rest_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
	"github.com/vladislavdragonenkov/bookstore/internal/service/checkout"
	"github.com/vladislavdragonenkov/bookstore/internal/service/rest"
	"github.com/vladislavdragonenkov/bookstore/internal/storage/memory"
)

type apiFixture struct {
	router http.Handler
	books  domain.BookRepository
	carts  domain.CartRepository
	orders domain.OrderRepository
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	books := memory.NewBookRepository()
	authors := memory.NewAuthorRepository()
	customers := memory.NewCustomerRepository()
	carts := memory.NewCartRepository()
	orders := memory.NewOrderRepository()
	ids := memory.NewIDAllocator()

	engine := checkout.NewEngineWithoutMetrics(
		books, carts, orders,
		&checkout.RepositoryDirectory{Customers: customers},
		ids, nil, nil,
	)

	router := rest.NewRouter(rest.Dependencies{
		Books:     books,
		Authors:   authors,
		Customers: customers,
		Carts:     carts,
		Orders:    orders,
		IDs:       ids,
		Checkout:  engine,
	})

	return &apiFixture{router: router, books: books, carts: carts, orders: orders}
}

func (f *apiFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

// seedCatalog создаёт автора и книгу, возвращает ID книги.
func (f *apiFixture) seedCatalog(t *testing.T, priceMinor int64, stock int32) int64 {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/authors", map[string]interface{}{"name": "Лев Толстой"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var author struct {
		ID int64 `json:"id"`
	}
	decode(t, rec, &author)

	rec = f.do(t, http.MethodPost, "/books", map[string]interface{}{
		"title":       "Война и мир",
		"author_id":   author.ID,
		"price_minor": priceMinor,
		"stock":       stock,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var book struct {
		ID int64 `json:"id"`
	}
	decode(t, rec, &book)
	return book.ID
}

func (f *apiFixture) seedCustomer(t *testing.T, email string) int64 {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/customers", map[string]interface{}{
		"name":  "Иван",
		"email": email,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var customer struct {
		ID int64 `json:"id"`
	}
	decode(t, rec, &customer)
	return customer.ID
}

func TestAPI_CheckoutHappyPath(t *testing.T) {
	f := newAPIFixture(t)
	bookID := f.seedCatalog(t, 1500, 10)
	customerID := f.seedCustomer(t, "ivan@example.com")

	rec := f.do(t, http.MethodPost, "/customers/1/cart/items", map[string]interface{}{
		"book_id": bookID,
		"qty":     2,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/customers/1/orders", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var order struct {
		ID         int64 `json:"id"`
		CustomerID int64 `json:"customer_id"`
		TotalMinor int64 `json:"total_minor"`
		Lines      []struct {
			BookID     int64 `json:"book_id"`
			Qty        int32 `json:"qty"`
			PriceMinor int64 `json:"price_minor"`
		} `json:"lines"`
	}
	decode(t, rec, &order)
	assert.Equal(t, customerID, order.CustomerID)
	assert.Equal(t, int64(3000), order.TotalMinor)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, bookID, order.Lines[0].BookID)
	assert.Equal(t, int32(2), order.Lines[0].Qty)

	// Остаток уменьшился, корзина пуста.
	book, err := f.books.Get(bookID)
	require.NoError(t, err)
	assert.Equal(t, int32(8), book.Stock)

	rec = f.do(t, http.MethodGet, "/customers/1/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cart struct {
		Items []interface{} `json:"items"`
	}
	decode(t, rec, &cart)
	assert.Empty(t, cart.Items)
}

func TestAPI_CheckoutEmptyCartReturns400(t *testing.T) {
	f := newAPIFixture(t)
	f.seedCustomer(t, "ivan@example.com")

	rec := f.do(t, http.MethodPost, "/customers/1/orders", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error string `json:"error"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "empty_cart", body.Error)
}

func TestAPI_CheckoutUnknownCustomerReturns404(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/customers/99/orders", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body struct {
		Error string `json:"error"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "customer_not_found", body.Error)
}

func TestAPI_CheckoutOutOfStockReturns400(t *testing.T) {
	f := newAPIFixture(t)
	bookID := f.seedCatalog(t, 1000, 1)
	f.seedCustomer(t, "ivan@example.com")

	rec := f.do(t, http.MethodPost, "/customers/1/cart/items", map[string]interface{}{
		"book_id": bookID,
		"qty":     5,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/customers/1/orders", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error string `json:"error"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "out_of_stock", body.Error)

	// Неудачное оформление ничего не меняет.
	book, err := f.books.Get(bookID)
	require.NoError(t, err)
	assert.Equal(t, int32(1), book.Stock)

	items, err := f.carts.Items(1)
	require.NoError(t, err)
	assert.Equal(t, int32(5), items[bookID])
}

func TestAPI_BookRequiresExistingAuthor(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/books", map[string]interface{}{
		"title":       "Сирота",
		"author_id":   42,
		"price_minor": 100,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_DuplicateEmailReturns409(t *testing.T) {
	f := newAPIFixture(t)
	f.seedCustomer(t, "ivan@example.com")

	rec := f.do(t, http.MethodPost, "/customers", map[string]interface{}{
		"name":  "Второй Иван",
		"email": "ivan@example.com",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPI_CartSetQuantityZeroRemovesItem(t *testing.T) {
	f := newAPIFixture(t)
	bookID := f.seedCatalog(t, 500, 3)
	f.seedCustomer(t, "ivan@example.com")

	rec := f.do(t, http.MethodPost, "/customers/1/cart/items", map[string]interface{}{
		"book_id": bookID,
		"qty":     2,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPut, "/customers/1/cart/items/1", map[string]interface{}{"qty": 0})
	require.Equal(t, http.StatusOK, rec.Code)

	var cart struct {
		Items []interface{} `json:"items"`
	}
	decode(t, rec, &cart)
	assert.Empty(t, cart.Items)
}

func TestAPI_CartAddUnknownBookReturns404(t *testing.T) {
	f := newAPIFixture(t)
	f.seedCustomer(t, "ivan@example.com")

	rec := f.do(t, http.MethodPost, "/customers/1/cart/items", map[string]interface{}{
		"book_id": 77,
		"qty":     1,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_OrderHistoryAndLookup(t *testing.T) {
	f := newAPIFixture(t)
	bookID := f.seedCatalog(t, 700, 10)
	f.seedCustomer(t, "ivan@example.com")

	for i := 0; i < 2; i++ {
		rec := f.do(t, http.MethodPost, "/customers/1/cart/items", map[string]interface{}{
			"book_id": bookID,
			"qty":     1,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		rec = f.do(t, http.MethodPost, "/customers/1/orders", nil)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := f.do(t, http.MethodGet, "/customers/1/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []struct {
		ID int64 `json:"id"`
	}
	decode(t, rec, &orders)
	require.Len(t, orders, 2)
	assert.Less(t, orders[0].ID, orders[1].ID)

	rec = f.do(t, http.MethodGet, "/customers/1/orders/1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/customers/1/orders/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_InvalidPathIDReturns400(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/books/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
