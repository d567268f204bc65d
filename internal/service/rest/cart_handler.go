package rest

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
)

// CartHandler обслуживает корзины покупателей.
type CartHandler struct {
	carts     domain.CartRepository
	books     domain.BookRepository
	customers domain.CustomerRepository
	logger    *log.Entry
}

// NewCartHandler создаёт обработчик корзин.
func NewCartHandler(carts domain.CartRepository, books domain.BookRepository, customers domain.CustomerRepository, logger *log.Entry) *CartHandler {
	return &CartHandler{carts: carts, books: books, customers: customers, logger: logger}
}

// Register вешает маршруты корзины на router.
func (h *CartHandler) Register(r gin.IRouter) {
	r.GET("/customers/:id/cart", h.get)
	r.POST("/customers/:id/cart/items", h.addItem)
	r.PUT("/customers/:id/cart/items/:bookId", h.setQuantity)
	r.DELETE("/customers/:id/cart/items/:bookId", h.removeItem)
	r.DELETE("/customers/:id/cart", h.clear)
}

type cartItemRequest struct {
	BookID int64 `json:"book_id" binding:"required,gt=0"`
	Qty    int32 `json:"qty" binding:"required,gt=0"`
}

type cartQuantityRequest struct {
	Qty int32 `json:"qty"`
}

type cartItemResponse struct {
	BookID int64 `json:"book_id"`
	Qty    int32 `json:"qty"`
}

type cartResponse struct {
	CustomerID int64              `json:"customer_id"`
	Items      []cartItemResponse `json:"items"`
}

// toCartResponse раскладывает позиции по возрастанию ID книги, чтобы
// ответ был детерминирован.
func toCartResponse(customerID int64, items map[int64]int32) cartResponse {
	bookIDs := make([]int64, 0, len(items))
	for bookID := range items {
		bookIDs = append(bookIDs, bookID)
	}
	sort.Slice(bookIDs, func(i, j int) bool { return bookIDs[i] < bookIDs[j] })

	resp := cartResponse{CustomerID: customerID, Items: make([]cartItemResponse, 0, len(items))}
	for _, bookID := range bookIDs {
		resp.Items = append(resp.Items, cartItemResponse{BookID: bookID, Qty: items[bookID]})
	}
	return resp
}

func (h *CartHandler) requireCustomer(c *gin.Context) (int64, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return 0, false
	}
	if _, err := h.customers.Get(id); err != nil {
		respondError(c, err)
		return 0, false
	}
	return id, true
}

func (h *CartHandler) get(c *gin.Context) {
	customerID, ok := h.requireCustomer(c)
	if !ok {
		return
	}

	items, err := h.carts.Items(customerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(customerID, items))
}

func (h *CartHandler) addItem(c *gin.Context) {
	customerID, ok := h.requireCustomer(c)
	if !ok {
		return
	}

	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err.Error())
		return
	}

	// В корзину попадают только существующие книги; остаток на этом шаге
	// не резервируется, его проверит оформление.
	if _, err := h.books.Get(req.BookID); err != nil {
		respondError(c, err)
		return
	}

	if err := h.carts.AddItem(customerID, req.BookID, req.Qty); err != nil {
		respondError(c, err)
		return
	}

	items, err := h.carts.Items(customerID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.logger.WithFields(log.Fields{
		"customer_id": customerID,
		"book_id":     req.BookID,
		"qty":         req.Qty,
	}).Info("cart item added")
	c.JSON(http.StatusOK, toCartResponse(customerID, items))
}

func (h *CartHandler) setQuantity(c *gin.Context) {
	customerID, ok := h.requireCustomer(c)
	if !ok {
		return
	}
	bookID, ok := pathID(c, "bookId")
	if !ok {
		return
	}

	var req cartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err.Error())
		return
	}

	if err := h.carts.SetQuantity(customerID, bookID, req.Qty); err != nil {
		respondError(c, err)
		return
	}

	items, err := h.carts.Items(customerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(customerID, items))
}

func (h *CartHandler) removeItem(c *gin.Context) {
	customerID, ok := h.requireCustomer(c)
	if !ok {
		return
	}
	bookID, ok := pathID(c, "bookId")
	if !ok {
		return
	}

	if err := h.carts.RemoveItem(customerID, bookID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CartHandler) clear(c *gin.Context) {
	customerID, ok := h.requireCustomer(c)
	if !ok {
		return
	}

	if err := h.carts.Clear(customerID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
