package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
	"github.com/vladislavdragonenkov/bookstore/internal/service/checkout"
)

// OrderHandler обслуживает журнал заказов и оформление корзины.
type OrderHandler struct {
	orders    domain.OrderRepository
	customers domain.CustomerRepository
	checkout  checkout.Engine
	logger    *log.Entry
}

// NewOrderHandler создаёт обработчик заказов.
func NewOrderHandler(orders domain.OrderRepository, customers domain.CustomerRepository, engine checkout.Engine, logger *log.Entry) *OrderHandler {
	return &OrderHandler{orders: orders, customers: customers, checkout: engine, logger: logger}
}

// Register вешает маршруты заказов на router.
func (h *OrderHandler) Register(r gin.IRouter) {
	r.POST("/customers/:id/orders", h.create)
	r.GET("/customers/:id/orders", h.list)
	r.GET("/customers/:id/orders/:orderId", h.get)
}

type orderLineResponse struct {
	BookID     int64 `json:"book_id"`
	Qty        int32 `json:"qty"`
	PriceMinor int64 `json:"price_minor"`
}

type orderResponse struct {
	ID         int64               `json:"id"`
	CustomerID int64               `json:"customer_id"`
	Lines      []orderLineResponse `json:"lines"`
	TotalMinor int64               `json:"total_minor"`
	CreatedAt  time.Time           `json:"created_at"`
}

func toOrderResponse(order domain.Order) orderResponse {
	lines := make([]orderLineResponse, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, orderLineResponse{
			BookID:     line.BookID,
			Qty:        line.Qty,
			PriceMinor: line.PriceMinor,
		})
	}
	return orderResponse{
		ID:         order.ID,
		CustomerID: order.CustomerID,
		Lines:      lines,
		TotalMinor: order.TotalMinor,
		CreatedAt:  order.CreatedAt,
	}
}

// create оформляет текущую корзину покупателя в заказ. Тело запроса пустое:
// всё содержимое заказа берётся из корзины.
func (h *OrderHandler) create(c *gin.Context) {
	customerID, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.checkout.Checkout(customerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

func (h *OrderHandler) list(c *gin.Context) {
	customerID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.customers.Get(customerID); err != nil {
		respondError(c, err)
		return
	}

	orders, err := h.orders.ListByCustomer(customerID)
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		result = append(result, toOrderResponse(order))
	}
	c.JSON(http.StatusOK, result)
}

func (h *OrderHandler) get(c *gin.Context) {
	customerID, ok := pathID(c, "id")
	if !ok {
		return
	}
	orderID, ok := pathID(c, "orderId")
	if !ok {
		return
	}

	order, err := h.orders.Get(customerID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}
