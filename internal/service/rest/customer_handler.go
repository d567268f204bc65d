package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
)

// CustomerHandler обслуживает CRUD покупателей.
type CustomerHandler struct {
	customers domain.CustomerRepository
	ids       domain.IDAllocator
	logger    *log.Entry
}

// NewCustomerHandler создаёт обработчик покупателей.
func NewCustomerHandler(customers domain.CustomerRepository, ids domain.IDAllocator, logger *log.Entry) *CustomerHandler {
	return &CustomerHandler{customers: customers, ids: ids, logger: logger}
}

// Register вешает маршруты покупателей на router.
func (h *CustomerHandler) Register(r gin.IRouter) {
	r.POST("/customers", h.create)
	r.GET("/customers", h.list)
	r.GET("/customers/:id", h.get)
	r.PUT("/customers/:id", h.update)
	r.DELETE("/customers/:id", h.delete)
}

type customerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password"`
}

// customerResponse намеренно не содержит пароль.
type customerResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toCustomerResponse(customer domain.Customer) customerResponse {
	return customerResponse{ID: customer.ID, Name: customer.Name, Email: customer.Email}
}

func (h *CustomerHandler) create(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err.Error())
		return
	}

	customer := domain.Customer{
		ID:       h.ids.NextID(domain.IDKindCustomer),
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}
	if errs := customer.ValidateInvariants(); len(errs) > 0 {
		respondInvalid(c, errs[0].Error())
		return
	}
	if err := h.customers.Create(customer); err != nil {
		respondError(c, err)
		return
	}

	h.logger.WithFields(log.Fields{"customer_id": customer.ID, "email": customer.Email}).Info("customer created")
	c.JSON(http.StatusCreated, toCustomerResponse(customer))
}

func (h *CustomerHandler) list(c *gin.Context) {
	customers, err := h.customers.List()
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]customerResponse, 0, len(customers))
	for _, customer := range customers {
		result = append(result, toCustomerResponse(customer))
	}
	c.JSON(http.StatusOK, result)
}

func (h *CustomerHandler) get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	customer, err := h.customers.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomerResponse(customer))
}

func (h *CustomerHandler) update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err.Error())
		return
	}

	customer := domain.Customer{
		ID:       id,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}
	if err := h.customers.Update(customer); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomerResponse(customer))
}

func (h *CustomerHandler) delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.customers.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	h.logger.WithField("customer_id", id).Info("customer deleted")
	c.Status(http.StatusNoContent)
}
