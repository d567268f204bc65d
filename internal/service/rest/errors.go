package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
)

// errorBody — единый формат тела ошибки для всего API.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// respondError переводит доменную ошибку в HTTP-статус. Таблица чистая и
// без состояния: каждому виду ошибки соответствует ровно один статус.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case domain.IsNotFound(err):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrEmailTaken):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrOutOfStock),
		errors.Is(err, domain.ErrCartQtyInvalid):
		status = http.StatusBadRequest
	}

	c.AbortWithStatusJSON(status, errorBody{Error: errorKind(err), Message: err.Error()})
}

// respondInvalid отвечает 400 на ошибки валидации входных данных.
func respondInvalid(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: "invalid_input", Message: message})
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrCustomerNotFound):
		return "customer_not_found"
	case errors.Is(err, domain.ErrAuthorNotFound):
		return "author_not_found"
	case errors.Is(err, domain.ErrBookNotFound):
		return "book_not_found"
	case errors.Is(err, domain.ErrOrderNotFound):
		return "order_not_found"
	case errors.Is(err, domain.ErrCartItemNotFound):
		return "cart_item_not_found"
	case errors.Is(err, domain.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, domain.ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, domain.ErrEmailTaken):
		return "email_taken"
	case errors.Is(err, domain.ErrCartQtyInvalid):
		return "invalid_input"
	default:
		return "internal"
	}
}
