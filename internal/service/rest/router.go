package rest

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
	"github.com/vladislavdragonenkov/bookstore/internal/service/checkout"
)

// Dependencies перечисляет всё, что нужно REST-слою.
type Dependencies struct {
	Books     domain.BookRepository
	Authors   domain.AuthorRepository
	Customers domain.CustomerRepository
	Carts     domain.CartRepository
	Orders    domain.OrderRepository
	IDs       domain.IDAllocator
	Checkout  checkout.Engine
	Logger    *log.Entry
}

// NewRouter собирает gin-router со всеми ресурсами магазина.
func NewRouter(deps Dependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = log.WithField("component", "rest")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	NewBookHandler(deps.Books, deps.Authors, deps.IDs, logger).Register(router)
	NewAuthorHandler(deps.Authors, deps.Books, deps.IDs, logger).Register(router)
	NewCustomerHandler(deps.Customers, deps.IDs, logger).Register(router)
	NewCartHandler(deps.Carts, deps.Books, deps.Customers, logger).Register(router)
	NewOrderHandler(deps.Orders, deps.Customers, deps.Checkout, logger).Register(router)

	return router
}

// requestLogger пишет одну structured-запись на запрос.
func requestLogger(logger *log.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(log.Fields{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("http request")
	}
}

// pathID извлекает числовой идентификатор из path-параметра.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondInvalid(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
