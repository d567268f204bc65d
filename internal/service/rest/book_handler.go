package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
)

// BookHandler обслуживает CRUD каталога книг.
type BookHandler struct {
	books   domain.BookRepository
	authors domain.AuthorRepository
	ids     domain.IDAllocator
	logger  *log.Entry
}

// NewBookHandler создаёт обработчик каталога.
func NewBookHandler(books domain.BookRepository, authors domain.AuthorRepository, ids domain.IDAllocator, logger *log.Entry) *BookHandler {
	return &BookHandler{books: books, authors: authors, ids: ids, logger: logger}
}

// Register вешает маршруты каталога на router.
func (h *BookHandler) Register(r gin.IRouter) {
	r.POST("/books", h.create)
	r.GET("/books", h.list)
	r.GET("/books/:id", h.get)
	r.PUT("/books/:id", h.update)
	r.DELETE("/books/:id", h.delete)
}

type bookRequest struct {
	Title           string `json:"title" binding:"required"`
	AuthorID        int64  `json:"author_id" binding:"required,gt=0"`
	ISBN            string `json:"isbn"`
	PublicationYear int    `json:"publication_year"`
	PriceMinor      int64  `json:"price_minor" binding:"gte=0"`
	Stock           int32  `json:"stock" binding:"gte=0"`
}

type bookResponse struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	AuthorID        int64  `json:"author_id"`
	ISBN            string `json:"isbn,omitempty"`
	PublicationYear int    `json:"publication_year,omitempty"`
	PriceMinor      int64  `json:"price_minor"`
	Stock           int32  `json:"stock"`
}

func toBookResponse(book domain.Book) bookResponse {
	return bookResponse{
		ID:              book.ID,
		Title:           book.Title,
		AuthorID:        book.AuthorID,
		ISBN:            book.ISBN,
		PublicationYear: book.PublicationYear,
		PriceMinor:      book.PriceMinor,
		Stock:           book.Stock,
	}
}

func (h *BookHandler) create(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err.Error())
		return
	}

	// Книга ссылается на существующего автора.
	if _, err := h.authors.Get(req.AuthorID); err != nil {
		respondError(c, err)
		return
	}

	now := time.Now().UTC()
	book := domain.Book{
		ID:              h.ids.NextID(domain.IDKindBook),
		Title:           req.Title,
		AuthorID:        req.AuthorID,
		ISBN:            req.ISBN,
		PublicationYear: req.PublicationYear,
		PriceMinor:      req.PriceMinor,
		Stock:           req.Stock,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if errs := book.ValidateInvariants(); len(errs) > 0 {
		respondInvalid(c, errs[0].Error())
		return
	}
	if err := h.books.Create(book); err != nil {
		respondError(c, err)
		return
	}

	h.logger.WithFields(log.Fields{"book_id": book.ID, "title": book.Title}).Info("book created")
	c.JSON(http.StatusCreated, toBookResponse(book))
}

func (h *BookHandler) list(c *gin.Context) {
	books, err := h.books.List()
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]bookResponse, 0, len(books))
	for _, book := range books {
		result = append(result, toBookResponse(book))
	}
	c.JSON(http.StatusOK, result)
}

func (h *BookHandler) get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	book, err := h.books.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookResponse(book))
}

func (h *BookHandler) update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err.Error())
		return
	}
	if _, err := h.authors.Get(req.AuthorID); err != nil {
		respondError(c, err)
		return
	}

	book := domain.Book{
		ID:              id,
		Title:           req.Title,
		AuthorID:        req.AuthorID,
		ISBN:            req.ISBN,
		PublicationYear: req.PublicationYear,
		PriceMinor:      req.PriceMinor,
	}
	if err := h.books.Update(book); err != nil {
		respondError(c, err)
		return
	}

	updated, err := h.books.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookResponse(updated))
}

func (h *BookHandler) delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.books.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	h.logger.WithField("book_id", id).Info("book deleted")
	c.Status(http.StatusNoContent)
}
