package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
)

// AuthorHandler обслуживает CRUD авторов.
type AuthorHandler struct {
	authors domain.AuthorRepository
	books   domain.BookRepository
	ids     domain.IDAllocator
	logger  *log.Entry
}

// NewAuthorHandler создаёт обработчик авторов.
func NewAuthorHandler(authors domain.AuthorRepository, books domain.BookRepository, ids domain.IDAllocator, logger *log.Entry) *AuthorHandler {
	return &AuthorHandler{authors: authors, books: books, ids: ids, logger: logger}
}

// Register вешает маршруты авторов на router.
func (h *AuthorHandler) Register(r gin.IRouter) {
	r.POST("/authors", h.create)
	r.GET("/authors", h.list)
	r.GET("/authors/:id", h.get)
	r.PUT("/authors/:id", h.update)
	r.DELETE("/authors/:id", h.delete)
	r.GET("/authors/:id/books", h.listBooks)
}

type authorRequest struct {
	Name      string `json:"name" binding:"required"`
	Biography string `json:"biography"`
}

type authorResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Biography string `json:"biography,omitempty"`
}

func toAuthorResponse(author domain.Author) authorResponse {
	return authorResponse{ID: author.ID, Name: author.Name, Biography: author.Biography}
}

func (h *AuthorHandler) create(c *gin.Context) {
	var req authorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err.Error())
		return
	}

	author := domain.Author{
		ID:        h.ids.NextID(domain.IDKindAuthor),
		Name:      req.Name,
		Biography: req.Biography,
	}
	if errs := author.ValidateInvariants(); len(errs) > 0 {
		respondInvalid(c, errs[0].Error())
		return
	}
	if err := h.authors.Create(author); err != nil {
		respondError(c, err)
		return
	}

	h.logger.WithFields(log.Fields{"author_id": author.ID, "name": author.Name}).Info("author created")
	c.JSON(http.StatusCreated, toAuthorResponse(author))
}

func (h *AuthorHandler) list(c *gin.Context) {
	authors, err := h.authors.List()
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]authorResponse, 0, len(authors))
	for _, author := range authors {
		result = append(result, toAuthorResponse(author))
	}
	c.JSON(http.StatusOK, result)
}

func (h *AuthorHandler) get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	author, err := h.authors.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAuthorResponse(author))
}

func (h *AuthorHandler) update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req authorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err.Error())
		return
	}

	author := domain.Author{ID: id, Name: req.Name, Biography: req.Biography}
	if err := h.authors.Update(author); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAuthorResponse(author))
}

func (h *AuthorHandler) delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.authors.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	h.logger.WithField("author_id", id).Info("author deleted")
	c.Status(http.StatusNoContent)
}

// listBooks возвращает книги автора.
func (h *AuthorHandler) listBooks(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if _, err := h.authors.Get(id); err != nil {
		respondError(c, err)
		return
	}

	books, err := h.books.ListByAuthor(id)
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
