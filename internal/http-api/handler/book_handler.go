package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/middleware"
	"libraryhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type BookHandler struct {
	svc service.BookService
}

func NewBookHandler(svc service.BookService) *BookHandler {
	return &BookHandler{svc: svc}
}

// RegisterRoutes wires the catalog endpoints. Reads are public, mutations
// require the librarian permission; authRequired wraps the mutating routes.
func (h *BookHandler) RegisterRoutes(rg *gin.RouterGroup, authRequired gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("", authRequired, middleware.RequireLibrarian(), h.Create)
	rg.PUT("/:id", authRequired, middleware.RequireLibrarian(), h.Update)
	rg.DELETE("/:id", authRequired, middleware.RequireLibrarian(), h.Delete)
	rg.POST("/:id/cover", authRequired, middleware.RequireLibrarian(), h.UploadCover)
}

func (h *BookHandler) List(c *gin.Context) {
	search := c.Query("search")
	category := c.Query("category")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	books, total, err := h.svc.List(ctx, search, category, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list books"})
		return
	}

	items := make([]dto.BookResponse, 0, len(books))
	for _, b := range books {
		items = append(items, dto.FromBookModel(b))
	}

	c.JSON(http.StatusOK, dto.BookListResponse{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

func (h *BookHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	book, err := h.svc.Get(ctx, id)
	if err == service.ErrBookNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get book"})
		return
	}

	c.JSON(http.StatusOK, dto.FromBookModel(*book))
}

func (h *BookHandler) Create(c *gin.Context) {
	var req dto.CreateBookDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	book := req.ToModel()
	if err := h.svc.Create(ctx, &book); err != nil {
		if err == service.ErrInvalidCopies {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create book"})
		return
	}

	c.JSON(http.StatusCreated, dto.FromBookModel(book))
}

func (h *BookHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book id"})
		return
	}

	var req dto.UpdateBookDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	// load current attributes, apply the partial update on top
	current, err := h.svc.Get(ctx, id)
	if err == service.ErrBookNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update book"})
		return
	}

	updated := *current
	req.ApplyTo(&updated)

	book, err := h.svc.Update(ctx, id, &updated, req.CopiesTotal)
	if err != nil {
		switch err {
		case service.ErrBookNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		case service.ErrInvalidCopies:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update book"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.FromBookModel(*book))
}

func (h *BookHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Delete(ctx, id); err != nil {
		switch err {
		case service.ErrBookNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		case service.ErrBookHasActiveBorrowings:
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete book"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *BookHandler) UploadCover(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book id"})
		return
	}

	file, err := c.FormFile("cover")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cover file is required"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read cover file"})
		return
	}
	defer src.Close()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	url, err := h.svc.SaveCover(ctx, id, file.Filename, src)
	if err != nil {
		switch err {
		case service.ErrBookNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		case service.ErrUnsupportedImage:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store cover"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
