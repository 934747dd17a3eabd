package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/repository"
	"libraryhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type BorrowingHandler struct {
	svc service.BorrowingService
}

func NewBorrowingHandler(svc service.BorrowingService) *BorrowingHandler {
	return &BorrowingHandler{svc: svc}
}

func (h *BorrowingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Borrow)
	rg.GET("", h.List)
	rg.POST("/:id/return", h.Return)
}

// principal pulls the authenticated identity set by the auth middleware.
func principal(c *gin.Context) (id, role string, ok bool) {
	idValue, exists := c.Get("userID")
	if !exists {
		return "", "", false
	}
	roleValue, exists := c.Get("role")
	if !exists {
		return "", "", false
	}
	id, _ = idValue.(string)
	role, _ = roleValue.(string)
	return id, role, id != ""
}

func (h *BorrowingHandler) Borrow(c *gin.Context) {
	actorID, actorRole, ok := principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.BorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	borrowing, err := h.svc.Borrow(ctx, actorID, actorRole, req.BookID, req.DueDays)
	if err != nil {
		switch err {
		case service.ErrBookNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		case service.ErrNoCopiesAvailable:
			c.JSON(http.StatusConflict, gin.H{"error": "no copies available"})
		case service.ErrBorrowLimitReached:
			c.JSON(http.StatusConflict, gin.H{"error": "maximum active borrowings reached"})
		case service.ErrInvalidDueDays:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case service.ErrUserNotFound:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to borrow book"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.FromBorrowingModel(*borrowing))
}

func (h *BorrowingHandler) Return(c *gin.Context) {
	actorID, actorRole, ok := principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid borrowing id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	borrowing, err := h.svc.Return(ctx, actorID, actorRole, id)
	if err != nil {
		switch err {
		case service.ErrBorrowingNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "borrowing not found"})
		case service.ErrReturnForbidden:
			c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to return this borrowing"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to return book"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.FromBorrowingModel(*borrowing))
}

func (h *BorrowingHandler) List(c *gin.Context) {
	actorID, actorRole, ok := principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	onlyActive := c.Query("only_active") == "true"

	filter := repository.BorrowingFilter{
		OnlyActive: onlyActive,
		UserID:     c.Query("user_id"),
		Page:       page,
		Limit:      limit,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	borrowings, total, err := h.svc.List(ctx, actorID, actorRole, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list borrowings"})
		return
	}

	items := make([]dto.BorrowingResponse, 0, len(borrowings))
	for _, b := range borrowings {
		items = append(items, dto.FromBorrowingModel(b))
	}

	c.JSON(http.StatusOK, dto.BorrowingListResponse{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}
