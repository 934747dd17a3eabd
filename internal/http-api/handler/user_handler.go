package handler

import (
	"net/http"
	"strconv"

	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/middleware"
	"libraryhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", middleware.RequirePermission(service.PermManageUsers), h.List)
	rg.GET("/:id", middleware.RequirePermission(service.PermManageUsers), h.Get)
}

func (h *UserHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	users, total, err := h.svc.List(page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}

	items := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, dto.FromUserModel(u))
	}

	c.JSON(http.StatusOK, dto.UserListResponse{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.svc.Get(c.Param("id"))
	if err == service.ErrUserNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}

	c.JSON(http.StatusOK, dto.FromUserModel(*user))
}
