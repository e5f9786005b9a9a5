package handler

import (
	"github.com/bitfantasy/fair-qms/internal/qis/repository"
	"github.com/bitfantasy/fair-qms/pkg/inspection"
	"github.com/gin-gonic/gin"
)

// UserHandler 用户查询处理器
type UserHandler struct {
	repo *repository.UserRepository
}

// NewUserHandler 创建用户处理器
func NewUserHandler(repo *repository.UserRepository) *UserHandler {
	return &UserHandler{repo: repo}
}

// List GET /api/users (master)
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.repo.ListActive(c.Request.Context())
	if err != nil {
		InternalError(c, "获取用户列表失败: "+err.Error())
		return
	}
	c.JSON(200, users)
}

// ListByRole GET /api/users/role/:role
func (h *UserHandler) ListByRole(c *gin.Context) {
	role := inspection.Role(c.Param("role"))
	if !role.Valid() {
		BadRequest(c, "invalid role: "+c.Param("role"))
		return
	}

	users, err := h.repo.ListByRole(c.Request.Context(), role)
	if err != nil {
		InternalError(c, "获取用户列表失败: "+err.Error())
		return
	}
	c.JSON(200, users)
}
