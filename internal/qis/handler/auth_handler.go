package handler

import (
	"errors"

	"github.com/bitfantasy/fair-qms/internal/qis/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	svc *service.AuthService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// LoginResponse 登录响应
type LoginResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// Login 用户登录
// POST /api/users/login?username=xxx&password=xxx
func (h *AuthHandler) Login(c *gin.Context) {
	username := c.Query("username")
	password := c.Query("password")
	if username == "" || password == "" {
		BadRequest(c, "username and password are required")
		return
	}

	user, pair, err := h.svc.Login(c.Request.Context(), username, password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			Unauthorized(c, "invalid username or password")
		case errors.Is(err, service.ErrUserDisabled):
			Forbidden(c, "user is disabled")
		default:
			InternalError(c, "登录失败: "+err.Error())
		}
		return
	}

	c.JSON(200, LoginResponse{
		ID:           user.ID,
		Name:         user.Name,
		Role:         string(user.Role),
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// RefreshRequest 刷新令牌请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh 刷新令牌
// POST /api/users/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	pair, err := h.svc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			Unauthorized(c, "invalid refresh token")
			return
		}
		InternalError(c, "刷新令牌失败: "+err.Error())
		return
	}

	c.JSON(200, pair)
}
