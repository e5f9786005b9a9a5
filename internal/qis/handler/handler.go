package handler

import (
	"github.com/bitfantasy/fair-qms/internal/config"
	"github.com/bitfantasy/fair-qms/internal/qis/repository"
	"github.com/bitfantasy/fair-qms/internal/qis/service"
	"github.com/bitfantasy/fair-qms/pkg/inspection"
	"github.com/gin-gonic/gin"
)

// Handlers 处理器集合
type Handlers struct {
	Auth      *AuthHandler
	Form      *FormHandler
	User      *UserHandler
	Dashboard *DashboardHandler
	Report    *ReportHandler
	SSE       *SSEHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services, repos *repository.Repositories, cfg *config.Config) *Handlers {
	return &Handlers{
		Auth:      NewAuthHandler(svc.Auth),
		Form:      NewFormHandler(svc.Form),
		User:      NewUserHandler(repos.User),
		Dashboard: NewDashboardHandler(svc.Dashboard),
		Report:    NewReportHandler(svc.Report),
		SSE:       NewSSEHandler(),
	}
}

// Response 错误响应结构。报告类接口成功时直接返回实体JSON,
// 仅错误时使用该包装。
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Unauthorized 未授权响应
func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

// Forbidden 禁止访问响应
func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// Conflict 状态冲突响应
func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetUserName 从上下文获取用户姓名
func GetUserName(c *gin.Context) string {
	return c.GetString("user_name")
}

// GetUserRole 从上下文获取用户角色
func GetUserRole(c *gin.Context) inspection.Role {
	return inspection.Role(c.GetString("role"))
}
