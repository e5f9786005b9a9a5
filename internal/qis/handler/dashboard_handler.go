package handler

import (
	"github.com/bitfantasy/fair-qms/internal/qis/service"
	"github.com/gin-gonic/gin"
)

// DashboardHandler 看板处理器
type DashboardHandler struct {
	svc *service.DashboardService
}

// NewDashboardHandler 创建看板处理器
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Metrics GET /api/dashboard/metrics
func (h *DashboardHandler) Metrics(c *gin.Context) {
	m, err := h.svc.Metrics(c.Request.Context())
	if err != nil {
		InternalError(c, "获取看板指标失败: "+err.Error())
		return
	}
	c.JSON(200, m)
}
