package handler

import (
	"errors"
	"fmt"

	"github.com/bitfantasy/fair-qms/internal/qis/repository"
	"github.com/bitfantasy/fair-qms/internal/qis/service"
	"github.com/gin-gonic/gin"
)

// ReportHandler 报表下载处理器
type ReportHandler struct {
	svc *service.ReportService
}

// NewReportHandler 创建报表处理器
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// Download GET /api/inspection-forms/:id/report
func (h *ReportHandler) Download(c *gin.Context) {
	f, filename, err := h.svc.Render(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "inspection form not found")
			return
		}
		InternalError(c, "生成报表失败: "+err.Error())
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "写出报表失败: "+err.Error())
	}
}
