package handler

import (
	"errors"

	"github.com/bitfantasy/fair-qms/internal/qis/repository"
	"github.com/bitfantasy/fair-qms/internal/qis/service"
	"github.com/bitfantasy/fair-qms/pkg/inspection"
	"github.com/gin-gonic/gin"
)

// FormHandler 检验报告处理器。成功响应直接返回报告实体JSON。
type FormHandler struct {
	svc *service.FormService
}

// NewFormHandler 创建检验报告处理器
func NewFormHandler(svc *service.FormService) *FormHandler {
	return &FormHandler{svc: svc}
}

// formError 统一映射服务层错误
func formError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "inspection form not found")
	case errors.Is(err, service.ErrReasonRequired):
		BadRequest(c, "rejection reason is required")
	case errors.Is(err, service.ErrInvalidStatus):
		BadRequest(c, "invalid form status")
	case errors.Is(err, service.ErrInvalidTransition):
		Conflict(c, err.Error())
	case errors.Is(err, service.ErrPermissionDenied):
		Forbidden(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

// List GET /api/inspection-forms
func (h *FormHandler) List(c *gin.Context) {
	forms, err := h.svc.ListAll(c.Request.Context())
	if err != nil {
		formError(c, err)
		return
	}
	c.JSON(200, forms)
}

// Get GET /api/inspection-forms/:id
func (h *FormHandler) Get(c *gin.Context) {
	form, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		formError(c, err)
		return
	}
	c.JSON(200, form)
}

// ListByStatus GET /api/inspection-forms/status/:status
func (h *FormHandler) ListByStatus(c *gin.Context) {
	status := inspection.FormStatus(c.Param("status"))
	forms, err := h.svc.ListByStatus(c.Request.Context(), status)
	if err != nil {
		formError(c, err)
		return
	}
	c.JSON(200, forms)
}

// ListBySubmitter GET /api/inspection-forms/submitter/:name
func (h *FormHandler) ListBySubmitter(c *gin.Context) {
	forms, err := h.svc.ListBySubmitter(c.Request.Context(), c.Param("name"))
	if err != nil {
		formError(c, err)
		return
	}
	c.JSON(200, forms)
}

// Create POST /api/inspection-forms
func (h *FormHandler) Create(c *gin.Context) {
	var form inspection.InspectionForm
	if err := c.ShouldBindJSON(&form); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	created, err := h.svc.Create(c.Request.Context(), &form, GetUserName(c))
	if err != nil {
		formError(c, err)
		return
	}
	c.JSON(201, created)
}

// Update PUT /api/inspection-forms/:id
func (h *FormHandler) Update(c *gin.Context) {
	var form inspection.InspectionForm
	if err := c.ShouldBindJSON(&form); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), c.Param("id"), &form, GetUserName(c), GetUserRole(c))
	if err != nil {
		formError(c, err)
		return
	}
	c.JSON(200, updated)
}

// Submit POST /api/inspection-forms/:id/submit?submittedBy=xxx
func (h *FormHandler) Submit(c *gin.Context) {
	submittedBy := c.Query("submittedBy")
	if submittedBy == "" {
		submittedBy = GetUserName(c)
	}

	form, err := h.svc.Submit(c.Request.Context(), c.Param("id"), submittedBy, GetUserRole(c))
	if err != nil {
		formError(c, err)
		return
	}
	c.JSON(200, form)
}

// Approve POST /api/inspection-forms/:id/approve?reviewedBy=xxx&comments=xxx
func (h *FormHandler) Approve(c *gin.Context) {
	reviewedBy := c.Query("reviewedBy")
	if reviewedBy == "" {
		reviewedBy = GetUserName(c)
	}

	form, err := h.svc.Approve(c.Request.Context(), c.Param("id"), reviewedBy, c.Query("comments"), GetUserRole(c))
	if err != nil {
		formError(c, err)
		return
	}
	c.JSON(200, form)
}

// Reject POST /api/inspection-forms/:id/reject?reviewedBy=xxx&comments=xxx
func (h *FormHandler) Reject(c *gin.Context) {
	reviewedBy := c.Query("reviewedBy")
	if reviewedBy == "" {
		reviewedBy = GetUserName(c)
	}

	form, err := h.svc.Reject(c.Request.Context(), c.Param("id"), reviewedBy, c.Query("comments"), GetUserRole(c))
	if err != nil {
		formError(c, err)
		return
	}
	c.JSON(200, form)
}

// History GET /api/inspection-forms/:id/history
func (h *FormHandler) History(c *gin.Context) {
	entries, err := h.svc.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		formError(c, err)
		return
	}
	c.JSON(200, entries)
}
