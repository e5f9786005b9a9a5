package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bitfantasy/fair-qms/internal/qis/entity"
	"github.com/bitfantasy/fair-qms/internal/qis/repository"
	"github.com/bitfantasy/fair-qms/internal/qis/sse"
	"github.com/bitfantasy/fair-qms/pkg/inspection"
	"go.uber.org/zap"
)

var (
	// ErrInvalidTransition 当前状态不允许该流转
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrPermissionDenied 角色在该状态下无此操作权限
	ErrPermissionDenied = errors.New("permission denied")
	// ErrReasonRequired 驳回必须填写原因
	ErrReasonRequired = errors.New("rejection reason is required")
	// ErrInvalidStatus 未知的报告状态
	ErrInvalidStatus = errors.New("invalid form status")
)

// FormService 检验报告服务。负责CRUD、状态流转、历史记录与事件推送。
// 流转只走 DRAFT→SUBMITTED→{APPROVED,REJECTED},终态不再变化。
type FormService struct {
	formRepo    *repository.FormRepository
	historyRepo *repository.HistoryRepository
	reportSvc   *ReportService
	logger      *zap.Logger
}

// NewFormService 创建检验报告服务
func NewFormService(formRepo *repository.FormRepository, historyRepo *repository.HistoryRepository, logger *zap.Logger) *FormService {
	return &FormService{formRepo: formRepo, historyRepo: historyRepo, logger: logger}
}

// SetReportService 注入报告归档服务(审批通过时归档)
func (s *FormService) SetReportService(reportSvc *ReportService) {
	s.reportSvc = reportSvc
}

// Get 获取单份报告
func (s *FormService) Get(ctx context.Context, id string) (*inspection.InspectionForm, error) {
	return s.formRepo.FindByID(ctx, id)
}

// ListAll 获取全部报告
func (s *FormService) ListAll(ctx context.Context) ([]inspection.InspectionForm, error) {
	return s.formRepo.ListAll(ctx)
}

// ListByStatus 按状态获取报告
func (s *FormService) ListByStatus(ctx context.Context, status inspection.FormStatus) ([]inspection.InspectionForm, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.formRepo.ListByStatus(ctx, status)
}

// ListBySubmitter 按提交人获取报告
func (s *FormService) ListBySubmitter(ctx context.Context, name string) ([]inspection.InspectionForm, error) {
	return s.formRepo.ListBySubmitter(ctx, name)
}

// Create 创建报告。ID与状态由服务端分配,批次组成按涂料重算。
func (s *FormService) Create(ctx context.Context, form *inspection.InspectionForm, actor string) (*inspection.InspectionForm, error) {
	form.ID = generateID()
	if !form.Status.Valid() {
		form.Status = inspection.FormStatusDraft
	}
	form.SyncBatchComposition()

	if err := s.formRepo.Create(ctx, form); err != nil {
		return nil, fmt.Errorf("create form: %w", err)
	}

	s.appendHistory(ctx, form.ID, entity.HistoryActionCreate, "", string(form.Status), actor, "")
	return form, nil
}

// Update 整体覆写报告内容。状态、ID、创建时间不可经此修改,
// 状态只能通过提交/审批/驳回流转。编辑权限按角色与状态校验,
// 后写覆盖先写,不做并发合并。
func (s *FormService) Update(ctx context.Context, id string, form *inspection.InspectionForm, actor string, role inspection.Role) (*inspection.InspectionForm, error) {
	existing, err := s.formRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	caps := inspection.ResolvePermissions(role, existing.Status, existing.SubmittedBy == actor)
	if !caps.CanEditDocumentInfo && !caps.CanEditInspectionDetails &&
		!caps.CanEditLacquers && !caps.CanEditCharacteristics {
		return nil, fmt.Errorf("%w: role %s cannot edit a %s form", ErrPermissionDenied, role, existing.Status)
	}

	form.ID = existing.ID
	form.Status = existing.Status
	form.CreatedAt = existing.CreatedAt
	form.SyncBatchComposition()

	if err := s.formRepo.Update(ctx, form); err != nil {
		return nil, fmt.Errorf("update form: %w", err)
	}

	s.appendHistory(ctx, form.ID, entity.HistoryActionUpdate, string(existing.Status), string(existing.Status), actor, "")
	return form, nil
}

// Submit 提交报告:仅DRAFT可提交。写入提交人/提交时间并重算批次组成。
func (s *FormService) Submit(ctx context.Context, id, submittedBy string, role inspection.Role) (*inspection.InspectionForm, error) {
	form, err := s.formRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if form.Status != inspection.FormStatusDraft {
		return nil, fmt.Errorf("%w: only DRAFT forms can be submitted, got %s", ErrInvalidTransition, form.Status)
	}
	if !inspection.ResolvePermissions(role, form.Status, form.SubmittedBy == submittedBy).CanSubmit {
		return nil, fmt.Errorf("%w: role %s cannot submit", ErrPermissionDenied, role)
	}

	now := time.Now()
	form.Status = inspection.FormStatusSubmitted
	form.SubmittedBy = submittedBy
	form.SubmittedAt = &now
	form.SyncBatchComposition()

	if err := s.formRepo.Update(ctx, form); err != nil {
		return nil, fmt.Errorf("submit form: %w", err)
	}

	s.appendHistory(ctx, form.ID, entity.HistoryActionSubmit, string(inspection.FormStatusDraft), string(form.Status), submittedBy, "")
	sse.PublishFormUpdate(form.ID, entity.HistoryActionSubmit, string(form.Status))
	return form, nil
}

// Approve 审批通过:仅SUBMITTED可审批。补写质量签核字段(已有值保留),
// 归档打印报表(尽力而为,失败仅记日志)。
func (s *FormService) Approve(ctx context.Context, id, reviewedBy, comments string, role inspection.Role) (*inspection.InspectionForm, error) {
	form, err := s.formRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if form.Status != inspection.FormStatusSubmitted {
		return nil, fmt.Errorf("%w: only SUBMITTED forms can be approved, got %s", ErrInvalidTransition, form.Status)
	}
	if !inspection.ResolvePermissions(role, form.Status, false).CanApprove {
		return nil, fmt.Errorf("%w: role %s cannot approve", ErrPermissionDenied, role)
	}

	now := time.Now()
	form.Status = inspection.FormStatusApproved
	form.ReviewedBy = reviewedBy
	form.ReviewedAt = &now
	form.Comments = comments
	if form.QAExecutive == "" {
		form.QAExecutive = reviewedBy
	}
	if form.QASignature == "" {
		form.QASignature = inspection.SignatureToken(reviewedBy)
	}
	if form.FinalApprovalTime == "" {
		form.FinalApprovalTime = now.Format("2006-01-02 15:04:05")
	}

	if err := s.formRepo.Update(ctx, form); err != nil {
		return nil, fmt.Errorf("approve form: %w", err)
	}

	s.appendHistory(ctx, form.ID, entity.HistoryActionApprove, string(inspection.FormStatusSubmitted), string(form.Status), reviewedBy, comments)
	sse.PublishFormUpdate(form.ID, entity.HistoryActionApprove, string(form.Status))

	if s.reportSvc != nil {
		if err := s.reportSvc.Archive(ctx, form); err != nil {
			s.logger.Warn("archive approved form report failed",
				zap.String("form_id", form.ID), zap.Error(err))
		}
	}
	return form, nil
}

// Reject 驳回:仅SUBMITTED可驳回,且原因必填。原因为空时报告状态不变。
func (s *FormService) Reject(ctx context.Context, id, reviewedBy, comments string, role inspection.Role) (*inspection.InspectionForm, error) {
	if strings.TrimSpace(comments) == "" {
		return nil, ErrReasonRequired
	}

	form, err := s.formRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if form.Status != inspection.FormStatusSubmitted {
		return nil, fmt.Errorf("%w: only SUBMITTED forms can be rejected, got %s", ErrInvalidTransition, form.Status)
	}
	if !inspection.ResolvePermissions(role, form.Status, false).CanReject {
		return nil, fmt.Errorf("%w: role %s cannot reject", ErrPermissionDenied, role)
	}

	now := time.Now()
	form.Status = inspection.FormStatusRejected
	form.ReviewedBy = reviewedBy
	form.ReviewedAt = &now
	form.Comments = comments

	if err := s.formRepo.Update(ctx, form); err != nil {
		return nil, fmt.Errorf("reject form: %w", err)
	}

	s.appendHistory(ctx, form.ID, entity.HistoryActionReject, string(inspection.FormStatusSubmitted), string(form.Status), reviewedBy, comments)
	sse.PublishFormUpdate(form.ID, entity.HistoryActionReject, string(form.Status))
	return form, nil
}

// History 获取报告操作历史
func (s *FormService) History(ctx context.Context, formID string) ([]entity.FormHistory, error) {
	if _, err := s.formRepo.FindByID(ctx, formID); err != nil {
		return nil, err
	}
	return s.historyRepo.ListByForm(ctx, formID)
}

// appendHistory 追加历史记录,失败不阻塞主流程
func (s *FormService) appendHistory(ctx context.Context, formID, action, from, to, actor, comment string) {
	h := &entity.FormHistory{
		ID:        generateID(),
		FormID:    formID,
		Action:    action,
		FromState: from,
		ToState:   to,
		Actor:     actor,
		Comment:   comment,
	}
	if err := s.historyRepo.Create(ctx, h); err != nil {
		s.logger.Warn("append form history failed",
			zap.String("form_id", formID), zap.String("action", action), zap.Error(err))
	}
}
