package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bitfantasy/fair-qms/pkg/inspection"
)

var (
	// ErrReasonRequired 驳回必须填写原因,校验在任何网络调用之前
	ErrReasonRequired = errors.New("rejection reason is required")
	// ErrNotPersisted 报告尚未保存,没有服务端id
	ErrNotPersisted = errors.New("form has not been persisted")
	// ErrPermissionDenied 当前角色/状态下无此操作能力
	ErrPermissionDenied = errors.New("operation not permitted for this role and status")
)

// LifecycleController 报告生命周期控制器。
// 持有一份在编辑的报告,按固定顺序编排 保存→流转,
// 每次成功的服务端调用后以服务端返回的记录整体替换本地副本;
// 失败时本地副本保持不变,绝不本地猜测状态。
type LifecycleController struct {
	client *Client
	user   User
	form   *inspection.InspectionForm
}

// NewLifecycleController 创建控制器。form 为 nil 时从空白模板开始。
func NewLifecycleController(c *Client, user User, form *inspection.InspectionForm) *LifecycleController {
	if form == nil {
		form = inspection.NewTemplate()
	}
	return &LifecycleController{client: c, user: user, form: form}
}

// Form 当前报告副本
func (lc *LifecycleController) Form() *inspection.InspectionForm {
	return lc.form
}

// Load 按id从服务端加载报告并替换本地副本
func (lc *LifecycleController) Load(ctx context.Context, id string) error {
	form, err := lc.client.GetForm(ctx, id)
	if err != nil {
		return fmt.Errorf("load form %s: %w", id, err)
	}
	lc.form = form
	return nil
}

// Permissions 当前用户对当前报告的能力集
func (lc *LifecycleController) Permissions() inspection.CapabilitySet {
	isOwner := lc.form.SubmittedBy == lc.user.Name
	return inspection.ResolvePermissions(lc.user.Role, lc.form.Status, isOwner)
}

// Save 持久化当前报告:无id时新建,有id时整体覆写。
// 操作员保存时补写 productionOperator 与签名令牌(仅当尚未填写)。
// 仅在成功后以持久化记录替换本地副本。
func (lc *LifecycleController) Save(ctx context.Context) error {
	payload := *lc.form
	lc.stampOperator(&payload)

	saved, err := lc.persist(ctx, &payload)
	if err != nil {
		return err
	}
	lc.form = saved
	return nil
}

func (lc *LifecycleController) stampOperator(form *inspection.InspectionForm) {
	if lc.user.Role != inspection.RoleOperator {
		return
	}
	if form.ProductionOperator == "" {
		form.ProductionOperator = lc.user.Name
	}
	if form.OperatorSignature == "" {
		form.OperatorSignature = inspection.SignatureToken(lc.user.Name)
	}
}

func (lc *LifecycleController) persist(ctx context.Context, form *inspection.InspectionForm) (*inspection.InspectionForm, error) {
	if form.ID == "" {
		saved, err := lc.client.CreateForm(ctx, form)
		if err != nil {
			return nil, fmt.Errorf("create form: %w", err)
		}
		return saved, nil
	}
	saved, err := lc.client.UpdateForm(ctx, form.ID, form)
	if err != nil {
		return nil, fmt.Errorf("update form: %w", err)
	}
	return saved, nil
}

// Submit 提交报告:先保存(连同提交人/提交时间写入载荷),再请求状态流转。
// 保存成功而流转失败时,本地副本停留在已保存未提交的记录上,错误原样上抛,
// 不做重试,也不在本地改写状态。
func (lc *LifecycleController) Submit(ctx context.Context) error {
	if !lc.Permissions().CanSubmit {
		return ErrPermissionDenied
	}

	payload := *lc.form
	lc.stampOperator(&payload)
	now := time.Now()
	payload.SubmittedBy = lc.user.Name
	payload.SubmittedAt = &now

	saved, err := lc.persist(ctx, &payload)
	if err != nil {
		return err
	}
	lc.form = saved

	confirmed, err := lc.client.SubmitForm(ctx, saved.ID, lc.user.Name)
	if err != nil {
		return fmt.Errorf("submit form %s: %w", saved.ID, err)
	}
	lc.form = confirmed
	return nil
}

// Approve 审批通过:补写质量签核字段后整体覆写,再请求流转。
// comments 可为空。要求报告已持久化。
func (lc *LifecycleController) Approve(ctx context.Context, comments string) error {
	if !lc.Permissions().CanApprove {
		return ErrPermissionDenied
	}
	if lc.form.ID == "" {
		return ErrNotPersisted
	}

	payload := *lc.form
	if payload.QAExecutive == "" {
		payload.QAExecutive = lc.user.Name
	}
	if payload.QASignature == "" {
		payload.QASignature = inspection.SignatureToken(lc.user.Name)
	}
	if payload.FinalApprovalTime == "" {
		payload.FinalApprovalTime = time.Now().Format("2006-01-02 15:04:05")
	}

	saved, err := lc.client.UpdateForm(ctx, payload.ID, &payload)
	if err != nil {
		return fmt.Errorf("update form before approval: %w", err)
	}
	lc.form = saved

	confirmed, err := lc.client.ApproveForm(ctx, saved.ID, lc.user.Name, comments)
	if err != nil {
		return fmt.Errorf("approve form %s: %w", saved.ID, err)
	}
	lc.form = confirmed
	return nil
}

// Reject 驳回。原因为空白时立即返回 ErrReasonRequired,不发起任何网络调用。
func (lc *LifecycleController) Reject(ctx context.Context, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}
	if !lc.Permissions().CanReject {
		return ErrPermissionDenied
	}
	if lc.form.ID == "" {
		return ErrNotPersisted
	}

	confirmed, err := lc.client.RejectForm(ctx, lc.form.ID, lc.user.Name, reason)
	if err != nil {
		return fmt.Errorf("reject form %s: %w", lc.form.ID, err)
	}
	lc.form = confirmed
	return nil
}
