// Package client 提供检验报告服务的Go客户端:
// REST访问封装与报告生命周期控制器。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bitfantasy/fair-qms/pkg/inspection"
)

// APIError 服务端返回的业务错误
type APIError struct {
	Status  int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error [%d]: %s", e.Status, e.Message)
}

// User 登录返回的用户信息
type User struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Role         inspection.Role `json:"role"`
	Token        string          `json:"token,omitempty"`
	RefreshToken string          `json:"refresh_token,omitempty"`
}

// HistoryEntry 报告生命周期审计记录
type HistoryEntry struct {
	ID        string    `json:"id"`
	FormID    string    `json:"form_id"`
	Action    string    `json:"action"`
	FromState string    `json:"from_state"`
	ToState   string    `json:"to_state"`
	Actor     string    `json:"actor"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// DashboardMetrics 主控看板聚合指标
type DashboardMetrics struct {
	TotalForms      int64   `json:"totalForms"`
	PendingReview   int64   `json:"pendingReview"`
	ApprovedToday   int64   `json:"approvedToday"`
	QualityIssues   int64   `json:"qualityIssues"`
	AvgApprovalTime float64 `json:"avgApprovalTime"`
	ComplianceRate  float64 `json:"complianceRate"`
}

// Client 检验报告服务REST客户端
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New 创建客户端。baseURL 为服务根地址(不含 /api 前缀)。
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetToken 设置后续请求使用的访问令牌
func (c *Client) SetToken(token string) {
	c.token = token
}

// doRequest 执行API请求。
// body 会被JSON序列化(nil不发送),result 为响应结构体指针。
// 非2xx响应解析错误包装并返回 *APIError。
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body interface{}, result interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	u := c.baseURL + "/api" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Login 用户名/口令登录。成功后令牌自动用于后续请求。
func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	q := url.Values{}
	q.Set("username", username)
	q.Set("password", password)

	var user User
	if err := c.doRequest(ctx, http.MethodPost, "/users/login", q, nil, &user); err != nil {
		return nil, err
	}
	c.token = user.Token
	return &user, nil
}

// ListForms 拉取全部检验报告
func (c *Client) ListForms(ctx context.Context) ([]inspection.InspectionForm, error) {
	var forms []inspection.InspectionForm
	if err := c.doRequest(ctx, http.MethodGet, "/inspection-forms", nil, nil, &forms); err != nil {
		return nil, err
	}
	return forms, nil
}

// GetForm 按id拉取单份报告
func (c *Client) GetForm(ctx context.Context, id string) (*inspection.InspectionForm, error) {
	var form inspection.InspectionForm
	if err := c.doRequest(ctx, http.MethodGet, "/inspection-forms/"+id, nil, nil, &form); err != nil {
		return nil, err
	}
	return &form, nil
}

// ListFormsByStatus 按状态过滤报告
func (c *Client) ListFormsByStatus(ctx context.Context, status inspection.FormStatus) ([]inspection.InspectionForm, error) {
	var forms []inspection.InspectionForm
	if err := c.doRequest(ctx, http.MethodGet, "/inspection-forms/status/"+string(status), nil, nil, &forms); err != nil {
		return nil, err
	}
	return forms, nil
}

// ListFormsBySubmitter 按提交人过滤报告
func (c *Client) ListFormsBySubmitter(ctx context.Context, name string) ([]inspection.InspectionForm, error) {
	var forms []inspection.InspectionForm
	if err := c.doRequest(ctx, http.MethodGet, "/inspection-forms/submitter/"+url.PathEscape(name), nil, nil, &forms); err != nil {
		return nil, err
	}
	return forms, nil
}

// CreateForm 新建报告,返回带服务端id的持久化记录
func (c *Client) CreateForm(ctx context.Context, form *inspection.InspectionForm) (*inspection.InspectionForm, error) {
	var created inspection.InspectionForm
	if err := c.doRequest(ctx, http.MethodPost, "/inspection-forms", nil, form, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateForm 整体覆写已有报告
func (c *Client) UpdateForm(ctx context.Context, id string, form *inspection.InspectionForm) (*inspection.InspectionForm, error) {
	var updated inspection.InspectionForm
	if err := c.doRequest(ctx, http.MethodPut, "/inspection-forms/"+id, nil, form, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// SubmitForm 将草稿报告转入SUBMITTED
func (c *Client) SubmitForm(ctx context.Context, id, submittedBy string) (*inspection.InspectionForm, error) {
	q := url.Values{}
	q.Set("submittedBy", submittedBy)

	var form inspection.InspectionForm
	if err := c.doRequest(ctx, http.MethodPost, "/inspection-forms/"+id+"/submit", q, nil, &form); err != nil {
		return nil, err
	}
	return &form, nil
}

// ApproveForm 审批通过,comments可为空
func (c *Client) ApproveForm(ctx context.Context, id, reviewedBy, comments string) (*inspection.InspectionForm, error) {
	q := url.Values{}
	q.Set("reviewedBy", reviewedBy)
	q.Set("comments", comments)

	var form inspection.InspectionForm
	if err := c.doRequest(ctx, http.MethodPost, "/inspection-forms/"+id+"/approve", q, nil, &form); err != nil {
		return nil, err
	}
	return &form, nil
}

// RejectForm 驳回,comments为驳回原因(服务端要求非空)
func (c *Client) RejectForm(ctx context.Context, id, reviewedBy, comments string) (*inspection.InspectionForm, error) {
	q := url.Values{}
	q.Set("reviewedBy", reviewedBy)
	q.Set("comments", comments)

	var form inspection.InspectionForm
	if err := c.doRequest(ctx, http.MethodPost, "/inspection-forms/"+id+"/reject", q, nil, &form); err != nil {
		return nil, err
	}
	return &form, nil
}

// GetFormHistory 拉取报告审计记录
func (c *Client) GetFormHistory(ctx context.Context, id string) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	if err := c.doRequest(ctx, http.MethodGet, "/inspection-forms/"+id+"/history", nil, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ListUsers 拉取全部用户(master)
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.doRequest(ctx, http.MethodGet, "/users", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListUsersByRole 按角色拉取用户
func (c *Client) ListUsersByRole(ctx context.Context, role inspection.Role) ([]User, error) {
	var users []User
	if err := c.doRequest(ctx, http.MethodGet, "/users/role/"+string(role), nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetDashboardMetrics 拉取看板聚合指标
func (c *Client) GetDashboardMetrics(ctx context.Context) (*DashboardMetrics, error) {
	var m DashboardMetrics
	if err := c.doRequest(ctx, http.MethodGet, "/dashboard/metrics", nil, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
