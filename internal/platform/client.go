package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"console/internal/logengine"
)

// APIError 后端协作方返回的结构化错误。
// Code 为机器可读错误码（可能为空），Message 为人类可读描述。
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend: %s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("backend: %s", e.Message)
}

// AsAPIError 提取错误链中的 APIError。
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

type contextKey string

const bearerTokenKey contextKey = "bearer_token"

// WithBearerToken 将调用方令牌放入上下文，由客户端统一附加到出站请求。
// 对应原 Web 控制台的请求拦截器：有令牌则带 Authorization 头，没有则直接放行。
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerTokenKey, token)
}

// BearerToken 取出上下文中的调用方令牌，没有则返回空串。
func BearerToken(ctx context.Context) string {
	if token, ok := ctx.Value(bearerTokenKey).(string); ok {
		return token
	}
	return ""
}

// Client 平台后端 HTTP 客户端，覆盖日志源、用户目录、租户目录与 IP 封禁操作。
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	userAgent  string
}

// ClientOption 客户端配置选项
type ClientOption func(*Client)

// WithTimeout 设置请求超时时间
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRetries 设置 5xx 重试次数
func WithRetries(retries int) ClientOption {
	return func(c *Client) {
		c.retries = retries
	}
}

// NewClient 创建平台后端客户端
func NewClient(baseURL string, opts ...ClientOption) *Client {
	client := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: "AdminConsole/1.0",
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// FetchLogs 拉取审计日志。tenantScope 为空时返回全平台日志，
// 返回顺序不保证，由聚合引擎自行排序。
func (c *Client) FetchLogs(ctx context.Context, tenantScope string) ([]logengine.Record, error) {
	path := "/platform/logs"
	if tenantScope != "" {
		path += "?tenantId=" + url.QueryEscape(tenantScope)
	}
	var records []logengine.Record
	if err := c.getJSON(ctx, path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// FetchMetrics 拉取平台总览指标
func (c *Client) FetchMetrics(ctx context.Context) (*Metrics, error) {
	var m Metrics
	if err := c.getJSON(ctx, "/platform/metrics", &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// FetchTenants 拉取租户目录
func (c *Client) FetchTenants(ctx context.Context) ([]Tenant, error) {
	var tenants []Tenant
	if err := c.getJSON(ctx, "/platform/tenants", &tenants); err != nil {
		return nil, err
	}
	return tenants, nil
}

// ToggleTenant 切换租户启用状态
func (c *Client) ToggleTenant(ctx context.Context, id string) (*Tenant, error) {
	var t Tenant
	if err := c.doJSON(ctx, http.MethodPatch, "/platform/tenants/"+url.PathEscape(id)+"/toggle", struct{}{}, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// FetchUsers 拉取用户目录
func (c *Client) FetchUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.getJSON(ctx, "/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SetUserActive 设置用户启用/封禁状态
func (c *Client) SetUserActive(ctx context.Context, userID string, active bool) error {
	body := map[string]bool{"isActive": active}
	return c.doJSON(ctx, http.MethodPatch, "/users/"+url.PathEscape(userID)+"/status", body, nil)
}

// BlockIP 封禁来源 IP
func (c *Client) BlockIP(ctx context.Context, ip, reason string) error {
	body := map[string]string{"ip": ip, "reason": reason}
	return c.doJSON(ctx, http.MethodPost, "/security/block-ip", body, nil)
}

// getJSON 发送 GET 请求并解析 JSON 响应
func (c *Client) getJSON(ctx context.Context, path string, result any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, result)
}

// doJSON 执行一次 JSON 请求。5xx 与网络错误按配置重试，
// 4xx 错误解析为 APIError 直接返回。
func (c *Client) doJSON(ctx context.Context, method, path string, body, result any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("序列化请求体失败: %w", err)
		}
		payload = data
	}

	var resp *http.Response
	var err error
	for attempt := 0; attempt <= c.retries; attempt++ {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, reqErr := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if reqErr != nil {
			return fmt.Errorf("创建请求失败: %w", reqErr)
		}
		req.Header.Set("User-Agent", c.userAgent)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token := BearerToken(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err = c.httpClient.Do(req)
		if err == nil && resp.StatusCode < 500 {
			break
		}
		if attempt == c.retries {
			break
		}
		if resp != nil {
			resp.Body.Close()
			resp = nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("请求后端失败: %w", ctx.Err())
		case <-time.After(time.Duration(attempt+1) * 100 * time.Millisecond):
		}
	}
	if err != nil {
		return fmt.Errorf("请求后端失败: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp.StatusCode, data)
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("解析JSON响应失败: %w", err)
	}
	return nil
}

// decodeAPIError 尽量按结构化错误解析，解析失败则退化为状态码描述。
func decodeAPIError(status int, body []byte) error {
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(body, apiErr); err == nil && apiErr.Message != "" {
		return apiErr
	}
	var legacy struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &legacy); err == nil && legacy.Error != "" {
		apiErr.Message = legacy.Error
		return apiErr
	}
	apiErr.Message = http.StatusText(status)
	return apiErr
}
