package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"console/internal/platform"
)

// notVerifiedCode 认证后端用于标记未验证账户的机器码
const notVerifiedCode = "ACCOUNT_NOT_VERIFIED"

// ProviderError 认证后端返回的错误响应
type ProviderError struct {
	Status  int    `json:"-"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("auth provider: %s (%d %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("auth provider: %s (%d)", e.Message, e.Status)
}

// AsProviderError 提取链路中的 *ProviderError
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsNotVerified 判断登录失败是否因为账户未验证。
// 后端的全局异常过滤器偶尔会丢掉 code 字段，只留下提示文案，
// 所以除了机器码之外还匹配消息中的 "verificar"。
func IsNotVerified(err error) bool {
	pe, ok := AsProviderError(err)
	if !ok {
		return false
	}
	if pe.Code == notVerifiedCode {
		return true
	}
	return strings.Contains(strings.ToLower(pe.Message), "verificar")
}

// Credentials 登录请求体
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration 注册请求体
type Registration struct {
	Fullname     string `json:"fullname"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	BusinessName string `json:"businessName"`
	Slug         string `json:"slug"`
	Plan         string `json:"plan,omitempty"`
}

// AuthResponse 登录 / 验证成功后后端返回的令牌与用户信息
type AuthResponse struct {
	AccessToken string           `json:"access_token"`
	User        platform.User    `json:"user"`
	Tenant      *platform.Tenant `json:"tenant,omitempty"`
}

// Provider 认证后端的抽象，便于网关层测试替换
type Provider interface {
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Register(ctx context.Context, reg Registration) error
	VerifyAccount(ctx context.Context, email, code string) (*AuthResponse, error)
	ResendCode(ctx context.Context, email string) error
}

// ProviderClient 认证后端 HTTP 客户端，代理登录、注册与验证码流程
type ProviderClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewProviderClient 创建认证后端客户端
func NewProviderClient(baseURL string) *ProviderClient {
	return &ProviderClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Login 代理登录请求
func (c *ProviderClient) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.postJSON(ctx, "/auth/login", Credentials{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register 代理注册请求，未指定套餐时默认 "free"
func (c *ProviderClient) Register(ctx context.Context, reg Registration) error {
	if reg.Plan == "" {
		reg.Plan = "free"
	}
	return c.postJSON(ctx, "/auth/register", reg, nil)
}

// VerifyAccount 提交邮箱验证码，成功时后端可能直接签发令牌
func (c *ProviderClient) VerifyAccount(ctx context.Context, email, code string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.postJSON(ctx, "/auth/verify", map[string]string{"email": email, "code": code}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResendCode 请求重发验证码
func (c *ProviderClient) ResendCode(ctx context.Context, email string) error {
	return c.postJSON(ctx, "/auth/resend", map[string]string{"email": email}, nil)
}

func (c *ProviderClient) postJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("编码请求体失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("构建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求认证后端失败: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode >= 400 {
		return decodeProviderError(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("解析响应失败: %w", err)
		}
	}
	return nil
}

// decodeProviderError 解析错误响应，兼容 {code,message} 与旧版 {error} 两种格式
func decodeProviderError(status int, data []byte) error {
	pe := &ProviderError{Status: status}
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		pe.Code = body.Code
		pe.Message = body.Message
		if pe.Message == "" {
			pe.Message = body.Error
		}
	}
	if pe.Message == "" {
		pe.Message = http.StatusText(status)
	}
	return pe
}
