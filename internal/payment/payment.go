package payment

import (
	"context"
	"errors"
	"strings"

	"github.com/Skynami/LunFirPay/internal/models"
)

var (
	ErrProviderUnknown = errors.New("payment provider unknown")
)

// SubmitInput 适配器下单输入
type SubmitInput struct {
	TradeNo   string
	Subject   string
	Amount    string
	PayType   string
	Device    string
	ClientIP  string
	NotifyURL string
	ReturnURL string
}

// SubmitResult 适配器下单结果
type SubmitResult struct {
	Interaction string // jump / qrcode
	PayURL      string
	QRCode      string
	ProviderRef string
	Raw         map[string]interface{}
}

// NotifyInput 上游异步回调原始内容。
// 表单协议的上游只填 Form，JSON webhook 协议的上游只填 Headers 与 Body。
type NotifyInput struct {
	Form    map[string][]string
	Headers map[string]string
	Body    []byte
}

// NotifyResult 上游回调验签结果
type NotifyResult struct {
	TradeNo     string // 平台订单号（下单时传给上游的 out_trade_no）
	ProviderRef string // 上游流水号
	Amount      string
	Paid        bool
	// Ack 回调校验通过后应答给上游的原文
	Ack string
}

// Provider 支付提供方适配器。
// 渠道的 ConfigJSON 由各适配器自行解析校验，Submit 与 VerifyNotify
// 只吃标准输入，路由与订单层不感知上游协议差异。
type Provider interface {
	// Name 适配器标识，与 Channel.ProviderType 对应
	Name() string
	// SupportsPayType 判断该上游是否支持某支付方式
	SupportsPayType(payType string) bool
	// Submit 向上游下单
	Submit(ctx context.Context, cfg models.JSON, input SubmitInput) (*SubmitResult, error)
	// VerifyNotify 验证上游异步回调（验签 + 状态判定）
	VerifyNotify(ctx context.Context, cfg models.JSON, input NotifyInput) (*NotifyResult, error)
}

// Registry 按提供方标识注册适配器
type Registry struct {
	providers map[string]Provider
}

// NewRegistry 创建适配器注册表
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register 注册适配器，同名覆盖
func (r *Registry) Register(p Provider) {
	if p == nil {
		return
	}
	name := strings.ToLower(strings.TrimSpace(p.Name()))
	if name == "" {
		return
	}
	r.providers[name] = p
}

// Get 按提供方标识获取适配器
func (r *Registry) Get(providerType string) (Provider, error) {
	p, ok := r.providers[strings.ToLower(strings.TrimSpace(providerType))]
	if !ok {
		return nil, ErrProviderUnknown
	}
	return p, nil
}
