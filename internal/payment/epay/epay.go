package epay

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/Skynami/LunFirPay/internal/constants"
	"github.com/Skynami/LunFirPay/internal/models"
	"github.com/Skynami/LunFirPay/internal/payment"
)

var (
	ErrConfigInvalid    = errors.New("epay config invalid")
	ErrRequestFailed    = errors.New("epay request failed")
	ErrResponseInvalid  = errors.New("epay response invalid")
	ErrPayTypeNotOK     = errors.New("epay pay type invalid")
	ErrSignatureInvalid = errors.New("epay signature invalid")
)

// Config 易支付渠道配置（渠道 ConfigJSON 解析结果）
type Config struct {
	GatewayURL  string `json:"gateway_url"`  // 网关地址
	MerchantID  string `json:"merchant_id"`  // 商户号
	MerchantKey string `json:"merchant_key"` // 商户密钥
	APIPath     string `json:"api_path"`     // 接口路径
}

// Provider 易支付适配器（v1 MD5 表单协议）
type Provider struct {
	httpClient *http.Client
}

// New 创建易支付适配器
func New() *Provider {
	return &Provider{httpClient: &http.Client{Timeout: 10 * time.Second}}
}

// Name 适配器标识
func (p *Provider) Name() string {
	return constants.PaymentProviderEpay
}

// SupportsPayType 易支付支持的支付方式
func (p *Provider) SupportsPayType(payType string) bool {
	return resolvePayType(payType) != ""
}

// ParseConfig 解析渠道配置
func ParseConfig(raw models.JSON) (*Config, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: empty config", ErrConfigInvalid)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal config failed", ErrConfigInvalid)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: unmarshal config failed", ErrConfigInvalid)
	}
	if cfg.APIPath == "" {
		cfg.APIPath = "/mapi.php"
	}
	return &cfg, nil
}

// ValidateConfig 校验易支付配置完整性
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.GatewayURL) == "" {
		return fmt.Errorf("%w: gateway_url is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.MerchantID) == "" {
		return fmt.Errorf("%w: merchant_id is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.MerchantKey) == "" {
		return fmt.Errorf("%w: merchant_key is required", ErrConfigInvalid)
	}
	return nil
}

// Submit 向易支付下单
func (p *Provider) Submit(ctx context.Context, raw models.JSON, input payment.SubmitInput) (*payment.SubmitResult, error) {
	cfg, err := ParseConfig(raw)
	if err != nil {
		return nil, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if input.TradeNo == "" || input.Amount == "" || input.ClientIP == "" {
		return nil, ErrConfigInvalid
	}
	if input.NotifyURL == "" {
		return nil, ErrConfigInvalid
	}
	payType := resolvePayType(input.PayType)
	if payType == "" {
		return nil, ErrPayTypeNotOK
	}
	subject := input.Subject
	if subject == "" {
		subject = input.TradeNo
	}

	params := map[string]string{
		"pid":          cfg.MerchantID,
		"type":         payType,
		"out_trade_no": input.TradeNo,
		"notify_url":   input.NotifyURL,
		"return_url":   input.ReturnURL,
		"name":         subject,
		"money":        input.Amount,
		"clientip":     input.ClientIP,
		"device":       resolveDevice(input.Device),
	}
	params["sign"] = signMD5(buildSignContent(params) + cfg.MerchantKey)
	params["sign_type"] = "MD5"

	endpoint := buildEndpoint(cfg.GatewayURL, cfg.APIPath)
	respBytes, err := p.postForm(ctx, endpoint, params)
	if err != nil {
		return nil, ErrRequestFailed
	}

	var rawResp map[string]interface{}
	_ = json.Unmarshal(respBytes, &rawResp)
	var resp struct {
		Code      int    `json:"code"`
		Msg       string `json:"msg"`
		TradeNo   string `json:"trade_no"`
		PayURL    string `json:"payurl"`
		QRCode    string `json:"qrcode"`
		URLScheme string `json:"urlscheme"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, ErrResponseInvalid
	}
	if resp.Code != 1 {
		return nil, fmt.Errorf("%w: %s", ErrResponseInvalid, resp.Msg)
	}

	result := &payment.SubmitResult{
		PayURL:      strings.TrimSpace(resp.PayURL),
		QRCode:      strings.TrimSpace(resp.QRCode),
		ProviderRef: strings.TrimSpace(resp.TradeNo),
		Raw:         rawResp,
	}
	if result.PayURL == "" && resp.URLScheme != "" {
		result.PayURL = strings.TrimSpace(resp.URLScheme)
	}
	if result.QRCode != "" && result.PayURL == "" {
		result.Interaction = constants.PaymentInteractionQR
	} else {
		result.Interaction = constants.PaymentInteractionJump
	}
	return result, nil
}

// VerifyNotify 验证易支付异步回调签名与交易状态
func (p *Provider) VerifyNotify(_ context.Context, raw models.JSON, input payment.NotifyInput) (*payment.NotifyResult, error) {
	cfg, err := ParseConfig(raw)
	if err != nil {
		return nil, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	sign := strings.TrimSpace(firstValue(input.Form, "sign"))
	if sign == "" {
		return nil, ErrSignatureInvalid
	}
	params := make(map[string]string, len(input.Form))
	for key, values := range input.Form {
		if len(values) == 0 {
			continue
		}
		params[key] = values[0]
	}
	expected := signMD5(buildSignContent(params) + cfg.MerchantKey)
	if !strings.EqualFold(expected, sign) {
		return nil, ErrSignatureInvalid
	}
	return &payment.NotifyResult{
		TradeNo:     strings.TrimSpace(params["out_trade_no"]),
		ProviderRef: strings.TrimSpace(params["trade_no"]),
		Amount:      strings.TrimSpace(params["money"]),
		Paid:        strings.EqualFold(strings.TrimSpace(params["trade_status"]), "TRADE_SUCCESS"),
		Ack:         "success",
	}, nil
}

func resolvePayType(payType string) string {
	switch strings.ToLower(strings.TrimSpace(payType)) {
	case constants.PayTypeAlipay:
		return constants.PayTypeAlipay
	case constants.PayTypeWxpay:
		return constants.PayTypeWxpay
	case constants.PayTypeQQpay:
		return constants.PayTypeQQpay
	case constants.PayTypeBank:
		return constants.PayTypeBank
	default:
		return ""
	}
}

func resolveDevice(device string) string {
	switch strings.ToLower(strings.TrimSpace(device)) {
	case constants.DeviceMobile:
		return "mobile"
	default:
		return "pc"
	}
}

func buildEndpoint(gatewayURL, apiPath string) string {
	base := strings.TrimRight(strings.TrimSpace(gatewayURL), "/")
	path := strings.TrimSpace(apiPath)
	if path == "" {
		return base
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

func (p *Provider) postForm(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	values := url.Values{}
	for k, v := range params {
		if v == "" {
			continue
		}
		values.Set(k, v)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ErrRequestFailed
	}
	return io.ReadAll(resp.Body)
}

func buildSignContent(params map[string]string) string {
	var keys []string
	for k, v := range params {
		if v == "" {
			continue
		}
		if k == "sign" || k == "sign_type" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, params[k]))
	}
	return strings.Join(pairs, "&")
}

func signMD5(content string) string {
	sum := md5.Sum([]byte(content))
	return strings.ToLower(hex.EncodeToString(sum[:]))
}

func firstValue(form map[string][]string, key string) string {
	values, ok := form[key]
	if !ok || len(values) == 0 {
		return ""
	}
	return values[0]
}
