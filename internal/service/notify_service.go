package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Skynami/LunFirPay/internal/constants"
	"github.com/Skynami/LunFirPay/internal/models"
	"github.com/Skynami/LunFirPay/internal/repository"
)

// ErrNotifyRejected 商户端未按约定应答 success
var ErrNotifyRejected = errors.New("merchant notify rejected")

// NotifyService 商户异步通知投递。
// 支付成功后向商户 notify_url POST 签名表单，商户应答 success 视为送达，
// 否则由队列按重试策略再投。
type NotifyService struct {
	orderRepo    repository.OrderRepository
	merchantRepo repository.MerchantRepository
	httpClient   *http.Client
	now          func() time.Time
}

// NewNotifyService 创建商户通知服务
func NewNotifyService(orderRepo repository.OrderRepository, merchantRepo repository.MerchantRepository, timeoutSeconds int) *NotifyService {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 10
	}
	return &NotifyService{
		orderRepo:    orderRepo,
		merchantRepo: merchantRepo,
		httpClient:   &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second},
		now:          time.Now,
	}
}

// BuildNotifyParams 构造商户通知表单（含签名）
func (s *NotifyService) BuildNotifyParams(order *models.Order, merchant *models.Merchant) map[string]string {
	params := map[string]string{
		"app_id":       merchant.AppID,
		"trade_no":     order.TradeNo,
		"out_trade_no": order.OutTradeNo,
		"pay_type":     order.PayType,
		"amount":       order.Amount.Decimal.StringFixed(2),
		"fee_amount":   order.FeeAmount.Decimal.StringFixed(2),
		"status":       order.Status,
	}
	if order.PaidAt != nil {
		params["paid_at"] = order.PaidAt.Format("2006-01-02 15:04:05")
	}
	params["sign"] = BuildMerchantSign(params, merchant.AppSecret)
	params["sign_type"] = "MD5"
	return params
}

// Deliver 投递一次商户通知。投递失败或商户未应答 success 返回错误，
// 由调用方（队列 worker）决定是否重试；通知状态随结果更新。
func (s *NotifyService) Deliver(ctx context.Context, orderID uint) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return ErrOrderFetchFailed
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusSuccess {
		return nil
	}
	if order.NotifyStatus == constants.NotifyStatusSuccess {
		return nil
	}
	if strings.TrimSpace(order.NotifyURL) == "" {
		return s.orderRepo.UpdateNotifyState(order.ID, constants.NotifyStatusFailed, order.NotifyCount+1)
	}
	merchant, err := s.merchantRepo.GetByID(order.MerchantID)
	if err != nil {
		return ErrOrderFetchFailed
	}
	if merchant == nil {
		return ErrMerchantNotFound
	}

	params := s.BuildNotifyParams(order, merchant)
	body, err := s.postForm(ctx, order.NotifyURL, params)
	if err != nil {
		_ = s.orderRepo.UpdateNotifyState(order.ID, constants.NotifyStatusFailed, order.NotifyCount+1)
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(body), "success") {
		_ = s.orderRepo.UpdateNotifyState(order.ID, constants.NotifyStatusFailed, order.NotifyCount+1)
		return ErrNotifyRejected
	}
	return s.orderRepo.UpdateNotifyState(order.ID, constants.NotifyStatusSuccess, order.NotifyCount+1)
}

func (s *NotifyService) postForm(ctx context.Context, endpoint string, params map[string]string) (string, error) {
	values := url.Values{}
	for k, v := range params {
		if v == "" {
			continue
		}
		values.Set(k, v)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
