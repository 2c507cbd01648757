package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Skynami/LunFirPay/internal/constants"
	"github.com/Skynami/LunFirPay/internal/logger"
	"github.com/Skynami/LunFirPay/internal/models"
	"github.com/Skynami/LunFirPay/internal/payment"
	"github.com/Skynami/LunFirPay/internal/queue"
	"github.com/Skynami/LunFirPay/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService 订单服务：商户下单、上游回调、订单查询与超时关闭
type OrderService struct {
	orderRepo      repository.OrderRepository
	merchantRepo   repository.MerchantRepository
	channelRepo    repository.ChannelRepository
	routingService *RoutingService
	registry       *payment.Registry
	queueClient    *queue.Client
	notifyBaseURL  string
	expireMinutes  int
	now            func() time.Time
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	merchantRepo repository.MerchantRepository,
	channelRepo repository.ChannelRepository,
	routingService *RoutingService,
	registry *payment.Registry,
	queueClient *queue.Client,
	notifyBaseURL string,
	expireMinutes int,
) *OrderService {
	if expireMinutes <= 0 {
		expireMinutes = 30
	}
	return &OrderService{
		orderRepo:      orderRepo,
		merchantRepo:   merchantRepo,
		channelRepo:    channelRepo,
		routingService: routingService,
		registry:       registry,
		queueClient:    queueClient,
		notifyBaseURL:  strings.TrimRight(strings.TrimSpace(notifyBaseURL), "/"),
		expireMinutes:  expireMinutes,
		now:            time.Now,
	}
}

func orderLogger(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}

// ResolveMerchant 按 app_id 解析商户，停用商户视为不可用
func (s *OrderService) ResolveMerchant(appID string) (*models.Merchant, error) {
	merchant, err := s.merchantRepo.GetByAppID(strings.TrimSpace(appID))
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if merchant == nil {
		return nil, ErrMerchantNotFound
	}
	if merchant.Status != constants.MerchantStatusActive {
		return nil, ErrMerchantDisabled
	}
	return merchant, nil
}

// CreateOrderInput 商户下单输入
type CreateOrderInput struct {
	Context    context.Context
	Merchant   *models.Merchant
	OutTradeNo string
	PayType    string
	Subject    string
	Amount     decimal.Decimal
	Device     string
	ClientIP   string
	NotifyURL  string
	ReturnURL  string
}

// CreateOrderResult 商户下单结果
type CreateOrderResult struct {
	Order       *models.Order
	Interaction string
	PayURL      string
	QRCode      string
}

// CreateOrder 商户下单：路由选渠道、向上游下单、落库并挂超时关闭任务。
// 同一商户相同 out_trade_no 只允许一笔未失败订单。
func (s *OrderService) CreateOrder(input CreateOrderInput) (*CreateOrderResult, error) {
	if input.Merchant == nil {
		return nil, ErrMerchantNotFound
	}
	outTradeNo := strings.TrimSpace(input.OutTradeNo)
	if outTradeNo == "" || strings.TrimSpace(input.NotifyURL) == "" {
		return nil, ErrOrderCreateFailed
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrAmountInvalid
	}
	device := strings.ToLower(strings.TrimSpace(input.Device))
	if device == "" {
		device = constants.DeviceAll
	}

	log := orderLogger(
		"merchant_id", input.Merchant.ID,
		"out_trade_no", outTradeNo,
		"pay_type", input.PayType,
		"amount", input.Amount.String(),
		"device", device,
	)

	existing, err := s.orderRepo.GetByMerchantOutTradeNo(input.Merchant.ID, outTradeNo)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if existing != nil {
		log.Infow("order_create_duplicated", "trade_no", existing.TradeNo)
		return nil, ErrOrderDuplicated
	}

	route, err := s.routingService.Route(RouteInput{
		Context:    input.Context,
		PayType:    input.PayType,
		MerchantID: input.Merchant.ID,
		Amount:     input.Amount,
		Device:     device,
	})
	if err != nil {
		log.Errorw("order_create_route_failed", "error", err)
		return nil, ErrOrderCreateFailed
	}
	if route == nil {
		log.Infow("order_create_no_channel")
		return nil, ErrNoAvailableChannel
	}
	channel := route.Channel

	provider, err := s.registry.Get(channel.ProviderType)
	if err != nil {
		log.Errorw("order_create_provider_unknown", "channel_id", channel.ID, "provider_type", channel.ProviderType)
		return nil, ErrProviderUnsupported
	}

	ctx := input.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tradeNo := generateTradeNo()
	submitResult, err := provider.Submit(ctx, channel.ConfigJSON, payment.SubmitInput{
		TradeNo:   tradeNo,
		Subject:   strings.TrimSpace(input.Subject),
		Amount:    input.Amount.StringFixed(2),
		PayType:   route.PayType.Name,
		Device:    device,
		ClientIP:  strings.TrimSpace(input.ClientIP),
		NotifyURL: s.providerNotifyURL(channel),
		ReturnURL: strings.TrimSpace(input.ReturnURL),
	})
	if err != nil {
		log.Errorw("order_create_submit_failed", "channel_id", channel.ID, "provider_type", channel.ProviderType, "error", err)
		return nil, ErrProviderSubmit
	}

	now := s.now()
	expiresAt := now.Add(time.Duration(s.expireMinutes) * time.Minute)
	feeRate := route.FeeRate.Decimal
	feeAmount := input.Amount.Mul(feeRate).Div(decimal.NewFromInt(100)).Round(2)
	order := &models.Order{
		TradeNo:      tradeNo,
		OutTradeNo:   outTradeNo,
		MerchantID:   input.Merchant.ID,
		ChannelID:    channel.ID,
		PayType:      route.PayType.Name,
		Subject:      strings.TrimSpace(input.Subject),
		Amount:       models.NewMoneyFromDecimal(input.Amount),
		FeeRate:      models.NewMoneyFromDecimal(feeRate),
		FeeAmount:    models.NewMoneyFromDecimal(feeAmount),
		Status:       constants.OrderStatusPending,
		Device:       device,
		ClientIP:     strings.TrimSpace(input.ClientIP),
		NotifyURL:    strings.TrimSpace(input.NotifyURL),
		ReturnURL:    strings.TrimSpace(input.ReturnURL),
		ProviderRef:  submitResult.ProviderRef,
		PayURL:       submitResult.PayURL,
		QRCode:       submitResult.QRCode,
		NotifyStatus: constants.NotifyStatusPending,
		ExpiresAt:    &expiresAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.orderRepo.Create(order); err != nil {
		log.Errorw("order_create_persist_failed", "trade_no", tradeNo, "error", err)
		return nil, ErrOrderDuplicated
	}

	if err := s.queueClient.EnqueueOrderTimeoutClose(queue.OrderTimeoutClosePayload{OrderID: order.ID}, expiresAt.Sub(now)); err != nil {
		log.Warnw("order_create_timeout_enqueue_failed", "order_id", order.ID, "error", err)
	}

	log.Infow("order_created",
		"order_id", order.ID,
		"trade_no", tradeNo,
		"channel_id", channel.ID,
		"fee_rate", feeRate.String(),
	)
	return &CreateOrderResult{
		Order:       order,
		Interaction: submitResult.Interaction,
		PayURL:      submitResult.PayURL,
		QRCode:      submitResult.QRCode,
	}, nil
}

// HandleProviderNotify 处理上游异步回调：验签、核对金额、置为已支付并
// 触发商户通知。重复回调幂等，应答原文由适配器给出。
func (s *OrderService) HandleProviderNotify(ctx context.Context, providerType string, channelID uint, input payment.NotifyInput) (string, error) {
	channel, err := s.channelRepo.GetByID(channelID)
	if err != nil {
		return "", ErrOrderFetchFailed
	}
	if channel == nil {
		return "", ErrChannelNotFound
	}
	if !strings.EqualFold(channel.ProviderType, providerType) {
		return "", ErrChannelNotFound
	}
	provider, err := s.registry.Get(channel.ProviderType)
	if err != nil {
		return "", ErrProviderUnsupported
	}

	result, err := provider.VerifyNotify(ctx, channel.ConfigJSON, input)
	if err != nil {
		orderLogger("channel_id", channelID, "provider_type", providerType).
			Warnw("provider_notify_verify_failed", "error", err)
		return "", ErrMerchantSignInvalid
	}

	log := orderLogger(
		"channel_id", channelID,
		"provider_type", providerType,
		"trade_no", result.TradeNo,
		"provider_ref", result.ProviderRef,
	)
	if !result.Paid {
		log.Infow("provider_notify_not_paid")
		return result.Ack, nil
	}

	order, err := s.orderRepo.GetByTradeNo(result.TradeNo)
	if err != nil {
		return "", ErrOrderFetchFailed
	}
	if order == nil {
		log.Warnw("provider_notify_order_not_found")
		return "", ErrOrderNotFound
	}
	if result.Amount != "" {
		notified, err := decimal.NewFromString(result.Amount)
		if err != nil || notified.Cmp(order.Amount.Decimal) != 0 {
			log.Warnw("provider_notify_amount_mismatch",
				"order_amount", order.Amount.String(),
				"notify_amount", result.Amount,
			)
			return "", ErrOrderStatusInvalid
		}
	}

	changed, err := s.orderRepo.MarkPaid(order.ID, result.ProviderRef, s.now())
	if err != nil {
		log.Errorw("provider_notify_mark_paid_failed", "order_id", order.ID, "error", err)
		return "", ErrOrderFetchFailed
	}
	if !changed {
		log.Infow("provider_notify_idempotent", "order_id", order.ID, "status", order.Status)
		return result.Ack, nil
	}

	if err := s.queueClient.EnqueueMerchantNotify(queue.MerchantNotifyPayload{OrderID: order.ID}); err != nil {
		log.Errorw("provider_notify_enqueue_failed", "order_id", order.ID, "error", err)
	}
	log.Infow("provider_notify_paid", "order_id", order.ID)
	return result.Ack, nil
}

// QueryOrder 商户查单
func (s *OrderService) QueryOrder(merchant *models.Merchant, outTradeNo string) (*models.Order, error) {
	if merchant == nil {
		return nil, ErrMerchantNotFound
	}
	order, err := s.orderRepo.GetByMerchantOutTradeNo(merchant.ID, strings.TrimSpace(outTradeNo))
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// CloseTimeout 关闭超时未支付订单，已支付或已关闭的订单不动
func (s *OrderService) CloseTimeout(orderID uint) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return ErrOrderFetchFailed
	}
	if order == nil || order.Status != constants.OrderStatusPending {
		return nil
	}
	if order.ExpiresAt != nil && order.ExpiresAt.After(s.now()) {
		return nil
	}
	if err := s.orderRepo.MarkExpired(order.ID); err != nil {
		return err
	}
	orderLogger("order_id", order.ID, "trade_no", order.TradeNo).Infow("order_timeout_closed")
	return nil
}

// providerNotifyURL 上游回调地址，按 提供方/渠道 维度区分
func (s *OrderService) providerNotifyURL(channel *models.Channel) string {
	if s.notifyBaseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/api/v1/notify/%s/%d", s.notifyBaseURL, strings.ToLower(channel.ProviderType), channel.ID)
}

func generateTradeNo() string {
	return fmt.Sprintf("LF%s%s", time.Now().Format("20060102150405"), randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}
