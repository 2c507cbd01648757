package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Skynami/LunFirPay/internal/constants"
	"github.com/Skynami/LunFirPay/internal/models"
	"github.com/Skynami/LunFirPay/internal/payment"
	"github.com/Skynami/LunFirPay/internal/queue"
	"github.com/Skynami/LunFirPay/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// fakeProvider 测试用适配器：下单与回调结果可注入
type fakeProvider struct {
	name         string
	submitResult *payment.SubmitResult
	submitErr    error
	notifyResult *payment.NotifyResult
	notifyErr    error
	submitCalls  int
}

func (f *fakeProvider) Name() string                   { return f.name }
func (f *fakeProvider) SupportsPayType(string) bool    { return true }
func (f *fakeProvider) Submit(_ context.Context, _ models.JSON, _ payment.SubmitInput) (*payment.SubmitResult, error) {
	f.submitCalls++
	return f.submitResult, f.submitErr
}
func (f *fakeProvider) VerifyNotify(_ context.Context, _ models.JSON, _ payment.NotifyInput) (*payment.NotifyResult, error) {
	return f.notifyResult, f.notifyErr
}

func setupOrderServiceTest(t *testing.T, provider payment.Provider) (*OrderService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Merchant{},
		&models.PayType{},
		&models.Channel{},
		&models.PayGroup{},
		&models.PayGroupRule{},
		&models.ChannelGroup{},
		&models.ChannelGroupMember{},
		&models.Order{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	routing := NewRoutingService(
		repository.NewChannelRepository(db),
		repository.NewPayGroupRepository(db),
		repository.NewChannelGroupRepository(db),
		repository.NewPayTypeRepository(db),
		repository.NewMerchantRepository(db),
		repository.NewOrderRepository(db),
		"Asia/Shanghai",
	)
	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("queue client failed: %v", err)
	}
	svc := NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewMerchantRepository(db),
		repository.NewChannelRepository(db),
		routing,
		payment.NewRegistry(provider),
		queueClient,
		"https://pay.example.com",
		30,
	)
	return svc, db
}

func TestCreateOrderSuccess(t *testing.T) {
	fake := &fakeProvider{
		name: constants.PaymentProviderEpay,
		submitResult: &payment.SubmitResult{
			Interaction: constants.PaymentInteractionJump,
			PayURL:      "https://upstream.example/pay",
			ProviderRef: "UP123",
		},
	}
	svc, db := setupOrderServiceTest(t, fake)
	seedAlipayType(t, db)
	merchant := seedMerchant(t, db, nil)
	channel := seedChannel(t, db, "A", 0, func(c *models.Channel) {
		c.FeeRate = money(t, "2.50")
	})

	result, err := svc.CreateOrder(CreateOrderInput{
		Merchant:   merchant,
		OutTradeNo: "M-001",
		PayType:    constants.PayTypeAlipay,
		Subject:    "测试商品",
		Amount:     decimal.RequireFromString("100.00"),
		Device:     constants.DevicePC,
		ClientIP:   "203.0.113.9",
		NotifyURL:  "https://merchant.example/notify",
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if result.PayURL != "https://upstream.example/pay" {
		t.Fatalf("expected upstream pay url, got %q", result.PayURL)
	}
	order := result.Order
	if order.ChannelID != channel.ID {
		t.Fatalf("expected channel %d, got %d", channel.ID, order.ChannelID)
	}
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("new order must be pending, got %s", order.Status)
	}
	if !order.FeeAmount.Decimal.Equal(decimal.RequireFromString("2.50")) {
		t.Fatalf("expected fee 2.50 for 100.00 at 2.50%%, got %s", order.FeeAmount.String())
	}
	if order.ExpiresAt == nil {
		t.Fatal("order must carry an expiry")
	}
	if fake.submitCalls != 1 {
		t.Fatalf("expected one upstream submit, got %d", fake.submitCalls)
	}
}

func TestCreateOrderDuplicateOutTradeNo(t *testing.T) {
	fake := &fakeProvider{
		name:         constants.PaymentProviderEpay,
		submitResult: &payment.SubmitResult{Interaction: constants.PaymentInteractionJump, PayURL: "u"},
	}
	svc, db := setupOrderServiceTest(t, fake)
	seedAlipayType(t, db)
	merchant := seedMerchant(t, db, nil)
	seedChannel(t, db, "A", 0, nil)

	input := CreateOrderInput{
		Merchant:   merchant,
		OutTradeNo: "M-001",
		PayType:    constants.PayTypeAlipay,
		Amount:     decimal.RequireFromString("10.00"),
		ClientIP:   "203.0.113.9",
		NotifyURL:  "https://merchant.example/notify",
	}
	if _, err := svc.CreateOrder(input); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := svc.CreateOrder(input); !errors.Is(err, ErrOrderDuplicated) {
		t.Fatalf("expected ErrOrderDuplicated, got %v", err)
	}
}

func TestCreateOrderNoChannel(t *testing.T) {
	fake := &fakeProvider{name: constants.PaymentProviderEpay}
	svc, db := setupOrderServiceTest(t, fake)
	seedAlipayType(t, db)
	merchant := seedMerchant(t, db, nil)

	_, err := svc.CreateOrder(CreateOrderInput{
		Merchant:   merchant,
		OutTradeNo: "M-001",
		PayType:    constants.PayTypeAlipay,
		Amount:     decimal.RequireFromString("10.00"),
		ClientIP:   "203.0.113.9",
		NotifyURL:  "https://merchant.example/notify",
	})
	if !errors.Is(err, ErrNoAvailableChannel) {
		t.Fatalf("expected ErrNoAvailableChannel, got %v", err)
	}
	if fake.submitCalls != 0 {
		t.Fatal("no upstream submit without a routed channel")
	}
}

func TestCreateOrderSubmitFailureDoesNotPersist(t *testing.T) {
	fake := &fakeProvider{
		name:      constants.PaymentProviderEpay,
		submitErr: errors.New("upstream down"),
	}
	svc, db := setupOrderServiceTest(t, fake)
	seedAlipayType(t, db)
	merchant := seedMerchant(t, db, nil)
	seedChannel(t, db, "A", 0, nil)

	_, err := svc.CreateOrder(CreateOrderInput{
		Merchant:   merchant,
		OutTradeNo: "M-001",
		PayType:    constants.PayTypeAlipay,
		Amount:     decimal.RequireFromString("10.00"),
		ClientIP:   "203.0.113.9",
		NotifyURL:  "https://merchant.example/notify",
	})
	if !errors.Is(err, ErrProviderSubmit) {
		t.Fatalf("expected ErrProviderSubmit, got %v", err)
	}
	var count int64
	if err := db.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("failed submit must not leave an order, found %d", count)
	}
}

func TestHandleProviderNotifyMarksPaidOnce(t *testing.T) {
	fake := &fakeProvider{
		name: constants.PaymentProviderEpay,
		submitResult: &payment.SubmitResult{
			Interaction: constants.PaymentInteractionJump,
			PayURL:      "u",
		},
	}
	svc, db := setupOrderServiceTest(t, fake)
	seedAlipayType(t, db)
	merchant := seedMerchant(t, db, nil)
	channel := seedChannel(t, db, "A", 0, nil)

	created, err := svc.CreateOrder(CreateOrderInput{
		Merchant:   merchant,
		OutTradeNo: "M-001",
		PayType:    constants.PayTypeAlipay,
		Amount:     decimal.RequireFromString("10.00"),
		ClientIP:   "203.0.113.9",
		NotifyURL:  "https://merchant.example/notify",
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	fake.notifyResult = &payment.NotifyResult{
		TradeNo:     created.Order.TradeNo,
		ProviderRef: "UPREF",
		Amount:      "10.00",
		Paid:        true,
		Ack:         "success",
	}
	ack, err := svc.HandleProviderNotify(context.Background(), constants.PaymentProviderEpay, channel.ID, payment.NotifyInput{})
	if err != nil {
		t.Fatalf("notify failed: %v", err)
	}
	if ack != "success" {
		t.Fatalf("expected provider ack, got %q", ack)
	}

	var stored models.Order
	if err := db.First(&stored, created.Order.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if stored.Status != constants.OrderStatusSuccess || stored.ProviderRef != "UPREF" || stored.PaidAt == nil {
		t.Fatalf("order not marked paid: %+v", stored)
	}

	// 重复回调幂等
	if _, err := svc.HandleProviderNotify(context.Background(), constants.PaymentProviderEpay, channel.ID, payment.NotifyInput{}); err != nil {
		t.Fatalf("repeated notify must stay idempotent: %v", err)
	}
}

func TestHandleProviderNotifyAmountMismatch(t *testing.T) {
	fake := &fakeProvider{
		name:         constants.PaymentProviderEpay,
		submitResult: &payment.SubmitResult{Interaction: constants.PaymentInteractionJump, PayURL: "u"},
	}
	svc, db := setupOrderServiceTest(t, fake)
	seedAlipayType(t, db)
	merchant := seedMerchant(t, db, nil)
	channel := seedChannel(t, db, "A", 0, nil)

	created, err := svc.CreateOrder(CreateOrderInput{
		Merchant:   merchant,
		OutTradeNo: "M-001",
		PayType:    constants.PayTypeAlipay,
		Amount:     decimal.RequireFromString("10.00"),
		ClientIP:   "203.0.113.9",
		NotifyURL:  "https://merchant.example/notify",
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	fake.notifyResult = &payment.NotifyResult{
		TradeNo: created.Order.TradeNo,
		Amount:  "9.99",
		Paid:    true,
		Ack:     "success",
	}
	if _, err := svc.HandleProviderNotify(context.Background(), constants.PaymentProviderEpay, channel.ID, payment.NotifyInput{}); err == nil {
		t.Fatal("amount mismatch must be rejected")
	}
	var stored models.Order
	if err := db.First(&stored, created.Order.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if stored.Status != constants.OrderStatusPending {
		t.Fatalf("mismatched notify must not change status, got %s", stored.Status)
	}
}

func TestCloseTimeout(t *testing.T) {
	fake := &fakeProvider{
		name:         constants.PaymentProviderEpay,
		submitResult: &payment.SubmitResult{Interaction: constants.PaymentInteractionJump, PayURL: "u"},
	}
	svc, db := setupOrderServiceTest(t, fake)
	seedAlipayType(t, db)
	merchant := seedMerchant(t, db, nil)
	seedChannel(t, db, "A", 0, nil)

	created, err := svc.CreateOrder(CreateOrderInput{
		Merchant:   merchant,
		OutTradeNo: "M-001",
		PayType:    constants.PayTypeAlipay,
		Amount:     decimal.RequireFromString("10.00"),
		ClientIP:   "203.0.113.9",
		NotifyURL:  "https://merchant.example/notify",
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	// 未到期：不动
	if err := svc.CloseTimeout(created.Order.ID); err != nil {
		t.Fatalf("close before expiry failed: %v", err)
	}
	var stored models.Order
	if err := db.First(&stored, created.Order.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if stored.Status != constants.OrderStatusPending {
		t.Fatalf("unexpired order must stay pending, got %s", stored.Status)
	}

	// 拨快时钟后关闭
	svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	if err := svc.CloseTimeout(created.Order.ID); err != nil {
		t.Fatalf("close after expiry failed: %v", err)
	}
	if err := db.First(&stored, created.Order.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if stored.Status != constants.OrderStatusExpired {
		t.Fatalf("expired order must close, got %s", stored.Status)
	}
}
