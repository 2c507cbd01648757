package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/Skynami/LunFirPay/internal/constants"
	"github.com/Skynami/LunFirPay/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupOrderRepositoryTest(t *testing.T) (*GormOrderRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.Channel{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewOrderRepository(db), db
}

func createTestOrder(t *testing.T, db *gorm.DB, channelID uint, status string, amount int64, createdAt time.Time) models.Order {
	t.Helper()
	order := models.Order{
		TradeNo:    fmt.Sprintf("LF%d%d%s", createdAt.UnixNano(), channelID, status),
		OutTradeNo: fmt.Sprintf("OUT%d%d%s", createdAt.UnixNano(), channelID, status),
		MerchantID: 1,
		ChannelID:  channelID,
		PayType:    constants.PayTypeAlipay,
		Subject:    "test order",
		Amount:     models.NewMoneyFromDecimal(decimal.NewFromInt(amount)),
		Status:     status,
		Device:     constants.DeviceAll,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestSumChannelPaidBetweenOnlyCountsSuccessInWindow(t *testing.T) {
	repo, db := setupOrderRepositoryTest(t)

	dayStart := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	createTestOrder(t, db, 1, constants.OrderStatusSuccess, 100, dayStart.Add(1*time.Hour))
	createTestOrder(t, db, 1, constants.OrderStatusSuccess, 50, dayStart.Add(12*time.Hour))
	// 非成功订单不计入额度
	createTestOrder(t, db, 1, constants.OrderStatusPending, 999, dayStart.Add(2*time.Hour))
	createTestOrder(t, db, 1, constants.OrderStatusFailed, 999, dayStart.Add(3*time.Hour))
	// 窗口之外不计入
	createTestOrder(t, db, 1, constants.OrderStatusSuccess, 999, dayStart.Add(-1*time.Hour))
	createTestOrder(t, db, 1, constants.OrderStatusSuccess, 999, dayEnd)
	// 其他渠道不计入
	createTestOrder(t, db, 2, constants.OrderStatusSuccess, 999, dayStart.Add(4*time.Hour))

	total, err := repo.SumChannelPaidBetween(1, dayStart, dayEnd)
	if err != nil {
		t.Fatalf("sum failed: %v", err)
	}
	if !total.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("expected 150, got %s", total.String())
	}
}

func TestSumChannelPaidBetweenEmpty(t *testing.T) {
	repo, _ := setupOrderRepositoryTest(t)

	from := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	total, err := repo.SumChannelPaidBetween(42, from, from.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("sum failed: %v", err)
	}
	if !total.IsZero() {
		t.Fatalf("expected zero, got %s", total.String())
	}
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	repo, db := setupOrderRepositoryTest(t)

	now := time.Now().UTC().Truncate(time.Second)
	order := createTestOrder(t, db, 1, constants.OrderStatusPending, 100, now)

	changed, err := repo.MarkPaid(order.ID, "REF001", now)
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if !changed {
		t.Fatalf("expected first mark paid to take effect")
	}

	changed, err = repo.MarkPaid(order.ID, "REF002", now)
	if err != nil {
		t.Fatalf("second mark paid failed: %v", err)
	}
	if changed {
		t.Fatalf("expected repeated mark paid to be a no-op")
	}

	got, err := repo.GetByID(order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if got.Status != constants.OrderStatusSuccess {
		t.Fatalf("unexpected status: %s", got.Status)
	}
	if got.ProviderRef != "REF001" {
		t.Fatalf("provider ref overwritten by repeated callback: %s", got.ProviderRef)
	}
}

func TestMarkExpiredOnlyTouchesPending(t *testing.T) {
	repo, db := setupOrderRepositoryTest(t)

	now := time.Now().UTC().Truncate(time.Second)
	pending := createTestOrder(t, db, 1, constants.OrderStatusPending, 100, now)
	paid := createTestOrder(t, db, 1, constants.OrderStatusSuccess, 100, now)

	if err := repo.MarkExpired(pending.ID); err != nil {
		t.Fatalf("mark expired failed: %v", err)
	}
	if err := repo.MarkExpired(paid.ID); err != nil {
		t.Fatalf("mark expired failed: %v", err)
	}

	got, _ := repo.GetByID(pending.ID)
	if got.Status != constants.OrderStatusExpired {
		t.Fatalf("expected expired, got %s", got.Status)
	}
	got, _ = repo.GetByID(paid.ID)
	if got.Status != constants.OrderStatusSuccess {
		t.Fatalf("paid order must not be expired, got %s", got.Status)
	}
}
