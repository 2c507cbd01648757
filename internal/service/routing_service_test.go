package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Skynami/LunFirPay/internal/constants"
	"github.com/Skynami/LunFirPay/internal/models"
	"github.com/Skynami/LunFirPay/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupRoutingTest(t *testing.T) (*RoutingService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:routing_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
	svc := NewRoutingService(
		repository.NewChannelRepository(db),
		repository.NewPayGroupRepository(db),
		repository.NewChannelGroupRepository(db),
		repository.NewPayTypeRepository(db),
		repository.NewMerchantRepository(db),
		repository.NewOrderRepository(db),
		"Asia/Shanghai",
	)
	return svc, db
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("create %T failed: %v", value, err)
	}
}

func money(t *testing.T, raw string) models.Money {
	t.Helper()
	m, err := models.NewMoneyFromString(raw)
	if err != nil {
		t.Fatalf("parse money %q failed: %v", raw, err)
	}
	return m
}

func seedAlipayType(t *testing.T, db *gorm.DB) {
	t.Helper()
	mustCreate(t, db, &models.PayType{Name: constants.PayTypeAlipay, DisplayName: "支付宝", Device: constants.DeviceAll, IsEnabled: true})
}

func seedMerchant(t *testing.T, db *gorm.DB, groupID *uint) *models.Merchant {
	t.Helper()
	merchant := &models.Merchant{
		AppID:      fmt.Sprintf("app_%d", time.Now().UnixNano()),
		AppSecret:  "secret",
		Name:       "测试商户",
		PayGroupID: groupID,
		Status:     constants.MerchantStatusActive,
	}
	mustCreate(t, db, merchant)
	return merchant
}

func seedChannel(t *testing.T, db *gorm.DB, name string, priority int, mutate func(*models.Channel)) *models.Channel {
	t.Helper()
	channel := &models.Channel{
		Name:         name,
		ProviderType: constants.PaymentProviderEpay,
		PayTypes:     constants.PayTypeAlipay,
		Priority:     priority,
		Weight:       1,
		FeeRate:      money(t, "2.50"),
		IsActive:     true,
	}
	if mutate != nil {
		mutate(channel)
	}
	mustCreate(t, db, channel)
	return channel
}

func seedGroupWithRule(t *testing.T, db *gorm.DB, mode string, mutate func(*models.PayGroupRule)) *models.PayGroup {
	t.Helper()
	group := &models.PayGroup{Name: "默认组", IsDefault: true}
	mustCreate(t, db, group)
	rule := &models.PayGroupRule{
		GroupID: group.ID,
		PayType: constants.PayTypeAlipay,
		Mode:    mode,
	}
	if mutate != nil {
		mutate(rule)
	}
	mustCreate(t, db, rule)
	return group
}

func routeAlipay(t *testing.T, svc *RoutingService, merchantID uint, amount string) *RouteResult {
	t.Helper()
	result, err := svc.Route(RouteInput{
		PayType:    constants.PayTypeAlipay,
		MerchantID: merchantID,
		Amount:     decimal.RequireFromString(amount),
		Device:     constants.DevicePC,
	})
	if err != nil {
		t.Fatalf("route failed: %v", err)
	}
	return result
}

func TestRouteAmountBounds(t *testing.T) {
	svc, db := setupRoutingTest(t)
	seedAlipayType(t, db)
	merchant := seedMerchant(t, db, nil)
	channel := seedChannel(t, db, "A", 0, func(c *models.Channel) {
		c.MinAmount = money(t, "10.00")
		c.MaxAmount = money(t, "500.00")
	})

	if result := routeAlipay(t, svc, merchant.ID, "9.99"); result != nil {
		t.Fatalf("amount below min should yield no channel, got %d", result.Channel.ID)
	}
	if result := routeAlipay(t, svc, merchant.ID, "500.01"); result != nil {
		t.Fatalf("amount above max should yield no channel, got %d", result.Channel.ID)
	}
	result := routeAlipay(t, svc, merchant.ID, "10.00")
	if result == nil || result.Channel.ID != channel.ID {
		t.Fatalf("boundary amount should pass, got %+v", result)
	}
	if result := routeAlipay(t, svc, merchant.ID, "500.00"); result == nil {
		t.Fatal("upper boundary amount should pass")
	}
}

func TestRouteZeroBoundsAreUnlimited(t *testing.T) {
	svc, db := setupRoutingTest(t)
	seedAlipayType(t, db)
	merchant := seedMerchant(t, db, nil)
	seedChannel(t, db, "A", 0, nil)

	if result := routeAlipay(t, svc, merchant.ID, "999999.00"); result == nil {
		t.Fatal("zero max amount means unlimited")
	}
	if result := routeAlipay(t, svc, merchant.ID, "0.01"); result == nil {
		t.Fatal("zero min amount means unlimited")
	}
}

func TestRouteDailyLimit(t *testing.T) {
	svc, db := setupRoutingTest(t)
	seedAlipayType(t, db)
	merchant := seedMerchant(t, db, nil)
	channel := seedChannel(t, db, "A", 0, func(c *models.Channel) {
		c.DailyLimit = money(t, "500.00")
	})

	now := time.Now()
	mustCreate(t, db, &models.Order{
		TradeNo:    "T1",
		OutTradeNo: "OUT1",
		MerchantID: merchant.ID,
		ChannelID:  channel.ID,
		PayType:    constants.PayTypeAlipay,
		Subject:    "s",
		Amount:     money(t, "480.00"),
		Status:     constants.OrderStatusSuccess,
		CreatedAt:  now,
	})
	// 失败订单不占额度
	mustCreate(t, db, &models.Order{
		TradeNo:    "T2",
		OutTradeNo: "OUT2",
		MerchantID: merchant.ID,
		ChannelID:  channel.ID,
		PayType:    constants.PayTypeAlipay,
		Subject:    "s",
		Amount:     money(t, "100.00"),
		Status:     constants.OrderStatusFailed,
		CreatedAt:  now,
	})

	if result := routeAlipay(t, svc, merchant.ID, "25.00"); result != nil {
		t.Fatal("480 consumed + 25 exceeds 500 daily limit")
	}
	if result := routeAlipay(t, svc, merchant.ID, "15.00"); result == nil {
		t.Fatal("480 consumed + 15 fits 500 daily limit")
	}
	if result := routeAlipay(t, svc, merchant.ID, "20.00"); result == nil {
		t.Fatal("exactly reaching the daily limit is allowed")
	}
}

func TestRouteDisabledRule(t *testing.T) {
	svc, db := setupRoutingTest(t)
	seedAlipayType(t, db)
	seedChannel(t, db, "A", 0, nil)
	group := seedGroupWithRule(t, db, constants.RuleModeDisabled, nil)
	merchant := seedMerchant(t, db, &group.ID)

	if result := routeAlipay(t, svc, merchant.ID, "10.00"); result != nil {
		t.Fatal("disabled rule must not route")
	}
}

func TestRouteMissingRuleYieldsNothing(t *testing.T) {
	svc, db := setupRoutingTest(t)
	seedAlipayType(t, db)
	seedChannel(t, db, "A", 0, nil)
	group := &models.PayGroup{Name: "空组", IsDefault: true}
	mustCreate(t, db, group)
	merchant := seedMerchant(t, db, &group.ID)

	if result := routeAlipay(t, svc, merchant.ID, "10.00"); result != nil {
		t.Fatal("group without a rule for the pay type must not route")
	}
}

func TestRouteChannelModePinsChannel(t *testing.T) {
	svc, db := setupRoutingTest(t)
	seedAlipayType(t, db)
	pinned := seedChannel(t, db, "A", 0, nil)
	seedChannel(t, db, "B", 10, nil)
	group := seedGroupWithRule(t, db, constants.RuleModeChannel, func(r *models.PayGroupRule) {
		r.ChannelID = pinned.ID
	})
	merchant := seedMerchant(t, db, &group.ID)

	for i := 0; i < 5; i++ {
		result := routeAlipay(t, svc, merchant.ID, "10.00")
		if result == nil || result.Channel.ID != pinned.ID {
			t.Fatalf("channel mode must always pick the pinned channel, got %+v", result)
		}
	}
}

func TestRouteChannelModeInactivePinYieldsNothing(t *testing.T) {
	svc, db := setupRoutingTest(t)
	seedAlipayType(t, db)
	pinned := seedChannel(t, db, "A", 0, func(c *models.Channel) { c.IsActive = false })
	seedChannel(t, db, "B", 10, nil)
	group := seedGroupWithRule(t, db, constants.RuleModeChannel, func(r *models.PayGroupRule) {
		r.ChannelID = pinned.ID
	})
	merchant := seedMerchant(t, db, &group.ID)

	if result := routeAlipay(t, svc, merchant.ID, "10.00"); result != nil {
		t.Fatal("pinned inactive channel must not fall back to another channel")
	}
}

func TestRouteRoundRobinCoversAll(t *testing.T) {
	svc, db := setupRoutingTest(t)
	seedAlipayType(t, db)
	c1 := seedChannel(t, db, "A", 30, nil)
	c2 := seedChannel(t, db, "B", 20, nil)
	c3 := seedChannel(t, db, "C", 10, nil)
	group := seedGroupWithRule(t, db, constants.RuleModeRoundRobin, nil)
	merchant := seedMerchant(t, db, &group.ID)

	// 优先级 DESC：期望顺序 A B C A B C
	expected := []uint{c1.ID, c2.ID, c3.ID, c1.ID, c2.ID, c3.ID}
	for i, want := range expected {
		result := routeAlipay(t, svc, merchant.ID, "10.00")
		if result == nil {
			t.Fatalf("round %d: expected a channel", i)
		}
		if result.Channel.ID != want {
			t.Fatalf("round %d: expected channel %d, got %d", i, want, result.Channel.ID)
		}
	}
}

func TestRouteFirstAvailablePrefersPriority(t *testing.T) {
	svc, db := setupRoutingTest(t)
	seedAlipayType(t, db)
	seedChannel(t, db, "low", 1, nil)
	high := seedChannel(t, db, "high", 9, nil)
	group := seedGroupWithRule(t, db, constants.RuleModeFirstAvailable, nil)
	merchant := seedMerchant(t, db, &group.ID)

	for i := 0; i < 3; i++ {
		result := routeAlipay(t, svc, merchant.ID, "10.00")
		if result == nil || result.Channel.ID != high.ID {
			t.Fatalf("first_available must stick to highest priority, got %+v", result)
		}
	}
}

func TestRouteRandomUsesInjectedSource(t *testing.T) {
	svc, db := setupRoutingTest(t)
	seedAlipayType(t, db)
	seedChannel(t, db, "A", 0, nil)
	c2 := seedChannel(t, db, "B", 0, nil)
	group := seedGroupWithRule(t, db, constants.RuleModeRandom, nil)
	merchant := seedMerchant(t, db, &group.ID)

	svc.randIntn = func(n int) int { return 1 % n }
	result := routeAlipay(t, svc, merchant.ID, "10.00")
	if result == nil || result.Channel.ID != c2.ID {
		t.Fatalf("expected injected random source to pick second channel, got %+v", result)
	}
}

func TestRouteGroupWeightedRandomDistribution(t *testing.T) {
	svc, db := setupRoutingTest(t)
	seedAlipayType(t, db)
	heavy := seedChannel(t, db, "heavy", 0, nil)
	light := seedChannel(t, db, "light", 0, nil)
	channelGroup := &models.ChannelGroup{Name: "组", Strategy: constants.GroupStrategyWeightedRandom, IsActive: true}
	mustCreate(t, db, channelGroup)
	mustCreate(t, db, &models.ChannelGroupMember{GroupID: channelGroup.ID, ChannelID: heavy.ID, Weight: 3, SortOrder: 1})
	mustCreate(t, db, &models.ChannelGroupMember{GroupID: channelGroup.ID, ChannelID: light.ID, Weight: 1, SortOrder: 2})
	group := seedGroupWithRule(t, db, constants.RuleModeGroup, func(r *models.PayGroupRule) {
		r.ChannelGroupID = channelGroup.ID
	})
	merchant := seedMerchant(t, db, &group.ID)

	// 总权重 4：抽签值 0..2 落重权渠道，3 落轻权渠道
	counter := 0
	svc.randIntn = func(n int) int {
		value := counter % n
		counter++
		return value
	}
	picks := map[uint]int{}
	for i := 0; i < 8; i++ {
		result := routeAlipay(t, svc, merchant.ID, "10.00")
		if result == nil {
			t.Fatalf("round %d: expected a channel", i)
		}
		picks[result.Channel.ID]++
	}
	if picks[heavy.ID] != 6 || picks[light.ID] != 2 {
		t.Fatalf("expected 3:1 split over 8 draws, got heavy=%d light=%d", picks[heavy.ID], picks[light.ID])
	}
}

func TestRouteGroupRoundRobinAlternates(t *testing.T) {
	svc, db := setupRoutingTest(t)
	seedAlipayType(t, db)
	c1 := seedChannel(t, db, "A", 0, nil)
	c2 := seedChannel(t, db, "B", 0, nil)
	channelGroup := &models.ChannelGroup{Name: "组", Strategy: constants.GroupStrategyRoundRobin, IsActive: true}
	mustCreate(t, db, channelGroup)
	mustCreate(t, db, &models.ChannelGroupMember{GroupID: channelGroup.ID, ChannelID: c1.ID, SortOrder: 1})
	mustCreate(t, db, &models.ChannelGroupMember{GroupID: channelGroup.ID, ChannelID: c2.ID, SortOrder: 2})
	group := seedGroupWithRule(t, db, constants.RuleModeGroup, func(r *models.PayGroupRule) {
		r.ChannelGroupID = channelGroup.ID
	})
	merchant := seedMerchant(t, db, &group.ID)

	expected := []uint{c1.ID, c2.ID, c1.ID}
	for i, want := range expected {
		result := routeAlipay(t, svc, merchant.ID, "10.00")
		if result == nil || result.Channel.ID != want {
			t.Fatalf("round %d: expected channel %d, got %+v", i, want, result)
		}
	}
}

func TestRouteGroupInactiveYieldsNothing(t *testing.T) {
	svc, db := setupRoutingTest(t)
	seedAlipayType(t, db)
	c1 := seedChannel(t, db, "A", 0, nil)
	channelGroup := &models.ChannelGroup{Name: "组", Strategy: constants.GroupStrategyFirstAvailable, IsActive: false}
	mustCreate(t, db, channelGroup)
	mustCreate(t, db, &models.ChannelGroupMember{GroupID: channelGroup.ID, ChannelID: c1.ID})
	group := seedGroupWithRule(t, db, constants.RuleModeGroup, func(r *models.PayGroupRule) {
		r.ChannelGroupID = channelGroup.ID
	})
	merchant := seedMerchant(t, db, &group.ID)

	if result := routeAlipay(t, svc, merchant.ID, "10.00"); result != nil {
		t.Fatal("inactive channel group must not route")
	}
}

func TestRouteFallsBackToDefaultGroup(t *testing.T) {
	svc, db := setupRoutingTest(t)
	seedAlipayType(t, db)
	channel := seedChannel(t, db, "A", 0, nil)
	seedGroupWithRule(t, db, constants.RuleModeFirstAvailable, nil)
	// 商户未指定支付组
	merchant := seedMerchant(t, db, nil)

	result := routeAlipay(t, svc, merchant.ID, "10.00")
	if result == nil || result.Channel.ID != channel.ID {
		t.Fatalf("merchant without explicit group must use default group, got %+v", result)
	}
}

func TestRouteStaleExplicitGroupFallsToDefault(t *testing.T) {
	svc, db := setupRoutingTest(t)
	seedAlipayType(t, db)
	channel := seedChannel(t, db, "A", 0, nil)
	seedGroupWithRule(t, db, constants.RuleModeFirstAvailable, nil)
	staleID := uint(9999)
	merchant := seedMerchant(t, db, &staleID)

	result := routeAlipay(t, svc, merchant.ID, "10.00")
	if result == nil || result.Channel.ID != channel.ID {
		t.Fatalf("stale group reference must fall back to default group, got %+v", result)
	}
}

func TestRouteRuleRateOverridesChannelFee(t *testing.T) {
	svc, db := setupRoutingTest(t)
	seedAlipayType(t, db)
	seedChannel(t, db, "A", 0, func(c *models.Channel) { c.FeeRate = money(t, "2.50") })
	override := money(t, "1.20")
	group := seedGroupWithRule(t, db, constants.RuleModeFirstAvailable, func(r *models.PayGroupRule) {
		r.Rate = &override
	})
	merchant := seedMerchant(t, db, &group.ID)

	result := routeAlipay(t, svc, merchant.ID, "10.00")
	if result == nil {
		t.Fatal("expected a channel")
	}
	if !result.FeeRate.Decimal.Equal(decimal.RequireFromString("1.20")) {
		t.Fatalf("expected rule rate override 1.20, got %s", result.FeeRate.String())
	}
}

func TestRouteRejectsDisabledPayTypeAndDevice(t *testing.T) {
	svc, db := setupRoutingTest(t)
	mustCreate(t, db, &models.PayType{Name: constants.PayTypeWxpay, DisplayName: "微信", Device: constants.DeviceMobile, IsEnabled: true})
	mustCreate(t, db, &models.PayType{Name: constants.PayTypeQQpay, DisplayName: "QQ", Device: constants.DeviceAll, IsEnabled: false})
	merchant := seedMerchant(t, db, nil)
	seedChannel(t, db, "A", 0, func(c *models.Channel) {
		c.PayTypes = "wxpay,qqpay"
	})

	result, err := svc.Route(RouteInput{
		PayType:    constants.PayTypeWxpay,
		MerchantID: merchant.ID,
		Amount:     decimal.RequireFromString("10.00"),
		Device:     constants.DevicePC,
	})
	if err != nil || result != nil {
		t.Fatalf("mobile-only pay type must not route on pc, got %+v err %v", result, err)
	}

	result, err = svc.Route(RouteInput{
		PayType:    constants.PayTypeQQpay,
		MerchantID: merchant.ID,
		Amount:     decimal.RequireFromString("10.00"),
		Device:     constants.DevicePC,
	})
	if err != nil || result != nil {
		t.Fatalf("disabled pay type must not route, got %+v err %v", result, err)
	}
}

func TestRouteRejectsNonPositiveAmount(t *testing.T) {
	svc, db := setupRoutingTest(t)
	seedAlipayType(t, db)
	merchant := seedMerchant(t, db, nil)
	seedChannel(t, db, "A", 0, nil)

	if result := routeAlipay(t, svc, merchant.ID, "0"); result != nil {
		t.Fatal("zero amount must not route")
	}
	if result := routeAlipay(t, svc, merchant.ID, "-1.00"); result != nil {
		t.Fatal("negative amount must not route")
	}
}

func TestResolvePayTypeFallsBackToStoreWithoutCache(t *testing.T) {
	svc, db := setupRoutingTest(t)
	seedAlipayType(t, db)

	payType, err := svc.resolvePayType(context.Background(), constants.PayTypeAlipay)
	if err != nil {
		t.Fatalf("resolve pay type failed: %v", err)
	}
	if payType == nil || payType.Name != constants.PayTypeAlipay {
		t.Fatalf("store fallback should find the pay type, got %+v", payType)
	}

	missing, err := svc.resolvePayType(nil, "paypal")
	if err != nil {
		t.Fatalf("resolve unknown pay type failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("unknown pay type should resolve to nil, got %+v", missing)
	}
}

func TestPickPayType(t *testing.T) {
	catalog := []models.PayType{
		{Name: constants.PayTypeAlipay, DisplayName: "支付宝"},
		{Name: constants.PayTypeWxpay, DisplayName: "微信支付"},
	}
	if got := pickPayType(catalog, constants.PayTypeWxpay); got == nil || got.DisplayName != "微信支付" {
		t.Fatalf("catalog lookup failed, got %+v", got)
	}
	if got := pickPayType(catalog, "bank"); got != nil {
		t.Fatalf("absent name should return nil, got %+v", got)
	}
	if got := pickPayType(nil, constants.PayTypeAlipay); got != nil {
		t.Fatalf("empty catalog should return nil, got %+v", got)
	}
}
