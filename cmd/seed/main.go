package main

import (
	"os"
	"strings"

	"github.com/Skynami/LunFirPay/internal/config"
	"github.com/Skynami/LunFirPay/internal/constants"
	"github.com/Skynami/LunFirPay/internal/logger"
	"github.com/Skynami/LunFirPay/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 默认管理员
	if err := models.InitDefaultAdmin(os.Getenv("LFP_DEFAULT_ADMIN_USERNAME"), os.Getenv("LFP_DEFAULT_ADMIN_PASSWORD")); err != nil {
		stdLog.Printf("Failed to init default admin: %v", err)
	}

	// 支付方式目录
	payTypes := []models.PayType{
		{Name: constants.PayTypeAlipay, DisplayName: "支付宝", Device: constants.DeviceAll, IsEnabled: true, SortOrder: 10},
		{Name: constants.PayTypeWxpay, DisplayName: "微信支付", Device: constants.DeviceAll, IsEnabled: true, SortOrder: 20},
		{Name: constants.PayTypeQQpay, DisplayName: "QQ钱包", Device: constants.DeviceAll, IsEnabled: true, SortOrder: 30},
		{Name: constants.PayTypeBank, DisplayName: "网银支付", Device: constants.DevicePC, IsEnabled: true, SortOrder: 40},
	}
	for _, payType := range payTypes {
		var existing models.PayType
		if err := models.DB.Where("name = ?", payType.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&payType).Error; err != nil {
				stdLog.Printf("Failed to create pay type %s: %v", payType.Name, err)
			} else {
				stdLog.Printf("Created pay type: %s", payType.Name)
			}
		} else {
			stdLog.Printf("Pay type already exists: %s", payType.Name)
		}
	}

	// 示例渠道（凭证需在后台替换为真实配置）
	channel := models.Channel{
		Name:         "演示易支付渠道",
		ProviderType: constants.PaymentProviderEpay,
		PayTypes:     "alipay,wxpay,qqpay,bank",
		MinAmount:    models.NewMoneyFromDecimal(decimal.NewFromFloat(0.01)),
		MaxAmount:    models.NewMoneyFromDecimal(decimal.NewFromInt(10000)),
		DailyLimit:   models.NewMoneyFromDecimal(decimal.Zero),
		Priority:     10,
		Weight:       1,
		FeeRate:      models.NewMoneyFromDecimal(decimal.NewFromFloat(1.5)),
		ConfigJSON: models.JSON{
			"gateway_url":  "https://epay.example.com",
			"merchant_id":  "1000",
			"merchant_key": "demo-key-change-me",
		},
		IsActive: true,
	}
	var existingChannel models.Channel
	if err := models.DB.Where("name = ?", channel.Name).First(&existingChannel).Error; err != nil {
		if err := models.DB.Create(&channel).Error; err != nil {
			stdLog.Printf("Failed to create demo channel: %v", err)
		} else {
			stdLog.Printf("Created demo channel: %s (id=%d)", channel.Name, channel.ID)
		}
	} else {
		channel = existingChannel
		stdLog.Printf("Demo channel already exists: %s", channel.Name)
	}

	// 默认支付组与规则
	var group models.PayGroup
	if err := models.DB.Where("is_default = ?", true).First(&group).Error; err != nil {
		group = models.PayGroup{Name: "默认支付组", IsDefault: true}
		if err := models.DB.Create(&group).Error; err != nil {
			stdLog.Fatalf("Failed to create default pay group: %v", err)
		}
		stdLog.Printf("Created default pay group (id=%d)", group.ID)
	} else {
		stdLog.Printf("Default pay group already exists (id=%d)", group.ID)
	}

	for _, payType := range []string{constants.PayTypeAlipay, constants.PayTypeWxpay} {
		var existingRule models.PayGroupRule
		if err := models.DB.Where("group_id = ? AND pay_type = ?", group.ID, payType).First(&existingRule).Error; err != nil {
			rule := models.PayGroupRule{
				GroupID: group.ID,
				PayType: payType,
				Mode:    constants.RuleModeFirstAvailable,
			}
			if err := models.DB.Create(&rule).Error; err != nil {
				stdLog.Printf("Failed to create rule %s: %v", payType, err)
			} else {
				stdLog.Printf("Created routing rule: %s -> %s", payType, rule.Mode)
			}
		} else {
			stdLog.Printf("Routing rule already exists: %s", payType)
		}
	}

	// 示例商户
	var existingMerchant models.Merchant
	if err := models.DB.Where("name = ?", "演示商户").First(&existingMerchant).Error; err != nil {
		merchant := models.Merchant{
			AppID:     strings.ReplaceAll(uuid.NewString(), "-", ""),
			AppSecret: strings.ReplaceAll(uuid.NewString(), "-", ""),
			Name:      "演示商户",
			Status:    constants.MerchantStatusActive,
		}
		if err := models.DB.Create(&merchant).Error; err != nil {
			stdLog.Printf("Failed to create demo merchant: %v", err)
		} else {
			stdLog.Printf("Created demo merchant: app_id=%s app_secret=%s", merchant.AppID, merchant.AppSecret)
		}
	} else {
		stdLog.Printf("Demo merchant already exists: app_id=%s", existingMerchant.AppID)
	}

	stdLog.Printf("Seed finished")
}
