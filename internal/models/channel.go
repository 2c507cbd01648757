package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Channel 支付渠道（某一上游提供方的一套商户凭证）
type Channel struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                     // 主键
	Name         string         `gorm:"not null" json:"name"`                                     // 渠道名称
	ProviderType string         `gorm:"not null" json:"provider_type"`                            // 适配器标识（epay/wechatpay）
	PayTypes     string         `gorm:"not null" json:"pay_types"`                                // 支持的支付方式（逗号分隔，如 alipay,wxpay,bank）
	MinAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"min_amount"`  // 单笔最小金额（0 为不限）
	MaxAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"max_amount"`  // 单笔最大金额（0 为不限）
	DailyLimit   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"daily_limit"` // 日限额（0 为不限）
	Priority     int            `gorm:"not null;default:0;index" json:"priority"`                 // 优先级（越大越优先）
	Weight       int            `gorm:"not null;default:1" json:"weight"`                         // 权重（加权策略使用）
	FeeRate      Money          `gorm:"type:decimal(6,2);not null;default:0" json:"fee_rate"`     // 手续费比例（百分比）
	ConfigJSON   JSON           `gorm:"type:json" json:"config_json"`                             // 渠道凭证配置
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`                   // 是否启用
	SortOrder    int            `gorm:"not null;default:0" json:"sort_order"`                     // 排序
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                                  // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间（保留历史订单引用）
}

// TableName 指定表名
func (Channel) TableName() string {
	return "channels"
}

// SupportsPayType 判断渠道是否支持指定支付方式
func (c Channel) SupportsPayType(payType string) bool {
	payType = strings.TrimSpace(payType)
	if payType == "" {
		return false
	}
	for _, item := range strings.Split(c.PayTypes, ",") {
		if strings.TrimSpace(item) == payType {
			return true
		}
	}
	return false
}

// PayTypeList 返回渠道支持的支付方式列表（去空白）
func (c Channel) PayTypeList() []string {
	var result []string
	for _, item := range strings.Split(c.PayTypes, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}

// EffectiveWeight 返回有效权重（未配置时按 1 计）
func (c Channel) EffectiveWeight() int {
	if c.Weight <= 0 {
		return 1
	}
	return c.Weight
}
