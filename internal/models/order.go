package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 支付订单
// 路由引擎只读取 (channel_id, status, amount, created_at) 计算渠道当日已消耗额度，
// 其余字段属于收银与通知流程。
type Order struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                     // 主键
	TradeNo      string         `gorm:"uniqueIndex;not null" json:"trade_no"`                     // 平台订单号
	OutTradeNo   string         `gorm:"index:idx_merchant_out_trade_no,unique;not null" json:"out_trade_no"` // 商户订单号
	MerchantID   uint           `gorm:"index:idx_merchant_out_trade_no,unique;not null" json:"merchant_id"`  // 商户ID
	ChannelID    uint           `gorm:"index;not null" json:"channel_id"`                         // 支付渠道ID（额度归属）
	PayType      string         `gorm:"index;not null" json:"pay_type"`                           // 支付方式
	Subject      string         `gorm:"not null" json:"subject"`                                  // 商品名称
	Amount       Money          `gorm:"type:decimal(20,2);not null" json:"amount"`                // 订单金额
	FeeRate      Money          `gorm:"type:decimal(6,2);not null;default:0" json:"fee_rate"`     // 生效费率（百分比）
	FeeAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"fee_amount"`  // 手续费金额
	Status       string         `gorm:"index;not null" json:"status"`                             // 订单状态
	Device       string         `gorm:"not null;default:all" json:"device"`                       // 下单设备
	ClientIP     string         `gorm:"type:varchar(64)" json:"client_ip,omitempty"`              // 下单客户端IP
	NotifyURL    string         `gorm:"type:text" json:"notify_url"`                              // 商户异步通知地址
	ReturnURL    string         `gorm:"type:text" json:"return_url"`                              // 商户同步跳转地址
	ProviderRef  string         `gorm:"index" json:"provider_ref"`                                // 上游流水号
	PayURL       string         `gorm:"type:text" json:"pay_url"`                                 // 跳转链接
	QRCode       string         `gorm:"type:text" json:"qr_code"`                                 // 二维码内容
	NotifyStatus string         `gorm:"index;not null;default:pending" json:"notify_status"`      // 商户通知状态
	NotifyCount  int            `gorm:"not null;default:0" json:"notify_count"`                   // 商户通知次数
	PaidAt       *time.Time     `gorm:"index" json:"paid_at"`                                     // 支付时间
	ExpiresAt    *time.Time     `gorm:"index" json:"expires_at"`                                  // 过期时间
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                                  // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
