package models

import (
	"time"

	"gorm.io/gorm"
)

// Merchant 接入商户
type Merchant struct {
	ID         uint           `gorm:"primarykey" json:"id"`                  // 主键
	AppID      string         `gorm:"uniqueIndex;not null" json:"app_id"`    // 商户应用ID（对外标识）
	AppSecret  string         `gorm:"not null" json:"-"`                     // 商户密钥（参数签名用）
	Name       string         `gorm:"not null" json:"name"`                  // 商户名称
	PayGroupID *uint          `gorm:"index" json:"pay_group_id,omitempty"`   // 指定支付组（为空时用默认组）
	NotifyURL  string         `gorm:"type:text" json:"notify_url"`           // 默认异步通知地址
	Status     string         `gorm:"not null;index" json:"status"`          // 商户状态（active/disabled）
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`               // 创建时间
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`               // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                        // 软删除时间
}

// TableName 指定表名
func (Merchant) TableName() string {
	return "merchants"
}
