package models

import "time"

// PayType 支付方式目录（静态，运行期只读）
type PayType struct {
	ID          uint      `gorm:"primarykey" json:"id"`                     // 主键
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`         // 方式标识（alipay/wxpay/qqpay/bank）
	DisplayName string    `gorm:"not null" json:"display_name"`             // 展示名称
	Device      string    `gorm:"not null;default:all" json:"device"`       // 设备限制（all/pc/mobile）
	IsEnabled   bool      `gorm:"not null;default:true" json:"is_enabled"`  // 是否启用
	SortOrder   int       `gorm:"not null;default:0;index" json:"sort_order"` // 排序
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                  // 创建时间
	UpdatedAt   time.Time `gorm:"index" json:"updated_at"`                  // 更新时间
}

// TableName 指定表名
func (PayType) TableName() string {
	return "pay_types"
}

// SupportsDevice 判断支付方式在请求设备上是否可用
func (t PayType) SupportsDevice(device string) bool {
	if t.Device == "" || t.Device == "all" {
		return true
	}
	return t.Device == device
}
