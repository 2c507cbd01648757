package models

import "time"

// PayGroup 支付组（商户维度的路由策略）
type PayGroup struct {
	ID        uint      `gorm:"primarykey" json:"id"`                      // 主键
	Name      string    `gorm:"not null" json:"name"`                      // 支付组名称
	IsDefault bool      `gorm:"not null;default:false;index" json:"is_default"` // 是否为系统默认组（至多一个）
	CreatedAt time.Time `gorm:"index" json:"created_at"`                   // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                   // 更新时间

	Rules []PayGroupRule `gorm:"foreignKey:GroupID" json:"rules,omitempty"` // 按支付方式的路由规则
}

// TableName 指定表名
func (PayGroup) TableName() string {
	return "pay_groups"
}

// RuleFor 查找指定支付方式的路由规则
func (g *PayGroup) RuleFor(payType string) *PayGroupRule {
	if g == nil {
		return nil
	}
	for i := range g.Rules {
		if g.Rules[i].PayType == payType {
			return &g.Rules[i]
		}
	}
	return nil
}

// PayGroupRule 支付组内单个支付方式的路由规则
// Mode 为判别标签：disabled / channel / random / round_robin / first_available / group，
// ChannelID 仅在 channel 模式使用，ChannelGroupID 仅在 group 模式使用。
type PayGroupRule struct {
	ID             uint      `gorm:"primarykey" json:"id"`                             // 主键
	GroupID        uint      `gorm:"index:idx_group_pay_type,unique;not null" json:"group_id"` // 所属支付组
	PayType        string    `gorm:"index:idx_group_pay_type,unique;not null" json:"pay_type"` // 支付方式标识
	Mode           string    `gorm:"not null" json:"mode"`                             // 路由模式
	ChannelID      uint      `gorm:"not null;default:0" json:"channel_id"`             // 直连渠道（channel 模式）
	ChannelGroupID uint      `gorm:"not null;default:0" json:"channel_group_id"`       // 渠道组（group 模式）
	Rate           *Money    `gorm:"type:decimal(6,2)" json:"rate,omitempty"`          // 费率覆盖（为空时用渠道自身费率）
	Cursor         int       `gorm:"not null;default:0" json:"cursor"`                 // 轮询游标（round_robin 模式）
	CreatedAt      time.Time `json:"created_at"`                                       // 创建时间
	UpdatedAt      time.Time `json:"updated_at"`                                       // 更新时间
}

// TableName 指定表名
func (PayGroupRule) TableName() string {
	return "pay_group_rules"
}
