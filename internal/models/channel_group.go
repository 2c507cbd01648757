package models

import "time"

// ChannelGroup 渠道组（group 模式下的带权渠道集合）
type ChannelGroup struct {
	ID        uint      `gorm:"primarykey" json:"id"`                   // 主键
	Name      string    `gorm:"not null" json:"name"`                   // 渠道组名称
	Strategy  string    `gorm:"not null" json:"strategy"`               // 组内策略（round_robin/weighted_random/first_available）
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"` // 是否启用
	Cursor    int       `gorm:"not null;default:0" json:"cursor"`       // 轮询游标（round_robin 策略时由路由推进）
	CreatedAt time.Time `gorm:"index" json:"created_at"`                // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                // 更新时间

	Members []ChannelGroupMember `gorm:"foreignKey:GroupID" json:"members,omitempty"` // 组成员
}

// TableName 指定表名
func (ChannelGroup) TableName() string {
	return "channel_groups"
}

// ChannelGroupMember 渠道组成员
type ChannelGroupMember struct {
	ID        uint      `gorm:"primarykey" json:"id"`                 // 主键
	GroupID   uint      `gorm:"index;not null" json:"group_id"`       // 所属渠道组
	ChannelID uint      `gorm:"index;not null" json:"channel_id"`     // 渠道ID
	Weight    int       `gorm:"not null;default:1" json:"weight"`     // 权重（加权随机使用，未配置按 1 计）
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"` // 组内顺序
	CreatedAt time.Time `json:"created_at"`                           // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                           // 更新时间
}

// TableName 指定表名
func (ChannelGroupMember) TableName() string {
	return "channel_group_members"
}

// EffectiveWeight 返回有效权重（未配置时按 1 计）
func (m ChannelGroupMember) EffectiveWeight() int {
	if m.Weight <= 0 {
		return 1
	}
	return m.Weight
}
