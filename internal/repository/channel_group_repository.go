package repository

import (
	"errors"

	"github.com/Skynami/LunFirPay/internal/models"

	"gorm.io/gorm"
)

// ChannelGroupRepository 渠道组数据访问接口
type ChannelGroupRepository interface {
	Create(group *models.ChannelGroup) error
	Update(group *models.ChannelGroup) error
	Delete(id uint) error
	GetByID(id uint) (*models.ChannelGroup, error)
	List(filter ChannelGroupListFilter) ([]models.ChannelGroup, int64, error)
	ReplaceMembers(groupID uint, members []models.ChannelGroupMember) error
	AdvanceCursor(groupID uint, modulo int) error
}

// GormChannelGroupRepository GORM 实现
type GormChannelGroupRepository struct {
	db *gorm.DB
}

// NewChannelGroupRepository 创建渠道组仓库
func NewChannelGroupRepository(db *gorm.DB) *GormChannelGroupRepository {
	return &GormChannelGroupRepository{db: db}
}

// Create 创建渠道组
func (r *GormChannelGroupRepository) Create(group *models.ChannelGroup) error {
	return r.db.Create(group).Error
}

// Update 更新渠道组
func (r *GormChannelGroupRepository) Update(group *models.ChannelGroup) error {
	return r.db.Save(group).Error
}

// Delete 删除渠道组及其成员
func (r *GormChannelGroupRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.ChannelGroupMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ChannelGroup{}, id).Error
	})
}

// GetByID 根据 ID 获取渠道组（含成员，按组内顺序排列）
func (r *GormChannelGroupRepository) GetByID(id uint) (*models.ChannelGroup, error) {
	var group models.ChannelGroup
	err := r.db.Preload("Members", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC, id ASC")
	}).First(&group, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

// List 渠道组列表
func (r *GormChannelGroupRepository) List(filter ChannelGroupListFilter) ([]models.ChannelGroup, int64, error) {
	query := r.db.Model(&models.ChannelGroup{})

	if filter.Strategy != "" {
		query = query.Where("strategy = ?", filter.Strategy)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Limit(filter.PageSize).Offset(offset)
	}

	var groups []models.ChannelGroup
	if err := query.Preload("Members", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC, id ASC")
	}).Order("id ASC").Find(&groups).Error; err != nil {
		return nil, 0, err
	}
	return groups, total, nil
}

// ReplaceMembers 全量替换组成员
func (r *GormChannelGroupRepository) ReplaceMembers(groupID uint, members []models.ChannelGroupMember) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", groupID).Delete(&models.ChannelGroupMember{}).Error; err != nil {
			return err
		}
		for i := range members {
			members[i].ID = 0
			members[i].GroupID = groupID
		}
		if len(members) == 0 {
			return nil
		}
		return tx.Create(&members).Error
	})
}

// AdvanceCursor 以单条语句推进组轮询游标：cursor = (cursor + 1) % modulo。
// 与支付组规则游标同样的约束：收窄但不消除并发丢失更新窗口。
func (r *GormChannelGroupRepository) AdvanceCursor(groupID uint, modulo int) error {
	if modulo <= 0 {
		return nil
	}
	return r.db.Model(&models.ChannelGroup{}).
		Where("id = ?", groupID).
		UpdateColumn("cursor", gorm.Expr("(cursor + 1) % ?", modulo)).Error
}
