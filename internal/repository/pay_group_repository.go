package repository

import (
	"errors"

	"github.com/Skynami/LunFirPay/internal/models"

	"gorm.io/gorm"
)

// PayGroupRepository 支付组数据访问接口
type PayGroupRepository interface {
	Create(group *models.PayGroup) error
	Update(group *models.PayGroup) error
	Delete(id uint) error
	GetByID(id uint) (*models.PayGroup, error)
	GetDefault() (*models.PayGroup, error)
	SetDefault(id uint) error
	List(filter PayGroupListFilter) ([]models.PayGroup, int64, error)
	GetRule(groupID uint, payType string) (*models.PayGroupRule, error)
	SaveRule(rule *models.PayGroupRule) error
	DeleteRule(groupID uint, payType string) error
	AdvanceRuleCursor(ruleID uint, modulo int) error
}

// GormPayGroupRepository GORM 实现
type GormPayGroupRepository struct {
	db *gorm.DB
}

// NewPayGroupRepository 创建支付组仓库
func NewPayGroupRepository(db *gorm.DB) *GormPayGroupRepository {
	return &GormPayGroupRepository{db: db}
}

// Create 创建支付组
func (r *GormPayGroupRepository) Create(group *models.PayGroup) error {
	return r.db.Create(group).Error
}

// Update 更新支付组
func (r *GormPayGroupRepository) Update(group *models.PayGroup) error {
	return r.db.Save(group).Error
}

// Delete 删除支付组及其规则
func (r *GormPayGroupRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.PayGroupRule{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.PayGroup{}, id).Error
	})
}

// GetByID 根据 ID 获取支付组（含规则）
func (r *GormPayGroupRepository) GetByID(id uint) (*models.PayGroup, error) {
	var group models.PayGroup
	if err := r.db.Preload("Rules").First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

// GetDefault 获取系统默认支付组（含规则）
func (r *GormPayGroupRepository) GetDefault() (*models.PayGroup, error) {
	var group models.PayGroup
	if err := r.db.Preload("Rules").Where("is_default = ?", true).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

// SetDefault 设为默认支付组（全局至多一个默认组）
func (r *GormPayGroupRepository) SetDefault(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PayGroup{}).
			Where("is_default = ? AND id <> ?", true, id).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.PayGroup{}).Where("id = ?", id).Update("is_default", true).Error
	})
}

// List 支付组列表
func (r *GormPayGroupRepository) List(filter PayGroupListFilter) ([]models.PayGroup, int64, error) {
	query := r.db.Model(&models.PayGroup{})

	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Limit(filter.PageSize).Offset(offset)
	}

	var groups []models.PayGroup
	if err := query.Preload("Rules").Order("id ASC").Find(&groups).Error; err != nil {
		return nil, 0, err
	}
	return groups, total, nil
}

// GetRule 获取支付组内指定支付方式的规则
func (r *GormPayGroupRepository) GetRule(groupID uint, payType string) (*models.PayGroupRule, error) {
	var rule models.PayGroupRule
	err := r.db.Where("group_id = ? AND pay_type = ?", groupID, payType).First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// SaveRule 新增或更新规则
func (r *GormPayGroupRepository) SaveRule(rule *models.PayGroupRule) error {
	return r.db.Save(rule).Error
}

// DeleteRule 删除规则
func (r *GormPayGroupRepository) DeleteRule(groupID uint, payType string) error {
	return r.db.Where("group_id = ? AND pay_type = ?", groupID, payType).
		Delete(&models.PayGroupRule{}).Error
}

// AdvanceRuleCursor 以单条语句推进轮询游标：cursor = (cursor + 1) % modulo。
// 读-算-写在同一条 UPDATE 中完成，收窄但不消除并发丢失更新窗口。
func (r *GormPayGroupRepository) AdvanceRuleCursor(ruleID uint, modulo int) error {
	if modulo <= 0 {
		return nil
	}
	return r.db.Model(&models.PayGroupRule{}).
		Where("id = ?", ruleID).
		UpdateColumn("cursor", gorm.Expr("(cursor + 1) % ?", modulo)).Error
}
