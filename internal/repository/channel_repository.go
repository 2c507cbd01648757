package repository

import (
	"errors"

	"github.com/Skynami/LunFirPay/internal/models"

	"gorm.io/gorm"
)

// ChannelRepository 支付渠道数据访问接口
type ChannelRepository interface {
	Create(channel *models.Channel) error
	Update(channel *models.Channel) error
	Delete(id uint) error
	GetByID(id uint) (*models.Channel, error)
	ListByIDs(ids []uint) ([]models.Channel, error)
	ListActive() ([]models.Channel, error)
	List(filter ChannelListFilter) ([]models.Channel, int64, error)
}

// GormChannelRepository GORM 实现
type GormChannelRepository struct {
	db *gorm.DB
}

// NewChannelRepository 创建渠道仓库
func NewChannelRepository(db *gorm.DB) *GormChannelRepository {
	return &GormChannelRepository{db: db}
}

// Create 创建渠道
func (r *GormChannelRepository) Create(channel *models.Channel) error {
	return r.db.Create(channel).Error
}

// Update 更新渠道
func (r *GormChannelRepository) Update(channel *models.Channel) error {
	return r.db.Save(channel).Error
}

// Delete 删除渠道（软删除，保留历史订单引用）
func (r *GormChannelRepository) Delete(id uint) error {
	return r.db.Delete(&models.Channel{}, id).Error
}

// GetByID 根据 ID 获取渠道
func (r *GormChannelRepository) GetByID(id uint) (*models.Channel, error) {
	var channel models.Channel
	if err := r.db.First(&channel, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &channel, nil
}

// ListByIDs 根据 ID 列表获取渠道
func (r *GormChannelRepository) ListByIDs(ids []uint) ([]models.Channel, error) {
	if len(ids) == 0 {
		return []models.Channel{}, nil
	}
	var channels []models.Channel
	if err := r.db.Where("id IN ?", ids).Find(&channels).Error; err != nil {
		return nil, err
	}
	return channels, nil
}

// ListActive 获取全部启用渠道（候选全集，方式与金额过滤在路由层进行）
func (r *GormChannelRepository) ListActive() ([]models.Channel, error) {
	var channels []models.Channel
	if err := r.db.Where("is_active = ?", true).Find(&channels).Error; err != nil {
		return nil, err
	}
	return channels, nil
}

// List 渠道列表
func (r *GormChannelRepository) List(filter ChannelListFilter) ([]models.Channel, int64, error) {
	query := r.db.Model(&models.Channel{})

	if filter.ProviderType != "" {
		query = query.Where("provider_type = ?", filter.ProviderType)
	}
	if filter.PayType != "" {
		like := "%" + filter.PayType + "%"
		query = query.Where("pay_types LIKE ?", like)
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

	var channels []models.Channel
	if err := query.Order("sort_order DESC, id ASC").Find(&channels).Error; err != nil {
		return nil, 0, err
	}
	return channels, total, nil
}
