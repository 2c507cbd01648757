package repository

import (
	"errors"

	"github.com/Skynami/LunFirPay/internal/models"

	"gorm.io/gorm"
)

// MerchantRepository 商户数据访问接口
type MerchantRepository interface {
	Create(merchant *models.Merchant) error
	Update(merchant *models.Merchant) error
	Delete(id uint) error
	GetByID(id uint) (*models.Merchant, error)
	GetByAppID(appID string) (*models.Merchant, error)
	List(filter MerchantListFilter) ([]models.Merchant, int64, error)
}

// GormMerchantRepository GORM 实现
type GormMerchantRepository struct {
	db *gorm.DB
}

// NewMerchantRepository 创建商户仓库
func NewMerchantRepository(db *gorm.DB) *GormMerchantRepository {
	return &GormMerchantRepository{db: db}
}

// Create 创建商户
func (r *GormMerchantRepository) Create(merchant *models.Merchant) error {
	return r.db.Create(merchant).Error
}

// Update 更新商户
func (r *GormMerchantRepository) Update(merchant *models.Merchant) error {
	return r.db.Save(merchant).Error
}

// Delete 删除商户（软删除）
func (r *GormMerchantRepository) Delete(id uint) error {
	return r.db.Delete(&models.Merchant{}, id).Error
}

// GetByID 根据 ID 获取商户
func (r *GormMerchantRepository) GetByID(id uint) (*models.Merchant, error) {
	var merchant models.Merchant
	if err := r.db.First(&merchant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &merchant, nil
}

// GetByAppID 根据应用 ID 获取商户
func (r *GormMerchantRepository) GetByAppID(appID string) (*models.Merchant, error) {
	var merchant models.Merchant
	if err := r.db.Where("app_id = ?", appID).First(&merchant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &merchant, nil
}

// List 商户列表
func (r *GormMerchantRepository) List(filter MerchantListFilter) ([]models.Merchant, int64, error) {
	query := r.db.Model(&models.Merchant{})

	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		query = query.Where("name LIKE ? OR app_id LIKE ?", like, like)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Limit(filter.PageSize).Offset(offset)
	}

	var merchants []models.Merchant
	if err := query.Order("id ASC").Find(&merchants).Error; err != nil {
		return nil, 0, err
	}
	return merchants, total, nil
}
