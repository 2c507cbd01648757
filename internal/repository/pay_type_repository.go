package repository

import (
	"errors"

	"github.com/Skynami/LunFirPay/internal/models"

	"gorm.io/gorm"
)

// PayTypeRepository 支付方式目录数据访问接口
type PayTypeRepository interface {
	Create(payType *models.PayType) error
	Update(payType *models.PayType) error
	Delete(id uint) error
	GetByID(id uint) (*models.PayType, error)
	GetByName(name string) (*models.PayType, error)
	ListEnabled() ([]models.PayType, error)
	ListAll() ([]models.PayType, error)
}

// GormPayTypeRepository GORM 实现
type GormPayTypeRepository struct {
	db *gorm.DB
}

// NewPayTypeRepository 创建支付方式仓库
func NewPayTypeRepository(db *gorm.DB) *GormPayTypeRepository {
	return &GormPayTypeRepository{db: db}
}

// Create 创建支付方式
func (r *GormPayTypeRepository) Create(payType *models.PayType) error {
	return r.db.Create(payType).Error
}

// Update 更新支付方式
func (r *GormPayTypeRepository) Update(payType *models.PayType) error {
	return r.db.Save(payType).Error
}

// Delete 删除支付方式
func (r *GormPayTypeRepository) Delete(id uint) error {
	return r.db.Delete(&models.PayType{}, id).Error
}

// GetByID 根据主键获取支付方式
func (r *GormPayTypeRepository) GetByID(id uint) (*models.PayType, error) {
	var payType models.PayType
	if err := r.db.First(&payType, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payType, nil
}

// GetByName 根据标识获取支付方式
func (r *GormPayTypeRepository) GetByName(name string) (*models.PayType, error) {
	var payType models.PayType
	if err := r.db.Where("name = ?", name).First(&payType).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payType, nil
}

// ListEnabled 获取启用的支付方式（按排序）
func (r *GormPayTypeRepository) ListEnabled() ([]models.PayType, error) {
	var payTypes []models.PayType
	err := r.db.Where("is_enabled = ?", true).
		Order("sort_order ASC, id ASC").
		Find(&payTypes).Error
	if err != nil {
		return nil, err
	}
	return payTypes, nil
}

// ListAll 获取全部支付方式
func (r *GormPayTypeRepository) ListAll() ([]models.PayType, error) {
	var payTypes []models.PayType
	if err := r.db.Order("sort_order ASC, id ASC").Find(&payTypes).Error; err != nil {
		return nil, err
	}
	return payTypes, nil
}
