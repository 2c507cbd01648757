package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/Skynami/LunFirPay/internal/constants"
	"github.com/Skynami/LunFirPay/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order) error
	Update(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByTradeNo(tradeNo string) (*models.Order, error)
	GetByMerchantOutTradeNo(merchantID uint, outTradeNo string) (*models.Order, error)
	List(filter OrderListFilter) ([]models.Order, int64, error)
	SumChannelPaidBetween(channelID uint, from, to time.Time) (decimal.Decimal, error)
	MarkPaid(id uint, providerRef string, paidAt time.Time) (bool, error)
	MarkExpired(id uint) error
	UpdateNotifyState(id uint, status string, count int) error
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 返回绑定事务的仓库
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 创建订单
func (r *GormOrderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

// Update 更新订单
func (r *GormOrderRepository) Update(order *models.Order) error {
	return r.db.Save(order).Error
}

// GetByID 根据 ID 获取订单
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByTradeNo 根据平台订单号获取订单
func (r *GormOrderRepository) GetByTradeNo(tradeNo string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Where("trade_no = ?", tradeNo).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByMerchantOutTradeNo 根据商户订单号获取订单
func (r *GormOrderRepository) GetByMerchantOutTradeNo(merchantID uint, outTradeNo string) (*models.Order, error) {
	var order models.Order
	err := r.db.Where("merchant_id = ? AND out_trade_no = ?", merchantID, outTradeNo).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// List 订单列表
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})

	if filter.MerchantID != 0 {
		query = query.Where("merchant_id = ?", filter.MerchantID)
	}
	if filter.ChannelID != 0 {
		query = query.Where("channel_id = ?", filter.ChannelID)
	}
	if filter.PayType != "" {
		query = query.Where("pay_type = ?", filter.PayType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.TradeNo != "" {
		query = query.Where("trade_no = ?", filter.TradeNo)
	}
	if filter.OutTradeNo != "" {
		query = query.Where("out_trade_no = ?", filter.OutTradeNo)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at < ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Limit(filter.PageSize).Offset(offset)
	}

	var orders []models.Order
	if err := query.Order("id DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// SumChannelPaidBetween 统计渠道在 [from, to) 内支付成功订单的金额合计。
// 日限额核算使用：窗口由调用方按配置的时区计算，不依赖数据库日期函数。
func (r *GormOrderRepository) SumChannelPaidBetween(channelID uint, from, to time.Time) (decimal.Decimal, error) {
	var total sql.NullString
	err := r.db.Model(&models.Order{}).
		Select("SUM(amount)").
		Where("channel_id = ? AND status = ? AND created_at >= ? AND created_at < ?",
			channelID, constants.OrderStatusSuccess, from, to).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid || total.String == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(total.String)
}

// MarkPaid 将待支付订单标记为支付成功；返回是否发生状态变更（回调幂等）。
func (r *GormOrderRepository) MarkPaid(id uint, providerRef string, paidAt time.Time) (bool, error) {
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, constants.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":       constants.OrderStatusSuccess,
			"provider_ref": providerRef,
			"paid_at":      paidAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkExpired 将待支付订单标记为过期
func (r *GormOrderRepository) MarkExpired(id uint) error {
	return r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, constants.OrderStatusPending).
		Update("status", constants.OrderStatusExpired).Error
}

// UpdateNotifyState 更新商户通知状态与次数
func (r *GormOrderRepository) UpdateNotifyState(id uint, status string, count int) error {
	return r.db.Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"notify_status": status,
			"notify_count":  count,
		}).Error
}
