package service

import (
	"strings"

	"github.com/Skynami/LunFirPay/internal/models"
	"github.com/Skynami/LunFirPay/internal/payment"
	"github.com/Skynami/LunFirPay/internal/repository"

	"github.com/shopspring/decimal"
)

// ChannelService 支付渠道管理
type ChannelService struct {
	channelRepo repository.ChannelRepository
	registry    *payment.Registry
}

// NewChannelService 创建渠道管理服务
func NewChannelService(channelRepo repository.ChannelRepository, registry *payment.Registry) *ChannelService {
	return &ChannelService{channelRepo: channelRepo, registry: registry}
}

// validate 渠道入库前校验：适配器存在、支付方式被上游支持、费率与限额合法
func (s *ChannelService) validate(channel *models.Channel) error {
	if channel == nil || strings.TrimSpace(channel.Name) == "" {
		return ErrChannelConfigInvalid
	}
	provider, err := s.registry.Get(channel.ProviderType)
	if err != nil {
		return ErrProviderUnsupported
	}
	payTypes := channel.PayTypeList()
	if len(payTypes) == 0 {
		return ErrChannelConfigInvalid
	}
	for _, payType := range payTypes {
		if !provider.SupportsPayType(payType) {
			return ErrChannelConfigInvalid
		}
	}
	if channel.FeeRate.Decimal.LessThan(decimal.Zero) ||
		channel.FeeRate.Decimal.GreaterThan(decimal.NewFromInt(100)) {
		return ErrChannelConfigInvalid
	}
	if channel.MinAmount.Decimal.LessThan(decimal.Zero) ||
		channel.MaxAmount.Decimal.LessThan(decimal.Zero) ||
		channel.DailyLimit.Decimal.LessThan(decimal.Zero) {
		return ErrChannelConfigInvalid
	}
	if !channel.MaxAmount.Decimal.IsZero() &&
		channel.MaxAmount.Decimal.LessThan(channel.MinAmount.Decimal) {
		return ErrChannelConfigInvalid
	}
	return nil
}

// Create 新建渠道
func (s *ChannelService) Create(channel *models.Channel) error {
	if err := s.validate(channel); err != nil {
		return err
	}
	return s.channelRepo.Create(channel)
}

// Update 更新渠道
func (s *ChannelService) Update(channel *models.Channel) error {
	if channel == nil || channel.ID == 0 {
		return ErrChannelNotFound
	}
	existing, err := s.channelRepo.GetByID(channel.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrChannelNotFound
	}
	if err := s.validate(channel); err != nil {
		return err
	}
	return s.channelRepo.Update(channel)
}

// Delete 删除渠道（软删除，存量订单不受影响）
func (s *ChannelService) Delete(id uint) error {
	existing, err := s.channelRepo.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrChannelNotFound
	}
	return s.channelRepo.Delete(id)
}

// Get 查询单个渠道
func (s *ChannelService) Get(id uint) (*models.Channel, error) {
	channel, err := s.channelRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if channel == nil {
		return nil, ErrChannelNotFound
	}
	return channel, nil
}

// List 分页查询渠道
func (s *ChannelService) List(filter repository.ChannelListFilter) ([]models.Channel, int64, error) {
	return s.channelRepo.List(filter)
}
