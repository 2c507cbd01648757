package service

import (
	"strings"

	"github.com/Skynami/LunFirPay/internal/constants"
	"github.com/Skynami/LunFirPay/internal/models"
	"github.com/Skynami/LunFirPay/internal/repository"

	"github.com/shopspring/decimal"
)

// PayGroupService 支付组与路由规则管理
type PayGroupService struct {
	payGroupRepo     repository.PayGroupRepository
	channelRepo      repository.ChannelRepository
	channelGroupRepo repository.ChannelGroupRepository
}

// NewPayGroupService 创建支付组管理服务
func NewPayGroupService(
	payGroupRepo repository.PayGroupRepository,
	channelRepo repository.ChannelRepository,
	channelGroupRepo repository.ChannelGroupRepository,
) *PayGroupService {
	return &PayGroupService{
		payGroupRepo:     payGroupRepo,
		channelRepo:      channelRepo,
		channelGroupRepo: channelGroupRepo,
	}
}

// ValidateRuleMode 校验规则模式标签
func ValidateRuleMode(mode string) error {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case constants.RuleModeDisabled,
		constants.RuleModeChannel,
		constants.RuleModeRandom,
		constants.RuleModeRoundRobin,
		constants.RuleModeFirstAvailable,
		constants.RuleModeGroup:
		return nil
	default:
		return ErrRuleModeInvalid
	}
}

// ValidateGroupStrategy 校验渠道组策略标签
func ValidateGroupStrategy(strategy string) error {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case constants.GroupStrategyRoundRobin,
		constants.GroupStrategyWeightedRandom,
		constants.GroupStrategyFirstAvailable:
		return nil
	default:
		return ErrGroupStrategyInvalid
	}
}

// Create 新建支付组
func (s *PayGroupService) Create(group *models.PayGroup) error {
	if group == nil || strings.TrimSpace(group.Name) == "" {
		return ErrRuleModeInvalid
	}
	return s.payGroupRepo.Create(group)
}

// Update 更新支付组
func (s *PayGroupService) Update(group *models.PayGroup) error {
	if group == nil || group.ID == 0 {
		return ErrPayGroupNotFound
	}
	existing, err := s.payGroupRepo.GetByID(group.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrPayGroupNotFound
	}
	return s.payGroupRepo.Update(group)
}

// Delete 删除支付组（规则级联删除）
func (s *PayGroupService) Delete(id uint) error {
	return s.payGroupRepo.Delete(id)
}

// Get 查询支付组（含规则）
func (s *PayGroupService) Get(id uint) (*models.PayGroup, error) {
	return s.payGroupRepo.GetByID(id)
}

// List 分页查询支付组
func (s *PayGroupService) List(filter repository.PayGroupListFilter) ([]models.PayGroup, int64, error) {
	return s.payGroupRepo.List(filter)
}

// SetDefault 设为系统默认组（全局至多一个）
func (s *PayGroupService) SetDefault(id uint) error {
	existing, err := s.payGroupRepo.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrPayGroupNotFound
	}
	return s.payGroupRepo.SetDefault(id)
}

// SaveRule 新建或覆盖某支付方式的路由规则。
// channel 模式要求渠道存在，group 模式要求渠道组存在；
// 模式切换时游标归零，避免继承无意义的旧位置。
func (s *PayGroupService) SaveRule(rule *models.PayGroupRule) error {
	if rule == nil || rule.GroupID == 0 || strings.TrimSpace(rule.PayType) == "" {
		return ErrRuleModeInvalid
	}
	rule.Mode = strings.ToLower(strings.TrimSpace(rule.Mode))
	if err := ValidateRuleMode(rule.Mode); err != nil {
		return err
	}
	group, err := s.payGroupRepo.GetByID(rule.GroupID)
	if err != nil {
		return err
	}
	if group == nil {
		return ErrPayGroupNotFound
	}

	switch rule.Mode {
	case constants.RuleModeChannel:
		if rule.ChannelID == 0 {
			return ErrRuleModeInvalid
		}
		channel, err := s.channelRepo.GetByID(rule.ChannelID)
		if err != nil {
			return err
		}
		if channel == nil {
			return ErrChannelNotFound
		}
	case constants.RuleModeGroup:
		if rule.ChannelGroupID == 0 {
			return ErrRuleModeInvalid
		}
		channelGroup, err := s.channelGroupRepo.GetByID(rule.ChannelGroupID)
		if err != nil {
			return err
		}
		if channelGroup == nil {
			return ErrChannelGroupNotFound
		}
	}
	if rule.Rate != nil {
		if rule.Rate.Decimal.LessThan(decimal.Zero) ||
			rule.Rate.Decimal.GreaterThan(decimal.NewFromInt(100)) {
			return ErrRuleModeInvalid
		}
	}

	existing, err := s.payGroupRepo.GetRule(rule.GroupID, rule.PayType)
	if err != nil {
		return err
	}
	if existing != nil {
		rule.ID = existing.ID
		rule.CreatedAt = existing.CreatedAt
		if existing.Mode == rule.Mode {
			rule.Cursor = existing.Cursor
		}
	}
	return s.payGroupRepo.SaveRule(rule)
}

// DeleteRule 删除某支付方式的路由规则（等价于走默认回退语义）
func (s *PayGroupService) DeleteRule(groupID uint, payType string) error {
	return s.payGroupRepo.DeleteRule(groupID, strings.TrimSpace(payType))
}
