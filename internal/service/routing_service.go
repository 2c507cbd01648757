package service

import (
	"context"
	"crypto/rand"
	"math/big"
	"sort"
	"time"

	"github.com/Skynami/LunFirPay/internal/cache"
	"github.com/Skynami/LunFirPay/internal/constants"
	"github.com/Skynami/LunFirPay/internal/logger"
	"github.com/Skynami/LunFirPay/internal/models"
	"github.com/Skynami/LunFirPay/internal/repository"

	"github.com/shopspring/decimal"
)

// RoutingService 渠道路由服务。
// 给定 (支付方式, 商户, 金额, 设备)，解析商户生效的支付组与方式规则，
// 过滤可用渠道并按规则策略选出一个渠道与生效费率。
type RoutingService struct {
	channelRepo      repository.ChannelRepository
	payGroupRepo     repository.PayGroupRepository
	channelGroupRepo repository.ChannelGroupRepository
	payTypeRepo      repository.PayTypeRepository
	merchantRepo     repository.MerchantRepository
	orderRepo        repository.OrderRepository

	// location 日限额统计时区。当日窗口在该时区内取自然日，
	// 避免依赖数据库自身的日期函数导致额度窗口漂移。
	location *time.Location

	now      func() time.Time
	randIntn func(n int) int
}

// NewRoutingService 创建路由服务
func NewRoutingService(
	channelRepo repository.ChannelRepository,
	payGroupRepo repository.PayGroupRepository,
	channelGroupRepo repository.ChannelGroupRepository,
	payTypeRepo repository.PayTypeRepository,
	merchantRepo repository.MerchantRepository,
	orderRepo repository.OrderRepository,
	timezone string,
) *RoutingService {
	location, err := time.LoadLocation(timezone)
	if err != nil || location == nil {
		logger.Warnw("routing_timezone_invalid", "timezone", timezone, "fallback", "Asia/Shanghai")
		location = time.FixedZone("CST", 8*3600)
	}
	return &RoutingService{
		channelRepo:      channelRepo,
		payGroupRepo:     payGroupRepo,
		channelGroupRepo: channelGroupRepo,
		payTypeRepo:      payTypeRepo,
		merchantRepo:     merchantRepo,
		orderRepo:        orderRepo,
		location:         location,
		now:              time.Now,
		randIntn:         cryptoRandIntn,
	}
}

// RouteInput 路由请求
type RouteInput struct {
	Context    context.Context
	PayType    string
	MerchantID uint
	Amount     decimal.Decimal
	Device     string
}

// RouteResult 路由结果
type RouteResult struct {
	Channel *models.Channel
	PayType *models.PayType
	FeeRate models.Money
}

// Route 解析一次支付请求应走的渠道。
// 无可用渠道、规则停用、配置指向已失效对象等一律返回 (nil, nil)，
// 由调用方向商户呈现"支付方式暂不可用"；仅存储错误作为 error 返回。
func (s *RoutingService) Route(input RouteInput) (*RouteResult, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil
	}

	payType, err := s.resolvePayType(input.Context, input.PayType)
	if err != nil {
		return nil, err
	}
	if payType == nil || !payType.IsEnabled || !payType.SupportsDevice(input.Device) {
		return nil, nil
	}

	group, err := s.resolvePayGroup(input.MerchantID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.channelRepo.ListActive()
	if err != nil {
		return nil, err
	}
	eligible, err := s.eligibleChannels(candidates, payType.Name, input.Amount)
	if err != nil {
		return nil, err
	}

	// 无支付组时退化为"任一支持该方式的可用渠道"，不施加策略约束
	if group == nil {
		channel := s.pickRandom(eligible)
		if channel == nil {
			return nil, nil
		}
		return &RouteResult{Channel: channel, PayType: payType, FeeRate: channel.FeeRate}, nil
	}

	rule := group.RuleFor(payType.Name)
	if rule == nil || rule.Mode == constants.RuleModeDisabled {
		return nil, nil
	}

	channel, err := s.selectByRule(rule, eligible, input.Amount)
	if err != nil {
		return nil, err
	}
	if channel == nil {
		return nil, nil
	}

	feeRate := channel.FeeRate
	if rule.Rate != nil {
		feeRate = *rule.Rate
	}
	return &RouteResult{Channel: channel, PayType: payType, FeeRate: feeRate}, nil
}

// resolvePayType 解析支付方式：优先读目录缓存，未命中时整目录回源并回填。
// 缓存未启用时直接按名称查库；缓存读失败只降级回源，不失败请求。
func (s *RoutingService) resolvePayType(ctx context.Context, name string) (*models.PayType, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if catalog, hit, err := cache.GetPayTypeCatalog(ctx); err == nil && hit {
		return pickPayType(catalog, name), nil
	} else if err != nil {
		logger.Debugw("routing_pay_type_cache_read_failed", "error", err)
	}
	if !cache.Enabled() {
		return s.payTypeRepo.GetByName(name)
	}
	catalog, err := s.payTypeRepo.ListAll()
	if err != nil {
		return nil, err
	}
	if err := cache.SetPayTypeCatalog(ctx, catalog); err != nil {
		logger.Debugw("routing_pay_type_cache_write_failed", "error", err)
	}
	return pickPayType(catalog, name), nil
}

// pickPayType 在目录里按标识查找，未找到返回 nil
func pickPayType(catalog []models.PayType, name string) *models.PayType {
	for i := range catalog {
		if catalog[i].Name == name {
			return &catalog[i]
		}
	}
	return nil
}

// resolvePayGroup 解析商户生效的支付组：显式指定且仍存在的组优先，
// 否则取系统默认组；两者都没有时返回 nil（调用方走无策略回退）。
func (s *RoutingService) resolvePayGroup(merchantID uint) (*models.PayGroup, error) {
	if merchantID != 0 {
		merchant, err := s.merchantRepo.GetByID(merchantID)
		if err != nil {
			return nil, err
		}
		if merchant != nil && merchant.PayGroupID != nil {
			group, err := s.payGroupRepo.GetByID(*merchant.PayGroupID)
			if err != nil {
				return nil, err
			}
			if group != nil {
				return group, nil
			}
			// 指向已删除的组按配置缺失处理，回退默认组
		}
	}
	return s.payGroupRepo.GetDefault()
}

// eligibleChannels 可用性过滤：启用、支持该支付方式、金额在上下限内（0 为不限），
// 且当日已消耗额度加本笔不超过日限额。纯读，无结果顺序保证，空集是合法结果。
func (s *RoutingService) eligibleChannels(channels []models.Channel, payType string, amount decimal.Decimal) ([]models.Channel, error) {
	eligible := make([]models.Channel, 0, len(channels))
	for _, channel := range channels {
		if !channel.IsActive {
			continue
		}
		if !channel.SupportsPayType(payType) {
			continue
		}
		if !channel.MinAmount.IsZero() && amount.LessThan(channel.MinAmount.Decimal) {
			continue
		}
		if !channel.MaxAmount.IsZero() && amount.GreaterThan(channel.MaxAmount.Decimal) {
			continue
		}
		ok, err := s.passesDailyLimit(channel, amount)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		eligible = append(eligible, channel)
	}
	return eligible, nil
}

// passesDailyLimit 日限额检查：consumed + amount <= limit，limit 为 0 不限。
// 额度是软约束：本笔订单在检查时尚未入库，并发请求可能共同略超限额。
func (s *RoutingService) passesDailyLimit(channel models.Channel, amount decimal.Decimal) (bool, error) {
	if channel.DailyLimit.IsZero() {
		return true, nil
	}
	consumed, err := s.ConsumedToday(channel.ID)
	if err != nil {
		return false, err
	}
	return consumed.Add(amount).LessThanOrEqual(channel.DailyLimit.Decimal), nil
}

// ConsumedToday 渠道当日已消耗额度（支付成功订单金额合计，配置时区的自然日窗口）
func (s *RoutingService) ConsumedToday(channelID uint) (decimal.Decimal, error) {
	now := s.now().In(s.location)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	return s.orderRepo.SumChannelPaidBetween(channelID, dayStart, dayStart.Add(24*time.Hour))
}

// selectByRule 按规则模式在可用集内选取渠道
func (s *RoutingService) selectByRule(rule *models.PayGroupRule, eligible []models.Channel, amount decimal.Decimal) (*models.Channel, error) {
	switch rule.Mode {
	case constants.RuleModeChannel:
		return pickByID(eligible, rule.ChannelID), nil
	case constants.RuleModeRandom:
		return s.pickRandom(eligible), nil
	case constants.RuleModeRoundRobin:
		return s.pickRoundRobin(rule, eligible)
	case constants.RuleModeFirstAvailable:
		return s.pickFirstAvailable(eligible, amount)
	case constants.RuleModeGroup:
		return s.selectFromGroup(rule.ChannelGroupID, eligible)
	default:
		// 未知模式视同停用，不猜测渠道
		return nil, nil
	}
}

// pickRoundRobin 轮询选取：按 (priority DESC, id ASC) 排序后以游标取模定位，
// 随后以单条原子 UPDATE 推进游标。可用集大小随时间变化时游标是相对位置而非
// 固定指向某渠道，位置漂移是既有语义，按原样保留。
func (s *RoutingService) pickRoundRobin(rule *models.PayGroupRule, eligible []models.Channel) (*models.Channel, error) {
	if len(eligible) == 0 {
		return nil, nil
	}
	sortByPriority(eligible)
	index := rule.Cursor % len(eligible)
	if index < 0 {
		index = 0
	}
	channel := eligible[index]
	if err := s.payGroupRepo.AdvanceRuleCursor(rule.ID, len(eligible)); err != nil {
		return nil, err
	}
	return &channel, nil
}

// pickFirstAvailable 优先级优先：按 (priority DESC, id ASC) 排序，
// 返回第一个复核日限额仍通过的渠道（防止批量过滤与最终选取之间的额度变化）。
func (s *RoutingService) pickFirstAvailable(eligible []models.Channel, amount decimal.Decimal) (*models.Channel, error) {
	if len(eligible) == 0 {
		return nil, nil
	}
	sortByPriority(eligible)
	for i := range eligible {
		ok, err := s.passesDailyLimit(eligible[i], amount)
		if err != nil {
			return nil, err
		}
		if ok {
			return &eligible[i], nil
		}
	}
	return nil, nil
}

// selectFromGroup 渠道组解析：加载组、成员与可用集求交，再按组策略选取。
// 组不存在或停用按配置缺失处理。
func (s *RoutingService) selectFromGroup(groupID uint, eligible []models.Channel) (*models.Channel, error) {
	if groupID == 0 {
		return nil, nil
	}
	group, err := s.channelGroupRepo.GetByID(groupID)
	if err != nil {
		return nil, err
	}
	if group == nil || !group.IsActive {
		return nil, nil
	}

	eligibleByID := make(map[uint]models.Channel, len(eligible))
	for _, channel := range eligible {
		eligibleByID[channel.ID] = channel
	}

	type candidate struct {
		channel models.Channel
		weight  int
	}
	candidates := make([]candidate, 0, len(group.Members))
	for _, member := range group.Members {
		channel, ok := eligibleByID[member.ChannelID]
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{channel: channel, weight: member.EffectiveWeight()})
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	switch group.Strategy {
	case constants.GroupStrategyWeightedRandom:
		totalWeight := 0
		for _, c := range candidates {
			totalWeight += c.weight
		}
		draw := s.randIntn(totalWeight)
		for _, c := range candidates {
			draw -= c.weight
			if draw < 0 {
				channel := c.channel
				return &channel, nil
			}
		}
		channel := candidates[len(candidates)-1].channel
		return &channel, nil
	case constants.GroupStrategyFirstAvailable:
		channel := candidates[0].channel
		return &channel, nil
	case constants.GroupStrategyRoundRobin:
		index := group.Cursor % len(candidates)
		if index < 0 {
			index = 0
		}
		channel := candidates[index].channel
		if err := s.channelGroupRepo.AdvanceCursor(group.ID, len(candidates)); err != nil {
			return nil, err
		}
		return &channel, nil
	default:
		return nil, nil
	}
}

func (s *RoutingService) pickRandom(eligible []models.Channel) *models.Channel {
	if len(eligible) == 0 {
		return nil
	}
	channel := eligible[s.randIntn(len(eligible))]
	return &channel
}

func pickByID(eligible []models.Channel, id uint) *models.Channel {
	if id == 0 {
		return nil
	}
	for i := range eligible {
		if eligible[i].ID == id {
			return &eligible[i]
		}
	}
	return nil
}

// sortByPriority 按 (priority DESC, id ASC) 原地排序
func sortByPriority(channels []models.Channel) {
	sort.SliceStable(channels, func(i, j int) bool {
		if channels[i].Priority != channels[j].Priority {
			return channels[i].Priority > channels[j].Priority
		}
		return channels[i].ID < channels[j].ID
	})
}

func cryptoRandIntn(n int) int {
	if n <= 0 {
		return 0
	}
	value, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(value.Int64())
}
