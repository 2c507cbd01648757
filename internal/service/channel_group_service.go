package service

import (
	"strings"

	"github.com/Skynami/LunFirPay/internal/models"
	"github.com/Skynami/LunFirPay/internal/repository"
)

// ChannelGroupService 渠道组管理
type ChannelGroupService struct {
	channelGroupRepo repository.ChannelGroupRepository
	channelRepo      repository.ChannelRepository
}

// NewChannelGroupService 创建渠道组管理服务
func NewChannelGroupService(channelGroupRepo repository.ChannelGroupRepository, channelRepo repository.ChannelRepository) *ChannelGroupService {
	return &ChannelGroupService{channelGroupRepo: channelGroupRepo, channelRepo: channelRepo}
}

// Create 新建渠道组
func (s *ChannelGroupService) Create(group *models.ChannelGroup) error {
	if group == nil || strings.TrimSpace(group.Name) == "" {
		return ErrGroupStrategyInvalid
	}
	group.Strategy = strings.ToLower(strings.TrimSpace(group.Strategy))
	if err := ValidateGroupStrategy(group.Strategy); err != nil {
		return err
	}
	return s.channelGroupRepo.Create(group)
}

// Update 更新渠道组，策略变化时游标归零
func (s *ChannelGroupService) Update(group *models.ChannelGroup) error {
	if group == nil || group.ID == 0 {
		return ErrChannelGroupNotFound
	}
	existing, err := s.channelGroupRepo.GetByID(group.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrChannelGroupNotFound
	}
	group.Strategy = strings.ToLower(strings.TrimSpace(group.Strategy))
	if err := ValidateGroupStrategy(group.Strategy); err != nil {
		return err
	}
	if existing.Strategy != group.Strategy {
		group.Cursor = 0
	} else {
		group.Cursor = existing.Cursor
	}
	return s.channelGroupRepo.Update(group)
}

// Delete 删除渠道组（成员级联删除）
func (s *ChannelGroupService) Delete(id uint) error {
	return s.channelGroupRepo.Delete(id)
}

// Get 查询渠道组（含成员，按排序序号升序）
func (s *ChannelGroupService) Get(id uint) (*models.ChannelGroup, error) {
	group, err := s.channelGroupRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrChannelGroupNotFound
	}
	return group, nil
}

// List 分页查询渠道组
func (s *ChannelGroupService) List(filter repository.ChannelGroupListFilter) ([]models.ChannelGroup, int64, error) {
	return s.channelGroupRepo.List(filter)
}

// ReplaceMembers 全量替换组成员，成员渠道必须存在
func (s *ChannelGroupService) ReplaceMembers(groupID uint, members []models.ChannelGroupMember) error {
	group, err := s.channelGroupRepo.GetByID(groupID)
	if err != nil {
		return err
	}
	if group == nil {
		return ErrChannelGroupNotFound
	}
	seen := make(map[uint]bool, len(members))
	for i := range members {
		if members[i].ChannelID == 0 || seen[members[i].ChannelID] {
			return ErrChannelNotFound
		}
		seen[members[i].ChannelID] = true
		channel, err := s.channelRepo.GetByID(members[i].ChannelID)
		if err != nil {
			return err
		}
		if channel == nil {
			return ErrChannelNotFound
		}
		members[i].GroupID = groupID
	}
	return s.channelGroupRepo.ReplaceMembers(groupID, members)
}
