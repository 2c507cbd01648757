package service

import (
	"strings"

	"github.com/Skynami/LunFirPay/internal/constants"
	"github.com/Skynami/LunFirPay/internal/models"
	"github.com/Skynami/LunFirPay/internal/repository"

	"github.com/google/uuid"
)

// MerchantService 商户管理
type MerchantService struct {
	merchantRepo repository.MerchantRepository
	payGroupRepo repository.PayGroupRepository
}

// NewMerchantService 创建商户管理服务
func NewMerchantService(merchantRepo repository.MerchantRepository, payGroupRepo repository.PayGroupRepository) *MerchantService {
	return &MerchantService{merchantRepo: merchantRepo, payGroupRepo: payGroupRepo}
}

// Create 新建商户，自动生成 app_id / app_secret
func (s *MerchantService) Create(merchant *models.Merchant) error {
	if merchant == nil || strings.TrimSpace(merchant.Name) == "" {
		return ErrMerchantNotFound
	}
	if err := s.checkPayGroup(merchant.PayGroupID); err != nil {
		return err
	}
	merchant.AppID = strings.ReplaceAll(uuid.NewString(), "-", "")
	merchant.AppSecret = strings.ReplaceAll(uuid.NewString(), "-", "")
	if merchant.Status == "" {
		merchant.Status = constants.MerchantStatusActive
	}
	return s.merchantRepo.Create(merchant)
}

// Update 更新商户，app_id / app_secret 不随更新变化
func (s *MerchantService) Update(merchant *models.Merchant) error {
	if merchant == nil || merchant.ID == 0 {
		return ErrMerchantNotFound
	}
	existing, err := s.merchantRepo.GetByID(merchant.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrMerchantNotFound
	}
	if err := s.checkPayGroup(merchant.PayGroupID); err != nil {
		return err
	}
	merchant.AppID = existing.AppID
	merchant.AppSecret = existing.AppSecret
	return s.merchantRepo.Update(merchant)
}

// ResetSecret 重置商户密钥，返回新密钥
func (s *MerchantService) ResetSecret(id uint) (string, error) {
	merchant, err := s.merchantRepo.GetByID(id)
	if err != nil {
		return "", err
	}
	if merchant == nil {
		return "", ErrMerchantNotFound
	}
	merchant.AppSecret = strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := s.merchantRepo.Update(merchant); err != nil {
		return "", err
	}
	return merchant.AppSecret, nil
}

// Delete 删除商户（软删除）
func (s *MerchantService) Delete(id uint) error {
	return s.merchantRepo.Delete(id)
}

// Get 查询商户
func (s *MerchantService) Get(id uint) (*models.Merchant, error) {
	merchant, err := s.merchantRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, ErrMerchantNotFound
	}
	return merchant, nil
}

// List 分页查询商户
func (s *MerchantService) List(filter repository.MerchantListFilter) ([]models.Merchant, int64, error) {
	return s.merchantRepo.List(filter)
}

func (s *MerchantService) checkPayGroup(groupID *uint) error {
	if groupID == nil || *groupID == 0 {
		return nil
	}
	group, err := s.payGroupRepo.GetByID(*groupID)
	if err != nil {
		return err
	}
	if group == nil {
		return ErrPayGroupNotFound
	}
	return nil
}
