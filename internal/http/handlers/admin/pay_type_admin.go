package admin

import (
	"strings"

	"github.com/Skynami/LunFirPay/internal/cache"
	"github.com/Skynami/LunFirPay/internal/constants"
	"github.com/Skynami/LunFirPay/internal/http/response"
	"github.com/Skynami/LunFirPay/internal/models"

	"github.com/gin-gonic/gin"
)

// ListPayTypes 获取支付方式目录
func (h *Handler) ListPayTypes(c *gin.Context) {
	payTypes, err := h.PayTypeRepo.ListAll()
	if err != nil {
		respondError(c, response.CodeInternal, "pay type fetch failed", err)
		return
	}

	response.Success(c, payTypes)
}

// CreatePayType 新增支付方式
func (h *Handler) CreatePayType(c *gin.Context) {
	var payType models.PayType
	if err := c.ShouldBindJSON(&payType); err != nil {
		respondError(c, response.CodeBadRequest, "pay type params invalid", nil)
		return
	}
	payType.ID = 0
	if !validPayTypeInput(&payType) {
		respondError(c, response.CodeBadRequest, "pay type params invalid", nil)
		return
	}

	existing, err := h.PayTypeRepo.GetByName(payType.Name)
	if err != nil {
		respondError(c, response.CodeInternal, "pay type save failed", err)
		return
	}
	if existing != nil {
		respondError(c, response.CodeBadRequest, "pay type already exists", nil)
		return
	}

	if err := h.PayTypeRepo.Create(&payType); err != nil {
		respondError(c, response.CodeInternal, "pay type save failed", err)
		return
	}
	_ = cache.DelPayTypeCatalog(c.Request.Context())

	response.Success(c, payType)
}

// UpdatePayType 更新支付方式
func (h *Handler) UpdatePayType(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	existing, err := h.PayTypeRepo.GetByID(id)
	if err != nil {
		respondError(c, response.CodeInternal, "pay type fetch failed", err)
		return
	}
	if existing == nil {
		respondError(c, response.CodeNotFound, "pay type not found", nil)
		return
	}

	var payType models.PayType
	if err := c.ShouldBindJSON(&payType); err != nil {
		respondError(c, response.CodeBadRequest, "pay type params invalid", nil)
		return
	}
	payType.ID = id
	payType.Name = existing.Name
	payType.CreatedAt = existing.CreatedAt
	if !validPayTypeInput(&payType) {
		respondError(c, response.CodeBadRequest, "pay type params invalid", nil)
		return
	}

	if err := h.PayTypeRepo.Update(&payType); err != nil {
		respondError(c, response.CodeInternal, "pay type save failed", err)
		return
	}
	_ = cache.DelPayTypeCatalog(c.Request.Context())

	response.Success(c, payType)
}

// DeletePayType 删除支付方式
func (h *Handler) DeletePayType(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.PayTypeRepo.Delete(id); err != nil {
		respondError(c, response.CodeInternal, "pay type delete failed", err)
		return
	}
	_ = cache.DelPayTypeCatalog(c.Request.Context())

	response.Success(c, nil)
}

func validPayTypeInput(payType *models.PayType) bool {
	payType.Name = strings.TrimSpace(payType.Name)
	payType.Device = strings.ToLower(strings.TrimSpace(payType.Device))
	if payType.Name == "" || strings.TrimSpace(payType.DisplayName) == "" {
		return false
	}
	switch payType.Device {
	case "", constants.DeviceAll:
		payType.Device = constants.DeviceAll
	case constants.DevicePC, constants.DeviceMobile:
	default:
		return false
	}
	return true
}
