package admin

import (
	"errors"
	"strconv"
	"strings"

	handlershared "github.com/Skynami/LunFirPay/internal/http/handlers/shared"
	"github.com/Skynami/LunFirPay/internal/http/response"
	"github.com/Skynami/LunFirPay/internal/models"
	"github.com/Skynami/LunFirPay/internal/repository"
	"github.com/Skynami/LunFirPay/internal/service"

	"github.com/gin-gonic/gin"
)

// ListMerchants 获取商户列表
func (h *Handler) ListMerchants(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	merchants, total, err := h.MerchantService.List(repository.MerchantListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Status:   c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "merchant fetch failed", err)
		return
	}

	response.SuccessWithPage(c, merchants, handlershared.BuildPagination(page, pageSize, total))
}

// GetMerchant 获取商户详情
func (h *Handler) GetMerchant(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	merchant, err := h.MerchantService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrMerchantNotFound) {
			respondError(c, response.CodeNotFound, "merchant not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "merchant fetch failed", err)
		return
	}

	response.Success(c, merchant)
}

// CreateMerchant 创建商户，返回值包含生成的密钥（仅此一次明文可见）
func (h *Handler) CreateMerchant(c *gin.Context) {
	var merchant models.Merchant
	if err := c.ShouldBindJSON(&merchant); err != nil {
		respondError(c, response.CodeBadRequest, "merchant params invalid", nil)
		return
	}
	merchant.ID = 0

	if err := h.MerchantService.Create(&merchant); err != nil {
		respondMerchantWriteError(c, err)
		return
	}

	response.Success(c, gin.H{
		"merchant":   merchant,
		"app_id":     merchant.AppID,
		"app_secret": merchant.AppSecret,
	})
}

// UpdateMerchant 更新商户
func (h *Handler) UpdateMerchant(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var merchant models.Merchant
	if err := c.ShouldBindJSON(&merchant); err != nil {
		respondError(c, response.CodeBadRequest, "merchant params invalid", nil)
		return
	}
	merchant.ID = id

	if err := h.MerchantService.Update(&merchant); err != nil {
		respondMerchantWriteError(c, err)
		return
	}

	response.Success(c, merchant)
}

// DeleteMerchant 删除商户
func (h *Handler) DeleteMerchant(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.MerchantService.Delete(id); err != nil {
		respondError(c, response.CodeInternal, "merchant delete failed", err)
		return
	}

	response.Success(c, nil)
}

// ResetMerchantSecret 重置商户密钥
func (h *Handler) ResetMerchantSecret(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	secret, err := h.MerchantService.ResetSecret(id)
	if err != nil {
		respondMerchantWriteError(c, err)
		return
	}

	requestLog(c).Infow("merchant_secret_reset", "merchant_id", id)
	response.Success(c, gin.H{"app_secret": secret})
}

func respondMerchantWriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMerchantNotFound):
		respondError(c, response.CodeNotFound, "merchant not found", nil)
	case errors.Is(err, service.ErrPayGroupNotFound):
		respondError(c, response.CodeBadRequest, "pay group not found", nil)
	default:
		respondError(c, response.CodeInternal, "merchant save failed", err)
	}
}
