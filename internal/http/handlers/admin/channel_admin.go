package admin

import (
	"errors"
	"strconv"

	handlershared "github.com/Skynami/LunFirPay/internal/http/handlers/shared"
	"github.com/Skynami/LunFirPay/internal/http/response"
	"github.com/Skynami/LunFirPay/internal/models"
	"github.com/Skynami/LunFirPay/internal/repository"
	"github.com/Skynami/LunFirPay/internal/service"

	"github.com/gin-gonic/gin"
)

// ListChannels 获取支付渠道列表
func (h *Handler) ListChannels(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	channels, total, err := h.ChannelService.List(repository.ChannelListFilter{
		Page:         page,
		PageSize:     pageSize,
		ProviderType: c.Query("provider_type"),
		PayType:      c.Query("pay_type"),
		ActiveOnly:   c.Query("active_only") == "true",
	})
	if err != nil {
		respondError(c, response.CodeInternal, "channel fetch failed", err)
		return
	}

	response.SuccessWithPage(c, channels, handlershared.BuildPagination(page, pageSize, total))
}

// GetChannel 获取支付渠道详情
func (h *Handler) GetChannel(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	channel, err := h.ChannelService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrChannelNotFound) {
			respondError(c, response.CodeNotFound, "channel not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "channel fetch failed", err)
		return
	}

	response.Success(c, channel)
}

// CreateChannel 创建支付渠道
func (h *Handler) CreateChannel(c *gin.Context) {
	var channel models.Channel
	if err := c.ShouldBindJSON(&channel); err != nil {
		respondError(c, response.CodeBadRequest, "channel params invalid", nil)
		return
	}
	channel.ID = 0

	if err := h.ChannelService.Create(&channel); err != nil {
		respondChannelWriteError(c, err)
		return
	}

	response.Success(c, channel)
}

// UpdateChannel 更新支付渠道
func (h *Handler) UpdateChannel(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var channel models.Channel
	if err := c.ShouldBindJSON(&channel); err != nil {
		respondError(c, response.CodeBadRequest, "channel params invalid", nil)
		return
	}
	channel.ID = id

	if err := h.ChannelService.Update(&channel); err != nil {
		respondChannelWriteError(c, err)
		return
	}

	response.Success(c, channel)
}

// DeleteChannel 删除支付渠道
func (h *Handler) DeleteChannel(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.ChannelService.Delete(id); err != nil {
		if errors.Is(err, service.ErrChannelNotFound) {
			respondError(c, response.CodeNotFound, "channel not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "channel delete failed", err)
		return
	}

	response.Success(c, nil)
}

func respondChannelWriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrChannelNotFound):
		respondError(c, response.CodeNotFound, "channel not found", nil)
	case errors.Is(err, service.ErrProviderUnsupported):
		respondError(c, response.CodeBadRequest, "provider type unsupported", nil)
	case errors.Is(err, service.ErrChannelConfigInvalid):
		respondError(c, response.CodeBadRequest, "channel config invalid", nil)
	default:
		respondError(c, response.CodeInternal, "channel save failed", err)
	}
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "id invalid", nil)
		return 0, false
	}
	return uint(id), true
}
