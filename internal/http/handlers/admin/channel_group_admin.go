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

// ListChannelGroups 获取渠道组列表
func (h *Handler) ListChannelGroups(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	groups, total, err := h.ChannelGroupService.List(repository.ChannelGroupListFilter{
		Page:       page,
		PageSize:   pageSize,
		Strategy:   c.Query("strategy"),
		ActiveOnly: c.Query("active_only") == "true",
	})
	if err != nil {
		respondError(c, response.CodeInternal, "channel group fetch failed", err)
		return
	}

	response.SuccessWithPage(c, groups, handlershared.BuildPagination(page, pageSize, total))
}

// GetChannelGroup 获取渠道组详情（含成员）
func (h *Handler) GetChannelGroup(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	group, err := h.ChannelGroupService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrChannelGroupNotFound) {
			respondError(c, response.CodeNotFound, "channel group not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "channel group fetch failed", err)
		return
	}

	response.Success(c, group)
}

// CreateChannelGroup 创建渠道组
func (h *Handler) CreateChannelGroup(c *gin.Context) {
	var group models.ChannelGroup
	if err := c.ShouldBindJSON(&group); err != nil {
		respondError(c, response.CodeBadRequest, "channel group params invalid", nil)
		return
	}
	group.ID = 0
	group.Members = nil

	if err := h.ChannelGroupService.Create(&group); err != nil {
		respondChannelGroupWriteError(c, err)
		return
	}

	response.Success(c, group)
}

// UpdateChannelGroup 更新渠道组
func (h *Handler) UpdateChannelGroup(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var group models.ChannelGroup
	if err := c.ShouldBindJSON(&group); err != nil {
		respondError(c, response.CodeBadRequest, "channel group params invalid", nil)
		return
	}
	group.ID = id
	group.Members = nil

	if err := h.ChannelGroupService.Update(&group); err != nil {
		respondChannelGroupWriteError(c, err)
		return
	}

	response.Success(c, group)
}

// DeleteChannelGroup 删除渠道组
func (h *Handler) DeleteChannelGroup(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.ChannelGroupService.Delete(id); err != nil {
		respondError(c, response.CodeInternal, "channel group delete failed", err)
		return
	}

	response.Success(c, nil)
}

// ReplaceChannelGroupMembersRequest 全量替换组成员请求
type ReplaceChannelGroupMembersRequest struct {
	Members []models.ChannelGroupMember `json:"members" binding:"required"`
}

// ReplaceChannelGroupMembers 全量替换组成员
func (h *Handler) ReplaceChannelGroupMembers(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req ReplaceChannelGroupMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "members params invalid", nil)
		return
	}

	if err := h.ChannelGroupService.ReplaceMembers(id, req.Members); err != nil {
		respondChannelGroupWriteError(c, err)
		return
	}

	response.Success(c, nil)
}

func respondChannelGroupWriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrChannelGroupNotFound):
		respondError(c, response.CodeNotFound, "channel group not found", nil)
	case errors.Is(err, service.ErrChannelNotFound):
		respondError(c, response.CodeBadRequest, "member channel invalid", nil)
	case errors.Is(err, service.ErrGroupStrategyInvalid):
		respondError(c, response.CodeBadRequest, "strategy invalid", nil)
	default:
		respondError(c, response.CodeInternal, "channel group save failed", err)
	}
}
