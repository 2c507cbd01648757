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

// ListPayGroups 获取支付组列表
func (h *Handler) ListPayGroups(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	groups, total, err := h.PayGroupService.List(repository.PayGroupListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "pay group fetch failed", err)
		return
	}

	response.SuccessWithPage(c, groups, handlershared.BuildPagination(page, pageSize, total))
}

// GetPayGroup 获取支付组详情（含规则）
func (h *Handler) GetPayGroup(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	group, err := h.PayGroupService.Get(id)
	if err != nil {
		respondError(c, response.CodeInternal, "pay group fetch failed", err)
		return
	}
	if group == nil {
		respondError(c, response.CodeNotFound, "pay group not found", nil)
		return
	}

	response.Success(c, group)
}

// CreatePayGroup 创建支付组
func (h *Handler) CreatePayGroup(c *gin.Context) {
	var group models.PayGroup
	if err := c.ShouldBindJSON(&group); err != nil {
		respondError(c, response.CodeBadRequest, "pay group params invalid", nil)
		return
	}
	group.ID = 0
	group.Rules = nil

	if err := h.PayGroupService.Create(&group); err != nil {
		respondPayGroupWriteError(c, err)
		return
	}

	response.Success(c, group)
}

// UpdatePayGroup 更新支付组
func (h *Handler) UpdatePayGroup(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var group models.PayGroup
	if err := c.ShouldBindJSON(&group); err != nil {
		respondError(c, response.CodeBadRequest, "pay group params invalid", nil)
		return
	}
	group.ID = id
	group.Rules = nil

	if err := h.PayGroupService.Update(&group); err != nil {
		respondPayGroupWriteError(c, err)
		return
	}

	response.Success(c, group)
}

// DeletePayGroup 删除支付组
func (h *Handler) DeletePayGroup(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.PayGroupService.Delete(id); err != nil {
		respondError(c, response.CodeInternal, "pay group delete failed", err)
		return
	}

	response.Success(c, nil)
}

// SetDefaultPayGroup 设为系统默认支付组
func (h *Handler) SetDefaultPayGroup(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.PayGroupService.SetDefault(id); err != nil {
		respondPayGroupWriteError(c, err)
		return
	}

	response.Success(c, nil)
}

// SavePayGroupRule 新建或覆盖某支付方式的路由规则
func (h *Handler) SavePayGroupRule(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var rule models.PayGroupRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		respondError(c, response.CodeBadRequest, "rule params invalid", nil)
		return
	}
	rule.GroupID = id

	if err := h.PayGroupService.SaveRule(&rule); err != nil {
		respondPayGroupWriteError(c, err)
		return
	}

	response.Success(c, rule)
}

// DeletePayGroupRule 删除某支付方式的路由规则
func (h *Handler) DeletePayGroupRule(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	payType := strings.TrimSpace(c.Param("pay_type"))
	if payType == "" {
		respondError(c, response.CodeBadRequest, "pay_type required", nil)
		return
	}

	if err := h.PayGroupService.DeleteRule(id, payType); err != nil {
		respondError(c, response.CodeInternal, "rule delete failed", err)
		return
	}

	response.Success(c, nil)
}

func respondPayGroupWriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPayGroupNotFound):
		respondError(c, response.CodeNotFound, "pay group not found", nil)
	case errors.Is(err, service.ErrChannelNotFound):
		respondError(c, response.CodeBadRequest, "channel not found", nil)
	case errors.Is(err, service.ErrChannelGroupNotFound):
		respondError(c, response.CodeBadRequest, "channel group not found", nil)
	case errors.Is(err, service.ErrRuleModeInvalid):
		respondError(c, response.CodeBadRequest, "rule params invalid", nil)
	default:
		respondError(c, response.CodeInternal, "pay group save failed", err)
	}
}
