package admin

import (
	"strconv"
	"strings"
	"time"

	handlershared "github.com/Skynami/LunFirPay/internal/http/handlers/shared"
	"github.com/Skynami/LunFirPay/internal/http/response"
	"github.com/Skynami/LunFirPay/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListOrders 获取订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.OrderListFilter{
		Page:       page,
		PageSize:   pageSize,
		PayType:    c.Query("pay_type"),
		Status:     c.Query("status"),
		TradeNo:    strings.TrimSpace(c.Query("trade_no")),
		OutTradeNo: strings.TrimSpace(c.Query("out_trade_no")),
	}
	if merchantID, err := strconv.ParseUint(c.Query("merchant_id"), 10, 32); err == nil {
		filter.MerchantID = uint(merchantID)
	}
	if channelID, err := strconv.ParseUint(c.Query("channel_id"), 10, 32); err == nil {
		filter.ChannelID = uint(channelID)
	}
	if from, err := time.Parse(time.RFC3339, c.Query("created_from")); err == nil {
		filter.CreatedFrom = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("created_to")); err == nil {
		filter.CreatedTo = &to
	}

	orders, total, err := h.OrderRepo.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}

	response.SuccessWithPage(c, orders, handlershared.BuildPagination(page, pageSize, total))
}

// GetOrder 按平台订单号获取订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	tradeNo := strings.TrimSpace(c.Param("trade_no"))
	if tradeNo == "" {
		respondError(c, response.CodeBadRequest, "trade_no required", nil)
		return
	}

	order, err := h.OrderRepo.GetByTradeNo(tradeNo)
	if err != nil {
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}
	if order == nil {
		respondError(c, response.CodeNotFound, "order not found", nil)
		return
	}

	response.Success(c, order)
}

// RetryOrderNotify 手动重推商户通知
func (h *Handler) RetryOrderNotify(c *gin.Context) {
	tradeNo := strings.TrimSpace(c.Param("trade_no"))
	if tradeNo == "" {
		respondError(c, response.CodeBadRequest, "trade_no required", nil)
		return
	}

	order, err := h.OrderRepo.GetByTradeNo(tradeNo)
	if err != nil {
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}
	if order == nil {
		respondError(c, response.CodeNotFound, "order not found", nil)
		return
	}

	if err := h.NotifyService.Deliver(c.Request.Context(), order.ID); err != nil {
		respondError(c, response.CodeBadRequest, "notify delivery failed", err)
		return
	}

	response.Success(c, nil)
}

// ChannelConsumedToday 查询渠道当日已消耗额度
func (h *Handler) ChannelConsumedToday(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	consumed, err := h.RoutingService.ConsumedToday(id)
	if err != nil {
		respondError(c, response.CodeInternal, "quota fetch failed", err)
		return
	}

	response.Success(c, gin.H{
		"channel_id": id,
		"consumed":   consumed.StringFixed(2),
	})
}
