package public

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Skynami/LunFirPay/internal/payment"

	"github.com/gin-gonic/gin"
)

const notifyAckFail = "fail"

// ProviderNotify 处理上游异步回调。
// 回调地址按 提供方/渠道 维度区分，应答原文由适配器决定：
// 易支付族回应纯文本，微信支付回应 JSON。
func (h *Handler) ProviderNotify(c *gin.Context) {
	providerType := strings.ToLower(strings.TrimSpace(c.Param("provider")))
	channelID, err := strconv.ParseUint(c.Param("channel_id"), 10, 32)
	if err != nil || channelID == 0 {
		c.String(http.StatusBadRequest, notifyAckFail)
		return
	}

	input, err := buildNotifyInput(c)
	if err != nil {
		requestLog(c).Warnw("provider_notify_read_failed",
			"provider_type", providerType,
			"channel_id", channelID,
			"error", err,
		)
		c.String(http.StatusBadRequest, notifyAckFail)
		return
	}

	requestLog(c).Infow("provider_notify_received",
		"provider_type", providerType,
		"channel_id", channelID,
		"method", c.Request.Method,
		"client_ip", c.ClientIP(),
	)

	ack, err := h.OrderService.HandleProviderNotify(c.Request.Context(), providerType, uint(channelID), input)
	if err != nil {
		requestLog(c).Warnw("provider_notify_rejected",
			"provider_type", providerType,
			"channel_id", channelID,
			"error", err,
		)
		c.String(http.StatusBadRequest, notifyAckFail)
		return
	}

	writeNotifyAck(c, ack)
}

func buildNotifyInput(c *gin.Context) (payment.NotifyInput, error) {
	var input payment.NotifyInput

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return input, err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if err := c.Request.ParseForm(); err != nil {
		return input, err
	}

	form := c.Request.PostForm
	if len(form) == 0 {
		form = c.Request.Form
	}
	headers := make(map[string]string, len(c.Request.Header))
	for key := range c.Request.Header {
		headers[key] = c.GetHeader(key)
	}

	input.Form = form
	input.Headers = headers
	input.Body = body
	return input, nil
}

func writeNotifyAck(c *gin.Context, ack string) {
	if ack == "" {
		ack = "success"
	}
	if strings.HasPrefix(strings.TrimSpace(ack), "{") {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(ack))
		return
	}
	c.String(http.StatusOK, ack)
}
