package public

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/Skynami/LunFirPay/internal/http/response"
	"github.com/Skynami/LunFirPay/internal/models"
	"github.com/Skynami/LunFirPay/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// SubmitPay 商户下单
// 参数走易支付风格的平铺键值（pid/type/out_trade_no/name/money/...），
// 支持表单与 JSON 两种提交方式，签名覆盖除 sign/sign_type 外的全部非空参数。
func (h *Handler) SubmitPay(c *gin.Context) {
	params, err := collectSignedParams(c)
	if err != nil {
		respondError(c, response.CodeBadRequest, "request body invalid", err)
		return
	}

	merchant, err := h.OrderService.ResolveMerchant(params["pid"])
	if err != nil {
		respondWithMappedError(c, err, merchantCommonErrorRules, response.CodeInternal, "merchant resolve failed")
		return
	}
	if !service.VerifyMerchantSign(params, merchant.AppSecret) {
		requestLog(c).Warnw("merchant_submit_sign_invalid", "app_id", merchant.AppID, "client_ip", c.ClientIP())
		respondError(c, response.CodeBadRequest, "sign invalid", nil)
		return
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(params["money"]))
	if err != nil {
		respondError(c, response.CodeBadRequest, "amount invalid", nil)
		return
	}

	result, err := h.OrderService.CreateOrder(service.CreateOrderInput{
		Context:    c.Request.Context(),
		Merchant:   merchant,
		OutTradeNo: params["out_trade_no"],
		PayType:    params["type"],
		Subject:    params["name"],
		Amount:     amount,
		Device:     params["device"],
		ClientIP:   c.ClientIP(),
		NotifyURL:  params["notify_url"],
		ReturnURL:  params["return_url"],
	})
	if err != nil {
		respondWithMappedError(c, err, submitErrorRules, response.CodeInternal, "order create failed")
		return
	}

	response.Success(c, gin.H{
		"trade_no":     result.Order.TradeNo,
		"out_trade_no": result.Order.OutTradeNo,
		"pay_type":     result.Order.PayType,
		"money":        result.Order.Amount,
		"interaction":  result.Interaction,
		"pay_url":      result.PayURL,
		"qr_code":      result.QRCode,
		"expires_at":   result.Order.ExpiresAt,
	})
}

// QueryOrder 商户查单
// 路径为商户订单号，查询参数需带 pid 与 sign，out_trade_no 参与签名。
func (h *Handler) QueryOrder(c *gin.Context) {
	outTradeNo := strings.TrimSpace(c.Param("out_trade_no"))
	if outTradeNo == "" {
		respondError(c, response.CodeBadRequest, "out_trade_no required", nil)
		return
	}

	params := make(map[string]string, len(c.Request.URL.Query())+1)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	params["out_trade_no"] = outTradeNo

	merchant, err := h.OrderService.ResolveMerchant(params["pid"])
	if err != nil {
		respondWithMappedError(c, err, merchantCommonErrorRules, response.CodeInternal, "merchant resolve failed")
		return
	}
	if !service.VerifyMerchantSign(params, merchant.AppSecret) {
		respondError(c, response.CodeBadRequest, "sign invalid", nil)
		return
	}

	order, err := h.OrderService.QueryOrder(merchant, outTradeNo)
	if err != nil {
		respondWithMappedError(c, err, queryErrorRules, response.CodeInternal, "order fetch failed")
		return
	}

	response.Success(c, orderView(order))
}

func orderView(order *models.Order) gin.H {
	return gin.H{
		"trade_no":      order.TradeNo,
		"out_trade_no":  order.OutTradeNo,
		"pay_type":      order.PayType,
		"money":         order.Amount,
		"fee_amount":    order.FeeAmount,
		"status":        order.Status,
		"notify_status": order.NotifyStatus,
		"paid_at":       order.PaidAt,
		"created_at":    order.CreatedAt,
		"expires_at":    order.ExpiresAt,
	}
}

// collectSignedParams 按提交方式展开平铺参数，JSON 数值统一转为十进制字符串。
func collectSignedParams(c *gin.Context) (map[string]string, error) {
	contentType := strings.ToLower(strings.TrimSpace(c.ContentType()))
	if strings.Contains(contentType, "application/json") {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, err
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		var payload map[string]interface{}
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, err
		}
		params := make(map[string]string, len(payload))
		for key, value := range payload {
			switch v := value.(type) {
			case string:
				params[key] = v
			case float64:
				params[key] = strconv.FormatFloat(v, 'f', -1, 64)
			case bool:
				params[key] = strconv.FormatBool(v)
			case nil:
			default:
				raw, _ := json.Marshal(v)
				params[key] = string(raw)
			}
		}
		return params, nil
	}

	if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}
	form := c.Request.PostForm
	if len(form) == 0 {
		form = c.Request.Form
	}
	params := make(map[string]string, len(form))
	for key, values := range form {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return params, nil
}
