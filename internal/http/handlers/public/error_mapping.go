package public

import (
	"errors"

	handlershared "github.com/Skynami/LunFirPay/internal/http/handlers/shared"
	"github.com/Skynami/LunFirPay/internal/http/response"
	"github.com/Skynami/LunFirPay/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var merchantCommonErrorRules = []mappedHandlerError{
	{target: service.ErrMerchantNotFound, code: response.CodeNotFound, msg: "merchant not found"},
	{target: service.ErrMerchantDisabled, code: response.CodeBadRequest, msg: "merchant disabled"},
	{target: service.ErrMerchantSignInvalid, code: response.CodeBadRequest, msg: "sign invalid"},
}

var submitErrorRules = []mappedHandlerError{
	{target: service.ErrAmountInvalid, code: response.CodeBadRequest, msg: "amount invalid"},
	{target: service.ErrPayTypeNotFound, code: response.CodeBadRequest, msg: "pay type not supported"},
	{target: service.ErrNoAvailableChannel, code: response.CodeBadRequest, msg: "payment method temporarily unavailable"},
	{target: service.ErrOrderDuplicated, code: response.CodeBadRequest, msg: "out_trade_no duplicated"},
	{target: service.ErrProviderUnsupported, code: response.CodeBadRequest, msg: "payment method temporarily unavailable"},
	{target: service.ErrProviderSubmit, code: response.CodeBadRequest, msg: "upstream submit failed"},
	{target: service.ErrOrderCreateFailed, code: response.CodeBadRequest, msg: "order params invalid"},
}

var queryErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
}
