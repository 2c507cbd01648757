package service

import "errors"

// 业务哨兵错误。配置缺失类（无可用渠道、无支付组）不是异常路径，
// 统一表现为"暂不可用"；存储错误原样向上传递，由调用方决定是否重试。
var (
	ErrMerchantNotFound    = errors.New("merchant not found")
	ErrMerchantDisabled    = errors.New("merchant disabled")
	ErrMerchantSignInvalid = errors.New("merchant sign invalid")

	ErrPayTypeNotFound     = errors.New("pay type not found")
	ErrNoAvailableChannel  = errors.New("no available channel")
	ErrAmountInvalid       = errors.New("amount invalid")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderDuplicated     = errors.New("order duplicated")
	ErrOrderStatusInvalid  = errors.New("order status invalid")
	ErrOrderCreateFailed   = errors.New("order create failed")
	ErrOrderFetchFailed    = errors.New("order fetch failed")
	ErrProviderUnsupported = errors.New("payment provider unsupported")
	ErrProviderSubmit      = errors.New("payment provider submit failed")

	ErrChannelNotFound      = errors.New("channel not found")
	ErrPayGroupNotFound     = errors.New("pay group not found")
	ErrChannelGroupNotFound = errors.New("channel group not found")
	ErrChannelConfigInvalid = errors.New("channel config invalid")
	ErrRuleModeInvalid      = errors.New("rule mode invalid")
	ErrGroupStrategyInvalid = errors.New("group strategy invalid")

	ErrAdminNotFound        = errors.New("admin not found")
	ErrAdminPasswordInvalid = errors.New("admin password invalid")
)
