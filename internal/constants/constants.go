package constants

// 订单状态常量
const (
	OrderStatusPending = "pending"
	OrderStatusSuccess = "success"
	OrderStatusFailed  = "failed"
	OrderStatusExpired = "expired"
)

// 商户异步通知状态常量
const (
	NotifyStatusPending = "pending"
	NotifyStatusSuccess = "success"
	NotifyStatusFailed  = "failed"
)

// 支付提供方常量（渠道适配器标识）
const (
	PaymentProviderEpay      = "epay"
	PaymentProviderWechatpay = "wechatpay"
)

// 支付方式类型常量
const (
	PayTypeAlipay = "alipay"
	PayTypeWxpay  = "wxpay"
	PayTypeQQpay  = "qqpay"
	PayTypeBank   = "bank"
)

// 设备类型常量
const (
	DeviceAll    = "all"
	DevicePC     = "pc"
	DeviceMobile = "mobile"
)

// 路由规则模式常量（支付组内按支付方式配置）
const (
	RuleModeDisabled       = "disabled"
	RuleModeChannel        = "channel"
	RuleModeRandom         = "random"
	RuleModeRoundRobin     = "round_robin"
	RuleModeFirstAvailable = "first_available"
	RuleModeGroup          = "group"
)

// 渠道组选取策略常量
const (
	GroupStrategyRoundRobin     = "round_robin"
	GroupStrategyWeightedRandom = "weighted_random"
	GroupStrategyFirstAvailable = "first_available"
)

// 商户状态常量
const (
	MerchantStatusActive   = "active"
	MerchantStatusDisabled = "disabled"
)

// 支付交互方式常量（适配器下单结果类型）
const (
	PaymentInteractionJump  = "jump"
	PaymentInteractionQR    = "qrcode"
	PaymentInteractionPage  = "page"
	PaymentInteractionJSAPI = "jsapi"
)

// 队列名称常量
const (
	QueueDefault = "default"
	QueueNotify  = "notify"
)

// 队列任务类型常量
const (
	TaskMerchantNotify    = "notify:merchant"
	TaskOrderTimeoutClose = "order:timeout_close"
)
