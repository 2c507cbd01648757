package public

import "github.com/Skynami/LunFirPay/internal/provider"

// Handler 商户侧开放接口处理器入口
// 说明：该处理器仅用于商户下单、查单与上游异步回调。
type Handler struct {
	*provider.Container
}

// New 创建商户侧处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
