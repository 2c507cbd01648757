package worker

import (
	"context"
	"encoding/json"

	"github.com/Skynami/LunFirPay/internal/logger"
	"github.com/Skynami/LunFirPay/internal/provider"
	"github.com/Skynami/LunFirPay/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskMerchantNotify, c.handleMerchantNotify)
	mux.HandleFunc(queue.TaskOrderTimeoutClose, c.handleOrderTimeoutClose)
}

// handleMerchantNotify 投递商户异步通知。
// 商户未应答 success 时返回错误，交由 asynq 按重试策略再投。
func (c *Consumer) handleMerchantNotify(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.MerchantNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_merchant_notify_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_merchant_notify_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if err := c.NotifyService.Deliver(ctx, payload.OrderID); err != nil {
		logger.Warnw("worker_merchant_notify_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	return nil
}

// handleOrderTimeoutClose 关闭超时未支付订单，已支付订单不受影响。
func (c *Consumer) handleOrderTimeoutClose(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.OrderTimeoutClosePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_timeout_close_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_timeout_close_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if err := c.OrderService.CloseTimeout(payload.OrderID); err != nil {
		logger.Warnw("worker_order_timeout_close_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	return nil
}
