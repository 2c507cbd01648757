package queue

import (
	"encoding/json"

	"github.com/Skynami/LunFirPay/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskMerchantNotify 商户异步通知任务
	TaskMerchantNotify = constants.TaskMerchantNotify
	// TaskOrderTimeoutClose 订单超时关闭任务
	TaskOrderTimeoutClose = constants.TaskOrderTimeoutClose
)

// MerchantNotifyPayload 商户异步通知任务载荷
type MerchantNotifyPayload struct {
	OrderID uint `json:"order_id"`
}

// OrderTimeoutClosePayload 订单超时关闭任务载荷
type OrderTimeoutClosePayload struct {
	OrderID uint `json:"order_id"`
}

// NewMerchantNotifyTask 创建商户异步通知任务
func NewMerchantNotifyTask(payload MerchantNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMerchantNotify, body), nil
}

// NewOrderTimeoutCloseTask 创建订单超时关闭任务
func NewOrderTimeoutCloseTask(payload OrderTimeoutClosePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderTimeoutClose, body), nil
}
