package worker

import (
	"context"
	"testing"

	"github.com/Skynami/LunFirPay/internal/provider"
	"github.com/Skynami/LunFirPay/internal/queue"

	"github.com/hibiken/asynq"
)

func TestRegisterNilConsumerOrMux(t *testing.T) {
	var nilConsumer *Consumer
	nilConsumer.Register(asynq.NewServeMux())

	consumer := NewConsumer(&provider.Container{})
	consumer.Register(nil)
}

func TestHandleMerchantNotifyBadPayload(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task := asynq.NewTask(queue.TaskMerchantNotify, []byte("not-json"))

	if err := consumer.handleMerchantNotify(context.Background(), task); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}

func TestHandleMerchantNotifySkipZeroOrder(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task, err := queue.NewMerchantNotifyTask(queue.MerchantNotifyPayload{OrderID: 0})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}

	if err := consumer.handleMerchantNotify(context.Background(), task); err != nil {
		t.Fatalf("zero order id should be skipped, got %v", err)
	}
}

func TestHandleOrderTimeoutCloseBadPayload(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task := asynq.NewTask(queue.TaskOrderTimeoutClose, []byte("{"))

	if err := consumer.handleOrderTimeoutClose(context.Background(), task); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}

func TestHandleOrderTimeoutCloseSkipZeroOrder(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task, err := queue.NewOrderTimeoutCloseTask(queue.OrderTimeoutClosePayload{OrderID: 0})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}

	if err := consumer.handleOrderTimeoutClose(context.Background(), task); err != nil {
		t.Fatalf("zero order id should be skipped, got %v", err)
	}
}
