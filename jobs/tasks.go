package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/optbazar/optbazar/internal/orders"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskOrderCreated announces a newly persisted order to managers.
	TaskOrderCreated = "orders:created"
	// TaskStaleOrderScan looks for accepted orders nobody has picked up.
	TaskStaleOrderScan = "orders:stale_scan"
)

// OrderCreatedPayload is the announcement sent for each new order.
type OrderCreatedPayload struct {
	OrderID      string    `json:"orderId"`
	Source       string    `json:"source"`
	CustomerName string    `json:"customerName"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	TotalAmount  string    `json:"totalAmount"`
	ItemCount    int       `json:"itemCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewOrderCreatedPayload extracts the announcement fields from order.
func NewOrderCreatedPayload(order orders.Order) OrderCreatedPayload {
	return OrderCreatedPayload{
		OrderID:      order.ID,
		Source:       string(order.Source),
		CustomerName: order.Customer.Name,
		Phone:        order.Customer.Phone,
		Address:      order.Customer.Address,
		TotalAmount:  order.TotalAmount.StringFixed(2),
		ItemCount:    len(order.Items),
		CreatedAt:    order.CreatedAt,
	}
}

// NewOrderCreatedTask constructs an Asynq task. The task id is derived from
// the order id so a repeated enqueue is rejected by the queue.
func NewOrderCreatedTask(order orders.Order) (*asynq.Task, error) {
	body, err := json.Marshal(NewOrderCreatedPayload(order))
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderCreated, body,
		asynq.Queue(QueueDefault),
		asynq.TaskID(TaskOrderCreated+":"+order.ID),
		asynq.MaxRetry(5),
	), nil
}

// StaleOrderScanPayload configures a scan run.
type StaleOrderScanPayload struct {
	OlderThan time.Duration `json:"olderThan"`
}

// NewStaleOrderScanTask constructs the periodic scan task.
func NewStaleOrderScanTask(olderThan time.Duration) (*asynq.Task, error) {
	body, err := json.Marshal(StaleOrderScanPayload{OlderThan: olderThan})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStaleOrderScan, body, asynq.Queue(QueueDefault)), nil
}
