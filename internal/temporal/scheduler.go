package temporal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
)

// Scheduler starts one OrderExpiryWorkflow per order. The workflow id is
// derived from the order id, so scheduling the same order twice is harmless.
type Scheduler struct {
	client    client.Client
	taskQueue string
}

func NewScheduler(c client.Client, taskQueue string) *Scheduler {
	return &Scheduler{client: c, taskQueue: taskQueue}
}

func WorkflowID(orderID uuid.UUID) string {
	return "order-expiry-" + orderID.String()
}

func (s *Scheduler) Schedule(ctx context.Context, orderID uuid.UUID, delay time.Duration) error {
	opts := client.StartWorkflowOptions{
		ID:                    WorkflowID(orderID),
		TaskQueue:             s.taskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}
	input := OrderExpiryInput{OrderID: orderID.String(), Delay: delay}
	if _, err := s.client.ExecuteWorkflow(ctx, opts, OrderExpiryWorkflowName, input); err != nil {
		return fmt.Errorf("start expiry workflow for order %s: %w", orderID, err)
	}
	return nil
}
