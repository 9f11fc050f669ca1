package temporal

import (
	"context"
	"time"

	"github.com/Domenick1991/airtickets/internal/service/expiry"
	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	OrderExpiryWorkflowName = "OrderExpiryWorkflow"
	ExpireOrderActivityName = "ExpireOrder"
)

type OrderExpiryInput struct {
	OrderID string        `json:"order_id"`
	Delay   time.Duration `json:"delay"`
}

type OrderExpiryResult struct {
	Expired bool `json:"expired"`
}

// OrderExpiryWorkflow sleeps until the order deadline and then expires the
// order. The activity is a no-op for orders that were settled meanwhile.
func OrderExpiryWorkflow(ctx workflow.Context, input OrderExpiryInput) (*OrderExpiryResult, error) {
	logger := workflow.GetLogger(ctx)

	if input.Delay > 0 {
		if err := workflow.Sleep(ctx, input.Delay); err != nil {
			return nil, err
		}
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    10,
		},
	})

	var expired bool
	if err := workflow.ExecuteActivity(ctx, ExpireOrderActivityName, input.OrderID).Get(ctx, &expired); err != nil {
		logger.Error("expire order activity failed", "order_id", input.OrderID, "error", err)
		return nil, err
	}

	logger.Info("order expiry finished", "order_id", input.OrderID, "expired", expired)
	return &OrderExpiryResult{Expired: expired}, nil
}

type Activities struct {
	expirer expiry.Expirer
}

func NewActivities(expirer expiry.Expirer) *Activities {
	return &Activities{expirer: expirer}
}

func (a *Activities) ExpireOrder(ctx context.Context, orderID string) (bool, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return false, temporal.NewNonRetryableApplicationError("invalid order id", "InvalidOrderID", err)
	}
	return a.expirer.ExpireOrder(ctx, id)
}
