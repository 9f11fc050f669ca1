package temporal

import (
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
)

// NewWorker registers the expiry workflow and its activity on taskQueue.
func NewWorker(c client.Client, taskQueue string, acts *Activities) worker.Worker {
	w := worker.New(c, taskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(OrderExpiryWorkflow, workflow.RegisterOptions{Name: OrderExpiryWorkflowName})
	w.RegisterActivityWithOptions(acts.ExpireOrder, activity.RegisterOptions{Name: ExpireOrderActivityName})
	return w
}
