package temporal

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
)

type mockExpirer struct {
	mock.Mock
}

func (m *mockExpirer) ExpireOrder(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type OrderExpiryWorkflowTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite
	env     *testsuite.TestWorkflowEnvironment
	expirer *mockExpirer
}

func (s *OrderExpiryWorkflowTestSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
	s.expirer = &mockExpirer{}
	s.env.RegisterActivityWithOptions(NewActivities(s.expirer).ExpireOrder, activity.RegisterOptions{Name: ExpireOrderActivityName})
}

func (s *OrderExpiryWorkflowTestSuite) AfterTest(suiteName, testName string) {
	s.env.AssertExpectations(s.T())
	s.expirer.AssertExpectations(s.T())
}

func TestOrderExpiryWorkflowTestSuite(t *testing.T) {
	suite.Run(t, new(OrderExpiryWorkflowTestSuite))
}

func (s *OrderExpiryWorkflowTestSuite) TestExpiresAfterDelay() {
	orderID := uuid.New()
	s.expirer.On("ExpireOrder", mock.Anything, orderID).Return(true, nil).Once()

	start := s.env.Now()
	s.env.ExecuteWorkflow(OrderExpiryWorkflow, OrderExpiryInput{OrderID: orderID.String(), Delay: 60 * time.Second})

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result OrderExpiryResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.True(result.Expired)
	s.GreaterOrEqual(s.env.Now().Sub(start), 60*time.Second)
}

func (s *OrderExpiryWorkflowTestSuite) TestSettledOrderIsNoop() {
	orderID := uuid.New()
	s.expirer.On("ExpireOrder", mock.Anything, orderID).Return(false, nil).Once()

	s.env.ExecuteWorkflow(OrderExpiryWorkflow, OrderExpiryInput{OrderID: orderID.String(), Delay: time.Minute})

	s.True(s.env.IsWorkflowCompleted())
	var result OrderExpiryResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.False(result.Expired)
}

func (s *OrderExpiryWorkflowTestSuite) TestInvalidOrderIDFails() {
	s.env.ExecuteWorkflow(OrderExpiryWorkflow, OrderExpiryInput{OrderID: "not-a-uuid"})

	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
	s.expirer.AssertNotCalled(s.T(), "ExpireOrder", mock.Anything, mock.Anything)
}

func (s *OrderExpiryWorkflowTestSuite) TestActivityErrorPropagates() {
	orderID := uuid.New()
	s.expirer.On("ExpireOrder", mock.Anything, orderID).
		Return(false, temporal.NewNonRetryableApplicationError("db down", "StoreError", nil)).Once()

	s.env.ExecuteWorkflow(OrderExpiryWorkflow, OrderExpiryInput{OrderID: orderID.String()})

	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
}

func (s *OrderExpiryWorkflowTestSuite) TestWorkflowID() {
	id := uuid.MustParse("0b6a1b7e-7f2f-4c8e-9a57-0f1d2c3b4a59")
	s.Equal("order-expiry-0b6a1b7e-7f2f-4c8e-9a57-0f1d2c3b4a59", WorkflowID(id))
}
