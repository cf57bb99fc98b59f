package operations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bikepulse/internal/shared/testutil"
)

// MockStep is a mock implementation of Step
type MockStep struct {
	mock.Mock
	BaseStep
}

func newMockStep(id string, deps ...string) *MockStep {
	return &MockStep{BaseStep: NewBaseStep(id, "mock "+id, deps)}
}

func (m *MockStep) Execute(ctx context.Context, state *OperationState) error {
	return m.Called(ctx, state).Error(0)
}

func (m *MockStep) Validate(state *OperationState) error {
	return m.Called(state).Error(0)
}

// funcStep runs a plain function; handy where a mock cannot block on ctx
type funcStep struct {
	BaseStep
	run func(ctx context.Context) error
}

func (f *funcStep) Execute(ctx context.Context, _ *OperationState) error { return f.run(ctx) }
func (f *funcStep) Validate(*OperationState) error { return nil }

func newTestManager(t *testing.T, steps ...Step) *Manager {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	m := NewManager(nil, nil, logger, nil)
	for _, s := range steps {
		require.NoError(t, m.RegisterStep(s))
	}
	return m
}

func TestManager_FullPipeline(t *testing.T) {
	fetch := newMockStep(StepIDFetch)
	clean := newMockStep(StepIDClean, StepIDFetch)

	var order []string
	fetch.On("Validate", mock.Anything).Return(nil)
	fetch.On("Execute", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		order = append(order, StepIDFetch)
	}).Return(nil)
	clean.On("Validate", mock.Anything).Return(nil)
	clean.On("Execute", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		order = append(order, StepIDClean)
	}).Return(nil)

	// registered out of order; dependencies decide
	m := newTestManager(t, clean, fetch)

	resp, err := m.Execute(context.Background(), OperationRequest{Step: StepFullPipeline})
	require.NoError(t, err)

	assert.Equal(t, []string{StepIDFetch, StepIDClean}, order)
	assert.Equal(t, []string{StepIDFetch, StepIDClean}, resp.Order)
	assert.Equal(t, OperationStatusCompleted, resp.Status)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, StepStatusCompleted, resp.Steps[StepIDFetch].Status)
	assert.Equal(t, StepStatusCompleted, resp.Steps[StepIDClean].Status)
	fetch.AssertExpectations(t)
	clean.AssertExpectations(t)
}

func TestManager_FailedStepSkipsRest(t *testing.T) {
	fetch := newMockStep(StepIDFetch)
	clean := newMockStep(StepIDClean, StepIDFetch)

	cause := errors.New("GET https://api.tfl.gov.uk/BikePoint/: unexpected status 503 Service Unavailable")
	fetch.On("Validate", mock.Anything).Return(nil)
	fetch.On("Execute", mock.Anything, mock.Anything).Return(cause)

	m := newTestManager(t, fetch, clean)
	resp, err := m.Execute(context.Background(), OperationRequest{})
	require.Error(t, err)

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, ErrorTypeExecution, opErr.Type)
	assert.Equal(t, StepIDFetch, opErr.Step)
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, OperationStatusFailed, resp.Status)
	assert.Equal(t, StepStatusFailed, resp.Steps[StepIDFetch].Status)
	assert.Equal(t, StepStatusSkipped, resp.Steps[StepIDClean].Status)
	assert.NotEmpty(t, resp.Error)
	clean.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestManager_ValidationFailure(t *testing.T) {
	clean := newMockStep(StepIDClean)
	clean.On("Validate", mock.Anything).Return(errors.New("deprivation.csv not found"))

	m := newTestManager(t, clean)
	resp, err := m.Execute(context.Background(), OperationRequest{Step: StepIDClean})
	require.Error(t, err)

	assert.Equal(t, ErrorTypeValidation, GetErrorType(err))
	assert.Equal(t, StepStatusFailed, resp.Steps[StepIDClean].Status)
	clean.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestManager_SingleStep(t *testing.T) {
	fetch := newMockStep(StepIDFetch)
	clean := newMockStep(StepIDClean, StepIDFetch)
	clean.On("Validate", mock.Anything).Return(nil)
	clean.On("Execute", mock.Anything, mock.Anything).Return(nil)

	m := newTestManager(t, fetch, clean)
	resp, err := m.Execute(context.Background(), OperationRequest{ID: "run-1", Step: StepIDClean})
	require.NoError(t, err)

	assert.Equal(t, "run-1", resp.ID)
	assert.Equal(t, []string{StepIDClean}, resp.Order)
	assert.Nil(t, resp.Steps[StepIDFetch])
	fetch.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestManager_UnknownStep(t *testing.T) {
	m := newTestManager(t, newMockStep(StepIDFetch))

	resp, err := m.Execute(context.Background(), OperationRequest{Step: "report"})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeNotFound, GetErrorType(err))
	assert.Equal(t, OperationStatusFailed, resp.Status)
}

func TestManager_Timeout(t *testing.T) {
	slow := &funcStep{
		BaseStep: NewBaseStep(StepIDFetch, "slow", nil),
		run: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}

	m := newTestManager(t, slow)
	m.config.SetStepTimeout(StepIDFetch, 20*time.Millisecond)

	_, err := m.Execute(context.Background(), OperationRequest{Step: StepIDFetch})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeTimeout, GetErrorType(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestManager_Cancelled(t *testing.T) {
	fetch := newMockStep(StepIDFetch)
	m := newTestManager(t, fetch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := m.Execute(ctx, OperationRequest{Step: StepIDFetch})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeCancellation, GetErrorType(err))
	assert.Equal(t, OperationStatusCancelled, resp.Status)
	assert.Equal(t, StepStatusSkipped, resp.Steps[StepIDFetch].Status)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newMockStep(StepIDFetch)))

	assert.Error(t, r.Register(newMockStep(StepIDFetch)), "duplicate")
	assert.Error(t, r.Register(newMockStep("")), "empty id")
	assert.Error(t, r.Register(newMockStep(StepFullPipeline)), "reserved id")
	assert.Error(t, r.Register(nil))
	assert.Equal(t, 1, r.Count())

	_, err := r.Get("missing")
	assert.Equal(t, ErrorTypeNotFound, GetErrorType(err))

	require.NoError(t, r.Register(newMockStep("a", "b")))
	require.NoError(t, r.Register(newMockStep("b", "a")))
	_, err = r.GetDependencyOrder()
	assert.ErrorContains(t, err, "cycle")

	r2 := NewRegistry()
	require.NoError(t, r2.Register(newMockStep(StepIDClean, "ghost")))
	_, err = r2.GetDependencyOrder()
	assert.ErrorContains(t, err, "non-existent")
}

func TestOperationError(t *testing.T) {
	cause := errors.New("boom")
	err := NewExecutionError(StepIDClean, cause)

	assert.Equal(t, "[execution] clean: step execution failed: boom", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrorTypeExecution, GetErrorType(cause))
	assert.Equal(t, ErrorType(""), GetErrorType(nil))

	var nilErr *OperationError
	assert.Equal(t, "unknown operation error", nilErr.Error())
}

func TestConfig_GetStepTimeout(t *testing.T) {
	c := NewConfig()
	assert.Equal(t, DefaultFetchTimeout, c.GetStepTimeout(StepIDFetch))
	assert.Equal(t, DefaultStepTimeout, c.GetStepTimeout("other"))

	c.SetStepTimeout("other", time.Second)
	assert.Equal(t, time.Second, c.GetStepTimeout("other"))
}
