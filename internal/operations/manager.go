package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bikepulse/internal/infrastructure"
)

// Manager orchestrates pipeline execution
type Manager struct {
	registry *Registry
	config   *Config
	logger   *slog.Logger
	metrics  *infrastructure.PipelineMetrics
	tracer   trace.Tracer
}

// NewManager creates a new pipeline manager. registry and config default
// when nil; metrics may be nil.
func NewManager(registry *Registry, config *Config, logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		registry: registry,
		config:   config,
		logger:   infrastructure.WithComponent(logger, "operations"),
		metrics:  metrics,
		tracer:   otel.Tracer(infrastructure.MeterName),
	}
}

// RegisterStep registers a step with the pipeline
func (m *Manager) RegisterStep(step Step) error {
	return m.registry.Register(step)
}

// GetRegistry returns the registry for accessing registered steps
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// Execute runs the requested step, or every step for "full_pipeline" or an
// empty request. The returned response is populated even on failure.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.Step == "" {
		req.Step = StepFullPipeline
	}

	ctx = infrastructure.EnsureTraceID(infrastructure.WithRunID(ctx, req.ID))
	ctx, span := m.tracer.Start(ctx, "operations.Execute",
		trace.WithAttributes(
			attribute.String("operation.id", req.ID),
			attribute.String("operation.step", req.Step),
		))
	defer span.End()

	state := NewOperationState(req.ID)
	logger := m.logger.With(slog.String("operation_id", req.ID))

	steps, err := m.resolveSteps(req.Step)
	if err != nil {
		logger.ErrorContext(ctx, "operation_error", slog.String("error", err.Error()))
		state.Fail(err)
		infrastructure.RecordError(ctx, err)
		return m.createResponse(state, nil), err
	}

	order := make([]string, len(steps))
	for i, step := range steps {
		state.SetStep(step.ID(), NewStepState(step.ID(), step.Name()))
		order[i] = step.ID()
	}

	logger.InfoContext(ctx, "operation_start",
		slog.String("step", req.Step),
		slog.Any("steps", order))

	state.Start()
	err = m.executeSequential(ctx, logger, state, steps)

	switch {
	case err == nil:
		state.Complete()
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel(err)
	default:
		state.Fail(err)
	}
	if err != nil {
		infrastructure.RecordError(ctx, err)
	}

	logger.InfoContext(ctx, "operation_complete",
		slog.String("status", string(state.Status)),
		slog.Duration("duration", state.Duration()))

	return m.createResponse(state, order), err
}

func (m *Manager) resolveSteps(requested string) ([]Step, error) {
	if requested == StepFullPipeline {
		return m.registry.GetDependencyOrder()
	}
	step, err := m.registry.Get(requested)
	if err != nil {
		return nil, err
	}
	return []Step{step}, nil
}

// executeSequential runs steps one by one; the first failure skips the rest
func (m *Manager) executeSequential(ctx context.Context, logger *slog.Logger, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			cancelErr := NewCancellationError(step.ID(), err)
			m.skipRemaining(state, steps[i:], "operation cancelled")
			return cancelErr
		}

		logger.InfoContext(ctx, "executing_step",
			slog.String("step", step.ID()),
			slog.Int("step_number", i+1),
			slog.Int("total_steps", len(steps)))

		if err := m.executeStep(ctx, logger, state, step); err != nil {
			logger.ErrorContext(ctx, "step_error",
				slog.String("step", step.ID()),
				slog.String("error", err.Error()))
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("step %s failed", step.ID()))
			return err
		}
	}
	return nil
}

// executeStep validates and runs one step under its timeout
func (m *Manager) executeStep(ctx context.Context, logger *slog.Logger, state *OperationState, step Step) error {
	stepState := state.GetStep(step.ID())

	ctx, span := m.tracer.Start(ctx, "operations.step."+step.ID(),
		trace.WithAttributes(attribute.String("step.id", step.ID())))
	defer span.End()

	if err := step.Validate(state); err != nil {
		opErr := NewValidationError(step.ID(), err)
		stepState.Fail(opErr)
		m.metrics.RecordStep(ctx, step.ID(), 0, false)
		infrastructure.RecordError(ctx, opErr)
		return opErr
	}

	timeout := m.config.GetStepTimeout(step.ID())
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stepState.Start()
	start := time.Now()
	err := step.Execute(stepCtx, state)
	duration := time.Since(start)

	if err == nil {
		stepState.Complete()
		m.metrics.RecordStep(ctx, step.ID(), duration, true)
		logger.InfoContext(ctx, "step_complete",
			slog.String("step", step.ID()),
			slog.Duration("duration", duration))
		return nil
	}

	var opErr *OperationError
	switch {
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		opErr = NewTimeoutError(step.ID(), timeout.String())
		opErr.Cause = err
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		opErr = NewCancellationError(step.ID(), err)
	default:
		opErr = NewExecutionError(step.ID(), err)
	}

	stepState.Fail(opErr)
	m.metrics.RecordStep(ctx, step.ID(), duration, false)
	infrastructure.RecordError(ctx, opErr)
	return opErr
}

func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStep(step.ID()); s != nil && s.GetStatus() == StepStatusPending {
			s.Skip(reason)
		}
	}
}

// createResponse creates an operation response from state
func (m *Manager) createResponse(state *OperationState, order []string) *OperationResponse {
	resp := &OperationResponse{
		ID:       state.ID,
		Status:   state.Status,
		Duration: state.Duration(),
		Steps:    state.Steps,
		Order:    order,
	}
	if state.Error != nil {
		resp.Error = state.Error.Error()
	}
	return resp
}
