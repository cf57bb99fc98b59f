// Package operations runs the pipeline's batch steps in order.
//
// A Manager holds a Registry of Steps. Execute creates an OperationState
// with a fresh run ID, resolves which steps to run ("fetch", "clean" or
// "full_pipeline" for all of them in dependency order) and runs them one by
// one. Each step gets its own span, timeout and StepState; when a step fails
// every step after it is marked skipped and the run fails with an
// *OperationError wrapping the cause. Steps are never retried.
//
// Example usage:
//
//	manager := operations.NewManager(nil, nil, logger, metrics)
//	manager.RegisterStep(operations.NewFetchStep(cfg, paths, logger, metrics))
//	manager.RegisterStep(operations.NewCleanStep(cfg, paths, logger, metrics))
//
//	resp, err := manager.Execute(ctx, operations.OperationRequest{
//		Step: operations.StepFullPipeline,
//	})
package operations
