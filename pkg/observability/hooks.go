package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/htn/pkg/domain"
)

// LoggingHooks records every lifecycle event through logger.
// Sensor readings and step starts are logged at debug level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSense: func(ctx context.Context, e *domain.SenseEvent) {
			logger.DebugContext(ctx, "sensed", "agent", e.Agent, "key", e.Key, "value", e.Value.String())
		},
		OnPlanFound: func(ctx context.Context, e *domain.PlanEvent) {
			logger.InfoContext(ctx, "plan found", "agent", e.Agent, "plan_id", e.PlanID,
				"tasks", e.Tasks, "explored", e.Explored, "duration", e.Duration)
		},
		OnPlanFailed: func(ctx context.Context, e *domain.PlanEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "planning failed", "agent", e.Agent, "err", e.Err)
				return
			}
			logger.InfoContext(ctx, "no plan found", "agent", e.Agent, "duration", e.Duration)
		},
		OnTaskStart: func(ctx context.Context, e *domain.TaskEvent) {
			logger.DebugContext(ctx, "task started", "agent", e.Agent, "plan_id", e.PlanID, "index", e.Index, "task", e.Task)
		},
		OnTaskComplete: func(ctx context.Context, e *domain.TaskEvent) {
			logger.InfoContext(ctx, "task completed", "agent", e.Agent, "plan_id", e.PlanID, "index", e.Index, "task", e.Task)
		},
		OnTaskFailed: func(ctx context.Context, e *domain.TaskEvent) {
			logger.WarnContext(ctx, "task failed", "agent", e.Agent, "plan_id", e.PlanID, "index", e.Index, "task", e.Task, "err", e.Err)
		},
	}
}

// Combine fans every event out to each set of hooks, in argument order.
func Combine(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range hooks {
		out.OnSense = chain(out.OnSense, h.OnSense)
		out.OnPlanFound = chain(out.OnPlanFound, h.OnPlanFound)
		out.OnPlanFailed = chain(out.OnPlanFailed, h.OnPlanFailed)
		out.OnTaskStart = chain(out.OnTaskStart, h.OnTaskStart)
		out.OnTaskComplete = chain(out.OnTaskComplete, h.OnTaskComplete)
		out.OnTaskFailed = chain(out.OnTaskFailed, h.OnTaskFailed)
	}
	return out
}

func chain[E any](first, next func(context.Context, *E)) func(context.Context, *E) {
	switch {
	case first == nil:
		return next
	case next == nil:
		return first
	}
	return func(ctx context.Context, e *E) {
		first(ctx, e)
		next(ctx, e)
	}
}
