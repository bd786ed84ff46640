package cli

import (
	"context"
	"log/slog"

	"github.com/aretw0/stepwise/pkg/domain"
)

// createDebugHooks logs every Apply outcome.
func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnApplied: func(ctx context.Context, out *domain.Outcome) {
			logger.Debug("transition applied",
				"machine", out.Machine,
				"transition", out.Transition,
				"from", out.From,
				"to", out.To,
				"elapsed", out.Elapsed,
			)
		},
		OnRejected: func(ctx context.Context, out *domain.Outcome) {
			logger.Debug("transition rejected",
				"machine", out.Machine,
				"transition", out.Transition,
				"from", out.From,
				"reason", domain.Reason(out.Err),
				"elapsed", out.Elapsed,
			)
		},
	}
}

// chainHooks calls every non-nil hook in order.
func chainHooks(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnApplied: func(ctx context.Context, out *domain.Outcome) {
			for _, h := range hooks {
				if h.OnApplied != nil {
					h.OnApplied(ctx, out)
				}
			}
		},
		OnRejected: func(ctx context.Context, out *domain.Outcome) {
			for _, h := range hooks {
				if h.OnRejected != nil {
					h.OnRejected(ctx, out)
				}
			}
		},
	}
}
