package npu

import (
	"context"
	"log/slog"

	"github.com/sarchlab/akita/v4/sim"
)

// LevelTrace is the level of simulation traces.
const LevelTrace slog.Level = slog.LevelInfo + 1

// Trace logs a simulation event.
func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// TraceHook forwards hook invocations of a Comp to Trace.
type TraceHook struct{}

// Func logs the hook context.
func (TraceHook) Func(ctx sim.HookCtx) {
	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	Trace("Hook",
		"Position", ctx.Pos.Name,
		"Kind", evt.Kind.String(),
		"Cycle", evt.Cycle,
		"Row", evt.Row,
	)
}
