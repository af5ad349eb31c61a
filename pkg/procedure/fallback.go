package procedure

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

type Recorder interface {
	RecordProcedureCall(name, target, status string, duration time.Duration)
	RecordProcedureFallback(name, from, to string)
}

type Result struct {
	Body   json.RawMessage
	Target Target
}

// Fallback tries an ordered list of targets until one call completes without a
// call-level error. What the procedure reports inside its result never causes
// a fallback.
type Fallback struct {
	caller   Caller
	targets  []Target
	logger   *zap.Logger
	recorder Recorder
}

func NewFallback(caller Caller, targets []Target, logger *zap.Logger, recorder Recorder) *Fallback {
	return &Fallback{caller: caller, targets: targets, logger: logger, recorder: recorder}
}

func (f *Fallback) Targets() []Target {
	return append([]Target(nil), f.targets...)
}

func (f *Fallback) Invoke(ctx context.Context, name string, params Params) (Result, error) {
	if len(f.targets) == 0 {
		return Result{}, ErrNoTargets
	}

	var lastErr error
	for i, target := range f.targets {
		start := time.Now()
		body, err := f.caller.Call(ctx, target, name, params)
		duration := time.Since(start)

		if err == nil {
			f.record(name, target, "success", duration)
			f.logger.Debug("Procedure call succeeded",
				zap.String("procedure", name),
				zap.String("target", target.String()),
				zap.Duration("duration", duration))
			return Result{Body: body, Target: target}, nil
		}

		f.record(name, target, "error", duration)
		lastErr = err

		if ctx.Err() != nil {
			f.logger.Warn("Procedure call aborted, context done",
				zap.String("procedure", name),
				zap.String("target", target.String()),
				zap.Error(err))
			break
		}

		if i+1 < len(f.targets) {
			next := f.targets[i+1]
			f.logger.Warn("Procedure call failed, trying next target",
				zap.String("procedure", name),
				zap.String("target", target.String()),
				zap.String("next", next.String()),
				zap.Error(err))
			if f.recorder != nil {
				f.recorder.RecordProcedureFallback(name, target.String(), next.String())
			}
		}
	}

	f.logger.Error("Procedure call failed on every target",
		zap.String("procedure", name),
		zap.Int("targets", len(f.targets)),
		zap.Error(lastErr))

	return Result{}, lastErr
}

func (f *Fallback) record(name string, target Target, status string, duration time.Duration) {
	if f.recorder == nil {
		return
	}
	f.recorder.RecordProcedureCall(name, target.String(), status, duration)
}
