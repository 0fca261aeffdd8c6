package launch

import (
	"context"

	"go.uber.org/zap"

	"app-selector/internal/candidate"
	"app-selector/internal/request"
)

// Outcome is the result of launching a selected candidate.
type Outcome struct {
	AppID    string
	PID      int
	Err      error
	IsCaller bool
}

// Launched reports whether the forward succeeded.
func (o Outcome) Launched() bool {
	return o.Err == nil
}

// Select forwards the session bundle to the chosen candidate with
// start_info=<appID> set. The session bundle gains the same marker only on
// success, which later tells the terminate path that a launch happened.
// Failures are returned, never retried.
func Select(ctx context.Context, l Launcher, app *candidate.App, b *request.Bundle, callerPID int, log *zap.Logger) Outcome {
	if log == nil {
		log = zap.NewNop()
	}
	out := Outcome{AppID: app.AppID}

	fwd := b.Clone()
	fwd.Set(request.KeyStartInfo, app.AppID)

	pid, err := l.Forward(ctx, app.AppID, fwd)
	if err != nil {
		out.Err = err
		log.Error("app launch error", zap.String("app_id", app.AppID), zap.Error(err))
		return out
	}

	out.PID = pid
	b.Set(request.KeyStartInfo, app.AppID)
	log.Info("app launch ok", zap.String("app_id", app.AppID), zap.Int("pid", pid))

	if callerPID > 0 && pid == callerPID {
		out.IsCaller = true
		log.Info("launched app is the caller", zap.Int("pid", pid))
	}
	return out
}
