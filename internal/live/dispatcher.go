package live

import (
	"context"

	"github.com/rs/zerolog"

	"sentry-console/internal/log"
	"sentry-console/pkg/models"
)

// Commander sends transport actions to the backend.
type Commander interface {
	SendCommand(ctx context.Context, cmd models.Command) error
}

// Dispatcher turns operator intent into backend commands.
//
// The optimistic state is applied even when the POST fails and is never rolled back:
// the next reconciliation cycle is the only correction.
type Dispatcher struct {
	api    Commander
	rec    *Reconciler
	logger zerolog.Logger
}

func NewDispatcher(api Commander, rec *Reconciler) *Dispatcher {
	return &Dispatcher{
		api:    api,
		rec:    rec,
		logger: log.WithComponent("dispatcher"),
	}
}

// Dispatch marks the command pending, posts it, then applies its implied state.
// The returned error is informational only.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd models.Command) error {
	d.rec.Issue(cmd)

	err := d.api.SendCommand(ctx, cmd)
	if err != nil {
		d.logger.Warn().Err(err).Str("command", string(cmd)).Msg("command failed, state left to next reconciliation")
	}

	d.rec.SetOptimistic(cmd.Implied())
	return err
}

func (d *Dispatcher) Play(ctx context.Context) error {
	return d.Dispatch(ctx, models.CommandPlay)
}

func (d *Dispatcher) Pause(ctx context.Context) error {
	return d.Dispatch(ctx, models.CommandPause)
}

func (d *Dispatcher) Stop(ctx context.Context) error {
	return d.Dispatch(ctx, models.CommandStop)
}

func (d *Dispatcher) Restart(ctx context.Context) error {
	return d.Dispatch(ctx, models.CommandRestart)
}
