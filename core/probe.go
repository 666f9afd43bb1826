package core

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jawat-my/saferoute/constants"
	"github.com/jawat-my/saferoute/utils"
)

// Probe runs a function on a cron schedule. The relay uses it to exercise
// the diagnostics sequence periodically under serve, so upstream drift shows
// up on the event bus before a victim hits it.
type Probe struct {
	expr     string
	schedule cron.Schedule
	runner   func(ctx context.Context)
}

// NewProbe parses a standard 5-field cron expression and returns a probe
// that invokes runner on that schedule.
func NewProbe(expr string, runner func(ctx context.Context)) (*Probe, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, utils.Errorf("invalid probe cron expression %q: %v", expr, err)
	}
	return &Probe{expr: expr, schedule: schedule, runner: runner}, nil
}

// Start launches the schedule loop and returns immediately. The loop exits
// when ctx is canceled.
func (p *Probe) Start(ctx context.Context) {
	go func() {
		for {
			next := p.schedule.Next(time.Now())
			timer := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				p.runner(ctx)
			}
		}
	}()
}

// DueWithin reports whether the schedule fired inside the window ending at
// now. Serverless deployments have no resident loop; an external scheduler
// hits a check endpoint every few minutes and this decides whether the tick
// covers a scheduled run. The one-minute lookahead absorbs schedulers that
// fire slightly early.
func (p *Probe) DueWithin(now time.Time, window time.Duration) bool {
	checkFrom := now.Add(-window)
	nextRun := p.schedule.Next(checkFrom)
	return nextRun.Before(now.Add(1 * time.Minute))
}

// StartDiagnosticsProbe wires the configured probe schedule to the
// diagnostics sequence with the fixed probe scenario. Returns nil when no
// schedule is configured.
func StartDiagnosticsProbe(ctx context.Context, deps *Dependencies) (*Probe, error) {
	if deps.Config == nil || deps.Config.Probe.Cron == "" {
		return nil, nil
	}
	probe, err := NewProbe(deps.Config.Probe.Cron, func(ctx context.Context) {
		report := RunDiagnostics(ctx, deps, constants.DefaultProbeInput, constants.DefaultProbeLocation)
		if !report.Healthy {
			utils.WarnCtx(ctx, "Scheduled diagnostics probe unhealthy", "steps", len(report.Steps))
		}
	})
	if err != nil {
		return nil, err
	}
	probe.Start(ctx)
	utils.Info("Diagnostics probe scheduled: %s", deps.Config.Probe.Cron)
	return probe, nil
}
