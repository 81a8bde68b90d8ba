// Package agent drives the poll loop: one consistent snapshot per cycle,
// defense first, then expeditions, then debris, then sleep with jitter.
package agent

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"fleetwarden/internal/app/defense"
	"fleetwarden/internal/app/expedition"
	"fleetwarden/internal/app/harvest"
	"fleetwarden/internal/app/ports"
	"fleetwarden/internal/domain/warden"
)

type Settings struct {
	// SleepMin and SleepMax bound the jittered pause between cycles.
	SleepMin time.Duration
	SleepMax time.Duration
	// DegradedAfter is how many consecutive failed cycles warrant telling
	// the operator the provider is struggling.
	DegradedAfter int
}

// retryDelays is the backoff ladder for consecutive failed cycles.
var retryDelays = []time.Duration{
	5 * time.Second,
	10 * time.Second,
	15 * time.Second,
	30 * time.Second,
	60 * time.Second,
}

type Agent struct {
	Provider    ports.SnapshotProvider
	Defense     defense.Scheduler
	Expeditions expedition.Scheduler
	Harvester   harvest.Harvester
	Notifier    ports.Notifier
	Metrics     ports.CycleMetrics
	Settings    Settings
	Now         func() time.Time
	Rand        defense.Rand
	Log         *slog.Logger

	state *agentState
}

// agentState holds what the loop mutates across cycles, kept behind a
// pointer so the Agent value stays copyable.
type agentState struct {
	mu       sync.Mutex
	table    warden.DefenseTable
	failures int
}

func New(a Agent) *Agent {
	a.state = &agentState{table: warden.DefenseTable{}}
	if a.Settings.DegradedAfter <= 0 {
		a.Settings.DegradedAfter = 3
	}
	return &a
}

// Run polls until the context is cancelled or the provider fails fatally.
// Shutdown is cooperative: the current cycle always completes.
func (a *Agent) Run(ctx context.Context) error {
	a.log().Info("agent started",
		"sleep_min", a.Settings.SleepMin,
		"sleep_max", a.Settings.SleepMax)
	for {
		err := a.RunCycle(ctx)
		switch {
		case err == nil:
			a.state.failures = 0
		case errors.Is(err, ports.ErrAuth):
			// There is no safe way to keep deciding without a snapshot.
			a.log().Error("provider authentication failed, halting", "err", err)
			return err
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			a.state.failures++
			delay := retryDelays[minInt(a.state.failures-1, len(retryDelays)-1)]
			a.log().Warn("cycle failed",
				"consecutive", a.state.failures,
				"retry_in", delay,
				"err", err)
			if a.state.failures == a.Settings.DegradedAfter && a.Notifier != nil {
				a.Notifier.Notify(ctx, warden.Notification{
					Kind:       warden.NotifyProviderDegraded,
					OccurredAt: a.Now(),
					Details:    map[string]any{"consecutive_failures": a.state.failures, "err": err.Error()},
				})
			}
			if !a.sleep(ctx, delay) {
				return ctx.Err()
			}
			continue
		}
		if !a.sleep(ctx, a.nextSleep()) {
			return ctx.Err()
		}
	}
}

// RunCycle performs one full evaluation against a single snapshot.
func (a *Agent) RunCycle(ctx context.Context) error {
	snap, err := a.Provider.Snapshot(ctx)
	if err != nil {
		a.recordCycle(false)
		return err
	}

	a.state.mu.Lock()
	a.Defense.Evaluate(ctx, snap, a.state.table)
	a.state.mu.Unlock()

	if err := a.Expeditions.Evaluate(ctx, snap); err != nil {
		a.recordCycle(false)
		return err
	}
	if err := a.Harvester.Evaluate(ctx, snap); err != nil {
		a.recordCycle(false)
		return err
	}
	a.recordCycle(true)
	return nil
}

// DefenseStatuses exposes a stable copy of the per-body table for the ops
// surface.
func (a *Agent) DefenseStatuses() []warden.DefenseStatus {
	a.state.mu.Lock()
	defer a.state.mu.Unlock()
	out := make([]warden.DefenseStatus, 0, len(a.state.table))
	for _, st := range a.state.table {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Body.Less(out[j].Body) })
	return out
}

// nextSleep draws the jittered inter-cycle pause, clipped so the loop is
// awake again before the next scheduled defense action.
func (a *Agent) nextSleep() time.Duration {
	d := a.Settings.SleepMin
	if spread := a.Settings.SleepMax - a.Settings.SleepMin; spread > 0 {
		d += time.Duration(a.Rand.Int63n(int64(spread)))
	}
	a.state.mu.Lock()
	deadline, ok := a.Defense.NextDeadline(a.state.table)
	a.state.mu.Unlock()
	if ok {
		untilDeadline := deadline.Sub(a.Now())
		if untilDeadline < d {
			d = untilDeadline
		}
	}
	if d < time.Second {
		d = time.Second
	}
	return d
}

func (a *Agent) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (a *Agent) recordCycle(ok bool) {
	if a.Metrics != nil {
		a.Metrics.RecordCycle(ok)
	}
}

func (a *Agent) log() *slog.Logger {
	if a.Log != nil {
		return a.Log
	}
	return slog.Default()
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
