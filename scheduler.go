package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// runPass performs one collect and report cycle.
func (p *Poller) runPass(ctx context.Context) error {
	log := p.log.With(zap.String("pass_id", uuid.NewString()))
	start := p.now()
	log.Info("Polling Started at: " + start.Local().Format(time.RFC850))

	schedules, err := p.collect(ctx, log)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			p.metrics.PassFailures.Inc()
		}
		return err
	}
	p.metrics.RecordsSeen.Set(float64(len(schedules)))

	matched := p.report(log, schedules)
	elapsed := p.now().Sub(start)
	p.metrics.PassDuration.Observe(elapsed.Seconds())

	if len(matched) == 0 {
		log.Info("No slots available.", zap.Int("records", len(schedules)))
	}
	log.Info("poll pass completed",
		zap.Int("records", len(schedules)),
		zap.Int("matches", len(matched)),
		zap.Duration("duration", elapsed))
	return nil
}

// cycle runs one pass and then waits polling_interval through the injected
// sleep, so the gap between passes is measured from the end of a pass.
func (p *Poller) cycle(ctx context.Context) {
	if err := p.runPass(ctx); err != nil && ctx.Err() == nil {
		p.log.Error("poll pass aborted", zap.Error(err))
	}
	if ctx.Err() != nil {
		return
	}
	_ = p.sleep(ctx, time.Duration(p.cfg.PollingInterval)*time.Second)
}

// startScheduler starts the first pass immediately. The job ticks every
// second in singleton mode and each run ends with the polling_interval wait,
// so the next pass starts at the first tick after that wait.
func startScheduler(ctx context.Context, p *Poller) (*gocron.Scheduler, error) {
	scheduler := gocron.NewScheduler(time.Local)
	_, err := scheduler.Every(1).Seconds().Do(func() { p.cycle(ctx) })
	if err != nil {
		return nil, fmt.Errorf("failed to schedule polling: %w", err)
	}
	scheduler.SingletonMode()
	scheduler.StartAsync()
	return scheduler, nil
}
