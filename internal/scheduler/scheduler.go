// Package scheduler runs background maintenance tasks on a fixed interval.
package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type Task func(ctx context.Context) error

// Every runs task once immediately and then on every tick until ctx is
// done. Runs never overlap; task errors are logged and do not stop the loop.
func Every(ctx context.Context, interval time.Duration, name string, log logrus.FieldLogger, task Task) {
	run := func() {
		if err := task(ctx); err != nil && ctx.Err() == nil {
			log.WithError(err).WithField("task", name).Warn("scheduled task failed")
		}
	}

	run()

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}
