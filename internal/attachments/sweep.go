package attachments

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Sweeper deletes files in a Disk that no application references, such as
// uploads left behind by an earlier process whose records were lost.
type Sweeper struct {
	Disk       *Disk
	References func(ctx context.Context) ([]string, error)
	Grace      time.Duration
	Log        logrus.FieldLogger
}

// Run performs one sweep. Its signature matches scheduler.Task.
func (s *Sweeper) Run(ctx context.Context) error {
	refs, err := s.References(ctx)
	if err != nil {
		return err
	}
	keep := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		if key, ok := KeyFromReference(ref); ok {
			keep[key] = struct{}{}
		}
	}

	removed, err := s.Disk.Sweep(ctx, s.Grace, func(key string) bool {
		_, ok := keep[key]
		return ok
	})
	if removed > 0 && s.Log != nil {
		s.Log.WithFields(logrus.Fields{"removed": removed, "dir": s.Disk.Dir}).Info("swept orphaned attachments")
	}
	return err
}
