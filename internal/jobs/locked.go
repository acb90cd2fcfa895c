package jobs

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cloo-solutions/supportdesk/internal/lock"
)

// Locker hands out exclusive leases.
type Locker interface {
	Acquire(ctx context.Context, key string) (*lock.Lease, error)
}

// LockedProcessor runs the wrapped processor only while holding a lease, so
// a single replica processes at a time.
type LockedProcessor struct {
	inner  JobProcessor
	locker Locker
	key    string
	logger *zap.Logger
}

// NewLockedProcessor wraps inner with the lease named key.
func NewLockedProcessor(inner JobProcessor, locker Locker, key string, logger *zap.Logger) *LockedProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LockedProcessor{inner: inner, locker: locker, key: key, logger: logger}
}

// ProcessJobs implements the JobProcessor interface
func (p *LockedProcessor) ProcessJobs(ctx context.Context) error {
	lease, err := p.locker.Acquire(ctx, p.key)
	if errors.Is(err, lock.ErrNotAcquired) {
		p.logger.Debug("skipping run, lease held elsewhere", zap.String("key", p.key))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to acquire lease: %w", err)
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			p.logger.Warn("failed to release lease", zap.String("key", p.key), zap.Error(err))
		}
	}()

	return p.inner.ProcessJobs(ctx)
}
