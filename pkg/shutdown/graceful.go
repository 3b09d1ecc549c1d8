package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/honeycarbs/cypher-ask/pkg/logging"
)

// Signals end a session or a running server
var Signals = []os.Signal{os.Interrupt, syscall.SIGTERM}

type Stoppable interface {
	Shutdown(ctx context.Context) error
}

// StopFunc adapts a close function to Stoppable
type StopFunc func(ctx context.Context) error

func (f StopFunc) Shutdown(ctx context.Context) error {
	return f(ctx)
}

// NotifyContext returns a context cancelled on the first of Signals
func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, Signals...)
}

// Graceful blocks until ctx is done, then stops every target in order within timeout
func Graceful(ctx context.Context, timeout time.Duration, log *logging.Logger, targets ...Stoppable) error {
	<-ctx.Done()
	log.Info("shutdown signal received")

	stopCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	for _, s := range targets {
		if err := s.Shutdown(stopCtx); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		log.Warn("graceful shutdown completed with error", "err", err)
		return err
	}

	log.Info("graceful shutdown completed successfully")
	return nil
}
