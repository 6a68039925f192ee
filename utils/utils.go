package utils

import (
	"context"

	"github.com/sirupsen/logrus"
)

// HandleErrors blocks until a worker reports an error or ctx is done. The
// first error cancels ctx and is returned.
func HandleErrors(ctx context.Context, cancel context.CancelFunc, errors chan error) error {
	select {
	case err := <-errors:
		logrus.Errorf("Fatal error: %v", err)
		cancel()
		return err
	case <-ctx.Done():
		logrus.Info("Shutdown completed")
		return nil
	}
}

// Run starts run in the background and waits for it like HandleErrors, then
// for run itself to return. Resources run depends on can be released after.
func Run(ctx context.Context, cancel context.CancelFunc, run func(ctx context.Context) error) error {
	errs := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := run(ctx); err != nil {
			errs <- err
		}
	}()
	err := HandleErrors(ctx, cancel, errs)
	<-done
	return err
}

// ShortAddress abbreviates a base58 address to its first and last four characters.
func ShortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:4] + ".." + addr[len(addr)-4:]
}
