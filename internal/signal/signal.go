package signal

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
)

// WatchInterrupt returns a context cancelled on SIGINT or SIGTERM. A second
// signal is left to the default handler so the process can still be killed.
func WatchInterrupt(ctx context.Context, logger log.FieldLogger) (context.Context, context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			logger.Warn("interrupt signal received, stopping")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
