package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/VladKovDev/checkout-bridge/pkg/logger"
	"go.uber.org/zap"
)

// withShutdownSignal returns a context that is canceled on SIGINT or SIGTERM.
func withShutdownSignal(ctx context.Context, logger logger.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-ctx.Done():
			logger.Info("context cancelled, starting shutdown")
		case sig := <-sigChan:
			logger.Info("received shutdown signal", zap.String("signal", sig.String()))
			cancel()
		}
	}()

	return ctx, cancel
}
