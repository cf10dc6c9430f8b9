// Package signal provides interrupt-aware contexts for commands that talk
// to a provider.
package signal

import (
	"context"
	"os"
	ossignal "os/signal"
	"syscall"
)

// NotifyContext returns a context cancelled on SIGINT or SIGTERM and a stop
// function that releases the signal registration.
func NotifyContext() (context.Context, context.CancelFunc) {
	return ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
