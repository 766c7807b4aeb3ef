// Package groutine starts named goroutines. The name is attached as a pprof
// label, so goroutine dumps show which background loop is which.
package groutine

import (
	"context"
	"fmt"
	"runtime/pprof"

	"github.com/sirupsen/logrus"
)

type ctxKey string

const goroutineNameKey ctxKey = "goroutine_name"

// Go starts fn on a new goroutine labelled with name.
// If parentCtx is nil, context.Background() is used. A panic inside fn is
// recovered and reported through logger (when non-nil) instead of crashing
// the process.
//
//	groutine.Go(ctx, "ble-disconnect-monitor", logger, func(ctx context.Context) {
//	    <-client.Disconnected()
//	})
func Go(parentCtx context.Context, name string, logger *logrus.Logger, fn func(ctx context.Context)) {
	if parentCtx == nil {
		parentCtx = context.Background()
	}

	labels := pprof.Labels("goroutine_name", name)

	go pprof.Do(parentCtx, labels, func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil && logger != nil {
				logger.WithFields(logrus.Fields{
					"goroutine": name,
					"panic":     fmt.Sprint(r),
				}).Error("Goroutine panicked")
			}
		}()

		ctx = context.WithValue(ctx, goroutineNameKey, name)
		fn(ctx)
	})
}

// Name retrieves the goroutine name from the context.
func Name(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(goroutineNameKey).(string); ok {
		return v
	}
	return ""
}
