package main

import (
	"context"
	"errors"
	"sync"

	"go-jobswipe-backend/pkg/logger"
)

// background tracks long-running loops started against the root context
// so shutdown can wait for them to return before closing their dependencies.
type background struct {
	wg sync.WaitGroup
}

func (b *background) Go(ctx context.Context, name string, run func(context.Context) error) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Log.Error("Background loop stopped", "loop", name, "error", err)
		}
	}()
}

// Wait blocks until every loop has returned or ctx expires. It reports whether all loops finished.
func (b *background) Wait(ctx context.Context) bool {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}
