package main

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go-jobswipe-backend/pkg/logger"
)

func TestBackgroundWaitsForLoops(t *testing.T) {
	logger.Init()
	ctx, cancel := context.WithCancel(context.Background())

	var finished atomic.Int32
	var bg background
	for _, name := range []string{"broker", "bus", "worker"} {
		bg.Go(ctx, name, func(ctx context.Context) error {
			<-ctx.Done()
			time.Sleep(20 * time.Millisecond)
			finished.Add(1)
			return ctx.Err()
		})
	}
	bg.Go(ctx, "failing", func(context.Context) error { return errors.New("subscribe: connection refused") })

	cancel()
	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()
	assert.True(t, bg.Wait(waitCtx))
	assert.Equal(t, int32(3), finished.Load())
}

func TestBackgroundWaitGivesUp(t *testing.T) {
	logger.Init()
	release := make(chan struct{})
	defer close(release)

	var bg background
	bg.Go(context.Background(), "stuck", func(context.Context) error {
		<-release
		return nil
	})

	waitCtx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	start := time.Now()
	assert.False(t, bg.Wait(waitCtx))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
