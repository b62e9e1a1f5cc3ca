// Package queue runs background tasks on asynq with Redis as the backing store.
package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"go-jobswipe-backend/pkg/logger"
)

// Task is a typed opaque payload. Payload encoding is up to the caller.
type Task struct {
	Type    string
	Payload []byte
}

// Handler processes a Task. A non-nil error asks asynq to retry, so handlers must be idempotent.
type Handler func(ctx context.Context, task Task) error

// Enqueuer is the producer side used by usecases.
type Enqueuer interface {
	Enqueue(ctx context.Context, t Task) error
}

type Options struct {
	RedisURL    string
	Queue       string
	MaxRetry    int
	Timeout     time.Duration
	Concurrency int
}

// Client enqueues tasks onto a single logical queue.
type Client struct {
	client *asynq.Client
	opts   Options
}

func NewClient(opts Options) (*Client, error) {
	if opts.RedisURL == "" {
		return nil, errors.New("queue: redis URL is not set")
	}
	redisOpt, err := asynq.ParseRedisURI(opts.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("queue: parse redis URL: %w", err)
	}
	return &Client{client: asynq.NewClient(redisOpt), opts: opts}, nil
}

func (c *Client) Enqueue(ctx context.Context, t Task) error {
	if t.Type == "" {
		return errors.New("queue: task type is required")
	}
	asynqOpts := []asynq.Option{asynq.Queue(c.opts.Queue)}
	if c.opts.MaxRetry > 0 {
		asynqOpts = append(asynqOpts, asynq.MaxRetry(c.opts.MaxRetry))
	}
	if c.opts.Timeout > 0 {
		asynqOpts = append(asynqOpts, asynq.Timeout(c.opts.Timeout))
	}
	_, err := c.client.EnqueueContext(ctx, asynq.NewTask(t.Type, t.Payload), asynqOpts...)
	return err
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Server consumes tasks from the configured queue.
type Server struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

func NewServer(opts Options) (*Server, error) {
	if opts.RedisURL == "" {
		return nil, errors.New("queue: redis URL is not set")
	}
	redisOpt, err := asynq.ParseRedisURI(opts.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("queue: parse redis URL: %w", err)
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{opts.Queue: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Log.Warn("Background task failed", "type", task.Type(), "error", err)
		}),
	})
	return &Server{server: srv, mux: asynq.NewServeMux()}, nil
}

func (s *Server) Register(taskType string, h Handler) {
	s.mux.HandleFunc(taskType, func(ctx context.Context, t *asynq.Task) error {
		return h(ctx, Task{Type: t.Type(), Payload: t.Payload()})
	})
}

// Run starts the workers and blocks until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	<-ctx.Done()
	s.server.Shutdown()
	return nil
}
