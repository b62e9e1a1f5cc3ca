package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-jobswipe-backend/internal/domain"
	"go-jobswipe-backend/pkg/apperror"
	"go-jobswipe-backend/pkg/logger"
	"go-jobswipe-backend/pkg/queue"
)

// TaskDeliverNotification is the queue task type handled by NotificationService.HandleTask.
const TaskDeliverNotification = "notification:deliver"

type notificationTask struct {
	Key       string                  `json:"key"`
	UserID    string                  `json:"user_id"`
	Type      domain.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Body      string                  `json:"body"`
	RelatedID *int64                  `json:"related_id,omitempty"`
}

// NotificationService persists notifications and pushes them to the user's realtime topic.
// With a queue configured delivery runs on the worker; otherwise in a goroutine.
type NotificationService struct {
	repo      domain.NotificationRepository
	publisher domain.EventPublisher
	enqueuer  queue.Enqueuer
	timeout   time.Duration
	inflight  sync.WaitGroup
}

var _ domain.NotificationUsecase = (*NotificationService)(nil)

func NewNotificationService(repo domain.NotificationRepository, publisher domain.EventPublisher, enqueuer queue.Enqueuer, timeout time.Duration) *NotificationService {
	return &NotificationService{repo: repo, publisher: publisher, enqueuer: enqueuer, timeout: timeout}
}

// Notify never fails the caller. Errors end up in the log.
func (s *NotificationService) Notify(ctx context.Context, userID string, kind domain.NotificationType, title, body string, relatedID *int64) {
	task := notificationTask{
		Key:       uuid.NewString(),
		UserID:    userID,
		Type:      kind,
		Title:     title,
		Body:      body,
		RelatedID: relatedID,
	}
	// Delivery outlives the request that triggered it.
	ctx = context.WithoutCancel(ctx)

	if s.enqueuer != nil {
		payload, err := json.Marshal(task)
		if err == nil {
			qctx, cancel := boundedContext(ctx, s.timeout)
			err = s.enqueuer.Enqueue(qctx, queue.Task{Type: TaskDeliverNotification, Payload: payload})
			cancel()
		}
		if err == nil {
			return
		}
		logger.Log.Warn("Notification enqueue failed, delivering in-process", "user_id", userID, "type", kind, "error", err)
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		if err := s.deliver(ctx, task); err != nil {
			logger.Log.Error("Notification delivery failed", "user_id", userID, "type", kind, "error", err)
		}
	}()
}

// HandleTask is the queue worker entry point. Returning an error asks the queue to retry.
func (s *NotificationService) HandleTask(ctx context.Context, t queue.Task) error {
	var task notificationTask
	if err := json.Unmarshal(t.Payload, &task); err != nil {
		// A malformed payload will never succeed; drop it.
		logger.Log.Error("Dropping malformed notification task", "error", err)
		return nil
	}
	return s.deliver(ctx, task)
}

// Wait blocks until in-process deliveries started so far have finished.
func (s *NotificationService) Wait() {
	s.inflight.Wait()
}

func (s *NotificationService) deliver(ctx context.Context, task notificationTask) error {
	ctx, cancel := boundedContext(ctx, s.timeout)
	defer cancel()

	n := &domain.Notification{
		UserID:      task.UserID,
		Type:        task.Type,
		Title:       task.Title,
		Body:        task.Body,
		RelatedID:   task.RelatedID,
		DeliveryKey: task.Key,
	}
	created, err := s.repo.Create(ctx, n)
	if err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	if !created {
		return nil
	}

	s.publisher.Publish(ctx, domain.UserTopic(n.UserID), domain.Event{Type: domain.EventNotify, Data: n})
	return nil
}

// ListNotifications pages through the user's inbox, newest first.
func (s *NotificationService) ListNotifications(ctx context.Context, userID string, page, pageSize int) (*domain.Page[domain.Notification], error) {
	ctx, cancel := boundedContext(ctx, s.timeout)
	defer cancel()

	page, pageSize, limit, offset := paginate(page, pageSize)
	items, total, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	return &domain.Page[domain.Notification]{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *NotificationService) UnreadNotifications(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := boundedContext(ctx, s.timeout)
	defer cancel()

	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperror.FromStorage(err)
	}
	return count, nil
}

// MarkNotificationRead is idempotent. Someone else's notification reads as not found.
func (s *NotificationService) MarkNotificationRead(ctx context.Context, userID string, id int64) error {
	ctx, cancel := boundedContext(ctx, s.timeout)
	defer cancel()

	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		return storageError(err, "Notification not found")
	}
	return nil
}

func (s *NotificationService) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := boundedContext(ctx, s.timeout)
	defer cancel()

	updated, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, apperror.FromStorage(err)
	}
	return updated, nil
}
