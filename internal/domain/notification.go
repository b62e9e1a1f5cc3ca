package domain

import (
	"context"
	"time"
)

type NotificationType string

const (
	NotificationMessage NotificationType = "MESSAGE"
	NotificationMatch   NotificationType = "MATCH"
)

type Notification struct {
	ID        int64            `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	RelatedID *int64           `json:"related_id,omitempty"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`

	// DeliveryKey makes redelivery of the same notification a no-op.
	DeliveryKey string `json:"-"`
}

type NotificationRepository interface {
	// Create stores n unless a row with the same DeliveryKey exists. created reports which.
	Create(ctx context.Context, n *Notification) (created bool, err error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	// MarkRead flags one notification. A row owned by another user is ErrNotFound.
	MarkRead(ctx context.Context, id int64, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

// NotificationUsecase is the user's inbox.
type NotificationUsecase interface {
	ListNotifications(ctx context.Context, userID string, page, pageSize int) (*Page[Notification], error)
	UnreadNotifications(ctx context.Context, userID string) (int64, error)
	MarkNotificationRead(ctx context.Context, userID string, id int64) error
	MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error)
}

// Notifier is the fire-and-forget contract. Delivery failures never reach the caller.
type Notifier interface {
	Notify(ctx context.Context, userID string, kind NotificationType, title, body string, relatedID *int64)
}
