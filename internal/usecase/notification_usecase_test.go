package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-jobswipe-backend/internal/domain"
	"go-jobswipe-backend/internal/usecase"
	"go-jobswipe-backend/pkg/queue"
)

func TestNotificationService_InProcess(t *testing.T) {
	store := newMemStore()
	publisher := &recordingPublisher{}
	svc := usecase.NewNotificationService(memNotifications{store}, publisher, nil, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	roomID := int64(3)
	svc.Notify(ctx, seekerID, domain.NotificationMessage, "New Message", "Acme Corp: hi", &roomID)
	// Cancelling the request must not abort delivery.
	cancel()
	svc.Wait()

	stored := store.storedNotifications()
	require.Len(t, stored, 1)
	assert.Equal(t, seekerID, stored[0].UserID)
	assert.Equal(t, domain.NotificationMessage, stored[0].Type)
	assert.Equal(t, "Acme Corp: hi", stored[0].Body)
	require.NotNil(t, stored[0].RelatedID)
	assert.Equal(t, roomID, *stored[0].RelatedID)
	assert.False(t, stored[0].IsRead)

	events := publisher.onTopic(domain.UserTopic(seekerID))
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventNotify, events[0].Type)
}

func TestNotificationService_Queued(t *testing.T) {
	store := newMemStore()
	publisher := &recordingPublisher{}
	enqueuer := new(MockEnqueuer)

	var captured queue.Task
	enqueuer.On("Enqueue", mock.Anything, mock.MatchedBy(func(t queue.Task) bool {
		return t.Type == usecase.TaskDeliverNotification
	})).Run(func(args mock.Arguments) {
		captured = args.Get(1).(queue.Task)
	}).Return(nil).Once()

	svc := usecase.NewNotificationService(memNotifications{store}, publisher, enqueuer, time.Second)
	svc.Notify(context.Background(), companyID, domain.NotificationMatch, "It's a match!", "You matched", nil)
	svc.Wait()

	enqueuer.AssertExpectations(t)
	assert.Empty(t, store.storedNotifications(), "delivery belongs to the worker")

	require.NoError(t, svc.HandleTask(context.Background(), captured))
	// A redelivered task must not create a second row or a second push.
	require.NoError(t, svc.HandleTask(context.Background(), captured))

	assert.Len(t, store.storedNotifications(), 1)
	assert.Len(t, publisher.onTopic(domain.UserTopic(companyID)), 1)

	assert.NoError(t, svc.HandleTask(context.Background(), queue.Task{Type: usecase.TaskDeliverNotification, Payload: []byte("{")}))
}

func TestNotificationService_EnqueueFailureFallsBack(t *testing.T) {
	store := newMemStore()
	publisher := &recordingPublisher{}
	enqueuer := new(MockEnqueuer)
	enqueuer.On("Enqueue", mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()

	svc := usecase.NewNotificationService(memNotifications{store}, publisher, enqueuer, time.Second)
	svc.Notify(context.Background(), seekerID, domain.NotificationMatch, "It's a match!", "Acme Corp is interested", nil)
	svc.Wait()

	assert.Len(t, store.storedNotifications(), 1)
	assert.Len(t, publisher.onTopic(domain.UserTopic(seekerID)), 1)
}

func TestNotificationService_StorageFailureIsContained(t *testing.T) {
	store := newMemStore()
	store.failNotifications = errors.New("connection refused")
	publisher := &recordingPublisher{}

	svc := usecase.NewNotificationService(memNotifications{store}, publisher, nil, time.Second)
	assert.NotPanics(t, func() {
		svc.Notify(context.Background(), seekerID, domain.NotificationMessage, "New Message", "x", nil)
		svc.Wait()
	})
	assert.Empty(t, publisher.onTopic(domain.UserTopic(seekerID)))

	err := svc.HandleTask(context.Background(), queue.Task{
		Type:    usecase.TaskDeliverNotification,
		Payload: []byte(`{"key":"k1","user_id":"` + seekerID + `","type":"MESSAGE","title":"t","body":"b"}`),
	})
	assert.Error(t, err, "worker should retry on storage errors")
}

func TestNotificationInbox(t *testing.T) {
	store := newMemStore()
	svc := usecase.NewNotificationService(memNotifications{store}, &recordingPublisher{}, nil, time.Second)
	ctx := context.Background()

	for _, body := range []string{"first", "second", "third"} {
		svc.Notify(ctx, seekerID, domain.NotificationMessage, "New Message", body, nil)
		svc.Wait()
	}
	svc.Notify(ctx, companyID, domain.NotificationMatch, "It's a match!", "other inbox", nil)
	svc.Wait()

	page, err := svc.ListNotifications(ctx, seekerID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "third", page.Items[0].Body, "newest first")
	assert.Equal(t, "second", page.Items[1].Body)

	unread, err := svc.UnreadNotifications(ctx, seekerID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	require.NoError(t, svc.MarkNotificationRead(ctx, seekerID, page.Items[0].ID))
	require.NoError(t, svc.MarkNotificationRead(ctx, seekerID, page.Items[0].ID), "marking twice is fine")
	unread, _ = svc.UnreadNotifications(ctx, seekerID)
	assert.Equal(t, int64(2), unread)

	companyPage, err := svc.ListNotifications(ctx, companyID, 1, 10)
	require.NoError(t, err)
	require.Len(t, companyPage.Items, 1)
	err = svc.MarkNotificationRead(ctx, seekerID, companyPage.Items[0].ID)
	requireAppError(t, err, http.StatusNotFound, domain.ErrNotFound)

	updated, err := svc.MarkAllNotificationsRead(ctx, seekerID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)
	unread, _ = svc.UnreadNotifications(ctx, seekerID)
	assert.Zero(t, unread)
	companyUnread, _ := svc.UnreadNotifications(ctx, companyID)
	assert.Equal(t, int64(1), companyUnread)
}
