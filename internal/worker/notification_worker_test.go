package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atendehq/helpdesk/internal/domain"
	"github.com/atendehq/helpdesk/internal/events"
)

type recordingNotificationRepo struct {
	created  []domain.Notification
	failNext error
}

func (r *recordingNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	r.created = append(r.created, *n)
	return nil
}

func (r *recordingNotificationRepo) GetByID(context.Context, string) (*domain.Notification, error) {
	return nil, errors.New("not implemented")
}

func (r *recordingNotificationRepo) ListByUser(context.Context, string, bool, int, int) ([]domain.Notification, error) {
	return nil, nil
}

func (r *recordingNotificationRepo) CountUnread(context.Context, string) (int64, error) {
	return 0, nil
}

func (r *recordingNotificationRepo) MarkRead(context.Context, string) error { return nil }

func (r *recordingNotificationRepo) MarkAllRead(context.Context, string) error { return nil }

func newWorkerUnderTest() (*NotificationWorker, *recordingNotificationRepo, events.Dispatcher) {
	repo := &recordingNotificationRepo{}
	w := NewNotificationWorker(repo, zap.NewNop())
	dispatcher := events.NewInMemoryDispatcher()
	w.Register(dispatcher)
	return w, repo, dispatcher
}

func ptr(s string) *string { return &s }

func TestWorkerCreatesNotification(t *testing.T) {
	_, repo, dispatcher := newWorkerUnderTest()

	err := dispatcher.Publish(context.Background(), events.Event{
		ID:           "e-1",
		Type:         events.EventTicketForwarded,
		TicketID:     "t-1",
		ActorID:      "u-coord",
		NotifyUserID: ptr("u-requester"),
		Timestamp:    time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	n := repo.created[0]
	assert.Equal(t, "u-requester", n.UserID)
	assert.Equal(t, domain.NotificationTicketAssigned, n.Type)
	assert.Equal(t, "Chamado encaminhado", n.Title)
	require.NotNil(t, n.RelatedID)
	assert.Equal(t, "t-1", *n.RelatedID)
	assert.Equal(t, "u-coord", n.Metadata["actor_id"])
}

func TestWorkerSkipsSelfAndMissingTarget(t *testing.T) {
	_, repo, dispatcher := newWorkerUnderTest()
	ctx := context.Background()

	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type: events.EventCommentAdded, TicketID: "t-1", ActorID: "u-1",
	}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type: events.EventCommentAdded, TicketID: "t-1", ActorID: "u-1", NotifyUserID: ptr("u-1"),
	}))

	assert.Empty(t, repo.created)
}

func TestWorkerSkipsInternalComments(t *testing.T) {
	_, repo, dispatcher := newWorkerUnderTest()

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:         events.EventCommentAdded,
		TicketID:     "t-1",
		ActorID:      "u-staff",
		NotifyUserID: ptr("u-requester"),
		Payload:      events.CommentAddedPayload{CommentID: "c-1", IsInternal: true},
	}))

	assert.Empty(t, repo.created)
}

func TestWorkerResolvedStatusGetsOwnType(t *testing.T) {
	_, repo, dispatcher := newWorkerUnderTest()
	ctx := context.Background()

	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:         events.EventTicketStatusChanged,
		TicketID:     "t-1",
		ActorID:      "u-staff",
		NotifyUserID: ptr("u-requester"),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: domain.TicketStatusInProgress,
			NewStatus: domain.TicketStatusResolved,
		},
	}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:         events.EventTicketStatusChanged,
		TicketID:     "t-1",
		ActorID:      "u-staff",
		NotifyUserID: ptr("u-requester"),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: domain.TicketStatusOpen,
			NewStatus: domain.TicketStatusInProgress,
		},
	}))

	require.Len(t, repo.created, 2)
	assert.Equal(t, domain.NotificationTicketResolved, repo.created[0].Type)
	assert.Equal(t, domain.NotificationTicketUpdated, repo.created[1].Type)
}

func TestWorkerNotifiesOnAttachmentRemoval(t *testing.T) {
	_, repo, dispatcher := newWorkerUnderTest()

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:         events.EventAttachmentDeleted,
		TicketID:     "t-1",
		ActorID:      "u-staff",
		NotifyUserID: ptr("u-requester"),
		Payload:      events.AttachmentPayload{AttachmentID: "a-1", OriginalName: "laudo.pdf"},
	}))

	require.Len(t, repo.created, 1)
	assert.Equal(t, domain.NotificationTicketUpdated, repo.created[0].Type)
	assert.Equal(t, "Anexo removido", repo.created[0].Title)
}

func TestWorkerSwallowsPersistenceFailure(t *testing.T) {
	_, repo, dispatcher := newWorkerUnderTest()
	repo.failNext = errors.New("db down")

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:         events.EventTicketResponded,
		TicketID:     "t-1",
		ActorID:      "u-staff",
		NotifyUserID: ptr("u-requester"),
	})
	assert.NoError(t, err)
	assert.Empty(t, repo.created)
}
