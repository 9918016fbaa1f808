package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/atendehq/helpdesk/internal/domain"
	"github.com/atendehq/helpdesk/internal/events"
	"github.com/atendehq/helpdesk/internal/repository"
)

// NotificationWorker turns domain events into persisted notifications for
// the counterpart user. Persistence failures are logged and swallowed —
// a lost notification must never fail the request that triggered it.
type NotificationWorker struct {
	notifications repository.NotificationRepository
	logger        *zap.Logger
}

// NewNotificationWorker builds the worker.
func NewNotificationWorker(notifications repository.NotificationRepository, logger *zap.Logger) *NotificationWorker {
	return &NotificationWorker{notifications: notifications, logger: logger}
}

// Register subscribes the worker to every notifying event type.
func (w *NotificationWorker) Register(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketForwarded,
		events.EventTicketResponded,
		events.EventTicketReturned,
		events.EventTicketStatusChanged,
		events.EventCommentAdded,
		events.EventAttachmentAdded,
		events.EventAttachmentDeleted,
	} {
		dispatcher.Subscribe(eventType, w.handle)
	}
}

func (w *NotificationWorker) handle(ctx context.Context, event events.Event) error {
	if event.NotifyUserID == nil || *event.NotifyUserID == event.ActorID {
		return nil
	}

	notifType, title, message := describe(event)
	if notifType == "" {
		return nil
	}

	ticketID := event.TicketID
	notification := &domain.Notification{
		UserID:    *event.NotifyUserID,
		Type:      notifType,
		Title:     title,
		Message:   message,
		RelatedID: &ticketID,
		Metadata: map[string]any{
			"event_id":   event.ID,
			"event_type": string(event.Type),
			"actor_id":   event.ActorID,
		},
	}

	if err := w.notifications.Create(ctx, notification); err != nil {
		w.logger.Warn("notification create failed",
			zap.String("ticket_id", event.TicketID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
	return nil
}

func describe(event events.Event) (domain.NotificationType, string, string) {
	switch event.Type {
	case events.EventTicketCreated:
		return domain.NotificationTicketUpdated, "Novo chamado",
			fmt.Sprintf("Um novo chamado foi aberto (%s).", event.TicketID)
	case events.EventTicketForwarded:
		return domain.NotificationTicketAssigned, "Chamado encaminhado",
			fmt.Sprintf("O chamado %s foi encaminhado para atendimento.", event.TicketID)
	case events.EventTicketResponded:
		return domain.NotificationTicketUpdated, "Chamado respondido",
			fmt.Sprintf("O chamado %s recebeu uma resposta.", event.TicketID)
	case events.EventTicketReturned:
		return domain.NotificationTicketReturned, "Chamado devolvido",
			fmt.Sprintf("O chamado %s voltou para a coordenação.", event.TicketID)
	case events.EventTicketStatusChanged:
		if payload, ok := event.Payload.(events.TicketStatusChangedPayload); ok &&
			payload.NewStatus == domain.TicketStatusResolved {
			return domain.NotificationTicketResolved, "Chamado resolvido",
				fmt.Sprintf("O chamado %s foi marcado como resolvido.", event.TicketID)
		}
		return domain.NotificationTicketUpdated, "Chamado atualizado",
			fmt.Sprintf("O status do chamado %s mudou.", event.TicketID)
	case events.EventCommentAdded:
		if payload, ok := event.Payload.(events.CommentAddedPayload); ok && payload.IsInternal {
			// Internal notes stay internal; no notification to the requester.
			return "", "", ""
		}
		return domain.NotificationTicketCommented, "Novo comentário",
			fmt.Sprintf("O chamado %s recebeu um comentário.", event.TicketID)
	case events.EventAttachmentAdded:
		return domain.NotificationTicketUpdated, "Novo anexo",
			fmt.Sprintf("O chamado %s recebeu um anexo.", event.TicketID)
	case events.EventAttachmentDeleted:
		return domain.NotificationTicketUpdated, "Anexo removido",
			fmt.Sprintf("Um anexo do chamado %s foi removido.", event.TicketID)
	}
	return "", "", ""
}
