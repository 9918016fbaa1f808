package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/atendehq/helpdesk/internal/access"
	"github.com/atendehq/helpdesk/internal/config"
	"github.com/atendehq/helpdesk/internal/domain"
	"github.com/atendehq/helpdesk/internal/events"
	"github.com/atendehq/helpdesk/internal/repository"
	"github.com/atendehq/helpdesk/internal/storage"
	apperrors "github.com/atendehq/helpdesk/pkg/util"
)

// AttachmentService manages attachment metadata and the blob backend
// together: the blob write happens before the metadata row, and the row
// is created only if the write succeeded, so a metadata row never points
// at a missing blob.
type AttachmentService struct {
	attachments repository.AttachmentRepository
	tickets     repository.TicketRepository
	logs        repository.TicketLogRepository
	blobs       storage.BlobStore
	signer      *storage.URLSigner
	tx          TxRunner
	dispatcher  events.Dispatcher
	upload      config.UploadConfig
	logger      *zap.Logger
}

// NewAttachmentService constructs the service.
func NewAttachmentService(
	attachments repository.AttachmentRepository,
	tickets repository.TicketRepository,
	logs repository.TicketLogRepository,
	blobs storage.BlobStore,
	signer *storage.URLSigner,
	tx TxRunner,
	dispatcher events.Dispatcher,
	upload config.UploadConfig,
	logger *zap.Logger,
) *AttachmentService {
	return &AttachmentService{
		attachments: attachments,
		tickets:     tickets,
		logs:        logs,
		blobs:       blobs,
		signer:      signer,
		tx:          tx,
		dispatcher:  dispatcher,
		upload:      upload,
		logger:      logger,
	}
}

// UploadInput describes an incoming file.
type UploadInput struct {
	FileName  string
	MimeType  string
	SizeBytes int64
	Body      io.Reader
}

// Upload validates, stores the blob and records the metadata row.
func (s *AttachmentService) Upload(ctx context.Context, actor *domain.User, ticketID string, input UploadInput) (*domain.Attachment, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !access.CanUploadAttachment(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}

	name := sanitizeFileName(input.FileName)
	if name == "" {
		return nil, apperrors.NewValidationError("file name is required", nil)
	}
	if input.SizeBytes <= 0 || input.SizeBytes > s.upload.MaxSizeBytes {
		return nil, apperrors.NewValidationError("file size out of bounds", map[string]any{
			"max_size_bytes": s.upload.MaxSizeBytes,
			"size_bytes":     input.SizeBytes,
		})
	}
	mimeType := normalizeMime(input.MimeType)
	if !s.mimeAllowed(mimeType) {
		return nil, apperrors.NewValidationError("file type not allowed", map[string]any{
			"mime_type": mimeType,
		})
	}

	key := fmt.Sprintf("attachments/%s/%s%s", ticket.ID, uuid.NewString(), filepath.Ext(name))
	if err := s.blobs.Put(ctx, key, input.Body, input.SizeBytes); err != nil {
		s.logger.Error("blob write failed", zap.String("key", key), zap.Error(err))
		return nil, apperrors.NewStorageUnavailable(err)
	}

	attachment := &domain.Attachment{
		TicketID:     ticket.ID,
		UploaderID:   actor.ID,
		StorageKey:   key,
		OriginalName: name,
		MimeType:     mimeType,
		SizeBytes:    input.SizeBytes,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.attachments.Create(ctx, attachment); err != nil {
			return err
		}
		if err := s.tickets.Touch(ctx, ticket.ID); err != nil {
			return err
		}
		return s.logs.Append(ctx, &domain.TicketLog{
			TicketID: ticket.ID,
			Action:   domain.ActionAttachmentAdded,
			Details:  name,
			UserID:   actor.ID,
		})
	})
	if err != nil {
		// Orphaned blob is preferable to dangling metadata; clean up
		// best-effort.
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.logger.Warn("orphan blob cleanup failed", zap.String("key", key), zap.Error(delErr))
		}
		return nil, apperrors.MapError(err)
	}

	notify := s.counterpart(actor, ticket)
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:           uuid.NewString(),
			Type:         events.EventAttachmentAdded,
			TicketID:     ticket.ID,
			ActorID:      actor.ID,
			NotifyUserID: notify,
			Timestamp:    time.Now(),
			Payload: events.AttachmentPayload{
				AttachmentID: attachment.ID,
				OriginalName: attachment.OriginalName,
				SizeBytes:    attachment.SizeBytes,
			},
		})
	}
	return attachment, nil
}

// Download streams the blob back after an access check, logging the read.
func (s *AttachmentService) Download(ctx context.Context, actor *domain.User, attachmentID string) (*domain.Attachment, io.ReadCloser, error) {
	attachment, ticket, err := s.loadAttachment(ctx, attachmentID)
	if err != nil {
		return nil, nil, err
	}
	if !access.CanAccessTicket(actor, ticket) {
		return nil, nil, apperrors.NewForbidden("access denied")
	}

	body, err := s.blobs.Get(ctx, attachment.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, apperrors.NewNotFound("attachment blob", map[string]any{"attachment_id": attachmentID})
		}
		s.logger.Error("blob read failed", zap.String("key", attachment.StorageKey), zap.Error(err))
		return nil, nil, apperrors.NewStorageUnavailable(err)
	}

	if err := s.logs.Append(ctx, &domain.TicketLog{
		TicketID: ticket.ID,
		Action:   domain.ActionAttachmentDownloaded,
		Details:  attachment.OriginalName,
		UserID:   actor.ID,
	}); err != nil {
		s.logger.Warn("download log append failed", zap.Error(err))
	}
	return attachment, body, nil
}

// SignedURL issues query parameters granting temporary unauthenticated
// access to the attachment blob.
func (s *AttachmentService) SignedURL(ctx context.Context, actor *domain.User, attachmentID string) (string, error) {
	attachment, ticket, err := s.loadAttachment(ctx, attachmentID)
	if err != nil {
		return "", err
	}
	if !access.CanAccessTicket(actor, ticket) {
		return "", apperrors.NewForbidden("access denied")
	}
	return fmt.Sprintf("/api/v1/attachments/%s/content?%s", attachment.ID, s.signer.Sign(attachment.StorageKey, time.Now())), nil
}

// DownloadSigned serves a blob for a presigned request; no session needed.
func (s *AttachmentService) DownloadSigned(ctx context.Context, attachmentID, expires, signature string) (*domain.Attachment, io.ReadCloser, error) {
	attachment, _, err := s.loadAttachment(ctx, attachmentID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.signer.Verify(attachment.StorageKey, expires, signature, time.Now()); err != nil {
		return nil, nil, apperrors.NewUnauthorized(err.Error())
	}
	body, err := s.blobs.Get(ctx, attachment.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, apperrors.NewNotFound("attachment blob", map[string]any{"attachment_id": attachmentID})
		}
		return nil, nil, apperrors.NewStorageUnavailable(err)
	}
	return attachment, body, nil
}

// Delete removes metadata and then the blob. The blob delete is
// best-effort; a leftover blob is invisible once the row is gone.
func (s *AttachmentService) Delete(ctx context.Context, actor *domain.User, attachmentID string) error {
	attachment, ticket, err := s.loadAttachment(ctx, attachmentID)
	if err != nil {
		return err
	}
	if !access.CanDeleteAttachment(actor, attachment) {
		return apperrors.NewForbidden("only the uploader or an admin may delete an attachment")
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.attachments.Delete(ctx, attachment.ID); err != nil {
			return err
		}
		return s.logs.Append(ctx, &domain.TicketLog{
			TicketID: ticket.ID,
			Action:   domain.ActionAttachmentDeleted,
			Details:  attachment.OriginalName,
			UserID:   actor.ID,
		})
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	if err := s.blobs.Delete(ctx, attachment.StorageKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("blob delete failed", zap.String("key", attachment.StorageKey), zap.Error(err))
	}
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:           uuid.NewString(),
			Type:         events.EventAttachmentDeleted,
			TicketID:     ticket.ID,
			ActorID:      actor.ID,
			NotifyUserID: s.counterpart(actor, ticket),
			Timestamp:    time.Now(),
			Payload: events.AttachmentPayload{
				AttachmentID: attachment.ID,
				OriginalName: attachment.OriginalName,
				SizeBytes:    attachment.SizeBytes,
			},
		})
	}
	return nil
}

// ListByTicket returns attachment metadata for a ticket the actor can see.
func (s *AttachmentService) ListByTicket(ctx context.Context, actor *domain.User, ticketID string) ([]domain.Attachment, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !access.CanAccessTicket(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	attachments, err := s.attachments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return attachments, nil
}

func (s *AttachmentService) mimeAllowed(mimeType string) bool {
	for _, allowed := range s.upload.AllowedTypes {
		if strings.EqualFold(allowed, mimeType) {
			return true
		}
	}
	return false
}

func (s *AttachmentService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *AttachmentService) loadAttachment(ctx context.Context, attachmentID string) (*domain.Attachment, *domain.Ticket, error) {
	attachment, err := s.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("attachment", map[string]any{"attachment_id": attachmentID})
		}
		return nil, nil, apperrors.MapError(err)
	}
	ticket, err := s.loadTicket(ctx, attachment.TicketID)
	if err != nil {
		return nil, nil, err
	}
	return attachment, ticket, nil
}

func (s *AttachmentService) counterpart(actor *domain.User, ticket *domain.Ticket) *string {
	if actor.ID != ticket.CreatedBy {
		creator := ticket.CreatedBy
		return &creator
	}
	if ticket.AssignedTo != nil {
		assignee := *ticket.AssignedTo
		return &assignee
	}
	return nil
}

// sanitizeFileName strips any path component from a client-supplied name.
func sanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}

func normalizeMime(mimeType string) string {
	mimeType = strings.TrimSpace(strings.ToLower(mimeType))
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	return mimeType
}
