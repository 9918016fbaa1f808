package handlers

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/atendehq/helpdesk/internal/api/dto"
	"github.com/atendehq/helpdesk/internal/auth"
	"github.com/atendehq/helpdesk/internal/service"
	apperrors "github.com/atendehq/helpdesk/pkg/util"
)

// AttachmentsHandler manages attachment upload and download endpoints.
type AttachmentsHandler struct {
	service *service.AttachmentService
}

// NewAttachmentsHandler constructs handler.
func NewAttachmentsHandler(attachmentService *service.AttachmentService) *AttachmentsHandler {
	return &AttachmentsHandler{service: attachmentService}
}

// Upload POST /tickets/:id/attachments (multipart, field "file").
func (h *AttachmentsHandler) Upload(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("multipart field 'file' required", nil)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewValidationError("unreadable upload", nil)
	}
	defer file.Close()

	attachment, err := h.service.Upload(c.UserContext(), actor, c.Params("id"), service.UploadInput{
		FileName:  fileHeader.Filename,
		MimeType:  fileHeader.Header.Get("Content-Type"),
		SizeBytes: fileHeader.Size,
		Body:      file,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.AttachmentFromDomain(attachment)})
}

// List GET /tickets/:id/attachments.
func (h *AttachmentsHandler) List(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	attachments, err := h.service.ListByTicket(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		items = append(items, dto.AttachmentFromDomain(&attachments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Download GET /attachments/:id/download.
func (h *AttachmentsHandler) Download(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	attachment, body, err := h.service.Download(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	defer body.Close()
	return streamAttachment(c, attachment.OriginalName, attachment.MimeType, body)
}

// SignedURL GET /attachments/:id/url.
func (h *AttachmentsHandler) SignedURL(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	url, err := h.service.SignedURL(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SignedURLResponse{URL: url}})
}

// Content GET /attachments/:id/content?expires=...&signature=... serves a
// presigned download without a session.
func (h *AttachmentsHandler) Content(c *fiber.Ctx) error {
	attachment, body, err := h.service.DownloadSigned(c.UserContext(), c.Params("id"), c.Query("expires"), c.Query("signature"))
	if err != nil {
		return err
	}
	defer body.Close()
	return streamAttachment(c, attachment.OriginalName, attachment.MimeType, body)
}

// Delete DELETE /attachments/:id.
func (h *AttachmentsHandler) Delete(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func streamAttachment(c *fiber.Ctx, name, mimeType string, body io.Reader) error {
	c.Set(fiber.HeaderContentType, mimeType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.SendStream(body)
}
