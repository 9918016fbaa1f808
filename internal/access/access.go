// Package access centralizes every permission predicate in the system.
// All services consult these functions before reads and writes instead of
// re-deriving role checks per handler.
package access

import "github.com/atendehq/helpdesk/internal/domain"

// CanAccessTicket reports whether the actor may view or act on the ticket:
// staff, the ticket's creator, or its current assignee.
func CanAccessTicket(actor *domain.User, ticket *domain.Ticket) bool {
	if actor == nil || ticket == nil {
		return false
	}
	if actor.Role.IsStaff() {
		return true
	}
	if actor.ID == ticket.CreatedBy {
		return true
	}
	return ticket.AssignedTo != nil && actor.ID == *ticket.AssignedTo
}

// CanComment mirrors ticket access.
func CanComment(actor *domain.User, ticket *domain.Ticket) bool {
	return CanAccessTicket(actor, ticket)
}

// CanCreateInternalComment restricts internal notes to staff.
func CanCreateInternalComment(actor *domain.User) bool {
	return actor != nil && actor.Role.IsStaff()
}

// CanSeeInternalComments reports whether internal comments are visible to
// the actor. The ticket creator never sees them unless they are staff.
func CanSeeInternalComments(actor *domain.User) bool {
	return actor != nil && actor.Role.IsStaff()
}

// CanEditComment allows the author or an admin.
func CanEditComment(actor *domain.User, comment *domain.Comment) bool {
	if actor == nil || comment == nil {
		return false
	}
	return actor.Role == domain.RoleAdmin || actor.ID == comment.AuthorID
}

// CanUploadAttachment mirrors ticket access.
func CanUploadAttachment(actor *domain.User, ticket *domain.Ticket) bool {
	return CanAccessTicket(actor, ticket)
}

// CanDeleteAttachment allows the uploader or an admin.
func CanDeleteAttachment(actor *domain.User, attachment *domain.Attachment) bool {
	if actor == nil || attachment == nil {
		return false
	}
	return actor.Role == domain.RoleAdmin || actor.ID == attachment.UploaderID
}

// CanForwardTicket restricts assignment to staff.
func CanForwardTicket(actor *domain.User) bool {
	return actor != nil && actor.Role.IsStaff()
}

// CanViewAllTickets reports whether listings are unscoped; otherwise the
// listing is filtered to tickets the actor created or is assigned to.
func CanViewAllTickets(actor *domain.User) bool {
	return actor != nil && actor.Role.IsStaff()
}

// CanManageUsers restricts user creation and deactivation to admins.
func CanManageUsers(actor *domain.User) bool {
	return actor != nil && actor.Role == domain.RoleAdmin
}

// CanUpdateUser allows staff, or the user updating themself.
func CanUpdateUser(actor *domain.User, targetID string) bool {
	if actor == nil {
		return false
	}
	return actor.Role.IsStaff() || actor.ID == targetID
}

// CanWriteKnowledge restricts article and category writes to staff.
func CanWriteKnowledge(actor *domain.User) bool {
	return actor != nil && actor.Role.IsStaff()
}

// CanSeeUnpublishedArticles reports whether unpublished articles are
// visible; anonymous and USER-role readers see published ones only.
func CanSeeUnpublishedArticles(actor *domain.User) bool {
	return actor != nil && actor.Role.IsStaff()
}
