package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atendehq/helpdesk/internal/api/http/handlers"
	"github.com/atendehq/helpdesk/internal/auth"
	"github.com/atendehq/helpdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	Attachments    *handlers.AttachmentsHandler
	Users          *handlers.UsersHandler
	Notifications  *handlers.NotificationsHandler
	Knowledge      *handlers.KnowledgeHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/forgot", cfg.Auth.ForgotPassword)
	authGroup.Post("/password/reset", cfg.Auth.ResetPassword)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)

	tickets := api.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Tickets.DeleteTicket)
	tickets.Post("/:id/forward", auth.RequireStaff(), cfg.Tickets.ForwardTicket)
	tickets.Post("/:id/respond", cfg.Tickets.RespondTicket)
	tickets.Post("/:id/return", cfg.Tickets.ReturnTicket)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Post("/:id/comments", cfg.Comments.AddComment)
	tickets.Get("/:id/comments", cfg.Comments.ListComments)
	tickets.Post("/:id/attachments", cfg.Attachments.Upload)
	tickets.Get("/:id/attachments", cfg.Attachments.List)

	comments := api.Group("/comments", cfg.AuthMiddleware.Handle)
	comments.Patch("/:id", cfg.Comments.UpdateComment)
	comments.Delete("/:id", cfg.Comments.DeleteComment)

	attachments := api.Group("/attachments")
	// Presigned downloads carry their own credential in the query string.
	attachments.Get("/:id/content", cfg.Attachments.Content)
	attachments.Get("/:id/download", cfg.AuthMiddleware.Handle, cfg.Attachments.Download)
	attachments.Get("/:id/url", cfg.AuthMiddleware.Handle, cfg.Attachments.SignedURL)
	attachments.Delete("/:id", cfg.AuthMiddleware.Handle, cfg.Attachments.Delete)

	users := api.Group("/users", cfg.AuthMiddleware.Handle)
	users.Post("", auth.RequireRole(domain.RoleAdmin), cfg.Users.Create)
	users.Get("", auth.RequireStaff(), cfg.Users.List)
	users.Get("/:id", cfg.Users.Get)
	users.Patch("/:id", cfg.Users.Update)
	users.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Users.Deactivate)

	notifications := api.Group("/notifications", cfg.AuthMiddleware.Handle)
	notifications.Get("", cfg.Notifications.List)
	notifications.Get("/unread-count", cfg.Notifications.UnreadCount)
	notifications.Post("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)

	knowledge := api.Group("/knowledge")
	knowledge.Get("/articles", cfg.AuthMiddleware.Optional, cfg.Knowledge.ListArticles)
	knowledge.Get("/articles/:slug", cfg.AuthMiddleware.Optional, cfg.Knowledge.GetArticle)
	knowledge.Get("/categories", cfg.Knowledge.ListCategories)
	knowledge.Post("/articles", cfg.AuthMiddleware.Handle, auth.RequireStaff(), cfg.Knowledge.CreateArticle)
	knowledge.Put("/articles/:id", cfg.AuthMiddleware.Handle, auth.RequireStaff(), cfg.Knowledge.UpdateArticle)
	knowledge.Delete("/articles/:id", cfg.AuthMiddleware.Handle, auth.RequireStaff(), cfg.Knowledge.DeleteArticle)
	knowledge.Post("/categories", cfg.AuthMiddleware.Handle, auth.RequireStaff(), cfg.Knowledge.CreateCategory)

	reports := api.Group("/reports", cfg.AuthMiddleware.Handle)
	reports.Get("/dashboard", cfg.Reports.Dashboard)
}
