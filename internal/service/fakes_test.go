package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/atendehq/helpdesk/internal/domain"
	"github.com/atendehq/helpdesk/internal/events"
	"github.com/atendehq/helpdesk/internal/repository"
)

// passTx satisfies TxRunner without a database; the closure just runs.
type passTx struct{}

func (passTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// captureDispatcher records published events for assertions.
type captureDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *captureDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *captureDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *captureDispatcher) published() []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]events.Event{}, d.events...)
}

func (d *captureDispatcher) lastOfType(eventType events.EventType) *events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := len(d.events) - 1; i >= 0; i-- {
		if d.events[i].Type == eventType {
			event := d.events[i]
			return &event
		}
	}
	return nil
}

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*domain.Ticket
	seq     int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]*domain.Ticket)}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", r.seq)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) Touch(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ticket, ok := r.tickets[id]; ok {
		ticket.UpdatedAt = time.Now()
	}
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.ViewerID != nil {
			viewer := *filter.ViewerID
			assigned := ticket.AssignedTo != nil && *ticket.AssignedTo == viewer
			if ticket.CreatedBy != viewer && !assigned {
				continue
			}
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		out = append(out, *ticket)
	}
	return out, nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func (r *fakeTicketRepo) CountByStatus(_ context.Context, viewerID *string) (map[domain.TicketStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[domain.TicketStatus]int64)
	for _, ticket := range r.tickets {
		if viewerID != nil && ticket.CreatedBy != *viewerID &&
			(ticket.AssignedTo == nil || *ticket.AssignedTo != *viewerID) {
			continue
		}
		counts[ticket.Status]++
	}
	return counts, nil
}

func (r *fakeTicketRepo) CountByPriority(_ context.Context, viewerID *string) (map[domain.TicketPriority]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[domain.TicketPriority]int64)
	for _, ticket := range r.tickets {
		if viewerID != nil && ticket.CreatedBy != *viewerID &&
			(ticket.AssignedTo == nil || *ticket.AssignedTo != *viewerID) {
			continue
		}
		counts[ticket.Priority]++
	}
	return counts, nil
}

func (r *fakeTicketRepo) CreatedPerDay(context.Context, time.Time, *string) ([]repository.DayCount, error) {
	return nil, nil
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	seq   int
}

func newFakeUserRepo(seed ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*domain.User)}
	for _, user := range seed {
		clone := *user
		r.users[user.ID] = &clone
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByResetToken(_ context.Context, token string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.ResetToken != nil && *user.ResetToken == token {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context, includeInactive bool, _, _ int) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, user := range r.users {
		if !includeInactive && !user.IsActive {
			continue
		}
		out = append(out, *user)
	}
	return out, nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments map[string]*domain.Comment
	seq      int
	failNext error
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[string]*domain.Comment)}
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	r.seq++
	comment.ID = fmt.Sprintf("comment-%d", r.seq)
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	clone := *comment
	r.comments[comment.ID] = &clone
	return nil
}

func (r *fakeCommentRepo) Update(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[comment.ID]; !ok {
		return pgx.ErrNoRows
	}
	comment.UpdatedAt = time.Now()
	clone := *comment
	r.comments[comment.ID] = &clone
	return nil
}

func (r *fakeCommentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.comments, id)
	return nil
}

func (r *fakeCommentRepo) GetByID(_ context.Context, id string) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment, ok := r.comments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *comment
	return &clone, nil
}

func (r *fakeCommentRepo) ListByTicket(_ context.Context, ticketID string, includeInternal bool) ([]domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Comment
	for _, comment := range r.comments {
		if comment.TicketID != ticketID {
			continue
		}
		if comment.IsInternal && !includeInternal {
			continue
		}
		out = append(out, *comment)
	}
	return out, nil
}

type fakeAttachmentRepo struct {
	mu          sync.Mutex
	attachments map[string]*domain.Attachment
	seq         int
	failNext    error
}

func newFakeAttachmentRepo() *fakeAttachmentRepo {
	return &fakeAttachmentRepo{attachments: make(map[string]*domain.Attachment)}
}

func (r *fakeAttachmentRepo) Create(_ context.Context, attachment *domain.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	r.seq++
	attachment.ID = fmt.Sprintf("attachment-%d", r.seq)
	attachment.CreatedAt = time.Now()
	clone := *attachment
	r.attachments[attachment.ID] = &clone
	return nil
}

func (r *fakeAttachmentRepo) GetByID(_ context.Context, id string) (*domain.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	attachment, ok := r.attachments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *attachment
	return &clone, nil
}

func (r *fakeAttachmentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Attachment
	for _, attachment := range r.attachments {
		if attachment.TicketID == ticketID {
			out = append(out, *attachment)
		}
	}
	return out, nil
}

func (r *fakeAttachmentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.attachments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.attachments, id)
	return nil
}

type fakeLogRepo struct {
	mu      sync.Mutex
	entries []domain.TicketLog
	seq     int
}

func newFakeLogRepo() *fakeLogRepo { return &fakeLogRepo{} }

func (r *fakeLogRepo) Append(_ context.Context, entry *domain.TicketLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	entry.ID = fmt.Sprintf("log-%d", r.seq)
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeLogRepo) ListByTicket(_ context.Context, ticketID string, _, _ int) ([]domain.TicketLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TicketLog
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *fakeLogRepo) byAction(action domain.LogAction) []domain.TicketLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TicketLog
	for _, entry := range r.entries {
		if entry.Action == action {
			out = append(out, entry)
		}
	}
	return out
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications map[string]*domain.Notification
	seq           int
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: make(map[string]*domain.Notification)}
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	n.ID = fmt.Sprintf("notification-%d", r.seq)
	n.CreatedAt = time.Now()
	clone := *n
	r.notifications[n.ID] = &clone
	return nil
}

func (r *fakeNotificationRepo) GetByID(_ context.Context, id string) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *n
	return &clone, nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID string, onlyUnread bool, _, _ int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Notification
	for _, n := range r.notifications {
		if n.UserID != userID {
			continue
		}
		if onlyUnread && n.IsRead {
			continue
		}
		out = append(out, *n)
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.notifications[id]; ok && !n.IsRead {
		now := time.Now()
		n.IsRead = true
		n.ReadAt = &now
	}
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
		}
	}
	return nil
}

type fakeKnowledgeRepo struct {
	mu         sync.Mutex
	articles   map[string]*domain.KnowledgeArticle
	categories map[string]*domain.KnowledgeCategory
	seq        int
}

func newFakeKnowledgeRepo() *fakeKnowledgeRepo {
	return &fakeKnowledgeRepo{
		articles:   make(map[string]*domain.KnowledgeArticle),
		categories: make(map[string]*domain.KnowledgeCategory),
	}
}

func (r *fakeKnowledgeRepo) CreateArticle(_ context.Context, article *domain.KnowledgeArticle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	article.ID = fmt.Sprintf("article-%d", r.seq)
	article.CreatedAt = time.Now()
	article.UpdatedAt = article.CreatedAt
	clone := *article
	r.articles[article.ID] = &clone
	return nil
}

func (r *fakeKnowledgeRepo) UpdateArticle(_ context.Context, article *domain.KnowledgeArticle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.articles[article.ID]; !ok {
		return pgx.ErrNoRows
	}
	article.UpdatedAt = time.Now()
	clone := *article
	r.articles[article.ID] = &clone
	return nil
}

func (r *fakeKnowledgeRepo) DeleteArticle(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.articles[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.articles, id)
	return nil
}

func (r *fakeKnowledgeRepo) GetArticleByID(_ context.Context, id string) (*domain.KnowledgeArticle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	article, ok := r.articles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *article
	return &clone, nil
}

func (r *fakeKnowledgeRepo) GetArticleBySlug(_ context.Context, slug string) (*domain.KnowledgeArticle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, article := range r.articles {
		if article.Slug == slug {
			clone := *article
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeKnowledgeRepo) ListArticles(_ context.Context, filter repository.ArticleFilter) ([]domain.KnowledgeArticle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.KnowledgeArticle
	for _, article := range r.articles {
		if filter.Published != nil && article.Published != *filter.Published {
			continue
		}
		if filter.FeaturedOnly && !article.Featured {
			continue
		}
		out = append(out, *article)
	}
	return out, nil
}

func (r *fakeKnowledgeRepo) IncrementViewCount(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if article, ok := r.articles[id]; ok {
		article.ViewCount++
	}
	return nil
}

func (r *fakeKnowledgeRepo) CreateCategory(_ context.Context, category *domain.KnowledgeCategory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	category.ID = fmt.Sprintf("category-%d", r.seq)
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	clone := *category
	r.categories[category.ID] = &clone
	return nil
}

func (r *fakeKnowledgeRepo) ListCategories(context.Context) ([]domain.KnowledgeCategory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.KnowledgeCategory
	for _, category := range r.categories {
		out = append(out, *category)
	}
	return out, nil
}
