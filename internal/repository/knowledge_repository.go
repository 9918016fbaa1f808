package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atendehq/helpdesk/internal/domain"
	"github.com/atendehq/helpdesk/internal/persistence"
)

// ArticleFilter narrows article listings. Published stays nil for "all";
// the service forces it to true for non-staff readers.
type ArticleFilter struct {
	Published    *bool
	FeaturedOnly bool
	CategoryID   *string
	SearchTerm   *string
	Limit        int
	Offset       int
}

// KnowledgeRepository persists articles and categories.
type KnowledgeRepository interface {
	CreateArticle(ctx context.Context, article *domain.KnowledgeArticle) error
	UpdateArticle(ctx context.Context, article *domain.KnowledgeArticle) error
	DeleteArticle(ctx context.Context, id string) error
	GetArticleByID(ctx context.Context, id string) (*domain.KnowledgeArticle, error)
	GetArticleBySlug(ctx context.Context, slug string) (*domain.KnowledgeArticle, error)
	ListArticles(ctx context.Context, filter ArticleFilter) ([]domain.KnowledgeArticle, error)
	IncrementViewCount(ctx context.Context, id string) error
	CreateCategory(ctx context.Context, category *domain.KnowledgeCategory) error
	ListCategories(ctx context.Context) ([]domain.KnowledgeCategory, error)
}

type knowledgeRepository struct {
	pool *pgxpool.Pool
}

// NewKnowledgeRepository builds repository.
func NewKnowledgeRepository(pool *pgxpool.Pool) KnowledgeRepository {
	return &knowledgeRepository{pool: pool}
}

func (r *knowledgeRepository) q(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.pool)
}

const articleColumns = `id, title, slug, content, category_id, author_id, tags, published, featured, view_count, created_at, updated_at`

func (r *knowledgeRepository) CreateArticle(ctx context.Context, article *domain.KnowledgeArticle) error {
	const query = `
        INSERT INTO knowledge_articles (title, slug, content, category_id, author_id, tags, published, featured)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, view_count, created_at, updated_at`
	return r.q(ctx).QueryRow(ctx, query,
		article.Title,
		article.Slug,
		article.Content,
		article.CategoryID,
		article.AuthorID,
		article.Tags,
		article.Published,
		article.Featured,
	).Scan(&article.ID, &article.ViewCount, &article.CreatedAt, &article.UpdatedAt)
}

func (r *knowledgeRepository) UpdateArticle(ctx context.Context, article *domain.KnowledgeArticle) error {
	const query = `
        UPDATE knowledge_articles SET title=$1, slug=$2, content=$3, category_id=$4, tags=$5,
            published=$6, featured=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := r.q(ctx).Exec(ctx, query,
		article.Title,
		article.Slug,
		article.Content,
		article.CategoryID,
		article.Tags,
		article.Published,
		article.Featured,
		article.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *knowledgeRepository) DeleteArticle(ctx context.Context, id string) error {
	cmd, err := r.q(ctx).Exec(ctx, `DELETE FROM knowledge_articles WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *knowledgeRepository) GetArticleByID(ctx context.Context, id string) (*domain.KnowledgeArticle, error) {
	return r.fetchArticle(ctx, `SELECT `+articleColumns+` FROM knowledge_articles WHERE id=$1`, id)
}

func (r *knowledgeRepository) GetArticleBySlug(ctx context.Context, slug string) (*domain.KnowledgeArticle, error) {
	return r.fetchArticle(ctx, `SELECT `+articleColumns+` FROM knowledge_articles WHERE slug=$1`, slug)
}

func (r *knowledgeRepository) fetchArticle(ctx context.Context, query string, arg any) (*domain.KnowledgeArticle, error) {
	var article domain.KnowledgeArticle
	if err := r.q(ctx).QueryRow(ctx, query, arg).Scan(
		&article.ID,
		&article.Title,
		&article.Slug,
		&article.Content,
		&article.CategoryID,
		&article.AuthorID,
		&article.Tags,
		&article.Published,
		&article.Featured,
		&article.ViewCount,
		&article.CreatedAt,
		&article.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *knowledgeRepository) ListArticles(ctx context.Context, filter ArticleFilter) ([]domain.KnowledgeArticle, error) {
	base := `SELECT ` + articleColumns + ` FROM knowledge_articles`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Published != nil {
		args = append(args, *filter.Published)
		clauses = append(clauses, fmt.Sprintf("published=$%d", len(args)))
	}
	if filter.FeaturedOnly {
		clauses = append(clauses, "featured=true")
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		clauses = append(clauses, fmt.Sprintf("category_id=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(content) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.KnowledgeArticle
	for rows.Next() {
		var article domain.KnowledgeArticle
		if err := rows.Scan(
			&article.ID,
			&article.Title,
			&article.Slug,
			&article.Content,
			&article.CategoryID,
			&article.AuthorID,
			&article.Tags,
			&article.Published,
			&article.Featured,
			&article.ViewCount,
			&article.CreatedAt,
			&article.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, article)
	}
	return result, rows.Err()
}

func (r *knowledgeRepository) IncrementViewCount(ctx context.Context, id string) error {
	_, err := r.q(ctx).Exec(ctx,
		`UPDATE knowledge_articles SET view_count=view_count+1 WHERE id=$1`, id)
	return err
}

func (r *knowledgeRepository) CreateCategory(ctx context.Context, category *domain.KnowledgeCategory) error {
	const query = `
        INSERT INTO knowledge_categories (name, description)
        VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	return r.q(ctx).QueryRow(ctx, query,
		category.Name,
		category.Description,
	).Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
}

func (r *knowledgeRepository) ListCategories(ctx context.Context) ([]domain.KnowledgeCategory, error) {
	const query = `
        SELECT id, name, description, created_at, updated_at
        FROM knowledge_categories ORDER BY name ASC`
	rows, err := r.q(ctx).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.KnowledgeCategory
	for rows.Next() {
		var category domain.KnowledgeCategory
		if err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.Description,
			&category.CreatedAt,
			&category.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, category)
	}
	return result, rows.Err()
}
