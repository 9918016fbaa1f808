package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atendehq/helpdesk/internal/domain"
)

func newKnowledgeFixture() (*KnowledgeService, *fakeKnowledgeRepo, *domain.User, *domain.User) {
	repo := newFakeKnowledgeRepo()
	svc := NewKnowledgeService(repo, zap.NewNop())
	staff := &domain.User{ID: "u-staff", Role: domain.RoleCoordinator, IsActive: true}
	reader := &domain.User{ID: "u-reader", Role: domain.RoleUser, IsActive: true}
	return svc, repo, staff, reader
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Setup Guide", "setup-guide"},
		{"Configuração de VPN", "configuracao-de-vpn"},
		{"  Wi-Fi: acesso rápido!  ", "wi-fi-acesso-rapido"},
		{"çãõé", "caoe"},
		{"!!!", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.in), "input %q", tc.in)
	}
}

func TestCreateArticleStaffOnly(t *testing.T) {
	svc, _, _, reader := newKnowledgeFixture()

	_, err := svc.CreateArticle(context.Background(), reader, ArticleInput{Title: "t", Content: "c"})
	assert.Equal(t, "FORBIDDEN", errCode(t, err))
}

func TestCreateArticleSlugCollision(t *testing.T) {
	svc, _, staff, _ := newKnowledgeFixture()
	ctx := context.Background()

	first, err := svc.CreateArticle(ctx, staff, ArticleInput{Title: "Setup Guide", Content: "c", Published: true})
	require.NoError(t, err)
	assert.Equal(t, "setup-guide", first.Slug)

	second, err := svc.CreateArticle(ctx, staff, ArticleInput{Title: "Setup Guide", Content: "c2", Published: true})
	require.NoError(t, err)
	assert.Equal(t, "setup-guide-1", second.Slug)

	third, err := svc.CreateArticle(ctx, staff, ArticleInput{Title: "Setup Guide", Content: "c3", Published: true})
	require.NoError(t, err)
	assert.Equal(t, "setup-guide-2", third.Slug)
}

func TestCreateArticleUnsluggableTitle(t *testing.T) {
	svc, _, staff, _ := newKnowledgeFixture()

	article, err := svc.CreateArticle(context.Background(), staff, ArticleInput{Title: "???", Content: "c"})
	require.NoError(t, err)
	assert.Equal(t, "artigo", article.Slug)
}

func TestCreateArticleNormalizesTags(t *testing.T) {
	svc, _, staff, _ := newKnowledgeFixture()

	article, err := svc.CreateArticle(context.Background(), staff, ArticleInput{
		Title: "Rede", Content: "c",
		Tags: []string{" VPN ", "vpn", "", "Rede"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"vpn", "rede"}, article.Tags)
}

func TestUpdateArticleKeepsSlug(t *testing.T) {
	svc, _, staff, _ := newKnowledgeFixture()
	ctx := context.Background()

	article, err := svc.CreateArticle(ctx, staff, ArticleInput{Title: "Setup Guide", Content: "c", Published: true})
	require.NoError(t, err)

	updated, err := svc.UpdateArticle(ctx, staff, article.ID, ArticleInput{
		Title: "Guia de Instalação", Content: "c2", Published: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Guia de Instalação", updated.Title)
	assert.Equal(t, "setup-guide", updated.Slug)
}

func TestGetArticleDraftVisibility(t *testing.T) {
	svc, _, staff, reader := newKnowledgeFixture()
	ctx := context.Background()

	draft, err := svc.CreateArticle(ctx, staff, ArticleInput{Title: "Rascunho", Content: "c", Published: false})
	require.NoError(t, err)

	// Drafts read as missing for regular users and anonymous readers.
	_, err = svc.GetArticleBySlug(ctx, reader, draft.Slug)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
	_, err = svc.GetArticleBySlug(ctx, nil, draft.Slug)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))

	got, err := svc.GetArticleBySlug(ctx, staff, draft.Slug)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)
	assert.Zero(t, got.ViewCount)
}

func TestGetArticleCountsViews(t *testing.T) {
	svc, repo, staff, reader := newKnowledgeFixture()
	ctx := context.Background()

	article, err := svc.CreateArticle(ctx, staff, ArticleInput{Title: "VPN", Content: "c", Published: true})
	require.NoError(t, err)

	first, err := svc.GetArticleBySlug(ctx, reader, article.Slug)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ViewCount)

	second, err := svc.GetArticleBySlug(ctx, nil, article.Slug)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ViewCount)

	stored, err := repo.GetArticleByID(ctx, article.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.ViewCount)
}

func TestListArticlesHidesDraftsFromReaders(t *testing.T) {
	svc, _, staff, reader := newKnowledgeFixture()
	ctx := context.Background()

	_, err := svc.CreateArticle(ctx, staff, ArticleInput{Title: "Publicado", Content: "c", Published: true})
	require.NoError(t, err)
	_, err = svc.CreateArticle(ctx, staff, ArticleInput{Title: "Rascunho", Content: "c", Published: false})
	require.NoError(t, err)

	visible, err := svc.ListArticles(ctx, reader, ArticleListInput{})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "Publicado", visible[0].Title)

	all, err := svc.ListArticles(ctx, staff, ArticleListInput{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeleteArticle(t *testing.T) {
	svc, _, staff, reader := newKnowledgeFixture()
	ctx := context.Background()

	article, err := svc.CreateArticle(ctx, staff, ArticleInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	err = svc.DeleteArticle(ctx, reader, article.ID)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	require.NoError(t, svc.DeleteArticle(ctx, staff, article.ID))

	err = svc.DeleteArticle(ctx, staff, article.ID)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
}

func TestCategories(t *testing.T) {
	svc, _, staff, reader := newKnowledgeFixture()
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, reader, "Redes", "")
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	_, err = svc.CreateCategory(ctx, staff, "  ", "")
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))

	created, err := svc.CreateCategory(ctx, staff, " Redes ", " Tudo sobre a rede ")
	require.NoError(t, err)
	assert.Equal(t, "Redes", created.Name)
	assert.Equal(t, "Tudo sobre a rede", created.Description)

	listed, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}
