package replication

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"standardthought/pkg/db"
	"standardthought/pkg/domain"
)

type mockSource struct {
	articles []domain.Article
	guides   []domain.Guide
	err      error
}

func (m *mockSource) FetchPublishedArticles(ctx context.Context) ([]domain.Article, error) {
	return m.articles, m.err
}

func (m *mockSource) FetchActiveGuides(ctx context.Context) ([]domain.Guide, error) {
	return m.guides, nil
}

func newTarget(t *testing.T) *db.GormClient {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db.NewGormClient(gdb)
}

func sampleSource(n int) *mockSource {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src := &mockSource{}
	for i := 0; i < n; i++ {
		src.articles = append(src.articles, domain.Article{
			Slug:      fmt.Sprintf("post-%03d", i),
			Title:     fmt.Sprintf("Post %d", i),
			Tags:      []string{"budget"},
			Published: true,
			CreatedAt: created.Add(time.Duration(i) * time.Hour),
		})
	}
	src.articles = append(src.articles, domain.Article{Title: "No slug", Published: true, CreatedAt: created})
	src.guides = []domain.Guide{
		{Title: "Budget Blueprint", IsActive: true, SortOrder: 1},
		{Title: "Credit Repair 101", IsActive: true, SortOrder: 2},
	}
	return src
}

func TestReplicator_Replicate(t *testing.T) {
	target := newTarget(t)
	r, err := NewReplicator(Config{Source: sampleSource(250), Target: target, BatchSize: 40, Workers: 3})
	require.NoError(t, err)

	stats, err := r.Replicate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Articles: 251, ArticlesInserted: 250, Guides: 2, GuidesInserted: 2}, stats)

	articles, err := target.FetchPublishedArticles(context.Background())
	require.NoError(t, err)
	assert.Len(t, articles, 250)
	assert.Equal(t, "post-249", articles[0].Slug)
}

func TestReplicator_Replicate_SkipsExisting(t *testing.T) {
	target := newTarget(t)
	src := sampleSource(10)

	r, err := NewReplicator(Config{Source: src, Target: target, BatchSize: 4, Workers: 2})
	require.NoError(t, err)
	_, err = r.Replicate(context.Background())
	require.NoError(t, err)

	stats, err := r.Replicate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.ArticlesInserted)
	assert.Equal(t, 0, stats.GuidesInserted)

	guides, err := target.FetchActiveGuides(context.Background())
	require.NoError(t, err)
	assert.Len(t, guides, 2)
}

func TestReplicator_Replicate_SourceError(t *testing.T) {
	r, err := NewReplicator(Config{Source: &mockSource{err: errors.New("unreachable")}, Target: newTarget(t)})
	require.NoError(t, err)

	_, err = r.Replicate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read articles")
}

func TestNewReplicator_Validation(t *testing.T) {
	_, err := NewReplicator(Config{Target: newTarget(t)})
	assert.Error(t, err)
	_, err = NewReplicator(Config{Source: &mockSource{}})
	assert.Error(t, err)
}
