package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"standardthought/pkg/domain"
)

// Runs against a real server; set MONGO_URI to enable.
func TestMongoClient_Integration(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbName := "standardthought_test_" + time.Now().Format("20060102150405")
	client := NewMongoClient(uri, dbName)
	require.NoError(t, client.Connect(ctx))
	defer func() {
		_ = client.database.Drop(ctx)
		_ = client.Close(ctx)
	}()

	require.NoError(t, client.EnsureSchema(ctx))

	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := client.database.Collection(articlesTable).InsertMany(ctx, []any{
		domain.Article{Slug: "a", Title: "A", Published: true, CreatedAt: created},
		domain.Article{Slug: "b", Title: "B", Published: true, CreatedAt: created.Add(time.Hour)},
		domain.Article{Slug: "c", Title: "C", Published: false, CreatedAt: created},
	})
	require.NoError(t, err)

	articles, err := client.FetchPublishedArticles(ctx)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "b", articles[0].Slug)

	for _, body := range []string{"<v1/>", "<v2/>"} {
		require.NoError(t, client.UpsertPageSetting(ctx, domain.PageSetting{
			PageType: domain.PageTypeSitemap, Description: body, IsActive: true, UpdatedAt: created,
		}))
	}
	count, err := client.database.Collection(settingsTable).CountDocuments(ctx, map[string]any{"page_type": domain.PageTypeSitemap})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	setting, err := client.GetPageSetting(ctx, domain.PageTypeSitemap)
	require.NoError(t, err)
	assert.Equal(t, "<v2/>", setting.Description)

	_, err = client.GetPageSetting(ctx, domain.PageTypeSitemapIndex)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoClient_NotConnected(t *testing.T) {
	client := NewMongoClient("mongodb://localhost:27017", "x")

	_, err := client.FetchActiveGuides(context.Background())
	assert.Error(t, err)
	assert.NoError(t, client.Close(context.Background()))
}
