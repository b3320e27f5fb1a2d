package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"standardthought/pkg/domain"
)

type articleRow struct {
	ID        uint      `gorm:"primaryKey"`
	Slug      string    `gorm:"size:255;index"`
	Title     string    `gorm:"not null"`
	Excerpt   string
	Category  string    `gorm:"size:100"`
	Tags      []string  `gorm:"serializer:json"`
	Published bool      `gorm:"index"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

func (articleRow) TableName() string { return articlesTable }

type guideRow struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"not null"`
	Description string
	IsActive    bool `gorm:"index"`
	SortOrder   int
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false"`
}

func (guideRow) TableName() string { return guidesTable }

type settingRow struct {
	PageType    string `gorm:"primaryKey;size:64"`
	Title       string
	Description string
	Keywords    string
	IsActive    bool
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false"`
}

func (settingRow) TableName() string { return settingsTable }

// GormClient serves the sqlite and mysql backends.
type GormClient struct {
	db *gorm.DB
}

// NewGormClient wraps an already opened gorm handle.
func NewGormClient(db *gorm.DB) *GormClient {
	return &GormClient{db: db}
}

// OpenGorm opens a sqlite or mysql database. For sqlite the parent directory
// of the database file is created when missing.
func OpenGorm(dbType, dsn string) (*GormClient, error) {
	var dialector gorm.Dialector
	switch dbType {
	case "sqlite":
		if dir := filepath.Dir(dsn); dsn != "" && !strings.HasPrefix(dsn, "file:") && !strings.HasPrefix(dsn, ":memory:") && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbType, err)
	}

	if dbType == "sqlite" {
		// sqlite allows a single writer
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("get sqlite handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return &GormClient{db: db}, nil
}

// DB exposes the underlying handle.
func (c *GormClient) DB() *gorm.DB {
	return c.db
}

// Close closes the underlying connection pool.
func (c *GormClient) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// EnsureSchema migrates all three tables, since a local database starts empty.
func (c *GormClient) EnsureSchema(ctx context.Context) error {
	if err := c.db.WithContext(ctx).AutoMigrate(&articleRow{}, &guideRow{}, &settingRow{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func (c *GormClient) FetchPublishedArticles(ctx context.Context) ([]domain.Article, error) {
	var rows []articleRow
	if err := c.db.WithContext(ctx).
		Where("published = ?", true).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query published articles: %w", err)
	}

	articles := make([]domain.Article, 0, len(rows))
	for _, r := range rows {
		articles = append(articles, domain.Article{
			Slug:      r.Slug,
			Title:     r.Title,
			Excerpt:   r.Excerpt,
			Category:  r.Category,
			Tags:      r.Tags,
			Published: r.Published,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		})
	}
	return articles, nil
}

func (c *GormClient) FetchActiveGuides(ctx context.Context) ([]domain.Guide, error) {
	var rows []guideRow
	if err := c.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query active guides: %w", err)
	}

	guides := make([]domain.Guide, 0, len(rows))
	for _, r := range rows {
		guides = append(guides, domain.Guide{
			Title:       r.Title,
			Description: r.Description,
			IsActive:    r.IsActive,
			SortOrder:   r.SortOrder,
			UpdatedAt:   r.UpdatedAt,
		})
	}
	return guides, nil
}

func (c *GormClient) UpsertPageSetting(ctx context.Context, setting domain.PageSetting) error {
	row := settingRow{
		PageType:    setting.PageType,
		Title:       setting.Title,
		Description: setting.Description,
		Keywords:    setting.Keywords,
		IsActive:    setting.IsActive,
		UpdatedAt:   setting.UpdatedAt,
	}
	err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "page_type"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert page setting %s: %w", setting.PageType, err)
	}
	return nil
}

func (c *GormClient) GetPageSetting(ctx context.Context, pageType string) (*domain.PageSetting, error) {
	var row settingRow
	err := c.db.WithContext(ctx).Where("page_type = ?", pageType).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get page setting %s: %w", pageType, err)
	}
	return &domain.PageSetting{
		PageType:    row.PageType,
		Title:       row.Title,
		Description: row.Description,
		Keywords:    row.Keywords,
		IsActive:    row.IsActive,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

// ExistingArticleSlugs returns which of the slugs are already stored.
func (c *GormClient) ExistingArticleSlugs(ctx context.Context, slugs []string) (map[string]bool, error) {
	var found []string
	if err := c.db.WithContext(ctx).Model(&articleRow{}).
		Where("slug IN ?", slugs).
		Pluck("slug", &found).Error; err != nil {
		return nil, fmt.Errorf("query existing slugs: %w", err)
	}
	return toSet(found), nil
}

// ExistingGuideTitles returns which of the titles are already stored.
func (c *GormClient) ExistingGuideTitles(ctx context.Context, titles []string) (map[string]bool, error) {
	var found []string
	if err := c.db.WithContext(ctx).Model(&guideRow{}).
		Where("title IN ?", titles).
		Pluck("title", &found).Error; err != nil {
		return nil, fmt.Errorf("query existing titles: %w", err)
	}
	return toSet(found), nil
}

// InsertArticles inserts a batch of articles within a transaction.
func (c *GormClient) InsertArticles(ctx context.Context, articles []domain.Article) error {
	rows := make([]articleRow, 0, len(articles))
	for _, a := range articles {
		rows = append(rows, articleRow{
			Slug:      a.Slug,
			Title:     a.Title,
			Excerpt:   a.Excerpt,
			Category:  a.Category,
			Tags:      a.Tags,
			Published: a.Published,
			CreatedAt: a.CreatedAt,
			UpdatedAt: a.UpdatedAt,
		})
	}
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert articles: %w", err)
		}
		return nil
	})
}

// InsertGuides inserts a batch of guides within a transaction.
func (c *GormClient) InsertGuides(ctx context.Context, guides []domain.Guide) error {
	rows := make([]guideRow, 0, len(guides))
	for _, g := range guides {
		rows = append(rows, guideRow{
			Title:       g.Title,
			Description: g.Description,
			IsActive:    g.IsActive,
			SortOrder:   g.SortOrder,
			UpdatedAt:   g.UpdatedAt,
		})
	}
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert guides: %w", err)
		}
		return nil
	})
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
