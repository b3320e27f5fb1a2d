package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"standardthought/pkg/db"
	"standardthought/pkg/domain"
	"standardthought/pkg/pipeline"
	"standardthought/pkg/submit"
)

const (
	xmlContentType = "application/xml"
	cacheControl   = "public, max-age=1800, s-maxage=1800"
	robotsTag      = "index, follow"
)

// SitemapRunner generates and persists the sitemap.
type SitemapRunner interface {
	Run(ctx context.Context) (*pipeline.Result, error)
}

// SettingsReader reads stored documents.
type SettingsReader interface {
	GetPageSetting(ctx context.Context, pageType string) (*domain.PageSetting, error)
}

// Submitter notifies search engines.
type Submitter interface {
	Submit(ctx context.Context, sitemapURL string, urls []string) submit.Report
}

// SitemapHandler serves the sitemap endpoints.
type SitemapHandler struct {
	runner     SitemapRunner
	settings   SettingsReader
	submitter  Submitter
	sitemapURL string
}

// NewSitemapHandler creates the handler. settings and submitter may be nil,
// which disables the corresponding endpoints.
func NewSitemapHandler(runner SitemapRunner, settings SettingsReader, submitter Submitter, sitemapURL string) *SitemapHandler {
	return &SitemapHandler{
		runner:     runner,
		settings:   settings,
		submitter:  submitter,
		sitemapURL: sitemapURL,
	}
}

func wantsIndex(c *gin.Context) bool {
	return c.Query("type") == "index"
}

func writeXML(c *gin.Context, body []byte) {
	c.Header("Cache-Control", cacheControl)
	c.Header("X-Robots-Tag", robotsTag)
	c.Data(http.StatusOK, xmlContentType, body)
}

func generationFailed(c *gin.Context, err error) {
	klog.Errorf("Sitemap generation failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Failed to generate sitemap",
		"details": err.Error(),
	})
}

// Generate runs the pipeline and returns the sitemap, or the index for ?type=index.
func (h *SitemapHandler) Generate(c *gin.Context) {
	res, err := h.runner.Run(c.Request.Context())
	if err != nil {
		generationFailed(c, err)
		return
	}
	writeXML(c, res.Document(wantsIndex(c)))
}

// Stored returns the last persisted document without regenerating it.
func (h *SitemapHandler) Stored(c *gin.Context) {
	if h.settings == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage not configured"})
		return
	}

	pageType := domain.PageTypeSitemap
	if wantsIndex(c) {
		pageType = domain.PageTypeSitemapIndex
	}

	setting, err := h.settings.GetPageSetting(c.Request.Context(), pageType)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "sitemap has not been generated yet"})
		return
	}
	if err != nil {
		klog.Errorf("Failed to read stored %s: %v", pageType, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read stored sitemap", "details": err.Error()})
		return
	}

	if !setting.UpdatedAt.IsZero() {
		c.Header("Last-Modified", setting.UpdatedAt.UTC().Format(http.TimeFormat))
	}
	writeXML(c, []byte(setting.Description))
}

// Submit regenerates the sitemap and notifies search engines.
func (h *SitemapHandler) Submit(c *gin.Context) {
	if h.submitter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "submission not configured"})
		return
	}

	res, err := h.runner.Run(c.Request.Context())
	if err != nil {
		generationFailed(c, err)
		return
	}

	report := h.submitter.Submit(c.Request.Context(), h.sitemapURL, res.Locations())
	c.JSON(http.StatusOK, gin.H{
		"entries":    len(res.Entries),
		"persisted":  res.PersistErr == nil,
		"submission": report,
	})
}

// Health reports liveness.
func (h *SitemapHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
