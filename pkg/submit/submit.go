// Package submit notifies search engines about a freshly generated sitemap.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"
	"k8s.io/klog/v2"

	"standardthought/pkg/config"
	"standardthought/pkg/httpclient"
	"standardthought/pkg/metrics"
)

// maxIndexNowURLs is the per-request limit of the IndexNow protocol.
const maxIndexNowURLs = 10000

// ErrIndexNowDisabled is returned by SubmitURLs when no IndexNow key is configured.
var ErrIndexNowDisabled = errors.New("indexnow key not configured")

// PingResult is the outcome of one sitemap ping.
type PingResult struct {
	Endpoint   string `json:"endpoint"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

// OK reports whether the endpoint accepted the ping.
func (r PingResult) OK() bool {
	return r.Error == ""
}

// Report summarizes one submission run.
type Report struct {
	Pings         []PingResult `json:"pings"`
	IndexNowURLs  int          `json:"indexnow_urls"`
	IndexNowError string       `json:"indexnow_error,omitempty"`
}

type indexNowPayload struct {
	Host        string   `json:"host"`
	Key         string   `json:"key"`
	KeyLocation string   `json:"keyLocation,omitempty"`
	URLList     []string `json:"urlList"`
}

// Notifier pings sitemap endpoints and submits URLs over IndexNow.
// Requests are paced by a shared limiter and never retried.
type Notifier struct {
	client           *httpclient.HTTPClient
	limiter          *rate.Limiter
	pingEndpoints    []string
	indexNowEndpoint string
	key              string
	keyLocation      string
	host             string
}

// NewNotifier creates a notifier for the site at baseURL. A nil client
// means a notifier client with the configured timeout.
func NewNotifier(cfg config.SubmitConfig, baseURL string, client *httpclient.HTTPClient) (*Notifier, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}
	if client == nil {
		client = httpclient.NewClient(httpclient.NotifierClient, httpclient.WithTimeout(cfg.Timeout))
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Notifier{
		client:           client,
		limiter:          rate.NewLimiter(limit, 1),
		pingEndpoints:    cfg.PingEndpoints,
		indexNowEndpoint: cfg.IndexNowEndpoint,
		key:              cfg.IndexNowKey,
		keyLocation:      cfg.IndexNowKeyLocation,
		host:             u.Host,
	}, nil
}

// PingSitemap sends the sitemap URL to every ping endpoint. Failures are
// reported per endpoint.
func (n *Notifier) PingSitemap(ctx context.Context, sitemapURL string) []PingResult {
	results := make([]PingResult, 0, len(n.pingEndpoints))
	for _, tmpl := range n.pingEndpoints {
		endpoint := tmpl
		if strings.Contains(tmpl, "%s") {
			endpoint = fmt.Sprintf(tmpl, url.QueryEscape(sitemapURL))
		}

		res := PingResult{Endpoint: endpoint}
		status, err := n.send(ctx, func() (*http.Response, error) {
			return n.client.Get(ctx, endpoint)
		})
		res.StatusCode = status
		if err != nil {
			res.Error = err.Error()
			klog.Warningf("Sitemap ping to %s failed: %v", endpoint, err)
			metrics.RecordSubmission("ping", "error")
		} else {
			klog.Infof("Sitemap ping to %s: %d", endpoint, status)
			metrics.RecordSubmission("ping", "success")
		}
		results = append(results, res)
	}
	return results
}

// SubmitURLs posts the URLs to the IndexNow endpoint in batches and returns how
// many were accepted.
func (n *Notifier) SubmitURLs(ctx context.Context, urls []string) (int, error) {
	if n.key == "" {
		return 0, ErrIndexNowDisabled
	}
	if len(urls) == 0 {
		return 0, nil
	}

	submitted := 0
	for start := 0; start < len(urls); start += maxIndexNowURLs {
		end := min(start+maxIndexNowURLs, len(urls))
		batch := urls[start:end]

		body, err := json.Marshal(indexNowPayload{
			Host:        n.host,
			Key:         n.key,
			KeyLocation: n.keyLocation,
			URLList:     batch,
		})
		if err != nil {
			return submitted, fmt.Errorf("encode indexnow payload: %w", err)
		}

		if _, err := n.send(ctx, func() (*http.Response, error) {
			return n.client.Post(ctx, n.indexNowEndpoint, "application/json; charset=utf-8", bytes.NewReader(body))
		}); err != nil {
			metrics.RecordSubmission("indexnow", "error")
			return submitted, fmt.Errorf("indexnow submit: %w", err)
		}
		metrics.RecordSubmission("indexnow", "success")
		submitted += len(batch)
	}

	klog.Infof("Submitted %d URLs to %s", submitted, n.indexNowEndpoint)
	return submitted, nil
}

// Submit pings the sitemap and, when a key is configured, submits the URLs.
func (n *Notifier) Submit(ctx context.Context, sitemapURL string, urls []string) Report {
	report := Report{Pings: n.PingSitemap(ctx, sitemapURL)}

	count, err := n.SubmitURLs(ctx, urls)
	report.IndexNowURLs = count
	if err != nil && !errors.Is(err, ErrIndexNowDisabled) {
		report.IndexNowError = err.Error()
	}
	return report
}

// send waits for the limiter, runs do and treats any non-2xx status as an error.
func (n *Notifier) send(ctx context.Context, do func() (*http.Response, error)) (int, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := do()
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}
