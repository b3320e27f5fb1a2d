package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"k8s.io/klog/v2"

	"standardthought/pkg/audit"
	"standardthought/pkg/filter"
	"standardthought/pkg/httpclient"
)

func main() {
	klog.InitFlags(nil)

	var (
		baseURL    = flag.String("base", "https://standardthought.com", "Site base URL")
		sitemapURL = flag.String("sitemap", "", "Sitemap URL (default <base>/sitemap.xml)")
		agent      = flag.String("agent", "Googlebot", "robots.txt user agent to test entries against")
		pages      = flag.Bool("pages", false, "Fetch every page and check status and canonical link")
		workers    = flag.Int("workers", 4, "Number of parallel page fetchers")
		rps        = flag.Float64("rps", 2, "Max page requests per second (<=0 means no limit)")
		prefixes   = flag.String("prefix", "", "Comma-separated path prefixes to restrict page checks to")
		skipRoot   = flag.Bool("skip-root", false, "Do not fetch the home page")
		timeout    = flag.Duration("timeout", 20*time.Second, "Per-request timeout")
		asJSON     = flag.Bool("json", false, "Print the report as JSON")
	)
	flag.Parse()
	defer klog.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	host, err := filter.NewHostFilter(*baseURL)
	if err != nil {
		klog.Fatalf("Invalid base URL: %v", err)
	}
	filters := []filter.Filter{host, filter.NewPathPrefixFilter(strings.Split(*prefixes, ",")...)}
	if *skipRoot {
		filters = append(filters, filter.NewBaseURLFilter())
	}

	client := httpclient.NewClient(httpclient.CrawlerClient, httpclient.WithTimeout(*timeout))
	auditor, err := audit.NewAuditor(audit.Options{
		BaseURL:           *baseURL,
		SitemapURL:        *sitemapURL,
		UserAgent:         *agent,
		CheckPages:        *pages,
		Workers:           *workers,
		RequestsPerSecond: *rps,
		Filters:           filters,
	}, client)
	if err != nil {
		klog.Fatalf("Failed to create auditor: %v", err)
	}

	start := time.Now()
	report, err := auditor.Run(ctx)
	if err != nil {
		klog.Fatalf("Audit failed: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			klog.Fatalf("Failed to encode report: %v", err)
		}
	} else {
		fmt.Printf("Sitemap: %s\n", report.SitemapURL)
		fmt.Printf("Entries: %d, pages checked: %d, findings: %d\n\n", report.Entries, report.PagesChecked, len(report.Findings))
		for _, f := range report.Findings {
			fmt.Println(f.String())
		}
	}
	klog.Infof("Done. Duration: %s", time.Since(start))

	if report.Errors() > 0 {
		klog.Flush()
		os.Exit(1)
	}
}
