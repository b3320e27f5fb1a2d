package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"standardthought/pkg/sitemap"
)

func checksOf(findings []Finding) []string {
	out := make([]string, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Check)
	}
	return out
}

func TestCheckEntries(t *testing.T) {
	tests := []struct {
		name  string
		entry sitemap.Entry
		want  []string
	}{
		{
			name:  "valid entry",
			entry: sitemap.Entry{Location: "https://standardthought.com/blog/a", LastMod: "2024-03-01", ChangeFreq: "monthly", Priority: "0.90"},
			want:  []string{},
		},
		{
			name:  "relative location",
			entry: sitemap.Entry{Location: "/blog/a"},
			want:  []string{CheckNotAbsolute},
		},
		{
			name:  "other host",
			entry: sitemap.Entry{Location: "https://evil.example.com/blog/a"},
			want:  []string{CheckOutsideBase},
		},
		{
			name:  "scheme mismatch",
			entry: sitemap.Entry{Location: "http://standardthought.com/blog/a"},
			want:  []string{CheckOutsideBase},
		},
		{
			name:  "bad changefreq",
			entry: sitemap.Entry{Location: "https://standardthought.com/", ChangeFreq: "sometimes"},
			want:  []string{CheckChangeFreq},
		},
		{
			name:  "priority out of range",
			entry: sitemap.Entry{Location: "https://standardthought.com/", Priority: "1.5"},
			want:  []string{CheckPriority},
		},
		{
			name:  "priority not a number",
			entry: sitemap.Entry{Location: "https://standardthought.com/", Priority: "high"},
			want:  []string{CheckPriority},
		},
		{
			name:  "lastmod with time",
			entry: sitemap.Entry{Location: "https://standardthought.com/", LastMod: "2024-03-01T10:00:00Z"},
			want:  []string{CheckLastMod},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckEntries("https://standardthought.com", []sitemap.Entry{tt.entry})
			assert.Equal(t, tt.want, checksOf(got))
		})
	}
}

func TestCheckEntries_Duplicates(t *testing.T) {
	entries := []sitemap.Entry{
		{Location: "https://standardthought.com/guides/budget"},
		{Location: "https://standardthought.com/guides/other"},
		{Location: "https://standardthought.com/guides/budget"},
	}

	findings := CheckEntries("https://standardthought.com/", entries)
	assert.Equal(t, []string{CheckDuplicate}, checksOf(findings))
	assert.Equal(t, SeverityWarning, findings[0].Severity)
}

func TestCheckEntries_BasePath(t *testing.T) {
	entries := []sitemap.Entry{
		{Location: "https://example.com/site/page"},
		{Location: "https://example.com/sitemap-extra"},
	}

	findings := CheckEntries("https://example.com/site", entries)
	assert.Equal(t, []string{CheckOutsideBase}, checksOf(findings))
	assert.Equal(t, "https://example.com/sitemap-extra", findings[0].Location)
}

func TestFinding_String(t *testing.T) {
	f := Finding{Severity: SeverityError, Check: CheckStatus, Location: "https://a/", Message: "status 404"}
	assert.Equal(t, "[error] unexpected_status: status 404 (https://a/)", f.String())
}
