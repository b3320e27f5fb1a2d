package audit

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"standardthought/pkg/domain"
	"standardthought/pkg/sitemap"
)

// Severity of a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Check names.
const (
	CheckNotAbsolute      = "location_not_absolute"
	CheckOutsideBase      = "location_outside_base"
	CheckDuplicate        = "duplicate_location"
	CheckChangeFreq       = "invalid_changefreq"
	CheckPriority         = "invalid_priority"
	CheckLastMod          = "invalid_lastmod"
	CheckRobotsMissing    = "robots_missing"
	CheckRobotsBlocked    = "robots_blocked"
	CheckRobotsNoSitemap  = "robots_sitemap_missing"
	CheckFetch            = "fetch_failed"
	CheckStatus           = "unexpected_status"
	CheckCanonical        = "canonical_mismatch"
	CheckCanonicalMissing = "canonical_missing"
)

// Finding is a single problem found by the audit.
type Finding struct {
	Severity Severity `json:"severity"`
	Check    string   `json:"check"`
	Location string   `json:"location,omitempty"`
	Message  string   `json:"message"`
}

func (f Finding) String() string {
	if f.Location == "" {
		return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Check, f.Message)
	}
	return fmt.Sprintf("[%s] %s: %s (%s)", f.Severity, f.Check, f.Message, f.Location)
}

// CheckEntries validates parsed sitemap entries against the sitemap protocol
// and the site's base URL.
func CheckEntries(baseURL string, entries []sitemap.Entry) []Finding {
	base, _ := url.Parse(strings.TrimRight(baseURL, "/"))

	var findings []Finding
	seen := make(map[string]bool, len(entries))

	for _, e := range entries {
		loc := e.Location

		u, err := url.Parse(loc)
		switch {
		case err != nil || !u.IsAbs() || u.Host == "":
			findings = append(findings, Finding{SeverityError, CheckNotAbsolute, loc, "location is not an absolute URL"})
		case base != nil && !underBase(base, u):
			findings = append(findings, Finding{SeverityError, CheckOutsideBase, loc, fmt.Sprintf("location is outside %s", baseURL)})
		}

		if seen[loc] {
			findings = append(findings, Finding{SeverityWarning, CheckDuplicate, loc, "location appears more than once"})
		}
		seen[loc] = true

		if e.ChangeFreq != "" && !domain.ChangeFreq(e.ChangeFreq).Valid() {
			findings = append(findings, Finding{SeverityError, CheckChangeFreq, loc, fmt.Sprintf("changefreq %q is not a protocol value", e.ChangeFreq)})
		}

		if e.Priority != "" {
			p, err := strconv.ParseFloat(e.Priority, 64)
			if err != nil || p < 0 || p > 1 {
				findings = append(findings, Finding{SeverityError, CheckPriority, loc, fmt.Sprintf("priority %q is not in [0,1]", e.Priority)})
			}
		}

		if e.LastMod != "" {
			if _, err := time.Parse(sitemap.DateLayout, e.LastMod); err != nil {
				findings = append(findings, Finding{SeverityWarning, CheckLastMod, loc, fmt.Sprintf("lastmod %q is not a calendar date", e.LastMod)})
			}
		}
	}

	return findings
}

func underBase(base, u *url.URL) bool {
	if !strings.EqualFold(base.Host, u.Host) || base.Scheme != u.Scheme {
		return false
	}
	prefix := strings.TrimRight(base.Path, "/")
	return prefix == "" || u.Path == prefix || strings.HasPrefix(u.Path, prefix+"/")
}

// sameURL compares two locations ignoring a trailing slash.
func sameURL(a, b string) bool {
	return strings.TrimRight(a, "/") == strings.TrimRight(b, "/")
}
