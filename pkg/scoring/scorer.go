// Package scoring assigns sitemap priorities to content from keyword tiers.
package scoring

import (
	"strings"

	"standardthought/pkg/config"
	"standardthought/pkg/domain"
)

// Scorer maps the text of a content record to a sitemap priority.
//
// Matching is a plain substring test against the lower-cased text, without
// word boundaries, and the high tier is always checked before the medium tier.
type Scorer struct {
	high   []string
	medium []string

	baseline       float64
	highPriority   float64
	mediumPriority float64
	guidePriority  float64
}

// NewScorer creates a scorer from the scoring configuration.
func NewScorer(cfg config.ScoringConfig) *Scorer {
	return &Scorer{
		high:           normalize(cfg.HighValueKeywords),
		medium:         normalize(cfg.MediumValueKeywords),
		baseline:       cfg.ArticleBaseline,
		highPriority:   cfg.HighValuePriority,
		mediumPriority: cfg.MediumValuePriority,
		guidePriority:  cfg.GuidePriority,
	}
}

// normalize lower-cases keywords and drops blanks, which would match everything.
func normalize(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

// Score returns the priority and change frequency for the given text fields.
// Empty fields are allowed and simply match nothing.
func (s *Scorer) Score(fields ...string) (float64, domain.ChangeFreq) {
	text := strings.ToLower(strings.Join(fields, " "))

	if containsAny(text, s.high) {
		return s.highPriority, domain.ChangeFreqMonthly
	}
	if containsAny(text, s.medium) {
		return s.mediumPriority, domain.ChangeFreqMonthly
	}
	return s.baseline, domain.ChangeFreqMonthly
}

// ScoreArticle scores an article from its title, excerpt, category and tags.
func (s *Scorer) ScoreArticle(a domain.Article) (float64, domain.ChangeFreq) {
	fields := append([]string{a.Title, a.Excerpt, a.Category}, a.Tags...)
	return s.Score(fields...)
}

// ScoreGuide returns the fixed guide priority; guide text is not inspected.
func (s *Scorer) ScoreGuide(domain.Guide) (float64, domain.ChangeFreq) {
	return s.guidePriority, domain.ChangeFreqMonthly
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
