package service

import (
	"strings"
	"unicode/utf8"

	"github.com/newsdesk/content-service/internal/config"
	"github.com/newsdesk/content-service/internal/domain"
	pkglogger "github.com/newsdesk/content-service/pkg/logger"
)

// Rule severities
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Rule is one automated moderation predicate. Weight is the penalty the
// rule contributes to the aggregate when triggered.
type Rule struct {
	Name        string
	Description string
	Severity    string
	Weight      float64
	Check       func(c *domain.Content) bool
}

// Evaluation is the outcome of automated scoring. Confidence is
// 1 − Σ(penalties), floored at 0; HighSeverity marks content that must be
// flagged for human review. Automation never rejects.
type Evaluation struct {
	TriggeredRules []string
	Confidence     float64
	HighSeverity   bool
	Priority       int
}

// HashExistsFunc checks whether another content item already carries the
// given content hash (duplicate detection)
type HashExistsFunc func(hash string, excludeID uint64) (bool, error)

// RuleEngine evaluates the fixed automated rule set against content
type RuleEngine struct {
	rules      []Rule
	hashExists HashExistsFunc
}

var defaultBannedTerms = []string{
	"viagra", "casino bonus", "crypto giveaway", "wire transfer fee",
}

var promoTerms = []string{
	"buy now", "limited offer", "discount code", "call now", "click here", "100% free",
}

// NewRuleEngine builds the rule set from configuration. hashExists may be
// nil, which disables duplicate detection.
func NewRuleEngine(cfg config.ModerationConfig, hashExists HashExistsFunc) *RuleEngine {
	banned := cfg.BannedTerms
	if len(banned) == 0 {
		banned = defaultBannedTerms
	}
	minBody := cfg.MinBodyLength
	if minBody <= 0 {
		minBody = 50
	}

	e := &RuleEngine{hashExists: hashExists}
	e.rules = []Rule{
		{
			Name:        "banned_terms",
			Description: "content contains banned or offensive terms",
			Severity:    SeverityHigh,
			Weight:      0.6,
			Check: func(c *domain.Content) bool {
				text := strings.ToLower(c.Title + " " + c.Body)
				for _, term := range banned {
					if strings.Contains(text, strings.ToLower(term)) {
						return true
					}
				}
				return false
			},
		},
		{
			Name:        "min_length",
			Description: "body is too short for publication",
			Severity:    SeverityMedium,
			Weight:      0.3,
			Check: func(c *domain.Content) bool {
				return utf8.RuneCountInString(c.Body) < minBody
			},
		},
		{
			Name:        "excessive_links",
			Description: "body contains an unusual number of links",
			Severity:    SeverityMedium,
			Weight:      0.3,
			Check: func(c *domain.Content) bool {
				return strings.Count(strings.ToLower(c.Body), "http") > 3
			},
		},
		{
			Name:        "promotional_language",
			Description: "content reads as promotional or spam",
			Severity:    SeverityMedium,
			Weight:      0.2,
			Check: func(c *domain.Content) bool {
				text := strings.ToLower(c.Body)
				for _, term := range promoTerms {
					if strings.Contains(text, term) {
						return true
					}
				}
				return false
			},
		},
		{
			Name:        "repetitive_content",
			Description: "body repeats the same words excessively",
			Severity:    SeverityLow,
			Weight:      0.2,
			Check: func(c *domain.Content) bool {
				words := strings.Fields(strings.ToLower(c.Body))
				if len(words) < 10 {
					return false
				}
				unique := make(map[string]struct{}, len(words))
				for _, w := range words {
					unique[w] = struct{}{}
				}
				return len(unique)*2 < len(words)
			},
		},
		{
			Name:        "duplicate_content",
			Description: "near-identical content already exists",
			Severity:    SeverityLow,
			Weight:      0.2,
			Check: func(c *domain.Content) bool {
				if e.hashExists == nil {
					return false
				}
				exists, err := e.hashExists(c.ContentHash, c.ID)
				if err != nil {
					pkglogger.GetLogger().Warn().Err(err).Msg("duplicate check failed")
					return false
				}
				return exists
			},
		},
	}
	return e
}

// Evaluate runs every rule against the content and aggregates the result
func (e *RuleEngine) Evaluate(c *domain.Content) Evaluation {
	var triggered []string
	var penalty float64
	high := false

	for _, rule := range e.rules {
		if !rule.Check(c) {
			continue
		}
		triggered = append(triggered, rule.Name)
		penalty += rule.Weight
		if rule.Severity == SeverityHigh {
			high = true
		}
	}

	if penalty > 1.0 {
		penalty = 1.0
	}
	confidence := 1.0 - penalty

	return Evaluation{
		TriggeredRules: triggered,
		Confidence:     confidence,
		HighSeverity:   high,
		Priority:       reviewPriority(triggered, confidence, high),
	}
}

// reviewPriority orders the manual review queue: high-severity first, then
// low-confidence, then rule-heavy content
func reviewPriority(triggered []string, confidence float64, high bool) int {
	switch {
	case high:
		return 5
	case confidence < 0.3:
		return 4
	case len(triggered) > 2:
		return 3
	case len(triggered) > 0:
		return 2
	default:
		return 0
	}
}
