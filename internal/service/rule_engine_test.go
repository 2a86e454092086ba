package service

import (
	"strings"
	"testing"

	"github.com/newsdesk/content-service/internal/config"
	"github.com/newsdesk/content-service/internal/domain"
)

func newEngine(hashExists HashExistsFunc) *RuleEngine {
	return NewRuleEngine(config.ModerationConfig{AutoApproveConfidence: 0.9, MinBodyLength: 50}, hashExists)
}

func hasRule(eval Evaluation, name string) bool {
	for _, r := range eval.TriggeredRules {
		if r == name {
			return true
		}
	}
	return false
}

func TestEvaluateCleanContent(t *testing.T) {
	eval := newEngine(nil).Evaluate(&domain.Content{Title: "Transit plan", Body: cleanBody})
	if len(eval.TriggeredRules) != 0 {
		t.Errorf("expected no rules, got %v", eval.TriggeredRules)
	}
	if eval.Confidence != 1.0 {
		t.Errorf("expected confidence 1.0, got %f", eval.Confidence)
	}
	if eval.HighSeverity || eval.Priority != 0 {
		t.Errorf("unexpected severity/priority: %+v", eval)
	}
}

func TestEvaluateBannedTerms(t *testing.T) {
	eval := newEngine(nil).Evaluate(&domain.Content{Title: "Totally fine", Body: cleanBody + " cheap viagra here"})
	if !hasRule(eval, "banned_terms") {
		t.Fatalf("expected banned_terms, got %v", eval.TriggeredRules)
	}
	if !eval.HighSeverity {
		t.Error("banned terms must be high severity")
	}
	if eval.Priority != 5 {
		t.Errorf("high severity should yield priority 5, got %d", eval.Priority)
	}
	if eval.Confidence > 0.4 {
		t.Errorf("confidence should drop by the rule weight, got %f", eval.Confidence)
	}
}

func TestEvaluateBannedTermsInTitle(t *testing.T) {
	eval := newEngine(nil).Evaluate(&domain.Content{Title: "Casino Bonus inside", Body: cleanBody})
	if !hasRule(eval, "banned_terms") {
		t.Errorf("title must be scanned too, got %v", eval.TriggeredRules)
	}
}

func TestEvaluateShortBody(t *testing.T) {
	eval := newEngine(nil).Evaluate(&domain.Content{Title: "Stub", Body: "too short"})
	if !hasRule(eval, "min_length") {
		t.Errorf("expected min_length, got %v", eval.TriggeredRules)
	}
	if eval.HighSeverity {
		t.Error("short body alone is not high severity")
	}
}

func TestEvaluateExcessiveLinks(t *testing.T) {
	body := cleanBody + " http://a.example http://b.example http://c.example http://d.example"
	eval := newEngine(nil).Evaluate(&domain.Content{Title: "Links", Body: body})
	if !hasRule(eval, "excessive_links") {
		t.Errorf("expected excessive_links, got %v", eval.TriggeredRules)
	}

	// three links are acceptable
	body = cleanBody + " http://a.example http://b.example http://c.example"
	eval = newEngine(nil).Evaluate(&domain.Content{Title: "Links", Body: body})
	if hasRule(eval, "excessive_links") {
		t.Errorf("three links should pass, got %v", eval.TriggeredRules)
	}
}

func TestEvaluatePromotionalLanguage(t *testing.T) {
	eval := newEngine(nil).Evaluate(&domain.Content{Title: "Deal", Body: cleanBody + " Buy now with this discount code."})
	if !hasRule(eval, "promotional_language") {
		t.Errorf("expected promotional_language, got %v", eval.TriggeredRules)
	}
}

func TestEvaluateRepetitiveContent(t *testing.T) {
	eval := newEngine(nil).Evaluate(&domain.Content{Title: "Echo", Body: strings.Repeat("same words again ", 20)})
	if !hasRule(eval, "repetitive_content") {
		t.Errorf("expected repetitive_content, got %v", eval.TriggeredRules)
	}

	// short texts are exempt
	eval = newEngine(nil).Evaluate(&domain.Content{Title: "Echo", Body: "same same same same"})
	if hasRule(eval, "repetitive_content") {
		t.Errorf("short text should be exempt, got %v", eval.TriggeredRules)
	}
}

func TestEvaluateDuplicateContent(t *testing.T) {
	engine := newEngine(func(hash string, excludeID uint64) (bool, error) {
		return true, nil
	})
	c := &domain.Content{Title: "Copy", Body: cleanBody}
	c.Rehash()
	eval := engine.Evaluate(c)
	if !hasRule(eval, "duplicate_content") {
		t.Errorf("expected duplicate_content, got %v", eval.TriggeredRules)
	}

	// duplicate checks are disabled without a lookup
	eval = newEngine(nil).Evaluate(c)
	if hasRule(eval, "duplicate_content") {
		t.Errorf("nil lookup should disable the rule, got %v", eval.TriggeredRules)
	}
}

func TestEvaluateConfidenceFloor(t *testing.T) {
	// stack enough penalties to exceed 1.0
	body := "viagra " + strings.Repeat("buy now ", 10) + "http http http http"
	eval := newEngine(nil).Evaluate(&domain.Content{Title: "Worst case", Body: body})
	if eval.Confidence != 0 {
		t.Errorf("confidence must floor at 0, got %f", eval.Confidence)
	}
	if !eval.HighSeverity {
		t.Error("expected high severity")
	}
}
