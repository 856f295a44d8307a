// Package classify assigns domain labels to tasks. Classification is
// pure and deterministic: the same task content always yields the same
// label, so retries can never flip an assigned domain.
package classify

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/phrazzld/vault-agent/internal/domain"
)

// ErrMalformedTask is returned when a task's content cannot be
// classified at all. The attempt fails and is retried per policy.
var ErrMalformedTask = errors.New("task content cannot be classified")

// Classifier assigns a domain label to a task.
type Classifier interface {
	Classify(task *domain.Task) (domain.Domain, error)
}

// domainHeaderPattern matches an explicit domain declaration anywhere
// in the task document, which overrides keyword scoring.
var domainHeaderPattern = regexp.MustCompile(`domain:\s*(business|personal)`)

// Default keyword lists for the two domains.
var (
	businessKeywords = []string{
		"invoice", "meeting", "quarterly", "revenue", "client", "project",
		"deadline", "stakeholder", "budget", "sprint", "deployment", "release",
		"contract", "proposal", "vendor", "compliance", "audit", "report",
		"roadmap", "milestone", "kpi", "okr", "pipeline", "onboarding",
		"payroll", "hr", "marketing", "sales", "operations", "strategy",
	}

	personalKeywords = []string{
		"grocery", "doctor", "appointment", "birthday", "vacation", "gym",
		"recipe", "family", "hobby", "travel", "personal", "reminder",
		"shopping", "health", "fitness", "pet", "home", "garden",
	}
)

// KeywordClassifier classifies tasks by keyword scoring with an
// explicit-header override. Ambiguous content defaults to business.
type KeywordClassifier struct {
	business []string
	personal []string
}

// NewKeywordClassifier creates a classifier with the default keyword lists.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		business: businessKeywords,
		personal: personalKeywords,
	}
}

// Ensure KeywordClassifier implements Classifier.
var _ Classifier = (*KeywordClassifier)(nil)

// Classify implements Classifier. Blank content is rejected as malformed.
func (c *KeywordClassifier) Classify(task *domain.Task) (domain.Domain, error) {
	text := strings.ToLower(task.Content)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: task %s has no content", ErrMalformedTask, task.ID)
	}

	// An explicit header wins over scoring.
	if m := domainHeaderPattern.FindStringSubmatch(text); m != nil {
		return domain.Domain(m[1]), nil
	}

	bizScore := score(text, c.business)
	perScore := score(text, c.personal)

	if perScore > bizScore {
		return domain.DomainPersonal, nil
	}
	return domain.DomainBusiness, nil
}

func score(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}
