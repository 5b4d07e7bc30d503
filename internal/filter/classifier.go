package filter

import (
	"fmt"

	"github.com/hupe1980/kustomize-upstream/internal/k8s"
)

// Rule is one split rule. When PackageName is nil, matching resources are
// dropped.
type Rule struct {
	Matcher     Matcher `mapstructure:"matcher" json:"matcher"`
	PackageName *string `mapstructure:"packageName" json:"packageName,omitempty"`
}

// Outcome discriminates a Classification.
type Outcome int

// Classification outcomes.
const (
	// OutcomeAssigned means a rule matched and named a package.
	OutcomeAssigned Outcome = iota
	// OutcomeDropped means a rule matched without naming a package.
	OutcomeDropped
	// OutcomeDefault means no rule matched.
	OutcomeDefault
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAssigned:
		return "assigned"
	case OutcomeDropped:
		return "dropped"
	case OutcomeDefault:
		return "default"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Classification is the result of classifying one resource.
type Classification struct {
	Outcome Outcome

	// PackageName is the destination package; empty when dropped.
	PackageName string

	// Rule is the index of the deciding rule, or -1 for OutcomeDefault.
	Rule int
}

// Dropped reports whether the resource should not be written at all.
func (c Classification) Dropped() bool {
	return c.Outcome == OutcomeDropped
}

// Classifier assigns resources to packages with ordered split rules.
type Classifier struct {
	rules       []Rule
	defaultName string
}

// NewClassifier creates a Classifier. Rule order is preserved; the first
// matching rule wins.
func NewClassifier(rules []Rule, defaultName string) *Classifier {
	rs := make([]Rule, len(rules))
	copy(rs, rules)

	return &Classifier{rules: rs, defaultName: defaultName}
}

// Classify returns the classification of r.
func (c *Classifier) Classify(r *k8s.Resource) Classification {
	for i, rule := range c.rules {
		if !rule.Matcher.Matches(r) {
			continue
		}

		if rule.PackageName == nil {
			return Classification{Outcome: OutcomeDropped, Rule: i}
		}

		return Classification{Outcome: OutcomeAssigned, PackageName: *rule.PackageName, Rule: i}
	}

	return Classification{Outcome: OutcomeDefault, PackageName: c.defaultName, Rule: -1}
}
