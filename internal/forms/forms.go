// Package forms is the generic submit gate: named fields checked
// against presence, length, and pattern rules. The contact page and
// the checkout shipping step both validate through it.
package forms

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule describes what one field must satisfy. Label is the name shown
// in error messages.
type Rule struct {
	Label     string
	Required  bool
	MinLength int
	Pattern   *regexp.Regexp
}

// EmailPattern matches the permissive anything@anything.anything shape
// the storefront has always used.
var EmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks values against rules and returns a message per
// failing field. An empty map means the gate is open.
func Validate(rules map[string]Rule, values map[string]string) map[string]string {
	errs := make(map[string]string)
	for name, rule := range rules {
		value := strings.TrimSpace(values[name])
		if rule.Required && value == "" {
			errs[name] = fmt.Sprintf("%s is required.", rule.Label)
			continue
		}
		if rule.MinLength > 0 && len(value) < rule.MinLength {
			errs[name] = fmt.Sprintf("%s must be at least %d characters.", rule.Label, rule.MinLength)
			continue
		}
		if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
			errs[name] = fmt.Sprintf("Please enter a valid %s.", strings.ToLower(rule.Label))
		}
	}
	return errs
}

// ContactRules are the contact form's field rules.
func ContactRules() map[string]Rule {
	return map[string]Rule{
		"firstName": {Label: "First name", Required: true, MinLength: 2},
		"lastName":  {Label: "Last name", Required: true, MinLength: 2},
		"email":     {Label: "Email", Required: true, Pattern: EmailPattern},
		"subject":   {Label: "Subject", Required: true, MinLength: 3},
		"message":   {Label: "Message", Required: true, MinLength: 20},
	}
}

// RequiredOnly builds a presence-only rule set from field→label pairs,
// for panels where blank is the only failure mode.
func RequiredOnly(labels map[string]string) map[string]Rule {
	rules := make(map[string]Rule, len(labels))
	for name, label := range labels {
		rules[name] = Rule{Label: label, Required: true}
	}
	return rules
}
