// Package validation checks flat field values against declarative rule lists.
package validation

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

type ruleKind int

const (
	kindRequired ruleKind = iota
	kindMinLength
	kindMaxLength
	kindPattern
	kindCustom
)

// Rule is a single check with the message reported when it fails.
// Build rules with Required, MinLength, MaxLength, Pattern and Custom.
type Rule struct {
	kind    ruleKind
	n       int
	pattern *regexp.Regexp
	check   func(string) bool
	Message string
}

// Required fails when the value is empty or whitespace only.
func Required(msg string) Rule {
	return Rule{kind: kindRequired, Message: msg}
}

// MinLength fails when a non-empty value has fewer than n characters.
func MinLength(n int, msg string) Rule {
	return Rule{kind: kindMinLength, n: n, Message: msg}
}

// MaxLength fails when a value has more than n characters.
func MaxLength(n int, msg string) Rule {
	return Rule{kind: kindMaxLength, n: n, Message: msg}
}

// Pattern fails when a non-empty value does not match re.
func Pattern(re *regexp.Regexp, msg string) Rule {
	return Rule{kind: kindPattern, pattern: re, Message: msg}
}

// Custom fails when pred returns false for a non-empty value.
func Custom(pred func(string) bool, msg string) Rule {
	return Rule{kind: kindCustom, check: pred, Message: msg}
}

func (r Rule) fails(value string) bool {
	if r.kind == kindRequired {
		return strings.TrimSpace(value) == ""
	}
	// Optional fields are only checked when present.
	if value == "" {
		return false
	}

	switch r.kind {
	case kindMinLength:
		return utf8.RuneCountInString(value) < r.n
	case kindMaxLength:
		return utf8.RuneCountInString(value) > r.n
	case kindPattern:
		return !r.pattern.MatchString(value)
	case kindCustom:
		return !r.check(value)
	}
	return false
}

// Schema maps a field name to its rules, evaluated in order.
type Schema map[string][]Rule

// Errors maps a field name to the message of its first failing rule.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + e[f]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate runs schema against values. The result is empty when every field passes.
func Validate(values map[string]string, schema Schema) Errors {
	errs := Errors{}
	for field, rules := range schema {
		value := values[field]
		for _, rule := range rules {
			if rule.fails(value) {
				errs[field] = rule.Message
				break
			}
		}
	}
	return errs
}

// Check is Validate returning nil when there are no failures, for use as an error.
func Check(values map[string]string, schema Schema) error {
	if errs := Validate(values, schema); len(errs) > 0 {
		return errs
	}
	return nil
}
