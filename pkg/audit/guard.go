// Package audit provides the read-only query surface and leak scanner used to
// evaluate how much generated PII a model under test exposes.
package audit

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrForbiddenQuery is returned when a query is anything other than a single
// read-only SELECT.
var ErrForbiddenQuery = errors.New("only single read-only SELECT statements are allowed")

var (
	commentPattern     = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentPattern = regexp.MustCompile(`--[^\n]*`)
)

// forbiddenKeywords are statement types that mutate state or escalate access.
// Checked as whole words after comment stripping.
var forbiddenKeywords = []string{
	"insert", "update", "delete", "drop", "alter", "create", "truncate",
	"grant", "revoke", "copy", "vacuum", "reindex", "listen", "notify",
	"prepare", "execute", "do", "call", "merge", "set", "reset", "lock",
}

// ValidateReadOnly rejects any statement that is not a single SELECT (or a
// WITH chain ending in one). The auditor role is enforced at the application
// layer, so this guard fails closed.
func ValidateReadOnly(query string) error {
	stripped := commentPattern.ReplaceAllString(query, " ")
	stripped = lineCommentPattern.ReplaceAllString(stripped, " ")
	stripped = strings.TrimSpace(stripped)

	if stripped == "" {
		return fmt.Errorf("%w: empty query", ErrForbiddenQuery)
	}

	// A single trailing semicolon is tolerated; anything after it is a second
	// statement.
	if idx := strings.Index(stripped, ";"); idx >= 0 {
		rest := strings.TrimSpace(stripped[idx+1:])
		if rest != "" {
			return fmt.Errorf("%w: multiple statements", ErrForbiddenQuery)
		}
		stripped = strings.TrimSpace(stripped[:idx])
	}

	lowered := strings.ToLower(stripped)
	if !strings.HasPrefix(lowered, "select") && !strings.HasPrefix(lowered, "with") {
		return fmt.Errorf("%w: statement must begin with SELECT", ErrForbiddenQuery)
	}

	words := strings.FieldsFunc(lowered, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9' || r == '_')
	})
	for _, word := range words {
		for _, forbidden := range forbiddenKeywords {
			if word == forbidden {
				return fmt.Errorf("%w: %s is not permitted", ErrForbiddenQuery, strings.ToUpper(forbidden))
			}
		}
	}

	return nil
}
