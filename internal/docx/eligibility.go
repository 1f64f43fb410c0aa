package docx

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"
)

// Eligibility decides whether a candidate string is worth translating. The
// Extractor treats it as a black box.
type Eligibility func(text string) bool

// DefaultEligibility rejects blank strings and strings with no letters at
// all (page numbers, bare symbols, dates written in digits).
func DefaultEligibility(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	for _, r := range text {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// NewPatternEligibility wraps base so that any text fully matched by one of
// the skip patterns is also rejected. Patterns use .NET-style syntax.
func NewPatternEligibility(base Eligibility, patterns []string) (Eligibility, error) {
	if base == nil {
		base = DefaultEligibility
	}
	if len(patterns) == 0 {
		return base, nil
	}
	compiled := make([]*regexp2.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp2.Compile(`^(?:`+p+`)$`, regexp2.None)
		if err != nil {
			return nil, fmt.Errorf("invalid skip pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return func(text string) bool {
		if !base(text) {
			return false
		}
		trimmed := strings.TrimSpace(text)
		for _, re := range compiled {
			if ok, err := re.MatchString(trimmed); err == nil && ok {
				return false
			}
		}
		return true
	}, nil
}
