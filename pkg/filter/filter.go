package filter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

type FilterMode int

const (
	FilterModeNone FilterMode = iota
	FilterModeExact
	FilterModeContains
	FilterModeRegex
	FilterModeFuzzy
)

var modeNames = map[string]FilterMode{
	"exact":    FilterModeExact,
	"contains": FilterModeContains,
	"regex":    FilterModeRegex,
	"fuzzy":    FilterModeFuzzy,
}

// ModeNames lists the accepted --ignore-mode values.
func ModeNames() []string {
	return []string{"exact", "contains", "regex", "fuzzy"}
}

func ParseMode(name string) (FilterMode, error) {
	if name == "" {
		return FilterModeContains, nil
	}
	mode, ok := modeNames[strings.ToLower(name)]
	if !ok {
		return FilterModeNone, fmt.Errorf("unknown filter mode '%s' (valid: %s)", name, strings.Join(ModeNames(), ", "))
	}
	return mode, nil
}

type StringFilter struct {
	Pattern string
	Mode    FilterMode
	regex   *regexp.Regexp
}

func NewStringFilter(pattern string, mode FilterMode) (*StringFilter, error) {
	f := &StringFilter{
		Pattern: pattern,
		Mode:    mode,
	}

	if mode == FilterModeRegex {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern '%s': %w", pattern, err)
		}
		f.regex = re
	}

	return f, nil
}

func (f *StringFilter) Match(s string) bool {
	switch f.Mode {
	case FilterModeNone:
		return true
	case FilterModeExact:
		return strings.EqualFold(s, f.Pattern)
	case FilterModeContains:
		return strings.Contains(strings.ToLower(s), strings.ToLower(f.Pattern))
	case FilterModeRegex:
		return f.regex != nil && f.regex.MatchString(s)
	case FilterModeFuzzy:
		return FuzzyMatch(f.Pattern, s)
	default:
		return true
	}
}

// FuzzyMatch reports whether every rune of pattern appears in text in
// order, ignoring case.
func FuzzyMatch(pattern, text string) bool {
	if pattern == "" {
		return true
	}
	if text == "" {
		return false
	}

	p := []rune(strings.ToLower(pattern))
	i := 0
	for _, r := range strings.ToLower(text) {
		if r == p[i] {
			i++
			if i == len(p) {
				return true
			}
		}
	}
	return false
}

// IgnoreList decides which clipboard values a watcher should not display.
// A value is ignored when it matches any pattern or falls outside the
// length bounds. Lengths count runes; zero disables a bound.
type IgnoreList struct {
	Filters   []*StringFilter
	MinLength int
	MaxLength int
}

func NewIgnoreList(patterns []string, mode FilterMode) (*IgnoreList, error) {
	l := &IgnoreList{}
	for _, p := range patterns {
		if p == "" {
			continue
		}
		f, err := NewStringFilter(p, mode)
		if err != nil {
			return nil, err
		}
		l.Filters = append(l.Filters, f)
	}
	return l, nil
}

func (l *IgnoreList) Ignore(value string) bool {
	if l == nil {
		return false
	}
	n := utf8.RuneCountInString(value)
	if l.MinLength > 0 && n < l.MinLength {
		return true
	}
	if l.MaxLength > 0 && n > l.MaxLength {
		return true
	}
	for _, f := range l.Filters {
		if f.Match(value) {
			return true
		}
	}
	return false
}

func (l *IgnoreList) Empty() bool {
	return l == nil || (len(l.Filters) == 0 && l.MinLength == 0 && l.MaxLength == 0)
}
