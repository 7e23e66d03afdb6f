package rules

import (
	"fmt"
	"regexp"
	"sync"
)

// Captures holds the submatches of one evaluation, keyed match0 (full match)
// through matchN (numbered groups). Unmatched optional groups are present
// with an empty value.
type Captures map[string]string

// patternCache memoizes compiled regular expressions keyed by source string.
// The rule set is small and replaced wholesale on reload, so entries are
// never evicted.
type patternCache struct {
	mu       sync.Mutex
	compiled map[string]*regexp.Regexp
}

var cache = &patternCache{compiled: make(map[string]*regexp.Regexp)}

// Compile returns the compiled form of pattern, reusing a prior compilation
// when available.
func Compile(pattern string) (*regexp.Regexp, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if re, ok := cache.compiled[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	cache.compiled[pattern] = re
	return re, nil
}

// Evaluate matches subject against re and extracts capture groups. The
// second return value is false when the subject does not match.
func Evaluate(re *regexp.Regexp, subject string) (Captures, bool) {
	if re == nil {
		return nil, false
	}
	groups := re.FindStringSubmatch(subject)
	if groups == nil {
		return nil, false
	}
	captures := make(Captures, len(groups))
	for i, group := range groups {
		captures[fmt.Sprintf("match%d", i)] = group
	}
	return captures, true
}
