package core

import "strings"

const wildcard = "*"

// MatchMode controls how non-wildcard exclusion patterns are compared
type MatchMode int

const (
	// MatchLoose exempts a path when it is a prefix of a pattern or a
	// pattern is a prefix of it. This tolerates trailing-slash mismatches
	// such as /api/v1/status vs /api/v1/status/.
	MatchLoose MatchMode = iota
	// MatchStrict exempts only exact matches and wildcard-suffix prefixes.
	MatchStrict
)

// PathMatcher decides whether a request path needs authentication
type PathMatcher struct {
	Excluded []string
	Mode     MatchMode
}

// RequiresAuth reports whether path must be authenticated given the
// exclusion patterns. A nil path or an empty pattern set always requires
// authentication.
func RequiresAuth(path *string, excluded []string) bool {
	return PathMatcher{Excluded: excluded}.RequiresAuth(path)
}

func (m PathMatcher) RequiresAuth(path *string) bool {
	if path == nil || len(m.Excluded) == 0 {
		return true
	}

	p := *path
	for _, pattern := range m.Excluded {
		if pattern == p {
			return false
		}
	}

	for _, pattern := range m.Excluded {
		// An empty pattern would prefix every path
		if pattern == "" {
			continue
		}

		if prefix, ok := strings.CutSuffix(pattern, wildcard); ok {
			if strings.HasPrefix(p, prefix) {
				return false
			}
			continue
		}

		if m.Mode == MatchLoose && (strings.HasPrefix(p, pattern) || strings.HasPrefix(pattern, p)) {
			return false
		}
	}

	return true
}
