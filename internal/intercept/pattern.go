// Package intercept records browser network exchanges against named aliases
// so a scenario can wait for, and assert on, calls its UI actions trigger.
package intercept

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Pattern is a compiled URL glob.
//
// A leading "/" is optional and the pattern may match after any path segment,
// so catalogs served under a base path still match. Without "?" only the
// request path is compared; with "?" the query string must match too, in
// order. "*" matches inside one path segment or one query value, "**"
// matches anything. Patterns containing "://" are matched against the
// whole URL.
type Pattern struct {
	raw       string
	re        *regexp.Regexp
	withQuery bool
	absolute  bool
}

// Compile parses a URL glob.
func Compile(glob string) (*Pattern, error) {
	if strings.TrimSpace(glob) == "" {
		return nil, fmt.Errorf("intercept: empty pattern")
	}
	p := &Pattern{raw: glob, absolute: strings.Contains(glob, "://")}

	path, query, hasQuery := strings.Cut(glob, "?")
	p.withQuery = hasQuery

	var b strings.Builder
	b.WriteString("^")
	if !p.absolute {
		path = strings.TrimPrefix(path, "/")
		b.WriteString("(?:.*/)?")
	}
	b.WriteString(globToRegexp(path, "[^/?]*"))
	if hasQuery {
		b.WriteString(`\?`)
		b.WriteString(globToRegexp(query, "[^&]*"))
	}
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("intercept: compile %q: %w", glob, err)
	}
	p.re = re
	return p, nil
}

// MustCompile is like Compile but panics on error. For package-level patterns.
func MustCompile(glob string) *Pattern {
	p, err := Compile(glob)
	if err != nil {
		panic(err)
	}
	return p
}

func globToRegexp(glob, star string) string {
	var b strings.Builder
	for i := 0; i < len(glob); i++ {
		if glob[i] != '*' {
			b.WriteString(regexp.QuoteMeta(glob[i : i+1]))
			continue
		}
		if i+1 < len(glob) && glob[i+1] == '*' {
			b.WriteString(".*")
			i++
			continue
		}
		b.WriteString(star)
	}
	return b.String()
}

// String returns the original glob.
func (p *Pattern) String() string { return p.raw }

// Match reports whether rawURL matches the pattern.
func (p *Pattern) Match(rawURL string) bool {
	return p.re.MatchString(p.target(rawURL))
}

func (p *Pattern) target(rawURL string) string {
	if p.absolute {
		if p.withQuery {
			return rawURL
		}
		base, _, _ := strings.Cut(rawURL, "?")
		return base
	}

	path, query := rawURL, ""
	if u, err := url.Parse(rawURL); err == nil {
		path, query = u.EscapedPath(), u.RawQuery
	} else if before, after, ok := strings.Cut(rawURL, "?"); ok {
		path, query = before, after
	}
	path = strings.TrimPrefix(path, "/")
	if p.withQuery {
		return path + "?" + query
	}
	return path
}
