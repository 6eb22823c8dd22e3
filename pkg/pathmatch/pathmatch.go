// Package pathmatch matches asset paths against shell-style patterns.
//
// Metadata rows carry forward-slash relative paths (for example
// "chara/chr1001/chr1001_00.png"); patterns follow fnmatch(3) without
// FNM_PATHNAME, so * and ? cross directory separators. This differs
// from filepath.Match, where * stops at a slash.
package pathmatch

import (
	"fmt"
	"regexp"
	"strings"
)

// Matcher holds a set of compiled patterns.
type Matcher struct {
	patterns []*regexp.Regexp
}

// New compiles the given patterns into a reusable matcher. An invalid
// pattern fails the whole set.
func New(patterns []string) (*Matcher, error) {
	m := &Matcher{}

	for _, p := range patterns {
		src, err := translate(p)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}

		re, err := regexp.Compile(src)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}

		m.patterns = append(m.patterns, re)
	}

	return m, nil
}

// Empty reports whether the matcher was built without any patterns.
func (m *Matcher) Empty() bool {
	return len(m.patterns) == 0
}

// Match reports whether path matches any of the compiled patterns.
func (m *Matcher) Match(path string) bool {
	for _, re := range m.patterns {
		if re.MatchString(path) {
			return true
		}
	}

	return false
}

// translate converts an fnmatch pattern into an anchored regexp.
func translate(pattern string) (string, error) {
	var b strings.Builder

	b.WriteString("^")

	for pos := 0; pos < len(pattern); {
		switch c := pattern[pos]; c {
		case '*':
			b.WriteString(".*")
			pos++

		case '?':
			b.WriteString(".")
			pos++

		case '[':
			end := classEnd(pattern, pos)
			if end < 0 {
				return "", fmt.Errorf("unclosed character class")
			}

			class := pattern[pos : end+1]
			if strings.HasPrefix(class, "[!") {
				class = "[^" + class[2:]
			}

			b.WriteString(class)
			pos = end + 1

		case '\\':
			if pos+1 >= len(pattern) {
				return "", fmt.Errorf("trailing backslash")
			}

			b.WriteString(regexp.QuoteMeta(string(pattern[pos+1])))
			pos += 2

		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
			pos++
		}
	}

	b.WriteString("$")

	return b.String(), nil
}

// classEnd returns the index of the ] closing the class opened at
// pos, or -1. A ] directly after [ or [! is a literal member.
func classEnd(pattern string, pos int) int {
	i := pos + 1

	if i < len(pattern) && pattern[i] == '!' {
		i++
	}

	if i < len(pattern) && pattern[i] == ']' {
		i++
	}

	for ; i < len(pattern); i++ {
		if pattern[i] == ']' {
			return i
		}
	}

	return -1
}
