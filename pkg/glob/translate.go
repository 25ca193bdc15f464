package glob

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var numericRangeRE = regexp.MustCompile(`^([+-]?\d+)\.\.([+-]?\d+)$`)

// translator converts one glob body to a regular expression body
type translator struct {
	pat     string
	dialect Dialect
	ranges  []numRange
}

func (t *translator) translate() (string, error) {
	var b strings.Builder
	if err := t.translateInto(&b, t.pat); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (t *translator) translateInto(b *strings.Builder, pat string) error {
	if pat == "**" {
		b.WriteString(`.*`)
		return nil
	}

	i := 0
	if strings.HasPrefix(pat, "**/") {
		b.WriteString(`(?:.*/)?`)
		i = 3
	}

	for ; i < len(pat); i++ {
		c := pat[i]
		switch c {
		case '\\':
			if i+1 >= len(pat) {
				if t.dialect == DialectGitignore {
					return fmt.Errorf("trailing backslash")
				}
				b.WriteString(`\\`)
				continue
			}
			i++
			b.WriteString(regexp.QuoteMeta(string(pat[i])))

		case '/':
			rest := pat[i+1:]
			switch {
			case strings.HasPrefix(rest, "**/"):
				// zero or more intermediate directories
				b.WriteString(`/(?:.*/)?`)
				i += 3
			case rest == "**":
				b.WriteString(`/.*`)
				i += 2
			default:
				b.WriteByte('/')
			}

		case '*':
			if i+1 < len(pat) && pat[i+1] == '*' {
				for i+1 < len(pat) && pat[i+1] == '*' {
					i++
				}
				if t.dialect == DialectEditorConfig {
					b.WriteString(`.*`)
					continue
				}
			}
			b.WriteString(`[^/]*`)

		case '?':
			b.WriteString(`[^/]`)

		case '[':
			end := findClassEnd(pat, i)
			if end < 0 {
				if t.dialect == DialectGitignore {
					return fmt.Errorf("unterminated character class at offset %d", i)
				}
				b.WriteString(`\[`)
				continue
			}
			writeClass(b, pat[i+1:end])
			i = end

		case '{':
			if t.dialect != DialectEditorConfig {
				b.WriteString(`\{`)
				continue
			}
			end := findBraceEnd(pat, i)
			if end < 0 {
				b.WriteString(`\{`)
				continue
			}
			consumed, err := t.writeBrace(b, pat[i+1:end])
			if err != nil {
				return err
			}
			if consumed {
				i = end
			}

		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	return nil
}

// writeBrace handles the inside of a {...} group. It returns false when the
// group is not an alternation or range, in which case only the opening brace
// has been written and the caller keeps scanning the contents.
func (t *translator) writeBrace(b *strings.Builder, inner string) (bool, error) {
	if m := numericRangeRE.FindStringSubmatch(inner); m != nil {
		lo, err1 := strconv.ParseInt(m[1], 10, 64)
		hi, err2 := strconv.ParseInt(m[2], 10, 64)
		if err1 != nil || err2 != nil {
			return false, fmt.Errorf("numeric range {%s} out of bounds", inner)
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		t.ranges = append(t.ranges, numRange{min: lo, max: hi})
		b.WriteString(`([+-]?\d+)`)
		return true, nil
	}

	alts := splitAlternatives(inner)
	if len(alts) < 2 {
		b.WriteString(`\{`)
		return false, nil
	}

	b.WriteString(`(?:`)
	for n, alt := range alts {
		if n > 0 {
			b.WriteByte('|')
		}
		if err := t.translateInto(b, alt); err != nil {
			return false, err
		}
	}
	b.WriteByte(')')
	return true, nil
}

// findClassEnd returns the index of the ']' closing the class opened at start
func findClassEnd(pat string, start int) int {
	i := start + 1
	if i < len(pat) && (pat[i] == '!' || pat[i] == '^') {
		i++
	}
	if i < len(pat) && pat[i] == ']' {
		i++
	}
	for ; i < len(pat); i++ {
		switch pat[i] {
		case '\\':
			i++
		case ']':
			return i
		}
	}
	return -1
}

// writeClass emits a regexp class for the glob class body. Classes never
// match the path separator.
func writeClass(b *strings.Builder, body string) {
	b.WriteByte('[')
	negated := false
	if len(body) > 0 && (body[0] == '!' || body[0] == '^') {
		negated = true
		body = body[1:]
	}
	if negated {
		b.WriteString(`^/`)
	}
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) {
			i++
			c = body[i]
			if c == '-' {
				b.WriteByte('\\')
			}
		}
		switch c {
		case '\\', '[', ']', '^':
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte(']')
}

// findBraceEnd returns the index of the '}' matching the '{' at start
func findBraceEnd(pat string, start int) int {
	depth := 0
	for i := start; i < len(pat); i++ {
		switch pat[i] {
		case '\\':
			i++
		case '[':
			if end := findClassEnd(pat, i); end > 0 {
				i = end
			}
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitAlternatives splits on commas outside nested braces and classes
func splitAlternatives(inner string) []string {
	var alts []string
	depth := 0
	last := 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '\\':
			i++
		case '[':
			if end := findClassEnd(inner, i); end > 0 {
				i = end
			}
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				alts = append(alts, inner[last:i])
				last = i + 1
			}
		}
	}
	return append(alts, inner[last:])
}
