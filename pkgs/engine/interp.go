package engine

import (
	"regexp"
	"strings"

	"github.com/mysh-lang/mysh/internal/value"
	"github.com/mysh-lang/mysh/pkgs/errors"
)

// interpolate scans text for `${name[/search/replace]}` and `$name`
// occurrences, substituting each from scope. Missing variables expand to
// empty string; a search/replace form compiles search as a regexp and
// recursively interpolates the replacement before substitution.
func (e *Engine) interpolate(text string, scope *value.Scope) (string, error) {
	var b strings.Builder
	i := 0
	for i < len(text) {
		if text[i] != '$' {
			b.WriteByte(text[i])
			i++
			continue
		}
		if i+1 < len(text) && text[i+1] == '{' {
			end := strings.IndexByte(text[i+2:], '}')
			if end == -1 {
				b.WriteByte(text[i])
				i++
				continue
			}
			inner := text[i+2 : i+2+end]
			i = i + 2 + end + 1

			name := inner
			search, replace := "", ""
			hasSubst := false
			if idx := strings.IndexByte(inner, '/'); idx != -1 {
				hasSubst = true
				name = inner[:idx]
				rest := inner[idx+1:]
				if idx2 := strings.IndexByte(rest, '/'); idx2 != -1 {
					search = rest[:idx2]
					replace = rest[idx2+1:]
				} else {
					search = rest
				}
			}

			val := lookupVarText(scope, name)
			if hasSubst {
				re, err := regexp.Compile(search)
				if err != nil {
					return "", errors.NewEvalError(noLoc, "invalid substitution pattern %q: %v", search, err)
				}
				interpReplace, err := e.interpolate(replace, scope)
				if err != nil {
					return "", err
				}
				val = re.ReplaceAllString(val, toGoReplacement(interpReplace))
			}
			b.WriteString(val)
			continue
		}

		j := i + 1
		for j < len(text) && isIdentPart(rune(text[j])) {
			j++
		}
		if j == i+1 {
			b.WriteByte(text[i])
			i++
			continue
		}
		b.WriteString(lookupVarText(scope, text[i+1:j]))
		i = j
	}
	return b.String(), nil
}

func lookupVarText(scope *value.Scope, name string) string {
	if v, ok := scope.Lookup(name); ok {
		return v.Value.String()
	}
	return ""
}

func isIdentPart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// toGoReplacement adapts the `\N` capture-group syntax accepted in
// substitution replacement text to Go's regexp replacement syntax
// (`$N`), and escapes any literal `$` that survived interpolation so it
// isn't misread as a group reference.
func toGoReplacement(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9' {
			j := i + 1
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			b.WriteString("${" + s[i+1:j] + "}")
			i = j - 1
			continue
		}
		if c == '$' {
			b.WriteString("$$")
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
