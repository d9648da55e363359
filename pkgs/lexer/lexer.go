package lexer

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mysh-lang/mysh/pkgs/ast"
	"github.com/mysh-lang/mysh/pkgs/errors"
)

// alwaysDelimiters are characters that delimit a literal run in every
// context.
var alwaysDelimiters = map[rune]bool{
	'(': true, ')': true, '+': true, '=': true,
	';': true, '|': true, '&': true, '<': true, '>': true,
}

// contextualDelimiters are the context-sensitive operator characters.
var contextualDelimiters = map[rune]bool{'/': true, '-': true, '*': true}

// twoCharOperators lists operator spellings that must be matched greedily
// before falling back to a single character.
var twoCharOperators = []string{"==", "!=", "<=", ">=", "&&", "||", "=>>", "=>", "//"}

// Context is the parser state the lexer consults to resolve the
// context-sensitive delimiter rule for `/ - *`. The parser mutates and
// passes this on every NextToken call, since only it knows whether it
// is mid-argument-list or awaiting a fresh expression.
type Context struct {
	InArgs          bool
	CurrentIsCmdOrEmpty bool
}

// Lexer turns source text into a Token stream, pulled one at a time by
// the parser via NextToken. Glob/tilde expansion happens here, at lex
// time.
type Lexer struct {
	src      []rune
	pos      int
	line     int
	col      int
	queue    []Token // pending tokens from a multi-path glob expansion
	home     string
	log      *slog.Logger
}

// New builds a Lexer over src. home is substituted for a leading `~`.
func New(src string, home string) *Lexer {
	return &Lexer{
		src:  []rune(src),
		pos:  0,
		line: 1,
		col:  1,
		home: home,
		log:  debugLogger(),
	}
}

func debugLogger() *slog.Logger {
	if os.Getenv("MYSH_DEBUG") == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo + 1}))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

func (l *Lexer) loc() ast.Location { return ast.Location{Line: l.line, Col: l.col} }

func (l *Lexer) peek() (rune, bool) {
	if l.pos >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos], true
}

func (l *Lexer) peekAt(offset int) (rune, bool) {
	idx := l.pos + offset
	if idx >= len(l.src) {
		return 0, false
	}
	return l.src[idx], true
}

func (l *Lexer) advance() (rune, bool) {
	r, ok := l.peek()
	if !ok {
		return 0, false
	}
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r, true
}

// NextToken pulls the next token from the stream, honoring ctx for the
// contextual `/ - *` delimiter rule.
func (l *Lexer) NextToken(ctx Context) (Token, error) {
	if len(l.queue) > 0 {
		t := l.queue[0]
		l.queue = l.queue[1:]
		return t, nil
	}

	l.skipWhitespace()
	start := l.loc()
	r, ok := l.peek()
	if !ok {
		return Token{Type: TokenEnd, Loc: start}, nil
	}

	switch r {
	case '(':
		l.advance()
		return Token{Type: TokenLeftParen, Text: "(", Loc: start}, nil
	case ')':
		l.advance()
		return Token{Type: TokenRightParen, Text: ")", Loc: start}, nil
	case ';':
		l.advance()
		return Token{Type: TokenSemicolon, Text: ";", Loc: start}, nil
	case '"':
		return l.readQuoted(start)
	}

	if contextualDelimiters[r] && !ctx.InArgs && !ctx.CurrentIsCmdOrEmpty {
		op, _ := l.matchContextualOperator()
		l.log.Debug("lexer: operator", "op", op, "loc", start.String())
		return Token{Type: TokenOperator, Text: op, Loc: start}, nil
	}

	if op, ok := l.matchOperator(); ok {
		l.log.Debug("lexer: operator", "op", op, "loc", start.String())
		return Token{Type: TokenOperator, Text: op, Loc: start}, nil
	}

	return l.readLiteral(ctx, start)
}

// matchContextualOperator consumes a leading `/ - *` (or `//`) once the
// caller has already decided, via Context, that it delimits here rather
// than starting a literal.
func (l *Lexer) matchContextualOperator() (string, bool) {
	if string(l.src[l.pos:min(l.pos+2, len(l.src))]) == "//" {
		l.advance()
		l.advance()
		return "//", true
	}
	r, ok := l.peek()
	if !ok {
		return "", false
	}
	l.advance()
	return string(r), true
}

func (l *Lexer) skipWhitespace() {
	for {
		r, ok := l.peek()
		if !ok || !isSpace(r) {
			return
		}
		l.advance()
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// matchOperator consumes one of the fixed operator spellings at the
// current position, longest match first.
func (l *Lexer) matchOperator() (string, bool) {
	rest := string(l.src[l.pos:])
	for _, op := range twoCharOperators {
		if strings.HasPrefix(rest, op) {
			for range op {
				l.advance()
			}
			return op, true
		}
	}
	r, ok := l.peek()
	if !ok {
		return "", false
	}
	switch r {
	case '+', '=', '%', '!', '<', '>', '&', '|':
		l.advance()
		return string(r), true
	}
	return "", false
}

// readQuoted reads a double-quoted string, honoring backslash escapes
// for \n \t \r and taking any other escaped character literally.
func (l *Lexer) readQuoted(start ast.Location) (Token, error) {
	l.advance() // opening quote
	var b strings.Builder
	closed := false
	for {
		r, ok := l.peek()
		if !ok {
			break
		}
		if r == '"' {
			l.advance()
			closed = true
			break
		}
		if r == '\\' {
			l.advance()
			esc, ok := l.peek()
			if !ok {
				break
			}
			l.advance()
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteRune(esc)
			}
			continue
		}
		l.advance()
		b.WriteRune(r)
	}
	if !closed {
		return Token{}, errors.NewEvalError(start, "Unbalanced quotes")
	}
	return Token{Type: TokenLiteral, Text: b.String(), Quoted: true, Loc: start}, nil
}

// readLiteral accumulates an unquoted run, possibly switching into
// quoted segments mid-run (e.g. foo"bar baz"qux), then classifies it as
// a keyword or (after glob/tilde expansion) a literal.
func (l *Lexer) readLiteral(ctx Context, start ast.Location) (Token, error) {
	var b strings.Builder
	quotedAny := false

	for {
		r, ok := l.peek()
		if !ok {
			break
		}
		if isSpace(r) {
			break
		}
		if r == '"' {
			quotedAny = true
			l.advance()
			for {
				inner, ok := l.peek()
				if !ok {
					return Token{}, errors.NewEvalError(start, "Unbalanced quotes")
				}
				if inner == '"' {
					l.advance()
					break
				}
				if inner == '\\' {
					l.advance()
					esc, ok := l.peek()
					if !ok {
						return Token{}, errors.NewEvalError(start, "Unbalanced quotes")
					}
					l.advance()
					switch esc {
					case 'n':
						b.WriteByte('\n')
					case 't':
						b.WriteByte('\t')
					case 'r':
						b.WriteByte('\r')
					default:
						b.WriteRune(esc)
					}
					continue
				}
				l.advance()
				b.WriteRune(inner)
			}
			continue
		}
		if alwaysDelimiters[r] {
			break
		}
		if contextualDelimiters[r] {
			acc := b.String()
			if acc == "" {
				if !ctx.InArgs && !ctx.CurrentIsCmdOrEmpty {
					break
				}
			} else if isNumeric(acc) {
				break
			}
		}
		if r == '\\' {
			// Outside quotes, backslash is preserved literally.
			l.advance()
			b.WriteRune(r)
			continue
		}
		l.advance()
		b.WriteRune(r)
	}

	text := b.String()
	if quotedAny {
		return Token{Type: TokenLiteral, Text: text, Quoted: true, Loc: start}, nil
	}

	if keywords[strings.ToUpper(text)] {
		return Token{Type: TokenKeyword, Text: strings.ToUpper(text), Loc: start}, nil
	}

	return l.expand(text, start)
}

func isNumeric(s string) bool {
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return true
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// expand applies tilde then glob expansion to an unquoted literal. A
// successful multi-match queues the remaining paths as Literal tokens
// to be returned on subsequent calls.
func (l *Lexer) expand(text string, start ast.Location) (Token, error) {
	expanded := text
	if strings.HasPrefix(expanded, "~") {
		expanded = l.home + expanded[1:]
	}

	matches, err := filepath.Glob(expanded)
	if err != nil || len(matches) == 0 {
		return Token{Type: TokenLiteral, Text: expanded, Loc: start}, nil
	}

	l.log.Debug("lexer: glob expanded", "pattern", expanded, "matches", len(matches))
	for _, m := range matches[1:] {
		l.queue = append(l.queue, Token{Type: TokenLiteral, Text: m, Loc: start})
	}
	return Token{Type: TokenLiteral, Text: matches[0], Loc: start}, nil
}
