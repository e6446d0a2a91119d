package parser

import (
	"strings"
	"unicode"
)

// tokenKind represents the type of token.
type tokenKind string

const (
	tokenIdent       tokenKind = "identifier"
	tokenQuotedIdent tokenKind = "quoted identifier"
	tokenString      tokenKind = "string"
	tokenNumber      tokenKind = "number"
	tokenExpression  tokenKind = "expression"
	tokenColor       tokenKind = "color"
	tokenPunct       tokenKind = "punctuation"
	tokenEOF         tokenKind = "end of input"
)

// token is a lexical token with the position of its first character.
type token struct {
	kind   tokenKind
	text   string
	line   int
	column int
}

func (t token) describe() string {
	if t.kind == tokenEOF {
		return string(tokenEOF)
	}
	return string(t.kind) + " '" + t.text + "'"
}

// lexer splits DBML source into tokens. Comments and whitespace are dropped.
type lexer struct {
	src    []rune
	pos    int
	line   int
	column int
}

func newLexer(src string) *lexer {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	return &lexer{src: []rune(src), line: 1, column: 1}
}

// tokenize returns every token of the source followed by a single EOF token.
func tokenize(src string) ([]token, error) {
	l := newLexer(src)
	var tokens []token
	for {
		tok, err := l.scan()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.kind == tokenEOF {
			return tokens, nil
		}
	}
}

func (l *lexer) peek(offset int) rune {
	if l.pos+offset >= len(l.src) {
		return -1
	}
	return l.src[l.pos+offset]
}

func (l *lexer) next() rune {
	ch := l.peek(0)
	if ch == -1 {
		return ch
	}
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

func (l *lexer) errorf(line, column int, format string, args ...any) error {
	return newError(line, column, format, args...)
}

// skip consumes whitespace and comments.
func (l *lexer) skip() error {
	for {
		ch := l.peek(0)
		switch {
		case ch == -1:
			return nil
		case unicode.IsSpace(ch):
			l.next()
		case ch == '/' && l.peek(1) == '/':
			for l.peek(0) != '\n' && l.peek(0) != -1 {
				l.next()
			}
		case ch == '/' && l.peek(1) == '*':
			line, column := l.line, l.column
			l.next()
			l.next()
			for {
				if l.peek(0) == -1 {
					return l.errorf(line, column, "unterminated comment")
				}
				if l.peek(0) == '*' && l.peek(1) == '/' {
					l.next()
					l.next()
					break
				}
				l.next()
			}
		default:
			return nil
		}
	}
}

func (l *lexer) scan() (token, error) {
	if err := l.skip(); err != nil {
		return token{}, err
	}

	tok := token{line: l.line, column: l.column}
	ch := l.peek(0)

	switch {
	case ch == -1:
		tok.kind = tokenEOF
	case isIdentStart(ch):
		tok.kind = tokenIdent
		tok.text = l.scanWhile(isIdentPart)
	case unicode.IsDigit(ch):
		tok.kind = tokenNumber
		tok.text = l.scanNumber()
	case ch == '\'' && l.peek(1) == '\'' && l.peek(2) == '\'':
		text, err := l.scanTripleString()
		if err != nil {
			return token{}, err
		}
		tok.kind = tokenString
		tok.text = text
	case ch == '\'' || ch == '"':
		text, err := l.scanQuoted(ch)
		if err != nil {
			return token{}, err
		}
		tok.kind = tokenString
		if ch == '"' {
			tok.kind = tokenQuotedIdent
		}
		tok.text = text
	case ch == '`':
		text, err := l.scanQuoted('`')
		if err != nil {
			return token{}, err
		}
		tok.kind = tokenExpression
		tok.text = text
	case ch == '#':
		l.next()
		tok.kind = tokenColor
		tok.text = "#" + l.scanWhile(isIdentPart)
	case ch == '<' && l.peek(1) == '>':
		l.next()
		l.next()
		tok.kind = tokenPunct
		tok.text = "<>"
	case strings.ContainsRune("{}[](),.:<>-~", ch):
		l.next()
		tok.kind = tokenPunct
		tok.text = string(ch)
	default:
		return token{}, l.errorf(tok.line, tok.column, "unexpected character %q", ch)
	}

	return tok, nil
}

func (l *lexer) scanWhile(accept func(rune) bool) string {
	var sb strings.Builder
	for ch := l.peek(0); ch != -1 && accept(ch); ch = l.peek(0) {
		sb.WriteRune(l.next())
	}
	return sb.String()
}

func (l *lexer) scanNumber() string {
	text := l.scanWhile(unicode.IsDigit)
	if l.peek(0) == '.' && unicode.IsDigit(l.peek(1)) {
		l.next()
		text += "." + l.scanWhile(unicode.IsDigit)
	}
	return text
}

// scanQuoted reads a single-line string delimited by quote. Backslash
// escapes the quote and itself.
func (l *lexer) scanQuoted(quote rune) (string, error) {
	line, column := l.line, l.column
	l.next()

	var sb strings.Builder
	for {
		ch := l.peek(0)
		switch {
		case ch == -1 || ch == '\n':
			return "", l.errorf(line, column, "unterminated string")
		case ch == quote:
			l.next()
			return sb.String(), nil
		case ch == '\\' && (l.peek(1) == quote || l.peek(1) == '\\'):
			l.next()
			sb.WriteRune(l.next())
		case ch == '\\' && l.peek(1) == 'n':
			l.next()
			l.next()
			sb.WriteRune('\n')
		default:
			sb.WriteRune(l.next())
		}
	}
}

// scanTripleString reads a ''' delimited multi-line string and removes the
// indentation shared by its lines.
func (l *lexer) scanTripleString() (string, error) {
	line, column := l.line, l.column
	l.next()
	l.next()
	l.next()

	var sb strings.Builder
	for {
		ch := l.peek(0)
		switch {
		case ch == -1:
			return "", l.errorf(line, column, "unterminated multi-line string")
		case ch == '\'' && l.peek(1) == '\'' && l.peek(2) == '\'':
			l.next()
			l.next()
			l.next()
			return dedent(sb.String()), nil
		case ch == '\\' && l.peek(1) == '\'':
			l.next()
			sb.WriteRune(l.next())
		default:
			sb.WriteRune(l.next())
		}
	}
}

func dedent(text string) string {
	text = strings.TrimPrefix(text, "\n")
	lines := strings.Split(strings.TrimRight(text, " \t\n"), "\n")

	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}

	if indent <= 0 {
		return strings.Join(lines, "\n")
	}
	for i, line := range lines {
		if len(line) >= indent {
			lines[i] = line[indent:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(lines, "\n")
}

func isIdentStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isIdentPart(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}
