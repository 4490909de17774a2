// Package scanner tokenizes Reko source text into the token stream consumed
// by the frontend's chunkifier. The scanning algorithm (character-run
// classification, comment handling, string/number literal rules) follows
// the reference tokenizer in the original Reko implementation; the Scanner
// struct shape (Init/advance/peek, an error-collecting callback, a
// strings.Builder reused across string literals) follows the teacher's
// lang/scanner package.
package scanner

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rekolang/reko/lang/token"
)

// Scanner tokenizes a single source buffer for the frontend to consume.
type Scanner struct {
	src []byte
	err func(token.Pos, string)

	sb strings.Builder

	cur  rune
	off  int
	roff int

	line, col int
}

// Init (re)initializes the scanner to tokenize src, reporting errors through
// errHandler.
func (s *Scanner) Init(src []byte, errHandler func(token.Pos, string)) {
	s.src = src
	s.err = errHandler
	s.sb.Reset()
	s.cur = ' '
	s.off = 0
	s.roff = 0
	s.line = 1
	s.col = 0
	s.advance()
}

func (s *Scanner) advance() {
	if s.cur == '\n' {
		s.line++
		s.col = 0
	}
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		s.cur = -1
		return
	}
	s.off = s.roff
	r, w := rune(s.src[s.roff]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(s.src[s.roff:])
	}
	s.roff += w
	s.col++
	s.cur = r
}

func (s *Scanner) pos() token.Pos {
	line, col := s.line, s.col
	if line <= 0 {
		line = 1
	}
	if col <= 0 {
		col = 1
	}
	if line > token.MaxLines {
		line = token.MaxLines
	}
	if col > token.MaxCols {
		col = token.MaxCols
	}
	return token.MakePos(line, col)
}

func (s *Scanner) error(msg string) {
	if s.err != nil {
		s.err(s.pos(), msg)
	}
}

func (s *Scanner) errorf(format string, args ...any) {
	s.error(fmt.Sprintf(format, args...))
}

func (s *Scanner) advanceIf(b byte) bool {
	if s.cur == rune(b) {
		s.advance()
		return true
	}
	return false
}

// Scan returns the next token in the source, along with its literal value.
// At end of input it returns token.EOF forever.
func (s *Scanner) Scan(val *token.Value) token.Token {
	s.skipWhitespaceAndComments()

	pos := s.pos()
	switch cur := s.cur; {
	case cur < 0:
		*val = token.Value{Pos: pos}
		return token.EOF

	case isLetter(cur):
		lit := s.ident()
		tok := token.IDENT
		if kw, ok := token.Keywords[lit]; ok {
			tok = kw
		}
		*val = token.Value{Raw: lit, Pos: pos}
		return tok

	case isDecimal(cur):
		lit := s.number()
		v, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			s.error("invalid integer literal: " + lit)
		}
		*val = token.Value{Raw: lit, Pos: pos, Int: v}
		return token.INT

	case cur == '"':
		lit, decoded := s.shortString()
		*val = token.Value{Raw: lit, Pos: pos, Str: decoded}
		return token.STR
	}

	cur := s.cur
	s.advance()
	switch cur {
	case '+':
		*val = token.Value{Raw: "+", Pos: pos}
		return token.PLUS
	case '*':
		*val = token.Value{Raw: "*", Pos: pos}
		return token.STAR
	case '/':
		*val = token.Value{Raw: "/", Pos: pos}
		return token.SLASH
	case '<':
		*val = token.Value{Raw: "<", Pos: pos}
		return token.LT
	case '>':
		*val = token.Value{Raw: ">", Pos: pos}
		return token.GT
	case ':':
		*val = token.Value{Raw: ":", Pos: pos}
		return token.COLON
	case '-':
		if s.advanceIf('-') {
			*val = token.Value{Raw: "--", Pos: pos}
			return token.DASHDASH
		}
		*val = token.Value{Raw: "-", Pos: pos}
		return token.MINUS
	case '=':
		if s.advanceIf('=') {
			*val = token.Value{Raw: "==", Pos: pos}
			return token.EQEQ
		}
		*val = token.Value{Raw: "=", Pos: pos}
		return token.EQ
	case '!':
		if s.advanceIf('=') {
			*val = token.Value{Raw: "!=", Pos: pos}
			return token.BANGEQ
		}
		s.error("unexpected character '!'")
		*val = token.Value{Raw: "!", Pos: pos}
		return token.ILLEGAL
	default:
		s.errorf("unexpected character %q", cur)
		*val = token.Value{Raw: string(cur), Pos: pos}
		return token.ILLEGAL
	}
}

func (s *Scanner) skipWhitespaceAndComments() {
	for {
		switch {
		case isWhitespace(s.cur):
			s.advance()
		case s.cur == '#':
			for s.cur != '\n' && s.cur >= 0 {
				s.advance()
			}
		default:
			return
		}
	}
}

func (s *Scanner) ident() string {
	start := s.off
	for isLetter(s.cur) || isDecimal(s.cur) {
		s.advance()
	}
	return string(s.src[start:s.off])
}

func (s *Scanner) number() string {
	start := s.off
	for isDecimal(s.cur) {
		s.advance()
	}
	return string(s.src[start:s.off])
}

// shortString scans a double-quoted string literal. Escape sequences are not
// supported, matching the original tokenizer (see SPEC_FULL.md §2.1).
func (s *Scanner) shortString() (lit, decoded string) {
	startOff := s.off
	s.sb.Reset()
	s.advance() // consume opening quote
	for {
		if s.cur == '"' {
			s.advance()
			break
		}
		if s.cur < 0 || s.cur == '\n' {
			s.error("string literal not terminated")
			break
		}
		s.sb.WriteRune(s.cur)
		s.advance()
	}
	return string(s.src[startOff:s.off]), s.sb.String()
}

func isLetter(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isDecimal(r rune) bool {
	return '0' <= r && r <= '9'
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}
