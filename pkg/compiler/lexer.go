package compiler

import (
	"errors"
	"math"
	"strconv"
	"unicode/utf8"
)

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src string
	pos int // byte offset of the next character to consume
}

func newLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// peek returns the byte at the current position without advancing.
func (l *Lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peek2 returns the byte one position ahead of the current position.
func (l *Lexer) peek2() byte {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLower(c byte) bool { return c >= 'a' && c <= 'z' }

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && isSpace(l.peek()) {
		l.pos++
	}
}

// token slices n bytes starting at the current position and advances past them.
func (l *Lexer) token(tt TokenType, n int) Token {
	tok := Token{Type: tt, Lexeme: l.src[l.pos : l.pos+n], Pos: l.pos}
	l.pos += n
	return tok
}

// scanInt collects a maximal run of decimal digits.
// The first digit must still be at l.peek().
func (l *Lexer) scanInt() Token {
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.peek()) {
		l.pos++
	}
	lexeme := l.src[start:l.pos]

	val, err := strconv.ParseInt(lexeme, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		// strtol clamps instead of failing; so do we.
		val = math.MaxInt64
	}
	return Token{Type: INTEGER, Lexeme: lexeme, Pos: start, Value: val}
}

// twoCharOps are matched before any single-character punctuator.
var twoCharOps = map[string]TokenType{
	"==": EQUALS,
	"!=": NOT_EQ,
	"<=": LESS_EQ,
	">=": GREATER_EQ,
}

var oneCharOps = map[byte]TokenType{
	'+': PLUS,
	'-': MINUS,
	'*': STAR,
	'/': SLASH,
	'(': LPAREN,
	')': RPAREN,
	'<': LESS,
	'>': GREATER,
	'=': ASSIGN,
	';': SEMICOLON,
}

// nextToken skips whitespace and returns the next Token.
func (l *Lexer) nextToken() (Token, error) {
	l.skipWhitespace()
	if l.pos >= len(l.src) {
		return Token{Type: EOF, Pos: len(l.src)}, nil
	}

	ch := l.peek()

	if l.peek2() == '=' {
		if tt, ok := twoCharOps[l.src[l.pos:l.pos+2]]; ok {
			return l.token(tt, 2), nil
		}
	}
	if tt, ok := oneCharOps[ch]; ok {
		return l.token(tt, 1), nil
	}
	if isDigit(ch) {
		return l.scanInt(), nil
	}
	if isLower(ch) {
		return l.token(IDENTIFIER, 1), nil
	}

	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	if r == utf8.RuneError && size == 1 {
		return Token{}, &LexError{Pos: l.pos, Char: r, Byte: ch}
	}
	return Token{}, &LexError{Pos: l.pos, Char: r}
}

// Lex tokenises src and returns all tokens including the final EOF token.
// It stops at the first character that starts no token.
func Lex(src string) ([]Token, error) {
	l := newLexer(src)
	var tokens []Token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}
