package extract

import (
	"fmt"
	"unicode"
)

// TokenType represents the type of a lexer token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenSymbol           // actor, Player, move_right, x
	TokenNumber           // 123, -4, 9.8
	TokenString           // "..."
	TokenLParen           // (
	TokenRParen           // )
	TokenLBracket         // [
	TokenRBracket         // ]
	TokenComma            // ,
	TokenColon            // :
	TokenAssign           // =
	TokenDot              // .
	TokenArrow            // ->
	TokenPlus             // +
	TokenMinus            // -
	TokenStar             // *
	TokenSlash            // /
)

// Token is a single token of one source line.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int
}

func (t Token) String() string {
	return fmt.Sprintf("Token{%v, %q, %d}", t.Type, t.Literal, t.Pos)
}

// Lexer tokenizes a single scene-language line.
type Lexer struct {
	input   string
	pos     int
	readPos int
	ch      byte
}

// NewLexer creates a new lexer for the given line.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' {
		l.readChar()
	}
}

// NextToken returns the next token from the line. A '#' terminates the line
// as a comment.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	pos := l.pos
	var tok Token

	switch l.ch {
	case 0, '#':
		tok = Token{Type: TokenEOF, Literal: "", Pos: pos}
	case '(':
		tok = Token{Type: TokenLParen, Literal: "(", Pos: pos}
		l.readChar()
	case ')':
		tok = Token{Type: TokenRParen, Literal: ")", Pos: pos}
		l.readChar()
	case '[':
		tok = Token{Type: TokenLBracket, Literal: "[", Pos: pos}
		l.readChar()
	case ']':
		tok = Token{Type: TokenRBracket, Literal: "]", Pos: pos}
		l.readChar()
	case ',':
		tok = Token{Type: TokenComma, Literal: ",", Pos: pos}
		l.readChar()
	case ':':
		tok = Token{Type: TokenColon, Literal: ":", Pos: pos}
		l.readChar()
	case '=':
		tok = Token{Type: TokenAssign, Literal: "=", Pos: pos}
		l.readChar()
	case '.':
		tok = Token{Type: TokenDot, Literal: ".", Pos: pos}
		l.readChar()
	case '+':
		tok = Token{Type: TokenPlus, Literal: "+", Pos: pos}
		l.readChar()
	case '*':
		tok = Token{Type: TokenStar, Literal: "*", Pos: pos}
		l.readChar()
	case '/':
		tok = Token{Type: TokenSlash, Literal: "/", Pos: pos}
		l.readChar()
	case '-':
		if l.peekChar() == '>' {
			l.readChar()
			tok = Token{Type: TokenArrow, Literal: "->", Pos: pos}
			l.readChar()
		} else {
			tok = Token{Type: TokenMinus, Literal: "-", Pos: pos}
			l.readChar()
		}
	case '"':
		l.readChar() // consume opening quote
		tok = Token{Type: TokenString, Literal: l.readString(), Pos: pos}
	default:
		if isDigit(l.ch) {
			return Token{Type: TokenNumber, Literal: l.readNumber(), Pos: pos}
		} else if isSymbolStart(l.ch) {
			return Token{Type: TokenSymbol, Literal: l.readSymbol(), Pos: pos}
		}
		// Unknown character, surface it as a symbol so the parser can reject
		// the construct with context.
		tok = Token{Type: TokenSymbol, Literal: string(l.ch), Pos: pos}
		l.readChar()
	}

	return tok
}

func (l *Lexer) readSymbol() string {
	start := l.pos
	for isSymbolChar(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readNumber() string {
	start := l.pos
	for isDigit(l.ch) || l.ch == '.' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readString() string {
	var result []byte
	for l.ch != 0 && l.ch != '"' {
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				result = append(result, '\n')
			case 't':
				result = append(result, '\t')
			case '\\':
				result = append(result, '\\')
			case '"':
				result = append(result, '"')
			default:
				result = append(result, l.ch)
			}
		} else {
			result = append(result, l.ch)
		}
		l.readChar()
	}
	if l.ch == '"' {
		l.readChar() // consume closing quote
	}
	return string(result)
}

func isSymbolStart(ch byte) bool {
	return unicode.IsLetter(rune(ch)) || ch == '_'
}

func isSymbolChar(ch byte) bool {
	return unicode.IsLetter(rune(ch)) || unicode.IsDigit(rune(ch)) || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize returns all tokens of one line, excluding the trailing EOF.
func Tokenize(line string) []Token {
	l := NewLexer(line)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == TokenEOF {
			break
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
