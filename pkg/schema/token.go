package schema

import (
	"fmt"
	"go/scanner"
	"go/token"
	"strings"
)

// TokenKind classifies a Token.
type TokenKind int

const (
	TokenIdent TokenKind = iota
	TokenKeyword
	TokenPunct
	TokenLiteral
	TokenGroup
)

// String returns the string representation of a TokenKind.
func (k TokenKind) String() string {
	switch k {
	case TokenIdent:
		return "Ident"
	case TokenKeyword:
		return "Keyword"
	case TokenPunct:
		return "Punct"
	case TokenLiteral:
		return "Literal"
	case TokenGroup:
		return "Group"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Token is one node of a declaration's token tree. Bracketed spans are
// folded into a single TokenGroup whose Text is the opening delimiter and
// whose Tokens are the enclosed children.
type Token struct {
	Kind   TokenKind
	Text   string
	Offset int
	Tokens []Token
}

// Is reports whether t is a non-group token of kind k with text s.
func (t Token) Is(k TokenKind, s string) bool {
	return t.Kind == k && t.Text == s
}

// IsGroup reports whether t is a group opened by delim.
func (t Token) IsGroup(delim string) bool {
	return t.Kind == TokenGroup && t.Text == delim
}

var closers = map[string]string{"(": ")", "[": "]", "{": "}"}

// String renders t back to source-like text.
func (t Token) String() string {
	if t.Kind != TokenGroup {
		return t.Text
	}
	return t.Text + Join(t.Tokens) + closers[t.Text]
}

// Join renders tokens as compact text the way gofmt would print a type:
// "[]string", "map[string]int", "chan int", "func(a, b int) (string, error)".
func Join(tokens []Token) string {
	var b strings.Builder
	prevWord, prevParen := false, false
	for i, t := range tokens {
		word := t.Kind == TokenIdent || t.Kind == TokenKeyword || t.Kind == TokenLiteral
		if word && prevWord || t.IsGroup("(") && prevParen {
			b.WriteByte(' ')
		}
		b.WriteString(t.String())
		switch {
		case t.Is(TokenPunct, ","), t.Is(TokenPunct, ";"):
			b.WriteByte(' ')
			prevWord = false
		case t.Is(TokenPunct, "<-"):
			prevWord = i > 0 && tokens[i-1].Is(TokenKeyword, "chan")
		default:
			prevWord = word || t.Kind == TokenGroup && t.Text != "["
		}
		prevParen = t.IsGroup("(")
	}
	return strings.TrimRight(b.String(), " ")
}

// Tokenize scans src with the Go scanner and folds bracket pairs into
// groups. Comments are dropped and automatic semicolons are kept as ";"
// punctuation.
func Tokenize(src string) ([]Token, error) {
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))

	var errs scanner.ErrorList
	var s scanner.Scanner
	s.Init(file, []byte(src), func(pos token.Position, msg string) {
		errs.Add(pos, msg)
	}, 0)

	root := []Token{}
	stack := [][]Token{}
	opens := []Token{}

	for {
		pos, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		offset := file.Offset(pos)

		switch tok {
		case token.LPAREN, token.LBRACK, token.LBRACE:
			stack = append(stack, root)
			opens = append(opens, Token{Kind: TokenGroup, Text: tok.String(), Offset: offset})
			root = []Token{}
			continue
		case token.RPAREN, token.RBRACK, token.RBRACE:
			if len(opens) == 0 {
				return nil, fmt.Errorf("%w: unexpected %s at offset %d", ErrUnbalanced, tok, offset)
			}
			g := opens[len(opens)-1]
			if closers[g.Text] != tok.String() {
				return nil, fmt.Errorf("%w: %s at offset %d closes %s from offset %d", ErrUnbalanced, tok, offset, g.Text, g.Offset)
			}
			g.Tokens = root
			opens = opens[:len(opens)-1]
			root = append(stack[len(stack)-1], g)
			stack = stack[:len(stack)-1]
			continue
		}

		t := Token{Offset: offset}
		switch {
		case tok == token.IDENT:
			t.Kind, t.Text = TokenIdent, lit
		case tok.IsKeyword():
			t.Kind, t.Text = TokenKeyword, tok.String()
		case tok.IsLiteral():
			t.Kind, t.Text = TokenLiteral, lit
		default:
			t.Kind, t.Text = TokenPunct, tok.String()
		}
		root = append(root, t)
	}

	if errs.Len() > 0 {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, errs.Err())
	}
	if len(opens) > 0 {
		g := opens[len(opens)-1]
		return nil, fmt.Errorf("%w: unclosed %s at offset %d", ErrUnbalanced, g.Text, g.Offset)
	}
	return root, nil
}

// splitTop splits tokens on every top-level punctuation token equal to sep.
// Separators inside groups are never seen because groups are single tokens.
// Empty segments are dropped.
func splitTop(tokens []Token, sep string) [][]Token {
	var out [][]Token
	start := 0
	for i, t := range tokens {
		if t.Is(TokenPunct, sep) {
			if i > start {
				out = append(out, tokens[start:i])
			}
			start = i + 1
		}
	}
	if start < len(tokens) {
		out = append(out, tokens[start:])
	}
	return out
}
