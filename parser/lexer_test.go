package parser

import (
	"strings"
	"testing"

	"github.com/go-test/deep"
)

func lexAllTokens(t *testing.T, src string) []Token {
	t.Helper()
	lx := newLexer(src)
	var tokens []Token
	for {
		tok, err := lx.nextToken()
		if err != nil {
			t.Fatalf("unexpected lexer error after %d tokens: %v", len(tokens), err)
		}
		tokens = append(tokens, tok)
		if tok.Type == tokenEOF {
			break
		}
	}
	return tokens
}

func tokenTypes(tokens []Token) []TokenType {
	out := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Type
	}
	return out
}

func TestLexerIdentifiersAndKeywords(t *testing.T) {
	src := "let if else for in while break continue return import as true false none and or not foo _bar baz123"
	tokens := lexAllTokens(t, src)
	// drop the inserted semicolon and EOF
	tokens = tokens[:len(tokens)-2]

	want := []struct {
		typ    TokenType
		lexeme string
	}{
		{tokenLet, "let"},
		{tokenIf, "if"},
		{tokenElse, "else"},
		{tokenFor, "for"},
		{tokenIn, "in"},
		{tokenWhile, "while"},
		{tokenBreak, "break"},
		{tokenContinue, "continue"},
		{tokenReturn, "return"},
		{tokenImport, "import"},
		{tokenAs, "as"},
		{tokenTrue, "true"},
		{tokenFalse, "false"},
		{tokenNone, "none"},
		{tokenAnd, "and"},
		{tokenOr, "or"},
		{tokenNot, "not"},
		{tokenIdentifier, "foo"},
		{tokenIdentifier, "_bar"},
		{tokenIdentifier, "baz123"},
	}

	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(tokens))
	}

	for i, tt := range want {
		tok := tokens[i]
		if tok.Type != tt.typ {
			t.Errorf("token %d: expected type %v, got %v", i, tt.typ, tok.Type)
		}
		if tok.Lexeme != tt.lexeme {
			t.Errorf("token %d: expected lexeme %q, got %q", i, tt.lexeme, tok.Lexeme)
		}
	}
}

func TestLexerNumberLiterals(t *testing.T) {
	src := "0 123 3.14 6.022e23 1e-9 42e+7"
	tokens := lexAllTokens(t, src)
	tokens = tokens[:len(tokens)-2]

	wantLexemes := []string{
		"0",
		"123",
		"3.14",
		"6.022e23",
		"1e-9",
		"42e+7",
	}

	if len(tokens) != len(wantLexemes) {
		t.Fatalf("expected %d tokens, got %d", len(wantLexemes), len(tokens))
	}

	for i, lexeme := range wantLexemes {
		tok := tokens[i]
		if tok.Type != tokenNumber {
			t.Errorf("token %d: expected number type, got %v", i, tok.Type)
		}
		if tok.Lexeme != lexeme {
			t.Errorf("token %d: expected lexeme %q, got %q", i, lexeme, tok.Lexeme)
		}
	}
}

func TestLexerDotAfterNumberIsSeparate(t *testing.T) {
	tokens := lexAllTokens(t, "1.x 2..")
	got := tokenTypes(tokens)
	want := []TokenType{tokenNumber, tokenDot, tokenIdentifier, tokenNumber, tokenDots, tokenEOF}
	if diff := deep.Equal(got, want); diff != nil {
		t.Error(diff)
	}
}

func TestLexerNumberErrors(t *testing.T) {
	lx := newLexer("1e")
	if _, err := lx.nextToken(); err == nil || !strings.Contains(err.Error(), "unterminated exponent") {
		t.Fatalf("expected unterminated exponent error, got %v", err)
	}
}

func TestLexerStringLiterals(t *testing.T) {
	src := "\"hello\\nworld\" \"tab\\tquote\\\" backslash\\\\\""
	tokens := lexAllTokens(t, src)
	tokens = tokens[:len(tokens)-2]

	want := []string{
		"hello\nworld",
		"tab\tquote\" backslash\\",
	}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(tokens))
	}
	for i, w := range want {
		if tokens[i].Type != tokenString || tokens[i].Value != w {
			t.Errorf("token %d: expected string %q, got %v %q", i, w, tokens[i].Type, tokens[i].Value)
		}
	}
}

func TestLexerUnterminatedStringIsIncomplete(t *testing.T) {
	lx := newLexer(`"abc`)
	_, err := lx.nextToken()
	if err == nil || !IsIncomplete(err) {
		t.Fatalf("expected incomplete error, got %v", err)
	}
}

func TestLexerOperators(t *testing.T) {
	tokens := lexAllTokens(t, "= += -= *= /= == != < <= > >= => . .. , : ( ) { }")
	got := tokenTypes(tokens)
	want := []TokenType{
		tokenAssign, tokenPlusAssign, tokenMinusAssign, tokenStarAssign, tokenSlashAssign,
		tokenEqualEqual, tokenBangEqual, tokenLess, tokenLessEqual, tokenGreater,
		tokenGreaterEqual, tokenArrow, tokenDot, tokenDots, tokenComma, tokenColon,
		tokenLParen, tokenRParen, tokenLBrace, tokenRBrace, tokenSemicolon, tokenEOF,
	}
	if diff := deep.Equal(got, want); diff != nil {
		t.Error(diff)
	}
}

func TestLexerBangRequiresEqual(t *testing.T) {
	lx := newLexer("!x")
	if _, err := lx.nextToken(); err == nil || !strings.Contains(err.Error(), "use 'not'") {
		t.Fatalf("expected hint about not, got %v", err)
	}
}

func TestLexerSemicolonInsertion(t *testing.T) {
	src := "let x = 1\nx + \n2\n"
	got := tokenTypes(lexAllTokens(t, src))
	want := []TokenType{
		tokenLet, tokenIdentifier, tokenAssign, tokenNumber, tokenSemicolon,
		tokenIdentifier, tokenPlus, tokenNumber, tokenSemicolon, tokenEOF,
	}
	if diff := deep.Equal(got, want); diff != nil {
		t.Error(diff)
	}
}

func TestLexerNoSemicolonInsideArguments(t *testing.T) {
	src := "f(\n1,\n2\n)\n"
	got := tokenTypes(lexAllTokens(t, src))
	want := []TokenType{
		tokenIdentifier, tokenLParen, tokenNumber, tokenComma, tokenNumber,
		tokenRParen, tokenSemicolon, tokenEOF,
	}
	if diff := deep.Equal(got, want); diff != nil {
		t.Error(diff)
	}
}

func TestLexerSemicolonBeforeClosingBrace(t *testing.T) {
	got := tokenTypes(lexAllTokens(t, "{ x }"))
	want := []TokenType{tokenLBrace, tokenIdentifier, tokenSemicolon, tokenRBrace, tokenSemicolon, tokenEOF}
	if diff := deep.Equal(got, want); diff != nil {
		t.Error(diff)
	}
}

func TestLexerWildcardImportEndsStatement(t *testing.T) {
	got := tokenTypes(lexAllTokens(t, "import \"m\": *\nx"))
	want := []TokenType{
		tokenImport, tokenString, tokenColon, tokenStar, tokenSemicolon,
		tokenIdentifier, tokenSemicolon, tokenEOF,
	}
	if diff := deep.Equal(got, want); diff != nil {
		t.Error(diff)
	}
}

func TestLexerComments(t *testing.T) {
	src := "a // trailing\n/* block\ncomment */ b"
	got := tokenTypes(lexAllTokens(t, src))
	want := []TokenType{tokenIdentifier, tokenSemicolon, tokenIdentifier, tokenSemicolon, tokenEOF}
	if diff := deep.Equal(got, want); diff != nil {
		t.Error(diff)
	}

	lx := newLexer("/* open")
	if _, err := lx.nextToken(); err == nil || !IsIncomplete(err) {
		t.Fatalf("expected incomplete block comment error, got %v", err)
	}
}

func TestLexerPositions(t *testing.T) {
	tokens := lexAllTokens(t, "ab\n  cd")
	if got := tokens[0].Pos; got != (Position{Offset: 0, Line: 1, Column: 1}) {
		t.Fatalf("unexpected first position %+v", got)
	}
	if got := tokens[2].Pos; got != (Position{Offset: 5, Line: 2, Column: 3}) {
		t.Fatalf("unexpected second position %+v", got)
	}
}
