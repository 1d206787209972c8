package parser

import (
	"errors"
	"strings"
	"testing"
)

func TestParseStringProducesStatements(t *testing.T) {
	src := `
let answer = 41
answer + 1
`
	prog, err := ParseString(src)
	if err != nil {
		t.Fatalf("ParseString returned error: %v", err)
	}
	if len(prog.Stmts) != 2 {
		t.Fatalf("expected two statements (let and expression), got %d", len(prog.Stmts))
	}

	let, ok := prog.Stmts[0].(*LetExpr)
	if !ok {
		t.Fatalf("expected first statement to be let, got %T", prog.Stmts[0])
	}
	if let.Pattern.Name != "answer" {
		t.Fatalf("expected let target answer, got %q", let.Pattern.Name)
	}
	if lit, ok := let.Init.(*IntExpr); !ok || lit.Value != 41 {
		t.Fatalf("expected answer initializer 41, got %#v", let.Init)
	}
}

func TestParseStringPropagatesSyntaxErrors(t *testing.T) {
	if _, err := ParseString("let = 1"); err == nil || !strings.Contains(err.Error(), "expected identifier") {
		t.Fatalf("expected syntax error for malformed let, got %v", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("boom")
}

func TestParseReaderHandlesIOReturns(t *testing.T) {
	if _, err := ParseReader(failingReader{}); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected underlying IO error, got %v", err)
	}

	reader := strings.NewReader("let value = 5; value")
	prog, err := ParseReader(reader)
	if err != nil {
		t.Fatalf("ParseReader returned error: %v", err)
	}
	if len(prog.Stmts) != 2 {
		t.Fatalf("expected two statements from reader, got %d", len(prog.Stmts))
	}
}

func TestParseExprShapes(t *testing.T) {
	empty, err := ParseExpr("  ")
	if err != nil {
		t.Fatalf("ParseExpr returned error: %v", err)
	}
	if _, ok := empty.(*NoneExpr); !ok {
		t.Fatalf("expected none for empty input, got %T", empty)
	}

	single, err := ParseExpr("1 + 2")
	if err != nil {
		t.Fatalf("ParseExpr returned error: %v", err)
	}
	if _, ok := single.(*BinaryExpr); !ok {
		t.Fatalf("expected binary expression, got %T", single)
	}

	multi, err := ParseExpr("let a = 1; a")
	if err != nil {
		t.Fatalf("ParseExpr returned error: %v", err)
	}
	block, ok := multi.(*BlockExpr)
	if !ok || len(block.Stmts) != 2 {
		t.Fatalf("expected block of two statements, got %#v", multi)
	}
}
