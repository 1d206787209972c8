package parser

import (
	"io"
)

// ParseString parses source text into a Program.
func ParseString(src string) (*Program, error) {
	return Parse(src)
}

// ParseReader consumes source from an io.Reader and parses it.
func ParseReader(r io.Reader) (*Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

// ParseExpr parses a single expression, as used for `-e` snippets and
// default values supplied from Go code.
func ParseExpr(src string) (Expr, error) {
	prog, err := Parse(src)
	if err != nil {
		return nil, err
	}
	switch len(prog.Stmts) {
	case 0:
		return &NoneExpr{}, nil
	case 1:
		return prog.Stmts[0], nil
	default:
		return &BlockExpr{Stmts: prog.Stmts, Posn: prog.Stmts[0].Pos()}, nil
	}
}
