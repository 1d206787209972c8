package lang

import (
	"testing"

	"github.com/sergev/lexa/parser"
)

func TestArgsNativeHelpers(t *testing.T) {
	args := NewArgs(parser.Position{Line: 1, Column: 1})
	args.Push(IntValue(1), parser.Position{Line: 1, Column: 3})
	args.Push(IntValue(2), parser.Position{Line: 1, Column: 6})
	if err := args.PushNamed("sep", StrValue(","), parser.Position{Line: 1, Column: 9}); err != nil {
		t.Fatalf("PushNamed returned error: %v", err)
	}

	first, err := args.Expect("first")
	if err != nil || first.Int() != 1 {
		t.Fatalf("Expect returned %s, %v", first.Repr(), err)
	}
	if sep, ok := args.Named("sep"); !ok || sep.Str() != "," {
		t.Fatalf("Named returned %s, %v", sep.Repr(), ok)
	}
	if _, ok := args.Named("sep"); ok {
		t.Fatalf("Named should consume the argument")
	}

	err = args.Finish()
	le := expectKind(t, err, UnexpectedArgument)
	if le.Index != 1 || le.Pos.Column != 6 {
		t.Fatalf("expected the second positional argument, got %+v", le)
	}

	if v, ok := args.Eat(); !ok || v.Int() != 2 {
		t.Fatalf("Eat returned %s, %v", v.Repr(), ok)
	}
	if err := args.Finish(); err != nil {
		t.Fatalf("Finish after consuming everything returned %v", err)
	}
	_, err = args.Expect("value")
	if le := expectKind(t, err, MissingArgument); le.Name != "value" || le.Pos.Column != 1 {
		t.Fatalf("expected missing value at the call, got %+v", le)
	}
}

func TestArgsFinishReportsLeftoverNamed(t *testing.T) {
	args := NewArgs(noPos)
	args.SetNamed("color", StrValue("red"), noPos)
	if le := expectKind(t, args.Finish(), UnexpectedArgument); le.Name != "color" {
		t.Fatalf("expected unexpected color, got %q", le.Name)
	}
}

func TestArgsSpread(t *testing.T) {
	inner := NewArgs(noPos)
	inner.Push(IntValue(3), noPos)
	inner.SetNamed("k", IntValue(4), noPos)

	d := NewDict()
	d.Set("k", IntValue(5))

	args := NewArgs(noPos)
	for _, v := range []Value{
		ArrayValue([]Value{IntValue(1), IntValue(2)}),
		None,
		ArgsValue(inner),
		DictValue(d),
	} {
		if err := args.Spread(v, noPos); err != nil {
			t.Fatalf("Spread(%s) returned error: %v", v.Repr(), err)
		}
	}
	if want := "arguments(1, 2, 3, k: 5)"; ArgsValue(args).Repr() != want {
		t.Fatalf("expected %s, got %s", want, ArgsValue(args).Repr())
	}
	if err := args.Spread(IntValue(1), noPos); !IsKind(err, InvalidOperation) {
		t.Fatalf("expected spreading an int to fail, got %v", err)
	}
	if rest := args.Rest(); len(rest) != 3 || args.Len() != 0 {
		t.Fatalf("Rest should consume every positional argument, got %d", len(rest))
	}
}

func TestArgsExplicitNameReplacesSpread(t *testing.T) {
	args := NewArgs(noPos)
	args.SetNamed("x", IntValue(1), noPos)
	if err := args.PushNamed("x", IntValue(2), parser.Position{Line: 1, Column: 8}); err != nil {
		t.Fatalf("PushNamed over a spread value returned error: %v", err)
	}
	if v, ok := args.Named("x"); !ok || v.Int() != 2 {
		t.Fatalf("expected x = 2, got %s, %v", v.Repr(), ok)
	}

	args.SetNamed("y", IntValue(1), noPos)
	if err := args.PushNamed("y", IntValue(2), noPos); err != nil {
		t.Fatalf("PushNamed returned error: %v", err)
	}
	err := args.PushNamed("y", IntValue(3), parser.Position{Line: 1, Column: 12})
	if le := expectKind(t, err, DuplicateNamedArgument); le.Pos.Column != 12 {
		t.Fatalf("expected duplicate at the second explicit y, got %+v", le.Pos)
	}
}
