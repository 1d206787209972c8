package lang

import (
	"testing"

	"github.com/sergev/lexa/parser"
)

func TestBindRequiredAndNamedArguments(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"positional", "let f(x, y) = (x, y); f(1, 2)", "(1, 2)"},
		{"default used", "let f(x, y: 2) = (x, y); f(1)", "(1, 2)"},
		{"named overrides default", "let f(x, y: 2) = (x, y); f(1, y: 3)", "(1, 3)"},
		{"named slot filled positionally", "let f(x, y: 2) = (x, y); f(1, 5)", "(1, 5)"},
		{"named out of order", "let f(a: 1, b: 2) = (a, b); f(b: 20, a: 10)", "(10, 20)"},
		{"leading named yields to positional", "let g(a: 1, b) = (a, b); g(5)", "(1, 5)"},
		{"leading named takes surplus", "let g(a: 1, b) = (a, b); g(4, 5)", "(4, 5)"},
		{"default sees earlier parameter", "let f(x, y: x * 2) = y; f(4)", "8"},
		{"closure literal", "((a, b: 10) => a + b)(1)", "11"},
		{"spread arguments", "let f(a, b, c: 0) = (a, b, c); f(..(1, 2), ..(c: 3))", "(1, 2, 3)"},
		{"spread overrides named", "let f(a: 0) = a; f(a: 1, ..(a: 2))", "2"},
		{"named overrides spread", "let f(a: 0) = a; f(..(a: 2), a: 3)", "3"},
		{"later spread wins", "let f(a: 0) = a; f(..(a: 1), ..(a: 2))", "2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustEval(t, newTestEvaluator(), tt.src)
			if got.Repr() != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got.Repr())
			}
		})
	}
}

func TestBindSinkAbsorbsExtras(t *testing.T) {
	ev := newTestEvaluator()
	got := mustEval(t, ev, `
let f(x, ..rest) = (x, rest.pos, rest.named)
f(1, 2, 3, k: 4)
`)
	if want := "(1, (2, 3), (k: 4))"; got.Repr() != want {
		t.Fatalf("expected %s, got %s", want, got.Repr())
	}

	if got := mustEval(t, ev, "let g(x, ..) = x; g(1, 2, a: 3)"); got.Int() != 1 {
		t.Fatalf("anonymous sink should discard extras, got %s", got.Repr())
	}

	sink := mustEval(t, ev, "let h(..args) = args; h(1, b: 2)")
	if sink.Type != TypeArgs {
		t.Fatalf("expected arguments value, got %s", sink.Type)
	}
	if want := "arguments(1, b: 2)"; sink.Repr() != want {
		t.Fatalf("expected %s, got %s", want, sink.Repr())
	}

	forwarded := mustEval(t, ev, "let wrap(..args) = f(..args); wrap(9, 8, k: 7)")
	if want := "(9, (8,), (k: 7))"; forwarded.Repr() != want {
		t.Fatalf("expected %s, got %s", want, forwarded.Repr())
	}
}

func TestBindMissingArgument(t *testing.T) {
	_, err := evalSource(t, newTestEvaluator(), "let f(x, y) = x\nf(1)")
	le := expectKind(t, err, MissingArgument)
	if le.Name != "y" {
		t.Fatalf("expected missing y, got %q", le.Name)
	}
	if le.Message() != "missing argument: y" {
		t.Fatalf("unexpected message %q", le.Message())
	}
	if le.Pos.Line != 2 || le.Pos.Column != 1 {
		t.Fatalf("expected error at the call, got %+v", le.Pos)
	}
}

func TestBindMissingNamesFirstUnfilledSlot(t *testing.T) {
	_, err := evalSource(t, newTestEvaluator(), "let f(a, b, c) = a; f()")
	if le := expectKind(t, err, MissingArgument); le.Name != "a" {
		t.Fatalf("expected missing a, got %q", le.Name)
	}
}

func TestBindUnexpectedPositional(t *testing.T) {
	_, err := evalSource(t, newTestEvaluator(), "let f(x) = x\nf(1, 2)")
	le := expectKind(t, err, UnexpectedArgument)
	if le.Index != 1 || le.Name != "" {
		t.Fatalf("expected second positional argument, got index=%d name=%q", le.Index, le.Name)
	}
	if le.Pos.Line != 2 || le.Pos.Column != 6 {
		t.Fatalf("expected error at the extra argument, got %+v", le.Pos)
	}
	if le.Message() != "unexpected argument" {
		t.Fatalf("unexpected message %q", le.Message())
	}
}

func TestBindUnexpectedNamed(t *testing.T) {
	_, err := evalSource(t, newTestEvaluator(), "let f(x) = x; f(1, z: 2)")
	le := expectKind(t, err, UnexpectedArgument)
	if le.Name != "z" || le.Message() != "unexpected argument: z" {
		t.Fatalf("expected unexpected z, got %q (%s)", le.Name, le.Message())
	}

	// A purely positional parameter cannot be passed by name.
	_, err = evalSource(t, newTestEvaluator(), "let f(x) = x; f(x: 1)")
	if le := expectKind(t, err, UnexpectedArgument); le.Name != "x" {
		t.Fatalf("expected unexpected x, got %q", le.Name)
	}
}

func TestBindDuplicateNamedArgument(t *testing.T) {
	_, err := evalSource(t, newTestEvaluator(), "let f(a: 0) = a; f(a: 1, a: 2)")
	if le := expectKind(t, err, DuplicateNamedArgument); le.Name != "a" {
		t.Fatalf("expected duplicate a, got %q", le.Name)
	}

	// Only a spread may be replaced; the explicit pair after it still counts.
	_, err = evalSource(t, newTestEvaluator(), "let f(a: 0) = a; f(..(a: 1), a: 2, a: 3)")
	if le := expectKind(t, err, DuplicateNamedArgument); le.Name != "a" {
		t.Fatalf("expected duplicate a, got %q", le.Name)
	}
}

func TestBindDuplicateParameterAtDefinition(t *testing.T) {
	_, err := evalSource(t, newTestEvaluator(), "let f(x, y: 1, x) = x")
	le := expectKind(t, err, DuplicateParameterName)
	if le.Name != "x" || le.Message() != "duplicate parameter: x" {
		t.Fatalf("unexpected error %v", le)
	}
	if le.Pos.Column != 16 {
		t.Fatalf("expected error at the second x, got %+v", le.Pos)
	}
}

func TestBindMultipleSinksAreMalformed(t *testing.T) {
	_, err := evalSource(t, newTestEvaluator(), "(..a, ..b) => 1")
	expectKind(t, err, MalformedParameterPattern)
}

func TestBindDefaultsAreLazy(t *testing.T) {
	ev := newTestEvaluator()
	ticks := 0
	ev.Global.Define("tick", NativeValue("tick", func(_ *Evaluator, args *Args) (Value, error) {
		ticks++
		return IntValue(int64(ticks)), args.Finish()
	}))

	mustEval(t, ev, "let f(x, y: tick()) = (x, y)")
	mustEval(t, ev, "f(1, y: 2)")
	if ticks != 0 {
		t.Fatalf("default must not run when the slot is supplied, ran %d times", ticks)
	}
	if _, err := evalSource(t, ev, "f(1, 2, 3)"); err == nil {
		t.Fatalf("expected unexpected argument error")
	}
	if ticks != 0 {
		t.Fatalf("defaults must not run when binding fails, ran %d times", ticks)
	}
	if got := mustEval(t, ev, "f(1)"); got.Repr() != "(1, 1)" {
		t.Fatalf("expected default from tick, got %s", got.Repr())
	}
}

func TestBindDefaultUsesCapturedEnvironment(t *testing.T) {
	got := mustEval(t, newTestEvaluator(), `
let base = 10
let f(y: base) = y
let g() = {
  let base = 99
  f()
}
g()
`)
	if got.Int() != 10 {
		t.Fatalf("default should read the captured base, got %s", got.Repr())
	}
}

func TestPlanWithHandBuiltPattern(t *testing.T) {
	pattern, err := NewPattern([]parser.Param{
		{Kind: parser.ParamPositional, Name: "x"},
		{Kind: parser.ParamNamed, Name: "y", Default: &parser.IntExpr{Value: 5}},
		{Kind: parser.ParamSink, Name: "rest"},
	})
	if err != nil {
		t.Fatalf("NewPattern returned error: %v", err)
	}
	if pattern.String() != "(x, y: .., ..rest)" {
		t.Fatalf("unexpected pattern %s", pattern)
	}

	ev := NewEvaluator()
	fn := MakeClosure("f", pattern, &parser.ArrayExpr{Items: []parser.Expr{
		&parser.IdentExpr{Name: "x"},
		&parser.IdentExpr{Name: "y"},
		&parser.IdentExpr{Name: "rest"},
	}}, ev.Global)

	got, err := ev.CallValues(fn, []Value{IntValue(1)}, map[string]Value{"extra": IntValue(2)})
	if err != nil {
		t.Fatalf("CallValues returned error: %v", err)
	}
	if want := "(1, 5, arguments(extra: 2))"; got.Repr() != want {
		t.Fatalf("expected %s, got %s", want, got.Repr())
	}

	got, err = ev.CallValues(fn, []Value{IntValue(1), IntValue(2), IntValue(3)}, nil)
	if err != nil {
		t.Fatalf("CallValues returned error: %v", err)
	}
	if want := "(1, 2, arguments(3))"; got.Repr() != want {
		t.Fatalf("expected %s, got %s", want, got.Repr())
	}
}
