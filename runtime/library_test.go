package runtime

import (
	"testing"

	"github.com/sergev/lexa/lang"
)

func TestPrelude(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"map", "map((x) => x * 2, (1, 2, 3))", "(2, 4, 6)"},
		{"map empty", "map(len, ())", "()"},
		{"map string", `map((c) => c + c, "ab")`, `("aa", "bb")`},
		{"filter", "filter((x) => x > 2, range(5))", "(3, 4)"},
		{"fold named init", "fold((a, b) => a + b, (1, 2, 3), init: 0)", "6"},
		{"fold positional init", "fold((a, b) => a + b, (1, 2, 3), 10)", "16"},
		{"fold default init", "fold((acc, x) => x, ())", "none"},
		{"join", `join((1, "a", 2.5), sep: ", ")`, `"1, a, 2.5"`},
		{"join empty", "join(())", `""`},
		{"join default separator", `join(("a", "b"))`, `"ab"`},
	}
	ev, _ := newTestEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(t, ev, tt.src); got.Repr() != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got.Repr())
			}
		})
	}
}

func TestPreludeCanBeShadowed(t *testing.T) {
	ev, _ := newTestEvaluator()
	got := run(t, ev, `
let apply_twice(f, x) = f(f(x))
let map = (x) => x + 1
apply_twice(map, 1)
`)
	if got.Int() != 3 {
		t.Fatalf("expected shadowed map to be used, got %s", got.Repr())
	}
}

func TestPreludeReportsCallerErrors(t *testing.T) {
	ev, _ := newTestEvaluator()
	_, err := EvaluateString(ev, "map((x) => x, (1,), extra: 1)")
	if le := expectKind(t, err, lang.UnexpectedArgument); le.Name != "extra" {
		t.Fatalf("expected unexpected extra, got %q", le.Name)
	}
}
