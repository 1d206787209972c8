package runtime

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestFormatErrorPointsAtColumn(t *testing.T) {
	src := "let a = 1\nlet b = a + c"
	ev, _ := newTestEvaluator()
	_, err := EvaluateString(ev, src)
	if err == nil {
		t.Fatalf("expected an error")
	}
	want := "main.lx:2:13: error: unknown variable: c\n" +
		"  let b = a + c\n" +
		"  " + strings.Repeat(" ", 12) + "^\n"
	if got := FormatError("main.lx", src, err); got != want {
		t.Fatalf("expected\n%s\ngot\n%s", want, got)
	}
}

func TestFormatErrorParseError(t *testing.T) {
	src := "let x = )"
	ev, _ := newTestEvaluator()
	_, err := EvaluateString(ev, src)
	if err == nil {
		t.Fatalf("expected a parse error")
	}
	got := FormatError("main.lx", src, err)
	if !strings.HasPrefix(got, "main.lx:1:9: error: ") {
		t.Fatalf("unexpected header in %q", got)
	}
	if !strings.HasSuffix(got, "  let x = )\n  "+strings.Repeat(" ", 8)+"^\n") {
		t.Fatalf("unexpected source excerpt in %q", got)
	}
}

func TestFormatErrorKeepsTabs(t *testing.T) {
	src := "\tmissing"
	ev, _ := newTestEvaluator()
	_, err := EvaluateString(ev, src)
	got := FormatError("t.lx", src, err)
	if want := "t.lx:1:2: error: unknown variable: missing\n  \tmissing\n  \t^\n"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFormatErrorWithoutPosition(t *testing.T) {
	got := FormatError("main.lx", "", errors.New("boom"))
	if got != "main.lx: error: boom\n" {
		t.Fatalf("unexpected output %q", got)
	}

	wrapped := fmt.Errorf("loading: %w", errors.New("no such file"))
	if got := FormatError("-", "", wrapped); got != "-: error: loading: no such file\n" {
		t.Fatalf("unexpected output %q", got)
	}
}
