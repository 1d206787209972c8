package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-test/deep"
	"github.com/sergev/lexa/lang"
	"github.com/sergev/lexa/runtime"
)

func runCommand(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunExpression(t *testing.T) {
	code, out, errOut := runCommand(t, "", "-e", "1 + 2")
	if code != 0 || out != "3\n" || errOut != "" {
		t.Fatalf("unexpected result: code=%d out=%q err=%q", code, out, errOut)
	}

	code, out, _ = runCommand(t, "", "-e", `print("hi")`)
	if code != 0 || out != "hi\n" {
		t.Fatalf("none results should not be echoed: code=%d out=%q", code, out)
	}

	code, _, errOut = runCommand(t, "", "-e", "1 +")
	if code != 1 || !strings.HasPrefix(errOut, "-e:") {
		t.Fatalf("expected a parse error: code=%d err=%q", code, errOut)
	}
}

func TestRunScript(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "args.lx")
	if err := os.WriteFile(script, []byte("#!/usr/bin/env lexa\nprint(argv)\n"), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}
	code, out, errOut := runCommand(t, "", script, "a")
	if code != 0 || errOut != "" {
		t.Fatalf("unexpected failure: code=%d err=%q", code, errOut)
	}
	if want := fmt.Sprintf("(%q, %q)\n", script, "a"); out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}

	broken := filepath.Join(dir, "broken.lx")
	if err := os.WriteFile(broken, []byte("let x = 1\nx + y\n"), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}
	code, _, errOut = runCommand(t, "", broken)
	if code != 1 {
		t.Fatalf("expected exit status 1, got %d", code)
	}
	if want := broken + ":2:5: error: unknown variable: y\n  x + y\n      ^\n"; errOut != want {
		t.Fatalf("expected %q, got %q", want, errOut)
	}

	code, out, _ = runCommand(t, "print(1 + 1)", "-")
	if code != 0 || out != "2\n" {
		t.Fatalf("stdin script: code=%d out=%q", code, out)
	}
}

func TestRunFlags(t *testing.T) {
	code, _, errOut := runCommand(t, "", "-max-depth", "5", "-e", "let f(n) = f(n + 1); f(0)")
	if code != 1 || !strings.Contains(errOut, "maximum function call depth exceeded") {
		t.Fatalf("expected depth error: code=%d err=%q", code, errOut)
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "m.lx"), []byte("let v = 7\n"), 0o600); err != nil {
		t.Fatalf("write module: %v", err)
	}
	code, out, errOut := runCommand(t, "", "-I", dir, "-e", `import "m"; m.v`)
	if code != 0 || out != "7\n" {
		t.Fatalf("import via -I: code=%d out=%q err=%q", code, out, errOut)
	}

	if code, _, _ := runCommand(t, "", "-nope"); code != 2 {
		t.Fatalf("expected status 2 for an unknown flag, got %d", code)
	}
	if code, _, errOut := runCommand(t, "", "-h"); code != 0 || !strings.Contains(errOut, "usage: lexa") {
		t.Fatalf("expected usage: code=%d err=%q", code, errOut)
	}
}

func TestBufferedREPL(t *testing.T) {
	input := strings.Join([]string{
		"let f(x) = {",
		"  x * 2",
		"}",
		"f(21)",
		"",
		"let y = 1",
		"unknown",
		`"s"`,
		"",
	}, "\n")
	code, out, errOut := runCommand(t, input)
	if code != 0 {
		t.Fatalf("unexpected status %d", code)
	}
	if out != "42\n\"s\"\n" {
		t.Fatalf("unexpected output %q", out)
	}
	if !strings.Contains(errOut, "unknown variable: unknown") {
		t.Fatalf("expected an error for unknown, got %q", errOut)
	}

	_, out, errOut = runCommand(t, "let x = (1")
	if out != "" || !strings.Contains(errOut, "<stdin>:") {
		t.Fatalf("expected incomplete input to be reported: out=%q err=%q", out, errOut)
	}
}

func TestComplete(t *testing.T) {
	ev := runtime.NewEvaluator()
	ev.Global.Define("printer", lang.IntValue(1))

	got := complete(ev, "x = prin")
	if diff := deep.Equal(got, []string{"x = print", "x = printer"}); diff != nil {
		t.Fatalf("unexpected completions: %v", diff)
	}
	if got := complete(ev, "f("); got != nil {
		t.Fatalf("expected no completions without a prefix, got %v", got)
	}
}
