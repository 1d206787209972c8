package runtime

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/sergev/lexa/lang"
	"github.com/sergev/lexa/parser"
)

// NewEvaluator constructs an evaluator with the standard runtime installed.
// Imports resolve against files in the current directory.
func NewEvaluator() *lang.Evaluator {
	ev := lang.NewEvaluator()
	installPrimitives(ev)
	if err := installLibrary(ev); err != nil {
		panic(fmt.Errorf("runtime bootstrap failed: %w", err))
	}
	ev.Builtins = ev.Global.Fork()
	ev.Resolver = &FileResolver{Root: "."}
	return ev
}

// SetArgv stores the command-line arguments as an array of strings.
func SetArgv(env *lang.Env, args []string) {
	values := make([]lang.Value, len(args))
	for i, arg := range args {
		values[i] = lang.StrValue(arg)
	}
	env.Define("argv", lang.ArrayValue(values))
}

func installLibrary(ev *lang.Evaluator) error {
	for _, src := range preludeSource {
		prog, err := parser.ParseString(src)
		if err != nil {
			return err
		}
		if _, err := ev.EvalProgram(prog, ev.Global); err != nil {
			return err
		}
	}
	return nil
}

func readFileSkippingShebang(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, []byte("#!")) {
		if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
			// Keep the newline so line numbers still match the file.
			return data[idx:], nil
		}
		return []byte{}, nil
	}
	return data, nil
}

// EvaluateString parses and evaluates source in the global scope.
func EvaluateString(ev *lang.Evaluator, src string) (lang.Value, error) {
	prog, err := parser.ParseString(src)
	if err != nil {
		return lang.Value{}, err
	}
	return ev.EvalProgram(prog, ev.Global)
}

// EvaluateReader parses and evaluates all source from the reader.
func EvaluateReader(ev *lang.Evaluator, r io.Reader) (lang.Value, error) {
	prog, err := parser.ParseReader(r)
	if err != nil {
		return lang.Value{}, err
	}
	return ev.EvalProgram(prog, ev.Global)
}

// EvaluateFile loads and executes a script, allowing a #! first line.
func EvaluateFile(ev *lang.Evaluator, path string) (lang.Value, error) {
	data, err := readFileSkippingShebang(path)
	if err != nil {
		return lang.Value{}, err
	}
	return EvaluateReader(ev, bytes.NewReader(data))
}
