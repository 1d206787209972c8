package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"github.com/sergev/lexa/lang"
	"github.com/sergev/lexa/parser"
	"github.com/sergev/lexa/runtime"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("lexa", flag.ContinueOnError)
	flags.SetOutput(stderr)
	expr := flags.String("e", "", "evaluate `source` and print the result")
	root := flags.String("I", ".", "resolve imports relative to `dir`")
	maxDepth := flags.Int("max-depth", lang.DefaultMaxCallDepth, "maximum function call `depth`")
	flags.Usage = func() {
		fmt.Fprintf(stderr, "usage: lexa [flags] [script | -] [args...]\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	ev := runtime.NewEvaluator()
	ev.Out = stdout
	ev.MaxCallDepth = *maxDepth
	ev.Resolver = &runtime.FileResolver{Root: *root}
	rest := flags.Args()
	runtime.SetArgv(ev.Global, rest)

	if *expr != "" {
		val, err := runtime.EvaluateString(ev, *expr)
		if err != nil {
			fmt.Fprint(stderr, runtime.FormatError("-e", *expr, err))
			return 1
		}
		printResult(stdout, val)
		return 0
	}

	if len(rest) > 0 {
		return runScript(ev, rest[0], stdin, stderr)
	}

	if f, ok := stdin.(*os.File); ok && isInteractive(f) {
		runInteractiveREPL(ev, stdout, stderr)
		return 0
	}
	runBufferedREPL(ev, bufio.NewReader(stdin), stdout, stderr)
	return 0
}

func runScript(ev *lang.Evaluator, script string, stdin io.Reader, stderr io.Writer) int {
	var (
		src []byte
		err error
	)
	if script == "-" {
		src, err = io.ReadAll(stdin)
		if err == nil {
			_, err = runtime.EvaluateString(ev, string(src))
		}
	} else {
		_, err = runtime.EvaluateFile(ev, script)
		if err != nil {
			src, _ = os.ReadFile(script)
		}
	}
	if err != nil {
		fmt.Fprint(stderr, runtime.FormatError(script, string(src), err))
		return 1
	}
	return 0
}

func printResult(w io.Writer, val lang.Value) {
	if val.IsNone() {
		return
	}
	fmt.Fprintln(w, val.Repr())
}

// evalChunk evaluates one REPL entry. It reports false when src is an
// unfinished statement and more input should be read.
func evalChunk(ev *lang.Evaluator, src string, stdout, stderr io.Writer) bool {
	prog, err := parser.ParseString(src)
	if err != nil {
		if parser.IsIncomplete(err) {
			return false
		}
		fmt.Fprint(stderr, runtime.FormatError("<stdin>", src, err))
		return true
	}
	val, err := ev.EvalProgram(prog, ev.Global)
	if err != nil {
		fmt.Fprint(stderr, runtime.FormatError("<stdin>", src, err))
		return true
	}
	printResult(stdout, val)
	return true
}

func runBufferedREPL(ev *lang.Evaluator, reader *bufio.Reader, stdout, stderr io.Writer) {
	var buffer strings.Builder

	for {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(stderr, "read error: %v\n", err)
			return
		}
		buffer.WriteString(line)
		atEOF := err != nil
		src := buffer.String()
		if strings.TrimSpace(src) == "" {
			buffer.Reset()
		} else if evalChunk(ev, src, stdout, stderr) {
			buffer.Reset()
		} else if atEOF {
			// Report the incomplete input instead of dropping it.
			_, perr := parser.ParseString(src)
			fmt.Fprint(stderr, runtime.FormatError("<stdin>", src, perr))
			return
		}
		if atEOF {
			return
		}
	}
}

func runInteractiveREPL(ev *lang.Evaluator, stdout, stderr io.Writer) {
	state := liner.NewLiner()
	defer state.Close()
	state.SetCtrlCAborts(true)
	state.SetCompleter(func(line string) []string {
		return complete(ev, line)
	})

	historyPath := replHistoryPath()
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			state.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(historyPath); err == nil {
				state.WriteHistory(f)
				f.Close()
			}
		}()
	}

	var buffer strings.Builder

	for {
		prompt := "lexa> "
		if buffer.Len() > 0 {
			prompt = "....  "
		}
		input, err := state.Prompt(prompt)
		if err != nil {
			switch {
			case errors.Is(err, liner.ErrPromptAborted):
				fmt.Fprintln(stdout)
				buffer.Reset()
				continue
			case errors.Is(err, io.EOF):
				fmt.Fprintln(stdout)
				return
			default:
				fmt.Fprintf(stderr, "read error: %v\n", err)
				return
			}
		}
		buffer.WriteString(input)
		buffer.WriteString("\n")

		src := buffer.String()
		if strings.TrimSpace(src) == "" {
			buffer.Reset()
			continue
		}
		if !evalChunk(ev, src, stdout, stderr) {
			continue
		}
		buffer.Reset()
		state.AppendHistory(strings.TrimSpace(src))
	}
}

// complete offers global names extending the identifier at the end of line.
func complete(ev *lang.Evaluator, line string) []string {
	start := len(line)
	for start > 0 && isIdentByte(line[start-1]) {
		start--
	}
	prefix := line[start:]
	if prefix == "" {
		return nil
	}
	var out []string
	for _, name := range ev.Global.Names() {
		if strings.HasPrefix(name, prefix) {
			out = append(out, line[:start]+name)
		}
	}
	sort.Strings(out)
	return out
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func replHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".lexa_history")
}

func isInteractive(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
