package runtime

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sergev/lexa/lang"
)

var (
	randomMu   sync.Mutex
	randomRand = rand.New(rand.NewSource(time.Now().UnixNano()))

	exitFunc = os.Exit
)

func installPrimitives(ev *lang.Evaluator) {
	env := ev.Global
	define := func(name string, fn lang.Native) {
		env.Define(name, lang.NativeValue(name, fn))
	}

	define("print", primPrint)
	define("str", primStr)
	define("repr", primRepr)
	define("type", primType)
	define("len", primLen)
	define("range", primRange)

	define("assert", primAssert)
	define("assert_eq", primAssertEq)
	define("panic", primPanic)

	define("arguments", primArguments)
	define("apply", primApply)

	define("random", primRandom)
	define("seed", primSeed)
	define("exit", primExit)
}

// single consumes exactly one positional argument.
func single(args *lang.Args, name string) (lang.Value, error) {
	v, err := args.Expect(name)
	if err != nil {
		return lang.Value{}, err
	}
	if err := args.Finish(); err != nil {
		return lang.Value{}, err
	}
	return v, nil
}

func namedString(args *lang.Args, fn, name, fallback string) (string, error) {
	v, ok := args.Named(name)
	if !ok {
		return fallback, nil
	}
	if v.Type != lang.TypeStr {
		return "", typeError(fn, "str for "+name, v)
	}
	return v.Str(), nil
}

func primPrint(ev *lang.Evaluator, args *lang.Args) (lang.Value, error) {
	sep, err := namedString(args, "print", "sep", " ")
	if err != nil {
		return lang.Value{}, err
	}
	end, err := namedString(args, "print", "end", "\n")
	if err != nil {
		return lang.Value{}, err
	}
	values := args.Rest()
	if err := args.Finish(); err != nil {
		return lang.Value{}, err
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	fmt.Fprint(ev.Out, strings.Join(parts, sep)+end)
	return lang.None, nil
}

func primStr(ev *lang.Evaluator, args *lang.Args) (lang.Value, error) {
	v, err := single(args, "value")
	if err != nil {
		return lang.Value{}, err
	}
	return lang.StrValue(v.String()), nil
}

func primRepr(ev *lang.Evaluator, args *lang.Args) (lang.Value, error) {
	v, err := single(args, "value")
	if err != nil {
		return lang.Value{}, err
	}
	return lang.StrValue(v.Repr()), nil
}

func primType(ev *lang.Evaluator, args *lang.Args) (lang.Value, error) {
	v, err := single(args, "value")
	if err != nil {
		return lang.Value{}, err
	}
	return lang.StrValue(v.Type.String()), nil
}

func primLen(ev *lang.Evaluator, args *lang.Args) (lang.Value, error) {
	v, err := single(args, "value")
	if err != nil {
		return lang.Value{}, err
	}
	switch v.Type {
	case lang.TypeStr:
		return lang.IntValue(int64(utf8.RuneCountInString(v.Str()))), nil
	case lang.TypeArray:
		return lang.IntValue(int64(len(v.Array()))), nil
	case lang.TypeDict:
		return lang.IntValue(int64(v.Dict().Len())), nil
	case lang.TypeArgs:
		a := v.Args()
		return lang.IntValue(int64(len(a.Items) + len(a.Kwargs))), nil
	}
	return lang.Value{}, typeError("len", "str, array, dictionary or arguments", v)
}

func intArg(fn string, v lang.Value) (int64, error) {
	if v.Type != lang.TypeInt {
		return 0, typeError(fn, "int", v)
	}
	return v.Int(), nil
}

// primRange implements range(end) and range(start, end, step: 1).
func primRange(ev *lang.Evaluator, args *lang.Args) (lang.Value, error) {
	first, err := args.Expect("end")
	if err != nil {
		return lang.Value{}, err
	}
	start, end := int64(0), int64(0)
	if second, ok := args.Eat(); ok {
		if start, err = intArg("range", first); err != nil {
			return lang.Value{}, err
		}
		if end, err = intArg("range", second); err != nil {
			return lang.Value{}, err
		}
	} else if end, err = intArg("range", first); err != nil {
		return lang.Value{}, err
	}
	step := int64(1)
	if v, ok := args.Named("step"); ok {
		if step, err = intArg("range", v); err != nil {
			return lang.Value{}, err
		}
	}
	if err := args.Finish(); err != nil {
		return lang.Value{}, err
	}
	if step == 0 {
		return lang.Value{}, lang.Errorf("range step must not be zero")
	}
	var out []lang.Value
	for i := start; (step > 0 && i < end) || (step < 0 && i > end); i += step {
		out = append(out, lang.IntValue(i))
	}
	return lang.ArrayValue(out), nil
}

func primAssert(ev *lang.Evaluator, args *lang.Args) (lang.Value, error) {
	message, err := namedString(args, "assert", "message", "")
	if err != nil {
		return lang.Value{}, err
	}
	cond, err := single(args, "condition")
	if err != nil {
		return lang.Value{}, err
	}
	if cond.Type != lang.TypeBool {
		return lang.Value{}, typeError("assert", "bool", cond)
	}
	if !cond.Bool() {
		return lang.Value{}, &lang.Error{Kind: lang.AssertionFailed, Index: -1, Detail: message}
	}
	return lang.None, nil
}

func primAssertEq(ev *lang.Evaluator, args *lang.Args) (lang.Value, error) {
	left, err := args.Expect("left")
	if err != nil {
		return lang.Value{}, err
	}
	right, err := single(args, "right")
	if err != nil {
		return lang.Value{}, err
	}
	if !lang.Equal(left, right) {
		return lang.Value{}, &lang.Error{
			Kind:   lang.AssertionFailed,
			Index:  -1,
			Detail: fmt.Sprintf("%s != %s", left.Repr(), right.Repr()),
		}
	}
	return lang.None, nil
}

func primPanic(ev *lang.Evaluator, args *lang.Args) (lang.Value, error) {
	values := args.Rest()
	if err := args.Finish(); err != nil {
		return lang.Value{}, err
	}
	if len(values) == 0 {
		return lang.Value{}, lang.Errorf("panicked")
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.Repr()
	}
	return lang.Value{}, lang.Errorf("panicked with: %s", strings.Join(parts, ", "))
}

func primArguments(ev *lang.Evaluator, args *lang.Args) (lang.Value, error) {
	return lang.ArgsValue(args.Clone()), nil
}

// primApply calls a function with an array or an argument set.
func primApply(ev *lang.Evaluator, args *lang.Args) (lang.Value, error) {
	fn, err := args.Expect("function")
	if err != nil {
		return lang.Value{}, err
	}
	with, err := single(args, "arguments")
	if err != nil {
		return lang.Value{}, err
	}
	switch with.Type {
	case lang.TypeArray:
		return ev.CallValues(fn, with.Array(), nil)
	case lang.TypeArgs:
		call := with.Args().Clone()
		call.Pos = args.Pos
		return ev.Call(fn, call)
	}
	return lang.Value{}, typeError("apply", "array or arguments", with)
}

func primRandom(ev *lang.Evaluator, args *lang.Args) (lang.Value, error) {
	v, err := single(args, "limit")
	if err != nil {
		return lang.Value{}, err
	}
	limit, err := intArg("random", v)
	if err != nil {
		return lang.Value{}, err
	}
	if limit <= 0 {
		return lang.Value{}, lang.Errorf("random limit must be positive, got %d", limit)
	}
	randomMu.Lock()
	result := randomRand.Int63n(limit)
	randomMu.Unlock()
	return lang.IntValue(result), nil
}

func primSeed(ev *lang.Evaluator, args *lang.Args) (lang.Value, error) {
	v, err := single(args, "seed")
	if err != nil {
		return lang.Value{}, err
	}
	seed, err := intArg("seed", v)
	if err != nil {
		return lang.Value{}, err
	}
	randomMu.Lock()
	randomRand.Seed(seed)
	randomMu.Unlock()
	return lang.None, nil
}

func primExit(ev *lang.Evaluator, args *lang.Args) (lang.Value, error) {
	code := 0
	if v, ok := args.Eat(); ok {
		switch v.Type {
		case lang.TypeInt:
			code = int(v.Int())
		case lang.TypeBool:
			if !v.Bool() {
				code = 1
			}
		default:
			return lang.Value{}, typeError("exit", "int or bool", v)
		}
	}
	if err := args.Finish(); err != nil {
		return lang.Value{}, err
	}
	exitFunc(code)
	return lang.None, nil
}

func typeError(name, expected string, got lang.Value) error {
	return lang.Errorf("%s expects %s, found %s", name, expected, got.Type)
}
