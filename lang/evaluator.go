package lang

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/sergev/lexa/parser"
)

// DefaultMaxCallDepth bounds nested calls unless overridden.
const DefaultMaxCallDepth = 256

// Resolver loads the module named by an import source.
type Resolver interface {
	Resolve(ev *Evaluator, source string) (*Module, error)
}

// Evaluator executes parsed programs. It is not safe for concurrent use.
type Evaluator struct {
	Global *Env
	// Builtins is the environment modules are evaluated in. When nil,
	// modules see Global.
	Builtins     *Env
	Out          io.Writer
	Resolver     Resolver
	MaxCallDepth int

	depth     int
	patterns  map[*parser.ClosureExpr]*Pattern
	modules   map[string]*Module
	importing map[string]bool
}

// NewEvaluator constructs an evaluator rooted at a new global environment.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		Global:       NewEnv(),
		Out:          os.Stdout,
		MaxCallDepth: DefaultMaxCallDepth,
		patterns:     make(map[*parser.ClosureExpr]*Pattern),
		modules:      make(map[string]*Module),
		importing:    make(map[string]bool),
	}
}

type flowKind int

const (
	flowBreak flowKind = iota
	flowContinue
	flowReturn
)

// flowSignal unwinds the Go stack for break, continue and return. Loops
// and calls catch it; it never escapes EvalProgram or Call.
type flowSignal struct {
	kind  flowKind
	value Value
	pos   parser.Position
}

func (f *flowSignal) Error() string {
	switch f.kind {
	case flowBreak:
		return "cannot break outside of loop"
	case flowContinue:
		return "cannot continue outside of loop"
	default:
		return "cannot return outside of function"
	}
}

func (f *flowSignal) asError() error {
	return invalidf(f.pos, "%s", f.Error())
}

// EvalProgram evaluates top-level statements directly in env, so their
// bindings stay visible afterwards. A top-level return ends the program.
func (ev *Evaluator) EvalProgram(prog *parser.Program, env *Env) (Value, error) {
	if env == nil {
		env = ev.Global
	}
	v, err := ev.evalStmts(prog.Stmts, env)
	var flow *flowSignal
	if errors.As(err, &flow) {
		if flow.kind == flowReturn {
			return flow.value, nil
		}
		return Value{}, flow.asError()
	}
	return v, err
}

// EvalBlock evaluates statements in a fresh scope, joining their values.
func (ev *Evaluator) EvalBlock(block *parser.BlockExpr, env *Env) (Value, error) {
	env.Push()
	defer env.Pop()
	return ev.evalStmts(block.Stmts, env)
}

func (ev *Evaluator) evalStmts(stmts []parser.Expr, env *Env) (Value, error) {
	result := None
	for _, stmt := range stmts {
		v, err := ev.Eval(stmt, env)
		if err != nil {
			return Value{}, err
		}
		result = Join(result, v)
	}
	return result, nil
}

// Eval evaluates a single expression within the provided environment.
func (ev *Evaluator) Eval(expr parser.Expr, env *Env) (Value, error) {
	if env == nil {
		env = ev.Global
	}
	v, err := ev.eval(expr, env)
	if err != nil {
		return Value{}, attachPos(err, expr.Pos())
	}
	return v, nil
}

func (ev *Evaluator) eval(expr parser.Expr, env *Env) (Value, error) {
	switch e := expr.(type) {
	case *parser.NoneExpr:
		return None, nil
	case *parser.BoolExpr:
		return BoolValue(e.Value), nil
	case *parser.IntExpr:
		return IntValue(e.Value), nil
	case *parser.FloatExpr:
		return FloatValue(e.Value), nil
	case *parser.StrExpr:
		return StrValue(e.Value), nil
	case *parser.IdentExpr:
		v, ok := env.Lookup(e.Name)
		if !ok {
			err := newError(UnknownVariable, e.Name)
			err.Pos = e.Posn
			return Value{}, err
		}
		return v, nil
	case *parser.ArrayExpr:
		return ev.evalArray(e, env)
	case *parser.DictExpr:
		return ev.evalDict(e, env)
	case *parser.BlockExpr:
		return ev.EvalBlock(e, env)
	case *parser.ClosureExpr:
		pattern, err := ev.pattern(e)
		if err != nil {
			return Value{}, err
		}
		return MakeClosure(e.Name, pattern, e.Body, env), nil
	case *parser.CallExpr:
		return ev.evalCall(e, env)
	case *parser.FieldExpr:
		target, err := ev.Eval(e.Target, env)
		if err != nil {
			return Value{}, err
		}
		return field(target, e.Field, e.Posn)
	case *parser.UnaryExpr:
		return ev.evalUnary(e, env)
	case *parser.BinaryExpr:
		return ev.evalBinary(e, env)
	case *parser.LetExpr:
		return None, ev.evalLet(e, env)
	case *parser.AssignExpr:
		return None, ev.evalAssign(e, env)
	case *parser.IfExpr:
		return ev.evalIf(e, env)
	case *parser.WhileExpr:
		return ev.evalWhile(e, env)
	case *parser.ForExpr:
		return ev.evalFor(e, env)
	case *parser.ImportExpr:
		return None, ev.evalImport(e, env)
	case *parser.ReturnExpr:
		result := None
		if e.Result != nil {
			v, err := ev.Eval(e.Result, env)
			if err != nil {
				return Value{}, err
			}
			result = v
		}
		return Value{}, &flowSignal{kind: flowReturn, value: result, pos: e.Posn}
	case *parser.BreakExpr:
		return Value{}, &flowSignal{kind: flowBreak, pos: e.Posn}
	case *parser.ContinueExpr:
		return Value{}, &flowSignal{kind: flowContinue, pos: e.Posn}
	case *parser.NamedExpr:
		return Value{}, invalidf(e.Posn, "named pair is only allowed in a dictionary or argument list")
	case *parser.SpreadExpr:
		return Value{}, invalidf(e.Posn, "spread is only allowed in a collection or argument list")
	}
	return Value{}, invalidf(expr.Pos(), "cannot evaluate %T", expr)
}

// pattern compiles and caches the parameter list of a closure literal.
func (ev *Evaluator) pattern(e *parser.ClosureExpr) (*Pattern, error) {
	if p, ok := ev.patterns[e]; ok {
		return p, nil
	}
	p, err := NewPattern(e.Params)
	if err != nil {
		return nil, err
	}
	ev.patterns[e] = p
	return p, nil
}

func (ev *Evaluator) evalArray(e *parser.ArrayExpr, env *Env) (Value, error) {
	items := make([]Value, 0, len(e.Items))
	for _, item := range e.Items {
		if spread, ok := item.(*parser.SpreadExpr); ok {
			v, err := ev.spreadOperand(spread, env)
			if err != nil {
				return Value{}, err
			}
			switch v.Type {
			case TypeNone:
			case TypeArray:
				items = append(items, v.Array()...)
			case TypeArgs:
				items = append(items, v.Args().Values()...)
			default:
				return Value{}, invalidf(spread.Posn, "cannot spread %s into an array", v.Type)
			}
			continue
		}
		v, err := ev.Eval(item, env)
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}
	return ArrayValue(items), nil
}

func (ev *Evaluator) evalDict(e *parser.DictExpr, env *Env) (Value, error) {
	d := NewDict()
	for _, item := range e.Items {
		switch it := item.(type) {
		case *parser.NamedExpr:
			v, err := ev.Eval(it.Expr, env)
			if err != nil {
				return Value{}, err
			}
			d.Set(it.Name, v)
		case *parser.SpreadExpr:
			v, err := ev.spreadOperand(it, env)
			if err != nil {
				return Value{}, err
			}
			switch v.Type {
			case TypeNone:
			case TypeDict:
				d = d.Merge(v.Dict())
			case TypeArgs:
				d = d.Merge(v.Args().NamedDict())
			default:
				return Value{}, invalidf(it.Posn, "cannot spread %s into a dictionary", v.Type)
			}
		default:
			return Value{}, invalidf(item.Pos(), "expected named pair in dictionary")
		}
	}
	return DictValue(d), nil
}

func (ev *Evaluator) spreadOperand(e *parser.SpreadExpr, env *Env) (Value, error) {
	if e.Expr == nil {
		return Value{}, invalidf(e.Posn, "expected expression after ..")
	}
	return ev.Eval(e.Expr, env)
}

func (ev *Evaluator) evalCall(e *parser.CallExpr, env *Env) (Value, error) {
	callee, err := ev.Eval(e.Callee, env)
	if err != nil {
		return Value{}, err
	}
	args := NewArgs(e.Callee.Pos())
	for _, item := range e.Args {
		switch it := item.(type) {
		case *parser.NamedExpr:
			v, err := ev.Eval(it.Expr, env)
			if err != nil {
				return Value{}, err
			}
			if err := args.PushNamed(it.Name, v, it.Posn); err != nil {
				return Value{}, err
			}
		case *parser.SpreadExpr:
			v, err := ev.spreadOperand(it, env)
			if err != nil {
				return Value{}, err
			}
			if err := args.Spread(v, it.Posn); err != nil {
				return Value{}, err
			}
		default:
			v, err := ev.Eval(item, env)
			if err != nil {
				return Value{}, err
			}
			args.Push(v, item.Pos())
		}
	}
	v, err := ev.Call(callee, args)
	if err != nil {
		return Value{}, attachPos(err, e.Callee.Pos())
	}
	return v, nil
}

// Call invokes fn with args. A closure runs in a fresh scope on top of
// its captured environment; the scope is popped on every exit path.
func (ev *Evaluator) Call(fn Value, args *Args) (Value, error) {
	f := fn.Func()
	if fn.Type != TypeFunc || f == nil {
		return Value{}, invalidf(args.Pos, "expected function, found %s", fn.Type)
	}
	if ev.MaxCallDepth > 0 && ev.depth >= ev.MaxCallDepth {
		return Value{}, invalidf(args.Pos, "maximum function call depth exceeded")
	}
	ev.depth++
	defer func() { ev.depth-- }()

	if f.Native != nil {
		return f.Native(ev, args)
	}

	cl := f.Closure
	scope := cl.Env.Fork()
	scope.Push()
	defer scope.Pop()
	if err := ev.bind(cl, args, scope); err != nil {
		return Value{}, err
	}
	v, err := ev.Eval(cl.Body, scope)
	var flow *flowSignal
	if errors.As(err, &flow) {
		if flow.kind == flowReturn {
			return flow.value, nil
		}
		return Value{}, flow.asError()
	}
	return v, err
}

// CallValues invokes fn with plain Go arguments. Named arguments are
// passed in key order.
func (ev *Evaluator) CallValues(fn Value, positional []Value, named map[string]Value) (Value, error) {
	args := NewArgs(parser.Position{})
	for _, v := range positional {
		args.Push(v, parser.Position{})
	}
	keys := make([]string, 0, len(named))
	for k := range named {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args.SetNamed(k, named[k], parser.Position{})
	}
	return ev.Call(fn, args)
}

func field(target Value, name string, pos parser.Position) (Value, error) {
	switch target.Type {
	case TypeDict:
		if v, ok := target.Dict().Get(name); ok {
			return v, nil
		}
		return Value{}, invalidf(pos, "dictionary does not contain key %q", name)
	case TypeModule:
		m := target.Module()
		if v, ok := m.Scope.Get(name); ok {
			return v, nil
		}
		return Value{}, invalidf(pos, "module %s does not contain %s", m.Name, name)
	case TypeArgs:
		switch name {
		case "pos":
			return ArrayValue(target.Args().Values()), nil
		case "named":
			return DictValue(target.Args().NamedDict()), nil
		}
		return Value{}, invalidf(pos, "arguments do not have field %s", name)
	}
	return Value{}, invalidf(pos, "cannot access field %s on %s", name, target.Type)
}

func (ev *Evaluator) evalUnary(e *parser.UnaryExpr, env *Env) (Value, error) {
	v, err := ev.Eval(e.Expr, env)
	if err != nil {
		return Value{}, err
	}
	switch e.Op {
	case parser.OpNeg:
		switch v.Type {
		case TypeInt:
			return IntValue(-v.Int()), nil
		case TypeFloat:
			return FloatValue(-v.Float()), nil
		}
		return Value{}, invalidf(e.Posn, "cannot negate %s", v.Type)
	default:
		if v.Type != TypeBool {
			return Value{}, invalidf(e.Posn, "expected bool, found %s", v.Type)
		}
		return BoolValue(!v.Bool()), nil
	}
}

func (ev *Evaluator) evalBinary(e *parser.BinaryExpr, env *Env) (Value, error) {
	l, err := ev.Eval(e.Left, env)
	if err != nil {
		return Value{}, err
	}
	if e.Op == parser.OpAnd || e.Op == parser.OpOr {
		if l.Type != TypeBool {
			return Value{}, invalidf(e.Left.Pos(), "expected bool, found %s", l.Type)
		}
		if l.Bool() == (e.Op == parser.OpOr) {
			return l, nil
		}
		r, err := ev.Eval(e.Right, env)
		if err != nil {
			return Value{}, err
		}
		if r.Type != TypeBool {
			return Value{}, invalidf(e.Right.Pos(), "expected bool, found %s", r.Type)
		}
		return r, nil
	}
	r, err := ev.Eval(e.Right, env)
	if err != nil {
		return Value{}, err
	}
	return binaryOp(e.Op, l, r, e.Posn)
}

func (ev *Evaluator) evalLet(e *parser.LetExpr, env *Env) error {
	if cl, ok := e.Init.(*parser.ClosureExpr); ok && cl.Name != "" && e.Pattern.Kind == parser.PatternIdent {
		pattern, err := ev.pattern(cl)
		if err != nil {
			return err
		}
		// The closure captures its own binding so it can recurse.
		cell := env.Define(e.Pattern.Name, None)
		cell.Value = MakeClosure(cl.Name, pattern, cl.Body, env)
		return nil
	}
	val := None
	if e.Init != nil {
		v, err := ev.Eval(e.Init, env)
		if err != nil {
			return err
		}
		val = v
	}
	return bindPattern(env, e.Pattern, val, BindLet)
}

func (ev *Evaluator) evalAssign(e *parser.AssignExpr, env *Env) error {
	val, err := ev.Eval(e.Expr, env)
	if err != nil {
		return err
	}
	if e.Op != parser.OpNone {
		cur, ok := env.Lookup(e.Name)
		if !ok {
			return unknownAt(e.Name, e.Posn)
		}
		val, err = binaryOp(e.Op, cur, val, e.Posn)
		if err != nil {
			return err
		}
	}
	if !env.Assign(e.Name, val) {
		return unknownAt(e.Name, e.Posn)
	}
	return nil
}

func unknownAt(name string, pos parser.Position) error {
	err := newError(UnknownVariable, name)
	err.Pos = pos
	return err
}

func (ev *Evaluator) condition(expr parser.Expr, env *Env) (bool, error) {
	v, err := ev.Eval(expr, env)
	if err != nil {
		return false, err
	}
	if v.Type != TypeBool {
		return false, invalidf(expr.Pos(), "expected bool, found %s", v.Type)
	}
	return v.Bool(), nil
}

func (ev *Evaluator) evalIf(e *parser.IfExpr, env *Env) (Value, error) {
	ok, err := ev.condition(e.Cond, env)
	if err != nil {
		return Value{}, err
	}
	if ok {
		return ev.EvalBlock(e.Then, env)
	}
	if e.Else == nil {
		return None, nil
	}
	return ev.Eval(e.Else, env)
}

// iterate runs one loop iteration in its own scope. It reports whether
// the loop should stop.
func (ev *Evaluator) iterate(body *parser.BlockExpr, env *Env, bind func(*Env) error, acc *Value) (bool, error) {
	env.Push()
	defer env.Pop()
	if bind != nil {
		if err := bind(env); err != nil {
			return true, err
		}
	}
	v, err := ev.evalStmts(body.Stmts, env)
	if err != nil {
		var flow *flowSignal
		if errors.As(err, &flow) {
			switch flow.kind {
			case flowBreak:
				return true, nil
			case flowContinue:
				return false, nil
			}
		}
		return true, err
	}
	*acc = Join(*acc, v)
	return false, nil
}

func (ev *Evaluator) evalWhile(e *parser.WhileExpr, env *Env) (Value, error) {
	acc := None
	for {
		ok, err := ev.condition(e.Cond, env)
		if err != nil {
			return Value{}, err
		}
		if !ok {
			return acc, nil
		}
		stop, err := ev.iterate(e.Body, env, nil, &acc)
		if err != nil {
			return Value{}, err
		}
		if stop {
			return acc, nil
		}
	}
}

func (ev *Evaluator) evalFor(e *parser.ForExpr, env *Env) (Value, error) {
	iterable, err := ev.Eval(e.Iter, env)
	if err != nil {
		return Value{}, err
	}
	items, err := iterItems(iterable, e.Iter.Pos())
	if err != nil {
		return Value{}, err
	}
	acc := None
	for _, item := range items {
		stop, err := ev.iterate(e.Body, env, func(scope *Env) error {
			return bindPattern(scope, e.Pattern, item, BindFor)
		}, &acc)
		if err != nil {
			return Value{}, err
		}
		if stop {
			break
		}
	}
	return acc, nil
}

func iterItems(v Value, pos parser.Position) ([]Value, error) {
	switch v.Type {
	case TypeArray:
		return v.Array(), nil
	case TypeArgs:
		return v.Args().Values(), nil
	case TypeStr:
		var out []Value
		for _, r := range v.Str() {
			out = append(out, StrValue(string(r)))
		}
		return out, nil
	case TypeDict:
		d := v.Dict()
		out := make([]Value, 0, d.Len())
		for _, k := range d.keys {
			out = append(out, ArrayValue([]Value{StrValue(k), d.values[k]}))
		}
		return out, nil
	}
	return nil, invalidf(pos, "cannot loop over %s", v.Type)
}

// BindLet binds a let-declared name in the current scope.
func BindLet(env *Env, name string, val Value) {
	env.Define(name, val)
}

// BindFor binds a loop variable in the current iteration's scope.
func BindFor(env *Env, name string, val Value) {
	env.Define(name, val)
}

// BindImport binds an imported name in the current scope.
func BindImport(env *Env, name string, val Value) {
	env.Define(name, val)
}

func bindPattern(env *Env, pat *parser.Pattern, val Value, define func(*Env, string, Value)) error {
	switch pat.Kind {
	case parser.PatternIdent:
		define(env, pat.Name, val)
		return nil
	case parser.PatternPlaceholder:
		return nil
	case parser.PatternRest:
		return invalidf(pat.Posn, "rest pattern is only allowed inside a destructuring pattern")
	}

	var items []Value
	switch val.Type {
	case TypeArray:
		items = val.Array()
	case TypeArgs:
		items = val.Args().Values()
	default:
		return invalidf(pat.Posn, "cannot destructure %s", val.Type)
	}

	rest := -1
	for i, sub := range pat.Items {
		if sub.Kind == parser.PatternRest {
			if rest >= 0 {
				return invalidf(sub.Posn, "only one rest pattern is allowed")
			}
			rest = i
		}
	}
	fixed := len(pat.Items)
	if rest >= 0 {
		fixed--
	}
	switch {
	case len(items) < fixed:
		return invalidf(pat.Posn, "not enough elements to destructure")
	case rest < 0 && len(items) > fixed:
		return invalidf(pat.Posn, "too many elements to destructure")
	}

	tail := len(pat.Items) - rest - 1
	for i, sub := range pat.Items {
		switch {
		case i == rest:
			if sub.Name != "" {
				collected := append([]Value(nil), items[rest:len(items)-tail]...)
				define(env, sub.Name, ArrayValue(collected))
			}
		case rest >= 0 && i > rest:
			if err := bindPattern(env, sub, items[len(items)-(len(pat.Items)-i)], define); err != nil {
				return err
			}
		default:
			if err := bindPattern(env, sub, items[i], define); err != nil {
				return err
			}
		}
	}
	return nil
}

func (ev *Evaluator) evalImport(e *parser.ImportExpr, env *Env) error {
	src, err := ev.Eval(e.Source, env)
	if err != nil {
		return err
	}
	var mod *Module
	switch src.Type {
	case TypeModule:
		mod = src.Module()
	case TypeStr:
		mod, err = ev.Import(src.Str())
		if err != nil {
			return attachPos(err, e.Source.Pos())
		}
	default:
		return invalidf(e.Source.Pos(), "expected path or module, found %s", src.Type)
	}

	switch {
	case e.Alias != "":
		BindImport(env, e.Alias, ModuleValue(mod))
	case e.Wildcard:
		for _, k := range mod.Scope.keys {
			BindImport(env, k, mod.Scope.values[k])
		}
	case len(e.Items) > 0:
		for _, item := range e.Items {
			v, ok := mod.Scope.Get(item.Name)
			if !ok {
				err := newError(ImportFailed, mod.Name)
				err.Pos = item.Posn
				err.Detail = fmt.Sprintf("module does not contain %s", item.Name)
				return err
			}
			BindImport(env, item.Local(), v)
		}
	default:
		if !isIdentifier(mod.Name) {
			return invalidf(e.Source.Pos(), "cannot determine binding name for module %q", mod.Name)
		}
		BindImport(env, mod.Name, ModuleValue(mod))
	}
	return nil
}

// Import resolves source through the Resolver, caching modules by source.
func (ev *Evaluator) Import(source string) (*Module, error) {
	if mod, ok := ev.modules[source]; ok {
		return mod, nil
	}
	fail := newError(ImportFailed, source)
	if ev.Resolver == nil {
		fail.Detail = "no module resolver configured"
		return nil, fail
	}
	if ev.importing[source] {
		fail.Detail = "cyclic import"
		return nil, fail
	}
	ev.importing[source] = true
	defer delete(ev.importing, source)

	mod, err := ev.Resolver.Resolve(ev, source)
	if err != nil {
		fail.Err = err
		return nil, fail
	}
	ev.modules[source] = mod
	return mod, nil
}

// EvalModule evaluates prog in an environment holding only the builtins
// and collects its top-level bindings. The builtins are copied into fresh
// cells, so assignments inside the module never reach the importer.
func (ev *Evaluator) EvalModule(name string, prog *parser.Program) (*Module, error) {
	base := ev.Builtins
	if base == nil {
		base = ev.Global
	}
	env := NewEnv()
	names := base.Names()
	for i := len(names) - 1; i >= 0; i-- {
		v, _ := base.Lookup(names[i])
		env.Define(names[i], v)
	}
	env.Push()
	defer env.Pop()
	if _, err := ev.EvalProgram(prog, env); err != nil {
		return nil, err
	}
	return &Module{Name: name, Scope: env.Locals()}, nil
}
