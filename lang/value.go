package lang

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sergev/lexa/parser"
)

// ValueType enumerates the different runtime value categories.
type ValueType int

const (
	TypeNone ValueType = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeStr
	TypeArray
	TypeDict
	TypeArgs
	TypeFunc
	TypeModule
)

func (t ValueType) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeStr:
		return "str"
	case TypeArray:
		return "array"
	case TypeDict:
		return "dictionary"
	case TypeArgs:
		return "arguments"
	case TypeFunc:
		return "function"
	case TypeModule:
		return "module"
	default:
		return "unknown"
	}
}

// Value represents any runtime object in the interpreter.
type Value struct {
	Type    ValueType
	payload interface{}
}

// Native is a built-in Go function exposed to the interpreter.
type Native func(ev *Evaluator, args *Args) (Value, error)

// Closure is a user-defined function with a captured environment.
type Closure struct {
	Pattern *Pattern
	Body    parser.Expr
	Env     *Env
}

// Func is a callable value: either a closure or a native.
type Func struct {
	Name    string
	Closure *Closure
	Native  Native
}

// Module is the result of evaluating an imported source.
type Module struct {
	Name  string
	Scope *Dict
}

// None is the absent value.
var None = Value{Type: TypeNone}

// BoolValue returns the boolean Value equivalent.
func BoolValue(b bool) Value {
	return Value{Type: TypeBool, payload: b}
}

// IntValue constructs an integer Value.
func IntValue(i int64) Value {
	return Value{Type: TypeInt, payload: i}
}

// FloatValue constructs a floating-point Value.
func FloatValue(f float64) Value {
	return Value{Type: TypeFloat, payload: f}
}

// StrValue constructs a string Value.
func StrValue(s string) Value {
	return Value{Type: TypeStr, payload: s}
}

// ArrayValue wraps items. The slice is owned by the value afterwards.
func ArrayValue(items []Value) Value {
	return Value{Type: TypeArray, payload: items}
}

// DictValue wraps a dictionary.
func DictValue(d *Dict) Value {
	return Value{Type: TypeDict, payload: d}
}

// ArgsValue wraps an argument set.
func ArgsValue(a *Args) Value {
	return Value{Type: TypeArgs, payload: a}
}

// NativeValue wraps a Go function.
func NativeValue(name string, fn Native) Value {
	return Value{Type: TypeFunc, payload: &Func{Name: name, Native: fn}}
}

// MakeClosure builds a closure value capturing env by shared reference.
func MakeClosure(name string, pattern *Pattern, body parser.Expr, env *Env) Value {
	return Value{
		Type: TypeFunc,
		payload: &Func{
			Name:    name,
			Closure: &Closure{Pattern: pattern, Body: body, Env: env.Fork()},
		},
	}
}

// ModuleValue wraps a module.
func ModuleValue(m *Module) Value {
	return Value{Type: TypeModule, payload: m}
}

func (v Value) IsNone() bool {
	return v.Type == TypeNone
}

func (v Value) Bool() bool {
	if b, ok := v.payload.(bool); ok {
		return b
	}
	return false
}

func (v Value) Int() int64 {
	if i, ok := v.payload.(int64); ok {
		return i
	}
	return 0
}

// Float returns the numeric value as float64 for both ints and floats.
func (v Value) Float() float64 {
	switch p := v.payload.(type) {
	case float64:
		return p
	case int64:
		return float64(p)
	}
	return 0
}

func (v Value) Str() string {
	if s, ok := v.payload.(string); ok {
		return s
	}
	return ""
}

func (v Value) Array() []Value {
	if a, ok := v.payload.([]Value); ok {
		return a
	}
	return nil
}

func (v Value) Dict() *Dict {
	if d, ok := v.payload.(*Dict); ok {
		return d
	}
	return nil
}

func (v Value) Args() *Args {
	if a, ok := v.payload.(*Args); ok {
		return a
	}
	return nil
}

func (v Value) Func() *Func {
	if f, ok := v.payload.(*Func); ok {
		return f
	}
	return nil
}

func (v Value) Module() *Module {
	if m, ok := v.payload.(*Module); ok {
		return m
	}
	return nil
}

func (v Value) isNumeric() bool {
	return v.Type == TypeInt || v.Type == TypeFloat
}

// String renders the value for display; strings are printed raw.
func (v Value) String() string {
	if v.Type == TypeStr {
		return v.Str()
	}
	return v.Repr()
}

// Repr renders the value as it would be written in source.
func (v Value) Repr() string {
	switch v.Type {
	case TypeNone:
		return "none"
	case TypeBool:
		return strconv.FormatBool(v.Bool())
	case TypeInt:
		return strconv.FormatInt(v.Int(), 10)
	case TypeFloat:
		return formatFloat(v.Float())
	case TypeStr:
		return strconv.Quote(v.Str())
	case TypeArray:
		return arrayRepr(v.Array())
	case TypeDict:
		return v.Dict().repr()
	case TypeArgs:
		return "arguments" + v.Args().repr()
	case TypeFunc:
		if name := v.Func().Name; name != "" {
			return "<function " + name + ">"
		}
		return "<function>"
	case TypeModule:
		return "<module " + v.Module().Name + ">"
	default:
		return "<unknown>"
	}
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.ContainsAny(s, ".eIN") {
		return s
	}
	return s + ".0"
}

func arrayRepr(items []Value) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(item.Repr())
	}
	if len(items) == 1 {
		b.WriteByte(',')
	}
	b.WriteByte(')')
	return b.String()
}

// Equal reports structural equality. Functions and modules compare by
// identity; ints and floats compare numerically.
func Equal(a, b Value) bool {
	if a.isNumeric() && b.isNumeric() {
		if a.Type == TypeInt && b.Type == TypeInt {
			return a.Int() == b.Int()
		}
		return a.Float() == b.Float()
	}
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TypeNone:
		return true
	case TypeBool:
		return a.Bool() == b.Bool()
	case TypeStr:
		return a.Str() == b.Str()
	case TypeArray:
		return valuesEqual(a.Array(), b.Array())
	case TypeDict:
		return a.Dict().equal(b.Dict())
	case TypeArgs:
		return a.Args().equal(b.Args())
	case TypeFunc:
		return a.Func() == b.Func()
	case TypeModule:
		return a.Module() == b.Module()
	}
	return false
}

func valuesEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Dict is an insertion-ordered string-keyed map.
type Dict struct {
	keys   []string
	values map[string]Value
}

// NewDict creates an empty dictionary.
func NewDict() *Dict {
	return &Dict{values: make(map[string]Value)}
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	return len(d.keys)
}

// Get returns the value stored under key.
func (d *Dict) Get(key string) (Value, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Set stores a value, keeping the original position of an existing key.
func (d *Dict) Set(key string, v Value) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Copy returns a shallow copy.
func (d *Dict) Copy() *Dict {
	out := NewDict()
	for _, k := range d.keys {
		out.Set(k, d.values[k])
	}
	return out
}

// Merge returns a copy of d with the entries of other added on top.
func (d *Dict) Merge(other *Dict) *Dict {
	out := d.Copy()
	for _, k := range other.keys {
		out.Set(k, other.values[k])
	}
	return out
}

func (d *Dict) equal(other *Dict) bool {
	if d.Len() != other.Len() {
		return false
	}
	for _, k := range d.keys {
		ov, ok := other.values[k]
		if !ok || !Equal(d.values[k], ov) {
			return false
		}
	}
	return true
}

func (d *Dict) repr() string {
	if d.Len() == 0 {
		return "(:)"
	}
	parts := make([]string, 0, d.Len())
	for _, k := range d.keys {
		parts = append(parts, fmt.Sprintf("%s: %s", dictKey(k), d.values[k].Repr()))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func dictKey(k string) string {
	if isIdentifier(k) {
		return k
	}
	return strconv.Quote(k)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
