package lang

import (
	"strings"

	"github.com/sergev/lexa/parser"
)

// Arg is one actual argument. Name is empty for positional arguments.
// Index is the argument's position in call order.
type Arg struct {
	Name  string
	Value Value
	Index int
	Pos   parser.Position

	spread bool
}

// Args holds the arguments of one call: positional items in order and
// named items in call order. Natives consume them through Expect, Eat and
// Named, then call Finish.
type Args struct {
	Pos    parser.Position
	Items  []Arg
	Kwargs []Arg

	count int
	next  int
}

// NewArgs creates an empty argument set for a call at pos.
func NewArgs(pos parser.Position) *Args {
	return &Args{Pos: pos}
}

// Push appends a positional argument.
func (a *Args) Push(v Value, pos parser.Position) {
	a.Items = append(a.Items, Arg{Value: v, Index: a.count, Pos: pos})
	a.count++
}

// PushNamed appends an explicitly named argument. It replaces a value that
// came from a spread; a name given explicitly twice is an error.
func (a *Args) PushNamed(name string, v Value, pos parser.Position) error {
	if i := a.lookup(name); i >= 0 {
		if !a.Kwargs[i].spread {
			err := newError(DuplicateNamedArgument, name)
			err.Index = a.count
			err.Pos = pos
			return err
		}
		a.Kwargs[i].Value = v
		a.Kwargs[i].Pos = pos
		a.Kwargs[i].spread = false
		return nil
	}
	a.Kwargs = append(a.Kwargs, Arg{Name: name, Value: v, Index: a.count, Pos: pos})
	a.count++
	return nil
}

// SetNamed stores a named argument, replacing an earlier one of the same
// name. Spread dictionaries go through here.
func (a *Args) SetNamed(name string, v Value, pos parser.Position) {
	if i := a.lookup(name); i >= 0 {
		a.Kwargs[i].Value = v
		a.Kwargs[i].Pos = pos
		a.Kwargs[i].spread = true
		return
	}
	a.Kwargs = append(a.Kwargs, Arg{Name: name, Value: v, Index: a.count, Pos: pos, spread: true})
	a.count++
}

// Spread expands an array, dictionary, argument set or none into a.
func (a *Args) Spread(v Value, pos parser.Position) error {
	switch v.Type {
	case TypeNone:
	case TypeArray:
		for _, item := range v.Array() {
			a.Push(item, pos)
		}
	case TypeDict:
		d := v.Dict()
		for _, k := range d.keys {
			a.SetNamed(k, d.values[k], pos)
		}
	case TypeArgs:
		other := v.Args()
		for _, item := range other.Items {
			a.Push(item.Value, pos)
		}
		for _, item := range other.Kwargs {
			a.SetNamed(item.Name, item.Value, pos)
		}
	default:
		return invalidf(pos, "cannot spread %s", v.Type)
	}
	return nil
}

func (a *Args) lookup(name string) int {
	for i, item := range a.Kwargs {
		if item.Name == name {
			return i
		}
	}
	return -1
}

// Values returns the positional values.
func (a *Args) Values() []Value {
	out := make([]Value, len(a.Items))
	for i, item := range a.Items {
		out[i] = item.Value
	}
	return out
}

// NamedDict returns the named values as a dictionary.
func (a *Args) NamedDict() *Dict {
	d := NewDict()
	for _, item := range a.Kwargs {
		d.Set(item.Name, item.Value)
	}
	return d
}

// Len returns the number of positional arguments not yet consumed.
func (a *Args) Len() int {
	return len(a.Items) - a.next
}

// Eat consumes the next positional argument if there is one.
func (a *Args) Eat() (Value, bool) {
	if a.next >= len(a.Items) {
		return Value{}, false
	}
	v := a.Items[a.next].Value
	a.next++
	return v, true
}

// Expect consumes the next positional argument, failing with
// MissingArgument naming what was expected.
func (a *Args) Expect(name string) (Value, error) {
	v, ok := a.Eat()
	if !ok {
		err := newError(MissingArgument, name)
		err.Pos = a.Pos
		return Value{}, err
	}
	return v, nil
}

// Rest consumes all remaining positional arguments.
func (a *Args) Rest() []Value {
	var out []Value
	for {
		v, ok := a.Eat()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

// Named removes and returns the named argument called name.
func (a *Args) Named(name string) (Value, bool) {
	i := a.lookup(name)
	if i < 0 {
		return Value{}, false
	}
	v := a.Kwargs[i].Value
	a.Kwargs = append(a.Kwargs[:i:i], a.Kwargs[i+1:]...)
	return v, true
}

// Finish fails with UnexpectedArgument if anything was left unconsumed.
func (a *Args) Finish() error {
	if a.next < len(a.Items) {
		return unexpectedArg(a.Items[a.next])
	}
	if len(a.Kwargs) > 0 {
		return unexpectedArg(a.Kwargs[0])
	}
	return nil
}

func unexpectedArg(arg Arg) error {
	err := newError(UnexpectedArgument, arg.Name)
	err.Index = arg.Index
	err.Pos = arg.Pos
	return err
}

// Clone returns a copy with a fresh consumption cursor.
func (a *Args) Clone() *Args {
	out := &Args{Pos: a.Pos, count: a.count}
	out.Items = append([]Arg(nil), a.Items...)
	out.Kwargs = append([]Arg(nil), a.Kwargs...)
	return out
}

func (a *Args) equal(other *Args) bool {
	if len(a.Items) != len(other.Items) || len(a.Kwargs) != len(other.Kwargs) {
		return false
	}
	for i := range a.Items {
		if !Equal(a.Items[i].Value, other.Items[i].Value) {
			return false
		}
	}
	for _, item := range a.Kwargs {
		j := other.lookup(item.Name)
		if j < 0 || !Equal(item.Value, other.Kwargs[j].Value) {
			return false
		}
	}
	return true
}

func (a *Args) repr() string {
	parts := make([]string, 0, len(a.Items)+len(a.Kwargs))
	for _, item := range a.Items {
		parts = append(parts, item.Value.Repr())
	}
	for _, item := range a.Kwargs {
		parts = append(parts, dictKey(item.Name)+": "+item.Value.Repr())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
