package lang

import (
	"cmp"
	"strings"

	"github.com/sergev/lexa/parser"
)

// Join combines the values of consecutive statements in a block: none
// is the identity, strings and arrays concatenate, dictionaries merge and
// anything else is replaced by the later value.
func Join(acc, v Value) Value {
	switch {
	case v.Type == TypeNone:
		return acc
	case acc.Type == TypeNone:
		return v
	case acc.Type == TypeStr && v.Type == TypeStr:
		return StrValue(acc.Str() + v.Str())
	case acc.Type == TypeArray && v.Type == TypeArray:
		return ArrayValue(concat(acc.Array(), v.Array()))
	case acc.Type == TypeDict && v.Type == TypeDict:
		return DictValue(acc.Dict().Merge(v.Dict()))
	}
	return v
}

func concat(a, b []Value) []Value {
	out := make([]Value, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// binaryOp applies every non short-circuit operator.
func binaryOp(op parser.BinaryOp, l, r Value, pos parser.Position) (Value, error) {
	switch op {
	case parser.OpAdd:
		return add(l, r, pos)
	case parser.OpSub, parser.OpMul, parser.OpDiv:
		return arith(op, l, r, pos)
	case parser.OpEq:
		return BoolValue(Equal(l, r)), nil
	case parser.OpNeq:
		return BoolValue(!Equal(l, r)), nil
	case parser.OpLt, parser.OpLeq, parser.OpGt, parser.OpGeq:
		return compare(op, l, r, pos)
	case parser.OpIn:
		return contains(l, r, pos)
	}
	return Value{}, invalidf(pos, "unsupported operator %s", op)
}

func add(l, r Value, pos parser.Position) (Value, error) {
	switch {
	case l.Type == TypeInt && r.Type == TypeInt:
		return IntValue(l.Int() + r.Int()), nil
	case l.isNumeric() && r.isNumeric():
		return FloatValue(l.Float() + r.Float()), nil
	case l.Type == TypeStr && r.Type == TypeStr:
		return StrValue(l.Str() + r.Str()), nil
	case l.Type == TypeArray && r.Type == TypeArray:
		return ArrayValue(concat(l.Array(), r.Array())), nil
	case l.Type == TypeDict && r.Type == TypeDict:
		return DictValue(l.Dict().Merge(r.Dict())), nil
	}
	return Value{}, invalidf(pos, "cannot add %s to %s", r.Type, l.Type)
}

func arith(op parser.BinaryOp, l, r Value, pos parser.Position) (Value, error) {
	if op == parser.OpMul {
		if v, ok := repeat(l, r); ok {
			return v, nil
		}
		if v, ok := repeat(r, l); ok {
			return v, nil
		}
	}
	if !l.isNumeric() || !r.isNumeric() {
		return Value{}, invalidf(pos, "cannot apply %s to %s and %s", op, l.Type, r.Type)
	}
	if op == parser.OpDiv {
		if r.Float() == 0 {
			return Value{}, invalidf(pos, "cannot divide by zero")
		}
		return FloatValue(l.Float() / r.Float()), nil
	}
	if l.Type == TypeInt && r.Type == TypeInt {
		if op == parser.OpSub {
			return IntValue(l.Int() - r.Int()), nil
		}
		return IntValue(l.Int() * r.Int()), nil
	}
	if op == parser.OpSub {
		return FloatValue(l.Float() - r.Float()), nil
	}
	return FloatValue(l.Float() * r.Float()), nil
}

func repeat(seq, n Value) (Value, bool) {
	if n.Type != TypeInt || n.Int() < 0 {
		return Value{}, false
	}
	count := int(n.Int())
	switch seq.Type {
	case TypeStr:
		return StrValue(strings.Repeat(seq.Str(), count)), true
	case TypeArray:
		items := seq.Array()
		out := make([]Value, 0, len(items)*count)
		for i := 0; i < count; i++ {
			out = append(out, items...)
		}
		return ArrayValue(out), true
	}
	return Value{}, false
}

func compare(op parser.BinaryOp, l, r Value, pos parser.Position) (Value, error) {
	var c int
	switch {
	case l.Type == TypeInt && r.Type == TypeInt:
		c = cmp.Compare(l.Int(), r.Int())
	case l.isNumeric() && r.isNumeric():
		c = cmp.Compare(l.Float(), r.Float())
	case l.Type == TypeStr && r.Type == TypeStr:
		c = strings.Compare(l.Str(), r.Str())
	default:
		return Value{}, invalidf(pos, "cannot compare %s with %s", l.Type, r.Type)
	}
	switch op {
	case parser.OpLt:
		return BoolValue(c < 0), nil
	case parser.OpLeq:
		return BoolValue(c <= 0), nil
	case parser.OpGt:
		return BoolValue(c > 0), nil
	default:
		return BoolValue(c >= 0), nil
	}
}

func contains(needle, haystack Value, pos parser.Position) (Value, error) {
	switch haystack.Type {
	case TypeStr:
		if needle.Type != TypeStr {
			return Value{}, invalidf(pos, "cannot search for %s in str", needle.Type)
		}
		return BoolValue(strings.Contains(haystack.Str(), needle.Str())), nil
	case TypeArray:
		for _, item := range haystack.Array() {
			if Equal(item, needle) {
				return BoolValue(true), nil
			}
		}
		return BoolValue(false), nil
	case TypeDict:
		if needle.Type != TypeStr {
			return Value{}, invalidf(pos, "dictionary keys are strings, found %s", needle.Type)
		}
		_, ok := haystack.Dict().Get(needle.Str())
		return BoolValue(ok), nil
	}
	return Value{}, invalidf(pos, "cannot search in %s", haystack.Type)
}
