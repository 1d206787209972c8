package lang

import (
	"strings"

	"github.com/sergev/lexa/parser"
)

// SlotKind tags a parameter slot.
type SlotKind int

const (
	SlotPositional SlotKind = iota
	SlotNamed
	SlotSink
)

// Slot is one formal parameter. Default is only set for SlotNamed; Name is
// empty for an anonymous sink.
type Slot struct {
	Kind    SlotKind
	Name    string
	Default parser.Expr
	Pos     parser.Position
}

// Pattern is a validated parameter list.
type Pattern struct {
	Slots      []Slot
	sink       int
	positional int
}

// NewPattern validates params: names must be unique and at most one sink
// may appear.
func NewPattern(params []parser.Param) (*Pattern, error) {
	p := &Pattern{
		Slots: make([]Slot, 0, len(params)),
		sink:  -1,
	}
	seen := make(map[string]bool, len(params))
	for _, param := range params {
		slot := Slot{Name: param.Name, Pos: param.Posn}
		switch param.Kind {
		case parser.ParamPositional:
			slot.Kind = SlotPositional
			p.positional++
		case parser.ParamNamed:
			slot.Kind = SlotNamed
			slot.Default = param.Default
		case parser.ParamSink:
			if p.sink >= 0 {
				return nil, &Error{
					Kind:   MalformedParameterPattern,
					Index:  -1,
					Pos:    param.Posn,
					Detail: "only one argument sink is allowed",
				}
			}
			slot.Kind = SlotSink
			p.sink = len(p.Slots)
		}
		if slot.Name == "" && slot.Kind != SlotSink {
			return nil, &Error{
				Kind:   MalformedParameterPattern,
				Index:  -1,
				Pos:    param.Posn,
				Detail: "expected identifier",
			}
		}
		if slot.Name != "" {
			if seen[slot.Name] {
				err := newError(DuplicateParameterName, slot.Name)
				err.Pos = param.Posn
				return nil, err
			}
			seen[slot.Name] = true
		}
		p.Slots = append(p.Slots, slot)
	}
	return p, nil
}

// Sink returns the sink slot, if any.
func (p *Pattern) Sink() (Slot, bool) {
	if p.sink < 0 {
		return Slot{}, false
	}
	return p.Slots[p.sink], true
}

func (p *Pattern) String() string {
	parts := make([]string, len(p.Slots))
	for i, s := range p.Slots {
		switch s.Kind {
		case SlotPositional:
			parts[i] = s.Name
		case SlotNamed:
			parts[i] = s.Name + ": .."
		case SlotSink:
			parts[i] = ".." + s.Name
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
