package lang

type source int

const (
	fromMissing source = iota
	fromPositional
	fromNamed
	fromDefault
	fromSink
)

type fill struct {
	src source
	arg int
}

// plan decides where every slot of p takes its value from, without
// evaluating anything. It returns the first binding error in the order
// unexpected positional, unexpected named, missing.
func (p *Pattern) plan(args *Args) ([]fill, *Args, error) {
	fills := make([]fill, len(p.Slots))
	usedNamed := make([]bool, len(args.Kwargs))

	for i, slot := range p.Slots {
		if slot.Kind != SlotNamed {
			continue
		}
		if j := args.lookup(slot.Name); j >= 0 {
			fills[i] = fill{src: fromNamed, arg: j}
			usedNamed[j] = true
		}
	}

	next := 0
	pending := p.positional
	for i, slot := range p.Slots {
		switch slot.Kind {
		case SlotPositional:
			pending--
			if next < len(args.Items) {
				fills[i] = fill{src: fromPositional, arg: next}
				next++
			}
		case SlotNamed:
			if fills[i].src == fromNamed {
				continue
			}
			// A named slot only takes a positional argument that no pure
			// positional slot after it still needs.
			if len(args.Items)-next > pending {
				fills[i] = fill{src: fromPositional, arg: next}
				next++
			} else {
				fills[i] = fill{src: fromDefault}
			}
		case SlotSink:
			fills[i] = fill{src: fromSink}
		}
	}

	var sink *Args
	if p.sink >= 0 {
		sink = &Args{Pos: args.Pos}
	}

	for _, item := range args.Items[next:] {
		if sink == nil {
			return nil, nil, unexpectedArg(item)
		}
		sink.Items = append(sink.Items, item)
	}
	for j, item := range args.Kwargs {
		if usedNamed[j] {
			continue
		}
		if sink == nil {
			return nil, nil, unexpectedArg(item)
		}
		sink.Kwargs = append(sink.Kwargs, item)
	}
	if sink != nil {
		sink.count = len(sink.Items) + len(sink.Kwargs)
	}

	for i, slot := range p.Slots {
		if fills[i].src == fromMissing {
			err := newError(MissingArgument, slot.Name)
			err.Pos = args.Pos
			return nil, nil, err
		}
	}
	return fills, sink, nil
}

// bind defines every parameter of cl in scope, which must already have a
// fresh scope pushed on top of the captured environment. Defaults are
// evaluated in scope, so they see the captured environment and the
// parameters bound before them, never the caller's environment.
func (ev *Evaluator) bind(cl *Closure, args *Args, scope *Env) error {
	fills, sink, err := cl.Pattern.plan(args)
	if err != nil {
		return err
	}
	for i, slot := range cl.Pattern.Slots {
		var val Value
		switch fills[i].src {
		case fromPositional:
			val = args.Items[fills[i].arg].Value
		case fromNamed:
			val = args.Kwargs[fills[i].arg].Value
		case fromDefault:
			if slot.Default == nil {
				val = None
				break
			}
			val, err = ev.Eval(slot.Default, scope)
			if err != nil {
				return err
			}
		case fromSink:
			if slot.Name == "" {
				continue
			}
			val = ArgsValue(sink)
		}
		scope.Define(slot.Name, val)
	}
	return nil
}
