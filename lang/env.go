package lang

// Cell is the storage slot of a single binding. Closures that capture a
// binding share its cell, so assignments are visible through all of them.
type Cell struct {
	Value Value
}

type binding struct {
	name string
	cell *Cell
	next *binding
}

// Env is a lexical environment. Bindings form a persistent linked chain,
// innermost first; scopes are delimited by marks recorded on Push.
type Env struct {
	head  *binding
	marks []*binding
}

// NewEnv creates an empty environment.
func NewEnv() *Env {
	return &Env{}
}

// Push opens a new innermost scope.
func (e *Env) Push() {
	e.marks = append(e.marks, e.head)
}

// Pop discards the innermost scope and every binding defined in it.
func (e *Env) Pop() {
	l := len(e.marks)
	if l == 0 {
		panic("lang: Env.Pop without matching Push")
	}
	e.head = e.marks[l-1]
	e.marks = e.marks[:l-1]
}

// Depth returns the number of scopes opened with Push and not yet popped.
func (e *Env) Depth() int {
	return len(e.marks)
}

// Define binds name to val in the innermost scope, shadowing any outer
// binding of the same name.
func (e *Env) Define(name string, val Value) *Cell {
	cell := &Cell{Value: val}
	e.head = &binding{name: name, cell: cell, next: e.head}
	return cell
}

// Lookup retrieves the value of the nearest binding of name.
func (e *Env) Lookup(name string) (Value, bool) {
	if cell := e.find(name); cell != nil {
		return cell.Value, true
	}
	return Value{}, false
}

// Assign updates the nearest existing binding. It reports false, and
// creates nothing, when name is unbound.
func (e *Env) Assign(name string, val Value) bool {
	cell := e.find(name)
	if cell == nil {
		return false
	}
	cell.Value = val
	return true
}

func (e *Env) find(name string) *Cell {
	for b := e.head; b != nil; b = b.next {
		if b.name == name {
			return b.cell
		}
	}
	return nil
}

// Fork returns an environment sharing every binding visible now. Bindings
// defined later on either side are not seen by the other.
func (e *Env) Fork() *Env {
	return &Env{head: e.head}
}

// Names lists every visible name once, innermost first.
func (e *Env) Names() []string {
	seen := make(map[string]bool)
	var out []string
	for b := e.head; b != nil; b = b.next {
		if seen[b.name] {
			continue
		}
		seen[b.name] = true
		out = append(out, b.name)
	}
	return out
}

// Locals collects the bindings of the innermost scope in definition order.
// A name defined more than once keeps its latest value.
func (e *Env) Locals() *Dict {
	var stop *binding
	if l := len(e.marks); l > 0 {
		stop = e.marks[l-1]
	}
	var chain []*binding
	for b := e.head; b != stop; b = b.next {
		chain = append(chain, b)
	}
	out := NewDict()
	for i := len(chain) - 1; i >= 0; i-- {
		out.Set(chain[i].name, chain[i].cell.Value)
	}
	return out
}
