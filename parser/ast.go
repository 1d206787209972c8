package parser

// Position tracks a source location within a source file.
type Position struct {
	Offset int // zero-based byte offset
	Line   int // one-based line number
	Column int // one-based column number (rune count)
}

// Node represents any AST node with a source position.
type Node interface {
	Pos() Position
}

// Expr represents an expression. Statements are expressions too; those
// evaluated only for effect (let, import, loops) yield none.
type Expr interface {
	Node
	exprNode()
}

// Program is the root of a parsed source file.
type Program struct {
	Stmts []Expr
}

// BinaryOp enumerates infix operators.
type BinaryOp int

const (
	OpNone BinaryOp = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNeq
	OpLt
	OpLeq
	OpGt
	OpGeq
	OpAnd
	OpOr
	OpIn
)

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLeq:
		return "<="
	case OpGt:
		return ">"
	case OpGeq:
		return ">="
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpIn:
		return "in"
	default:
		return "?"
	}
}

// UnaryOp enumerates prefix operators.
type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpNot
)

// IdentExpr refers to a variable or function name.
type IdentExpr struct {
	Name string
	Posn Position
}

func (e *IdentExpr) Pos() Position { return e.Posn }
func (*IdentExpr) exprNode()       {}

// NoneExpr is the none literal.
type NoneExpr struct {
	Posn Position
}

func (e *NoneExpr) Pos() Position { return e.Posn }
func (*NoneExpr) exprNode()       {}

// BoolExpr is a boolean literal.
type BoolExpr struct {
	Value bool
	Posn  Position
}

func (e *BoolExpr) Pos() Position { return e.Posn }
func (*BoolExpr) exprNode()       {}

// IntExpr is an integer literal.
type IntExpr struct {
	Value int64
	Posn  Position
}

func (e *IntExpr) Pos() Position { return e.Posn }
func (*IntExpr) exprNode()       {}

// FloatExpr is a floating literal.
type FloatExpr struct {
	Value float64
	Posn  Position
}

func (e *FloatExpr) Pos() Position { return e.Posn }
func (*FloatExpr) exprNode()       {}

// StrExpr is a double-quoted string literal.
type StrExpr struct {
	Value string
	Posn  Position
}

func (e *StrExpr) Pos() Position { return e.Posn }
func (*StrExpr) exprNode()       {}

// NamedExpr is a `name: expr` pair inside a dictionary literal, an argument
// list or a parameter list. Quoted is set when the key was a string literal.
type NamedExpr struct {
	Name   string
	Quoted bool
	Expr   Expr
	Posn   Position
}

func (e *NamedExpr) Pos() Position { return e.Posn }
func (*NamedExpr) exprNode()       {}

// SpreadExpr is `..expr` inside a collection or argument list, or `..name`
// and a bare `..` inside a parameter list. Expr is nil for the bare form.
type SpreadExpr struct {
	Expr Expr
	Posn Position
}

func (e *SpreadExpr) Pos() Position { return e.Posn }
func (*SpreadExpr) exprNode()       {}

// ArrayExpr is a literal array (a, b, ...). Items may be SpreadExpr.
type ArrayExpr struct {
	Items []Expr
	Posn  Position
}

func (e *ArrayExpr) Pos() Position { return e.Posn }
func (*ArrayExpr) exprNode()       {}

// DictExpr is a literal dictionary (a: 1, ..). Items are NamedExpr or SpreadExpr.
type DictExpr struct {
	Items []Expr
	Posn  Position
}

func (e *DictExpr) Pos() Position { return e.Posn }
func (*DictExpr) exprNode()       {}

// BlockExpr is a braced sequence of statements with its own scope.
type BlockExpr struct {
	Stmts []Expr
	Posn  Position
}

func (e *BlockExpr) Pos() Position { return e.Posn }
func (*BlockExpr) exprNode()       {}

// ParamKind tags a parameter slot.
type ParamKind int

const (
	ParamPositional ParamKind = iota
	ParamNamed
	ParamSink
)

// Param is one entry of a closure parameter list as written in source.
type Param struct {
	Kind    ParamKind
	Name    string // empty for an anonymous sink
	Default Expr   // set for ParamNamed
	Posn    Position
}

// ClosureExpr is a function literal. Name is set for the `let f(..) = ..`
// shorthand so the closure can refer to itself.
type ClosureExpr struct {
	Name   string
	Params []Param
	Body   Expr
	Posn   Position
}

func (e *ClosureExpr) Pos() Position { return e.Posn }
func (*ClosureExpr) exprNode()       {}

// CallExpr invokes an expression with arguments. Args may contain
// NamedExpr and SpreadExpr items.
type CallExpr struct {
	Callee Expr
	Args   []Expr
	Posn   Position
}

func (e *CallExpr) Pos() Position { return e.Posn }
func (*CallExpr) exprNode()       {}

// FieldExpr accesses a field of a dictionary, module or argument set.
type FieldExpr struct {
	Target Expr
	Field  string
	Posn   Position
}

func (e *FieldExpr) Pos() Position { return e.Posn }
func (*FieldExpr) exprNode()       {}

// UnaryExpr represents prefix operator application.
type UnaryExpr struct {
	Op   UnaryOp
	Expr Expr
	Posn Position
}

func (e *UnaryExpr) Pos() Position { return e.Posn }
func (*UnaryExpr) exprNode()       {}

// BinaryExpr represents infix operator application.
type BinaryExpr struct {
	Op          BinaryOp
	Left, Right Expr
	Posn        Position
}

func (e *BinaryExpr) Pos() Position { return e.Posn }
func (*BinaryExpr) exprNode()       {}

// PatternKind tags a binding pattern.
type PatternKind int

const (
	PatternIdent PatternKind = iota
	PatternPlaceholder
	PatternDestructure
	PatternRest
)

// Pattern is the left-hand side of a let binding or a for loop.
type Pattern struct {
	Kind  PatternKind
	Name  string     // PatternIdent, and PatternRest when named
	Items []*Pattern // PatternDestructure
	Posn  Position
}

// Names lists the identifiers bound by the pattern in order.
func (p *Pattern) Names() []string {
	switch p.Kind {
	case PatternIdent:
		return []string{p.Name}
	case PatternRest:
		if p.Name != "" {
			return []string{p.Name}
		}
	case PatternDestructure:
		var out []string
		for _, item := range p.Items {
			out = append(out, item.Names()...)
		}
		return out
	}
	return nil
}

// LetExpr introduces bindings in the current scope. Init is nil for `let x`.
type LetExpr struct {
	Pattern *Pattern
	Init    Expr
	Posn    Position
}

func (e *LetExpr) Pos() Position { return e.Posn }
func (*LetExpr) exprNode()       {}

// AssignExpr mutates an existing binding. Op is OpNone for plain `=`.
type AssignExpr struct {
	Op   BinaryOp
	Name string
	Expr Expr
	Posn Position
}

func (e *AssignExpr) Pos() Position { return e.Posn }
func (*AssignExpr) exprNode()       {}

// IfExpr conditionally evaluates branches.
type IfExpr struct {
	Cond Expr
	Then *BlockExpr
	Else Expr // *BlockExpr, *IfExpr or nil
	Posn Position
}

func (e *IfExpr) Pos() Position { return e.Posn }
func (*IfExpr) exprNode()       {}

// WhileExpr repeats while condition is truthy.
type WhileExpr struct {
	Cond Expr
	Body *BlockExpr
	Posn Position
}

func (e *WhileExpr) Pos() Position { return e.Posn }
func (*WhileExpr) exprNode()       {}

// ForExpr iterates over a collection.
type ForExpr struct {
	Pattern *Pattern
	Iter    Expr
	Body    *BlockExpr
	Posn    Position
}

func (e *ForExpr) Pos() Position { return e.Posn }
func (*ForExpr) exprNode()       {}

// ImportItem is one `name` or `name as alias` of an import list.
type ImportItem struct {
	Name  string
	Alias string
	Posn  Position
}

// Local returns the name the item is bound to.
func (it ImportItem) Local() string {
	if it.Alias != "" {
		return it.Alias
	}
	return it.Name
}

// ImportExpr binds names from an external module into the current scope.
type ImportExpr struct {
	Source   Expr
	Alias    string
	Items    []ImportItem
	Wildcard bool
	Posn     Position
}

func (e *ImportExpr) Pos() Position { return e.Posn }
func (*ImportExpr) exprNode()       {}

// ReturnExpr exits the current function, optionally with a value.
type ReturnExpr struct {
	Result Expr // may be nil
	Posn   Position
}

func (e *ReturnExpr) Pos() Position { return e.Posn }
func (*ReturnExpr) exprNode()       {}

// BreakExpr exits the innermost loop.
type BreakExpr struct {
	Posn Position
}

func (e *BreakExpr) Pos() Position { return e.Posn }
func (*BreakExpr) exprNode()       {}

// ContinueExpr skips to the next iteration of the innermost loop.
type ContinueExpr struct {
	Posn Position
}

func (e *ContinueExpr) Pos() Position { return e.Posn }
func (*ContinueExpr) exprNode()       {}
