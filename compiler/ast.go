package compiler

// In this file, we define all ast nodes of the algo programming language.
// A source file is a flat list of statements: assignments, expressions,
// conditions, while loops, function declarations and extern declarations.
// There is no package declaration and no import declaration.

// Ast is implemented by every node. The marker method keeps the set of
// node kinds closed to this package.
type Ast interface {
	aAst()
}

// GlobalAst is the root node, one per source file.
type GlobalAst struct {
	Statements []Ast
}

// TypeRef is a type name as written in the source, before any semantic
// resolution. int[] carries IsArray instead of a distinct name.
type TypeRef struct {
	Name    string
	IsArray bool
}

// VariableAst is a variable reference, optionally carrying the type it
// was written with, as in "count: int".
type VariableAst struct {
	Name string
	Type *TypeRef
}

// FuncHeaderAst is a signature without a body, produced by a declare
// statement. An empty ReturnType means the function returns nothing.
type FuncHeaderAst struct {
	Name       string
	Params     []*VariableAst
	ReturnType string
}

// FuncDeclAst is a function declaration with its body.
type FuncDeclAst struct {
	Name       string
	Params     []*VariableAst
	ReturnType string
	Body       []Ast
}

type FuncCallAst struct {
	Name string
	Args []Ast
}

// CondAst is an if statement. An else-if chain nests another CondAst as
// the only element of Else.
type CondAst struct {
	Condition Ast
	Then      []Ast
	Else      []Ast
}

type WhileAst struct {
	Condition Ast
	Body      []Ast
}

// ReturnAst carries a nil Value for a bare return.
type ReturnAst struct {
	Value Ast
}

// AssignAst target is a VariableAst or an ArrayAccessAst.
type AssignAst struct {
	Target Ast
	Value  Ast
}

type BinaryAst struct {
	Op    OpCode
	Left  Ast
	Right Ast
}

type UnaryAst struct {
	Op    OpCode
	Child Ast
}

type IntAst struct {
	Value int64
}

type FloatAst struct {
	Value float64
}

type BoolAst struct {
	Value bool
}

type StringAst struct {
	Value string
}

type ArrayAst struct {
	Elements []Ast
}

// ArrayAccessAst is a read or write of one array cell at a constant
// offset, like arr[2]. Non constant indexes never reach this node.
type ArrayAccessAst struct {
	Name   string
	Offset int64
}

func (*GlobalAst) aAst()      {}
func (*VariableAst) aAst()    {}
func (*FuncHeaderAst) aAst()  {}
func (*FuncDeclAst) aAst()    {}
func (*FuncCallAst) aAst()    {}
func (*CondAst) aAst()        {}
func (*WhileAst) aAst()       {}
func (*ReturnAst) aAst()      {}
func (*AssignAst) aAst()      {}
func (*BinaryAst) aAst()      {}
func (*UnaryAst) aAst()       {}
func (*IntAst) aAst()         {}
func (*FloatAst) aAst()       {}
func (*BoolAst) aAst()        {}
func (*StringAst) aAst()      {}
func (*ArrayAst) aAst()       {}
func (*ArrayAccessAst) aAst() {}

type OpCode int

const (
	AddOpTP OpCode = iota
	SubtractOpTP
	MultiplyOpTP
	DivideOpTP
	ModuloOpTP
	GreaterOpTP
	LessOpTP
	GreaterEqualOpTP
	LessEqualOpTP
	EqualOpTP
	NotEqualOpTP

	// Unary op
	UnaryMinusOpTP
	UnaryPlusOpTP
)

var opCodeSymbols = map[OpCode]string{
	AddOpTP:          "+",
	SubtractOpTP:     "-",
	MultiplyOpTP:     "*",
	DivideOpTP:       "/",
	ModuloOpTP:       "%",
	GreaterOpTP:      ">",
	LessOpTP:         "<",
	GreaterEqualOpTP: ">=",
	LessEqualOpTP:    "<=",
	EqualOpTP:        "==",
	NotEqualOpTP:     "!=",
	UnaryMinusOpTP:   "-",
	UnaryPlusOpTP:    "+",
}

func (op OpCode) String() string {
	return opCodeSymbols[op]
}

// binaryOpCodes maps binary operator spellings to op codes. Assignment
// reduces to its own node before this map is consulted, and "!" lexes as
// a binary operator without an implementation here, the reducer reports
// it when it shows up.
var binaryOpCodes = map[string]OpCode{
	"+":  AddOpTP,
	"-":  SubtractOpTP,
	"*":  MultiplyOpTP,
	"/":  DivideOpTP,
	"%":  ModuloOpTP,
	">":  GreaterOpTP,
	"<":  LessOpTP,
	">=": GreaterEqualOpTP,
	"<=": LessEqualOpTP,
	"==": EqualOpTP,
	"!=": NotEqualOpTP,
}

// operatorPrecedence orders the stacking of operators while building an
// expression. Unary operators bind tighter than any binary one, and the
// comparison operators fall back to -1 so that everything already on the
// stack reduces before them.
func operatorPrecedence(token *Token) int {
	if token.tp == UnaryOperatorTP {
		return 4
	}
	if token.tp != BinaryOperatorTP {
		return -1
	}
	switch token.content {
	case "+", "-":
		return 1
	case "%":
		return 2
	case "*", "/":
		return 3
	case "<-":
		return 0
	}
	return -1
}
