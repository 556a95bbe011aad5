package compiler

import "fmt"

// Expr is implemented by every AST node. Every node produces a value:
// a statement is an expression followed by ";".
type Expr interface {
	exprNode()
	String() string
}

// BinaryOp is the operator of a BinaryExpr.
// There is no greater-than: the parser swaps operands into OpLt / OpLe.
type BinaryOp int

const (
	OpAdd BinaryOp = iota // +
	OpSub                 // -
	OpMul                 // *
	OpDiv                 // /
	OpEq                  // ==
	OpNe                  // !=
	OpLt                  // <
	OpLe                  // <=
)

var binaryOpNames = [...]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
	OpEq:  "==",
	OpNe:  "!=",
	OpLt:  "<",
	OpLe:  "<=",
}

func (op BinaryOp) String() string {
	if int(op) >= 0 && int(op) < len(binaryOpNames) {
		return binaryOpNames[op]
	}
	return fmt.Sprintf("BinaryOp(%d)", int(op))
}

// IsComparison reports whether op yields a 0/1 truth value.
func (op BinaryOp) IsComparison() bool {
	return op >= OpEq
}

// Literal is an integer constant.
//
//	a = 10;
//	    ^^  Literal{Value: 10}
type Literal struct {
	Value int64
}

func (*Literal) exprNode()        {}
func (l *Literal) String() string { return fmt.Sprintf("%d", l.Value) }

// VarRef names one of the 26 frame slots.
//
//	a + 1
//	^  VarRef{Name: 'a', Offset: 8}
type VarRef struct {
	Name   byte
	Offset int // bytes below the frame base
}

func (*VarRef) exprNode()        {}
func (v *VarRef) String() string { return string(v.Name) }

// BinaryExpr represents Left Op Right.
//
//	x + 1
//	^ ^ ^
//	| | |
//	| | Right
//	| Op
//	Left
type BinaryExpr struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

// Assign stores Value into Target and yields the stored value.
type Assign struct {
	Target *VarRef
	Value  Expr
}

func (*Assign) exprNode() {}
func (a *Assign) String() string {
	return fmt.Sprintf("(%s = %s)", a.Target, a.Value)
}

// Program is the parsed statement list, one root per ";".
type Program struct {
	Stmts []Expr
	Vars  *SymbolTable
}
