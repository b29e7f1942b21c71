package constopt

import (
	"strconv"

	"github.com/marco-vb/jmmc/internal/ast"
)

func foldProgram(program *ast.Node) bool {
	_, changed := fold(program)
	return changed
}

// fold recurses into every child first, then attempts a node-level
// fold of n itself when n is a BinaryExpr/UnaryExpr/ParenExpr whose
// operand(s) are now literal. Reference/array node kinds (NewExpr,
// NewArrayExpr, ArrayExpr, ArrayAccessExpr, FuncExpr, MemberExpr) are
// never folded themselves (spec §4.4), though their subexpressions
// still get folded by the child recursion above.
func fold(n *ast.Node) (*ast.Node, bool) {
	if n == nil {
		return nil, false
	}
	changed := false
	for i, c := range n.Children {
		nc, ch := fold(c)
		if ch {
			n.Children[i] = nc
			changed = true
		}
	}

	switch n.Kind {
	case ast.ParenExpr:
		if isLiteral(n.Child(0)) {
			return n.Child(0), true
		}
		return n, changed
	case ast.UnaryExpr:
		if child := n.Child(0); child.Kind == ast.BooleanLiteral {
			return boolLit(!child.BoolValue()), true
		}
		return n, changed
	case ast.BinaryExpr:
		if lit, ok := foldBinary(n); ok {
			return lit, true
		}
		return n, changed
	}
	return n, changed
}

func foldBinary(n *ast.Node) (*ast.Node, bool) {
	l, r := n.Child(0), n.Child(1)
	switch n.Op {
	case "+", "-", "*", "/":
		if l.Kind != ast.IntegerLiteral || r.Kind != ast.IntegerLiteral {
			return nil, false
		}
		a, b := l.IntValue(), r.IntValue()
		switch n.Op {
		case "+":
			return intLit(a + b), true
		case "-":
			return intLit(a - b), true
		case "*":
			return intLit(a * b), true
		case "/":
			if b == 0 {
				// Division by zero is not folded; runtime semantics govern (spec §9).
				return nil, false
			}
			return intLit(a / b), true
		}
	case "<", "<=", ">", ">=", "==":
		if l.Kind != ast.IntegerLiteral || r.Kind != ast.IntegerLiteral {
			return nil, false
		}
		a, b := l.IntValue(), r.IntValue()
		switch n.Op {
		case "<":
			return boolLit(a < b), true
		case "<=":
			return boolLit(a <= b), true
		case ">":
			return boolLit(a > b), true
		case ">=":
			return boolLit(a >= b), true
		case "==":
			return boolLit(a == b), true
		}
	case "&&", "||":
		if l.Kind != ast.BooleanLiteral || r.Kind != ast.BooleanLiteral {
			return nil, false
		}
		a, b := l.BoolValue(), r.BoolValue()
		if n.Op == "&&" {
			return boolLit(a && b), true
		}
		return boolLit(a || b), true
	}
	return nil, false
}

func intLit(v int32) *ast.Node {
	return &ast.Node{Kind: ast.IntegerLiteral, Value: strconv.FormatInt(int64(v), 10)}
}

func boolLit(v bool) *ast.Node {
	if v {
		return &ast.Node{Kind: ast.BooleanLiteral, Value: "true"}
	}
	return &ast.Node{Kind: ast.BooleanLiteral, Value: "false"}
}
