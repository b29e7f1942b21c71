// Package constopt implements the ConstantOptimiser of spec §4.4: an
// in-place AST rewrite that propagates literal values into uses and
// folds pure-literal expressions, iterated to a fixed point.
//
// Grounded on the teacher's src/constexpr (global constant evaluation
// over its own IR) for the general propagate-then-fold shape; the
// per-scope environment threading below is new, since the teacher's
// version evaluates whole-program constants rather than flow-sensitive
// local variables. Per spec §9's design note, this implementation
// treats "iterate while any rewrite occurred" as the fixed-point
// contract, since no fixture in the pack contradicts that reading and
// the stated invariant directs implementers to prefer it.
package constopt

import "github.com/marco-vb/jmmc/internal/ast"

// environment binds a variable name to the literal node currently
// known to hold its value, for one straight-line scope.
type environment map[string]*ast.Node

func (e environment) clone() environment {
	c := make(environment, len(e))
	for k, v := range e {
		c[k] = v
	}
	return c
}

// Run rewrites program in place, iterating propagate+fold to a fixed
// point (spec §4.4).
func Run(program *ast.Node) {
	for {
		changed := propagateProgram(program)
		changed = foldProgram(program) || changed
		if !changed {
			return
		}
	}
}

func propagateProgram(program *ast.Node) bool {
	changed := false
	for _, m := range program.ClassDecl().Methods() {
		env := environment{}
		changed = propagateStmts(m.MethodBody(), env) || changed
	}
	return changed
}

func propagateStmts(stmts []*ast.Node, env environment) bool {
	changed := false
	for _, s := range stmts {
		changed = propagateStmt(s, env) || changed
	}
	return changed
}

func propagateStmt(s *ast.Node, env environment) bool {
	if s == nil {
		return false
	}
	switch s.Kind {
	case ast.AssignStmt:
		rhs := s.Child(1)
		newRhs, changed := substitute(rhs, env)
		if changed {
			s.Children[1] = newRhs
		}
		name := s.Child(0).Name
		if isLiteral(newRhs) {
			env[name] = newRhs
		} else {
			delete(env, name)
		}
		return changed

	case ast.ArrayAssignStmt:
		changed := false
		if newIdx, ch := substitute(s.Child(1), env); ch {
			s.Children[1] = newIdx
			changed = true
		}
		if newRhs, ch := substitute(s.Child(2), env); ch {
			s.Children[2] = newRhs
			changed = true
		}
		return changed

	case ast.IfElseStmt:
		changed := false
		if newCond, ch := substitute(s.Child(0), env); ch {
			s.Children[0] = newCond
			changed = true
		}
		thenStmt, elseStmt := s.Child(1), s.Child(2)

		thenEnv := env.clone()
		changed = propagateStmt(thenStmt, thenEnv) || changed

		elseEnv := env.clone()
		if elseStmt != nil {
			changed = propagateStmt(elseStmt, elseEnv) || changed
		}

		for name := range namesAssignedIn(thenStmt) {
			delete(env, name)
		}
		for name := range namesAssignedIn(elseStmt) {
			delete(env, name)
		}
		return changed

	case ast.WhileStmt:
		changed := false
		body := s.Child(1)
		mutated := namesAssignedIn(body)

		bodyEnv := env.clone()
		for name := range mutated {
			delete(bodyEnv, name)
		}
		if newCond, ch := substitute(s.Child(0), bodyEnv); ch {
			s.Children[0] = newCond
			changed = true
		}
		changed = propagateStmt(body, bodyEnv) || changed

		for name := range mutated {
			delete(env, name)
		}
		return changed

	case ast.ScopeStmt:
		return propagateStmts(s.Children, env)

	case ast.ReturnStmt:
		expr := s.Child(0)
		if expr == nil {
			return false
		}
		newExpr, changed := substitute(expr, env)
		if changed {
			s.Children[0] = newExpr
		}
		return changed

	case ast.ExpressionStmt:
		expr := s.Child(0)
		newExpr, changed := substitute(expr, env)
		if changed {
			s.Children[0] = newExpr
		}
		return changed
	}
	return false
}

// substitute replaces every bound VarRefExpr/Identifier under n with a
// clone of its bound literal, returning the (possibly new) node and
// whether anything changed.
func substitute(n *ast.Node, env environment) (*ast.Node, bool) {
	if n == nil {
		return nil, false
	}
	if n.Kind == ast.VarRefExpr || n.Kind == ast.Identifier {
		if lit, ok := env[n.Name]; ok {
			return lit.Clone(), true
		}
		return n, false
	}
	changed := false
	for i, c := range n.Children {
		nc, ch := substitute(c, env)
		if ch {
			n.Children[i] = nc
			changed = true
		}
	}
	return n, changed
}

// namesAssignedIn collects every name directly assigned by an
// AssignStmt anywhere in stmt's subtree (ArrayAssignStmt does not
// rebind a scalar's identity, so it is not collected here).
func namesAssignedIn(stmt *ast.Node) map[string]bool {
	out := map[string]bool{}
	var walk func(*ast.Node)
	walk = func(n *ast.Node) {
		if n == nil {
			return
		}
		if n.Kind == ast.AssignStmt {
			out[n.Child(0).Name] = true
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(stmt)
	return out
}

func isLiteral(n *ast.Node) bool {
	return n != nil && (n.Kind == ast.IntegerLiteral || n.Kind == ast.BooleanLiteral)
}
