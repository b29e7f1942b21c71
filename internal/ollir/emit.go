// Package ollir implements the OllirEmitter of spec §4.6: it walks the
// AST once ConstantOptimiser and VarargsLowerer have rewritten it, and
// produces the textual OLLIR program of spec §3/§6. Expressions are
// linearised to a (computation, code) pair exactly as §4.6 describes;
// statements append their computation directly to the method body and
// contribute one further terminating statement of their own.
//
// Grounded on the teacher's frontend/gen (the source's OLLIR-shaped
// code generator) for the overall "walk statements, accumulate lines,
// number temporaries/labels with package-level counters" shape;
// generalized here to carry the counters on an Emitter value instead
// of mpc's package-global ones, per spec §5 and §9's reentrancy note.
package ollir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/marco-vb/jmmc/internal/ast"
	"github.com/marco-vb/jmmc/internal/symbols"
	"github.com/marco-vb/jmmc/internal/types"
)

// Emitter holds the monotonic temporary/label counters for one
// compilation (spec §5: process-wide in the source, scoped per
// instance here so a driver embedding this package stays reentrant).
type Emitter struct {
	table  *symbols.Table
	engine *types.Engine

	tempN  int
	labelN int
}

func New(table *symbols.Table, engine *types.Engine) *Emitter {
	return &Emitter{table: table, engine: engine}
}

// Emit produces the full OLLIR program text for program's class.
func Emit(program *ast.Node, table *symbols.Table, engine *types.Engine) string {
	return New(table, engine).EmitProgram(program)
}

func (e *Emitter) freshTemp() string {
	e.tempN++
	return "t" + strconv.Itoa(e.tempN)
}

func (e *Emitter) freshLabel(tag string) string {
	e.labelN++
	return "L_" + tag + strconv.Itoa(e.labelN)
}

// EmitProgram emits imports, the class header, fields, the canonical
// constructor and every method, in that order (spec §4.6, §6).
func (e *Emitter) EmitProgram(program *ast.Node) string {
	var b strings.Builder
	for _, imp := range program.Imports() {
		b.WriteString("import " + imp.Name + ";\n")
	}

	class := program.ClassDecl()
	b.WriteString(class.Name)
	if class.Ext != "" {
		b.WriteString(" extends " + class.Ext)
	} else {
		b.WriteString(" extends Object")
	}
	b.WriteString(" {\n")

	for _, f := range class.Fields() {
		b.WriteString(".field public " + f.Name + "." + typeSuffix(f.VarType().AsType()) + ";\n")
	}

	b.WriteString(".construct " + class.Name + "().V {\n")
	b.WriteString("invokespecial(this, \"<init>\").V;\n")
	b.WriteString("}\n")

	for _, m := range class.Methods() {
		b.WriteString(e.emitMethod(m))
	}

	b.WriteString("}\n")
	return b.String()
}

func (e *Emitter) emitMethod(m *ast.Node) string {
	method := e.table.Method(m.Name)

	var b strings.Builder
	b.WriteString(".method ")
	if m.IsPublic {
		b.WriteString("public ")
	} else {
		b.WriteString("private ")
	}
	if m.IsStatic {
		b.WriteString("static ")
	}
	b.WriteString(m.Name + "(")
	for i, p := range m.MethodArgs().ArgList() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name + "." + typeSuffix(p.ArgType().AsType()))
	}
	b.WriteString(")." + typeSuffix(m.MethodType().AsType()) + " {\n")

	body := e.emitStmts(m.MethodBody(), method)
	b.WriteString(body)

	if m.MethodType().AsType().Equal(ast.VoidType) && !endsInReturn(m.MethodBody()) {
		b.WriteString("ret.V;\n")
	}

	b.WriteString("}\n")
	return b.String()
}

func endsInReturn(stmts []*ast.Node) bool {
	if len(stmts) == 0 {
		return false
	}
	return stmts[len(stmts)-1].Kind == ast.ReturnStmt
}

func (e *Emitter) emitStmts(stmts []*ast.Node, method *symbols.Method) string {
	var b strings.Builder
	for _, s := range stmts {
		b.WriteString(e.emitStmt(s, method))
	}
	return b.String()
}

// emitStmt emits one statement, per the rules in spec §4.6.
func (e *Emitter) emitStmt(s *ast.Node, method *symbols.Method) string {
	switch s.Kind {
	case ast.AssignStmt:
		return e.emitAssign(s, method)
	case ast.ArrayAssignStmt:
		return e.emitArrayAssign(s, method)
	case ast.ReturnStmt:
		return e.emitReturn(s, method)
	case ast.ExpressionStmt:
		comp, _ := e.linearize(s.Child(0), method, nil, false)
		return comp
	case ast.ScopeStmt:
		return e.emitStmts(s.Children, method)
	case ast.IfElseStmt:
		return e.emitIfElse(s, method)
	case ast.WhileStmt:
		return e.emitWhile(s, method)
	}
	return ""
}

func (e *Emitter) emitAssign(s *ast.Node, method *symbols.Method) string {
	lhs := s.Child(0)
	rhs := s.Child(1)
	lhsType := e.engine.TypeOf(lhs, method)

	comp, code := e.linearize(rhs, method, lhsType, true)

	var b strings.Builder
	b.WriteString(comp)
	if e.engine.IsField(lhs.Name, method) {
		b.WriteString(fmt.Sprintf("putfield(this, %s.%s, %s).V;\n", lhs.Name, typeSuffix(*lhsType), code))
	} else {
		b.WriteString(fmt.Sprintf("%s.%s :=.%s %s;\n", lhs.Name, typeSuffix(*lhsType), typeSuffix(*lhsType), code))
	}
	return b.String()
}

func (e *Emitter) emitArrayAssign(s *ast.Node, method *symbols.Method) string {
	name := s.Child(0).Name
	idxComp, idxCode := e.linearize(s.Child(1), method, &ast.IntType, false)
	rhsComp, rhsCode := e.linearize(s.Child(2), method, &ast.IntType, false)

	var b strings.Builder
	b.WriteString(idxComp)
	b.WriteString(rhsComp)
	b.WriteString(fmt.Sprintf("%s[%s].i32 :=.i32 %s;\n", name, idxCode, rhsCode))
	return b.String()
}

func (e *Emitter) emitReturn(s *ast.Node, method *symbols.Method) string {
	expr := s.Child(0)
	if expr == nil {
		return "ret.V;\n"
	}
	retType := method.ReturnType
	comp, code := e.linearize(expr, method, &retType, false)
	return comp + fmt.Sprintf("ret.%s %s;\n", typeSuffix(retType), code)
}

func (e *Emitter) emitIfElse(s *ast.Node, method *symbols.Method) string {
	cond := s.Child(0)
	thenStmt := s.Child(1)
	elseStmt := s.Child(2)

	trueL := e.freshLabel("true")
	endL := e.freshLabel("endif")

	condComp, condCode := e.linearize(cond, method, &ast.BoolType, false)

	var b strings.Builder
	b.WriteString(condComp)
	b.WriteString(fmt.Sprintf("if (%s) goto %s;\n", condCode, trueL))
	if elseStmt != nil {
		elseL := e.freshLabel("else")
		b.WriteString(fmt.Sprintf("goto %s;\n", elseL))
		b.WriteString(labelled(trueL, e.emitStmt(thenStmt, method)))
		b.WriteString(fmt.Sprintf("goto %s;\n", endL))
		b.WriteString(labelled(elseL, e.emitStmt(elseStmt, method)))
	} else {
		b.WriteString(fmt.Sprintf("goto %s;\n", endL))
		b.WriteString(labelled(trueL, e.emitStmt(thenStmt, method)))
	}
	b.WriteString(endL + ":\n")
	return b.String()
}

func (e *Emitter) emitWhile(s *ast.Node, method *symbols.Method) string {
	cond := s.Child(0)
	body := s.Child(1)

	startL := e.freshLabel("while")
	bodyL := e.freshLabel("body")
	endL := e.freshLabel("endwhile")

	condComp, condCode := e.linearize(cond, method, &ast.BoolType, false)

	var b strings.Builder
	b.WriteString(startL + ":\n")
	b.WriteString(condComp)
	b.WriteString(fmt.Sprintf("if (%s) goto %s;\n", condCode, bodyL))
	b.WriteString(fmt.Sprintf("goto %s;\n", endL))
	b.WriteString(labelled(bodyL, e.emitStmt(body, method)))
	b.WriteString(fmt.Sprintf("goto %s;\n", startL))
	b.WriteString(endL + ":\n")
	return b.String()
}

// labelled prefixes body's first line with "label:\n". body may be
// empty (an empty block); the label then attaches to the next
// instruction the caller emits.
func labelled(label, body string) string {
	return label + ":\n" + body
}

// linearize implements spec §4.6's expression rules, returning a
// (computation, code) pair. ctxType is the return-type hint for a
// FuncExpr in this position (rule (a) of the FuncExpr return-type
// resolution order); direct marks an AssignStmt RHS position, the
// only context where a BinaryExpr may be inlined instead of bound to
// a fresh temporary.
func (e *Emitter) linearize(n *ast.Node, method *symbols.Method, ctxType *ast.DataType, direct bool) (string, string) {
	switch n.Kind {
	case ast.IntegerLiteral:
		return "", n.Value + ".i32"
	case ast.BooleanLiteral:
		if n.BoolValue() {
			return "", "1.bool"
		}
		return "", "0.bool"
	case ast.ThisExpr:
		return "", "this." + e.table.ClassName
	case ast.VarRefExpr, ast.Identifier:
		return e.linearizeVarRef(n, method)
	case ast.ParenExpr:
		return e.linearize(n.Child(0), method, ctxType, direct)
	case ast.UnaryExpr:
		return e.linearizeUnary(n, method)
	case ast.BinaryExpr:
		return e.linearizeBinary(n, method, direct)
	case ast.FuncExpr:
		return e.linearizeCall(n, method, ctxType)
	case ast.MemberExpr:
		return e.linearizeMember(n, method)
	case ast.NewExpr:
		return e.linearizeNew(n, method)
	case ast.NewArrayExpr:
		return e.linearizeNewArray(n, method)
	case ast.ArrayExpr:
		return e.linearizeArrayLit(n, method)
	case ast.ArrayAccessExpr:
		return e.linearizeArrayAccess(n, method)
	}
	return "", ""
}

func (e *Emitter) linearizeVarRef(n *ast.Node, method *symbols.Method) (string, string) {
	t := e.engine.TypeOf(n, method)
	if e.engine.IsField(n.Name, method) {
		temp := e.freshTemp()
		comp := fmt.Sprintf("%s.%s :=.%s getfield(this, %s.%s).%s;\n",
			temp, typeSuffix(*t), typeSuffix(*t), n.Name, typeSuffix(*t), typeSuffix(*t))
		return comp, temp + "." + typeSuffix(*t)
	}
	return "", n.Name + "." + typeSuffix(*t)
}

func (e *Emitter) linearizeUnary(n *ast.Node, method *symbols.Method) (string, string) {
	comp, code := e.linearize(n.Child(0), method, &ast.BoolType, false)
	temp := e.freshTemp()
	comp += fmt.Sprintf("%s.bool :=.bool !.bool %s;\n", temp, code)
	return comp, temp + ".bool"
}

func (e *Emitter) linearizeBinary(n *ast.Node, method *symbols.Method, direct bool) (string, string) {
	if n.Op == "&&" {
		return e.linearizeAnd(n, method)
	}

	var opType *ast.DataType
	if types.ArithOps[n.Op] {
		opType = &ast.IntType
	} else {
		opType = &ast.BoolType
	}

	lComp, lCode := e.linearize(n.Child(0), method, opType, false)
	rComp, rCode := e.linearize(n.Child(1), method, opType, false)
	resultType := *e.engine.TypeOf(n, method)

	comp := lComp + rComp
	code := fmt.Sprintf("%s %s.%s %s", lCode, n.Op, typeSuffix(resultType), rCode)

	if direct && isTrivialOperand(n.Child(0)) && isTrivialOperand(n.Child(1)) {
		return comp, code
	}

	temp := e.freshTemp()
	comp += fmt.Sprintf("%s.%s :=.%s %s;\n", temp, typeSuffix(resultType), typeSuffix(resultType), code)
	return comp, temp + "." + typeSuffix(resultType)
}

// isTrivialOperand reports whether n is a literal or a plain variable
// reference, the condition spec §4.6 requires on both operands before
// a BinaryExpr's fresh-temp binding may be skipped.
func isTrivialOperand(n *ast.Node) bool {
	switch n.Kind {
	case ast.IntegerLiteral, ast.BooleanLiteral, ast.VarRefExpr, ast.Identifier:
		return true
	}
	return false
}

// linearizeAnd implements the short-circuit && of spec §4.6/§9: the
// right operand's computation only runs when the left evaluated true.
// Two fresh labels are used (L_false, L_end), matching S5's "two
// fresh labels"; the branch decision is made on the negation of the
// left operand so no third (L_true) label is needed — falling through
// after the branch check is itself the true path.
func (e *Emitter) linearizeAnd(n *ast.Node, method *symbols.Method) (string, string) {
	lComp, lCode := e.linearize(n.Child(0), method, &ast.BoolType, false)
	falseL := e.freshLabel("false")
	endL := e.freshLabel("end")
	result := e.freshTemp()
	negTemp := e.freshTemp()

	var b strings.Builder
	b.WriteString(lComp)
	b.WriteString(fmt.Sprintf("%s.bool :=.bool !.bool %s;\n", negTemp, lCode))
	b.WriteString(fmt.Sprintf("if (%s.bool) goto %s;\n", negTemp, falseL))

	rComp, rCode := e.linearize(n.Child(1), method, &ast.BoolType, false)
	b.WriteString(rComp)
	b.WriteString(fmt.Sprintf("%s.bool :=.bool %s;\n", result, rCode))
	b.WriteString(fmt.Sprintf("goto %s;\n", endL))
	b.WriteString(falseL + ":\n")
	b.WriteString(fmt.Sprintf("%s.bool :=.bool 0.bool;\n", result))
	b.WriteString(endL + ":\n")

	return b.String(), result + ".bool"
}

// linearizeCall implements the FuncExpr dispatch rules of §4.6: the
// getfield special case, static/virtual resolution, and the
// array.length special case, plus the three-step return-type
// resolution order.
func (e *Emitter) linearizeCall(n *ast.Node, method *symbols.Method, ctxType *ast.DataType) (string, string) {
	receiver := n.Child(0)

	if receiver.Kind == ast.ThisExpr && e.engine.IsField(n.Name, method) {
		return e.linearizeVarRef(&ast.Node{Kind: ast.VarRefExpr, Name: n.Name}, method)
	}

	args := n.Children[1:]
	var argsComp strings.Builder
	var argCodes []string
	m := e.table.Method(n.Name)
	for i, a := range args {
		var hint *ast.DataType
		if m != nil && i < len(m.Params) {
			hint = &m.Params[i].Type
		}
		c, code := e.linearize(a, method, hint, false)
		argsComp.WriteString(c)
		argCodes = append(argCodes, code)
	}

	retType := e.resolveCallReturnType(n.Name, ctxType)

	var invoke string
	switch {
	case receiver.Kind == ast.ThisExpr:
		invoke = fmt.Sprintf("invokevirtual(this, \"%s\"%s).%s", n.Name, prependComma(argCodes), typeSuffix(retType))
	case (receiver.Kind == ast.VarRefExpr || receiver.Kind == ast.Identifier) && e.table.IsImported(receiver.Name):
		invoke = fmt.Sprintf("invokestatic(%s, \"%s\"%s).%s", receiver.Name, n.Name, prependComma(argCodes), typeSuffix(retType))
	default:
		recvComp, recvCode := e.linearize(receiver, method, nil, false)
		argsComp.WriteString(recvComp)
		invoke = fmt.Sprintf("invokevirtual(%s, \"%s\"%s).%s", recvCode, n.Name, prependComma(argCodes), typeSuffix(retType))
	}

	if retType.Equal(ast.VoidType) {
		return argsComp.String() + invoke + ";\n", ""
	}
	temp := e.freshTemp()
	comp := argsComp.String() + fmt.Sprintf("%s.%s :=.%s %s;\n", temp, typeSuffix(retType), typeSuffix(retType), invoke)
	return comp, temp + "." + typeSuffix(retType)
}

// resolveCallReturnType implements §4.6's three-step order: known
// method's declared return type; else the caller-supplied context
// hint; else void.
func (e *Emitter) resolveCallReturnType(name string, ctxType *ast.DataType) ast.DataType {
	if m := e.table.Method(name); m != nil {
		return m.ReturnType
	}
	if ctxType != nil {
		return *ctxType
	}
	return ast.VoidType
}

func prependComma(codes []string) string {
	if len(codes) == 0 {
		return ""
	}
	return ", " + strings.Join(codes, ", ")
}

// linearizeMember handles the array.length special case of §4.6; no
// other member-access form is reachable once SemanticPasses accepted
// the program, since obj.path chains other than .length only exist as
// the receiver position of a FuncExpr (handled above).
func (e *Emitter) linearizeMember(n *ast.Node, method *symbols.Method) (string, string) {
	objComp, objCode := e.linearize(n.Child(0), method, nil, false)
	temp := e.freshTemp()
	comp := objComp + fmt.Sprintf("%s.i32 :=.i32 arraylength(%s).i32;\n", temp, objCode)
	return comp, temp + ".i32"
}

func (e *Emitter) linearizeNew(n *ast.Node, method *symbols.Method) (string, string) {
	temp := e.freshTemp()
	cls := n.Name
	comp := fmt.Sprintf("%s.%s :=.%s new(%s).%s;\n", temp, cls, cls, cls, cls)
	comp += fmt.Sprintf("invokespecial(%s.%s, \"<init>\").V;\n", temp, cls)
	return comp, temp + "." + cls
}

func (e *Emitter) linearizeNewArray(n *ast.Node, method *symbols.Method) (string, string) {
	sizeComp, sizeCode := e.linearize(n.Child(0), method, &ast.IntType, false)
	temp := e.freshTemp()
	comp := sizeComp + fmt.Sprintf("%s.array.i32 :=.array.i32 new(array, %s).array.i32;\n", temp, sizeCode)
	return comp, temp + ".array.i32"
}

func (e *Emitter) linearizeArrayLit(n *ast.Node, method *symbols.Method) (string, string) {
	temp := e.freshTemp()
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s.array.i32 :=.array.i32 new(array, %d.i32).array.i32;\n", temp, len(n.Children)))
	for i, el := range n.Children {
		elComp, elCode := e.linearize(el, method, &ast.IntType, false)
		b.WriteString(elComp)
		b.WriteString(fmt.Sprintf("%s[%d.i32].i32 :=.i32 %s;\n", temp, i, elCode))
	}
	return b.String(), temp + ".array.i32"
}

func (e *Emitter) linearizeArrayAccess(n *ast.Node, method *symbols.Method) (string, string) {
	arrComp, arrCode := e.linearize(n.Child(0), method, nil, false)
	idxComp, idxCode := e.linearize(n.Child(1), method, &ast.IntType, false)
	temp := e.freshTemp()
	comp := arrComp + idxComp + fmt.Sprintf("%s.i32 :=.i32 %s[%s].i32;\n", temp, baseName(arrCode), idxCode)
	return comp, temp + ".i32"
}

// baseName strips an operand's type suffix, returning the bare name
// before its first '.': the form ArrayOperand indexing syntax needs
// ("name[idx].T", never "name.array.i32[idx].T").
func baseName(code string) string {
	if i := strings.IndexByte(code, '.'); i >= 0 {
		return code[:i]
	}
	return code
}

// typeSuffix renders a DataType as the OLLIR type suffix of spec §3.
func typeSuffix(t ast.DataType) string {
	if t.IsArray {
		return "array." + baseSuffix(t.Name)
	}
	return baseSuffix(t.Name)
}

func baseSuffix(name string) string {
	switch name {
	case "int":
		return "i32"
	case "boolean":
		return "bool"
	case "void":
		return "V"
	}
	return name
}
