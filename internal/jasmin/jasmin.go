// Package jasmin implements the JasminEmitter of spec §4.8: it walks
// the IR (package ir) produced by OllirReader and RegisterAllocator,
// emitting a stack-machine text with explicit .limit stack/.limit
// locals, tracking operand-stack depth on the fly to both recognise
// peephole shapes and compute the final limits.
//
// Grounded on the teacher's backend/amd64 and backend/codegen for the
// "walk the IR once, accumulate an output string per method/block,
// track a small amount of machine state as you go" shape; the
// mnemonic set and stack-effect table are the JVM's and Jasmin's own
// (spec §4.8/§6), not the teacher's amd64 instruction set.
package jasmin

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/marco-vb/jmmc/internal/ir"
)

// Emit produces the full Jasmin text for cu. imports is the ordered
// list of dotted import names from the SymbolTable, used to build the
// last-segment→slash-path map spec §4.8 requires.
func Emit(cu *ir.ClassUnit, imports []string) string {
	e := &emitter{cu: cu, importMap: buildImportMap(imports)}
	return e.emitClass()
}

func buildImportMap(imports []string) map[string]string {
	m := make(map[string]string, len(imports))
	for _, imp := range imports {
		m[lastSegment(imp)] = strings.ReplaceAll(imp, ".", "/")
	}
	return m
}

func lastSegment(dotted string) string {
	if i := strings.LastIndexByte(dotted, '.'); i >= 0 {
		return dotted[i+1:]
	}
	return dotted
}

type emitter struct {
	cu        *ir.ClassUnit
	importMap map[string]string

	stack, maxStack int
	compareLabelN   int
}

// resolveClass maps a bare class name to its fully-qualified slash
// form via the import map, falling back to the name itself for the
// class currently being compiled and any other unqualified name
// (spec §4.8).
func (e *emitter) resolveClass(name string) string {
	if full, ok := e.importMap[name]; ok {
		return full
	}
	return name
}

func (e *emitter) emitClass() string {
	var b strings.Builder
	superClass := e.cu.SuperClass
	if superClass == "" {
		superClass = "java/lang/Object"
	} else {
		superClass = e.resolveClass(superClass)
	}

	b.WriteString(".class public " + e.cu.Name + "\n")
	b.WriteString(".super " + superClass + "\n\n")

	for _, f := range e.cu.Fields {
		b.WriteString(".field public " + f.Name + " " + descOf(e.resolveClass, f.Type) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(".method public <init>()V\n")
	b.WriteString(".limit stack 1\n")
	b.WriteString(".limit locals 1\n")
	b.WriteString("aload_0\n")
	b.WriteString("invokespecial " + superClass + "/<init>()V\n")
	b.WriteString("return\n")
	b.WriteString(".end method\n\n")

	for _, m := range e.cu.Methods {
		if m.IsConstructor {
			continue
		}
		b.WriteString(e.emitMethod(m))
		b.WriteString("\n")
	}
	return b.String()
}

func (e *emitter) emitMethod(m *ir.Method) string {
	e.stack, e.maxStack = 0, 0

	var body strings.Builder
	for _, instr := range m.Instructions {
		for _, l := range instr.Labels {
			body.WriteString(l + ":\n")
		}
		body.WriteString(e.emitInstr(m, instr))
	}

	var b strings.Builder
	mods := "public"
	if !m.IsPublic {
		mods = "private"
	}
	if m.IsStatic {
		mods += " static"
	}
	b.WriteString(fmt.Sprintf(".method %s %s%s\n", mods, m.Name, methodDescriptor(e.resolveClass, m)))
	b.WriteString(".limit stack " + strconv.Itoa(max(e.maxStack, 1)) + "\n")
	b.WriteString(".limit locals " + strconv.Itoa(localsCount(m)) + "\n")
	b.WriteString(body.String())
	b.WriteString(".end method\n")
	return b.String()
}

func localsCount(m *ir.Method) int {
	count := 1 + len(m.Params) // slot 0 reserved per spec §4.7 step 6, even for static methods
	for _, r := range m.Registers {
		count = max(count, r+1)
	}
	return count
}

func (e *emitter) push(n int) {
	e.stack += n
	if e.stack > e.maxStack {
		e.maxStack = e.stack
	}
}

func (e *emitter) pop(n int) {
	e.stack -= n
}

// emitInstr lowers one top-level IR instruction to Jasmin text.
func (e *emitter) emitInstr(m *ir.Method, instr *ir.Instruction) string {
	switch instr.Kind {
	case ir.Assign:
		return e.emitAssign(m, instr)
	case ir.PutField:
		return e.emitPutField(m, instr)
	case ir.Return:
		return e.emitReturn(m, instr)
	case ir.Goto:
		return "goto " + instr.Label + "\n"
	case ir.CondBranch:
		return e.emitCondBranch(m, instr)
	case ir.Call:
		code := e.emitValue(m, instr)
		if !isVoidType(instr.Type) {
			code += "pop\n"
			e.pop(1)
		}
		return code
	}
	return ""
}

// emitAssign recognises the iinc peephole of spec §4.8 before falling
// back to generic store lowering. An ArrayOperand destination needs
// its array reference and index pushed before the value (spec §4.8:
// iastore pops [arrayref, index, value]), so that shape is handled
// separately from the plain-local store.
func (e *emitter) emitAssign(m *ir.Method, instr *ir.Instruction) string {
	if line, ok := e.tryIinc(m, instr); ok {
		return line
	}
	dest := instr.Dest
	if dest.Kind == ir.ArrayOperand {
		var b strings.Builder
		reg := m.Registers[dest.Name]
		b.WriteString(loadMnemonic(ir.Type{IsArray: true}, reg) + "\n")
		e.push(1)
		b.WriteString(e.emitValue(m, dest.Indices[0]))
		b.WriteString(e.emitValue(m, instr.RHS))
		b.WriteString("iastore\n")
		e.pop(3)
		return b.String()
	}
	code := e.emitValue(m, instr.RHS)
	return code + e.storeTo(m, dest)
}

// tryIinc implements the "x = x ± literal" peephole of spec §4.8: an
// Assign whose RHS is a BinaryOp between the destination's own local
// and a literal that fits a signed byte.
func (e *emitter) tryIinc(m *ir.Method, instr *ir.Instruction) (string, bool) {
	rhs := instr.RHS
	if rhs == nil || rhs.Kind != ir.BinaryOp || instr.Dest == nil || instr.Dest.Kind != ir.Operand {
		return "", false
	}
	if rhs.Op != "+" && rhs.Op != "-" {
		return "", false
	}
	destName := instr.Dest.Name

	var lit *ir.Instruction
	var operandMatches bool
	if rhs.L != nil && rhs.L.Kind == ir.Operand && rhs.L.Name == destName && rhs.R != nil && rhs.R.Kind == ir.Literal {
		lit = rhs.R
		operandMatches = true
	} else if rhs.Op == "+" && rhs.R != nil && rhs.R.Kind == ir.Operand && rhs.R.Name == destName && rhs.L != nil && rhs.L.Kind == ir.Literal {
		lit = rhs.L
		operandMatches = true
	}
	if !operandMatches {
		return "", false
	}

	v, err := strconv.ParseInt(lit.Text, 10, 64)
	if err != nil {
		return "", false
	}
	if rhs.Op == "-" {
		v = -v
	}
	if v < -128 || v > 127 {
		return "", false
	}
	reg := m.Registers[destName]
	return fmt.Sprintf("iinc %d %d\n", reg, v), true
}

func (e *emitter) emitPutField(m *ir.Method, instr *ir.Instruction) string {
	code := e.emitValue(m, instr.Object)
	code += e.emitValue(m, instr.Value)
	desc := descOf(e.resolveClass, instr.Type)
	code += fmt.Sprintf("putfield %s/%s %s\n", e.cu.Name, instr.Name, desc)
	e.pop(2)
	return code
}

func (e *emitter) emitReturn(m *ir.Method, instr *ir.Instruction) string {
	if instr.Operand == nil || isVoidType(instr.Type) {
		return "return\n"
	}
	code := e.emitValue(m, instr.Operand)
	e.pop(1)
	if isRefType(instr.Type) {
		return code + "areturn\n"
	}
	return code + "ireturn\n"
}

// emitCondBranch implements spec §4.8's control-flow rule: the
// condition has already been materialised to 0/1 by an earlier
// Assign (comparisons and && both produce a bool temp), so CondBranch
// just tests it with ifne.
func (e *emitter) emitCondBranch(m *ir.Method, instr *ir.Instruction) string {
	code := e.emitValue(m, instr.Operand)
	e.pop(1)
	return code + "ifne " + instr.Label + "\n"
}

// storeTo emits the store mnemonic for a plain local/param destination.
// The value to store must already be on the stack.
func (e *emitter) storeTo(m *ir.Method, dest *ir.Instruction) string {
	reg := m.Registers[dest.Name]
	e.pop(1)
	return storeMnemonic(dest.Type, reg) + "\n"
}

// emitValue lowers any value-producing instruction, pushing its
// result onto the operand stack.
func (e *emitter) emitValue(m *ir.Method, instr *ir.Instruction) string {
	switch instr.Kind {
	case ir.Literal:
		return e.emitLiteral(instr)
	case ir.Operand:
		return e.emitOperandLoad(m, instr)
	case ir.ArrayOperand:
		return e.emitArrayLoad(m, instr)
	case ir.SingleOp:
		return e.emitValue(m, instr.Operand)
	case ir.UnaryOp:
		return e.emitUnary(m, instr)
	case ir.BinaryOp:
		return e.emitBinary(m, instr)
	case ir.GetField:
		return e.emitGetField(m, instr)
	case ir.Call:
		return e.emitCall(m, instr)
	}
	return ""
}

func (e *emitter) emitLiteral(instr *ir.Instruction) string {
	if instr.Type.Name == "boolean" {
		e.push(1)
		if instr.Text == "1" {
			return "iconst_1\n"
		}
		return "iconst_0\n"
	}
	v, _ := strconv.ParseInt(instr.Text, 10, 64)
	e.push(1)
	return constInt(v) + "\n"
}

func (e *emitter) emitOperandLoad(m *ir.Method, instr *ir.Instruction) string {
	if instr.Name == "this" {
		e.push(1)
		return "aload_0\n"
	}
	reg := m.Registers[instr.Name]
	e.push(1)
	return loadMnemonic(instr.Type, reg) + "\n"
}

func (e *emitter) emitArrayLoad(m *ir.Method, instr *ir.Instruction) string {
	var b strings.Builder
	reg := m.Registers[instr.Name]
	b.WriteString(loadMnemonic(ir.Type{IsArray: true}, reg) + "\n")
	e.push(1)
	b.WriteString(e.emitValue(m, instr.Indices[0]))
	b.WriteString("iaload\n")
	e.pop(1)
	return b.String()
}

func (e *emitter) emitUnary(m *ir.Method, instr *ir.Instruction) string {
	code := e.emitValue(m, instr.Operand)
	e.push(1)
	code += "iconst_1\n"
	e.pop(1)
	code += "ixor\n"
	return code
}

func (e *emitter) emitBinary(m *ir.Method, instr *ir.Instruction) string {
	lCode := e.emitValue(m, instr.L)
	rCode := e.emitValue(m, instr.R)
	if mnemonic, ok := arithMnemonic[instr.Op]; ok {
		e.pop(1)
		return lCode + rCode + mnemonic + "\n"
	}
	return lCode + rCode + e.emitComparison(instr.Op)
}

var arithMnemonic = map[string]string{
	"+": "iadd", "-": "isub", "*": "imul", "/": "idiv",
	"&&": "iand", "||": "ior",
}

var compareJump = map[string]string{
	"<": "iflt", "<=": "ifle", ">": "ifgt", ">=": "ifge", "==": "ifeq",
}

// emitComparison implements spec §4.8: isub, then the matching if*
// into a fresh true-label, false branch pushes 0 and jumps to a fresh
// end-label, true-label pushes 1.
func (e *emitter) emitComparison(op string) string {
	trueL := e.freshCompareLabel("cmptrue")
	endL := e.freshCompareLabel("cmpend")
	e.pop(2)

	var b strings.Builder
	b.WriteString("isub\n")
	b.WriteString(compareJump[op] + " " + trueL + "\n")
	b.WriteString("iconst_0\n")
	e.push(1)
	b.WriteString("goto " + endL + "\n")
	e.pop(1)
	b.WriteString(trueL + ":\n")
	b.WriteString("iconst_1\n")
	e.push(1)
	b.WriteString(endL + ":\n")
	return b.String()
}

func (e *emitter) freshCompareLabel(tag string) string {
	e.compareLabelN++
	return "L_" + tag + strconv.Itoa(e.compareLabelN)
}

func (e *emitter) emitGetField(m *ir.Method, instr *ir.Instruction) string {
	code := e.emitValue(m, instr.Object)
	desc := descOf(e.resolveClass, instr.Type)
	code += fmt.Sprintf("getfield %s/%s %s\n", e.cu.Name, instr.Name, desc)
	return code
}

func (e *emitter) emitCall(m *ir.Method, instr *ir.Instruction) string {
	switch instr.InvKind {
	case ir.NewObject:
		return e.emitNewObject(instr)
	case ir.NewArray:
		return e.emitNewArray(m, instr)
	case ir.ArrayLength:
		return e.emitArrayLength(m, instr)
	}
	return e.emitInvoke(m, instr)
}

func (e *emitter) emitNewObject(instr *ir.Instruction) string {
	e.push(1)
	return "new " + e.resolveClass(instr.Name) + "\n"
}

func (e *emitter) emitNewArray(m *ir.Method, instr *ir.Instruction) string {
	code := e.emitValue(m, instr.Args[0])
	code += "newarray int\n"
	return code
}

func (e *emitter) emitArrayLength(m *ir.Method, instr *ir.Instruction) string {
	code := e.emitValue(m, instr.Object)
	code += "arraylength\n"
	return code
}

func (e *emitter) emitInvoke(m *ir.Method, instr *ir.Instruction) string {
	var b strings.Builder
	ownerClass := e.cu.Name

	if instr.InvKind != ir.InvokeStatic {
		b.WriteString(e.emitValue(m, instr.Object))
		if instr.Object.Name == "this" {
			ownerClass = e.cu.Name
		} else {
			ownerClass = e.resolveClass(instr.Object.Type.Name)
		}
	} else {
		ownerClass = e.resolveClass(instr.Object.Name)
	}

	var paramTypes []ir.Type
	for _, a := range instr.Args {
		b.WriteString(e.emitValue(m, a))
		paramTypes = append(paramTypes, a.Type)
	}

	methodName := instr.Name
	if instr.InvKind == ir.InvokeSpecial {
		methodName = "<init>"
	}

	argsConsumed := len(instr.Args)
	if instr.InvKind != ir.InvokeStatic {
		argsConsumed++
	}
	e.pop(argsConsumed)
	if !isVoidType(instr.Type) {
		e.push(1)
	}

	desc := "(" + joinDescs(e.resolveClass, paramTypes) + ")" + descOf(e.resolveClass, instr.Type)
	b.WriteString(fmt.Sprintf("%s %s/%s%s\n", instr.InvKind.String(), ownerClass, methodName, desc))
	return b.String()
}

func isVoidType(t ir.Type) bool {
	return t.Name == "" || t.Name == "void"
}

func isRefType(t ir.Type) bool {
	if t.IsArray {
		return true
	}
	switch t.Name {
	case "int", "boolean", "void", "":
		return false
	}
	return true
}

func loadMnemonic(t ir.Type, reg int) string {
	return regRef(prefix(t), "load", reg)
}

func storeMnemonic(t ir.Type, reg int) string {
	return regRef(prefix(t), "store", reg)
}

func prefix(t ir.Type) string {
	if isRefType(t) {
		return "a"
	}
	return "i"
}

// regRef builds the load/store mnemonic for reg: the _n short forms
// for registers 0..3, the indexed form otherwise (spec §4.8).
func regRef(typePrefix, op string, reg int) string {
	if reg >= 0 && reg <= 3 {
		return typePrefix + op + "_" + strconv.Itoa(reg)
	}
	return typePrefix + op + " " + strconv.Itoa(reg)
}

// constInt implements spec §4.8's integer-constant mnemonic selection.
func constInt(v int64) string {
	switch {
	case v == -1:
		return "iconst_m1"
	case v >= 0 && v <= 5:
		return "iconst_" + strconv.FormatInt(v, 10)
	case v >= -128 && v <= 127:
		return "bipush " + strconv.FormatInt(v, 10)
	case v >= -32768 && v <= 32767:
		return "sipush " + strconv.FormatInt(v, 10)
	}
	return "ldc " + strconv.FormatInt(v, 10)
}

func methodDescriptor(resolve func(string) string, m *ir.Method) string {
	var params []ir.Type
	for _, p := range m.Params {
		params = append(params, p.Type)
	}
	return "(" + joinDescs(resolve, params) + ")" + descOf(resolve, m.ReturnType)
}

func joinDescs(resolve func(string) string, types []ir.Type) string {
	var b strings.Builder
	for _, t := range types {
		b.WriteString(descOf(resolve, t))
	}
	return b.String()
}

// descOf implements spec §4.8's descriptor table.
func descOf(resolve func(string) string, t ir.Type) string {
	if t.IsArray {
		return "[" + descOf(resolve, ir.Type{Name: t.Name})
	}
	switch t.Name {
	case "int":
		return "I"
	case "boolean":
		return "Z"
	case "void", "":
		return "V"
	case "String":
		return "Ljava/lang/String;"
	}
	return "L" + resolve(t.Name) + ";"
}
