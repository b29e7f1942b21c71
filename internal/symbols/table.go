// Package symbols builds the SymbolTable of spec §4.1 from a parsed
// Program: indexed facts extracted once from the AST, in the five
// views of spec §3 (className/superClass/imports, fields, methods,
// per-method params/locals/return type). Grounded on the teacher's
// name-resolution pass (frontend/nameresolution), which likewise walks
// the tree once building maps rather than re-querying the AST per
// lookup.
package symbols

import "github.com/marco-vb/jmmc/internal/ast"

// Method holds the per-method views of spec §4.1/§3.
type Method struct {
	Name       string
	ReturnType ast.DataType
	Params     []ast.Symbol
	Locals     []ast.Symbol
	IsStatic   bool
	IsPublic   bool
	Node       *ast.Node
}

// Table is the SymbolTable of spec §3.
type Table struct {
	ClassName  string
	SuperClass string // "" if none
	Imports    []string

	Fields []ast.Symbol

	methodOrder []string
	methods     map[string]*Method
}

func (t *Table) HasSuper() bool {
	return t.SuperClass != ""
}

func (t *Table) Methods() []string {
	return t.methodOrder
}

func (t *Table) Method(name string) *Method {
	return t.methods[name]
}

func (t *Table) HasMethod(name string) bool {
	_, ok := t.methods[name]
	return ok
}

func (t *Table) ReturnTypeOf(name string) ast.DataType {
	m := t.methods[name]
	if m == nil {
		return ast.DataType{}
	}
	return m.ReturnType
}

func (t *Table) ParamsOf(name string) []ast.Symbol {
	m := t.methods[name]
	if m == nil {
		return nil
	}
	return m.Params
}

func (t *Table) LocalsOf(name string) []ast.Symbol {
	m := t.methods[name]
	if m == nil {
		return nil
	}
	return m.Locals
}

// IsImported reports whether name is the last segment of some
// imported dotted path, per §4.2's "imports" lookup.
func (t *Table) IsImported(name string) bool {
	for _, imp := range t.Imports {
		if lastSegment(imp) == name {
			return true
		}
	}
	return false
}

func lastSegment(dotted string) string {
	last := dotted
	start := 0
	for i := 0; i < len(dotted); i++ {
		if dotted[i] == '.' {
			start = i + 1
		}
	}
	last = dotted[start:]
	return last
}

// Field looks up a field by name; ok is false if none exists.
func (t *Table) Field(name string) (ast.Symbol, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return ast.Symbol{}, false
}

// Param looks up a parameter of method by name.
func (m *Method) Param(name string) (ast.Symbol, bool) {
	for _, p := range m.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ast.Symbol{}, false
}

// Local looks up a local of method by name.
func (m *Method) Local(name string) (ast.Symbol, bool) {
	for _, l := range m.Locals {
		if l.Name == name {
			return l, true
		}
	}
	return ast.Symbol{}, false
}

// Build constructs a Table from a validated Program AST (spec §4.1).
// Field/method name collisions are tolerated here (first occurrence
// wins) because DuplicatedElement, not the builder, is the pass
// responsible for reporting them; the driver halts before anything
// downstream of SemanticPasses observes a colliding table.
func Build(program *ast.Node) *Table {
	class := program.ClassDecl()

	t := &Table{
		ClassName: class.Name,
		methods:   make(map[string]*Method),
	}
	if class.Ext != "" {
		t.SuperClass = class.Ext
	}

	for _, imp := range program.Imports() {
		t.Imports = append(t.Imports, imp.Name)
	}

	seenFields := make(map[string]bool)
	for _, v := range class.Fields() {
		if seenFields[v.Name] {
			continue
		}
		seenFields[v.Name] = true
		t.Fields = append(t.Fields, ast.Symbol{Type: v.VarType().AsType(), Name: v.Name})
	}

	for _, md := range class.Methods() {
		if _, exists := t.methods[md.Name]; exists {
			continue
		}
		m := buildMethod(md)
		t.methodOrder = append(t.methodOrder, m.Name)
		t.methods[m.Name] = m
	}

	return t
}

func buildMethod(md *ast.Node) *Method {
	m := &Method{
		Name:       md.Name,
		ReturnType: md.MethodType().AsType(),
		IsStatic:   md.IsStatic,
		IsPublic:   md.IsPublic,
		Node:       md,
	}

	seenParams := make(map[string]bool)
	for _, arg := range md.MethodArgs().ArgList() {
		if seenParams[arg.Name] {
			continue
		}
		seenParams[arg.Name] = true
		m.Params = append(m.Params, ast.Symbol{Type: arg.ArgType().AsType(), Name: arg.Name})
	}

	seenLocals := make(map[string]bool)
	for _, v := range md.MethodLocals() {
		if seenParams[v.Name] || seenLocals[v.Name] {
			continue
		}
		seenLocals[v.Name] = true
		m.Locals = append(m.Locals, ast.Symbol{Type: v.VarType().AsType(), Name: v.Name})
	}

	return m
}
