package ir

import (
	"fmt"
)

// Read implements OllirReader (spec §3/§4): it re-parses the textual
// OLLIR program emitted by package ollir into the ClassUnit/Method/
// Instruction model above, including the per-instruction CFG
// successor lists RegisterAllocator's step 1 consumes directly.
//
// Grounded on the teacher's frontend/parser for the general
// hand-rolled-recursive-descent-over-a-token-slice shape; the grammar
// itself is OLLIR's own (spec §3/§6), not the teacher's source
// language.
func Read(src string) (*ClassUnit, error) {
	p := &parser{toks: lex(src)}
	return p.parseClassUnit()
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token  { return p.toks[p.pos] }
func (p *parser) at(i int) token {
	if p.pos+i >= len(p.toks) {
		return token{kind: tokEOF}
	}
	return p.toks[p.pos+i]
}
func (p *parser) next() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}
func (p *parser) expectPunct(s string) error {
	t := p.next()
	if t.kind != tokPunct || t.text != s {
		return fmt.Errorf("ir: expected %q, got %q", s, t.text)
	}
	return nil
}
func (p *parser) isPunct(s string) bool {
	t := p.peek()
	return t.kind == tokPunct && t.text == s
}
func (p *parser) isIdent(s string) bool {
	t := p.peek()
	return t.kind == tokIdent && t.text == s
}

func (p *parser) parseClassUnit() (*ClassUnit, error) {
	cu := &ClassUnit{}

	for p.isIdent("import") {
		p.next()
		name := ""
		for !p.isPunct(";") && p.peek().kind != tokEOF {
			name += p.next().text
		}
		p.expectPunct(";")
		cu.Imports = append(cu.Imports, name)
	}

	nameTok := p.next()
	cu.Name = nameTok.text
	if p.isIdent("extends") {
		p.next()
		cu.SuperClass = p.next().text
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}

	for !p.isPunct("}") {
		if p.peek().kind == tokEOF {
			return nil, fmt.Errorf("ir: unexpected end of input in class body")
		}
		if err := p.expectPunct("."); err != nil {
			return nil, err
		}
		switch {
		case p.isIdent("field"):
			f, err := p.parseField()
			if err != nil {
				return nil, err
			}
			cu.Fields = append(cu.Fields, f)
		case p.isIdent("construct"):
			m, err := p.parseConstruct()
			if err != nil {
				return nil, err
			}
			cu.Methods = append(cu.Methods, m)
		case p.isIdent("method"):
			m, err := p.parseMethod()
			if err != nil {
				return nil, err
			}
			cu.Methods = append(cu.Methods, m)
		default:
			return nil, fmt.Errorf("ir: unexpected directive %q", p.peek().text)
		}
	}
	p.expectPunct("}")
	return cu, nil
}

func (p *parser) parseField() (Field, error) {
	p.next() // "field"
	p.next() // "public"
	name := p.next().text
	p.expectPunct(".")
	t, err := p.parseType()
	if err != nil {
		return Field{}, err
	}
	p.expectPunct(";")
	return Field{Name: name, Type: t}, nil
}

func (p *parser) parseConstruct() (*Method, error) {
	p.next() // "construct"
	p.next() // class name
	p.expectPunct("(")
	p.expectPunct(")")
	p.expectPunct(".")
	p.parseType()
	p.expectPunct("{")
	m := &Method{Name: "<init>", IsConstructor: true, IsPublic: true, Labels: map[string]int{}}
	instrs, err := p.parseStatements()
	if err != nil {
		return nil, err
	}
	m.Instructions = instrs
	p.expectPunct("}")
	return m, nil
}

func (p *parser) parseMethod() (*Method, error) {
	p.next() // "method"
	m := &Method{Labels: map[string]int{}}
	if p.isIdent("public") {
		p.next()
		m.IsPublic = true
	} else if p.isIdent("private") {
		p.next()
	}
	if p.isIdent("static") {
		p.next()
		m.IsStatic = true
	}
	m.Name = p.next().text
	p.expectPunct("(")
	for !p.isPunct(")") {
		pname := p.next().text
		p.expectPunct(".")
		pt, err := p.parseType()
		if err != nil {
			return nil, err
		}
		m.Params = append(m.Params, Param{Name: pname, Type: pt})
		if p.isPunct(",") {
			p.next()
		}
	}
	p.expectPunct(")")
	p.expectPunct(".")
	rt, err := p.parseType()
	if err != nil {
		return nil, err
	}
	m.ReturnType = rt
	p.expectPunct("{")
	instrs, err := p.parseStatements()
	if err != nil {
		return nil, err
	}
	m.Instructions = instrs
	for i, ins := range instrs {
		for _, l := range ins.Labels {
			m.Labels[l] = i
		}
	}
	resolveSuccessors(m)
	p.expectPunct("}")
	return m, nil
}

// parseType reads "i32" | "bool" | "V" | "array.<elem>" | ClassName,
// mapping the OLLIR suffix back to the (name, isArray) pair of §3.
func (p *parser) parseType() (Type, error) {
	tok := p.next()
	if tok.kind != tokIdent {
		return Type{}, fmt.Errorf("ir: expected type, got %q", tok.text)
	}
	if tok.text == "array" {
		if err := p.expectPunct("."); err != nil {
			return Type{}, err
		}
		inner := p.next().text
		return Type{Name: unsuffix(inner), IsArray: true}, nil
	}
	return Type{Name: unsuffix(tok.text)}, nil
}

func unsuffix(s string) string {
	switch s {
	case "i32":
		return "int"
	case "bool":
		return "boolean"
	case "V":
		return "void"
	}
	return s
}

// parseStatements parses instructions up to (not consuming) the
// closing '}' of a method/construct body, attaching pending labels
// and assigning sequential IDs.
func (p *parser) parseStatements() ([]*Instruction, error) {
	var out []*Instruction
	var pendingLabels []string
	id := 0

	for !p.isPunct("}") {
		if p.peek().kind == tokEOF {
			return nil, fmt.Errorf("ir: unexpected end of input in method body")
		}
		if p.peek().kind == tokIdent && p.at(1).kind == tokPunct && p.at(1).text == ":" {
			pendingLabels = append(pendingLabels, p.next().text)
			p.next() // ":"
			continue
		}
		instr, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		instr.ID = id
		id++
		instr.Labels = pendingLabels
		pendingLabels = nil
		out = append(out, instr)
	}
	return out, nil
}

func (p *parser) parseStatement() (*Instruction, error) {
	switch {
	case p.isIdent("ret"):
		return p.parseReturn()
	case p.isIdent("goto"):
		p.next()
		label := p.next().text
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		return &Instruction{Kind: Goto, Label: label}, nil
	case p.isIdent("if"):
		return p.parseCondBranch()
	case p.isIdent("putfield"):
		return p.parsePutFieldStmt()
	default:
		return p.parseAssignOrExprStmt()
	}
}

func (p *parser) parseReturn() (*Instruction, error) {
	p.next() // "ret"
	p.expectPunct(".")
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	instr := &Instruction{Kind: Return, Type: t}
	if !p.isPunct(";") {
		operand, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		instr.Operand = operand
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return instr, nil
}

func (p *parser) parseCondBranch() (*Instruction, error) {
	p.next() // "if"
	p.expectPunct("(")
	cond, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.expectPunct(")")
	if !p.isIdent("goto") {
		return nil, fmt.Errorf("ir: expected goto after if(...), got %q", p.peek().text)
	}
	p.next()
	label := p.next().text
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return &Instruction{Kind: CondBranch, Operand: cond, Label: label}, nil
}

func (p *parser) parsePutFieldStmt() (*Instruction, error) {
	p.next() // "putfield"
	p.expectPunct("(")
	obj, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.expectPunct(",")
	field, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.expectPunct(",")
	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.expectPunct(")")
	p.expectPunct(".")
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return &Instruction{Kind: PutField, Object: obj, Name: field.Name, Value: value, Type: t}, nil
}

// parseAssignOrExprStmt parses "dest :=.T rhs;" or a bare "expr;".
func (p *parser) parseAssignOrExprStmt() (*Instruction, error) {
	first, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if p.isPunct(":=") {
		p.next()
		p.expectPunct(".")
		assignType, err := p.parseType()
		if err != nil {
			return nil, err
		}
		rhs, err := p.parseRHS()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		return &Instruction{Kind: Assign, Dest: first, RHS: rhs, Type: assignType}, nil
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return first, nil
}

// parseRHS parses the right-hand side of an Assign: a UnaryOp
// ("!.T operand"), a BinaryOp ("l OP.T r"), or a plain value.
func (p *parser) parseRHS() (*Instruction, error) {
	if p.isPunct("!") {
		p.next()
		p.expectPunct(".")
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		operand, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return &Instruction{Kind: UnaryOp, Op: "!", Operand: operand, Type: t}, nil
	}

	first, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if op, ok := p.peekBinaryOp(); ok {
		p.next()
		p.expectPunct(".")
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		r, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return &Instruction{Kind: BinaryOp, L: first, Op: op, R: r, Type: t}, nil
	}
	switch first.Kind {
	case Literal, Operand, ArrayOperand:
		return &Instruction{Kind: SingleOp, Operand: first, Type: first.Type}, nil
	}
	return first, nil
}

var binaryOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true,
	"<": true, "<=": true, ">": true, ">=": true, "==": true,
	"&&": true, "||": true,
}

func (p *parser) peekBinaryOp() (string, bool) {
	t := p.peek()
	if t.kind != tokPunct {
		return "", false
	}
	if binaryOps[t.text] {
		return t.text, true
	}
	return "", false
}

// parseValue parses one element or call form: a Literal, Operand,
// ArrayOperand, GetField, or Call (new/arraylength/invoke*).
func (p *parser) parseValue() (*Instruction, error) {
	t := p.peek()

	if t.kind == tokPunct && t.text == "-" && p.at(1).kind == tokNum {
		p.next()
		numTok := p.next()
		p.expectPunct(".")
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &Instruction{Kind: Literal, Text: "-" + numTok.text, Type: typ}, nil
	}
	if t.kind == tokNum {
		p.next()
		p.expectPunct(".")
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &Instruction{Kind: Literal, Text: t.text, Type: typ}, nil
	}

	if t.kind != tokIdent {
		return nil, fmt.Errorf("ir: expected value, got %q", t.text)
	}

	switch t.text {
	case "this":
		p.next()
		if p.isPunct(".") {
			p.next()
			typ, err := p.parseType()
			if err != nil {
				return nil, err
			}
			return &Instruction{Kind: Operand, Name: "this", Type: typ}, nil
		}
		return &Instruction{Kind: Operand, Name: "this"}, nil
	case "new":
		return p.parseNew()
	case "arraylength":
		return p.parseArrayLength()
	case "getfield":
		return p.parseGetField()
	case "invokestatic":
		return p.parseInvoke(InvokeStatic)
	case "invokespecial":
		return p.parseInvoke(InvokeSpecial)
	case "invokevirtual":
		return p.parseInvoke(InvokeVirtual)
	}

	name := p.next().text
	if p.isPunct("[") {
		p.next()
		idx, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		p.expectPunct("]")
		p.expectPunct(".")
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &Instruction{Kind: ArrayOperand, Name: name, Type: typ, Indices: []*Instruction{idx}}, nil
	}
	if p.isPunct(".") {
		p.next()
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &Instruction{Kind: Operand, Name: name, Type: typ}, nil
	}
	return &Instruction{Kind: Operand, Name: name}, nil
}

func (p *parser) parseNew() (*Instruction, error) {
	p.next() // "new"
	p.expectPunct("(")
	if p.isIdent("array") {
		p.next()
		p.expectPunct(",")
		size, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		p.expectPunct(")")
		p.expectPunct(".")
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &Instruction{Kind: Call, InvKind: NewArray, Args: []*Instruction{size}, Type: typ}, nil
	}
	className := p.next().text
	p.expectPunct(")")
	p.expectPunct(".")
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return &Instruction{Kind: Call, InvKind: NewObject, Name: className, Type: typ}, nil
}

func (p *parser) parseArrayLength() (*Instruction, error) {
	p.next() // "arraylength"
	p.expectPunct("(")
	obj, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.expectPunct(")")
	p.expectPunct(".")
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return &Instruction{Kind: Call, InvKind: ArrayLength, Object: obj, Type: typ}, nil
}

func (p *parser) parseGetField() (*Instruction, error) {
	p.next() // "getfield"
	p.expectPunct("(")
	obj, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.expectPunct(",")
	field, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.expectPunct(")")
	p.expectPunct(".")
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return &Instruction{Kind: GetField, Object: obj, Name: field.Name, Type: typ}, nil
}

func (p *parser) parseInvoke(kind InvocationKind) (*Instruction, error) {
	p.next() // invoke keyword
	p.expectPunct("(")
	obj, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	instr := &Instruction{Kind: Call, InvKind: kind, Object: obj}
	if p.isPunct(",") {
		p.next()
		nameTok := p.next()
		if nameTok.kind != tokStr {
			return nil, fmt.Errorf("ir: expected method name string, got %q", nameTok.text)
		}
		instr.Name = nameTok.text
		for p.isPunct(",") {
			p.next()
			arg, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			instr.Args = append(instr.Args, arg)
		}
	}
	p.expectPunct(")")
	p.expectPunct(".")
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	instr.Type = typ
	return instr, nil
}

// resolveSuccessors implements RegisterAllocator step 1 of spec §4.7:
// every instruction falls through to the next one except Goto (jumps
// to its label), CondBranch (its label, plus fallthrough), and Return
// (no successors, being a method exit).
func resolveSuccessors(m *Method) {
	for i, ins := range m.Instructions {
		switch ins.Kind {
		case Goto:
			if target, ok := m.Labels[ins.Label]; ok {
				ins.Succs = []int{target}
			}
		case CondBranch:
			var succs []int
			if target, ok := m.Labels[ins.Label]; ok {
				succs = append(succs, target)
			}
			if i+1 < len(m.Instructions) {
				succs = append(succs, i+1)
			}
			ins.Succs = succs
		case Return:
			ins.Succs = nil
		default:
			if i+1 < len(m.Instructions) {
				ins.Succs = []int{i + 1}
			}
		}
	}
}
