// Package parser implements a recursive-descent parser for the Jmm
// source grammar of spec §6, producing the internal/ast.Node trees
// every downstream stage (SymbolTable, SemanticPasses, OllirEmitter)
// consumes.
//
// Grounded on the teacher's frontend/parser for the general shape of a
// hand-written recursive-descent parser over a lexer's token stream
// (one method per grammar production, a lookahead token held in the
// parser, panic-free error returns threaded back up); the grammar
// itself is Jmm's own (spec §6), not mpc's millipascal grammar.
package parser

import (
	"github.com/marco-vb/jmmc/internal/ast"
	"github.com/marco-vb/jmmc/internal/lexer"
	"github.com/marco-vb/jmmc/internal/report"
)

// Parse lexes and parses src into a Program node, or returns the first
// diagnostic encountered.
func Parse(src string) (*ast.Node, []report.Report) {
	toks, reps := lexer.ReadAll(src)
	if reps != nil {
		return nil, reps
	}
	p := &parser{toks: toks}
	prog, err := p.parseProgram()
	if err != nil {
		return nil, []report.Report{*err}
	}
	return prog, nil
}

type parser struct {
	toks []lexer.Token
	pos  int
}

func (p *parser) peek() lexer.Token { return p.toks[p.pos] }
func (p *parser) at(off int) lexer.Token {
	if p.pos+off >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+off]
}
func (p *parser) next() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}
func (p *parser) is(k lexer.Kind) bool { return p.peek().Kind == k }

func (p *parser) errf(format string, args ...interface{}) *report.Report {
	t := p.peek()
	r := report.NewError(report.Parser, t.Line, t.Col, format, args...)
	return &r
}

func (p *parser) expect(k lexer.Kind) (lexer.Token, *report.Report) {
	if !p.is(k) {
		return lexer.Token{}, p.errf("expected %s, got %s", k, p.peek().Kind)
	}
	return p.next(), nil
}

// parseProgram implements: ImportDecl* ClassDecl.
func (p *parser) parseProgram() (*ast.Node, *report.Report) {
	prog := ast.New(ast.Program)
	for p.is(lexer.KwImport) {
		imp, err := p.parseImport()
		if err != nil {
			return nil, err
		}
		prog.Children = append(prog.Children, imp)
	}
	class, err := p.parseClass()
	if err != nil {
		return nil, err
	}
	prog.Children = append(prog.Children, class)
	return prog, nil
}

// parseImport implements: "import" ID ("." ID)* ";".
func (p *parser) parseImport() (*ast.Node, *report.Report) {
	kw := p.next()
	name, err := p.expect(lexer.Ident)
	if err != nil {
		return nil, err
	}
	path := name.Text
	for p.is(lexer.Dot) {
		p.next()
		seg, err := p.expect(lexer.Ident)
		if err != nil {
			return nil, err
		}
		path += "." + seg.Text
	}
	if _, err := p.expect(lexer.Semi); err != nil {
		return nil, err
	}
	return &ast.Node{Kind: ast.ImportDeclaration, Name: path, Line: kw.Line, Col: kw.Col}, nil
}

// parseClass implements: "class" ID ("extends" ID)? "{" VarDecl* MethodDecl* "}".
func (p *parser) parseClass() (*ast.Node, *report.Report) {
	kw, err := p.expect(lexer.KwClass)
	if err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.Ident)
	if err != nil {
		return nil, err
	}
	class := &ast.Node{Kind: ast.ClassDeclaration, Name: name.Text, Line: kw.Line, Col: kw.Col}
	if p.is(lexer.KwExtends) {
		p.next()
		super, err := p.expect(lexer.Ident)
		if err != nil {
			return nil, err
		}
		class.Ext = super.Text
	}
	if _, err := p.expect(lexer.LBrace); err != nil {
		return nil, err
	}
	for p.isTypeStart() && !p.looksLikeMethod() {
		v, err := p.parseVarDecl()
		if err != nil {
			return nil, err
		}
		class.Children = append(class.Children, v)
	}
	for !p.is(lexer.RBrace) {
		m, err := p.parseMethod()
		if err != nil {
			return nil, err
		}
		class.Children = append(class.Children, m)
	}
	if _, err := p.expect(lexer.RBrace); err != nil {
		return nil, err
	}
	return class, nil
}

// isTypeStart reports whether the current token can begin a Type.
func (p *parser) isTypeStart() bool {
	switch p.peek().Kind {
	case lexer.KwInt, lexer.KwBoolean, lexer.KwVoid, lexer.KwString, lexer.Ident:
		return true
	}
	return false
}

// looksLikeMethod disambiguates a class member: both a field and a
// method start with "Type ID", but a method's ID is followed by "(".
// Scanning a Type can itself span several tokens (e.g. "int" "[" "]"),
// so this speculatively parses the type then checks the shape, resetting
// position either way.
func (p *parser) looksLikeMethod() bool {
	save := p.pos
	defer func() { p.pos = save }()

	if p.is(lexer.KwPublic) {
		p.next()
	}
	if p.is(lexer.KwStatic) {
		p.next()
	}
	if _, err := p.parseType(); err != nil {
		return false
	}
	if !p.is(lexer.Ident) {
		return false
	}
	p.next()
	return p.is(lexer.LParen)
}

// parseType implements: "int" "[" "]" | "int" "..." | "boolean" | "int" |
// "String" "[" "]" | "String" | "void" | ID ("[" "]")?.
func (p *parser) parseType() (*ast.Node, *report.Report) {
	t := p.peek()
	var name string
	switch t.Kind {
	case lexer.KwInt:
		p.next()
		name = "int"
	case lexer.KwBoolean:
		p.next()
		name = "boolean"
	case lexer.KwVoid:
		p.next()
		return &ast.Node{Kind: ast.Type, Name: "void", Line: t.Line, Col: t.Col}, nil
	case lexer.KwString:
		p.next()
		name = "String"
	case lexer.Ident:
		p.next()
		name = t.Text
	default:
		return nil, p.errf("expected a type, got %s", t.Kind)
	}
	if name == "int" && p.is(lexer.Ellipsis) {
		p.next()
		return &ast.Node{Kind: ast.Type, Name: "int", IsVarargs: true, IsArray: true, Line: t.Line, Col: t.Col}, nil
	}
	if p.is(lexer.LBracket) {
		p.next()
		if _, err := p.expect(lexer.RBracket); err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.Type, Name: name, IsArray: true, Line: t.Line, Col: t.Col}, nil
	}
	return &ast.Node{Kind: ast.Type, Name: name, Line: t.Line, Col: t.Col}, nil
}

// parseVarDecl implements: Type ID ";".
func (p *parser) parseVarDecl() (*ast.Node, *report.Report) {
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semi); err != nil {
		return nil, err
	}
	return &ast.Node{Kind: ast.Variable, Name: name.Text, Line: typ.Line, Col: typ.Col, Children: []*ast.Node{typ}}, nil
}

// parseMethod implements:
// ("public")? ("static")? Type ID "(" (Param ("," Param)*)? ")" "{" VarDecl* Statement* "}".
func (p *parser) parseMethod() (*ast.Node, *report.Report) {
	start := p.peek()
	m := &ast.Node{Kind: ast.Method, Line: start.Line, Col: start.Col}
	if p.is(lexer.KwPublic) {
		p.next()
		m.IsPublic = true
	}
	if p.is(lexer.KwStatic) {
		p.next()
		m.IsStatic = true
	}
	retType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.Ident)
	if err != nil {
		return nil, err
	}
	m.Name = name.Text

	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	args := ast.New(ast.Arguments)
	for !p.is(lexer.RParen) {
		argType, err := p.parseType()
		if err != nil {
			return nil, err
		}
		argName, err := p.expect(lexer.Ident)
		if err != nil {
			return nil, err
		}
		args.Children = append(args.Children, &ast.Node{
			Kind: ast.Argument, Name: argName.Text, Line: argType.Line, Col: argType.Col,
			Children: []*ast.Node{argType},
		})
		if p.is(lexer.Comma) {
			p.next()
		}
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	m.Children = append(m.Children, retType, args)

	if _, err := p.expect(lexer.LBrace); err != nil {
		return nil, err
	}
	for p.isTypeStart() && p.looksLikeVarDecl() {
		v, err := p.parseVarDecl()
		if err != nil {
			return nil, err
		}
		m.Children = append(m.Children, v)
	}
	for !p.is(lexer.RBrace) {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		m.Children = append(m.Children, s)
	}
	if _, err := p.expect(lexer.RBrace); err != nil {
		return nil, err
	}
	return m, nil
}

// looksLikeVarDecl disambiguates a local declaration ("Type ID ;")
// from an expression/assignment statement that merely starts with an
// identifier that could also parse as a type name.
func (p *parser) looksLikeVarDecl() bool {
	save := p.pos
	defer func() { p.pos = save }()
	if _, err := p.parseType(); err != nil {
		return false
	}
	if !p.is(lexer.Ident) {
		return false
	}
	p.next()
	return p.is(lexer.Semi)
}

// parseStatement implements: Block | IfElse | While | Return |
// AssignOrArrayAssignOrExpression.
func (p *parser) parseStatement() (*ast.Node, *report.Report) {
	switch p.peek().Kind {
	case lexer.LBrace:
		return p.parseBlock()
	case lexer.KwIf:
		return p.parseIfElse()
	case lexer.KwWhile:
		return p.parseWhile()
	case lexer.KwReturn:
		return p.parseReturn()
	default:
		return p.parseAssignOrExprStmt()
	}
}

func (p *parser) parseBlock() (*ast.Node, *report.Report) {
	open, _ := p.expect(lexer.LBrace)
	block := &ast.Node{Kind: ast.ScopeStmt, Line: open.Line, Col: open.Col}
	for !p.is(lexer.RBrace) {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Children = append(block.Children, s)
	}
	if _, err := p.expect(lexer.RBrace); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *parser) parseIfElse() (*ast.Node, *report.Report) {
	kw := p.next()
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	thenS, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KwElse); err != nil {
		return nil, err
	}
	elseS, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.Node{Kind: ast.IfElseStmt, Line: kw.Line, Col: kw.Col, Children: []*ast.Node{cond, thenS, elseS}}, nil
}

func (p *parser) parseWhile() (*ast.Node, *report.Report) {
	kw := p.next()
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.Node{Kind: ast.WhileStmt, Line: kw.Line, Col: kw.Col, Children: []*ast.Node{cond, body}}, nil
}

func (p *parser) parseReturn() (*ast.Node, *report.Report) {
	kw := p.next()
	ret := &ast.Node{Kind: ast.ReturnStmt, Line: kw.Line, Col: kw.Col}
	if !p.is(lexer.Semi) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		ret.Children = append(ret.Children, e)
	}
	if _, err := p.expect(lexer.Semi); err != nil {
		return nil, err
	}
	return ret, nil
}

// parseAssignOrExprStmt implements: ID "=" Expr ";" |
// ID "[" Expr "]" "=" Expr ";" | Expr ";".
func (p *parser) parseAssignOrExprStmt() (*ast.Node, *report.Report) {
	start := p.peek()
	if p.is(lexer.Ident) && p.at(1).Kind == lexer.Assign {
		name := p.next()
		p.next() // "="
		rhs, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Semi); err != nil {
			return nil, err
		}
		target := &ast.Node{Kind: ast.Identifier, Name: name.Text, Line: name.Line, Col: name.Col}
		return &ast.Node{Kind: ast.AssignStmt, Line: start.Line, Col: start.Col, Children: []*ast.Node{target, rhs}}, nil
	}
	if p.is(lexer.Ident) && p.at(1).Kind == lexer.LBracket {
		name := p.next()
		p.next() // "["
		idx, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RBracket); err != nil {
			return nil, err
		}
		if p.is(lexer.Assign) {
			p.next()
			rhs, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.Semi); err != nil {
				return nil, err
			}
			target := &ast.Node{Kind: ast.Identifier, Name: name.Text, Line: name.Line, Col: name.Col}
			return &ast.Node{Kind: ast.ArrayAssignStmt, Line: start.Line, Col: start.Col, Children: []*ast.Node{target, idx, rhs}}, nil
		}
		// Not an array assignment: fold the already-consumed prefix into
		// an ArrayAccessExpr and continue parsing postfixes/operators.
		base := &ast.Node{Kind: ast.Identifier, Name: name.Text, Line: name.Line, Col: name.Col}
		access := &ast.Node{Kind: ast.ArrayAccessExpr, Line: name.Line, Col: name.Col, Children: []*ast.Node{base, idx}}
		e, err := p.parsePostfixFrom(access)
		if err != nil {
			return nil, err
		}
		e, err = p.parseBinaryFrom(e, 0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Semi); err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.ExpressionStmt, Line: start.Line, Col: start.Col, Children: []*ast.Node{e}}, nil
	}

	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semi); err != nil {
		return nil, err
	}
	return &ast.Node{Kind: ast.ExpressionStmt, Line: start.Line, Col: start.Col, Children: []*ast.Node{e}}, nil
}

// --- Expressions ---
//
// Precedence, low to high: || && == (< <= > >=) (+ -) (* /) unary postfix primary.

var binaryPrecedence = map[lexer.Kind]int{
	lexer.OrOr: 1, lexer.AndAnd: 2, lexer.EqEq: 3,
	lexer.Less: 4, lexer.LessEq: 4, lexer.Greater: 4, lexer.GreaterEq: 4,
	lexer.Plus: 5, lexer.Minus: 5,
	lexer.Star: 6, lexer.Slash: 6,
}

func opText(k lexer.Kind) string {
	switch k {
	case lexer.OrOr:
		return "||"
	case lexer.AndAnd:
		return "&&"
	case lexer.EqEq:
		return "=="
	case lexer.Less:
		return "<"
	case lexer.LessEq:
		return "<="
	case lexer.Greater:
		return ">"
	case lexer.GreaterEq:
		return ">="
	case lexer.Plus:
		return "+"
	case lexer.Minus:
		return "-"
	case lexer.Star:
		return "*"
	case lexer.Slash:
		return "/"
	}
	return "?"
}

func (p *parser) parseExpr() (*ast.Node, *report.Report) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return p.parseBinaryFrom(lhs, 0)
}

func (p *parser) parseBinaryFrom(lhs *ast.Node, minPrec int) (*ast.Node, *report.Report) {
	for {
		prec, ok := binaryPrecedence[p.peek().Kind]
		if !ok || prec < minPrec {
			return lhs, nil
		}
		opTok := p.next()
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		for {
			nextPrec, ok := binaryPrecedence[p.peek().Kind]
			if !ok || nextPrec <= prec {
				break
			}
			rhs, err = p.parseBinaryFrom(rhs, prec+1)
			if err != nil {
				return nil, err
			}
		}
		lhs = &ast.Node{Kind: ast.BinaryExpr, Op: opText(opTok.Kind), Line: opTok.Line, Col: opTok.Col, Children: []*ast.Node{lhs, rhs}}
	}
}

// parseUnary implements spec §6's only prefix operator, "!"; Jmm has
// no unary minus.
func (p *parser) parseUnary() (*ast.Node, *report.Report) {
	if p.is(lexer.Not) {
		t := p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.UnaryExpr, Op: "!", Line: t.Line, Col: t.Col, Children: []*ast.Node{operand}}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (*ast.Node, *report.Report) {
	prim, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parsePostfixFrom(prim)
}

// parsePostfixFrom chains ".m(args)" / ".field" / "[idx]" suffixes
// onto an already-parsed primary (spec §6: method call, member access,
// array access).
func (p *parser) parsePostfixFrom(n *ast.Node) (*ast.Node, *report.Report) {
	for {
		switch p.peek().Kind {
		case lexer.Dot:
			p.next()
			nameTok, err := p.expect(lexer.Ident)
			if err != nil {
				return nil, err
			}
			if p.is(lexer.LParen) {
				p.next()
				var args []*ast.Node
				for !p.is(lexer.RParen) {
					a, err := p.parseExpr()
					if err != nil {
						return nil, err
					}
					args = append(args, a)
					if p.is(lexer.Comma) {
						p.next()
					}
				}
				if _, err := p.expect(lexer.RParen); err != nil {
					return nil, err
				}
				call := &ast.Node{Kind: ast.FuncExpr, Name: nameTok.Text, Line: nameTok.Line, Col: nameTok.Col}
				call.Children = append(call.Children, n)
				call.Children = append(call.Children, args...)
				n = call
				continue
			}
			n = &ast.Node{Kind: ast.MemberExpr, Name: nameTok.Text, Line: nameTok.Line, Col: nameTok.Col, Children: []*ast.Node{n}}
		case lexer.LBracket:
			p.next()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBracket); err != nil {
				return nil, err
			}
			n = &ast.Node{Kind: ast.ArrayAccessExpr, Line: n.Line, Col: n.Col, Children: []*ast.Node{n, idx}}
		default:
			return n, nil
		}
	}
}

// parsePrimary implements: "(" Expr ")" | "[" (Expr ("," Expr)*)? "]" |
// "new" ID "(" ")" | "new" "int" "[" Expr "]" | ID | INT | "true" |
// "false" | "this".
func (p *parser) parsePrimary() (*ast.Node, *report.Report) {
	t := p.peek()
	switch t.Kind {
	case lexer.LParen:
		p.next()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen); err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.ParenExpr, Line: t.Line, Col: t.Col, Children: []*ast.Node{e}}, nil

	case lexer.LBracket:
		p.next()
		arr := &ast.Node{Kind: ast.ArrayExpr, Line: t.Line, Col: t.Col}
		for !p.is(lexer.RBracket) {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			arr.Children = append(arr.Children, e)
			if p.is(lexer.Comma) {
				p.next()
			}
		}
		if _, err := p.expect(lexer.RBracket); err != nil {
			return nil, err
		}
		return arr, nil

	case lexer.KwNew:
		p.next()
		if p.is(lexer.KwInt) {
			p.next()
			if _, err := p.expect(lexer.LBracket); err != nil {
				return nil, err
			}
			size, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBracket); err != nil {
				return nil, err
			}
			return &ast.Node{Kind: ast.NewArrayExpr, Line: t.Line, Col: t.Col, Children: []*ast.Node{size}}, nil
		}
		className, err := p.expect(lexer.Ident)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.LParen); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen); err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.NewExpr, Name: className.Text, Line: t.Line, Col: t.Col}, nil

	case lexer.KwThis:
		p.next()
		return &ast.Node{Kind: ast.ThisExpr, Line: t.Line, Col: t.Col}, nil

	case lexer.KwTrue:
		p.next()
		return &ast.Node{Kind: ast.BooleanLiteral, Value: "true", Line: t.Line, Col: t.Col}, nil

	case lexer.KwFalse:
		p.next()
		return &ast.Node{Kind: ast.BooleanLiteral, Value: "false", Line: t.Line, Col: t.Col}, nil

	case lexer.Int:
		p.next()
		return &ast.Node{Kind: ast.IntegerLiteral, Value: t.Text, Line: t.Line, Col: t.Col}, nil

	case lexer.Ident:
		p.next()
		return &ast.Node{Kind: ast.VarRefExpr, Name: t.Text, Line: t.Line, Col: t.Col}, nil
	}

	return nil, p.errf("expected an expression, got %s", t.Kind)
}
