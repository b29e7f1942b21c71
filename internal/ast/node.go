package ast

import "strconv"

// DataType is the (name, isArray) pair of spec §3. void never combines
// with isArray; callers that build one from a varargs Type node should
// treat it exactly as an array type for assignability purposes (§9).
type DataType struct {
	Name    string
	IsArray bool
}

func (t DataType) String() string {
	if t.IsArray {
		return t.Name + "[]"
	}
	return t.Name
}

func (t DataType) Equal(o DataType) bool {
	return t.Name == o.Name && t.IsArray == o.IsArray
}

var (
	IntType     = DataType{Name: "int"}
	BoolType    = DataType{Name: "boolean"}
	VoidType    = DataType{Name: "void"}
	AnyType     = DataType{Name: "any"}
	IntArray    = DataType{Name: "int", IsArray: true}
)

// Node is a single AST node kind, attribute-tagged per the table in
// spec §3. Attributes that have a fixed shape per Kind get typed
// fields (Name, Op, Value, the bool flags); Attrs is the escape hatch
// for anything without a stable shape, such as parser-attached
// diagnostics.
type Node struct {
	Kind Kind

	Name  string // identifier / class / method / field / import name
	Op    string // BinaryExpr operator
	Value string // literal text (IntegerLiteral, BooleanLiteral)

	IsArray   bool // Type
	IsVarargs bool // Type
	IsPublic  bool // Method
	IsStatic  bool // Method
	Ext       string // ClassDeclaration: superclass name, "" if none

	Children []*Node

	Line, Col int

	// ResolvedType is a slot for a node's type. No stage sets or reads
	// it; the TypeEngine derives types afresh on every call.
	ResolvedType *DataType

	Attrs map[string]string
}

func New(kind Kind, children ...*Node) *Node {
	return &Node{Kind: kind, Children: children}
}

func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

func (n *Node) NumChildren() int {
	if n == nil {
		return 0
	}
	return len(n.Children)
}

func (n *Node) Attr(key string) string {
	if n.Attrs == nil {
		return ""
	}
	return n.Attrs[key]
}

func (n *Node) SetAttr(key, val string) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[key] = val
}

// Detach removes and returns the child at index i, shifting later
// children left. Used by ConstantOptimiser (replacing a subtree with
// a folded literal) and VarargsLowerer (regrouping trailing args).
func (n *Node) Detach(i int) *Node {
	child := n.Children[i]
	n.Children = append(n.Children[:i], n.Children[i+1:]...)
	return child
}

// InsertAt inserts child at index i, shifting later children right.
func (n *Node) InsertAt(i int, child *Node) {
	n.Children = append(n.Children, nil)
	copy(n.Children[i+1:], n.Children[i:])
	n.Children[i] = child
}

// Replace swaps the child at index i for replacement in place.
func (n *Node) Replace(i int, replacement *Node) {
	n.Children[i] = replacement
}

// DetachFrom detaches and returns every child from index i to the end,
// in order, leaving n with only its first i children.
func (n *Node) DetachFrom(i int) []*Node {
	tail := n.Children[i:]
	n.Children = n.Children[:i:i]
	return tail
}

// ClassDecl returns the Program's single class declaration child.
func (p *Node) ClassDecl() *Node {
	for _, c := range p.Children {
		if c.Kind == ClassDeclaration {
			return c
		}
	}
	return nil
}

func (p *Node) Imports() []*Node {
	var out []*Node
	for _, c := range p.Children {
		if c.Kind == ImportDeclaration {
			out = append(out, c)
		}
	}
	return out
}

func (c *Node) Fields() []*Node {
	var out []*Node
	for _, k := range c.Children {
		if k.Kind == Variable {
			out = append(out, k)
		}
	}
	return out
}

func (c *Node) Methods() []*Node {
	var out []*Node
	for _, k := range c.Children {
		if k.Kind == Method {
			out = append(out, k)
		}
	}
	return out
}

// VarType returns a Variable node's declared Type child.
func (v *Node) VarType() *Node {
	return v.Child(0)
}

// MethodType returns a Method node's declared return Type child.
func (m *Node) MethodType() *Node {
	return m.Child(0)
}

func (m *Node) MethodArgs() *Node {
	return m.Child(1)
}

func (m *Node) MethodLocals() []*Node {
	var out []*Node
	for _, k := range m.Children[2:] {
		if k.Kind == Variable {
			out = append(out, k)
		}
	}
	return out
}

// MethodBody returns the Method's statements, in source order,
// excluding the declared locals that precede them positionally.
func (m *Node) MethodBody() []*Node {
	var out []*Node
	for _, k := range m.Children[2:] {
		if k.Kind != Variable {
			out = append(out, k)
		}
	}
	return out
}

func (a *Node) ArgList() []*Node {
	return a.Children
}

func (a *Node) ArgType() *Node {
	return a.Child(0)
}

// AsType reads a Type node's (name, isArray) pair as a DataType.
func (t *Node) AsType() DataType {
	return DataType{Name: t.Name, IsArray: t.IsArray}
}

func (n *Node) IntValue() int32 {
	v, _ := strconv.ParseInt(n.Value, 10, 32)
	return int32(v)
}

func (n *Node) BoolValue() bool {
	return n.Value == "true"
}

// Clone makes a deep copy of the subtree rooted at n. Used by
// ConstantOptimiser when substituting a bound literal into multiple
// use sites: each use gets its own node so later rewrites of one copy
// (or its ResolvedType cache) cannot alias another.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	clone := *n
	clone.Children = make([]*Node, len(n.Children))
	for i, c := range n.Children {
		clone.Children[i] = c.Clone()
	}
	if n.Attrs != nil {
		clone.Attrs = make(map[string]string, len(n.Attrs))
		for k, v := range n.Attrs {
			clone.Attrs[k] = v
		}
	}
	return &clone
}
