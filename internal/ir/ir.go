// Package ir is the in-memory class/method/instruction model of spec
// §3's "IR (OllirReader output)": the contract RegisterAllocator and
// JasminEmitter consume once OllirReader has re-parsed an emitted
// OLLIR program.
//
// Grounded on the teacher's core/mir.Instr: one struct with a Kind tag
// and a handful of generically-named operand slots (A, B, Dest) rather
// than a Go type per instruction variant, so a missing field read is a
// zero value instead of a type assertion panic. The spec's longer list
// of variants (Assign/BinaryOp/UnaryOp/SingleOp/Literal/Operand/
// ArrayOperand/GetField/PutField/Call/Return/CondBranch/Goto) maps onto
// the same shape: every variant is an *Instruction distinguished by
// Kind, and operand positions reuse the same few fields the way
// mir.Instr reuses A/B/Dest across its own, shorter, variant list.
package ir

// Type is the OLLIR type of an operand or instruction result.
type Type struct {
	Name    string
	IsArray bool
}

func (t Type) String() string {
	if t.Name == "" {
		return "V"
	}
	if t.IsArray {
		return "array." + t.Name
	}
	return t.Name
}

// InvocationKind distinguishes the Call forms of spec §3.
type InvocationKind int

const (
	InvokeStatic InvocationKind = iota
	InvokeSpecial
	InvokeVirtual
	NewObject
	NewArray
	ArrayLength
)

func (k InvocationKind) String() string {
	switch k {
	case InvokeStatic:
		return "invokestatic"
	case InvokeSpecial:
		return "invokespecial"
	case InvokeVirtual:
		return "invokevirtual"
	case NewObject, NewArray:
		return "new"
	case ArrayLength:
		return "arraylength"
	}
	return "?"
}

// Kind tags the variant an *Instruction represents. Literal, Operand
// and ArrayOperand are elements (they denote a value and never appear
// as a top-level instruction); the rest are statements that may
// appear in a Method's Instructions list.
type Kind int

const (
	Invalid Kind = iota

	Assign
	BinaryOp
	UnaryOp
	SingleOp
	Literal
	Operand
	ArrayOperand
	GetField
	PutField
	Call
	Return
	CondBranch
	Goto
)

func (k Kind) String() string {
	switch k {
	case Assign:
		return "Assign"
	case BinaryOp:
		return "BinaryOp"
	case UnaryOp:
		return "UnaryOp"
	case SingleOp:
		return "SingleOp"
	case Literal:
		return "Literal"
	case Operand:
		return "Operand"
	case ArrayOperand:
		return "ArrayOperand"
	case GetField:
		return "GetField"
	case PutField:
		return "PutField"
	case Call:
		return "Call"
	case Return:
		return "Return"
	case CondBranch:
		return "CondBranch"
	case Goto:
		return "Goto"
	}
	return "Invalid"
}

// Instruction is the single tagged-union node of the IR. Which fields
// are meaningful depends on Kind:
//
//	Assign       Dest, RHS
//	BinaryOp     Op, L, R
//	UnaryOp      Op, Operand
//	SingleOp     Operand
//	Literal      Text, Type
//	Operand      Name, Type
//	ArrayOperand Name, Type, Indices
//	GetField     Object, Name (field name), Type
//	PutField     Object, Name (field name), Value
//	Call         InvKind, Object (caller), Name (method name), Args, Type (return)
//	Return       Operand, Type
//	CondBranch   Operand (condition), Label
//	Goto         Label
//
// ID is unique within the owning Method. Labels holds the label names
// attached immediately before this instruction in the source OLLIR
// text (spec §3: "each instruction has a unique id and optional
// labels attached to it"). Succs holds CFG successor indices into the
// owning Method's Instructions slice; it is populated by the reader
// and consumed unmodified by RegisterAllocator step 1.
type Instruction struct {
	ID     int
	Labels []string
	Kind   Kind
	Type   Type

	Name string
	Text string

	Dest    *Instruction
	RHS     *Instruction
	L, R    *Instruction
	Op      string
	Operand *Instruction
	Indices []*Instruction

	Object *Instruction
	Value  *Instruction

	InvKind InvocationKind
	Args    []*Instruction

	Label string

	Succs []int
}

// Param is a method parameter: a name and a type, per spec §3.
type Param struct {
	Name string
	Type Type
}

// Field is a class field: a name and a type.
type Field struct {
	Name string
	Type Type
}

// Method is one method of a ClassUnit: its parameters, its ordered
// instruction list, and the label→index map the reader built while
// resolving Goto/CondBranch targets.
type Method struct {
	Name       string
	IsPublic   bool
	IsStatic   bool
	IsConstructor bool
	Params     []Param
	ReturnType Type

	Instructions []*Instruction
	Labels       map[string]int

	// Registers maps a local/temp name to its allocated virtual
	// register (spec §4.7 step 7). Populated by package regalloc;
	// nil until RegisterAllocator has run. Parameters occupy
	// registers 1..len(Params) (0 is "this" on an instance method)
	// and are never overwritten here.
	Registers map[string]int
}

// ClassUnit is the ClassUnit of spec §3: fields, ordered methods.
type ClassUnit struct {
	Name       string
	SuperClass string
	Imports    []string
	Fields     []Field
	Methods    []*Method
}
