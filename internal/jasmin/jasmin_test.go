package jasmin

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marco-vb/jmmc/internal/ir"
)

func intT() ir.Type     { return ir.Type{Name: "int"} }
func boolT() ir.Type    { return ir.Type{Name: "boolean"} }
func voidT() ir.Type    { return ir.Type{Name: "void"} }
func literal(v string, t ir.Type) *ir.Instruction {
	return &ir.Instruction{Kind: ir.Literal, Text: v, Type: t}
}
func operand(name string, t ir.Type) *ir.Instruction {
	return &ir.Instruction{Kind: ir.Operand, Name: name, Type: t}
}

func newClass(methods ...*ir.Method) *ir.ClassUnit {
	return &ir.ClassUnit{Name: "Test", Methods: methods}
}

func TestEmitClassHeaderDefaultsSuperToObject(t *testing.T) {
	out := Emit(newClass(), nil)
	assert.Contains(t, out, ".class public Test")
	assert.Contains(t, out, ".super java/lang/Object")
	assert.Contains(t, out, "invokespecial java/lang/Object/<init>()V")
}

func TestEmitClassHeaderResolvesImportedSuper(t *testing.T) {
	cu := newClass()
	cu.SuperClass = "Shape"
	out := Emit(cu, []string{"geometry.Shape"})
	assert.Contains(t, out, ".super geometry/Shape")
	assert.Contains(t, out, "invokespecial geometry/Shape/<init>()V")
}

func TestEmitMethodSignatureAndLimits(t *testing.T) {
	m := &ir.Method{
		Name:       "add",
		IsPublic:   true,
		IsStatic:   true,
		Params:     []ir.Param{{Name: "a", Type: intT()}, {Name: "b", Type: intT()}},
		ReturnType: intT(),
		Registers:  map[string]int{"a": 1, "b": 2},
		Instructions: []*ir.Instruction{
			{Kind: ir.Return, Type: intT(), Operand: &ir.Instruction{
				Kind: ir.BinaryOp, Op: "+", Type: intT(),
				L: operand("a", intT()), R: operand("b", intT()),
			}},
		},
	}
	out := Emit(newClass(m), nil)
	require.Contains(t, out, ".method public static add(II)I")
	assert.Contains(t, out, ".limit locals 3")
	assert.Contains(t, out, "iload_1")
	assert.Contains(t, out, "iload_2")
	assert.Contains(t, out, "iadd")
	assert.Contains(t, out, "ireturn")
}

func TestLoadStoreUseIndexedFormAboveRegisterThree(t *testing.T) {
	m := &ir.Method{
		Name:       "m",
		IsPublic:   true,
		ReturnType: voidT(),
		Registers:  map[string]int{"x": 4},
		Instructions: []*ir.Instruction{
			{Kind: ir.Assign, Type: intT(), Dest: operand("x", intT()), RHS: literal("1", intT())},
			{Kind: ir.Return, Type: voidT()},
		},
	}
	out := Emit(newClass(m), nil)
	assert.Contains(t, out, "istore 4")
	assert.NotContains(t, out, "istore_4")
}

func TestLoadStoreUseShortFormUpToRegisterThree(t *testing.T) {
	m := &ir.Method{
		Name:       "m",
		IsPublic:   true,
		ReturnType: voidT(),
		Registers:  map[string]int{"x": 3},
		Instructions: []*ir.Instruction{
			{Kind: ir.Assign, Type: intT(), Dest: operand("x", intT()), RHS: literal("1", intT())},
			{Kind: ir.Return, Type: voidT()},
		},
	}
	out := Emit(newClass(m), nil)
	assert.Contains(t, out, "istore_3")
}

func TestIntConstantMnemonicSelection(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"-1", "iconst_m1"},
		{"0", "iconst_0"},
		{"5", "iconst_5"},
		{"42", "bipush 42"},
		{"1000", "sipush 1000"},
		{"100000", "ldc 100000"},
	}
	for _, c := range cases {
		e := &emitter{cu: newClass()}
		code := e.emitLiteral(literal(c.text, intT()))
		assert.Contains(t, code, c.want, "text=%s", c.text)
	}
}

func TestIincPeepholeRecognisesPlusAndMinusLiteral(t *testing.T) {
	m := &ir.Method{
		Name: "m", IsPublic: true, ReturnType: voidT(),
		Registers: map[string]int{"i": 1},
		Instructions: []*ir.Instruction{
			{Kind: ir.Assign, Type: intT(), Dest: operand("i", intT()), RHS: &ir.Instruction{
				Kind: ir.BinaryOp, Op: "+", Type: intT(),
				L: operand("i", intT()), R: literal("1", intT()),
			}},
			{Kind: ir.Assign, Type: intT(), Dest: operand("i", intT()), RHS: &ir.Instruction{
				Kind: ir.BinaryOp, Op: "-", Type: intT(),
				L: operand("i", intT()), R: literal("2", intT()),
			}},
			{Kind: ir.Return, Type: voidT()},
		},
	}
	out := Emit(newClass(m), nil)
	assert.Contains(t, out, "iinc 1 1")
	assert.Contains(t, out, "iinc 1 -2")
	assert.NotContains(t, out, "iadd")
	assert.NotContains(t, out, "isub")
}

func TestIincPeepholeDoesNotFireOutsideByteRange(t *testing.T) {
	m := &ir.Method{
		Name: "m", IsPublic: true, ReturnType: voidT(),
		Registers: map[string]int{"i": 1},
		Instructions: []*ir.Instruction{
			{Kind: ir.Assign, Type: intT(), Dest: operand("i", intT()), RHS: &ir.Instruction{
				Kind: ir.BinaryOp, Op: "+", Type: intT(),
				L: operand("i", intT()), R: literal("200", intT()),
			}},
			{Kind: ir.Return, Type: voidT()},
		},
	}
	out := Emit(newClass(m), nil)
	assert.NotContains(t, out, "iinc")
	assert.Contains(t, out, "iadd")
}

func TestComparisonLowersToIsubAndFreshLabels(t *testing.T) {
	m := &ir.Method{
		Name: "m", IsPublic: true, ReturnType: intT(),
		Registers: map[string]int{"a": 1, "b": 2},
		Params:    []ir.Param{{Name: "a", Type: intT()}, {Name: "b", Type: intT()}},
		Instructions: []*ir.Instruction{
			{Kind: ir.Return, Type: intT(), Operand: &ir.Instruction{
				Kind: ir.BinaryOp, Op: "<", Type: boolT(),
				L: operand("a", intT()), R: operand("b", intT()),
			}},
		},
	}
	out := Emit(newClass(m), nil)
	assert.Contains(t, out, "isub")
	assert.Contains(t, out, "iflt")
	assert.Contains(t, out, "iconst_0")
	assert.Contains(t, out, "iconst_1")
	assert.Equal(t, 1, strings.Count(out, "goto L_cmpend"))
}

func TestUnaryNotLowersToXor(t *testing.T) {
	m := &ir.Method{
		Name: "m", IsPublic: true, ReturnType: boolT(),
		Registers: map[string]int{"a": 1},
		Params:    []ir.Param{{Name: "a", Type: boolT()}},
		Instructions: []*ir.Instruction{
			{Kind: ir.Return, Type: boolT(), Operand: &ir.Instruction{
				Kind: ir.UnaryOp, Op: "!", Type: boolT(),
				Operand: operand("a", boolT()),
			}},
		},
	}
	out := Emit(newClass(m), nil)
	assert.Contains(t, out, "iconst_1\nixor")
	assert.Contains(t, out, ".limit stack 2\n", "iload_1 then iconst_1 peaks at 2 before ixor consumes one")
}

func TestCondBranchEmitsIfne(t *testing.T) {
	m := &ir.Method{
		Name: "m", IsPublic: true, ReturnType: voidT(),
		Registers: map[string]int{"cond": 1},
		Instructions: []*ir.Instruction{
			{Kind: ir.CondBranch, Operand: operand("cond", boolT()), Label: "L_end"},
			{Kind: ir.Return, Type: voidT(), Labels: []string{"L_end"}},
		},
	}
	out := Emit(newClass(m), nil)
	assert.Contains(t, out, "ifne L_end")
	assert.Contains(t, out, "L_end:")
}

func TestArrayElementAssignUsesIastore(t *testing.T) {
	m := &ir.Method{
		Name: "m", IsPublic: true, ReturnType: voidT(),
		Registers: map[string]int{"arr": 1, "i": 2},
		Instructions: []*ir.Instruction{
			{Kind: ir.Assign, Type: intT(),
				Dest: &ir.Instruction{Kind: ir.ArrayOperand, Name: "arr", Type: intT(),
					Indices: []*ir.Instruction{operand("i", intT())}},
				RHS: literal("9", intT()),
			},
			{Kind: ir.Return, Type: voidT()},
		},
	}
	out := Emit(newClass(m), nil)
	assert.Contains(t, out, "aload_1")
	assert.Contains(t, out, "iload_2")
	assert.Contains(t, out, "iastore")
}

func TestArrayElementReadUsesIaload(t *testing.T) {
	m := &ir.Method{
		Name: "m", IsPublic: true, ReturnType: intT(),
		Registers: map[string]int{"arr": 1, "i": 2},
		Instructions: []*ir.Instruction{
			{Kind: ir.Return, Type: intT(), Operand: &ir.Instruction{
				Kind: ir.ArrayOperand, Name: "arr", Type: intT(),
				Indices: []*ir.Instruction{operand("i", intT())},
			}},
		},
	}
	out := Emit(newClass(m), nil)
	assert.Contains(t, out, "aload_1")
	assert.Contains(t, out, "iload_2")
	assert.Contains(t, out, "iaload")
}

func TestInvokeStaticResolvesOwnerViaImportMap(t *testing.T) {
	m := &ir.Method{
		Name: "m", IsPublic: true, IsStatic: true, ReturnType: voidT(),
		Instructions: []*ir.Instruction{
			{Kind: ir.Call, Type: voidT(), InvKind: ir.InvokeStatic,
				Object: &ir.Instruction{Kind: ir.Operand, Name: "io"},
				Name:   "println",
				Args:   []*ir.Instruction{literal("1", intT())},
			},
			{Kind: ir.Return, Type: voidT()},
		},
	}
	out := Emit(newClass(m), []string{"some.pkg.io"})
	assert.Contains(t, out, "invokestatic some/pkg/io/println(I)V")
}

func TestInvokeVirtualOnThisUsesOwnClass(t *testing.T) {
	m := &ir.Method{
		Name: "m", IsPublic: true, ReturnType: voidT(),
		Instructions: []*ir.Instruction{
			{Kind: ir.Call, Type: intT(), InvKind: ir.InvokeVirtual,
				Object: operand("this", ir.Type{}),
				Name:   "helper",
			},
			{Kind: ir.Return, Type: voidT()},
		},
	}
	out := Emit(newClass(m), nil)
	assert.Contains(t, out, "aload_0")
	assert.Contains(t, out, "invokevirtual Test/helper()I")
	assert.Contains(t, out, "pop")
}

func TestNewObjectAndArray(t *testing.T) {
	m := &ir.Method{
		Name: "m", IsPublic: true, ReturnType: voidT(),
		Registers: map[string]int{"n": 1},
		Instructions: []*ir.Instruction{
			{Kind: ir.Call, InvKind: ir.NewObject, Name: "Foo", Type: ir.Type{Name: "Foo"}},
			{Kind: ir.Call, InvKind: ir.NewArray, Type: ir.Type{Name: "int", IsArray: true},
				Args: []*ir.Instruction{operand("n", intT())}},
			{Kind: ir.Return, Type: voidT()},
		},
	}
	out := Emit(newClass(m), []string{"other.Foo"})
	assert.Contains(t, out, "new other/Foo")
	assert.Contains(t, out, "newarray int")
}

func TestGetFieldAndPutFieldUseFieldDescriptor(t *testing.T) {
	m := &ir.Method{
		Name: "m", IsPublic: true, ReturnType: intT(),
		Instructions: []*ir.Instruction{
			{Kind: ir.PutField, Object: operand("this", ir.Type{}), Name: "count",
				Value: literal("1", intT()), Type: intT()},
			{Kind: ir.Return, Type: intT(), Operand: &ir.Instruction{
				Kind: ir.GetField, Object: operand("this", ir.Type{}), Name: "count", Type: intT(),
			}},
		},
	}
	out := Emit(newClass(m), nil)
	assert.Contains(t, out, "putfield Test/count I")
	assert.Contains(t, out, "getfield Test/count I")
}

func TestDescriptorTableForArraysAndObjects(t *testing.T) {
	resolve := func(s string) string { return s }
	assert.Equal(t, "I", descOf(resolve, intT()))
	assert.Equal(t, "Z", descOf(resolve, boolT()))
	assert.Equal(t, "V", descOf(resolve, voidT()))
	assert.Equal(t, "Ljava/lang/String;", descOf(resolve, ir.Type{Name: "String"}))
	assert.Equal(t, "[I", descOf(resolve, ir.Type{Name: "int", IsArray: true}))
	assert.Equal(t, "LFoo;", descOf(resolve, ir.Type{Name: "Foo"}))
}
