package varargslower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marco-vb/jmmc/internal/ast"
	"github.com/marco-vb/jmmc/internal/parser"
	"github.com/marco-vb/jmmc/internal/symbols"
	"github.com/marco-vb/jmmc/internal/types"
)

func run(t *testing.T, src string) *ast.Node {
	t.Helper()
	prog, reps := parser.Parse(src)
	require.Nil(t, reps)
	table := symbols.Build(prog)
	engine := types.New(table)
	Run(prog, table, engine)
	return prog
}

func TestRunGroupsTrailingScalarArgsIntoArrayExpr(t *testing.T) {
	prog := run(t, `
class Calc {
    public int sum(int... xs) {
        return xs[0];
    }
    public int run() {
        return this.sum(1, 2, 3);
    }
}
`)
	call := prog.ClassDecl().Methods()[1].MethodBody()[0].Child(0)
	require.Equal(t, ast.FuncExpr, call.Kind)
	require.Len(t, call.Children, 2) // receiver + one grouped array
	array := call.Children[1]
	assert.Equal(t, ast.ArrayExpr, array.Kind)
	require.Len(t, array.Children, 3)
}

func TestRunLeavesExplicitArrayArgumentUntouched(t *testing.T) {
	prog := run(t, `
class Calc {
    public int sum(int... xs) {
        return xs[0];
    }
    public int run() {
        int[] xs;
        xs = new int[3];
        return this.sum(xs);
    }
}
`)
	body := prog.ClassDecl().Methods()[1].MethodBody()
	call := body[1].Child(0)
	require.Len(t, call.Children, 2)
	assert.Equal(t, ast.VarRefExpr, call.Children[1].Kind)
}

func TestRunLeavesFixedArityCallUntouched(t *testing.T) {
	prog := run(t, `
class Calc {
    public int add(int a, int b) {
        return a + b;
    }
    public int run() {
        return this.add(1, 2);
    }
}
`)
	call := prog.ClassDecl().Methods()[1].MethodBody()[0].Child(0)
	require.Len(t, call.Children, 3)
	assert.Equal(t, ast.IntegerLiteral, call.Children[1].Kind)
	assert.Equal(t, ast.IntegerLiteral, call.Children[2].Kind)
}

func TestRunLeavesFixedArgsBeforeVarargsGroupUntouched(t *testing.T) {
	prog := run(t, `
class Calc {
    public int sum(int base, int... xs) {
        return base + xs[0];
    }
    public int run() {
        return this.sum(10, 1, 2);
    }
}
`)
	call := prog.ClassDecl().Methods()[1].MethodBody()[0].Child(0)
	require.Len(t, call.Children, 3) // receiver, base, grouped array
	assert.Equal(t, ast.IntegerLiteral, call.Children[1].Kind)
	assert.Equal(t, ast.ArrayExpr, call.Children[2].Kind)
	require.Len(t, call.Children[2].Children, 2)
}
