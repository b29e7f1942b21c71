package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marco-vb/jmmc/internal/ast"
)

const sample = `
import io.Sys;
import other.pkg.Helper;

class Calc extends Base {
    int total;

    public int add(int a, int b) {
        int result;
        result = a + b;
        return result;
    }

    public static void main(int argc) {
        if (argc == 0) {
            total = 1;
        } else {
            total = 2;
        }
        while (total < 10) {
            total = total + 1;
        }
    }
}
`

func TestParseBuildsImportsWithFullDottedPath(t *testing.T) {
	prog, reps := Parse(sample)
	require.Nil(t, reps)
	imports := prog.Imports()
	require.Len(t, imports, 2)
	assert.Equal(t, "io.Sys", imports[0].Name)
	assert.Equal(t, "other.pkg.Helper", imports[1].Name)
}

func TestParseBuildsClassDeclaration(t *testing.T) {
	prog, reps := Parse(sample)
	require.Nil(t, reps)
	class := prog.ClassDecl()
	require.NotNil(t, class)
	assert.Equal(t, "Calc", class.Name)
	assert.Equal(t, "Base", class.Ext)
	require.Len(t, class.Fields(), 1)
	assert.Equal(t, "total", class.Fields()[0].Name)
}

func TestParseBuildsMethodSignatureAndLocals(t *testing.T) {
	prog, reps := Parse(sample)
	require.Nil(t, reps)
	class := prog.ClassDecl()
	methods := class.Methods()
	require.Len(t, methods, 2)

	add := methods[0]
	assert.Equal(t, "add", add.Name)
	assert.True(t, add.IsPublic)
	assert.False(t, add.IsStatic)
	assert.Equal(t, "int", add.MethodType().Name)

	args := add.MethodArgs().ArgList()
	require.Len(t, args, 2)
	assert.Equal(t, "a", args[0].Name)
	assert.Equal(t, "b", args[1].Name)

	locals := add.MethodLocals()
	require.Len(t, locals, 1)
	assert.Equal(t, "result", locals[0].Name)
}

func TestParseBuildsIfElseAndWhile(t *testing.T) {
	prog, reps := Parse(sample)
	require.Nil(t, reps)
	main := prog.ClassDecl().Methods()[1]
	assert.True(t, main.IsStatic)

	body := main.MethodBody()
	require.Len(t, body, 2)
	assert.Equal(t, ast.IfElseStmt, body[0].Kind)
	assert.Equal(t, ast.WhileStmt, body[1].Kind)

	ifStmt := body[0]
	cond := ifStmt.Child(0)
	assert.Equal(t, ast.BinaryExpr, cond.Kind)
	assert.Equal(t, "==", cond.Op)
}

func TestParseArrayTypeAndVarargs(t *testing.T) {
	src := `
class Foo {
    public int sum(int[] xs) {
        return xs[0];
    }
    public int vsum(int... xs) {
        return xs[0];
    }
}
`
	prog, reps := Parse(src)
	require.Nil(t, reps)
	methods := prog.ClassDecl().Methods()
	sumArgs := methods[0].MethodArgs().ArgList()
	require.Len(t, sumArgs, 1)
	assert.True(t, sumArgs[0].ArgType().IsArray)

	vsumArgs := methods[1].MethodArgs().ArgList()
	require.Len(t, vsumArgs, 1)
	assert.True(t, vsumArgs[0].ArgType().IsVarargs)
}

func TestParseArrayAssignmentAndAccess(t *testing.T) {
	src := `
class Foo {
    public int get(int[] xs) {
        xs[0] = 5;
        return xs[0];
    }
}
`
	prog, reps := Parse(src)
	require.Nil(t, reps)
	body := prog.ClassDecl().Methods()[0].MethodBody()
	require.Len(t, body, 2)
	assert.Equal(t, ast.ArrayAssignStmt, body[0].Kind)
	assert.Equal(t, "xs", body[0].Child(0).Name)
}

func TestParseNewObjectAndNewArray(t *testing.T) {
	src := `
class Foo {
    public int make() {
        Bar b;
        int[] xs;
        b = new Bar();
        xs = new int[10];
        return xs[0];
    }
}
`
	prog, reps := Parse(src)
	require.Nil(t, reps)
	body := prog.ClassDecl().Methods()[0].MethodBody()
	require.Len(t, body, 3)
	assert.Equal(t, ast.NewExpr, body[0].Child(1).Kind)
	assert.Equal(t, "Bar", body[0].Child(1).Name)
	assert.Equal(t, ast.NewArrayExpr, body[1].Child(1).Kind)
}

func TestParseMethodCallChainAndThis(t *testing.T) {
	src := `
class Foo {
    public int run() {
        return this.helper(1, 2);
    }
}
`
	prog, reps := Parse(src)
	require.Nil(t, reps)
	ret := prog.ClassDecl().Methods()[0].MethodBody()[0]
	call := ret.Child(0)
	require.Equal(t, ast.FuncExpr, call.Kind)
	assert.Equal(t, "helper", call.Name)
	assert.Equal(t, ast.ThisExpr, call.Child(0).Kind)
	require.Len(t, call.Children, 3)
}

func TestParseRespectsBinaryPrecedence(t *testing.T) {
	src := `
class Foo {
    public int run() {
        return 1 + 2 * 3;
    }
}
`
	prog, reps := Parse(src)
	require.Nil(t, reps)
	ret := prog.ClassDecl().Methods()[0].MethodBody()[0].Child(0)
	require.Equal(t, ast.BinaryExpr, ret.Kind)
	assert.Equal(t, "+", ret.Op)
	rhs := ret.Child(1)
	assert.Equal(t, ast.BinaryExpr, rhs.Kind)
	assert.Equal(t, "*", rhs.Op)
}

func TestParseReportsSyntaxError(t *testing.T) {
	_, reps := Parse("class Foo { public int run( { return 1; } }")
	require.NotEmpty(t, reps)
}
