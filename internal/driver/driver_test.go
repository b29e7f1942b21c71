package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marco-vb/jmmc/internal/report"
)

const addTwo = `
class AddTwo {
    int total;

    public int add(int a, int b) {
        int result;
        result = a + b;
        return result;
    }

    public static void main(String[] args) {
        int x;
        x = 0;
    }
}
`

func TestCompileProducesOllirAndJasminForValidSource(t *testing.T) {
	result := Compile(addTwo, Options{RegisterCeiling: -1})
	require.False(t, report.HasErrors(result.Reports), "%v", result.Reports)
	assert.Contains(t, result.Ollir, "AddTwo")
	assert.Contains(t, result.Jasmin, ".class public AddTwo")
	assert.Contains(t, result.Jasmin, ".method public add(II)I")
}

func TestCompileStopsAtParseError(t *testing.T) {
	result := Compile("class { }", Options{})
	require.NotEmpty(t, result.Reports)
	assert.Equal(t, report.Parser, result.Reports[0].Stage)
	assert.Empty(t, result.Jasmin)
}

func TestCompileStopsAtSemanticError(t *testing.T) {
	src := `
class Foo {
    public int run() {
        return undeclared;
    }
}
`
	result := Compile(src, Options{})
	require.NotEmpty(t, result.Reports)
	assert.Equal(t, report.Semantic, result.Reports[0].Stage)
	assert.Empty(t, result.Jasmin)
}

func TestCompileReportsRegisterCeilingViolation(t *testing.T) {
	src := `
class Many {
    public int run() {
        int a;
        int b;
        int c;
        a = 1;
        b = 2;
        c = a + b;
        return c;
    }
}
`
	result := Compile(src, Options{RegisterCeiling: 0})
	require.NotEmpty(t, result.Reports)
	assert.Equal(t, report.Optimization, result.Reports[0].Stage)
}

func TestCompileWithOptimizeFoldsConstants(t *testing.T) {
	src := `
class Foo {
    public int run() {
        int x;
        x = 2 + 3;
        return x;
    }
}
`
	result := Compile(src, Options{Optimize: true, RegisterCeiling: -1})
	require.False(t, report.HasErrors(result.Reports), "%v", result.Reports)
	assert.Contains(t, result.Ollir, "5.i32")
}
