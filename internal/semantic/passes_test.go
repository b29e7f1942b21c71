package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marco-vb/jmmc/internal/parser"
	"github.com/marco-vb/jmmc/internal/report"
	"github.com/marco-vb/jmmc/internal/symbols"
	"github.com/marco-vb/jmmc/internal/types"
)

func analyze(t *testing.T, src string) []report.Report {
	t.Helper()
	prog, reps := parser.Parse(src)
	require.Nil(t, reps)
	table := symbols.Build(prog)
	engine := types.New(table)
	return Run(prog, table, engine)
}

func TestRunAcceptsWellFormedProgram(t *testing.T) {
	src := `
class Calc {
    int total;
    public int add(int a, int b) {
        return a + b;
    }
    public static void main(String[] args) {
        int x;
        x = 0;
    }
}
`
	assert.Empty(t, analyze(t, src))
}

func TestDuplicatedElementCatchesDuplicateFields(t *testing.T) {
	src := `
class Calc {
    int total;
    int total;
    public int run() {
        return total;
    }
}
`
	reps := analyze(t, src)
	require.NotEmpty(t, reps)
	assert.Equal(t, report.Semantic, reps[0].Stage)
}

func TestThisInStaticMethodRejectsThisInStaticContext(t *testing.T) {
	src := `
class Calc {
    int total;
    public static void run(String[] args) {
        total = this.total;
    }
}
`
	reps := analyze(t, src)
	require.NotEmpty(t, reps)
}

func TestFieldInStaticMethodRejectsBareFieldReference(t *testing.T) {
	src := `
class Calc {
    int total;
    public static void main(String[] args) {
        total = 1;
    }
}
`
	reps := analyze(t, src)
	require.NotEmpty(t, reps)
}

func TestInvalidMethodDeclarationRejectsNonMainStatic(t *testing.T) {
	src := `
class Calc {
    public static int run() {
        return 1;
    }
}
`
	reps := analyze(t, src)
	require.NotEmpty(t, reps)
}

func TestInvalidMethodDeclarationRejectsMainWithWrongSignature(t *testing.T) {
	src := `
class Calc {
    public static void main(int x) {
    }
}
`
	reps := analyze(t, src)
	require.NotEmpty(t, reps)
}

func TestInvalidMethodDeclarationRequiresReturnAsLastStatement(t *testing.T) {
	src := `
class Calc {
    public int run() {
        int x;
        return 1;
        x = 2;
    }
}
`
	reps := analyze(t, src)
	require.NotEmpty(t, reps, "a statement after return must be reported")
}

func TestUndeclaredVariableCatchesUnknownName(t *testing.T) {
	src := `
class Calc {
    public int run() {
        return mystery;
    }
}
`
	reps := analyze(t, src)
	require.NotEmpty(t, reps)
}

func TestUndefinedMethodCatchesUnknownCall(t *testing.T) {
	src := `
class Calc {
    public int run() {
        return this.mystery();
    }
}
`
	reps := analyze(t, src)
	require.NotEmpty(t, reps)
}

func TestTypeErrorCatchesBadAssignment(t *testing.T) {
	src := `
class Calc {
    public boolean run() {
        boolean b;
        b = 1;
        return b;
    }
}
`
	reps := analyze(t, src)
	require.NotEmpty(t, reps)
}

func TestTypeErrorCatchesNonBooleanCondition(t *testing.T) {
	src := `
class Calc {
    public int run() {
        int x;
        x = 0;
        if (x) {
            x = 1;
        } else {
            x = 2;
        }
        return x;
    }
}
`
	reps := analyze(t, src)
	require.NotEmpty(t, reps)
}

func TestInvalidArrayAccessCatchesNonArrayIndexing(t *testing.T) {
	src := `
class Calc {
    public int run() {
        int x;
        x = 0;
        return x[0];
    }
}
`
	reps := analyze(t, src)
	require.NotEmpty(t, reps)
}

func TestInvalidVarargsRejectsNonLastVarargsParam(t *testing.T) {
	src := `
class Calc {
    public int run(int... xs, int y) {
        return y;
    }
}
`
	reps := analyze(t, src)
	require.NotEmpty(t, reps)
}

func TestInvalidVarargsAcceptsLastPositionVarargs(t *testing.T) {
	src := `
class Calc {
    public int run(int y, int... xs) {
        return y + xs[0];
    }
}
`
	assert.Empty(t, analyze(t, src))
}
