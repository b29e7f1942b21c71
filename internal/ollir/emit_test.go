package ollir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marco-vb/jmmc/internal/parser"
	"github.com/marco-vb/jmmc/internal/symbols"
	"github.com/marco-vb/jmmc/internal/types"
)

func emit(t *testing.T, src string) string {
	t.Helper()
	prog, reps := parser.Parse(src)
	require.Nil(t, reps)
	table := symbols.Build(prog)
	engine := types.New(table)
	return Emit(prog, table, engine)
}

func TestEmitProgramWritesImportsClassHeaderAndConstructor(t *testing.T) {
	out := emit(t, `
import io.Sys;

class Calc extends Base {
    int total;
    public int run() {
        return total;
    }
}
`)
	assert.Contains(t, out, "import io.Sys;\n")
	assert.Contains(t, out, "Calc extends Base {")
	assert.Contains(t, out, ".field public total.i32;")
	assert.Contains(t, out, ".construct Calc().V {")
	assert.Contains(t, out, "invokespecial(this, \"<init>\").V;")
}

func TestEmitProgramDefaultsExtendsToObject(t *testing.T) {
	out := emit(t, `
class Calc {
    public int run() {
        return 1;
    }
}
`)
	assert.Contains(t, out, "Calc extends Object {")
}

func TestEmitFieldAssignUsesPutfield(t *testing.T) {
	out := emit(t, `
class Calc {
    int total;
    public void run() {
        total = 1;
    }
}
`)
	assert.Contains(t, out, "putfield(this, total.i32, 1.i32).V;")
}

func TestEmitLocalAssignUsesDirectStore(t *testing.T) {
	out := emit(t, `
class Calc {
    public int run() {
        int x;
        x = 1;
        return x;
    }
}
`)
	assert.Contains(t, out, "x.i32 :=.i32 1.i32;")
}

func TestEmitFieldReadGoesThroughGetfieldIntoTemp(t *testing.T) {
	out := emit(t, `
class Calc {
    int total;
    public int run() {
        return total;
    }
}
`)
	assert.Contains(t, out, "getfield(this, total.i32).i32;")
}

func TestEmitIfElseEmitsBranchAndBothArms(t *testing.T) {
	out := emit(t, `
class Calc {
    public int run() {
        int x;
        x = 0;
        if (x == 0) {
            x = 1;
        } else {
            x = 2;
        }
        return x;
    }
}
`)
	assert.Contains(t, out, "if (")
	assert.Contains(t, out, "goto L_else")
	assert.Contains(t, out, "goto L_endif")
}

func TestEmitWhileEmitsLoopLabelsAndBackEdge(t *testing.T) {
	out := emit(t, `
class Calc {
    public int run() {
        int i;
        i = 0;
        while (i < 10) {
            i = i + 1;
        }
        return i;
    }
}
`)
	assert.Contains(t, out, "L_while")
	assert.Contains(t, out, "L_endwhile")
	assert.Contains(t, out, "goto L_while")
}

func TestEmitAndShortCircuitsWithFalseAndEndLabels(t *testing.T) {
	out := emit(t, `
class Calc {
    public boolean run(boolean a, boolean b) {
        return a && b;
    }
}
`)
	assert.Contains(t, out, "L_false")
	assert.Contains(t, out, "L_end")
}

func TestEmitOrDoesNotShortCircuit(t *testing.T) {
	out := emit(t, `
class Calc {
    public boolean run(boolean a, boolean b) {
        return a || b;
    }
}
`)
	assert.Contains(t, out, "||.bool")
	assert.NotContains(t, out, "L_false")
}

func TestEmitNewObjectInvokesCanonicalConstructor(t *testing.T) {
	out := emit(t, `
class Calc {
    public Calc make() {
        Calc c;
        c = new Calc();
        return c;
    }
}
`)
	assert.Contains(t, out, ":=.Calc new(Calc).Calc;")
	assert.Contains(t, out, "invokespecial(")
}

func TestEmitNewArrayAndMemberLength(t *testing.T) {
	out := emit(t, `
class Calc {
    public int run() {
        int[] xs;
        xs = new int[5];
        return xs.length;
    }
}
`)
	assert.Contains(t, out, "new(array, 5.i32).array.i32;")
	assert.Contains(t, out, "arraylength(")
}

func TestEmitArrayLiteralBuildsAndStoresEachElement(t *testing.T) {
	out := emit(t, `
class Calc {
    public int run() {
        int[] xs;
        xs = [1, 2, 3];
        return xs[0];
    }
}
`)
	assert.Contains(t, out, "new(array, 3.i32).array.i32;")
	assert.Contains(t, out, "[0.i32].i32 :=.i32 1.i32;")
}

func TestEmitVirtualCallOnThis(t *testing.T) {
	out := emit(t, `
class Calc {
    public int helper() {
        return 1;
    }
    public int run() {
        return this.helper();
    }
}
`)
	assert.Contains(t, out, "invokevirtual(this, \"helper\").i32")
}

func TestEmitStaticCallOnImportedClass(t *testing.T) {
	out := emit(t, `
import io.Sys;

class Calc {
    public void run() {
        Sys.println(1);
    }
}
`)
	assert.Contains(t, out, "invokestatic(Sys, \"println\"")
}

func TestEmitVoidMethodWithoutExplicitReturnGetsTrailingRet(t *testing.T) {
	out := emit(t, `
class Calc {
    public void run() {
        int x;
        x = 1;
    }
}
`)
	assert.Contains(t, out, "ret.V;")
}
