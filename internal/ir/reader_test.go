package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marco-vb/jmmc/internal/ollir"
	jmmcparser "github.com/marco-vb/jmmc/internal/parser"
	"github.com/marco-vb/jmmc/internal/symbols"
	"github.com/marco-vb/jmmc/internal/types"
)

func readFromSource(t *testing.T, src string) *ClassUnit {
	t.Helper()
	prog, reps := jmmcparser.Parse(src)
	require.Nil(t, reps)
	table := symbols.Build(prog)
	engine := types.New(table)
	text := ollir.Emit(prog, table, engine)
	cu, err := Read(text)
	require.NoError(t, err, "ollir text:\n%s", text)
	return cu
}

func TestReadParsesClassHeaderFieldsAndConstructor(t *testing.T) {
	cu := readFromSource(t, `
class Calc extends Object {
    int total;
    public int run() {
        return total;
    }
}
`)
	assert.Equal(t, "Calc", cu.Name)
	assert.Equal(t, "Object", cu.SuperClass)
	require.Len(t, cu.Fields, 1)
	assert.Equal(t, "total", cu.Fields[0].Name)
	assert.Equal(t, Type{Name: "int"}, cu.Fields[0].Type)

	var ctor *Method
	for _, m := range cu.Methods {
		if m.IsConstructor {
			ctor = m
		}
	}
	require.NotNil(t, ctor)
	assert.Equal(t, "<init>", ctor.Name)
}

func TestReadParsesMethodParamsAndReturnType(t *testing.T) {
	cu := readFromSource(t, `
class Calc {
    public int add(int a, int b) {
        return a + b;
    }
}
`)
	var add *Method
	for _, m := range cu.Methods {
		if m.Name == "add" {
			add = m
		}
	}
	require.NotNil(t, add)
	assert.True(t, add.IsPublic)
	assert.False(t, add.IsStatic)
	require.Len(t, add.Params, 2)
	assert.Equal(t, "a", add.Params[0].Name)
	assert.Equal(t, Type{Name: "int"}, add.ReturnType)
}

func TestReadAttachesLabelsToTheFollowingInstruction(t *testing.T) {
	cu := readFromSource(t, `
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
	var run *Method
	for _, m := range cu.Methods {
		if m.Name == "run" {
			run = m
		}
	}
	require.NotNil(t, run)
	require.NotEmpty(t, run.Labels)

	found := false
	for _, instr := range run.Instructions {
		if len(instr.Labels) > 0 {
			found = true
			for _, l := range instr.Labels {
				assert.Equal(t, instr.ID, run.Labels[l])
			}
		}
	}
	assert.True(t, found, "at least one instruction should carry a label emitted by the if/else lowering")
}

func TestReadResolvesCondBranchAndGotoSuccessors(t *testing.T) {
	cu := readFromSource(t, `
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
	var run *Method
	for _, m := range cu.Methods {
		if m.Name == "run" {
			run = m
		}
	}
	require.NotNil(t, run)

	sawBranch := false
	for _, instr := range run.Instructions {
		if instr.Kind == CondBranch || instr.Kind == Goto {
			sawBranch = true
			require.NotEmpty(t, instr.Succs, "branch/goto instructions must resolve a successor index")
			for _, s := range instr.Succs {
				assert.GreaterOrEqual(t, s, 0)
				assert.Less(t, s, len(run.Instructions))
			}
		}
	}
	assert.True(t, sawBranch)
}

func TestReadRejectsMalformedText(t *testing.T) {
	_, err := Read("not ollir at all {{{")
	assert.Error(t, err)
}

func TestTypeStringRendersArraySuffix(t *testing.T) {
	assert.Equal(t, "int", Type{Name: "int"}.String())
	assert.Equal(t, "array.int", Type{Name: "int", IsArray: true}.String())
	assert.Equal(t, "V", Type{}.String())
}
