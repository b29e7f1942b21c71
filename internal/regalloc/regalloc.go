// Package regalloc implements the RegisterAllocator of spec §4.7:
// per-method CFG liveness, an interference graph over non-parameter
// locals, and Chaitin-style simplify/colour with an optional ceiling.
//
// Grounded on the teacher's backend/regalloc for the general texture
// of a hand-rolled graph-colouring allocator in Go (an explicit stack
// type for the simplify phase, map-keyed adjacency, a dedicated state
// value threaded through the phases); the algorithm itself follows
// spec §4.7's own steps rather than the teacher's machine-specific
// register/spill/interproc model, since that model has no analogue in
// a JVM method frame (locals are slots, not a fixed small register
// file with spill regions).
package regalloc

import (
	"sort"

	"github.com/marco-vb/jmmc/internal/ir"
	"github.com/marco-vb/jmmc/internal/report"
)

// Allocate runs RegisterAllocator over method in place, writing the
// result into method.Registers. ceiling < 0 disables register
// reallocation entirely (spec §6: registerAllocation=-1), matching
// JmmOptimizationImpl's behavior of returning the OLLIR unchanged: each
// local keeps a distinct register in declaration order rather than
// going through simplify/colour, so no liveness-based reuse happens.
// Any other value runs the full Chaitin-style allocation and bounds
// the count of distinct non-parameter registers used.
func Allocate(method *ir.Method, ceiling int) []report.Report {
	instrs := method.Instructions
	if len(instrs) == 0 {
		return nil
	}

	paramNames := make(map[string]bool, len(method.Params))
	for _, p := range method.Params {
		paramNames[p.Name] = true
	}
	paramNames["this"] = true

	floor := 1 + len(method.Params)

	if ceiling < 0 {
		method.Registers = make(map[string]int, len(method.Params))
		for i, p := range method.Params {
			method.Registers[p.Name] = i + 1
		}
		for i, name := range declarationOrder(instrs, paramNames) {
			method.Registers[name] = floor + i
		}
		return nil
	}

	in, out := liveness(instrs)
	candidates := candidateNodes(instrs, paramNames)
	graph := buildInterferenceGraph(instrs, in, out, candidates)

	order := simplify(graph, candidates)
	colors, used := colorGraph(order, graph, floor)

	method.Registers = make(map[string]int, len(method.Params)+len(colors))
	for i, p := range method.Params {
		method.Registers[p.Name] = i + 1
	}
	for name, c := range colors {
		method.Registers[name] = c
	}

	if used > ceiling {
		return []report.Report{report.NewError(report.Optimization, 0, 0,
			"Need at least %d registers", used)}
	}
	return nil
}

// declarationOrder returns every non-parameter, non-this name defined
// in instrs in first-definition order, the closest proxy this IR has
// to the original var table's declaration order.
func declarationOrder(instrs []*ir.Instruction, paramNames map[string]bool) []string {
	seen := map[string]bool{}
	var names []string
	for _, instr := range instrs {
		d := defOf(instr)
		if d == "" || paramNames[d] || seen[d] {
			continue
		}
		seen[d] = true
		names = append(names, d)
	}
	return names
}

// defOf returns the name instr defines, or "" if it defines nothing
// (spec §4.7 step 2).
func defOf(instr *ir.Instruction) string {
	switch instr.Kind {
	case ir.Assign:
		if instr.Dest != nil {
			return instr.Dest.Name
		}
	case ir.PutField:
		return instr.Name
	}
	return ""
}

// usesOf returns the names instr reads (spec §4.7 step 2).
func usesOf(instr *ir.Instruction) []string {
	switch instr.Kind {
	case ir.Assign:
		names := collectNames(instr.RHS)
		if instr.Dest != nil && instr.Dest.Kind == ir.ArrayOperand {
			names = append(names, instr.Dest.Name)
			for _, idx := range instr.Dest.Indices {
				names = append(names, collectNames(idx)...)
			}
		}
		return names
	case ir.PutField:
		return append(collectNames(instr.Object), collectNames(instr.Value)...)
	case ir.Return:
		return collectNames(instr.Operand)
	case ir.CondBranch:
		return collectNames(instr.Operand)
	}
	return nil
}

// collectNames walks an expression instruction, returning every
// Operand/ArrayOperand name reachable from it: the left/right of a
// BinaryOp, the single operand of a UnaryOp/SingleOp, the indices of
// an ArrayOperand, and the object/arguments of a Call or GetField.
func collectNames(instr *ir.Instruction) []string {
	if instr == nil {
		return nil
	}
	switch instr.Kind {
	case ir.Operand:
		return []string{instr.Name}
	case ir.ArrayOperand:
		names := []string{instr.Name}
		for _, idx := range instr.Indices {
			names = append(names, collectNames(idx)...)
		}
		return names
	case ir.BinaryOp:
		return append(collectNames(instr.L), collectNames(instr.R)...)
	case ir.UnaryOp, ir.SingleOp:
		return collectNames(instr.Operand)
	case ir.GetField:
		return append(collectNames(instr.Object), instr.Name)
	case ir.Call:
		names := collectNames(instr.Object)
		for _, a := range instr.Args {
			names = append(names, collectNames(a)...)
		}
		return names
	}
	return nil
}

type nameSet map[string]bool

func equalSets(a, b nameSet) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// liveness computes in/out per instruction by fixed-point iteration
// (spec §4.7 step 3): in[i] = use[i] ∪ (out[i] − def[i]); out[i] =
// ∪ in[s] over successors s.
func liveness(instrs []*ir.Instruction) (in, out []nameSet) {
	n := len(instrs)
	in = make([]nameSet, n)
	out = make([]nameSet, n)
	for i := range instrs {
		in[i] = nameSet{}
		out[i] = nameSet{}
	}

	changed := true
	for changed {
		changed = false
		for i := n - 1; i >= 0; i-- {
			instr := instrs[i]
			newOut := nameSet{}
			for _, s := range instr.Succs {
				for name := range in[s] {
					newOut[name] = true
				}
			}
			newIn := nameSet{}
			for _, u := range usesOf(instr) {
				newIn[u] = true
			}
			d := defOf(instr)
			for name := range newOut {
				if name != d {
					newIn[name] = true
				}
			}
			if !equalSets(newIn, in[i]) || !equalSets(newOut, out[i]) {
				changed = true
			}
			in[i] = newIn
			out[i] = newOut
		}
	}
	return in, out
}

// candidateNodes collects every name ever defined that is neither a
// parameter nor "this" (spec §4.7 step 4: "one node per non-parameter,
// non-this local").
func candidateNodes(instrs []*ir.Instruction, paramNames map[string]bool) []string {
	seen := map[string]bool{}
	var names []string
	for _, instr := range instrs {
		d := defOf(instr)
		if d == "" || paramNames[d] || seen[d] {
			continue
		}
		seen[d] = true
		names = append(names, d)
	}
	sort.Strings(names)
	return names
}

type graph map[string]nameSet

func buildInterferenceGraph(instrs []*ir.Instruction, in, out []nameSet, candidates []string) graph {
	isCandidate := map[string]bool{}
	for _, c := range candidates {
		isCandidate[c] = true
	}

	g := graph{}
	for _, c := range candidates {
		g[c] = nameSet{}
	}
	addEdge := func(a, b string) {
		if a == b || !isCandidate[a] || !isCandidate[b] {
			return
		}
		g[a][b] = true
		g[b][a] = true
	}

	for i, instr := range instrs {
		live := nameSet{}
		if d := defOf(instr); d != "" {
			live[d] = true
		}
		for name := range out[i] {
			live[name] = true
		}
		names := make([]string, 0, len(live))
		for name := range live {
			names = append(names, name)
		}
		for a := 0; a < len(names); a++ {
			for b := a + 1; b < len(names); b++ {
				addEdge(names[a], names[b])
			}
		}
	}
	return g
}

// simplify implements spec §4.7 step 5: repeatedly remove a node of
// degree < k, starting k=1 and increasing whenever no removable node
// remains while nodes still do. Returns the nodes in removal order
// (first removed first); colorGraph assigns from the end, last removed
// first.
func simplify(g graph, candidates []string) []string {
	remaining := map[string]bool{}
	for _, c := range candidates {
		remaining[c] = true
	}
	degree := func(name string) int {
		d := 0
		for other := range g[name] {
			if remaining[other] {
				d++
			}
		}
		return d
	}

	var stack []string
	k := 1
	for len(remaining) > 0 {
		removedAny := false
		for {
			progressed := false
			names := make([]string, 0, len(remaining))
			for n := range remaining {
				names = append(names, n)
			}
			sort.Strings(names)
			for _, n := range names {
				if degree(n) < k {
					stack = append(stack, n)
					delete(remaining, n)
					progressed = true
					removedAny = true
				}
			}
			if !progressed {
				break
			}
		}
		if len(remaining) == 0 {
			break
		}
		if !removedAny {
			k++
		}
	}
	return stack
}

// colorGraph implements spec §4.7 step 6: pop the simplify stack,
// assigning each node the smallest integer ≥ floor not already used
// by a coloured neighbour (consulting the full, unsimplified graph).
// Returns the colouring and the number of distinct colours used.
func colorGraph(order []string, g graph, floor int) (map[string]int, int) {
	colors := map[string]int{}
	used := map[int]bool{}
	for i := len(order) - 1; i >= 0; i-- {
		name := order[i]
		taken := map[int]bool{}
		for neighbor := range g[name] {
			if c, ok := colors[neighbor]; ok {
				taken[c] = true
			}
		}
		c := floor
		for taken[c] {
			c++
		}
		colors[name] = c
		used[c] = true
	}
	return colors, len(used)
}
