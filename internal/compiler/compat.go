package compiler

import (
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/blockc/internal/ir"
)

// Block shapes a bridge node can have.
const (
	BlockCommand     = "command"
	BlockHat         = "hat"
	BlockConditional = "conditional"
	BlockLoop        = "loop"
	BlockReporter    = "reporter"
	BlockBoolean     = "boolean"
)

// compatCall renders a call into the compatibility bridge for a block with
// no compiled rule. Inputs, nested stacks and fields are passed by name in
// sorted order; stacks become generator functions the block may run.
//
// setFlags asks the bridge to report promise resumption. branchVar names the
// branch-info record for conditional and loop blocks.
func (g *Generator) compatCall(kind string, c *ir.Compat, ops *ir.Operands, setFlags bool, branchVar string) string {
	if c == nil {
		g.invariantf(kind, "bridge node without opcode")
	}
	// A bridge call can suspend while the block's own promise settles.
	g.requireYields("bridge call in a script that is not marked as yielding")

	var b strings.Builder
	b.WriteString("yield* executeInCompatibilityLayer({")

	g.writeInputs(&b, ops.Inputs)
	for _, name := range sortedKeys(ops.Stacks) {
		body := g.capture(func() {
			g.DescendStack(ops.Stacks[name], NewFrame(true, c.Opcode))
		})
		b.WriteString(quote(strings.ToLower(name)) + ":(function* () {\n" + body + "}),")
	}
	for _, name := range ops.Fields.SortedKeys() {
		b.WriteString(quote(name) + ":")
		if s, ok := ops.Fields[name].(ir.Text); ok {
			b.WriteString(quote(string(s)))
		} else {
			raw, err := ir.MarshalDatum(ops.Fields[name])
			if err != nil {
				g.invariantf(kind, "field %q: %v", name, err)
			}
			b.Write(raw)
		}
		b.WriteString(",")
	}

	mutation, err := ir.MarshalDatum(c.Mutation)
	if err != nil {
		g.invariantf(kind, "mutation: %v", err)
	}
	b.WriteString(`"mutation":` + string(mutation) + ",")

	opcodeFn := g.EvaluateOnce(`runtime.getOpcodeFunction("` + Sanitize(c.Opcode) + `")`)
	frame := "null"
	if branchVar != "" {
		frame = branchVar
	}
	b.WriteString("}, " + opcodeFn + ", " + strconv.FormatBool(g.isWarp) + ", " + strconv.FormatBool(setFlags) +
		`, "` + Sanitize(c.BlockID) + `", ` + frame + ")")

	// Whatever ran meanwhile may have written any variable.
	g.ResetVariables()
	return b.String()
}

// writeInputs appends a name:value entry per input, in sorted order.
func (g *Generator) writeInputs(b *strings.Builder, inputs map[string]*ir.InputNode) {
	for _, name := range sortedKeys(inputs) {
		b.WriteString(quote(name) + ":" + g.DescendInput(inputs[name]).AsSafe() + ",")
	}
}

// addonCall runs a block defined by a runtime addon through the bridge. The
// addon's callback stands in for the opcode function.
func (g *Generator) addonCall(kind string, ops *ir.Operands) {
	code := ops.Field("code")
	if code == "" {
		g.invariantf(kind, "addon call without a block code")
	}
	g.requireYields("addon call in a script that is not marked as yielding")

	var b strings.Builder
	b.WriteString("yield* executeInCompatibilityLayer({")
	g.writeInputs(&b, ops.Inputs)
	b.WriteString(`}, runtime.getAddonBlock("` + Sanitize(code) + `").callback, ` + strconv.FormatBool(g.isWarp) +
		`, false, "` + Sanitize(ops.Field("block_id")) + `");` + "\n")
	g.Emit(b.String())
	g.ResetVariables()
}

// compatStatement compiles a bridge statement. Commands and hats are a single
// call; conditionals and loops poll the bridge for the next branch to run
// until it returns 0.
func (g *Generator) compatStatement(node *ir.StackNode) {
	c := node.Compat
	if c == nil {
		g.invariantf(node.Kind, "bridge node without opcode")
	}

	// A promise-returning command that ends a loop body has already waited a
	// frame, so the loop continues without its own yield.
	lastInLoop := g.IsLastBlockInLoop()

	switch c.BlockType {
	case BlockCommand, BlockHat, "":
		g.Emit(g.compatCall(node.Kind, c, &node.Operands, lastInLoop, "") + ";\n")
	case BlockConditional, BlockLoop:
		branch := g.locals.Next()
		g.Emitf("const %s = createBranchInfo(%t);\n", branch, c.BlockType == BlockLoop)
		g.Emitf("while (%s.branch = +(%s)) {\n", branch, g.compatCall(node.Kind, c, &node.Operands, false, branch))
		g.Emitf("switch (%s.branch) {\n", branch)
		for i, stack := range c.Substacks {
			g.Emitf("case %d: {\n", i+1)
			g.DescendStack(stack, NewFrame(false, ""))
			g.Emit("break;\n")
			g.Emit("}\n")
		}
		g.Emit("}\n")
		g.Emitf("if (%s.onEnd[0]) yield %s.onEnd.shift()(%s);\n", branch, branch, branch)
		g.Emitf("if (!%s.isLoop) break;\n", branch)
		g.YieldLoop()
		g.Emit("}\n")
	default:
		g.invariantf(node.Kind, "unknown bridge block type %q", c.BlockType)
	}

	if lastInLoop {
		g.Emit("if (hasResumedFromPromise) {hasResumedFromPromise = false;continue;}\n")
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, ir.CompareUTF16)
	return keys
}
