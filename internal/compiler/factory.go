package compiler

import (
	"strings"
	"unicode/utf16"

	"github.com/dlclark/regexp2"
)

// Factory is a compiled script: source text that evaluates to a function
// taking a thread and returning the script's body function.
type Factory struct {
	// Name is the factory function's own name.
	Name string
	// FunctionName is the name of the returned body function.
	FunctionName string
	Source       string

	TopBlockID string
	Warp       bool
	Yields     bool
	Procedure  bool
	// Arity is the number of positional parameters of the body function.
	Arity int

	SetupBindings int
	// YieldPoints counts the yield statements placed by the generator,
	// conditional ones included.
	YieldPoints int
}

var (
	procedurePlaceholder = regexp2.MustCompile(`%[\w]`, regexp2.ECMAScript)
	unsafeIdentChar      = regexp2.MustCompile(`[^a-zA-Z0-9]`, regexp2.ECMAScript)
)

// procedureSlug turns a procedure code such as "move %s steps" into a short
// identifier-safe suffix. Replacement and truncation count UTF-16 units, as
// the host does: a character outside the BMP becomes two underscores.
func procedureSlug(code string) string {
	s, err := procedurePlaceholder.Replace(code, "", -1, -1)
	if err != nil {
		s = code
	}
	r, err := unsafeIdentChar.ReplaceFunc(s, func(m regexp2.Match) string {
		if utf16.RuneLen([]rune(m.String())[0]) == 2 {
			return "__"
		}
		return "_"
	}, -1, -1)
	if err == nil {
		s = r
	}
	if units := []rune(s); len(units) > 20 {
		s = string(units[:20])
	}
	return s
}

func (g *Generator) functionName() string {
	var name string
	if g.script.Yields {
		name = g.names.Generator.Next()
	} else {
		name = g.names.Function.Next()
	}
	if g.isProcedure {
		name += "_" + procedureSlug(g.script.ProcedureCode)
	}
	return name
}

// assemble wraps the generated body in its factory: setup bindings, argument
// list, target spoofing, and an error guard that reports to the runtime and
// still retires the thread.
func (g *Generator) assemble() *Factory {
	f := &Factory{
		Name:          g.names.Factory.Next(),
		TopBlockID:    g.script.TopBlockID,
		Warp:          g.script.IsWarp,
		Yields:        g.script.Yields,
		Procedure:     g.isProcedure,
		Arity:         g.script.Arity(),
		SetupBindings: g.setup.Len(),
		YieldPoints:   g.yieldPoints,
	}
	f.FunctionName = g.functionName()

	var b strings.Builder
	b.WriteString("(function " + f.Name + "(thread) { ")
	b.WriteString("let __target = thread.target; ")
	b.WriteString("let target = __target; ")
	b.WriteString("const runtime = __target.runtime; ")
	b.WriteString("const stage = runtime.getTargetForStage();\n")
	for _, bind := range g.setup.Bindings() {
		b.WriteString("const " + bind.Name + " = " + bind.Expr + ";\n")
	}

	b.WriteString("return ")
	if f.Yields {
		b.WriteString("function* ")
	} else {
		b.WriteString("function ")
	}
	b.WriteString(f.FunctionName + " (")
	params := make([]string, f.Arity)
	for i := range params {
		params[i] = argIndex(i)
	}
	b.WriteString(strings.Join(params, ","))
	b.WriteString(") {\n")
	b.WriteString("let tempVars = Object.create(null);")

	// A run-as-sprite block swaps the thread's target.
	b.WriteString("let target = __target;\n")
	b.WriteString("if (thread.spoofing) {\n")
	b.WriteString("target = thread.spoofTarget;\n")
	b.WriteString("};\n")

	b.WriteString("try {\n")
	b.WriteString(g.src.String())
	b.WriteString("} catch (err) {")
	b.WriteString(`runtime.emit("BLOCK_STACK_ERROR", {`)
	b.WriteString("id:" + quote(g.script.TopBlockID) + ",")
	b.WriteString("value:String(err)")
	b.WriteString("});")
	b.WriteString("}\n")
	if !g.isProcedure {
		b.WriteString("retire();\n")
	}
	b.WriteString("}; })")

	f.Source = b.String()
	return f
}
