package compiler

import (
	"strconv"
	"strings"

	"github.com/roach88/blockc/internal/cast"
	"github.com/roach88/blockc/internal/ir"
)

// DescendInput compiles an input node to a Value. Extension hooks registered
// for the node's kind take precedence over the built-in rules.
func (g *Generator) DescendInput(node *ir.InputNode) Value {
	if node == nil {
		g.invariantf("", "missing input node")
	}
	if ext, block, h, ok := g.registry.Lookup(node.Kind); ok && h.Input != nil {
		return g.callInputHook(ext, block, h.Input, node)
	}

	kind := node.Kind
	ops := &node.Operands
	in := func(name string) Value { return g.input(kind, ops, name) }

	switch kind {
	case "args.boolean":
		return NewTyped("toBoolean("+argIndex(node.Index)+")", TypeBoolean)
	case "args.stringNumber":
		return NewTyped(argIndex(node.Index), TypeUnknown)

	case "compat":
		// Reporters never ask the bridge for flags.
		return NewTyped("("+g.compatCall(kind, node.Compat, ops, false, "")+")", TypeUnknown)

	case "constant":
		if node.Value == nil {
			g.invariantf(kind, "constant without a value")
		}
		return g.safeConstant(*node.Value)

	case "counter.get":
		return NewTyped("runtime.ext_scratch3_control._counter", TypeNumber)
	case "control.error":
		return NewTyped("runtime.ext_scratch3_control._error", TypeString)
	case "control.isclone":
		return NewTyped("(!target.isOriginal)", TypeBoolean)
	case "control.inlineStackOutput":
		g.requireYields("inline stack output requires a yielding script")
		body := g.capture(func() {
			g.DescendStack(ops.Stack("code"), NewFrame(false, kind))
		})
		return NewTyped("(yield* (function*() {"+body+"})())", TypeUnknown)

	case "keyboard.pressed":
		return NewTyped("runtime.ioDevices.keyboard.getKeyIsDown("+in("key").AsSafe()+")", TypeBoolean)

	case "list.amountOf":
		list := g.ReferenceVariable(ops.List)
		return NewTyped(list+".value.filter((x) => x == "+in("value").AsUnknown()+").length", TypeNumber)
	case "list.contains":
		list := g.ReferenceVariable(ops.List)
		if g.isOptimized {
			return NewTyped("listContainsFastest("+list+", "+in("item").AsUnknown()+")", TypeBoolean)
		}
		return NewTyped("listContains("+list+", "+in("item").AsUnknown()+")", TypeBoolean)
	case "list.contents":
		list := g.ReferenceVariable(ops.List)
		if g.isOptimized {
			return NewTyped("("+list+".value.join(' '))", TypeString)
		}
		return NewTyped("listContents("+list+")", TypeString)
	case "list.filteritem":
		return NewTyped("runtime.ext_scratch3_data._listFilterItem", TypeUnknown)
	case "list.filterindex":
		return NewTyped("runtime.ext_scratch3_data._listFilterIndex", TypeUnknown)
	case "list.get":
		return g.listGet(kind, ops)
	case "list.indexOf":
		list := g.ReferenceVariable(ops.List)
		return NewTyped("listIndexOf("+list+", "+in("item").AsUnknown()+")", TypeNumber)
	case "list.length":
		return NewTyped(g.ReferenceVariable(ops.List)+".value.length", TypeNumber)

	case "looks.backdropName":
		return NewTyped("stage.getCostumes()[stage.currentCostume].name", TypeString)
	case "looks.backdropNumber":
		return NewTyped("(stage.currentCostume + 1)", TypeNumber)
	case "looks.costumeName":
		return NewTyped("target.getCostumes()[target.currentCostume].name", TypeString)
	case "looks.costumeNumber":
		return NewTyped("(target.currentCostume + 1)", TypeNumber)
	case "looks.size":
		return NewTyped("target.size", TypeNumber)
	case "looks.tintColor":
		return NewTyped("runtime.ext_scratch3_looks.getTintColor(null, { target: target })", TypeNumber)

	case "math.polygon":
		return g.polygon(kind, ops)

	case "motion.direction":
		return NewTyped("target.direction", TypeNumber)
	case "motion.x":
		if g.isOptimized {
			return NewTyped("(target.x)", TypeNumber)
		}
		return NewTyped("limitPrecision(target.x)", TypeNumber)
	case "motion.y":
		if g.isOptimized {
			return NewTyped("(target.y)", TypeNumber)
		}
		return NewTyped("limitPrecision(target.y)", TypeNumber)

	case "mouse.down":
		return NewTyped("runtime.ioDevices.mouse.getIsDown()", TypeBoolean)
	case "mouse.x":
		return NewTyped("runtime.ioDevices.mouse.getScratchX()", TypeNumber)
	case "mouse.y":
		return NewTyped("runtime.ioDevices.mouse.getScratchY()", TypeNumber)

	case "op.true":
		return NewTyped("(true)", TypeBoolean)
	case "op.false":
		return NewTyped("(false)", TypeBoolean)
	case "op.randbool":
		return NewTyped("(Boolean(Math.round(Math.random())))", TypeBoolean)

	case "op.abs":
		return NewTyped("Math.abs("+in("value").AsNumber()+")", TypeNumber)
	case "op.acos":
		// acos(1.0001) is NaN.
		return NewTyped("((Math.acos("+in("value").AsNumber()+") * 180) / Math.PI)", TypeNumberNaN)
	case "op.add":
		// Infinity + -Infinity is NaN.
		return NewTyped("("+in("left").AsNumber()+" + "+in("right").AsNumber()+")", TypeNumberNaN)
	case "op.and":
		return NewTyped("("+in("left").AsBoolean()+" && "+in("right").AsBoolean()+")", TypeBoolean)
	case "op.asin":
		return NewTyped("((Math.asin("+in("value").AsNumber()+") * 180) / Math.PI)", TypeNumberNaN)
	case "op.atan":
		return NewTyped("((Math.atan("+in("value").AsNumber()+") * 180) / Math.PI)", TypeNumber)
	case "op.ceiling":
		return NewTyped("Math.ceil("+in("value").AsNumber()+")", TypeNumber)
	case "op.contains":
		return NewTyped("("+in("string").AsString()+".toLowerCase().indexOf("+in("contains").AsString()+".toLowerCase()) !== -1)", TypeBoolean)
	case "op.cos":
		return g.trig(kind, ops, "cos")
	case "op.divide":
		// 0 / 0 is NaN.
		return NewTyped("("+in("left").AsNumber()+" / "+in("right").AsNumber()+")", TypeNumberNaN)
	case "op.equals":
		return g.equals(in("left"), in("right"))
	case "op.e^":
		return NewTyped("Math.exp("+in("value").AsNumber()+")", TypeNumber)
	case "op.floor":
		return NewTyped("Math.floor("+in("value").AsNumber()+")", TypeNumber)
	case "op.greater":
		return g.greater(in("left"), in("right"))
	case "op.join":
		return NewTyped("("+in("left").AsString()+" + "+in("right").AsString()+")", TypeString)
	case "op.length":
		return NewTyped(in("string").AsString()+".length", TypeNumber)
	case "op.less":
		return g.less(in("left"), in("right"))
	case "op.letterOf":
		return NewTyped("(("+in("string").AsString()+")[("+in("letter").AsNumber()+" | 0) - 1] || \"\")", TypeString)
	case "op.ln":
		// log(-1) is NaN.
		return NewTyped("Math.log("+in("value").AsNumber()+")", TypeNumberNaN)
	case "op.log":
		return NewTyped("(Math.log("+in("value").AsNumber()+") / Math.LN10)", TypeNumberNaN)
	case "op.advlog":
		return NewTyped("(Math.log("+in("right").AsNumber()+") / (Math.log("+in("left").AsNumber()+")))", TypeNumberNaN)
	case "op.mod":
		g.descendedIntoModulo = true
		// mod(0, 0) is NaN.
		return NewTyped("mod("+in("left").AsNumber()+", "+in("right").AsNumber()+")", TypeNumberNaN)
	case "op.multiply":
		// Infinity * 0 is NaN.
		return NewTyped("("+in("left").AsNumber()+" * "+in("right").AsNumber()+")", TypeNumberNaN)
	case "op.not":
		return NewTyped("!"+in("operand").AsBoolean(), TypeBoolean)
	case "op.or":
		return NewTyped("("+in("left").AsBoolean()+" || "+in("right").AsBoolean()+")", TypeBoolean)
	case "op.power":
		// (-1) ** 0.5 is NaN.
		return NewTyped("(Math.pow("+in("left").AsNumber()+", "+in("right").AsNumber()+"))", TypeNumberNaN)
	case "op.random":
		return g.random(kind, ops)
	case "op.round":
		return NewTyped("Math.round("+in("value").AsNumber()+")", TypeNumber)
	case "op.sin":
		return g.trig(kind, ops, "sin")
	case "op.sqrt":
		// sqrt(-1) is NaN.
		return NewTyped("Math.sqrt("+in("value").AsNumber()+")", TypeNumberNaN)
	case "op.subtract":
		// Infinity - Infinity is NaN.
		return NewTyped("("+in("left").AsNumber()+" - "+in("right").AsNumber()+")", TypeNumberNaN)
	case "op.tan":
		return NewTyped("tan("+in("value").AsNumber()+")", TypeNumberNaN)
	case "op.10^":
		return NewTyped("(10 ** "+in("value").AsNumber()+")", TypeNumber)

	case "pmEventsExpansion.broadcastFunction":
		return g.broadcastFunction(kind, ops, false)
	case "pmEventsExpansion.broadcastFunctionArgs":
		return g.broadcastFunction(kind, ops, true)

	case "procedures.call":
		call, ok := g.procedureCall(ops, true)
		if !ok {
			return NewTyped(`""`, TypeString)
		}
		return NewTyped("("+call+")", TypeUnknown)

	case "sensing.answer":
		return NewTyped("runtime.ext_scratch3_sensing._answer", TypeString)
	case "sensing.colorTouchingColor":
		return NewTyped("target.colorIsTouchingColor(colorToList("+in("target").AsColor()+"), colorToList("+in("mask").AsColor()+"))", TypeBoolean)
	case "sensing.date":
		return NewTyped("(new Date().getDate())", TypeNumber)
	case "sensing.dayofweek":
		return NewTyped("(new Date().getDay() + 1)", TypeNumber)
	case "sensing.daysSince2000":
		return NewTyped("daysSince2000()", TypeNumber)
	case "sensing.distance":
		return NewTyped("distance("+in("target").AsString()+")", TypeNumber)
	case "sensing.hour":
		return NewTyped("(new Date().getHours())", TypeNumber)
	case "sensing.loggedin":
		return NewTyped("runtime.ioDevices.userData.getLoggedIn()", TypeString)
	case "sensing.minute":
		return NewTyped("(new Date().getMinutes())", TypeNumber)
	case "sensing.month":
		return NewTyped("(new Date().getMonth() + 1)", TypeNumber)
	case "sensing.of":
		return g.sensingOf(kind, ops)
	case "sensing.second":
		return NewTyped("(new Date().getSeconds())", TypeNumber)
	case "sensing.timestamp":
		return NewTyped("(Date.now())", TypeNumber)
	case "sensing.touching":
		return NewTyped("target.isTouchingObject("+in("object").AsUnknown()+")", TypeBoolean)
	case "sensing.touchingColor":
		return NewTyped("target.isTouchingColor(colorToList("+in("color").AsColor()+"))", TypeBoolean)
	case "sensing.username":
		return NewTyped("runtime.ioDevices.userData.getUsername()", TypeString)
	case "sensing.year":
		return NewTyped("(new Date().getFullYear())", TypeNumber)

	case "tempVars.get":
		name := in("var").AsString()
		host := tempVarsHost(ops)
		if g.isOptimized {
			return NewTyped("("+host+"["+name+"] ?? \"\")", TypeUnknown)
		}
		return NewTyped("(get("+host+", "+name+") ?? \"\")", TypeUnknown)
	case "tempVars.exists":
		name := in("var").AsString()
		host := tempVarsHost(ops)
		if g.isOptimized {
			return NewTyped(name+" in "+host, TypeBoolean)
		}
		return NewTyped("includes("+host+", "+name+")", TypeBoolean)
	case "tempVars.all":
		if host := tempVarsHost(ops); host != "tempVars" {
			return NewTyped("Object.keys("+host+").join(',')", TypeString)
		}
		return NewTyped("JSON.stringify(Object.keys(tempVars))", TypeString)

	case "timer.get":
		return NewTyped("runtime.ioDevices.clock.projectTimer()", TypeNumber)

	case "tw.lastKeyPressed":
		return NewTyped("runtime.ioDevices.keyboard.getLastKeyPressed()", TypeString)

	case "var.get":
		return g.DescendVariable(ops.Variable)

	case "noop":
		g.logger.Warn("unexpected noop input", "top_block", g.script.TopBlockID)
		return NewTyped(`""`, TypeUnknown)
	}

	g.logger.Warn("unknown input kind", "kind", kind, "top_block", g.script.TopBlockID)
	g.fail(&UnknownKindError{Kind: kind})
	return nil
}

func (g *Generator) listGet(kind string, ops *ir.Operands) Value {
	list := g.ReferenceVariable(ops.List)
	index := g.input(kind, ops, "index")

	if index.IsAlwaysNumberOrNaN() {
		return NewTyped("("+list+".value[("+index.AsNumber()+" | 0) - 1] ?? \"\")", TypeUnknown)
	}
	if c, ok := index.(*Constant); ok && c.Literal().Text == "last" {
		return NewTyped("("+list+".value["+list+".value.length - 1] ?? \"\")", TypeUnknown)
	}
	if g.isOptimized {
		return NewTyped("("+list+".value["+index.AsUnknown()+" - 1] ?? \"\")", TypeUnknown)
	}
	return NewTyped("listGet("+list+".value, "+index.AsUnknown()+")", TypeUnknown)
}

// polygon renders a point list as a JSON array of {x, y} objects. Args hold
// the coordinates flattened as x0, y0, x1, y1 and so on.
func (g *Generator) polygon(kind string, ops *ir.Operands) Value {
	if len(ops.Args)%2 != 0 {
		g.invariantf(kind, "odd number of polygon coordinates: %d", len(ops.Args))
	}
	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i < len(ops.Args); i += 2 {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(`{"x":` + g.DescendInput(ops.Args[i]).AsNumber())
		b.WriteString(`,"y":` + g.DescendInput(ops.Args[i+1]).AsNumber() + "}")
	}
	b.WriteByte(']')
	return NewTyped(b.String(), TypeUnknown)
}

// broadcastFunction starts a broadcast's receivers with an optional payload,
// waits for all of them plus one frame, and reports the first value a
// receiver returned, or "" when none did.
func (g *Generator) broadcastFunction(kind string, ops *ir.Operands, withArgs bool) Value {
	g.requireYields("broadcast function in a script that is not marked as yielding")
	broadcast := g.input(kind, ops, "broadcast").AsString()
	payload := "''"
	if withArgs {
		payload = g.input(kind, ops, "args").AsString()
	}

	threads := g.locals.Next()
	receiver := g.locals.Next()
	thread := g.locals.Next()
	body := g.capture(func() {
		g.Emit(`var broadcastVar = runtime.getTargetForStage().lookupBroadcastMsg("", ` + broadcast + " );")
		g.Emit("if (broadcastVar) broadcastVar.isSent = true;")
		g.Emit("var " + threads + ` = startHats("event_whenbroadcastreceived", { BROADCAST_OPTION: ` + broadcast + " });")
		g.Emit("for (const " + receiver + " of " + threads + ") { " + receiver + ".__evex_recievedDataa = " + payload + " };")
		g.Emit("yield* waitThreads(" + threads + ");")
		g.YieldStuckOrNotWarp()
		g.Emit("for (var " + thread + " of " + threads + ") {")
		g.Emit("if (typeof " + thread + ".__evex_returnDataa !== 'undefined') {")
		g.Emit("return " + thread + ".__evex_returnDataa;")
		g.Emit("}")
		g.Emit("}")
		g.Emit("return '';")
	})
	return NewTyped("(yield* (function*() {"+body+"})())", TypeString)
}

// trig emits sin or cos of an angle in degrees, rounded to ten places so
// sin(180) is exactly 0.
func (g *Generator) trig(kind string, ops *ir.Operands, fn string) Value {
	value := g.input(kind, ops, "value").AsNumber()
	exact := "(Math.round(Math." + fn + "((Math.PI * " + value + ") / 180) * 1e10) / 1e10)"
	if g.isOptimized {
		// Integer angles read from a precomputed table.
		return NewTyped("(Number.isInteger("+value+") ? runtime.optimizationUtil."+fn+"["+value+" % 360] : "+exact+")", TypeNumberNaN)
	}
	return NewTyped(exact, TypeNumberNaN)
}

// random picks between integer and float generation. The front end may
// decide with use_ints/use_floats; two constant bounds decide at compile
// time.
func (g *Generator) random(kind string, ops *ir.Operands) Value {
	low := g.input(kind, ops, "low")
	high := g.input(kind, ops, "high")

	useInts := ops.FieldBool("use_ints")
	useFloats := ops.FieldBool("use_floats")
	lc, lok := low.(*Constant)
	hc, hok := high.(*Constant)
	if lok && hok {
		useInts = cast.IsInt(lc.Literal()) && cast.IsInt(hc.Literal())
		useFloats = !useInts
	}

	switch {
	case useInts:
		// Integer bounds are never NaN.
		return NewTyped("randomInt("+low.AsNumber()+", "+high.AsNumber()+")", TypeNumber)
	case useFloats:
		return NewTyped("randomFloat("+low.AsNumber()+", "+high.AsNumber()+")", TypeNumberNaN)
	}
	return NewTyped("runtime.ext_scratch3_operators._random("+low.AsUnknown()+", "+high.AsUnknown()+")", TypeNumberNaN)
}

func (g *Generator) sensingOf(kind string, ops *ir.Operands) Value {
	objNode := ops.Input("object")
	object := g.input(kind, ops, "object").AsString()
	property := ops.Field("property")

	if objNode.Kind != "constant" || objNode.Value == nil {
		return NewTyped("runtime.ext_scratch3_sensing.getAttributeOf({OBJECT: "+object+", PROPERTY: "+quote(property)+" })", TypeUnknown)
	}

	isStage := objNode.Value.Text == "_stage_"
	// A sprite looked up by name may not exist; the stage always does.
	ref := "stage"
	if !isStage {
		ref = g.EvaluateOnce("runtime.getSpriteTargetByName(" + object + ")")
	}

	guard := func(expr string) string {
		return "(" + ref + " ? " + expr + " : 0)"
	}

	if property == "volume" {
		return NewTyped(guard(ref+".volume"), TypeNumber)
	}
	if isStage {
		switch property {
		case "background #", "backdrop #":
			return NewTyped("("+ref+".currentCostume + 1)", TypeNumber)
		case "backdrop name":
			return NewTyped(ref+".getCostumes()["+ref+".currentCostume].name", TypeString)
		}
	} else {
		switch property {
		case "x position":
			return NewTyped(guard(ref+".x"), TypeNumber)
		case "y position":
			return NewTyped(guard(ref+".y"), TypeNumber)
		case "direction":
			return NewTyped(guard(ref+".direction"), TypeNumber)
		case "costume #":
			return NewTyped(guard(ref+".currentCostume + 1"), TypeNumber)
		case "costume name":
			return NewTyped(guard(ref+".getCostumes()["+ref+".currentCostume].name"), TypeUnknown)
		case "layer":
			return NewTyped(guard(ref+".getLayerOrder()"), TypeNumber)
		case "size":
			return NewTyped(guard(ref+".size"), TypeNumber)
		}
	}

	variable := g.EvaluateOnce(ref + " && " + ref + ".lookupVariableByNameAndType(" + quote(property) + ", \"\", true)")
	return NewTyped("("+variable+" ? "+variable+".value : 0)", TypeUnknown)
}

// procedureCall renders a call to a procedure variant, placing any yields
// the call needs first. ok is false for an empty or missing procedure,
// which compiles to nothing.
func (g *Generator) procedureCall(ops *ir.Operands, reporter bool) (call string, ok bool) {
	code := ops.Field("code")
	variant := ops.Field("variant")

	callee, ok := g.program.Procedure(variant)
	if !ok {
		return "", false
	}

	// Direct recursion yields first to bound stack depth. A reporter inside
	// a hat condition yields too.
	recursive := !g.isWarp && code == g.script.ProcedureCode
	if recursive || (reporter && g.inHat) {
		g.YieldNotWarp()
	}

	var b strings.Builder
	if callee.Yields {
		g.requireYields("script uses a yielding procedure but is not marked as yielding")
		b.WriteString("yield* ")
	}
	b.WriteString(`thread.procedures["` + Sanitize(variant) + `"](`)
	if callee.Arity() > 0 {
		args := make([]string, 0, len(ops.Args))
		for _, arg := range ops.Args {
			args = append(args, g.DescendInput(arg).AsSafe())
		}
		b.WriteString(strings.Join(args, ","))
	}
	b.WriteString(")")

	// The callee may have written any variable.
	g.ResetVariables()
	return b.String(), true
}

// tempVarsHost names the object holding temporary variables: the runtime,
// the thread, or the script's own tempVars.
func tempVarsHost(ops *ir.Operands) string {
	switch {
	case ops.FieldBool("runtime"):
		return "runtime.variables"
	case ops.FieldBool("thread"):
		return "thread.variables"
	}
	return "tempVars"
}

// argIndex renders a procedure parameter reference.
func argIndex(i int) string {
	return "p" + strconv.Itoa(i)
}
