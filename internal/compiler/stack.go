package compiler

import (
	"github.com/roach88/blockc/internal/cast"
	"github.com/roach88/blockc/internal/ir"
)

func (g *Generator) descendStackedBlock(node *ir.StackNode) {
	if node == nil {
		g.invariantf("", "missing statement node")
	}
	if ext, block, h, ok := g.registry.Lookup(node.Kind); ok && h.Stack != nil {
		g.callStackHook(ext, block, h.Stack, node)
		return
	}

	kind := node.Kind
	ops := &node.Operands
	in := func(name string) Value { return g.input(kind, ops, name) }

	switch kind {
	case "addons.call":
		g.addonCall(kind, ops)
	case "compat":
		g.compatStatement(node)

	case "control.allAtOnce":
		warp := g.isWarp
		g.isWarp = true
		g.DescendStack(ops.Stack("code"), NewFrame(false, kind))
		g.isWarp = warp
	case "control.case":
		if f := g.CurrentFrame(); f == nil || f.Parent != "control.switch" {
			g.invariantf(kind, `"case" blocks must be inside of a "switch" block`)
		}
		g.Emit("case " + in("condition").AsString() + ":\n")
		if !ops.FieldBool("runs_next") {
			frame := NewFrame(false, kind)
			frame.ContainedByCase = true
			g.DescendStack(ops.Stack("code"), frame)
			g.Emit("break;\n")
		}
	case "control.continueLoop":
		if f := g.CurrentFrame(); f == nil || !f.ContainedByLoop {
			g.invariantf(kind, `"continue loop" blocks must be inside of a looping block`)
		}
		g.Emit("continue;\n")
	case "control.createClone":
		g.Emit("runtime.ext_scratch3_control._createClone(" + in("target").AsString() + ", target);\n")
	case "control.deleteClone":
		g.Emit("if (!target.isOriginal) {\n")
		g.Emit("  runtime.disposeTarget(target);\n")
		g.Emit("  runtime.stopForTarget(target);\n")
		g.Retire()
		g.Emit("}\n")
	case "control.exitCase":
		if f := g.CurrentFrame(); f == nil || !f.ContainedByCase {
			g.invariantf(kind, `"exit case" blocks must be inside of a "case" block`)
		}
		g.Emit("break;\n")
	case "control.exitLoop":
		if f := g.CurrentFrame(); f == nil || !f.ContainedByLoop {
			g.invariantf(kind, `"escape loop" blocks must be inside of a looping block`)
		}
		// Inside a case this leaves only the switch, not the loop around it.
		g.Emit("break;\n")
	case "control.for":
		g.ResetVariables()
		index := g.locals.Next()
		g.Emit("var " + index + " = 0; ")
		g.Emit("while (" + index + " < " + in("count").AsNumber() + ") { ")
		g.Emit(index + "++; ")
		g.Emit(g.ReferenceVariable(ops.Variable) + ".value = " + index + ";\n")
		g.DescendStack(ops.Stack("do"), NewFrame(true, kind))
		g.YieldLoop()
		g.Emit("}\n")
	case "control.if":
		g.Emit("if (" + in("condition").AsBoolean() + ") {\n")
		g.DescendStack(ops.Stack("whenTrue"), NewFrame(false, kind))
		// Omit an empty else.
		if whenFalse := ops.Stack("whenFalse"); len(whenFalse) > 0 {
			g.Emit("} else {\n")
			g.DescendStack(whenFalse, NewFrame(false, kind))
		}
		g.Emit("}\n")
	case "control.newScript":
		// Starts the block's first branch as a thread of its own.
		block := g.locals.Next()
		branch := g.locals.Next()
		g.Emit("var " + block + " = thread.peekStack();")
		g.Emit("var " + branch + " = thread.target.blocks.getBranch(" + block + ", 0);")
		g.Emit("if (" + branch + ") {")
		g.Emit("runtime._pushThread(" + branch + ", target, {});")
		g.Emit("}\n")
	case "control.repeat":
		i := g.locals.Next()
		g.Emit("for (var " + i + " = " + in("times").AsNumber() + "; " + i + " >= 0.5; " + i + "--) {\n")
		g.DescendStack(ops.Stack("do"), NewFrame(true, kind))
		g.YieldLoop()
		g.Emit("}\n")
	case "control.repeatForSeconds":
		duration := g.locals.Next()
		g.Emit("thread.timer2 = timer();\n")
		g.Emit("var " + duration + " = Math.max(0, 1000 * " + in("times").AsNumber() + ");\n")
		g.RequestRedraw()
		g.Emit("while (thread.timer2.timeElapsed() < " + duration + ") {\n")
		g.DescendStack(ops.Stack("do"), NewFrame(true, kind))
		g.YieldLoop()
		g.Emit("}\n")
		g.Emit("thread.timer2 = null;\n")
	case "control.runAsSprite":
		g.runAsSprite(kind, ops)
	case "control.stopAll":
		g.Emit("runtime.stopAll();\n")
		g.Retire()
	case "control.stopOthers":
		g.Emit("runtime.stopForTarget(target, thread);\n")
	case "control.stopScript":
		if g.isProcedure {
			g.Emit("return;\n")
		} else {
			g.Retire()
		}
	case "control.switch":
		g.Emit("switch (" + in("test").AsString() + ") {\n")
		g.DescendStack(ops.Stack("conditions"), NewFrame(false, kind))
		if def := ops.Stack("default"); len(def) > 0 {
			g.Emit("default:\n")
			g.DescendStack(def, NewFrame(false, kind))
		}
		g.Emit("}\n")
	case "control.throwError":
		g.Emit("throw " + in("error").AsString() + ";\n")
	case "control.trycatch":
		g.Emit("try {\n")
		g.DescendStack(ops.Stack("try"), NewFrame(false, kind))
		err := g.locals.Next()
		g.Emit("} catch (" + err + ") {\n")
		g.Emit("runtime.ext_scratch3_control._error = String(" + err + ");\n")
		g.DescendStack(ops.Stack("catch"), NewFrame(false, kind))
		g.Emit("}\n")
	case "control.wait":
		duration := g.locals.Next()
		g.Emit("thread.timer = timer();\n")
		g.Emit("var " + duration + " = Math.max(0, 1000 * " + in("seconds").AsNumber() + ");\n")
		g.RequestRedraw()
		// Yield at least once, even for a zero duration.
		g.YieldNotWarp()
		g.Emit("while (thread.timer.timeElapsed() < " + duration + ") {\n")
		g.YieldStuckOrNotWarp()
		g.Emit("}\n")
		g.Emit("thread.timer = null;\n")
	case "control.waitOrUntil":
		duration := g.locals.Next()
		// The condition runs after the yield below, on every pass.
		g.ResetVariables()
		condition := in("condition").AsBoolean()
		g.Emit("thread.timer = timer();\n")
		g.Emit("var " + duration + " = Math.max(0, 1000 * " + in("seconds").AsNumber() + ");\n")
		g.RequestRedraw()
		g.YieldNotWarp()
		g.Emit("while ((thread.timer.timeElapsed() < " + duration + ") && (!(" + condition + "))) {\n")
		g.YieldStuckOrNotWarp()
		g.Emit("}\n")
		g.Emit("thread.timer = null;\n")
	case "control.waitTick":
		g.YieldNotWarp()
	case "control.waitUntil":
		g.ResetVariables()
		g.Emit("while (!" + in("condition").AsBoolean() + ") {\n")
		g.YieldStuckOrNotWarp()
		g.Emit("}\n")
	case "control.while":
		g.ResetVariables()
		g.Emit("while (" + in("condition").AsBoolean() + ") {\n")
		g.DescendStack(ops.Stack("do"), NewFrame(true, kind))
		if ops.FieldBool("warp_timer") {
			g.YieldStuckOrNotWarp()
		} else {
			g.YieldLoop()
		}
		g.Emit("}\n")

	case "counter.clear":
		g.Emit("runtime.ext_scratch3_control._counter = 0;\n")
	case "counter.decrement":
		g.Emit("runtime.ext_scratch3_control._counter--;\n")
	case "counter.increment":
		g.Emit("runtime.ext_scratch3_control._counter++;\n")
	case "counter.set":
		g.Emit("runtime.ext_scratch3_control._counter = " + in("value").AsNumber() + ";\n")

	case "event.broadcast":
		g.broadcastLookup(kind, ops)
		g.Emit(`startHats("event_whenbroadcastreceived", { BROADCAST_OPTION: ` + in("broadcast").AsString() + " });\n")
		g.ResetVariables()
	case "event.broadcastAndWait":
		g.requireYields("broadcast and wait in a script that is not marked as yielding")
		g.broadcastLookup(kind, ops)
		g.Emit(`yield* waitThreads(startHats("event_whenbroadcastreceived", { BROADCAST_OPTION: ` + in("broadcast").AsString() + " }));\n")
		g.yielded()

	case "hat.edge":
		g.inHat = true
		g.Emit("{\n")
		// Evaluate the input before reading the old edge state.
		g.Emit("const resolvedValue = " + in("condition").AsBoolean() + ";\n")
		g.Emit("const id = " + quote(ops.Field("id")) + ";\n")
		g.Emit("const hasOldEdgeValue = target.hasEdgeActivatedValue(id);\n")
		g.Emit("const oldEdgeValue = target.updateEdgeActivatedValue(id, resolvedValue);\n")
		g.Emit("const edgeWasActivated = hasOldEdgeValue ? (!oldEdgeValue && resolvedValue) : resolvedValue;\n")
		g.Emit("if (!edgeWasActivated) {\n")
		g.Retire()
		g.Emit("}\n")
		g.Yield()
		g.Emit("}\n")
		g.inHat = false
	case "hat.predicate":
		g.inHat = true
		g.Emit("if (!" + in("condition").AsBoolean() + ") {\n")
		g.Retire()
		g.Emit("}\n")
		g.Yield()
		g.inHat = false

	case "list.add":
		list := g.ReferenceVariable(ops.List)
		g.Emit(list + ".value.push(" + in("item").AsSafe() + ");\n")
		g.Emit(list + "._monitorUpToDate = false;\n")
	case "list.delete":
		g.listDelete(kind, ops)
	case "list.deleteAll":
		g.Emit(g.ReferenceVariable(ops.List) + ".value = [];\n")
	case "list.filter":
		list := g.ReferenceVariable(ops.List)
		g.Emit(list + ".value = " + list + ".value.filter(function (item, index) {")
		g.Emit("    runtime.ext_scratch3_data._listFilterItem = item;")
		g.Emit("    runtime.ext_scratch3_data._listFilterIndex = index + 1;")
		g.Emit("    return " + in("bool").AsBoolean() + ";")
		g.Emit("});\n")
		g.Emit(`runtime.ext_scratch3_data._listFilterItem = "";`)
		g.Emit("runtime.ext_scratch3_data._listFilterIndex = 0;\n")
	case "list.forEach":
		list := g.ReferenceVariable(ops.List)
		set := g.DescendVariable(ops.Variable)
		to := "value"
		if ops.FieldBool("num") {
			to = "index + 1"
		}
		g.Emit("for (let index = 0; index < " + list + ".value.length; index++) {" +
			"const value = " + list + ".value[index];" +
			set.Source() + " = " + to + ";")
		g.DescendStack(ops.Stack("do"), NewFrame(true, kind))
		g.Emit("};\n")
	case "list.hide":
		g.monitorCheckbox(ops.List, false)
	case "list.insert":
		list := g.ReferenceVariable(ops.List)
		index := in("index")
		item := in("item")
		if c, ok := index.(*Constant); ok && cast.Number(c.Literal()) == 1 {
			g.Emit(list + ".value.unshift(" + item.AsSafe() + ");\n")
			g.Emit(list + "._monitorUpToDate = false;\n")
			break
		}
		g.Emit("listInsert(" + list + ", " + index.AsUnknown() + ", " + item.AsSafe() + ");\n")
	case "list.replace":
		list := g.ReferenceVariable(ops.List)
		g.Emit("listReplace(" + list + ", " + in("index").AsUnknown() + ", " + in("item").AsSafe() + ");\n")
	case "list.shift":
		list := g.ReferenceVariable(ops.List)
		index := in("index")
		// Dropping zero or fewer items is a no-op.
		if c, ok := index.(*Constant); ok && cast.Number(c.Literal()) <= 0 {
			break
		}
		g.Emit(list + ".value = " + list + ".value.slice(" + index.AsNumber() + ");\n")
		g.Emit(list + "._monitorUpToDate = false;\n")
	case "list.show":
		g.monitorCheckbox(ops.List, true)

	case "looks.backwardLayers":
		if !g.program.Target.IsStage {
			g.Emit("target.goBackwardLayers(" + in("layers").AsNumber() + ");\n")
		}
	case "looks.changeEffect":
		if effect := ops.Field("effect"); graphicEffects[effect] {
			e := quote(effect)
			g.Emit("target.setEffect(" + e + ", runtime.ext_scratch3_looks.clampEffect(" + e + ", " + in("value").AsNumber() + " + target.effects[" + e + "]));\n")
		}
	case "looks.changeSize":
		g.Emit("target.setSize(target.size + " + in("size").AsNumber() + ");\n")
	case "looks.clearEffects":
		g.Emit("target.clearEffects();\nruntime.ext_scratch3_looks._resetBubbles(target)\n")
	case "looks.forwardLayers":
		if !g.program.Target.IsStage {
			g.Emit("target.goForwardLayers(" + in("layers").AsNumber() + ");\n")
		}
	case "looks.goToBack":
		if !g.program.Target.IsStage {
			g.Emit("target.goToBack();\n")
		}
	case "looks.goToFront":
		if !g.program.Target.IsStage {
			g.Emit("target.goToFront();\n")
		}
	case "looks.hide":
		g.Emit("target.setVisible(false);\n")
		g.Emit("runtime.ext_scratch3_looks._renderBubble(target);\n")
	case "looks.nextBackdrop":
		g.Emit("runtime.ext_scratch3_looks._setBackdrop(stage, stage.currentCostume + 1, true);\n")
	case "looks.nextCostume":
		g.Emit("target.setCostume(target.currentCostume + 1);\n")
	case "looks.targetBack":
		if !g.program.Target.IsStage {
			other := g.locals.Next()
			g.Emit("{ const " + other + " = runtime.getSpriteTargetByName(" + in("layers").AsString() + ");\n")
			g.Emit("if (" + other + " && " + other + ".getLayerOrder() < target.getLayerOrder()) target.goBehindOther(" + other + ");\n")
			g.Emit("}\n")
		}
	case "looks.targetFront":
		if !g.program.Target.IsStage {
			other := g.locals.Next()
			g.Emit("{ const " + other + " = runtime.getSpriteTargetByName(" + in("layers").AsString() + ");\n")
			g.Emit("if (" + other + ") {\n")
			g.Emit("target.goBehindOther(" + other + ");\n")
			g.Emit("target.goForwardLayers(1);\n")
			g.Emit("}\n")
			g.Emit("}\n")
		}
	case "looks.setColor":
		g.Emit("runtime.ext_scratch3_looks.setColor({ prop: " + quote(ops.Field("prop")) + ", color: " + in("color").AsColor() + " }, { target: target });\n")
	case "looks.setEffect":
		if effect := ops.Field("effect"); graphicEffects[effect] {
			e := quote(effect)
			g.Emit("target.setEffect(" + e + ", runtime.ext_scratch3_looks.clampEffect(" + e + ", " + in("value").AsNumber() + "));\n")
		}
	case "looks.setFont":
		g.Emit("runtime.ext_scratch3_looks.setFont({ font: " + in("font").AsString() + ", size: " + in("size").AsNumber() + " }, { target: target });\n")
	case "looks.setShape":
		g.Emit("runtime.ext_scratch3_looks.setShape({ prop: " + quote(ops.Field("prop")) + ", color: " + in("value").AsColor() + " }, { target: target });\n")
	case "looks.setSize":
		g.Emit("target.setSize(" + in("size").AsNumber() + ");\n")
	case "looks.setTintColor":
		g.Emit("runtime.ext_scratch3_looks.setTintColor({ color: " + in("color").AsColor() + " }, { target: target });\n")
	case "looks.show":
		g.Emit("target.setVisible(true);\n")
		g.Emit("runtime.ext_scratch3_looks._renderBubble(target);\n")
	case "looks.switchBackdrop":
		g.Emit("runtime.ext_scratch3_looks._setBackdrop(stage, " + in("backdrop").AsSafe() + ");\n")
	case "looks.switchCostume":
		g.Emit("runtime.ext_scratch3_looks._setCostume(target, " + in("costume").AsSafe() + ");\n")

	case "motion.changeX":
		g.Emit("target.setXY(target.x + " + in("dx").AsNumber() + ", target.y);\n")
	case "motion.changeY":
		g.Emit("target.setXY(target.x, target.y + " + in("dy").AsNumber() + ");\n")
	case "motion.ifOnEdgeBounce":
		g.Emit("runtime.ext_scratch3_motion._ifOnEdgeBounce(target);\n")
	case "motion.setDirection":
		g.Emit("target.setDirection(" + in("direction").AsNumber() + ");\n")
	case "motion.setRotationStyle":
		g.Emit("target.setRotationStyle(" + quote(ops.Field("style")) + ");\n")
	case "motion.setX", "motion.setY", "motion.setXY":
		g.descendedIntoModulo = false
		x, y := "target.x", "target.y"
		if ops.Input("x") != nil {
			x = in("x").AsNumber()
		}
		if ops.Input("y") != nil {
			y = in("y").AsNumber()
		}
		g.Emit("target.setXY(" + x + ", " + y + ");\n")
		// Wrapped coordinates must not animate across the screen.
		if g.descendedIntoModulo {
			g.Emit("if (target.interpolationData) target.interpolationData = null;\n")
		}
	case "motion.step":
		g.Emit("runtime.ext_scratch3_motion._moveSteps(" + in("steps").AsNumber() + ", target);\n")

	case "noop":
		g.logger.Warn("unexpected noop statement", "top_block", g.script.TopBlockID)

	case "pen.changeParam":
		g.Emit(penExt + "._setOrChangeColorParam(" + in("param").AsString() + ", " + in("value").AsNumber() + ", " + penState + ", true);\n")
	case "pen.changeSize":
		g.Emit(penExt + "._changePenSizeBy(" + in("size").AsNumber() + ", target);\n")
	case "pen.clear":
		g.Emit(penExt + ".clear();\n")
	case "pen.down":
		g.Emit(penExt + "._penDown(target);\n")
	case "pen.legacyChangeHue":
		g.Emit(penExt + "._changePenHueBy(" + in("hue").AsNumber() + ", target);\n")
	case "pen.legacyChangeShade":
		g.Emit(penExt + "._changePenShadeBy(" + in("shade").AsNumber() + ", target);\n")
	case "pen.legacySetHue":
		g.Emit(penExt + "._setPenHueToNumber(" + in("hue").AsNumber() + ", target);\n")
	case "pen.legacySetShade":
		g.Emit(penExt + "._setPenShadeToNumber(" + in("shade").AsNumber() + ", target);\n")
	case "pen.setColor":
		g.Emit(penExt + "._setPenColorToColor(" + in("color").AsColor() + ", target);\n")
	case "pen.setParam":
		g.Emit(penExt + "._setOrChangeColorParam(" + in("param").AsString() + ", " + in("value").AsNumber() + ", " + penState + ", false);\n")
	case "pen.setSize":
		g.Emit(penExt + "._setPenSizeTo(" + in("size").AsNumber() + ", target);\n")
	case "pen.stamp":
		g.Emit(penExt + "._stamp(target);\n")
	case "pen.up":
		g.Emit(penExt + "._penUp(target);\n")

	case "procedures.call":
		if call, ok := g.procedureCall(ops, false); ok {
			g.Emit(call + ";\n")
		}
	case "procedures.return":
		g.Emit("return " + in("return").AsUnknown() + ";\n")
	case "procedures.set":
		param := ops.Input("param")
		if param == nil {
			g.invariantf(kind, "missing input %q", "param")
		}
		g.Emit(argIndex(param.Index) + " = " + in("value").AsSafe() + ";\n")

	case "sensing.set.of":
		g.sensingSetOf(kind, ops)

	case "tempVars.delete":
		name := in("var").AsString()
		host := tempVarsHost(ops)
		if g.isOptimized {
			g.Emit("delete " + host + "[" + name + "];\n")
		} else {
			g.Emit("remove(" + host + ", " + name + ");\n")
		}
	case "tempVars.deleteAll":
		g.Emit(tempVarsHost(ops) + " = Object.create(null);\n")
	case "tempVars.forEach":
		g.tempVarsForEach(kind, ops)
	case "tempVars.set":
		name := in("var").AsString()
		value := in("value").AsUnknown()
		host := tempVarsHost(ops)
		if g.isOptimized {
			g.Emit(host + "[" + name + "] = " + value + ";\n")
		} else {
			g.Emit("set(" + host + ", " + name + ", " + value + ");\n")
		}

	case "timer.reset":
		g.Emit("runtime.ioDevices.clock.resetProjectTimer();\n")

	case "tw.debugger":
		g.Emit("debugger;\n")

	case "var.hide":
		g.monitorCheckbox(ops.Variable, false)
	case "var.set":
		variable := g.DescendVariable(ops.Variable)
		value := in("value")
		variable.SetInput(value)
		g.Emit(variable.Source() + " = " + value.AsSafe() + ";\n")
		if ops.Variable.IsCloud {
			g.Emit("runtime.ioDevices.cloud.requestUpdateVariable(" + quote(ops.Variable.Name) + ", " + variable.Source() + ");\n")
		}
	case "var.show":
		g.monitorCheckbox(ops.Variable, true)

	case "visualReport":
		value := g.locals.Next()
		g.Emit("const " + value + " = " + in("input").AsUnknown() + ";")
		// Legacy no-op blocks can report a literal undefined.
		g.Emit("if (" + value + " !== undefined) runtime.visualReport(" + quote(g.script.TopBlockID) + ", " + value + ");\n")

	default:
		g.logger.Warn("unknown stacked block kind", "kind", kind, "top_block", g.script.TopBlockID)
		g.fail(&UnknownKindError{Kind: kind, Statement: true})
	}
}

func (g *Generator) broadcastLookup(kind string, ops *ir.Operands) {
	g.Emit(`var broadcastVar = runtime.getTargetForStage().lookupBroadcastMsg("", ` + g.input(kind, ops, "broadcast").AsString() + " );")
	g.Emit("if (broadcastVar) broadcastVar.isSent = true;")
}

func (g *Generator) monitorCheckbox(v *ir.Variable, visible bool) {
	if v == nil {
		g.invariantf("", "missing variable operand")
	}
	value := "false"
	if visible {
		value = "true"
	}
	g.Emit(`runtime.monitorBlocks.changeBlock({ id: ` + quote(v.ID) + `, element: "checkbox", value: ` + value + ` }, runtime);` + "\n")
}

func (g *Generator) listDelete(kind string, ops *ir.Operands) {
	list := g.ReferenceVariable(ops.List)
	index := g.input(kind, ops, "index")
	if c, ok := index.(*Constant); ok {
		// "all" never reaches here; the front end emits list.deleteAll.
		switch {
		case c.Literal().Text == "last":
			g.Emit(list + ".value.pop();\n")
			g.Emit(list + "._monitorUpToDate = false;\n")
			return
		case cast.Number(c.Literal()) == 1:
			g.Emit(list + ".value.shift();\n")
			g.Emit(list + "._monitorUpToDate = false;\n")
			return
		}
	}
	g.Emit("listDelete(" + list + ", " + index.AsUnknown() + ");\n")
}

func (g *Generator) runAsSprite(kind string, ops *ir.Operands) {
	sprite := g.input(kind, ops, "sprite").AsString()
	lookup := "runtime.getSpriteTargetByName(" + sprite + ") || runtime.getTargetById(" + sprite + ")"
	if sprite == `"_stage_"` {
		lookup = "runtime.getTargetForStage()"
	}

	original := g.locals.Next()
	g.Emit("const " + original + " = target;\n")
	g.Emit("try {\n")
	g.Emit("const target = (" + lookup + ");\n")
	g.Emit("if (target) {\n")
	g.Emit("thread.target = target;\n")

	spoofing := g.locals.Next()
	spoofTarget := g.locals.Next()
	g.Emit("var " + spoofing + " = thread.spoofing;\n")
	g.Emit("var " + spoofTarget + " = thread.spoofTarget;\n")
	g.Emit("thread.spoofing = true;\n")
	g.Emit("thread.spoofTarget = target;\n")

	g.DescendStack(ops.Stack("substack"), NewFrame(false, kind))

	restore := "thread.target = " + original + ";\n" +
		"thread.spoofing = " + spoofing + ";\n" +
		"thread.spoofTarget = " + spoofTarget + ";\n"
	g.Emit(restore)
	g.Emit("}\n")
	g.Emit("} catch (e) {\nconsole.log('as sprite function failed;', e);\n")
	g.Emit(restore)
	g.Emit("}\n")
}

func (g *Generator) sensingSetOf(kind string, ops *ir.Operands) {
	objNode := ops.Input("object")
	object := g.input(kind, ops, "object").AsString()
	value := g.input(kind, ops, "value")
	property := ops.Field("property")

	ref := "stage"
	if objNode.Kind != "constant" || objNode.Value == nil || objNode.Value.Text != "_stage_" {
		ref = g.EvaluateOnce("runtime.getSpriteTargetByName(" + object + ")")
	}

	// Costumes and backdrops are selected by number when the value is
	// provably numeric, by name otherwise.
	costume := func() string {
		if value.IsAlwaysNumber() {
			return value.AsNumber()
		}
		return value.AsString()
	}

	g.Emit("if (" + ref + ")")
	switch property {
	case "volume":
		g.Emit("runtime.ext_scratch3_sound._updateVolume(" + value.AsNumber() + ", " + ref + ");\n")
	case "x position":
		g.Emit(ref + ".setXY(" + value.AsNumber() + ", " + ref + ".y);\n")
	case "y position":
		g.Emit(ref + ".setXY(" + ref + ".x, " + value.AsNumber() + ");\n")
	case "direction":
		g.Emit(ref + ".setDirection(" + value.AsNumber() + ");\n")
	case "costume":
		g.Emit("runtime.ext_scratch3_looks._setCostume(" + ref + ", " + costume() + ");\n")
	case "backdrop":
		g.Emit("runtime.ext_scratch3_looks._setBackdrop(" + ref + ", " + costume() + ");\n")
	case "size":
		g.Emit(ref + ".setSize(" + value.AsNumber() + ");\n")
	default:
		variable := g.EvaluateOnce(ref + " && " + ref + ".lookupVariableByNameAndType(" + quote(property) + ", \"\", true)")
		g.Emit(" if (" + variable + ") " + variable + ".value = " + value.AsString() + ";\n")
	}
}

func (g *Generator) tempVarsForEach(kind string, ops *ir.Operands) {
	name := g.input(kind, ops, "var").AsString()
	loops := g.input(kind, ops, "loops").AsNumber()
	host := tempVarsHost(ops)

	root := g.locals.Next()
	key := g.locals.Next()
	slot := host + "[" + name + "]"
	if !g.isOptimized {
		slot = root + "[" + key + "]"
		g.Emit("const [" + root + "," + key + "] = _resolveKeyPath(" + host + ", " + name + "); ")
	}
	g.Emit(slot + " = 0; ")
	g.Emit("while (" + slot + " < " + loops + ") { ")
	g.Emit(slot + "++;\n")
	g.DescendStack(ops.Stack("do"), NewFrame(true, kind))
	g.YieldLoop()
	g.Emit("}\n")
}
