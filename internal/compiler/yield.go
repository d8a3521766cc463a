package compiler

// Yield emits an unconditional suspension point. It is an invariant
// violation in warp code and in scripts not declared yielding.
func (g *Generator) Yield() {
	if g.isWarp {
		g.invariantf("", "unconditional yield in warp code")
	}
	g.Emit("yield;\n")
	g.yieldPoints++
	g.yielded()
}

// YieldNotWarp yields unless the code is warp.
func (g *Generator) YieldNotWarp() {
	if !g.isWarp {
		g.Yield()
	}
}

// YieldStuckOrNotWarp yields unconditionally outside warp, and in warp
// code only when the scheduler reports no forward progress.
func (g *Generator) YieldStuckOrNotWarp() {
	if !g.isWarp {
		g.Yield()
		return
	}
	g.Emit("if (isStuck()) yield;\n")
	g.yieldPoints++
	g.yielded()
}

// YieldLoop places the once-per-iteration yield at the end of a loop body.
func (g *Generator) YieldLoop() {
	if g.warpTimer {
		g.YieldStuckOrNotWarp()
	} else {
		g.YieldNotWarp()
	}
}

// yielded records that control may have passed to another script. Sibling
// scripts can write any variable meanwhile, so cached types are dropped.
func (g *Generator) yielded() {
	g.requireYields("script yielded but is not marked as yielding")
	g.ResetVariables()
}

// requireYields fails the compile unless the script may suspend.
func (g *Generator) requireYields(msg string) {
	if !g.script.Yields {
		g.invariantf("", "%s", msg)
	}
}
