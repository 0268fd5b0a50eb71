/*
 * AXP-CORE - Branch-format instruction handlers.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package cpu

import (
	"math"

	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/decode"
)

func opBr(c *Core, inst decode.Instruction) error {
	c.Regs.SetInt(int(inst.Ra), c.Regs.PC+4)
	c.Regs.SetPC(inst.Target)
	return nil
}

func opBsr(c *Core, inst decode.Instruction) error {
	return opBr(c, inst)
}

func branchIf(c *Core, inst decode.Instruction, take bool) error {
	if take {
		c.Regs.SetPC(inst.Target)
	}
	return nil
}

func opBeq(c *Core, inst decode.Instruction) error {
	return branchIf(c, inst, c.Regs.GetInt(int(inst.Ra)) == 0)
}

func opBne(c *Core, inst decode.Instruction) error {
	return branchIf(c, inst, c.Regs.GetInt(int(inst.Ra)) != 0)
}

func opBlt(c *Core, inst decode.Instruction) error {
	return branchIf(c, inst, int64(c.Regs.GetInt(int(inst.Ra))) < 0)
}

func opBle(c *Core, inst decode.Instruction) error {
	return branchIf(c, inst, int64(c.Regs.GetInt(int(inst.Ra))) <= 0)
}

func opBgt(c *Core, inst decode.Instruction) error {
	return branchIf(c, inst, int64(c.Regs.GetInt(int(inst.Ra))) > 0)
}

func opBge(c *Core, inst decode.Instruction) error {
	return branchIf(c, inst, int64(c.Regs.GetInt(int(inst.Ra))) >= 0)
}

func opBlbc(c *Core, inst decode.Instruction) error {
	return branchIf(c, inst, c.Regs.GetInt(int(inst.Ra))&1 == 0)
}

func opBlbs(c *Core, inst decode.Instruction) error {
	return branchIf(c, inst, c.Regs.GetInt(int(inst.Ra))&1 != 0)
}

// fpBranchValue reads the branch-format Fa field (decoded into Ra, the
// branch format has no separate FP register field) as a host double, so
// the FP branch family can test it against zero (spec section 4.6).
func fpBranchValue(c *Core, inst decode.Instruction) float64 {
	return math.Float64frombits(c.Regs.GetFP(int(inst.Ra)))
}

func fbranchIf(c *Core, inst decode.Instruction, take bool) error {
	if take {
		c.Regs.SetPC(inst.Target)
	}
	return nil
}

func opFbeq(c *Core, inst decode.Instruction) error {
	return fbranchIf(c, inst, fpBranchValue(c, inst) == 0)
}

func opFbne(c *Core, inst decode.Instruction) error {
	return fbranchIf(c, inst, fpBranchValue(c, inst) != 0)
}

func opFblt(c *Core, inst decode.Instruction) error {
	return fbranchIf(c, inst, fpBranchValue(c, inst) < 0)
}

func opFble(c *Core, inst decode.Instruction) error {
	return fbranchIf(c, inst, fpBranchValue(c, inst) <= 0)
}

func opFbgt(c *Core, inst decode.Instruction) error {
	return fbranchIf(c, inst, fpBranchValue(c, inst) > 0)
}

func opFbge(c *Core, inst decode.Instruction) error {
	return fbranchIf(c, inst, fpBranchValue(c, inst) >= 0)
}
