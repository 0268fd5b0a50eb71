/*
 * AXP-CORE - FP-operate-format instruction handlers.
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
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/fparith"
)

// fpRoundMode maps an instruction's two-bit round field plus FPCR's
// dynamic mode into the fparith.Round this implementation actually
// performs the operation in (spec section 3).
func fpRoundMode(c *Core, inst decode.Instruction) fparith.Round {
	return fparith.ResolveRound(uint8(inst.Round), c.Regs.FPCRDynamicRoundingMode())
}

// raiseFPExceptions posts any sticky exception flags into FPCR and,
// for an enabled trap type, raises an arithmetic trap instead of
// merely recording the flag (spec section 3/4.8).
func raiseFPExceptions(c *Core, exc fparith.Exceptions) error {
	if exc == 0 {
		return nil
	}
	c.Regs.FPCRSetSticky(uint64(exc))
	if exc&fparith.ExcInvalid != 0 && c.Regs.FPCRTrapEnabled(uint64(1)) {
		return newTrap(VectorArithmetic, c.Regs.PC, "invalid operation")
	}
	if exc&fparith.ExcDivZero != 0 && c.Regs.FPCRTrapEnabled(uint64(2)) {
		return newTrap(VectorArithmetic, c.Regs.PC, "division by zero")
	}
	if exc&fparith.ExcOverflow != 0 && c.Regs.FPCRTrapEnabled(uint64(4)) {
		return newTrap(VectorArithmetic, c.Regs.PC, "overflow")
	}
	if exc&fparith.ExcUnderflow != 0 && c.Regs.FPCRTrapEnabled(uint64(8)) {
		return newTrap(VectorArithmetic, c.Regs.PC, "underflow")
	}
	if exc&fparith.ExcInexact != 0 && c.Regs.FPCRTrapEnabled(uint64(16)) {
		return newTrap(VectorArithmetic, c.Regs.PC, "inexact result")
	}
	return nil
}

func opAdds(c *Core, inst decode.Instruction) error {
	return doFP32(c, inst, func(a, b float64) float64 { return a + b })
}

func opSubs(c *Core, inst decode.Instruction) error {
	return doFP32(c, inst, func(a, b float64) float64 { return a - b })
}

func opMuls(c *Core, inst decode.Instruction) error {
	return doFP32(c, inst, func(a, b float64) float64 { return a * b })
}

func opDivs(c *Core, inst decode.Instruction) error {
	return doFP32(c, inst, func(a, b float64) float64 { return a / b })
}

func opAddt(c *Core, inst decode.Instruction) error {
	return doFP64(c, inst, func(a, b float64) float64 { return a + b })
}

func opSubt(c *Core, inst decode.Instruction) error {
	return doFP64(c, inst, func(a, b float64) float64 { return a - b })
}

func opMult(c *Core, inst decode.Instruction) error {
	return doFP64(c, inst, func(a, b float64) float64 { return a * b })
}

func opDivt(c *Core, inst decode.Instruction) error {
	return doFP64(c, inst, func(a, b float64) float64 { return a / b })
}

func doFP32(c *Core, inst decode.Instruction, op func(a, b float64) float64) error {
	a := fparith.IEEESToFloat64(c.Regs.GetFP(int(inst.Fa)))
	b := fparith.IEEESToFloat64(c.Regs.GetFP(int(inst.Fb)))
	r, exc := fparith.Op(fpRoundMode(c, inst), a, b, op)
	c.Regs.SetFP(int(inst.Fc), fparith.Float64ToIEEES(r))
	return raiseFPExceptions(c, exc)
}

func doFP64(c *Core, inst decode.Instruction, op func(a, b float64) float64) error {
	a := math.Float64frombits(c.Regs.GetFP(int(inst.Fa)))
	b := math.Float64frombits(c.Regs.GetFP(int(inst.Fb)))
	r, exc := fparith.Op(fpRoundMode(c, inst), a, b, op)
	c.Regs.SetFP(int(inst.Fc), math.Float64bits(r))
	return raiseFPExceptions(c, exc)
}

func opCvtlq(c *Core, inst decode.Instruction) error {
	v := c.Regs.GetFP(int(inst.Fb))
	c.Regs.SetFP(int(inst.Fc), uint64(int64(int32(v))))
	return nil
}

func opCvtql(c *Core, inst decode.Instruction) error {
	v := c.Regs.GetFP(int(inst.Fb))
	c.Regs.SetFP(int(inst.Fc), uint64(uint32(v)))
	return nil
}

// doVAXF and doVAXG mirror doFP32/doFP64 for the VAX F and G formats:
// widen both operands to a host double, perform the operation under
// the requested rounding mode, narrow back.
func doVAXF(c *Core, inst decode.Instruction, op func(a, b float64) float64) error {
	a := fparith.VAXFToFloat64(uint32(c.Regs.GetFP(int(inst.Fa))))
	b := fparith.VAXFToFloat64(uint32(c.Regs.GetFP(int(inst.Fb))))
	r, exc := fparith.Op(fpRoundMode(c, inst), a, b, op)
	c.Regs.SetFP(int(inst.Fc), uint64(fparith.Float64ToVAXF(r)))
	return raiseFPExceptions(c, exc)
}

func doVAXG(c *Core, inst decode.Instruction, op func(a, b float64) float64) error {
	a := fparith.VAXGToFloat64(c.Regs.GetFP(int(inst.Fa)))
	b := fparith.VAXGToFloat64(c.Regs.GetFP(int(inst.Fb)))
	r, exc := fparith.Op(fpRoundMode(c, inst), a, b, op)
	c.Regs.SetFP(int(inst.Fc), fparith.Float64ToVAXG(r))
	return raiseFPExceptions(c, exc)
}

func opAddf(c *Core, inst decode.Instruction) error {
	return doVAXF(c, inst, func(a, b float64) float64 { return a + b })
}

func opSubf(c *Core, inst decode.Instruction) error {
	return doVAXF(c, inst, func(a, b float64) float64 { return a - b })
}

func opMulf(c *Core, inst decode.Instruction) error {
	return doVAXF(c, inst, func(a, b float64) float64 { return a * b })
}

func opDivf(c *Core, inst decode.Instruction) error {
	return doVAXF(c, inst, func(a, b float64) float64 { return a / b })
}

func opAddg(c *Core, inst decode.Instruction) error {
	return doVAXG(c, inst, func(a, b float64) float64 { return a + b })
}

func opSubg(c *Core, inst decode.Instruction) error {
	return doVAXG(c, inst, func(a, b float64) float64 { return a - b })
}

func opMulg(c *Core, inst decode.Instruction) error {
	return doVAXG(c, inst, func(a, b float64) float64 { return a * b })
}

func opDivg(c *Core, inst decode.Instruction) error {
	return doVAXG(c, inst, func(a, b float64) float64 { return a / b })
}

func opCvtdg(c *Core, inst decode.Instruction) error {
	v := fparith.VAXDToFloat64(c.Regs.GetFP(int(inst.Fb)))
	c.Regs.SetFP(int(inst.Fc), fparith.Float64ToVAXG(v))
	return nil
}

func opCvtgf(c *Core, inst decode.Instruction) error {
	v := fparith.VAXGToFloat64(c.Regs.GetFP(int(inst.Fb)))
	c.Regs.SetFP(int(inst.Fc), uint64(fparith.Float64ToVAXF(v)))
	return nil
}

func opCvtgd(c *Core, inst decode.Instruction) error {
	v := fparith.VAXGToFloat64(c.Regs.GetFP(int(inst.Fb)))
	c.Regs.SetFP(int(inst.Fc), fparith.Float64ToVAXD(v))
	return nil
}

func opCvtgq(c *Core, inst decode.Instruction) error {
	v := fparith.VAXGToFloat64(c.Regs.GetFP(int(inst.Fb)))
	c.Regs.SetFP(int(inst.Fc), uint64(int64(v)))
	return nil
}

func opCvtqf(c *Core, inst decode.Instruction) error {
	iv := int64(c.Regs.GetFP(int(inst.Fb)))
	c.Regs.SetFP(int(inst.Fc), uint64(fparith.Float64ToVAXF(float64(iv))))
	return nil
}

func opCvtqg(c *Core, inst decode.Instruction) error {
	iv := int64(c.Regs.GetFP(int(inst.Fb)))
	c.Regs.SetFP(int(inst.Fc), fparith.Float64ToVAXG(float64(iv)))
	return nil
}

// vaxCompare and ieeeCompare write the canonical true/false Fc pattern
// (fparith.CanonicalCompareResult) so a later FBEQ/FBNE reading the raw
// bit pattern gets the right answer (spec section 4.4).
func vaxCompare(c *Core, inst decode.Instruction, cmp func(a, b float64) bool) error {
	a := fparith.VAXGToFloat64(c.Regs.GetFP(int(inst.Fa)))
	b := fparith.VAXGToFloat64(c.Regs.GetFP(int(inst.Fb)))
	c.Regs.SetFP(int(inst.Fc), fparith.CanonicalCompareResult(cmp(a, b)))
	return nil
}

func opCmpgeq(c *Core, inst decode.Instruction) error {
	return vaxCompare(c, inst, func(a, b float64) bool { return a == b })
}

func opCmpglt(c *Core, inst decode.Instruction) error {
	return vaxCompare(c, inst, func(a, b float64) bool { return a < b })
}

func opCmpgle(c *Core, inst decode.Instruction) error {
	return vaxCompare(c, inst, func(a, b float64) bool { return a <= b })
}

func opCvtqs(c *Core, inst decode.Instruction) error {
	iv := int64(c.Regs.GetFP(int(inst.Fb)))
	c.Regs.SetFP(int(inst.Fc), fparith.Float64ToIEEES(float64(iv)))
	return nil
}

func opCvtqt(c *Core, inst decode.Instruction) error {
	iv := int64(c.Regs.GetFP(int(inst.Fb)))
	c.Regs.SetFP(int(inst.Fc), fparith.Float64ToIEEET(float64(iv)))
	return nil
}

func opCvtts(c *Core, inst decode.Instruction) error {
	v := fparith.IEEETToFloat64(c.Regs.GetFP(int(inst.Fb)))
	c.Regs.SetFP(int(inst.Fc), fparith.Float64ToIEEES(v))
	return nil
}

func opCvtst(c *Core, inst decode.Instruction) error {
	v := fparith.IEEESToFloat64(c.Regs.GetFP(int(inst.Fb)))
	c.Regs.SetFP(int(inst.Fc), fparith.Float64ToIEEET(v))
	return nil
}

func opCvttq(c *Core, inst decode.Instruction) error {
	v := fparith.IEEETToFloat64(c.Regs.GetFP(int(inst.Fb)))
	c.Regs.SetFP(int(inst.Fc), uint64(int64(v)))
	return nil
}

func ieeeCompare(c *Core, inst decode.Instruction, cmp func(a, b float64) bool) error {
	a := fparith.IEEETToFloat64(c.Regs.GetFP(int(inst.Fa)))
	b := fparith.IEEETToFloat64(c.Regs.GetFP(int(inst.Fb)))
	c.Regs.SetFP(int(inst.Fc), fparith.CanonicalCompareResult(cmp(a, b)))
	return nil
}

func opCmpteq(c *Core, inst decode.Instruction) error {
	return ieeeCompare(c, inst, func(a, b float64) bool { return a == b })
}

func opCmptlt(c *Core, inst decode.Instruction) error {
	return ieeeCompare(c, inst, func(a, b float64) bool { return a < b })
}

func opCmptle(c *Core, inst decode.Instruction) error {
	return ieeeCompare(c, inst, func(a, b float64) bool { return a <= b })
}

func opCmptun(c *Core, inst decode.Instruction) error {
	return ieeeCompare(c, inst, func(a, b float64) bool { return math.IsNaN(a) || math.IsNaN(b) })
}

// opCpys, opCpysn and opCpyse implement the CPYS family: sign/exponent
// manipulation on the raw T_floating bit pattern without touching the
// value as a float at all (spec section 4.4).
func opCpys(c *Core, inst decode.Instruction) error {
	a, b := c.Regs.GetFP(int(inst.Fa)), c.Regs.GetFP(int(inst.Fb))
	c.Regs.SetFP(int(inst.Fc), (b&(1<<63))|(a&^(uint64(1)<<63)))
	return nil
}

func opCpysn(c *Core, inst decode.Instruction) error {
	a, b := c.Regs.GetFP(int(inst.Fa)), c.Regs.GetFP(int(inst.Fb))
	c.Regs.SetFP(int(inst.Fc), (^b&(1<<63))|(a&^(uint64(1)<<63)))
	return nil
}

func opCpyse(c *Core, inst decode.Instruction) error {
	const signExp = 0xfff0000000000000
	a, b := c.Regs.GetFP(int(inst.Fa)), c.Regs.GetFP(int(inst.Fb))
	c.Regs.SetFP(int(inst.Fc), (b&signExp)|(a&^uint64(signExp)))
	return nil
}

// fpCondMove writes Fb into Fc only when cond holds, the FP analog of
// condMove for CMOVxx.
func fpCondMove(c *Core, inst decode.Instruction, cond bool) error {
	if cond {
		c.Regs.SetFP(int(inst.Fc), c.Regs.GetFP(int(inst.Fb)))
	}
	return nil
}

func fcmovTestValue(c *Core, inst decode.Instruction) float64 {
	return math.Float64frombits(c.Regs.GetFP(int(inst.Fa)))
}

func opFcmoveq(c *Core, inst decode.Instruction) error {
	return fpCondMove(c, inst, fcmovTestValue(c, inst) == 0)
}

func opFcmovne(c *Core, inst decode.Instruction) error {
	return fpCondMove(c, inst, fcmovTestValue(c, inst) != 0)
}

func opFcmovlt(c *Core, inst decode.Instruction) error {
	return fpCondMove(c, inst, fcmovTestValue(c, inst) < 0)
}

func opFcmovge(c *Core, inst decode.Instruction) error {
	return fpCondMove(c, inst, fcmovTestValue(c, inst) >= 0)
}

func opFcmovle(c *Core, inst decode.Instruction) error {
	return fpCondMove(c, inst, fcmovTestValue(c, inst) <= 0)
}

func opFcmovgt(c *Core, inst decode.Instruction) error {
	return fpCondMove(c, inst, fcmovTestValue(c, inst) > 0)
}

// opMtFpcr and opMfFpcr move FPCR to/from Fa directly, matching how
// axp/system.go's state save/restore also treats FPCR as a plain field
// rather than a register-file slot.
func opMtFpcr(c *Core, inst decode.Instruction) error {
	c.Regs.FPCR = c.Regs.GetFP(int(inst.Fa))
	return nil
}

func opMfFpcr(c *Core, inst decode.Instruction) error {
	c.Regs.SetFP(int(inst.Fa), c.Regs.FPCR)
	return nil
}
