/*
 * AXP-CORE - Operate-format (integer) instruction handlers.
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
	"math/bits"

	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/decode"
)

// operands returns Ra's value and Rb's value-or-literal, the two
// sources every Operate-format instruction reads.
func operands(c *Core, inst decode.Instruction) (uint64, uint64) {
	a := c.Regs.GetInt(int(inst.Ra))
	if inst.Literal {
		return a, uint64(inst.Lit)
	}
	return a, c.Regs.GetInt(int(inst.Rb))
}

func opAddl(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	r := uint64(int64(int32(a + b)))
	c.Regs.SetInt(int(inst.Rc), r)
	return nil
}

func opS4addl(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	r := uint64(int64(int32(a*4 + b)))
	c.Regs.SetInt(int(inst.Rc), r)
	return nil
}

func opAddlV(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	sum := int64(int32(a)) + int64(int32(b))
	if sum > 0x7fffffff || sum < -0x80000000 {
		return newTrap(VectorArithmetic, c.Regs.PC, "addl/v overflow")
	}
	c.Regs.SetInt(int(inst.Rc), uint64(int64(int32(sum))))
	return nil
}

func opSubl(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), uint64(int64(int32(a-b))))
	return nil
}

func opSublV(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	diff := int64(int32(a)) - int64(int32(b))
	if diff > 0x7fffffff || diff < -0x80000000 {
		return newTrap(VectorArithmetic, c.Regs.PC, "subl/v overflow")
	}
	c.Regs.SetInt(int(inst.Rc), uint64(int64(int32(diff))))
	return nil
}

func opCmpeq(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), boolToUint64(a == b))
	return nil
}

func opCmpbge(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	var r uint64
	for i := 0; i < 8; i++ {
		ab := byte(a >> (8 * i))
		bb := byte(b >> (8 * i))
		if ab >= bb {
			r |= 1 << i
		}
	}
	c.Regs.SetInt(int(inst.Rc), r)
	return nil
}

func opAnd(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), a&b)
	return nil
}

func opBic(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), a&^b)
	return nil
}

func opBis(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), a|b)
	return nil
}

func opOrnot(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), a|^b)
	return nil
}

func opXor(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), a^b)
	return nil
}

func opEqv(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), ^(a ^ b))
	return nil
}

func opSll(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), a<<(b&0x3f))
	return nil
}

func opSrl(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), a>>(b&0x3f))
	return nil
}

func opSra(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), uint64(int64(a)>>(b&0x3f)))
	return nil
}

func opZap(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	r := a
	for i := 0; i < 8; i++ {
		if b&(1<<i) != 0 {
			r &^= uint64(0xff) << (8 * i)
		}
	}
	c.Regs.SetInt(int(inst.Rc), r)
	return nil
}

func opZapnot(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	r := a
	for i := 0; i < 8; i++ {
		if b&(1<<i) == 0 {
			r &^= uint64(0xff) << (8 * i)
		}
	}
	c.Regs.SetInt(int(inst.Rc), r)
	return nil
}

func opMull(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	r := int32(a) * int32(b)
	c.Regs.SetInt(int(inst.Rc), uint64(int64(r)))
	return nil
}

func opMulq(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), a*b)
	return nil
}

func opSextb(c *Core, inst decode.Instruction) error {
	_, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), uint64(int64(int8(b))))
	return nil
}

func opSextw(c *Core, inst decode.Instruction) error {
	_, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), uint64(int64(int16(b))))
	return nil
}

func opCtpop(c *Core, inst decode.Instruction) error {
	_, b := operands(c, inst)
	n := 0
	for b != 0 {
		n += int(b & 1)
		b >>= 1
	}
	c.Regs.SetInt(int(inst.Rc), uint64(n))
	return nil
}

func opCtlz(c *Core, inst decode.Instruction) error {
	_, b := operands(c, inst)
	n := 0
	for i := 63; i >= 0; i-- {
		if b&(1<<uint(i)) != 0 {
			break
		}
		n++
	}
	c.Regs.SetInt(int(inst.Rc), uint64(n))
	return nil
}

func opCttz(c *Core, inst decode.Instruction) error {
	_, b := operands(c, inst)
	n := 0
	if b == 0 {
		n = 64
	} else {
		for b&1 == 0 {
			n++
			b >>= 1
		}
	}
	c.Regs.SetInt(int(inst.Rc), uint64(n))
	return nil
}

func opAddq(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), a+b)
	return nil
}

func opSubq(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), a-b)
	return nil
}

// opAddqV and opSubqV detect signed 64-bit overflow with the standard
// bitwise trick: on addition, overflow occurs exactly when both
// operands share a sign that differs from the result's.
func opAddqV(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	sum := a + b
	if (a^sum)&(b^sum)&(1<<63) != 0 {
		return newTrap(VectorArithmetic, c.Regs.PC, "addq/v overflow")
	}
	c.Regs.SetInt(int(inst.Rc), sum)
	return nil
}

func opSubqV(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	diff := a - b
	if (a^b)&(a^diff)&(1<<63) != 0 {
		return newTrap(VectorArithmetic, c.Regs.PC, "subq/v overflow")
	}
	c.Regs.SetInt(int(inst.Rc), diff)
	return nil
}

func opS4subl(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), uint64(int64(int32(a*4-b))))
	return nil
}

func opS4addq(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), a*4+b)
	return nil
}

func opS4subq(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), a*4-b)
	return nil
}

func opS8addl(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), uint64(int64(int32(a*8+b))))
	return nil
}

func opS8subl(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), uint64(int64(int32(a*8-b))))
	return nil
}

func opS8addq(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), a*8+b)
	return nil
}

func opS8subq(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), a*8-b)
	return nil
}

func opCmplt(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), boolToUint64(int64(a) < int64(b)))
	return nil
}

func opCmple(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), boolToUint64(int64(a) <= int64(b)))
	return nil
}

func opCmpult(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), boolToUint64(a < b))
	return nil
}

func opCmpule(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), boolToUint64(a <= b))
	return nil
}

// opUmulh computes the high 64 bits of the full 128-bit unsigned
// product of Ra and Rb.
func opUmulh(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	hi, _ := bits.Mul64(a, b)
	c.Regs.SetInt(int(inst.Rc), hi)
	return nil
}

// condMove writes b into Rc only when cond holds; unlike every other
// Operate handler it leaves Rc untouched otherwise, matching Alpha
// CMOVxx's conditional-write semantics.
func condMove(c *Core, inst decode.Instruction, cond bool) error {
	_, b := operands(c, inst)
	if cond {
		c.Regs.SetInt(int(inst.Rc), b)
	}
	return nil
}

func opCmovlbs(c *Core, inst decode.Instruction) error {
	a, _ := operands(c, inst)
	return condMove(c, inst, a&1 == 1)
}

func opCmovlbc(c *Core, inst decode.Instruction) error {
	a, _ := operands(c, inst)
	return condMove(c, inst, a&1 == 0)
}

func opCmoveq(c *Core, inst decode.Instruction) error {
	a, _ := operands(c, inst)
	return condMove(c, inst, a == 0)
}

func opCmovne(c *Core, inst decode.Instruction) error {
	a, _ := operands(c, inst)
	return condMove(c, inst, a != 0)
}

func opCmovlt(c *Core, inst decode.Instruction) error {
	a, _ := operands(c, inst)
	return condMove(c, inst, int64(a) < 0)
}

func opCmovge(c *Core, inst decode.Instruction) error {
	a, _ := operands(c, inst)
	return condMove(c, inst, int64(a) >= 0)
}

func opCmovle(c *Core, inst decode.Instruction) error {
	a, _ := operands(c, inst)
	return condMove(c, inst, int64(a) <= 0)
}

func opCmovgt(c *Core, inst decode.Instruction) error {
	a, _ := operands(c, inst)
	return condMove(c, inst, int64(a) > 0)
}

// sizeMask returns a mask covering the low size bytes.
func sizeMask(size int) uint64 {
	if size >= 8 {
		return ^uint64(0)
	}
	return (uint64(1) << (8 * uint(size))) - 1
}

// extractLow implements the EXTxL family: the size-byte field of a
// starting at byteOffset bytes in from the low end, zero-extended.
func extractLow(a uint64, byteOffset uint, size int) uint64 {
	return (a >> (8 * byteOffset)) & sizeMask(size)
}

// extractHigh implements the EXTxH family: the portion of a size-byte
// field that spilled past the top of the quadword (the low bytes of a),
// shifted up to sit just above the bytes the matching EXTxL extracts.
// Used together with the matching EXTxL for a field that
// straddles an alignment boundary; byteOffset 0 means nothing spilled.
func extractHigh(a uint64, byteOffset uint, size int) uint64 {
	if byteOffset == 0 {
		return 0
	}
	return (a << (64 - 8*byteOffset)) & sizeMask(size)
}

func opExtbl(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), extractLow(a, uint(b&7), 1))
	return nil
}

func opExtwl(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), extractLow(a, uint(b&7), 2))
	return nil
}

func opExtll(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), extractLow(a, uint(b&7), 4))
	return nil
}

func opExtql(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), extractLow(a, uint(b&7), 8))
	return nil
}

func opExtwh(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), extractHigh(a, uint(b&7), 2))
	return nil
}

func opExtlh(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), extractHigh(a, uint(b&7), 4))
	return nil
}

func opExtqh(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	c.Regs.SetInt(int(inst.Rc), extractHigh(a, uint(b&7), 8))
	return nil
}

// opMinsb8 and opMaxub8 are per-byte-lane SIMD min/max across the 8
// bytes of Ra and Rb (spec section 4.3 multimedia extension).
func opMinsb8(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	var r uint64
	for i := uint(0); i < 8; i++ {
		av := int8(a >> (8 * i))
		bv := int8(b >> (8 * i))
		m := av
		if bv < m {
			m = bv
		}
		r |= uint64(byte(m)) << (8 * i)
	}
	c.Regs.SetInt(int(inst.Rc), r)
	return nil
}

func opMaxub8(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	var r uint64
	for i := uint(0); i < 8; i++ {
		av := byte(a >> (8 * i))
		bv := byte(b >> (8 * i))
		m := av
		if bv > m {
			m = bv
		}
		r |= uint64(m) << (8 * i)
	}
	c.Regs.SetInt(int(inst.Rc), r)
	return nil
}

// opPerr sums the unsigned per-byte absolute differences of Ra and Rb,
// the pixel-error reduction the video/MPEG motion-estimation idiom
// this instruction targets needs.
func opPerr(c *Core, inst decode.Instruction) error {
	a, b := operands(c, inst)
	var sum uint64
	for i := uint(0); i < 8; i++ {
		av := int(byte(a >> (8 * i)))
		bv := int(byte(b >> (8 * i)))
		d := av - bv
		if d < 0 {
			d = -d
		}
		sum += uint64(d)
	}
	c.Regs.SetInt(int(inst.Rc), sum)
	return nil
}

// opPkwb packs the low byte of each of Rb's four 16-bit lanes into the
// low four bytes of Rc, zeroing the high four.
func opPkwb(c *Core, inst decode.Instruction) error {
	_, b := operands(c, inst)
	var r uint64
	for i := uint(0); i < 4; i++ {
		lane := byte(b >> (16 * i))
		r |= uint64(lane) << (8 * i)
	}
	c.Regs.SetInt(int(inst.Rc), r)
	return nil
}

// opUnpkbl is PKWB's inverse: it spreads Rb's low four bytes into the
// low byte of each of Rc's four 16-bit lanes, zero-extended.
func opUnpkbl(c *Core, inst decode.Instruction) error {
	_, b := operands(c, inst)
	var r uint64
	for i := uint(0); i < 4; i++ {
		lane := byte(b >> (8 * i))
		r |= uint64(lane) << (16 * i)
	}
	c.Regs.SetInt(int(inst.Rc), r)
	return nil
}
