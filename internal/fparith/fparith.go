/*
 * AXP-CORE - Floating point format conversions and exception bookkeeping.
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

// Package fparith implements the IEEE S/T and VAX F/G/D floating-point
// formats Alpha supports simultaneously. Both families are modeled as
// opaque 64-bit bit patterns with explicit conversion routines; host
// implicit conversions are never used for VAX formats since their bias
// and layout differ from IEEE doubles.
package fparith

import (
	"math"
	"math/big"
)

// Exceptions is a bitmask of IEEE-signalable conditions, matching the
// FPCR trap-enable/sticky bit order from axpregs (invalid, div-by-zero,
// overflow, underflow, inexact).
type Exceptions uint8

const (
	ExcInvalid Exceptions = 1 << iota
	ExcDivZero
	ExcOverflow
	ExcUnderflow
	ExcInexact
)

// Syndrome assembles the EXC_SUM word for a compound FP exception.
// Open Question (b) from spec section 9: the source never assembles
// this in one place. Decision recorded in DESIGN.md: one bit per IEEE
// condition in the low 5 bits, plus a 3-bit operand tag in bits 5-7.
func Syndrome(exc Exceptions, operandTag uint8) uint64 {
	return uint64(exc) | (uint64(operandTag&0x7) << 5)
}

// Round is the rounding mode in effect for one FP operation, resolved
// from the instruction's Round field and, for dynamic rounding, FPCR.
type Round uint8

const (
	RoundChopped Round = iota
	RoundMinusInf
	RoundNearestEven
	RoundPlusInf
)

// ResolveRound maps a decoded 2-bit round field plus the FPCR dynamic
// mode (used when the field selects "dynamic") to a concrete Round.
func ResolveRound(field uint8, fpcrDynamic uint8) Round {
	if field == 3 {
		return Round(fpcrDynamic)
	}
	return Round(field)
}

// bigRoundingMode maps an Alpha rounding mode onto the matching
// math/big.RoundingMode so a single operation can be rounded under
// chopped/minus-inf/nearest-even/plus-inf without depending on
// platform FPU control words, which Go does not expose. This realizes
// the "save host mode, install requested mode, operate, restore"
// sequence from spec section 4.4.
func bigRoundingMode(mode Round) big.RoundingMode {
	switch mode {
	case RoundChopped:
		return big.ToZero
	case RoundMinusInf:
		return big.ToNegativeInf
	case RoundPlusInf:
		return big.ToPositiveInf
	default:
		return big.ToNearestEven
	}
}

// Op applies a binary IEEE operation under the given rounding mode and
// reports which exceptions fired. The arithmetic itself runs at double
// precision (Go has no wider exact intermediate for doubles); the
// rounding mode governs only how that double is reduced back to 53
// bits of mantissa, via big.Float's native rounding-mode support.
func Op(mode Round, a, b float64, f func(float64, float64) float64) (float64, Exceptions) {
	raw := f(a, b)

	var exc Exceptions
	switch {
	case math.IsNaN(raw):
		exc |= ExcInvalid
		return raw, exc
	case math.IsInf(raw, 0) && !math.IsInf(a, 0) && !math.IsInf(b, 0):
		exc |= ExcOverflow
	}
	if b == 0 && math.IsInf(raw, 0) {
		exc |= ExcDivZero
	}

	bf := new(big.Float).SetPrec(53)
	bf.SetMode(bigRoundingMode(mode))
	bf.SetFloat64(raw)
	result, _ := bf.Float64()

	if result != 0 && math.Abs(result) < math.SmallestNonzeroFloat64*(1<<52) {
		exc |= ExcUnderflow
	}
	if result != raw {
		exc |= ExcInexact
	}
	return result, exc
}

// --- IEEE S (single) conversions -------------------------------------------------

// IEEESToFloat64 widens an Alpha IEEE S (32-bit single) bit pattern,
// stored in the low 32 bits of a 64-bit FP register per the S_floating
// memory format, to a host double.
func IEEESToFloat64(bits uint64) float64 {
	return float64(math.Float32frombits(uint32(bits)))
}

// Float64ToIEEES narrows a host double to an Alpha IEEE S bit pattern.
func Float64ToIEEES(v float64) uint64 {
	return uint64(math.Float32bits(float32(v)))
}

// IEEETToFloat64 reinterprets an Alpha IEEE T (64-bit double) bit
// pattern; T_floating layout is bit-identical to IEEE 754 binary64.
func IEEETToFloat64(bits uint64) float64 {
	return math.Float64frombits(bits)
}

// Float64ToIEEET is the inverse of IEEETToFloat64.
func Float64ToIEEET(v float64) uint64 {
	return math.Float64bits(v)
}

// --- VAX F/G/D conversions --------------------------------------------------------
//
// VAX floating formats use a different exponent bias than IEEE (128 for
// F/D, 1024 for G) and, on real VAX/Alpha hardware, store their 16-bit
// "words" byte-swapped relative to a natural layout. This package works
// against the already-reassembled logical bit pattern (sign at bit
// fracBits+expBits, exponent next, fraction in the low bits) and leaves
// the word-swap entirely to the memory load/store path in internal/cpu,
// so the bias/layout math below stays in one place per format. None of
// this is allowed to go through a host double's native bit layout, per
// spec section 4.4.

type vaxLayout struct {
	bias     int
	fracBits int
}

var (
	vaxF = vaxLayout{bias: 128, fracBits: 23}
	vaxG = vaxLayout{bias: 1024, fracBits: 52}
	vaxD = vaxLayout{bias: 128, fracBits: 55}
)

func vaxToFloat64(bits uint64, l vaxLayout) float64 {
	fracMask := uint64(1)<<uint(l.fracBits) - 1
	expBits := uint(8)
	if l.bias == 1024 {
		expBits = 11
	}
	expMask := uint64(1)<<expBits - 1

	sign := (bits >> (uint(l.fracBits) + expBits)) & 1
	exp := (bits >> uint(l.fracBits)) & expMask
	frac := bits & fracMask

	if exp == 0 {
		return 0
	}
	mant := 1.0 + float64(frac)/float64(uint64(1)<<uint(l.fracBits))
	val := mant * exp2(int(exp)-l.bias)
	if sign != 0 {
		val = -val
	}
	return val
}

func float64ToVax(v float64, l vaxLayout) uint64 {
	if v == 0 {
		return 0
	}
	expBits := uint(8)
	if l.bias == 1024 {
		expBits = 11
	}
	sign := uint64(0)
	if v < 0 {
		sign = 1
		v = -v
	}
	mant, exp := math.Frexp(v) // mant in [0.5,1), v = mant * 2^exp
	mant *= 2
	exp--
	biased := uint64(exp + l.bias)
	frac := uint64((mant - 1.0) * float64(uint64(1)<<uint(l.fracBits)))
	return (sign << (uint(l.fracBits) + expBits)) | (biased << uint(l.fracBits)) | frac
}

// VAXFToFloat64 converts a VAX F_floating (32-bit, 8-bit exponent
// biased by 128, 23-bit fraction) bit pattern to a host double. A zero
// exponent is treated as exactly zero; true VAX reserved-operand traps
// are not modeled.
func VAXFToFloat64(bits uint32) float64 { return vaxToFloat64(uint64(bits), vaxF) }

// Float64ToVAXF converts a host double into a VAX F_floating pattern.
func Float64ToVAXF(v float64) uint32 { return uint32(float64ToVax(v, vaxF)) }

// VAXGToFloat64 converts a VAX G_floating (64-bit, 11-bit exponent
// biased by 1024, 52-bit fraction) bit pattern to a host double.
func VAXGToFloat64(bits uint64) float64 { return vaxToFloat64(bits, vaxG) }

// Float64ToVAXG converts a host double into a VAX G_floating pattern.
func Float64ToVAXG(v float64) uint64 { return float64ToVax(v, vaxG) }

// VAXDToFloat64 converts a VAX D_floating (64-bit, same exponent as F
// but extended to a 55-bit fraction) bit pattern to a host double.
func VAXDToFloat64(bits uint64) float64 { return vaxToFloat64(bits, vaxD) }

// Float64ToVAXD converts a host double into a VAX D_floating pattern.
func Float64ToVAXD(v float64) uint64 { return float64ToVax(v, vaxD) }

func exp2(e int) float64 {
	return math.Ldexp(1.0, e)
}

// CanonicalCompareResult returns the 64-bit Fc pattern Alpha CMPTxx
// instructions must produce so that a later FBEQ/FBNE reading the raw
// bit pattern sees the right answer: exactly 0x4000000000000000 for
// "true", exactly 0 for "false".
func CanonicalCompareResult(true_ bool) uint64 {
	if true_ {
		return 0x4000000000000000
	}
	return 0
}
