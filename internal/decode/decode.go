/*
 * AXP-CORE - Instruction decoder.
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

// Package decode partitions a 32-bit Alpha instruction word into its
// format fields. Decode is a pure function with no side effects; it
// does not classify the instruction, it only extracts fields. The
// dispatcher (internal/cpu) decides what the fields mean.
package decode

// Format identifies which of the five Alpha encodings a word uses.
type Format int

const (
	FormatMemory Format = iota
	FormatBranch
	FormatOperate
	FormatFPOperate
	FormatPAL
)

// Rounding mode extracted from an FP function code, bits 6-7.
type RoundMode uint8

const (
	RoundChopped RoundMode = iota
	RoundMinusInf
	RoundNearest
	RoundDynamicOrPlusInf
)

// Instruction is the decoded tagged union over all five formats. Only
// the fields relevant to Format are meaningful; the rest are zero.
type Instruction struct {
	Raw  uint32
	Addr uint64
	Fmt  Format

	Opcode uint8 // [31:26], all formats.

	// Memory format.
	Ra   uint8
	Rb   uint8
	Disp int16 // sign-extended 16 bits.

	// Branch format.
	BDisp  int32 // sign-extended 21 bits.
	Target uint64

	// Operate format.
	Literal    bool
	Lit        uint8 // 8-bit literal, valid when Literal is true.
	Function   uint8 // 7-bit function field.
	Rc         uint8

	// FP operate format.
	Fa, Fb, Fc uint8
	FPFunction uint16 // 11-bit function field.
	Round      RoundMode
	TrapMode   uint8 // raw bits 8-10 of the FP function, caller interprets.

	// PAL format.
	PALFunc uint32 // 26-bit PAL function code.
}

func signExtend16(v uint16) int16 {
	return int16(v)
}

func signExtend21(v uint32) int32 {
	v &= 0x1fffff
	if v&0x100000 != 0 {
		v |= ^uint32(0x1fffff)
	}
	return int32(v)
}

// primaryFormat classifies which of the five shapes a primary opcode's
// bit layout has, purely by position in the opcode space. This is
// layout classification, not semantic classification: the dispatcher
// still decides what the instruction DOES.
func primaryFormat(opcode uint8) Format {
	switch {
	case opcode == 0x00:
		return FormatPAL
	case opcode >= 0x30 && opcode <= 0x3f:
		return FormatBranch
	case opcode >= 0x10 && opcode <= 0x13:
		return FormatOperate
	case opcode == 0x1c:
		return FormatOperate
	case opcode >= 0x14 && opcode <= 0x17:
		return FormatFPOperate
	default:
		return FormatMemory
	}
}

// Decode extracts every field from a raw instruction word, fetched from
// address pc. It performs no validation of opcode legality; an
// unmapped (opcode, function) pair is a dispatcher-time concern.
func Decode(word uint32, pc uint64) Instruction {
	inst := Instruction{
		Raw:    word,
		Addr:   pc,
		Opcode: uint8(word >> 26),
	}
	inst.Fmt = primaryFormat(inst.Opcode)

	switch inst.Fmt {
	case FormatPAL:
		inst.PALFunc = word & 0x03ffffff

	case FormatBranch:
		inst.Ra = uint8((word >> 21) & 0x1f)
		inst.BDisp = signExtend21(word)
		inst.Target = pc + 4 + uint64(inst.BDisp<<2)

	case FormatOperate:
		inst.Ra = uint8((word >> 21) & 0x1f)
		inst.Rb = uint8((word >> 16) & 0x1f)
		inst.Literal = (word>>12)&1 != 0
		inst.Lit = uint8((word >> 13) & 0xff)
		inst.Function = uint8((word >> 5) & 0x7f)
		inst.Rc = uint8(word & 0x1f)

	case FormatFPOperate:
		inst.Fa = uint8((word >> 21) & 0x1f)
		inst.Fb = uint8((word >> 16) & 0x1f)
		inst.FPFunction = uint16((word >> 5) & 0x7ff)
		inst.Fc = uint8(word & 0x1f)
		inst.Round = RoundMode((inst.FPFunction >> 6) & 0x3)
		inst.TrapMode = uint8((inst.FPFunction >> 8) & 0x7)

	default: // FormatMemory
		inst.Ra = uint8((word >> 21) & 0x1f)
		inst.Rb = uint8((word >> 16) & 0x1f)
		inst.Disp = signExtend16(uint16(word & 0xffff))
	}

	return inst
}

// Encode reverses Decode for every format, used by the decode/re-encode
// round-trip property test in spec section 8. It reconstructs the raw
// word from the decoded fields rather than simply returning inst.Raw,
// so it actually exercises the field layout.
func Encode(inst Instruction) uint32 {
	word := uint32(inst.Opcode) << 26

	switch inst.Fmt {
	case FormatPAL:
		word |= inst.PALFunc & 0x03ffffff

	case FormatBranch:
		word |= uint32(inst.Ra&0x1f) << 21
		word |= uint32(inst.BDisp) & 0x1fffff

	case FormatOperate:
		word |= uint32(inst.Ra&0x1f) << 21
		word |= uint32(inst.Rb&0x1f) << 16
		if inst.Literal {
			word |= 1 << 12
			word |= uint32(inst.Lit) << 13
		}
		word |= uint32(inst.Function&0x7f) << 5
		word |= uint32(inst.Rc & 0x1f)

	case FormatFPOperate:
		word |= uint32(inst.Fa&0x1f) << 21
		word |= uint32(inst.Fb&0x1f) << 16
		word |= uint32(inst.FPFunction&0x7ff) << 5
		word |= uint32(inst.Fc & 0x1f)

	default: // FormatMemory
		word |= uint32(inst.Ra&0x1f) << 21
		word |= uint32(inst.Rb&0x1f) << 16
		word |= uint32(uint16(inst.Disp))
	}

	return word
}
