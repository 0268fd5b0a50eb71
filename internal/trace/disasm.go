/*
 * AXP-CORE - Disassembler.
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

package trace

import (
	"fmt"

	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/decode"
)

// mnemonic tables are keyed by (opcode, function) the same way
// internal/cpu's dispatch tables are, covering the representative
// instruction set this implementation executes; an unmapped pair
// falls back to a generic "opcode.function" rendering rather than
// failing the trace.
var operateMnemonics = map[uint8]map[uint8]string{
	0x10: {0x00: "addl", 0x02: "s4addl", 0x09: "subl", 0x0b: "s4subl", 0x40: "addl/v", 0x49: "subl/v", 0x0f: "cmpbge"},
	0x11: {0x00: "and", 0x08: "bic", 0x14: "cmoveq", 0x16: "cmovne", 0x20: "bis", 0x24: "cmovlbc", 0x26: "cmovlbs", 0x28: "ornot", 0x40: "xor", 0x48: "eqv"},
	0x12: {0x02: "mskbl", 0x06: "extbl", 0x0b: "insbl", 0x30: "zap", 0x31: "zapnot", 0x39: "sll", 0x34: "srl", 0x3c: "sra"},
	0x13: {0x00: "mull", 0x20: "mulq", 0x30: "umulh", 0x40: "mull/v", 0x60: "mulq/v"},
	0x1c: {0x00: "sextb", 0x01: "sextw", 0x30: "ctpop", 0x31: "perr", 0x32: "ctlz", 0x33: "cttz"},
}

var memoryMnemonics = map[uint8]string{
	0x08: "lda", 0x09: "ldah", 0x0a: "ldbu", 0x0c: "ldwu", 0x0d: "stw", 0x0e: "stb",
	0x0b: "ldq_u", 0x0f: "stq_u",
	0x20: "ldf", 0x21: "ldg", 0x22: "lds", 0x23: "ldt",
	0x24: "stf", 0x25: "stg", 0x26: "sts", 0x27: "stt",
	0x28: "ldl", 0x29: "ldq", 0x2a: "ldl_l", 0x2b: "ldq_l",
	0x2c: "stl", 0x2d: "stq", 0x2e: "stl_c", 0x2f: "stq_c",
}

var branchMnemonics = map[uint8]string{
	0x30: "br", 0x31: "fbeq", 0x32: "fblt", 0x33: "fble", 0x34: "bsr",
	0x35: "fbne", 0x36: "fbge", 0x37: "fbgt",
	0x38: "blbc", 0x39: "beq", 0x3a: "blt", 0x3b: "ble",
	0x3c: "blbs", 0x3d: "bne", 0x3e: "bge", 0x3f: "bgt",
}

var fpMnemonics = map[uint8]map[uint16]string{
	0x16: {0x080: "adds", 0x0a0: "subs", 0x0c0: "muls", 0x0e0: "divs", 0x080 + 0x400: "addt", 0x0a0 + 0x400: "subt", 0x0c0 + 0x400: "mult", 0x0e0 + 0x400: "divt", 0x0bc: "cvtqs", 0x0be: "cvtqt"},
	0x17: {0x020: "cvtlq", 0x030: "cvtql"},
}

// Disassemble renders a decoded instruction as an Alpha mnemonic plus
// its register/immediate operands. It is best-effort: instructions
// outside the representative set render as a bare opcode/function pair.
func Disassemble(inst decode.Instruction) string {
	switch inst.Fmt {
	case decode.FormatPAL:
		return fmt.Sprintf("call_pal %#x", inst.PALFunc)

	case decode.FormatBranch:
		name, ok := branchMnemonics[inst.Opcode]
		if !ok {
			name = fmt.Sprintf("br.%#x", inst.Opcode)
		}
		return fmt.Sprintf("%s r%d, %#x", name, inst.Ra, inst.Target)

	case decode.FormatOperate:
		name := lookupOperate(inst.Opcode, inst.Function)
		if inst.Literal {
			return fmt.Sprintf("%s r%d, #%d, r%d", name, inst.Ra, inst.Lit, inst.Rc)
		}
		return fmt.Sprintf("%s r%d, r%d, r%d", name, inst.Ra, inst.Rb, inst.Rc)

	case decode.FormatFPOperate:
		name := lookupFP(inst.Opcode, inst.FPFunction)
		return fmt.Sprintf("%s f%d, f%d, f%d", name, inst.Fa, inst.Fb, inst.Fc)

	default: // FormatMemory
		name, ok := memoryMnemonics[inst.Opcode]
		if !ok {
			name = fmt.Sprintf("mem.%#x", inst.Opcode)
		}
		return fmt.Sprintf("%s r%d, %d(r%d)", name, inst.Ra, inst.Disp, inst.Rb)
	}
}

func lookupOperate(opcode, fn uint8) string {
	if tbl, ok := operateMnemonics[opcode]; ok {
		if name, ok := tbl[fn]; ok {
			return name
		}
	}
	return fmt.Sprintf("op.%#x.%#x", opcode, fn)
}

func lookupFP(opcode uint8, fn uint16) string {
	if tbl, ok := fpMnemonics[opcode]; ok {
		if name, ok := tbl[fn]; ok {
			return name
		}
	}
	return fmt.Sprintf("fop.%#x.%#x", opcode, fn)
}
