/*
 * AXP-CORE - Misc-format (opcode 0x18) memory-barrier handlers.
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

import "github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/decode"

// Opcode 0x18 function codes. The field occupies the full 16 bits at
// the same position as the Memory format's displacement, so it is read
// from the raw instruction word rather than decode.Instruction.Disp
// (which is sign-extended and unsuitable here).
const (
	miscTrapb uint16 = 0x0000
	miscExcb  uint16 = 0x0400
	miscMb    uint16 = 0x4000
	miscWmb   uint16 = 0x4400
)

// opMiscBarrier implements TRAPB, EXCB, MB and WMB (spec section 4.5).
// TRAPB/EXCB drain in-flight traps/exceptions before later instructions
// can be affected by them; since this model executes every instruction
// to completion before fetching the next, there is nothing in flight to
// drain and both are no-ops here. MB and WMB order this core's memory
// accesses against every other core's by fencing on the shared cache
// directory's lock, through which all coherency traffic already
// serializes.
func opMiscBarrier(c *Core, inst decode.Instruction) error {
	switch uint16(inst.Raw & 0xffff) {
	case miscTrapb, miscExcb:
		return nil
	case miscMb, miscWmb:
		if err := c.Cache.Fence(); err != nil {
			return &InternalError{Detail: err.Error()}
		}
		return nil
	default:
		return newTrap(VectorOpcodeReserved, c.Regs.PC, "reserved misc function")
	}
}
