/*
 * AXP-CORE - Jump-format (opcode 0x1A) instruction handlers.
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

// opJmpFamily implements opcode 0x1A: JMP, JSR, RET and JSR_COROUTINE.
// All four have the identical architectural effect (Ra gets the return
// address, PC jumps to Rb's value with its low two bits cleared); the
// two-bit function field at bits 15:14 only hints the branch predictor
// about the call/return shape, which this model does not implement
// (spec section 4.6).
func opJmpFamily(c *Core, inst decode.Instruction) error {
	target := c.Regs.GetInt(int(inst.Rb)) &^ 0x3
	c.Regs.SetInt(int(inst.Ra), c.Regs.PC+4)
	c.Regs.SetPC(target)
	return nil
}
