/*
 * AXP-CORE - CALL_PAL dispatch.
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
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/decode"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/pal"
)

// opCallPal implements CALL_PAL (spec section 4.6): every function
// code except Rti enters through the same PAL entry sequence traps use
// (internal/cpu/step.go), saving PC/PS and vectoring to the function's
// PAL-relative entry point before the function body itself runs. Rti is
// the matching exit and must not re-enter.
func opCallPal(c *Core, inst decode.Instruction) error {
	if inst.PALFunc != pal.FuncRti {
		c.enterPALCall(pal.EntryOffset(inst.PALFunc))
	}
	outcome, err := c.PAL.Dispatch(inst.PALFunc)
	if err != nil {
		return newTrap(VectorOpcodeReserved, c.Regs.PC, err.Error())
	}
	if outcome.Halted {
		c.halted.Store(true)
	}
	return nil
}
