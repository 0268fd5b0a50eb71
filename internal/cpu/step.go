/*
 * AXP-CORE - Fetch/execute loop and interrupt/exception entry.
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
	"sync"
	"time"

	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/axpregs"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/decode"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/trace"
)

// palEntryBase is where this implementation's resident PALcode begins;
// an exception or interrupt sets PC to palEntryBase+vector, matching
// the spec's PALcode-dispatches-on-vector model without loading a real
// PALcode image.
const palEntryBase = 0x8000

// Step fetches, decodes and executes exactly one instruction, taking
// a trap or pending interrupt if one applies at the instruction
// boundary. It returns a non-nil error only for an InternalError; an
// architectural Trap is handled internally by transferring control to
// the trap vector, matching the "exception-driven control flow, never
// host exceptions" design constraint.
func (c *Core) Step() error {
	if c.halted.Load() {
		return nil
	}

	pc := c.Regs.PC
	word, err := c.fetchWord(pc)
	if err != nil {
		return c.handleFault(err)
	}

	inst := decode.Decode(word, pc)
	c.Sink.OnInstructionExecuted(trace.InstructionExecuted{
		CPU: c.Index, PC: pc, Raw: word, Mnemonic: trace.Disassemble(inst),
	})

	if err := c.table[inst.Opcode](c, inst); err != nil {
		return c.handleFault(err)
	}

	if c.Regs.PC == pc {
		c.Regs.SetPC(pc + 4)
	}

	c.checkInterrupt()
	return nil
}

// handleFault routes a Trap into the exception-entry sequence and an
// InternalError up to the caller, since an InternalError is never
// guest-visible.
func (c *Core) handleFault(err error) error {
	if t, ok := err.(*Trap); ok {
		c.enterException(t.Vector)
		c.Sink.OnCPUTrap(trace.CPUTrap{CPU: c.Index, Vector: t.Vector, PC: t.PC})
		return nil
	}
	return err
}

// palEntrySequence is the microarchitectural entry sequence shared by
// traps, interrupts and CALL_PAL (spec section 4.6/4.8): save the
// return PC and the full PS, clear the reservation (spec section 3:
// any trap or PAL entry clears a pending LL/SC reservation), inhibit
// interrupts, enter kernel mode and PAL mode, and transfer control to
// targetPC. Only what is saved as the return address and how targetPC
// is computed differs between the callers.
func (c *Core) palEntrySequence(savedPC, targetPC uint64) {
	c.Regs.SetIPR(axpregs.IPRExcAddr, savedPC)
	c.Regs.SetIPR(axpregs.IPRSavedPS, c.Regs.PS)
	c.LLSC.Clear()
	c.Regs.SetInterruptsEnabled(false)
	c.Regs.SetMode(axpregs.ModeKernel)
	c.Regs.SetPALMode(true)
	c.Regs.SetPC(targetPC)
}

// enterException performs trap/interrupt entry: the faulting PC itself
// is the return address, and the target is this implementation's
// resident-PALcode vector table.
func (c *Core) enterException(vector uint64) {
	c.palEntrySequence(c.Regs.PC, palEntryBase+vector)
}

// enterPALCall performs CALL_PAL entry (spec section 4.6): the return
// address is the instruction after the CALL_PAL, and the target is
// PAL_BASE plus offset, per pal.EntryOffset's fixed-vector/formulaic
// split.
func (c *Core) enterPALCall(offset uint64) {
	c.palEntrySequence(c.Regs.PC+4, c.Regs.GetIPR(axpregs.IPRPALBase)+offset)
}

// checkInterrupt takes the highest-priority pending interrupt not
// masked by the current IPL, if interrupts are enabled (spec section
// 4.9: interrupt delivery is checked at instruction boundaries only).
func (c *Core) checkInterrupt() {
	if !c.Regs.InterruptsEnabled() {
		return
	}
	vector, ok := c.IRQ.HighestPending(c.Regs.IPL())
	if !ok {
		return
	}
	c.IRQ.Clear(vector)
	c.enterException(VectorInterrupt + uint64(vector)*8)
	c.Sink.OnCPUTrap(trace.CPUTrap{CPU: c.Index, Vector: VectorInterrupt + uint64(vector)*8, PC: c.Regs.PC})
}

// Run drives the core's fetch/execute loop on its own goroutine until
// Stop is called or the core halts itself (a HALT PALcall), matching
// the teacher's per-core goroutine with a done channel and WaitGroup
// (emu/core/core.go).
func (c *Core) Run(wg *sync.WaitGroup, onFault func(error)) {
	defer wg.Done()
	c.running.Store(true)
	defer c.running.Store(false)

	for {
		select {
		case <-c.done:
			return
		default:
		}

		if c.halted.Load() {
			select {
			case <-c.done:
				return
			case <-c.IRQ.Wake():
				continue
			case <-time.After(50 * time.Millisecond):
				continue
			}
		}

		if err := c.Step(); err != nil {
			if onFault != nil {
				onFault(err)
			}
			return
		}
	}
}

// Stop signals Run to return; it does not wait for the goroutine to
// exit, callers use the WaitGroup passed to Run for that.
func (c *Core) Stop() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}

// Running reports whether the core's Run goroutine is currently active.
func (c *Core) Running() bool {
	return c.running.Load()
}
