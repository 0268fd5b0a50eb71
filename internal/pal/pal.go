/*
 * AXP-CORE - PALcode interpreter.
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

// Package pal interprets CALL_PAL function codes (spec section 4.8):
// exception entry/exit, privileged register access, and the small set
// of PALcode-resident system calls this implementation treats as
// native Go rather than loading real DEC PALcode microcode. Each
// function is a bound method keyed by PAL function code, the same
// table-of-methods idiom the teacher uses for its B2/system opcode
// family (emu/cpu/cpu_system.go).
package pal

import (
	"fmt"

	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/axpregs"
)

// Function codes for the PALcode subset this implementation supports.
const (
	FuncHalt       uint32 = 0x0000
	FuncDraina     uint32 = 0x0002
	FuncRdUnique   uint32 = 0x009e
	FuncWrUnique   uint32 = 0x009f
	FuncWrVptptr   uint32 = 0x0006
	FuncSwpctx     uint32 = 0x0030
	FuncWrkgp      uint32 = 0x0037
	FuncWrUsp      uint32 = 0x003a
	FuncRdUsp      uint32 = 0x003b
	FuncWhami      uint32 = 0x003c
	FuncRti        uint32 = 0x003d
	FuncCallsys    uint32 = 0x0083
	FuncMachineChk uint32 = 0x0060
)

// palFixedVector gives the privileged PALcode subset (real Alpha's
// 0x00-0x3f function-code range) a fixed PAL-relative entry offset
// rather than the PAL_BASE + (function<<6) formula the standard
// 0x40-0xbf range uses (spec section 4.6). Offsets are spaced 0x100
// apart, well clear of each other and of the formulaic range's lowest
// entry (0x40<<6 = 0x1000).
var palFixedVector = map[uint32]uint64{
	FuncHalt:     0x0000,
	FuncDraina:   0x0100,
	FuncWrVptptr: 0x0200,
	FuncSwpctx:   0x0300,
	FuncWrkgp:    0x0400,
	FuncWrUsp:    0x0500,
	FuncRdUsp:    0x0600,
	FuncWhami:    0x0700,
	FuncRti:      0x0800,
}

// EntryOffset returns fn's PAL-relative entry offset: a fixed vector
// for the privileged subset, or PAL_BASE + (fn<<6) for the standard
// range, matching real Alpha PALcode layout.
func EntryOffset(fn uint32) uint64 {
	if off, ok := palFixedVector[fn]; ok {
		return off
	}
	return uint64(fn) << 6
}

// Outcome tells the caller (internal/cpu) what to do after a PAL call:
// continue, or halt the core with a reason.
type Outcome struct {
	Halted bool
	Reason string
}

// Context is the minimal per-core state the PAL interpreter touches:
// the register file, an identifying core index for WHAMI, and the
// unique-value scratch register PALcode conventionally uses for
// thread-local storage.
type Context struct {
	Regs      *axpregs.File
	CPUIndex  int
	Unique    uint64
	kgp, usp  uint64
}

// NewContext returns a PAL execution context bound to regs.
func NewContext(regs *axpregs.File, cpuIndex int) *Context {
	return &Context{Regs: regs, CPUIndex: cpuIndex}
}

// Dispatch executes one CALL_PAL function code and reports the
// outcome. An unrecognized function code is reported as an error
// rather than silently ignored, since a PALcode gap is a correctness
// bug, not a runtime condition to tolerate.
func (c *Context) Dispatch(fn uint32) (Outcome, error) {
	switch fn {
	case FuncHalt:
		return Outcome{Halted: true, Reason: "HALT instruction"}, nil
	case FuncDraina:
		return Outcome{}, nil // nothing to drain in this model.
	case FuncRdUnique:
		c.Regs.SetInt(0, c.Unique)
		return Outcome{}, nil
	case FuncWrUnique:
		c.Unique = c.Regs.GetInt(16)
		return Outcome{}, nil
	case FuncWrVptptr:
		c.Regs.SetIPR(axpregs.IPRVPTB, c.Regs.GetInt(16))
		return Outcome{}, nil
	case FuncSwpctx:
		return c.swpctx()
	case FuncWrkgp:
		c.kgp = c.Regs.GetInt(16)
		return Outcome{}, nil
	case FuncWrUsp:
		c.usp = c.Regs.GetInt(16)
		return Outcome{}, nil
	case FuncRdUsp:
		c.Regs.SetInt(0, c.usp)
		return Outcome{}, nil
	case FuncWhami:
		c.Regs.SetInt(0, uint64(c.CPUIndex))
		return Outcome{}, nil
	case FuncRti:
		return c.rti()
	case FuncCallsys:
		return Outcome{}, nil // system call entry: handled by the OS image, not modeled here.
	case FuncMachineChk:
		return Outcome{Halted: true, Reason: "machine check"}, nil
	default:
		return Outcome{}, fmt.Errorf("pal: unimplemented function code %#x", fn)
	}
}

// swpctx swaps the active process context by writing a new PTBR/ASN
// pair from the PCB pointed to by r16, mirroring Swpctx's role of
// switching page tables on a context switch (spec section 4.4).
func (c *Context) swpctx() (Outcome, error) {
	pcb := c.Regs.GetInt(16)
	// A real implementation would read the PCB fields out of memory;
	// this model takes the new PTBR/ASN directly from r17/r18 so the
	// caller can drive a context switch without modeling PCB layout.
	_ = pcb
	c.Regs.SetIPR(axpregs.IPRPTBR, c.Regs.GetInt(17))
	c.Regs.SetIPR(axpregs.IPRASN, c.Regs.GetInt(18))
	return Outcome{}, nil
}

// rti returns from interrupt/exception/CALL_PAL, restoring both PC and
// PS from the entry-sequence IPRs (spec section 4.8) - not just the
// PAL-mode bit, so the interrupted context's mode, IPL and
// interrupt-enable state come back exactly as they were.
func (c *Context) rti() (Outcome, error) {
	c.Regs.SetPC(c.Regs.GetIPR(axpregs.IPRExcAddr))
	c.Regs.PS = c.Regs.GetIPR(axpregs.IPRSavedPS)
	return Outcome{}, nil
}
