/*
 * AXP-CORE - PALcode interpreter test cases.
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

package pal

import (
	"testing"

	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/axpregs"
)

func TestHaltReportsOutcome(t *testing.T) {
	var regs axpregs.File
	ctx := NewContext(&regs, 0)

	out, err := ctx.Dispatch(FuncHalt)
	if err != nil {
		t.Fatalf("Dispatch(Halt): %v", err)
	}
	if !out.Halted {
		t.Error("expected FuncHalt to report Halted=true")
	}
}

func TestMachineCheckHalts(t *testing.T) {
	var regs axpregs.File
	ctx := NewContext(&regs, 0)

	out, err := ctx.Dispatch(FuncMachineChk)
	if err != nil {
		t.Fatalf("Dispatch(MachineChk): %v", err)
	}
	if !out.Halted || out.Reason == "" {
		t.Errorf("out = %+v, want Halted=true with a reason", out)
	}
}

func TestWhamiReturnsCoreIndex(t *testing.T) {
	var regs axpregs.File
	ctx := NewContext(&regs, 3)

	if _, err := ctx.Dispatch(FuncWhami); err != nil {
		t.Fatalf("Dispatch(Whami): %v", err)
	}
	if regs.GetInt(0) != 3 {
		t.Errorf("r0 = %d, want 3", regs.GetInt(0))
	}
}

func TestRdUniqueWrUniqueRoundTrip(t *testing.T) {
	var regs axpregs.File
	ctx := NewContext(&regs, 0)

	regs.SetInt(16, 0xfeedface)
	if _, err := ctx.Dispatch(FuncWrUnique); err != nil {
		t.Fatalf("Dispatch(WrUnique): %v", err)
	}
	if _, err := ctx.Dispatch(FuncRdUnique); err != nil {
		t.Fatalf("Dispatch(RdUnique): %v", err)
	}
	if regs.GetInt(0) != 0xfeedface {
		t.Errorf("r0 after RdUnique = %#x, want 0xfeedface", regs.GetInt(0))
	}
}

func TestWrUspRdUspRoundTrip(t *testing.T) {
	var regs axpregs.File
	ctx := NewContext(&regs, 0)

	regs.SetInt(16, 0x7000000)
	if _, err := ctx.Dispatch(FuncWrUsp); err != nil {
		t.Fatalf("Dispatch(WrUsp): %v", err)
	}
	if _, err := ctx.Dispatch(FuncRdUsp); err != nil {
		t.Fatalf("Dispatch(RdUsp): %v", err)
	}
	if regs.GetInt(0) != 0x7000000 {
		t.Errorf("r0 after RdUsp = %#x, want 0x7000000", regs.GetInt(0))
	}
}

func TestSwpctxUpdatesPTBRAndASN(t *testing.T) {
	var regs axpregs.File
	ctx := NewContext(&regs, 0)

	regs.SetInt(17, 0x40000)
	regs.SetInt(18, 7)
	if _, err := ctx.Dispatch(FuncSwpctx); err != nil {
		t.Fatalf("Dispatch(Swpctx): %v", err)
	}
	if regs.GetIPR(axpregs.IPRPTBR) != 0x40000 {
		t.Errorf("PTBR = %#x, want 0x40000", regs.GetIPR(axpregs.IPRPTBR))
	}
	if regs.GetIPR(axpregs.IPRASN) != 7 {
		t.Errorf("ASN = %d, want 7", regs.GetIPR(axpregs.IPRASN))
	}
}

func TestRtiRestoresPCAndFullPS(t *testing.T) {
	var regs axpregs.File
	ctx := NewContext(&regs, 0)

	regs.SetIPR(axpregs.IPRExcAddr, 0x30000)
	// The saved PS is the caller's: user mode, interrupts enabled, a
	// nonzero IPL, PAL mode off - distinct in every field from the
	// kernel/PAL-mode/interrupts-disabled state Rti is called from.
	var savedPS axpregs.File
	savedPS.SetMode(axpregs.ModeUser)
	savedPS.SetIPL(4)
	savedPS.SetInterruptsEnabled(true)
	regs.SetIPR(axpregs.IPRSavedPS, savedPS.PS)

	regs.SetMode(axpregs.ModeKernel)
	regs.SetInterruptsEnabled(false)
	regs.SetPALMode(true)

	if _, err := ctx.Dispatch(FuncRti); err != nil {
		t.Fatalf("Dispatch(Rti): %v", err)
	}
	if regs.PC != 0x30000 {
		t.Errorf("PC = %#x, want 0x30000", regs.PC)
	}
	if regs.InPALMode() {
		t.Error("expected PAL mode cleared after Rti")
	}
	if regs.Mode() != axpregs.ModeUser {
		t.Errorf("Mode() = %v, want ModeUser", regs.Mode())
	}
	if regs.IPL() != 4 {
		t.Errorf("IPL() = %d, want 4", regs.IPL())
	}
	if !regs.InterruptsEnabled() {
		t.Error("expected interrupts re-enabled by the restored PS")
	}
}

func TestWrVptptrSetsIPR(t *testing.T) {
	var regs axpregs.File
	ctx := NewContext(&regs, 0)
	regs.SetInt(16, 0x123456)

	if _, err := ctx.Dispatch(FuncWrVptptr); err != nil {
		t.Fatalf("Dispatch(WrVptptr): %v", err)
	}
	if regs.GetIPR(axpregs.IPRVPTB) != 0x123456 {
		t.Errorf("VPTB = %#x, want 0x123456", regs.GetIPR(axpregs.IPRVPTB))
	}
}

func TestCallsysIsANoOp(t *testing.T) {
	var regs axpregs.File
	ctx := NewContext(&regs, 0)
	out, err := ctx.Dispatch(FuncCallsys)
	if err != nil {
		t.Fatalf("Dispatch(Callsys): %v", err)
	}
	if out.Halted {
		t.Error("Callsys should not halt the core")
	}
}

func TestDispatchUnknownFunctionCodeErrors(t *testing.T) {
	var regs axpregs.File
	ctx := NewContext(&regs, 0)
	if _, err := ctx.Dispatch(0xdead); err == nil {
		t.Fatal("expected an error for an unimplemented PAL function code")
	}
}
