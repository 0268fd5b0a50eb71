/*
 * AXP-CORE - Per-core execution context and fetch/dispatch loop test cases.
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
	"testing"
	"time"

	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/axpregs"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/cache"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/decode"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/irq"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/memmap"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/pal"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/tlb"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/trace"
)

// identityWalker maps every virtual page to the physical page of the
// same number, so tests can drive Step() without modeling a real page
// table in memory.
type identityWalker struct{}

func (identityWalker) WalkPTE(ptbr uint64, vpn uint64) (tlb.PTE, error) {
	return tlb.PTE{PFN: vpn, Valid: true, KRE: true, URE: true, KWE: true, UWE: true, Writable: true}, nil
}

// newTestCore builds a Core with real memory and cache wiring but an
// identity-mapped TLB, so instruction words and data can be placed at
// virtual == physical addresses.
func newTestCore(t *testing.T) (*Core, *memmap.Physical) {
	t.Helper()
	mem := memmap.NewPhysical(1 << 20)
	shared := cache.NewShared(mem)
	hier := cache.NewHierarchy(shared)
	ctrl := irq.NewController()
	c := New(0, mem, hier, ctrl, trace.NullSink{})
	c.TLB = tlb.New(identityWalker{})
	c.Regs.SetPALMode(false)
	c.Regs.SetInterruptsEnabled(true)
	return c, mem
}

func storeWord(t *testing.T, mem *memmap.Physical, addr uint64, inst decode.Instruction) {
	t.Helper()
	word := decode.Encode(inst)
	if err := mem.WritePhysical(addr, uint64(word), 4); err != nil {
		t.Fatalf("WritePhysical: %v", err)
	}
}

func TestStepExecutesOperateInstruction(t *testing.T) {
	c, mem := newTestCore(t)
	c.Regs.SetInt(1, 10)
	c.Regs.SetInt(2, 5)
	storeWord(t, mem, 0, decode.Instruction{
		Fmt: decode.FormatOperate, Opcode: 0x10, Function: 0x00, Ra: 1, Rb: 2, Rc: 3,
	})

	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := c.Regs.GetInt(3); got != 15 {
		t.Errorf("r3 = %d, want 15", got)
	}
	if c.Regs.PC != 4 {
		t.Errorf("PC = %d, want 4", c.Regs.PC)
	}
}

func TestStepExecutesBranchAndSetsPC(t *testing.T) {
	c, mem := newTestCore(t)
	c.Regs.SetInt(1, 0) // BEQ condition register, r1 == 0 so the branch is taken.
	storeWord(t, mem, 0, decode.Instruction{
		Fmt: decode.FormatBranch, Opcode: 0x39, Ra: 1, BDisp: 2, Target: 0 + 4 + 2*4,
	})

	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.Regs.PC != 12 {
		t.Errorf("PC = %d, want 12", c.Regs.PC)
	}
}

func TestStepLoadThenStoreRoundTrip(t *testing.T) {
	c, mem := newTestCore(t)
	// lda r1, 0x2000(r31): r31 always reads zero, so r1 = 0x2000.
	storeWord(t, mem, 0, decode.Instruction{Fmt: decode.FormatMemory, Opcode: 0x08, Ra: 1, Rb: 31, Disp: 0x2000})
	// stq r1, 0(r1): writes 0x2000 to the address it just computed.
	storeWord(t, mem, 4, decode.Instruction{Fmt: decode.FormatMemory, Opcode: 0x2d, Ra: 1, Rb: 1, Disp: 0})
	// ldq r2, 0(r1): reads it back.
	storeWord(t, mem, 8, decode.Instruction{Fmt: decode.FormatMemory, Opcode: 0x29, Ra: 2, Rb: 1, Disp: 0})

	for i := 0; i < 3; i++ {
		if err := c.Step(); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}
	if got := c.Regs.GetInt(2); got != 0x2000 {
		t.Errorf("r2 = %#x, want 0x2000", got)
	}
}

func TestStepReservedOpcodeTrapsInsteadOfFaulting(t *testing.T) {
	c, mem := newTestCore(t)
	storeWord(t, mem, 0, decode.Instruction{Fmt: decode.FormatOperate, Opcode: 0x10, Function: 0x7f, Ra: 1, Rb: 2, Rc: 3})

	if err := c.Step(); err != nil {
		t.Fatalf("Step returned an error for an architectural trap: %v", err)
	}
	if c.Regs.PC != palEntryBase+VectorOpcodeReserved {
		t.Errorf("PC = %#x, want PAL entry for VectorOpcodeReserved", c.Regs.PC)
	}
	if !c.Regs.InPALMode() {
		t.Error("expected PAL mode entered on a reserved-opcode trap")
	}
}

func TestStepUnalignedAccessTraps(t *testing.T) {
	c, mem := newTestCore(t)
	c.Regs.SetInt(1, 1) // odd address, misaligned for a quadword load.
	storeWord(t, mem, 0, decode.Instruction{Fmt: decode.FormatMemory, Opcode: 0x29, Ra: 2, Rb: 1, Disp: 0})

	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.Regs.PC != palEntryBase+VectorUnaligned {
		t.Errorf("PC = %#x, want PAL entry for VectorUnaligned", c.Regs.PC)
	}
}

func TestStepCallPalHaltStopsTheCore(t *testing.T) {
	c, mem := newTestCore(t)
	storeWord(t, mem, 0, decode.Instruction{Fmt: decode.FormatPAL, PALFunc: pal.FuncHalt})

	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !c.Halted() {
		t.Error("expected the core to be halted after CALL_PAL HALT")
	}

	// A halted core no longer advances the PC on Step.
	pc := c.Regs.PC
	if err := c.Step(); err != nil {
		t.Fatalf("Step on halted core: %v", err)
	}
	if c.Regs.PC != pc {
		t.Errorf("PC advanced on a halted core: %#x -> %#x", pc, c.Regs.PC)
	}
}

func TestStepCallPalEntersPalModeAtFixedVector(t *testing.T) {
	c, mem := newTestCore(t)
	storeWord(t, mem, 0, decode.Instruction{Fmt: decode.FormatPAL, PALFunc: pal.FuncDraina})

	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if want := palEntryBase + pal.EntryOffset(pal.FuncDraina); c.Regs.PC != want {
		t.Errorf("PC = %#x, want %#x", c.Regs.PC, want)
	}
	if !c.Regs.InPALMode() {
		t.Error("expected PAL mode entered by CALL_PAL")
	}
	if c.Regs.Mode() != axpregs.ModeKernel {
		t.Error("expected kernel mode entered by CALL_PAL")
	}
	if c.Regs.GetIPR(axpregs.IPRExcAddr) != 4 {
		t.Errorf("saved PC = %#x, want 4 (instruction after CALL_PAL)", c.Regs.GetIPR(axpregs.IPRExcAddr))
	}
}

func TestStepCallPalThenRtiResumesCaller(t *testing.T) {
	c, mem := newTestCore(t)
	c.Regs.SetInterruptsEnabled(true)
	storeWord(t, mem, 0, decode.Instruction{Fmt: decode.FormatPAL, PALFunc: pal.FuncDraina})
	storeWord(t, mem, 4, decode.Instruction{Fmt: decode.FormatPAL, PALFunc: pal.FuncRti})

	if err := c.Step(); err != nil {
		t.Fatalf("Step CALL_PAL: %v", err)
	}
	if !c.Regs.InPALMode() {
		t.Fatal("expected PAL mode after CALL_PAL")
	}

	c.Regs.SetPC(c.Regs.PC) // already at the PAL entry vector; fetch the Rti CALL_PAL placed there.
	storeWord(t, mem, c.Regs.PC, decode.Instruction{Fmt: decode.FormatPAL, PALFunc: pal.FuncRti})
	if err := c.Step(); err != nil {
		t.Fatalf("Step Rti: %v", err)
	}
	if c.Regs.PC != 4 {
		t.Errorf("PC = %#x, want 4 (resumed after the CALL_PAL)", c.Regs.PC)
	}
	if c.Regs.InPALMode() {
		t.Error("expected PAL mode cleared by Rti restoring the caller's PS")
	}
	if !c.Regs.InterruptsEnabled() {
		t.Error("expected Rti to restore the caller's interrupt-enable state")
	}
}

func TestStepDeliversPendingInterruptAtBoundary(t *testing.T) {
	c, mem := newTestCore(t)
	storeWord(t, mem, 0, decode.Instruction{Fmt: decode.FormatOperate, Opcode: 0x10, Function: 0x00, Ra: 31, Rb: 31, Rc: 1})
	c.IRQ.Signal(3)

	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	wantVector := VectorInterrupt + 3*8
	if c.Regs.PC != palEntryBase+wantVector {
		t.Errorf("PC = %#x, want PAL entry for interrupt vector %#x", c.Regs.PC, wantVector)
	}
	if c.IRQ.Pending()&(1<<3) != 0 {
		t.Error("expected the delivered interrupt to be cleared from pending")
	}
}

func TestResetRestoresPowerUpState(t *testing.T) {
	c, _ := newTestCore(t)
	c.Regs.SetInt(5, 0xdead)
	c.Reset()

	if c.Regs.GetInt(5) != 0 {
		t.Error("expected Reset to zero the register file")
	}
	if !c.Regs.InPALMode() {
		t.Error("expected Reset to enter PAL mode")
	}
	if c.Halted() {
		t.Error("expected Reset to clear the halted flag")
	}
}

func TestRunStopsOnStopSignal(t *testing.T) {
	c, _ := newTestCore(t)
	c.halted.Store(true) // idle the fetch loop so Run just waits on done/Wake.

	var wg sync.WaitGroup
	wg.Add(1)
	go c.Run(&wg, nil)

	c.Stop()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestStqcFailsAfterRemoteCoreWritesReservedLine(t *testing.T) {
	mem := memmap.NewPhysical(1 << 20)
	shared := cache.NewShared(mem)

	hier0 := cache.NewHierarchy(shared)
	core0 := New(0, mem, hier0, irq.NewController(), trace.NullSink{})
	core0.TLB = tlb.New(identityWalker{})

	hier1 := cache.NewHierarchy(shared)
	core1 := New(1, mem, hier1, irq.NewController(), trace.NullSink{})
	core1.TLB = tlb.New(identityWalker{})
	_ = core1

	core0.Regs.SetInt(2, 0x2000)
	// Both instructions are stored before the first fetch: storeWord
	// writes RAM directly, so a word stored after the line is in L1I
	// would not be seen.
	storeWord(t, mem, 0, decode.Instruction{Fmt: decode.FormatMemory, Opcode: 0x2b, Ra: 1, Rb: 2, Disp: 0})
	storeWord(t, mem, 4, decode.Instruction{Fmt: decode.FormatMemory, Opcode: 0x2f, Ra: 3, Rb: 2, Disp: 0})
	if err := core0.Step(); err != nil {
		t.Fatalf("core0 LDQ_L: %v", err)
	}

	if err := hier1.WriteByte(0x2000, 0xff); err != nil {
		t.Fatalf("core1 WriteByte: %v", err)
	}

	core0.Regs.SetInt(3, 0x1234)
	if err := core0.Step(); err != nil {
		t.Fatalf("core0 STQ_C: %v", err)
	}
	if got := core0.Regs.GetInt(3); got != 0 {
		t.Errorf("r3 after failed STQ_C = %#x, want 0 (remote write must invalidate the reservation)", got)
	}
}

func TestPrepareReplacesClosedDoneChannel(t *testing.T) {
	c, _ := newTestCore(t)
	c.Stop()
	select {
	case <-c.done:
	default:
		t.Fatal("expected done to be closed after Stop")
	}

	c.Prepare()
	select {
	case <-c.done:
		t.Fatal("expected Prepare to install a fresh, open done channel")
	default:
	}
}
