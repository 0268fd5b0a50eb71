/*
 * AXP-CORE - Multi-core SMP manager test cases.
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

package smp

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/tlb"
)

// countingWalker satisfies tlb.Walker with an identity mapping and
// counts every walk, so a shootdown test can observe a re-walk after
// invalidation.
type countingWalker struct {
	calls int
}

func (w *countingWalker) WalkPTE(ptbr uint64, vpn uint64) (tlb.PTE, error) {
	w.calls++
	return tlb.PTE{PFN: vpn, Valid: true, KRE: true, URE: true, KWE: true, UWE: true, Writable: true}, nil
}

func TestNewRejectsZeroCores(t *testing.T) {
	if _, err := New(0, 1<<20, nil); err == nil {
		t.Fatal("expected an error constructing a system with zero cores")
	}
}

func TestNewBuildsRequestedCoreCount(t *testing.T) {
	m, err := New(4, 1<<20, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.CPUCount() != 4 {
		t.Errorf("CPUCount = %d, want 4", m.CPUCount())
	}
	if len(m.Controllers()) != 4 {
		t.Errorf("len(Controllers) = %d, want 4", len(m.Controllers()))
	}
}

func TestCoreOutOfRangeErrors(t *testing.T) {
	m, _ := New(1, 1<<20, nil)
	if _, err := m.Core(5); err == nil {
		t.Fatal("expected an error for an out-of-range core index")
	}
}

func TestStatusStartsHalted(t *testing.T) {
	m, _ := New(1, 1<<20, nil)
	st, err := m.Status(0)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st != StatusHalted {
		t.Errorf("initial status = %v, want StatusHalted", st)
	}
}

func TestStatusOutOfRangeErrors(t *testing.T) {
	m, _ := New(1, 1<<20, nil)
	if _, err := m.Status(9); err == nil {
		t.Fatal("expected an error for an out-of-range status query")
	}
}

func TestStartMarksCoresRunningThenStopHaltsThem(t *testing.T) {
	m, _ := New(2, 1<<20, nil)

	m.Start()
	st, _ := m.Status(0)
	if st != StatusRunning {
		t.Errorf("status after Start = %v, want StatusRunning", st)
	}

	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
	st, _ = m.Status(0)
	if st != StatusHalted {
		t.Errorf("status after Stop = %v, want StatusHalted", st)
	}
}

func TestSignalIPIRoutesToTargetController(t *testing.T) {
	m, _ := New(2, 1<<20, nil)
	if err := m.SignalIPI(1, 9); err != nil {
		t.Fatalf("SignalIPI: %v", err)
	}
	if m.Controllers()[1].Pending()&(1<<9) == 0 {
		t.Error("expected vector 9 pending on controller 1")
	}
	if m.Controllers()[0].Pending() != 0 {
		t.Error("expected controller 0 to be unaffected")
	}
}

func TestSignalIPIOutOfRangeErrors(t *testing.T) {
	m, _ := New(1, 1<<20, nil)
	if err := m.SignalIPI(4, 1); err == nil {
		t.Fatal("expected an error for an out-of-range IPI target")
	}
}

func TestBarrierReleasesAllParticipants(t *testing.T) {
	const n = 5
	b := NewBarrier(n)
	var releasedAfter atomic.Int32
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			b.Wait()
			releasedAfter.Add(1)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("barrier did not release all participants")
	}
	if releasedAfter.Load() != n {
		t.Errorf("released = %d, want %d", releasedAfter.Load(), n)
	}
}

func TestTLBShootdownVAForcesRewalkOnTargetEntry(t *testing.T) {
	m, _ := New(2, 1<<20, nil)
	core, _ := m.Core(0)
	w := &countingWalker{}
	core.TLB = tlb.New(w)

	const va = uint64(0x4000)
	if _, _, err := core.TLB.Translate(0, 1, va, false); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if _, _, err := core.TLB.Translate(0, 1, va, false); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if w.calls != 1 {
		t.Fatalf("walks = %d, want 1 before shootdown", w.calls)
	}

	m.TLBShootdown(ShootdownVA, 1, va)

	if _, _, err := core.TLB.Translate(0, 1, va, false); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if w.calls != 2 {
		t.Errorf("walks = %d, want 2 after a VA shootdown", w.calls)
	}
}

func TestTLBShootdownAllAppliesToEveryCore(t *testing.T) {
	m, _ := New(2, 1<<20, nil)
	core0, _ := m.Core(0)
	core1, _ := m.Core(1)
	w0, w1 := &countingWalker{}, &countingWalker{}
	core0.TLB = tlb.New(w0)
	core1.TLB = tlb.New(w1)

	const va = uint64(0x8000)
	core0.TLB.Translate(0, 0, va, false)
	core1.TLB.Translate(0, 0, va, false)

	m.TLBShootdown(ShootdownAll, 0, va)

	core0.TLB.Translate(0, 0, va, false)
	core1.TLB.Translate(0, 0, va, false)
	if w0.calls != 2 || w1.calls != 2 {
		t.Errorf("walks = (%d, %d), want (2, 2) after an all-core shootdown", w0.calls, w1.calls)
	}
}

func TestResetClearsRegistersAndLeavesCoreHalted(t *testing.T) {
	m, _ := New(1, 1<<20, nil)
	core, _ := m.Core(0)
	core.Regs.SetInt(7, 0x1234)

	m.Reset()
	if core.Regs.GetInt(7) != 0 {
		t.Error("expected Reset to clear register state")
	}
	st, _ := m.Status(0)
	if st != StatusHalted {
		t.Errorf("status after Reset = %v, want StatusHalted", st)
	}
}
