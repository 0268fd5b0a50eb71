/*
 * AXP-CORE - Per-core execution context and fetch/dispatch loop.
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

// Package cpu is one core: its register file, TLB, cache hierarchy,
// reservation tracker and interrupt controller, wired together by
// non-owning handles per the Design Notes, plus the two-level
// dispatch table (primary opcode, then function code) that the
// teacher's createTable/execute pair is generalized from
// (emu/cpu/cpu.go).
package cpu

import (
	"sync"
	"sync/atomic"

	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/axpregs"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/cache"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/decode"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/irq"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/llsc"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/memmap"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/pal"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/tlb"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/trace"
)

// handlerFunc executes one decoded instruction on a core.
type handlerFunc func(c *Core, inst decode.Instruction) error

// Core is one CPU's complete execution context. All cross-core
// collaborators (memory, bus IRQ routing) are handed in by reference
// at construction; a Core never reaches back into the internal/smp manager
// that owns it.
type Core struct {
	Index int

	Regs  *axpregs.File
	Cache *cache.Hierarchy
	TLB   *tlb.TLB
	LLSC  *llsc.Tracker
	IRQ   *irq.Controller
	PAL   *pal.Context
	Sink  trace.Sink

	table     [256]handlerFunc
	operate   map[uint8]map[uint8]operateFunc
	fpOperate map[uint8]map[uint16]fpOperateFunc

	mu      sync.Mutex
	running atomic.Bool
	halted  atomic.Bool
	done    chan struct{}
}

// operateFunc and fpOperateFunc are the function-code-level handlers
// beneath the Operate and FPOperate primary-format entries.
type operateFunc func(c *Core, inst decode.Instruction) error
type fpOperateFunc func(c *Core, inst decode.Instruction) error

// walkerAdapter is the page-table walker over internal/memmap's
// physical memory, handed to the TLB as a tlb.Walker so the tlb
// package does not import memmap.
type walkerAdapter struct {
	mem *memmap.Physical
}

// WalkPTE implements tlb.Walker with a three-level Alpha page table
// walk: PTBR points to level-1, each level's index is 10 bits of the
// VPN, each entry is 8 bytes with bit 0 the valid bit and bits
// [63:32] the PFN (spec section 4.4).
func (w walkerAdapter) WalkPTE(ptbr uint64, vpn uint64) (tlb.PTE, error) {
	const (
		pteSize   = 8
		indexBits = 10
		indexMask = (1 << indexBits) - 1
	)

	l1 := (vpn >> 20) & indexMask
	l2 := (vpn >> 10) & indexMask
	l3 := vpn & indexMask

	level, err := w.mem.ReadPhysical(ptbr+l1*pteSize, pteSize)
	if err != nil {
		return tlb.PTE{}, err
	}
	if level&1 == 0 {
		return tlb.PTE{}, newTrap(VectorMemoryFault, 0, "level-1 PTE not valid")
	}
	table2 := (level >> 32) << 13

	level, err = w.mem.ReadPhysical(table2+l2*pteSize, pteSize)
	if err != nil {
		return tlb.PTE{}, err
	}
	if level&1 == 0 {
		return tlb.PTE{}, newTrap(VectorMemoryFault, 0, "level-2 PTE not valid")
	}
	table3 := (level >> 32) << 13

	pte, err := w.mem.ReadPhysical(table3+l3*pteSize, pteSize)
	if err != nil {
		return tlb.PTE{}, err
	}
	if pte&1 == 0 {
		return tlb.PTE{}, newTrap(VectorMemoryFault, 0, "level-3 PTE not valid")
	}

	return tlb.PTE{
		PFN:      pte >> 32,
		Valid:    true,
		KRE:      pte&(1<<8) != 0,
		URE:      pte&(1<<9) != 0,
		KWE:      pte&(1<<12) != 0,
		UWE:      pte&(1<<13) != 0,
		Writable: pte&(1<<12) != 0 || pte&(1<<13) != 0,
	}, nil
}

// NewWalker returns a tlb.Walker over the given physical memory.
func NewWalker(mem *memmap.Physical) tlb.Walker {
	return walkerAdapter{mem: mem}
}

// New returns an initialized core. mem is used only to build the page
// table walker the TLB calls on a miss; all data accesses go through
// cacheHier.
func New(index int, mem *memmap.Physical, cacheHier *cache.Hierarchy, ctrl *irq.Controller, sink trace.Sink) *Core {
	regs := &axpregs.File{}
	c := &Core{
		Index: index,
		Regs:  regs,
		Cache: cacheHier,
		TLB:   tlb.New(NewWalker(mem)),
		LLSC:  llsc.NewTracker(),
		IRQ:   ctrl,
		PAL:   pal.NewContext(regs, index),
		Sink:  sink,
		done:  make(chan struct{}),
	}
	regs.SetIPR(axpregs.IPRPALBase, palEntryBase)
	cacheHier.AttachLLSC(c.LLSC)
	c.createTable()
	return c
}

// Reset restores power-up state: zeroed registers and PC, kernel mode,
// PALcode active (spec section 5).
func (c *Core) Reset() {
	c.Regs.Reset()
	c.Regs.SetMode(axpregs.ModeKernel)
	c.Regs.SetPALMode(true)
	c.Regs.SetIPR(axpregs.IPRPALBase, palEntryBase)
	c.TLB.InvalidateAll()
	c.LLSC.Clear()
	c.halted.Store(false)
}

// Halted reports whether the core has executed a HALT PALcall.
func (c *Core) Halted() bool {
	return c.halted.Load()
}

// Prepare readies the core for a new Run call, replacing its done
// channel if a prior Stop closed it. The internal/smp manager calls this
// before launching each core's goroutine on Start/Resume.
func (c *Core) Prepare() {
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.done:
		c.done = make(chan struct{})
	default:
	}
}
