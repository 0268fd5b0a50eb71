/*
 * AXP-CORE - Multi-core SMP manager.
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

// Package smp owns the whole set of cores and the shared services they
// point to (memory, cache L3, event scheduler): one goroutine per
// core, a master done channel plus WaitGroup shutdown matching the
// teacher's per-core goroutine lifecycle (emu/core/core.go), and the
// cross-core coordination the spec assigns to no single core: barrier
// synchronization, IPI delivery, and TLB shootdown broadcast (spec
// section 5).
package smp

import (
	"fmt"
	"sync"

	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/cache"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/cpu"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/irq"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/memmap"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/schedule"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/trace"
)

// Status is a core's externally-visible run state (spec section 6).
type Status int

const (
	StatusHalted Status = iota
	StatusRunning
	StatusStepping
)

// Manager owns every core plus the shared physical memory, cache L3,
// and event scheduler. Cores are handed non-owning pointers to these
// at construction and never reach back through Manager, per the
// Design Notes.
type Manager struct {
	mu    sync.Mutex
	wg    sync.WaitGroup
	cores []*cpu.Core

	Mem       *memmap.Physical
	SharedL3  *cache.Shared
	Scheduler *schedule.Scheduler
	Sink      trace.Sink

	controllers []*irq.Controller
	statuses    []Status
}

// New allocates a system with n cores and the given physical memory
// size. Devices and bus wiring happen after construction via the
// caller's bus.Bus.
func New(n int, memSize uint64, sink trace.Sink) (*Manager, error) {
	if n < 1 {
		return nil, fmt.Errorf("smp: cpu_count must be at least 1, got %d", n)
	}
	if sink == nil {
		sink = trace.NullSink{}
	}

	mem := memmap.NewPhysical(memSize)
	shared := cache.NewShared(mem)
	sched := schedule.NewScheduler()

	m := &Manager{
		Mem:       mem,
		SharedL3:  shared,
		Scheduler: sched,
		Sink:      sink,
	}

	for i := 0; i < n; i++ {
		ctrl := irq.NewController()
		m.controllers = append(m.controllers, ctrl)
		hier := cache.NewHierarchy(shared)
		core := cpu.New(i, mem, hier, ctrl, sink)
		m.cores = append(m.cores, core)
		m.statuses = append(m.statuses, StatusHalted)
	}
	return m, nil
}

// Controllers exposes each core's IRQ controller so a bus.Bus can be
// constructed over them.
func (m *Manager) Controllers() []*irq.Controller {
	return m.controllers
}

// Core returns the core at the given index.
func (m *Manager) Core(i int) (*cpu.Core, error) {
	if i < 0 || i >= len(m.cores) {
		return nil, fmt.Errorf("smp: cpu index %d out of range", i)
	}
	return m.cores[i], nil
}

// CPUCount returns the number of cores.
func (m *Manager) CPUCount() int {
	return len(m.cores)
}

// Start launches every core's Run goroutine (spec section 6, Start).
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.cores {
		c.Prepare()
		m.wg.Add(1)
		idx := i
		go c.Run(&m.wg, func(err error) {
			m.mu.Lock()
			m.statuses[idx] = StatusHalted
			m.mu.Unlock()
		})
		m.statuses[i] = StatusRunning
		m.Sink.OnStatusChanged(trace.StatusChanged{CPU: i, Status: "Running"})
	}
}

// Stop halts every core's goroutine and waits for them to exit (spec
// section 6, Stop).
func (m *Manager) Stop() {
	m.mu.Lock()
	for _, c := range m.cores {
		c.Stop()
	}
	m.mu.Unlock()
	m.wg.Wait()
	m.mu.Lock()
	for i := range m.statuses {
		m.statuses[i] = StatusHalted
	}
	m.mu.Unlock()
}

// Pause is Stop with cores left resumable: the same goroutine teardown
// as Stop, since this implementation has no mid-instruction
// suspension point, but the manager itself remains live for Resume.
func (m *Manager) Pause() {
	m.Stop()
}

// Resume restarts every core's Run goroutine from where its register
// state left off.
func (m *Manager) Resume() {
	m.Start()
}

// Reset restores every core and the shared memory subsystem to
// power-up state. Callers must Stop first; Reset does not implicitly
// halt running cores (spec section 5's requirement that configuration
// changes happen only while paused applies here too).
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.cores {
		c.Reset()
		m.statuses[i] = StatusHalted
	}
}

// Status reports a core's externally-visible run state.
func (m *Manager) Status(i int) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.statuses) {
		return StatusHalted, fmt.Errorf("smp: cpu index %d out of range", i)
	}
	return m.statuses[i], nil
}

// SignalIPI posts an inter-processor interrupt vector to a target
// core's controller (spec section 4.9/4.10).
func (m *Manager) SignalIPI(target int, vector uint8) error {
	if target < 0 || target >= len(m.controllers) {
		return fmt.Errorf("smp: ipi target %d out of range", target)
	}
	m.controllers[target].Signal(vector)
	return nil
}

// Barrier blocks the calling goroutine until count distinct callers
// have reached it, implementing the cross-core rendezvous point the
// spec's SMP coordination section assigns to no single core (spec
// section 5). Each call site that needs a fresh barrier constructs a
// new Barrier; it is single-use.
type Barrier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	count   int
	arrived int
}

// NewBarrier returns a barrier that releases once count goroutines
// have called Wait.
func NewBarrier(count int) *Barrier {
	b := &Barrier{count: count}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until every participant has called Wait.
func (b *Barrier) Wait() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.arrived++
	if b.arrived >= b.count {
		b.cond.Broadcast()
		return
	}
	for b.arrived < b.count {
		b.cond.Wait()
	}
}

// ShootdownScope identifies which TLB invalidation a TLBShootdown call
// performs, mirroring the four scopes named in spec section 4.4/4.9.
type ShootdownScope int

const (
	ShootdownVA ShootdownScope = iota
	ShootdownASN
	ShootdownAll
	ShootdownIStream
)

// TLBShootdown invalidates translations on every core (or, for
// ShootdownVA/ShootdownASN, every core's TLB for the given ASN/VA),
// the cross-core broadcast the spec assigns to the SMP manager rather
// than to any one core's TLB.
func (m *Manager) TLBShootdown(scope ShootdownScope, asn uint16, va uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.cores {
		switch scope {
		case ShootdownVA:
			c.TLB.Invalidate(asn, va)
		case ShootdownASN:
			c.TLB.InvalidateASN(asn)
		case ShootdownAll:
			c.TLB.InvalidateAll()
		case ShootdownIStream:
			c.TLB.InvalidateAllI()
		}
	}
}
