/*
 * AXP-CORE - Cache hierarchy and MESI coherency.
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

// Package cache implements the three-level cache hierarchy (spec
// section 4.5): private per-core L1I/L1D, a private per-core L2, and a
// shared L3 that enforces MESI coherency across cores. All coherency
// traffic funnels through the Shared.mu lock, mirroring the teacher's
// sys_channel discipline of a single RWMutex guarding shared device
// state rather than per-line locking.
package cache

import (
	"sync"

	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/llsc"
)

// State is a MESI cache line state.
type State int

const (
	Invalid State = iota
	SharedState
	Exclusive
	Modified
)

const (
	lineSize  = 64
	l1Lines   = 256
	l2Lines   = 2048
	l3Lines   = 16384
	lineShift = 6 // log2(lineSize)
)

func lineAddr(addr uint64) uint64 { return addr &^ (lineSize - 1) }

type line struct {
	tag   uint64
	state State
	data  [lineSize]byte
	valid bool
}

// privateLevel is one private (per-core) cache level: L1 or L2.
type privateLevel struct {
	lines []line
	next  int
}

func newPrivateLevel(n int) *privateLevel {
	return &privateLevel{lines: make([]line, n)}
}

func (p *privateLevel) lookup(addr uint64) (*line, bool) {
	tag := lineAddr(addr)
	for i := range p.lines {
		if p.lines[i].valid && p.lines[i].tag == tag {
			return &p.lines[i], true
		}
	}
	return nil, false
}

func (p *privateLevel) install(tag uint64, state State, data [lineSize]byte) *line {
	if l, ok := p.lookup(tag); ok {
		*l = line{tag: tag, state: state, data: data, valid: true}
		return l
	}
	l := &p.lines[p.next]
	*l = line{tag: tag, state: state, data: data, valid: true}
	p.next = (p.next + 1) % len(p.lines)
	return l
}

func (p *privateLevel) invalidate(addr uint64) {
	tag := lineAddr(addr)
	for i := range p.lines {
		if p.lines[i].valid && p.lines[i].tag == tag {
			p.lines[i].valid = false
		}
	}
}

// Backing is the memory system a miss at L3 falls through to; it is a
// non-owning handle supplied at construction, matching the Design
// Note's prohibition on cache<->memory back-references.
type Backing interface {
	ReadLine(addr uint64) ([lineSize]byte, error)
	WriteLine(addr uint64, data [lineSize]byte) error
}

// Shared is the single L3 instance behind every core's private
// L1I/L1D/L2, owning the MESI directory and issuing the invalidate/RFO
// broadcasts that keep private copies coherent.
type Shared struct {
	mu      sync.Mutex
	backing Backing
	lines   []line
	next    int
	// observers are the per-core Hierarchy instances, so a remote
	// core's Modified/Exclusive line can be invalidated when another
	// core requests ownership (spec section 4.5 coherency protocol).
	observers []*Hierarchy
}

// NewShared returns an L3 backed by the given memory system.
func NewShared(b Backing) *Shared {
	return &Shared{backing: b, lines: make([]line, l3Lines)}
}

func (s *Shared) register(h *Hierarchy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, h)
}

func (s *Shared) lookup(addr uint64) (*line, bool) {
	tag := lineAddr(addr)
	for i := range s.lines {
		if s.lines[i].valid && s.lines[i].tag == tag {
			return &s.lines[i], true
		}
	}
	return nil, false
}

func (s *Shared) install(tag uint64, state State, data [lineSize]byte) *line {
	if l, ok := s.lookup(tag); ok {
		*l = line{tag: tag, state: state, data: data, valid: true}
		return l
	}
	l := &s.lines[s.next]
	*l = line{tag: tag, state: state, data: data, valid: true}
	s.next = (s.next + 1) % len(s.lines)
	return l
}

// invalidateRemote asks every observer other than requester to drop its
// private copy of addr, writing back a Modified copy to the backing
// store first (the RFO path), and clears any other core's LL/SC
// reservation the write overlaps (spec section 4.5/4.9: a remote write
// to a reserved line must fail that core's next STx_C).
func (s *Shared) invalidateRemote(requester *Hierarchy, addr uint64) error {
	for _, h := range s.observers {
		if h == requester {
			continue
		}
		if err := h.evictLocal(addr, s.backing); err != nil {
			return err
		}
		if h.llsc != nil && h.llsc.Overlaps(lineAddr(addr), lineSize) {
			h.llsc.Clear()
		}
	}
	return nil
}

// Hierarchy is one core's private L1I/L1D/L2 stack plus a handle to the
// shared L3. Cores never talk to each other's Hierarchy directly; all
// cross-core effects go through Shared.
type Hierarchy struct {
	mu     sync.Mutex
	shared *Shared
	l1i    *privateLevel
	l1d    *privateLevel
	l2     *privateLevel
	llsc   *llsc.Tracker
}

// NewHierarchy returns a per-core cache stack registered against the
// given shared L3.
func NewHierarchy(shared *Shared) *Hierarchy {
	h := &Hierarchy{
		shared: shared,
		l1i:    newPrivateLevel(l1Lines),
		l1d:    newPrivateLevel(l1Lines),
		l2:     newPrivateLevel(l2Lines),
	}
	shared.register(h)
	return h
}

// AttachLLSC binds this core's reservation tracker so a remote write
// invalidating this hierarchy's lines also clears a reservation it
// overlaps. Called once at core construction (internal/cpu.New); a
// Hierarchy with no attached tracker simply skips the LL/SC step.
func (h *Hierarchy) AttachLLSC(t *llsc.Tracker) {
	h.llsc = t
}

// Fence performs the memory-barrier handshake for MB/WMB (spec section
// 4.5): it takes and releases the shared L3 lock, establishing a
// happens-before edge against every write in flight at the time of the
// call, since all coherency traffic serializes through Shared.mu.
func (h *Hierarchy) Fence() error {
	h.shared.mu.Lock()
	h.shared.mu.Unlock()
	return nil
}

func (h *Hierarchy) evictLocal(addr uint64, backing Backing) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, p := range []*privateLevel{h.l1i, h.l1d, h.l2} {
		if l, ok := p.lookup(addr); ok {
			if l.state == Modified {
				if err := backing.WriteLine(lineAddr(addr), l.data); err != nil {
					return err
				}
			}
			p.invalidate(addr)
		}
	}
	return nil
}

// ReadByte satisfies a data read through L1D, L2, then the shared L3,
// filling on a miss and marking the fetched line Shared.
func (h *Hierarchy) ReadByte(addr uint64) (byte, error) {
	data, err := h.readLine(h.l1d, addr)
	if err != nil {
		return 0, err
	}
	return data[addr%lineSize], nil
}

// ReadInstructionByte is ReadByte through the instruction-side L1I.
func (h *Hierarchy) ReadInstructionByte(addr uint64) (byte, error) {
	data, err := h.readLine(h.l1i, addr)
	if err != nil {
		return 0, err
	}
	return data[addr%lineSize], nil
}

func (h *Hierarchy) readLine(l1 *privateLevel, addr uint64) ([lineSize]byte, error) {
	h.mu.Lock()
	if l, ok := l1.lookup(addr); ok {
		data := l.data
		h.mu.Unlock()
		return data, nil
	}
	if l, ok := h.l2.lookup(addr); ok {
		data := l.data
		l1.install(lineAddr(addr), SharedState, data)
		h.mu.Unlock()
		return data, nil
	}
	h.mu.Unlock()

	h.shared.mu.Lock()
	defer h.shared.mu.Unlock()
	if l, ok := h.shared.lookup(addr); ok {
		data := l.data
		h.mu.Lock()
		l1.install(lineAddr(addr), SharedState, data)
		h.l2.install(lineAddr(addr), SharedState, data)
		h.mu.Unlock()
		return data, nil
	}
	data, err := h.shared.backing.ReadLine(lineAddr(addr))
	if err != nil {
		return [lineSize]byte{}, err
	}
	h.shared.install(lineAddr(addr), SharedState, data)
	h.mu.Lock()
	l1.install(lineAddr(addr), SharedState, data)
	h.l2.install(lineAddr(addr), SharedState, data)
	h.mu.Unlock()
	return data, nil
}

// WriteByte performs a coherent write: it requests exclusive ownership
// (invalidating every other core's copy of the line, writing back any
// Modified copy first), then updates the local L1D/L2/L3 copies to
// Modified.
func (h *Hierarchy) WriteByte(addr uint64, v byte) error {
	h.shared.mu.Lock()
	defer h.shared.mu.Unlock()

	if err := h.shared.invalidateRemote(h, addr); err != nil {
		return err
	}

	var data [lineSize]byte
	if l, ok := h.shared.lookup(addr); ok {
		data = l.data
	} else {
		var err error
		data, err = h.shared.backing.ReadLine(lineAddr(addr))
		if err != nil {
			return err
		}
	}
	data[addr%lineSize] = v

	h.shared.install(lineAddr(addr), Modified, data)
	h.mu.Lock()
	h.l1d.install(lineAddr(addr), Modified, data)
	h.l2.install(lineAddr(addr), Modified, data)
	h.mu.Unlock()
	return nil
}

// InvalidateInstructionLine drops addr's line from L1I only, used after
// a coherent write to code (self-modifying code, spec section 4.5).
func (h *Hierarchy) InvalidateInstructionLine(addr uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.l1i.invalidate(addr)
}

// Flush writes back every Modified line in this core's hierarchy to the
// backing store, used by save_state to ensure RAM reflects all cached
// writes before serialization (spec section 7).
func (h *Hierarchy) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, p := range []*privateLevel{h.l1i, h.l1d, h.l2} {
		for i := range p.lines {
			l := &p.lines[i]
			if l.valid && l.state == Modified {
				if err := h.shared.backing.WriteLine(l.tag, l.data); err != nil {
					return err
				}
				l.state = SharedState
			}
		}
	}
	return nil
}
