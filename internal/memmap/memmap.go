/*
 * AXP-CORE - Physical memory and MMIO routing.
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

// Package memmap owns the physical RAM backing store and the
// virtual-memory map (the table of {virtual-base, physical-base,
// length, protection, kind} entries consulted by the TLB walker). It
// also routes physical addresses that land on an MMIO region to the
// registered bus handler.
package memmap

import (
	"sync"
)

// Kind distinguishes a memory-map entry's backing.
type Kind int

const (
	KindRAM Kind = iota
	KindMMIO
)

// Protection bits for a memory-map entry.
const (
	ProtRead = 1 << iota
	ProtWrite
	ProtExecute
)

// Entry is one immutable memory-map table row (spec section 3). Only
// the whole entry is ever inserted or removed.
type Entry struct {
	VirtualBase  uint64
	PhysicalBase uint64
	Length       uint64
	Protection   uint8
	Kind         Kind
}

// MMIOHandler is the contract a device registers to answer accesses to
// its MMIO region (spec section 6).
type MMIOHandler interface {
	Read(offset uint64, width int) (uint64, error)
	Write(offset uint64, value uint64, width int) error
}

type mmioRegion struct {
	base, size uint64
	handler    MMIOHandler
}

// Physical is the shared physical address space: RAM, the MMIO routing
// table, and the virtual memory map. It is owned by the internal/smp
// manager and handed to every core by non-owning reference, per the
// Design Note on breaking CPU<->manager<->memory back-references.
type Physical struct {
	ram  []byte
	mu   sync.RWMutex // guards mmio and the virtual map; RAM itself goes through the cache/coherency path.
	mmio []mmioRegion
	vmap []Entry
}

// NewPhysical allocates size bytes of physical RAM.
func NewPhysical(size uint64) *Physical {
	return &Physical{ram: make([]byte, size)}
}

// Size returns the size of physical RAM in bytes.
func (p *Physical) Size() uint64 {
	return uint64(len(p.ram))
}

// MapMemory inserts a virtual memory map entry. Per spec section 5,
// callers must ensure all cores are paused before calling this.
func (p *Physical) MapMemory(e Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vmap = append(p.vmap, e)
}

// UnmapMemory removes the memory map entry whose virtual base matches.
func (p *Physical) UnmapMemory(virtualBase uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, e := range p.vmap {
		if e.VirtualBase == virtualBase {
			p.vmap = append(p.vmap[:i], p.vmap[i+1:]...)
			return
		}
	}
}

// Lookup finds the memory-map entry covering a virtual address.
func (p *Physical) Lookup(va uint64) (Entry, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, e := range p.vmap {
		if va >= e.VirtualBase && va < e.VirtualBase+e.Length {
			return e, true
		}
	}
	return Entry{}, false
}

// RegisterMMIO registers a device's {base, size, handler} triple on
// the physical bus (spec section 6).
func (p *Physical) RegisterMMIO(base, size uint64, h MMIOHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mmio = append(p.mmio, mmioRegion{base: base, size: size, handler: h})
}

func (p *Physical) findMMIO(addr uint64) (mmioRegion, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, r := range p.mmio {
		if addr >= r.base && addr < r.base+r.size {
			return r, true
		}
	}
	return mmioRegion{}, false
}

// cacheLineSize must match internal/cache's line size; the two packages
// agree on it structurally (array length) rather than sharing a
// constant, since memmap must not import cache (Design Note on
// avoiding cache<->memory back-references).
const cacheLineSize = 64

// ReadLine satisfies internal/cache.Backing: it fetches one raw cache
// line directly from RAM, bypassing any MMIO routing, since MMIO
// regions are never cached.
func (p *Physical) ReadLine(addr uint64) ([cacheLineSize]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out [cacheLineSize]byte
	if addr+cacheLineSize > uint64(len(p.ram)) {
		return out, ErrOutOfRange
	}
	copy(out[:], p.ram[addr:addr+cacheLineSize])
	return out, nil
}

// WriteLine satisfies internal/cache.Backing: it writes back one raw
// cache line to RAM.
func (p *Physical) WriteLine(addr uint64, data [cacheLineSize]byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if addr+cacheLineSize > uint64(len(p.ram)) {
		return ErrOutOfRange
	}
	copy(p.ram[addr:addr+cacheLineSize], data[:])
	return nil
}

// ReadPhysical reads width bytes (1, 2, 4 or 8) at a physical address,
// routing to RAM or an MMIO handler as appropriate.
func (p *Physical) ReadPhysical(addr uint64, width int) (uint64, error) {
	if r, ok := p.findMMIO(addr); ok {
		return r.handler.Read(addr-r.base, width)
	}
	if addr+uint64(width) > uint64(len(p.ram)) {
		return 0, ErrOutOfRange
	}
	var v uint64
	for i := 0; i < width; i++ {
		v |= uint64(p.ram[addr+uint64(i)]) << (8 * i)
	}
	return v, nil
}

// WritePhysical writes width bytes at a physical address.
func (p *Physical) WritePhysical(addr uint64, value uint64, width int) error {
	if r, ok := p.findMMIO(addr); ok {
		return r.handler.Write(addr-r.base, value, width)
	}
	if addr+uint64(width) > uint64(len(p.ram)) {
		return ErrOutOfRange
	}
	for i := 0; i < width; i++ {
		p.ram[addr+uint64(i)] = byte(value >> (8 * i))
	}
	return nil
}

// RawRead provides a direct, non-coherent read of physical RAM for the
// debugger (spec section 5); it bypasses the cache/coherency path.
func (p *Physical) RawRead(addr uint64, length int) []byte {
	if addr >= uint64(len(p.ram)) {
		return nil
	}
	end := addr + uint64(length)
	if end > uint64(len(p.ram)) {
		end = uint64(len(p.ram))
	}
	out := make([]byte, end-addr)
	copy(out, p.ram[addr:end])
	return out
}

// RawWrite provides a direct, non-coherent write of physical RAM, used
// by the memory image loader.
func (p *Physical) RawWrite(addr uint64, data []byte) error {
	if addr+uint64(len(data)) > uint64(len(p.ram)) {
		return ErrOutOfRange
	}
	copy(p.ram[addr:], data)
	return nil
}

// Bytes exposes the raw RAM slice for save_state; callers must not
// retain it past a reset.
func (p *Physical) Bytes() []byte {
	return p.ram
}

// ErrOutOfRange is returned for any physical access beyond RAM and not
// claimed by an MMIO region.
var ErrOutOfRange = &rangeError{}

type rangeError struct{}

func (*rangeError) Error() string { return "memmap: physical address out of range" }
