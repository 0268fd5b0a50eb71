/*
 * AXP-CORE - Load-locked / store-conditional reservation tracking.
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

// Package llsc implements the per-core reservation record backing
// LDx_L/STx_C. A reservation is written only by its owning core; other
// cores observe invalidation through Clear, called whenever a
// coherent write touches the reserved range (spec section 3).
package llsc

import "sync/atomic"

type reservation struct {
	addr  uint64
	size  uint64
	valid bool
}

// Tracker holds exactly one core's reservation. The current value is
// published behind an atomic pointer so remote cores invalidating it
// (on a coherent write to the reserved range) never race the owning
// core's LoadLocked/StoreConditional sequence.
type Tracker struct {
	cur atomic.Pointer[reservation]
}

// NewTracker returns an empty (invalid) reservation tracker.
func NewTracker() *Tracker {
	t := &Tracker{}
	t.cur.Store(&reservation{})
	return t
}

// LoadLocked installs a reservation for [addr, addr+size).
func (t *Tracker) LoadLocked(addr, size uint64) {
	t.cur.Store(&reservation{addr: addr, size: size, valid: true})
}

// Valid reports whether the current reservation covers addr and is
// still live.
func (t *Tracker) Valid(addr, size uint64) bool {
	r := t.cur.Load()
	if !r.valid {
		return false
	}
	return addr >= r.addr && addr+size <= r.addr+r.size
}

// StoreConditional clears the reservation unconditionally (per spec,
// SC always clears the reservation, success or failure) and reports
// whether the store may proceed.
func (t *Tracker) StoreConditional(addr, size uint64) bool {
	ok := t.Valid(addr, size)
	t.Clear()
	return ok
}

// Clear invalidates the reservation: called on a local or remote write
// that overlaps the reserved range, on a context switch, or on
// interrupt entry.
func (t *Tracker) Clear() {
	t.cur.Store(&reservation{})
}

// Overlaps reports whether a write to [addr, addr+size) would
// invalidate the current reservation, without clearing it; used by the
// coherency broadcast path to decide whether to call Clear on a remote
// core's tracker.
func (t *Tracker) Overlaps(addr, size uint64) bool {
	r := t.cur.Load()
	if !r.valid {
		return false
	}
	return addr < r.addr+r.size && r.addr < addr+size
}
