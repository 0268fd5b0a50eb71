/*
 * AXP-CORE - Per-core translation lookaside buffer and page table walker.
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

// Package tlb implements the per-core split instruction/data TLB, its
// victim cache, and the Walker interface through which a three-level
// page-table walk fills it on a miss (spec section 4.4). Each core owns one TLB; shootdowns from
// other cores arrive through Invalidate/InvalidateASN/InvalidateAll.
package tlb

import "sync"

// PTE is a resolved page table entry as consulted by the walker.
type PTE struct {
	PFN      uint64
	Valid    bool
	Writable bool
	KRE      bool // kernel read-enable
	URE      bool // user read-enable
	KWE      bool
	UWE      bool
}

// Walker resolves a virtual page number to a PTE by walking the
// three-level page table rooted at PTBR. It is a non-owning handle to
// the shared physical memory, per the Design Note on avoiding
// back-references between the TLB and the memory subsystem.
type Walker interface {
	WalkPTE(ptbr uint64, vpn uint64) (PTE, error)
}

// entry is one TLB slot.
type entry struct {
	vpn   uint64
	asn   uint16
	pte   PTE
	valid bool
	// global entries (ASM bit in the real PTE) ignore ASN on lookup.
	global bool
}

const (
	defaultSlots  = 128
	victimSlots   = 8
	pageShift     = 13 // 8KB pages, per spec glossary.
	pageOffsetBit = (1 << pageShift) - 1
)

// TLB is a per-core split ITLB/DTLB with a shared small victim cache
// for entries evicted from either, so a recently-evicted translation
// is not immediately re-walked.
type TLB struct {
	mu     sync.Mutex
	walker Walker

	itlb []entry
	dtlb []entry
	vcam []entry // victim cache, checked before falling back to the walker.

	itlbNext int
	dtlbNext int
	vcamNext int
}

// New returns an empty TLB backed by the given page-table walker.
func New(w Walker) *TLB {
	return &TLB{
		walker: w,
		itlb:   make([]entry, defaultSlots),
		dtlb:   make([]entry, defaultSlots),
		vcam:   make([]entry, victimSlots),
	}
}

func vpnOf(va uint64) uint64 { return va >> pageShift }

// Translate resolves va for the given ASN, consulting the TLB, then the
// victim cache, then the page table walker on a true miss (spec section
// 4.4). instFetch selects the ITLB or DTLB array.
func (t *TLB) Translate(ptbr uint64, asn uint16, va uint64, instFetch bool) (PTE, uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	vpn := vpnOf(va)
	tbl := t.dtlb
	if instFetch {
		tbl = t.itlb
	}

	for _, e := range tbl {
		if e.valid && e.vpn == vpn && (e.global || e.asn == asn) {
			return e.pte, e.pte.PFN << pageShift, nil
		}
	}

	for i, e := range t.vcam {
		if e.valid && e.vpn == vpn && (e.global || e.asn == asn) {
			t.vcam[i].valid = false
			t.install(instFetch, e)
			return e.pte, e.pte.PFN << pageShift, nil
		}
	}

	pte, err := t.walker.WalkPTE(ptbr, vpn)
	if err != nil {
		return PTE{}, 0, err
	}
	t.install(instFetch, entry{vpn: vpn, asn: asn, pte: pte, valid: true})
	return pte, pte.PFN << pageShift, nil
}

func (t *TLB) install(instFetch bool, e entry) {
	if instFetch {
		evicted := t.itlb[t.itlbNext]
		t.itlb[t.itlbNext] = e
		t.itlbNext = (t.itlbNext + 1) % len(t.itlb)
		t.toVictim(evicted)
		return
	}
	evicted := t.dtlb[t.dtlbNext]
	t.dtlb[t.dtlbNext] = e
	t.dtlbNext = (t.dtlbNext + 1) % len(t.dtlb)
	t.toVictim(evicted)
}

func (t *TLB) toVictim(e entry) {
	if !e.valid {
		return
	}
	t.vcam[t.vcamNext] = e
	t.vcamNext = (t.vcamNext + 1) % len(t.vcam)
}

// Invalidate removes any entry mapping va for the given ASN, the single
// virtual address shootdown scope (spec section 4.4/4.9).
func (t *TLB) Invalidate(asn uint16, va uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	vpn := vpnOf(va)
	invalidateMatching(t.itlb, func(e entry) bool { return e.vpn == vpn && e.asn == asn })
	invalidateMatching(t.dtlb, func(e entry) bool { return e.vpn == vpn && e.asn == asn })
	invalidateMatching(t.vcam, func(e entry) bool { return e.vpn == vpn && e.asn == asn })
}

// InvalidateASN clears every entry tagged with the given ASN, the
// ASN-wide shootdown scope.
func (t *TLB) InvalidateASN(asn uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()
	invalidateMatching(t.itlb, func(e entry) bool { return e.asn == asn })
	invalidateMatching(t.dtlb, func(e entry) bool { return e.asn == asn })
	invalidateMatching(t.vcam, func(e entry) bool { return e.asn == asn })
}

// InvalidateAll clears the entire TLB, the "all" shootdown scope.
func (t *TLB) InvalidateAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.itlb {
		t.itlb[i].valid = false
	}
	for i := range t.dtlb {
		t.dtlb[i].valid = false
	}
	for i := range t.vcam {
		t.vcam[i].valid = false
	}
}

// InvalidateAllI clears only the instruction TLB, the I-side-only
// shootdown scope (used after self-modifying code writes).
func (t *TLB) InvalidateAllI() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.itlb {
		t.itlb[i].valid = false
	}
}

func invalidateMatching(tbl []entry, match func(entry) bool) {
	for i, e := range tbl {
		if e.valid && match(e) {
			tbl[i].valid = false
		}
	}
}
