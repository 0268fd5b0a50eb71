/*
 * AXP-CORE - Virtual memory access helpers.
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
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/axpregs"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/trace"
)

// translate resolves va through the TLB for the current ASN, raising
// a memory-fault trap on a walker error.
func (c *Core) translate(va uint64, instFetch bool) (uint64, error) {
	ptbr := c.Regs.GetIPR(axpregs.IPRPTBR)
	asn := uint16(c.Regs.GetIPR(axpregs.IPRASN))
	_, pa, err := c.TLB.Translate(ptbr, asn, va, instFetch)
	if t, ok := err.(*Trap); ok {
		t.PC = c.Regs.PC
		return 0, t
	}
	if err != nil {
		return 0, &InternalError{Detail: err.Error()}
	}
	return pa | (va & 0x1fff), nil
}

// readMem reads width bytes (1, 2, 4, 8) from virtual address va.
func (c *Core) readMem(va uint64, width int) (uint64, error) {
	if va&uint64(width-1) != 0 {
		return 0, newTrap(VectorUnaligned, c.Regs.PC, "unaligned data read")
	}
	pa, err := c.translate(va, false)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := 0; i < width; i++ {
		b, err := c.Cache.ReadByte(pa + uint64(i))
		if err != nil {
			return 0, &InternalError{Detail: err.Error()}
		}
		v |= uint64(b) << (8 * i)
	}
	c.Sink.OnMemoryAccessed(trace.MemoryAccessed{CPU: c.Index, VA: va, PA: pa, Width: width, IsWrite: false})
	return v, nil
}

// writeMem writes width bytes to virtual address va, invalidating any
// remote reservation overlapping the written range and, for an
// instruction-space write, the writer's own I-cache line (spec section
// 4.5/4.10: self-modifying code).
func (c *Core) writeMem(va uint64, value uint64, width int) error {
	if va&uint64(width-1) != 0 {
		return newTrap(VectorUnaligned, c.Regs.PC, "unaligned data write")
	}
	pa, err := c.translate(va, false)
	if err != nil {
		return err
	}
	for i := 0; i < width; i++ {
		if err := c.Cache.WriteByte(pa+uint64(i), byte(value>>(8*i))); err != nil {
			return &InternalError{Detail: err.Error()}
		}
	}
	if c.LLSC.Overlaps(pa, uint64(width)) {
		c.LLSC.Clear()
	}
	c.Cache.InvalidateInstructionLine(pa)
	c.Sink.OnMemoryAccessed(trace.MemoryAccessed{CPU: c.Index, VA: va, PA: pa, Width: width, IsWrite: true})
	return nil
}

// fetchWord fetches the 4-byte instruction word at the core's current
// PC through the instruction side of the cache hierarchy.
func (c *Core) fetchWord(va uint64) (uint32, error) {
	pa, err := c.translate(va, true)
	if err != nil {
		return 0, err
	}
	var word uint32
	for i := 0; i < 4; i++ {
		b, err := c.Cache.ReadInstructionByte(pa + uint64(i))
		if err != nil {
			return 0, &InternalError{Detail: err.Error()}
		}
		word |= uint32(b) << (8 * i)
	}
	return word, nil
}
