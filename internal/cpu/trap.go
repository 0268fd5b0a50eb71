/*
 * AXP-CORE - Trap and internal error value types.
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

import "fmt"

// Architectural exception vectors a core can take (spec section 4.8).
const (
	VectorArithmetic    uint64 = 0x500
	VectorMemoryFault   uint64 = 0x600
	VectorUnaligned     uint64 = 0x680
	VectorOpcodeReserved uint64 = 0x700
	VectorInterrupt     uint64 = 0x100
	VectorMachineCheck  uint64 = 0x200
)

// Trap is an architectural exception: something the guest program or
// guest OS can legitimately trigger (an unaligned access, an undefined
// opcode, an arithmetic exception). It carries the vector the core
// dispatches to; per the Design Notes this is a return value, never a
// Go panic.
type Trap struct {
	Vector uint64
	PC     uint64
	Detail string
}

func (t *Trap) Error() string {
	return fmt.Sprintf("trap to vector %#x at pc %#x: %s", t.Vector, t.PC, t.Detail)
}

// InternalError is a host-side condition that is not part of the
// architected fault model: a misconfigured TLB walker, an out-of-range
// device routing, an unreachable dispatch table slot. It is always a
// defect in this implementation rather than guest behavior, and it is
// never translated into a guest-visible trap.
type InternalError struct {
	Detail string
}

func (e *InternalError) Error() string {
	return "internal error: " + e.Detail
}

func newTrap(vector, pc uint64, detail string) *Trap {
	return &Trap{Vector: vector, PC: pc, Detail: detail}
}
