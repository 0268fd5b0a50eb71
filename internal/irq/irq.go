/*
 * AXP-CORE - Per-core pending interrupt controller.
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

// Package irq is the per-core pending-interrupt-vector controller. Each
// core has its own 64-bit pending bitmap; devices and IPIs post vector
// bits, and the owning core's fetch loop checks the bitmap against its
// current IPL between instructions (spec section 4.9/4.10).
package irq

import "sync"

// Controller holds one core's pending-interrupt bitmap.
type Controller struct {
	mu      sync.Mutex
	pending uint64
	wake    chan struct{}
}

// NewController returns a controller with an empty pending bitmap.
func NewController() *Controller {
	return &Controller{wake: make(chan struct{}, 1)}
}

// Signal sets a vector bit (a device calling signal_irq, or an IPI)
// and wakes the owning core if it is blocked waiting for an interrupt.
func (c *Controller) Signal(vector uint8) {
	c.mu.Lock()
	c.pending |= 1 << vector
	c.mu.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Clear acknowledges a vector (a device calling clear_irq).
func (c *Controller) Clear(vector uint8) {
	c.mu.Lock()
	c.pending &^= 1 << vector
	c.mu.Unlock()
}

// Pending returns the raw pending bitmap.
func (c *Controller) Pending() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// HighestPending returns the highest-numbered pending vector not masked
// by the given IPL (vectors are priority-ordered, higher number is
// higher priority, matching the spec's "masks interrupts below the
// current value" definition of IPL), and whether any vector qualified.
func (c *Controller) HighestPending(ipl int) (uint8, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for v := 63; v >= ipl; v-- {
		if c.pending&(1<<uint(v)) != 0 {
			return uint8(v), true
		}
	}
	return 0, false
}

// Wake returns the channel a core blocks on while halted at IPL 0
// waiting for an interrupt (spec section 5, suspension case c).
func (c *Controller) Wake() <-chan struct{} {
	return c.wake
}
