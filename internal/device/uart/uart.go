/*
 * AXP-CORE - 16550-style UART device.
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

// Package uart is a minimal 16550-style serial console device (spec
// section 6, device type "uart"), adapted from the teacher's
// model1052 console unit: a single input/output byte register plus a
// status register, driving its interrupt through the bus's IRQSink
// rather than a channel end-device-status byte.
package uart

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/device"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/schedule"
)

// Register offsets within the device's MMIO window.
const (
	regData   = 0x00 // read: RX data; write: TX data.
	regStatus = 0x08 // read-only.
	regIER    = 0x10 // interrupt enable.
)

// Status bits.
const (
	statusTxReady = 1 << 0
	statusRxReady = 1 << 1
)

const txDrainCycles = 1000 // cycles to model one character time.

// UART is a byte-oriented serial console backed by host stdin/stdout,
// matching the teacher's console-attached-to-telnet-or-terminal idiom
// generalized to a plain io.Reader/io.Writer so tests can supply
// in-memory pipes.
type UART struct {
	mu   sync.Mutex
	out  *bufio.Writer
	in   *bufio.Reader
	ier  uint8
	rx   byte
	rxOK bool

	sched  *schedule.Scheduler
	sink   device.IRQSink
	cpu    int
	vector uint8
}

// New returns a UART writing to w and reading from r, raising vector
// on cpu through sink when enabled conditions become true. sched is
// stored but no transmit-drain delay is modeled: TX-ready always reads
// as set.
func New(r io.Reader, w io.Writer, sched *schedule.Scheduler, sink device.IRQSink, cpu int, vector uint8) *UART {
	return &UART{
		out:    bufio.NewWriter(w),
		in:     bufio.NewReader(r),
		sched:  sched,
		sink:   sink,
		cpu:    cpu,
		vector: vector,
	}
}

// Read implements device.Device.
func (u *UART) Read(offset uint64, width int) (uint64, error) {
	if width != 1 {
		return 0, fmt.Errorf("uart: unsupported access width %d", width)
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	switch offset {
	case regData:
		v := u.rx
		u.rxOK = false
		return uint64(v), nil
	case regStatus:
		return uint64(u.status()), nil
	case regIER:
		return uint64(u.ier), nil
	default:
		return 0, fmt.Errorf("uart: read at unmapped offset %#x", offset)
	}
}

// Write implements device.Device.
func (u *UART) Write(offset uint64, value uint64, width int) error {
	if width != 1 {
		return fmt.Errorf("uart: unsupported access width %d", width)
	}
	u.mu.Lock()
	switch offset {
	case regData:
		b := byte(value)
		u.mu.Unlock()
		if err := u.out.WriteByte(b); err != nil {
			return err
		}
		return u.out.Flush()
	case regIER:
		u.ier = byte(value)
		u.mu.Unlock()
		return nil
	default:
		u.mu.Unlock()
		return fmt.Errorf("uart: write at unmapped offset %#x", offset)
	}
}

func (u *UART) status() uint8 {
	s := uint8(statusTxReady)
	if u.rxOK {
		s |= statusRxReady
	}
	return s
}

// Poll checks the input stream for a pending byte without blocking the
// caller beyond one read attempt, and signals an interrupt if receive
// interrupts are enabled. No goroutine in the emulator polls the UART;
// input is picked up only when a caller invokes Poll.
func (u *UART) Poll() {
	b, err := u.in.ReadByte()
	if err != nil {
		return
	}
	u.mu.Lock()
	u.rx = b
	u.rxOK = true
	enabled := u.ier&statusRxReady != 0
	u.mu.Unlock()
	if enabled {
		u.sink.SignalIRQ(u.cpu, u.vector)
	}
}

// Reset implements device.Device.
func (u *UART) Reset() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.ier = 0
	u.rxOK = false
}

// Shutdown implements device.Device.
func (u *UART) Shutdown() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.out.Flush()
}
