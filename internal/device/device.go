/*
 * AXP-CORE - Device interface and bus contracts.
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

// Package device defines the contract memory-mapped devices must
// satisfy (spec section 6): the bus/MMIO read-write shape, the IRQ
// signaling contract, and the recognized device type strings. Device
// internals beyond this contract (SCSI command sets, Tulip descriptor
// ring formats, UART baud generation) are external collaborators per
// spec section 1 and are not specified here.
package device

// Type names recognized by the configuration record (spec section 6).
const (
	TypeUART     = "uart"
	TypeSCSI     = "scsi"
	TypeEthernet = "ethernet"
)

// IRQSink is how a device signals and acknowledges interrupts. It is
// implemented by internal/bus, which routes to the IRQ controller of
// the CPU index given at registration.
type IRQSink interface {
	SignalIRQ(cpuIndex int, vector uint8)
	ClearIRQ(cpuIndex int, vector uint8)
}

// Device is the minimal lifecycle every memory-mapped device
// implements, mirroring the teacher's unit-record Device interface
// generalized from channel commands to MMIO reads/writes.
type Device interface {
	// Read handles a bus read of the given byte width (1, 2, 4 or 8)
	// at an offset relative to the device's registered base.
	Read(offset uint64, width int) (uint64, error)
	// Write handles a bus write of the given byte width.
	Write(offset uint64, value uint64, width int) error
	// Reset returns the device to its power-up state.
	Reset()
	// Shutdown releases any host resources (open files, sockets).
	Shutdown()
}

// NetworkCapable is implemented by NIC-style devices that need the
// optional host network interface (spec section 6); the host
// environment (TAP on Unix, raw capture on Windows) is external.
type NetworkCapable interface {
	SendFrame(data []byte) error
	OnFrameReceived(data []byte)
}

// UnalignedPolicy describes how a device wants the bus to handle an
// access that spans its natural alignment.
type UnalignedPolicy int

const (
	// UnalignedSplit splits the access into multiple aligned ones.
	UnalignedSplit UnalignedPolicy = iota
	// UnalignedAllOnesRead returns all-ones for an unaligned read and
	// drops an unaligned write.
	UnalignedAllOnesRead
)

// Capable is an optional interface a Device can implement to declare
// its unaligned-access policy; devices that don't implement it get
// UnalignedSplit by default.
type Capable interface {
	UnalignedPolicy() UnalignedPolicy
}
