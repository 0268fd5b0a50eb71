/*
 * AXP-CORE - Flat-file block storage device.
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

// Package diskblock is a simple memory-mapped-register disk device
// backed by a flat host file, adapted from the teacher's tape and card
// unit-record devices (util/tape.go, util/card.go): a register window
// selects an LBA and a direction, and a fixed-size sector buffer is
// copied to or from the backing file, generalized from CCW-driven
// record transfer to a register-poked block transfer.
package diskblock

import (
	"fmt"
	"os"
	"sync"

	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/device"
)

const sectorSize = 512

// Register offsets.
const (
	regLBALow  = 0x00 // low 32 bits of the target sector number.
	regLBAHigh = 0x08
	regCommand = 0x10 // write-only: cmdRead or cmdWrite triggers the transfer.
	regStatus  = 0x18
	regBufBase = 0x200 // sectorSize-byte transfer buffer.
)

// Commands written to regCommand.
const (
	cmdRead = 1
	cmdWrite = 2
)

// Status bits.
const (
	statusReady = 1 << 0
	statusError = 1 << 1
)

// Disk is a flat-file-backed block device exposed as a tiny
// register + buffer MMIO window.
type Disk struct {
	mu     sync.Mutex
	file   *os.File
	status uint8
	lba    uint64
	buf    [sectorSize]byte

	sink   device.IRQSink
	cpu    int
	vector uint8
}

// New opens path (created if missing) as the backing store for a disk
// device raising vector on cpu when a transfer completes.
func New(path string, sink device.IRQSink, cpu int, vector uint8) (*Disk, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("diskblock: open %s: %w", path, err)
	}
	return &Disk{file: f, status: statusReady, sink: sink, cpu: cpu, vector: vector}, nil
}

// Read implements device.Device.
func (d *Disk) Read(offset uint64, width int) (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case offset == regLBALow:
		return readWidth(uint64(uint32(d.lba)), width), nil
	case offset == regLBAHigh:
		return readWidth(d.lba>>32, width), nil
	case offset == regStatus:
		return readWidth(uint64(d.status), width), nil
	case offset >= regBufBase && offset < regBufBase+sectorSize:
		return readBuf(d.buf[:], offset-regBufBase, width), nil
	default:
		return 0, fmt.Errorf("diskblock: read at unmapped offset %#x", offset)
	}
}

// Write implements device.Device.
func (d *Disk) Write(offset uint64, value uint64, width int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case offset == regLBALow:
		d.lba = (d.lba &^ 0xffffffff) | (value & 0xffffffff)
		return nil
	case offset == regLBAHigh:
		d.lba = (d.lba & 0xffffffff) | (value << 32)
		return nil
	case offset == regCommand:
		return d.doCommand(uint8(value))
	case offset >= regBufBase && offset < regBufBase+sectorSize:
		writeBuf(d.buf[:], offset-regBufBase, value, width)
		return nil
	default:
		return fmt.Errorf("diskblock: write at unmapped offset %#x", offset)
	}
}

func (d *Disk) doCommand(cmd uint8) error {
	var err error
	switch cmd {
	case cmdRead:
		_, err = d.file.ReadAt(d.buf[:], int64(d.lba)*sectorSize)
	case cmdWrite:
		_, err = d.file.WriteAt(d.buf[:], int64(d.lba)*sectorSize)
	default:
		return fmt.Errorf("diskblock: unknown command %d", cmd)
	}
	if err != nil {
		d.status = statusError
	} else {
		d.status = statusReady
	}
	d.sink.SignalIRQ(d.cpu, d.vector)
	return err
}

func readWidth(v uint64, width int) uint64 {
	mask := uint64(1)<<(uint(width)*8) - 1
	return v & mask
}

func readBuf(buf []byte, offset uint64, width int) uint64 {
	var v uint64
	for i := 0; i < width; i++ {
		v |= uint64(buf[offset+uint64(i)]) << (8 * i)
	}
	return v
}

func writeBuf(buf []byte, offset uint64, value uint64, width int) {
	for i := 0; i < width; i++ {
		buf[offset+uint64(i)] = byte(value >> (8 * i))
	}
}

// Reset implements device.Device.
func (d *Disk) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = statusReady
	d.lba = 0
}

// Shutdown implements device.Device.
func (d *Disk) Shutdown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.file.Close()
}
