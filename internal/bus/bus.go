/*
 * AXP-CORE - System bus: device registry and MMIO/IRQ routing.
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

// Package bus is the system's device registry: it holds every attached
// device by name, maps IRQ vectors to the interrupting core's
// controller, and registers each device's MMIO window on the physical
// memory map (spec section 6). It plays the role the teacher's
// sys_channel plays for unit-record devices, generalized from channel
// addresses to MMIO base addresses.
package bus

import (
	"fmt"
	"sync"

	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/device"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/irq"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/memmap"
)

// attachment pairs a live device with the CPU index and vector it
// interrupts on.
type attachment struct {
	name    string
	dev     device.Device
	cpu     int
	vector  uint8
	base    uint64
	size    uint64
}

// Bus owns every attached device and routes IRQ signaling to the
// owning core's controller. One Bus is shared by the whole system; it
// is created by axp.Initialize and handed to devices as their
// IRQSink, per the Design Note's non-owning-handle convention.
type Bus struct {
	mu          sync.Mutex
	mem         *memmap.Physical
	controllers []*irq.Controller // indexed by CPU index.
	devices     map[string]*attachment
}

// New returns an empty bus over the given physical memory and one IRQ
// controller per core.
func New(mem *memmap.Physical, controllers []*irq.Controller) *Bus {
	return &Bus{
		mem:         mem,
		controllers: controllers,
		devices:     make(map[string]*attachment),
	}
}

// Attach registers a device's MMIO window and its interrupt routing
// (spec section 6: name, type, base_address, irq_vector, target_cpu).
// Per spec section 5, all cores must be paused before calling this.
func (b *Bus) Attach(name string, d device.Device, base, size uint64, cpu int, vector uint8) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.devices[name]; exists {
		return fmt.Errorf("bus: device %q already attached", name)
	}
	if cpu < 0 || cpu >= len(b.controllers) {
		return fmt.Errorf("bus: target_cpu %d out of range", cpu)
	}

	b.devices[name] = &attachment{name: name, dev: d, cpu: cpu, vector: vector, base: base, size: size}
	b.mem.RegisterMMIO(base, size, mmioAdapter{d})
	return nil
}

// mmioAdapter lets a device.Device satisfy memmap.MMIOHandler without
// the device package depending on memmap.
type mmioAdapter struct{ d device.Device }

func (a mmioAdapter) Read(offset uint64, width int) (uint64, error)  { return a.d.Read(offset, width) }
func (a mmioAdapter) Write(offset uint64, v uint64, width int) error { return a.d.Write(offset, v, width) }

// Device returns the named attached device, if any.
func (b *Bus) Device(name string) (device.Device, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.devices[name]
	if !ok {
		return nil, false
	}
	return a.dev, true
}

// SignalIRQ implements device.IRQSink: a device raises its registered
// vector on its registered target CPU.
func (b *Bus) SignalIRQ(cpuIndex int, vector uint8) {
	b.mu.Lock()
	c := b.controllers[cpuIndex]
	b.mu.Unlock()
	c.Signal(vector)
}

// ClearIRQ implements device.IRQSink: a device acknowledges its vector.
func (b *Bus) ClearIRQ(cpuIndex int, vector uint8) {
	b.mu.Lock()
	c := b.controllers[cpuIndex]
	b.mu.Unlock()
	c.Clear(vector)
}

// SinkFor returns the (cpu, vector) routing a named device was
// attached with, so the device itself can call SignalIRQ/ClearIRQ
// without storing its own routing.
func (b *Bus) SinkFor(name string) (cpu int, vector uint8, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, exists := b.devices[name]
	if !exists {
		return 0, 0, false
	}
	return a.cpu, a.vector, true
}

// Reset resets every attached device, used on a system Reset (spec
// section 5).
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.devices {
		a.dev.Reset()
	}
}

// Shutdown releases every attached device's host resources.
func (b *Bus) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.devices {
		a.dev.Shutdown()
	}
}
