/*
 * AXP-CORE - System bus test cases.
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

package bus

import (
	"testing"

	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/irq"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/memmap"
)

type fakeDevice struct {
	resetCount    int
	shutdownCount int
	regs          map[uint64]uint64
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{regs: make(map[uint64]uint64)}
}

func (d *fakeDevice) Read(offset uint64, width int) (uint64, error) {
	return d.regs[offset], nil
}

func (d *fakeDevice) Write(offset uint64, value uint64, width int) error {
	d.regs[offset] = value
	return nil
}

func (d *fakeDevice) Reset()    { d.resetCount++ }
func (d *fakeDevice) Shutdown() { d.shutdownCount++ }

func newTestBus(nCPU int) (*Bus, *memmap.Physical) {
	mem := memmap.NewPhysical(1 << 20)
	controllers := make([]*irq.Controller, nCPU)
	for i := range controllers {
		controllers[i] = irq.NewController()
	}
	return New(mem, controllers), mem
}

func TestAttachRegistersMMIOWindow(t *testing.T) {
	b, mem := newTestBus(1)
	dev := newFakeDevice()
	if err := b.Attach("uart0", dev, 0x8000000, 0x1000, 0, 1); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	if err := mem.WritePhysical(0x8000004, 0x42, 4); err != nil {
		t.Fatalf("WritePhysical: %v", err)
	}
	if dev.regs[4] != 0x42 {
		t.Errorf("device register at offset 4 = %#x, want 0x42", dev.regs[4])
	}
}

func TestAttachRejectsDuplicateName(t *testing.T) {
	b, _ := newTestBus(1)
	if err := b.Attach("uart0", newFakeDevice(), 0x8000000, 0x1000, 0, 1); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if err := b.Attach("uart0", newFakeDevice(), 0x9000000, 0x1000, 0, 2); err == nil {
		t.Fatal("expected an error attaching a duplicate device name")
	}
}

func TestAttachRejectsTargetCPUOutOfRange(t *testing.T) {
	b, _ := newTestBus(1)
	if err := b.Attach("uart0", newFakeDevice(), 0x8000000, 0x1000, 5, 1); err == nil {
		t.Fatal("expected an error for a target_cpu outside the configured CPU count")
	}
}

func TestDeviceLooksUpByName(t *testing.T) {
	b, _ := newTestBus(1)
	dev := newFakeDevice()
	b.Attach("uart0", dev, 0x8000000, 0x1000, 0, 1)

	got, ok := b.Device("uart0")
	if !ok {
		t.Fatal("expected Device to find the attached device")
	}
	if got.(*fakeDevice) != dev {
		t.Error("Device returned a different instance than was attached")
	}
}

func TestDeviceLookupMiss(t *testing.T) {
	b, _ := newTestBus(1)
	if _, ok := b.Device("nope"); ok {
		t.Error("expected Device lookup to miss for an unattached name")
	}
}

func TestSinkForReturnsRegisteredRouting(t *testing.T) {
	b, _ := newTestBus(2)
	b.Attach("scsi0", newFakeDevice(), 0x9000000, 0x1000, 1, 7)

	cpu, vector, ok := b.SinkFor("scsi0")
	if !ok || cpu != 1 || vector != 7 {
		t.Errorf("SinkFor = (%d, %d, %v), want (1, 7, true)", cpu, vector, ok)
	}
}

func TestSignalAndClearIRQRouteToOwningController(t *testing.T) {
	b, _ := newTestBus(2)
	b.Attach("scsi0", newFakeDevice(), 0x9000000, 0x1000, 1, 7)

	b.SignalIRQ(1, 7)
	if b.controllers[1].Pending()&(1<<7) == 0 {
		t.Error("expected vector 7 pending on controller 1 after SignalIRQ")
	}
	b.ClearIRQ(1, 7)
	if b.controllers[1].Pending()&(1<<7) != 0 {
		t.Error("expected vector 7 cleared after ClearIRQ")
	}
}

func TestResetResetsEveryDevice(t *testing.T) {
	b, _ := newTestBus(1)
	d1, d2 := newFakeDevice(), newFakeDevice()
	b.Attach("a", d1, 0x8000000, 0x1000, 0, 1)
	b.Attach("b", d2, 0x9000000, 0x1000, 0, 2)

	b.Reset()
	if d1.resetCount != 1 || d2.resetCount != 1 {
		t.Errorf("reset counts = %d, %d, want 1, 1", d1.resetCount, d2.resetCount)
	}
}

func TestShutdownShutsDownEveryDevice(t *testing.T) {
	b, _ := newTestBus(1)
	d1 := newFakeDevice()
	b.Attach("a", d1, 0x8000000, 0x1000, 0, 1)

	b.Shutdown()
	if d1.shutdownCount != 1 {
		t.Errorf("shutdown count = %d, want 1", d1.shutdownCount)
	}
}
