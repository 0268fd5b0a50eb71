/*
 * AXP-CORE - Top-level system facade.
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

// Package axp is the emulator's external interface (spec section 6):
// a single System handle wrapping the SMP manager, the system bus and
// the device set, exposing Initialize/Start/Pause/Resume/Stop/Reset,
// LoadBinary and Save/Load state. It plays the role main.go plays in
// the teacher, generalized from a single program into a reusable
// facade type so both main.go and cmd/axpctl can drive it.
package axp

import (
	"fmt"

	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/bus"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/config"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/device/diskblock"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/device/uart"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/loader"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/smp"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/state"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/trace"
)

// System is the complete emulated machine.
type System struct {
	manager *smp.Manager
	bus     *bus.Bus
	cfg     config.Config
	sink    trace.Sink
}

// Initialize validates cfg, allocates the SMP manager and physical
// memory, and attaches every device named in cfg.Devices (spec section
// 6).
func Initialize(cfg config.Config, sink trace.Sink) (*System, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("axp: invalid configuration: %w", errs[0])
	}
	if sink == nil {
		sink = trace.NullSink{}
	}

	mgr, err := smp.New(cfg.CPUCount, cfg.MemorySize, sink)
	if err != nil {
		return nil, err
	}

	b := bus.New(mgr.Mem, mgr.Controllers())
	sys := &System{manager: mgr, bus: b, cfg: cfg, sink: sink}

	for _, d := range cfg.Devices {
		if err := sys.attachDevice(d); err != nil {
			return nil, err
		}
	}

	return sys, nil
}

func (s *System) attachDevice(d config.DeviceSpec) error {
	switch d.Type {
	case "uart":
		// A demo-harness UART reading nothing and discarding output;
		// the uart package's own tests wire in-memory pipes instead.
		u := uart.New(discardReader{}, discardWriter{}, s.manager.Scheduler, s.bus, d.TargetCPU, d.IRQVector)
		return s.bus.Attach(d.Name, u, d.BaseAddress, 0x300, d.TargetCPU, d.IRQVector)
	case "scsi", "ethernet":
		// diskblock models a generic block store; real SCSI/ethernet
		// semantics are an external collaborator per spec section 1.
		if d.BackingFile == "" {
			return fmt.Errorf("axp: device %q needs a backing_file", d.Name)
		}
		disk, err := diskblock.New(d.BackingFile, s.bus, d.TargetCPU, d.IRQVector)
		if err != nil {
			return err
		}
		return s.bus.Attach(d.Name, disk, d.BaseAddress, 0x300, d.TargetCPU, d.IRQVector)
	default:
		return fmt.Errorf("axp: unknown device type %q", d.Type)
	}
}

// Start launches every core.
func (s *System) Start() { s.manager.Start() }

// Pause halts every core's goroutine without losing register state.
func (s *System) Pause() { s.manager.Pause() }

// Resume restarts every core from where Pause left it.
func (s *System) Resume() { s.manager.Resume() }

// Stop halts every core and every device.
func (s *System) Stop() {
	s.manager.Stop()
	s.bus.Shutdown()
}

// Reset restores every core to power-up state and resets every device.
// Per spec section 5, callers must Stop first.
func (s *System) Reset() {
	s.manager.Reset()
	s.bus.Reset()
}

// LoadBinary loads a raw binary image at a physical base address.
func (s *System) LoadBinary(path string, base uint64) error {
	return loader.LoadBinary(path, base, s.manager.Mem)
}

// LoadIntelHex loads an Intel HEX text image.
func (s *System) LoadIntelHex(path string) error {
	return loader.LoadIntelHex(path, s.manager.Mem)
}

// SaveState writes every core's registers, FPCR, PS, PC and IPRs and
// physical RAM to path. Caches are flushed first and their contents are
// not stored; LL/SC reservations are not saved (the snapshot's
// reservation section is left empty) and LoadState clears them. Per
// spec section 5, callers must Pause first.
func (s *System) SaveState(path string, compress bool) error {
	for i := 0; i < s.manager.CPUCount(); i++ {
		c, err := s.manager.Core(i)
		if err != nil {
			return err
		}
		if err := c.Cache.Flush(); err != nil {
			return fmt.Errorf("axp: flush cpu %d: %w", i, err)
		}
	}

	snap := state.Snapshot{RAM: s.manager.Mem.Bytes()}
	for i := 0; i < s.manager.CPUCount(); i++ {
		c, _ := s.manager.Core(i)
		snap.Cores = append(snap.Cores, state.CoreState{
			Int:  c.Regs.Int,
			FP:   c.Regs.FP,
			FPCR: c.Regs.FPCR,
			PS:   c.Regs.PS,
			PC:   c.Regs.PC,
			IPRs: append([]uint64(nil), c.Regs.IPRs[:]...),
		})
	}
	return state.Save(path, snap, compress)
}

// LoadState restores a machine snapshot previously written by
// SaveState. Per spec section 5, callers must Pause first, and the
// snapshot's core count must match the live configuration.
func (s *System) LoadState(path string) error {
	snap, err := state.Load(path)
	if err != nil {
		return err
	}
	if len(snap.Cores) != s.manager.CPUCount() {
		return fmt.Errorf("axp: snapshot has %d cores, system has %d", len(snap.Cores), s.manager.CPUCount())
	}
	if err := s.manager.Mem.RawWrite(0, snap.RAM); err != nil {
		return err
	}
	for i, cs := range snap.Cores {
		c, _ := s.manager.Core(i)
		c.Regs.Int = cs.Int
		c.Regs.FP = cs.FP
		c.Regs.FPCR = cs.FPCR
		c.Regs.PS = cs.PS
		c.Regs.SetPC(cs.PC)
		copy(c.Regs.IPRs[:], cs.IPRs)
		c.TLB.InvalidateAll()
		c.LLSC.Clear()
	}
	return nil
}

// Bus exposes the device bus for tests and cmd/axpctl introspection.
func (s *System) Bus() *bus.Bus { return s.bus }

type discardReader struct{}

func (discardReader) Read(p []byte) (int, error) { return 0, fmt.Errorf("axp: no input attached") }

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
