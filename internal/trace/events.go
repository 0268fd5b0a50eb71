/*
 * AXP-CORE - Typed trace event sink.
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

package trace

import "log/slog"

// Module-scoped debug bit masks, generalizing the teacher's
// per-device debug mask (util/debug.go) from unit-record devices to
// the emulator's major subsystems.
const (
	DebugCPU = 1 << iota
	DebugTLB
	DebugCache
	DebugPAL
	DebugSMP
	DebugDevice
)

// StatusChanged reports a core transitioning between Running, Halted,
// and Stepping (spec section 6).
type StatusChanged struct {
	CPU    int
	Status string
}

// InstructionExecuted is emitted once per retired instruction when
// instruction tracing is enabled; it is the highest-volume event and
// is gated independently of ordinary logging.
type InstructionExecuted struct {
	CPU   int
	PC    uint64
	Raw   uint32
	Mnemonic string
}

// MemoryAccessed reports a load or store crossing the trace boundary
// (spec section 6), after translation.
type MemoryAccessed struct {
	CPU     int
	VA, PA  uint64
	Width   int
	IsWrite bool
}

// CPUTrap reports an exception or interrupt taken by a core.
type CPUTrap struct {
	CPU    int
	Vector uint64
	PC     uint64
}

// DeviceAccessed reports an MMIO read or write reaching a device.
type DeviceAccessed struct {
	Device  string
	Offset  uint64
	IsWrite bool
}

// Sink receives typed trace events. Implementations must not block the
// emitting core for long; the default Sink logs through slog and
// returns immediately.
type Sink interface {
	OnStatusChanged(StatusChanged)
	OnInstructionExecuted(InstructionExecuted)
	OnMemoryAccessed(MemoryAccessed)
	OnCPUTrap(CPUTrap)
	OnDeviceAccessed(DeviceAccessed)
}

// SlogSink is the default Sink, logging each event at a level chosen
// by its volume: status and trap changes at Info, per-instruction and
// per-access events at Debug so they are silent unless a debug mask
// enables them.
type SlogSink struct {
	log  *slog.Logger
	mask int
}

// NewSlogSink returns a Sink that logs through log, gated by mask (an
// OR of the Debug* bits above).
func NewSlogSink(log *slog.Logger, mask int) *SlogSink {
	return &SlogSink{log: log, mask: mask}
}

func (s *SlogSink) OnStatusChanged(e StatusChanged) {
	s.log.Info("status changed", "cpu", e.CPU, "status", e.Status)
}

func (s *SlogSink) OnInstructionExecuted(e InstructionExecuted) {
	if s.mask&DebugCPU == 0 {
		return
	}
	s.log.Debug("instruction executed", "cpu", e.CPU, "pc", e.PC, "raw", e.Raw, "mnemonic", e.Mnemonic)
}

func (s *SlogSink) OnMemoryAccessed(e MemoryAccessed) {
	if s.mask&DebugCPU == 0 {
		return
	}
	s.log.Debug("memory accessed", "cpu", e.CPU, "va", e.VA, "pa", e.PA, "width", e.Width, "write", e.IsWrite)
}

func (s *SlogSink) OnCPUTrap(e CPUTrap) {
	s.log.Info("cpu trap", "cpu", e.CPU, "vector", e.Vector, "pc", e.PC)
}

func (s *SlogSink) OnDeviceAccessed(e DeviceAccessed) {
	if s.mask&DebugDevice == 0 {
		return
	}
	s.log.Debug("device accessed", "device", e.Device, "offset", e.Offset, "write", e.IsWrite)
}

// NullSink discards every event; used in tests and as the facade's
// zero-value default.
type NullSink struct{}

func (NullSink) OnStatusChanged(StatusChanged)             {}
func (NullSink) OnInstructionExecuted(InstructionExecuted)  {}
func (NullSink) OnMemoryAccessed(MemoryAccessed)            {}
func (NullSink) OnCPUTrap(CPUTrap)                          {}
func (NullSink) OnDeviceAccessed(DeviceAccessed)             {}
