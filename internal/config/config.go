/*
 * AXP-CORE - System configuration.
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

// Package config validates the system configuration record (spec
// section 6): CPU count, memory size, and the device attachment list.
// Loading is a thin JSON decode (no ecosystem config library is
// imported anywhere in the example corpus, so this stays on
// encoding/json per the Design Notes); validation follows the
// teacher's configparser style of accumulating every error found
// rather than stopping at the first one.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// DeviceSpec is one entry in the device attachment list.
type DeviceSpec struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	BaseAddress uint64 `json:"base_address"`
	IRQVector   uint8  `json:"irq_vector"`
	TargetCPU   int    `json:"target_cpu"`
	BackingFile string `json:"backing_file,omitempty"`
}

// Config is the complete system configuration record.
type Config struct {
	CPUCount   int          `json:"cpu_count"`
	MemorySize uint64       `json:"memory_size"`
	Devices    []DeviceSpec `json:"devices"`
}

const (
	// MaxCPUCount bounds SMP core count to the spec's IPI/shootdown
	// broadcast design (a linear scan over cores on every shootdown).
	MaxCPUCount = 64
	minMemory   = 1 << 20 // 1MB: below this PALcode has nowhere to run.
)

// Validate checks every field and returns all errors found, not just
// the first, matching the teacher's configuration parser's habit of
// reporting a whole file's worth of problems in one pass.
func (c *Config) Validate() []error {
	var errs []error

	if c.CPUCount < 1 || c.CPUCount > MaxCPUCount {
		errs = append(errs, fmt.Errorf("config: cpu_count %d out of range [1,%d]", c.CPUCount, MaxCPUCount))
	}
	if c.MemorySize < minMemory {
		errs = append(errs, fmt.Errorf("config: memory_size %d below minimum %d", c.MemorySize, minMemory))
	}

	seen := make(map[string]bool)
	for _, d := range c.Devices {
		if d.Name == "" {
			errs = append(errs, fmt.Errorf("config: device with empty name"))
			continue
		}
		if seen[d.Name] {
			errs = append(errs, fmt.Errorf("config: duplicate device name %q", d.Name))
		}
		seen[d.Name] = true

		switch d.Type {
		case "uart", "scsi", "ethernet":
		default:
			errs = append(errs, fmt.Errorf("config: device %q has unknown type %q", d.Name, d.Type))
		}

		if d.TargetCPU < 0 || d.TargetCPU >= c.CPUCount {
			errs = append(errs, fmt.Errorf("config: device %q target_cpu %d out of range", d.Name, d.TargetCPU))
		}
	}

	return errs
}

// LoadJSONFile reads and validates a configuration file. JSON is used
// here purely as a convenience for main.go and cmd/axpctl; it is not
// part of the spec's external interface.
func LoadJSONFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if errs := c.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("config: %d validation error(s), first: %w", len(errs), errs[0])
	}
	return &c, nil
}
