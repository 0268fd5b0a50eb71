/*
 * AXP-CORE - Persisted machine state.
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

// Package state serializes and restores a complete machine snapshot
// (spec section 6: save_state/load_state) - every core's register
// file and IPRs, physical RAM, and a per-core reservation section
// (Snapshot.Reserved); no cache contents are stored. Encoding is encoding/gob (no third-party
// serialization format is imported anywhere in the example corpus, so
// this stays on the standard library per the Design Notes); physical
// RAM is optionally compressed with klauspost/compress/zstd, the one
// compression library the retrieved corpus actually references.
package state

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// CoreState is one core's architectural register state.
type CoreState struct {
	Int  [32]uint64
	FP   [32]uint64
	FPCR uint64
	PS   uint64
	PC   uint64
	IPRs []uint64
}

// Snapshot is the complete serializable machine state.
type Snapshot struct {
	Cores      []CoreState
	RAM        []byte
	RAMPacked  bool // true if RAM was zstd-compressed before storage.
	Reserved   []reservationState
}

type reservationState struct {
	CPU   int
	Addr  uint64
	Size  uint64
	Valid bool
}

// Save writes a snapshot to path. compress enables zstd compression of
// the RAM payload, trading encode/decode time for file size on large
// memory configurations.
func Save(path string, snap Snapshot, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("state: %w", err)
	}
	defer f.Close()

	snap.RAMPacked = compress
	if compress {
		var buf bytes.Buffer
		w, err := zstd.NewWriter(&buf)
		if err != nil {
			return fmt.Errorf("state: %w", err)
		}
		if _, err := w.Write(snap.RAM); err != nil {
			w.Close()
			return fmt.Errorf("state: %w", err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("state: %w", err)
		}
		snap.RAM = buf.Bytes()
	}

	enc := gob.NewEncoder(f)
	if err := enc.Encode(&snap); err != nil {
		return fmt.Errorf("state: encode: %w", err)
	}
	return nil
}

// Load reads and decompresses a snapshot previously written by Save.
func Load(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("state: %w", err)
	}
	defer f.Close()

	var snap Snapshot
	dec := gob.NewDecoder(f)
	if err := dec.Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("state: decode: %w", err)
	}

	if snap.RAMPacked {
		r, err := zstd.NewReader(bytes.NewReader(snap.RAM))
		if err != nil {
			return Snapshot{}, fmt.Errorf("state: %w", err)
		}
		defer r.Close()
		raw, err := io.ReadAll(r)
		if err != nil {
			return Snapshot{}, fmt.Errorf("state: %w", err)
		}
		snap.RAM = raw
	}
	return snap, nil
}
