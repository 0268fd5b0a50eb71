/*
 * AXP-CORE - Memory image loader test cases.
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

package loader

import (
	"os"
	"path/filepath"
	"testing"
)

type fakeTarget struct {
	writes map[uint64][]byte
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{writes: make(map[uint64][]byte)}
}

func (f *fakeTarget) RawWrite(addr uint64, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	f.writes[addr] = cp
	return nil
}

func writeTempFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "image")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadBinaryWritesAtBase(t *testing.T) {
	path := writeTempFile(t, "\x01\x02\x03\x04")
	target := newFakeTarget()

	if err := LoadBinary(path, 0x1000, target); err != nil {
		t.Fatalf("LoadBinary: %v", err)
	}
	got, ok := target.writes[0x1000]
	if !ok {
		t.Fatal("expected a write at the base address")
	}
	want := []byte{1, 2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("written data = %v, want %v", got, want)
		}
	}
}

func TestLoadBinaryMissingFile(t *testing.T) {
	target := newFakeTarget()
	if err := LoadBinary("/nonexistent/file", 0, target); err == nil {
		t.Fatal("expected an error for a missing binary image")
	}
}

func TestLoadIntelHexDataRecord(t *testing.T) {
	path := writeTempFile(t, ":04000000DEADBEEF00\n:00000001FF\n")
	target := newFakeTarget()

	if err := LoadIntelHex(path, target); err != nil {
		t.Fatalf("LoadIntelHex: %v", err)
	}
	got, ok := target.writes[0]
	if !ok {
		t.Fatal("expected a write at address 0")
	}
	want := []byte{0xde, 0xad, 0xbe, 0xef}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("written data = %x, want %x", got, want)
		}
	}
}

func TestLoadIntelHexExtendedLinearAddress(t *testing.T) {
	path := writeTempFile(t, ":02000004001000\n:04000000CAFEBABE00\n:00000001FF\n")
	target := newFakeTarget()

	if err := LoadIntelHex(path, target); err != nil {
		t.Fatalf("LoadIntelHex: %v", err)
	}
	got, ok := target.writes[0x100000]
	if !ok {
		t.Fatalf("expected a write at 0x100000 after the extended linear address record, writes=%v", target.writes)
	}
	want := []byte{0xca, 0xfe, 0xba, 0xbe}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("written data = %x, want %x", got, want)
		}
	}
}

func TestLoadIntelHexStopsAtEndOfFileRecord(t *testing.T) {
	path := writeTempFile(t, ":00000001FF\n:04000000DEADBEEF00\n")
	target := newFakeTarget()

	if err := LoadIntelHex(path, target); err != nil {
		t.Fatalf("LoadIntelHex: %v", err)
	}
	if len(target.writes) != 0 {
		t.Error("expected no writes after an end-of-file record terminates the load")
	}
}

func TestLoadIntelHexRejectsMissingColon(t *testing.T) {
	path := writeTempFile(t, "04000000DEADBEEF00\n")
	target := newFakeTarget()

	if err := LoadIntelHex(path, target); err == nil {
		t.Fatal("expected an error for a record missing its ':' marker")
	}
}

func TestLoadIntelHexRejectsShortPayload(t *testing.T) {
	path := writeTempFile(t, ":FF000000DEAD00\n")
	target := newFakeTarget()

	if err := LoadIntelHex(path, target); err == nil {
		t.Fatal("expected an error when the declared byte count exceeds the payload")
	}
}

func TestLoadIntelHexSkipsUnknownRecordType(t *testing.T) {
	path := writeTempFile(t, ":00000003FD\n:04000000DEADBEEF00\n:00000001FF\n")
	target := newFakeTarget()

	if err := LoadIntelHex(path, target); err != nil {
		t.Fatalf("LoadIntelHex: %v", err)
	}
	if _, ok := target.writes[0]; !ok {
		t.Error("expected the unknown record type to be skipped and the data record still applied")
	}
}

func TestLoadIntelHexMissingFile(t *testing.T) {
	target := newFakeTarget()
	if err := LoadIntelHex("/nonexistent/file.hex", target); err == nil {
		t.Fatal("expected an error for a missing Intel HEX file")
	}
}
