/*
 * AXP-CORE - UART device test cases.
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

package uart

import (
	"bytes"
	"strings"
	"testing"
)

type fakeSink struct {
	signaled []uint8
}

func (s *fakeSink) SignalIRQ(cpuIndex int, vector uint8) { s.signaled = append(s.signaled, vector) }
func (s *fakeSink) ClearIRQ(cpuIndex int, vector uint8)  {}

func TestWriteDataFlushesToOutput(t *testing.T) {
	var out bytes.Buffer
	u := New(strings.NewReader(""), &out, nil, &fakeSink{}, 0, 1)

	if err := u.Write(regData, uint64('A'), 1); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if out.String() != "A" {
		t.Errorf("output = %q, want %q", out.String(), "A")
	}
}

func TestReadStatusTxAlwaysReady(t *testing.T) {
	u := New(strings.NewReader(""), &bytes.Buffer{}, nil, &fakeSink{}, 0, 1)
	v, err := u.Read(regStatus, 1)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if v&statusTxReady == 0 {
		t.Error("expected TX-ready bit always set")
	}
	if v&statusRxReady != 0 {
		t.Error("expected RX-ready bit clear with no input available")
	}
}

func TestPollReceivesByteAndSetsRxReady(t *testing.T) {
	u := New(strings.NewReader("Z"), &bytes.Buffer{}, nil, &fakeSink{}, 0, 1)
	u.Poll()

	v, err := u.Read(regStatus, 1)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if v&statusRxReady == 0 {
		t.Error("expected RX-ready after Poll received a byte")
	}

	data, err := u.Read(regData, 1)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if data != uint64('Z') {
		t.Errorf("regData = %v, want 'Z'", data)
	}
}

func TestReadDataClearsRxReady(t *testing.T) {
	u := New(strings.NewReader("X"), &bytes.Buffer{}, nil, &fakeSink{}, 0, 1)
	u.Poll()
	u.Read(regData, 1)

	v, _ := u.Read(regStatus, 1)
	if v&statusRxReady != 0 {
		t.Error("expected RX-ready to clear after reading regData")
	}
}

func TestPollSignalsIRQWhenEnabled(t *testing.T) {
	sink := &fakeSink{}
	u := New(strings.NewReader("Q"), &bytes.Buffer{}, nil, sink, 2, 5)
	if err := u.Write(regIER, statusRxReady, 1); err != nil {
		t.Fatalf("Write IER: %v", err)
	}
	u.Poll()

	if len(sink.signaled) != 1 || sink.signaled[0] != 5 {
		t.Errorf("signaled = %v, want [5]", sink.signaled)
	}
}

func TestPollDoesNotSignalIRQWhenDisabled(t *testing.T) {
	sink := &fakeSink{}
	u := New(strings.NewReader("Q"), &bytes.Buffer{}, nil, sink, 2, 5)
	u.Poll()

	if len(sink.signaled) != 0 {
		t.Errorf("signaled = %v, want no interrupts with IER disabled", sink.signaled)
	}
}

func TestPollWithNoInputIsANoOp(t *testing.T) {
	u := New(strings.NewReader(""), &bytes.Buffer{}, nil, &fakeSink{}, 0, 1)
	u.Poll()

	v, _ := u.Read(regStatus, 1)
	if v&statusRxReady != 0 {
		t.Error("expected no RX-ready with an empty input stream")
	}
}

func TestUnsupportedWidthRejected(t *testing.T) {
	u := New(strings.NewReader(""), &bytes.Buffer{}, nil, &fakeSink{}, 0, 1)
	if _, err := u.Read(regData, 4); err == nil {
		t.Error("expected an error for a non-byte read width")
	}
	if err := u.Write(regData, 0, 2); err == nil {
		t.Error("expected an error for a non-byte write width")
	}
}

func TestUnmappedOffsetRejected(t *testing.T) {
	u := New(strings.NewReader(""), &bytes.Buffer{}, nil, &fakeSink{}, 0, 1)
	if _, err := u.Read(0xff, 1); err == nil {
		t.Error("expected an error reading an unmapped offset")
	}
	if err := u.Write(0xff, 0, 1); err == nil {
		t.Error("expected an error writing an unmapped offset")
	}
}

func TestResetClearsIERAndRxReady(t *testing.T) {
	u := New(strings.NewReader("A"), &bytes.Buffer{}, nil, &fakeSink{}, 0, 1)
	u.Write(regIER, statusRxReady, 1)
	u.Poll()
	u.Reset()

	v, _ := u.Read(regIER, 1)
	if v != 0 {
		t.Errorf("IER after Reset = %#x, want 0", v)
	}
	status, _ := u.Read(regStatus, 1)
	if status&statusRxReady != 0 {
		t.Error("expected RX-ready cleared after Reset")
	}
}

func TestShutdownFlushesOutput(t *testing.T) {
	var out bytes.Buffer
	u := New(strings.NewReader(""), &out, nil, &fakeSink{}, 0, 1)
	u.Write(regData, uint64('Y'), 1)
	u.Shutdown()
	if out.String() != "Y" {
		t.Errorf("output after Shutdown = %q, want %q", out.String(), "Y")
	}
}
