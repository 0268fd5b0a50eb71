/*
 * AXP-CORE - Memory image loader.
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

// Package loader reads a memory image file into physical RAM (spec
// section 6, LoadBinary). It supports a raw binary blob loaded at a
// base address and the Intel HEX text format, following the teacher's
// util/tape and util/card convention of an os.File-backed reader that
// does its own framing rather than delegating to a third-party image
// library (no ecosystem Intel-HEX library is imported anywhere in the
// example corpus).
package loader

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
)

// Target is where loaded bytes are written; satisfied by
// internal/memmap.Physical's RawWrite.
type Target interface {
	RawWrite(addr uint64, data []byte) error
}

// LoadBinary copies the entire contents of path into physical memory
// starting at base, with no framing or interpretation.
func LoadBinary(path string, base uint64, t Target) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("loader: %w", err)
	}
	if err := t.RawWrite(base, data); err != nil {
		return fmt.Errorf("loader: %w", err)
	}
	return nil
}

// Intel HEX record types.
const (
	recData                 = 0x00
	recEndOfFile            = 0x01
	recExtendedSegmentAddr  = 0x02
	recExtendedLinearAddr   = 0x04
	recStartLinearAddr      = 0x05
)

var errBadRecord = errors.New("loader: malformed Intel HEX record")

// LoadIntelHex parses an Intel HEX text file and writes its data
// records into physical memory. Record types other than data,
// end-of-file, and the two segment/linear address extensions are
// skipped without a message, per spec section 6's tolerance for an unknown
// image format detail not halting the load.
func LoadIntelHex(path string, t Target) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("loader: %w", err)
	}
	defer f.Close()

	var upperAddr uint64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		if line[0] != ':' {
			return fmt.Errorf("%w: missing ':' marker", errBadRecord)
		}
		raw, err := hex.DecodeString(line[1:])
		if err != nil || len(raw) < 5 {
			return fmt.Errorf("%w: %v", errBadRecord, err)
		}

		count := int(raw[0])
		addr := uint64(raw[1])<<8 | uint64(raw[2])
		recType := raw[3]
		if len(raw) < 5+count {
			return fmt.Errorf("%w: short payload", errBadRecord)
		}
		payload := raw[4 : 4+count]

		switch recType {
		case recData:
			if err := t.RawWrite(upperAddr+addr, payload); err != nil {
				return fmt.Errorf("loader: %w", err)
			}
		case recEndOfFile:
			return nil
		case recExtendedSegmentAddr:
			if len(payload) != 2 {
				return fmt.Errorf("%w: bad segment address record", errBadRecord)
			}
			upperAddr = (uint64(payload[0])<<8 | uint64(payload[1])) << 4
		case recExtendedLinearAddr:
			if len(payload) != 2 {
				return fmt.Errorf("%w: bad linear address record", errBadRecord)
			}
			upperAddr = (uint64(payload[0])<<8 | uint64(payload[1])) << 16
		case recStartLinearAddr:
			// Start address is informational only for this loader.
		default:
			// Unknown record type: skip, matching the unit device
			// convention of tolerating an unrecognized auxiliary
			// record rather than aborting the whole load.
		}
	}
	return scanner.Err()
}
