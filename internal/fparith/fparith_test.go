/*
 * AXP-CORE - Floating point conversion test cases.
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

package fparith

import (
	"math"
	"testing"
)

func TestIEEESRoundTrip(t *testing.T) {
	bits := Float64ToIEEES(3.5)
	got := IEEESToFloat64(bits)
	if got != 3.5 {
		t.Errorf("IEEES round trip = %v, want 3.5", got)
	}
}

func TestIEEETRoundTrip(t *testing.T) {
	v := 1.0 / 3.0
	bits := Float64ToIEEET(v)
	got := IEEETToFloat64(bits)
	if got != v {
		t.Errorf("IEEET round trip = %v, want %v", got, v)
	}
}

func TestIEEETBitIdentical(t *testing.T) {
	bits := uint64(0x3ff0000000000000) // 1.0
	if got := IEEETToFloat64(bits); got != 1.0 {
		t.Errorf("IEEETToFloat64(%#x) = %v, want 1.0", bits, got)
	}
}

func TestVAXFRoundTrip(t *testing.T) {
	for _, v := range []float64{1.0, -2.5, 100.25, 0.125} {
		bits := Float64ToVAXF(v)
		got := VAXFToFloat64(bits)
		if math.Abs(got-v) > 1e-5 {
			t.Errorf("VAXF round trip of %v = %v", v, got)
		}
	}
}

func TestVAXFZero(t *testing.T) {
	if got := VAXFToFloat64(0); got != 0 {
		t.Errorf("VAXFToFloat64(0) = %v, want 0", got)
	}
	if got := Float64ToVAXF(0); got != 0 {
		t.Errorf("Float64ToVAXF(0) = %#x, want 0", got)
	}
}

func TestVAXGRoundTrip(t *testing.T) {
	for _, v := range []float64{1.0, -7.5, 1234.5} {
		bits := Float64ToVAXG(v)
		got := VAXGToFloat64(bits)
		if math.Abs(got-v) > 1e-9 {
			t.Errorf("VAXG round trip of %v = %v", v, got)
		}
	}
}

func TestVAXDRoundTrip(t *testing.T) {
	for _, v := range []float64{1.0, -3.25, 42.0} {
		bits := Float64ToVAXD(v)
		got := VAXDToFloat64(bits)
		if math.Abs(got-v) > 1e-9 {
			t.Errorf("VAXD round trip of %v = %v", v, got)
		}
	}
}

func TestResolveRoundStaticModes(t *testing.T) {
	tests := []struct {
		field uint8
		want  Round
	}{
		{0, RoundChopped},
		{1, RoundMinusInf},
		{2, RoundNearestEven},
	}
	for _, tt := range tests {
		if got := ResolveRound(tt.field, 0); got != tt.want {
			t.Errorf("ResolveRound(%d, _) = %v, want %v", tt.field, got, tt.want)
		}
	}
}

func TestResolveRoundDynamic(t *testing.T) {
	if got := ResolveRound(3, uint8(RoundMinusInf)); got != RoundMinusInf {
		t.Errorf("ResolveRound(3, dynamic=RoundMinusInf) = %v, want RoundMinusInf", got)
	}
}

func TestOpDetectsInvalidOnNaN(t *testing.T) {
	_, exc := Op(RoundNearestEven, math.NaN(), 1.0, func(a, b float64) float64 { return a + b })
	if exc&ExcInvalid == 0 {
		t.Error("expected ExcInvalid for a NaN result")
	}
}

func TestOpDetectsOverflow(t *testing.T) {
	_, exc := Op(RoundNearestEven, math.MaxFloat64, math.MaxFloat64, func(a, b float64) float64 { return a + b })
	if exc&ExcOverflow == 0 {
		t.Error("expected ExcOverflow when the result goes to infinity")
	}
}

func TestOpDetectsDivByZero(t *testing.T) {
	_, exc := Op(RoundNearestEven, 1.0, 0.0, func(a, b float64) float64 { return a / b })
	if exc&ExcDivZero == 0 {
		t.Error("expected ExcDivZero for a division by zero")
	}
}

func TestOpNoExceptionOnExactResult(t *testing.T) {
	result, exc := Op(RoundNearestEven, 2.0, 3.0, func(a, b float64) float64 { return a + b })
	if result != 5.0 {
		t.Errorf("result = %v, want 5.0", result)
	}
	if exc != 0 {
		t.Errorf("exc = %v, want 0 for an exact result", exc)
	}
}

func TestSyndromePacksOperandTag(t *testing.T) {
	s := Syndrome(ExcInvalid|ExcOverflow, 5)
	if s&0x1f != uint64(ExcInvalid|ExcOverflow) {
		t.Errorf("low bits = %#x, want exception bits", s&0x1f)
	}
	if (s>>5)&0x7 != 5 {
		t.Errorf("operand tag = %d, want 5", (s>>5)&0x7)
	}
}

func TestCanonicalCompareResult(t *testing.T) {
	if got := CanonicalCompareResult(true); got != 0x4000000000000000 {
		t.Errorf("true -> %#x, want 0x4000000000000000", got)
	}
	if got := CanonicalCompareResult(false); got != 0 {
		t.Errorf("false -> %#x, want 0", got)
	}
}
