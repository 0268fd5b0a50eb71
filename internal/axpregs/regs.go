/*
 * AXP-CORE - Per-core register file.
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

// Package axpregs holds the per-core architectural register state: the
// 32 integer and 32 floating-point registers, FPCR, PS, PC and the IPR
// bank. R31 and F31 are hardwired to zero.
package axpregs

// Mode encodes the PS current-mode field.
type Mode uint8

const (
	ModeKernel Mode = 0
	ModeExec   Mode = 1
	ModeSuper  Mode = 2
	ModeUser   Mode = 3
)

// PS bit layout (subset relevant to the CORE).
const (
	psModeShift = 3
	psModeMask  = 0x3
	psIPLShift  = 8
	psIPLMask   = 0x1f
	psIntEnable = 1 << 13
	psPALMode   = 1 << 14
)

// FPCR bit layout, per spec section 3.
const (
	FPCRTrapEnableMask = 0x1f       // bits 0-4
	FPCRStickyShift    = 5          // bits 5-9
	FPCRStickyMask     = 0x1f << 5
	FPCRDynRoundShift  = 58
	FPCRDynRoundMask   = 0x3 << 58
	FPCRSummary        = 1 << 63
)

// Trap-enable bits within FPCRTrapEnableMask (bit position within the low 5).
const (
	TrapInvalid = 1 << iota
	TrapDivZero
	TrapOverflow
	TrapUnderflow
	TrapInexact
)

// IPR indexes into the IPR bank. Supplemented per SPEC_FULL.md section 13:
// the spec names PTBR, ASN, EXC_SUM, MM_STAT, MM_FAULT_ADDR and WHAMI but
// never enumerates the full set a boot needs, so the stack-pointer and
// PAL_BASE slots below are added to round out what SRM/PALcode reads.
type IPR int

const (
	IPRPTBR IPR = iota
	IPRASN
	IPRExcSum
	IPRMMStat
	IPRMMFaultAddr
	IPRPALBase
	IPRKSP
	IPRESP
	IPRSSP
	IPRUSP
	IPRWhami
	IPRCycleCounter
	IPRVPTB     // virtual page table base, set by Wrvptptr.
	IPRExcAddr  // saved PC on exception/interrupt/CALL_PAL entry, restored by Rti.
	IPRSavedPS  // saved PS on exception/interrupt/CALL_PAL entry, restored by Rti.
	iprCount
)

// File is the complete architectural register state of one core.
type File struct {
	Int [32]uint64 // Integer registers, R31 hardwired zero.
	FP  [32]uint64 // Floating-point registers as raw bit patterns, F31 zero.
	FPCR uint64
	PS   uint64
	PC   uint64
	IPRs [iprCount]uint64
}

// GetInt reads integer register r; R31 always reads zero.
func (f *File) GetInt(r int) uint64 {
	if r == 31 {
		return 0
	}
	return f.Int[r]
}

// SetInt writes integer register r; writes to R31 are silently discarded.
func (f *File) SetInt(r int, v uint64) {
	if r == 31 {
		return
	}
	f.Int[r] = v
}

// GetFP reads floating-point register r as a raw bit pattern; F31 is zero.
func (f *File) GetFP(r int) uint64 {
	if r == 31 {
		return 0
	}
	return f.FP[r]
}

// SetFP writes floating-point register r; writes to F31 are discarded.
func (f *File) SetFP(r int, v uint64) {
	if r == 31 {
		return
	}
	f.FP[r] = v
}

// SetPC stores a new PC value, forced to longword (instruction)
// alignment.
func (f *File) SetPC(pc uint64) {
	f.PC = pc &^ 0x3
}

// Mode returns the current-mode field of PS.
func (f *File) Mode() Mode {
	return Mode((f.PS >> psModeShift) & psModeMask)
}

// SetMode updates the current-mode field of PS.
func (f *File) SetMode(m Mode) {
	f.PS &^= psModeMask << psModeShift
	f.PS |= uint64(m&psModeMask) << psModeShift
}

// IPL returns the current interrupt priority level.
func (f *File) IPL() int {
	return int((f.PS >> psIPLShift) & psIPLMask)
}

// SetIPL updates the interrupt priority level field of PS.
func (f *File) SetIPL(ipl int) {
	f.PS &^= uint64(psIPLMask) << psIPLShift
	f.PS |= uint64(ipl&psIPLMask) << psIPLShift
}

// InterruptsEnabled reports the PS interrupt-enable bit.
func (f *File) InterruptsEnabled() bool {
	return f.PS&psIntEnable != 0
}

// SetInterruptsEnabled sets or clears the PS interrupt-enable bit.
func (f *File) SetInterruptsEnabled(enabled bool) {
	if enabled {
		f.PS |= psIntEnable
	} else {
		f.PS &^= psIntEnable
	}
}

// InPALMode reports whether the core is currently executing PALcode.
func (f *File) InPALMode() bool {
	return f.PS&psPALMode != 0
}

// SetPALMode sets or clears the PAL-mode bit of PS.
func (f *File) SetPALMode(pal bool) {
	if pal {
		f.PS |= psPALMode
	} else {
		f.PS &^= psPALMode
	}
}

// GetIPR reads an internal processor register.
func (f *File) GetIPR(i IPR) uint64 {
	return f.IPRs[i]
}

// SetIPR writes an internal processor register.
func (f *File) SetIPR(i IPR, v uint64) {
	f.IPRs[i] = v
}

// FPCRTrapEnabled reports whether FPCR has the given trap type enabled.
func (f *File) FPCRTrapEnabled(bit uint64) bool {
	return f.FPCR&bit != 0
}

// FPCRSetSticky ORs sticky-flag bits into FPCR.
func (f *File) FPCRSetSticky(bits uint64) {
	f.FPCR |= (bits << FPCRStickyShift) & FPCRStickyMask
	f.FPCR |= FPCRSummary
}

// FPCRDynamicRoundingMode returns the two-bit dynamic rounding mode field.
func (f *File) FPCRDynamicRoundingMode() uint8 {
	return uint8((f.FPCR & FPCRDynRoundMask) >> FPCRDynRoundShift)
}

// Reset restores a core's architectural state to power-up defaults.
func (f *File) Reset() {
	*f = File{}
}
