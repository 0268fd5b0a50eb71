/*
 * AXP-CORE - FP-operate function-code constants.
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

package cpu

// Opcode 0x14 (VAX FLTV) function codes.
const (
	vaxFAdd   uint16 = 0x080
	vaxFSub   uint16 = 0x0a0
	vaxFMul   uint16 = 0x0c0
	vaxFDiv   uint16 = 0x0e0
	vaxGAdd   uint16 = 0x480
	vaxGSub   uint16 = 0x4a0
	vaxGMul   uint16 = 0x4c0
	vaxGDiv   uint16 = 0x4e0
	vaxCvtdg  uint16 = 0x09e
	vaxCvtgf  uint16 = 0x0ac
	vaxCvtgd  uint16 = 0x0ad
	vaxCvtgq  uint16 = 0x0af
	vaxCvtqf  uint16 = 0x0bc
	vaxCvtqg  uint16 = 0x0be
	vaxCmpgeq uint16 = 0x0a5
	vaxCmpglt uint16 = 0x0a6
	vaxCmpgle uint16 = 0x0a7
)

// Opcode 0x16 (IEEE FLTI) function codes beyond the four arithmetic ops
// already wired.
const (
	ieeeCvtqs  uint16 = 0x0bc
	ieeeCvtqt  uint16 = 0x0be
	ieeeCvtts  uint16 = 0x0ac
	ieeeCvtst  uint16 = 0x09e
	ieeeCvttq  uint16 = 0x09f
	ieeeCmpteq uint16 = 0x5a5
	ieeeCmptlt uint16 = 0x5a6
	ieeeCmptle uint16 = 0x5a7
	ieeeCmptun uint16 = 0x5a4
)

// Opcode 0x17 (FLTL) function codes beyond CVTLQ/CVTQL.
const (
	fltlCpys    uint16 = 0x120
	fltlCpysn   uint16 = 0x121
	fltlCpyse   uint16 = 0x122
	fltlMtFpcr  uint16 = 0x024
	fltlMfFpcr  uint16 = 0x025
	fltlFcmoveq uint16 = 0x02a
	fltlFcmovne uint16 = 0x02b
	fltlFcmovlt uint16 = 0x02c
	fltlFcmovge uint16 = 0x02d
	fltlFcmovle uint16 = 0x02e
	fltlFcmovgt uint16 = 0x02f
)
