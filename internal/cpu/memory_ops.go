/*
 * AXP-CORE - Memory-format instruction handlers.
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

import "github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/decode"

func effAddr(c *Core, inst decode.Instruction) uint64 {
	return c.Regs.GetInt(int(inst.Rb)) + uint64(inst.Disp)
}

func opLda(c *Core, inst decode.Instruction) error {
	c.Regs.SetInt(int(inst.Ra), effAddr(c, inst))
	return nil
}

func opLdah(c *Core, inst decode.Instruction) error {
	c.Regs.SetInt(int(inst.Ra), c.Regs.GetInt(int(inst.Rb))+uint64(inst.Disp)<<16)
	return nil
}

func opLdbu(c *Core, inst decode.Instruction) error {
	v, err := c.readMem(effAddr(c, inst), 1)
	if err != nil {
		return err
	}
	c.Regs.SetInt(int(inst.Ra), v)
	return nil
}

func opLdwu(c *Core, inst decode.Instruction) error {
	v, err := c.readMem(effAddr(c, inst), 2)
	if err != nil {
		return err
	}
	c.Regs.SetInt(int(inst.Ra), v)
	return nil
}

func opStb(c *Core, inst decode.Instruction) error {
	return c.writeMem(effAddr(c, inst), c.Regs.GetInt(int(inst.Ra)), 1)
}

func opStw(c *Core, inst decode.Instruction) error {
	return c.writeMem(effAddr(c, inst), c.Regs.GetInt(int(inst.Ra)), 2)
}

func opLdqU(c *Core, inst decode.Instruction) error {
	addr := effAddr(c, inst) &^ 7
	v, err := c.readMem(addr, 8)
	if err != nil {
		return err
	}
	c.Regs.SetInt(int(inst.Ra), v)
	return nil
}

func opStqU(c *Core, inst decode.Instruction) error {
	addr := effAddr(c, inst) &^ 7
	return c.writeMem(addr, c.Regs.GetInt(int(inst.Ra)), 8)
}

func opLdl(c *Core, inst decode.Instruction) error {
	v, err := c.readMem(effAddr(c, inst), 4)
	if err != nil {
		return err
	}
	c.Regs.SetInt(int(inst.Ra), uint64(int64(int32(v))))
	return nil
}

func opLdq(c *Core, inst decode.Instruction) error {
	v, err := c.readMem(effAddr(c, inst), 8)
	if err != nil {
		return err
	}
	c.Regs.SetInt(int(inst.Ra), v)
	return nil
}

func opStl(c *Core, inst decode.Instruction) error {
	return c.writeMem(effAddr(c, inst), c.Regs.GetInt(int(inst.Ra)), 4)
}

func opStq(c *Core, inst decode.Instruction) error {
	return c.writeMem(effAddr(c, inst), c.Regs.GetInt(int(inst.Ra)), 8)
}

// opLdlL and opLdqL are load-locked: they load normally and install a
// reservation over the accessed range (spec section 3).
func opLdlL(c *Core, inst decode.Instruction) error {
	addr := effAddr(c, inst)
	v, err := c.readMem(addr, 4)
	if err != nil {
		return err
	}
	c.Regs.SetInt(int(inst.Ra), uint64(int64(int32(v))))
	c.LLSC.LoadLocked(addr, 4)
	return nil
}

func opLdqL(c *Core, inst decode.Instruction) error {
	addr := effAddr(c, inst)
	v, err := c.readMem(addr, 8)
	if err != nil {
		return err
	}
	c.Regs.SetInt(int(inst.Ra), v)
	c.LLSC.LoadLocked(addr, 8)
	return nil
}

// opStlC and opStqC are store-conditional: the store happens only if
// the reservation is still valid, and Ra is set to 1 on success, 0 on
// failure (spec section 3).
func opStlC(c *Core, inst decode.Instruction) error {
	addr := effAddr(c, inst)
	ok := c.LLSC.StoreConditional(addr, 4)
	if ok {
		if err := c.writeMem(addr, c.Regs.GetInt(int(inst.Ra)), 4); err != nil {
			return err
		}
	}
	c.Regs.SetInt(int(inst.Ra), boolToUint64(ok))
	return nil
}

func opStqC(c *Core, inst decode.Instruction) error {
	addr := effAddr(c, inst)
	ok := c.LLSC.StoreConditional(addr, 8)
	if ok {
		if err := c.writeMem(addr, c.Regs.GetInt(int(inst.Ra)), 8); err != nil {
			return err
		}
	}
	c.Regs.SetInt(int(inst.Ra), boolToUint64(ok))
	return nil
}

func boolToUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
