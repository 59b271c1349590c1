package main

import (
	"strings"

	"github.com/kumargu/gdbstub/target"
	"golang.org/x/arch/x86/x86asm"
)

// x86Arch describes the 64-bit register file the stack machine exposes to
// gdb: the 16 general-purpose registers plus rip, in gdb_serialize order,
// named and sized from x86asm.Reg the same way Delve's gdbRegisters.Get maps
// sub-register aliases (al/ax/eax/rax) onto one backing store. x86asm has no
// constant for eflags, so it is appended by hand after the general-purpose
// block, followed by the x86asm-named segment selectors.
type x86Arch struct{}

// gpOrder is the gdb_serialize order for x86-64: rax, rbx, rcx, rdx, rsi,
// rdi, rbp, rsp, r8-r15, rip. This is the order GDB's own i386:x86-64 target
// description uses, not x86asm's declaration order.
var gpOrder = []x86asm.Reg{
	x86asm.RAX, x86asm.RBX, x86asm.RCX, x86asm.RDX,
	x86asm.RSI, x86asm.RDI, x86asm.RBP, x86asm.RSP,
	x86asm.R8, x86asm.R9, x86asm.R10, x86asm.R11,
	x86asm.R12, x86asm.R13, x86asm.R14, x86asm.R15,
	x86asm.RIP,
}

var segOrder = []x86asm.Reg{x86asm.CS, x86asm.SS, x86asm.DS, x86asm.ES, x86asm.FS, x86asm.GS}

var registerLayout = buildRegisterLayout()

func buildRegisterLayout() []target.RegisterInfo {
	regs := make([]target.RegisterInfo, 0, len(gpOrder)+1+len(segOrder))
	for _, r := range gpOrder {
		regs = append(regs, target.RegisterInfo{Name: strings.ToLower(r.String()), Size: 8})
	}
	regs = append(regs, target.RegisterInfo{Name: "eflags", Size: 4})
	for _, r := range segOrder {
		regs = append(regs, target.RegisterInfo{Name: strings.ToLower(r.String()), Size: 4})
	}
	return regs
}

// ripIndex is registerLayout's index for rip, the last entry in gpOrder.
var ripIndex = len(gpOrder) - 1

func registerOffset(n int) int {
	off := 0
	for i := 0; i < n; i++ {
		off += registerLayout[i].Size
	}
	return off
}

func (x86Arch) AddrFromBEBytes(b []byte) (uint64, bool) {
	if len(b) != 8 {
		return 0, false
	}
	var addr uint64
	for _, c := range b {
		addr = addr<<8 | uint64(c)
	}
	return addr, true
}

func (x86Arch) AddrWidth() int { return 8 }

// BreakpointKindFromUsize accepts only kind 1: the single-byte 0xCC
// encoding this target's software breakpoints use.
func (x86Arch) BreakpointKindFromUsize(kind uint64) bool { return kind == 1 }

func (x86Arch) Registers() []target.RegisterInfo { return registerLayout }

func (x86Arch) TargetDescriptionXML() (string, bool) { return x86TargetXML, true }

const x86TargetXML = `<?xml version="1.0"?>
<!DOCTYPE target SYSTEM "gdb-target.dtd">
<target>
  <architecture>i386:x86-64</architecture>
  <feature name="org.gnu.gdb.i386.core">
    <reg name="rax" bitsize="64"/>
    <reg name="rbx" bitsize="64"/>
    <reg name="rcx" bitsize="64"/>
    <reg name="rdx" bitsize="64"/>
    <reg name="rsi" bitsize="64"/>
    <reg name="rdi" bitsize="64"/>
    <reg name="rbp" bitsize="64"/>
    <reg name="rsp" bitsize="64"/>
    <reg name="r8" bitsize="64"/>
    <reg name="r9" bitsize="64"/>
    <reg name="r10" bitsize="64"/>
    <reg name="r11" bitsize="64"/>
    <reg name="r12" bitsize="64"/>
    <reg name="r13" bitsize="64"/>
    <reg name="r14" bitsize="64"/>
    <reg name="r15" bitsize="64"/>
    <reg name="rip" bitsize="64" type="code_ptr"/>
    <reg name="eflags" bitsize="32" type="i386_eflags"/>
    <reg name="cs" bitsize="32" type="int32"/>
    <reg name="ss" bitsize="32" type="int32"/>
    <reg name="ds" bitsize="32" type="int32"/>
    <reg name="es" bitsize="32" type="int32"/>
    <reg name="fs" bitsize="32" type="int32"/>
    <reg name="gs" bitsize="32" type="int32"/>
  </feature>
</target>
`
