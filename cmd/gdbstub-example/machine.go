package main

import (
	"context"
	"fmt"

	"github.com/kumargu/gdbstub/target"
)

// opHalt is the single opcode this toy machine understands beyond "advance
// rip by one": every other byte is executed as a no-op. The instruction set
// is deliberately minimal — the resume loop, breakpoint re-entry and
// register/memory wiring are what this example exists to exercise, not
// instruction-level x86 fidelity.
const opHalt = 0xF4

// Machine is a toy single-threaded stack machine: flat memory, an x86-64
// shaped register file (named via x86Arch), and classic 0xCC software
// breakpoints. Grounded on aykevl-emculator's Machine (ReadRegister,
// ReadMemory, SetBreakpoint, run/halt) generalized from its cgo-wrapped
// Cortex-M core onto a pure-Go stand-in driven entirely through the
// target.SingleThreadBase contract.
type Machine struct {
	target.SingleThreadMarker

	mem  []byte
	regs []byte

	halted bool

	swBreaks map[uint64]byte

	// resumingFromBreak/breakAddr let Resume step over a planted 0xCC once
	// before re-checking it, so continuing past a breakpoint doesn't just
	// report the same stop forever.
	resumingFromBreak bool
	breakAddr         uint64
}

// NewMachine allocates a machine with memSize bytes of flat memory.
func NewMachine(memSize int) *Machine {
	return &Machine{
		mem:      make([]byte, memSize),
		regs:     make([]byte, registerOffset(len(registerLayout))),
		swBreaks: make(map[uint64]byte),
	}
}

// LoadProgram copies prog into memory starting at addr and points rip at it.
func (m *Machine) LoadProgram(addr uint64, prog []byte) {
	copy(m.mem[addr:], prog)
	m.setRip(addr)
}

func (m *Machine) Base() target.Base { return m }

func (m *Machine) Breakpoints() (target.Breakpoints, bool)      { return machineBreakpoints{m}, true }
func (m *Machine) ExtendedMode() (target.ExtendedMode, bool)     { return nil, false }
func (m *Machine) MonitorCmd() (target.MonitorCmd, bool)         { return m, true }
func (m *Machine) SectionOffsets() (target.SectionOffsets, bool) { return nil, false }
func (m *Machine) Agent() (target.Agent, bool)                   { return nil, false }

// machineBreakpoints is the target.Breakpoints view onto Machine, kept as a
// separate type because target.Target.Agent and target.Breakpoints.Agent
// have different signatures and can't both be methods of Machine itself.
type machineBreakpoints struct{ m *Machine }

func (b machineBreakpoints) SWBreakpoints() (target.SWBreakpoints, bool) { return b.m, true }
func (b machineBreakpoints) HWBreakpoints() (target.HWBreakpoints, bool) { return nil, false }
func (b machineBreakpoints) HWWatchpoints() (target.HWWatchpoints, bool) { return nil, false }
func (b machineBreakpoints) Agent() (target.BreakpointAgent, bool)       { return nil, false }

func (m *Machine) rip() uint64 {
	return leUint64(m.regs[registerOffset(ripIndex):])
}

func (m *Machine) setRip(v uint64) {
	putLeUint64(m.regs[registerOffset(ripIndex):], v)
}

func leUint64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func putLeUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v)
		v >>= 8
	}
}

func (m *Machine) ReadRegisters(dst []byte) error {
	if len(dst) != len(m.regs) {
		return fmt.Errorf("register buffer size mismatch: got %d want %d", len(dst), len(m.regs))
	}
	copy(dst, m.regs)
	return nil
}

func (m *Machine) WriteRegisters(src []byte) error {
	if len(src) != len(m.regs) {
		return fmt.Errorf("register buffer size mismatch: got %d want %d", len(src), len(m.regs))
	}
	copy(m.regs, src)
	return nil
}

func (m *Machine) ReadRegister(regID int, dst []byte) error {
	off := registerOffset(regID)
	size := registerLayout[regID].Size
	if len(dst) != size {
		return fmt.Errorf("register %d size mismatch: got %d want %d", regID, len(dst), size)
	}
	copy(dst, m.regs[off:off+size])
	return nil
}

func (m *Machine) WriteRegister(regID int, val []byte) error {
	off := registerOffset(regID)
	size := registerLayout[regID].Size
	if len(val) != size {
		return fmt.Errorf("register %d size mismatch: got %d want %d", regID, len(val), size)
	}
	copy(m.regs[off:off+size], val)
	return nil
}

func (m *Machine) ReadAddrs(addr uint64, data []byte) error {
	if addr+uint64(len(data)) > uint64(len(m.mem)) {
		return fmt.Errorf("read out of bounds: addr=0x%x len=%d", addr, len(data))
	}
	copy(data, m.mem[addr:addr+uint64(len(data))])
	return nil
}

func (m *Machine) WriteAddrs(addr uint64, data []byte) error {
	if addr+uint64(len(data)) > uint64(len(m.mem)) {
		return fmt.Errorf("write out of bounds: addr=0x%x len=%d", addr, len(data))
	}
	copy(m.mem[addr:addr+uint64(len(data))], data)
	return nil
}

// effectiveOpcode returns what would execute at addr if no breakpoint were
// planted there, reading through the saved original byte when one is.
func (m *Machine) effectiveOpcode(addr uint64) byte {
	if orig, planted := m.swBreaks[addr]; planted {
		return orig
	}
	return m.mem[addr]
}

// step runs exactly one instruction, handling the planted-breakpoint
// re-entry described on Machine.
func (m *Machine) step() target.StopReason {
	rip := m.rip()
	if rip >= uint64(len(m.mem)) {
		m.halted = true
		return target.StopReason{Kind: target.StopHalted}
	}

	skipBreakCheck := m.resumingFromBreak && rip == m.breakAddr
	m.resumingFromBreak = false

	if !skipBreakCheck {
		if _, planted := m.swBreaks[rip]; planted {
			m.resumingFromBreak = true
			m.breakAddr = rip
			return target.StopReason{Kind: target.StopSwBreak, Addr: rip}
		}
	}

	if m.effectiveOpcode(rip) == opHalt {
		m.halted = true
		return target.StopReason{Kind: target.StopHalted}
	}
	m.setRip(rip + 1)
	return target.StopReason{Kind: target.StopDoneStep}
}

func (m *Machine) Resume(ctx context.Context, action target.ResumeAction, interrupt target.InterruptPoll) (target.StopReason, error) {
	if m.halted {
		return target.StopReason{Kind: target.StopHalted}, nil
	}

	switch action.Kind {
	case target.ActionStep, target.ActionStepWithSignal:
		return m.step(), nil
	default:
		for {
			select {
			case <-ctx.Done():
				return target.StopReason{Kind: target.StopGdbInterrupt}, nil
			default:
			}
			if interrupt() {
				return target.StopReason{Kind: target.StopGdbInterrupt}, nil
			}
			sr := m.step()
			if sr.Kind != target.StopDoneStep {
				return sr, nil
			}
		}
	}
}

func (m *Machine) AddSWBreakpoint(addr uint64, kind uint64) (bool, error) {
	if addr >= uint64(len(m.mem)) {
		return false, nil
	}
	if _, exists := m.swBreaks[addr]; exists {
		return true, nil
	}
	m.swBreaks[addr] = m.mem[addr]
	m.mem[addr] = 0xCC
	return true, nil
}

func (m *Machine) RemoveSWBreakpoint(addr uint64, kind uint64) (bool, error) {
	orig, exists := m.swBreaks[addr]
	if !exists {
		return false, nil
	}
	m.mem[addr] = orig
	delete(m.swBreaks, addr)
	return true, nil
}

// HandleCmd implements a tiny qRcmd console: "status" dumps rip and halted
// state, anything else reports as unrecognized. Grounded on
// aykevl-emculator's terminal output habits — plain fmt.Fprintf lines, no
// structured response.
func (m *Machine) HandleCmd(cmd []byte, out target.Console) error {
	switch string(cmd) {
	case "status":
		fmt.Fprintf(out, "rip=0x%x halted=%v breakpoints=%d\n", m.rip(), m.halted, len(m.swBreaks))
	default:
		fmt.Fprintf(out, "unrecognized monitor command: %q\n", cmd)
	}
	return nil
}
