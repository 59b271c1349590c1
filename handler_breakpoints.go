package gdbstub

import (
	"github.com/kumargu/gdbstub/internal/commands"
	"github.com/kumargu/gdbstub/internal/proto"
	"github.com/kumargu/gdbstub/target"
)

// handleBreakpoint dispatches z/Z, grounded on
// original_source/src/gdbstub_impl/ext/breakpoints.rs: an absent
// sub-capability is silently Handled with no payload, a false add/remove
// result is EINVAL (0x16), true is OK.
func (s *Session) handleBreakpoint(cmd commands.Command, w *proto.Writer) (handlerStatus, error) {
	bp, ok := s.target.Breakpoints()
	if !ok {
		return handled, nil
	}

	addr, err := s.decodeAddr(cmd.AddrBytes)
	if err != nil {
		return handlerStatus{}, err
	}
	if !s.arch.BreakpointKindFromUsize(cmd.BreakpointKind) {
		return handlerStatus{}, &TargetMismatchError{Detail: "breakpoint kind is not valid for this architecture"}
	}

	remove := cmd.Name == commands.Namez

	supported, ok2, err2 := dispatchBreakpointOp(bp, cmd.BreakpointType, addr, cmd.BreakpointKind, remove)
	if !supported {
		return handled, nil
	}
	if err2 != nil {
		return handlerStatus{}, wrapTargetErr(err2)
	}
	if !ok2 {
		return handlerStatus{}, &NonFatalError{Code: 0x16}
	}

	if remove {
		delete(s.bpByAddr, addr)
	} else if err := s.registerBreakpointBytecode(addr, cmd); err != nil {
		return handlerStatus{}, err
	}

	return needsOK, nil
}

// dispatchBreakpointOp fans the z/Z "type" field out to the right
// sub-capability, reporting supported=false when the target implements
// Breakpoints but not the specific sub-capability this type needs.
func dispatchBreakpointOp(bp target.Breakpoints, typ int, addr, kind uint64, remove bool) (supported, ok bool, err error) {
	switch typ {
	case 0:
		sw, has := bp.SWBreakpoints()
		if !has {
			return false, false, nil
		}
		if remove {
			ok, err = sw.RemoveSWBreakpoint(addr, kind)
		} else {
			ok, err = sw.AddSWBreakpoint(addr, kind)
		}
		return true, ok, err
	case 1:
		hw, has := bp.HWBreakpoints()
		if !has {
			return false, false, nil
		}
		if remove {
			ok, err = hw.RemoveHWBreakpoint(addr, kind)
		} else {
			ok, err = hw.AddHWBreakpoint(addr, kind)
		}
		return true, ok, err
	case 2, 3, 4:
		wp, has := bp.HWWatchpoints()
		if !has {
			return false, false, nil
		}
		wk := watchKindFromType(typ)
		if remove {
			ok, err = wp.RemoveHWWatchpoint(addr, wk)
		} else {
			ok, err = wp.AddHWWatchpoint(addr, wk)
		}
		return true, ok, err
	default:
		return false, false, nil
	}
}

func watchKindFromType(typ int) target.WatchKind {
	switch typ {
	case 2:
		return target.WatchWrite
	case 3:
		return target.WatchRead
	default:
		return target.WatchReadWrite
	}
}

// registerBreakpointBytecode hands a Z packet's cond_list/cmd_list entries
// to the breakpoint agent, recording the ids finishVCont needs to
// re-evaluate them on a hit.
func (s *Session) registerBreakpointBytecode(addr uint64, cmd commands.Command) error {
	if len(cmd.CondBytecode) == 0 && len(cmd.CmdBytecode) == 0 {
		return nil
	}
	bp, ok := s.target.Breakpoints()
	if !ok {
		return nil
	}
	agent, ok := bp.Agent()
	if !ok {
		return nil
	}

	var entries []bpBytecode
	for _, prog := range cmd.CondBytecode {
		id, err := agent.RegisterBytecode(addr, target.BytecodeCondition, prog)
		if err != nil {
			return &TargetError{Err: err}
		}
		entries = append(entries, bpBytecode{kind: target.BytecodeCondition, id: id})
	}
	for _, prog := range cmd.CmdBytecode {
		id, err := agent.RegisterBytecode(addr, target.BytecodeCommand, prog)
		if err != nil {
			return &TargetError{Err: err}
		}
		entries = append(entries, bpBytecode{kind: target.BytecodeCommand, id: id})
	}
	s.bpByAddr[addr] = entries
	return nil
}
