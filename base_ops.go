package gdbstub

import "github.com/kumargu/gdbstub/target"

// The helpers in this file fan a single memory/register operation out to
// whichever of SingleThreadBase/MultiThreadBase the target implements,
// threading current_mem_tid through on the multi-threaded path. Grounded on
// original_source/src/gdbstub_impl/ext/base.rs's repeated
// "match target.base_ops() { SingleThread(..) => .., MultiThread(..) => .. }"
// shape.

func (s *Session) readAllRegisters(dst []byte) error {
	switch b := s.target.Base().(type) {
	case target.SingleThreadBase:
		return wrapTargetErr(b.ReadRegisters(dst))
	case target.MultiThreadBase:
		return wrapTargetErr(b.ReadRegisters(dst, s.currentMemTid))
	default:
		panic("gdbstub: target.Base() must return a SingleThreadBase or MultiThreadBase")
	}
}

func (s *Session) writeAllRegisters(src []byte) error {
	switch b := s.target.Base().(type) {
	case target.SingleThreadBase:
		return wrapTargetErr(b.WriteRegisters(src))
	case target.MultiThreadBase:
		return wrapTargetErr(b.WriteRegisters(src, s.currentMemTid))
	default:
		panic("gdbstub: target.Base() must return a SingleThreadBase or MultiThreadBase")
	}
}

func (s *Session) readOneRegister(regNum int, dst []byte) error {
	switch b := s.target.Base().(type) {
	case target.SingleThreadBase:
		return wrapTargetErr(b.ReadRegister(regNum, dst))
	case target.MultiThreadBase:
		return wrapTargetErr(b.ReadRegister(regNum, dst, s.currentMemTid))
	default:
		panic("gdbstub: target.Base() must return a SingleThreadBase or MultiThreadBase")
	}
}

func (s *Session) writeOneRegister(regNum int, val []byte) error {
	switch b := s.target.Base().(type) {
	case target.SingleThreadBase:
		return wrapTargetErr(b.WriteRegister(regNum, val))
	case target.MultiThreadBase:
		return wrapTargetErr(b.WriteRegister(regNum, val, s.currentMemTid))
	default:
		panic("gdbstub: target.Base() must return a SingleThreadBase or MultiThreadBase")
	}
}

func (s *Session) readAddrs(addr uint64, data []byte) error {
	switch b := s.target.Base().(type) {
	case target.SingleThreadBase:
		return wrapTargetErr(b.ReadAddrs(addr, data))
	case target.MultiThreadBase:
		return wrapTargetErr(b.ReadAddrs(addr, data, s.currentMemTid))
	default:
		panic("gdbstub: target.Base() must return a SingleThreadBase or MultiThreadBase")
	}
}

func (s *Session) writeAddrs(addr uint64, data []byte) error {
	switch b := s.target.Base().(type) {
	case target.SingleThreadBase:
		return wrapTargetErr(b.WriteAddrs(addr, data))
	case target.MultiThreadBase:
		return wrapTargetErr(b.WriteAddrs(addr, data, s.currentMemTid))
	default:
		panic("gdbstub: target.Base() must return a SingleThreadBase or MultiThreadBase")
	}
}

// wrapTargetErr lets a target implementation signal a non-fatal condition
// by returning a *NonFatalError directly; anything else is wrapped as fatal,
// matching the handle_error() adaptor in original_source.
func wrapTargetErr(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*NonFatalError); ok {
		return err
	}
	return &TargetError{Err: err}
}
