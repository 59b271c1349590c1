package gdbstub

import (
	"strconv"

	"github.com/kumargu/gdbstub/internal/commands"
	"github.com/kumargu/gdbstub/internal/proto"
	"github.com/kumargu/gdbstub/target"
)

// handleBase dispatches the handshake/query and core debugging command
// family, grounded on original_source's handle_base.
func (s *Session) handleBase(cmd commands.Command, w *proto.Writer) (handlerStatus, error) {
	switch cmd.Name {
	case commands.NameQuestionMark:
		w.WriteString("S05")
		return handled, nil
	case commands.NameQSupported:
		return s.handleQSupported(w)
	case commands.NameQStartNoAckMode:
		return needsOK, nil
	case commands.NameQXferFeaturesRead:
		return s.handleQXferFeaturesRead(cmd, w)
	case commands.NameQAttached:
		return s.handleQAttached(cmd, w)
	case commands.NameG:
		return s.handleG(w)
	case commands.NameGUpper:
		return s.handleGUpper(cmd)
	case commands.NameM:
		return s.handleM(cmd, w)
	case commands.NameMUpper:
		return s.handleMUpper(cmd)
	case commands.NameX:
		return s.handleX(cmd)
	case commands.NameP:
		return s.handleP(cmd, w)
	case commands.NamePUpper:
		return s.handlePUpper(cmd)
	case commands.NameH:
		return s.handleH(cmd)
	case commands.NameK:
		return s.handleKillOrVKill(nil)
	case commands.NameVKill:
		pid := cmd.PID
		return s.handleKillOrVKill(&pid)
	case commands.NameD:
		return s.handleD(w)
	case commands.NameQfThreadInfo:
		return s.handleQfThreadInfo(w)
	case commands.NameQsThreadInfo:
		w.WriteString("l")
		return handled, nil
	case commands.NameT:
		return s.handleT(cmd)
	}
	return handled, nil
}

func (s *Session) handleQSupported(w *proto.Writer) (handlerStatus, error) {
	w.WriteString("PacketSize=")
	w.WriteString(strconv.Itoa(len(s.buf)))
	w.WriteString(";vContSupported+;multiprocess+;QStartNoAckMode+")

	if ext, ok := s.target.ExtendedMode(); ok {
		if _, ok := ext.ConfigureASLR(); ok {
			w.WriteString(";QDisableRandomization+")
		}
		if _, ok := ext.ConfigureEnv(); ok {
			w.WriteString(";QEnvironmentHexEncoded+;QEnvironmentUnset+;QEnvironmentReset+")
		}
		if _, ok := ext.ConfigureStartupShell(); ok {
			w.WriteString(";QStartupWithShell+")
		}
		if _, ok := ext.ConfigureWorkingDir(); ok {
			w.WriteString(";QSetWorkingDir+")
		}
	}
	if _, ok := s.target.Agent(); ok {
		w.WriteString(";QAgent+")
	}
	if bp, ok := s.target.Breakpoints(); ok {
		if _, ok := bp.SWBreakpoints(); ok {
			w.WriteString(";swbreak+")
		}
		_, hwBp := bp.HWBreakpoints()
		_, hwWatch := bp.HWWatchpoints()
		if hwBp || hwWatch {
			w.WriteString(";hwbreak+")
		}
		if _, ok := bp.Agent(); ok {
			w.WriteString(";BreakpointCommands+;ConditionalBreakpoints+")
		}
	}
	if _, ok := s.arch.TargetDescriptionXML(); ok {
		w.WriteString(";qXfer:features:read+")
	}
	return handled, nil
}

func (s *Session) handleQXferFeaturesRead(cmd commands.Command, w *proto.Writer) (handlerStatus, error) {
	xml, ok := s.arch.TargetDescriptionXML()
	if !ok {
		// qSupported advertises qXfer:features:read only when the XML
		// exists, so a request for it here was never advertised.
		return handlerStatus{}, &PacketUnexpectedError{
			Command: "qXfer:features:read",
			Reason:  "target has no target description XML",
		}
	}
	data := []byte(xml)
	offset := cmd.Addr
	length := cmd.Length
	switch {
	case offset >= uint64(len(data)):
		w.WriteString("l")
	case offset+length >= uint64(len(data)):
		w.WriteString("l")
		w.Write(data[offset:])
	default:
		w.WriteString("m")
		w.Write(data[offset : offset+length])
	}
	return handled, nil
}

func (s *Session) handleQAttached(cmd commands.Command, w *proto.Writer) (handlerStatus, error) {
	ext, ok := s.target.ExtendedMode()
	if !ok {
		w.WriteString("1")
		return handled, nil
	}
	if cmd.PID < 0 {
		return handlerStatus{}, &PacketUnexpectedError{Command: "qAttached", Reason: "extended mode requires a pid"}
	}
	attached, ok := s.attachedPids[cmd.PID]
	if !ok {
		var err error
		attached, err = ext.QueryIfAttached(cmd.PID)
		if err != nil {
			return handlerStatus{}, err
		}
	}
	if attached {
		w.WriteString("1")
	} else {
		w.WriteString("0")
	}
	return handled, nil
}

func (s *Session) registerBufferSize() int {
	total := 0
	for _, r := range s.arch.Registers() {
		total += r.Size
	}
	return total
}

func (s *Session) handleG(w *proto.Writer) (handlerStatus, error) {
	buf := make([]byte, s.registerBufferSize())
	if err := s.readAllRegisters(buf); err != nil {
		return handlerStatus{}, err
	}
	w.WriteHexBytes(buf)
	return handled, nil
}

func (s *Session) handleGUpper(cmd commands.Command) (handlerStatus, error) {
	if len(cmd.Data) != s.registerBufferSize() {
		return handlerStatus{}, &TargetMismatchError{Detail: "G register payload does not match this architecture's register layout"}
	}
	if err := s.writeAllRegisters(cmd.Data); err != nil {
		return handlerStatus{}, err
	}
	return needsOK, nil
}

func (s *Session) handleP(cmd commands.Command, w *proto.Writer) (handlerStatus, error) {
	regs := s.arch.Registers()
	if cmd.RegNum < 0 || cmd.RegNum >= len(regs) {
		return handlerStatus{}, &NonFatalError{Code: 1}
	}
	dst := make([]byte, regs[cmd.RegNum].Size)
	if err := s.readOneRegister(cmd.RegNum, dst); err != nil {
		return handlerStatus{}, err
	}
	w.WriteHexBytes(dst)
	return handled, nil
}

func (s *Session) handlePUpper(cmd commands.Command) (handlerStatus, error) {
	regs := s.arch.Registers()
	if cmd.RegNum < 0 || cmd.RegNum >= len(regs) {
		return handlerStatus{}, &NonFatalError{Code: 1}
	}
	if len(cmd.RegValue) != regs[cmd.RegNum].Size {
		return handlerStatus{}, &TargetMismatchError{Detail: "P register value does not match this register's size"}
	}
	if err := s.writeOneRegister(cmd.RegNum, cmd.RegValue); err != nil {
		return handlerStatus{}, err
	}
	return needsOK, nil
}

func (s *Session) decodeAddr(b []byte) (uint64, error) {
	addr, ok := s.arch.AddrFromBEBytes(b)
	if !ok {
		return 0, &TargetMismatchError{Detail: "address payload does not fit this architecture's address width"}
	}
	return addr, nil
}

func (s *Session) handleM(cmd commands.Command, w *proto.Writer) (handlerStatus, error) {
	addr, err := s.decodeAddr(cmd.AddrBytes)
	if err != nil {
		return handlerStatus{}, err
	}
	data := make([]byte, cmd.Length)
	if err := s.readAddrs(addr, data); err != nil {
		return handlerStatus{}, err
	}
	w.WriteHexBytes(data)
	return handled, nil
}

func (s *Session) handleMUpper(cmd commands.Command) (handlerStatus, error) {
	addr, err := s.decodeAddr(cmd.AddrBytes)
	if err != nil {
		return handlerStatus{}, err
	}
	if err := s.writeAddrs(addr, cmd.Data); err != nil {
		return handlerStatus{}, err
	}
	return needsOK, nil
}

func (s *Session) handleX(cmd commands.Command) (handlerStatus, error) {
	addr, err := s.decodeAddr(cmd.AddrBytes)
	if err != nil {
		return handlerStatus{}, err
	}
	if err := s.writeAddrs(addr, cmd.Data); err != nil {
		return handlerStatus{}, err
	}
	return needsOK, nil
}

func (s *Session) handleH(cmd commands.Command) (handlerStatus, error) {
	switch cmd.HOp {
	case 'g':
		switch cmd.Thread.Kind {
		case commands.ThreadIDAny:
			// keep the prior value
		case commands.ThreadIDAll:
			return handlerStatus{}, &PacketUnexpectedError{Command: "Hg", Reason: `"all" thread id is invalid for memory/register operations`}
		default:
			s.currentMemTid = target.Tid(cmd.Thread.TID)
		}
	case 'c':
		switch cmd.Thread.Kind {
		case commands.ThreadIDAny:
			// keep the prior value
		case commands.ThreadIDAll:
			s.currentResumeTid = resumeTid{all: true}
		default:
			s.currentResumeTid = resumeTid{tid: target.Tid(cmd.Thread.TID)}
		}
	}
	return needsOK, nil
}

func (s *Session) handleKillOrVKill(pid *int32) (handlerStatus, error) {
	ext, ok := s.target.ExtendedMode()
	if !ok {
		return disconnect(DisconnectReasonKill), nil
	}
	shouldTerminate, err := ext.Kill(pid)
	if err != nil {
		return handlerStatus{}, err
	}
	if shouldTerminate {
		return disconnect(DisconnectReasonKill), nil
	}
	return needsOK, nil
}

func (s *Session) handleD(w *proto.Writer) (handlerStatus, error) {
	w.WriteString("OK")
	return disconnect(DisconnectReasonClient), nil
}

func (s *Session) handleQfThreadInfo(w *proto.Writer) (handlerStatus, error) {
	w.WriteString("m")
	switch b := s.target.Base().(type) {
	case target.SingleThreadBase:
		writeThreadID(w, target.FakePid, int32(target.SingleThreadTid))
	case target.MultiThreadBase:
		first := true
		err := b.ListActiveThreads(func(tid target.Tid) {
			if !first {
				w.WriteString(",")
			}
			first = false
			writeThreadID(w, target.FakePid, int32(tid))
		})
		if err != nil {
			return handlerStatus{}, &TargetError{Err: err}
		}
	}
	return handled, nil
}

// writeThreadID writes the "p<pid>.<tid>" multiprocess thread-id form.
func writeThreadID(w *proto.Writer, pid, tid int32) {
	w.WriteString("p")
	w.WriteHex(uint64(pid), 1)
	w.WriteString(".")
	w.WriteHex(uint64(tid), 1)
}

func (s *Session) handleT(cmd commands.Command) (handlerStatus, error) {
	if cmd.Thread.Kind != commands.ThreadIDWith {
		return handlerStatus{}, &PacketUnexpectedError{Command: "T", Reason: "expected a specific thread id"}
	}
	var alive bool
	switch b := s.target.Base().(type) {
	case target.SingleThreadBase:
		alive = target.Tid(cmd.Thread.TID) == target.SingleThreadTid
	case target.MultiThreadBase:
		var err error
		alive, err = b.IsThreadAlive(target.Tid(cmd.Thread.TID))
		if err != nil {
			return handlerStatus{}, &TargetError{Err: err}
		}
	}
	if !alive {
		return handlerStatus{}, &NonFatalError{Code: 1}
	}
	return needsOK, nil
}
