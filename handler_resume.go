package gdbstub

import (
	"github.com/kumargu/gdbstub/internal/commands"
	"github.com/kumargu/gdbstub/internal/proto"
	"github.com/kumargu/gdbstub/target"
)

// handleResume dispatches vCont?/vCont/legacy c/s, grounded on
// original_source/src/gdbstub_impl/ext/base.rs's Base::vCont/c/s arms plus
// do_vcont/finish_vcont.
func (s *Session) handleResume(cmd commands.Command, w *proto.Writer) (handlerStatus, error) {
	switch cmd.Name {
	case commands.NameVContQuery:
		w.WriteString("vCont;c;C;s;S")
		return handled, nil
	case commands.NameVCont:
		return s.doVCont(cmd.Actions, w)
	case commands.NameC:
		return s.doVCont([]commands.ResumeActionSpec{{
			Action: 'c', HasThread: true, Thread: s.currentResumeThreadID(),
		}}, w)
	case commands.NameS:
		return s.doVCont([]commands.ResumeActionSpec{{
			Action: 's', HasThread: true, Thread: s.currentResumeThreadID(),
		}}, w)
	}
	return handled, nil
}

// currentResumeThreadID reconstructs a commands.ThreadID matching
// current_resume_tid, for synthesizing legacy c/s into a vCont action.
func (s *Session) currentResumeThreadID() commands.ThreadID {
	if s.currentResumeTid.all {
		return commands.ThreadID{Kind: commands.ThreadIDAll}
	}
	return commands.ThreadID{Kind: commands.ThreadIDWith, TID: int32(s.currentResumeTid.tid)}
}

// doVCont is the do_vcont/finish_vcont loop: resume, translate the stop
// reason, and — on a conditional breakpoint that evaluates false — resume
// again without ever emitting a reply packet.
func (s *Session) doVCont(actions []commands.ResumeActionSpec, w *proto.Writer) (handlerStatus, error) {
	for {
		s.hooks.ResumeIssued()
		sr, err := s.resumeOnce(actions)
		if err != nil {
			return handlerStatus{}, err
		}
		status, again, err := s.finishVCont(sr, w)
		if err != nil {
			return handlerStatus{}, err
		}
		if again {
			continue
		}
		return status, nil
	}
}

func (s *Session) interruptPoll() (target.InterruptPoll, *error) {
	var pollErr error
	poll := func() bool {
		b, ok, err := s.transport.Peek()
		if err != nil {
			pollErr = err
			return true // stop as soon as possible on a connection error
		}
		if !ok {
			return false
		}
		return b == 0x03
	}
	return poll, &pollErr
}

func (s *Session) resumeOnce(actions []commands.ResumeActionSpec) (target.ThreadStopReason, error) {
	poll, pollErr := s.interruptPoll()

	switch b := s.target.Base().(type) {
	case target.SingleThreadBase:
		if len(actions) != 1 {
			return target.ThreadStopReason{}, &PacketUnexpectedError{
				Command: "vCont", Reason: "single-threaded targets accept exactly one action",
			}
		}
		action := convertResumeAction(actions[0])
		sr, err := b.Resume(s.ctx, action, poll)
		if *pollErr != nil {
			return target.ThreadStopReason{}, &ConnectionError{Op: "read", Err: *pollErr}
		}
		if err != nil {
			return target.ThreadStopReason{}, &TargetError{Err: err}
		}
		return target.Lift(sr, target.SingleThreadTid), nil

	case target.MultiThreadBase:
		if err := b.ClearResumeActions(); err != nil {
			return target.ThreadStopReason{}, &TargetError{Err: err}
		}
		defaultAction := target.ResumeAction{Kind: target.ActionContinue}
		for _, spec := range actions {
			action := convertResumeAction(spec)
			if action.Kind == target.ActionRangeStep && !b.SupportsRangeStep() {
				action = target.ResumeAction{Kind: target.ActionStep}
			}
			if !spec.HasThread || spec.Thread.Kind == commands.ThreadIDAll || spec.Thread.Kind == commands.ThreadIDAny {
				defaultAction = action
				continue
			}
			if err := b.SetResumeAction(target.Tid(spec.Thread.TID), action); err != nil {
				return target.ThreadStopReason{}, &TargetError{Err: err}
			}
		}
		sr, err := b.Resume(s.ctx, defaultAction, poll)
		if *pollErr != nil {
			return target.ThreadStopReason{}, &ConnectionError{Op: "read", Err: *pollErr}
		}
		if err != nil {
			return target.ThreadStopReason{}, &TargetError{Err: err}
		}
		return sr, nil

	default:
		panic("gdbstub: target.Base() must return a SingleThreadBase or MultiThreadBase")
	}
}

func convertResumeAction(spec commands.ResumeActionSpec) target.ResumeAction {
	switch spec.Action {
	case 'C':
		return target.ResumeAction{Kind: target.ActionContinueWithSignal, Signal: spec.Signal}
	case 's':
		return target.ResumeAction{Kind: target.ActionStep}
	case 'S':
		return target.ResumeAction{Kind: target.ActionStepWithSignal, Signal: spec.Signal}
	case 'r':
		return target.ResumeAction{Kind: target.ActionRangeStep, RangeLo: spec.RangeLo, RangeHi: spec.RangeHi}
	default: // 'c'
		return target.ResumeAction{Kind: target.ActionContinue}
	}
}

// finishVCont translates one stop reason into a wire reply. again is true
// when a conditional breakpoint evaluated false and the caller should
// resume once more without having emitted anything.
func (s *Session) finishVCont(sr target.ThreadStopReason, w *proto.Writer) (status handlerStatus, again bool, err error) {
	switch sr.Kind {
	case target.StopDoneStep, target.StopGdbInterrupt:
		w.WriteString("S05")
		return handled, false, nil

	case target.StopSignal:
		w.WriteString("S")
		w.WriteHex(uint64(sr.Sig), 1)
		return handled, false, nil

	case target.StopHalted:
		w.WriteString("W19")
		return disconnect(DisconnectReasonTargetHalted), false, nil

	case target.StopSwBreak, target.StopHwBreak, target.StopWatch:
		s.currentMemTid = sr.Tid
		s.currentResumeTid = resumeTid{tid: sr.Tid}
		s.hooks.BreakpointHit()

		if bp, ok := s.target.Breakpoints(); ok {
			if agent, ok := bp.Agent(); ok && agent.Executor() == target.ExecutorGdbstub {
				reported, err := s.evalBreakpointBytecode(agent, sr.Addr, w)
				if err != nil {
					return handlerStatus{}, false, err
				}
				if !reported {
					return handlerStatus{}, true, nil
				}
			}
		}

		w.WriteString("T05thread:")
		writeThreadID(w, target.FakePid, int32(sr.Tid))
		w.WriteString(";")
		switch sr.Kind {
		case target.StopSwBreak:
			w.WriteString("swbreak:")
		case target.StopHwBreak:
			w.WriteString("hwbreak:")
		case target.StopWatch:
			switch sr.Watch {
			case target.WatchWrite:
				w.WriteString("watch:")
			case target.WatchRead:
				w.WriteString("rwatch:")
			case target.WatchReadWrite:
				w.WriteString("awatch:")
			}
			w.WriteHex(sr.Addr, s.arch.AddrWidth())
		}
		w.WriteString(";")
		return handled, false, nil

	default:
		return handled, false, nil
	}
}

// evalBreakpointBytecode re-evaluates every registered condition/command
// program at addr. It returns false only when at least one condition was
// registered and every one of them evaluated to zero — the re-entrant
// "don't report this hit" case from spec §4.5.
func (s *Session) evalBreakpointBytecode(agent target.BreakpointAgent, addr uint64, w *proto.Writer) (bool, error) {
	progs := s.bpByAddr[addr]
	if len(progs) == 0 {
		return true, nil
	}

	condition := false
	hasCondition := false
	for _, p := range progs {
		if p.kind != target.BytecodeCondition {
			continue
		}
		hasCondition = true
		val, evalErr, fatal := agent.Evaluate(p.id)
		if evalErr != nil {
			if fatal {
				return false, &TargetError{Err: evalErr}
			}
			if err := s.writeConsole("error while evaluating breakpoint condition\n"); err != nil {
				return false, err
			}
			condition = true
			continue
		}
		if val != 0 {
			condition = true
		}
	}
	if !hasCondition {
		condition = true
	}
	if !condition {
		return false, nil
	}

	for _, p := range progs {
		if p.kind != target.BytecodeCommand {
			continue
		}
		_, evalErr, fatal := agent.Evaluate(p.id)
		if evalErr != nil {
			if fatal {
				return false, &TargetError{Err: evalErr}
			}
			if err := s.writeConsole("error while evaluating breakpoint command\n"); err != nil {
				return false, err
			}
		}
	}
	return true, nil
}

// writeConsole emits a standalone "O" packet, matching the original's habit
// of opening a throwaway ResponseWriter over the same connection to report
// bytecode evaluation failures mid-resume-loop.
func (s *Session) writeConsole(msg string) error {
	cw := proto.NewWriter(s.transport)
	cw.WriteString("O")
	cw.WriteHexBytes([]byte(msg))
	return cw.Flush()
}
