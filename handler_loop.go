package gdbstub

import (
	"context"

	"github.com/kumargu/gdbstub/internal/commands"
	"github.com/kumargu/gdbstub/internal/proto"
)

// handlerStatusKind is the terminal status of one dispatched command, per
// spec §4.4/§4: every command that reaches a terminal handler status gets
// exactly one response.
type handlerStatusKind int

const (
	stHandled handlerStatusKind = iota
	stNeedsOK
	stDisconnect
)

type handlerStatus struct {
	kind   handlerStatusKind
	reason DisconnectReason
}

var handled = handlerStatus{kind: stHandled}
var needsOK = handlerStatus{kind: stNeedsOK}

func disconnect(reason DisconnectReason) handlerStatus {
	return handlerStatus{kind: stDisconnect, reason: reason}
}

// Run drives the packet loop until the session ends: on 'D' (detach), 'k'
// or 'vKill' outside extended mode, a Halted stop reason, or a fatal
// error. It implements spec §3's lifecycle and §4.1's framing contract.
func (s *Session) Run(ctx context.Context) (DisconnectReason, error) {
	s.ctx = ctx
	s.transport.OnSessionStart()

	reader := proto.NewReader(s.transport)
	reader.SetBuffer(s.buf)
	writer := proto.NewWriter(s.transport)

	for {
		ev, err := reader.Next()
		if err != nil {
			if _, ok := err.(proto.ChecksumError); ok {
				if s.noAckMode {
					return 0, &ConnectionError{Op: "read", Err: err}
				}
				s.log.Warnf("gdbstub: bad checksum, sending NACK")
				if werr := proto.WriteNack(s.transport); werr != nil {
					return 0, &ConnectionError{Op: "write", Err: werr}
				}
				continue
			}
			return 0, &ConnectionError{Op: "read", Err: err}
		}

		switch ev.Kind {
		case proto.EventAck:
			continue
		case proto.EventNack:
			if werr := writer.Resend(); werr != nil {
				return 0, &ConnectionError{Op: "write", Err: werr}
			}
			continue
		case proto.EventInterrupt:
			// No resume is in progress (otherwise we'd be inside
			// target.Resume, not back at the top of this loop), so there
			// is nothing for the engine to stop; all-stop mode has no
			// "already running" state to interrupt here. Ignore, per
			// spec §9's non-stop-mode non-goal.
			continue
		}

		s.hooks.PacketFramed()
		if !s.noAckMode {
			if werr := proto.WriteAck(s.transport); werr != nil {
				return 0, &ConnectionError{Op: "write", Err: werr}
			}
		}

		reason, done, err := s.handlePacket(ev.Body, writer)
		if err != nil {
			return 0, err
		}
		if done {
			s.hooks.SessionEnded(reason)
			return reason, nil
		}
	}
}

// handlePacket parses and dispatches one packet body, translating the
// result into exactly one written response (spec's "never zero, never
// two" invariant).
func (s *Session) handlePacket(body []byte, w *proto.Writer) (DisconnectReason, bool, error) {
	caps := s.capabilities()
	cmd, result := commands.Parse(body, caps)

	w.Reset()
	switch result {
	case commands.Unknown:
		return 0, false, s.flush(w)
	case commands.Malformed:
		w.WriteString("E00")
		return 0, false, s.flush(w)
	}

	status, err := s.dispatch(cmd, w)
	if err != nil {
		return s.handleDispatchError(err, w)
	}

	switch status.kind {
	case stNeedsOK:
		w.WriteString("OK")
		if err := s.flush(w); err != nil {
			return 0, false, err
		}
		if cmd.Name == commands.NameQStartNoAckMode {
			// no_ack_mode flips as soon as the OK has been flushed; the
			// client's '+' for that OK is not waited for, and packets
			// that follow it are no longer acknowledged.
			s.noAckMode = true
		}
		return 0, false, nil
	case stDisconnect:
		if err := s.flush(w); err != nil {
			return 0, false, err
		}
		return status.reason, true, nil
	default: // stHandled
		return 0, false, s.flush(w)
	}
}

func (s *Session) flush(w *proto.Writer) error {
	if err := w.Flush(); err != nil {
		return &ConnectionError{Op: "write", Err: err}
	}
	return nil
}

// handleDispatchError implements spec §7's propagation policy: non-fatal
// target errors become an E<hex> packet and the session continues; every
// other error kind is fatal and bubbles up to the embedder.
func (s *Session) handleDispatchError(err error, w *proto.Writer) (DisconnectReason, bool, error) {
	if nf, ok := err.(*NonFatalError); ok {
		w.Reset()
		w.WriteByte('E')
		w.WriteHex(uint64(nf.Code), 1)
		if ferr := s.flush(w); ferr != nil {
			return 0, false, ferr
		}
		return 0, false, nil
	}
	return 0, false, err
}

// dispatch routes a parsed command to the handler family that owns it.
func (s *Session) dispatch(cmd commands.Command, w *proto.Writer) (handlerStatus, error) {
	switch cmd.Name {
	case commands.NameQuestionMark, commands.NameQSupported, commands.NameQStartNoAckMode,
		commands.NameQXferFeaturesRead, commands.NameQAttached,
		commands.NameG, commands.NameGUpper, commands.NameM, commands.NameMUpper, commands.NameX,
		commands.NameP, commands.NamePUpper, commands.NameH,
		commands.NameK, commands.NameVKill, commands.NameD,
		commands.NameQfThreadInfo, commands.NameQsThreadInfo, commands.NameT:
		return s.handleBase(cmd, w)

	case commands.NameVContQuery, commands.NameVCont, commands.NameC, commands.NameS:
		return s.handleResume(cmd, w)

	case commands.Namez, commands.NameZ:
		return s.handleBreakpoint(cmd, w)

	case commands.NameExclamationMark, commands.NameQDisableRandomization,
		commands.NameQEnvironmentHexEncoded, commands.NameQEnvironmentReset,
		commands.NameQEnvironmentUnset, commands.NameQSetWorkingDir,
		commands.NameQStartupWithShell, commands.NameR,
		commands.NameVAttach, commands.NameVRun:
		return s.handleExtended(cmd, w)

	case commands.NameQRcmd, commands.NameQOffsets, commands.NameQAgent:
		return s.handleMonitor(cmd, w)

	default:
		return handled, nil
	}
}
