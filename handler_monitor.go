package gdbstub

import (
	"github.com/kumargu/gdbstub/internal/commands"
	"github.com/kumargu/gdbstub/internal/proto"
)

// handleMonitor dispatches qRcmd, qOffsets and QAgent — grounded on
// original_source's monitor_cmd/section_offsets/agent extension modules,
// none of which interact with the resume loop or breakpoints.
func (s *Session) handleMonitor(cmd commands.Command, w *proto.Writer) (handlerStatus, error) {
	switch cmd.Name {
	case commands.NameQRcmd:
		mon, ok := s.target.MonitorCmd()
		if !ok {
			return handled, nil
		}
		if err := mon.HandleCmd(cmd.Raw, monitorConsole{s}); err != nil {
			return handlerStatus{}, wrapTargetErr(err)
		}
		return needsOK, nil

	case commands.NameQOffsets:
		off, ok := s.target.SectionOffsets()
		if !ok {
			return handled, nil
		}
		text, data, bss, ok := off.Offsets()
		if !ok {
			return handled, nil
		}
		w.WriteString("Text=")
		w.WriteHex(text, 4)
		w.WriteString(";Data=")
		w.WriteHex(data, 4)
		w.WriteString(";Bss=")
		w.WriteHex(bss, 4)
		return handled, nil

	case commands.NameQAgent:
		agent, ok := s.target.Agent()
		if !ok {
			return handled, nil
		}
		if err := agent.Enable(cmd.Enabled); err != nil {
			return handlerStatus{}, wrapTargetErr(err)
		}
		return needsOK, nil
	}
	return handled, nil
}

// monitorConsole adapts the session to target.Console, framing every write
// as its own standalone "O" packet flushed immediately — qRcmd output
// streams back to GDB's console as it's produced, ahead of the eventual
// OK, rather than being batched into one response.
type monitorConsole struct {
	s *Session
}

func (c monitorConsole) Write(p []byte) (int, error) {
	if err := c.s.writeConsole(string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}
