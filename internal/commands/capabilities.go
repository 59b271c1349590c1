// Package commands turns a packet body into a parsed Command, matching
// prefixes only for command families the active target capability set
// actually advertises — the same capability-gated matching the handler
// core uses to decide what to answer in qSupported.
package commands

// Capabilities mirrors which optional target.Target capabilities are
// present for the session's current target, so Parse never recognizes a
// command family the target cannot service.
type Capabilities struct {
	ExtendedMode    bool
	MonitorCmd      bool
	SectionOffsets  bool
	Agent           bool
	Breakpoints     bool
	BreakpointAgent bool
	MultiThread     bool
}
