package commands

// Result distinguishes the three outcomes parsing a packet body can have,
// matching spec §4.2: a prefix the active capability set doesn't expose
// (or that no prefix matches at all) is Unknown and answered with an
// empty packet; a recognised prefix whose body doesn't parse is
// Malformed and answered with "E00"; otherwise the command is OK and
// ready for dispatch.
type Result int

const (
	Unknown Result = iota
	Malformed
	OK
)

type bodyParser func(body []byte) (Command, bool)

type prefixEntry struct {
	name    Name
	prefix  string
	parse   bodyParser
	enabled func(c Capabilities) bool
}

func always(Capabilities) bool { return true }

// table is checked in order; prefixes are matched longest-first within
// each capability-gated group by construction below (base entries are
// plain strings, never ambiguous prefixes of one another at the point of
// divergence, mirroring original_source/src/protocol/commands.rs's own
// macro-generated, order-preserving match).
var table = []prefixEntry{
	{NameQuestionMark, "?", parseQuestionMark, always},
	{NameQSupported, "qSupported", parseQSupported, always},
	{NameQStartNoAckMode, "QStartNoAckMode", parseEmptyBody(NameQStartNoAckMode), always},
	{NameQXferFeaturesRead, "qXfer:features:read", parseQXferFeaturesRead, always},
	{NameQAttached, "qAttached", parseQAttached, always},
	{NameGUpper, "G", parseGUpper, always},
	{NameG, "g", parseEmptyBody(NameG), always},
	{NameMUpper, "M", parseMUpper, always},
	{NameM, "m", parseM, always},
	{NameX, "X", parseX, always},
	{NamePUpper, "P", parsePUpper, always},
	{NameP, "p", parseP, always},
	{NameH, "H", parseH, always},
	{NameVKill, "vKill", parseVKill, always},
	{NameK, "k", parseEmptyBody(NameK), always},
	{NameD, "D", parseD, always},
	{NameVContQuery, "vCont?", parseEmptyBody(NameVContQuery), always},
	{NameVCont, "vCont;", parseVCont, always},
	{NameS, "s", parseLegacyResume(NameS), always},
	{NameC, "c", parseLegacyResume(NameC), always},
	{NameQfThreadInfo, "qfThreadInfo", parseEmptyBody(NameQfThreadInfo), always},
	{NameQsThreadInfo, "qsThreadInfo", parseEmptyBody(NameQsThreadInfo), always},
	{NameT, "T", parseT, always},

	{NameExclamationMark, "!", parseEmptyBody(NameExclamationMark), func(c Capabilities) bool { return c.ExtendedMode }},
	{NameQDisableRandomization, "QDisableRandomization:", parseQDisableRandomization, func(c Capabilities) bool { return c.ExtendedMode }},
	{NameQEnvironmentHexEncoded, "QEnvironmentHexEncoded:", parseQEnvironmentHexEncoded, func(c Capabilities) bool { return c.ExtendedMode }},
	{NameQEnvironmentReset, "QEnvironmentReset", parseEmptyBody(NameQEnvironmentReset), func(c Capabilities) bool { return c.ExtendedMode }},
	{NameQEnvironmentUnset, "QEnvironmentUnset:", parseQEnvironmentUnset, func(c Capabilities) bool { return c.ExtendedMode }},
	{NameQSetWorkingDir, "QSetWorkingDir:", parseQSetWorkingDir, func(c Capabilities) bool { return c.ExtendedMode }},
	{NameQStartupWithShell, "QStartupWithShell:", parseQStartupWithShell, func(c Capabilities) bool { return c.ExtendedMode }},
	{NameR, "R", parseR, func(c Capabilities) bool { return c.ExtendedMode }},
	{NameVAttach, "vAttach;", parseVAttach, func(c Capabilities) bool { return c.ExtendedMode }},
	{NameVRun, "vRun", parseVRun, func(c Capabilities) bool { return c.ExtendedMode }},

	{NameQRcmd, "qRcmd,", parseQRcmd, func(c Capabilities) bool { return c.MonitorCmd }},
	{NameQOffsets, "qOffsets", parseEmptyBody(NameQOffsets), func(c Capabilities) bool { return c.SectionOffsets }},
	{NameQAgent, "QAgent:", parseQAgent, func(c Capabilities) bool { return c.Agent }},
}

func parseEmptyBody(name Name) bodyParser {
	return func(body []byte) (Command, bool) {
		if len(body) != 0 {
			return Command{}, false
		}
		return Command{Name: name}, true
	}
}

func hasPrefix(body []byte, prefix string) bool {
	if len(body) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		if body[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Parse matches body (the already framed-and-unescaped packet body)
// against the capability-gated command table and, for recognised
// prefixes, invokes that command's body parser. caps gates which command
// families are even considered, per spec §4.2: a target that doesn't
// implement monitor commands never has qRcmd recognised, for instance.
//
// Breakpoint packets are special-cased below (not in table) because the
// grammar of 'Z' itself depends on whether the target implements the
// breakpoint-agent extension.
func Parse(body []byte, caps Capabilities) (Command, Result) {
	if caps.Breakpoints {
		if hasPrefix(body, "z") {
			cmd, ok := parseBasicBreakpoint(Namez, body[1:])
			if !ok {
				return Command{}, Malformed
			}
			return cmd, OK
		}
		if hasPrefix(body, "Z") {
			rest := body[1:]
			if caps.BreakpointAgent {
				cmd, ok := parseBytecodeBreakpoint(rest)
				if !ok {
					return Command{}, Malformed
				}
				return cmd, OK
			}
			cmd, ok := parseBasicBreakpoint(NameZ, rest)
			if !ok {
				return Command{}, Malformed
			}
			return cmd, OK
		}
	}

	for _, e := range table {
		if !e.enabled(caps) {
			continue
		}
		if !hasPrefix(body, e.prefix) {
			continue
		}
		cmd, ok := e.parse(body[len(e.prefix):])
		if !ok {
			return Command{}, Malformed
		}
		return cmd, OK
	}

	return Command{Name: NameUnknown, Raw: body}, Unknown
}
