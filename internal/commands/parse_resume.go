package commands

// parseVCont parses the action-list following "vCont;": a semicolon
// separated list of "<action>[<signal>][:threadid]" clauses, e.g.
// "c", "s:2", "C05:1f", "r1000,2000:3".
func parseVCont(body []byte) (Command, bool) {
	var actions []ResumeActionSpec
	for _, clause := range splitAll(body, ';') {
		spec, ok := parseVContClause(clause)
		if !ok {
			return Command{}, false
		}
		actions = append(actions, spec)
	}
	if len(actions) == 0 {
		return Command{}, false
	}
	return Command{Name: NameVCont, Actions: actions}, true
}

func parseVContClause(clause []byte) (ResumeActionSpec, bool) {
	if len(clause) == 0 {
		return ResumeActionSpec{}, false
	}

	action := clause[0]
	rest := clause[1:]

	var spec ResumeActionSpec
	spec.Action = action

	switch action {
	case 'c', 's':
		// no signal
	case 'C', 'S':
		if len(rest) < 2 {
			return ResumeActionSpec{}, false
		}
		sig, ok := decodeHexUint(rest[:2])
		if !ok {
			return ResumeActionSpec{}, false
		}
		spec.Signal = uint8(sig)
		rest = rest[2:]
	case 'r':
		colon := indexByte(rest, ':')
		rangePart := rest
		if colon >= 0 {
			rangePart = rest[:colon]
		}
		bounds := splitN(rangePart, ',', 2)
		if len(bounds) != 2 {
			return ResumeActionSpec{}, false
		}
		lo, ok := decodeHexUint(bounds[0])
		if !ok {
			return ResumeActionSpec{}, false
		}
		hi, ok := decodeHexUint(bounds[1])
		if !ok {
			return ResumeActionSpec{}, false
		}
		spec.RangeLo, spec.RangeHi = lo, hi
		if colon < 0 {
			return spec, true
		}
		rest = rest[colon:]
	default:
		return ResumeActionSpec{}, false
	}

	if len(rest) == 0 {
		return spec, true
	}
	if rest[0] != ':' {
		return ResumeActionSpec{}, false
	}
	tid, ok := parseThreadID(rest[1:])
	if !ok {
		return ResumeActionSpec{}, false
	}
	spec.HasThread = true
	spec.Thread = tid
	return spec, true
}

// splitAll splits b on every occurrence of sep, matching strings.Split's
// semantics without importing strings for one call site (the parser
// package otherwise only touches raw bytes).
func splitAll(b []byte, sep byte) [][]byte {
	var out [][]byte
	start := 0
	for i, c := range b {
		if c == sep {
			out = append(out, b[start:i])
			start = i + 1
		}
	}
	out = append(out, b[start:])
	return out
}

// parseLegacyResume parses the legacy "c" / "s" commands. GDB's optional
// resume-address argument is parsed (so the syntax is accepted) but
// discarded per spec §9's conservative-behavior decision: address is
// ignored, current_resume_tid is preserved and threaded through by the
// handler core instead.
func parseLegacyResume(name Name) bodyParser {
	return func(body []byte) (Command, bool) {
		if len(body) == 0 {
			return Command{Name: name}, true
		}
		if _, ok := decodeHexUint(body); !ok {
			return Command{}, false
		}
		return Command{Name: name}, true
	}
}
