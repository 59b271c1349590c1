package commands

// parseBasicBreakpoint parses "<type>,<addr>,<kind>" as used by z (remove,
// always this shape) and Z when the target has no breakpoint-agent
// extension, per original_source/src/protocol/commands.rs's BasicBreakpoint.
func parseBasicBreakpoint(name Name, body []byte) (Command, bool) {
	typ, addr, kind, rest, ok := parseBreakpointHead(body)
	if !ok || len(rest) != 0 {
		return Command{}, false
	}
	return Command{
		Name:           name,
		BreakpointType: typ,
		AddrBytes:      addr,
		BreakpointKind: kind,
	}, true
}

// parseBytecodeBreakpoint parses "<type>,<addr>,<kind>[;cond_list][;cmds:p;cmd_list]"
// as used by Z when the target implements the breakpoint-agent extension,
// per original_source/src/protocol/commands.rs's BytecodeBreakpoint.
func parseBytecodeBreakpoint(body []byte) (Command, bool) {
	typ, addr, kind, rest, ok := parseBreakpointHead(body)
	if !ok {
		return Command{}, false
	}

	cmd := Command{
		Name:           NameZ,
		BreakpointType: typ,
		AddrBytes:      addr,
		BreakpointKind: kind,
	}

	if len(rest) == 0 {
		return cmd, true
	}
	if rest[0] != ';' {
		return Command{}, false
	}
	rest = rest[1:]

	conds, rest, ok := parseXEntries(rest)
	if !ok {
		return Command{}, false
	}
	cmd.CondBytecode = conds

	if len(rest) == 0 {
		return cmd, true
	}
	if len(conds) > 0 {
		if rest[0] != ';' {
			return Command{}, false
		}
		rest = rest[1:]
	}
	const cmdsMarker = "cmds:"
	if !hasPrefix(rest, cmdsMarker) {
		return Command{}, false
	}
	rest = rest[len(cmdsMarker):]
	if len(rest) == 0 {
		return Command{}, false
	}
	switch rest[0] {
	case '0':
		cmd.CmdPersist = false
	case '1':
		cmd.CmdPersist = true
	default:
		return Command{}, false
	}
	rest = rest[1:]
	if len(rest) == 0 {
		return cmd, true
	}
	if rest[0] != ';' {
		return Command{}, false
	}
	rest = rest[1:]

	cmds, rest, ok := parseXEntries(rest)
	if !ok || len(rest) != 0 {
		return Command{}, false
	}
	cmd.CmdBytecode = cmds
	return cmd, true
}

// parseBreakpointHead parses the "<type>,<addr>,<kind>" shared prefix of
// both z and Z, returning the unconsumed remainder (empty for z, possibly
// ";cond_list;cmds:..." for Z).
func parseBreakpointHead(body []byte) (typ int, addr []byte, kind uint64, rest []byte, ok bool) {
	parts := splitN(body, ',', 3)
	if len(parts) != 3 {
		return 0, nil, 0, nil, false
	}
	typVal, ok1 := decodeHexUint(parts[0])
	if !ok1 || typVal > 4 {
		return 0, nil, 0, nil, false
	}
	addrBytes, ok2 := decodeHexBytesInto(parts[1])
	if !ok2 {
		return 0, nil, 0, nil, false
	}
	// parts[2] holds "<kind>[;...]"; split off the kind field itself.
	semi := indexByte(parts[2], ';')
	kindField := parts[2]
	tail := parts[2][len(parts[2]):]
	if semi >= 0 {
		kindField = parts[2][:semi]
		tail = parts[2][semi:]
	}
	kindVal, ok3 := decodeHexUint(kindField)
	if !ok3 {
		return 0, nil, 0, nil, false
	}
	return int(typVal), addrBytes, kindVal, tail, true
}

// parseXEntries consumes a run of back-to-back "X<hexlen>,<rawbytes>"
// agent-expression entries (GDB's cond_list/cmd_list encoding: the length
// prefix, not a delimiter, marks each entry's end, since the payload is
// raw bytecode that may itself contain ';'), stopping at the first byte
// that isn't 'X'.
func parseXEntries(b []byte) (entries [][]byte, rest []byte, ok bool) {
	for len(b) > 0 && b[0] == 'X' {
		b = b[1:]
		comma := indexByte(b, ',')
		if comma < 0 {
			return nil, nil, false
		}
		n, ok2 := decodeHexUint(b[:comma])
		if !ok2 {
			return nil, nil, false
		}
		b = b[comma+1:]
		if uint64(len(b)) < n {
			return nil, nil, false
		}
		entries = append(entries, b[:n])
		b = b[n:]
	}
	return entries, b, true
}
