package commands

// parseQuestionMark handles the stop-reason query "?", which carries no
// body.
func parseQuestionMark(body []byte) (Command, bool) {
	if len(body) != 0 {
		return Command{}, false
	}
	return Command{Name: NameQuestionMark}, true
}

// parseQSupported parses "qSupported[:feature;feature...]". The client's
// feature list is kept verbatim in Raw; per spec §4.4 it is read but not
// required to influence qSupported's response.
func parseQSupported(body []byte) (Command, bool) {
	if len(body) > 0 && body[0] != ':' {
		return Command{}, false
	}
	if len(body) > 0 {
		body = body[1:]
	}
	return Command{Name: NameQSupported, Raw: body}, true
}

// parseQXferFeaturesRead parses ":<annex>:<offset>,<len>" following the
// "qXfer:features:read" prefix.
func parseQXferFeaturesRead(body []byte) (Command, bool) {
	if len(body) == 0 || body[0] != ':' {
		return Command{}, false
	}
	body = body[1:]
	parts := splitN(body, ':', 2)
	if len(parts) != 2 {
		return Command{}, false
	}
	annex := parts[0]
	offsetLen := splitN(parts[1], ',', 2)
	if len(offsetLen) != 2 {
		return Command{}, false
	}
	offset, ok := decodeHexUint(offsetLen[0])
	if !ok {
		return Command{}, false
	}
	length, ok := decodeHexUint(offsetLen[1])
	if !ok {
		return Command{}, false
	}
	return Command{
		Name:     NameQXferFeaturesRead,
		Filename: annex,
		Addr:     offset,
		Length:   length,
	}, true
}

// parseQAttached parses the optional ":pid" suffix of "qAttached".
func parseQAttached(body []byte) (Command, bool) {
	pid := int32(-1)
	if len(body) > 0 {
		if body[0] != ':' {
			return Command{}, false
		}
		v, ok := decodeHexUint(body[1:])
		if !ok {
			return Command{}, false
		}
		pid = int32(v)
	}
	return Command{Name: NameQAttached, PID: pid}, true
}

// parseGUpper decodes the hex-encoded register dump carried by "G".
func parseGUpper(body []byte) (Command, bool) {
	data, ok := decodeHexBytesInto(body)
	if !ok {
		return Command{}, false
	}
	return Command{Name: NameGUpper, Data: data}, true
}

// parseM parses "m<addr>,<len>".
func parseM(body []byte) (Command, bool) {
	parts := splitN(body, ',', 2)
	if len(parts) != 2 {
		return Command{}, false
	}
	addr, ok := decodeHexBytesInto(parts[0])
	if !ok {
		return Command{}, false
	}
	length, ok := decodeHexUint(parts[1])
	if !ok {
		return Command{}, false
	}
	return Command{Name: NameM, AddrBytes: addr, Length: length}, true
}

// parseMUpper parses "M<addr>,<len>:<data>".
func parseMUpper(body []byte) (Command, bool) {
	parts := splitN(body, ':', 2)
	if len(parts) != 2 {
		return Command{}, false
	}
	addrLen := splitN(parts[0], ',', 2)
	if len(addrLen) != 2 {
		return Command{}, false
	}
	addr, ok := decodeHexBytesInto(addrLen[0])
	if !ok {
		return Command{}, false
	}
	length, ok := decodeHexUint(addrLen[1])
	if !ok {
		return Command{}, false
	}
	data, ok := decodeHexBytesInto(parts[1])
	if !ok || uint64(len(data)) != length {
		return Command{}, false
	}
	return Command{Name: NameMUpper, AddrBytes: addr, Data: data, Length: length}, true
}

// parseX parses "X<addr>,<len>:<raw binary data>" (already unescaped by
// the framer, so the trailing section is exactly len raw bytes). Present
// in the real protocol and in original_source's command surface even
// though spec.md's own distillation omits it (see SPEC_FULL.md §C.6).
func parseX(body []byte) (Command, bool) {
	colon := indexByte(body, ':')
	if colon < 0 {
		return Command{}, false
	}
	addrLen := splitN(body[:colon], ',', 2)
	if len(addrLen) != 2 {
		return Command{}, false
	}
	addr, ok := decodeHexBytesInto(addrLen[0])
	if !ok {
		return Command{}, false
	}
	length, ok := decodeHexUint(addrLen[1])
	if !ok {
		return Command{}, false
	}
	data := body[colon+1:]
	if uint64(len(data)) != length {
		return Command{}, false
	}
	return Command{Name: NameX, AddrBytes: addr, Data: data, Length: length}, true
}

// parseP parses "p<regnum>".
func parseP(body []byte) (Command, bool) {
	n, ok := decodeHexUint(body)
	if !ok {
		return Command{}, false
	}
	return Command{Name: NameP, RegNum: int(n)}, true
}

// parsePUpper parses "P<regnum>=<value>".
func parsePUpper(body []byte) (Command, bool) {
	parts := splitN(body, '=', 2)
	if len(parts) != 2 {
		return Command{}, false
	}
	n, ok := decodeHexUint(parts[0])
	if !ok {
		return Command{}, false
	}
	val, ok := decodeHexBytesInto(parts[1])
	if !ok {
		return Command{}, false
	}
	return Command{Name: NamePUpper, RegNum: int(n), RegValue: val}, true
}

// parseH parses "H<op><threadid>" where op is 'g' (memory/register ops,
// called "other" in the original source) or 'c' (legacy step/continue).
func parseH(body []byte) (Command, bool) {
	if len(body) < 1 {
		return Command{}, false
	}
	op := body[0]
	if op != 'g' && op != 'c' {
		return Command{}, false
	}
	tid, ok := parseThreadID(body[1:])
	if !ok {
		return Command{}, false
	}
	return Command{Name: NameH, HOp: op, Thread: tid}, true
}

// parseVKill parses ";<pid>" following the "vKill" prefix.
func parseVKill(body []byte) (Command, bool) {
	if len(body) == 0 || body[0] != ';' {
		return Command{}, false
	}
	v, ok := decodeHexUint(body[1:])
	if !ok {
		return Command{}, false
	}
	return Command{Name: NameVKill, PID: int32(v)}, true
}

// parseD parses the optional ";<pid>" multiprocess form of "D".
func parseD(body []byte) (Command, bool) {
	pid := int32(-1)
	if len(body) > 0 {
		if body[0] != ';' {
			return Command{}, false
		}
		v, ok := decodeHexUint(body[1:])
		if !ok {
			return Command{}, false
		}
		pid = int32(v)
	}
	return Command{Name: NameD, PID: pid}, true
}

// parseT parses the thread-id argument of the "T" alive-check command.
func parseT(body []byte) (Command, bool) {
	tid, ok := parseThreadID(body)
	if !ok {
		return Command{}, false
	}
	return Command{Name: NameT, Thread: tid}, true
}
