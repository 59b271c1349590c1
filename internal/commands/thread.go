package commands

// ThreadID is a parsed GDB thread-id field: either a wildcard ("all" or
// "any") or a specific (pid, tid) pair. pid is -1 when the client didn't
// use the multiprocess "pPID.TID" form.
type ThreadID struct {
	Kind ThreadIDKind
	PID  int32
	TID  int32
}

type ThreadIDKind int

const (
	ThreadIDAny ThreadIDKind = iota
	ThreadIDAll
	ThreadIDWith
)

// parseThreadID parses one thread-id field as used by H, T, and vCont's
// ":threadid" suffix: "0" (any), "-1" (all), a bare hex tid, or the
// multiprocess "p<pid>.<tid>" form where either half may itself be "-1".
func parseThreadID(b []byte) (ThreadID, bool) {
	pid := int32(-1)
	tidPart := b
	if len(b) > 0 && b[0] == 'p' {
		rest := b[1:]
		dot := indexByte(rest, '.')
		if dot < 0 {
			return ThreadID{}, false
		}
		p, ok := parseIDComponent(rest[:dot])
		if !ok {
			return ThreadID{}, false
		}
		pid = p
		tidPart = rest[dot+1:]
	}

	tid, ok := parseIDComponent(tidPart)
	if !ok {
		return ThreadID{}, false
	}

	switch tid {
	case -1:
		return ThreadID{Kind: ThreadIDAll, PID: pid}, true
	case 0:
		return ThreadID{Kind: ThreadIDAny, PID: pid}, true
	default:
		return ThreadID{Kind: ThreadIDWith, PID: pid, TID: tid}, true
	}
}

// parseIDComponent parses one "-1" or hex-digit component of a thread-id.
func parseIDComponent(b []byte) (int32, bool) {
	if len(b) == 0 {
		return 0, false
	}
	if len(b) == 2 && b[0] == '-' && b[1] == '1' {
		return -1, true
	}
	v, ok := decodeHexUint(b)
	if !ok || v > 0x7fffffff {
		return 0, false
	}
	return int32(v), true
}
