package commands

// decodeHexBytes decodes an even-length ASCII hex string into raw bytes,
// the encoding used for addresses (fed to an Arch's big-endian decoder)
// and for register/memory payloads.
func decodeHexBytes(src []byte) ([]byte, bool) {
	if len(src)%2 != 0 {
		return nil, false
	}
	out := make([]byte, len(src)/2)
	for i := range out {
		hi, ok1 := hexVal(src[2*i])
		lo, ok2 := hexVal(src[2*i+1])
		if !ok1 || !ok2 {
			return nil, false
		}
		out[i] = hi<<4 | lo
	}
	return out, true
}

// decodeHexBytesInto is decodeHexBytes but writing into the caller's
// packet-buffer-backed slice in place, preserving the zero-copy borrow the
// rest of the parser relies on.
func decodeHexBytesInto(src []byte) ([]byte, bool) {
	if len(src)%2 != 0 {
		return nil, false
	}
	out := src[:len(src)/2]
	for i := range out {
		hi, ok1 := hexVal(src[2*i])
		lo, ok2 := hexVal(src[2*i+1])
		if !ok1 || !ok2 {
			return nil, false
		}
		out[i] = hi<<4 | lo
	}
	return out, true
}

// decodeHexUint parses an arbitrary-length (1-16 digit) hex number, the
// encoding used for offsets, lengths, register numbers, kinds and signals.
func decodeHexUint(src []byte) (uint64, bool) {
	if len(src) == 0 || len(src) > 16 {
		return 0, false
	}
	var v uint64
	for _, c := range src {
		d, ok := hexVal(c)
		if !ok {
			return 0, false
		}
		v = v<<4 | uint64(d)
	}
	return v, true
}

func hexVal(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}

func splitN(b []byte, sep byte, n int) [][]byte {
	var out [][]byte
	for len(out) < n-1 {
		i := indexByte(b, sep)
		if i < 0 {
			break
		}
		out = append(out, b[:i])
		b = b[i+1:]
	}
	out = append(out, b)
	return out
}
