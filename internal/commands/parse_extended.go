package commands

// parseQDisableRandomization parses "QDisableRandomization:<0|1>".
func parseQDisableRandomization(body []byte) (Command, bool) {
	v, ok := parseBoolFlag(body)
	if !ok {
		return Command{}, false
	}
	return Command{Name: NameQDisableRandomization, Enabled: v}, true
}

// parseQEnvironmentHexEncoded parses "QEnvironmentHexEncoded:<hex NAME=VALUE>".
func parseQEnvironmentHexEncoded(body []byte) (Command, bool) {
	decoded, ok := decodeHexBytesInto(body)
	if !ok {
		return Command{}, false
	}
	eq := indexByte(decoded, '=')
	if eq < 0 {
		return Command{}, false
	}
	return Command{
		Name:     NameQEnvironmentHexEncoded,
		EnvKey:   decoded[:eq],
		EnvValue: decoded[eq+1:],
	}, true
}

// parseQEnvironmentUnset parses "QEnvironmentUnset:<hex name>".
func parseQEnvironmentUnset(body []byte) (Command, bool) {
	decoded, ok := decodeHexBytesInto(body)
	if !ok {
		return Command{}, false
	}
	return Command{Name: NameQEnvironmentUnset, EnvKey: decoded}, true
}

// parseQSetWorkingDir parses "QSetWorkingDir:<hex path>" (empty path
// resets to the default).
func parseQSetWorkingDir(body []byte) (Command, bool) {
	decoded, ok := decodeHexBytesInto(body)
	if !ok {
		return Command{}, false
	}
	return Command{Name: NameQSetWorkingDir, Dir: decoded}, true
}

// parseQStartupWithShell parses "QStartupWithShell:<0|1>".
func parseQStartupWithShell(body []byte) (Command, bool) {
	v, ok := parseBoolFlag(body)
	if !ok {
		return Command{}, false
	}
	return Command{Name: NameQStartupWithShell, Enabled: v}, true
}

// parseR parses the restart command "R<xx>"; the two-digit argument is
// accepted (GDB always sends "Raa") but not otherwise meaningful.
func parseR(body []byte) (Command, bool) {
	return Command{Name: NameR}, true
}

// parseVAttach parses ";<pid>" following the "vAttach" prefix.
func parseVAttach(body []byte) (Command, bool) {
	v, ok := decodeHexUint(body)
	if !ok {
		return Command{}, false
	}
	return Command{Name: NameVAttach, PID: int32(v)}, true
}

// parseVRun parses "vRun[;<hex filename>][;<hex arg>]*".
func parseVRun(body []byte) (Command, bool) {
	if len(body) == 0 {
		return Command{Name: NameVRun}, true
	}
	if body[0] != ';' {
		return Command{}, false
	}
	fields := splitAll(body[1:], ';')
	if len(fields) == 0 {
		return Command{Name: NameVRun}, true
	}
	filename, ok := decodeHexBytesInto(fields[0])
	if !ok {
		return Command{}, false
	}
	var args [][]byte
	for _, f := range fields[1:] {
		a, ok := decodeHexBytesInto(f)
		if !ok {
			return Command{}, false
		}
		args = append(args, a)
	}
	return Command{Name: NameVRun, Filename: filename, Args: args}, true
}

func parseBoolFlag(body []byte) (bool, bool) {
	if len(body) != 1 {
		return false, false
	}
	switch body[0] {
	case '0':
		return false, true
	case '1':
		return true, true
	default:
		return false, false
	}
}
