package commands

// parseQRcmd parses "<hex-encoded console command>" following the
// "qRcmd," prefix (note: comma, not colon, per the real protocol).
func parseQRcmd(body []byte) (Command, bool) {
	decoded, ok := decodeHexBytesInto(body)
	if !ok {
		return Command{}, false
	}
	return Command{Name: NameQRcmd, Raw: decoded}, true
}

// parseQAgent parses "QAgent:<0|1>".
func parseQAgent(body []byte) (Command, bool) {
	v, ok := parseBoolFlag(body)
	if !ok {
		return Command{}, false
	}
	return Command{Name: NameQAgent, Enabled: v}, true
}
