package commands

import (
	"bytes"
	"testing"
)

func TestParseUnknownWithoutMatchingPrefix(t *testing.T) {
	cmd, res := Parse([]byte("qSomeUnsupportedQuery"), Capabilities{})
	if res != Unknown {
		t.Fatalf("result = %v, want Unknown", res)
	}
	if cmd.Name != NameUnknown {
		t.Fatalf("Name = %q, want empty", cmd.Name)
	}
}

func TestParseGatesCapabilityFamilies(t *testing.T) {
	// qRcmd is only recognized when MonitorCmd is advertised; otherwise it
	// falls through to Unknown rather than Malformed.
	// The command text is hex-encoded on the wire: "masterreset".
	cmd, res := Parse([]byte("qRcmd,6d61737465727265736574"), Capabilities{MonitorCmd: false})
	if res != Unknown {
		t.Fatalf("result = %v, want Unknown when MonitorCmd is absent", res)
	}

	cmd, res = Parse([]byte("qRcmd,6d61737465727265736574"), Capabilities{MonitorCmd: true})
	if res != OK {
		t.Fatalf("result = %v, want OK when MonitorCmd is present", res)
	}
	if cmd.Name != NameQRcmd {
		t.Fatalf("Name = %q, want qRcmd", cmd.Name)
	}
}

func TestParseQuestionMark(t *testing.T) {
	cmd, res := Parse([]byte("?"), Capabilities{})
	if res != OK || cmd.Name != NameQuestionMark {
		t.Fatalf("got (%+v, %v)", cmd, res)
	}
}

func TestParseMalformedGetsE00(t *testing.T) {
	// "m" with no comma is a recognized prefix but an invalid body.
	_, res := Parse([]byte("mdeadbeef"), Capabilities{})
	if res != Malformed {
		t.Fatalf("result = %v, want Malformed", res)
	}
}

func TestParseM(t *testing.T) {
	cmd, res := Parse([]byte("m1000,4"), Capabilities{})
	if res != OK {
		t.Fatalf("result = %v, want OK", res)
	}
	if !bytes.Equal(cmd.AddrBytes, []byte{0x10, 0x00}) {
		t.Fatalf("AddrBytes = %x, want 1000", cmd.AddrBytes)
	}
	if cmd.Length != 4 {
		t.Fatalf("Length = %d, want 4", cmd.Length)
	}
}

func TestParseMUpper(t *testing.T) {
	cmd, res := Parse([]byte("M1000,2:abcd"), Capabilities{})
	if res != OK {
		t.Fatalf("result = %v, want OK", res)
	}
	if !bytes.Equal(cmd.Data, []byte{0xab, 0xcd}) {
		t.Fatalf("Data = %x, want abcd", cmd.Data)
	}
}

func TestParseMUpperLengthMismatch(t *testing.T) {
	_, res := Parse([]byte("M1000,4:abcd"), Capabilities{})
	if res != Malformed {
		t.Fatalf("result = %v, want Malformed on length/data mismatch", res)
	}
}

func TestParsePAndPUpper(t *testing.T) {
	cmd, res := Parse([]byte("p3"), Capabilities{})
	if res != OK || cmd.RegNum != 3 {
		t.Fatalf("got (%+v, %v)", cmd, res)
	}

	cmd, res = Parse([]byte("P3=0102030405060708"), Capabilities{})
	if res != OK {
		t.Fatalf("result = %v, want OK", res)
	}
	if cmd.RegNum != 3 || len(cmd.RegValue) != 8 {
		t.Fatalf("got RegNum=%d RegValue=%x", cmd.RegNum, cmd.RegValue)
	}
}

func TestParseHMemoryOp(t *testing.T) {
	cmd, res := Parse([]byte("Hg0"), Capabilities{})
	if res != OK {
		t.Fatalf("result = %v, want OK", res)
	}
	if cmd.HOp != 'g' || cmd.Thread.Kind != ThreadIDAny {
		t.Fatalf("got HOp=%c Thread=%+v", cmd.HOp, cmd.Thread)
	}

	cmd, res = Parse([]byte("Hc-1"), Capabilities{})
	if res != OK || cmd.Thread.Kind != ThreadIDAll {
		t.Fatalf("got (%+v, %v), want Thread.Kind=ThreadIDAll", cmd, res)
	}
}

func TestParseThreadIDMultiprocessForm(t *testing.T) {
	cmd, res := Parse([]byte("Hgp2.3"), Capabilities{})
	if res != OK {
		t.Fatalf("result = %v, want OK", res)
	}
	if cmd.Thread.Kind != ThreadIDWith || cmd.Thread.PID != 2 || cmd.Thread.TID != 3 {
		t.Fatalf("Thread = %+v, want {Kind:With PID:2 TID:3}", cmd.Thread)
	}
}

func TestParseVContQuery(t *testing.T) {
	cmd, res := Parse([]byte("vCont?"), Capabilities{})
	if res != OK || cmd.Name != NameVContQuery {
		t.Fatalf("got (%+v, %v)", cmd, res)
	}
}

func TestParseVContActions(t *testing.T) {
	cmd, res := Parse([]byte("vCont;c:1;s:2"), Capabilities{})
	if res != OK {
		t.Fatalf("result = %v, want OK", res)
	}
	if len(cmd.Actions) != 2 {
		t.Fatalf("Actions = %+v, want 2 entries", cmd.Actions)
	}
	if cmd.Actions[0].Action != 'c' || cmd.Actions[0].Thread.TID != 1 {
		t.Fatalf("Actions[0] = %+v", cmd.Actions[0])
	}
	if cmd.Actions[1].Action != 's' || cmd.Actions[1].Thread.TID != 2 {
		t.Fatalf("Actions[1] = %+v", cmd.Actions[1])
	}
}

func TestParseVContSignalAction(t *testing.T) {
	cmd, res := Parse([]byte("vCont;C05:1f"), Capabilities{})
	if res != OK {
		t.Fatalf("result = %v, want OK", res)
	}
	if cmd.Actions[0].Action != 'C' || cmd.Actions[0].Signal != 0x05 {
		t.Fatalf("Actions[0] = %+v", cmd.Actions[0])
	}
	if cmd.Actions[0].Thread.TID != 0x1f {
		t.Fatalf("Thread = %+v", cmd.Actions[0].Thread)
	}
}

func TestParseVContRangeStep(t *testing.T) {
	cmd, res := Parse([]byte("vCont;r1000,2000:3"), Capabilities{})
	if res != OK {
		t.Fatalf("result = %v, want OK", res)
	}
	a := cmd.Actions[0]
	if a.Action != 'r' || a.RangeLo != 0x1000 || a.RangeHi != 0x2000 {
		t.Fatalf("Actions[0] = %+v", a)
	}
}

func TestParseLegacyResumeWithAddress(t *testing.T) {
	cmd, res := Parse([]byte("c1000"), Capabilities{})
	if res != OK || cmd.Name != NameC {
		t.Fatalf("got (%+v, %v)", cmd, res)
	}
}

func TestParseBasicBreakpointRemove(t *testing.T) {
	cmd, res := Parse([]byte("z0,1000,1"), Capabilities{Breakpoints: true})
	if res != OK {
		t.Fatalf("result = %v, want OK", res)
	}
	if cmd.Name != Namez || cmd.BreakpointType != 0 || cmd.BreakpointKind != 1 {
		t.Fatalf("got %+v", cmd)
	}
}

func TestParseBreakpointRequiresCapability(t *testing.T) {
	_, res := Parse([]byte("z0,1000,1"), Capabilities{Breakpoints: false})
	if res != Unknown {
		t.Fatalf("result = %v, want Unknown without Breakpoints capability", res)
	}
}

func TestParseBytecodeBreakpointWithConditions(t *testing.T) {
	// Z1,1000,1;X2,ab;cmds:1;X1,7
	body := "Z1,1000,1;X2,ab;cmds:1;X1,7"
	cmd, res := Parse([]byte(body), Capabilities{Breakpoints: true, BreakpointAgent: true})
	if res != OK {
		t.Fatalf("result = %v, want OK", res)
	}
	if len(cmd.CondBytecode) != 1 || !bytes.Equal(cmd.CondBytecode[0], []byte("ab")) {
		t.Fatalf("CondBytecode = %x", cmd.CondBytecode)
	}
	if !cmd.CmdPersist {
		t.Fatalf("CmdPersist = false, want true")
	}
	if len(cmd.CmdBytecode) != 1 || !bytes.Equal(cmd.CmdBytecode[0], []byte("7")) {
		t.Fatalf("CmdBytecode = %x", cmd.CmdBytecode)
	}
}

func TestParseBytecodeBreakpointFallsBackWithoutAgent(t *testing.T) {
	// Without BreakpointAgent, "Z" falls back to the basic shape and a
	// trailing cond_list is simply part of an invalid basic body.
	_, res := Parse([]byte("Z1,1000,1"), Capabilities{Breakpoints: true, BreakpointAgent: false})
	if res != OK {
		t.Fatalf("result = %v, want OK for a plain Z without agent extras", res)
	}
}

func TestParseQXferFeaturesRead(t *testing.T) {
	cmd, res := Parse([]byte("qXfer:features:read:target.xml:0,3ff"), Capabilities{})
	if res != OK {
		t.Fatalf("result = %v, want OK", res)
	}
	if cmd.Addr != 0 || cmd.Length != 0x3ff {
		t.Fatalf("got Addr=%d Length=%d", cmd.Addr, cmd.Length)
	}
	if string(cmd.Filename) != "target.xml" {
		t.Fatalf("Filename = %q", cmd.Filename)
	}
}

func TestParseQAttachedWithAndWithoutPID(t *testing.T) {
	cmd, res := Parse([]byte("qAttached"), Capabilities{})
	if res != OK || cmd.PID != -1 {
		t.Fatalf("got (%+v, %v), want PID=-1", cmd, res)
	}

	cmd, res = Parse([]byte("qAttached:7"), Capabilities{})
	if res != OK || cmd.PID != 7 {
		t.Fatalf("got (%+v, %v), want PID=7", cmd, res)
	}
}
