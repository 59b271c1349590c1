package gdbstub

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/kumargu/gdbstub/internal/proto"
	"github.com/kumargu/gdbstub/target"
)

// fakeArch is a minimal 32-bit architecture: two 4-byte registers (r0, pc),
// just enough to exercise g/G/p/P, m/M and the breakpoint/resume path.
type fakeArch struct{}

func (fakeArch) AddrFromBEBytes(b []byte) (uint64, bool) {
	if len(b) != 4 {
		return 0, false
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, true
}
func (fakeArch) AddrWidth() int                        { return 4 }
func (fakeArch) BreakpointKindFromUsize(k uint64) bool { return k == 1 }
func (fakeArch) Registers() []target.RegisterInfo {
	return []target.RegisterInfo{{Name: "r0", Size: 4}, {Name: "pc", Size: 4}}
}
func (fakeArch) TargetDescriptionXML() (string, bool) { return "", false }

// fakeTarget is a single-threaded stand-in driving the engine through its
// full capability set: base registers/memory, software breakpoints, and a
// Resume that reports a hit whenever pc lands on a planted breakpoint.
type fakeTarget struct {
	target.SingleThreadMarker

	regs     [8]byte
	mem      [256]byte
	swBreaks map[uint64]byte
	halted   bool
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{swBreaks: make(map[uint64]byte)}
}

func (f *fakeTarget) Base() target.Base                            { return f }
func (f *fakeTarget) Breakpoints() (target.Breakpoints, bool)      { return fakeBreakpoints{f}, true }
func (f *fakeTarget) ExtendedMode() (target.ExtendedMode, bool)     { return nil, false }
func (f *fakeTarget) MonitorCmd() (target.MonitorCmd, bool)         { return nil, false }
func (f *fakeTarget) SectionOffsets() (target.SectionOffsets, bool) { return nil, false }
func (f *fakeTarget) Agent() (target.Agent, bool)                   { return nil, false }

type fakeBreakpoints struct{ f *fakeTarget }

func (b fakeBreakpoints) SWBreakpoints() (target.SWBreakpoints, bool) { return b.f, true }
func (b fakeBreakpoints) HWBreakpoints() (target.HWBreakpoints, bool) { return nil, false }
func (b fakeBreakpoints) HWWatchpoints() (target.HWWatchpoints, bool) { return nil, false }
func (b fakeBreakpoints) Agent() (target.BreakpointAgent, bool)       { return nil, false }

func (f *fakeTarget) ReadRegisters(dst []byte) error {
	copy(dst, f.regs[:])
	return nil
}
func (f *fakeTarget) WriteRegisters(src []byte) error {
	copy(f.regs[:], src)
	return nil
}
func (f *fakeTarget) ReadRegister(regID int, dst []byte) error {
	off := regID * 4
	copy(dst, f.regs[off:off+4])
	return nil
}
func (f *fakeTarget) WriteRegister(regID int, val []byte) error {
	off := regID * 4
	copy(f.regs[off:off+4], val)
	return nil
}
func (f *fakeTarget) ReadAddrs(addr uint64, data []byte) error {
	copy(data, f.mem[addr:addr+uint64(len(data))])
	return nil
}
func (f *fakeTarget) WriteAddrs(addr uint64, data []byte) error {
	copy(f.mem[addr:addr+uint64(len(data))], data)
	return nil
}

func (f *fakeTarget) pc() uint64 {
	var v uint64
	for i := 4; i < 8; i++ {
		v = v<<8 | uint64(f.regs[i])
	}
	return v
}

func (f *fakeTarget) Resume(ctx context.Context, action target.ResumeAction, interrupt target.InterruptPoll) (target.StopReason, error) {
	if f.halted {
		return target.StopReason{Kind: target.StopHalted}, nil
	}
	pc := f.pc()
	if _, planted := f.swBreaks[pc]; planted {
		return target.StopReason{Kind: target.StopSwBreak, Addr: pc}, nil
	}
	return target.StopReason{Kind: target.StopDoneStep}, nil
}

func (f *fakeTarget) AddSWBreakpoint(addr uint64, kind uint64) (bool, error) {
	f.swBreaks[addr] = 1
	return true, nil
}
func (f *fakeTarget) RemoveSWBreakpoint(addr uint64, kind uint64) (bool, error) {
	if _, ok := f.swBreaks[addr]; !ok {
		return false, nil
	}
	delete(f.swBreaks, addr)
	return true, nil
}

// fakeTransport is an in-memory Transport: ReadByte/Peek/ReadExact drain a
// fixed input buffer, WriteByte/Write/Flush append to an output buffer the
// test inspects afterward.
type fakeTransport struct {
	in  []byte
	pos int
	out []byte
}

func (t *fakeTransport) ReadByte() (byte, error) {
	if t.pos >= len(t.in) {
		return 0, io.EOF
	}
	b := t.in[t.pos]
	t.pos++
	return b, nil
}
func (t *fakeTransport) ReadExact(p []byte) error {
	for i := range p {
		b, err := t.ReadByte()
		if err != nil {
			return err
		}
		p[i] = b
	}
	return nil
}
func (t *fakeTransport) Peek() (byte, bool, error) {
	if t.pos >= len(t.in) {
		return 0, false, nil
	}
	return t.in[t.pos], true, nil
}
func (t *fakeTransport) WriteByte(b byte) error { t.out = append(t.out, b); return nil }
func (t *fakeTransport) Write(p []byte) (int, error) {
	t.out = append(t.out, p...)
	return len(p), nil
}
func (t *fakeTransport) Flush() error { return nil }
func (t *fakeTransport) OnSessionStart() {}

// framePacket builds a "$body#xx" wire frame.
func framePacket(body string) []byte {
	b := []byte(body)
	sum := proto.Checksum(b)
	out := append([]byte{'$'}, b...)
	out = append(out, '#')
	out = proto.AppendChecksumHex(out, sum)
	return out
}

// byteSliceSource adapts a []byte for proto.NewReader, for decoding a
// session's output the same way a real client would.
type byteSliceSource struct {
	b   []byte
	pos int
}

func (s *byteSliceSource) ReadByte() (byte, error) {
	if s.pos >= len(s.b) {
		return 0, io.EOF
	}
	b := s.b[s.pos]
	s.pos++
	return b, nil
}

func decodeEvents(t *testing.T, data []byte) []proto.Event {
	t.Helper()
	r := proto.NewReader(&byteSliceSource{b: data})
	var events []proto.Event
	for {
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("decoding session output: %v", err)
		}
		events = append(events, ev)
	}
	return events
}

func TestSessionQuestionMarkThenDetach(t *testing.T) {
	ft := newFakeTarget()
	var input []byte
	input = append(input, framePacket("?")...)
	input = append(input, framePacket("D")...)
	tr := &fakeTransport{in: input}

	sess := New(tr, ft, fakeArch{}, make([]byte, MinPacketSize))
	reason, err := sess.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if reason != DisconnectReasonClient {
		t.Fatalf("reason = %v, want DisconnectReasonClient", reason)
	}

	events := decodeEvents(t, tr.out)
	var packets []string
	for _, ev := range events {
		if ev.Kind == proto.EventPacket {
			packets = append(packets, string(ev.Body))
		}
	}
	if len(packets) != 2 || packets[0] != "S05" || packets[1] != "OK" {
		t.Fatalf("packets = %v, want [S05 OK]", packets)
	}
}

func TestSessionRegisterReadWrite(t *testing.T) {
	ft := newFakeTarget()
	ft.regs = [8]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}

	var input []byte
	input = append(input, framePacket("g")...)
	input = append(input, framePacket("G1122334455667788")...)
	input = append(input, framePacket("D")...)
	tr := &fakeTransport{in: input}

	sess := New(tr, ft, fakeArch{}, make([]byte, MinPacketSize))
	if _, err := sess.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var packets []string
	for _, ev := range decodeEvents(t, tr.out) {
		if ev.Kind == proto.EventPacket {
			packets = append(packets, string(ev.Body))
		}
	}
	if len(packets) != 3 {
		t.Fatalf("packets = %v, want 3 replies", packets)
	}
	if packets[0] != "0102030405060708" {
		t.Fatalf("g reply = %q, want 0102030405060708", packets[0])
	}
	if packets[1] != "OK" {
		t.Fatalf("G reply = %q, want OK", packets[1])
	}
	if ft.regs != ([8]byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}) {
		t.Fatalf("regs after G = %x", ft.regs)
	}
}

func TestSessionSoftwareBreakpointHit(t *testing.T) {
	ft := newFakeTarget()
	// Point pc at 0x10 up front so the first resume lands directly on it.
	ft.regs = [8]byte{0, 0, 0, 0, 0, 0, 0, 0x10}

	var input []byte
	input = append(input, framePacket("Z0,00000010,1")...)
	input = append(input, framePacket("vCont;c")...)
	input = append(input, framePacket("D")...)
	tr := &fakeTransport{in: input}

	sess := New(tr, ft, fakeArch{}, make([]byte, MinPacketSize))
	if _, err := sess.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, planted := ft.swBreaks[0x10]; !planted {
		t.Fatalf("breakpoint was not registered with the target")
	}

	var packets []string
	for _, ev := range decodeEvents(t, tr.out) {
		if ev.Kind == proto.EventPacket {
			packets = append(packets, string(ev.Body))
		}
	}
	if len(packets) != 3 {
		t.Fatalf("packets = %v, want 3 replies", packets)
	}
	if packets[0] != "OK" {
		t.Fatalf("Z reply = %q, want OK", packets[0])
	}
	want := "T05thread:p01.01;swbreak:;"
	if packets[1] != want {
		t.Fatalf("vCont reply = %q, want %q", packets[1], want)
	}
}

func TestSessionVContQuery(t *testing.T) {
	ft := newFakeTarget()
	var input []byte
	input = append(input, framePacket("vCont?")...)
	input = append(input, framePacket("D")...)
	tr := &fakeTransport{in: input}

	sess := New(tr, ft, fakeArch{}, make([]byte, MinPacketSize))
	if _, err := sess.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var packets []string
	for _, ev := range decodeEvents(t, tr.out) {
		if ev.Kind == proto.EventPacket {
			packets = append(packets, string(ev.Body))
		}
	}
	if len(packets) != 2 || packets[0] != "vCont;c;C;s;S" {
		t.Fatalf("packets = %v", packets)
	}
}

func TestSessionNoAckModeSuppressesAcks(t *testing.T) {
	ft := newFakeTarget()
	var input []byte
	input = append(input, framePacket("QStartNoAckMode")...)
	input = append(input, framePacket("?")...)
	input = append(input, framePacket("D")...)
	tr := &fakeTransport{in: input}

	sess := New(tr, ft, fakeArch{}, make([]byte, MinPacketSize))
	if _, err := sess.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	events := decodeEvents(t, tr.out)
	ackCount := 0
	for _, ev := range events {
		if ev.Kind == proto.EventAck {
			ackCount++
		}
	}
	// Only the incoming QStartNoAckMode packet itself is acked; everything
	// after runs with acks suppressed.
	if ackCount != 1 {
		t.Fatalf("ackCount = %d, want 1", ackCount)
	}
}
