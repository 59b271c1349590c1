package proto

import (
	"bytes"
	"testing"
)

type bufSink struct {
	bytes.Buffer
	flushed int
}

func (s *bufSink) WriteByte(b byte) error {
	return s.Buffer.WriteByte(b)
}

func (s *bufSink) Write(p []byte) (int, error) {
	return s.Buffer.Write(p)
}

func (s *bufSink) Flush() error {
	s.flushed++
	return nil
}

func TestWriterFramesSimpleResponse(t *testing.T) {
	sink := &bufSink{}
	w := NewWriter(sink)
	w.WriteString("OK")
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	want := string(framePacket("OK"))
	if sink.String() != want {
		t.Fatalf("got %q, want %q", sink.String(), want)
	}
	if sink.flushed != 1 {
		t.Fatalf("flushed = %d", sink.flushed)
	}
}

func TestWriterEscapesSpecialBytes(t *testing.T) {
	sink := &bufSink{}
	w := NewWriter(sink)
	w.WriteByte('#')
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	// body on the wire must be the escaped two-byte sequence, and the
	// checksum covers those wire bytes.
	escaped := []byte{escapeByte, '#' ^ escapeXOR}
	want := append([]byte{'$'}, escaped...)
	want = append(want, '#')
	want = AppendChecksumHex(want, Checksum(escaped))
	if sink.String() != string(want) {
		t.Fatalf("got %q, want %q", sink.String(), want)
	}
}

func TestWriterResend(t *testing.T) {
	sink := &bufSink{}
	w := NewWriter(sink)
	w.WriteString("OK")
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	first := sink.String()
	sink.Reset()
	w.Reset()
	if err := w.Resend(); err != nil {
		t.Fatal(err)
	}
	if sink.String() != first {
		t.Fatalf("resend mismatch: got %q, want %q", sink.String(), first)
	}
}

func TestWriterRunLengthEncoding(t *testing.T) {
	sink := &bufSink{}
	w := NewWriter(sink)
	w.Write(bytes.Repeat([]byte{'x'}, 10))
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	// decode it back via Unescape and confirm round trip, rather than
	// asserting an exact byte sequence (the RLE threshold is an internal
	// encoding choice).
	body := sink.String()
	dollar := body[1:]
	hashIdx := bytes.IndexByte([]byte(dollar), '#')
	wire := []byte(dollar[:hashIdx])
	decoded, err := Unescape(append([]byte(nil), wire...))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decoded, bytes.Repeat([]byte{'x'}, 10)) {
		t.Fatalf("decoded = %q", decoded)
	}
}

func TestWriterHexHelpers(t *testing.T) {
	sink := &bufSink{}
	w := NewWriter(sink)
	w.WriteHex(0xdeadbeef, 4)
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	want := framePacket("deadbeef")
	if sink.String() != string(want) {
		t.Fatalf("got %q, want %q", sink.String(), want)
	}
}
