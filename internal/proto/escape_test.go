package proto

import (
	"bytes"
	"testing"
)

func TestUnescapeLiteral(t *testing.T) {
	got, err := Unescape([]byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("hello")) {
		t.Fatalf("got %q", got)
	}
}

func TestUnescapeBraceEscape(t *testing.T) {
	// '}' followed by byte^0x20: encode '#' (0x23) as '}'+0x03.
	in := []byte{'a', escapeByte, '#' ^ escapeXOR, 'b'}
	got, err := Unescape(in)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("a#b")) {
		t.Fatalf("got %q", got)
	}
}

func TestUnescapeRLE(t *testing.T) {
	// "a* " is GDB's canonical example: a run of 4 'a's, encoded as one
	// literal 'a' followed by '*' and the count byte ' ' (0x20), since
	// 0x20-29 = 3 additional repeats.
	in := []byte{'a', rleByte, ' '}
	got, err := Unescape(in)
	if err != nil {
		t.Fatal(err)
	}
	want := bytes.Repeat([]byte{'a'}, 4)
	if !bytes.Equal(got, want) {
		t.Fatalf("got %q (%d bytes), want %q (%d bytes)", got, len(got), want, len(want))
	}
}

func TestUnescapeRLENoPredecessor(t *testing.T) {
	_, err := Unescape([]byte{rleByte, '0'})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestUnescapeTruncated(t *testing.T) {
	if _, err := Unescape([]byte{escapeByte}); err == nil {
		t.Fatal("expected truncated escape error")
	}
	if _, err := Unescape([]byte{'a', rleByte}); err == nil {
		t.Fatal("expected truncated rle error")
	}
}

func TestEncodeRLECountAvoidsSpecialBytes(t *testing.T) {
	for extra := 0; extra < 200; extra++ {
		b, ok := EncodeRLECount(extra)
		if !ok {
			continue
		}
		if b == '$' || b == '#' || b == '}' || b == '*' || b == '+' || b == '-' {
			t.Fatalf("EncodeRLECount(%d) produced disallowed byte %q", extra, b)
		}
	}
}
