package transport

import (
	"bufio"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/higebu/netfd"
)

// TCP wraps a net.Conn as a Transport, buffering reads and writes the same
// way the reference emulator's gdbHandle loop does with bufio.ReadWriter.
type TCP struct {
	conn net.Conn
	br   *bufio.Reader
	bw   *bufio.Writer
}

// NewTCP wraps conn for use as a session transport.
func NewTCP(conn net.Conn) *TCP {
	return &TCP{
		conn: conn,
		br:   bufio.NewReader(conn),
		bw:   bufio.NewWriter(conn),
	}
}

func (t *TCP) ReadByte() (byte, error) { return t.br.ReadByte() }

func (t *TCP) ReadExact(p []byte) error {
	_, err := io.ReadFull(t.br, p)
	return err
}

// Peek reports whether a byte is ready to be read without consuming it. A
// net.Conn has no native non-blocking peek, so this arms a deadline that
// expires immediately, attempts to buffer one byte, and clears the deadline
// again: a timeout means "nothing ready", anything else is a real error.
func (t *TCP) Peek() (byte, bool, error) {
	if t.br.Buffered() > 0 {
		b, err := t.br.Peek(1)
		if err != nil {
			return 0, false, err
		}
		return b[0], true, nil
	}

	if err := t.conn.SetReadDeadline(time.Now()); err != nil {
		return 0, false, err
	}
	defer t.conn.SetReadDeadline(time.Time{})

	b, err := t.br.Peek(1)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return 0, false, nil
		}
		return 0, false, err
	}
	return b[0], true, nil
}

func (t *TCP) WriteByte(b byte) error { return t.bw.WriteByte(b) }

func (t *TCP) Write(p []byte) (int, error) { return t.bw.Write(p) }

func (t *TCP) Flush() error { return t.bw.Flush() }

func (t *TCP) OnSessionStart() {}

// Fd implements RawConner on UNIX by pulling the raw file descriptor out of
// the wrapped net.Conn, the same technique runZeroInc-sockstats uses to feed
// sockets to syscall-level TCP_INFO queries.
func (t *TCP) Fd() (uintptr, bool) {
	fd := netfd.GetFdFromConn(t.conn)
	if fd < 0 {
		return 0, false
	}
	return uintptr(fd), true
}

// RawConn exposes the conn's syscall.RawConn, for embedders that want to
// drive their own poll(2)/epoll loop across many sessions instead of
// blocking a goroutine per session on ReadByte.
func (t *TCP) RawConn() (syscall.RawConn, bool) {
	sc, ok := t.conn.(syscall.Conn)
	if !ok {
		return nil, false
	}
	rc, err := sc.SyscallConn()
	if err != nil {
		return nil, false
	}
	return rc, true
}
