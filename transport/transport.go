// Package transport defines the byte-stream contract the gdbstub engine
// consumes, and provides TCP and serial implementations of it.
//
// The engine never assumes anything about how bytes travel between it and
// the client beyond this interface: a TCP socket, a serial line, or a pipe
// all look the same from here.
package transport

// Transport is the byte-stream contract the handler core drives. Peek must
// be non-blocking: it reports whether a byte is currently available without
// consuming it, distinguishing "nothing ready yet" from a connection error.
type Transport interface {
	// ReadByte blocks until a byte is available, or returns an error.
	ReadByte() (byte, error)
	// ReadExact blocks until len(p) bytes have been read into p.
	ReadExact(p []byte) error
	// Peek non-blockingly reports whether a byte is ready to be read. ok is
	// false with a nil error when nothing is ready yet.
	Peek() (b byte, ok bool, err error)
	// WriteByte writes a single byte.
	WriteByte(b byte) error
	// Write writes p in full.
	Write(p []byte) (int, error)
	// Flush pushes any buffered output to the wire.
	Flush() error
	// OnSessionStart is called once when a session begins driving this
	// transport, before the first packet is read.
	OnSessionStart()
}

// RawConner is an optional capability: transports backed by a UNIX file
// descriptor can expose it so an embedder can multiplex many sessions with
// an external poll(2)/epoll loop instead of dedicating a goroutine per
// session.
type RawConner interface {
	// Fd returns the underlying file descriptor and true, or (0, false) if
	// none is available (e.g. not running on UNIX, or not yet connected).
	Fd() (fd uintptr, ok bool)
}
