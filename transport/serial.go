package transport

import (
	"bufio"
	"io"
	"time"

	"github.com/daedaluz/goserial"
)

// Serial wraps a real UART as a Transport, the deployment shape a
// freestanding firmware embedder is most likely to use: gdb talking RSP over
// a serial line rather than TCP.
type Serial struct {
	port *goserial.Port
	br   *bufio.Reader
	bw   *bufio.Writer
}

// OpenSerial opens the named serial device (e.g. "/dev/ttyACM0") at the
// given baud rate and wraps it for use as a session transport.
func OpenSerial(name string, baud goserial.CFlag) (*Serial, error) {
	opts := goserial.NewOptions()
	port, err := goserial.Open(name, opts)
	if err != nil {
		return nil, err
	}
	if err := port.MakeRaw(); err != nil {
		port.Close()
		return nil, err
	}
	attrs, err := port.GetAttr()
	if err != nil {
		port.Close()
		return nil, err
	}
	attrs.SetSpeed(baud)
	if err := port.SetAttr(goserial.TCSANOW, attrs); err != nil {
		port.Close()
		return nil, err
	}
	return &Serial{
		port: port,
		br:   bufio.NewReader(port),
		bw:   bufio.NewWriter(port),
	}, nil
}

func (s *Serial) ReadByte() (byte, error) { return s.br.ReadByte() }

func (s *Serial) ReadExact(p []byte) error {
	_, err := io.ReadFull(s.br, p)
	return err
}

// Peek reports whether a byte is ready without consuming it, by arming the
// port's read timeout to effectively zero, probing, then restoring it. Any
// error from the probe is reported as "nothing ready" with a nil error; a
// connection failure is not told apart from a timeout here.
func (s *Serial) Peek() (byte, bool, error) {
	if s.br.Buffered() > 0 {
		b, err := s.br.Peek(1)
		if err != nil {
			return 0, false, err
		}
		return b[0], true, nil
	}

	s.port.SetReadTimeout(time.Millisecond)
	defer s.port.SetReadTimeout(0)

	b, err := s.br.Peek(1)
	if err != nil {
		return 0, false, nil //nolint:nilerr // a timed-out read just means "nothing ready"
	}
	return b[0], true, nil
}

func (s *Serial) WriteByte(b byte) error {
	_, err := s.bw.Write([]byte{b})
	return err
}

func (s *Serial) Write(p []byte) (int, error) { return s.bw.Write(p) }

func (s *Serial) Flush() error { return s.bw.Flush() }

func (s *Serial) OnSessionStart() {}

// Fd exposes the UART's raw file descriptor for external poll(2) loops.
func (s *Serial) Fd() (uintptr, bool) {
	fd := s.port.Fd()
	if fd < 0 {
		return 0, false
	}
	return uintptr(fd), true
}

// Close releases the underlying serial device.
func (s *Serial) Close() error { return s.port.Close() }
