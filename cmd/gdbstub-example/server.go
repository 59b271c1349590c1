package main

import (
	"context"
	"net"

	"github.com/kumargu/gdbstub"
	"github.com/kumargu/gdbstub/transport"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
)

// logrusAdapter satisfies gdbstub.Logger by forwarding to a logrus.Entry
// carrying the session id, so every log line a Session emits is already
// tagged with which connection it came from.
type logrusAdapter struct {
	entry *logrus.Entry
}

func (l logrusAdapter) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l logrusAdapter) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l logrusAdapter) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

// runServer accepts one connection at a time and serves it to completion
// before accepting the next, the same sequential discipline
// aykevl-emculator's gdbServer uses: "we intentionally don't handle the
// connection in a goroutine... only one GDB connection is supported."
func runServer(listenAddr string, memSize int) error {
	sock, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	logrus.Infof("gdbstub-example: listening on %s", listenAddr)

	for {
		conn, err := sock.Accept()
		if err != nil {
			return err
		}
		id := xid.New()
		entry := logrus.WithField("session", id.String())
		entry.Infof("accepted connection from %s", conn.RemoteAddr())

		if err := serveOne(conn, id, entry, memSize); err != nil {
			entry.Errorf("session error: %v", err)
		}
		conn.Close()
	}
}

func serveOne(conn net.Conn, id xid.ID, entry *logrus.Entry, memSize int) error {
	m := NewMachine(memSize)
	m.LoadProgram(0, []byte{0x90, 0x90, 0x90, opHalt})

	tr := transport.NewTCP(conn)
	buf := make([]byte, 4096)

	sess := gdbstub.New(tr, m, x86Arch{}, buf,
		gdbstub.WithLogger(logrusAdapter{entry: entry}),
		gdbstub.WithHooks(globalMetrics),
	)

	reason, err := sess.Run(context.Background())
	if err != nil {
		return err
	}
	entry.Infof("session %s ended: %s", id.String(), reason)
	return nil
}
