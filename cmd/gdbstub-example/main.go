package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

var (
	flagListen     string
	flagMetricsAddr string
	flagMemSize    int
	flagLoglevel   string
)

var loglevels = map[string]logrus.Level{
	"error": logrus.ErrorLevel,
	"warn":  logrus.WarnLevel,
	"info":  logrus.InfoLevel,
	"debug": logrus.DebugLevel,
}

// globalMetrics is wired into every Session as a gdbstub.Hooks
// implementation; it's a package-level var (rather than threaded through
// runServer's args) because it's genuinely process-wide, the way
// aykevl-emculator keeps its flag vars at package scope.
var globalMetrics *metricsHooks

func main() {
	flag.StringVar(&flagListen, "listen", "localhost:7333", "GDB target listen address")
	flag.StringVar(&flagMetricsAddr, "metrics-addr", "", "Prometheus /metrics listen address (disabled if empty)")
	flag.IntVar(&flagMemSize, "memsize", 64*1024, "toy machine memory size in bytes")
	flag.StringVar(&flagLoglevel, "loglevel", "info", "error, warn, info, debug")
	flag.Parse()

	level, ok := loglevels[flagLoglevel]
	if !ok {
		fmt.Fprintln(os.Stderr, "error: loglevel must be one of: error, warn, info, debug")
		flag.PrintDefaults()
		os.Exit(1)
	}
	logrus.SetLevel(level)

	if flagMemSize <= 0 {
		fmt.Fprintln(os.Stderr, "error: memsize must be positive")
		os.Exit(1)
	}

	globalMetrics = newMetricsHooks()

	if flagMetricsAddr != "" {
		go func() {
			if err := serveMetrics(flagMetricsAddr); err != nil {
				logrus.Errorf("metrics server error: %v", err)
			}
		}()
	}

	if err := runServer(flagListen, flagMemSize); err != nil {
		fmt.Fprintln(os.Stderr, "gdb server error:", err)
		os.Exit(1)
	}
}
