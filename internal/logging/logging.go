// Package logging is a thin shim over the standard library logger so the
// remote admin console (internal/admin) can tee console output to a
// connected operator without every package importing admin directly.
package logging

import (
	"io"
	"log"
	"os"
	"sync"
)

var (
	mu  sync.Mutex
	std = log.New(os.Stdout, "", log.LstdFlags)
	tee io.Writer
)

// SetTee directs a copy of every logged line to w in addition to
// stdout, or clears the tee when w is nil. The admin console calls this
// once a remote operator attaches.
func SetTee(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	tee = w
	if w == nil {
		std.SetOutput(os.Stdout)
		return
	}
	std.SetOutput(io.MultiWriter(os.Stdout, w))
}

// Printf logs a formatted line through the shared logger.
func Printf(format string, args ...any) {
	mu.Lock()
	l := std
	mu.Unlock()
	l.Printf(format, args...)
}

// Println logs args through the shared logger.
func Println(args ...any) {
	mu.Lock()
	l := std
	mu.Unlock()
	l.Println(args...)
}
