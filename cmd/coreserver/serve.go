package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/forgenet/arenacore/internal/admin"
	"github.com/forgenet/arenacore/internal/config"
	"github.com/forgenet/arenacore/internal/logging"
	"github.com/forgenet/arenacore/internal/metrics"
	"github.com/forgenet/arenacore/internal/store"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the server core: load config, open the ban store, and serve",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := config.LoadServer(configPath)
	if err != nil {
		return fmt.Errorf("coreserver: load %s: %w", configPath, err)
	}
	if _, err := config.LoadGametypes(gametypesPath); err != nil {
		logging.Printf("coreserver: load %s: %v (continuing without gametype rules)", gametypesPath, err)
	}

	bans, err := store.Open(bansPath)
	if err != nil {
		return fmt.Errorf("coreserver: open ban store %s: %w", bansPath, err)
	}
	defer bans.Close()

	srv := NewServer(cfg, bans)

	if cfg.AdminListen != "" {
		console := admin.NewConsole([]byte(cfg.AdminJWTKey), srv.Dispatch)
		mux := http.NewServeMux()
		mux.Handle("/ws/console", console.Handler())
		adminSrv := &http.Server{Addr: cfg.AdminListen, Handler: mux}
		go func() {
			if err := adminSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logging.Printf("coreserver: admin console: %v", err)
			}
		}()
		defer adminSrv.Close()
		logging.Printf("coreserver: admin console listening on %s", cfg.AdminListen)
	}

	metricsSrv := &http.Server{Addr: ":9100", Handler: metrics.Handler()}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Printf("coreserver: metrics: %v", err)
		}
	}()
	defer metricsSrv.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		logging.Printf("coreserver: signal received, shutting down")
		srv.Stop()
	}()

	go runStdinConsole(srv)

	return srv.ListenAndServe()
}

// runStdinConsole reads operator command lines from stdin, the local
// counterpart of the admin websocket console. When stdin is a real
// terminal it is switched to raw mode (as the teacher pack's wt egg
// command does for its own interactive session) and read byte by byte:
// Enter runs the line, backspace deletes the last byte and ^C stops the
// server. There is no command history or cursor movement; any other byte,
// including an arrow key's escape sequence, is appended to the line as is.
// When stdin is not a terminal (e.g. under a supervisor with stdin
// redirected from /dev/null) raw mode is skipped.
func runStdinConsole(s *Server) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			logging.Printf("coreserver: stdin console: raw mode: %v", err)
		} else {
			defer term.Restore(fd, oldState)
		}
	}

	reader := bufio.NewReader(os.Stdin)
	var line []byte
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return
		}
		switch b {
		case '\r', '\n':
			cmd := string(line)
			line = line[:0]
			if cmd == "" {
				continue
			}
			result := s.Dispatch(cmd)
			if result != "" {
				fmt.Fprintln(os.Stdout, result)
			}
		case 127, '\b':
			if len(line) > 0 {
				line = line[:len(line)-1]
			}
		case 3: // ^C
			s.Stop()
			return
		default:
			line = append(line, b)
		}
	}
}
