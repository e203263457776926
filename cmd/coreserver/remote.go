package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/spf13/cobra"
)

// remoteCommands builds one thin Cobra subcommand per §6 operator command,
// each dialing a running server's admin console over WebSocket and
// printing the textual result. This is the out-of-process counterpart of
// typing the same line at the "serve" console's stdin, or sending it over
// the admin websocket from another tool — all three paths end up at the
// same Server.Dispatch.
func remoteCommands() []*cobra.Command {
	names := []string{
		"heartbeat", "kick", "clientkick", "status", "dumpuser",
		"map_restart", "map", "devmap", "spmap", "spdevmap", "killserver",
		"serverinfo", "systeminfo", "say", "tell", "locations", "sectorlist",
		"filter", "filtercmd", "record", "stoprecord",
	}
	cmds := make([]*cobra.Command, 0, len(names))
	for _, name := range names {
		name := name
		cmds = append(cmds, &cobra.Command{
			Use:                name,
			Short:              fmt.Sprintf("Send %q to a running server's admin console", name),
			DisableFlagParsing: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				line := strings.TrimSpace(name + " " + strings.Join(args, " "))
				out, err := sendAdminCommand(line)
				if err != nil {
					return err
				}
				fmt.Println(out)
				return nil
			},
		})
	}
	return cmds
}

func sendAdminCommand(line string) (string, error) {
	url := os.Getenv("CORESERVER_ADMIN_URL")
	token := os.Getenv("CORESERVER_ADMIN_TOKEN")
	if url == "" {
		return "", fmt.Errorf("set CORESERVER_ADMIN_URL (e.g. ws://127.0.0.1:27961/ws/console) to reach a running server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := &websocket.DialOptions{HTTPHeader: make(map[string][]string)}
	opts.HTTPHeader.Set("Authorization", "Bearer "+token)

	conn, _, err := websocket.Dial(ctx, url, opts)
	if err != nil {
		return "", fmt.Errorf("coreserver: admin dial: %w", err)
	}
	defer conn.CloseNow()

	if err := conn.Write(ctx, websocket.MessageText, []byte(line)); err != nil {
		return "", fmt.Errorf("coreserver: admin write: %w", err)
	}
	_, data, err := conn.Read(ctx)
	if err != nil {
		return "", fmt.Errorf("coreserver: admin read: %w", err)
	}
	return string(data), nil
}
