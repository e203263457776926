package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/forgenet/arenacore/internal/client"
	"github.com/forgenet/arenacore/internal/demo"
	"github.com/forgenet/arenacore/internal/logging"
	"github.com/forgenet/arenacore/internal/protocol"
)

// Dispatch runs one operator console line against s and returns its
// textual result. It is the single implementation behind every entry
// point the CLI surface in §6 names: the stdin console, the admin
// websocket console (internal/admin), and the Cobra subcommands in
// remote.go that forward to a running server over that same websocket.
func (s *Server) Dispatch(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	args := fields[1:]

	switch fields[0] {
	case "heartbeat":
		return s.cmdHeartbeat()
	case "kick":
		return s.cmdKick(args)
	case "clientkick":
		return s.cmdClientKick(args)
	case "status":
		return s.statusString()
	case "dumpuser":
		return s.cmdDumpUser(args)
	case "map_restart":
		return s.cmdMapRestart(args)
	case "map", "devmap", "spmap", "spdevmap":
		return s.cmdMap(args)
	case "killserver":
		s.Stop()
		return "server shutting down"
	case "serverinfo":
		return s.serverInfoString()
	case "systeminfo":
		return s.sess.Configstrings[1]
	case "say":
		return s.cmdSay(args)
	case "tell":
		return s.cmdTell(args)
	case "locations":
		return "locations: not tracked by this core (game VM adjunct)"
	case "sectorlist":
		return "sectorlist: not tracked by this core (BSP collision adjunct)"
	case "filter":
		return s.cmdFilter(args)
	case "filtercmd":
		return s.cmdFilterCmd(args)
	case "record":
		return s.cmdRecord(args)
	case "stoprecord":
		return s.cmdStopRecord(args)
	default:
		return fmt.Sprintf("unknown command: %s", fields[0])
	}
}

func (s *Server) cmdHeartbeat() string {
	if s.cfg.HeartbeatAddr == "" {
		return "heartbeat: no heartbeat_addr configured"
	}
	logging.Printf("coreserver: heartbeat -> %s", s.cfg.HeartbeatAddr)
	return "heartbeat sent"
}

func (s *Server) cmdKick(args []string) string {
	if len(args) == 0 {
		return "usage: kick <name|num|all|allbots>"
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var connected []*client.Client
	for _, c := range s.clients {
		connected = append(connected, c.Client)
	}

	switch args[0] {
	case "all":
		for _, c := range client.Selected(connected, client.KickAll, nil) {
			s.dropClient(s.clientByNum(c.Num), "kicked by operator")
		}
		return "kicked all clients"
	case "allbots":
		for _, c := range client.Selected(connected, client.KickAllBots, nil) {
			s.dropClient(s.clientByNum(c.Num), "kicked by operator")
		}
		return "kicked all bots"
	default:
		target, err := client.LookupByNameOrNum(connected, args[0])
		if err != nil {
			return err.Error()
		}
		if len(client.Selected(connected, client.KickOne, target)) == 0 {
			return fmt.Sprintf("cannot kick %s: loopback client", target.Name)
		}
		s.dropClient(s.clientByNum(target.Num), "kicked by operator")
		return fmt.Sprintf("kicked %s", target.Name)
	}
}

func (s *Server) cmdClientKick(args []string) string {
	if len(args) == 0 {
		return "usage: clientkick <num>"
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var connected []*client.Client
	for _, c := range s.clients {
		connected = append(connected, c.Client)
	}
	target, err := client.LookupByNum(connected, s.maxClients, args[0])
	if err != nil {
		return err.Error()
	}
	if len(client.Selected(connected, client.KickOne, target)) == 0 {
		return fmt.Sprintf("cannot kick slot %d: loopback client", target.Num)
	}
	s.dropClient(s.clientByNum(target.Num), "kicked by operator")
	return fmt.Sprintf("kicked slot %d", target.Num)
}

func (s *Server) cmdDumpUser(args []string) string {
	if len(args) == 0 {
		return "usage: dumpuser <name>"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var connected []*client.Client
	for _, c := range s.clients {
		connected = append(connected, c.Client)
	}
	target, err := client.LookupByNameOrNum(connected, args[0])
	if err != nil {
		return err.Error()
	}
	nc := s.clientByNum(target.Num)
	return fmt.Sprintf("userinfo for %s: %s", target.Name, nc.userinfo)
}

func (s *Server) cmdMapRestart(args []string) string {
	delay := 0
	if len(args) > 0 {
		if v, err := strconv.Atoi(args[0]); err == nil {
			delay = v
		}
	}
	s.mapRestart(delay)
	if delay > 0 {
		return fmt.Sprintf("map_restart scheduled in %ds", delay)
	}
	return "map restarted"
}

func (s *Server) cmdMap(args []string) string {
	if len(args) == 0 {
		return "usage: map <name>"
	}
	s.spawnMap(args[0])
	return fmt.Sprintf("spawned map %s", args[0])
}

func (s *Server) cmdSay(args []string) string {
	if len(args) == 0 {
		return "usage: say <text>"
	}
	text := fmt.Sprintf("chat \"console: %s\"", strings.Join(args, " "))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		if c.State >= client.Active {
			s.queueReliable(c, text)
		}
	}
	return "said"
}

func (s *Server) cmdTell(args []string) string {
	if len(args) < 2 {
		return "usage: tell <client> <text>"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var connected []*client.Client
	for _, c := range s.clients {
		connected = append(connected, c.Client)
	}
	target, err := client.LookupByNameOrNum(connected, args[0])
	if err != nil {
		return err.Error()
	}
	text := fmt.Sprintf("chat \"console: %s\"", strings.Join(args[1:], " "))
	s.queueReliable(s.clientByNum(target.Num), text)
	return "told"
}

func (s *Server) cmdFilter(args []string) string {
	if s.bans == nil {
		return "filter: no ban store configured"
	}
	if len(args) < 2 {
		return "usage: filter add <ip>"
	}
	switch args[0] {
	case "add":
		id, err := s.bans.AddBan(args[1], 32, "operator filter", nil)
		if err != nil {
			return err.Error()
		}
		return fmt.Sprintf("added ban #%d", id)
	default:
		return fmt.Sprintf("unknown filter subcommand: %s", args[0])
	}
}

func (s *Server) cmdFilterCmd(args []string) string {
	if s.bans == nil {
		return "filtercmd: no ban store configured"
	}
	if len(args) == 0 {
		return "usage: filtercmd <addip|removeip|banlist> ..."
	}
	switch args[0] {
	case "addip":
		if len(args) < 2 {
			return "usage: filtercmd addip <ip>"
		}
		id, err := s.bans.AddBan(args[1], 32, "filtercmd addip", nil)
		if err != nil {
			return err.Error()
		}
		return fmt.Sprintf("banned %s (#%d)", args[1], id)
	case "removeip":
		if len(args) < 2 {
			return "usage: filtercmd removeip <id>"
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return err.Error()
		}
		if err := s.bans.RemoveBan(id); err != nil {
			return err.Error()
		}
		return fmt.Sprintf("removed ban #%d", id)
	case "banlist":
		bans, err := s.bans.ListBans()
		if err != nil {
			return err.Error()
		}
		var b strings.Builder
		for _, ban := range bans {
			fmt.Fprintf(&b, "#%d %s/%d %s\n", ban.ID, ban.Address, ban.Mask, ban.Reason)
		}
		return b.String()
	default:
		return fmt.Sprintf("unknown filtercmd subcommand: %s", args[0])
	}
}

// cmdRecord starts a server-side demo recording of one client's snapshot
// stream, the spectator-demo counterpart of a client typing "record".
func (s *Server) cmdRecord(args []string) string {
	if len(args) == 0 {
		return "usage: record <client>"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var connected []*client.Client
	for _, c := range s.clients {
		connected = append(connected, c.Client)
	}
	target, err := client.LookupByNameOrNum(connected, args[0])
	if err != nil {
		return err.Error()
	}
	nc := s.clientByNum(target.Num)
	if nc.recorder != nil {
		return fmt.Sprintf("client %d is already being recorded", nc.Num)
	}

	mapname := s.currentMap()
	id := demo.SuggestedName(mapname, uuid.New())
	rec, err := demo.StartRecording(id, protocol.Version, int32(tickRate(s.cfg)), int32(s.maxClients), mapname, s.sess.Configstrings[:])
	if err != nil {
		return fmt.Sprintf("record: %v", err)
	}
	nc.recorder = rec
	return fmt.Sprintf("recording client %d to %s", nc.Num, id)
}

func (s *Server) cmdStopRecord(args []string) string {
	if len(args) == 0 {
		return "usage: stoprecord <client>"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var connected []*client.Client
	for _, c := range s.clients {
		connected = append(connected, c.Client)
	}
	target, err := client.LookupByNameOrNum(connected, args[0])
	if err != nil {
		return err.Error()
	}
	nc := s.clientByNum(target.Num)
	if nc.recorder == nil {
		return fmt.Sprintf("client %d is not being recorded", nc.Num)
	}
	if err := nc.recorder.Close(); err != nil {
		logging.Printf("coreserver: stoprecord client %d: %v", nc.Num, err)
	}
	nc.recorder = nil
	return fmt.Sprintf("stopped recording client %d", nc.Num)
}
