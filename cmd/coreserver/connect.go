package main

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/forgenet/arenacore/internal/bitio"
	"github.com/forgenet/arenacore/internal/client"
	"github.com/forgenet/arenacore/internal/entity"
	"github.com/forgenet/arenacore/internal/huffman"
	"github.com/forgenet/arenacore/internal/logging"
	"github.com/forgenet/arenacore/internal/metrics"
	"github.com/forgenet/arenacore/internal/protocol"
	"github.com/forgenet/arenacore/internal/reliable"
	"github.com/forgenet/arenacore/internal/session"
)

// handleConnectionless dispatches an out-of-band (0xFFFFFFFF-prefixed)
// datagram: "connect", "getstatus", "getinfo" and similar commands that
// arrive before a client has a slot.
func (s *Server) handleConnectionless(body []byte, addr *net.UDPAddr) {
	line := string(body)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "connect":
		s.handleConnect(line, addr)
	case "getstatus":
		s.oobPrint(addr, s.statusString())
	case "getinfo":
		s.oobPrint(addr, s.serverInfoString())
	default:
		s.oobPrint(addr, fmt.Sprintf("Unknown command %q\n", fields[0]))
	}
}

// oobReply writes an out-of-band reply: 0xFFFFFFFF framing followed by the
// aligned payload, matching the sentinel described in §6.
func (s *Server) oobReply(addr *net.UDPAddr, payload []byte) {
	buf := make([]byte, 4+len(payload))
	buf[0], buf[1], buf[2], buf[3] = 0xff, 0xff, 0xff, 0xff
	copy(buf[4:], payload)
	if _, err := s.conn.WriteToUDP(buf, addr); err != nil {
		logging.Printf("coreserver: oob write to %s: %v", addr, err)
		return
	}
	metrics.PacketsTx.Inc()
	metrics.BytesTx.Add(float64(len(buf)))
}

func (s *Server) oobPrint(addr *net.UDPAddr, text string) {
	s.oobReply(addr, []byte("print\n"+text))
}

func parseUserinfo(s string) map[string]string {
	parts := strings.Split(s, "\\")
	out := make(map[string]string)
	for i := 1; i+1 < len(parts); i += 2 {
		out[parts[i]] = parts[i+1]
	}
	return out
}

// cleanUserinfoValue strips the characters the reference server strips
// from any userinfo value before storing it: quotes, semicolons and raw
// control bytes, each of which could otherwise break out of the \key\value
// format or be used to smuggle a console command.
func cleanUserinfoValue(v string) string {
	var b strings.Builder
	for _, r := range v {
		if r == '"' || r == ';' || r < 0x20 {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Server) handleConnect(line string, addr *net.UDPAddr) {
	i := strings.IndexByte(line, '"')
	if i < 0 {
		s.oobPrint(addr, "connect: missing userinfo\n")
		return
	}
	raw := strings.Trim(line[i:], "\"")
	info := parseUserinfo(raw)
	for k, v := range info {
		info[k] = cleanUserinfoValue(v)
	}

	if s.bans != nil {
		if ban, err := s.bans.IsBanned(addr.IP, time.Now()); err == nil && ban != nil {
			s.oobPrint(addr, fmt.Sprintf("You are banned from this server: %s\n", ban.Reason))
			return
		}
	}

	if existing := s.findByAddr(addr); existing != nil {
		s.resendGamestate(existing)
		return
	}

	slot := s.freeSlot()
	if slot == nil {
		s.oobPrint(addr, "Server is full.\n")
		return
	}

	slot.addr = addr
	slot.userinfo = raw
	slot.Name = info["name"]
	slot.huffTx = huffman.NewCodec()
	slot.huffRx = huffman.NewCodec()
	slot.reliable = reliable.NewQueue()
	slot.deltaMessage = -1
	slot.csUpdated = make([]bool, protocol.MaxConfigstrings)
	slot.LastPacketTime = time.Now()
	slot.State = client.Free
	if !slot.SetState(client.Connected) {
		logging.Printf("coreserver: slot %d: illegal Free->Connected transition", slot.Num)
		return
	}

	logging.Printf("coreserver: client %d connecting from %s (name=%q)", slot.Num, addr, slot.Name)
	s.sendGamestate(slot)
}

// resendGamestate re-sends the gamestate to an already-known address, the
// "keep slot, resend gamestate" effect of a reconnect or identical-map
// spawn (§4.5's "any >= CONNECTED" row).
func (s *Server) resendGamestate(c *netClient) {
	c.SetState(client.Connected)
	s.sendGamestate(c)
}

func (s *Server) freeSlot() *netClient {
	for _, c := range s.clients {
		if c.State == client.Free {
			return c
		}
	}
	return nil
}

// sendGamestate builds and sends the gamestate packet: the client's current
// reliable command sequence as the leading long, the svc_gamestate byte,
// every non-empty configstring, every baseline entity, and the trailing
// client_num/checksum_feed pair. No acknowledged client command number is
// sent, and no further sequence number follows the svc_gamestate byte.
func (s *Server) sendGamestate(c *netClient) {
	buf := make([]byte, maxUDPPayload)
	msg := bitio.NewMessage(buf, c.huffTx)

	msg.WriteLong(int32(c.reliable.Sequence()))
	msg.WriteByte(byte(protocol.SvcGamestate))

	for i, cs := range s.sess.Configstrings {
		if cs == "" {
			continue
		}
		msg.WriteByte(byte(protocol.SvcConfigstring))
		msg.WriteShort(int16(i))
		msg.WriteBigString(cs)
	}

	for _, n := range sortedBaselineNumbers(s.sess) {
		msg.WriteByte(byte(protocol.SvcBaseline))
		entity.DeltaEncode(msg, &entity.State{}, s.sess.Baselines[n], true)
	}

	msg.WriteByte(byte(protocol.SvcEOF))
	msg.WriteLong(int32(c.Num))
	msg.WriteLong(int32(s.checksumFeed))
	msg.WriteByte(byte(protocol.SvcEOF))

	s.sendRaw(c, buf[:msg.CurSize])
}

func sortedBaselineNumbers(sess *session.Session) []int32 {
	nums := make([]int32, 0, len(sess.Baselines))
	for n := range sess.Baselines {
		nums = append(nums, n)
	}
	for i := 1; i < len(nums); i++ {
		for j := i; j > 0 && nums[j-1] > nums[j]; j-- {
			nums[j-1], nums[j] = nums[j], nums[j-1]
		}
	}
	return nums
}

func (s *Server) sendRaw(c *netClient, data []byte) {
	if _, err := s.conn.WriteToUDP(data, c.addr); err != nil {
		logging.Printf("coreserver: write to client %d: %v", c.Num, err)
		return
	}
	metrics.PacketsTx.Inc()
	metrics.BytesTx.Add(float64(len(data)))
}

func (s *Server) statusString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "map: %s\n", s.currentMap())
	fmt.Fprintf(&b, "up: %s\n", humanize.Time(s.startedAt))
	fmt.Fprintf(&b, "num score ping name            address\n")
	for _, c := range s.clients {
		if c.State == client.Free {
			continue
		}
		fmt.Fprintf(&b, "%-3d %-5s %-4s %-15s %s\n", c.Num, "0", "0", c.Name, addrOrLoopback(c))
	}
	return b.String()
}

func addrOrLoopback(c *netClient) string {
	if c.IsLoopback || c.addr == nil {
		return "loopback"
	}
	return c.addr.String()
}

func (s *Server) serverInfoString() string {
	return fmt.Sprintf("\\sv_maxclients\\%s\\mapname\\%s", strconv.Itoa(s.maxClients), s.currentMap())
}
