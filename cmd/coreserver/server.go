// Command coreserver wires the protocol and server-state core
// (internal/bitio, internal/entity, internal/playerstate, internal/usercmd,
// internal/lzss, internal/reliable, internal/client, internal/session) into
// a runnable tick-based UDP server, following the teacher's networking
// package for its UDP-listener-plus-ticker shape, generalized to the
// spec's actual delta-compressed wire protocol instead of the teacher's
// room/chat message set.
package main

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/forgenet/arenacore/internal/client"
	"github.com/forgenet/arenacore/internal/config"
	"github.com/forgenet/arenacore/internal/demo"
	"github.com/forgenet/arenacore/internal/discovery"
	"github.com/forgenet/arenacore/internal/huffman"
	"github.com/forgenet/arenacore/internal/logging"
	"github.com/forgenet/arenacore/internal/metrics"
	"github.com/forgenet/arenacore/internal/protocol"
	"github.com/forgenet/arenacore/internal/reliable"
	"github.com/forgenet/arenacore/internal/session"
	"github.com/forgenet/arenacore/internal/store"
	"github.com/forgenet/arenacore/internal/usercmd"
)

// maxUDPPayload bounds one datagram, matching the teacher's MTU-safe
// buffer size for a UDP game socket.
const maxUDPPayload = 1400

// netClient is everything the session loop needs about one connection:
// the lifecycle slot, its reliable command ring, its address, and the
// per-direction Huffman codecs the bit-oriented message stream needs to
// stay mirrored with its peer across the life of the connection.
type netClient struct {
	*client.Client
	addr         *net.UDPAddr
	reliable     *reliable.Queue
	huffTx       *huffman.Codec
	huffRx       *huffman.Codec
	userinfo     string
	lastCmd      usercmd.Command
	deltaMessage int32
	csUpdated    []bool
	recorder     *demo.Recorder
}

// Server owns every piece of server-wide mutable state for one running
// map: the UDP socket, the session (configstrings/baselines/run state),
// and the client slot table. Per §9's design note, this replaces the
// reference's global sv/svs pair with one explicit owned value threaded
// through every handler instead of package-level singletons.
type Server struct {
	cfg  *config.Server
	sess *session.Session

	conn *net.UDPConn

	mu           sync.Mutex
	clients      []*netClient
	serverID     int32
	maxClients   int
	checksumFeed uint32

	bans   *store.Store
	beacon *discovery.Beacon

	running   bool
	stopCh    chan struct{}
	startedAt time.Time
}

// NewServer builds a Server from cfg. It does not open the socket or run
// the tick loop; call ListenAndServe for that.
func NewServer(cfg *config.Server, bans *store.Store) *Server {
	s := &Server{
		cfg:        cfg,
		sess:       session.NewSession(cfg.MaxClients),
		maxClients: cfg.MaxClients,
		bans:       bans,
		stopCh:     make(chan struct{}),
		startedAt:  time.Now(),
	}
	s.clients = make([]*netClient, cfg.MaxClients)
	for i := range s.clients {
		s.clients[i] = &netClient{Client: &client.Client{Num: i}}
	}
	return s
}

// ListenAndServe opens the UDP listener and runs the tick loop until Stop
// is called. It blocks.
func (s *Server) ListenAndServe() error {
	addr, err := net.ResolveUDPAddr("udp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("coreserver: resolve %s: %w", s.cfg.Listen, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("coreserver: listen: %w", err)
	}
	s.conn = conn
	defer conn.Close()

	s.spawnMap("warmup")
	s.running = true

	if s.cfg.HeartbeatAddr != "" {
		if b, err := discovery.Start(context.Background(), "", udpPort(addr), s.currentMap(), "ffa"); err != nil {
			logging.Printf("coreserver: discovery: %v", err)
		} else {
			s.beacon = b
		}
	}

	logging.Printf("coreserver: listening on %s (sv_maxclients=%d sv_fps=%d)", s.cfg.Listen, s.cfg.MaxClients, tickRate(s.cfg))

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		s.networkLoop()
	}()

	ticker := time.NewTicker(time.Second / time.Duration(tickRate(s.cfg)))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-s.stopCh:
			if s.beacon != nil {
				s.beacon.Close()
			}
			conn.Close()
			<-readDone
			return nil
		}
	}
}

// Stop halts the tick loop and closes the socket, the equivalent of the
// operator "killserver" command.
func (s *Server) Stop() { close(s.stopCh) }

func tickRate(cfg *config.Server) int {
	if cfg.TickRate <= 0 {
		return 20
	}
	return cfg.TickRate
}

func udpPort(a *net.UDPAddr) int { return a.Port }

// networkLoop drains inbound datagrams (§5 step 1). Every packet is
// dispatched synchronously against the owning slot: handlePacket takes the
// same s.mu lock the tick loop holds, so the read side mutates client state
// directly but never while a tick is running.
func (s *Server) networkLoop() {
	buf := make([]byte, maxUDPPayload)
	for {
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		metrics.PacketsRx.Inc()
		metrics.BytesRx.Add(float64(n))

		pkt := make([]byte, n)
		copy(pkt, buf[:n])
		s.handlePacket(pkt, addr)
	}
}

func (s *Server) handlePacket(pkt []byte, addr *net.UDPAddr) {
	if len(pkt) < 4 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if pkt[0] == 0xff && pkt[1] == 0xff && pkt[2] == 0xff && pkt[3] == 0xff {
		s.handleConnectionless(pkt[4:], addr)
		return
	}

	nc := s.findByAddr(addr)
	if nc == nil {
		return // packet from an address with no slot; silently dropped
	}
	nc.LastPacketTime = time.Now()
	s.handleClientPacket(nc, pkt)
}

func (s *Server) findByAddr(addr *net.UDPAddr) *netClient {
	for _, c := range s.clients {
		if c.State != client.Free && c.addr != nil && c.addr.String() == addr.String() {
			return c
		}
	}
	return nil
}

func (s *Server) currentMap() string {
	parts := strings.Split(s.sess.Configstrings[protocol.CSServerInfo], "\\")
	for i := 1; i+1 < len(parts); i += 2 {
		if parts[i] == "mapname" {
			return parts[i+1]
		}
	}
	return "(none)"
}

// broadcastConfigstring sets Configstrings[index] and pushes the change to
// every relevant connected client via internal/session's Active-immediate /
// Primed-deferred split (§4.6's configstring-set rule), instead of writing
// Configstrings directly and silently skipping the broadcast.
func (s *Server) broadcastConfigstring(index int, val string) error {
	clients := make([]*client.Client, 0, len(s.clients))
	csUpdated := make([][]bool, len(s.clients))
	for _, c := range s.clients {
		if c.State == client.Free {
			continue
		}
		clients = append(clients, c.Client)
		csUpdated[c.Num] = c.csUpdated
	}
	return s.sess.SetConfigstring(index, val, clients, csUpdated, nil, func(cl *client.Client, text string) {
		s.queueReliable(s.clientByNum(cl.Num), text)
	})
}
