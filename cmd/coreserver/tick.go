package main

import (
	"fmt"
	"time"

	"github.com/forgenet/arenacore/internal/bitio"
	"github.com/forgenet/arenacore/internal/client"
	"github.com/forgenet/arenacore/internal/entity"
	"github.com/forgenet/arenacore/internal/logging"
	"github.com/forgenet/arenacore/internal/lzss"
	"github.com/forgenet/arenacore/internal/mathutil"
	"github.com/forgenet/arenacore/internal/metrics"
	"github.com/forgenet/arenacore/internal/playerstate"
	"github.com/forgenet/arenacore/internal/protocol"
	"github.com/forgenet/arenacore/internal/usercmd"
)

// zcmdThreshold is the plaintext size past which a batch of pending
// reliable commands is worth running through lzss (C4) instead of being
// written as plain svc_server_command records: below it, the 3-bit
// sequence/width/size header and token-count field cost more than the
// match-finder saves.
const zcmdThreshold = 32

// writeReliableCommands appends every reliable command in
// (c.reliable.Acknowledged(), c.reliable.Sequence()] to msg, batching up to
// lzss.maxZcmdBatch commands per svc_zcmd record when the combined text
// clears zcmdThreshold, and falling back to plain svc_server_command
// records otherwise (spec.md §4.3's compression is optional; small
// batches are cheaper uncompressed).
func writeReliableCommands(msg *bitio.Message, c *netClient) {
	first := c.reliable.Acknowledged() + 1
	last := c.reliable.Sequence()
	if first > last {
		return
	}

	var seqs []int32
	var cmds []string
	for seq := first; seq <= last; seq++ {
		cmd, ok := c.reliable.Command(seq)
		if !ok {
			continue
		}
		seqs = append(seqs, seq)
		cmds = append(cmds, cmd)
	}
	if len(cmds) == 0 {
		return
	}

	plainSize := 0
	for _, cmd := range cmds {
		plainSize += len(cmd)
	}
	if plainSize < zcmdThreshold {
		msg.WriteByte(byte(protocol.SvcServerCommand))
		for i, cmd := range cmds {
			msg.WriteLong(seqs[i])
			msg.WriteString(cmd)
		}
		return
	}

	const batch = 4 // mirrors lzss.maxZcmdBatch; kept local since it's unexported
	for start := 0; start < len(cmds); start += batch {
		end := start + batch
		if end > len(cmds) {
			end = len(cmds)
		}
		msg.WriteByte(byte(protocol.SvcZcmd))
		lzss.WriteZcmd(msg, seqs[start], cmds[start:end])
	}
}

// tick runs one iteration of the cooperative scheduling loop described in
// §5: drain is handled by the concurrent networkLoop goroutine queuing
// straight into client state (itself guarded by s.mu), so this method
// covers steps 2-5: run pending commands (already applied as packets
// arrived), send snapshots, handle timeouts and zombie reaping.
func (s *Server) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.sendSnapshots(now)
	s.reapTimeouts(now)
	s.reapZombies(now)
	s.checkScheduledRestart(now)
}

// checkScheduledRestart fires a delayed map_restart once its RestartTime
// elapses (§8 scenario 3's countdown started by mapRestart).
func (s *Server) checkScheduledRestart(now time.Time) {
	if s.sess.RestartTime == 0 || now.UnixMilli() < s.sess.RestartTime {
		return
	}
	s.doMapRestart()
}

func (s *Server) reapTimeouts(now time.Time) {
	timeout := time.Duration(s.cfg.Timeout) * time.Second
	for _, c := range s.clients {
		if c.State < client.Connected {
			continue
		}
		if c.TimedOut(now, timeout) {
			s.dropClient(c, "timed out")
		}
	}
}

func (s *Server) reapZombies(now time.Time) {
	zombieTime := time.Duration(s.cfg.ZombieTime) * time.Second
	for _, c := range s.clients {
		if c.State != client.Zombie {
			continue
		}
		if c.ZombieUntil.IsZero() {
			c.ZombieUntil = c.LastPacketTime.Add(zombieTime)
		}
		if c.ZombieExpired(now) {
			s.freeClient(c)
		}
	}
}

// dropClient moves c to Zombie, forcing its final disconnect reliable
// commands out twice ignoring the rate limiter, per §5's cancellation
// rule.
func (s *Server) dropClient(c *netClient, reason string) {
	if c.State < client.Connected {
		return
	}
	logging.Printf("coreserver: dropping client %d: %s", c.Num, reason)
	cmd := fmt.Sprintf("disconnect %q", reason)
	if _, err := c.reliable.Add(cmd); err != nil {
		logging.Printf("coreserver: client %d: reliable overflow while dropping: %v", c.Num, err)
	}
	s.flushReliable(c)
	s.flushReliable(c)
	c.SetState(client.Zombie)
	c.ZombieUntil = time.Time{}
	metrics.ClientsByState.WithLabelValues(client.Zombie.String()).Inc()
}

func (s *Server) freeClient(c *netClient) {
	num := c.Num
	name := c.Name
	if c.recorder != nil {
		if err := c.recorder.Close(); err != nil {
			logging.Printf("coreserver: slot %d: closing demo on disconnect: %v", num, err)
		}
	}
	*c = netClient{Client: &client.Client{Num: num}}
	logging.Printf("coreserver: slot %d (formerly %q) is free", num, name)
}

// handleClientPacket decodes one in-game datagram from an already-known
// client: a sequence number, then a Huffman-mode message of clc_* ops.
func (s *Server) handleClientPacket(c *netClient, pkt []byte) {
	if len(pkt) < 4 {
		return
	}
	msg := bitio.NewMessage(pkt, c.huffRx)
	msg.BeginRead()
	_ = msg.ReadLong() // sequence number; fragmentation/reordering is netchan's job, out of scope here

	for {
		if msg.Bit >= msg.MaxBits {
			return
		}
		op := protocol.ClientOp(msg.ReadByte())
		switch op {
		case protocol.ClcEOF, protocol.ClcBad:
			return
		case protocol.ClcNop:
			continue
		case protocol.ClcClientCommand:
			seq := msg.ReadLong()
			text := msg.ReadString(1024)
			s.handleClientCommand(c, seq, text)
		case protocol.ClcMove, protocol.ClcMoveNoDelta:
			key := s.serverID
			to := usercmd.DeltaDecode(msg, key, &c.lastCmd)
			s.applyUsercmd(c, *to)
		default:
			return
		}
	}
}

func (s *Server) handleClientCommand(c *netClient, seq int32, text string) {
	c.LastPacketTime = time.Now()
	if text == "" {
		return
	}
	logging.Printf("coreserver: client %d command: %s", c.Num, text)
	if text == "disconnect" {
		s.dropClient(c, "disconnected")
	}
}

// applyUsercmd records a freshly decoded command and, the first time a
// Primed client produces one, promotes it to Active per §4.5.
func (s *Server) applyUsercmd(c *netClient, cmd usercmd.Command) {
	c.lastCmd = cmd
	if c.State == client.Primed {
		c.SetState(client.Active)
		s.sess.UpdateConfigstrings(c.Client, c.csUpdated, func(cl *client.Client, text string) {
			s.queueReliable(s.clientByNum(cl.Num), text)
		})
		logging.Printf("coreserver: client %d is now active", c.Num)
	}

	const buttonAttack = 1
	if cmd.Buttons&buttonAttack != 0 {
		s.logLagCompensatedAim(c, cmd)
	}
}

// logLagCompensatedAim evaluates where a baseline's trajectory placed it
// at the firing client's reported command time, the server-side
// rewind a real game VM's hit detection needs so a client's shot is
// judged against what they saw, not the server's present tick. With no
// game VM wired in this only logs the rewound position; a simulation
// layer would use it to test a trace against that position instead.
func (s *Server) logLagCompensatedAim(c *netClient, cmd usercmd.Command) {
	target, ok := s.sess.Baselines[0]
	if !ok {
		return
	}
	tr := mathutil.Trajectory{
		Type:     mathutil.TrType(target.PosTrType),
		Time:     target.PosTrTime,
		Duration: target.PosTrDuration,
		Base:     mathutil.Vector3{X: float64(target.PosBaseX), Y: float64(target.PosBaseY), Z: float64(target.PosBaseZ)},
		Delta:    mathutil.Vector3{X: float64(target.PosDeltaX), Y: float64(target.PosDeltaY), Z: float64(target.PosDeltaZ)},
	}
	pos := mathutil.Evaluate(tr, cmd.ServerTime)
	logging.Printf("coreserver: client %d fired at t=%d, entity 0 rewound to (%.1f, %.1f, %.1f)",
		c.Num, cmd.ServerTime, pos.X, pos.Y, pos.Z)
}

func (s *Server) clientByNum(n int) *netClient {
	for _, c := range s.clients {
		if c.Num == n {
			return c
		}
	}
	return nil
}

func (s *Server) queueReliable(c *netClient, text string) {
	if c == nil || c.reliable == nil {
		return
	}
	if _, err := c.reliable.Add(text); err != nil {
		s.dropClient(c, err.Error())
		metrics.ReliableOverflows.Inc()
	}
}

// flushReliable appends every not-yet-sent reliable command to one
// packet and sends it immediately, bypassing the normal per-tick
// snapshot cadence; dropClient uses this to force the disconnect
// message out per §5's cancellation rule.
func (s *Server) flushReliable(c *netClient) {
	if c.reliable == nil || c.addr == nil {
		return
	}
	buf := make([]byte, maxUDPPayload)
	msg := bitio.NewMessage(buf, c.huffTx)
	writeReliableCommands(msg, c)
	msg.WriteByte(byte(protocol.SvcEOF))
	s.sendRaw(c, buf[:msg.CurSize])
}

// sendSnapshots builds and sends one frame to every client due for one
// (§5 step 4). With no game VM wired in, the entity set snapshotted is
// exactly the baseline table: a real simulation layer would substitute
// its own current linked-entity states here without changing the framing
// below.
func (s *Server) sendSnapshots(now time.Time) {
	interval := time.Second / time.Duration(tickRate(s.cfg))
	for _, c := range s.clients {
		if c.State != client.Active {
			continue
		}
		if !c.SnapshotDue(now, interval) {
			continue
		}
		s.sendSnapshot(c, now)
	}
}

func (s *Server) sendSnapshot(c *netClient, now time.Time) {
	buf := make([]byte, maxUDPPayload)
	msg := bitio.NewMessage(buf, c.huffTx)

	writeReliableCommands(msg, c)

	msg.WriteByte(byte(protocol.SvcSnapshot))
	msg.WriteLong(int32(now.UnixMilli()))

	// Scenario 1 (§8): a delta reference older than PACKET_BACKUP (64
	// frames) must be promoted to a full (non-delta) frame instead.
	const packetBackup = 64
	fromBaseline := c.deltaMessage < 0 || s.currentMessageNum()-c.deltaMessage > packetBackup
	if fromBaseline {
		msg.WriteLong(-1)
	} else {
		msg.WriteLong(c.deltaMessage)
	}

	var from, to playerstate.State
	playerstate.DeltaEncode(msg, &from, &to)

	numEntities := int32(0)
	for range s.sess.Baselines {
		numEntities++
	}
	msg.WriteLong(numEntities)
	for _, n := range sortedBaselineNumbers(s.sess) {
		base := s.sess.Baselines[n]
		var zero entity.State
		from := &zero
		if !fromBaseline {
			from = base
		}
		entity.DeltaEncode(msg, from, base, fromBaseline)
	}
	msg.WriteByte(byte(protocol.SvcEOF))

	c.deltaMessage = s.currentMessageNum()
	c.LastSnapshotTime = now
	s.sendRaw(c, buf[:msg.CurSize])

	if c.recorder != nil {
		if err := c.recorder.WriteFrame(buf[:msg.CurSize]); err != nil {
			logging.Printf("coreserver: client %d: demo write: %v", c.Num, err)
		}
	}
}

// currentMessageNum is the monotonically increasing snapshot id
// referenced by clients' delta_message acks (§5 "Ordering"). Tied to
// wall-clock milliseconds since server start keeps it simple and strictly
// increasing without a separate counter field to thread through.
func (s *Server) currentMessageNum() int32 {
	return int32(time.Since(s.startedAt).Milliseconds() / int64(time.Second/time.Duration(tickRate(s.cfg))/time.Millisecond))
}
