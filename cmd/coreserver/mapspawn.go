package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/hkdf"

	"github.com/forgenet/arenacore/internal/client"
	"github.com/forgenet/arenacore/internal/entity"
	"github.com/forgenet/arenacore/internal/logging"
	"github.com/forgenet/arenacore/internal/protocol"
	"github.com/forgenet/arenacore/internal/session"
)

// spawnMap runs the map spawn sequence of §4.6, steps 1-13, with the
// external collaborators (BSP load, game VM) reduced to their documented
// stub contracts: loadMap returns a checksum, game_client_connect is a
// pass-through that never denies.
func (s *Server) spawnMap(mapname string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sess.State = session.Loading
	checksum := loadMap(mapname)

	// Step 7: refresh checksum_feed from a cryptographic RNG. This is
	// deliberately independent of loadMap's map checksum: checksum_feed is a
	// flood-resistant challenge number the client echoes back, not a content
	// hash, so it must not be derived from (or confusable with) the map's
	// own checksum.
	if feed, err := deriveChecksumFeed(); err != nil {
		logging.Printf("coreserver: checksum_feed derivation failed, keeping previous feed: %v", err)
	} else {
		s.checksumFeed = feed
	}

	s.sess.Restart()
	for i := range s.sess.Configstrings {
		s.sess.Configstrings[i] = ""
	}

	s.serverID = int32(time.Now().UnixMilli())

	// Step 10: create baselines from every currently linked entity. With
	// no game VM wired in, the world starts with a single placeholder
	// entity (number 0) so the baseline/snapshot path in tick.go has
	// something concrete to delta-encode against.
	s.sess.CreateBaselines([]session.LinkedEntity{
		{Number: 0, Linked: true, State: &entity.State{
			Number:        0,
			EntityType:    1,
			PosTrType:     2, // mathutil.TrLinear
			PosTrTime:     s.serverID,
			PosDeltaX:     32,
		}},
	})

	for _, c := range s.clients {
		if c.State >= client.Connected {
			s.resendGamestate(c)
		}
	}

	s.sess.State = session.Game
	s.sess.Configstrings[protocol.CSServerInfo] = fmt.Sprintf("\\mapname\\%s\\sv_maxclients\\%d", mapname, s.maxClients)
	s.sess.Configstrings[protocol.CSSystemInfo] = fmt.Sprintf("\\checksum_feed\\%d", s.checksumFeed)

	logging.Printf("coreserver: spawned map %q (checksum %08x, checksum_feed %08x)", mapname, checksum, s.checksumFeed)
}

// deriveChecksumFeed draws fresh entropy from crypto/rand and runs it
// through golang.org/x/crypto/hkdf to produce the per-spawn checksum_feed
// (§4.6 step 7): a flood-resistant challenge number the client must echo
// back, not a cryptographic authentication of packet contents (see spec.md
// §1's non-goals).
func deriveChecksumFeed() (uint32, error) {
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return 0, fmt.Errorf("read entropy: %w", err)
	}
	kdf := hkdf.New(sha256.New, seed, nil, []byte("coreserver-checksum-feed"))
	var out [4]byte
	if _, err := io.ReadFull(kdf, out[:]); err != nil {
		return 0, fmt.Errorf("derive: %w", err)
	}
	return binary.BigEndian.Uint32(out[:]), nil
}

// loadMap is the opaque BSP collision service described in §1's scope
// boundary: "load_map(name) -> checksum". The real collision/BSP loader
// is an external collaborator this core never implements; this stands in
// for it so spawnMap has a checksum to publish.
func loadMap(name string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(name); i++ {
		h ^= uint32(name[i])
		h *= 16777619
	}
	return h
}

// mapRestart implements §4.6's map-restart path: same map, clients kept,
// server_id bumped and a reliable "map_restart" sent to everyone instead
// of a full respawn. A delayed restart (scenario 3, §8) schedules
// RestartTime and broadcasts CS_WARMUP instead of restarting immediately;
// a second map_restart issued before that delay elapses is a no-op rather
// than rescheduling the countdown.
func (s *Server) mapRestart(delaySeconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if delaySeconds > 0 {
		now := time.Now().UnixMilli()
		if s.sess.RestartTime > now {
			return
		}
		s.sess.RestartTime = now + int64(delaySeconds)*1000
		s.broadcastConfigstring(protocol.CSWarmup, fmt.Sprintf("%d", s.sess.RestartTime))
		return
	}

	s.doMapRestart()
}

// doMapRestart performs the actual restart: bumping server_id, clearing any
// pending warmup countdown, and re-enqueuing "map_restart" to every
// connected client. Called either directly (delaySeconds <= 0) or by
// checkScheduledRestart once a scheduled RestartTime elapses.
func (s *Server) doMapRestart() {
	s.sess.RestartTime = 0
	s.serverID = int32(time.Now().UnixMilli())
	s.sess.RestartedServerID = s.serverID
	for _, c := range s.clients {
		if c.State < client.Connected {
			continue
		}
		s.queueReliable(c, "map_restart")
	}
	logging.Printf("coreserver: map_restart (server_id=%d)", s.serverID)
}
