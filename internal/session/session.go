// Package session implements configstring distribution, entity baselines,
// and map spawn/restart sequencing (spec component C7): the server-wide
// state that sits above a single client's connection.
package session

import (
	"fmt"

	"github.com/forgenet/arenacore/internal/client"
	"github.com/forgenet/arenacore/internal/entity"
	"github.com/forgenet/arenacore/internal/protocol"
)

// RunState is where the session sits in the map lifecycle.
type RunState int

const (
	Dead RunState = iota
	Loading
	Game
)

// Session holds the server-wide state distributed to every connection:
// configstrings, entity baselines, and the current map's run state.
type Session struct {
	Configstrings [protocol.MaxConfigstrings]string
	Baselines     map[int32]*entity.State
	State         RunState
	Restarting    bool
	MaxClients    int

	// RestartTime is the wall-clock millisecond timestamp a pending delayed
	// map_restart will fire at, or 0 when none is scheduled. RestartedServerID
	// is the server_id a completed restart bumped to, per §3's session state.
	RestartTime       int64
	RestartedServerID int32
}

// NewSession returns an empty session in the Dead state, as a server is
// before its first map load.
func NewSession(maxClients int) *Session {
	return &Session{
		Baselines:  make(map[int32]*entity.State),
		MaxClients: maxClients,
	}
}

// SendFunc delivers one formatted reliable server command to a client; the
// caller supplies this so this package stays independent of the reliable
// queue and transport wiring.
type SendFunc func(c *client.Client, cmd string)

// SendConfigstring emits the server command(s) necessary to push
// Configstrings[index] to client. A configstring at or above
// MaxStringChars-24 bytes is split across multiple "bcs0"/"bcs1"/"bcs2"
// chunk commands instead of one "cs" command, because a single reliable
// command is itself bounded by MaxStringChars.
func (s *Session) SendConfigstring(c *client.Client, index int, send SendFunc) {
	maxChunk := protocol.MaxStringChars - 24
	val := s.Configstrings[index]

	if len(val) < maxChunk {
		send(c, fmt.Sprintf("cs %d %q", index, val))
		return
	}

	sent := 0
	remaining := len(val)
	for remaining > 0 {
		var tag string
		switch {
		case sent == 0:
			tag = "bcs0"
		case remaining < maxChunk:
			tag = "bcs2"
		default:
			tag = "bcs1"
		}

		end := sent + maxChunk - 1
		if end > len(val) {
			end = len(val)
		}
		chunk := val[sent:end]
		send(c, fmt.Sprintf("%s %d %q", tag, index, chunk))

		sent += maxChunk - 1
		remaining -= maxChunk - 1
	}
}

// SetConfigstring updates Configstrings[index] and, if the session is in
// Game state (or mid-restart), broadcasts the change to every relevant
// connected client. A client still in Primed does not get the update
// immediately; instead it is marked in csUpdated so UpdateConfigstrings
// picks it up once that client reaches Active. No broadcast happens at all
// while a map is merely Loading — the initial gamestate packet will carry
// every configstring anyway, so broadcasting early would be redundant and
// could race a still-connecting client.
func (s *Session) SetConfigstring(index int, val string, clients []*client.Client, csUpdated [][]bool, serverInfoSuppressed func(c *client.Client) bool, send SendFunc) error {
	if index < 0 || index >= protocol.MaxConfigstrings {
		return &protocol.ProtocolError{Reason: fmt.Sprintf("bad configstring index %d", index)}
	}
	if s.Configstrings[index] == val {
		return nil
	}
	s.Configstrings[index] = val

	if s.State != Game && !s.Restarting {
		return nil
	}

	for _, c := range clients {
		if c.State < client.Active {
			if c.State == client.Primed && csUpdated != nil {
				csUpdated[c.Num][index] = true
			}
			continue
		}
		if index == protocol.CSServerInfo && serverInfoSuppressed != nil && serverInfoSuppressed(c) {
			continue
		}
		s.SendConfigstring(c, index, send)
	}
	return nil
}

// UpdateConfigstrings flushes every configstring index flagged for c in
// csUpdated, called once c transitions from Primed to Active.
func (s *Session) UpdateConfigstrings(c *client.Client, updated []bool, send SendFunc) {
	for index, dirty := range updated {
		if !dirty {
			continue
		}
		s.SendConfigstring(c, index, send)
		updated[index] = false
	}
}

// LinkedEntity is the subset of game-VM entity state CreateBaselines needs:
// only linked (world-present) entities get a baseline, since an unlinked
// entity is never snapshotted in the first place.
type LinkedEntity struct {
	Number int32
	Linked bool
	State  *entity.State
}

// CreateBaselines recomputes every entity's baseline from its current
// state. Only linked entities get one; delta encoding against an entity
// with no baseline falls back to a from-scratch (full) encode.
func (s *Session) CreateBaselines(entities []LinkedEntity) {
	s.Baselines = make(map[int32]*entity.State, len(entities))
	for _, e := range entities {
		if !e.Linked {
			continue
		}
		cp := *e.State
		cp.Number = e.Number
		s.Baselines[e.Number] = &cp
	}
}

// Restart resets the session for a new map: clears baselines and moves to
// Loading, but configstrings are left untouched since SV_SpawnServer
// (the caller) is about to overwrite or re-set the ones that change.
func (s *Session) Restart() {
	s.Baselines = make(map[int32]*entity.State)
	s.State = Loading
	s.Restarting = false
}
