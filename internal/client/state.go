// Package client implements the connection lifecycle state machine and
// client registry (spec component C6): FREE -> CONNECTED -> PRIMED ->
// ACTIVE, with ZOMBIE as a lingering post-disconnect state used to absorb
// duplicate disconnect packets.
package client

import "time"

// State is a client's position in the connection lifecycle. The zero value
// is Free, matching an unused client slot.
type State int

const (
	Free State = iota
	Zombie
	Connected
	Primed
	Active
)

func (s State) String() string {
	switch s {
	case Free:
		return "free"
	case Zombie:
		return "zombie"
	case Connected:
		return "connected"
	case Primed:
		return "primed"
	case Active:
		return "active"
	default:
		return "unknown"
	}
}

// validTransitions enumerates every transition a connection is allowed to
// make. The lifecycle is a total order (Free < Zombie < Connected < Primed
// < Active) for comparison purposes, but the state machine is not: a
// client can fall back from Active or Primed to Zombie (on disconnect) or
// back to Connected (when a map spawn resends the gamestate), so the legal edges are
// listed explicitly rather than derived from the ordering.
var validTransitions = map[State][]State{
	Free:      {Connected},
	Connected: {Primed, Zombie, Free, Connected},
	Primed:    {Active, Zombie, Free, Connected},
	Active:    {Zombie, Free, Primed, Connected},
	Zombie:    {Free},
}

// CanTransition reports whether moving from cur to next is a legal edge in
// the lifecycle.
func CanTransition(cur, next State) bool {
	for _, s := range validTransitions[cur] {
		if s == next {
			return true
		}
	}
	return false
}

// Client is one connection slot: its lifecycle state plus the wall-clock
// bookkeeping the tick loop needs to reap timeouts and pace snapshots.
type Client struct {
	Num   int
	Name  string
	State State
	IsBot bool
	// IsLoopback marks the server console's own loopback connection.
	// Loopback clients are immune to kick commands: the operator console
	// is not a player to be kicked.
	IsLoopback       bool
	LastPacketTime   time.Time
	LastSnapshotTime time.Time
	ZombieUntil      time.Time
}

// SnapshotDue reports whether enough wall time has elapsed since this
// client's last snapshot to send it another one, per §5 step 4
// ("now - last_snapshot_time >= 1000/sv_fps").
func (c *Client) SnapshotDue(now time.Time, interval time.Duration) bool {
	return now.Sub(c.LastSnapshotTime) >= interval
}

// SetState transitions the client, returning false (and leaving the state
// unchanged) if the transition is not legal.
func (c *Client) SetState(next State) bool {
	if !CanTransition(c.State, next) {
		return false
	}
	c.State = next
	return true
}

// TimedOut reports whether the client has been silent long enough (given
// now and timeout) to be reaped into Zombie.
func (c *Client) TimedOut(now time.Time, timeout time.Duration) bool {
	if c.State == Free || c.State == Zombie {
		return false
	}
	return now.Sub(c.LastPacketTime) > timeout
}

// ZombieExpired reports whether a Zombie client has lingered long enough
// to be recycled back to Free. The lingering window absorbs a
// retransmitted disconnect packet that arrives after the slot would
// otherwise already be reused.
func (c *Client) ZombieExpired(now time.Time) bool {
	return c.State == Zombie && now.After(c.ZombieUntil)
}
