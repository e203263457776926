// Package protocol defines the server-to-client wire opcodes and
// configstring index constants shared by the higher-level session and
// client packages.
package protocol

// ServerOp is a server-to-client message opcode.
type ServerOp int32

const (
	SvcBad ServerOp = iota
	SvcNop
	SvcGamestate
	SvcConfigstring
	SvcBaseline
	SvcServerCommand
	SvcDownload
	SvcSnapshot
	SvcEOF
	SvcZcmd // compressed reliable command, see internal/lzss
)

// Version identifies this wire protocol's revision, carried in recorded
// demo headers so a playback tool can tell which codec rules applied.
const Version = 1

const (
	// MaxConfigstrings bounds configstring indices.
	MaxConfigstrings = 1024

	CSServerInfo = 0
	CSSystemInfo = 1
	CSWarmup     = 5

	// MaxStringChars bounds one reliable command's text. SendConfigstring
	// splits strings of MaxStringChars-24 bytes or more across multiple
	// reliable commands instead of sending them whole.
	MaxStringChars = 1024
)

// ClientOp is a client-to-server message opcode, the inbound counterpart
// of ServerOp. Not named directly in spec.md's glossary (which only
// enumerates the outbound svc_* set), but implied by §2's dataflow line
// "Inbound user command: netchan -> C1 -> C3 delta-decodes -> applied to
// game VM": something has to tell the session loop which of a usercmd or
// a text command a given packet section is.
type ClientOp int32

const (
	ClcBad ClientOp = iota
	ClcNop
	ClcMove         // delta-coded usercmd against the client's last acked command
	ClcMoveNoDelta  // full usercmd, no prior reference (first command, or delta too old)
	ClcClientCommand
	ClcEOF
)

