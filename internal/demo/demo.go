// Package demo records and replays per-client snapshot streams to a
// zstd-compressed demo file, the server-side counterpart of the TVD
// spectator-demo format: a short plaintext header carrying the
// configstrings in effect at record-start, followed by a zstd stream of
// length-prefixed frames.
package demo

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

const magic = "TVD1"

// header mirrors the teacher's demo header layout: magic, protocol,
// sv_fps, maxclients, then null-terminated mapname and timestamp, then
// the configstrings captured at record start.
type header struct {
	Protocol   int32
	ServerFPS  int32
	MaxClients int32
	MapName    string
	Timestamp  string
}

// ErrNotDemo is returned when a file's magic does not match.
var ErrNotDemo = errors.New("demo: not a TVD1 file")

// Recorder writes one client's snapshot stream to a demo file. ID
// identifies the recording independent of its filename, so operator
// tooling can reference an in-progress recording before it is closed.
type Recorder struct {
	ID uuid.UUID

	f   *os.File
	bw  *bufio.Writer
	enc *zstd.Encoder
}

// StartRecording creates path and writes the header, capturing every
// non-empty configstring verbatim with its index so a later playback tool can resolve
// model/sound indices without a live server.
func StartRecording(path string, protocol int32, serverFPS, maxClients int32, mapname string, configstrings []string) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("demo: create: %w", err)
	}

	bw := bufio.NewWriter(f)
	if err := writeHeader(bw, header{
		Protocol:   protocol,
		ServerFPS:  serverFPS,
		MaxClients: maxClients,
		MapName:    mapname,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}, configstrings); err != nil {
		f.Close()
		return nil, err
	}

	enc, err := zstd.NewWriter(bw)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("demo: zstd writer: %w", err)
	}

	return &Recorder{ID: uuid.New(), f: f, bw: bw, enc: enc}, nil
}

func writeHeader(w io.Writer, h header, configstrings []string) error {
	if _, err := w.Write([]byte(magic)); err != nil {
		return err
	}
	for _, v := range []int32{h.Protocol, h.ServerFPS, h.MaxClients} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, h.MapName+"\x00"); err != nil {
		return err
	}
	if _, err := io.WriteString(w, h.Timestamp+"\x00"); err != nil {
		return err
	}
	for i, cs := range configstrings {
		if cs == "" {
			continue
		}
		if err := binary.Write(w, binary.LittleEndian, uint16(i)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint16(len(cs))); err != nil {
			return err
		}
		if _, err := io.WriteString(w, cs); err != nil {
			return err
		}
	}
	return binary.Write(w, binary.LittleEndian, uint16(0xFFFF))
}

// WriteFrame appends one tick's already wire-encoded snapshot bytes to
// the compressed frame stream, 4-byte length prefixed like the teacher's
// frame reader expects.
func (r *Recorder) WriteFrame(frame []byte) error {
	var szBuf [4]byte
	binary.LittleEndian.PutUint32(szBuf[:], uint32(len(frame)))
	if _, err := r.enc.Write(szBuf[:]); err != nil {
		return fmt.Errorf("demo: write frame size: %w", err)
	}
	if _, err := r.enc.Write(frame); err != nil {
		return fmt.Errorf("demo: write frame: %w", err)
	}
	return nil
}

// Close flushes the zstd stream and closes the underlying file.
func (r *Recorder) Close() error {
	if err := r.enc.Close(); err != nil {
		r.f.Close()
		return fmt.Errorf("demo: zstd close: %w", err)
	}
	if err := r.bw.Flush(); err != nil {
		r.f.Close()
		return fmt.Errorf("demo: flush: %w", err)
	}
	return r.f.Close()
}

// Info is the header and configstring snapshot recovered from a demo
// file without decompressing its frame stream.
type Info struct {
	Protocol      int32
	ServerFPS     int32
	MaxClients    int32
	MapName       string
	Timestamp     string
	Configstrings map[int]string
}

// ReadInfo parses path's header and configstring block. It does not
// touch the zstd frame stream that follows.
func ReadInfo(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("demo: read: %w", err)
	}
	info, _, err := parseInfo(data)
	return info, err
}

func parseInfo(data []byte) (*Info, int, error) {
	if len(data) < 16 || string(data[0:4]) != magic {
		return nil, 0, ErrNotDemo
	}

	info := &Info{
		Protocol:      int32(binary.LittleEndian.Uint32(data[4:8])),
		ServerFPS:     int32(binary.LittleEndian.Uint32(data[8:12])),
		MaxClients:    int32(binary.LittleEndian.Uint32(data[12:16])),
		Configstrings: make(map[int]string),
	}

	offset := 16
	mapname, offset, err := readCString(data, offset)
	if err != nil {
		return nil, 0, err
	}
	info.MapName = mapname

	timestamp, offset, err := readCString(data, offset)
	if err != nil {
		return nil, 0, err
	}
	info.Timestamp = timestamp

	for offset+4 <= len(data) {
		index := int(binary.LittleEndian.Uint16(data[offset:]))
		offset += 2
		if index == 0xFFFF {
			break
		}
		length := int(binary.LittleEndian.Uint16(data[offset:]))
		offset += 2
		if offset+length > len(data) {
			return nil, 0, fmt.Errorf("demo: truncated configstring block")
		}
		info.Configstrings[index] = string(data[offset : offset+length])
		offset += length
	}

	return info, offset, nil
}

func readCString(data []byte, offset int) (string, int, error) {
	start := offset
	for offset < len(data) && data[offset] != 0 {
		offset++
	}
	if offset >= len(data) {
		return "", 0, fmt.Errorf("demo: unterminated string in header")
	}
	return string(data[start:offset]), offset + 1, nil
}

// Reader replays the frame stream of a previously recorded demo.
type Reader struct {
	Info *Info
	dec  *zstd.Decoder
}

// OpenReader parses the header of path and prepares its frame stream
// for sequential reads via Next.
func OpenReader(path string) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("demo: read: %w", err)
	}
	info, offset, err := parseInfo(data)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(bytes.NewReader(data[offset:]))
	if err != nil {
		return nil, fmt.Errorf("demo: zstd reader: %w", err)
	}
	return &Reader{Info: info, dec: dec}, nil
}

// Next returns the next recorded frame's raw bytes, or io.EOF once the
// stream is exhausted.
func (r *Reader) Next() ([]byte, error) {
	var szBuf [4]byte
	if _, err := io.ReadFull(r.dec, szBuf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, err
	}
	size := binary.LittleEndian.Uint32(szBuf[:])
	frame := make([]byte, size)
	if _, err := io.ReadFull(r.dec, frame); err != nil {
		return nil, fmt.Errorf("demo: truncated frame: %w", err)
	}
	return frame, nil
}

// Close releases the zstd decoder.
func (r *Reader) Close() {
	r.dec.Close()
}

// SuggestedName builds a filesystem-safe demo filename from a map name
// and the recording's id, avoiding collisions between concurrent
// per-client recordings of the same map.
func SuggestedName(mapname string, id uuid.UUID) string {
	safe := strings.ReplaceAll(mapname, "/", "_")
	return fmt.Sprintf("%s-%s.tvd", safe, id.String())
}
