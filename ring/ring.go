// Package ring implements the byte oriented single-producer single-consumer
// channel used between the editor and the audio player.
//
// Every message is a frame of a 4 byte command header, a 4 byte payload size
// and the payload itself, all little endian. Frames may wrap around the end of
// the buffer. Neither side ever blocks: Write reports false when the frame
// does not fit and Read reports false when no complete frame is buffered, so
// both sides poll.
package ring

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
)

type (
	// Ring is a fixed capacity circular buffer. Exactly one goroutine may call
	// Write and exactly one goroutine may call Read.
	Ring struct {
		buf  []byte
		mask uint32
		w    atomic.Uint32 // owned by the writer
		r    atomic.Uint32 // owned by the reader
	}

	// Cmd is the header of a frame.
	Cmd uint32
)

// Frame headers. The values are part of the wire contract between the editor
// and the player and must not be renumbered.
const (
	CmdStop            Cmd = 1
	CmdPlay            Cmd = 2
	CmdPause           Cmd = 3
	CmdAddNote         Cmd = 5
	CmdSeek            Cmd = 7
	CmdDeleteNote      Cmd = 20
	CmdCompact         Cmd = 27
	CmdReviveNote      Cmd = 28
	CmdAddNotes        Cmd = 29
	CmdDeleteNotes     Cmd = 30
	CmdAddNotesSame    Cmd = 31
	CmdDeleteNotesSame Cmd = 32
	CmdReviveNotes     Cmd = 33
	CmdMuteNotes       Cmd = 34
	CmdUnmuteNotes     Cmd = 35
	CmdPosition        Cmd = 40
)

// FrameHeaderSize is the number of bytes a frame takes on top of its payload.
const FrameHeaderSize = 8

// New creates a ring of size bytes. size must be a power of two. One byte of
// the buffer is always kept free to tell a full ring from an empty one.
func New(size int) *Ring {
	if size < FrameHeaderSize*2 || size&(size-1) != 0 {
		panic(fmt.Errorf("ring size %d is not a power of two >= %d", size, FrameHeaderSize*2))
	}
	return &Ring{buf: make([]byte, size), mask: uint32(size - 1)}
}

// Size returns the capacity of the ring in bytes.
func (r *Ring) Size() int { return len(r.buf) }

// Free returns how many bytes can currently be written.
func (r *Ring) Free() int {
	w, rd := r.w.Load(), r.r.Load()
	return int((uint32(len(r.buf)) + rd - w - 1) & r.mask)
}

// Used returns how many bytes are waiting to be read.
func (r *Ring) Used() int {
	w, rd := r.w.Load(), r.r.Load()
	return int((uint32(len(r.buf)) + w - rd) & r.mask)
}

// Write appends a frame. It returns false, writing nothing, if the ring does
// not have room for the whole frame.
func (r *Ring) Write(cmd Cmd, payload []byte) bool {
	total := FrameHeaderSize + len(payload)
	if total > r.Free() {
		return false
	}
	w := r.w.Load()
	var hdr [FrameHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(cmd))
	binary.LittleEndian.PutUint32(hdr[4:], uint32(len(payload)))
	w = r.put(w, hdr[:])
	w = r.put(w, payload)
	r.w.Store(w)
	return true
}

// Read removes the oldest frame. The payload is copied into buf, which is
// grown if needed, and the resulting slice is returned. ok is false if no
// complete frame is buffered; in that case nothing is consumed.
func (r *Ring) Read(buf []byte) (cmd Cmd, payload []byte, ok bool) {
	used := r.Used()
	if used < FrameHeaderSize {
		return 0, buf[:0], false
	}
	rd := r.r.Load()
	var hdr [FrameHeaderSize]byte
	r.get(rd, hdr[:])
	size := int(binary.LittleEndian.Uint32(hdr[4:]))
	if used < FrameHeaderSize+size {
		return 0, buf[:0], false
	}
	if cap(buf) < size {
		buf = make([]byte, size)
	}
	buf = buf[:size]
	r.get((rd+FrameHeaderSize)&r.mask, buf)
	r.r.Store((rd + uint32(FrameHeaderSize+size)) & r.mask)
	return Cmd(binary.LittleEndian.Uint32(hdr[0:])), buf, true
}

func (r *Ring) put(at uint32, data []byte) uint32 {
	n := copy(r.buf[at:], data)
	if n < len(data) {
		copy(r.buf, data[n:])
	}
	return (at + uint32(len(data))) & r.mask
}

func (r *Ring) get(at uint32, out []byte) {
	n := copy(out, r.buf[at:])
	if n < len(out) {
		copy(out[n:], r.buf)
	}
}

func (c Cmd) String() string {
	switch c {
	case CmdStop:
		return "Stop"
	case CmdPlay:
		return "Play"
	case CmdPause:
		return "Pause"
	case CmdAddNote:
		return "AddNote"
	case CmdSeek:
		return "Seek"
	case CmdDeleteNote:
		return "DeleteNote"
	case CmdCompact:
		return "Compact"
	case CmdReviveNote:
		return "ReviveNote"
	case CmdAddNotes:
		return "AddNotes"
	case CmdDeleteNotes:
		return "DeleteNotes"
	case CmdAddNotesSame:
		return "AddNotesSame"
	case CmdDeleteNotesSame:
		return "DeleteNotesSame"
	case CmdReviveNotes:
		return "ReviveNotes"
	case CmdMuteNotes:
		return "MuteNotes"
	case CmdUnmuteNotes:
		return "UnmuteNotes"
	case CmdPosition:
		return "Position"
	}
	return fmt.Sprintf("Cmd(%d)", uint32(c))
}
