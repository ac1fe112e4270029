package vimdaw

import (
	"encoding/binary"
	"fmt"
	"math"
)

type (
	// Note is the audio-facing form of a note drawn in the piano roll. Its
	// position and length are expressed in sample frames, so the audio engine
	// never needs to know about rows, columns or zoom. Notes are produced from
	// the editable note quads at the moment they are committed and streamed to
	// the player; the player treats them as immutable until an explicit edit
	// message (delete, revive) arrives.
	//
	// The struct only contains fixed size fields, so it can be encoded with
	// encoding/binary for the ring buffer without any extra framing.
	Note struct {
		StartFrames    uint64
		DurationFrames uint64
		Pitch          float32 // row index; 60 is middle C
		Layer          uint64  // single bit of the layer mask
		Attack         float32 // seconds
		Sustain        float32 // level, 0..1
		Release        float32 // seconds
		Gain           float32
		Phase          float32 // oscillator phase, owned by the player
		ID             uint64
		Alive          bool
	}

	// Timing converts between piano roll columns and sample frames.
	Timing struct {
		SampleRate     int
		BPM            float64
		ColumnsPerBeat float64
	}
)

// NoteSize is the number of bytes a Note occupies when binary encoded.
var NoteSize = binary.Size(Note{})

// FramesPerBeat returns how many sample frames one beat lasts.
func (t Timing) FramesPerBeat() float64 {
	return float64(t.SampleRate) * 60 / t.BPM
}

// Frames converts a (possibly fractional) number of columns to sample frames,
// rounding to the nearest frame.
func (t Timing) Frames(columns float64) uint64 {
	if columns <= 0 || t.ColumnsPerBeat <= 0 || t.BPM <= 0 {
		return 0
	}
	return uint64(math.Round(columns / t.ColumnsPerBeat * t.FramesPerBeat()))
}

// Columns converts sample frames back to columns. Used to draw the playback
// position.
func (t Timing) Columns(frames uint64) float64 {
	fpb := t.FramesPerBeat()
	if fpb <= 0 {
		return 0
	}
	return float64(frames) / fpb * t.ColumnsPerBeat
}

// End returns the first frame after the note.
func (n *Note) End() uint64 {
	return n.StartFrames + n.DurationFrames
}

// AppendBinary encodes the note in little endian order and appends it to buf.
func (n *Note) AppendBinary(buf []byte) ([]byte, error) {
	ret, err := binary.Append(buf, binary.LittleEndian, n)
	if err != nil {
		return buf, fmt.Errorf("could not encode note %d: %w", n.ID, err)
	}
	return ret, nil
}

// DecodeNote decodes a single note from the start of buf. It returns the
// number of bytes consumed.
func DecodeNote(buf []byte, n *Note) (int, error) {
	c, err := binary.Decode(buf, binary.LittleEndian, n)
	if err != nil {
		return 0, fmt.Errorf("could not decode note: %w", err)
	}
	return c, nil
}
