package roll

import (
	"math"
	"sync/atomic"
)

// Shared holds the scalar values read by both the editor and the audio
// player. Every field has exactly one writer:
//
//   - layers and gain are written by the editor, read by the player
//   - position and playing are written by the player, read by the editor
//
// so plain atomic loads and stores are enough; no field is ever read,
// modified and written back by both sides.
type Shared struct {
	layers   atomic.Uint64
	gain     atomic.Uint32 // math.Float32bits
	position atomic.Uint64 // frames
	playing  atomic.Bool
}

// Layers returns the active layer mask.
func (s *Shared) Layers() uint64 { return s.layers.Load() }

// SetLayers is called by the editor only.
func (s *Shared) SetLayers(mask uint64) { s.layers.Store(mask) }

// Gain returns the master gain of the player.
func (s *Shared) Gain() float32 { return math.Float32frombits(s.gain.Load()) }

// SetGain is called by the editor only.
func (s *Shared) SetGain(g float32) { s.gain.Store(math.Float32bits(g)) }

// Position returns the transport position in frames.
func (s *Shared) Position() uint64 { return s.position.Load() }

// SetPosition is called by the player only.
func (s *Shared) SetPosition(frames uint64) { s.position.Store(frames) }

// Playing reports whether the player is running the transport.
func (s *Shared) Playing() bool { return s.playing.Load() }

// SetPlaying is called by the player only.
func (s *Shared) SetPlaying(v bool) { s.playing.Store(v) }
