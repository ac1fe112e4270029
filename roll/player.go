package roll

import (
	"encoding/binary"
	"math"

	"github.com/vimdaw/vimdaw"
	"github.com/vimdaw/vimdaw/ring"
	"github.com/viterin/vek/vek32"
)

type (
	// Player is the preview player, run in the audio goroutine. It keeps its
	// own copy of the notes, built from the frames the model writes to
	// Broker.ToPlayer, and renders them as enveloped sine waves. It reports
	// the transport position back through Broker.ToModel and Shared.
	Player struct {
		broker     *Broker
		sampleRate float64

		notes []vimdaw.Note
		index map[uint64]int
		muted map[uint64]bool

		playing  bool
		position uint64 // frames

		buf   []byte
		mix   []float32
		voice []float32
	}
)

// NewPlayer creates a player rendering at sampleRate.
func NewPlayer(broker *Broker, sampleRate int) *Player {
	return &Player{
		broker:     broker,
		sampleRate: float64(sampleRate),
		index:      map[uint64]int{},
		muted:      map[uint64]bool{},
	}
}

// Process handles the pending frames from the model and renders audio to
// the buffer.
func (p *Player) Process(buffer vimdaw.AudioBuffer) {
	p.processMessages()
	if !p.playing {
		buffer.Fill(0)
		return
	}
	p.render(buffer)
	p.position += uint64(len(buffer))
	p.broker.Shared.SetPosition(p.position)
	// the model only needs the latest position; a full ring drops it
	p.broker.ToModel.Write(ring.CmdPosition, binary.LittleEndian.AppendUint64(p.buf[:0], p.position))
}

// Len returns the number of notes the player holds, dead ones included.
func (p *Player) Len() int { return len(p.notes) }

// Note returns the note with the given id.
func (p *Player) Note(id uint64) (vimdaw.Note, bool) {
	i, ok := p.index[id]
	if !ok {
		return vimdaw.Note{}, false
	}
	return p.notes[i], true
}

// Muted reports whether the note with the given id is muted.
func (p *Player) Muted(id uint64) bool { return p.muted[id] }

func (p *Player) processMessages() {
	for {
		cmd, payload, ok := p.broker.ToPlayer.Read(p.buf)
		if !ok {
			return
		}
		p.buf = payload[:0]
		switch cmd {
		case ring.CmdPlay:
			p.setPlaying(true)
		case ring.CmdPause:
			p.setPlaying(false)
		case ring.CmdStop:
			p.setPlaying(false)
			p.position = 0
			p.broker.Shared.SetPosition(0)
		case ring.CmdSeek:
			if len(payload) >= 8 {
				p.position = binary.LittleEndian.Uint64(payload)
				p.broker.Shared.SetPosition(p.position)
			}
		case ring.CmdAddNote, ring.CmdAddNotes, ring.CmdReviveNote, ring.CmdReviveNotes:
			for len(payload) >= vimdaw.NoteSize {
				var n vimdaw.Note
				c, err := vimdaw.DecodeNote(payload, &n)
				if err != nil {
					break
				}
				p.put(n)
				payload = payload[c:]
			}
		case ring.CmdAddNotesSame:
			var n vimdaw.Note
			c, err := vimdaw.DecodeNote(payload, &n)
			if err != nil {
				break
			}
			for payload = payload[c:]; len(payload) >= 8; payload = payload[8:] {
				n.ID = binary.LittleEndian.Uint64(payload)
				p.put(n)
			}
		case ring.CmdDeleteNote, ring.CmdDeleteNotes, ring.CmdDeleteNotesSame:
			for ; len(payload) >= 8; payload = payload[8:] {
				if i, ok := p.index[binary.LittleEndian.Uint64(payload)]; ok {
					p.notes[i].Alive = false
				}
			}
		case ring.CmdMuteNotes, ring.CmdUnmuteNotes:
			for ; len(payload) >= 8; payload = payload[8:] {
				id := binary.LittleEndian.Uint64(payload)
				if cmd == ring.CmdMuteNotes {
					p.muted[id] = true
				} else {
					delete(p.muted, id)
				}
			}
		case ring.CmdCompact:
			p.compact()
		}
	}
}

func (p *Player) setPlaying(v bool) {
	p.playing = v
	p.broker.Shared.SetPlaying(v)
}

// put adds a note or replaces the note with the same id. The note starts
// unmuted; mutes follow in their own frames.
func (p *Player) put(n vimdaw.Note) {
	n.Alive = true
	delete(p.muted, n.ID)
	if i, ok := p.index[n.ID]; ok {
		p.notes[i] = n
		return
	}
	p.index[n.ID] = len(p.notes)
	p.notes = append(p.notes, n)
}

func (p *Player) compact() {
	w := 0
	for _, n := range p.notes {
		if !n.Alive {
			delete(p.index, n.ID)
			delete(p.muted, n.ID)
			continue
		}
		p.notes[w] = n
		p.index[n.ID] = w
		w++
	}
	p.notes = p.notes[:w]
}

func (p *Player) render(buffer vimdaw.AudioBuffer) {
	length := len(buffer)
	if cap(p.mix) < length {
		p.mix = make([]float32, length)
		p.voice = make([]float32, length)
	}
	mix := vek32.Zeros_Into(p.mix[:length], length)
	from, to := p.position, p.position+uint64(length)
	layers := p.broker.Shared.Layers()
	for i := range p.notes {
		n := &p.notes[i]
		if !n.Alive || p.muted[n.ID] || n.Layer&layers == 0 {
			continue
		}
		release := uint64(float64(n.Release) * p.sampleRate)
		if n.StartFrames >= to || n.End()+release <= from {
			continue
		}
		lo := int(max(n.StartFrames, from) - from)
		hi := int(min(n.End()+release, to) - from)
		p.renderNote(n, p.voice[lo:hi], from+uint64(lo), release)
		vek32.Add_Inplace(mix[lo:hi], p.voice[lo:hi])
	}
	vek32.MulNumber_Inplace(mix, p.broker.Shared.Gain())
	for i, v := range mix {
		buffer[i] = [2]float32{v, v}
	}
}

// renderNote writes the samples of n starting at frame into out.
func (p *Player) renderNote(n *vimdaw.Note, out []float32, frame, release uint64) {
	freq := 440 * math.Pow(2, (float64(n.Pitch)-69)/12)
	step := 2 * math.Pi * freq / p.sampleRate
	attack := float64(n.Attack) * p.sampleRate
	end := n.End()
	for i := range out {
		f := frame + uint64(i)
		t := float64(f - n.StartFrames)
		env := float64(n.Sustain)
		if t < attack {
			env *= t / attack
		}
		if f >= end {
			env *= 1 - float64(f-end)/float64(release)
		}
		out[i] = float32(math.Sin(t*step) * env * float64(n.Gain))
	}
	n.Phase = float32(math.Mod(float64(frame+uint64(len(out))-n.StartFrames)*step, 2*math.Pi))
}
