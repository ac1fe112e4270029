package gomidi

import (
	"fmt"
	"math"
	"math/bits"
	"sort"

	"github.com/vimdaw/vimdaw"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// SMFExporter writes the notes as a Standard MIDI File, one track per layer.
// Layer n plays on MIDI channel n-1, wrapping after 16.
type SMFExporter struct{}

const ticksPerQuarter = 960

type smfEvent struct {
	tick uint32
	on   bool
	key  uint8
	vel  uint8
}

func (SMFExporter) Export(path string, notes []vimdaw.Note, timing vimdaw.Timing) error {
	sm, err := BuildSMF(notes, timing)
	if err != nil {
		return err
	}
	if err := sm.WriteFile(path); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	return nil
}

// BuildSMF converts the notes to a Standard MIDI File. Pitches outside the
// MIDI range are skipped.
func BuildSMF(notes []vimdaw.Note, timing vimdaw.Timing) (*smf.SMF, error) {
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	var track0 smf.Track
	track0.Add(0, smf.MetaMeter(4, 4))
	track0.Add(0, smf.MetaTempo(timing.BPM))
	track0.Close(0)
	if err := sm.Add(track0); err != nil {
		return nil, fmt.Errorf("error adding tempo track: %w", err)
	}

	fpb := timing.FramesPerBeat()
	toTick := func(frames uint64) uint32 {
		return uint32(math.Round(float64(frames) / fpb * ticksPerQuarter))
	}
	layers := map[int][]smfEvent{}
	for _, n := range notes {
		if !n.Alive || n.Pitch < 0 || n.Pitch > 127 || n.Layer == 0 {
			continue
		}
		layer := bits.TrailingZeros64(n.Layer)
		key := uint8(n.Pitch)
		vel := uint8(max(min(math.Round(float64(n.Gain)*127), 127), 1))
		start, end := toTick(n.StartFrames), toTick(n.End())
		if end <= start {
			end = start + 1
		}
		layers[layer] = append(layers[layer],
			smfEvent{tick: start, on: true, key: key, vel: vel},
			smfEvent{tick: end, on: false, key: key})
	}
	order := make([]int, 0, len(layers))
	for l := range layers {
		order = append(order, l)
	}
	sort.Ints(order)
	for _, l := range order {
		events := layers[l]
		// offs before ons on the same tick, so repeated notes retrigger
		sort.SliceStable(events, func(i, j int) bool {
			if events[i].tick != events[j].tick {
				return events[i].tick < events[j].tick
			}
			return !events[i].on && events[j].on
		})
		ch := uint8(l % 16)
		var track smf.Track
		track.Add(0, smf.MetaTrackSequenceName(fmt.Sprintf("layer %d", l+1)))
		var last uint32
		for _, e := range events {
			delta := e.tick - last
			last = e.tick
			if e.on {
				track.Add(delta, midi.NoteOn(ch, e.key, e.vel))
			} else {
				track.Add(delta, midi.NoteOff(ch, e.key))
			}
		}
		track.Close(0)
		if err := sm.Add(track); err != nil {
			return nil, fmt.Errorf("error adding track for layer %d: %w", l+1, err)
		}
	}
	return sm, nil
}
