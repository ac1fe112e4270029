package gomidi_test

import (
	"testing"

	"github.com/vimdaw/vimdaw"
	"github.com/vimdaw/vimdaw/roll/gomidi"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestBuildSMF(t *testing.T) {
	timing := vimdaw.Timing{SampleRate: 44100, BPM: 120, ColumnsPerBeat: 4}
	beat := uint64(timing.FramesPerBeat())
	notes := []vimdaw.Note{
		{ID: 0, Pitch: 60, StartFrames: 0, DurationFrames: beat, Layer: 1, Gain: 1, Alive: true},
		{ID: 1, Pitch: 60, StartFrames: beat, DurationFrames: beat, Layer: 1, Gain: 0.5, Alive: true},
		{ID: 2, Pitch: 64, StartFrames: 0, DurationFrames: 2 * beat, Layer: 4, Gain: 1, Alive: true},
		{ID: 3, Pitch: 200, Layer: 1, Alive: true},
		{ID: 4, Pitch: 62, Layer: 1},
	}
	sm, err := gomidi.BuildSMF(notes, timing)
	if err != nil {
		t.Fatalf("BuildSMF: %v", err)
	}
	if len(sm.Tracks) != 3 {
		t.Fatalf("got %d tracks, want tempo + 2 layers", len(sm.Tracks))
	}
	type event struct {
		tick       int64
		on         bool
		ch, key, v uint8
	}
	collect := func(tr smf.Track) []event {
		var ret []event
		var tick int64
		for _, ev := range tr {
			tick += int64(ev.Delta)
			var ch, key, vel uint8
			msg := midi.Message(ev.Message)
			switch {
			case msg.GetNoteOn(&ch, &key, &vel):
				ret = append(ret, event{tick, true, ch, key, vel})
			case msg.GetNoteOff(&ch, &key, &vel):
				ret = append(ret, event{tick, false, ch, key, 0})
			}
		}
		return ret
	}
	// the note ending at a beat goes off before the next one starts
	want := []event{
		{0, true, 0, 60, 127},
		{960, false, 0, 60, 0},
		{960, true, 0, 60, 64},
		{1920, false, 0, 60, 0},
	}
	got := collect(sm.Tracks[1])
	if len(got) != len(want) {
		t.Fatalf("layer 1 events %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("layer 1 event %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	third := collect(sm.Tracks[2])
	if len(third) != 2 || third[0].ch != 2 || third[1].tick != 1920 {
		t.Errorf("layer 3 events %v, want an on and an off at 1920 on channel 2", third)
	}
}
