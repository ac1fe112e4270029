package roll_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/vimdaw/vimdaw"
	"github.com/vimdaw/vimdaw/roll"
)

func TestWAVExport(t *testing.T) {
	timing := vimdaw.Timing{SampleRate: 1000, BPM: 60, ColumnsPerBeat: 1}
	notes := []vimdaw.Note{
		{ID: 0, Pitch: 69, StartFrames: 0, DurationFrames: 500, Layer: 1, Sustain: 1, Release: 0.1, Gain: 1},
		{ID: 1, Pitch: 72, StartFrames: 1000, DurationFrames: 1000, Layer: 2, Sustain: 1, Release: 0.1, Gain: 1},
	}
	for _, tc := range []struct {
		name      string
		pcm16     bool
		header    int
		frameSize int
	}{
		{"float", false, 58, 8},
		{"pcm16", true, 44, 4},
	} {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.wav")
			if err := (roll.WAVExporter{PCM16: tc.pcm16}).Export(path, notes, timing); err != nil {
				t.Fatalf("Export: %v", err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			// the last note ends at 2000 and releases for 100 frames
			if want := tc.header + 2100*tc.frameSize; len(data) != want {
				t.Fatalf("file is %d bytes, want %d", len(data), want)
			}
			if string(data[:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
				t.Errorf("bad magic %q", data[:12])
			}
			if got := binary.LittleEndian.Uint32(data[4:]); int(got) != len(data)-8 {
				t.Errorf("RIFF size %d, want %d", got, len(data)-8)
			}
			if got := binary.LittleEndian.Uint32(data[tc.header-4:]); int(got) != 2100*tc.frameSize {
				t.Errorf("data size %d, want %d", got, 2100*tc.frameSize)
			}
			silent := true
			for _, b := range data[tc.header:] {
				if b != 0 {
					silent = false
					break
				}
			}
			if silent {
				t.Errorf("rendered audio is silent")
			}
		})
	}
}

func TestWAVExportLimit(t *testing.T) {
	timing := vimdaw.Timing{SampleRate: 1000, BPM: 60, ColumnsPerBeat: 1}
	notes := []vimdaw.Note{{DurationFrames: 10000, Sustain: 1, Gain: 1}}
	path := filepath.Join(t.TempDir(), "out.wav")
	if err := (roll.WAVExporter{Limit: 1}).Export(path, notes, timing); err == nil {
		t.Errorf("render over the limit succeeded")
	}
	if _, err := os.Stat(path); err == nil {
		t.Errorf("rejected render created a file")
	}
}
