package roll

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vimdaw/vimdaw/keys"
)

type MIDIModel Model

// MIDI returns the MIDI view of the model. In the MIDI mode every note-on
// from the input device draws a note at its pitch under the cursor and
// moves the cursor forward by the cursor width.
func (m *Model) MIDI() *MIDIModel { return (*MIDIModel)(m) }

type (
	MIDIContext interface {
		Inputs(yield func(input MIDIInputDevice) bool)
		Close()
		Support() MIDISupport
	}

	MIDIInputDevice interface {
		Open() error
		Close() error
		IsOpen() bool
		String() string
	}

	MIDISupport int

	midiToggleMode MIDIModel
)

const (
	MIDISupportNotCompiled MIDISupport = iota
	MIDISupportNoDriver
	MIDISupported
)

// Support tells whether MIDI input is available.
func (m *MIDIModel) Support() MIDISupport {
	if m.midi == nil {
		return MIDISupportNotCompiled
	}
	return m.midi.Support()
}

// OpenInput opens the first input device whose name starts with prefix, or
// the first device at all when prefix is empty.
func (m *MIDIModel) OpenInput(prefix string) error {
	if m.midi == nil {
		return errors.New("MIDI is not supported")
	}
	for d := range m.midi.Inputs {
		if prefix != "" && !strings.HasPrefix(d.String(), prefix) {
			continue
		}
		if err := d.Open(); err != nil {
			return fmt.Errorf("could not open MIDI input %s: %w", d.String(), err)
		}
		return nil
	}
	return fmt.Errorf("no MIDI input matching %q", prefix)
}

// ToggleMode returns an Action entering or leaving the MIDI step entry mode.
func (m *MIDIModel) ToggleMode() Action { return MakeAction((*midiToggleMode)(m)) }

func (m *midiToggleMode) Do() {
	if m.mode == keys.ModeMIDI {
		(*Model)(m).SetMode(keys.ModeNormal)
		return
	}
	(*Model)(m).SetMode(keys.ModeMIDI)
	if (*MIDIModel)(m).Support() != MIDISupported {
		(*Model)(m).Alerts().AddNamed("MIDI", "no MIDI input available, step entry will not receive notes", Warning)
	}
}

// receiveMIDI drains the MIDI input. Outside the MIDI mode the events are
// dropped.
func (m *Model) receiveMIDI() {
	for {
		select {
		case msg := <-m.broker.MIDI:
			if m.mode == keys.ModeMIDI && msg.On && msg.Velocity > 0 {
				m.stepEntry(msg)
			}
		default:
			return
		}
	}
}

// stepEntry draws one note for a MIDI note-on and advances the cursor.
func (m *Model) stepEntry(msg MIDIMessage) {
	m.grid.GotoAbsolute(Up, uint32(msg.Note))
	if err := m.DrawNote(1, float32(msg.Velocity)/127); err != nil {
		m.alertError(err)
		return
	}
	m.grid.Advance()
}

// NullMIDIContext is a MIDIContext with no devices, for builds without MIDI
// and for tests.
type NullMIDIContext struct{}

func (m NullMIDIContext) Inputs(yield func(input MIDIInputDevice) bool) {}
func (m NullMIDIContext) Close()                                        {}
func (m NullMIDIContext) Support() MIDISupport                          { return MIDISupportNotCompiled }
