//go:build !cgo

package cmd

import (
	"github.com/vimdaw/vimdaw/roll"
)

func NewMidiContext(broker *roll.Broker) roll.MIDIContext {
	// with no cgo, we cannot use MIDI, so return a null context
	return roll.NullMIDIContext{}
}
