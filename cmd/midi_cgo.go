//go:build cgo

package cmd

import (
	"github.com/vimdaw/vimdaw/roll"
	"github.com/vimdaw/vimdaw/roll/gomidi"
)

func NewMidiContext(broker *roll.Broker) roll.MIDIContext {
	return gomidi.NewContext(broker)
}
