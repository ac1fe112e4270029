package roll

import (
	"time"

	"github.com/vimdaw/vimdaw/ring"
)

type (
	// Broker connects the editor model, the audio player and the MIDI input.
	// Note edits travel from the model to the player through ToPlayer, a
	// single producer single consumer ring of framed messages; the transport
	// position travels back through ToModel. Scalars both sides need are in
	// Shared.
	//
	// For closing goroutines, the broker has two channels for each goroutine:
	// CloseXXX and FinishedXXX. The CloseXXX channel has a capacity of 1, so
	// you can always send a empty message (struct{}{}) to it without blocking.
	// If the channel is already full, that means someone else has already
	// requested its closure and the goroutine is already closing, so dropping
	// the message is fine. Then, FinishedXXX is used to signal that a goroutine
	// has succesfully closed and cleaned up. Nothing is ever sent to the
	// channel, it is only closed.
	Broker struct {
		ToPlayer *ring.Ring
		ToModel  *ring.Ring
		MIDI     chan MIDIMessage
		Shared   Shared

		ClosePlayer    chan struct{}
		CloseGUI       chan struct{}
		FinishedPlayer chan struct{}
		FinishedGUI    chan struct{}
	}

	// MIDIMessage is a note event from a MIDI input device.
	MIDIMessage struct {
		Timestamp time.Time
		On        bool
		Channel   int
		Note      byte
		Velocity  byte
	}
)

// NewBroker creates a broker whose rings hold size bytes each. size needs to
// be a power of two.
func NewBroker(size int) *Broker {
	return &Broker{
		ToPlayer:       ring.New(size),
		ToModel:        ring.New(size),
		MIDI:           make(chan MIDIMessage, 1024),
		ClosePlayer:    make(chan struct{}, 1),
		CloseGUI:       make(chan struct{}, 1),
		FinishedPlayer: make(chan struct{}),
		FinishedGUI:    make(chan struct{}),
	}
}

// TrySend is a helper function to send a value to a channel if it is not full.
// It is guaranteed to be non-blocking. Return true if the value was sent, false
// otherwise.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive is a helper function to block until a value is received from a
// channel, or timing out after t. ok will be false if the timeout occurred or
// if the channel is closed.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}
