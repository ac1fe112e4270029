package roll

import (
	"time"

	"github.com/vimdaw/vimdaw/keys"
)

type (
	// inputState is where the dispatcher is inside a key sequence, plus the
	// timers for the prefix timeout and the key repeat.
	inputState struct {
		state StateID
		seq   []keys.Key

		timeoutState    StateID // 0: no timeout armed
		timeoutDeadline time.Time

		repeatKey   keys.Key
		repeatEntry Entry
		repeatNext  time.Time
		repeating   bool

		pressed map[keys.Key]Entry

		// platformRepeat is set when the platform sends auto-repeated key
		// presses itself; the dispatcher then runs no repeat timer.
		platformRepeat bool
	}
)

func (s *inputState) reset() {
	s.state = 0
	s.seq = s.seq[:0]
	s.timeoutState = 0
}

// SetPlatformRepeat tells whether the platform delivers auto-repeat as
// repeated key presses and never reports releases.
func (m *Model) SetPlatformRepeat(v bool) {
	m.input.platformRepeat = v
	m.input.repeating = false
}

// PendingKeys returns the keys of the sequence typed so far.
func (m *Model) PendingKeys() []keys.Key {
	return m.input.seq
}

// KeyPress feeds a key press to the dispatcher.
func (m *Model) KeyPress(k keys.Key, now time.Time) {
	in := &m.input
	k.Mod &= keys.ModMask
	if in.repeating && in.repeatKey != k {
		in.repeating = false
	}
	if in.timeoutState != 0 {
		ts := in.timeoutState
		in.timeoutState = 0
		if next, ok := m.fsm.Next(ts, k); ok {
			in.seq = append(in.seq, k)
			m.enter(next, k, now)
			return
		}
		// the pending command is dropped and the key starts over
		in.reset()
	}
	next, ok := m.fsm.Next(in.state, k)
	if !ok {
		in.reset()
		return
	}
	in.seq = append(in.seq, k)
	m.enter(next, k, now)
}

func (m *Model) enter(next StateID, k keys.Key, now time.Time) {
	in := &m.input
	e := m.fsm.Entry(next, m.mode)
	switch {
	case e.Terminal && !e.Prefix:
		in.reset()
		if in.pressed == nil {
			in.pressed = map[keys.Key]Entry{}
		}
		in.pressed[k] = e
		m.run(e)
		if e.Repeat && !in.platformRepeat {
			in.repeating = true
			in.repeatKey = k
			in.repeatEntry = e
			in.repeatNext = now.Add(m.cfg.Input.RepeatDelay)
		}
	case e.Terminal && e.Prefix:
		in.state = 0
		in.timeoutState = next
		in.timeoutDeadline = now.Add(m.cfg.Input.PrefixTimeout)
	case e.Prefix:
		in.state = next
	default:
		// the sequence is bound only in another mode
		in.reset()
	}
}

// KeyRelease feeds a key release to the dispatcher. It stops the key
// repeat and runs the command again when it was bound with release.
func (m *Model) KeyRelease(k keys.Key, now time.Time) {
	in := &m.input
	k.Mod &= keys.ModMask
	if in.repeating && in.repeatKey.Sym == k.Sym {
		in.repeating = false
	}
	e, ok := in.pressed[k]
	if !ok {
		return
	}
	delete(in.pressed, k)
	if e.Release {
		m.run(e)
	}
}

// KeyRepeat feeds an auto-repeated press from the platform. Only commands
// bound with repeat run again.
func (m *Model) KeyRepeat(k keys.Key, now time.Time) {
	k.Mod &= keys.ModMask
	e, ok := m.input.pressed[k]
	if !ok || !e.Repeat {
		return
	}
	m.run(e)
}

// Tick advances the timers of the model: it fires an expired prefix timeout
// and due key repeats, reads what the player and the MIDI input sent, flushes
// frames waiting for the player and ages the alerts.
func (m *Model) Tick(now time.Time) {
	in := &m.input
	if in.timeoutState != 0 && !now.Before(in.timeoutDeadline) {
		e := m.fsm.Entry(in.timeoutState, m.mode)
		in.reset()
		if e.Terminal {
			m.run(e)
		}
	}
	if in.repeating && !now.Before(in.repeatNext) {
		m.run(in.repeatEntry)
		in.repeatNext = now.Add(m.cfg.Input.RepeatRate)
	}
	if m.broker != nil {
		m.receive()
		m.receiveMIDI()
		m.flush()
	}
	if !m.lastTick.IsZero() {
		m.Alerts().Update(now.Sub(m.lastTick))
	}
	m.lastTick = now
}

// run runs a command and then drops the numeric prefix, unless the command
// was a digit. With layer flux on, a command that changed the cursor row
// activates the layers of the new row.
func (m *Model) run(e Entry) {
	row := m.grid.Cursor.Row
	e.Action.Do()
	if m.flux && m.grid.Cursor.Row != row {
		m.Layers().followRow()
	}
	if !e.Digit {
		m.prefix.Reset()
	}
}
