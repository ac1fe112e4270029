package roll

import (
	"fmt"
	"strings"

	"github.com/vimdaw/vimdaw/keys"
)

type (
	// StateID is a node of the key sequence trie. State 0 is the root.
	StateID uint32

	// Entry is what a state does in a mode. A Terminal entry ends a bound
	// sequence and runs Action. A Prefix entry can still be continued by a
	// longer sequence; when it is also Terminal the command runs only after
	// the prefix timeout.
	Entry struct {
		Terminal bool
		Prefix   bool
		Command  string
		Action   Action
		Digit    bool // the command accumulates the numeric prefix
		Release  bool
		Repeat   bool
		Timeout  bool
	}

	// FSM is the dispatch table built from the key bindings. Transitions are
	// shared by all modes; entries are per mode, with the normal mode entry
	// used when a mode has none of its own.
	FSM struct {
		next      map[transition]StateID
		entries   map[modeState]Entry
		continued map[modeState]bool
		states    StateID
	}

	transition struct {
		state StateID
		key   keys.Key
	}

	modeState struct {
		state StateID
		mode  keys.Mode
	}
)

// NewFSM builds the dispatch table. resolve turns a command name into the
// action it runs; a command it does not know is an error.
func NewFSM(bindings []keys.Compiled, resolve func(string) (Action, bool)) (*FSM, error) {
	f := &FSM{
		next:      map[transition]StateID{},
		entries:   map[modeState]Entry{},
		continued: map[modeState]bool{},
		states:    1,
	}
	for _, b := range bindings {
		action, ok := resolve(b.Command)
		if !ok {
			return nil, fmt.Errorf("binding %q: unknown command %q", b.Keys, b.Command)
		}
		state := StateID(0)
		for i, k := range b.Seq {
			if i > 0 {
				f.continued[modeState{state, b.Mode}] = true
			}
			t := transition{state, k}
			next, ok := f.next[t]
			if !ok {
				next = f.states
				f.states++
				f.next[t] = next
			}
			state = next
		}
		f.entries[modeState{state, b.Mode}] = Entry{
			Terminal: true,
			Command:  b.Command,
			Action:   action,
			Digit:    strings.HasPrefix(b.Command, "digit_"),
			Release:  b.Release,
			Repeat:   b.Repeat,
			Timeout:  b.Timeout,
		}
	}
	return f, nil
}

// Next follows the transition for key from state.
func (f *FSM) Next(state StateID, key keys.Key) (StateID, bool) {
	s, ok := f.next[transition{state, key}]
	return s, ok
}

// Entry returns what state does in mode. Prefix is set when a sequence
// bound in mode, or in the normal mode, continues past state. A terminal
// entry that is also a prefix always gets Timeout, so the shorter sequence
// stays reachable.
func (f *FSM) Entry(state StateID, mode keys.Mode) Entry {
	e, ok := f.entries[modeState{state, mode}]
	if !ok {
		e = f.entries[modeState{state, keys.ModeNormal}]
	}
	e.Prefix = f.continued[modeState{state, mode}] || f.continued[modeState{state, keys.ModeNormal}]
	if e.Terminal && e.Prefix {
		e.Timeout = true
	}
	return e
}

// States returns the number of states, the root included.
func (f *FSM) States() int { return int(f.states) }
