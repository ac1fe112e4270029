package keys

import (
	"fmt"
	"strings"
)

// Mode is the editing mode a binding applies to.
type Mode int

const (
	ModeNormal Mode = iota
	ModeViews
	ModeMIDI
	ModeCount
)

var modeNames = [ModeCount]string{
	ModeNormal: "normal",
	ModeViews:  "views",
	ModeMIDI:   "midi",
}

func (m Mode) String() string {
	if m < 0 || m >= ModeCount {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode returns the mode with the given name. The empty name is normal
// mode.
func ParseMode(name string) (Mode, error) {
	if name == "" {
		return ModeNormal, nil
	}
	for i, n := range modeNames {
		if strings.EqualFold(n, name) {
			return Mode(i), nil
		}
	}
	return ModeNormal, fmt.Errorf("unknown mode %q", name)
}
