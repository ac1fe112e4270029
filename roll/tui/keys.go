package tui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/vimdaw/vimdaw/keys"
)

var namedKeys = map[tcell.Key]keys.Sym{
	tcell.KeyEscape:     keys.SymEscape,
	tcell.KeyEnter:      keys.SymReturn,
	tcell.KeyTab:        keys.SymTab,
	tcell.KeyBackspace:  keys.SymBackspace,
	tcell.KeyBackspace2: keys.SymBackspace,
	tcell.KeyUp:         keys.SymUp,
	tcell.KeyDown:       keys.SymDown,
	tcell.KeyLeft:       keys.SymLeft,
	tcell.KeyRight:      keys.SymRight,
	tcell.KeyDelete:     keys.SymDelete,
	tcell.KeyHome:       keys.SymHome,
	tcell.KeyEnd:        keys.SymEnd,
	tcell.KeyPgUp:       keys.SymPageUp,
	tcell.KeyPgDn:       keys.SymPageDown,
}

func modsOf(ev *tcell.EventKey) keys.Mod {
	var mod keys.Mod
	m := ev.Modifiers()
	if m&tcell.ModShift != 0 {
		mod |= keys.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		mod |= keys.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		mod |= keys.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		mod |= keys.ModLogo
	}
	return mod
}

// KeyFromEvent normalizes a tcell key event. ok is false for keys no
// binding can name.
func KeyFromEvent(ev *tcell.EventKey) (k keys.Key, ok bool) {
	mod := modsOf(ev)
	if ev.Key() == tcell.KeyRune {
		// the shift of printable characters is already in the rune
		return keys.Rune(ev.Rune(), mod&^keys.ModShift), true
	}
	if sym, ok := namedKeys[ev.Key()]; ok {
		if ev.Key() == tcell.KeyBackspace || ev.Key() == tcell.KeyBackspace2 {
			mod &^= keys.ModCtrl
		}
		return keys.Key{Sym: sym, Mod: mod & keys.ModMask}, true
	}
	if ev.Key() >= tcell.KeyCtrlA && ev.Key() <= tcell.KeyCtrlZ {
		r := rune('a' + ev.Key() - tcell.KeyCtrlA)
		return keys.Rune(r, (mod|keys.ModCtrl)&^keys.ModShift), true
	}
	return keys.Key{}, false
}
