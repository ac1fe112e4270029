// Package keys normalizes key events and parses key binding sequences written
// in the <C-x> notation.
package keys

import (
	"strings"
	"unicode"
)

type (
	// Mod is a bit set of modifiers held during a key press.
	Mod uint8

	// Sym is a normalized key name. Printable keys are the unshifted character
	// ("a", "4", ";"), other keys use their bracket name ("Esc", "CR").
	Sym string

	// Key is a normalized key press: the unshifted symbol plus modifiers.
	Key struct {
		Sym Sym
		Mod Mod
	}
)

const (
	ModShift Mod = 1 << iota
	ModCtrl
	ModAlt
	ModLogo
	ModCaps
	ModNum
)

// ModMask is the set of modifiers that take part in bindings. Lock keys are
// dropped during normalization.
const ModMask = ModShift | ModCtrl | ModAlt | ModLogo

const (
	SymEscape    Sym = "Esc"
	SymBackspace Sym = "BS"
	SymReturn    Sym = "CR"
	SymSpace     Sym = "Space"
	SymTab       Sym = "Tab"
	SymUp        Sym = "Up"
	SymDown      Sym = "Down"
	SymLeft      Sym = "Left"
	SymRight     Sym = "Right"
	SymDelete    Sym = "Del"
	SymHome      Sym = "Home"
	SymEnd       Sym = "End"
	SymPageUp    Sym = "PageUp"
	SymPageDown  Sym = "PageDown"
)

// shifted maps characters produced with shift held on a US layout back to
// the key that produced them.
var shifted = map[rune]rune{
	'!': '1', '@': '2', '#': '3', '$': '4', '%': '5',
	'^': '6', '&': '7', '*': '8', '(': '9', ')': '0',
	'_': '-', '+': '=', ':': ';', '"': '\'', '<': ',',
	'>': '.', '?': '/', '{': '[', '}': ']', '|': '\\', '~': '`',
}

// names maps the accepted bracket names, lower cased, to symbols.
var names = map[string]Sym{
	"esc":      SymEscape,
	"escape":   SymEscape,
	"bs":       SymBackspace,
	"cr":       SymReturn,
	"enter":    SymReturn,
	"return":   SymReturn,
	"space":    SymSpace,
	"tab":      SymTab,
	"up":       SymUp,
	"down":     SymDown,
	"left":     SymLeft,
	"right":    SymRight,
	"del":      SymDelete,
	"home":     SymHome,
	"end":      SymEnd,
	"pageup":   SymPageUp,
	"pagedown": SymPageDown,
	"minus":    "-",
}

// runes are bracket names standing for characters that cannot be written
// literally in a sequence.
var runes = map[string]rune{
	"lt":   '<',
	"plus": '+',
	"bar":  '|',
}

// Rune normalizes a printable character typed with the given modifiers.
// Upper case letters and shifted symbols become their base key with
// ModShift set; keypad digits arrive as plain digits already.
func Rune(r rune, mod Mod) Key {
	mod &= ModMask
	if r == ' ' {
		return Key{Sym: SymSpace, Mod: mod}
	}
	if unicode.IsUpper(r) {
		return Key{Sym: Sym(unicode.ToLower(r)), Mod: mod | ModShift}
	}
	if base, ok := shifted[r]; ok {
		return Key{Sym: Sym(base), Mod: mod | ModShift}
	}
	return Key{Sym: Sym(r), Mod: mod}
}

// Named normalizes a non-printable key. name is matched case insensitively
// against the bracket names; ok is false for unknown names.
func Named(name string, mod Mod) (k Key, ok bool) {
	sym, ok := names[strings.ToLower(name)]
	if !ok {
		return Key{}, false
	}
	return Key{Sym: sym, Mod: mod & ModMask}, true
}

// IsDigit reports whether the key is an unmodified digit.
func (k Key) IsDigit() bool {
	return k.Mod == 0 && len(k.Sym) == 1 && k.Sym[0] >= '0' && k.Sym[0] <= '9'
}

// String renders the key in binding notation, so that Parse(k.String())
// returns k again.
func (k Key) String() string {
	single := len([]rune(string(k.Sym))) == 1
	if k.Mod == 0 && single {
		return string(k.Sym)
	}
	if k.Mod == ModShift && single && unicode.IsLower([]rune(string(k.Sym))[0]) {
		return strings.ToUpper(string(k.Sym))
	}
	var b strings.Builder
	b.WriteByte('<')
	if k.Mod&ModCtrl != 0 {
		b.WriteString("C-")
	}
	if k.Mod&ModAlt != 0 {
		b.WriteString("A-")
	}
	if k.Mod&ModShift != 0 {
		b.WriteString("S-")
	}
	if k.Mod&ModLogo != 0 {
		b.WriteString("D-")
	}
	b.WriteString(string(k.Sym))
	b.WriteByte('>')
	return b.String()
}

// FormatSequence renders a key sequence in binding notation.
func FormatSequence(seq []Key) string {
	var b strings.Builder
	for _, k := range seq {
		b.WriteString(k.String())
	}
	return b.String()
}
