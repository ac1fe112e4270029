package keys

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrSyntax is wrapped by all the errors returned by Parse.
var ErrSyntax = errors.New("invalid key sequence")

// Parse parses a key sequence such as "gg", "<Space>hiv", "<C-A-=>" or "G".
// Bracketed keys take modifier prefixes C- (ctrl), A- or M- (alt), S-
// (shift) and D- (logo) followed by a single character or a key name.
// Outside brackets every character is one key; upper case letters and
// shifted symbols imply shift.
func Parse(seq string) ([]Key, error) {
	var ret []Key
	for i := 0; i < len(seq); {
		if seq[i] != '<' {
			r, size := utf8.DecodeRuneInString(seq[i:])
			ret = append(ret, Rune(r, 0))
			i += size
			continue
		}
		end := strings.IndexByte(seq[i+1:], '>')
		if end <= 0 {
			return nil, fmt.Errorf("%w: unterminated '<' in %q", ErrSyntax, seq)
		}
		k, err := parseBracket(seq[i+1 : i+1+end])
		if err != nil {
			return nil, fmt.Errorf("%w in %q", err, seq)
		}
		ret = append(ret, k)
		i += end + 2
	}
	if len(ret) == 0 {
		return nil, fmt.Errorf("%w: empty sequence", ErrSyntax)
	}
	return ret, nil
}

func parseBracket(s string) (Key, error) {
	var mod Mod
	for len(s) > 2 && s[1] == '-' {
		switch s[0] {
		case 'C', 'c':
			mod |= ModCtrl
		case 'A', 'a', 'M', 'm':
			mod |= ModAlt
		case 'S', 's':
			mod |= ModShift
		case 'D', 'd':
			mod |= ModLogo
		default:
			return Key{}, fmt.Errorf("%w: unknown modifier %q", ErrSyntax, s[0])
		}
		s = s[2:]
	}
	if utf8.RuneCountInString(s) == 1 {
		r, _ := utf8.DecodeRuneInString(s)
		return Rune(r, mod), nil
	}
	if r, ok := runes[strings.ToLower(s)]; ok {
		return Rune(r, mod), nil
	}
	if k, ok := Named(s, mod); ok {
		return k, nil
	}
	return Key{}, fmt.Errorf("%w: unknown key <%s>", ErrSyntax, s)
}

// MustParse is like Parse but panics on error. Meant for tests and
// package level tables.
func MustParse(seq string) []Key {
	ret, err := Parse(seq)
	if err != nil {
		panic(err)
	}
	return ret
}
