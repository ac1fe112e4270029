package keys

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/vimdaw/vimdaw"
	"gopkg.in/yaml.v3"
)

type (
	// Binding binds a key sequence in a mode to a named command. An empty
	// Command in a user file removes an earlier binding of the same
	// sequence.
	Binding struct {
		Mode    string `yaml:",omitempty"`
		Keys    string
		Command string
		Release bool `yaml:",omitempty"` // run the command again when the key is released
		Repeat  bool `yaml:",omitempty"` // run the command while the key is held
		Timeout bool `yaml:",omitempty"` // run the command after a pause when the sequence could continue
	}

	// Compiled is a binding with its mode and key sequence parsed.
	Compiled struct {
		Binding
		Mode Mode
		Seq  []Key
	}
)

//go:embed keybindings.yml
var defaultKeyBindings []byte

// DefaultBindings returns the bindings embedded in the binary.
func DefaultBindings() []Binding {
	var ret []Binding
	dec := yaml.NewDecoder(bytes.NewReader(defaultKeyBindings))
	dec.KnownFields(true)
	if err := dec.Decode(&ret); err != nil {
		panic(fmt.Errorf("failed to unmarshal default keybindings: %w", err))
	}
	return ret
}

// LoadBindings returns the default bindings with keybindings.yml from the
// user config directory appended. A user file that exists but cannot be
// parsed is reported as an error; the defaults are still returned.
func LoadBindings() ([]Binding, error) {
	ret := DefaultBindings()
	var user []Binding
	exists, err := vimdaw.ReadCustomConfigYml("keybindings.yml", &user)
	if !exists {
		return ret, nil
	}
	if err != nil {
		return ret, fmt.Errorf("could not parse user keybindings: %w", err)
	}
	return append(ret, user...), nil
}

// Compile parses the bindings. Later bindings of the same sequence in the same
// mode replace earlier ones, and empty commands unbind. The order of the
// first appearance of each sequence is kept.
func Compile(bindings []Binding) ([]Compiled, error) {
	type slot struct {
		mode Mode
		seq  string
	}
	index := map[slot]int{}
	var ret []Compiled
	for _, b := range bindings {
		mode, err := ParseMode(b.Mode)
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", b.Keys, err)
		}
		seq, err := Parse(b.Keys)
		if err != nil {
			return nil, fmt.Errorf("binding for %q: %w", b.Command, err)
		}
		s := slot{mode, FormatSequence(seq)}
		c := Compiled{Binding: b, Mode: mode, Seq: seq}
		if i, ok := index[s]; ok {
			ret[i] = c
			continue
		}
		index[s] = len(ret)
		ret = append(ret, c)
	}
	// drop unbound entries only after all overrides have been applied
	n := 0
	for _, c := range ret {
		if c.Command != "" {
			ret[n] = c
			n++
		}
	}
	return ret[:n], nil
}

// Hints maps every command to the text of the last sequence bound to it, for
// showing in help texts.
func Hints(compiled []Compiled) map[string]string {
	ret := make(map[string]string, len(compiled))
	for _, c := range compiled {
		ret[c.Command] = FormatSequence(c.Seq)
	}
	return ret
}
