package roll

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/dustin/go-humanize"
	"github.com/vimdaw/vimdaw/keys"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// StatusData is what the status line template sees.
type StatusData struct {
	Mode      string
	Keys      string
	Prefix    uint32
	Row       uint32
	Col       uint32
	SubCol    uint32
	Width     string
	Nav       string
	Layers    string
	Zoom      float64
	Notes     int
	NotesMax  int
	ArenaUsed string
	ArenaSize string
	Undo      int
	Views     int
	Playing   bool
	Position  float64 // columns
	Alert     string
}

var modeCaser = cases.Title(language.English)

func newStatusTemplate(format string) (*template.Template, error) {
	tmpl, err := template.New("status").Funcs(sprig.TxtFuncMap()).Parse(format)
	if err != nil {
		return nil, fmt.Errorf("could not parse status format: %w", err)
	}
	return tmpl, nil
}

// ModeName returns the human readable name of a mode, e.g. "Views".
func ModeName(mode keys.Mode) string {
	return modeCaser.String(strings.ReplaceAll(mode.String(), "_", " "))
}

// Status returns the values shown on the status line.
func (m *Model) Status() StatusData {
	c := m.grid.Cursor
	a := m.undo.Arena()
	d := StatusData{
		Mode:      ModeName(m.mode),
		Keys:      keys.FormatSequence(m.input.seq),
		Prefix:    m.prefix.Count(),
		Row:       c.Row,
		Col:       c.Col,
		SubCol:    c.SubCol,
		Width:     fmt.Sprintf("%d/%d", c.Width.Num, c.Width.Den),
		Nav:       fmt.Sprintf("%d/%d", c.Nav.Num, c.Nav.Den),
		Layers:    m.Layers().String(),
		Zoom:      m.grid.Viewport.Zoom,
		Notes:     m.notes.Alive(),
		NotesMax:  m.notes.Cap(),
		ArenaUsed: humanize.Bytes(uint64(a.Used())),
		ArenaSize: humanize.Bytes(uint64(a.Cap())),
		Undo:      m.undo.Len(),
		Views:     len(m.views),
		Playing:   m.Playing(),
		Position:  m.timing.Columns(m.position),
	}
	if alert, ok := m.Alerts().Top(); ok {
		d.Alert = alert.Message
	}
	return d
}

// StatusLine renders the status line with the configured template.
func (m *Model) StatusLine() string {
	var b strings.Builder
	if err := m.status.Execute(&b, m.Status()); err != nil {
		return err.Error()
	}
	return b.String()
}
