package oto

import (
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/vimdaw/vimdaw"
)

type (
	// OtoContext is the platform audio output.
	OtoContext struct {
		context *oto.Context
	}

	// otoStream is an io.Reader pulling audio from a render function, which
	// is how oto/v3 players consume sound.
	otoStream struct {
		render  func(buf vimdaw.AudioBuffer) error
		frames  vimdaw.AudioBuffer
		buf     []byte
		pending []byte
	}

	otoPlayback struct {
		player *oto.Player
		once   sync.Once
	}
)

const channelCount = 2
const bytesPerFrame = channelCount * 2

// NewContext opens the default audio device and waits until it is ready.
func NewContext(sampleRate int) (*OtoContext, error) {
	context, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &OtoContext{context: context}, nil
}

// Play starts a player that keeps calling render for more audio, until the
// returned Closer is closed.
func (c *OtoContext) Play(render func(buf vimdaw.AudioBuffer) error) io.Closer {
	p := &otoPlayback{player: c.context.NewPlayer(&otoStream{render: render})}
	p.player.Play()
	return p
}

// Close suspends the audio device. oto/v3 contexts live until the process
// exits.
func (c *OtoContext) Close() error {
	if err := c.context.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

func (s *otoStream) Read(b []byte) (int, error) {
	if len(s.pending) == 0 {
		frames := max(len(b)/bytesPerFrame, 1)
		if cap(s.frames) < frames {
			s.frames = make(vimdaw.AudioBuffer, frames)
		}
		s.frames = s.frames[:frames]
		if err := s.render(s.frames); err != nil {
			return 0, err
		}
		s.buf = AppendBufferTo16BitLE(s.buf[:0], s.frames)
		s.pending = s.buf
	}
	n := copy(b, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

func (p *otoPlayback) Close() error {
	var err error
	p.once.Do(func() {
		p.player.Pause()
		if err = p.player.Err(); err != nil {
			err = fmt.Errorf("oto player failed: %w", err)
		}
	})
	return err
}
