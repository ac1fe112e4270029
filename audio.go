package vimdaw

import "io"

type (
	// AudioBuffer is a buffer of stereo frames.
	AudioBuffer [][2]float32

	// AudioContext is the platform audio output. Play starts pulling audio
	// from render until the returned Closer is closed.
	AudioContext interface {
		Play(render func(buf AudioBuffer) error) io.Closer
		Close() error
	}
)

// Fill sets every sample of the buffer to v.
func (b AudioBuffer) Fill(v float32) {
	for i := range b {
		b[i] = [2]float32{v, v}
	}
}
