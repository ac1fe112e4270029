package oto

import (
	"encoding/binary"
	"math"

	"github.com/vimdaw/vimdaw"
)

// AppendBufferTo16BitLE converts the stereo frames of buf to interleaved
// 16-bit little-endian samples appended to dst. Samples outside [-1, 1] are
// clipped.
func AppendBufferTo16BitLE(dst []byte, buf vimdaw.AudioBuffer) []byte {
	for _, frame := range buf {
		for _, v := range frame {
			var uv int16
			if v < -1.0 {
				uv = -math.MaxInt16
			} else if v > 1.0 {
				uv = math.MaxInt16
			} else {
				uv = int16(v * math.MaxInt16)
			}
			dst = binary.LittleEndian.AppendUint16(dst, uint16(uv))
		}
	}
	return dst
}
