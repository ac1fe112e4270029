package roll

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/vimdaw/vimdaw"
)

// WAVExporter renders the notes offline with the preview synth and writes
// them as a stereo .wav file, either 16 bit PCM or 32 bit float.
type WAVExporter struct {
	PCM16 bool
	Gain  float32       // master gain, 1 when zero
	Limit time.Duration // longest render allowed, 30 minutes when zero
}

const wavChunkFrames = 4096

// Export implements Exporter.
func (e WAVExporter) Export(path string, notes []vimdaw.Note, timing vimdaw.Timing) error {
	length := renderLength(notes, timing.SampleRate)
	limit := e.Limit
	if limit == 0 {
		limit = 30 * time.Minute
	}
	if length > uint64(limit.Seconds()*float64(timing.SampleRate)) {
		return fmt.Errorf("render of %d frames is longer than %v", length, limit)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := e.write(w, notes, timing.SampleRate, length); err != nil {
		f.Close()
		return fmt.Errorf("could not write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("could not write %s: %w", path, err)
	}
	return f.Close()
}

// renderLength returns the frame after the release of the last note.
func renderLength(notes []vimdaw.Note, sampleRate int) uint64 {
	var length uint64
	for i := range notes {
		end := notes[i].End() + uint64(float64(notes[i].Release)*float64(sampleRate))
		length = max(length, end)
	}
	return length
}

func (e WAVExporter) write(w *bufio.Writer, notes []vimdaw.Note, sampleRate int, length uint64) error {
	gain := e.Gain
	if gain == 0 {
		gain = 1
	}
	p := NewPlayer(NewBroker(wavChunkFrames), sampleRate)
	p.broker.Shared.SetGain(gain)
	p.broker.Shared.SetLayers(^uint64(0))
	for _, n := range notes {
		p.put(n)
	}
	if err := wavHeader(w, length, sampleRate, e.PCM16); err != nil {
		return err
	}
	buf := make(vimdaw.AudioBuffer, wavChunkFrames)
	pcm := make([]int16, 2*wavChunkFrames)
	for p.position < length {
		chunk := buf[:min(uint64(len(buf)), length-p.position)]
		p.render(chunk)
		p.position += uint64(len(chunk))
		var err error
		if e.PCM16 {
			for i, s := range chunk {
				pcm[2*i] = toPCM16(s[0])
				pcm[2*i+1] = toPCM16(s[1])
			}
			err = binary.Write(w, binary.LittleEndian, pcm[:2*len(chunk)])
		} else {
			err = binary.Write(w, binary.LittleEndian, chunk)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func toPCM16(v float32) int16 {
	return int16(max(min(math.Round(float64(v)*math.MaxInt16), math.MaxInt16), math.MinInt16))
}

// wavHeader writes the RIFF header of a stereo file of frames frames. Float
// files carry the fmt extension size and a fact chunk, PCM files neither.
// See http://www-mmsp.ece.mcgill.ca/Documents/AudioFormats/WAVE/WAVE.html
func wavHeader(w *bufio.Writer, frames uint64, sampleRate int, pcm16 bool) error {
	const channels = 2
	bytesPerSample, fmtSize, format := 4, 18, 3 // IEEE float
	if pcm16 {
		bytesPerSample, fmtSize, format = 2, 16, 1 // PCM
	}
	dataSize := uint32(frames) * channels * uint32(bytesPerSample)
	riffSize := 4 + 8 + uint32(fmtSize) + 8 + dataSize
	if !pcm16 {
		riffSize += 12
	}
	w.WriteString("RIFF")
	fields := []any{
		riffSize,
		[4]byte{'W', 'A', 'V', 'E'},
		[4]byte{'f', 'm', 't', ' '},
		uint32(fmtSize),
		uint16(format),
		uint16(channels),
		uint32(sampleRate),
		uint32(sampleRate * channels * bytesPerSample), // bytes per second
		uint16(channels * bytesPerSample),              // block align
		uint16(8 * bytesPerSample),
	}
	if !pcm16 {
		fields = append(fields, uint16(0), [4]byte{'f', 'a', 'c', 't'}, uint32(4), uint32(frames))
	}
	fields = append(fields, [4]byte{'d', 'a', 't', 'a'}, dataSize)
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}
