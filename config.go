package vimdaw

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

type (
	// Config holds the capacity and tuning constants. It is read once at
	// start-up; the editor and the player treat it as immutable afterwards.
	Config struct {
		Audio   AudioConfig   `yaml:"audio"`
		Roll    RollConfig    `yaml:"roll"`
		Input   InputConfig   `yaml:"input"`
		Channel ChannelConfig `yaml:"channel"`
		Status  StatusConfig  `yaml:"status"`
	}

	AudioConfig struct {
		SampleRate     int     `yaml:"sample_rate"`
		ChannelCount   int     `yaml:"channel_count"`
		BPM            float64 `yaml:"bpm"`
		ColumnsPerBeat float64 `yaml:"columns_per_beat"`
		LayerCount     int     `yaml:"layer_count"`
		NotesMax       int     `yaml:"notes_max"`
		Attack         float32 `yaml:"attack"`
		Sustain        float32 `yaml:"sustain"`
		Release        float32 `yaml:"release"`
		Gain           float32 `yaml:"gain"`
		GainIncrement  float32 `yaml:"gain_increment"`
	}

	// RollConfig sets the geometry of the piano roll and the capacity of the
	// editing structures.
	RollConfig struct {
		NoteQuadsMax  int    `yaml:"note_quads_max"`
		UndoBatchMax  int    `yaml:"undo_batch_max"`
		ViewsSaved    int    `yaml:"views_saved"`
		ArenaSize     int    `yaml:"arena_size"`
		PoolAlignment int    `yaml:"pool_alignment"`
		MinRow        uint32 `yaml:"min_row"`
		MaxRow        uint32 `yaml:"max_row"`
		MinCol        uint32 `yaml:"min_col"`
		MaxCol        uint32 `yaml:"max_col"`
		HomeRow       uint32 `yaml:"home_row"`

		RowIncrement     uint32 `yaml:"row_increment"`
		ColIncrement     uint32 `yaml:"col_increment"`
		RowLeapIncrement uint32 `yaml:"row_leap_increment"`
		ColLeapIncrement uint32 `yaml:"col_leap_increment"`
		ScrollMarginRows uint32 `yaml:"scroll_margin_rows"`
		ScrollMarginCols uint32 `yaml:"scroll_margin_cols"`

		PhysicalWidth  float64 `yaml:"physical_width"`
		PhysicalHeight float64 `yaml:"physical_height"`
		CellWidth      float64 `yaml:"cell_width"`
		CellHeight     float64 `yaml:"cell_height"`
		StatusBarRows  uint32  `yaml:"status_bar_rows"`
		LineNumberCols uint32  `yaml:"line_number_cols"`

		ZoomMin           float64 `yaml:"zoom_min"`
		ZoomMax           float64 `yaml:"zoom_max"`
		ZoomIncrement     float64 `yaml:"zoom_increment"`
		ZoomLeapIncrement float64 `yaml:"zoom_leap_increment"`
	}

	InputConfig struct {
		PrefixTimeout time.Duration `yaml:"prefix_timeout"`
		RepeatDelay   time.Duration `yaml:"repeat_delay"`
		RepeatRate    time.Duration `yaml:"repeat_rate"`
	}

	ChannelConfig struct {
		BufferSize int `yaml:"buffer_size"`
	}

	StatusConfig struct {
		Format string `yaml:"format"`
	}
)

//go:embed config.yml
var defaultConfigYaml []byte

// ErrInvalidConfig is wrapped by all the errors returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid config")

// DefaultConfig returns the configuration embedded in the binary.
func DefaultConfig() Config {
	var config Config
	if err := yaml.UnmarshalStrict(defaultConfigYaml, &config); err != nil {
		panic(fmt.Errorf("failed to unmarshal default config: %w", err))
	}
	return config
}

// ReadCustomConfigYml reads filename from the vimdaw directory under the user
// config directory and unmarshals it on top of target, which needs to be a
// pointer. exists is false if there was no such file.
func ReadCustomConfigYml(filename string, target interface{}) (exists bool, err error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return false, err
	}
	path := filepath.Join(configDir, "vimdaw", filename)
	bytes, err2 := os.ReadFile(path)
	if err2 != nil {
		return false, err2
	}
	err = yaml.Unmarshal(bytes, target)
	return true, err
}

// LoadConfig returns the default config overridden by the file at path. If
// path is empty, config.yml in the user config directory is used when it
// exists.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		exists, err := ReadCustomConfigYml("config.yml", &config)
		if exists && err != nil {
			return config, fmt.Errorf("could not parse user config: %w", err)
		}
	} else {
		bytes, err := os.ReadFile(path)
		if err != nil {
			return config, fmt.Errorf("could not read config: %w", err)
		}
		if err := yaml.Unmarshal(bytes, &config); err != nil {
			return config, fmt.Errorf("could not parse config %s: %w", path, err)
		}
	}
	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// Validate checks that the values can be used without dividing by zero or
// building an inverted coordinate range.
func (c *Config) Validate() error {
	switch {
	case c.Audio.SampleRate <= 0:
		return fmt.Errorf("%w: audio.sample_rate must be positive", ErrInvalidConfig)
	case c.Audio.BPM <= 0:
		return fmt.Errorf("%w: audio.bpm must be positive", ErrInvalidConfig)
	case c.Audio.ColumnsPerBeat <= 0:
		return fmt.Errorf("%w: audio.columns_per_beat must be positive", ErrInvalidConfig)
	case c.Audio.LayerCount < 1 || c.Audio.LayerCount > 64:
		return fmt.Errorf("%w: audio.layer_count must be in [1,64]", ErrInvalidConfig)
	case c.Audio.Gain < 0 || c.Audio.Gain > 1:
		return fmt.Errorf("%w: audio.gain must be in [0,1]", ErrInvalidConfig)
	case c.Roll.NoteQuadsMax <= 0:
		return fmt.Errorf("%w: roll.note_quads_max must be positive", ErrInvalidConfig)
	case c.Roll.UndoBatchMax <= 0:
		return fmt.Errorf("%w: roll.undo_batch_max must be positive", ErrInvalidConfig)
	case c.Roll.PoolAlignment <= 0 || c.Roll.PoolAlignment&(c.Roll.PoolAlignment-1) != 0:
		return fmt.Errorf("%w: roll.pool_alignment must be a power of two", ErrInvalidConfig)
	case c.Roll.ArenaSize < c.Roll.PoolAlignment:
		return fmt.Errorf("%w: roll.arena_size is smaller than the alignment", ErrInvalidConfig)
	case c.Roll.MinRow > c.Roll.MaxRow || c.Roll.MinCol > c.Roll.MaxCol:
		return fmt.Errorf("%w: roll bounds are inverted", ErrInvalidConfig)
	case c.Roll.HomeRow < c.Roll.MinRow || c.Roll.HomeRow > c.Roll.MaxRow:
		return fmt.Errorf("%w: roll.home_row outside of [min_row,max_row]", ErrInvalidConfig)
	case c.Roll.CellWidth <= 0 || c.Roll.CellHeight <= 0:
		return fmt.Errorf("%w: roll cell size must be positive", ErrInvalidConfig)
	case c.Roll.ZoomMin <= 0 || c.Roll.ZoomMin > c.Roll.ZoomMax:
		return fmt.Errorf("%w: roll zoom range is invalid", ErrInvalidConfig)
	case c.Channel.BufferSize < 16 || c.Channel.BufferSize&(c.Channel.BufferSize-1) != 0:
		return fmt.Errorf("%w: channel.buffer_size must be a power of two >= 16", ErrInvalidConfig)
	}
	return nil
}

// Timing returns the column to frame conversion described by the audio
// section.
func (c *Config) Timing() Timing {
	return Timing{SampleRate: c.Audio.SampleRate, BPM: c.Audio.BPM, ColumnsPerBeat: c.Audio.ColumnsPerBeat}
}
