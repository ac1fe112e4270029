package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/vimdaw/vimdaw"
	"github.com/vimdaw/vimdaw/cmd"
	"github.com/vimdaw/vimdaw/keys"
	"github.com/vimdaw/vimdaw/oto"
	"github.com/vimdaw/vimdaw/roll"
	"github.com/vimdaw/vimdaw/roll/gomidi"
	"github.com/vimdaw/vimdaw/roll/tui"
	"github.com/vimdaw/vimdaw/version"
)

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
var memprofile = flag.String("memprofile", "", "write memory profile to `file`")
var defaultMidiInput = flag.String("midi-input", "", "connect MIDI input to matching device name prefix")
var configFile = flag.String("config", "", "read the configuration from `file` instead of the user config directory")
var logFile = flag.String("log", "", "write the log to `file`; the terminal is taken by the roll")
var exportFile = flag.String("export", "vimdaw.mid", "the `file` the export command writes, a .wav file is rendered to audio")
var printVersion = flag.Bool("version", false, "print version and exit")

func main() {
	flag.Parse()
	if *printVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}
	if *logFile != "" {
		lf, err := os.OpenFile(*logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			log.Fatal("could not open log file: ", err)
		}
		defer lf.Close()
		log.SetOutput(lf)
	}
	var f *os.File
	if *cpuprofile != "" {
		var err error
		f, err = os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
	}
	config, err := vimdaw.LoadConfig(*configFile)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	bindings, err := keys.LoadBindings()
	if err != nil {
		log.Printf("using the default keybindings: %v", err)
	}
	compiled, err := keys.Compile(bindings)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	audioContext, err := oto.NewContext(config.Audio.SampleRate)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	broker := roll.NewBroker(config.Channel.BufferSize)
	midiContext := cmd.NewMidiContext(broker)
	defer midiContext.Close()
	model, err := roll.NewModel(broker, config, compiled, midiContext)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	var exporter roll.Exporter = gomidi.SMFExporter{}
	if strings.EqualFold(filepath.Ext(*exportFile), ".wav") {
		exporter = roll.WAVExporter{Gain: config.Audio.Gain}
	}
	model.SetExporter(exporter, *exportFile)
	log.Printf("vimdaw %s started", version.String())
	if isFlagPassed("midi-input") {
		if err := model.MIDI().OpenInput(*defaultMidiInput); err != nil {
			log.Printf("failed to open MIDI input '%s': %v", *defaultMidiInput, err)
		}
	}
	player := roll.NewPlayer(broker, config.Audio.SampleRate)
	audioCloser := audioContext.Play(func(buf vimdaw.AudioBuffer) error {
		select {
		case <-broker.ClosePlayer:
			close(broker.FinishedPlayer)
			return io.EOF
		default:
		}
		player.Process(buf)
		return nil
	})

	trackerUi := tui.NewTracker(model, broker, nil)
	uiErr := trackerUi.Main()
	roll.TrySend(broker.ClosePlayer, struct{}{})
	roll.TimeoutReceive(broker.FinishedPlayer, 3*time.Second)
	audioCloser.Close()
	audioContext.Close()
	if *cpuprofile != "" {
		pprof.StopCPUProfile()
		f.Close()
	}
	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			log.Fatal("could not create memory profile: ", err)
		}
		defer f.Close()
		runtime.GC() // get up-to-date statistics
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal("could not write memory profile: ", err)
		}
	}
	if uiErr != nil {
		log.Fatal(uiErr)
	}
}

func isFlagPassed(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
